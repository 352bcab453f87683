package sketch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/opd-ai/go-sketch/pkg/canvas"
)

// Engine drives one Sketch against one Backend: it owns the canvas state,
// calls Setup once, then runs the frame loop until a stop condition.
//
// Run must be called at most once. Stop, Phase, Status and Health are
// safe to call from any goroutine.
type Engine struct {
	opts    Options
	backend Backend
	logger  Logger
	metrics *Metrics
	diag    *Diagnostics
	clock   Clock

	ran      atomic.Bool
	phase    atomic.Int32
	frames   atomic.Uint64
	fpsBits  atomic.Uint64
	stopping atomic.Bool
	stopCh   chan struct{}
	stopOnce sync.Once

	mu        sync.RWMutex
	startTime time.Time
	lastErr   error
	title     string
	width     int
	height    int

	// Owned by the Run goroutine.
	state *canvas.State
	rec   *canvas.Recorder
}

// New creates an engine that draws on backend.
func New(backend Backend, opts Options) (*Engine, error) {
	if backend == nil {
		return nil, fmt.Errorf("%w: backend is nil", ErrInvalidOptions)
	}
	if opts.QueueCapacity == 0 {
		opts.QueueCapacity = DefaultQueueCapacity
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	e := &Engine{
		opts:    opts,
		backend: backend,
		logger:  opts.Logger,
		metrics: opts.Metrics,
		diag:    opts.Diagnostics,
		clock:   opts.Clock,
		stopCh:  make(chan struct{}),
		title:   opts.Title,
		width:   opts.Width,
		height:  opts.Height,
	}
	if e.logger == nil {
		e.logger = NopLogger()
	}
	if e.metrics == nil {
		e.metrics = NewMetrics()
	}
	if e.diag == nil {
		e.diag = NewDiagnostics(DefaultDiagnosticsConfig())
	}
	if e.clock == nil {
		e.clock = SystemClock{}
	}
	e.setFrameRate(opts.FrameRate)
	e.metrics.SetPhase(PhaseCreated)
	return e, nil
}

// Metrics returns the engine's metrics collector.
func (e *Engine) Metrics() *Metrics { return e.metrics }

// Diagnostics returns the tracker of recovered drawing errors.
func (e *Engine) Diagnostics() *Diagnostics { return e.diag }

// Phase returns the current lifecycle phase.
func (e *Engine) Phase() Phase { return Phase(e.phase.Load()) }

// Stop requests a cooperative stop. The frame in progress, if any, is
// completed and flushed; a pacing sleep is interrupted. Safe to call
// multiple times and before Run.
func (e *Engine) Stop() {
	e.stopOnce.Do(func() {
		e.stopping.Store(true)
		close(e.stopCh)
	})
}

// Run takes ownership of s and blocks until the run ends. It returns nil
// when the run ended through Stop, Frame.Halt, the host, MaxFrames or ctx.
// Otherwise it returns a *SetupError, *DrawError or *BackendError.
func (e *Engine) Run(ctx context.Context, s Sketch) (runErr error) {
	if e.ran.Swap(true) {
		return ErrAlreadyRun
	}
	if s == nil {
		e.setPhase(PhaseStopped)
		return ErrNilSketch
	}

	ctx, cancel := context.WithCancel(ctx)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		select {
		case <-e.stopCh:
			cancel()
		case <-ctx.Done():
		}
	}()
	defer func() {
		cancel()
		wg.Wait()
		e.teardown(runErr)
	}()

	e.mu.Lock()
	e.startTime = e.clock.Now()
	e.mu.Unlock()
	e.setPhase(PhaseSetupPending)

	if err := e.configure(s); err != nil {
		return err
	}
	if err := e.setup(s); err != nil {
		return err
	}
	if e.shouldStop(ctx) {
		return nil
	}

	e.setPhase(PhaseLooping)
	return e.loop(ctx, s)
}

// configure applies the sketch's Configurer, builds the canvas state and
// initializes the backend.
func (e *Engine) configure(s Sketch) error {
	opts := e.opts
	if c, ok := s.(Configurer); ok {
		c.Configure(&opts)
		opts.Host, opts.Clock, opts.Logger = e.opts.Host, e.opts.Clock, e.opts.Logger
		opts.Metrics, opts.Diagnostics = e.opts.Metrics, e.opts.Diagnostics
		if err := opts.Validate(); err != nil {
			return &SetupError{Err: err}
		}
		e.setFrameRate(opts.FrameRate)
	}
	e.opts = opts

	e.mu.Lock()
	e.title, e.width, e.height = opts.Title, opts.Width, opts.Height
	e.mu.Unlock()
	e.logger = WithSketch(e.logger, opts.Title)

	state, err := canvas.NewState(opts.Width, opts.Height)
	if err != nil {
		return &SetupError{Err: err}
	}
	e.state = state
	e.rec = canvas.NewRecorder(opts.QueueCapacity)

	if t, ok := e.backend.(Titler); ok {
		t.SetTitle(opts.Title)
	}
	if err := e.backend.Initialize(opts.Width, opts.Height); err != nil {
		e.metrics.ObserveBackendError(OpInitialize)
		return &BackendError{Op: OpInitialize, Err: err}
	}
	e.logger.Info("backend initialized",
		"title", opts.Title, "width", opts.Width, "height", opts.Height, "fps", opts.FrameRate)
	return nil
}

// setup runs Sketch.Setup and presents its commands as the initial frame.
func (e *Engine) setup(s Sketch) error {
	f := e.newFrame(0, 0)
	err := call(s.Setup, f)
	f.expire()
	if err != nil {
		return &SetupError{Err: err}
	}
	if _, err := e.flush(0); err != nil {
		return err
	}
	e.logger.Info("setup complete", "commands", e.rec.Len())
	e.rec.Reset()
	return nil
}

// loop runs frames until a stop condition.
func (e *Engine) loop(ctx context.Context, s Sketch) error {
	prev := e.clock.Now()
	for {
		if e.shouldStop(ctx) {
			return nil
		}
		if limit := e.opts.MaxFrames; limit > 0 && e.frames.Load() >= limit {
			e.logger.Info("frame limit reached", "frames", limit)
			return nil
		}

		start := e.clock.Now()
		n := e.frames.Load() + 1
		if e.opts.ResetMatrix {
			if unmatched := e.state.ResetTransformStack(); unmatched > 0 {
				e.diagnose(DiagnosticTransformStack, "push", n-1,
					fmt.Errorf("%d push calls without matching pop", unmatched))
			}
		}
		e.rec.Reset()

		f := e.newFrame(n, start.Sub(prev))
		drawErr := call(s.Draw, f)
		f.expire()
		drawn := e.clock.Now()

		flushTime, err := e.flush(n)
		if err != nil {
			return err
		}
		e.frames.Store(n)

		interval := e.interval()
		elapsed := e.clock.Now().Sub(start)
		e.metrics.ObserveFrame(drawn.Sub(start), flushTime, elapsed > interval)

		if drawErr != nil {
			return &DrawError{Frame: n, Err: drawErr}
		}

		// No catch-up: an overrun frame is followed immediately by the
		// next one and the schedule restarts from there.
		if wait := interval - elapsed; wait > 0 {
			_ = e.clock.Sleep(ctx, wait)
		}
		prev = start
	}
}

// flush submits the queued commands and presents them.
func (e *Engine) flush(frame uint64) (time.Duration, error) {
	start := e.clock.Now()
	cmds := e.rec.Commands()
	if err := e.backend.Flush(cmds); err != nil {
		e.metrics.ObserveBackendError(OpFlush)
		return 0, &BackendError{Op: OpFlush, Frame: frame, Err: err}
	}
	e.backend.Present()
	e.metrics.ObserveCommands(cmds)
	return e.clock.Now().Sub(start), nil
}

// teardown closes the backend and records how the run ended.
func (e *Engine) teardown(runErr error) {
	if c, ok := e.backend.(io.Closer); ok {
		if err := c.Close(); err != nil {
			e.logger.Warn("backend close failed", "error", err)
		}
	}
	e.setPhase(PhaseStopped)

	e.mu.Lock()
	e.lastErr = runErr
	e.mu.Unlock()

	var be *BackendError
	switch {
	case runErr == nil:
		e.logger.Info("sketch stopped", "frames", e.frames.Load())
	case errors.As(runErr, &be):
		e.logger.Error("backend failed", "op", be.Op, "frame", be.Frame, "error", be.Err)
	default:
		e.logger.Error("sketch failed", "frames", e.frames.Load(), "error", runErr)
	}
}

func (e *Engine) newFrame(n uint64, delta time.Duration) *Frame {
	e.mu.RLock()
	started := e.startTime
	e.mu.RUnlock()
	return &Frame{
		eng:     e,
		state:   e.state,
		rec:     e.rec,
		number:  n,
		delta:   delta,
		elapsed: e.clock.Now().Sub(started),
	}
}

// shouldStop checks every stop source without blocking.
func (e *Engine) shouldStop(ctx context.Context) bool {
	if e.stopping.Load() || ctx.Err() != nil {
		return true
	}
	if h := e.opts.Host; h != nil && h.ShouldStop() {
		e.logger.Info("host requested stop")
		e.Stop()
		return true
	}
	return false
}

// diagnose records a recovered drawing error.
func (e *Engine) diagnose(kind DiagnosticKind, op string, frame uint64, err error) {
	e.diag.Record(Diagnostic{Kind: kind, Op: op, Frame: frame, Err: err, Timestamp: e.clock.Now()})
	e.metrics.ObserveDiagnostic(kind)
	e.logger.Debug("drawing call rejected", "kind", kind.String(), "op", op, "frame", frame, "error", err)
}

func (e *Engine) setPhase(p Phase) {
	old := Phase(e.phase.Swap(int32(p)))
	e.metrics.SetPhase(p)
	if old != p {
		e.logger.Debug("phase changed", "from", old.String(), "to", p.String())
	}
}

func (e *Engine) setFrameRate(fps float64) {
	e.fpsBits.Store(math.Float64bits(fps))
	e.metrics.SetFrameRate(fps)
}

func (e *Engine) targetFrameRate() float64 {
	return math.Float64frombits(e.fpsBits.Load())
}

func (e *Engine) interval() time.Duration {
	return time.Duration(float64(time.Second) / e.targetFrameRate())
}

// Status returns a snapshot of the engine.
func (e *Engine) Status() Status {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return Status{
		Phase:       e.Phase(),
		Title:       e.title,
		Width:       e.width,
		Height:      e.height,
		FrameCount:  e.frames.Load(),
		FrameRate:   e.targetFrameRate(),
		StartTime:   e.startTime,
		LastError:   e.lastErr,
		Diagnostics: e.diag.Total(),
	}
}

// Health reports the engine as healthy while it is looping without
// recovered errors in the last ten seconds.
func (e *Engine) Health() HealthCheck {
	now := e.clock.Now()
	st := e.Status()
	components := make(map[string]ComponentHealth)

	var uptime time.Duration
	if !st.StartTime.IsZero() && st.Phase != PhaseStopped {
		uptime = now.Sub(st.StartTime)
	}

	switch st.Phase {
	case PhaseLooping:
		components["engine"] = ComponentHealth{
			Status:  HealthOK,
			Message: fmt.Sprintf("looping, %d frames drawn", st.FrameCount),
		}
	case PhaseCreated, PhaseSetupPending:
		components["engine"] = ComponentHealth{Status: HealthDegraded, Message: "starting"}
	default:
		msg := "stopped"
		if st.LastError != nil {
			msg = st.LastError.Error()
		}
		components["engine"] = ComponentHealth{Status: HealthUnhealthy, Message: msg}
	}

	if rate := e.diag.RateAt(now, 10*time.Second); rate > 0 {
		components["drawing"] = ComponentHealth{
			Status:  HealthDegraded,
			Message: fmt.Sprintf("%.1f rejected drawing calls per second", rate),
		}
	} else {
		components["drawing"] = ComponentHealth{Status: HealthOK, Message: "no recent diagnostics"}
	}

	overall := HealthOK
	message := "all components healthy"
	switch {
	case components["engine"].Status == HealthUnhealthy:
		overall = HealthUnhealthy
		message = "engine is not running"
	case components["engine"].Status == HealthDegraded:
		overall = HealthDegraded
		message = "engine is starting"
	case components["drawing"].Status == HealthDegraded:
		overall = HealthDegraded
		message = "running with recent drawing errors"
	}

	return HealthCheck{
		Status:     overall,
		Timestamp:  now,
		Uptime:     uptime,
		Components: components,
		Message:    message,
	}
}

// call runs a lifecycle function, converting a panic into an error.
func call(fn func(*Frame) error, f *Frame) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = panicError(r)
		}
	}()
	return fn(f)
}
