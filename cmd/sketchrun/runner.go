package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"sync"
	"sync/atomic"

	"github.com/opd-ai/go-sketch/internal/config"
	"github.com/opd-ai/go-sketch/internal/debugserver"
	"github.com/opd-ai/go-sketch/internal/lua"
	"github.com/opd-ai/go-sketch/internal/raster"
	"github.com/opd-ai/go-sketch/internal/watch"
	"github.com/opd-ai/go-sketch/internal/window"
	"github.com/opd-ai/go-sketch/pkg/sketch"
)

// engineRef points at the engine of the current run. Hot reloads replace
// it, so the debug server always reports the live engine.
type engineRef struct {
	eng        atomic.Pointer[sketch.Engine]
	generation atomic.Int64
}

func (r *engineRef) set(e *sketch.Engine) {
	r.eng.Store(e)
	r.generation.Add(1)
}

func (r *engineRef) Status() sketch.Status {
	if e := r.eng.Load(); e != nil {
		return e.Status()
	}
	return sketch.Status{}
}

func (r *engineRef) Health() sketch.HealthCheck {
	if e := r.eng.Load(); e != nil {
		return e.Health()
	}
	return sketch.HealthCheck{Status: sketch.HealthUnhealthy, Message: "no sketch loaded"}
}

// overrides applies command-line settings after the script's own
// settings table, so flags win over the script.
type overrides struct {
	sketch.Sketch
	apply func(*sketch.Options)
}

func (o overrides) Configure(opts *sketch.Options) {
	if c, ok := o.Sketch.(sketch.Configurer); ok {
		c.Configure(opts)
	}
	if o.apply != nil {
		o.apply(opts)
	}
}

// runner drives one sketchrun invocation: it loads the script, runs an
// engine over the raster backend and, in watch mode, restarts the engine
// whenever the script or run file changes.
type runner struct {
	cfg        *config.Config
	configPath string
	scriptPath string
	flags      func(*sketch.Options)
	logger     sketch.Logger

	metrics *sketch.Metrics
	diag    *sketch.Diagnostics
	ref     engineRef
	changes chan string
	// afterRun, when set, is called each time an engine returns.
	afterRun func()

	mu      sync.Mutex
	backend *raster.Backend
	host    sketch.Host
}

func newRunner(cfg *config.Config, configPath, scriptPath string, flags func(*sketch.Options), logger sketch.Logger) *runner {
	return &runner{
		cfg:        cfg,
		configPath: configPath,
		scriptPath: scriptPath,
		flags:      flags,
		logger:     logger,
		metrics:    sketch.NewMetrics(),
		diag:       sketch.NewDiagnostics(sketch.DefaultDiagnosticsConfig()),
		changes:    make(chan string, 1),
	}
}

// Run blocks until the sketch ends. Windowed runs must be started from
// the main goroutine.
func (r *runner) Run(ctx context.Context) error {
	cfg := r.config()
	if cfg.DebugAddr != "" {
		srv, err := debugserver.Start(cfg.DebugAddr, debugserver.Config{
			Source:      &r.ref,
			Metrics:     r.metrics,
			Diagnostics: r.diag,
			Snapshot:    r.writeSnapshot,
			Logger:      r.logger,
		})
		if err != nil {
			return fmt.Errorf("starting debug server: %w", err)
		}
		defer srv.Shutdown(context.Background())
	}

	if cfg.Watch {
		paths := []string{r.scriptPath}
		if r.configPath != "" {
			paths = append(paths, r.configPath)
		}
		w, err := watch.New(paths, cfg.WatchDebounce, r.notify, func(err error) {
			r.logger.Warn("watch error", "error", err)
		})
		if err != nil {
			return fmt.Errorf("watching %s: %w", r.scriptPath, err)
		}
		w.Start()
		defer w.Stop()
	}

	if cfg.Headless {
		r.setBackend(raster.New(raster.Config{}), nil)
		return r.loop(ctx)
	}
	return r.runWindowed(ctx)
}

func (r *runner) runWindowed(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	cfg := r.config()
	win := window.New(cfg.Width, cfg.Height, cfg.Title)
	r.setBackend(raster.New(raster.Config{Presenter: win}), win)

	errCh := make(chan error, 1)
	go func() {
		errCh <- r.loop(ctx)
		win.Close()
	}()

	if err := win.Run(ctx); err != nil {
		cancel()
		<-errCh
		if errors.Is(err, window.ErrUnavailable) {
			return fmt.Errorf("%w; use --headless", err)
		}
		return err
	}
	return <-errCh
}

// loop runs engines until the run should end. Without watch mode that
// is after the first engine returns; in watch mode a failed or finished
// sketch waits for the next change.
func (r *runner) loop(ctx context.Context) error {
	for {
		reloaded, err := r.runOnce(ctx)
		if reloaded {
			continue
		}
		if !r.config().Watch || ctx.Err() != nil || r.hostStopped() {
			return err
		}
		if err != nil {
			r.logger.Error("sketch failed, waiting for changes", "error", err)
		} else {
			r.logger.Info("sketch ended, waiting for changes")
		}

		select {
		case <-ctx.Done():
			return nil
		case path := <-r.changes:
			r.reloadConfig(path)
		}
	}
}

// runOnce loads the script and runs it on a fresh engine. A change
// notification stops the engine and reports reloaded.
func (r *runner) runOnce(ctx context.Context) (reloaded bool, err error) {
	cfg := r.config()
	sk, err := lua.Load(r.scriptPath, cfg.LuaConfig(r.logger))
	if err != nil {
		return false, err
	}
	defer func() {
		if cerr := sk.Close(); cerr != nil {
			r.logger.Warn("closing sketch failed", "error", cerr)
		}
	}()

	eng, err := sketch.New(r.backendForEngine(), r.options())
	if err != nil {
		return false, err
	}
	r.ref.set(eng)

	done := make(chan struct{})
	reloadCh := make(chan bool, 1)
	go func() {
		select {
		case path := <-r.changes:
			r.logger.Info("change detected, reloading", "path", path)
			r.reloadConfig(path)
			eng.Stop()
			reloadCh <- true
		case <-done:
			reloadCh <- false
		}
	}()

	err = eng.Run(ctx, overrides{Sketch: sk, apply: r.flags})
	if r.afterRun != nil {
		r.afterRun()
	}
	close(done)
	// A change taken after Run returned still counts as a reload.
	return <-reloadCh, err
}

// config returns the current configuration. Reloads replace it.
func (r *runner) config() *config.Config {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.cfg
}

func (r *runner) options() sketch.Options {
	opts := sketch.DefaultOptions()
	r.mu.Lock()
	r.cfg.Apply(&opts)
	opts.Host = r.host
	r.mu.Unlock()
	opts.Logger = r.logger
	opts.Metrics = r.metrics
	opts.Diagnostics = r.diag
	if r.flags != nil {
		r.flags(&opts)
	}
	return opts
}

// notify queues a change without blocking the watcher; one pending
// change is enough to trigger a reload.
func (r *runner) notify(path string) {
	select {
	case r.changes <- path:
	default:
	}
}

// reloadConfig re-reads the run file when path is the run file. An
// invalid file is logged and the previous configuration kept.
func (r *runner) reloadConfig(path string) {
	if r.configPath == "" {
		return
	}
	abs, err := filepath.Abs(r.configPath)
	if err != nil || abs != path {
		return
	}
	cfg, err := config.ParseFile(r.configPath)
	if err == nil {
		err = config.Validate(cfg).Error()
	}
	if err != nil {
		r.logger.Warn("keeping previous configuration", "error", err)
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	// Process-level settings stay as they were at startup.
	cfg.Headless, cfg.Watch, cfg.DebugAddr = r.cfg.Headless, r.cfg.Watch, r.cfg.DebugAddr
	r.cfg = cfg
}

func (r *runner) setBackend(b *raster.Backend, host sketch.Host) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.backend = b
	r.host = host
}

// backendForEngine hides Close so an engine ending on reload does not
// close the window.
func (r *runner) backendForEngine() sketch.Backend {
	r.mu.Lock()
	defer r.mu.Unlock()
	return struct {
		sketch.Backend
		sketch.Titler
	}{r.backend, r.backend}
}

func (r *runner) hostStopped() bool {
	r.mu.Lock()
	host := r.host
	r.mu.Unlock()
	return host != nil && host.ShouldStop()
}

func (r *runner) currentBackend() *raster.Backend {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.backend
}

func (r *runner) writeSnapshot(w io.Writer) error {
	b := r.currentBackend()
	if b == nil {
		return raster.ErrNotInitialized
	}
	return b.WritePNG(w)
}

// saveSnapshot writes the last frame to the configured snapshot path.
func (r *runner) saveSnapshot() error {
	path := r.config().Snapshot
	if path == "" {
		return nil
	}
	b := r.currentBackend()
	if b == nil {
		return raster.ErrNotInitialized
	}
	return b.SavePNG(path)
}
