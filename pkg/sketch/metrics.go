package sketch

import (
	"sync/atomic"
	"time"

	"github.com/opd-ai/go-sketch/pkg/canvas"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics collects engine metrics as Prometheus collectors registered on
// a private registry, plus atomic mirrors for cheap snapshots.
//
// Thread-safe for concurrent use.
//
// Example:
//
//	m := sketch.NewMetrics()
//	http.Handle("/metrics", promhttp.HandlerFor(m.Registry(), promhttp.HandlerOpts{}))
type Metrics struct {
	registry *prometheus.Registry

	frames        prometheus.Counter
	commands      *prometheus.CounterVec
	diagnostics   *prometheus.CounterVec
	backendErrors *prometheus.CounterVec
	overruns      prometheus.Counter
	drawDuration  prometheus.Histogram
	flushDuration prometheus.Histogram
	frameRate     prometheus.Gauge
	phase         prometheus.Gauge

	frameCount   atomic.Int64
	commandCount atomic.Int64
	diagCount    atomic.Int64
	overrunCount atomic.Int64
	drawNs       atomic.Int64
	flushNs      atomic.Int64
}

// NewMetrics creates a Metrics with its own registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		frames: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "sketch_frames_total",
			Help: "Total number of completed Draw calls.",
		}),
		commands: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "sketch_commands_total",
			Help: "Total number of flushed drawing commands.",
		}, []string{"kind"}),
		diagnostics: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "sketch_diagnostics_total",
			Help: "Total number of recovered drawing errors.",
		}, []string{"kind"}),
		backendErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "sketch_backend_errors_total",
			Help: "Total number of fatal backend errors.",
		}, []string{"op"}),
		overruns: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "sketch_frame_overruns_total",
			Help: "Frames that took longer than the target interval.",
		}),
		drawDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "sketch_draw_duration_seconds",
			Help:    "Duration of Draw calls.",
			Buckets: prometheus.ExponentialBuckets(0.0005, 2, 12),
		}),
		flushDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "sketch_flush_duration_seconds",
			Help:    "Duration of backend flush and present.",
			Buckets: prometheus.ExponentialBuckets(0.0005, 2, 12),
		}),
		frameRate: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "sketch_target_frame_rate",
			Help: "Target frames per second.",
		}),
		phase: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "sketch_phase",
			Help: "Engine phase: 0 created, 1 setup pending, 2 looping, 3 stopped.",
		}),
	}
	m.registry.MustRegister(
		m.frames, m.commands, m.diagnostics, m.backendErrors, m.overruns,
		m.drawDuration, m.flushDuration, m.frameRate, m.phase,
	)
	return m
}

// Registry returns the registry holding the engine collectors.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// ObserveFrame records one completed frame.
func (m *Metrics) ObserveFrame(draw, flush time.Duration, overrun bool) {
	m.frames.Inc()
	m.frameCount.Add(1)
	m.drawDuration.Observe(draw.Seconds())
	m.drawNs.Add(draw.Nanoseconds())
	m.flushDuration.Observe(flush.Seconds())
	m.flushNs.Add(flush.Nanoseconds())
	if overrun {
		m.overruns.Inc()
		m.overrunCount.Add(1)
	}
}

// ObserveCommands counts flushed commands by kind.
func (m *Metrics) ObserveCommands(cmds []canvas.Command) {
	for _, c := range cmds {
		m.commands.WithLabelValues(c.Kind().String()).Inc()
	}
	m.commandCount.Add(int64(len(cmds)))
}

// ObserveDiagnostic counts a recovered error.
func (m *Metrics) ObserveDiagnostic(kind DiagnosticKind) {
	m.diagnostics.WithLabelValues(kind.String()).Inc()
	m.diagCount.Add(1)
}

// ObserveBackendError counts a fatal backend error.
func (m *Metrics) ObserveBackendError(op string) {
	m.backendErrors.WithLabelValues(op).Inc()
}

// SetFrameRate updates the target frame rate gauge.
func (m *Metrics) SetFrameRate(fps float64) {
	m.frameRate.Set(fps)
}

// SetPhase updates the phase gauge.
func (m *Metrics) SetPhase(p Phase) {
	m.phase.Set(float64(p))
}

// Snapshot returns a point-in-time copy of the counters.
func (m *Metrics) Snapshot() MetricsSnapshot {
	frames := m.frameCount.Load()
	return MetricsSnapshot{
		Frames:      frames,
		Commands:    m.commandCount.Load(),
		Diagnostics: m.diagCount.Load(),
		Overruns:    m.overrunCount.Load(),
		DrawAvg:     safeDivide(m.drawNs.Load(), frames),
		FlushAvg:    safeDivide(m.flushNs.Load(), frames),
	}
}

// MetricsSnapshot is a point-in-time copy of the engine counters.
type MetricsSnapshot struct {
	Frames      int64
	Commands    int64
	Diagnostics int64
	Overruns    int64

	DrawAvg  time.Duration
	FlushAvg time.Duration
}

// safeDivide performs safe division, returning 0 for divide by zero.
func safeDivide(total, count int64) time.Duration {
	if count == 0 {
		return 0
	}
	return time.Duration(total / count)
}
