package sketch

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"
)

// DiagnosticKind classifies a recovered drawing error.
type DiagnosticKind int

const (
	// DiagnosticGeometry is a primitive, transform or stroke weight call
	// rejected for invalid arguments.
	DiagnosticGeometry DiagnosticKind = iota
	// DiagnosticTransformStack is a Pop without a matching Push, or pushes
	// left unmatched when the transform stack is reset between frames.
	DiagnosticTransformStack
	// DiagnosticExpiredFrame is a Frame used after its call returned.
	DiagnosticExpiredFrame
	// DiagnosticInvalidArgument is any other rejected argument, such as a
	// non-positive frame rate.
	DiagnosticInvalidArgument

	numDiagnosticKinds
)

// String returns the kind name used in logs and metric labels.
func (k DiagnosticKind) String() string {
	switch k {
	case DiagnosticGeometry:
		return "geometry"
	case DiagnosticTransformStack:
		return "transform_stack"
	case DiagnosticExpiredFrame:
		return "expired_frame"
	case DiagnosticInvalidArgument:
		return "invalid_argument"
	default:
		return "unknown"
	}
}

// Diagnostic is one recovered error.
type Diagnostic struct {
	Kind DiagnosticKind
	// Op is the drawing call that failed, e.g. "line" or "pop".
	Op string
	// Frame is the frame number; 0 during setup.
	Frame     uint64
	Err       error
	Timestamp time.Time
}

// String formats the diagnostic for logs.
func (d Diagnostic) String() string {
	return fmt.Sprintf("[%s] frame %d %s: %v", d.Kind, d.Frame, d.Op, d.Err)
}

// DiagnosticsConfig configures a Diagnostics tracker.
type DiagnosticsConfig struct {
	// MaxEntries is the maximum number of diagnostics retained (default: 1000).
	MaxEntries int
	// Retention is how long diagnostics are retained (default: 1 minute).
	Retention time.Duration
}

// DefaultDiagnosticsConfig returns a configuration with sensible defaults.
func DefaultDiagnosticsConfig() DiagnosticsConfig {
	return DiagnosticsConfig{
		MaxEntries: 1000,
		Retention:  time.Minute,
	}
}

// Diagnostics keeps a bounded, time-limited log of recovered drawing
// errors plus lifetime counters per kind. A sketch that draws a bad
// primitive every frame would otherwise grow the log without bound.
//
// Thread-safe for concurrent use.
type Diagnostics struct {
	mu         sync.RWMutex
	entries    []Diagnostic
	maxEntries int
	retention  time.Duration
	handlers   []func(Diagnostic)
	now        func() time.Time

	totals [numDiagnosticKinds]atomic.Int64
}

// NewDiagnostics creates a tracker with the given configuration.
func NewDiagnostics(cfg DiagnosticsConfig) *Diagnostics {
	if cfg.MaxEntries <= 0 {
		cfg.MaxEntries = 1000
	}
	if cfg.Retention <= 0 {
		cfg.Retention = time.Minute
	}
	return &Diagnostics{
		entries:    make([]Diagnostic, 0, min(cfg.MaxEntries, 64)),
		maxEntries: cfg.MaxEntries,
		retention:  cfg.Retention,
		now:        time.Now,
	}
}

// OnRecord registers a handler called synchronously for every recorded
// diagnostic. Handlers run on the engine goroutine and must not block.
func (d *Diagnostics) OnRecord(h func(Diagnostic)) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.handlers = append(d.handlers, h)
}

// Record adds a diagnostic. A zero Timestamp is set to the current time.
func (d *Diagnostics) Record(diag Diagnostic) {
	if diag.Timestamp.IsZero() {
		diag.Timestamp = d.now()
	}
	if diag.Kind >= 0 && diag.Kind < numDiagnosticKinds {
		d.totals[diag.Kind].Add(1)
	}

	d.mu.Lock()
	d.entries = append(d.entries, diag)
	if len(d.entries) > d.maxEntries {
		d.entries = d.entries[len(d.entries)-d.maxEntries:]
	}
	d.pruneExpired()
	handlers := make([]func(Diagnostic), len(d.handlers))
	copy(handlers, d.handlers)
	d.mu.Unlock()

	for _, h := range handlers {
		h(diag)
	}
}

// pruneExpired drops entries older than the retention time.
// Must be called with mu held.
func (d *Diagnostics) pruneExpired() {
	cutoff := d.now().Add(-d.retention)
	start := 0
	for start < len(d.entries) && !d.entries[start].Timestamp.After(cutoff) {
		start++
	}
	if start > 0 {
		d.entries = d.entries[start:]
	}
}

// Recent returns up to limit of the most recent diagnostics, oldest first.
func (d *Diagnostics) Recent(limit int) []Diagnostic {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if limit <= 0 || len(d.entries) == 0 {
		return nil
	}
	start := max(len(d.entries)-limit, 0)
	out := make([]Diagnostic, len(d.entries)-start)
	copy(out, d.entries[start:])
	return out
}

// Rate returns diagnostics per second within window.
func (d *Diagnostics) Rate(window time.Duration) float64 {
	return d.RateAt(d.now(), window)
}

// RateAt returns diagnostics per second within the window ending at now.
func (d *Diagnostics) RateAt(now time.Time, window time.Duration) float64 {
	if window <= 0 {
		return 0
	}
	d.mu.RLock()
	defer d.mu.RUnlock()

	cutoff := now.Add(-window)
	count := 0
	for _, e := range d.entries {
		if e.Timestamp.After(cutoff) {
			count++
		}
	}
	return float64(count) / window.Seconds()
}

// Total returns the lifetime number of diagnostics of every kind.
func (d *Diagnostics) Total() int64 {
	var n int64
	for i := range d.totals {
		n += d.totals[i].Load()
	}
	return n
}

// Stats returns a snapshot of diagnostic statistics.
func (d *Diagnostics) Stats() DiagnosticStats {
	d.mu.RLock()
	defer d.mu.RUnlock()

	stats := DiagnosticStats{
		Retained:       len(d.entries),
		RetainedByKind: make(map[DiagnosticKind]int),
		TotalByKind:    make(map[DiagnosticKind]int64),
	}
	for _, e := range d.entries {
		stats.RetainedByKind[e.Kind]++
	}
	for i := range d.totals {
		if n := d.totals[i].Load(); n > 0 {
			stats.TotalByKind[DiagnosticKind(i)] = n
		}
	}
	return stats
}

// Clear removes all retained diagnostics. Lifetime totals are kept.
func (d *Diagnostics) Clear() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.entries = d.entries[:0]
}

// DiagnosticStats summarizes a Diagnostics tracker.
type DiagnosticStats struct {
	// Retained is the number of diagnostics currently kept.
	Retained int
	// RetainedByKind counts kept diagnostics per kind.
	RetainedByKind map[DiagnosticKind]int
	// TotalByKind holds lifetime counts for kinds seen at least once.
	TotalByKind map[DiagnosticKind]int64
}
