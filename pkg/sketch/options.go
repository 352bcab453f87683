package sketch

import (
	"fmt"
	"math"
)

// Defaults used by DefaultOptions.
const (
	DefaultWidth     = 400
	DefaultHeight    = 400
	DefaultTitle     = "go-sketch"
	DefaultFrameRate = 60.0

	// DefaultQueueCapacity is the initial size of the per-frame command
	// queue. The queue grows as needed.
	DefaultQueueCapacity = 256
)

// Options configures an Engine.
type Options struct {
	// Width and Height are the canvas size in pixels.
	Width, Height int

	// Title is passed to backends that implement Titler.
	Title string

	// FrameRate is the target number of Draw calls per second. It can be
	// changed while running with Frame.SetFrameRate.
	FrameRate float64

	// MaxFrames stops the run after that many Draw calls.
	// Zero means no limit.
	MaxFrames uint64

	// ResetMatrix resets the transform stack to identity before every Draw.
	// By default transforms persist across frames like every other part of
	// the drawing state.
	ResetMatrix bool

	// QueueCapacity is the initial capacity of the command queue.
	// Zero means DefaultQueueCapacity.
	QueueCapacity int

	// Host is polled once per frame for close requests. Nil means the run
	// only ends through Stop, Frame.Halt, MaxFrames or the context.
	Host Host

	// Clock drives frame pacing. Nil means SystemClock.
	Clock Clock

	// Logger receives lifecycle and diagnostic messages.
	// If nil, no logging is performed.
	Logger Logger

	// Metrics collects frame and command metrics.
	// If nil, a fresh Metrics with its own registry is created.
	Metrics *Metrics

	// Diagnostics records recovered drawing errors.
	// If nil, a tracker with DefaultDiagnosticsConfig is created.
	Diagnostics *Diagnostics
}

// DefaultOptions returns Options with sensible defaults.
func DefaultOptions() Options {
	return Options{
		Width:         DefaultWidth,
		Height:        DefaultHeight,
		Title:         DefaultTitle,
		FrameRate:     DefaultFrameRate,
		QueueCapacity: DefaultQueueCapacity,
	}
}

// Validate checks the size and frame rate.
func (o Options) Validate() error {
	if o.Width <= 0 || o.Height <= 0 {
		return fmt.Errorf("%w: canvas size %dx%d must be positive", ErrInvalidOptions, o.Width, o.Height)
	}
	if !validFrameRate(o.FrameRate) {
		return fmt.Errorf("%w: frame rate %v must be positive and finite", ErrInvalidOptions, o.FrameRate)
	}
	if o.QueueCapacity < 0 {
		return fmt.Errorf("%w: negative queue capacity %d", ErrInvalidOptions, o.QueueCapacity)
	}
	return nil
}

func validFrameRate(fps float64) bool {
	return fps > 0 && !math.IsInf(fps, 0) && !math.IsNaN(fps)
}

// Logger interface for custom logging.
// It follows the slog-style signature for compatibility with Go's structured logging.
type Logger interface {
	// Debug logs a debug-level message with optional key-value pairs.
	Debug(msg string, args ...any)
	// Info logs an info-level message with optional key-value pairs.
	Info(msg string, args ...any)
	// Warn logs a warning-level message with optional key-value pairs.
	Warn(msg string, args ...any)
	// Error logs an error-level message with optional key-value pairs.
	Error(msg string, args ...any)
}
