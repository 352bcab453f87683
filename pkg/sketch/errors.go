package sketch

import (
	"errors"
	"fmt"
)

var (
	// ErrAlreadyRun is returned by a second call to Engine.Run.
	ErrAlreadyRun = errors.New("engine has already run")

	// ErrFrameExpired is reported when a Frame is used after the Setup or
	// Draw call it was passed to has returned.
	ErrFrameExpired = errors.New("frame used after its lifecycle call returned")

	// ErrInvalidOptions is wrapped by every Options.Validate failure.
	ErrInvalidOptions = errors.New("invalid options")

	// ErrInvalidFrameRate is returned by Frame.SetFrameRate for rates that
	// are not positive and finite.
	ErrInvalidFrameRate = errors.New("frame rate must be positive and finite")

	// ErrNilSketch is returned by Run when no sketch is given.
	ErrNilSketch = errors.New("sketch is nil")
)

// SetupError wraps an error returned (or a panic raised) by Sketch.Setup.
// No Draw call happens after a SetupError.
type SetupError struct {
	Err error
}

func (e *SetupError) Error() string {
	return fmt.Sprintf("setup failed: %v", e.Err)
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *SetupError) Unwrap() error {
	return e.Err
}

// DrawError wraps an error returned (or a panic raised) by Sketch.Draw.
// The commands recorded before the failure were still flushed.
type DrawError struct {
	// Frame is the frame number of the failing Draw call, starting at 1.
	Frame uint64
	Err   error
}

func (e *DrawError) Error() string {
	return fmt.Sprintf("draw failed at frame %d: %v", e.Frame, e.Err)
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *DrawError) Unwrap() error {
	return e.Err
}

// Backend operations named in BackendError.Op.
const (
	OpInitialize = "initialize"
	OpFlush      = "flush"
)

// BackendError reports a failure of the drawing backend. It always ends
// the run.
type BackendError struct {
	// Op is OpInitialize or OpFlush.
	Op string
	// Frame is the frame being flushed; 0 for setup and initialization.
	Frame uint64
	Err   error
}

func (e *BackendError) Error() string {
	if e.Op == OpInitialize {
		return fmt.Sprintf("backend %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("backend %s at frame %d: %v", e.Op, e.Frame, e.Err)
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *BackendError) Unwrap() error {
	return e.Err
}

// panicError converts a recovered panic value into an error.
func panicError(r any) error {
	if err, ok := r.(error); ok {
		return fmt.Errorf("panic: %w", err)
	}
	return fmt.Errorf("panic: %v", r)
}
