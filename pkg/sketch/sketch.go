package sketch

import "github.com/opd-ai/go-sketch/pkg/canvas"

// Sketch is user code driven by an Engine. Setup is called exactly once,
// then Draw once per frame, all from one goroutine. The Frame passed to
// each call is only valid until the call returns.
//
// Returning an error from Setup aborts the run with a *SetupError.
// Returning an error from Draw ends the run with a *DrawError after the
// frame's commands have been flushed.
type Sketch interface {
	Setup(f *Frame) error
	Draw(f *Frame) error
}

// Configurer is implemented by sketches that want to adjust the options
// before the backend is initialized. Only the canvas and loop fields
// (Width, Height, Title, FrameRate, MaxFrames, ResetMatrix, QueueCapacity)
// take effect; Host, Clock, Logger, Metrics and Diagnostics are fixed by
// New and changes to them are discarded.
type Configurer interface {
	Configure(opts *Options)
}

// Funcs adapts plain functions to the Sketch interface. A nil function is
// a no-op.
type Funcs struct {
	SetupFunc     func(f *Frame) error
	DrawFunc      func(f *Frame) error
	ConfigureFunc func(opts *Options)
}

// Setup calls SetupFunc.
func (s Funcs) Setup(f *Frame) error {
	if s.SetupFunc == nil {
		return nil
	}
	return s.SetupFunc(f)
}

// Draw calls DrawFunc.
func (s Funcs) Draw(f *Frame) error {
	if s.DrawFunc == nil {
		return nil
	}
	return s.DrawFunc(f)
}

// Configure calls ConfigureFunc.
func (s Funcs) Configure(opts *Options) {
	if s.ConfigureFunc != nil {
		s.ConfigureFunc(opts)
	}
}

// Backend turns resolved commands into pixels. The engine calls
// Initialize once, then Flush and Present once per frame, all from the
// engine goroutine. The slice passed to Flush is reused by the engine
// after Flush returns; backends that keep commands must copy them.
//
// If a Backend also implements io.Closer, Close is called when the run
// ends.
type Backend interface {
	Initialize(width, height int) error
	Flush(cmds []canvas.Command) error
	Present()
}

// Titler is implemented by backends that can display the sketch title.
type Titler interface {
	SetTitle(title string)
}

// Host reports whether the environment asked the sketch to close, e.g.
// because the window was closed. ShouldStop must not block.
type Host interface {
	ShouldStop() bool
}

// HostFunc adapts a function to the Host interface.
type HostFunc func() bool

// ShouldStop calls f.
func (f HostFunc) ShouldStop() bool { return f() }
