package lua

import "errors"

var (
	// ErrNilRuntime is returned when a nil runtime is passed to a function that requires one.
	ErrNilRuntime = errors.New("runtime cannot be nil")

	// ErrFunctionNotFound is returned when calling an undefined Lua function.
	ErrFunctionNotFound = errors.New("Lua function not found")

	// ErrLimitExceeded is returned when a call exceeds the CPU or memory limit.
	ErrLimitExceeded = errors.New("Lua resource limit exceeded")

	// ErrNoFrame is raised in Lua when a drawing function is called
	// outside setup or draw, e.g. at the top level of the script.
	ErrNoFrame = errors.New("drawing functions can only be called from setup or draw")

	// ErrNoLifecycle is returned when a script defines neither setup nor draw.
	ErrNoLifecycle = errors.New("script defines neither a setup nor a draw function")
)
