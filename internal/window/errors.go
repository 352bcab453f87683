package window

import "errors"

var (
	// ErrTerminated is returned from Update to end the Ebiten loop.
	ErrTerminated = errors.New("window terminated")

	// ErrUnavailable is returned by Run in builds without Ebiten.
	ErrUnavailable = errors.New("built without window support (noebiten)")
)
