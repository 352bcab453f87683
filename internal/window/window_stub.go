//go:build noebiten

package window

import (
	"context"
	"image"
	"sync/atomic"
)

// Window is a placeholder for builds without Ebiten. It accepts frames
// and never asks the sketch to stop on its own.
type Window struct {
	closing atomic.Bool
}

// New creates a placeholder window.
func New(width, height int, title string) *Window {
	return &Window{}
}

// SetContext is a no-op in noebiten builds.
func (w *Window) SetContext(ctx context.Context) {}

// Resize is a no-op in noebiten builds.
func (w *Window) Resize(width, height int) {}

// SetTitle is a no-op in noebiten builds.
func (w *Window) SetTitle(title string) {}

// Present discards the frame in noebiten builds.
func (w *Window) Present(img *image.RGBA) {}

// ShouldStop reports whether Close was called.
func (w *Window) ShouldStop() bool {
	return w.closing.Load()
}

// Close marks the window closed.
func (w *Window) Close() error {
	w.closing.Store(true)
	return nil
}

// Run always fails in noebiten builds.
func (w *Window) Run(ctx context.Context) error {
	return ErrUnavailable
}
