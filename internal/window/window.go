//go:build !noebiten

// Package window shows sketch frames in an Ebiten window. A Window is both
// the raster presenter (it receives finished frames) and the sketch host
// (it reports when the user closed the window or pressed Escape).
//
// Ebiten must own the main goroutine, so Run blocks there while the sketch
// engine runs on its own goroutine at its own pace. The window redraws the
// most recent presented frame at the display rate.
package window

import (
	"context"
	"errors"
	"image"
	"sync"
	"sync/atomic"

	"github.com/hajimehoshi/ebiten/v2"
)

// hooks isolates the global Ebiten calls so the game logic can be tested
// without a display.
type hooks struct {
	setSize        func(w, h int)
	setTitle       func(title string)
	closeRequested func() bool
	escapePressed  func() bool
}

func ebitenHooks() hooks {
	return hooks{
		setSize:        ebiten.SetWindowSize,
		setTitle:       ebiten.SetWindowTitle,
		closeRequested: ebiten.IsWindowBeingClosed,
		escapePressed:  func() bool { return ebiten.IsKeyPressed(ebiten.KeyEscape) },
	}
}

// Window implements ebiten.Game.
type Window struct {
	mu      sync.Mutex
	width   int
	height  int
	title   string
	pending []byte
	dirty   bool
	canvas  *ebiten.Image
	ctx     context.Context

	closing atomic.Bool
	ui      hooks
}

// New creates a window with the given initial size and title. The size is
// replaced by the canvas size once the backend is initialized.
func New(width, height int, title string) *Window {
	return &Window{
		width:  width,
		height: height,
		title:  title,
		ui:     ebitenHooks(),
	}
}

// SetContext sets a context for the game loop. When the context is
// cancelled, the loop terminates.
func (w *Window) SetContext(ctx context.Context) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.ctx = ctx
}

// Resize adopts the canvas size. Safe to call from any goroutine.
func (w *Window) Resize(width, height int) {
	w.mu.Lock()
	w.width, w.height = width, height
	w.mu.Unlock()
	w.ui.setSize(width, height)
}

// SetTitle changes the window title.
func (w *Window) SetTitle(title string) {
	w.mu.Lock()
	w.title = title
	w.mu.Unlock()
	w.ui.setTitle(title)
}

// Present copies img as the frame to show next. Frames presented faster
// than the display refreshes are dropped, only the latest is shown.
func (w *Window) Present(img *image.RGBA) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if cap(w.pending) < len(img.Pix) {
		w.pending = make([]byte, len(img.Pix))
	}
	w.pending = w.pending[:len(img.Pix)]
	copy(w.pending, img.Pix)
	w.dirty = true
}

// ShouldStop reports whether the window was closed. It implements the
// sketch host interface.
func (w *Window) ShouldStop() bool {
	return w.closing.Load()
}

// Close ends the Ebiten loop at its next update.
func (w *Window) Close() error {
	w.closing.Store(true)
	return nil
}

// Update implements ebiten.Game.Update.
func (w *Window) Update() error {
	if w.closing.Load() {
		return ErrTerminated
	}

	w.mu.Lock()
	ctx := w.ctx
	w.mu.Unlock()
	if ctx != nil {
		select {
		case <-ctx.Done():
			w.closing.Store(true)
			return ErrTerminated
		default:
		}
	}

	if w.ui.closeRequested() || w.ui.escapePressed() {
		w.closing.Store(true)
		return ErrTerminated
	}
	return nil
}

// Draw implements ebiten.Game.Draw.
func (w *Window) Draw(screen *ebiten.Image) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.canvas == nil || w.canvas.Bounds().Dx() != w.width || w.canvas.Bounds().Dy() != w.height {
		if w.canvas != nil {
			w.canvas.Deallocate()
		}
		w.canvas = ebiten.NewImage(w.width, w.height)
		w.dirty = len(w.pending) > 0
	}
	if w.dirty && len(w.pending) == 4*w.width*w.height {
		w.canvas.WritePixels(w.pending)
		w.dirty = false
	}
	screen.DrawImage(w.canvas, nil)
}

// Layout implements ebiten.Game.Layout.
func (w *Window) Layout(outsideWidth, outsideHeight int) (int, int) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.width, w.height
}

// Run opens the window and blocks until it is closed or ctx is done.
// It must be called from the main goroutine.
func (w *Window) Run(ctx context.Context) error {
	w.SetContext(ctx)

	w.mu.Lock()
	width, height, title := w.width, w.height, w.title
	w.mu.Unlock()

	ebiten.SetWindowSize(width, height)
	ebiten.SetWindowTitle(title)
	ebiten.SetWindowClosingHandled(true)

	err := ebiten.RunGame(w)
	w.closing.Store(true)
	if errors.Is(err, ErrTerminated) {
		return nil
	}
	return err
}
