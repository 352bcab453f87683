// Package raster is a software drawing backend. It rasterizes resolved
// canvas commands into an *image.RGBA with golang.org/x/image/vector and
// hands every presented frame to an optional Presenter, such as a window.
package raster

import (
	"errors"
	"fmt"
	"image"
	"image/draw"
	"image/png"
	"io"
	"math"
	"os"
	"sync"

	"golang.org/x/image/vector"

	"github.com/opd-ai/go-sketch/pkg/canvas"
)

// ErrNotInitialized is returned by Flush before Initialize.
var ErrNotInitialized = errors.New("raster backend not initialized")

// DefaultEllipseSegments is the number of polygon edges used to
// approximate a full ellipse.
const DefaultEllipseSegments = 64

// coordLimit bounds coordinates passed to the rasterizer; anything beyond
// is far outside every canvas and only risks float32 overflow.
const coordLimit = 1 << 20

// Presenter receives each presented frame. The image is only valid for
// the duration of the call.
type Presenter interface {
	Present(img *image.RGBA)
}

// Resizer is implemented by presenters that track the canvas size.
type Resizer interface {
	Resize(width, height int)
}

// Titler is implemented by presenters that show a title.
type Titler interface {
	SetTitle(title string)
}

// Config configures a Backend.
type Config struct {
	// Presenter receives presented frames. Nil keeps frames in memory only,
	// for headless runs and snapshots.
	Presenter Presenter
	// EllipseSegments overrides DefaultEllipseSegments.
	EllipseSegments int
}

// Backend rasterizes commands in software. Flush and Present are called
// from the engine goroutine; Snapshot and WritePNG may be called from any
// goroutine.
type Backend struct {
	mu        sync.Mutex
	img       *image.RGBA
	ras       *vector.Rasterizer
	presenter Presenter
	segments  int
	frames    uint64
}

// New creates a backend.
func New(cfg Config) *Backend {
	segments := cfg.EllipseSegments
	if segments < 8 {
		segments = DefaultEllipseSegments
	}
	return &Backend{presenter: cfg.Presenter, segments: segments}
}

// SetTitle forwards the sketch title to the presenter.
func (b *Backend) SetTitle(title string) {
	if t, ok := b.presenter.(Titler); ok {
		t.SetTitle(title)
	}
}

// Initialize allocates a transparent width×height canvas.
func (b *Backend) Initialize(width, height int) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("invalid canvas size %dx%d", width, height)
	}
	b.mu.Lock()
	b.img = image.NewRGBA(image.Rect(0, 0, width, height))
	b.ras = vector.NewRasterizer(width, height)
	b.ras.DrawOp = draw.Over
	b.mu.Unlock()

	if r, ok := b.presenter.(Resizer); ok {
		r.Resize(width, height)
	}
	return nil
}

// Flush rasterizes cmds in order onto the canvas. Commands are not kept.
func (b *Backend) Flush(cmds []canvas.Command) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.img == nil {
		return ErrNotInitialized
	}
	for i, c := range cmds {
		if err := b.draw(c); err != nil {
			return fmt.Errorf("command %d (%s): %w", i, c.Kind(), err)
		}
	}
	return nil
}

// Present hands the canvas to the presenter.
func (b *Backend) Present() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.frames++
	if b.presenter != nil && b.img != nil {
		b.presenter.Present(b.img)
	}
}

// Frames returns the number of presented frames.
func (b *Backend) Frames() uint64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.frames
}

// Snapshot returns a copy of the canvas, or nil before Initialize.
func (b *Backend) Snapshot() *image.RGBA {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.img == nil {
		return nil
	}
	out := image.NewRGBA(b.img.Bounds())
	copy(out.Pix, b.img.Pix)
	return out
}

// WritePNG encodes the current canvas as PNG.
func (b *Backend) WritePNG(w io.Writer) error {
	img := b.Snapshot()
	if img == nil {
		return ErrNotInitialized
	}
	return png.Encode(w, img)
}

// SavePNG writes the current canvas to path.
func (b *Backend) SavePNG(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating snapshot: %w", err)
	}
	if err := b.WritePNG(f); err != nil {
		f.Close()
		return fmt.Errorf("encoding snapshot: %w", err)
	}
	return f.Close()
}

// Close closes the presenter if it is an io.Closer.
func (b *Backend) Close() error {
	if c, ok := b.presenter.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

func (b *Backend) draw(c canvas.Command) error {
	st := c.Style()
	switch v := c.(type) {
	case canvas.Background:
		draw.Draw(b.img, b.img.Bounds(), image.NewUniform(v.Color), image.Point{}, draw.Src)
	case canvas.Line:
		if col, ok := st.Stroke.Color(); ok {
			b.strokeSegment(v.P1, v.P2, st.StrokeWeight, col)
		}
	case canvas.PointCmd:
		if col, ok := st.Stroke.Color(); ok {
			r := max(st.StrokeWeight, 1) / 2
			b.fillPolygon(circle(v.P, r, 12), col)
		}
	case canvas.Ellipse:
		b.shape(b.ellipsePoints(v), st)
	case canvas.Rect, canvas.Triangle, canvas.Quad:
		b.shape(canvas.Polygon(c), st)
	default:
		return fmt.Errorf("unsupported command %T", c)
	}
	return nil
}

// shape fills then outlines a closed polygon.
func (b *Backend) shape(pts []canvas.Point, st canvas.Style) {
	if col, ok := st.Fill.Color(); ok {
		b.fillPolygon(pts, col)
	}
	if col, ok := st.Stroke.Color(); ok && st.StrokeWeight > 0 {
		for i := range pts {
			b.strokeSegment(pts[i], pts[(i+1)%len(pts)], st.StrokeWeight, col)
		}
		if st.StrokeWeight > 2 {
			for _, p := range pts {
				b.fillPolygon(circle(p, st.StrokeWeight/2, 8), col)
			}
		}
	}
}

// strokeSegment draws a segment as a rectangle of the given weight.
func (b *Backend) strokeSegment(p1, p2 canvas.Point, weight float64, col canvas.Color) {
	if weight <= 0 {
		return
	}
	dx, dy := p2.X-p1.X, p2.Y-p1.Y
	length := math.Hypot(dx, dy)
	hw := weight / 2
	if length == 0 {
		b.fillPolygon(circle(p1, hw, 8), col)
		return
	}
	nx, ny := -dy/length*hw, dx/length*hw
	b.fillPolygon([]canvas.Point{
		{X: p1.X + nx, Y: p1.Y + ny},
		{X: p2.X + nx, Y: p2.Y + ny},
		{X: p2.X - nx, Y: p2.Y - ny},
		{X: p1.X - nx, Y: p1.Y - ny},
	}, col)
}

func (b *Backend) fillPolygon(pts []canvas.Point, col canvas.Color) {
	if len(pts) < 3 || col.A == 0 || !b.visible(pts) {
		return
	}
	bounds := b.img.Bounds()
	b.ras.Reset(bounds.Dx(), bounds.Dy())
	b.ras.DrawOp = draw.Over
	b.ras.MoveTo(clampCoord(pts[0].X), clampCoord(pts[0].Y))
	for _, p := range pts[1:] {
		b.ras.LineTo(clampCoord(p.X), clampCoord(p.Y))
	}
	b.ras.ClosePath()
	b.ras.Draw(b.img, bounds, image.NewUniform(col), image.Point{})
}

// visible reports whether the bounding box of pts touches the canvas.
func (b *Backend) visible(pts []canvas.Point) bool {
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, p := range pts {
		minX, maxX = min(minX, p.X), max(maxX, p.X)
		minY, maxY = min(minY, p.Y), max(maxY, p.Y)
	}
	bounds := b.img.Bounds()
	return maxX >= 0 && maxY >= 0 && minX <= float64(bounds.Dx()) && minY <= float64(bounds.Dy())
}

func (b *Backend) ellipsePoints(e canvas.Ellipse) []canvas.Point {
	pts := make([]canvas.Point, b.segments)
	for i := range pts {
		pts[i] = e.At(2 * math.Pi * float64(i) / float64(b.segments))
	}
	return pts
}

func circle(c canvas.Point, r float64, n int) []canvas.Point {
	pts := make([]canvas.Point, n)
	for i := range pts {
		s, co := math.Sincos(2 * math.Pi * float64(i) / float64(n))
		pts[i] = canvas.Point{X: c.X + r*co, Y: c.Y + r*s}
	}
	return pts
}

func clampCoord(v float64) float32 {
	return float32(min(max(v, -coordLimit), coordLimit))
}
