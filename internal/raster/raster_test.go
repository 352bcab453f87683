package raster

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opd-ai/go-sketch/pkg/canvas"
)

type recordingPresenter struct {
	presented int
	width     int
	height    int
	title     string
	last      color.RGBA
	closed    bool
}

func (p *recordingPresenter) Present(img *image.RGBA) {
	p.presented++
	p.last = img.RGBAAt(0, 0)
}

func (p *recordingPresenter) Resize(w, h int)       { p.width, p.height = w, h }
func (p *recordingPresenter) SetTitle(title string) { p.title = title }
func (p *recordingPresenter) Close() error          { p.closed = true; return nil }

func assertNear(t *testing.T, want canvas.Color, got color.RGBA) {
	t.Helper()
	assert.InDelta(t, want.R, got.R, 2, "red")
	assert.InDelta(t, want.G, got.G, 2, "green")
	assert.InDelta(t, want.B, got.B, 2, "blue")
	assert.InDelta(t, want.A, got.A, 2, "alpha")
}

func newState(t *testing.T) *canvas.State {
	t.Helper()
	s, err := canvas.NewState(40, 40)
	require.NoError(t, err)
	return s
}

func flush(t *testing.T, b *Backend, cmds ...canvas.Command) *image.RGBA {
	t.Helper()
	require.NoError(t, b.Flush(cmds))
	return b.Snapshot()
}

func newBackend(t *testing.T) *Backend {
	t.Helper()
	b := New(Config{})
	require.NoError(t, b.Initialize(40, 40))
	return b
}

func TestFlushBeforeInitialize(t *testing.T) {
	b := New(Config{})
	assert.ErrorIs(t, b.Flush(nil), ErrNotInitialized)
	assert.Nil(t, b.Snapshot())
	assert.ErrorIs(t, b.WritePNG(&bytes.Buffer{}), ErrNotInitialized)
}

func TestInitializeRejectsBadSize(t *testing.T) {
	assert.Error(t, New(Config{}).Initialize(0, 10))
}

func TestBackgroundAndFilledRect(t *testing.T) {
	b := newBackend(t)
	s := newState(t)
	s.SetFill(canvas.RGB(255, 0, 0))
	s.NoStroke()
	r, err := s.Rect(10, 10, 10, 10)
	require.NoError(t, err)

	img := flush(t, b, s.Background(canvas.Black), r)
	assertNear(t, canvas.RGB(255, 0, 0), img.RGBAAt(15, 15))
	assertNear(t, canvas.Black, img.RGBAAt(5, 5))
	assertNear(t, canvas.Black, img.RGBAAt(25, 25))
}

func TestStrokeOnlyRect(t *testing.T) {
	b := newBackend(t)
	s := newState(t)
	s.NoFill()
	s.SetStroke(canvas.White)
	s.SetStrokeWeight(2)
	r, err := s.Rect(10, 10, 20, 20)
	require.NoError(t, err)

	img := flush(t, b, s.Background(canvas.Black), r)
	assertNear(t, canvas.White, img.RGBAAt(10, 20))
	assertNear(t, canvas.Black, img.RGBAAt(20, 20))
}

func TestEllipse(t *testing.T) {
	b := newBackend(t)
	s := newState(t)
	s.SetFill(canvas.RGB(0, 0, 255))
	s.NoStroke()
	e, err := s.Ellipse(20, 20, 10, 5)
	require.NoError(t, err)

	img := flush(t, b, s.Background(canvas.Black), e)
	assertNear(t, canvas.RGB(0, 0, 255), img.RGBAAt(20, 20))
	assertNear(t, canvas.RGB(0, 0, 255), img.RGBAAt(27, 20))
	assertNear(t, canvas.Black, img.RGBAAt(20, 28))
}

func TestLineAndPoint(t *testing.T) {
	b := newBackend(t)
	s := newState(t)
	s.SetStroke(canvas.RGB(0, 255, 0))
	s.SetStrokeWeight(2)
	l, err := s.Line(0, 10, 40, 10)
	require.NoError(t, err)
	s.SetStrokeWeight(4)
	p, err := s.Point(30, 30)
	require.NoError(t, err)

	img := flush(t, b, s.Background(canvas.Black), l, p)
	assertNear(t, canvas.RGB(0, 255, 0), img.RGBAAt(20, 9))
	assertNear(t, canvas.RGB(0, 255, 0), img.RGBAAt(30, 30))
	assertNear(t, canvas.Black, img.RGBAAt(20, 20))
}

func TestNoStrokeLineDrawsNothing(t *testing.T) {
	b := newBackend(t)
	s := newState(t)
	s.NoStroke()
	l, err := s.Line(0, 10, 40, 10)
	require.NoError(t, err)

	img := flush(t, b, s.Background(canvas.Black), l)
	assertNear(t, canvas.Black, img.RGBAAt(20, 10))
}

func TestOffscreenShapesAreSkipped(t *testing.T) {
	b := newBackend(t)
	s := newState(t)
	s.Translate(1e9, -1e9)
	r, err := s.Rect(0, 0, 10, 10)
	require.NoError(t, err)

	img := flush(t, b, s.Background(canvas.Black), r)
	assertNear(t, canvas.Black, img.RGBAAt(0, 0))
}

func TestPolygonsAndAlpha(t *testing.T) {
	b := newBackend(t)
	s := newState(t)
	s.NoStroke()
	s.SetFill(canvas.RGB(255, 255, 0))
	tri, err := s.Triangle(0, 0, 40, 0, 0, 40)
	require.NoError(t, err)
	s.SetFill(canvas.RGBA(0, 0, 0, 0))
	q, err := s.Quad(0, 0, 40, 0, 40, 40, 0, 40)
	require.NoError(t, err)

	img := flush(t, b, s.Background(canvas.Black), tri, q)
	assertNear(t, canvas.RGB(255, 255, 0), img.RGBAAt(5, 5))
	assertNear(t, canvas.Black, img.RGBAAt(35, 35))
}

func TestPresenterHooks(t *testing.T) {
	p := &recordingPresenter{}
	b := New(Config{Presenter: p})
	b.SetTitle("waves")
	require.NoError(t, b.Initialize(30, 20))
	assert.Equal(t, 30, p.width)
	assert.Equal(t, 20, p.height)
	assert.Equal(t, "waves", p.title)

	s, err := canvas.NewState(30, 20)
	require.NoError(t, err)
	require.NoError(t, b.Flush([]canvas.Command{s.Background(canvas.White)}))
	b.Present()
	b.Present()

	assert.Equal(t, 2, p.presented)
	assert.Equal(t, uint64(2), b.Frames())
	assert.Equal(t, color.RGBA{R: 255, G: 255, B: 255, A: 255}, p.last)

	require.NoError(t, b.Close())
	assert.True(t, p.closed)
}

func TestWritePNG(t *testing.T) {
	b := newBackend(t)
	s := newState(t)
	require.NoError(t, b.Flush([]canvas.Command{s.Background(canvas.RGB(1, 2, 3))}))

	var buf bytes.Buffer
	require.NoError(t, b.WritePNG(&buf))
	img, err := png.Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 40, 40), img.Bounds())

	path := t.TempDir() + "/frame.png"
	require.NoError(t, b.SavePNG(path))
}

func TestSnapshotIsACopy(t *testing.T) {
	b := newBackend(t)
	s := newState(t)
	require.NoError(t, b.Flush([]canvas.Command{s.Background(canvas.White)}))

	snap := b.Snapshot()
	require.NoError(t, b.Flush([]canvas.Command{s.Background(canvas.Black)}))
	assertNear(t, canvas.White, snap.RGBAAt(0, 0))
}
