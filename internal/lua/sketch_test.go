package lua

import (
	"context"
	"errors"
	"math"
	"sync"
	"testing"
	"time"

	rt "github.com/arnodel/golua/runtime"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opd-ai/go-sketch/pkg/canvas"
	"github.com/opd-ai/go-sketch/pkg/sketch"
)

// captureBackend keeps every flushed batch.
type captureBackend struct {
	mu            sync.Mutex
	width, height int
	title         string
	flushes       [][]canvas.Command
}

func (b *captureBackend) Initialize(w, h int) error {
	b.width, b.height = w, h
	return nil
}

func (b *captureBackend) Flush(cmds []canvas.Command) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.flushes = append(b.flushes, append([]canvas.Command(nil), cmds...))
	return nil
}

func (b *captureBackend) Present()          {}
func (b *captureBackend) SetTitle(t string) { b.title = t }

// instantClock never sleeps.
type instantClock struct{}

func (instantClock) Now() time.Time                                   { return time.Now() }
func (instantClock) Sleep(ctx context.Context, d time.Duration) error { return ctx.Err() }

func loadTestSketch(t *testing.T, code string) *Sketch {
	t.Helper()
	cfg := DefaultSketchConfig()
	cfg.Runtime.Stdout = nil
	s, err := LoadString("test.lua", code, cfg)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func runTestSketch(t *testing.T, s sketch.Sketch, frames uint64) (*captureBackend, *sketch.Engine, error) {
	t.Helper()
	backend := &captureBackend{}
	opts := sketch.DefaultOptions()
	opts.MaxFrames = frames
	opts.Clock = instantClock{}
	e, err := sketch.New(backend, opts)
	require.NoError(t, err)
	return backend, e, e.Run(context.Background(), s)
}

func TestSketchRunsSetupAndDraw(t *testing.T) {
	s := loadTestSketch(t, `
		settings = { title = "squares", width = 200, height = 100, reset_matrix = true }

		function setup()
			background(30)
			no_stroke()
		end

		function draw()
			fill(255, 0, 0)
			translate(10, 0)
			rect(0, 0, 5, 5)
		end
	`)

	backend, e, err := runTestSketch(t, s, 3)
	require.NoError(t, err)

	assert.Equal(t, 200, backend.width)
	assert.Equal(t, 100, backend.height)
	assert.Equal(t, "squares", backend.title)
	assert.Equal(t, uint64(3), e.Status().FrameCount)

	require.Len(t, backend.flushes, 4)
	require.Len(t, backend.flushes[0], 1)
	assert.Equal(t, canvas.Background{Color: canvas.Gray(30), Width: 200, Height: 100}, backend.flushes[0][0])

	for _, batch := range backend.flushes[1:] {
		require.Len(t, batch, 1)
		r, ok := batch[0].(canvas.Rect)
		require.True(t, ok)
		assert.Equal(t, canvas.Point{X: 10, Y: 0}, r.Corners[0])
		assert.Equal(t, canvas.Point{X: 15, Y: 5}, r.Corners[2])
		assert.Equal(t, canvas.Solid(canvas.RGB(255, 0, 0)), r.S.Fill)
		assert.False(t, r.S.Stroke.Enabled())
	}
}

func TestSketchEnvironmentFunctions(t *testing.T) {
	s := loadTestSketch(t, `
		seen = {}
		function draw()
			seen[#seen + 1] = frame_count()
			assert(width() == 400 and height() == 400)
			assert(frame_rate() == 60)
			assert(millis() >= 0 and delta_time() >= 0)
			if frame_count() == 2 then halt() end
		end
	`)

	_, e, err := runTestSketch(t, s, 10)
	require.NoError(t, err)
	assert.Equal(t, uint64(2), e.Status().FrameCount)

	tbl, ok := s.runtime.GetGlobal("seen").TryTable()
	require.True(t, ok)
	n, _ := tbl.Get(rt.IntValue(2)).TryInt()
	assert.Equal(t, int64(2), n)
}

func TestSketchRecoversGeometryErrors(t *testing.T) {
	s := loadTestSketch(t, `
		function draw()
			line(0/0, 0, 10, 10)
			pop()
			point(1, 2)
		end
	`)

	backend, e, err := runTestSketch(t, s, 2)
	require.NoError(t, err)

	for _, batch := range backend.flushes[1:] {
		require.Len(t, batch, 1)
		assert.Equal(t, canvas.KindPoint, batch[0].Kind())
	}
	stats := e.Diagnostics().Stats()
	assert.Equal(t, int64(2), stats.TotalByKind[sketch.DiagnosticGeometry])
	assert.Equal(t, int64(2), stats.TotalByKind[sketch.DiagnosticTransformStack])
}

func TestSketchRejectsInvalidTransforms(t *testing.T) {
	s := loadTestSketch(t, `
		function setup()
			translate(0/0, 0)
			stroke_weight(-2)
			scale(1/0)
		end
		function draw()
			line(0, 0, 1, 1)
		end
	`)

	backend, e, err := runTestSketch(t, s, 3)
	require.NoError(t, err)

	for _, batch := range backend.flushes[1:] {
		require.Len(t, batch, 1)
		line := batch[0].(canvas.Line)
		assert.Equal(t, canvas.Point{X: 1, Y: 1}, line.P2)
		assert.Equal(t, canvas.DefaultStrokeWeight, line.S.StrokeWeight)
	}
	assert.Equal(t, int64(3), e.Diagnostics().Stats().TotalByKind[sketch.DiagnosticGeometry])
}

func TestSketchDrawErrorStopsRun(t *testing.T) {
	s := loadTestSketch(t, `
		function draw()
			if frame_count() == 2 then error("broken") end
		end
	`)

	_, _, err := runTestSketch(t, s, 5)
	var de *sketch.DrawError
	require.True(t, errors.As(err, &de))
	assert.Equal(t, uint64(2), de.Frame)
	assert.Contains(t, err.Error(), "broken")
}

func TestSketchBadArgumentIsLuaError(t *testing.T) {
	s := loadTestSketch(t, `
		function setup() rect(1, 2, "wide", 4) end
	`)

	_, _, err := runTestSketch(t, s, 1)
	var se *sketch.SetupError
	require.True(t, errors.As(err, &se))
	assert.Contains(t, err.Error(), "rect")
}

func TestSketchFrameRateControl(t *testing.T) {
	s := loadTestSketch(t, `
		function setup() frame_rate(30) end
		function draw() end
	`)

	_, e, err := runTestSketch(t, s, 1)
	require.NoError(t, err)
	assert.Equal(t, 30.0, e.Status().FrameRate)
}

func TestLoadStringErrors(t *testing.T) {
	tests := []struct {
		name    string
		code    string
		target  error
		message string
	}{
		{"no lifecycle", `x = 1`, ErrNoLifecycle, ""},
		{"drawing at top level", `rect(0, 0, 1, 1)`, nil, ErrNoFrame.Error()},
		{"syntax error", `function draw(`, nil, "test.lua"},
		{"unknown setting", `settings = { colour = "red" } function draw() end`, nil, "invalid settings table"},
		{"settings not a table", `settings = 3 function draw() end`, nil, "settings must be a table"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultSketchConfig()
			cfg.Runtime.Stdout = nil
			_, err := LoadString("test.lua", tt.code, cfg)
			require.Error(t, err)
			if tt.target != nil {
				assert.ErrorIs(t, err, tt.target)
			}
			if tt.message != "" {
				assert.Contains(t, err.Error(), tt.message)
			}
		})
	}
}

func TestLoadStringCustomHookNames(t *testing.T) {
	cfg := DefaultSketchConfig()
	cfg.Runtime.Stdout = nil
	cfg.DrawFunction = "render"
	s, err := LoadString("test.lua", `function render() point(1, 1) end`, cfg)
	require.NoError(t, err)
	defer s.Close()

	backend, _, err := runTestSketch(t, s, 1)
	require.NoError(t, err)
	require.Len(t, backend.flushes, 2)
	assert.Len(t, backend.flushes[1], 1)

	cfg.DrawFunction = "missing"
	_, err = LoadString("test.lua", `function render() end`, cfg)
	assert.ErrorIs(t, err, ErrFunctionNotFound)
}

func TestSketchSettings(t *testing.T) {
	s := loadTestSketch(t, `
		settings = { width = "320", height = 240, frame_rate = 24.5, max_frames = 9, reset_matrix = false }
		function draw() end
	`)

	got := s.Settings()
	assert.Equal(t, 320, got.Width)
	assert.Equal(t, 240, got.Height)
	assert.Equal(t, 24.5, got.FrameRate)
	assert.Equal(t, uint64(9), got.MaxFrames)
	require.NotNil(t, got.ResetMatrix)
	assert.False(t, *got.ResetMatrix)

	opts := sketch.DefaultOptions()
	opts.ResetMatrix = true
	s.Configure(&opts)
	assert.Equal(t, 320, opts.Width)
	assert.Equal(t, sketch.DefaultTitle, opts.Title)
	assert.False(t, opts.ResetMatrix)
}

func TestSketchTeardownOnClose(t *testing.T) {
	cfg := DefaultSketchConfig()
	cfg.Runtime.Stdout = nil
	s, err := LoadString("test.lua", `
		function draw() end
		function teardown() print("bye") end
	`, cfg)
	require.NoError(t, err)

	require.NoError(t, s.Close())
	assert.Equal(t, "bye\n", s.Output())
}

func TestGetColorArgs(t *testing.T) {
	num := func(vs ...float64) []rt.Value {
		out := make([]rt.Value, len(vs))
		for i, v := range vs {
			out[i] = rt.FloatValue(v)
		}
		return out
	}

	tests := []struct {
		name    string
		args    []rt.Value
		want    canvas.Color
		wantErr bool
	}{
		{"gray", num(128), canvas.Gray(128), false},
		{"gray alpha", num(10, 20), canvas.RGBA(10, 10, 10, 20), false},
		{"rgb", num(1, 2, 3), canvas.RGB(1, 2, 3), false},
		{"rgba", num(1, 2, 3, 4), canvas.RGBA(1, 2, 3, 4), false},
		{"clamped", num(-5, 300, 127.6), canvas.RGB(0, 255, 128), false},
		{"nan", num(math.NaN()), canvas.Gray(0), false},
		{"integers", []rt.Value{rt.IntValue(7)}, canvas.Gray(7), false},
		{"named", []rt.Value{rt.StringValue("navy")}, canvas.RGB(0, 0, 128), false},
		{"hex", []rt.Value{rt.StringValue("#ff000080")}, canvas.RGBA(255, 0, 0, 128), false},
		{"bad string", []rt.Value{rt.StringValue("nope")}, canvas.Color{}, true},
		{"none", nil, canvas.Color{}, true},
		{"too many", num(1, 2, 3, 4, 5), canvas.Color{}, true},
		{"wrong type", []rt.Value{rt.FloatValue(1), rt.BoolValue(true)}, canvas.Color{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := getColorArgs(tt.args)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
