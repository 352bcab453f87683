package debugserver

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opd-ai/go-sketch/pkg/canvas"
	"github.com/opd-ai/go-sketch/pkg/sketch"
)

type nullBackend struct{}

func (nullBackend) Initialize(w, h int) error         { return nil }
func (nullBackend) Flush(cmds []canvas.Command) error { return nil }
func (nullBackend) Present()                          {}

type instantClock struct{}

func (instantClock) Now() time.Time                                   { return time.Now() }
func (instantClock) Sleep(ctx context.Context, d time.Duration) error { return ctx.Err() }

// finishedEngine runs three frames, each with one rejected line.
func finishedEngine(t *testing.T) *sketch.Engine {
	t.Helper()
	opts := sketch.DefaultOptions()
	opts.Title = "debug"
	opts.MaxFrames = 3
	opts.Clock = instantClock{}
	e, err := sketch.New(nullBackend{}, opts)
	require.NoError(t, err)

	err = e.Run(context.Background(), sketch.Funcs{
		DrawFunc: func(f *sketch.Frame) error {
			_ = f.Line(math.NaN(), 0, 1, 1)
			return f.Point(1, 1)
		},
	})
	require.NoError(t, err)
	return e
}

func get(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestMetricsEndpoint(t *testing.T) {
	e := finishedEngine(t)
	h := NewHandler(Config{Source: e, Metrics: e.Metrics(), Diagnostics: e.Diagnostics()})

	rec := get(t, h, "/metrics")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "sketch_frames_total 3")
	assert.Contains(t, body, `sketch_diagnostics_total{kind="geometry"} 3`)
	assert.Contains(t, body, "sketch_draw_duration_seconds_bucket")
}

func TestStatusEndpoint(t *testing.T) {
	e := finishedEngine(t)
	h := NewHandler(Config{Source: e, Metrics: e.Metrics()})

	rec := get(t, h, "/status")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var resp statusResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "stopped", resp.Phase)
	assert.Equal(t, "debug", resp.Title)
	assert.Equal(t, uint64(3), resp.FrameCount)
	assert.Equal(t, int64(3), resp.Diagnostics)
	assert.Equal(t, int64(3), resp.Metrics.Frames)
	assert.Empty(t, resp.LastError)
}

func TestHealthEndpoint(t *testing.T) {
	e := finishedEngine(t)
	h := NewHandler(Config{Source: e})

	rec := get(t, h, "/healthz")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	var resp healthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, sketch.HealthUnhealthy, resp.Status)
	assert.Equal(t, sketch.HealthUnhealthy, resp.Components["engine"].Status)
}

type staticSource struct {
	health sketch.HealthCheck
}

func (s staticSource) Status() sketch.Status      { return sketch.Status{Phase: sketch.PhaseLooping} }
func (s staticSource) Health() sketch.HealthCheck { return s.health }

func TestHealthEndpointDegradedIsOK(t *testing.T) {
	h := NewHandler(Config{Source: staticSource{health: sketch.HealthCheck{Status: sketch.HealthDegraded}}})
	assert.Equal(t, http.StatusOK, get(t, h, "/healthz").Code)
}

func TestDiagnosticsEndpoint(t *testing.T) {
	e := finishedEngine(t)
	h := NewHandler(Config{Source: e, Diagnostics: e.Diagnostics()})

	rec := get(t, h, "/diagnostics?limit=2")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp []diagnosticResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp, 2)
	assert.Equal(t, "geometry", resp[1].Kind)
	assert.Equal(t, "line", resp[1].Op)
	assert.Equal(t, uint64(3), resp[1].Frame)
	assert.NotEmpty(t, resp[1].Error)

	assert.Equal(t, http.StatusBadRequest, get(t, h, "/diagnostics?limit=x").Code)
	assert.Equal(t, http.StatusNotFound, get(t, NewHandler(Config{Source: e}), "/diagnostics").Code)
}

func TestSnapshotEndpoint(t *testing.T) {
	src := staticSource{}
	h := NewHandler(Config{Source: src, Snapshot: func(w io.Writer) error {
		_, err := io.WriteString(w, "png")
		return err
	}})
	rec := get(t, h, "/snapshot.png")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
	assert.Equal(t, "png", rec.Body.String())

	h = NewHandler(Config{Source: src, Snapshot: func(io.Writer) error { return errors.New("no frame yet") }})
	assert.Equal(t, http.StatusServiceUnavailable, get(t, h, "/snapshot.png").Code)

	assert.Equal(t, http.StatusNotFound, get(t, NewHandler(Config{Source: src}), "/snapshot.png").Code)
}

func TestStartAndShutdown(t *testing.T) {
	e := finishedEngine(t)
	s, err := Start("127.0.0.1:0", Config{Source: e, Metrics: e.Metrics()})
	require.NoError(t, err)

	resp, err := http.Get("http://" + s.Addr() + "/metrics")
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(body), "sketch_frames_total"))

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, s.Shutdown(ctx))
}
