package profiling

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProfilerWritesProfiles(t *testing.T) {
	dir := t.TempDir()
	cfg := Config{
		CPUProfilePath: filepath.Join(dir, "cpu.prof"),
		MemProfilePath: filepath.Join(dir, "mem.prof"),
	}
	require.True(t, cfg.Enabled())

	p := New(cfg)
	require.NoError(t, p.Start())
	assert.True(t, p.IsRunning())
	assert.ErrorIs(t, p.Start(), ErrRunning)

	require.NoError(t, p.Stop())
	assert.False(t, p.IsRunning())
	assert.ErrorIs(t, p.Stop(), ErrNotRunning)

	for _, path := range []string{cfg.CPUProfilePath, cfg.MemProfilePath} {
		info, err := os.Stat(path)
		require.NoError(t, err)
		assert.Positive(t, info.Size())
	}
}

func TestProfilerDisabled(t *testing.T) {
	cfg := Config{}
	assert.False(t, cfg.Enabled())

	p := New(cfg)
	require.NoError(t, p.Start())
	require.NoError(t, p.Stop())
}

func TestProfilerBadPath(t *testing.T) {
	p := New(Config{CPUProfilePath: filepath.Join(t.TempDir(), "missing", "cpu.prof")})
	assert.Error(t, p.Start())
	assert.False(t, p.IsRunning())
}

func TestMount(t *testing.T) {
	r := chi.NewRouter()
	Mount(r)

	for _, path := range []string{"/debug/pprof/", "/debug/pprof/goroutine?debug=1", "/debug/pprof/cmdline"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code, path)
	}
}
