// Package profiling captures CPU and heap profiles of a sketch run and
// exposes the live pprof endpoints on the debug router.
package profiling

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/pprof"
	"os"
	"runtime"
	rpprof "runtime/pprof"
	"sync"

	"github.com/go-chi/chi/v5"
)

var (
	// ErrRunning is returned by Start when a session is already active.
	ErrRunning = errors.New("profiler is already running")
	// ErrNotRunning is returned by Stop without a matching Start.
	ErrNotRunning = errors.New("profiler is not running")
)

// Config holds configuration for the profiler.
type Config struct {
	// CPUProfilePath is the file path for CPU profile output.
	// If empty, CPU profiling is disabled.
	CPUProfilePath string

	// MemProfilePath is the file the heap profile is written to on Stop.
	// If empty, memory profiling is disabled.
	MemProfilePath string
}

// Enabled returns true if any profile output is configured.
func (c Config) Enabled() bool {
	return c.CPUProfilePath != "" || c.MemProfilePath != ""
}

// Profiler records one profiling session around a run.
type Profiler struct {
	config  Config
	cpuFile *os.File
	running bool
	mu      sync.Mutex
}

// New creates a Profiler. Call Start to begin profiling.
func New(config Config) *Profiler {
	return &Profiler{config: config}
}

// Start begins CPU profiling if a CPU profile path was configured.
func (p *Profiler) Start() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.running {
		return ErrRunning
	}
	if p.config.CPUProfilePath != "" {
		f, err := os.Create(p.config.CPUProfilePath)
		if err != nil {
			return fmt.Errorf("failed to create CPU profile file: %w", err)
		}
		if err := rpprof.StartCPUProfile(f); err != nil {
			f.Close()
			return fmt.Errorf("failed to start CPU profile: %w", err)
		}
		p.cpuFile = f
	}
	p.running = true
	return nil
}

// Stop ends CPU profiling and writes the heap profile if configured.
func (p *Profiler) Stop() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.running {
		return ErrNotRunning
	}
	p.running = false

	var errs []error
	if p.cpuFile != nil {
		rpprof.StopCPUProfile()
		if err := p.cpuFile.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close CPU profile file: %w", err))
		}
		p.cpuFile = nil
	}
	if p.config.MemProfilePath != "" {
		if err := WriteHeapProfile(p.config.MemProfilePath); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// IsRunning returns true between Start and Stop.
func (p *Profiler) IsRunning() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.running
}

// WriteHeapProfile forces a garbage collection and writes a heap profile
// to path.
func WriteHeapProfile(path string) error {
	runtime.GC()

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create memory profile file: %w", err)
	}
	defer f.Close()

	if err := rpprof.WriteHeapProfile(f); err != nil {
		return fmt.Errorf("failed to write memory profile: %w", err)
	}
	return nil
}

// Mount registers the net/http/pprof handlers under /debug/pprof.
func Mount(r chi.Router) {
	r.Route("/debug/pprof", func(r chi.Router) {
		r.Get("/", pprof.Index)
		r.Get("/cmdline", pprof.Cmdline)
		r.Get("/profile", pprof.Profile)
		r.Get("/symbol", pprof.Symbol)
		r.Post("/symbol", pprof.Symbol)
		r.Get("/trace", pprof.Trace)
		r.Get("/{profile}", func(w http.ResponseWriter, req *http.Request) {
			pprof.Handler(chi.URLParam(req, "profile")).ServeHTTP(w, req)
		})
	})
}
