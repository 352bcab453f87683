// Package debugserver serves a running sketch's metrics, status and
// health over HTTP:
//
//	GET /metrics           Prometheus exposition
//	GET /status            engine status as JSON
//	GET /healthz           health check; 503 unless ok or degraded
//	GET /diagnostics       recent recovered drawing errors (?limit=n)
//	GET /snapshot.png      the last presented frame, when available
//	GET /debug/pprof/...   runtime profiles
package debugserver

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/opd-ai/go-sketch/internal/profiling"
	"github.com/opd-ai/go-sketch/pkg/sketch"
)

// DefaultDiagnosticsLimit is the number of diagnostics /diagnostics
// returns without a limit parameter.
const DefaultDiagnosticsLimit = 50

// Source reports the state of the current run. It may switch engines
// between calls, e.g. across hot reloads.
type Source interface {
	Status() sketch.Status
	Health() sketch.HealthCheck
}

// Config wires the handler to a run.
type Config struct {
	Source      Source
	Metrics     *sketch.Metrics
	Diagnostics *sketch.Diagnostics
	// Snapshot writes the last presented frame as PNG. Optional.
	Snapshot func(io.Writer) error
	Logger   sketch.Logger
}

// statusResponse is the JSON form of sketch.Status.
type statusResponse struct {
	Phase       string                 `json:"phase"`
	Title       string                 `json:"title"`
	Width       int                    `json:"width"`
	Height      int                    `json:"height"`
	FrameCount  uint64                 `json:"frame_count"`
	FrameRate   float64                `json:"frame_rate"`
	StartTime   time.Time              `json:"start_time,omitempty"`
	Uptime      string                 `json:"uptime,omitempty"`
	LastError   string                 `json:"last_error,omitempty"`
	Diagnostics int64                  `json:"diagnostics"`
	Metrics     sketch.MetricsSnapshot `json:"metrics"`
}

type healthResponse struct {
	Status     sketch.HealthStatus          `json:"status"`
	Timestamp  time.Time                    `json:"timestamp"`
	Uptime     string                       `json:"uptime"`
	Message    string                       `json:"message,omitempty"`
	Components map[string]componentResponse `json:"components"`
}

type componentResponse struct {
	Status  sketch.HealthStatus `json:"status"`
	Message string              `json:"message,omitempty"`
}

type diagnosticResponse struct {
	Kind      string    `json:"kind"`
	Op        string    `json:"op"`
	Frame     uint64    `json:"frame"`
	Error     string    `json:"error"`
	Timestamp time.Time `json:"timestamp"`
}

// NewHandler returns the debug router for cfg.
func NewHandler(cfg Config) http.Handler {
	if cfg.Logger == nil {
		cfg.Logger = sketch.NopLogger()
	}
	h := &handler{cfg: cfg}

	r := chi.NewRouter()
	if cfg.Metrics != nil {
		r.Handle("/metrics", promhttp.HandlerFor(cfg.Metrics.Registry(), promhttp.HandlerOpts{}))
	}
	r.Get("/status", h.status)
	r.Get("/healthz", h.health)
	r.Get("/diagnostics", h.diagnostics)
	r.Get("/snapshot.png", h.snapshot)
	profiling.Mount(r)
	return r
}

type handler struct {
	cfg Config
}

func (h *handler) status(w http.ResponseWriter, r *http.Request) {
	st := h.cfg.Source.Status()
	resp := statusResponse{
		Phase:       st.Phase.String(),
		Title:       st.Title,
		Width:       st.Width,
		Height:      st.Height,
		FrameCount:  st.FrameCount,
		FrameRate:   st.FrameRate,
		StartTime:   st.StartTime,
		Diagnostics: st.Diagnostics,
	}
	if !st.StartTime.IsZero() {
		resp.Uptime = time.Since(st.StartTime).Round(time.Millisecond).String()
	}
	if st.LastError != nil {
		resp.LastError = st.LastError.Error()
	}
	if h.cfg.Metrics != nil {
		resp.Metrics = h.cfg.Metrics.Snapshot()
	}
	h.writeJSON(w, http.StatusOK, resp)
}

func (h *handler) health(w http.ResponseWriter, r *http.Request) {
	hc := h.cfg.Source.Health()
	resp := healthResponse{
		Status:     hc.Status,
		Timestamp:  hc.Timestamp,
		Uptime:     hc.Uptime.Round(time.Millisecond).String(),
		Message:    hc.Message,
		Components: make(map[string]componentResponse, len(hc.Components)),
	}
	for name, c := range hc.Components {
		resp.Components[name] = componentResponse{Status: c.Status, Message: c.Message}
	}

	code := http.StatusOK
	if hc.Status == sketch.HealthUnhealthy {
		code = http.StatusServiceUnavailable
	}
	h.writeJSON(w, code, resp)
}

func (h *handler) diagnostics(w http.ResponseWriter, r *http.Request) {
	if h.cfg.Diagnostics == nil {
		http.Error(w, "diagnostics not available", http.StatusNotFound)
		return
	}
	limit := DefaultDiagnosticsLimit
	if s := r.URL.Query().Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n <= 0 {
			http.Error(w, "limit must be a positive integer", http.StatusBadRequest)
			return
		}
		limit = n
	}

	recent := h.cfg.Diagnostics.Recent(limit)
	out := make([]diagnosticResponse, 0, len(recent))
	for _, d := range recent {
		out = append(out, diagnosticResponse{
			Kind:      d.Kind.String(),
			Op:        d.Op,
			Frame:     d.Frame,
			Error:     errString(d.Err),
			Timestamp: d.Timestamp,
		})
	}
	h.writeJSON(w, http.StatusOK, out)
}

func (h *handler) snapshot(w http.ResponseWriter, r *http.Request) {
	if h.cfg.Snapshot == nil {
		http.Error(w, "snapshots not available", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	if err := h.cfg.Snapshot(w); err != nil {
		h.cfg.Logger.Warn("snapshot failed", "error", err)
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
	}
}

func (h *handler) writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.cfg.Logger.Warn("debug response encode failed", "error", err)
	}
}

// Server is a running debug HTTP server.
type Server struct {
	srv    *http.Server
	ln     net.Listener
	done   chan struct{}
	logger sketch.Logger
}

// Start listens on addr and serves NewHandler(cfg) in the background.
func Start(addr string, cfg Config) (*Server, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}
	if cfg.Logger == nil {
		cfg.Logger = sketch.NopLogger()
	}

	s := &Server{
		srv: &http.Server{
			Handler:           NewHandler(cfg),
			ReadHeaderTimeout: 5 * time.Second,
		},
		ln:     ln,
		done:   make(chan struct{}),
		logger: cfg.Logger,
	}
	go func() {
		defer close(s.done)
		if err := s.srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("debug server failed", "error", err)
		}
	}()
	s.logger.Info("debug server listening", "addr", ln.Addr().String())
	return s, nil
}

// Addr returns the address the server listens on.
func (s *Server) Addr() string {
	return s.ln.Addr().String()
}

// Shutdown stops the server, waiting for active requests until ctx is done.
func (s *Server) Shutdown(ctx context.Context) error {
	err := s.srv.Shutdown(ctx)
	<-s.done
	return err
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
