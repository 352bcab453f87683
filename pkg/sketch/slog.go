package sketch

import (
	"io"
	"log/slog"
	"os"
)

// LogFormat selects the record encoding of NewLogger.
type LogFormat string

const (
	LogText LogFormat = "text"
	LogJSON LogFormat = "json"
)

// SlogAdapter wraps a *slog.Logger to implement the Logger interface.
//
// Example:
//
//	opts := sketch.DefaultOptions()
//	opts.Logger = sketch.NewSlogAdapter(slog.New(handler))
type SlogAdapter struct {
	logger *slog.Logger
}

// NewSlogAdapter creates a Logger adapter from a *slog.Logger.
// If logger is nil, slog.Default() is used.
func NewSlogAdapter(logger *slog.Logger) *SlogAdapter {
	if logger == nil {
		logger = slog.Default()
	}
	return &SlogAdapter{logger: logger}
}

func (s *SlogAdapter) Debug(msg string, args ...any) { s.logger.Debug(msg, args...) }
func (s *SlogAdapter) Info(msg string, args ...any)  { s.logger.Info(msg, args...) }
func (s *SlogAdapter) Warn(msg string, args ...any)  { s.logger.Warn(msg, args...) }
func (s *SlogAdapter) Error(msg string, args ...any) { s.logger.Error(msg, args...) }

// NewLogger returns a Logger writing text or JSON records at level to w
// (stderr when w is nil). Debug loggers include source locations.
func NewLogger(w io.Writer, level slog.Level, format LogFormat) Logger {
	if w == nil {
		w = os.Stderr
	}
	opts := &slog.HandlerOptions{Level: level, AddSource: level <= slog.LevelDebug}
	if format == LogJSON {
		return NewSlogAdapter(slog.New(slog.NewJSONHandler(w, opts)))
	}
	return NewSlogAdapter(slog.New(slog.NewTextHandler(w, opts)))
}

// WithSketch tags every record of l with the sketch title. Loggers other
// than *SlogAdapter are returned unchanged.
func WithSketch(l Logger, title string) Logger {
	if s, ok := l.(*SlogAdapter); ok && title != "" {
		return &SlogAdapter{logger: s.logger.With("sketch", title)}
	}
	return l
}

// NopLogger returns a Logger that discards all log messages.
func NopLogger() Logger {
	return nopLogger{}
}

type nopLogger struct{}

func (nopLogger) Debug(msg string, args ...any) {}
func (nopLogger) Info(msg string, args ...any)  {}
func (nopLogger) Warn(msg string, args ...any)  {}
func (nopLogger) Error(msg string, args ...any) {}
