package config

import (
	"time"

	"github.com/opd-ai/go-sketch/internal/lua"
	"github.com/opd-ai/go-sketch/pkg/sketch"
)

// Default values for configuration options.
const (
	// DefaultWatchDebounce is the default quiet period before a reload.
	DefaultWatchDebounce = 100 * time.Millisecond
	// DefaultLogLevel is the default log level.
	DefaultLogLevel = "info"
	// DefaultLogFormat is the default log format.
	DefaultLogFormat = "text"
)

// DefaultConfig returns a Config with sensible default values.
func DefaultConfig() Config {
	rc := lua.DefaultConfig()
	return Config{
		Title:     sketch.DefaultTitle,
		Width:     sketch.DefaultWidth,
		Height:    sketch.DefaultHeight,
		FrameRate: sketch.DefaultFrameRate,
		Lua: LuaConfig{
			CPULimit:    rc.CPULimit,
			MemoryLimit: rc.MemoryLimit,
		},
		Log: LogConfig{
			Level:  DefaultLogLevel,
			Format: DefaultLogFormat,
		},
		WatchDebounce: DefaultWatchDebounce,
	}
}
