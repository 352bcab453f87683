package config

import (
	"log/slog"
	"os"

	"github.com/opd-ai/go-sketch/internal/lua"
	"github.com/opd-ai/go-sketch/pkg/sketch"
)

// Apply copies the canvas and loop settings onto opts.
func (c *Config) Apply(opts *sketch.Options) {
	opts.Title = c.Title
	opts.Width = c.Width
	opts.Height = c.Height
	opts.FrameRate = c.FrameRate
	opts.MaxFrames = c.MaxFrames
	opts.ResetMatrix = c.ResetMatrix
}

// LuaConfig returns the script loader configuration.
func (c *Config) LuaConfig(logger sketch.Logger) lua.Config {
	rc := lua.DefaultConfig()
	rc.CPULimit = c.Lua.CPULimit
	rc.MemoryLimit = c.Lua.MemoryLimit
	return lua.Config{
		Runtime:       rc,
		Logger:        logger,
		SetupFunction: c.Lua.SetupFunction,
		DrawFunction:  c.Lua.DrawFunction,
	}
}

// Logger builds the logger selected by the log section, writing to stderr.
func (c *Config) Logger() sketch.Logger {
	level := slog.LevelInfo
	switch c.Log.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	return sketch.NewLogger(os.Stderr, level, sketch.LogFormat(c.Log.Format))
}
