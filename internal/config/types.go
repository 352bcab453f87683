// Package config loads sketchrun run files. A run file is YAML:
//
//	title: waves
//	width: 640
//	height: 480
//	frame_rate: 30
//	lua:
//	  cpu_limit: 5000000
//	watch: true
//	debug_addr: 127.0.0.1:6060
//
// String values may reference environment variables as ${VAR},
// ${VAR:-default} or $VAR.
package config

import "time"

// Config is a complete run configuration.
type Config struct {
	// Title is the window title.
	Title string `mapstructure:"title" yaml:"title"`
	// Width and Height are the canvas size in pixels.
	Width  int `mapstructure:"width" yaml:"width"`
	Height int `mapstructure:"height" yaml:"height"`
	// FrameRate is the target frames per second.
	FrameRate float64 `mapstructure:"frame_rate" yaml:"frame_rate"`
	// MaxFrames stops the run after that many frames. 0 means unlimited.
	MaxFrames uint64 `mapstructure:"max_frames" yaml:"max_frames"`
	// ResetMatrix resets the transform before every frame.
	ResetMatrix bool `mapstructure:"reset_matrix" yaml:"reset_matrix"`
	// Headless renders without a window.
	Headless bool `mapstructure:"headless" yaml:"headless"`

	Lua LuaConfig `mapstructure:"lua" yaml:"lua"`
	Log LogConfig `mapstructure:"log" yaml:"log"`

	// Watch reloads the script when it changes on disk.
	Watch bool `mapstructure:"watch" yaml:"watch"`
	// WatchDebounce is how long to wait after the last change before
	// reloading.
	WatchDebounce time.Duration `mapstructure:"watch_debounce" yaml:"watch_debounce"`

	// DebugAddr is the listen address of the debug HTTP server.
	// Empty disables it.
	DebugAddr string `mapstructure:"debug_addr" yaml:"debug_addr"`

	// Snapshot is a PNG path the last frame is written to on exit.
	Snapshot string `mapstructure:"snapshot" yaml:"snapshot"`
}

// LuaConfig limits and names the script's lifecycle functions.
type LuaConfig struct {
	CPULimit      uint64 `mapstructure:"cpu_limit" yaml:"cpu_limit"`
	MemoryLimit   uint64 `mapstructure:"memory_limit" yaml:"memory_limit"`
	SetupFunction string `mapstructure:"setup_function" yaml:"setup_function"`
	DrawFunction  string `mapstructure:"draw_function" yaml:"draw_function"`
}

// LogConfig selects the log level and format.
type LogConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `mapstructure:"level" yaml:"level"`
	// Format is text or json.
	Format string `mapstructure:"format" yaml:"format"`
}
