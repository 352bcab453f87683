package config

import (
	"testing"
	"testing/fstest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opd-ai/go-sketch/pkg/sketch"
)

func TestParseOverridesDefaults(t *testing.T) {
	cfg, err := Parse([]byte(`
title: waves
width: 640
frame_rate: 30
max_frames: 120
reset_matrix: true
lua:
  cpu_limit: 5000
  draw_function: render
log:
  format: json
watch: true
watch_debounce: 250ms
debug_addr: 127.0.0.1:6060
snapshot: out.png
`))
	require.NoError(t, err)

	assert.Equal(t, "waves", cfg.Title)
	assert.Equal(t, 640, cfg.Width)
	assert.Equal(t, sketch.DefaultHeight, cfg.Height)
	assert.Equal(t, 30.0, cfg.FrameRate)
	assert.Equal(t, uint64(120), cfg.MaxFrames)
	assert.True(t, cfg.ResetMatrix)
	assert.Equal(t, uint64(5000), cfg.Lua.CPULimit)
	assert.Equal(t, DefaultConfig().Lua.MemoryLimit, cfg.Lua.MemoryLimit)
	assert.Equal(t, "render", cfg.Lua.DrawFunction)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, DefaultLogLevel, cfg.Log.Level)
	assert.True(t, cfg.Watch)
	assert.Equal(t, 250*time.Millisecond, cfg.WatchDebounce)
	assert.Equal(t, "127.0.0.1:6060", cfg.DebugAddr)
	assert.Equal(t, "out.png", cfg.Snapshot)
	assert.True(t, Validate(cfg).IsValid())
}

func TestParseEmptyIsDefault(t *testing.T) {
	cfg, err := Parse(nil)
	require.NoError(t, err)
	want := DefaultConfig()
	assert.Equal(t, &want, cfg)
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		in   string
	}{
		{"malformed yaml", "width: [1, 2"},
		{"unknown key", "colour: red"},
		{"wrong type", "width: wide"},
		{"bad duration", "watch_debounce: soon"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.in))
			assert.ErrorIs(t, err, ErrInvalidConfig)
		})
	}
}

func TestParseExpandsEnv(t *testing.T) {
	t.Setenv("SKETCH_TEST_TITLE", "from env")
	t.Setenv("SKETCH_TEST_FPS", "")

	cfg, err := Parse([]byte(`
title: ${SKETCH_TEST_TITLE}
frame_rate: ${SKETCH_TEST_FPS:-24}
`))
	require.NoError(t, err)
	assert.Equal(t, "from env", cfg.Title)
	assert.Equal(t, 24.0, cfg.FrameRate)
}

func TestExpandEnv(t *testing.T) {
	t.Setenv("SKETCH_TEST_VAR", "value")

	tests := []struct {
		in, want string
	}{
		{"plain", "plain"},
		{"a ${SKETCH_TEST_VAR} b", "a value b"},
		{"a $SKETCH_TEST_VAR b", "a value b"},
		{"${SKETCH_UNSET_12345}", ""},
		{"${SKETCH_UNSET_12345:-fallback}", "fallback"},
		{"${SKETCH_TEST_VAR:-fallback}", "value"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ExpandEnv(tt.in), tt.in)
	}
}

func TestParseFromFS(t *testing.T) {
	fsys := fstest.MapFS{"run.yaml": {Data: []byte("height: 90\n")}}

	cfg, err := ParseFromFS(fsys, "run.yaml")
	require.NoError(t, err)
	assert.Equal(t, 90, cfg.Height)

	_, err = ParseFromFS(fsys, "missing.yaml")
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		field   string
		warning bool
	}{
		{"zero width", func(c *Config) { c.Width = 0 }, "width", false},
		{"huge height", func(c *Config) { c.Height = maxDimension + 1 }, "height", false},
		{"zero frame rate", func(c *Config) { c.FrameRate = 0 }, "frame_rate", false},
		{"negative debounce", func(c *Config) { c.WatchDebounce = -time.Second }, "watch_debounce", false},
		{"bad debug addr", func(c *Config) { c.DebugAddr = "6060" }, "debug_addr", false},
		{"snapshot not png", func(c *Config) { c.Snapshot = "out.jpg" }, "snapshot", false},
		{"bad draw function", func(c *Config) { c.Lua.DrawFunction = "2draw" }, "lua.draw_function", false},
		{"bad log level", func(c *Config) { c.Log.Level = "loud" }, "log.level", false},
		{"bad log format", func(c *Config) { c.Log.Format = "xml" }, "log.format", false},
		{"high frame rate", func(c *Config) { c.FrameRate = 500 }, "frame_rate", true},
		{"no cpu limit", func(c *Config) { c.Lua.CPULimit = 0 }, "lua.cpu_limit", true},
		{"endless headless", func(c *Config) { c.Headless = true }, "max_frames", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			result := Validate(&cfg)

			if tt.warning {
				assert.True(t, result.IsValid())
				require.Len(t, result.Warnings, 1)
				assert.Equal(t, tt.field, result.Warnings[0].Field)
				return
			}
			require.Len(t, result.Errors, 1)
			assert.Equal(t, tt.field, result.Errors[0].Field)
			assert.ErrorIs(t, result.Error(), ErrInvalidConfig)
		})
	}
}

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := DefaultConfig()
	result := Validate(&cfg)
	assert.True(t, result.IsValid())
	assert.Empty(t, result.Warnings)
	assert.NoError(t, result.Error())
}

func TestApply(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Title = "applied"
	cfg.Width, cfg.Height = 10, 20
	cfg.FrameRate = 12
	cfg.MaxFrames = 3
	cfg.ResetMatrix = true

	opts := sketch.DefaultOptions()
	cfg.Apply(&opts)
	assert.Equal(t, "applied", opts.Title)
	assert.Equal(t, 10, opts.Width)
	assert.Equal(t, 20, opts.Height)
	assert.Equal(t, 12.0, opts.FrameRate)
	assert.Equal(t, uint64(3), opts.MaxFrames)
	assert.True(t, opts.ResetMatrix)
	require.NoError(t, opts.Validate())
}

func TestLuaConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Lua.CPULimit = 7
	cfg.Lua.SetupFunction = "init"

	lc := cfg.LuaConfig(sketch.NopLogger())
	assert.Equal(t, uint64(7), lc.Runtime.CPULimit)
	assert.Equal(t, cfg.Lua.MemoryLimit, lc.Runtime.MemoryLimit)
	assert.Equal(t, "init", lc.SetupFunction)
	assert.NotNil(t, lc.Logger)
}

func TestMarshalRoundTrip(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Title = "round trip"
	cfg.WatchDebounce = time.Second

	out, err := Marshal(&cfg)
	require.NoError(t, err)

	back, err := Parse(out)
	require.NoError(t, err)
	assert.Equal(t, &cfg, back)
}
