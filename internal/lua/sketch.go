package lua

import (
	"fmt"
	"io/fs"
	"os"

	"github.com/opd-ai/go-sketch/pkg/sketch"
)

// Config configures how a script is loaded.
type Config struct {
	Runtime RuntimeConfig
	Logger  sketch.Logger
	// SetupFunction and DrawFunction override the global function names
	// used for the lifecycle hooks. Empty means "setup" and "draw".
	SetupFunction string
	DrawFunction  string
}

// DefaultSketchConfig returns a Config with the default runtime limits.
func DefaultSketchConfig() Config {
	return Config{
		Runtime: DefaultConfig(),
		Logger:  sketch.NopLogger(),
	}
}

// Sketch adapts a Lua script to sketch.Sketch. It also implements
// sketch.Configurer, applying the script's settings table.
//
// A script without a draw function renders its setup output once and
// then idles until the run is stopped.
type Sketch struct {
	name     string
	runtime  *Runtime
	bindings *Bindings
	hooks    *HookManager
	settings Settings
	logger   sketch.Logger
}

// Load reads and prepares the script at path.
func Load(path string, cfg Config) (*Sketch, error) {
	code, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read sketch %s: %w", path, err)
	}
	return LoadString(path, string(code), cfg)
}

// LoadFS reads and prepares a script from fsys.
func LoadFS(fsys fs.FS, path string, cfg Config) (*Sketch, error) {
	code, err := fs.ReadFile(fsys, path)
	if err != nil {
		return nil, fmt.Errorf("failed to read sketch from FS %s: %w", path, err)
	}
	return LoadString(path, string(code), cfg)
}

// LoadString compiles and runs the top level of a script, then resolves
// its lifecycle functions and settings.
func LoadString(name, code string, cfg Config) (*Sketch, error) {
	if cfg.Logger == nil {
		cfg.Logger = sketch.NopLogger()
	}

	runtime, err := New(cfg.Runtime)
	if err != nil {
		return nil, err
	}
	s, err := newSketch(name, code, runtime, cfg)
	if err != nil {
		runtime.Close()
		return nil, err
	}
	return s, nil
}

func newSketch(name, code string, runtime *Runtime, cfg Config) (*Sketch, error) {
	bindings, err := NewBindings(runtime)
	if err != nil {
		return nil, err
	}
	if _, err := runtime.ExecuteString(name, code); err != nil {
		return nil, err
	}

	hooks, err := NewHookManager(runtime)
	if err != nil {
		return nil, err
	}
	if cfg.SetupFunction != "" {
		if err := hooks.Register(HookSetup, cfg.SetupFunction); err != nil {
			return nil, err
		}
	}
	if cfg.DrawFunction != "" {
		if err := hooks.Register(HookDraw, cfg.DrawFunction); err != nil {
			return nil, err
		}
	}
	if !hooks.Defined(HookSetup) && !hooks.Defined(HookDraw) {
		return nil, fmt.Errorf("%s: %w", name, ErrNoLifecycle)
	}

	settings, err := readSettings(runtime)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}

	cfg.Logger.Debug("lua sketch loaded", "name", name, "hooks", hooks.DefinedHooks())
	return &Sketch{
		name:     name,
		runtime:  runtime,
		bindings: bindings,
		hooks:    hooks,
		settings: settings,
		logger:   cfg.Logger,
	}, nil
}

// Name returns the script name given to Load.
func (s *Sketch) Name() string { return s.name }

// Settings returns the decoded settings table.
func (s *Sketch) Settings() Settings { return s.settings }

// Output returns everything the script has printed.
func (s *Sketch) Output() string { return s.runtime.Output() }

// Configure applies the script's settings to opts.
func (s *Sketch) Configure(opts *sketch.Options) {
	s.settings.Apply(opts)
}

// Setup calls the script's setup function, if any.
func (s *Sketch) Setup(f *sketch.Frame) error {
	return s.call(HookSetup, f)
}

// Draw calls the script's draw function, if any.
func (s *Sketch) Draw(f *sketch.Frame) error {
	return s.call(HookDraw, f)
}

func (s *Sketch) call(h HookType, f *sketch.Frame) error {
	s.bindings.Bind(f)
	defer s.bindings.Unbind()
	_, err := s.hooks.CallIfExists(h)
	return err
}

// Close runs the script's teardown function, if any, and releases the
// runtime.
func (s *Sketch) Close() error {
	_, err := s.hooks.CallIfExists(HookTeardown)
	if err != nil {
		s.logger.Warn("lua teardown failed", "name", s.name, "error", err)
	}
	if cerr := s.runtime.Close(); cerr != nil && err == nil {
		err = cerr
	}
	return err
}
