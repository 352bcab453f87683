// Package lua runs sketches written in Lua. Scripts define global setup
// and draw functions and call p5-style drawing functions (background,
// fill, rect, translate, ...) that are bound to the engine's Frame.
package lua

import (
	"bytes"
	"fmt"
	"io"
	"io/fs"
	"os"
	"sync"

	"github.com/arnodel/golua/lib"
	rt "github.com/arnodel/golua/runtime"
)

// RuntimeConfig contains configuration options for the Lua runtime.
type RuntimeConfig struct {
	// CPULimit is the CPU instruction limit for each top-level call, so a
	// runaway draw function fails instead of freezing the sketch.
	// 0 means unlimited.
	CPULimit uint64
	// MemoryLimit is the maximum memory in bytes that Lua can allocate
	// per call. 0 means unlimited.
	MemoryLimit uint64
	// Stdout is the writer for Lua print output.
	// If nil, output is only captured.
	Stdout io.Writer
}

// DefaultConfig returns a RuntimeConfig with sensible default values.
// CPU limit: 10,000,000 instructions
// Memory limit: 50 MB
func DefaultConfig() RuntimeConfig {
	return RuntimeConfig{
		CPULimit:    10_000_000,
		MemoryLimit: 50 * 1024 * 1024,
		Stdout:      os.Stdout,
	}
}

// Runtime wraps a Golua runtime with resource limits.
type Runtime struct {
	config  RuntimeConfig
	runtime *rt.Runtime
	output  *bytes.Buffer
	cleanup func()
	mu      sync.RWMutex
}

// New creates a runtime with the Lua standard libraries loaded.
func New(config RuntimeConfig) (*Runtime, error) {
	output := &bytes.Buffer{}
	var stdout io.Writer = output
	if config.Stdout != nil {
		stdout = io.MultiWriter(config.Stdout, output)
	}

	runtime := rt.New(stdout)
	cleanup := lib.LoadAll(runtime)

	return &Runtime{
		config:  config,
		runtime: runtime,
		output:  output,
		cleanup: cleanup,
	}, nil
}

// LoadString compiles a Lua chunk.
func (r *Runtime) LoadString(name, code string) (*rt.Closure, error) {
	return r.load(name, []byte(code))
}

// LoadFile reads and compiles a Lua file from disk.
func (r *Runtime) LoadFile(path string) (*rt.Closure, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read Lua file %s: %w", path, err)
	}
	return r.load(path, content)
}

// LoadFileFromFS reads and compiles a Lua file from fsys.
func (r *Runtime) LoadFileFromFS(fsys fs.FS, path string) (*rt.Closure, error) {
	content, err := fs.ReadFile(fsys, path)
	if err != nil {
		return nil, fmt.Errorf("failed to read Lua file from FS %s: %w", path, err)
	}
	return r.load(path, content)
}

func (r *Runtime) load(name string, code []byte) (*rt.Closure, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	closure, err := r.runtime.CompileAndLoadLuaChunk(name, code, rt.TableValue(r.runtime.GlobalEnv()))
	if err != nil {
		return nil, fmt.Errorf("failed to load Lua chunk %s: %w", name, err)
	}
	return closure, nil
}

// Execute runs a compiled chunk within the resource limits.
func (r *Runtime) Execute(closure *rt.Closure) (rt.Value, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	result, err := r.call(rt.FunctionValue(closure))
	if err != nil {
		return rt.NilValue, fmt.Errorf("Lua execution error: %w", err)
	}
	return result, nil
}

// ExecuteString compiles and executes a Lua chunk.
func (r *Runtime) ExecuteString(name, code string) (rt.Value, error) {
	closure, err := r.LoadString(name, code)
	if err != nil {
		return rt.NilValue, err
	}
	return r.Execute(closure)
}

// GetGlobal retrieves a global variable from the Lua environment.
func (r *Runtime) GetGlobal(name string) rt.Value {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.runtime.GlobalEnv().Get(rt.StringValue(name))
}

// SetGlobal sets a global variable in the Lua environment.
func (r *Runtime) SetGlobal(name string, value rt.Value) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.runtime.GlobalEnv().Set(rt.StringValue(name), value)
}

// SetGoFunction registers a Go function as a Lua global. The function is
// declared compliant with the memory and CPU limits.
func (r *Runtime) SetGoFunction(name string, fn rt.GoFunctionFunc, nArgs int, hasVarArgs bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	goFunc := rt.NewGoFunction(fn, name, nArgs, hasVarArgs)
	rt.SolemnlyDeclareCompliance(rt.ComplyMemSafe|rt.ComplyCpuSafe, goFunc)
	r.runtime.GlobalEnv().Set(rt.StringValue(name), rt.FunctionValue(goFunc))
}

// HasFunction reports whether the global name holds a function.
func (r *Runtime) HasFunction(name string) bool {
	return r.GetGlobal(name).Type() == rt.FunctionType
}

// CallFunction calls a global Lua function within fresh resource limits.
func (r *Runtime) CallFunction(name string, args ...rt.Value) (rt.Value, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	fn := r.runtime.GlobalEnv().Get(rt.StringValue(name))
	if fn == rt.NilValue {
		return rt.NilValue, fmt.Errorf("%w: %s", ErrFunctionNotFound, name)
	}

	result, err := r.call(fn, args...)
	if err != nil {
		return rt.NilValue, fmt.Errorf("failed to call function %s: %w", name, err)
	}
	return result, nil
}

// call runs fn under fresh hard limits. golua panics when a limit is
// exceeded; the panic is turned into an ErrLimitExceeded error.
func (r *Runtime) call(fn rt.Value, args ...rt.Value) (result rt.Value, err error) {
	r.runtime.PushContext(rt.RuntimeContextDef{
		HardLimits: rt.RuntimeResources{
			Cpu:    r.config.CPULimit,
			Memory: r.config.MemoryLimit,
		},
	})
	defer r.runtime.PopContext()
	defer func() {
		if p := recover(); p != nil {
			result, err = rt.NilValue, fmt.Errorf("%w: %v", ErrLimitExceeded, p)
		}
	}()

	return rt.Call1(r.runtime.MainThread(), fn, args...)
}

// Output returns the captured output from Lua print statements.
func (r *Runtime) Output() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.output.String()
}

// ClearOutput clears the captured output buffer.
func (r *Runtime) ClearOutput() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.output.Reset()
}

// Close releases resources associated with the runtime.
func (r *Runtime) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.cleanup != nil {
		r.cleanup()
		r.cleanup = nil
	}
	return nil
}
