package lua

import (
	"fmt"
	"sync"

	rt "github.com/arnodel/golua/runtime"
)

// HookType identifies a sketch lifecycle function defined by a script.
type HookType int

const (
	// HookInvalid is returned by ParseHookType when parsing fails.
	HookInvalid HookType = iota

	// HookSetup runs once before the first frame.
	HookSetup

	// HookDraw runs once per frame.
	HookDraw

	// HookTeardown runs when the sketch is closed, after the last frame.
	// Drawing functions are unavailable there.
	HookTeardown
)

// String returns the string representation of a HookType.
func (h HookType) String() string {
	switch h {
	case HookSetup:
		return "setup"
	case HookDraw:
		return "draw"
	case HookTeardown:
		return "teardown"
	case HookInvalid:
		return "invalid"
	default:
		return "unknown"
	}
}

// ParseHookType parses a string into a HookType.
func ParseHookType(s string) (HookType, error) {
	switch s {
	case "setup":
		return HookSetup, nil
	case "draw":
		return HookDraw, nil
	case "teardown":
		return HookTeardown, nil
	default:
		return HookInvalid, fmt.Errorf("unknown hook type: %s", s)
	}
}

// HookManager maps lifecycle hooks to global Lua functions.
// By default each hook resolves to the global of the same name; Register
// binds a hook to a differently named function.
type HookManager struct {
	runtime *Runtime
	hooks   map[HookType]string
	mu      sync.RWMutex
}

// NewHookManager creates a new HookManager for the given runtime.
func NewHookManager(runtime *Runtime) (*HookManager, error) {
	if runtime == nil {
		return nil, ErrNilRuntime
	}
	return &HookManager{
		runtime: runtime,
		hooks:   make(map[HookType]string),
	}, nil
}

// Register binds hookType to the global function funcName. The function
// must already be defined.
func (hm *HookManager) Register(hookType HookType, funcName string) error {
	fn := hm.runtime.GetGlobal(funcName)
	if fn == rt.NilValue {
		return fmt.Errorf("%w: %s", ErrFunctionNotFound, funcName)
	}
	if fn.Type() != rt.FunctionType {
		return fmt.Errorf("%s is not a function (type: %v)", funcName, fn.Type())
	}

	hm.mu.Lock()
	hm.hooks[hookType] = funcName
	hm.mu.Unlock()
	return nil
}

// FunctionName returns the Lua function name hookType resolves to.
func (hm *HookManager) FunctionName(hookType HookType) string {
	hm.mu.RLock()
	defer hm.mu.RUnlock()
	if name, ok := hm.hooks[hookType]; ok {
		return name
	}
	return hookType.String()
}

// Defined reports whether the script defines a function for hookType.
func (hm *HookManager) Defined(hookType HookType) bool {
	return hm.runtime.HasFunction(hm.FunctionName(hookType))
}

// CallIfExists invokes the hook if the script defines it. A missing hook
// is not an error.
func (hm *HookManager) CallIfExists(hookType HookType, args ...rt.Value) (rt.Value, error) {
	name := hm.FunctionName(hookType)
	if !hm.runtime.HasFunction(name) {
		return rt.NilValue, nil
	}
	result, err := hm.runtime.CallFunction(name, args...)
	if err != nil {
		return rt.NilValue, fmt.Errorf("hook %s execution failed: %w", hookType, err)
	}
	return result, nil
}

// DefinedHooks returns the hooks the script defines, in lifecycle order.
func (hm *HookManager) DefinedHooks() []HookType {
	var found []HookType
	for _, h := range []HookType{HookSetup, HookDraw, HookTeardown} {
		if hm.Defined(h) {
			found = append(found, h)
		}
	}
	return found
}
