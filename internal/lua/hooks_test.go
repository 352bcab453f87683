package lua

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseHookType(t *testing.T) {
	tests := []struct {
		in      string
		want    HookType
		wantErr bool
	}{
		{"setup", HookSetup, false},
		{"draw", HookDraw, false},
		{"teardown", HookTeardown, false},
		{"main", HookInvalid, true},
		{"", HookInvalid, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseHookType(tt.in)
			assert.Equal(t, tt.want, got)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.in, got.String())
			}
		})
	}
}

func TestNewHookManagerNilRuntime(t *testing.T) {
	_, err := NewHookManager(nil)
	assert.ErrorIs(t, err, ErrNilRuntime)
}

func TestHookManagerDefaults(t *testing.T) {
	r := newTestRuntime(t)
	_, err := r.ExecuteString("s", `
		calls = 0
		function draw() calls = calls + 1 end
	`)
	require.NoError(t, err)

	hm, err := NewHookManager(r)
	require.NoError(t, err)

	assert.Equal(t, "setup", hm.FunctionName(HookSetup))
	assert.Equal(t, []HookType{HookDraw}, hm.DefinedHooks())

	_, err = hm.CallIfExists(HookSetup)
	require.NoError(t, err)
	_, err = hm.CallIfExists(HookDraw)
	require.NoError(t, err)

	n, _ := r.GetGlobal("calls").TryInt()
	assert.Equal(t, int64(1), n)
}

func TestHookManagerRegister(t *testing.T) {
	r := newTestRuntime(t)
	_, err := r.ExecuteString("s", `
		function my_draw() end
		not_a_function = 3
	`)
	require.NoError(t, err)

	hm, err := NewHookManager(r)
	require.NoError(t, err)

	require.NoError(t, hm.Register(HookDraw, "my_draw"))
	assert.Equal(t, "my_draw", hm.FunctionName(HookDraw))
	assert.True(t, hm.Defined(HookDraw))

	assert.ErrorIs(t, hm.Register(HookSetup, "missing"), ErrFunctionNotFound)
	assert.Error(t, hm.Register(HookSetup, "not_a_function"))
	assert.Equal(t, "setup", hm.FunctionName(HookSetup))
}

func TestHookManagerCallError(t *testing.T) {
	r := newTestRuntime(t)
	_, err := r.ExecuteString("s", `function draw() error("boom") end`)
	require.NoError(t, err)

	hm, err := NewHookManager(r)
	require.NoError(t, err)

	_, err = hm.CallIfExists(HookDraw)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "hook draw execution failed")
	assert.Contains(t, err.Error(), "boom")
}
