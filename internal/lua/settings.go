package lua

import (
	"fmt"

	rt "github.com/arnodel/golua/runtime"
	"github.com/mitchellh/mapstructure"

	"github.com/opd-ai/go-sketch/pkg/sketch"
)

// SettingsGlobal is the name of the optional table a script uses to size
// and title its canvas:
//
//	settings = { title = "waves", width = 640, height = 480, frame_rate = 30 }
const SettingsGlobal = "settings"

// Settings are the canvas options a script may declare. Zero values
// leave the corresponding option unchanged.
type Settings struct {
	Title       string  `mapstructure:"title"`
	Width       int     `mapstructure:"width"`
	Height      int     `mapstructure:"height"`
	FrameRate   float64 `mapstructure:"frame_rate"`
	MaxFrames   uint64  `mapstructure:"max_frames"`
	ResetMatrix *bool   `mapstructure:"reset_matrix"`
}

// Apply copies the non-zero settings onto opts.
func (s Settings) Apply(opts *sketch.Options) {
	if s.Title != "" {
		opts.Title = s.Title
	}
	if s.Width != 0 {
		opts.Width = s.Width
	}
	if s.Height != 0 {
		opts.Height = s.Height
	}
	if s.FrameRate != 0 {
		opts.FrameRate = s.FrameRate
	}
	if s.MaxFrames != 0 {
		opts.MaxFrames = s.MaxFrames
	}
	if s.ResetMatrix != nil {
		opts.ResetMatrix = *s.ResetMatrix
	}
}

// DecodeSettings decodes a settings map. Numbers given as strings are
// accepted; unknown keys are an error.
func DecodeSettings(raw map[string]interface{}) (Settings, error) {
	var s Settings
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &s,
		WeaklyTypedInput: true,
		ErrorUnused:      true,
	})
	if err != nil {
		return Settings{}, err
	}
	if err := dec.Decode(raw); err != nil {
		return Settings{}, fmt.Errorf("invalid %s table: %w", SettingsGlobal, err)
	}
	return s, nil
}

// readSettings decodes the settings global, if the script defines one.
func readSettings(r *Runtime) (Settings, error) {
	v := r.GetGlobal(SettingsGlobal)
	if v == rt.NilValue {
		return Settings{}, nil
	}
	tbl, ok := v.TryTable()
	if !ok {
		return Settings{}, fmt.Errorf("%s must be a table, got %v", SettingsGlobal, v.Type())
	}
	raw, err := tableToMap(tbl)
	if err != nil {
		return Settings{}, fmt.Errorf("invalid %s table: %w", SettingsGlobal, err)
	}
	return DecodeSettings(raw)
}

// tableToMap converts a Lua table with string keys into a Go map.
func tableToMap(tbl *rt.Table) (map[string]interface{}, error) {
	out := make(map[string]interface{})
	for k, v, ok := tbl.Next(rt.NilValue); ok && k != rt.NilValue; k, v, ok = tbl.Next(k) {
		key, isString := k.TryString()
		if !isString || k.Type() != rt.StringType {
			return nil, fmt.Errorf("non-string key of type %v", k.Type())
		}
		val, err := toGo(v)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", key, err)
		}
		out[key] = val
	}
	return out, nil
}

func toGo(v rt.Value) (interface{}, error) {
	switch v.Type() {
	case rt.StringType:
		s, _ := v.TryString()
		return s, nil
	case rt.IntType:
		i, _ := v.TryInt()
		return i, nil
	case rt.FloatType:
		f, _ := v.TryFloat()
		return f, nil
	case rt.BoolType:
		b, _ := v.TryBool()
		return b, nil
	case rt.TableType:
		t, _ := v.TryTable()
		return tableToMap(t)
	default:
		return nil, fmt.Errorf("unsupported value of type %v", v.Type())
	}
}
