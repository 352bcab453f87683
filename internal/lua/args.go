package lua

import (
	"fmt"
	"math"

	rt "github.com/arnodel/golua/runtime"

	"github.com/opd-ai/go-sketch/pkg/canvas"
)

// getAllArgs returns all arguments including varargs.
func getAllArgs(c *rt.GoCont) []rt.Value {
	return append(c.Args(), c.Etc()...)
}

// getFloatArg gets a float argument from the combined args slice
func getFloatArg(args []rt.Value, idx int) (float64, error) {
	if idx >= len(args) {
		return 0, fmt.Errorf("argument %d out of range (have %d)", idx, len(args))
	}
	if f, ok := args[idx].TryFloat(); ok {
		return f, nil
	}
	if i, ok := args[idx].TryInt(); ok {
		return float64(i), nil
	}
	return 0, fmt.Errorf("argument %d is not a number", idx)
}

// getFloatArgs reads n leading numeric arguments.
func getFloatArgs(name string, args []rt.Value, n int) ([]float64, error) {
	vs := make([]float64, n)
	for i := range vs {
		v, err := getFloatArg(args, i)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		vs[i] = v
	}
	return vs, nil
}

// getStringArg gets a string argument from the combined args slice
func getStringArg(args []rt.Value, idx int) (string, error) {
	if idx >= len(args) {
		return "", fmt.Errorf("argument %d out of range (have %d)", idx, len(args))
	}
	if s, ok := args[idx].TryString(); ok {
		return s, nil
	}
	return "", fmt.Errorf("argument %d is not a string", idx)
}

// getColorArgs interprets color arguments the p5 way:
//
//	(gray) (gray, alpha) (r, g, b) (r, g, b, a)
//
// with channels in 0-255, or a single color string accepted by
// canvas.ParseColor.
func getColorArgs(args []rt.Value) (canvas.Color, error) {
	if len(args) == 1 && args[0].Type() == rt.StringType {
		s, _ := args[0].TryString()
		return canvas.ParseColor(s)
	}

	if len(args) == 0 || len(args) > 4 {
		return canvas.Color{}, fmt.Errorf("expected 1 to 4 color arguments, got %d", len(args))
	}
	vs := make([]uint8, len(args))
	for i := range args {
		f, err := getFloatArg(args, i)
		if err != nil {
			return canvas.Color{}, err
		}
		vs[i] = channel(f)
	}

	switch len(vs) {
	case 1:
		return canvas.Gray(vs[0]), nil
	case 2:
		return canvas.RGBA(vs[0], vs[0], vs[0], vs[1]), nil
	case 3:
		return canvas.RGB(vs[0], vs[1], vs[2]), nil
	default:
		return canvas.RGBA(vs[0], vs[1], vs[2], vs[3]), nil
	}
}

// channel clamps and rounds a 0-255 channel value.
func channel(f float64) uint8 {
	switch {
	case math.IsNaN(f) || f <= 0:
		return 0
	case f >= 255:
		return 255
	default:
		return uint8(math.Round(f))
	}
}
