package lua

import (
	"fmt"
	"math"
	"strings"

	rt "github.com/arnodel/golua/runtime"

	"github.com/opd-ai/go-sketch/pkg/canvas"
	"github.com/opd-ai/go-sketch/pkg/sketch"
)

// Bindings exposes the sketch drawing API to Lua as global functions.
// The functions act on the Frame bound with Bind; between lifecycle calls
// no frame is bound and every drawing function raises ErrNoFrame.
//
// Invalid coordinates and unmatched pops are not Lua errors: the frame
// drops the call and records a diagnostic, and the script keeps running.
// Wrong argument types are Lua errors.
type Bindings struct {
	runtime *Runtime
	frame   *sketch.Frame
}

// NewBindings registers the drawing functions and constants in runtime.
func NewBindings(runtime *Runtime) (*Bindings, error) {
	if runtime == nil {
		return nil, ErrNilRuntime
	}
	b := &Bindings{runtime: runtime}
	b.registerFunctions()
	b.registerConstants()
	return b, nil
}

// Bind makes f the target of drawing calls until Unbind.
func (b *Bindings) Bind(f *sketch.Frame) { b.frame = f }

// Unbind detaches the current frame.
func (b *Bindings) Unbind() { b.frame = nil }

func (b *Bindings) registerFunctions() {
	// Style
	b.runtime.SetGoFunction("background", b.background, 1, true)
	b.runtime.SetGoFunction("fill", b.fill, 1, true)
	b.runtime.SetGoFunction("stroke", b.stroke, 1, true)
	b.runtime.SetGoFunction("no_fill", b.noFill, 0, false)
	b.runtime.SetGoFunction("no_stroke", b.noStroke, 0, false)
	b.runtime.SetGoFunction("stroke_weight", b.strokeWeight, 1, false)
	b.runtime.SetGoFunction("rect_mode", b.rectMode, 1, false)

	// Primitives
	b.runtime.SetGoFunction("line", b.primitive("line", 4, func(f *sketch.Frame, v []float64) error {
		return f.Line(v[0], v[1], v[2], v[3])
	}), 4, false)
	b.runtime.SetGoFunction("rect", b.primitive("rect", 4, func(f *sketch.Frame, v []float64) error {
		return f.Rect(v[0], v[1], v[2], v[3])
	}), 4, false)
	b.runtime.SetGoFunction("ellipse", b.primitive("ellipse", 4, func(f *sketch.Frame, v []float64) error {
		return f.Ellipse(v[0], v[1], v[2], v[3])
	}), 4, false)
	b.runtime.SetGoFunction("circle", b.primitive("circle", 3, func(f *sketch.Frame, v []float64) error {
		return f.Circle(v[0], v[1], v[2])
	}), 3, false)
	b.runtime.SetGoFunction("point", b.primitive("point", 2, func(f *sketch.Frame, v []float64) error {
		return f.Point(v[0], v[1])
	}), 2, false)
	b.runtime.SetGoFunction("triangle", b.primitive("triangle", 6, func(f *sketch.Frame, v []float64) error {
		return f.Triangle(v[0], v[1], v[2], v[3], v[4], v[5])
	}), 6, false)
	b.runtime.SetGoFunction("quad", b.primitive("quad", 8, func(f *sketch.Frame, v []float64) error {
		return f.Quad(v[0], v[1], v[2], v[3], v[4], v[5], v[6], v[7])
	}), 8, false)

	// Transforms
	b.runtime.SetGoFunction("push", b.push, 0, false)
	b.runtime.SetGoFunction("pop", b.pop, 0, false)
	b.runtime.SetGoFunction("reset_matrix", b.resetMatrix, 0, false)
	b.runtime.SetGoFunction("translate", b.primitive("translate", 2, func(f *sketch.Frame, v []float64) error {
		return f.Translate(v[0], v[1])
	}), 2, false)
	b.runtime.SetGoFunction("rotate", b.primitive("rotate", 1, func(f *sketch.Frame, v []float64) error {
		return f.Rotate(v[0])
	}), 1, false)
	b.runtime.SetGoFunction("scale", b.scale, 1, true)
	b.runtime.SetGoFunction("shear_x", b.primitive("shear_x", 1, func(f *sketch.Frame, v []float64) error {
		return f.ShearX(v[0])
	}), 1, false)
	b.runtime.SetGoFunction("shear_y", b.primitive("shear_y", 1, func(f *sketch.Frame, v []float64) error {
		return f.ShearY(v[0])
	}), 1, false)
	b.runtime.SetGoFunction("apply_matrix", b.primitive("apply_matrix", 6, func(f *sketch.Frame, v []float64) error {
		return f.ApplyMatrix(v[0], v[1], v[2], v[3], v[4], v[5])
	}), 6, false)

	// Timing and environment
	b.runtime.SetGoFunction("frame_count", b.frameCount, 0, false)
	b.runtime.SetGoFunction("frame_rate", b.frameRate, 1, true)
	b.runtime.SetGoFunction("millis", b.millis, 0, false)
	b.runtime.SetGoFunction("delta_time", b.deltaTime, 0, false)
	b.runtime.SetGoFunction("width", b.width, 0, false)
	b.runtime.SetGoFunction("height", b.height, 0, false)
	b.runtime.SetGoFunction("halt", b.halt, 0, false)
}

func (b *Bindings) registerConstants() {
	b.runtime.SetGlobal("PI", rt.FloatValue(math.Pi))
	b.runtime.SetGlobal("TWO_PI", rt.FloatValue(2*math.Pi))
	b.runtime.SetGlobal("HALF_PI", rt.FloatValue(math.Pi/2))
	b.runtime.SetGlobal("QUARTER_PI", rt.FloatValue(math.Pi/4))

	for _, m := range []canvas.RectMode{canvas.RectCorner, canvas.RectCorners, canvas.RectCenter, canvas.RectRadius} {
		name := m.String()
		b.runtime.SetGlobal(strings.ToUpper(name), rt.StringValue(name))
	}
}

// current returns the bound frame or a Lua error naming the caller.
func (b *Bindings) current(name string) (*sketch.Frame, error) {
	if b.frame == nil {
		return nil, fmt.Errorf("%s: %w", name, ErrNoFrame)
	}
	return b.frame, nil
}

// primitive wraps a function taking n numbers. Errors returned by the
// frame are already recorded as diagnostics and are not raised in Lua.
func (b *Bindings) primitive(name string, n int, fn func(*sketch.Frame, []float64) error) rt.GoFunctionFunc {
	return func(t *rt.Thread, c *rt.GoCont) (rt.Cont, error) {
		f, err := b.current(name)
		if err != nil {
			return nil, err
		}
		v, err := getFloatArgs(name, getAllArgs(c), n)
		if err != nil {
			return nil, err
		}
		_ = fn(f, v)
		return c.Next(), nil
	}
}

// --- Style ---

func (b *Bindings) background(t *rt.Thread, c *rt.GoCont) (rt.Cont, error) {
	f, err := b.current("background")
	if err != nil {
		return nil, err
	}
	col, err := getColorArgs(getAllArgs(c))
	if err != nil {
		return nil, fmt.Errorf("background: %w", err)
	}
	_ = f.Background(col)
	return c.Next(), nil
}

func (b *Bindings) fill(t *rt.Thread, c *rt.GoCont) (rt.Cont, error) {
	f, err := b.current("fill")
	if err != nil {
		return nil, err
	}
	col, err := getColorArgs(getAllArgs(c))
	if err != nil {
		return nil, fmt.Errorf("fill: %w", err)
	}
	f.Fill(col)
	return c.Next(), nil
}

func (b *Bindings) stroke(t *rt.Thread, c *rt.GoCont) (rt.Cont, error) {
	f, err := b.current("stroke")
	if err != nil {
		return nil, err
	}
	col, err := getColorArgs(getAllArgs(c))
	if err != nil {
		return nil, fmt.Errorf("stroke: %w", err)
	}
	f.Stroke(col)
	return c.Next(), nil
}

func (b *Bindings) noFill(t *rt.Thread, c *rt.GoCont) (rt.Cont, error) {
	f, err := b.current("no_fill")
	if err != nil {
		return nil, err
	}
	f.NoFill()
	return c.Next(), nil
}

func (b *Bindings) noStroke(t *rt.Thread, c *rt.GoCont) (rt.Cont, error) {
	f, err := b.current("no_stroke")
	if err != nil {
		return nil, err
	}
	f.NoStroke()
	return c.Next(), nil
}

func (b *Bindings) strokeWeight(t *rt.Thread, c *rt.GoCont) (rt.Cont, error) {
	f, err := b.current("stroke_weight")
	if err != nil {
		return nil, err
	}
	w, err := getFloatArg(getAllArgs(c), 0)
	if err != nil {
		return nil, fmt.Errorf("stroke_weight: %w", err)
	}
	_ = f.StrokeWeight(w)
	return c.Next(), nil
}

// rectMode handles rect_mode(CORNER|CORNERS|CENTER|RADIUS).
func (b *Bindings) rectMode(t *rt.Thread, c *rt.GoCont) (rt.Cont, error) {
	f, err := b.current("rect_mode")
	if err != nil {
		return nil, err
	}
	s, err := getStringArg(getAllArgs(c), 0)
	if err != nil {
		return nil, fmt.Errorf("rect_mode: %w", err)
	}
	m, err := canvas.ParseRectMode(s)
	if err != nil {
		return nil, fmt.Errorf("rect_mode: %w", err)
	}
	f.RectMode(m)
	return c.Next(), nil
}

// --- Transforms ---

func (b *Bindings) push(t *rt.Thread, c *rt.GoCont) (rt.Cont, error) {
	f, err := b.current("push")
	if err != nil {
		return nil, err
	}
	f.Push()
	return c.Next(), nil
}

func (b *Bindings) pop(t *rt.Thread, c *rt.GoCont) (rt.Cont, error) {
	f, err := b.current("pop")
	if err != nil {
		return nil, err
	}
	_ = f.Pop()
	return c.Next(), nil
}

func (b *Bindings) resetMatrix(t *rt.Thread, c *rt.GoCont) (rt.Cont, error) {
	f, err := b.current("reset_matrix")
	if err != nil {
		return nil, err
	}
	f.ResetMatrix()
	return c.Next(), nil
}

// scale handles scale(s) and scale(sx, sy).
func (b *Bindings) scale(t *rt.Thread, c *rt.GoCont) (rt.Cont, error) {
	f, err := b.current("scale")
	if err != nil {
		return nil, err
	}
	args := getAllArgs(c)
	sx, err := getFloatArg(args, 0)
	if err != nil {
		return nil, fmt.Errorf("scale: %w", err)
	}
	sy := sx
	if len(args) > 1 {
		if sy, err = getFloatArg(args, 1); err != nil {
			return nil, fmt.Errorf("scale: %w", err)
		}
	}
	_ = f.Scale(sx, sy)
	return c.Next(), nil
}

// --- Timing and environment ---

func (b *Bindings) frameCount(t *rt.Thread, c *rt.GoCont) (rt.Cont, error) {
	f, err := b.current("frame_count")
	if err != nil {
		return nil, err
	}
	return c.PushingNext1(t.Runtime, rt.IntValue(int64(f.FrameCount()))), nil
}

// frameRate handles frame_rate() which returns the target rate, and
// frame_rate(fps) which changes it.
func (b *Bindings) frameRate(t *rt.Thread, c *rt.GoCont) (rt.Cont, error) {
	f, err := b.current("frame_rate")
	if err != nil {
		return nil, err
	}
	args := getAllArgs(c)
	if len(args) == 0 || args[0] == rt.NilValue {
		return c.PushingNext1(t.Runtime, rt.FloatValue(f.FrameRate())), nil
	}
	fps, err := getFloatArg(args, 0)
	if err != nil {
		return nil, fmt.Errorf("frame_rate: %w", err)
	}
	_ = f.SetFrameRate(fps)
	return c.Next(), nil
}

func (b *Bindings) millis(t *rt.Thread, c *rt.GoCont) (rt.Cont, error) {
	f, err := b.current("millis")
	if err != nil {
		return nil, err
	}
	return c.PushingNext1(t.Runtime, rt.IntValue(f.Millis())), nil
}

// deltaTime returns the milliseconds since the previous frame.
func (b *Bindings) deltaTime(t *rt.Thread, c *rt.GoCont) (rt.Cont, error) {
	f, err := b.current("delta_time")
	if err != nil {
		return nil, err
	}
	ms := float64(f.DeltaTime().Microseconds()) / 1000
	return c.PushingNext1(t.Runtime, rt.FloatValue(ms)), nil
}

func (b *Bindings) width(t *rt.Thread, c *rt.GoCont) (rt.Cont, error) {
	f, err := b.current("width")
	if err != nil {
		return nil, err
	}
	return c.PushingNext1(t.Runtime, rt.IntValue(int64(f.Width()))), nil
}

func (b *Bindings) height(t *rt.Thread, c *rt.GoCont) (rt.Cont, error) {
	f, err := b.current("height")
	if err != nil {
		return nil, err
	}
	return c.PushingNext1(t.Runtime, rt.IntValue(int64(f.Height()))), nil
}

func (b *Bindings) halt(t *rt.Thread, c *rt.GoCont) (rt.Cont, error) {
	f, err := b.current("halt")
	if err != nil {
		return nil, err
	}
	_ = f.Halt()
	return c.Next(), nil
}
