package sketch

import (
	"time"

	"github.com/opd-ai/go-sketch/pkg/canvas"
)

// Frame is the drawing API handed to Setup and Draw. It is bound to the
// engine's canvas state for the duration of one call; once the call
// returns every method becomes a no-op and reports ErrFrameExpired.
//
// Style and transform changes persist into later frames. Primitives
// validate their arguments, resolve them against the current transform
// and style, and queue a command; no pixels change until the engine
// flushes the queue after the call returns.
//
// A Frame must only be used from the goroutine that received it.
type Frame struct {
	eng     *Engine
	state   *canvas.State
	rec     *canvas.Recorder
	number  uint64
	delta   time.Duration
	elapsed time.Duration
	expired bool
}

// expire invalidates f. Called by the engine when the lifecycle call
// returns.
func (f *Frame) expire() {
	f.expired = true
}

// live reports whether f may still touch the canvas, recording a
// diagnostic when it may not.
func (f *Frame) live(op string) bool {
	if f.expired {
		f.eng.diagnose(DiagnosticExpiredFrame, op, f.number, ErrFrameExpired)
		return false
	}
	return true
}

// record queues a resolved command, or records the resolution error.
func (f *Frame) record(op string, cmd canvas.Command, err error) error {
	if err := f.check(op, err); err != nil {
		return err
	}
	f.rec.Record(cmd)
	return nil
}

// check records a rejected state change as a geometry diagnostic.
func (f *Frame) check(op string, err error) error {
	if err != nil {
		f.eng.diagnose(DiagnosticGeometry, op, f.number, err)
	}
	return err
}

// FrameCount returns the number of this frame: 0 during Setup, 1 for the
// first Draw.
func (f *Frame) FrameCount() uint64 { return f.number }

// DeltaTime returns the time since the previous frame started.
func (f *Frame) DeltaTime() time.Duration { return f.delta }

// Millis returns the milliseconds elapsed since the run started.
func (f *Frame) Millis() int64 { return f.elapsed.Milliseconds() }

// Width returns the canvas width.
func (f *Frame) Width() int { return f.state.Width() }

// Height returns the canvas height.
func (f *Frame) Height() int { return f.state.Height() }

// FrameRate returns the current target frame rate.
func (f *Frame) FrameRate() float64 { return f.eng.targetFrameRate() }

// SetFrameRate changes the target frame rate from the next frame on.
func (f *Frame) SetFrameRate(fps float64) error {
	if !f.live("frame_rate") {
		return ErrFrameExpired
	}
	if !validFrameRate(fps) {
		f.eng.diagnose(DiagnosticInvalidArgument, "frame_rate", f.number, ErrInvalidFrameRate)
		return ErrInvalidFrameRate
	}
	f.eng.setFrameRate(fps)
	return nil
}

// Halt asks the engine to stop after this frame has been flushed. It
// returns ErrFrameExpired, and does not stop anything, when called on a
// Frame kept past its call.
func (f *Frame) Halt() error {
	if !f.live("halt") {
		return ErrFrameExpired
	}
	f.eng.Stop()
	return nil
}

// Style returns a snapshot of the current style.
func (f *Frame) Style() canvas.Style { return f.state.Style() }

// Transform returns the current transform.
func (f *Frame) Transform() canvas.Matrix { return f.state.Transform() }

// Fill sets the fill color.
func (f *Frame) Fill(c canvas.Color) {
	if f.live("fill") {
		f.state.SetFill(c)
	}
}

// Stroke sets the stroke color.
func (f *Frame) Stroke(c canvas.Color) {
	if f.live("stroke") {
		f.state.SetStroke(c)
	}
}

// StrokeWeight sets the stroke width. Negative or non-finite widths are
// rejected and leave the style unchanged.
func (f *Frame) StrokeWeight(w float64) error {
	if !f.live("stroke_weight") {
		return ErrFrameExpired
	}
	return f.check("stroke_weight", f.state.SetStrokeWeight(w))
}

// NoFill disables filling.
func (f *Frame) NoFill() {
	if f.live("no_fill") {
		f.state.NoFill()
	}
}

// NoStroke disables outlines.
func (f *Frame) NoStroke() {
	if f.live("no_stroke") {
		f.state.NoStroke()
	}
}

// RectMode changes how Rect interprets its arguments.
func (f *Frame) RectMode(m canvas.RectMode) {
	if f.live("rect_mode") {
		f.state.SetRectMode(m)
	}
}

// Push saves the current transform.
func (f *Frame) Push() {
	if f.live("push") {
		f.state.Push()
	}
}

// Pop restores the transform saved by the matching Push. An unmatched Pop
// changes nothing and returns canvas.ErrUnbalancedTransformStack.
func (f *Frame) Pop() error {
	if !f.live("pop") {
		return ErrFrameExpired
	}
	if err := f.state.Pop(); err != nil {
		f.eng.diagnose(DiagnosticTransformStack, "pop", f.number, err)
		return err
	}
	return nil
}

// The transform methods reject non-finite arguments, and results that
// overflow, with a *canvas.GeometryError; the transform is left unchanged.

// Translate moves the origin.
func (f *Frame) Translate(dx, dy float64) error {
	if !f.live("translate") {
		return ErrFrameExpired
	}
	return f.check("translate", f.state.Translate(dx, dy))
}

// Rotate rotates the coordinate system by theta radians.
func (f *Frame) Rotate(theta float64) error {
	if !f.live("rotate") {
		return ErrFrameExpired
	}
	return f.check("rotate", f.state.Rotate(theta))
}

// Scale scales the coordinate system.
func (f *Frame) Scale(sx, sy float64) error {
	if !f.live("scale") {
		return ErrFrameExpired
	}
	return f.check("scale", f.state.Scale(sx, sy))
}

// ShearX shears along the x axis by angle radians.
func (f *Frame) ShearX(angle float64) error {
	if !f.live("shear_x") {
		return ErrFrameExpired
	}
	return f.check("shear_x", f.state.ShearX(angle))
}

// ShearY shears along the y axis by angle radians.
func (f *Frame) ShearY(angle float64) error {
	if !f.live("shear_y") {
		return ErrFrameExpired
	}
	return f.check("shear_y", f.state.ShearY(angle))
}

// ApplyMatrix appends the affine transform
//
//	| a  c  e |
//	| b  d  f |
func (f *Frame) ApplyMatrix(a, b, c, d, e, g float64) error {
	if !f.live("apply_matrix") {
		return ErrFrameExpired
	}
	return f.check("apply_matrix", f.state.ApplyMatrix(canvas.NewMatrix(a, b, c, d, e, g)))
}

// ResetMatrix replaces the current transform with the identity.
func (f *Frame) ResetMatrix() {
	if f.live("reset_matrix") {
		f.state.ResetMatrix()
	}
}

// Background clears the canvas with c. Style and transform are unchanged.
func (f *Frame) Background(c canvas.Color) error {
	if !f.live("background") {
		return ErrFrameExpired
	}
	f.rec.Record(f.state.Background(c))
	return nil
}

// Line draws a segment.
func (f *Frame) Line(x1, y1, x2, y2 float64) error {
	if !f.live("line") {
		return ErrFrameExpired
	}
	cmd, err := f.state.Line(x1, y1, x2, y2)
	return f.record("line", cmd, err)
}

// Rect draws a rectangle; see RectMode for how the arguments are read.
func (f *Frame) Rect(x, y, w, h float64) error {
	if !f.live("rect") {
		return ErrFrameExpired
	}
	cmd, err := f.state.Rect(x, y, w, h)
	return f.record("rect", cmd, err)
}

// Ellipse draws an ellipse centered at (x, y) with radii rx and ry.
func (f *Frame) Ellipse(x, y, rx, ry float64) error {
	if !f.live("ellipse") {
		return ErrFrameExpired
	}
	cmd, err := f.state.Ellipse(x, y, rx, ry)
	return f.record("ellipse", cmd, err)
}

// Circle draws a circle centered at (x, y) with diameter d.
func (f *Frame) Circle(x, y, d float64) error {
	if !f.live("circle") {
		return ErrFrameExpired
	}
	cmd, err := f.state.Circle(x, y, d)
	return f.record("circle", cmd, err)
}

// Point draws a single point with the stroke color.
func (f *Frame) Point(x, y float64) error {
	if !f.live("point") {
		return ErrFrameExpired
	}
	cmd, err := f.state.Point(x, y)
	return f.record("point", cmd, err)
}

// Triangle draws a triangle.
func (f *Frame) Triangle(x1, y1, x2, y2, x3, y3 float64) error {
	if !f.live("triangle") {
		return ErrFrameExpired
	}
	cmd, err := f.state.Triangle(x1, y1, x2, y2, x3, y3)
	return f.record("triangle", cmd, err)
}

// Quad draws a quadrilateral through four vertices in order.
func (f *Frame) Quad(x1, y1, x2, y2, x3, y3, x4, y4 float64) error {
	if !f.live("quad") {
		return ErrFrameExpired
	}
	cmd, err := f.state.Quad(x1, y1, x2, y2, x3, y3, x4, y4)
	return f.record("quad", cmd, err)
}
