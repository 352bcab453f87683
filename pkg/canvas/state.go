package canvas

import "fmt"

// Default style values, matching the p5 family of runtimes.
var (
	DefaultFill         = White
	DefaultStroke       = Black
	DefaultStrokeWeight = 1.0
)

// RectMode selects how Rect interprets its four arguments.
type RectMode int

const (
	// RectCorner: x, y is the top-left corner; w, h the size.
	RectCorner RectMode = iota
	// RectCorners: x, y and w, h are opposite corners.
	RectCorners
	// RectCenter: x, y is the center; w, h the size.
	RectCenter
	// RectRadius: x, y is the center; w, h are half the size.
	RectRadius
)

// String returns the mode name.
func (m RectMode) String() string {
	switch m {
	case RectCorner:
		return "corner"
	case RectCorners:
		return "corners"
	case RectCenter:
		return "center"
	case RectRadius:
		return "radius"
	default:
		return "unknown"
	}
}

// ParseRectMode parses a rect mode name as returned by RectMode.String.
func ParseRectMode(s string) (RectMode, error) {
	switch s {
	case "corner":
		return RectCorner, nil
	case "corners":
		return RectCorners, nil
	case "center":
		return RectCenter, nil
	case "radius":
		return RectRadius, nil
	default:
		return RectCorner, fmt.Errorf("unknown rect mode: %s", s)
	}
}

// State is the implicit graphics state of one canvas: size, style and the
// transform stack. It is not safe for concurrent use; the engine owns it
// and mutates it from a single goroutine.
type State struct {
	width, height int
	fill          Paint
	stroke        Paint
	strokeWeight  float64
	background    Color
	rectMode      RectMode
	// current is the top of the transform stack; saved holds the matrices
	// below it, so the stack depth is len(saved)+1 and never drops to 0.
	current Matrix
	saved   []Matrix
}

// NewState returns a state for a width×height canvas with default style
// and an identity transform.
func NewState(width, height int) (*State, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidSize, width, height)
	}
	return &State{
		width:        width,
		height:       height,
		fill:         Solid(DefaultFill),
		stroke:       Solid(DefaultStroke),
		strokeWeight: DefaultStrokeWeight,
		background:   Transparent,
		current:      Identity(),
	}, nil
}

// Width returns the canvas width in pixels.
func (s *State) Width() int { return s.width }

// Height returns the canvas height in pixels.
func (s *State) Height() int { return s.height }

// SetFill sets the fill color of subsequent shapes.
func (s *State) SetFill(c Color) { s.fill = Solid(c) }

// SetStroke sets the stroke color of subsequent shapes.
func (s *State) SetStroke(c Color) { s.stroke = Solid(c) }

// SetStrokeWeight sets the stroke width of subsequent shapes. A negative
// or non-finite width is rejected with a *GeometryError.
func (s *State) SetStrokeWeight(w float64) error {
	if !finite(w) || w < 0 {
		return geometryError("stroke_weight", w)
	}
	s.strokeWeight = w
	return nil
}

// NoFill disables filling for subsequent shapes.
func (s *State) NoFill() { s.fill = None }

// NoStroke disables outlines for subsequent shapes.
func (s *State) NoStroke() { s.stroke = None }

// Fill returns the current fill paint.
func (s *State) Fill() Paint { return s.fill }

// Stroke returns the current stroke paint.
func (s *State) Stroke() Paint { return s.stroke }

// StrokeWeight returns the current stroke width.
func (s *State) StrokeWeight() float64 { return s.strokeWeight }

// BackgroundColor returns the color of the last Background call.
func (s *State) BackgroundColor() Color { return s.background }

// SetRectMode changes how Rect interprets its arguments.
func (s *State) SetRectMode(m RectMode) { s.rectMode = m }

// RectMode returns the current rect mode.
func (s *State) RectMode() RectMode { return s.rectMode }

// Style returns a snapshot of the current style.
func (s *State) Style() Style {
	return Style{Fill: s.fill, Stroke: s.stroke, StrokeWeight: s.strokeWeight}
}

// Transform returns the current transform.
func (s *State) Transform() Matrix {
	return s.current
}

// Depth returns the number of matrices on the transform stack, which is
// always at least 1.
func (s *State) Depth() int {
	return len(s.saved) + 1
}

// Push duplicates the current transform.
func (s *State) Push() {
	s.saved = append(s.saved, s.current)
}

// Pop discards the current transform, restoring the one saved by the
// matching Push. With no matching Push it leaves the stack untouched and
// returns ErrUnbalancedTransformStack.
func (s *State) Pop() error {
	n := len(s.saved)
	if n == 0 {
		return ErrUnbalancedTransformStack
	}
	s.current = s.saved[n-1]
	s.saved = s.saved[:n-1]
	return nil
}

// Translate appends a translation to the current transform.
func (s *State) Translate(dx, dy float64) error {
	return s.transform("translate", s.current.Translate(dx, dy), dx, dy)
}

// Rotate appends a rotation of theta radians to the current transform.
func (s *State) Rotate(theta float64) error {
	return s.transform("rotate", s.current.Rotate(theta), theta)
}

// Scale appends a scale to the current transform.
func (s *State) Scale(sx, sy float64) error {
	return s.transform("scale", s.current.Scale(sx, sy), sx, sy)
}

// ShearX appends a horizontal shear to the current transform.
func (s *State) ShearX(angle float64) error {
	return s.transform("shear_x", s.current.ShearX(angle), angle)
}

// ShearY appends a vertical shear to the current transform.
func (s *State) ShearY(angle float64) error {
	return s.transform("shear_y", s.current.ShearY(angle), angle)
}

// ApplyMatrix appends an arbitrary affine transform.
func (s *State) ApplyMatrix(m Matrix) error {
	return s.transform("apply_matrix", s.current.Multiply(m), m.XX, m.YX, m.XY, m.YY, m.X0, m.Y0)
}

// ResetMatrix replaces the current transform with the identity. The stack
// depth is unchanged, so pushes made earlier still pop normally.
func (s *State) ResetMatrix() {
	s.current = Identity()
}

// transform installs m as the current transform. Non-finite arguments, or
// a product that overflows, leave the transform untouched and return a
// *GeometryError naming op.
func (s *State) transform(op string, m Matrix, args ...float64) error {
	if !finite(args...) || !m.IsFinite() {
		return geometryError(op, args...)
	}
	s.current = m
	return nil
}

// Background records c as the background color and returns the command
// clearing the canvas. Style and transform are left alone.
func (s *State) Background(c Color) Background {
	s.background = c
	return Background{Color: c, Width: s.width, Height: s.height}
}

// ResetTransformStack drops every pushed transform and resets the current
// one to identity. It returns how many pushes were left unmatched.
func (s *State) ResetTransformStack() int {
	n := len(s.saved)
	s.saved = s.saved[:0]
	s.current = Identity()
	return n
}
