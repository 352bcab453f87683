package canvas

import "math"

// Point is a position in device space.
type Point struct {
	X, Y float64
}

// Style is the paint state captured when a command is recorded.
type Style struct {
	Fill         Paint
	Stroke       Paint
	StrokeWeight float64
}

// Kind identifies the concrete type of a Command.
type Kind int

const (
	// KindBackground clears the whole canvas.
	KindBackground Kind = iota
	// KindLine is a stroked segment.
	KindLine
	// KindRect is a rectangle, possibly rotated or sheared.
	KindRect
	// KindEllipse is an ellipse, possibly rotated or sheared.
	KindEllipse
	// KindPoint is a single stroked point.
	KindPoint
	// KindTriangle is a three-vertex polygon.
	KindTriangle
	// KindQuad is a four-vertex polygon.
	KindQuad
)

// String returns the lowercase primitive name.
func (k Kind) String() string {
	switch k {
	case KindBackground:
		return "background"
	case KindLine:
		return "line"
	case KindRect:
		return "rect"
	case KindEllipse:
		return "ellipse"
	case KindPoint:
		return "point"
	case KindTriangle:
		return "triangle"
	case KindQuad:
		return "quad"
	default:
		return "unknown"
	}
}

// Command is one fully resolved drawing instruction. Geometry is already
// in device space and the style is the snapshot taken when the primitive
// was called. The concrete types are Background, Line, Rect, Ellipse,
// PointCmd, Triangle and Quad.
type Command interface {
	Kind() Kind
	Style() Style
	isCommand()
}

// Background fills the canvas with Color.
type Background struct {
	Color         Color
	Width, Height int
}

func (Background) Kind() Kind { return KindBackground }

// Style reports the background color as the fill with no stroke.
func (b Background) Style() Style { return Style{Fill: Solid(b.Color)} }
func (Background) isCommand()     {}

// Line is a segment from P1 to P2.
type Line struct {
	P1, P2 Point
	S      Style
}

func (Line) Kind() Kind     { return KindLine }
func (l Line) Style() Style { return l.S }
func (Line) isCommand()     {}

// Rect holds the four transformed corners in drawing order
// (top-left, top-right, bottom-right, bottom-left in user space).
type Rect struct {
	Corners [4]Point
	S       Style
}

func (Rect) Kind() Kind     { return KindRect }
func (r Rect) Style() Style { return r.S }
func (Rect) isCommand()     {}

// Ellipse is the image of a unit circle: every point is
// Center + cos(t)*AxisX + sin(t)*AxisY.
type Ellipse struct {
	Center       Point
	AxisX, AxisY Point
	S            Style
}

func (Ellipse) Kind() Kind     { return KindEllipse }
func (e Ellipse) Style() Style { return e.S }
func (Ellipse) isCommand()     {}

// At returns the point of the ellipse at parameter t radians.
func (e Ellipse) At(t float64) Point {
	s, c := math.Sincos(t)
	return Point{
		X: e.Center.X + c*e.AxisX.X + s*e.AxisY.X,
		Y: e.Center.Y + c*e.AxisX.Y + s*e.AxisY.Y,
	}
}

// PointCmd is a point drawn with the stroke color and weight.
type PointCmd struct {
	P Point
	S Style
}

func (PointCmd) Kind() Kind     { return KindPoint }
func (p PointCmd) Style() Style { return p.S }
func (PointCmd) isCommand()     {}

// Triangle is a filled and stroked three-vertex polygon.
type Triangle struct {
	Vertices [3]Point
	S        Style
}

func (Triangle) Kind() Kind     { return KindTriangle }
func (t Triangle) Style() Style { return t.S }
func (Triangle) isCommand()     {}

// Quad is a filled and stroked four-vertex polygon.
type Quad struct {
	Vertices [4]Point
	S        Style
}

func (Quad) Kind() Kind     { return KindQuad }
func (q Quad) Style() Style { return q.S }
func (Quad) isCommand()     {}

// Polygon returns the outline vertices of polygonal commands in order.
// It returns nil for lines, points, ellipses and backgrounds.
func Polygon(c Command) []Point {
	switch v := c.(type) {
	case Rect:
		return v.Corners[:]
	case Triangle:
		return v.Vertices[:]
	case Quad:
		return v.Vertices[:]
	}
	return nil
}
