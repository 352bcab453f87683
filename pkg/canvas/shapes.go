package canvas

// The methods in this file resolve primitive calls into commands: the
// inputs are checked for finiteness, mapped through the current transform
// and paired with a style snapshot. They never mutate the state.

// Line resolves a segment from (x1, y1) to (x2, y2).
func (s *State) Line(x1, y1, x2, y2 float64) (Line, error) {
	if !finite(x1, y1, x2, y2) {
		return Line{}, geometryError("line", x1, y1, x2, y2)
	}
	m := s.current
	cmd := Line{
		P1: m.Apply(Point{X: x1, Y: y1}),
		P2: m.Apply(Point{X: x2, Y: y2}),
		S:  s.Style(),
	}
	if !finitePoints(cmd.P1, cmd.P2) {
		return Line{}, geometryError("line", x1, y1, x2, y2)
	}
	return cmd, nil
}

// Rect resolves a rectangle whose arguments are interpreted according to
// the current rect mode.
func (s *State) Rect(a, b, c, d float64) (Rect, error) {
	if !finite(a, b, c, d) {
		return Rect{}, geometryError("rect", a, b, c, d)
	}

	var x0, y0, x1, y1 float64
	switch s.rectMode {
	case RectCorners:
		x0, y0, x1, y1 = min(a, c), min(b, d), max(a, c), max(b, d)
	case RectCenter:
		x0, y0, x1, y1 = a-c/2, b-d/2, a+c/2, b+d/2
	case RectRadius:
		x0, y0, x1, y1 = a-c, b-d, a+c, b+d
	default:
		x0, y0, x1, y1 = a, b, a+c, b+d
	}

	m := s.current
	cmd := Rect{
		Corners: [4]Point{
			m.Apply(Point{X: x0, Y: y0}),
			m.Apply(Point{X: x1, Y: y0}),
			m.Apply(Point{X: x1, Y: y1}),
			m.Apply(Point{X: x0, Y: y1}),
		},
		S: s.Style(),
	}
	if !finitePoints(cmd.Corners[:]...) {
		return Rect{}, geometryError("rect", a, b, c, d)
	}
	return cmd, nil
}

// Ellipse resolves an ellipse centered at (x, y) with radii rx and ry.
func (s *State) Ellipse(x, y, rx, ry float64) (Ellipse, error) {
	return s.ellipse("ellipse", x, y, rx, ry)
}

// Circle resolves a circle centered at (x, y) with diameter d.
func (s *State) Circle(x, y, d float64) (Ellipse, error) {
	if !finite(x, y, d) {
		return Ellipse{}, geometryError("circle", x, y, d)
	}
	return s.ellipse("circle", x, y, d/2, d/2)
}

func (s *State) ellipse(op string, x, y, rx, ry float64) (Ellipse, error) {
	if !finite(x, y, rx, ry) {
		return Ellipse{}, geometryError(op, x, y, rx, ry)
	}
	m := s.current
	ax, ay := m.TransformVector(rx, 0)
	bx, by := m.TransformVector(0, ry)
	cmd := Ellipse{
		Center: m.Apply(Point{X: x, Y: y}),
		AxisX:  Point{X: ax, Y: ay},
		AxisY:  Point{X: bx, Y: by},
		S:      s.Style(),
	}
	if !finitePoints(cmd.Center, cmd.AxisX, cmd.AxisY) {
		return Ellipse{}, geometryError(op, x, y, rx, ry)
	}
	return cmd, nil
}

// Point resolves a single point.
func (s *State) Point(x, y float64) (PointCmd, error) {
	if !finite(x, y) {
		return PointCmd{}, geometryError("point", x, y)
	}
	cmd := PointCmd{P: s.current.Apply(Point{X: x, Y: y}), S: s.Style()}
	if !finitePoints(cmd.P) {
		return PointCmd{}, geometryError("point", x, y)
	}
	return cmd, nil
}

// Triangle resolves a triangle through three vertices.
func (s *State) Triangle(x1, y1, x2, y2, x3, y3 float64) (Triangle, error) {
	if !finite(x1, y1, x2, y2, x3, y3) {
		return Triangle{}, geometryError("triangle", x1, y1, x2, y2, x3, y3)
	}
	m := s.current
	cmd := Triangle{
		Vertices: [3]Point{
			m.Apply(Point{X: x1, Y: y1}),
			m.Apply(Point{X: x2, Y: y2}),
			m.Apply(Point{X: x3, Y: y3}),
		},
		S: s.Style(),
	}
	if !finitePoints(cmd.Vertices[:]...) {
		return Triangle{}, geometryError("triangle", x1, y1, x2, y2, x3, y3)
	}
	return cmd, nil
}

// Quad resolves a quadrilateral through four vertices in order.
func (s *State) Quad(x1, y1, x2, y2, x3, y3, x4, y4 float64) (Quad, error) {
	if !finite(x1, y1, x2, y2, x3, y3, x4, y4) {
		return Quad{}, geometryError("quad", x1, y1, x2, y2, x3, y3, x4, y4)
	}
	m := s.current
	cmd := Quad{
		Vertices: [4]Point{
			m.Apply(Point{X: x1, Y: y1}),
			m.Apply(Point{X: x2, Y: y2}),
			m.Apply(Point{X: x3, Y: y3}),
			m.Apply(Point{X: x4, Y: y4}),
		},
		S: s.Style(),
	}
	if !finitePoints(cmd.Vertices[:]...) {
		return Quad{}, geometryError("quad", x1, y1, x2, y2, x3, y3, x4, y4)
	}
	return cmd, nil
}

func geometryError(op string, args ...float64) *GeometryError {
	return &GeometryError{Op: op, Args: args}
}

func finitePoints(ps ...Point) bool {
	for _, p := range ps {
		if !finite(p.X, p.Y) {
			return false
		}
	}
	return true
}
