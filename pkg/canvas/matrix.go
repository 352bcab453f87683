package canvas

import "math"

// Matrix is a 2D affine transformation:
//
//	| XX  XY |   | x |   | X0 |
//	| YX  YY | * | y | + | Y0 |
//
// Matrices are values; every operation returns a new Matrix.
type Matrix struct {
	XX, XY float64
	YX, YY float64
	X0, Y0 float64
}

// Identity returns the identity matrix.
func Identity() Matrix {
	return Matrix{XX: 1, YY: 1}
}

// TranslateMatrix returns a matrix that translates by (tx, ty).
func TranslateMatrix(tx, ty float64) Matrix {
	return Matrix{XX: 1, YY: 1, X0: tx, Y0: ty}
}

// ScaleMatrix returns a matrix that scales by (sx, sy).
func ScaleMatrix(sx, sy float64) Matrix {
	return Matrix{XX: sx, YY: sy}
}

// RotateMatrix returns a matrix that rotates by angle radians.
// Positive angles rotate clockwise on a y-down surface.
func RotateMatrix(angle float64) Matrix {
	s, c := math.Sincos(angle)
	return Matrix{XX: c, XY: -s, YX: s, YY: c}
}

// NewMatrix builds a matrix from the six coefficients used by
// applyMatrix(a, b, c, d, e, f) in p5-style APIs:
//
//	| a  c  e |
//	| b  d  f |
func NewMatrix(a, b, c, d, e, f float64) Matrix {
	return Matrix{XX: a, YX: b, XY: c, YY: d, X0: e, Y0: f}
}

// Multiply returns m·o. Transforming a point with the result applies o
// first and m second, which is what appending a transform call to the
// current coordinate system means.
func (m Matrix) Multiply(o Matrix) Matrix {
	return Matrix{
		XX: m.XX*o.XX + m.XY*o.YX,
		XY: m.XX*o.XY + m.XY*o.YY,
		YX: m.YX*o.XX + m.YY*o.YX,
		YY: m.YX*o.XY + m.YY*o.YY,
		X0: m.XX*o.X0 + m.XY*o.Y0 + m.X0,
		Y0: m.YX*o.X0 + m.YY*o.Y0 + m.Y0,
	}
}

// Translate returns m with a translation appended.
func (m Matrix) Translate(tx, ty float64) Matrix {
	m.X0 += m.XX*tx + m.XY*ty
	m.Y0 += m.YX*tx + m.YY*ty
	return m
}

// Scale returns m with a scale appended.
func (m Matrix) Scale(sx, sy float64) Matrix {
	m.XX *= sx
	m.XY *= sy
	m.YX *= sx
	m.YY *= sy
	return m
}

// Rotate returns m with a rotation appended.
func (m Matrix) Rotate(angle float64) Matrix {
	return m.Multiply(RotateMatrix(angle))
}

// ShearX returns m with a horizontal shear of angle radians appended.
func (m Matrix) ShearX(angle float64) Matrix {
	return m.Multiply(Matrix{XX: 1, XY: math.Tan(angle), YY: 1})
}

// ShearY returns m with a vertical shear of angle radians appended.
func (m Matrix) ShearY(angle float64) Matrix {
	return m.Multiply(Matrix{XX: 1, YX: math.Tan(angle), YY: 1})
}

// TransformPoint maps a point through m.
func (m Matrix) TransformPoint(x, y float64) (float64, float64) {
	return m.XX*x + m.XY*y + m.X0, m.YX*x + m.YY*y + m.Y0
}

// TransformVector maps a distance vector through m, ignoring translation.
func (m Matrix) TransformVector(dx, dy float64) (float64, float64) {
	return m.XX*dx + m.XY*dy, m.YX*dx + m.YY*dy
}

// Apply maps p through m.
func (m Matrix) Apply(p Point) Point {
	x, y := m.TransformPoint(p.X, p.Y)
	return Point{X: x, Y: y}
}

// Determinant returns the determinant of the linear part of m.
func (m Matrix) Determinant() float64 {
	return m.XX*m.YY - m.XY*m.YX
}

// Invert returns the inverse of m. ok is false when m is singular.
func (m Matrix) Invert() (inv Matrix, ok bool) {
	det := m.Determinant()
	if det == 0 || math.IsInf(det, 0) || math.IsNaN(det) {
		return Matrix{}, false
	}
	d := 1 / det
	return Matrix{
		XX: m.YY * d,
		XY: -m.XY * d,
		YX: -m.YX * d,
		YY: m.XX * d,
		X0: (m.XY*m.Y0 - m.YY*m.X0) * d,
		Y0: (m.YX*m.X0 - m.XX*m.Y0) * d,
	}, true
}

// IsIdentity reports whether m is exactly the identity.
func (m Matrix) IsIdentity() bool {
	return m == Identity()
}

// IsFinite reports whether every coefficient is finite.
func (m Matrix) IsFinite() bool {
	return finite(m.XX, m.XY, m.YX, m.YY, m.X0, m.Y0)
}

func finite(vs ...float64) bool {
	for _, v := range vs {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}
