package geom

import (
	"math"
)

// Quat is a rotation quaternion: the vector part encodes the rotation
// axis scaled by sin of the half-angle, W is cos of the half-angle.
type Quat struct {
	V Vec
	W float64
}

// QuatFromAxisAngle builds the quaternion rotating by angle around the
// given axis. The axis does not need to be normalized.
func QuatFromAxisAngle(axis Vec, angle float64) Quat {
	n := axis.Normalized()
	s, c := math.Sin(0.5*angle), math.Cos(0.5*angle)
	return Quat{V: n.Scaled(s), W: c}
}

// QuatFromMatrix converts an orthogonal matrix with unit determinant to
// a quaternion. Uses the largest diagonal element for stability.
func QuatFromMatrix(m AffineMatrix) Quat {
	if !m.IsOrthogonal() || !almostEqualFloat(m.Determinant(), 1, 1e-6) {
		panic("geom: quaternion requires a right-handed orthogonal matrix")
	}
	tr := m.At(0, 0) + m.At(1, 1) + m.At(2, 2)
	var q Quat
	switch {
	case tr > 0:
		s := 0.5 / math.Sqrt(tr+1)
		q.W = 0.25 / s
		q.V = Vec{
			(m.At(2, 1) - m.At(1, 2)) * s,
			(m.At(0, 2) - m.At(2, 0)) * s,
			(m.At(1, 0) - m.At(0, 1)) * s,
			0,
		}
	case m.At(0, 0) > m.At(1, 1) && m.At(0, 0) > m.At(2, 2):
		s := 2 * math.Sqrt(1+m.At(0, 0)-m.At(1, 1)-m.At(2, 2))
		q.W = (m.At(2, 1) - m.At(1, 2)) / s
		q.V = Vec{0.25 * s, (m.At(0, 1) + m.At(1, 0)) / s, (m.At(0, 2) + m.At(2, 0)) / s, 0}
	case m.At(1, 1) > m.At(2, 2):
		s := 2 * math.Sqrt(1+m.At(1, 1)-m.At(0, 0)-m.At(2, 2))
		q.W = (m.At(0, 2) - m.At(2, 0)) / s
		q.V = Vec{(m.At(0, 1) + m.At(1, 0)) / s, 0.25 * s, (m.At(1, 2) + m.At(2, 1)) / s, 0}
	default:
		s := 2 * math.Sqrt(1+m.At(2, 2)-m.At(0, 0)-m.At(1, 1))
		q.W = (m.At(1, 0) - m.At(0, 1)) / s
		q.V = Vec{(m.At(0, 2) + m.At(2, 0)) / s, (m.At(1, 2) + m.At(2, 1)) / s, 0.25 * s, 0}
	}
	return q
}

// Convert returns the rotation matrix of the quaternion.
func (q Quat) Convert() AffineMatrix {
	x, y, z, w := q.V[X], q.V[Y], q.V[Z], q.W
	return AffineFromRows(
		Vec{1 - 2*(y*y+z*z), 2 * (x*y - z*w), 2 * (x*z + y*w), 0},
		Vec{2 * (x*y + z*w), 1 - 2*(x*x+z*z), 2 * (y*z - x*w), 0},
		Vec{2 * (x*z - y*w), 2 * (y*z + x*w), 1 - 2*(x*x+y*y), 0},
	)
}

// Axis returns the rotation axis; the zero rotation yields the z axis.
func (q Quat) Axis() Vec {
	l := q.V.Length()
	if l == 0 {
		return Vec{0, 0, 1, 0}
	}
	return q.V.Scaled(1 / l)
}

// Angle returns the rotation angle in [0, 2*pi).
func (q Quat) Angle() float64 {
	return 2 * math.Acos(math.Min(1, math.Max(-1, q.W)))
}
