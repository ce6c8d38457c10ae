package geom

import (
	"math"
)

// AffineMatrix is a 3x4 matrix: a 3x3 linear part plus a translation
// column. Rows are stored as Vecs with the translation in the fourth
// component.
type AffineMatrix struct {
	rows [3]Vec
}

// AffineFromRows builds a matrix from its rows. Fourth components become
// the translation column.
func AffineFromRows(r0, r1, r2 Vec) AffineMatrix {
	return AffineMatrix{rows: [3]Vec{r0, r1, r2}}
}

// Identity returns the identity transform.
func Identity() AffineMatrix {
	return AffineFromRows(
		Vec{1, 0, 0, 0},
		Vec{0, 1, 0, 0},
		Vec{0, 0, 1, 0},
	)
}

// NullMatrix returns the zero matrix.
func NullMatrix() AffineMatrix {
	return AffineMatrix{}
}

// Scale returns a diagonal scaling transform.
func Scale(v Vec) AffineMatrix {
	return AffineFromRows(
		Vec{v[X], 0, 0, 0},
		Vec{0, v[Y], 0, 0},
		Vec{0, 0, v[Z], 0},
	)
}

// RotateX returns the rotation by angle around the x axis.
func RotateX(angle float64) AffineMatrix {
	c, s := math.Cos(angle), math.Sin(angle)
	return AffineFromRows(
		Vec{1, 0, 0, 0},
		Vec{0, c, -s, 0},
		Vec{0, s, c, 0},
	)
}

func RotateY(angle float64) AffineMatrix {
	c, s := math.Cos(angle), math.Sin(angle)
	return AffineFromRows(
		Vec{c, 0, s, 0},
		Vec{0, 1, 0, 0},
		Vec{-s, 0, c, 0},
	)
}

func RotateZ(angle float64) AffineMatrix {
	c, s := math.Cos(angle), math.Sin(angle)
	return AffineFromRows(
		Vec{c, -s, 0, 0},
		Vec{s, c, 0, 0},
		Vec{0, 0, 1, 0},
	)
}

// RotateAxis returns the rotation by angle around the unit axis n
// (Rodrigues formula). The axis must be normalized.
func RotateAxis(n Vec, angle float64) AffineMatrix {
	if math.Abs(n.SqrLength()-1) > 1e-10 {
		panic("geom: rotation axis must be a unit vector")
	}
	c, s := math.Cos(angle), math.Sin(angle)
	k := CrossProductOperator(n)
	kk := k.Times(k)
	m := Identity()
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			m.rows[i][j] += s*k.At(i, j) + (1-c)*kk.At(i, j)
		}
	}
	return m
}

// CrossProductOperator returns the skew-symmetric matrix [a]x such that
// [a]x * v == Cross(a, v).
func CrossProductOperator(a Vec) AffineMatrix {
	return AffineFromRows(
		Vec{0, -a[Z], a[Y], 0},
		Vec{a[Z], 0, -a[X], 0},
		Vec{-a[Y], a[X], 0, 0},
	)
}

// At returns element (i, j); j == 3 addresses the translation column.
func (m AffineMatrix) At(i, j int) float64 {
	return m.rows[i][j]
}

// Set assigns element (i, j).
func (m *AffineMatrix) Set(i, j int, x float64) {
	m.rows[i][j] = x
}

func (m AffineMatrix) Row(i int) Vec {
	return m.rows[i]
}

func (m AffineMatrix) Column(j int) Vec {
	return Vec{m.rows[0][j], m.rows[1][j], m.rows[2][j], 0}
}

func (m AffineMatrix) Translation() Vec {
	return m.Column(3)
}

// RemoveTranslation returns the linear part of the transform.
func (m AffineMatrix) RemoveTranslation() AffineMatrix {
	for i := 0; i < 3; i++ {
		m.rows[i][3] = 0
	}
	return m
}

// Translate adds t to the translation column.
func (m AffineMatrix) Translate(t Vec) AffineMatrix {
	for i := 0; i < 3; i++ {
		m.rows[i][3] += t[i]
	}
	return m
}

// Apply transforms v, including the translation.
func (m AffineMatrix) Apply(v Vec) Vec {
	var out Vec
	for i := 0; i < 3; i++ {
		out[i] = m.rows[i][X]*v[X] + m.rows[i][Y]*v[Y] + m.rows[i][Z]*v[Z] + m.rows[i][3]
	}
	return out
}

// Times is the affine product m * n.
func (m AffineMatrix) Times(n AffineMatrix) AffineMatrix {
	var out AffineMatrix
	for i := 0; i < 3; i++ {
		for j := 0; j < 4; j++ {
			s := 0.0
			if j == 3 {
				s = m.rows[i][3]
			}
			for k := 0; k < 3; k++ {
				s += m.rows[i][k] * n.rows[k][j]
			}
			out.rows[i][j] = s
		}
	}
	return out
}

// Transpose transposes the linear part; the translation column is copied
// unchanged so that double transposition is the identity.
func (m AffineMatrix) Transpose() AffineMatrix {
	t := AffineFromRows(m.Column(0), m.Column(1), m.Column(2))
	for i := 0; i < 3; i++ {
		t.rows[i][3] = m.rows[i][3]
	}
	return t
}

// Determinant of the 3x3 linear part.
func (m AffineMatrix) Determinant() float64 {
	r := m.rows
	return r[0][0]*(r[1][1]*r[2][2]-r[2][1]*r[1][2]) -
		r[0][1]*(r[1][0]*r[2][2]-r[1][2]*r[2][0]) +
		r[0][2]*(r[1][0]*r[2][1]-r[1][1]*r[2][0])
}

// Inverse returns the affine inverse. It panics on a singular matrix;
// use TryInverse when singularity is an expected input.
func (m AffineMatrix) Inverse() AffineMatrix {
	inv, ok := m.TryInverse()
	if !ok {
		panic("geom: inverting singular matrix")
	}
	return inv
}

// TryInverse returns the affine inverse, or false when the linear part
// is singular.
func (m AffineMatrix) TryInverse() (AffineMatrix, bool) {
	det := m.Determinant()
	if det == 0 || math.IsNaN(det) {
		return AffineMatrix{}, false
	}
	r := m.rows
	var inv AffineMatrix
	inv.Set(0, 0, r[1][1]*r[2][2]-r[2][1]*r[1][2])
	inv.Set(1, 0, -r[1][0]*r[2][2]+r[2][0]*r[1][2])
	inv.Set(2, 0, r[1][0]*r[2][1]-r[2][0]*r[1][1])
	inv.Set(0, 1, -r[0][1]*r[2][2]+r[2][1]*r[0][2])
	inv.Set(1, 1, r[0][0]*r[2][2]-r[2][0]*r[0][2])
	inv.Set(2, 1, -r[0][0]*r[2][1]+r[2][0]*r[0][1])
	inv.Set(0, 2, r[0][1]*r[1][2]-r[1][1]*r[0][2])
	inv.Set(1, 2, -r[0][0]*r[1][2]+r[1][0]*r[0][2])
	inv.Set(2, 2, r[0][0]*r[1][1]-r[1][0]*r[0][1])
	inv.Set(0, 3, -r[0][1]*r[1][2]*r[2][3]+r[0][1]*r[1][3]*r[2][2]+r[1][1]*r[0][2]*r[2][3]-
		r[1][1]*r[0][3]*r[2][2]-r[2][1]*r[0][2]*r[1][3]+r[2][1]*r[0][3]*r[1][2])
	inv.Set(1, 3, r[0][0]*r[1][2]*r[2][3]-r[0][0]*r[1][3]*r[2][2]-r[1][0]*r[0][2]*r[2][3]+
		r[1][0]*r[0][3]*r[2][2]+r[2][0]*r[0][2]*r[1][3]-r[2][0]*r[0][3]*r[1][2])
	inv.Set(2, 3, -r[0][0]*r[1][1]*r[2][3]+r[0][0]*r[1][3]*r[2][1]+r[1][0]*r[0][1]*r[2][3]-
		r[1][0]*r[0][3]*r[2][1]-r[2][0]*r[0][1]*r[1][3]+r[2][0]*r[0][3]*r[1][1])
	for i := 0; i < 3; i++ {
		for j := 0; j < 4; j++ {
			inv.rows[i][j] /= det
		}
	}
	return inv, true
}

// IsOrthogonal reports whether the rows of the linear part form an
// orthonormal basis.
func (m AffineMatrix) IsOrthogonal() bool {
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			want := 0.0
			if i == j {
				want = 1
			}
			if !almostEqualFloat(Dot(m.rows[i], m.rows[j]), want, 1e-6) {
				return false
			}
		}
	}
	return true
}

// IsIsotropic reports whether the linear part is a multiple of the
// identity.
func (m AffineMatrix) IsIsotropic() bool {
	d := m.rows[0][0]
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			want := 0.0
			if i == j {
				want = d
			}
			if !almostEqualFloat(m.rows[i][j], want, 1e-6) {
				return false
			}
		}
	}
	return true
}
