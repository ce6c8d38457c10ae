/*
Package geom contains geometric primitives used by the triangulation and
the analysis operators.

Vectors carry four components: the fourth slot holds the SPH smoothing
length when the vector represents a particle position, and is ignored by
all purely geometric operations.
*/
package geom

import (
	"math"
)

// Component indices of a Vec.
const (
	X = iota
	Y
	Z
	H
)

// Vec is a three dimensional vector extended by a fourth component. Only
// the first three components participate in dot products, lengths and
// cross products.
type Vec [4]float64

// NewVec returns a vector with the given spatial components and zero h.
func NewVec(x, y, z float64) Vec {
	return Vec{x, y, z, 0}
}

func (v Vec) Plus(u Vec) Vec {
	return Vec{v[X] + u[X], v[Y] + u[Y], v[Z] + u[Z], v[H] + u[H]}
}

func (v Vec) Minus(u Vec) Vec {
	return Vec{v[X] - u[X], v[Y] - u[Y], v[Z] - u[Z], v[H] - u[H]}
}

func (v Vec) Scaled(s float64) Vec {
	return Vec{v[X] * s, v[Y] * s, v[Z] * s, v[H] * s}
}

// Spatial returns v with the h component cleared.
func (v Vec) Spatial() Vec {
	return Vec{v[X], v[Y], v[Z], 0}
}

// Dot is the three dimensional dot product.
func Dot(a, b Vec) float64 {
	return a[X]*b[X] + a[Y]*b[Y] + a[Z]*b[Z]
}

// Cross is the three dimensional cross product. The h component of the
// result is zero.
func Cross(a, b Vec) Vec {
	return Vec{
		a[Y]*b[Z] - a[Z]*b[Y],
		a[Z]*b[X] - a[X]*b[Z],
		a[X]*b[Y] - a[Y]*b[X],
		0,
	}
}

func (v Vec) SqrLength() float64 {
	return Dot(v, v)
}

func (v Vec) Length() float64 {
	return math.Sqrt(v.SqrLength())
}

// Normalized returns the unit vector parallel to v. It panics on a zero
// vector, which is always a programmer error here.
func (v Vec) Normalized() Vec {
	l := v.Length()
	if l == 0 {
		panic("geom: normalizing zero vector")
	}
	return Vec{v[X] / l, v[Y] / l, v[Z] / l, 0}
}

// AlmostEqual compares component-wise with the given relative tolerance
// (absolute for components below 1).
func AlmostEqual(a, b Vec, eps float64) bool {
	for i := 0; i < 3; i++ {
		if !almostEqualFloat(a[i], b[i], eps) {
			return false
		}
	}
	return true
}

func almostEqualFloat(a, b, eps float64) bool {
	scale := math.Max(1, math.Max(math.Abs(a), math.Abs(b)))
	return math.Abs(a-b) <= eps*scale
}

// IsReal reports whether all components are finite.
func (v Vec) IsReal() bool {
	for i := 0; i < 4; i++ {
		if math.IsNaN(v[i]) || math.IsInf(v[i], 0) {
			return false
		}
	}
	return true
}
