package geom

import (
	"errors"
	"math"
)

// ErrParallel is returned by Plane.Intersection when the line direction
// lies in the plane.
var ErrParallel = errors.New("geom: line is parallel to the plane")

// Plane is a point plus a unit normal.
type Plane struct {
	P, N Vec
}

// PlaneFromTriangle builds the plane of the triangle, with the normal
// following the triangle's winding.
func PlaneFromTriangle(t Triangle) Plane {
	return Plane{P: t[0], N: t.Normal().Normalized()}
}

func (p Plane) SignedDistance(v Vec) float64 {
	return Dot(v.Minus(p.P), p.N)
}

// Above reports whether v lies in the positive half-space of the plane.
func (p Plane) Above(v Vec) bool {
	return p.SignedDistance(v) > 0
}

// Project returns the orthogonal projection of v onto the plane.
func (p Plane) Project(v Vec) Vec {
	return v.Minus(p.N.Scaled(p.SignedDistance(v)))
}

// Intersection returns the point where the line origin + t*dir crosses
// the plane.
func (p Plane) Intersection(origin, dir Vec) (Vec, error) {
	d := Dot(p.N, dir)
	if math.Abs(d) < 1e-20 {
		return Vec{}, ErrParallel
	}
	t := -p.SignedDistance(origin) / d
	return origin.Plus(dir.Scaled(t)), nil
}
