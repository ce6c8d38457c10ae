package geom

import (
	"math"
)

// Sphere is a center plus radius.
type Sphere struct {
	Center Vec
	Radius float64
}

func (s Sphere) Contains(v Vec) bool {
	return v.Minus(s.Center).SqrLength() < s.Radius*s.Radius
}

func (s Sphere) Volume() float64 {
	return SphereVolume(s.Radius)
}

// SphereVolume returns the volume of a sphere with the given radius.
func SphereVolume(r float64) float64 {
	return 4.0 / 3.0 * math.Pi * r * r * r
}
