package geom

import (
	"math"
)

// Box is an axis-aligned bounding box. The zero value is the empty box:
// Extend must be called before Center or Size make sense.
type Box struct {
	Min, Max Vec
	empty    bool
	init     bool
}

// EmptyBox returns a box containing no points.
func EmptyBox() Box {
	return Box{empty: true}
}

func (b *Box) Extend(v Vec) {
	if b.empty || !b.init {
		b.Min, b.Max = v.Spatial(), v.Spatial()
		b.empty, b.init = false, true
		return
	}
	for i := 0; i < 3; i++ {
		b.Min[i] = math.Min(b.Min[i], v[i])
		b.Max[i] = math.Max(b.Max[i], v[i])
	}
}

func (b *Box) Empty() bool {
	return b.empty || !b.init
}

func (b *Box) Center() Vec {
	return b.Min.Plus(b.Max).Scaled(0.5)
}

func (b *Box) Size() Vec {
	return b.Max.Minus(b.Min)
}

func (b *Box) Contains(v Vec) bool {
	for i := 0; i < 3; i++ {
		if v[i] < b.Min[i] || v[i] > b.Max[i] {
			return false
		}
	}
	return true
}

// MaxElement returns the largest spatial component of v.
func MaxElement(v Vec) float64 {
	return math.Max(v[X], math.Max(v[Y], v[Z]))
}
