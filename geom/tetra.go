package geom

import (
	"math"
)

// Tetra is a tetrahedron given by its four corners. Under a positively
// oriented corner ordering, face i is the triangle opposite corner i,
// wound so its outward normal points away from corner i.
type Tetra [4]Vec

// TetraFromTriangle builds a tetrahedron from a base triangle and an
// apex. The base becomes face 3 up to winding.
func TetraFromTriangle(tri Triangle, apex Vec) Tetra {
	return Tetra{tri[0], tri[1], tri[2], apex}
}

// Face returns the triangle opposite corner fi. The winding matches the
// convention of Plane.Above: for a tetrahedron with positive signed
// volume, all face normals point outward.
func (t Tetra) Face(fi int) Triangle {
	switch fi {
	case 0:
		return Triangle{t[1], t[2], t[3]}
	case 1:
		return Triangle{t[0], t[3], t[2]}
	case 2:
		return Triangle{t[0], t[1], t[3]}
	case 3:
		return Triangle{t[0], t[2], t[1]}
	}
	panic("geom: face index out of range")
}

// SignedVolume is positive when the corners are positively oriented.
func (t Tetra) SignedVolume() float64 {
	v1 := t[1].Minus(t[0])
	v2 := t[2].Minus(t[0])
	v3 := t[3].Minus(t[0])
	return Dot(v1, Cross(v2, v3)) / 6
}

func (t Tetra) Volume() float64 {
	return math.Abs(t.SignedVolume())
}

func (t Tetra) Center() Vec {
	return t[0].Plus(t[1]).Plus(t[2]).Plus(t[3]).Scaled(0.25)
}

// Contains reports whether p lies inside the tetrahedron. The corners
// must be positively oriented.
func (t Tetra) Contains(p Vec) bool {
	for fi := 0; fi < 4; fi++ {
		if PlaneFromTriangle(t.Face(fi)).Above(p) {
			return false
		}
	}
	return true
}

// Circumcenter returns the center of the circumsphere, or false for a
// degenerate (coplanar or colinear) corner quartet.
func (t Tetra) Circumcenter() (Vec, bool) {
	d1 := t[1].Minus(t[0])
	d2 := t[2].Minus(t[0])
	d3 := t[3].Minus(t[0])
	a := AffineFromRows(d1, d2, d3)
	inv, ok := a.TryInverse()
	if !ok {
		return Vec{}, false
	}
	b := Vec{d1.SqrLength(), d2.SqrLength(), d3.SqrLength(), 0}.Scaled(0.5)
	return inv.Apply(b).Plus(t[0]), true
}

// Circumsphere returns the sphere through all four corners, or false for
// a degenerate quartet.
func (t Tetra) Circumsphere() (Sphere, bool) {
	center, ok := t.Circumcenter()
	if !ok {
		return Sphere{}, false
	}
	return Sphere{Center: center, Radius: t[0].Minus(center).Length()}, true
}

// UnitTetra returns the regular tetrahedron inscribed in the unit sphere.
func UnitTetra() Tetra {
	return Tetra{
		Vec{math.Sqrt(8.0 / 9.0), 0, -1.0 / 3.0, 0},
		Vec{-math.Sqrt(2.0 / 9.0), math.Sqrt(2.0 / 3.0), -1.0 / 3.0, 0},
		Vec{-math.Sqrt(2.0 / 9.0), -math.Sqrt(2.0 / 3.0), -1.0 / 3.0, 0},
		Vec{0, 0, 1, 0},
	}
}
