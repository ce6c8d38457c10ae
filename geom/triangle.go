package geom

// Triangle is an oriented triangle in space.
type Triangle [3]Vec

func (t Triangle) Center() Vec {
	return t[0].Plus(t[1]).Plus(t[2]).Scaled(1.0 / 3.0)
}

// Normal returns the (non-unit) normal of the triangle's winding.
func (t Triangle) Normal() Vec {
	return Cross(t[1].Minus(t[0]), t[2].Minus(t[0]))
}

func (t Triangle) Area() float64 {
	return 0.5 * t.Normal().Length()
}

// Reverse flips the winding, negating the normal.
func (t Triangle) Reverse() Triangle {
	return Triangle{t[0], t[2], t[1]}
}
