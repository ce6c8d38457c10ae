package geom

import (
	"sort"
)

// SpatialSort reorders the points in place along a Morton (Z-order)
// curve over their bounding box. Identical inputs produce identical
// orderings, keeping downstream algorithms deterministic.
func SpatialSort(points []Vec) {
	idx := SpatialOrder(points)
	sorted := make([]Vec, len(points))
	for i, j := range idx {
		sorted[i] = points[j]
	}
	copy(points, sorted)
}

// SpatialOrder returns the permutation that would sort the points along
// a Morton curve, leaving the points themselves untouched.
func SpatialOrder(points []Vec) []int {
	idx := make([]int, len(points))
	for i := range idx {
		idx[i] = i
	}
	if len(points) < 2 {
		return idx
	}
	box := EmptyBox()
	for _, p := range points {
		box.Extend(p)
	}
	size := box.Size()
	for i := 0; i < 3; i++ {
		if size[i] == 0 {
			size[i] = 1
		}
	}

	// 21 bits per axis fills a 63-bit code.
	const grid = 1 << 21
	keys := make([]uint64, len(points))
	for i, p := range points {
		rel := p.Minus(box.Min)
		var c [3]uint64
		for d := 0; d < 3; d++ {
			x := uint64(rel[d] / size[d] * (grid - 1))
			if x >= grid {
				x = grid - 1
			}
			c[d] = x
		}
		keys[i] = interleaveBits(c[0]) | interleaveBits(c[1])<<1 | interleaveBits(c[2])<<2
	}

	sort.SliceStable(idx, func(a, b int) bool { return keys[idx[a]] < keys[idx[b]] })
	return idx
}

// interleaveBits spreads the low 21 bits of x so that consecutive bits
// land three positions apart.
func interleaveBits(x uint64) uint64 {
	x &= (1 << 21) - 1
	x = (x | x<<32) & 0x1f00000000ffff
	x = (x | x<<16) & 0x1f0000ff0000ff
	x = (x | x<<8) & 0x100f00f00f00f00f
	x = (x | x<<4) & 0x10c30c30c30c30c3
	x = (x | x<<2) & 0x1249249249249249
	return x
}
