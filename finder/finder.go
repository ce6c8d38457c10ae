// Package finder answers fixed-radius neighbor queries over particle
// positions. Finders are built once and are then safe for concurrent
// queries.
package finder

import (
	"encoding/binary"
	"math"

	"github.com/cespare/xxhash/v2"

	"github.com/anovak/gosph/geom"
	"github.com/anovak/gosph/sched"
)

// NeighborRecord is one query result: a point index and its squared
// distance from the query point.
type NeighborRecord struct {
	Index   int
	DistSqr float64
}

// Finder locates all points within a radius of a query. FindAll appends
// into out to let callers reuse the backing array; it returns the number
// of neighbors found.
type Finder interface {
	Build(s sched.Scheduler, points []geom.Vec)
	FindAll(i int, radius float64, out *[]NeighborRecord) int
	FindAllAt(p geom.Vec, radius float64, out *[]NeighborRecord) int
}

// BruteForce scans every point per query. It serves as the reference for
// the grid finder and wins for very small point sets.
type BruteForce struct {
	points []geom.Vec
}

func NewBruteForce() *BruteForce { return &BruteForce{} }

func (f *BruteForce) Build(s sched.Scheduler, points []geom.Vec) {
	f.points = points
}

func (f *BruteForce) FindAll(i int, radius float64, out *[]NeighborRecord) int {
	return f.FindAllAt(f.points[i], radius, out)
}

func (f *BruteForce) FindAllAt(p geom.Vec, radius float64, out *[]NeighborRecord) int {
	*out = (*out)[:0]
	r2 := radius * radius
	for j, q := range f.points {
		d2 := p.Minus(q).Spatial().SqrLength()
		if d2 <= r2 {
			*out = append(*out, NeighborRecord{Index: j, DistSqr: d2})
		}
	}
	return len(*out)
}

// HashGrid buckets points into uniform cells keyed by a hash of their
// integer cell coordinates, so only the box is dense, not the whole
// domain. A hash collision merges two cells, which costs extra distance
// checks but never loses a neighbor.
type HashGrid struct {
	points   []geom.Vec
	cellSize float64
	cells    map[uint64][]int32
}

func NewHashGrid() *HashGrid { return &HashGrid{} }

func cellKey(ix, iy, iz int64) uint64 {
	var buf [24]byte
	binary.LittleEndian.PutUint64(buf[0:], uint64(ix))
	binary.LittleEndian.PutUint64(buf[8:], uint64(iy))
	binary.LittleEndian.PutUint64(buf[16:], uint64(iz))
	return xxhash.Sum64(buf[:])
}

func (f *HashGrid) Build(s sched.Scheduler, points []geom.Vec) {
	f.points = points
	f.cells = make(map[uint64][]int32, len(points))
	if len(points) == 0 {
		f.cellSize = 1
		return
	}

	box := geom.EmptyBox()
	for _, p := range points {
		box.Extend(p)
	}
	size := box.Size()
	volume := math.Max(size[geom.X], 1e-30) *
		math.Max(size[geom.Y], 1e-30) *
		math.Max(size[geom.Z], 1e-30)
	f.cellSize = math.Cbrt(volume / float64(len(points)))
	// flat or colinear distributions collapse the volume estimate,
	// which would make the query reach explode
	if lower := geom.MaxElement(size) / math.Cbrt(float64(len(points))); f.cellSize < lower {
		f.cellSize = lower
	}
	if geom.MaxElement(size) == 0 {
		// coincident points all land in one cell
		f.cellSize = 1
	}

	for i, p := range points {
		key := cellKey(f.coords(p))
		f.cells[key] = append(f.cells[key], int32(i))
	}
}

func (f *HashGrid) coords(p geom.Vec) (int64, int64, int64) {
	return int64(math.Floor(p[geom.X] / f.cellSize)),
		int64(math.Floor(p[geom.Y] / f.cellSize)),
		int64(math.Floor(p[geom.Z] / f.cellSize))
}

func (f *HashGrid) FindAll(i int, radius float64, out *[]NeighborRecord) int {
	return f.FindAllAt(f.points[i], radius, out)
}

func (f *HashGrid) FindAllAt(p geom.Vec, radius float64, out *[]NeighborRecord) int {
	*out = (*out)[:0]
	r2 := radius * radius
	reach := int64(math.Ceil(radius / f.cellSize))
	cx, cy, cz := f.coords(p)
	for ix := cx - reach; ix <= cx+reach; ix++ {
		for iy := cy - reach; iy <= cy+reach; iy++ {
			for iz := cz - reach; iz <= cz+reach; iz++ {
				for _, j := range f.cells[cellKey(ix, iy, iz)] {
					d2 := p.Minus(f.points[j]).Spatial().SqrLength()
					if d2 <= r2 {
						*out = append(*out, NeighborRecord{
							Index:   int(j),
							DistSqr: d2,
						})
					}
				}
			}
		}
	}
	return len(*out)
}
