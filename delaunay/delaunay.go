package delaunay

import (
	"errors"
	"fmt"
	"math/rand"

	"github.com/anovak/gosph/geom"
)

// BuildFlag tweaks how Build processes its input.
type BuildFlag uint32

const (
	// SpatialSort inserts points in Morton order instead of input
	// order, which keeps locate walks short for scattered input.
	SpatialSort BuildFlag = 1 << iota
)

const maxBuildAttempts = 10

var errDegenerate = errors.New("degenerate point configuration")

// Triangulation is an incrementally built 3-D Delaunay triangulation.
// The zero value is unusable; create one with New and fill it with
// Build. A Triangulation may be rebuilt many times and reuses its cell
// arena across builds.
type Triangulation struct {
	pts     []geom.Vec
	superLo int32
	arena   cellArena
	epoch   uint32
	hint    *Cell

	// insertion scratch, reused across calls
	bad      []*Cell
	stack    []*Cell
	boundary []cavityFace
	pending  map[Face]pendingFace
}

// cavityFace is one triangle of the cavity surface, wound outward from
// the cavity, together with the surviving cell on its far side.
type cavityFace struct {
	face        Face
	outside     *Cell
	outsideFace int
}

type pendingFace struct {
	cell *Cell
	face int
}

func New() *Triangulation {
	return &Triangulation{pending: map[Face]pendingFace{}}
}

// Build triangulates the given points, replacing any previous contents.
// Vertex indices stored in the cells refer to the points slice. Inputs
// with exact degeneracies (duplicate points, cospherical clusters) are
// retried with a tiny deterministic jitter; Build fails only when the
// jitter cannot break the configuration.
func (t *Triangulation) Build(points []geom.Vec, flags BuildFlag) error {
	if len(points) < 4 {
		return fmt.Errorf("delaunay: need at least 4 points, got %d",
			len(points))
	}

	var order []int
	if flags&SpatialSort != 0 {
		order = geom.SpatialOrder(points)
	} else {
		order = make([]int, len(points))
		for i := range order {
			order[i] = i
		}
	}

	box := geom.EmptyBox()
	for _, p := range points {
		box.Extend(p)
	}
	extent := geom.MaxElement(box.Size())
	if extent == 0 {
		extent = 1
	}

	buf := make([]geom.Vec, len(points))
	for attempt := 0; attempt < maxBuildAttempts; attempt++ {
		copy(buf, points)
		if attempt > 0 {
			perturb(buf, extent*1e-8*float64(attempt), int64(attempt))
		}
		err := t.build(buf, box, order)
		if err == nil || !errors.Is(err, errDegenerate) {
			return err
		}
	}
	return fmt.Errorf("delaunay: %w after %d attempts",
		errDegenerate, maxBuildAttempts)
}

func (t *Triangulation) build(
	points []geom.Vec, box geom.Box, order []int,
) error {
	t.arena.reset()
	t.epoch = 0
	t.hint = nil

	// The super tetrahedron comfortably encloses the bounding box: the
	// scaled inradius, 4/3 of the largest box dimension, exceeds the
	// box half diagonal.
	size := 4 * geom.MaxElement(box.Size())
	if size == 0 {
		size = 1
	}
	center := box.Center()
	unit := geom.UnitTetra()

	t.superLo = int32(len(points))
	t.pts = append(t.pts[:0], points...)
	for i := 0; i < 4; i++ {
		t.pts = append(t.pts, center.Plus(unit[i].Scaled(size)))
	}

	root := t.arena.alloc()
	root.verts = [4]int32{
		t.superLo, t.superLo + 1, t.superLo + 2, t.superLo + 3,
	}
	sphere, ok := t.Tetrahedron(root).Circumsphere()
	if !ok {
		return errDegenerate
	}
	root.sphere = sphere
	t.hint = root

	for _, i := range order {
		if err := t.insert(int32(i)); err != nil {
			return err
		}
	}

	t.stripSuper()
	if t.arena.liveCnt == 0 {
		return errDegenerate
	}
	return nil
}

func (t *Triangulation) insert(vi int32) error {
	p := t.pts[vi]
	loc, ok := t.locate(p)
	if !ok || !loc.sphere.Contains(p) {
		return errDegenerate
	}

	// Flood out from the located cell over every cell whose
	// circumsphere swallows p, recording the cavity surface.
	t.epoch++
	t.bad = t.bad[:0]
	t.boundary = t.boundary[:0]
	t.stack = append(t.stack[:0], loc)
	loc.visited = t.epoch
	for len(t.stack) > 0 {
		c := t.stack[len(t.stack)-1]
		t.stack = t.stack[:len(t.stack)-1]
		t.bad = append(t.bad, c)
		for f := 0; f < 4; f++ {
			n := c.neighbors[f]
			if n == nil || !n.sphere.Contains(p) {
				t.boundary = append(t.boundary, cavityFace{
					face:        c.Face(f),
					outside:     n,
					outsideFace: int(c.mirrors[f]),
				})
				continue
			}
			if n.visited != t.epoch {
				n.visited = t.epoch
				t.stack = append(t.stack, n)
			}
		}
	}

	// One new cell per cavity face: the reversed face as base, the new
	// vertex as apex, which keeps cells positively oriented. The base
	// glues to the old outside neighbor; side faces pair up among the
	// new cells through the pending map.
	for k := range t.pending {
		delete(t.pending, k)
	}
	var last *Cell
	for _, bf := range t.boundary {
		c := t.arena.alloc()
		c.verts = [4]int32{bf.face[0], bf.face[2], bf.face[1], vi}
		sphere, ok := t.Tetrahedron(c).Circumsphere()
		if !ok {
			return errDegenerate
		}
		c.sphere = sphere
		if bf.outside != nil {
			c.setNeighbor(3, bf.outside, bf.outsideFace)
		}
		for f := 0; f < 3; f++ {
			key := c.Face(f)
			rk := key.Reversed().normalized()
			if m, found := t.pending[rk]; found {
				delete(t.pending, rk)
				c.setNeighbor(f, m.cell, m.face)
			} else {
				t.pending[key.normalized()] = pendingFace{c, f}
			}
		}
		last = c
	}
	if len(t.pending) != 0 {
		return errDegenerate
	}

	for _, b := range t.bad {
		b.detach()
	}
	for _, b := range t.bad {
		t.arena.freeCell(b)
	}
	t.hint = last
	return nil
}

// locate walks from the current hint cell toward p, moving through any
// face that p lies outside of. A stalled or escaped walk falls back to
// scanning every live cell.
func (t *Triangulation) locate(p geom.Vec) (*Cell, bool) {
	start := t.hint
	if start == nil || start.freed {
		t.arena.forEachLive(func(c *Cell) bool {
			start = c
			return false
		})
	}
	if start == nil {
		return nil, false
	}

	c := start
	maxSteps := 4*t.arena.liveCnt + 64
walk:
	for step := 0; step < maxSteps; step++ {
		tet := t.Tetrahedron(c)
		for f := 0; f < 4; f++ {
			if !geom.PlaneFromTriangle(tet.Face(f)).Above(p) {
				continue
			}
			n := c.neighbors[f]
			if n == nil {
				break walk
			}
			c = n
			continue walk
		}
		return c, true
	}

	var found *Cell
	t.arena.forEachLive(func(c *Cell) bool {
		if t.Tetrahedron(c).Contains(p) {
			found = c
			return false
		}
		return true
	})
	return found, found != nil
}

// stripSuper removes every cell that uses a super-tetrahedron vertex,
// leaving the triangulation of the input points alone.
func (t *Triangulation) stripSuper() {
	doomed := t.bad[:0]
	t.arena.forEachLive(func(c *Cell) bool {
		for i := 0; i < 4; i++ {
			if c.verts[i] >= t.superLo {
				doomed = append(doomed, c)
				break
			}
		}
		return true
	})
	for _, c := range doomed {
		c.detach()
	}
	for _, c := range doomed {
		t.arena.freeCell(c)
	}
	t.bad = doomed[:0]

	t.hint = nil
	t.arena.forEachLive(func(c *Cell) bool {
		t.hint = c
		return false
	})
}

func perturb(points []geom.Vec, scale float64, seed int64) {
	rnd := rand.New(rand.NewSource(seed*104729 + 1))
	for i := range points {
		for d := 0; d < 3; d++ {
			points[i][d] += (2*rnd.Float64() - 1) * scale
		}
	}
}

// CellCnt returns the number of live cells.
func (t *Triangulation) CellCnt() int { return t.arena.liveCnt }

// Cells collects every live cell into a fresh slice.
func (t *Triangulation) Cells() []*Cell {
	cells := make([]*Cell, 0, t.arena.liveCnt)
	t.arena.forEachLive(func(c *Cell) bool {
		cells = append(cells, c)
		return true
	})
	return cells
}

// VertexCnt returns the number of input points of the last Build.
func (t *Triangulation) VertexCnt() int { return int(t.superLo) }

// Vertex returns the position of input point i.
func (t *Triangulation) Vertex(i int) geom.Vec { return t.pts[i] }

// Tetrahedron returns the cell's geometry.
func (t *Triangulation) Tetrahedron(c *Cell) geom.Tetra {
	return geom.Tetra{
		t.pts[c.verts[0]], t.pts[c.verts[1]],
		t.pts[c.verts[2]], t.pts[c.verts[3]],
	}
}

// Triangle returns the geometry of face f of c, wound outward.
func (t *Triangulation) Triangle(c *Cell, f int) geom.Triangle {
	return t.Tetrahedron(c).Face(f)
}

// Locate returns the cell whose tetrahedron contains p, if any.
func (t *Triangulation) Locate(p geom.Vec) (*Cell, bool) {
	return t.locate(p)
}

// Volume returns the total volume of all cells, i.e. the volume of the
// convex hull of the input points.
func (t *Triangulation) Volume() float64 {
	sum := 0.0
	t.arena.forEachLive(func(c *Cell) bool {
		sum += t.Tetrahedron(c).Volume()
		return true
	})
	return sum
}

// ConvexHull returns the outward-wound surface triangles of the
// triangulation.
func (t *Triangulation) ConvexHull() []geom.Triangle {
	var tris []geom.Triangle
	t.arena.forEachLive(func(c *Cell) bool {
		for f := 0; f < 4; f++ {
			if c.neighbors[f] == nil {
				tris = append(tris, t.Triangle(c, f))
			}
		}
		return true
	})
	return tris
}

// AlphaShape returns the surface triangles of the alpha shape made of
// all cells whose longest edge is shorter than alpha. Concave regions
// and interior cavities larger than alpha show up in the surface, which
// a convex hull would bridge over.
func (t *Triangulation) AlphaShape(alpha float64) ([]geom.Triangle, error) {
	if alpha <= 0 {
		return nil, fmt.Errorf(
			"delaunay: alpha must be positive, got %g", alpha)
	}
	a2 := alpha * alpha

	t.epoch++
	t.arena.forEachLive(func(c *Cell) bool {
		if t.maxEdgeSqr(c) < a2 {
			c.visited = t.epoch
		}
		return true
	})

	var tris []geom.Triangle
	t.arena.forEachLive(func(c *Cell) bool {
		if c.visited != t.epoch {
			return true
		}
		for f := 0; f < 4; f++ {
			n := c.neighbors[f]
			if n == nil || n.visited != t.epoch {
				tris = append(tris, t.Triangle(c, f))
			}
		}
		return true
	})
	return tris, nil
}

func (t *Triangulation) maxEdgeSqr(c *Cell) float64 {
	max := 0.0
	for i := 0; i < 3; i++ {
		for j := i + 1; j < 4; j++ {
			d := t.pts[c.verts[i]].Minus(t.pts[c.verts[j]]).SqrLength()
			if d > max {
				max = d
			}
		}
	}
	return max
}
