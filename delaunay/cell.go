/*
Package delaunay builds incremental 3-D Delaunay triangulations by the
Bowyer-Watson algorithm.

Cells are tetrahedra over a shared vertex array. Adjacent cells link to
each other through face indices: face f of a cell is the triangle
opposite vertex f, and the mirror index of a link is the face on the
neighbor that faces back. For every non-null neighbor n on face f,
n.Neighbor(n.Mirror(f)) == c.
*/
package delaunay

import (
	"github.com/anovak/gosph/geom"
)

// faceIndices lists the vertex indices of each face, wound so the face
// normal of a positively oriented cell points outward.
var faceIndices = [4][3]int{
	{1, 2, 3},
	{0, 3, 2},
	{0, 1, 3},
	{0, 2, 1},
}

// Face is an ordered vertex triple. Equality is strict: the same three
// vertices in a different winding are a different face.
type Face [3]int32

// Reversed returns the face as seen from the other side.
func (f Face) Reversed() Face {
	return Face{f[2], f[1], f[0]}
}

// normalized rotates the triple so the smallest vertex leads, making
// faces comparable irrespective of the starting corner.
func (f Face) normalized() Face {
	min := 0
	for i := 1; i < 3; i++ {
		if f[i] < f[min] {
			min = i
		}
	}
	return Face{f[min], f[(min+1)%3], f[(min+2)%3]}
}

// Cell is one tetrahedron of the triangulation. Cells live in the
// triangulation's arena; handles are invalidated by Build.
type Cell struct {
	verts     [4]int32
	neighbors [4]*Cell
	mirrors   [4]int8
	sphere    geom.Sphere
	visited   uint32
	freed     bool
}

// Vertex returns the global index of corner i.
func (c *Cell) Vertex(i int) int { return int(c.verts[i]) }

// Neighbor returns the cell across face f, nil on the surface.
func (c *Cell) Neighbor(f int) *Cell { return c.neighbors[f] }

// Mirror returns the face index on the neighbor across f that faces
// back; it is meaningless when the neighbor is nil.
func (c *Cell) Mirror(f int) int { return int(c.mirrors[f]) }

// Face returns the vertex triple of face f in outward winding.
func (c *Cell) Face(f int) Face {
	fi := faceIndices[f]
	return Face{c.verts[fi[0]], c.verts[fi[1]], c.verts[fi[2]]}
}

// Circumsphere returns the cell's cached circumsphere.
func (c *Cell) Circumsphere() geom.Sphere { return c.sphere }

func (c *Cell) setNeighbor(f int, n *Cell, mirror int) {
	c.neighbors[f] = n
	c.mirrors[f] = int8(mirror)
	if n != nil {
		n.neighbors[mirror] = c
		n.mirrors[mirror] = int8(f)
	}
}

// detach unwinds all links of c symmetrically. Links that no longer
// point back (because the far side was already re-wired) are left alone.
func (c *Cell) detach() {
	for f := 0; f < 4; f++ {
		n := c.neighbors[f]
		if n != nil && n.neighbors[c.mirrors[f]] == c {
			n.neighbors[c.mirrors[f]] = nil
		}
		c.neighbors[f] = nil
	}
}

func (c *Cell) isDetached() bool {
	for f := 0; f < 4; f++ {
		if c.neighbors[f] != nil {
			return false
		}
	}
	return true
}
