package delaunay

const arenaSlabSize = 1 << 10

// cellArena hands out cells from fixed-size slabs and recycles freed
// ones through a free list. Slabs are never returned to the runtime
// until the arena is reset, so *Cell handles stay valid across
// allocations.
type cellArena struct {
	slabs   [][]Cell
	free    []*Cell
	used    int
	liveCnt int
}

func (a *cellArena) reset() {
	a.slabs = a.slabs[:0]
	a.free = a.free[:0]
	a.used = arenaSlabSize
	a.liveCnt = 0
}

func (a *cellArena) alloc() *Cell {
	a.liveCnt++
	if n := len(a.free); n > 0 {
		c := a.free[n-1]
		a.free = a.free[:n-1]
		*c = Cell{}
		return c
	}
	if a.used == arenaSlabSize {
		a.slabs = append(a.slabs, make([]Cell, arenaSlabSize))
		a.used = 0
	}
	slab := a.slabs[len(a.slabs)-1]
	c := &slab[a.used]
	a.used++
	return c
}

func (a *cellArena) freeCell(c *Cell) {
	if !c.isDetached() {
		panic("delaunay: freeing a cell that is still linked")
	}
	c.freed = true
	a.free = append(a.free, c)
	a.liveCnt--
}

// forEachLive visits every allocated, unfreed cell. The callback must
// not allocate or free cells.
func (a *cellArena) forEachLive(fn func(*Cell) bool) {
	for si, slab := range a.slabs {
		n := arenaSlabSize
		if si == len(a.slabs)-1 {
			n = a.used
		}
		for i := 0; i < n; i++ {
			c := &slab[i]
			if c.freed {
				continue
			}
			if !fn(c) {
				return
			}
		}
	}
}
