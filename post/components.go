// Package post implements analysis operators over particle storages:
// component finding, orbital elements, moon classification, histograms
// and simple statistics.
package post

import (
	"fmt"
	"math"
	"sort"

	"github.com/anovak/gosph/finder"
	"github.com/anovak/gosph/geom"
	"github.com/anovak/gosph/quant"
	"github.com/anovak/gosph/sched"
	"github.com/anovak/gosph/units"
)

// ComponentFlag selects how particles are grouped into components.
type ComponentFlag uint32

const (
	// SeparateByFlag keeps neighbors with differing FLAG values in
	// separate components.
	SeparateByFlag ComponentFlag = 1 << iota
	// EscapeVelocity merges spatially distinct components moving
	// slower than their mutual escape velocity. The merge pass runs
	// once, not to a fixed point.
	EscapeVelocity
	// SortByMass relabels components so component 0 is the most
	// massive, ties broken by first occurrence.
	SortByMass
)

// Components holds a per-particle component label in [0, Cnt).
type Components struct {
	Labels []int
	Cnt    int
}

// Size returns the particle count of component c.
func (comp *Components) Size(c int) int {
	n := 0
	for _, l := range comp.Labels {
		if l == c {
			n++
		}
	}
	return n
}

// Indices returns the particle indices of component c in index order.
func (comp *Components) Indices(c int) []int {
	var out []int
	for i, l := range comp.Labels {
		if l == c {
			out = append(out, i)
		}
	}
	return out
}

// FindComponents groups particles into connected components. Two
// particles connect when their distance is below radius times the
// smoothing length of the seed particle and the flag predicate admits
// them.
func FindComponents(
	s sched.Scheduler, storage *quant.Storage, radius float64,
	flags ComponentFlag,
) (*Components, error) {
	if !storage.Has(quant.Position) {
		return nil, fmt.Errorf("post: storage has no positions")
	}
	positions := storage.Vectors(quant.Position)
	n := len(positions)

	var partFlags []int64
	if flags&SeparateByFlag != 0 {
		if !storage.Has(quant.Flag) {
			return nil, fmt.Errorf(
				"post: SeparateByFlag needs a FLAG quantity")
		}
		partFlags = storage.Indices(quant.Flag)
	}

	f := finder.NewHashGrid()
	f.Build(s, positions)

	comp := &Components{Labels: make([]int, n)}
	for i := range comp.Labels {
		comp.Labels[i] = -1
	}

	var stack []int
	var neighbors []finder.NeighborRecord
	for seed := 0; seed < n; seed++ {
		if comp.Labels[seed] != -1 {
			continue
		}
		label := comp.Cnt
		comp.Cnt++
		comp.Labels[seed] = label
		stack = append(stack[:0], seed)
		for len(stack) > 0 {
			i := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			f.FindAll(i, radius*positions[i][geom.H], &neighbors)
			for _, rec := range neighbors {
				j := rec.Index
				if comp.Labels[j] != -1 {
					continue
				}
				if partFlags != nil && partFlags[i] != partFlags[j] {
					continue
				}
				comp.Labels[j] = label
				stack = append(stack, j)
			}
		}
	}

	if flags&EscapeVelocity != 0 {
		if err := mergeBoundComponents(storage, comp); err != nil {
			return nil, err
		}
	}
	if flags&SortByMass != 0 {
		sortComponentsByMass(storage, comp)
	}
	return comp, nil
}

type componentAggregate struct {
	mass     float64
	position geom.Vec
	velocity geom.Vec
	volume   float64
}

func aggregateComponents(
	storage *quant.Storage, comp *Components,
) ([]componentAggregate, error) {
	for _, id := range []quant.QuantityId{quant.Position, quant.Mass} {
		if !storage.Has(id) {
			return nil, fmt.Errorf("post: aggregation needs %v", id)
		}
	}
	positions := storage.Vectors(quant.Position)
	masses := storage.Scalars(quant.Mass)
	var velocities []geom.Vec
	if storage.Quantity(quant.Position).Order() >= quant.OrderFirst {
		velocities = storage.VectorsDt(quant.Position)
	}

	aggs := make([]componentAggregate, comp.Cnt)
	for i, c := range comp.Labels {
		a := &aggs[c]
		m := masses[i]
		a.mass += m
		a.position = a.position.Plus(positions[i].Spatial().Scaled(m))
		if velocities != nil {
			a.velocity = a.velocity.Plus(velocities[i].Spatial().Scaled(m))
		}
		h := positions[i][geom.H]
		a.volume += geom.SphereVolume(h)
	}
	for c := range aggs {
		if aggs[c].mass > 0 {
			aggs[c].position = aggs[c].position.Scaled(1 / aggs[c].mass)
			aggs[c].velocity = aggs[c].velocity.Scaled(1 / aggs[c].mass)
		}
	}
	return aggs, nil
}

// mergeBoundComponents runs a single pass over component pairs and
// joins those whose relative speed is below the mutual escape velocity.
func mergeBoundComponents(storage *quant.Storage, comp *Components) error {
	aggs, err := aggregateComponents(storage, comp)
	if err != nil {
		return err
	}

	parent := make([]int, comp.Cnt)
	for c := range parent {
		parent[c] = c
	}
	var find func(int) int
	find = func(c int) int {
		if parent[c] != c {
			parent[c] = find(parent[c])
		}
		return parent[c]
	}

	for a := 0; a < comp.Cnt; a++ {
		for b := a + 1; b < comp.Cnt; b++ {
			dist := aggs[a].position.Minus(aggs[b].position).Length()
			if dist == 0 {
				parent[find(b)] = find(a)
				continue
			}
			vEsc := math.Sqrt(
				2 * units.G * (aggs[a].mass + aggs[b].mass) / dist)
			vRel := aggs[a].velocity.Minus(aggs[b].velocity).Length()
			if vRel < vEsc {
				parent[find(b)] = find(a)
			}
		}
	}

	// Compact to consecutive labels in first-occurrence order.
	remap := make([]int, comp.Cnt)
	for c := range remap {
		remap[c] = -1
	}
	cnt := 0
	for i, l := range comp.Labels {
		root := find(l)
		if remap[root] == -1 {
			remap[root] = cnt
			cnt++
		}
		comp.Labels[i] = remap[root]
	}
	comp.Cnt = cnt
	return nil
}

// componentMasses sums particle masses per component, falling back to
// particle counts when the storage has no masses.
func componentMasses(storage *quant.Storage, comp *Components) []float64 {
	masses := make([]float64, comp.Cnt)
	if storage.Has(quant.Mass) {
		values := storage.Scalars(quant.Mass)
		for i, c := range comp.Labels {
			masses[c] += values[i]
		}
	} else {
		for _, c := range comp.Labels {
			masses[c]++
		}
	}
	return masses
}

func sortComponentsByMass(storage *quant.Storage, comp *Components) {
	masses := componentMasses(storage, comp)
	order := make([]int, comp.Cnt)
	for c := range order {
		order[c] = c
	}
	sort.SliceStable(order, func(a, b int) bool {
		return masses[order[a]] > masses[order[b]]
	})
	remap := make([]int, comp.Cnt)
	for rank, c := range order {
		remap[c] = rank
	}
	for i, l := range comp.Labels {
		comp.Labels[i] = remap[l]
	}
}

// FindLargestComponent returns the label of the most massive component.
func FindLargestComponent(storage *quant.Storage, comp *Components) int {
	masses := componentMasses(storage, comp)
	largest := 0
	for c := 1; c < comp.Cnt; c++ {
		if masses[c] > masses[largest] {
			largest = c
		}
	}
	return largest
}

// ExtractComponent copies the particles of one component into a fresh
// storage. Material assignments and attractors are not carried over.
func ExtractComponent(
	storage *quant.Storage, comp *Components, c int,
) (*quant.Storage, error) {
	if c < 0 || c >= comp.Cnt {
		return nil, fmt.Errorf(
			"post: component %d out of range [0, %d)", c, comp.Cnt)
	}
	idxs := comp.Indices(c)
	out := quant.NewStorage()
	for _, id := range storage.Ids() {
		q := storage.Quantity(id)
		out.Insert(id, q.Order(), subsetBuffer(q.Values(), idxs))
		for o := quant.OrderFirst; o <= q.Order(); o++ {
			out.Quantity(id).SetBuffer(o, subsetBuffer(q.Buffer(o), idxs))
		}
	}
	return out, nil
}

func subsetBuffer(b quant.Buffer, idxs []int) quant.Buffer {
	switch v := b.(type) {
	case quant.IndexBuffer:
		out := make(quant.IndexBuffer, len(idxs))
		for i, j := range idxs {
			out[i] = v[j]
		}
		return out
	case quant.ScalarBuffer:
		out := make(quant.ScalarBuffer, len(idxs))
		for i, j := range idxs {
			out[i] = v[j]
		}
		return out
	case quant.VectorBuffer:
		out := make(quant.VectorBuffer, len(idxs))
		for i, j := range idxs {
			out[i] = v[j]
		}
		return out
	case quant.SymTensorBuffer:
		out := make(quant.SymTensorBuffer, len(idxs))
		for i, j := range idxs {
			out[i] = v[j]
		}
		return out
	case quant.TracelessTensorBuffer:
		out := make(quant.TracelessTensorBuffer, len(idxs))
		for i, j := range idxs {
			out[i] = v[j]
		}
		return out
	case quant.TensorBuffer:
		out := make(quant.TensorBuffer, len(idxs))
		for i, j := range idxs {
			out[i] = v[j]
		}
		return out
	}
	panic("post: unknown buffer type")
}
