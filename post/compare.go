package post

import (
	"fmt"
	"math"
	"sort"

	"github.com/anovak/gosph/finder"
	"github.com/anovak/gosph/geom"
	"github.com/anovak/gosph/quant"
	"github.com/anovak/gosph/sched"
)

func closeEnough(a, b, eps float64) bool {
	return math.Abs(a-b) <= eps*(1+math.Max(math.Abs(a), math.Abs(b)))
}

func closeVecs(a, b geom.Vec, eps float64) bool {
	for d := 0; d < 4; d++ {
		if !closeEnough(a[d], b[d], eps) {
			return false
		}
	}
	return true
}

// compareBuffers reports the first element where the buffers differ by
// more than eps.
func compareBuffers(a, b quant.Buffer, eps float64) (int, bool) {
	switch av := a.(type) {
	case quant.IndexBuffer:
		bv := b.(quant.IndexBuffer)
		for i := range av {
			if av[i] != bv[i] {
				return i, false
			}
		}
	case quant.ScalarBuffer:
		bv := b.(quant.ScalarBuffer)
		for i := range av {
			if !closeEnough(av[i], bv[i], eps) {
				return i, false
			}
		}
	case quant.VectorBuffer:
		bv := b.(quant.VectorBuffer)
		for i := range av {
			if !closeVecs(av[i], bv[i], eps) {
				return i, false
			}
		}
	case quant.SymTensorBuffer:
		bv := b.(quant.SymTensorBuffer)
		for i := range av {
			for k := 0; k < 6; k++ {
				if !closeEnough(av[i][k], bv[i][k], eps) {
					return i, false
				}
			}
		}
	case quant.TracelessTensorBuffer:
		bv := b.(quant.TracelessTensorBuffer)
		for i := range av {
			for k := 0; k < 5; k++ {
				if !closeEnough(av[i][k], bv[i][k], eps) {
					return i, false
				}
			}
		}
	case quant.TensorBuffer:
		bv := b.(quant.TensorBuffer)
		for i := range av {
			for k := 0; k < 9; k++ {
				if !closeEnough(av[i][k], bv[i][k], eps) {
					return i, false
				}
			}
		}
	}
	return 0, true
}

// CompareParticles checks that two storages hold the same quantities
// with element-wise values within eps, derivatives included.
func CompareParticles(test, ref *quant.Storage, eps float64) error {
	if test.ParticleCnt() != ref.ParticleCnt() {
		return fmt.Errorf(
			"post: particle counts differ: test has %d, reference has %d",
			test.ParticleCnt(), ref.ParticleCnt())
	}
	if test.QuantityCnt() != ref.QuantityCnt() {
		return fmt.Errorf(
			"post: quantity counts differ: test has %d, reference has %d",
			test.QuantityCnt(), ref.QuantityCnt())
	}

	for _, id := range ref.Ids() {
		if !test.Has(id) {
			return fmt.Errorf("post: test storage is missing %v", id)
		}
		tq, rq := test.Quantity(id), ref.Quantity(id)
		if tq.Order() != rq.Order() {
			return fmt.Errorf("post: order of %v differs", id)
		}
		for o := quant.OrderZero; o <= rq.Order(); o++ {
			if i, ok := compareBuffers(tq.Buffer(o), rq.Buffer(o), eps); !ok {
				return fmt.Errorf(
					"post: difference in %v (derivative order %v) at particle %d",
					id, o, i)
			}
		}
	}
	return nil
}

// CompareLargeSpheres checks that the largest fraction of reference
// particles each have a matching test particle nearby: within
// maxDeviation in position and within eps in mass, radius and velocity.
func CompareLargeSpheres(
	test, ref *quant.Storage, fraction, maxDeviation, eps float64,
) error {
	m1 := test.Scalars(quant.Mass)
	r1 := test.Vectors(quant.Position)
	v1 := test.VectorsDt(quant.Position)
	m2 := ref.Scalars(quant.Mass)
	r2 := ref.Vectors(quant.Position)
	v2 := ref.VectorsDt(quant.Position)

	count := int(float64(max(len(r1), len(r2))) * fraction)
	if count >= len(r1) || count >= len(r2) {
		return fmt.Errorf(
			"post: particle counts differ significantly: test has %d, reference has %d",
			len(r1), len(r2))
	}

	order := make([]int, len(m2))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return m2[order[a]] > m2[order[b]]
	})

	f := finder.NewHashGrid()
	f.Build(sched.Serial{}, r1)

	var neighbors []finder.NeighborRecord
	for i := 0; i < count; i++ {
		p2 := order[i]
		f.FindAllAt(r2[p2], maxDeviation, &neighbors)
		found := false
		for _, rec := range neighbors {
			p1 := rec.Index
			if !closeEnough(m1[p1], m2[p2], eps) {
				continue
			}
			if !closeEnough(r1[p1][geom.H], r2[p2][geom.H], eps) {
				continue
			}
			if !closeVecs(v1[p1], v2[p2], eps) {
				continue
			}
			found = true
			break
		}
		if !found {
			return fmt.Errorf(
				"post: no matching test particle for the %d-th largest reference particle",
				i+1)
		}
	}
	return nil
}
