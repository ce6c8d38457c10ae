package geom

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVecBasics(t *testing.T) {
	a := NewVec(1, 2, 3)
	b := NewVec(-2, 0.5, 4)

	assert.Equal(t, NewVec(-1, 2.5, 7), a.Plus(b))
	assert.Equal(t, NewVec(3, 1.5, -1), a.Minus(b))
	assert.InDelta(t, 1*-2+2*0.5+3*4, Dot(a, b), 1e-12)

	c := Cross(a, b)
	assert.InDelta(t, 0, Dot(c, a), 1e-12)
	assert.InDelta(t, 0, Dot(c, b), 1e-12)

	assert.InDelta(t, 1, a.Normalized().Length(), 1e-12)
}

func TestVecIgnoresSmoothingLength(t *testing.T) {
	a := Vec{1, 0, 0, 5}
	b := Vec{0, 1, 0, 7}
	assert.Equal(t, 0.0, Dot(a, b))
	assert.InDelta(t, 1, a.Length(), 1e-12)
}

func TestBoxExtend(t *testing.T) {
	box := EmptyBox()
	assert.True(t, box.Empty())
	box.Extend(NewVec(1, 2, 3))
	box.Extend(NewVec(-1, 5, 0))
	assert.Equal(t, NewVec(-1, 2, 0), box.Min)
	assert.Equal(t, NewVec(1, 5, 3), box.Max)
	assert.Equal(t, NewVec(0, 3.5, 1.5), box.Center())
	assert.True(t, box.Contains(NewVec(0, 3, 2)))
	assert.False(t, box.Contains(NewVec(2, 3, 2)))
}

func TestTriangleNormalAndArea(t *testing.T) {
	tri := Triangle{NewVec(0, 0, 0), NewVec(1, 0, 0), NewVec(0, 1, 0)}
	n := tri.Normal().Normalized()
	assert.InDelta(t, 1, n[Z], 1e-12)
	assert.InDelta(t, 0.5, tri.Area(), 1e-12)

	rev := tri.Reverse()
	assert.InDelta(t, -1, rev.Normal().Normalized()[Z], 1e-12)
}

func TestPlaneDistanceAndProjection(t *testing.T) {
	tri := Triangle{NewVec(0, 0, 1), NewVec(1, 0, 1), NewVec(0, 1, 1)}
	p := PlaneFromTriangle(tri)

	assert.InDelta(t, 1, p.SignedDistance(NewVec(0.2, 0.3, 2)), 1e-12)
	assert.True(t, p.Above(NewVec(0, 0, 1.5)))
	assert.False(t, p.Above(NewVec(0, 0, 0.5)))

	proj := p.Project(NewVec(3, 4, 7))
	assert.InDelta(t, 0, p.SignedDistance(proj), 1e-12)

	is, err := p.Intersection(NewVec(0, 0, 0), NewVec(0, 0, 1))
	require.NoError(t, err)
	assert.InDelta(t, 1, is[Z], 1e-12)

	_, err = p.Intersection(NewVec(0, 0, 0), NewVec(1, 0, 0))
	assert.ErrorIs(t, err, ErrParallel)
}

func TestTetraVolume(t *testing.T) {
	tet := Tetra{NewVec(0, 0, 0), NewVec(1, 0, 0), NewVec(0, 1, 0), NewVec(0, 0, 1)}
	assert.InDelta(t, 1.0/6.0, tet.SignedVolume(), 1e-12)
	assert.InDelta(t, 1.0/6.0, tet.Volume(), 1e-12)
}

func TestTetraContains(t *testing.T) {
	tet := UnitTetra()
	require.Greater(t, tet.SignedVolume(), 0.0)
	assert.True(t, tet.Contains(tet.Center()))
	assert.False(t, tet.Contains(NewVec(2, 2, 2)))

	// outward normals: the center is below every face plane
	for fi := 0; fi < 4; fi++ {
		assert.False(t, PlaneFromTriangle(tet.Face(fi)).Above(tet.Center()))
	}
}

func TestTetraCircumsphere(t *testing.T) {
	tet := UnitTetra()
	sphere, ok := tet.Circumsphere()
	require.True(t, ok)
	assert.InDelta(t, 1, sphere.Radius, 1e-10)
	for i := 0; i < 4; i++ {
		assert.InDelta(t, sphere.Radius, tet[i].Minus(sphere.Center).Length(), 1e-10)
	}

	// coplanar quartet has no circumsphere
	flat := Tetra{NewVec(0, 0, 0), NewVec(1, 0, 0), NewVec(0, 1, 0), NewVec(1, 1, 0)}
	_, ok = flat.Circumsphere()
	assert.False(t, ok)
}

func TestAffineInverse(t *testing.T) {
	m := AffineFromRows(
		Vec{2, 1, 0, 5},
		Vec{0, 3, 1, -2},
		Vec{1, 0, 1, 1},
	)
	inv := m.Inverse()
	id := m.Times(inv)
	for i := 0; i < 3; i++ {
		for j := 0; j < 4; j++ {
			want := 0.0
			if i == j {
				want = 1
			}
			assert.InDelta(t, want, id.At(i, j), 1e-10, "element (%d,%d)", i, j)
		}
	}
}

func TestAffineSingular(t *testing.T) {
	m := AffineFromRows(
		Vec{1, 2, 3, 0},
		Vec{2, 4, 6, 0},
		Vec{0, 0, 1, 0},
	)
	_, ok := m.TryInverse()
	assert.False(t, ok)
	assert.Panics(t, func() { m.Inverse() })
}

func TestRotations(t *testing.T) {
	v := NewVec(1, 0, 0)
	r := RotateZ(math.Pi / 2).Apply(v)
	assert.True(t, AlmostEqual(r, NewVec(0, 1, 0), 1e-12))

	// rotateAxis around z must agree with rotateZ
	a := RotateAxis(NewVec(0, 0, 1), 0.7)
	b := RotateZ(0.7)
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			assert.InDelta(t, b.At(i, j), a.At(i, j), 1e-12)
		}
	}
	assert.True(t, a.IsOrthogonal())
	assert.False(t, a.IsIsotropic())
	assert.True(t, Scale(NewVec(2, 2, 2)).IsIsotropic())
}

func TestCrossProductOperator(t *testing.T) {
	a := NewVec(1, -2, 0.5)
	v := NewVec(0.3, 4, -1)
	assert.True(t, AlmostEqual(CrossProductOperator(a).Apply(v), Cross(a, v), 1e-12))
}

func TestQuatMatrixRoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for iter := 0; iter < 100; iter++ {
		axis := NewVec(rng.Float64()-0.5, rng.Float64()-0.5, rng.Float64()-0.5)
		if axis.Length() < 1e-3 {
			continue
		}
		angle := rng.Float64() * math.Pi
		m := RotateAxis(axis.Normalized(), angle)

		q := QuatFromMatrix(m)
		back := q.Convert()
		for i := 0; i < 3; i++ {
			for j := 0; j < 3; j++ {
				assert.InDelta(t, m.At(i, j), back.At(i, j), 1e-9)
			}
		}
	}
}

func TestQuatFromAxisAngle(t *testing.T) {
	q := QuatFromAxisAngle(NewVec(0, 0, 2), math.Pi/3)
	assert.True(t, AlmostEqual(q.Axis(), NewVec(0, 0, 1), 1e-12))
	assert.InDelta(t, math.Pi/3, q.Angle(), 1e-12)

	m := q.Convert()
	want := RotateZ(math.Pi / 3)
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			assert.InDelta(t, want.At(i, j), m.At(i, j), 1e-12)
		}
	}
}

func TestSpatialSortIsDeterministicPermutation(t *testing.T) {
	rng := rand.New(rand.NewSource(1234))
	points := make([]Vec, 500)
	for i := range points {
		points[i] = NewVec(rng.Float64(), rng.Float64(), rng.Float64())
	}
	a := append([]Vec(nil), points...)
	b := append([]Vec(nil), points...)
	SpatialSort(a)
	SpatialSort(b)
	assert.Equal(t, a, b)

	// same multiset of points
	sum := Vec{}
	for i := range points {
		sum = sum.Plus(points[i]).Minus(a[i])
	}
	assert.InDelta(t, 0, sum.Length(), 1e-9)

	// neighbors in the sorted order should usually be spatially close
	far := 0
	for i := 1; i < len(a); i++ {
		if a[i].Minus(a[i-1]).Length() > 0.5 {
			far++
		}
	}
	assert.Less(t, far, len(a)/4)
}
