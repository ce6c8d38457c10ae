package quant

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anovak/gosph/geom"
)

func testStorage(n int) *Storage {
	s := NewStorage()
	r := make(VectorBuffer, n)
	m := make(ScalarBuffer, n)
	for i := 0; i < n; i++ {
		r[i] = geom.NewVec(float64(i), 0, 0)
		r[i][geom.H] = 0.1
		m[i] = 1
	}
	s.Insert(Position, OrderSecond, r)
	s.Insert(Mass, OrderZero, m)
	return s
}

func TestQuantityOrders(t *testing.T) {
	q := NewQuantity(OrderSecond, make(VectorBuffer, 5))
	assert.Equal(t, OrderSecond, q.Order())
	assert.Equal(t, KindVector, q.Kind())
	assert.Equal(t, 5, q.Dt().Len())
	assert.Equal(t, 5, q.D2t().Len())

	q0 := NewQuantity(OrderZero, make(ScalarBuffer, 3))
	assert.Panics(t, func() { q0.Dt() })
	assert.Panics(t, func() { q0.D2t() })
}

func TestStorageInsertAndAccess(t *testing.T) {
	s := testStorage(4)
	assert.Equal(t, 4, s.ParticleCnt())
	assert.Equal(t, 2, s.QuantityCnt())
	assert.True(t, s.Has(Position))
	assert.False(t, s.Has(Damage))
	assert.Equal(t, []QuantityId{Position, Mass}, s.Ids())

	r := s.Vectors(Position)
	assert.Equal(t, 1.0, r[1][geom.X])
	assert.Panics(t, func() { s.Scalars(Position) })
	assert.Panics(t, func() { s.Quantity(Damage) })
}

func TestStorageInsertReplaces(t *testing.T) {
	s := testStorage(4)
	s.Insert(Mass, OrderZero, ScalarBuffer{2, 2, 2, 2})
	assert.Equal(t, 2, s.QuantityCnt())
	assert.Equal(t, 2.0, s.Scalars(Mass)[0])
}

func TestStorageMerge(t *testing.T) {
	a := testStorage(3)
	b := testStorage(2)
	m := NewMaterial()
	m.SetSequence(IndexSequence{0, 2})
	b.AddMaterial(m)

	require.NoError(t, a.Merge(b))
	assert.Equal(t, 5, a.ParticleCnt())
	assert.Equal(t, 5, a.Quantity(Position).Dt().Len())
	require.Equal(t, 1, a.MaterialCnt())
	assert.Equal(t, IndexSequence{3, 5}, a.Material(0).Sequence())
}

func TestStorageMergeMismatch(t *testing.T) {
	a := testStorage(3)
	b := testStorage(2)
	b.Insert(Damage, OrderZero, make(ScalarBuffer, 2))
	assert.Error(t, a.Merge(b))
}

func TestStorageMergeIntoEmpty(t *testing.T) {
	a := NewStorage()
	b := testStorage(2)
	require.NoError(t, a.Merge(b))
	assert.Equal(t, 2, a.ParticleCnt())
}

func TestStorageIsValid(t *testing.T) {
	s := testStorage(4)
	require.NoError(t, s.IsValid())

	m1, m2 := NewMaterial(), NewMaterial()
	m1.SetSequence(IndexSequence{0, 2})
	m2.SetSequence(IndexSequence{2, 4})
	s.AddMaterial(m1)
	s.AddMaterial(m2)
	require.NoError(t, s.IsValid())

	m2.SetSequence(IndexSequence{2, 3})
	assert.Error(t, s.IsValid())

	m2.SetSequence(IndexSequence{3, 4})
	assert.Error(t, s.IsValid())
}

func TestMaterialParams(t *testing.T) {
	m := NewMaterial()
	m.SetParam(ParamDensity, ScalarParam(2700))
	m.SetParam(ParamEos, EnumParam(EnumValue(3)))
	m.SetParam(ParamBodyCenter, VectorParam(geom.NewVec(1, 2, 3)))

	v, ok := m.Param(ParamDensity)
	require.True(t, ok)
	assert.Equal(t, 2700.0, v.Scalar())
	assert.Panics(t, func() { v.Vector() })

	_, ok = m.Param(ParamCohesion)
	assert.False(t, ok)

	assert.Equal(t,
		[]BodySettingsId{ParamEos, ParamDensity, ParamBodyCenter},
		m.ParamIds())
}

func TestMaterialBoundsOrder(t *testing.T) {
	m := NewMaterial()
	m.SetBounds(Energy, QuantityBounds{Range: NewInterval(0, 1e9), Minimal: 1})
	m.SetBounds(Density, QuantityBounds{Range: UnboundedInterval(), Minimal: 10})
	assert.Equal(t, []QuantityId{Energy, Density}, m.BoundIds())

	b, ok := m.Bounds(Density)
	require.True(t, ok)
	assert.Equal(t, 10.0, b.Minimal)
}

func TestInterval(t *testing.T) {
	i := NewInterval(-1, 3)
	assert.True(t, i.Contains(0))
	assert.False(t, i.Contains(4))
	assert.Equal(t, 4.0, i.Size())
	assert.Equal(t, 3.0, i.Clamp(10))

	assert.True(t, EmptyInterval().Empty())
	assert.False(t, UnboundedInterval().Empty())
	assert.True(t, UnboundedInterval().Contains(1e300))

	e := EmptyInterval().Extend(2).Extend(-1)
	assert.Equal(t, NewInterval(-1, 2), e)
}

func TestAttractors(t *testing.T) {
	s := testStorage(2)
	a := NewAttractor(geom.NewVec(5, 0, 0), geom.NewVec(0, 1, 0), 0.5, 100)
	a.SetParam(AttractorBlackHole, IndexParam(1))
	s.AddAttractor(a)

	require.Equal(t, 1, s.AttractorCnt())
	got := s.Attractor(0)
	assert.Equal(t, 100.0, got.Mass)
	v, ok := got.Param(AttractorBlackHole)
	require.True(t, ok)
	assert.Equal(t, int64(1), v.Index())
}

func TestMoveToCenterOfMassFrame(t *testing.T) {
	s := NewStorage()
	s.Insert(Position, OrderFirst, VectorBuffer{
		{0, 0, 0, 0.25},
		{2, 0, 0, 0.5},
	})
	s.Insert(Mass, OrderZero, ScalarBuffer{1, 3})
	vel := s.VectorsDt(Position)
	vel[0] = geom.NewVec(0, 4, 0)
	vel[1] = geom.NewVec(0, 0, 0)

	MoveToCenterOfMassFrame(s)

	r := s.Vectors(Position)
	assert.InDelta(t, -1.5, r[0][geom.X], 1e-12)
	assert.InDelta(t, 0.5, r[1][geom.X], 1e-12)
	assert.Equal(t, 0.25, r[0][geom.H])
	assert.Equal(t, 0.5, r[1][geom.H])
	assert.InDelta(t, 3.0, vel[0][geom.Y], 1e-12)
	assert.InDelta(t, -1.0, vel[1][geom.Y], 1e-12)
}

func TestTotalMassIncludesAttractors(t *testing.T) {
	s := testStorage(3)
	s.AddAttractor(NewAttractor(geom.Vec{}, geom.Vec{}, 1, 7))
	assert.Equal(t, 10.0, TotalMass(s))
}

func TestBoundingBox(t *testing.T) {
	s := testStorage(3)
	box := BoundingBox(s, 2)
	assert.InDelta(t, -0.2, box.Min[geom.X], 1e-12)
	assert.InDelta(t, 2.2, box.Max[geom.X], 1e-12)
}

func TestStorageClone(t *testing.T) {
	s := testStorage(2)
	c := s.Clone()
	c.Vectors(Position)[0][geom.X] = 99
	assert.Equal(t, 0.0, s.Vectors(Position)[0][geom.X])
}
