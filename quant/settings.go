package quant

import (
	"fmt"

	"github.com/anovak/gosph/geom"
)

// BodySettingsId identifies a material parameter. The numeric values are
// part of the binary file format.
type BodySettingsId int32

const (
	ParamEos BodySettingsId = iota
	ParamDensity
	ParamEnergy
	ParamDamage
	ParamShearModulus
	ParamBulkModulus
	ParamElasticityLimit
	ParamMeltingEnergy
	ParamCohesion
	ParamInternalFriction
	ParamDryFriction
	ParamParticleCnt
	ParamBodyCenter
	ParamBodyVelocity
	ParamBodySpin
	ParamDensityRange
	ParamEnergyRange
	ParamDamageRange
	ParamBodyName
	ParamRheology
)

// ParamValue is a material parameter value tagged with its kind. The kind
// doubles as the serialized type index.
type ParamValue struct {
	kind      ValueKind
	index     int64
	scalar    float64
	vector    geom.Vec
	sym       geom.SymTensor
	traceless geom.TracelessTensor
	tensor    geom.Tensor
	interval  Interval
	enum      EnumValue
	str       string
}

func IndexParam(v int64) ParamValue     { return ParamValue{kind: KindIndex, index: v} }
func ScalarParam(v float64) ParamValue  { return ParamValue{kind: KindScalar, scalar: v} }
func VectorParam(v geom.Vec) ParamValue { return ParamValue{kind: KindVector, vector: v} }
func SymTensorParam(v geom.SymTensor) ParamValue {
	return ParamValue{kind: KindSymTensor, sym: v}
}
func TracelessTensorParam(v geom.TracelessTensor) ParamValue {
	return ParamValue{kind: KindTracelessTensor, traceless: v}
}
func TensorParam(v geom.Tensor) ParamValue { return ParamValue{kind: KindTensor, tensor: v} }
func IntervalParam(v Interval) ParamValue  { return ParamValue{kind: KindInterval, interval: v} }
func EnumParam(v EnumValue) ParamValue     { return ParamValue{kind: KindEnum, enum: v} }
func StringParam(v string) ParamValue      { return ParamValue{kind: KindString, str: v} }

func (p ParamValue) Kind() ValueKind { return p.kind }

func (p ParamValue) mustKind(k ValueKind) {
	if p.kind != k {
		panic(fmt.Sprintf("quant: parameter holds %v, not %v", p.kind, k))
	}
}

func (p ParamValue) Index() int64              { p.mustKind(KindIndex); return p.index }
func (p ParamValue) Scalar() float64           { p.mustKind(KindScalar); return p.scalar }
func (p ParamValue) Vector() geom.Vec          { p.mustKind(KindVector); return p.vector }
func (p ParamValue) SymTensor() geom.SymTensor { p.mustKind(KindSymTensor); return p.sym }
func (p ParamValue) TracelessTensor() geom.TracelessTensor {
	p.mustKind(KindTracelessTensor)
	return p.traceless
}
func (p ParamValue) Tensor() geom.Tensor { p.mustKind(KindTensor); return p.tensor }
func (p ParamValue) Interval() Interval  { p.mustKind(KindInterval); return p.interval }
func (p ParamValue) Enum() EnumValue     { p.mustKind(KindEnum); return p.enum }
func (p ParamValue) Str() string         { p.mustKind(KindString); return p.str }

// IndexSequence is a half-open particle index range [From, To).
type IndexSequence struct {
	From, To int
}

func (s IndexSequence) Len() int { return s.To - s.From }

func (s IndexSequence) Contains(i int) bool {
	return i >= s.From && i < s.To
}

// QuantityBounds is the allowed range and minimal step of a quantity
// within one material.
type QuantityBounds struct {
	Range   Interval
	Minimal float64
}

// Material describes the parameters of one body and the contiguous range
// of particles belonging to it.
type Material struct {
	params map[BodySettingsId]ParamValue
	bounds map[QuantityId]QuantityBoundsEntry
	seq    IndexSequence
}

// QuantityBoundsEntry pairs a quantity with its bounds, preserving
// insertion order for serialization.
type QuantityBoundsEntry struct {
	Bounds QuantityBounds
	order  int
}

func NewMaterial() *Material {
	return &Material{
		params: map[BodySettingsId]ParamValue{},
		bounds: map[QuantityId]QuantityBoundsEntry{},
	}
}

func (m *Material) SetParam(id BodySettingsId, v ParamValue) {
	m.params[id] = v
}

func (m *Material) Param(id BodySettingsId) (ParamValue, bool) {
	v, ok := m.params[id]
	return v, ok
}

func (m *Material) ParamCnt() int { return len(m.params) }

// ParamIds returns the parameter ids in ascending order.
func (m *Material) ParamIds() []BodySettingsId {
	ids := make([]BodySettingsId, 0, len(m.params))
	for id := range m.params {
		ids = append(ids, id)
	}
	for i := 1; i < len(ids); i++ {
		for j := i; j > 0 && ids[j] < ids[j-1]; j-- {
			ids[j], ids[j-1] = ids[j-1], ids[j]
		}
	}
	return ids
}

func (m *Material) SetBounds(id QuantityId, b QuantityBounds) {
	entry, ok := m.bounds[id]
	if !ok {
		entry.order = len(m.bounds)
	}
	entry.Bounds = b
	m.bounds[id] = entry
}

func (m *Material) Bounds(id QuantityId) (QuantityBounds, bool) {
	entry, ok := m.bounds[id]
	return entry.Bounds, ok
}

// BoundIds returns the quantity ids with bounds in insertion order.
func (m *Material) BoundIds() []QuantityId {
	ids := make([]QuantityId, 0, len(m.bounds))
	for id := range m.bounds {
		ids = append(ids, id)
	}
	for i := 1; i < len(ids); i++ {
		for j := i; j > 0 && m.bounds[ids[j]].order < m.bounds[ids[j-1]].order; j-- {
			ids[j], ids[j-1] = ids[j-1], ids[j]
		}
	}
	return ids
}

// Sequence returns the particle index range of the material.
func (m *Material) Sequence() IndexSequence { return m.seq }

func (m *Material) SetSequence(seq IndexSequence) { m.seq = seq }

func (m *Material) clone() *Material {
	out := NewMaterial()
	for id, v := range m.params {
		out.params[id] = v
	}
	for id, e := range m.bounds {
		out.bounds[id] = e
	}
	out.seq = m.seq
	return out
}
