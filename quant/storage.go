package quant

import (
	"fmt"

	"github.com/anovak/gosph/geom"
)

// AttractorParamId identifies a parameter of a point-mass attractor.
type AttractorParamId int32

const (
	AttractorLabel AttractorParamId = iota
	AttractorBlackHole
	AttractorVisible
)

// Attractor is an external point mass interacting with the particles
// gravitationally.
type Attractor struct {
	Position geom.Vec
	Velocity geom.Vec
	Radius   float64
	Mass     float64
	params   map[AttractorParamId]ParamValue
}

func NewAttractor(pos, vel geom.Vec, radius, mass float64) Attractor {
	return Attractor{
		Position: pos,
		Velocity: vel,
		Radius:   radius,
		Mass:     mass,
		params:   map[AttractorParamId]ParamValue{},
	}
}

func (a *Attractor) SetParam(id AttractorParamId, v ParamValue) {
	if a.params == nil {
		a.params = map[AttractorParamId]ParamValue{}
	}
	a.params[id] = v
}

func (a *Attractor) Param(id AttractorParamId) (ParamValue, bool) {
	v, ok := a.params[id]
	return v, ok
}

func (a *Attractor) ParamCnt() int { return len(a.params) }

// ParamIds returns the parameter ids in ascending order.
func (a *Attractor) ParamIds() []AttractorParamId {
	ids := make([]AttractorParamId, 0, len(a.params))
	for id := range a.params {
		ids = append(ids, id)
	}
	for i := 1; i < len(ids); i++ {
		for j := i; j > 0 && ids[j] < ids[j-1]; j-- {
			ids[j], ids[j-1] = ids[j-1], ids[j]
		}
	}
	return ids
}

type storedQuantity struct {
	id QuantityId
	q  Quantity
}

// Storage holds the quantities of a particle set, the materials the
// particles are partitioned into and any external attractors. Quantities
// keep their insertion order.
type Storage struct {
	quantities []storedQuantity
	materials  []*Material
	attractors []Attractor
}

func NewStorage() *Storage {
	return &Storage{}
}

func (s *Storage) find(id QuantityId) *storedQuantity {
	for i := range s.quantities {
		if s.quantities[i].id == id {
			return &s.quantities[i]
		}
	}
	return nil
}

// Insert adds a quantity of the given order built around values. Inserting
// an id that already exists replaces the quantity.
func (s *Storage) Insert(id QuantityId, order Order, values Buffer) {
	if sq := s.find(id); sq != nil {
		sq.q = NewQuantity(order, values)
		return
	}
	s.quantities = append(s.quantities,
		storedQuantity{id: id, q: NewQuantity(order, values)})
}

func (s *Storage) Has(id QuantityId) bool {
	return s.find(id) != nil
}

// Quantity returns the quantity stored under id; it panics when absent.
func (s *Storage) Quantity(id QuantityId) *Quantity {
	sq := s.find(id)
	if sq == nil {
		panic(fmt.Sprintf("quant: storage has no quantity %v", id))
	}
	return &sq.q
}

// Ids returns the stored quantity ids in insertion order.
func (s *Storage) Ids() []QuantityId {
	ids := make([]QuantityId, len(s.quantities))
	for i := range s.quantities {
		ids[i] = s.quantities[i].id
	}
	return ids
}

func (s *Storage) QuantityCnt() int { return len(s.quantities) }

// ParticleCnt returns the number of particles, zero for an empty storage.
func (s *Storage) ParticleCnt() int {
	if len(s.quantities) == 0 {
		return 0
	}
	return s.quantities[0].q.Len()
}

// Typed accessors. They panic when the quantity is absent or holds a
// different kind, which indicates a programming error rather than bad
// input.

func (s *Storage) Values(id QuantityId) Buffer { return s.Quantity(id).Values() }
func (s *Storage) Dt(id QuantityId) Buffer     { return s.Quantity(id).Dt() }
func (s *Storage) D2t(id QuantityId) Buffer    { return s.Quantity(id).D2t() }

func (s *Storage) Scalars(id QuantityId) []float64 {
	return []float64(s.Values(id).(ScalarBuffer))
}

func (s *Storage) Vectors(id QuantityId) []geom.Vec {
	return []geom.Vec(s.Values(id).(VectorBuffer))
}

func (s *Storage) VectorsDt(id QuantityId) []geom.Vec {
	return []geom.Vec(s.Dt(id).(VectorBuffer))
}

func (s *Storage) Indices(id QuantityId) []int64 {
	return []int64(s.Values(id).(IndexBuffer))
}

func (s *Storage) SymTensors(id QuantityId) []geom.SymTensor {
	return []geom.SymTensor(s.Values(id).(SymTensorBuffer))
}

// Remove deletes the quantity stored under id, if any.
func (s *Storage) Remove(id QuantityId) {
	for i := range s.quantities {
		if s.quantities[i].id == id {
			s.quantities = append(s.quantities[:i], s.quantities[i+1:]...)
			return
		}
	}
}

// RemoveAll clears quantities, materials and attractors.
func (s *Storage) RemoveAll() {
	s.quantities = nil
	s.materials = nil
	s.attractors = nil
}

// AddMaterial appends a material covering the index sequence it carries.
func (s *Storage) AddMaterial(m *Material) {
	s.materials = append(s.materials, m)
}

func (s *Storage) MaterialCnt() int { return len(s.materials) }

func (s *Storage) Material(i int) *Material { return s.materials[i] }

// MaterialOf returns the index of the material owning particle i, or -1
// when the storage has no materials.
func (s *Storage) MaterialOf(i int) int {
	for mi, m := range s.materials {
		if m.Sequence().Contains(i) {
			return mi
		}
	}
	return -1
}

func (s *Storage) AddAttractor(a Attractor) {
	s.attractors = append(s.attractors, a)
}

func (s *Storage) AttractorCnt() int { return len(s.attractors) }

func (s *Storage) Attractor(i int) *Attractor { return &s.attractors[i] }

// Merge appends the particles of other to the storage. Both storages must
// hold the same quantity ids with matching kinds and orders; material
// sequences of other are shifted past the current particles.
func (s *Storage) Merge(other *Storage) error {
	if len(s.quantities) == 0 {
		*s = *other
		return nil
	}
	if len(s.quantities) != len(other.quantities) {
		return fmt.Errorf("quant: merging storages with %d and %d quantities",
			len(s.quantities), len(other.quantities))
	}
	for i := range s.quantities {
		sq := &s.quantities[i]
		oq := other.find(sq.id)
		if oq == nil {
			return fmt.Errorf("quant: merged storage is missing quantity %v", sq.id)
		}
		if sq.q.Kind() != oq.q.Kind() || sq.q.Order() != oq.q.Order() {
			return fmt.Errorf("quant: quantity %v differs in kind or order", sq.id)
		}
	}
	offset := s.ParticleCnt()
	for i := range s.quantities {
		oq := other.find(s.quantities[i].id)
		s.quantities[i].q.merge(&oq.q)
	}
	for _, m := range other.materials {
		shifted := m.clone()
		seq := shifted.Sequence()
		shifted.SetSequence(IndexSequence{seq.From + offset, seq.To + offset})
		s.materials = append(s.materials, shifted)
	}
	s.attractors = append(s.attractors, other.attractors...)
	return nil
}

// Clone returns a deep copy of the storage.
func (s *Storage) Clone() *Storage {
	out := NewStorage()
	for i := range s.quantities {
		out.quantities = append(out.quantities, storedQuantity{
			id: s.quantities[i].id,
			q:  s.quantities[i].q.clone(),
		})
	}
	for _, m := range s.materials {
		out.materials = append(out.materials, m.clone())
	}
	out.attractors = append(out.attractors, s.attractors...)
	return out
}

// IsValid checks internal consistency: all buffers have the same length
// and material sequences partition the particle range.
func (s *Storage) IsValid() error {
	n := s.ParticleCnt()
	for i := range s.quantities {
		sq := &s.quantities[i]
		for o := Order(0); o <= sq.q.Order(); o++ {
			if sq.q.Buffer(o).Len() != n {
				return fmt.Errorf(
					"quant: quantity %v %v derivative has %d entries, want %d",
					sq.id, o, sq.q.Buffer(o).Len(), n)
			}
		}
	}
	next := 0
	for mi, m := range s.materials {
		seq := m.Sequence()
		if seq.From != next {
			return fmt.Errorf("quant: material %d starts at %d, want %d",
				mi, seq.From, next)
		}
		if seq.To < seq.From {
			return fmt.Errorf("quant: material %d has negative extent", mi)
		}
		next = seq.To
	}
	if len(s.materials) > 0 && next != n {
		return fmt.Errorf("quant: materials cover %d of %d particles", next, n)
	}
	return nil
}
