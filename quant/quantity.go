/*
Package quant stores particle state as a set of named quantities.

Each quantity pairs an id with up to three buffers: the values themselves
and, depending on the temporal order, their first and second derivatives.
All buffers of a storage hold one entry per particle.
*/
package quant

import (
	"fmt"

	"github.com/anovak/gosph/geom"
)

// QuantityId identifies a physical quantity. The numeric values are part
// of the binary file format and must not be reordered.
type QuantityId int32

const (
	Position QuantityId = iota
	Mass
	Pressure
	Density
	Energy
	SoundSpeed
	DeviatoricStress
	SpecificEntropy
	Damage
	EnergyDensity
	SmoothingLength
	AngularFrequency
	MomentOfInertia
	PhaseAngle
	Flag
	MaterialId
	NeighborCnt
	UnknownQuantity QuantityId = -1
)

var quantityNames = map[QuantityId]string{
	Position:         "Position",
	Mass:             "Mass",
	Pressure:         "Pressure",
	Density:          "Density",
	Energy:           "Energy",
	SoundSpeed:       "Sound speed",
	DeviatoricStress: "Deviatoric stress",
	SpecificEntropy:  "Specific entropy",
	Damage:           "Damage",
	EnergyDensity:    "Energy density",
	SmoothingLength:  "Smoothing length",
	AngularFrequency: "Angular frequency",
	MomentOfInertia:  "Moment of inertia",
	PhaseAngle:       "Phase angle",
	Flag:             "Flag",
	MaterialId:       "Material ID",
	NeighborCnt:      "Neighbor count",
}

func (id QuantityId) String() string {
	if name, ok := quantityNames[id]; ok {
		return name
	}
	return fmt.Sprintf("Quantity(%d)", int32(id))
}

// Order is the highest time derivative a quantity carries.
type Order int32

const (
	OrderZero Order = iota
	OrderFirst
	OrderSecond
)

func (o Order) String() string {
	switch o {
	case OrderZero:
		return "zero"
	case OrderFirst:
		return "first"
	case OrderSecond:
		return "second"
	}
	return fmt.Sprintf("Order(%d)", int32(o))
}

// ValueKind enumerates the value types a buffer may hold. The numeric
// values double as the type index in serialized settings entries.
type ValueKind int32

const (
	KindIndex ValueKind = iota
	KindScalar
	KindVector
	KindSymTensor
	KindTracelessTensor
	KindTensor
	KindInterval
	KindEnum
	KindString
)

func (k ValueKind) String() string {
	switch k {
	case KindIndex:
		return "index"
	case KindScalar:
		return "scalar"
	case KindVector:
		return "vector"
	case KindSymTensor:
		return "symmetric tensor"
	case KindTracelessTensor:
		return "traceless tensor"
	case KindTensor:
		return "tensor"
	case KindInterval:
		return "interval"
	case KindEnum:
		return "enum"
	case KindString:
		return "string"
	}
	return fmt.Sprintf("ValueKind(%d)", int32(k))
}

// EnumValue is an enum parameter stored by its integer representation.
type EnumValue int64

// Buffer is one value array of a quantity. Concrete implementations are
// typed slices; callers dispatch on Kind and assert to the slice type.
type Buffer interface {
	Len() int
	Kind() ValueKind
	clone() Buffer
}

type IndexBuffer []int64

func (b IndexBuffer) Len() int        { return len(b) }
func (b IndexBuffer) Kind() ValueKind { return KindIndex }
func (b IndexBuffer) clone() Buffer {
	out := make(IndexBuffer, len(b))
	copy(out, b)
	return out
}

type ScalarBuffer []float64

func (b ScalarBuffer) Len() int        { return len(b) }
func (b ScalarBuffer) Kind() ValueKind { return KindScalar }
func (b ScalarBuffer) clone() Buffer {
	out := make(ScalarBuffer, len(b))
	copy(out, b)
	return out
}

type VectorBuffer []geom.Vec

func (b VectorBuffer) Len() int        { return len(b) }
func (b VectorBuffer) Kind() ValueKind { return KindVector }
func (b VectorBuffer) clone() Buffer {
	out := make(VectorBuffer, len(b))
	copy(out, b)
	return out
}

type SymTensorBuffer []geom.SymTensor

func (b SymTensorBuffer) Len() int        { return len(b) }
func (b SymTensorBuffer) Kind() ValueKind { return KindSymTensor }
func (b SymTensorBuffer) clone() Buffer {
	out := make(SymTensorBuffer, len(b))
	copy(out, b)
	return out
}

type TracelessTensorBuffer []geom.TracelessTensor

func (b TracelessTensorBuffer) Len() int        { return len(b) }
func (b TracelessTensorBuffer) Kind() ValueKind { return KindTracelessTensor }
func (b TracelessTensorBuffer) clone() Buffer {
	out := make(TracelessTensorBuffer, len(b))
	copy(out, b)
	return out
}

type TensorBuffer []geom.Tensor

func (b TensorBuffer) Len() int        { return len(b) }
func (b TensorBuffer) Kind() ValueKind { return KindTensor }
func (b TensorBuffer) clone() Buffer {
	out := make(TensorBuffer, len(b))
	copy(out, b)
	return out
}

// NewBuffer allocates an empty buffer of the given kind with n entries.
func NewBuffer(kind ValueKind, n int) Buffer {
	switch kind {
	case KindIndex:
		return make(IndexBuffer, n)
	case KindScalar:
		return make(ScalarBuffer, n)
	case KindVector:
		return make(VectorBuffer, n)
	case KindSymTensor:
		return make(SymTensorBuffer, n)
	case KindTracelessTensor:
		return make(TracelessTensorBuffer, n)
	case KindTensor:
		return make(TensorBuffer, n)
	}
	panic(fmt.Sprintf("quant: no particle buffer for kind %v", kind))
}

func appendBuffers(a, b Buffer) Buffer {
	if a.Kind() != b.Kind() {
		panic(fmt.Sprintf("quant: cannot merge %v buffer with %v buffer",
			a.Kind(), b.Kind()))
	}
	switch ab := a.(type) {
	case IndexBuffer:
		return append(ab, b.(IndexBuffer)...)
	case ScalarBuffer:
		return append(ab, b.(ScalarBuffer)...)
	case VectorBuffer:
		return append(ab, b.(VectorBuffer)...)
	case SymTensorBuffer:
		return append(ab, b.(SymTensorBuffer)...)
	case TracelessTensorBuffer:
		return append(ab, b.(TracelessTensorBuffer)...)
	case TensorBuffer:
		return append(ab, b.(TensorBuffer)...)
	}
	panic(fmt.Sprintf("quant: unhandled buffer kind %v", a.Kind()))
}

// Quantity bundles the value buffer of a quantity with its derivative
// buffers, one per temporal order.
type Quantity struct {
	order Order
	bufs  [3]Buffer
}

// NewQuantity creates a quantity of the given order. All buffers share the
// kind and length of values.
func NewQuantity(order Order, values Buffer) Quantity {
	q := Quantity{order: order}
	q.bufs[0] = values
	for o := Order(1); o <= order; o++ {
		q.bufs[o] = NewBuffer(values.Kind(), values.Len())
	}
	return q
}

func (q *Quantity) Order() Order    { return q.order }
func (q *Quantity) Kind() ValueKind { return q.bufs[0].Kind() }
func (q *Quantity) Len() int        { return q.bufs[0].Len() }

// Values returns the buffer of the zeroth derivative.
func (q *Quantity) Values() Buffer { return q.bufs[0] }

// Dt returns the first derivative buffer; the quantity must be of at least
// first order.
func (q *Quantity) Dt() Buffer {
	if q.order < OrderFirst {
		panic("quant: quantity has no first derivative")
	}
	return q.bufs[1]
}

// D2t returns the second derivative buffer; the quantity must be of
// second order.
func (q *Quantity) D2t() Buffer {
	if q.order < OrderSecond {
		panic("quant: quantity has no second derivative")
	}
	return q.bufs[2]
}

// Buffer returns the buffer of the given derivative order.
func (q *Quantity) Buffer(o Order) Buffer {
	if o > q.order {
		panic(fmt.Sprintf("quant: quantity of order %v has no %v derivative",
			q.order, o))
	}
	return q.bufs[o]
}

// SetBuffer replaces the buffer of the given derivative order. The new
// buffer must match the kind and length of the values.
func (q *Quantity) SetBuffer(o Order, b Buffer) {
	if o > q.order {
		panic(fmt.Sprintf("quant: quantity of order %v has no %v derivative",
			q.order, o))
	}
	if b.Kind() != q.Kind() || b.Len() != q.Len() {
		panic("quant: buffer kind or length mismatch")
	}
	q.bufs[o] = b
}

func (q *Quantity) clone() Quantity {
	out := Quantity{order: q.order}
	for o := Order(0); o <= q.order; o++ {
		out.bufs[o] = q.bufs[o].clone()
	}
	return out
}

func (q *Quantity) merge(other *Quantity) {
	if q.order != other.order {
		panic("quant: cannot merge quantities of different orders")
	}
	for o := Order(0); o <= q.order; o++ {
		q.bufs[o] = appendBuffers(q.bufs[o], other.bufs[o])
	}
}
