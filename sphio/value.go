package sphio

import (
	"fmt"

	"github.com/anovak/gosph/geom"
	"github.com/anovak/gosph/quant"
)

// Value layouts on the wire, shared by the binary and compressed codecs:
// scalars are one float, vectors four (x, y, z, h), symmetric tensors six
// (xx, yy, zz, xy, xz, yz), traceless tensors five (xx, yy, xy, xz, yz),
// general tensors nine row-major, intervals two floats, enums one int
// plus a reserved zero int.

func writeVec(s *Serializer, v geom.Vec) {
	for i := 0; i < 4; i++ {
		s.WriteFloat(v[i])
	}
}

func readVec(d *Deserializer) geom.Vec {
	var v geom.Vec
	for i := 0; i < 4; i++ {
		v[i] = d.ReadFloat()
	}
	return v
}

func writeParamValue(s *Serializer, v quant.ParamValue) {
	switch v.Kind() {
	case quant.KindIndex:
		s.WriteInt(v.Index())
	case quant.KindScalar:
		s.WriteFloat(v.Scalar())
	case quant.KindVector:
		writeVec(s, v.Vector())
	case quant.KindSymTensor:
		t := v.SymTensor()
		for i := 0; i < 6; i++ {
			s.WriteFloat(t[i])
		}
	case quant.KindTracelessTensor:
		t := v.TracelessTensor()
		for i := 0; i < 5; i++ {
			s.WriteFloat(t[i])
		}
	case quant.KindTensor:
		t := v.Tensor()
		for i := 0; i < 9; i++ {
			s.WriteFloat(t[i])
		}
	case quant.KindInterval:
		i := v.Interval()
		s.WriteFloat(i.Lower())
		s.WriteFloat(i.Upper())
	case quant.KindEnum:
		s.WriteInt(int64(v.Enum()))
		s.WriteInt(0)
	case quant.KindString:
		s.WriteString(v.Str())
	default:
		panic(fmt.Sprintf("sphio: unhandled parameter kind %v", v.Kind()))
	}
}

func readParamValue(d *Deserializer, kind quant.ValueKind) quant.ParamValue {
	switch kind {
	case quant.KindIndex:
		return quant.IndexParam(d.ReadInt())
	case quant.KindScalar:
		return quant.ScalarParam(d.ReadFloat())
	case quant.KindVector:
		return quant.VectorParam(readVec(d))
	case quant.KindSymTensor:
		var t geom.SymTensor
		for i := 0; i < 6; i++ {
			t[i] = d.ReadFloat()
		}
		return quant.SymTensorParam(t)
	case quant.KindTracelessTensor:
		var t geom.TracelessTensor
		for i := 0; i < 5; i++ {
			t[i] = d.ReadFloat()
		}
		return quant.TracelessTensorParam(t)
	case quant.KindTensor:
		var t geom.Tensor
		for i := 0; i < 9; i++ {
			t[i] = d.ReadFloat()
		}
		return quant.TensorParam(t)
	case quant.KindInterval:
		lower := d.ReadFloat()
		upper := d.ReadFloat()
		if lower >= upper {
			return quant.IntervalParam(quant.UnboundedInterval())
		}
		return quant.IntervalParam(quant.NewInterval(lower, upper))
	case quant.KindEnum:
		val := d.ReadInt()
		d.ReadInt()
		return quant.EnumParam(quant.EnumValue(val))
	case quant.KindString:
		return quant.StringParam(d.ReadString())
	}
	d.Fail(fmt.Errorf("unknown parameter kind %d", int32(kind)))
	return quant.ParamValue{}
}

func writeBuffer(s *Serializer, b quant.Buffer) {
	switch buf := b.(type) {
	case quant.IndexBuffer:
		for _, v := range buf {
			s.WriteInt(v)
		}
	case quant.ScalarBuffer:
		for _, v := range buf {
			s.WriteFloat(v)
		}
	case quant.VectorBuffer:
		for _, v := range buf {
			writeVec(s, v)
		}
	case quant.SymTensorBuffer:
		for _, t := range buf {
			for i := 0; i < 6; i++ {
				s.WriteFloat(t[i])
			}
		}
	case quant.TracelessTensorBuffer:
		for _, t := range buf {
			for i := 0; i < 5; i++ {
				s.WriteFloat(t[i])
			}
		}
	case quant.TensorBuffer:
		for _, t := range buf {
			for i := 0; i < 9; i++ {
				s.WriteFloat(t[i])
			}
		}
	default:
		panic(fmt.Sprintf("sphio: unhandled buffer kind %v", b.Kind()))
	}
}

func readBuffer(d *Deserializer, kind quant.ValueKind, n int) quant.Buffer {
	switch kind {
	case quant.KindIndex:
		buf := make(quant.IndexBuffer, n)
		for i := range buf {
			buf[i] = d.ReadInt()
		}
		return buf
	case quant.KindScalar:
		buf := make(quant.ScalarBuffer, n)
		for i := range buf {
			buf[i] = d.ReadFloat()
		}
		return buf
	case quant.KindVector:
		buf := make(quant.VectorBuffer, n)
		for i := range buf {
			buf[i] = readVec(d)
		}
		return buf
	case quant.KindSymTensor:
		buf := make(quant.SymTensorBuffer, n)
		for i := range buf {
			for j := 0; j < 6; j++ {
				buf[i][j] = d.ReadFloat()
			}
		}
		return buf
	case quant.KindTracelessTensor:
		buf := make(quant.TracelessTensorBuffer, n)
		for i := range buf {
			for j := 0; j < 5; j++ {
				buf[i][j] = d.ReadFloat()
			}
		}
		return buf
	case quant.KindTensor:
		buf := make(quant.TensorBuffer, n)
		for i := range buf {
			for j := 0; j < 9; j++ {
				buf[i][j] = d.ReadFloat()
			}
		}
		return buf
	}
	d.Fail(fmt.Errorf("quantity buffer of kind %d cannot be deserialized",
		int32(kind)))
	return nil
}
