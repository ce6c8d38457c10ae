package sphio

import (
	"fmt"
	"io"

	"github.com/anovak/gosph/quant"
)

// headerSize is the fixed size of the binary dump header. Version-driven
// header growth happens inside the zero pad so quantity offsets never
// shift.
const headerSize = 256

// buildDate is the ISO date stamped into dumps from Version2021_03_20 on.
const buildDate = "2021-08-08"

const binaryMagic = "SPH"

// Stats carries the run summary stored in a dump header alongside the
// particle data.
type Stats struct {
	RunTime          float64
	TimeStep         float64
	WallclockSeconds uint64
}

// Info is the header of a binary dump, readable without loading the
// particle payload.
type Info struct {
	RunTime          float64
	ParticleCnt      int
	QuantityCnt      int
	MaterialCnt      int
	AttractorCnt     int
	TimeStep         float64
	Version          Version
	RunType          RunType
	BuildDate        string
	WallclockSeconds uint64
}

// BinaryOutput writes storages in the versioned SPH binary format, one
// dump per call, at paths generated from an OutputFile mask.
type BinaryOutput struct {
	file    *OutputFile
	runType RunType
}

func NewBinaryOutput(file *OutputFile, runType RunType) *BinaryOutput {
	return &BinaryOutput{file: file, runType: runType}
}

// Dump writes one dump and returns its path.
func (o *BinaryOutput) Dump(storage *quant.Storage, stats Stats) (string, error) {
	path := o.file.Next(stats.RunTime)
	w, err := createStream(path)
	if err != nil {
		return "", err
	}
	if err := writeBinary(w, storage, stats, o.runType); err != nil {
		w.Close()
		return "", err
	}
	return path, w.Close()
}

// dumpIds lists the serialized quantities: everything except MATERIAL_ID,
// which is reconstructed from the material sequences on load.
func dumpIds(storage *quant.Storage) []quant.QuantityId {
	var ids []quant.QuantityId
	for _, id := range storage.Ids() {
		if id != quant.MaterialId {
			ids = append(ids, id)
		}
	}
	return ids
}

func writeBinary(w io.Writer, storage *quant.Storage, stats Stats, runType RunType) error {
	s := NewSerializer(w, true)
	ids := dumpIds(storage)
	n := storage.ParticleCnt()

	s.WriteString(binaryMagic)
	s.WriteFloat(stats.RunTime)
	s.WriteUint64(uint64(n))
	s.WriteUint64(uint64(len(ids)))
	s.WriteUint64(uint64(storage.MaterialCnt()))
	s.WriteFloat(stats.TimeStep)
	s.WriteUint32(uint32(VersionLatest))
	s.WriteString(runType.String())
	s.WriteString(buildDate)
	s.WriteUint64(stats.WallclockSeconds)
	s.WriteUint64(uint64(storage.AttractorCnt()))
	s.PadTo(headerSize)

	for _, id := range ids {
		q := storage.Quantity(id)
		s.WriteUint32(uint32(id))
		s.WriteUint32(uint32(q.Order()))
		s.WriteUint32(uint32(q.Kind()))
	}

	matCnt := storage.MaterialCnt()
	blocks := matCnt
	if blocks == 0 {
		blocks = 1
	}
	for m := 0; m < blocks; m++ {
		var seq quant.IndexSequence
		if matCnt > 0 {
			mat := storage.Material(m)
			s.WriteString("MAT")
			s.WriteInt(int64(m))
			s.WriteInt(int64(mat.ParamCnt()))
			for _, pid := range mat.ParamIds() {
				v, _ := mat.Param(pid)
				s.WriteInt(int64(pid))
				s.WriteInt(int64(v.Kind()))
				writeParamValue(s, v)
			}
			for _, id := range ids {
				bounds, ok := mat.Bounds(id)
				if !ok {
					bounds = quant.QuantityBounds{Range: quant.UnboundedInterval()}
				}
				s.WriteInt(int64(id))
				s.WriteFloat(bounds.Range.Lower())
				s.WriteFloat(bounds.Range.Upper())
				s.WriteFloat(bounds.Minimal)
			}
			seq = mat.Sequence()
		} else {
			s.WriteString("NOMAT")
			seq = quant.IndexSequence{From: 0, To: n}
		}
		s.WriteInt(int64(seq.From))
		s.WriteInt(int64(seq.To))
		for _, id := range ids {
			q := storage.Quantity(id)
			for o := quant.Order(0); o <= q.Order(); o++ {
				writeBuffer(s, subBuffer(q.Buffer(o), seq.From, seq.To))
			}
		}
	}

	for i := 0; i < storage.AttractorCnt(); i++ {
		a := storage.Attractor(i)
		writeVec(s, a.Position)
		writeVec(s, a.Velocity)
		s.WriteFloat(a.Radius)
		s.WriteFloat(a.Mass)
		s.WriteInt(int64(a.ParamCnt()))
		for _, pid := range a.ParamIds() {
			v, _ := a.Param(pid)
			s.WriteInt(int64(pid))
			s.WriteInt(int64(v.Kind()))
			writeParamValue(s, v)
		}
	}
	return s.Error()
}

func subBuffer(b quant.Buffer, from, to int) quant.Buffer {
	switch buf := b.(type) {
	case quant.IndexBuffer:
		return buf[from:to]
	case quant.ScalarBuffer:
		return buf[from:to]
	case quant.VectorBuffer:
		return buf[from:to]
	case quant.SymTensorBuffer:
		return buf[from:to]
	case quant.TracelessTensorBuffer:
		return buf[from:to]
	case quant.TensorBuffer:
		return buf[from:to]
	}
	panic(fmt.Sprintf("sphio: unhandled buffer kind %v", b.Kind()))
}

func copyIntoBuffer(dst, src quant.Buffer, from int) {
	switch d := dst.(type) {
	case quant.IndexBuffer:
		copy(d[from:], src.(quant.IndexBuffer))
	case quant.ScalarBuffer:
		copy(d[from:], src.(quant.ScalarBuffer))
	case quant.VectorBuffer:
		copy(d[from:], src.(quant.VectorBuffer))
	case quant.SymTensorBuffer:
		copy(d[from:], src.(quant.SymTensorBuffer))
	case quant.TracelessTensorBuffer:
		copy(d[from:], src.(quant.TracelessTensorBuffer))
	case quant.TensorBuffer:
		copy(d[from:], src.(quant.TensorBuffer))
	default:
		panic(fmt.Sprintf("sphio: unhandled buffer kind %v", dst.Kind()))
	}
}

// BinaryInput loads dumps written by BinaryOutput, including dumps of
// all older versions.
type BinaryInput struct{}

func (BinaryInput) Load(path string, storage *quant.Storage) (Stats, error) {
	r, err := openStream(path)
	if err != nil {
		return Stats{}, err
	}
	defer r.Close()
	return readBinary(r, storage)
}

func readHeader(d *Deserializer) Info {
	var info Info
	if magic := d.ReadString(); magic != binaryMagic && d.Error() == nil {
		d.Fail(fmt.Errorf("invalid magic %q, expected %q", magic, binaryMagic))
	}
	info.RunTime = d.ReadFloat()
	info.ParticleCnt = int(d.ReadUint64())
	info.QuantityCnt = int(d.ReadUint64())
	info.MaterialCnt = int(d.ReadUint64())
	info.TimeStep = d.ReadFloat()
	info.Version = Version(d.ReadUint32())
	if d.Error() == nil && info.Version > VersionLatest {
		d.Fail(fmt.Errorf("unsupported version %d", uint32(info.Version)))
	}
	if info.Version >= Version2018_10_24 {
		info.RunType = RunTypeFromString(d.ReadString())
	}
	if info.Version >= Version2021_03_20 {
		info.BuildDate = d.ReadString()
	}
	info.WallclockSeconds = d.ReadUint64()
	if info.Version >= Version2021_08_08 {
		info.AttractorCnt = int(d.ReadUint64())
	}
	d.SkipTo(headerSize)
	return info
}

// ReadBinaryInfo reads just the header of a dump.
func ReadBinaryInfo(path string) (Info, error) {
	r, err := openStream(path)
	if err != nil {
		return Info{}, err
	}
	defer r.Close()
	d := NewDeserializer(r, true)
	info := readHeader(d)
	return info, d.Error()
}

// enumParams are the material parameters stored as enums. Dumps of the
// first version stored them as plain integers.
var enumParams = map[quant.BodySettingsId]bool{
	quant.ParamEos:      true,
	quant.ParamRheology: true,
}

func readBinary(r io.Reader, storage *quant.Storage) (Stats, error) {
	d := NewDeserializer(r, true)
	info := readHeader(d)
	if d.Error() != nil {
		return Stats{}, d.Error()
	}

	type quantityMeta struct {
		id    quant.QuantityId
		order quant.Order
		kind  quant.ValueKind
	}
	metas := make([]quantityMeta, info.QuantityCnt)
	for i := range metas {
		metas[i].id = quant.QuantityId(d.ReadUint32())
		metas[i].order = quant.Order(d.ReadUint32())
		metas[i].kind = quant.ValueKind(d.ReadUint32())
	}
	if d.Error() != nil {
		return Stats{}, d.Error()
	}

	storage.RemoveAll()
	quantities := make([]quant.Quantity, len(metas))
	for i, meta := range metas {
		quantities[i] = quant.NewQuantity(meta.order,
			quant.NewBuffer(meta.kind, info.ParticleCnt))
	}

	blocks := info.MaterialCnt
	if blocks == 0 {
		blocks = 1
	}
	materials := make([]*quant.Material, 0, info.MaterialCnt)
	for m := 0; m < blocks; m++ {
		var seq quant.IndexSequence
		if info.MaterialCnt > 0 {
			if sentinel := d.ReadString(); sentinel != "MAT" && d.Error() == nil {
				d.Fail(fmt.Errorf("invalid material sentinel %q, expected %q",
					sentinel, "MAT"))
			}
			d.ReadInt()
			mat := quant.NewMaterial()
			paramCnt := int(d.ReadInt())
			for p := 0; p < paramCnt && d.Error() == nil; p++ {
				pid := quant.BodySettingsId(d.ReadInt())
				kind := quant.ValueKind(d.ReadInt())
				if info.Version == VersionFirst && kind == quant.KindIndex &&
					enumParams[pid] {
					mat.SetParam(pid, quant.EnumParam(quant.EnumValue(d.ReadInt())))
					continue
				}
				v := readParamValue(d, kind)
				if pid >= quant.ParamEos && pid <= quant.ParamRheology {
					mat.SetParam(pid, v)
				}
				// Unknown parameters from newer builds are consumed
				// and dropped.
			}
			for _, meta := range metas {
				id := quant.QuantityId(d.ReadInt())
				if id != meta.id && d.Error() == nil {
					d.Fail(fmt.Errorf(
						"unexpected quantity %v in material block, expected %v",
						id, meta.id))
				}
				lower := d.ReadFloat()
				upper := d.ReadFloat()
				minimal := d.ReadFloat()
				rng := quant.NewInterval(lower, upper)
				if lower >= upper {
					rng = quant.UnboundedInterval()
				}
				mat.SetBounds(meta.id, quant.QuantityBounds{Range: rng, Minimal: minimal})
			}
			materials = append(materials, mat)
			seq.From = int(d.ReadInt())
			seq.To = int(d.ReadInt())
			mat.SetSequence(seq)
		} else {
			if sentinel := d.ReadString(); sentinel != "NOMAT" && d.Error() == nil {
				d.Fail(fmt.Errorf("invalid material sentinel %q, expected %q",
					sentinel, "NOMAT"))
			}
			seq.From = int(d.ReadInt())
			seq.To = int(d.ReadInt())
		}
		if d.Error() != nil {
			return Stats{}, d.Error()
		}
		if seq.From < 0 || seq.To > info.ParticleCnt || seq.From > seq.To {
			d.Fail(fmt.Errorf("material range [%d, %d) outside particle range [0, %d)",
				seq.From, seq.To, info.ParticleCnt))
			return Stats{}, d.Error()
		}
		for i, meta := range metas {
			for o := quant.Order(0); o <= meta.order; o++ {
				part := readBuffer(d, meta.kind, seq.Len())
				if d.Error() != nil {
					return Stats{}, d.Error()
				}
				copyIntoBuffer(quantities[i].Buffer(o), part, seq.From)
			}
		}
	}

	for i, meta := range metas {
		storage.Insert(meta.id, meta.order, quantities[i].Values())
		q := storage.Quantity(meta.id)
		for o := quant.Order(1); o <= meta.order; o++ {
			q.SetBuffer(o, quantities[i].Buffer(o))
		}
	}
	if len(materials) > 0 {
		matIds := make(quant.IndexBuffer, info.ParticleCnt)
		for mi, mat := range materials {
			storage.AddMaterial(mat)
			for i := mat.Sequence().From; i < mat.Sequence().To; i++ {
				matIds[i] = int64(mi)
			}
		}
		storage.Insert(quant.MaterialId, quant.OrderZero, matIds)
	}

	for i := 0; i < info.AttractorCnt; i++ {
		pos := readVec(d)
		vel := readVec(d)
		radius := d.ReadFloat()
		mass := d.ReadFloat()
		a := quant.NewAttractor(pos, vel, radius, mass)
		paramCnt := int(d.ReadInt())
		for p := 0; p < paramCnt && d.Error() == nil; p++ {
			pid := quant.AttractorParamId(d.ReadInt())
			kind := quant.ValueKind(d.ReadInt())
			v := readParamValue(d, kind)
			if pid >= quant.AttractorLabel && pid <= quant.AttractorVisible {
				a.SetParam(pid, v)
			}
		}
		if d.Error() != nil {
			return Stats{}, d.Error()
		}
		storage.AddAttractor(a)
	}

	if err := d.Error(); err != nil {
		return Stats{}, err
	}
	return Stats{
		RunTime:          info.RunTime,
		TimeStep:         info.TimeStep,
		WallclockSeconds: info.WallclockSeconds,
	}, nil
}
