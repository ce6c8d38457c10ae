package sphio

import (
	"fmt"
	"math"

	"github.com/pierrec/lz4/v4"

	"github.com/anovak/gosph/geom"
	"github.com/anovak/gosph/quant"
)

const compressedMagic = "CPRSPH"

// compressedPad sizes the header pad of the compressed format.
const compressedPad = 230

// rleMagic marks the start of a run-length-encoded array.
const rleMagic uint32 = 0x454c5221

// CompressionMode selects the array encoding of the compressed format.
type CompressionMode uint32

const (
	CompressionNone CompressionMode = iota
	CompressionRLE
	CompressionLZ4
)

// DefaultRleTolerance is the relative tolerance under which consecutive
// values collapse into a run. The comparison is semantic rather than
// bitwise, so RLE is lossy within this tolerance.
const DefaultRleTolerance = 1e-4

// CompressedOutput writes single-precision dumps holding positions,
// velocities and the scalar quantities of a storage.
type CompressedOutput struct {
	file      *OutputFile
	runType   RunType
	mode      CompressionMode
	Tolerance float64
}

func NewCompressedOutput(file *OutputFile, runType RunType, mode CompressionMode) *CompressedOutput {
	return &CompressedOutput{
		file:      file,
		runType:   runType,
		mode:      mode,
		Tolerance: DefaultRleTolerance,
	}
}

func (o *CompressedOutput) Dump(storage *quant.Storage, stats Stats) (string, error) {
	path := o.file.Next(stats.RunTime)
	w, err := createStream(path)
	if err != nil {
		return "", err
	}
	s := NewSerializer(w, false)
	n := storage.ParticleCnt()

	s.WriteString(compressedMagic)
	s.WriteFloat(stats.RunTime)
	s.WriteInt(int64(n))
	s.WriteInt(int64(o.mode))
	s.WriteInt(int64(VersionLatest))
	s.WriteString(o.runType.String())
	s.AddPadding(compressedPad)

	o.writeArray(s, flattenVectors(storage.Vectors(quant.Position)))
	o.writeArray(s, flattenVectors(storage.VectorsDt(quant.Position)))

	var optional []quant.QuantityId
	for _, id := range storage.Ids() {
		if id != quant.Position && storage.Quantity(id).Kind() == quant.KindScalar {
			optional = append(optional, id)
		}
	}
	s.WriteInt(int64(len(optional)))
	for _, id := range optional {
		s.WriteInt(int64(id))
		o.writeArray(s, storage.Scalars(id))
	}

	if err := s.Error(); err != nil {
		w.Close()
		return "", err
	}
	return path, w.Close()
}

func flattenVectors(vs []geom.Vec) []float64 {
	out := make([]float64, 0, 4*len(vs))
	for _, v := range vs {
		out = append(out, v[0], v[1], v[2], v[3])
	}
	return out
}

func unflattenVectors(vals []float64) []geom.Vec {
	out := make([]geom.Vec, len(vals)/4)
	for i := range out {
		copy(out[i][:], vals[4*i:4*i+4])
	}
	return out
}

func (o *CompressedOutput) writeArray(s *Serializer, values []float64) {
	switch o.mode {
	case CompressionNone:
		for _, v := range values {
			s.WriteFloat(v)
		}
	case CompressionRLE:
		writeRle(s, values, o.Tolerance)
	case CompressionLZ4:
		writeLz4(s, values)
	default:
		panic(fmt.Sprintf("sphio: unhandled compression mode %d", o.mode))
	}
}

func approxEqual(a, b, tol float64) bool {
	if a == b {
		return true
	}
	return math.Abs(a-b) <= tol*math.Max(math.Abs(a), math.Abs(b))
}

// writeRle collapses runs of approximately equal values. A run of k >= 2
// values is emitted as the representative value twice followed by k; the
// decoder recognizes a run by the doubled value. Runs are detected on the
// float32 images that reach the stream, not on the float64 inputs: two
// values with the same image always collapse, so adjacent lone values can
// never decode equal and be mistaken for a run header.
func writeRle(s *Serializer, values []float64, tol float64) {
	s.WriteUint32(rleMagic)
	s.WriteUint64(uint64(len(values)))
	for i := 0; i < len(values); {
		rep := float64(float32(values[i]))
		runLen := 1
		for i+runLen < len(values) &&
			approxEqual(float64(float32(values[i+runLen])), rep, tol) {
			runLen++
		}
		if runLen >= 2 {
			s.WriteFloat(rep)
			s.WriteFloat(rep)
			s.WriteUint32(uint32(runLen))
		} else {
			s.WriteFloat(rep)
		}
		i += runLen
	}
}

func readRle(d *Deserializer) []float64 {
	if magic := d.ReadUint32(); magic != rleMagic && d.Error() == nil {
		d.Fail(fmt.Errorf("invalid RLE marker %#x", magic))
		return nil
	}
	n := int(d.ReadUint64())
	out := make([]float64, 0, n)
	for len(out) < n && d.Error() == nil {
		v := d.ReadFloat()
		if len(out) > 0 && v == out[len(out)-1] {
			runLen := int(d.ReadUint32())
			for k := 2; k < runLen; k++ {
				out = append(out, v)
			}
		}
		out = append(out, v)
	}
	return out
}

// writeLz4 stores the float32 image of the array as one LZ4 block,
// prefixed with the raw and compressed byte counts. Incompressible
// arrays are stored raw with equal counts.
func writeLz4(s *Serializer, values []float64) {
	raw := make([]byte, 4*len(values))
	for i, v := range values {
		bits := math.Float32bits(float32(v))
		raw[4*i] = byte(bits)
		raw[4*i+1] = byte(bits >> 8)
		raw[4*i+2] = byte(bits >> 16)
		raw[4*i+3] = byte(bits >> 24)
	}
	dst := make([]byte, lz4.CompressBlockBound(len(raw)))
	var c lz4.Compressor
	n, err := c.CompressBlock(raw, dst)
	if err != nil || n == 0 || n >= len(raw) {
		s.WriteUint64(uint64(len(raw)))
		s.WriteUint64(uint64(len(raw)))
		s.writeBytes(raw)
		return
	}
	s.WriteUint64(uint64(len(raw)))
	s.WriteUint64(uint64(n))
	s.writeBytes(dst[:n])
}

func readLz4(d *Deserializer) []float64 {
	rawLen := int(d.ReadUint64())
	compLen := int(d.ReadUint64())
	if d.Error() != nil {
		return nil
	}
	comp := make([]byte, compLen)
	if !d.readBytes(comp) {
		return nil
	}
	raw := comp
	if compLen != rawLen {
		raw = make([]byte, rawLen)
		if _, err := lz4.UncompressBlock(comp, raw); err != nil {
			d.Fail(fmt.Errorf("corrupted LZ4 block: %w", err))
			return nil
		}
	}
	out := make([]float64, rawLen/4)
	for i := range out {
		bits := uint32(raw[4*i]) | uint32(raw[4*i+1])<<8 |
			uint32(raw[4*i+2])<<16 | uint32(raw[4*i+3])<<24
		out[i] = float64(math.Float32frombits(bits))
	}
	return out
}

// CompressedInput loads dumps written by CompressedOutput.
type CompressedInput struct{}

// ReadCompressedInfo reads just the header of a compressed dump.
func ReadCompressedInfo(path string) (Info, error) {
	r, err := openStream(path)
	if err != nil {
		return Info{}, err
	}
	defer r.Close()
	d := NewDeserializer(r, false)
	info, _ := readCompressedHeader(d)
	return info, d.Error()
}

func readCompressedHeader(d *Deserializer) (Info, CompressionMode) {
	var info Info
	if magic := d.ReadString(); magic != compressedMagic && d.Error() == nil {
		d.Fail(fmt.Errorf("invalid magic %q, expected %q", magic, compressedMagic))
	}
	info.RunTime = d.ReadFloat()
	info.ParticleCnt = int(d.ReadInt())
	mode := CompressionMode(d.ReadInt())
	info.Version = Version(d.ReadInt())
	if d.Error() == nil && info.Version > VersionLatest {
		d.Fail(fmt.Errorf("unsupported version %d", uint32(info.Version)))
	}
	info.RunType = RunTypeFromString(d.ReadString())
	d.Skip(compressedPad)
	return info, mode
}

func (CompressedInput) Load(path string, storage *quant.Storage) (Stats, error) {
	r, err := openStream(path)
	if err != nil {
		return Stats{}, err
	}
	defer r.Close()

	d := NewDeserializer(r, false)
	info, mode := readCompressedHeader(d)
	if d.Error() != nil {
		return Stats{}, d.Error()
	}

	readArray := func(n int) []float64 {
		switch mode {
		case CompressionNone:
			out := make([]float64, n)
			for i := range out {
				out[i] = d.ReadFloat()
			}
			return out
		case CompressionRLE:
			return readRle(d)
		case CompressionLZ4:
			return readLz4(d)
		}
		d.Fail(fmt.Errorf("unknown compression mode %d", mode))
		return nil
	}

	storage.RemoveAll()
	positions := readArray(4 * info.ParticleCnt)
	velocities := readArray(4 * info.ParticleCnt)
	if d.Error() != nil {
		return Stats{}, d.Error()
	}
	storage.Insert(quant.Position, quant.OrderFirst,
		quant.VectorBuffer(unflattenVectors(positions)))
	q := storage.Quantity(quant.Position)
	q.SetBuffer(quant.OrderFirst, quant.VectorBuffer(unflattenVectors(velocities)))

	optCnt := int(d.ReadInt())
	for i := 0; i < optCnt && d.Error() == nil; i++ {
		id := quant.QuantityId(d.ReadInt())
		values := readArray(info.ParticleCnt)
		if d.Error() == nil {
			storage.Insert(id, quant.OrderZero, quant.ScalarBuffer(values))
		}
	}
	if err := d.Error(); err != nil {
		return Stats{}, err
	}
	return Stats{RunTime: info.RunTime}, nil
}
