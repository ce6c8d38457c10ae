/*
Package sphio reads and writes particle storages in the SPH binary
format and its compressed, text, VTK and interop variants.
*/
package sphio

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
)

// StringSize is the width of every string field on the wire. Strings are
// NUL-padded and never length-prefixed.
const StringSize = 16

// Error is a serialization failure tagged with the byte offset at which
// it occurred.
type Error struct {
	Offset int64
	Err    error
}

func (e *Error) Error() string {
	return fmt.Sprintf("sphio: %v at byte %d", e.Err, e.Offset)
}

func (e *Error) Unwrap() error { return e.Err }

// Serializer writes primitives to a stream in little-endian order. The
// precise flag selects 8-byte floats and ints; otherwise both take 4
// bytes. Errors are sticky: after the first failure all writes are no-ops
// and Error reports the failure.
type Serializer struct {
	w       io.Writer
	precise bool
	offset  int64
	err     error
	buf     [StringSize]byte
}

func NewSerializer(w io.Writer, precise bool) *Serializer {
	return &Serializer{w: w, precise: precise}
}

func (s *Serializer) Error() error  { return s.err }
func (s *Serializer) Offset() int64 { return s.offset }

func (s *Serializer) writeBytes(b []byte) {
	if s.err != nil {
		return
	}
	n, err := s.w.Write(b)
	s.offset += int64(n)
	if err != nil {
		s.err = &Error{Offset: s.offset, Err: err}
	}
}

func (s *Serializer) WriteUint32(v uint32) {
	binary.LittleEndian.PutUint32(s.buf[:4], v)
	s.writeBytes(s.buf[:4])
}

func (s *Serializer) WriteUint64(v uint64) {
	binary.LittleEndian.PutUint64(s.buf[:8], v)
	s.writeBytes(s.buf[:8])
}

// WriteInt writes a signed integer in the stream's int width.
func (s *Serializer) WriteInt(v int64) {
	if s.precise {
		s.WriteUint64(uint64(v))
	} else {
		s.WriteUint32(uint32(int32(v)))
	}
}

// WriteFloat writes a float in the stream's float width.
func (s *Serializer) WriteFloat(v float64) {
	if s.precise {
		s.WriteUint64(math.Float64bits(v))
	} else {
		s.WriteUint32(math.Float32bits(float32(v)))
	}
}

// WriteString writes v as a fixed 16-byte NUL-padded field. Longer
// strings are truncated.
func (s *Serializer) WriteString(v string) {
	for i := range s.buf {
		s.buf[i] = 0
	}
	copy(s.buf[:StringSize-1], v)
	s.writeBytes(s.buf[:])
}

// AddPadding writes n zero bytes.
func (s *Serializer) AddPadding(n int) {
	if s.err != nil {
		return
	}
	zeros := make([]byte, n)
	s.writeBytes(zeros)
}

// PadTo pads the stream with zeros up to the absolute offset. It panics
// when the stream is already past it.
func (s *Serializer) PadTo(offset int64) {
	if s.offset > offset {
		panic(fmt.Sprintf("sphio: stream at byte %d is past pad target %d",
			s.offset, offset))
	}
	s.AddPadding(int(offset - s.offset))
}

// Deserializer reads primitives written by a Serializer of the same
// precision. Errors are sticky and carry the byte offset; a short read
// reports io.ErrUnexpectedEOF.
type Deserializer struct {
	r       io.Reader
	precise bool
	offset  int64
	err     error
	buf     [StringSize]byte
}

func NewDeserializer(r io.Reader, precise bool) *Deserializer {
	return &Deserializer{r: r, precise: precise}
}

func (d *Deserializer) Error() error  { return d.err }
func (d *Deserializer) Offset() int64 { return d.offset }

// Fail records an external failure at the current offset, typically a
// format mismatch detected by the caller.
func (d *Deserializer) Fail(err error) {
	if d.err == nil {
		d.err = &Error{Offset: d.offset, Err: err}
	}
}

func (d *Deserializer) readBytes(b []byte) bool {
	if d.err != nil {
		return false
	}
	n, err := io.ReadFull(d.r, b)
	d.offset += int64(n)
	if err != nil {
		if err == io.EOF {
			err = io.ErrUnexpectedEOF
		}
		d.err = &Error{Offset: d.offset, Err: err}
		return false
	}
	return true
}

func (d *Deserializer) ReadUint32() uint32 {
	if !d.readBytes(d.buf[:4]) {
		return 0
	}
	return binary.LittleEndian.Uint32(d.buf[:4])
}

func (d *Deserializer) ReadUint64() uint64 {
	if !d.readBytes(d.buf[:8]) {
		return 0
	}
	return binary.LittleEndian.Uint64(d.buf[:8])
}

func (d *Deserializer) ReadInt() int64 {
	if d.precise {
		return int64(d.ReadUint64())
	}
	return int64(int32(d.ReadUint32()))
}

func (d *Deserializer) ReadFloat() float64 {
	if d.precise {
		return math.Float64frombits(d.ReadUint64())
	}
	return float64(math.Float32frombits(d.ReadUint32()))
}

// ReadString reads a fixed 16-byte field and strips the NUL padding.
func (d *Deserializer) ReadString() string {
	if !d.readBytes(d.buf[:]) {
		return ""
	}
	end := 0
	for end < StringSize && d.buf[end] != 0 {
		end++
	}
	return string(d.buf[:end])
}

// Skip consumes n bytes without interpretation.
func (d *Deserializer) Skip(n int) {
	if d.err != nil || n <= 0 {
		return
	}
	if s, ok := d.r.(io.Seeker); ok {
		if _, err := s.Seek(int64(n), io.SeekCurrent); err == nil {
			d.offset += int64(n)
			return
		}
	}
	m, err := io.CopyN(io.Discard, d.r, int64(n))
	d.offset += m
	if err != nil {
		if err == io.EOF {
			err = io.ErrUnexpectedEOF
		}
		d.err = &Error{Offset: d.offset, Err: err}
	}
}

// SkipTo discards bytes up to the absolute offset.
func (d *Deserializer) SkipTo(offset int64) {
	if offset < d.offset {
		d.Fail(fmt.Errorf("cannot seek back to byte %d", offset))
		return
	}
	d.Skip(int(offset - d.offset))
}
