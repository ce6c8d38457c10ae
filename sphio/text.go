package sphio

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/anovak/gosph/geom"
	"github.com/anovak/gosph/quant"
)

// columnWidth is the fixed width of a text column; every column is
// followed by one extra space.
const columnWidth = 20

// Column maps between a particle property and one or more text
// sub-columns. Evaluate extracts the sub-column values of a particle;
// Accumulate stores parsed values back, creating the quantity when the
// storage does not hold it yet.
type Column interface {
	Name() string
	SubNames() []string
	Integral() bool
	Evaluate(s *quant.Storage, i int) []float64
	Accumulate(s *quant.Storage, n, i int, vals []float64)
}

func kindSubNames(name string, kind quant.ValueKind) []string {
	switch kind {
	case quant.KindScalar, quant.KindIndex:
		return []string{name}
	case quant.KindVector:
		return []string{name + " [x]", name + " [y]", name + " [z]"}
	case quant.KindSymTensor:
		return []string{
			name + " [xx]", name + " [yy]", name + " [zz]",
			name + " [xy]", name + " [xz]", name + " [yz]",
		}
	case quant.KindTracelessTensor:
		return []string{
			name + " [xx]", name + " [yy]",
			name + " [xy]", name + " [xz]", name + " [yz]",
		}
	case quant.KindTensor:
		names := make([]string, 9)
		for i := 0; i < 3; i++ {
			for j := 0; j < 3; j++ {
				names[3*i+j] = fmt.Sprintf("%s [%d%d]", name, i+1, j+1)
			}
		}
		return names
	}
	panic(fmt.Sprintf("sphio: kind %v has no text representation", kind))
}

// valueColumn reads one derivative buffer of a quantity.
type valueColumn struct {
	name  string
	id    quant.QuantityId
	order quant.Order
	kind  quant.ValueKind
}

// NewValueColumn makes a column over the values of a quantity.
func NewValueColumn(id quant.QuantityId, kind quant.ValueKind) Column {
	return &valueColumn{name: id.String(), id: id, order: quant.OrderZero, kind: kind}
}

// NewDerivativeColumn makes a column over the first derivative of a
// quantity; the derivative of position is named velocity.
func NewDerivativeColumn(id quant.QuantityId, kind quant.ValueKind) Column {
	name := id.String() + " dt"
	if id == quant.Position {
		name = "Velocity"
	}
	return &valueColumn{name: name, id: id, order: quant.OrderFirst, kind: kind}
}

func (c *valueColumn) Name() string       { return c.name }
func (c *valueColumn) SubNames() []string { return kindSubNames(c.name, c.kind) }
func (c *valueColumn) Integral() bool     { return c.kind == quant.KindIndex }

func (c *valueColumn) Evaluate(s *quant.Storage, i int) []float64 {
	buf := s.Quantity(c.id).Buffer(c.order)
	switch b := buf.(type) {
	case quant.IndexBuffer:
		return []float64{float64(b[i])}
	case quant.ScalarBuffer:
		return []float64{b[i]}
	case quant.VectorBuffer:
		return []float64{b[i][geom.X], b[i][geom.Y], b[i][geom.Z]}
	case quant.SymTensorBuffer:
		t := b[i]
		return []float64{t[0], t[1], t[2], t[3], t[4], t[5]}
	case quant.TracelessTensorBuffer:
		t := b[i]
		return []float64{t[0], t[1], t[2], t[3], t[4]}
	case quant.TensorBuffer:
		t := b[i]
		return t[:]
	}
	panic(fmt.Sprintf("sphio: kind %v has no text representation", buf.Kind()))
}

func (c *valueColumn) ensure(s *quant.Storage, n int) *quant.Quantity {
	if !s.Has(c.id) {
		s.Insert(c.id, c.order, quant.NewBuffer(c.kind, n))
	}
	q := s.Quantity(c.id)
	if q.Order() < c.order {
		// Upgrade the order in place, keeping the already parsed values.
		values := q.Values()
		s.Insert(c.id, c.order, values)
		q = s.Quantity(c.id)
	}
	return q
}

func (c *valueColumn) Accumulate(s *quant.Storage, n, i int, vals []float64) {
	q := c.ensure(s, n)
	switch b := q.Buffer(c.order).(type) {
	case quant.IndexBuffer:
		b[i] = int64(vals[0])
	case quant.ScalarBuffer:
		b[i] = vals[0]
	case quant.VectorBuffer:
		h := b[i][geom.H]
		b[i] = geom.NewVec(vals[0], vals[1], vals[2])
		b[i][geom.H] = h
	case quant.SymTensorBuffer:
		copy(b[i][:], vals)
	case quant.TracelessTensorBuffer:
		copy(b[i][:], vals)
	case quant.TensorBuffer:
		copy(b[i][:], vals)
	}
}

// particleNumberColumn emits the particle index.
type particleNumberColumn struct{}

func NewParticleNumberColumn() Column { return particleNumberColumn{} }

func (particleNumberColumn) Name() string       { return "Particle index" }
func (particleNumberColumn) SubNames() []string { return []string{"Particle index"} }
func (particleNumberColumn) Integral() bool     { return true }

func (particleNumberColumn) Evaluate(s *quant.Storage, i int) []float64 {
	return []float64{float64(i)}
}

func (particleNumberColumn) Accumulate(s *quant.Storage, n, i int, vals []float64) {
	// The index is implied by the row order.
}

// smoothingLengthColumn exposes the h slot of positions.
type smoothingLengthColumn struct{}

func NewSmoothingLengthColumn() Column { return smoothingLengthColumn{} }

func (smoothingLengthColumn) Name() string       { return "Smoothing length" }
func (smoothingLengthColumn) SubNames() []string { return []string{"Smoothing length"} }
func (smoothingLengthColumn) Integral() bool     { return false }

func (smoothingLengthColumn) Evaluate(s *quant.Storage, i int) []float64 {
	return []float64{s.Vectors(quant.Position)[i][geom.H]}
}

func (smoothingLengthColumn) Accumulate(s *quant.Storage, n, i int, vals []float64) {
	if !s.Has(quant.Position) {
		s.Insert(quant.Position, quant.OrderZero, make(quant.VectorBuffer, n))
	}
	s.Vectors(quant.Position)[i][geom.H] = vals[0]
}

// TextOutput writes column-oriented fixed-width ASCII dumps. With the
// DumpAll option the column set is synthesized per dump from the
// quantities present in the storage.
type TextOutput struct {
	file    *OutputFile
	runName string
	columns []Column
	dumpAll bool
}

func NewTextOutput(file *OutputFile, runName string) *TextOutput {
	return &TextOutput{file: file, runName: runName}
}

// NewDumpAllTextOutput writes every quantity of the storage, prefixed by
// the canonical index, position, velocity and smoothing-length columns.
func NewDumpAllTextOutput(file *OutputFile, runName string) *TextOutput {
	return &TextOutput{file: file, runName: runName, dumpAll: true}
}

func (o *TextOutput) AddColumn(c Column) {
	o.columns = append(o.columns, c)
}

func dumpAllColumns(storage *quant.Storage) []Column {
	columns := []Column{
		NewParticleNumberColumn(),
		NewValueColumn(quant.Position, quant.KindVector),
		NewDerivativeColumn(quant.Position, quant.KindVector),
		NewSmoothingLengthColumn(),
	}
	for _, id := range storage.Ids() {
		if id == quant.Position {
			continue
		}
		q := storage.Quantity(id)
		columns = append(columns, NewValueColumn(id, q.Kind()))
		if q.Order() >= quant.OrderFirst {
			columns = append(columns, NewDerivativeColumn(id, q.Kind()))
		}
	}
	return columns
}

func (o *TextOutput) Dump(storage *quant.Storage, stats Stats) (string, error) {
	path := o.file.Next(stats.RunTime)
	w, err := createStream(path)
	if err != nil {
		return "", err
	}
	columns := o.columns
	if o.dumpAll {
		columns = dumpAllColumns(storage)
	}
	if err := writeText(w, storage, stats, o.runName, columns); err != nil {
		w.Close()
		return "", err
	}
	return path, w.Close()
}

func writeText(w io.Writer, storage *quant.Storage, stats Stats,
	runName string, columns []Column) error {

	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "# Run: %s\n", runName)
	fmt.Fprintf(bw, "# SPH dump, time = %s\n",
		strconv.FormatFloat(stats.RunTime, 'g', -1, 64))

	bw.WriteString("#")
	for _, c := range columns {
		for _, name := range c.SubNames() {
			fmt.Fprintf(bw, " %*s", columnWidth, name)
		}
	}
	bw.WriteString("\n")

	for i := 0; i < storage.ParticleCnt(); i++ {
		bw.WriteString(" ")
		for _, c := range columns {
			vals := c.Evaluate(storage, i)
			for _, v := range vals {
				if c.Integral() {
					fmt.Fprintf(bw, " %*d", columnWidth, int64(v))
				} else {
					fmt.Fprintf(bw, " %*.12e", columnWidth, v)
				}
			}
		}
		bw.WriteString("\n")
	}
	return bw.Flush()
}

// TextInput parses dumps written by TextOutput. The configured columns
// must match the file's column layout positionally.
type TextInput struct {
	columns []Column
}

func NewTextInput(columns []Column) *TextInput {
	return &TextInput{columns: columns}
}

func (in *TextInput) AddColumn(c Column) {
	in.columns = append(in.columns, c)
}

func (in *TextInput) Load(path string, storage *quant.Storage) error {
	r, err := openStream(path)
	if err != nil {
		return err
	}
	defer r.Close()
	return in.read(r, storage)
}

func (in *TextInput) read(r io.Reader, storage *quant.Storage) error {
	var rows [][]float64
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 1<<20), 1<<20)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)
		row := make([]float64, len(fields))
		for i, f := range fields {
			v, err := strconv.ParseFloat(f, 64)
			if err != nil {
				return fmt.Errorf("sphio: line %d: bad value %q", lineNo, f)
			}
			row[i] = v
		}
		rows = append(rows, row)
	}
	if err := scanner.Err(); err != nil {
		return err
	}

	storage.RemoveAll()
	n := len(rows)
	for i, row := range rows {
		at := 0
		for _, c := range in.columns {
			cnt := len(c.SubNames())
			if at+cnt > len(row) {
				return fmt.Errorf("sphio: row %d has %d values, need at least %d",
					i, len(row), at+cnt)
			}
			c.Accumulate(storage, n, i, row[at:at+cnt])
			at += cnt
		}
	}
	return nil
}
