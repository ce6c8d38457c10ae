package sphio

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anovak/gosph/geom"
	"github.com/anovak/gosph/quant"
)

func textStorage() *quant.Storage {
	s := quant.NewStorage()
	s.Insert(quant.Position, quant.OrderFirst, quant.VectorBuffer{
		{1, 2, 3, 0.5},
		{-4, 5, -6, 0.25},
	})
	vel := s.VectorsDt(quant.Position)
	vel[0] = geom.NewVec(0.1, 0.2, 0.3)
	vel[1] = geom.NewVec(-0.1, 0, 0)
	s.Insert(quant.Mass, quant.OrderZero, quant.ScalarBuffer{10, 20})
	s.Insert(quant.Flag, quant.OrderZero, quant.IndexBuffer{0, 7})
	return s
}

func TestTextRoundTrip(t *testing.T) {
	storage := textStorage()
	columns := func() []Column {
		return []Column{
			NewValueColumn(quant.Position, quant.KindVector),
			NewDerivativeColumn(quant.Position, quant.KindVector),
			NewSmoothingLengthColumn(),
			NewValueColumn(quant.Mass, quant.KindScalar),
			NewValueColumn(quant.Flag, quant.KindIndex),
		}
	}

	var buf bytes.Buffer
	require.NoError(t, writeText(&buf, storage, Stats{RunTime: 1.5},
		"roundtrip", columns()))

	loaded := quant.NewStorage()
	in := NewTextInput(columns())
	require.NoError(t, in.read(&buf, loaded))

	assert.Equal(t, 2, loaded.ParticleCnt())
	r := loaded.Vectors(quant.Position)
	assert.InDelta(t, -4.0, r[1][geom.X], 1e-10)
	assert.InDelta(t, 0.25, r[1][geom.H], 1e-10)
	v := loaded.VectorsDt(quant.Position)
	assert.InDelta(t, 0.2, v[0][geom.Y], 1e-10)
	assert.Equal(t, []float64{10, 20}, loaded.Scalars(quant.Mass))
	assert.Equal(t, []int64{0, 7}, loaded.Indices(quant.Flag))
	assert.Equal(t, quant.OrderFirst, loaded.Quantity(quant.Position).Order())
}

func TestTextHeaderAndLayout(t *testing.T) {
	var buf bytes.Buffer
	out := []Column{
		NewValueColumn(quant.Position, quant.KindVector),
		NewValueColumn(quant.Density, quant.KindScalar),
	}
	storage := quant.NewStorage()
	storage.Insert(quant.Position, quant.OrderZero,
		quant.VectorBuffer{{1, 2, 3, 0}})
	storage.Insert(quant.Density, quant.OrderZero, quant.ScalarBuffer{2700})
	require.NoError(t, writeText(&buf, storage, Stats{}, "layout", out))

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 4)
	assert.True(t, strings.HasPrefix(lines[0], "# Run: layout"))
	assert.True(t, strings.HasPrefix(lines[1], "#"))
	assert.Contains(t, lines[2], "Position [x]")
	assert.Contains(t, lines[2], "Position [z]")
	assert.Contains(t, lines[2], "Density")
	// Every sub-column occupies the fixed width plus one space.
	assert.Equal(t, 1+4*(columnWidth+1), len(lines[3]))
}

func TestDumpAllColumns(t *testing.T) {
	storage := textStorage()
	columns := dumpAllColumns(storage)
	var names []string
	for _, c := range columns {
		names = append(names, c.Name())
	}
	assert.Equal(t, []string{
		"Particle index", "Position", "Velocity", "Smoothing length",
		"Mass", "Flag",
	}, names)
}

func TestTextDumpAllFile(t *testing.T) {
	dir := t.TempDir()
	file, err := NewOutputFile(filepath.Join(dir, "out_%d.txt"))
	require.NoError(t, err)
	out := NewDumpAllTextOutput(file, "dumpall")

	path, err := out.Dump(textStorage(), Stats{})
	require.NoError(t, err)
	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "Smoothing length")

	in := NewTextInput([]Column{
		NewParticleNumberColumn(),
		NewValueColumn(quant.Position, quant.KindVector),
		NewDerivativeColumn(quant.Position, quant.KindVector),
		NewSmoothingLengthColumn(),
		NewValueColumn(quant.Mass, quant.KindScalar),
		NewValueColumn(quant.Flag, quant.KindIndex),
	})
	loaded := quant.NewStorage()
	require.NoError(t, in.Load(path, loaded))
	assert.Equal(t, []float64{10, 20}, loaded.Scalars(quant.Mass))
	assert.InDelta(t, 0.5, loaded.Vectors(quant.Position)[0][geom.H], 1e-10)
}

func TestTextInputBadValue(t *testing.T) {
	in := NewTextInput([]Column{NewValueColumn(quant.Mass, quant.KindScalar)})
	err := in.read(strings.NewReader("# header\nnot-a-number\n"), quant.NewStorage())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad value")
}

func TestTextInputShortRow(t *testing.T) {
	in := NewTextInput([]Column{NewValueColumn(quant.Position, quant.KindVector)})
	err := in.read(strings.NewReader("1.0 2.0\n"), quant.NewStorage())
	require.Error(t, err)
}
