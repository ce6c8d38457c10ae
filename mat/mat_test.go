package mat

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSolveVector(t *testing.T) {
	m := NewMatrix([]float64{
		1, 3, 5,
		2, 4, 7,
		1, 1, 0,
	}, 3, 3)

	luf := m.LU()
	xs := make([]float64, 3)
	luf.SolveVector([]float64{10, 13, 2}, xs)

	// Verify M * x = b.
	b := make([]float64, 3)
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			b[i] += m.Vals[i*3+j] * xs[j]
		}
	}
	assert.InDelta(t, 10, b[0], 1e-10)
	assert.InDelta(t, 13, b[1], 1e-10)
	assert.InDelta(t, 2, b[2], 1e-10)
}

func TestDeterminant(t *testing.T) {
	m := NewMatrix([]float64{
		1, 3, 5,
		2, 4, 7,
		1, 1, 0,
	}, 3, 3)
	assert.InDelta(t, 4.0, m.LU().Determinant(), 1e-10)
}

func TestSingularPanics(t *testing.T) {
	m := NewMatrix([]float64{
		1, 2,
		0, 0,
	}, 2, 2)
	require.Panics(t, func() { m.LU() })
}

func TestNonSquarePanics(t *testing.T) {
	m := NewMatrix(make([]float64, 6), 2, 3)
	require.Panics(t, func() { m.LU() })
}
