package post

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anovak/gosph/geom"
	"github.com/anovak/gosph/quant"
	"github.com/anovak/gosph/sched"
)

func radiiStorage(radii ...float64) *quant.Storage {
	positions := make(quant.VectorBuffer, len(radii))
	for i, h := range radii {
		positions[i] = geom.NewVec(float64(i)*1000, 0, 0)
		positions[i][geom.H] = h
	}
	s := quant.NewStorage()
	s.Insert(quant.Position, quant.OrderZero, positions)
	return s
}

func TestCumulativeHistogram(t *testing.T) {
	s := radiiStorage(1, 2, 2, 3)
	params := DefaultHistogramParams()

	hist, err := CumulativeHistogram(sched.Serial{}, s, params)
	require.NoError(t, err)
	// one point per distinct value, largest first, ranks increasing
	assert.Equal(t, []HistogramPoint{{3, 1}, {2, 2}, {1, 4}}, hist)
}

func TestCumulativeHistogramValidator(t *testing.T) {
	s := radiiStorage(1, 2, 2, 3)
	params := DefaultHistogramParams()
	params.Validator = func(v float64) bool { return v > 1.5 }

	hist, err := CumulativeHistogram(sched.Serial{}, s, params)
	require.NoError(t, err)
	assert.Equal(t, []HistogramPoint{{3, 1}, {2, 2}}, hist)

	// A rejected value must not count toward the ranks of smaller ones.
	s = radiiStorage(1, 5, 10)
	params.Validator = func(v float64) bool { return v != 5 }
	hist, err = CumulativeHistogram(sched.Serial{}, s, params)
	require.NoError(t, err)
	assert.Equal(t, []HistogramPoint{{10, 1}, {1, 2}}, hist)

	params.Validator = func(v float64) bool { return false }
	_, err = CumulativeHistogram(sched.Serial{}, s, params)
	assert.Error(t, err)
}

func TestDifferentialHistogram(t *testing.T) {
	s := radiiStorage(0.5, 1.5, 2.5, 2.6, 3.5, 9.5, 11)
	params := DefaultHistogramParams()
	params.Range = quant.NewInterval(0, 10)
	params.BinCnt = 5

	hist, err := DifferentialHistogram(sched.Serial{}, s, params)
	require.NoError(t, err)
	require.Len(t, hist, 5)

	// 11 falls out of range and is dropped
	counts := make([]int, 5)
	total := 0
	for i, p := range hist {
		assert.InDelta(t, float64(i)*2, p.Value, 1e-12)
		counts[i] = p.Count
		total += p.Count
	}
	assert.Equal(t, []int{2, 3, 0, 0, 1}, counts)
	assert.Equal(t, 6, total)
}

func TestDifferentialHistogramCenteredBins(t *testing.T) {
	s := radiiStorage(0.5, 1.5, 2.5, 3.5)
	params := DefaultHistogramParams()
	params.Range = quant.NewInterval(0, 4)
	params.BinCnt = 4
	params.CenterBins = true

	hist, err := DifferentialHistogram(sched.Serial{}, s, params)
	require.NoError(t, err)
	for i, p := range hist {
		assert.InDelta(t, float64(i)+0.5, p.Value, 1e-12)
		assert.Equal(t, 1, p.Count)
	}
}

func TestDifferentialHistogramAutoRange(t *testing.T) {
	s := radiiStorage(1, 2, 3, 4, 5, 6, 7, 8, 9)
	params := DefaultHistogramParams()
	params.BinCnt = 4

	hist, err := DifferentialHistogram(sched.NewPool(3), s, params)
	require.NoError(t, err)
	total := 0
	for _, p := range hist {
		total += p.Count
	}
	// the auto range is padded, so every sample lands in a bin
	assert.Equal(t, 9, total)
}

func TestHistogramScalarQuantity(t *testing.T) {
	s := radiiStorage(1, 1, 1)
	s.Insert(quant.Density, quant.OrderZero, quant.ScalarBuffer{10, 20, 30})
	params := DefaultHistogramParams()
	params.Id = QuantityHistogram(quant.Density)

	hist, err := CumulativeHistogram(sched.Serial{}, s, params)
	require.NoError(t, err)
	assert.Equal(t, []HistogramPoint{{30, 1}, {20, 2}, {10, 3}}, hist)
}

func TestHistogramVelocities(t *testing.T) {
	positions := quant.VectorBuffer{
		geom.NewVec(0, 0, 0), geom.NewVec(1000, 0, 0),
	}
	velocities := quant.VectorBuffer{
		geom.NewVec(3, 4, 0), geom.NewVec(0, 0, 1),
	}
	s := quant.NewStorage()
	s.Insert(quant.Position, quant.OrderFirst, positions)
	s.Quantity(quant.Position).SetBuffer(quant.OrderFirst, velocities)

	params := DefaultHistogramParams()
	params.Id = HistogramVelocities
	hist, err := CumulativeHistogram(sched.Serial{}, s, params)
	require.NoError(t, err)
	assert.Equal(t, []HistogramPoint{{5, 1}, {1, 2}}, hist)
}

func TestHistogramMassCutoff(t *testing.T) {
	s := radiiStorage(1, 2, 3)
	s.Insert(quant.Mass, quant.OrderZero, quant.ScalarBuffer{0.1, 5, 5})
	params := DefaultHistogramParams()
	params.MassCutoff = 1

	hist, err := CumulativeHistogram(sched.Serial{}, s, params)
	require.NoError(t, err)
	assert.Equal(t, []HistogramPoint{{3, 1}, {2, 2}}, hist)
}

func TestComponentRadiiHistogram(t *testing.T) {
	s := clusterStorage()
	s.Insert(quant.Density, quant.OrderZero,
		quant.ScalarBuffer{1, 1, 1, 1, 1, 1, 1})

	params := DefaultHistogramParams()
	params.Source = SourceComponents
	hist, err := CumulativeHistogram(sched.Serial{}, s, params)
	require.NoError(t, err)
	// two clusters, one equivalent radius each
	require.Len(t, hist, 2)
	assert.Equal(t, 1, hist[0].Count)
	assert.Equal(t, 2, hist[1].Count)
	assert.Greater(t, hist[0].Value, hist[1].Value)
}
