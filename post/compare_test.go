package post

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anovak/gosph/geom"
	"github.com/anovak/gosph/quant"
)

func comparisonStorage(n int) *quant.Storage {
	positions := make(quant.VectorBuffer, n)
	velocities := make(quant.VectorBuffer, n)
	masses := make(quant.ScalarBuffer, n)
	for i := range positions {
		positions[i] = geom.NewVec(float64(10*i), 0, 0)
		positions[i][geom.H] = 1
		velocities[i] = geom.NewVec(0, float64(i), 0)
		masses[i] = float64(n - i)
	}
	s := quant.NewStorage()
	s.Insert(quant.Position, quant.OrderFirst, positions)
	s.Quantity(quant.Position).SetBuffer(quant.OrderFirst, velocities)
	s.Insert(quant.Mass, quant.OrderZero, masses)
	return s
}

func TestCompareParticlesEqual(t *testing.T) {
	test, ref := comparisonStorage(10), comparisonStorage(10)
	assert.NoError(t, CompareParticles(test, ref, 1e-12))

	// perturbations below eps still pass
	test.Scalars(quant.Mass)[3] += 1e-9
	assert.NoError(t, CompareParticles(test, ref, 1e-6))
}

func TestCompareParticlesMismatch(t *testing.T) {
	test, ref := comparisonStorage(10), comparisonStorage(10)
	test.Scalars(quant.Mass)[7] += 0.5
	err := CompareParticles(test, ref, 1e-6)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "particle 7")

	test, ref = comparisonStorage(10), comparisonStorage(10)
	test.Vectors(quant.Position)[2][geom.Y] = 3
	assert.Error(t, CompareParticles(test, ref, 1e-6))

	test.VectorsDt(quant.Position)[0][geom.X] = 1
	assert.Error(t, CompareParticles(test, ref, 1e-6))
}

func TestCompareParticlesStructure(t *testing.T) {
	err := CompareParticles(comparisonStorage(10), comparisonStorage(9), 1e-6)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "counts differ")

	test, ref := comparisonStorage(10), comparisonStorage(10)
	ref.Insert(quant.Density, quant.OrderZero,
		make(quant.ScalarBuffer, 10))
	assert.Error(t, CompareParticles(test, ref, 1e-6))

	test.Insert(quant.Flag, quant.OrderZero, make(quant.IndexBuffer, 10))
	err = CompareParticles(test, ref, 1e-6)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing")
}

func TestCompareLargeSpheres(t *testing.T) {
	test, ref := comparisonStorage(20), comparisonStorage(20)
	assert.NoError(t, CompareLargeSpheres(test, ref, 0.5, 0.1, 1e-6))

	// small positional jitter within the deviation allowance
	for i := range test.Vectors(quant.Position) {
		test.Vectors(quant.Position)[i][geom.Z] += 0.05
	}
	assert.NoError(t, CompareLargeSpheres(test, ref, 0.5, 0.1, 1e-6))
}

func TestCompareLargeSpheresUnmatched(t *testing.T) {
	// displace the most massive particle beyond the deviation allowance
	test, ref := comparisonStorage(20), comparisonStorage(20)
	test.Vectors(quant.Position)[0][geom.X] += 5
	err := CompareLargeSpheres(test, ref, 0.5, 0.1, 1e-6)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1-th largest")

	// a co-located particle with the wrong mass does not match either
	test, ref = comparisonStorage(20), comparisonStorage(20)
	test.Scalars(quant.Mass)[0] *= 2
	assert.Error(t, CompareLargeSpheres(test, ref, 0.5, 0.1, 1e-6))

	// fraction 1 cannot be satisfied
	assert.Error(t, CompareLargeSpheres(
		comparisonStorage(20), comparisonStorage(20), 1, 0.1, 1e-6))
}
