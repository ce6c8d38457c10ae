package post

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anovak/gosph/geom"
	"github.com/anovak/gosph/units"
)

func TestEarthLikeOrbit(t *testing.T) {
	m := units.SolarMass + units.EarthMass
	mu := units.SolarMass * units.EarthMass / m
	r := geom.NewVec(0, units.Au, 0)
	v := geom.NewVec(0, 0, 29800)

	el, bound := ComputeOrbitalElements(m, mu, r, v)
	require.True(t, bound)
	assert.InEpsilon(t, units.Au, el.A, 1e-3)
	assert.GreaterOrEqual(t, el.E, 0.0)
	assert.LessOrEqual(t, el.E, 0.1)
	assert.InDelta(t, math.Pi/2, el.I, 1e-9)
}

func TestUnboundOrbit(t *testing.T) {
	m := units.SolarMass
	r := geom.NewVec(units.Au, 0, 0)
	// well above solar escape velocity at 1 AU
	v := geom.NewVec(0, 1e5, 0)
	_, bound := ComputeOrbitalElements(m, 1, r, v)
	assert.False(t, bound)
}

func TestOrbitDerivedQuantities(t *testing.T) {
	el := Elements{A: 2, E: 0.5}
	assert.InDelta(t, 1.0, el.Pericenter(), 1e-12)
	assert.InDelta(t, 3.0, el.Apocenter(), 1e-12)
	assert.InDelta(t, 2*math.Sqrt(0.75), el.SemiMinor(), 1e-12)
}

func TestAscendingNodePlanarOrbit(t *testing.T) {
	// orbit in the xy plane, L along z: the node degenerates to 0
	m := 2 * units.SolarMass
	r := geom.NewVec(units.Au, 0, 0)
	vc := math.Sqrt(units.G * m / units.Au)
	el, bound := ComputeOrbitalElements(m, 1, r, geom.NewVec(0, 0.9*vc, 0))
	require.True(t, bound)
	assert.Equal(t, 0.0, el.AscendingNode())
}

func TestKeplersEquation(t *testing.T) {
	for _, e := range []float64{0, 0.1, 0.5, 0.9} {
		for _, m := range []float64{-2, -0.5, 0.1, 1, 3} {
			ea := SolveKeplersEquation(m, e, DefaultKeplerIterCnt)
			assert.InDelta(t, m, ea-e*math.Sin(ea), 1e-9,
				"e=%g m=%g", e, m)
		}
	}
}

func TestAnomalyRoundTrip(t *testing.T) {
	for e := 0.0; e <= 0.9; e += 0.1 {
		for nu := -3.0; nu <= 3.0; nu += 0.25 {
			ea := TrueAnomalyToEccentricAnomaly(nu, e)
			back := EccentricAnomalyToTrueAnomaly(ea, e)
			assert.InDelta(t, nu, back, 1e-6, "e=%g nu=%g", e, nu)
		}
	}
}

func TestOrbitalPlaneReconstruction(t *testing.T) {
	m := units.SolarMass
	a := 1.5 * units.Au
	e := 0.3

	for ea := 0.0; ea < 2*math.Pi; ea += 0.7 {
		r := OrbitalPlanePosition(a, e, ea)
		v := OrbitalPlaneVelocity(m, a, e, ea)

		// radius follows a(1 - e cos E)
		assert.InEpsilon(t, a*(1-e*math.Cos(ea)), r.Length(), 1e-9)

		el, bound := ComputeOrbitalElements(m, 1, r, v)
		require.True(t, bound)
		assert.InEpsilon(t, a, el.A, 1e-6)
		assert.InDelta(t, e, el.E, 1e-6)
	}
}
