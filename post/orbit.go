package post

import (
	"math"

	"github.com/anovak/gosph/geom"
	"github.com/anovak/gosph/units"
)

// Elements are the Keplerian elements of a bound two-body orbit.
type Elements struct {
	A float64 // semi-major axis
	E float64 // eccentricity
	I float64 // inclination

	// L is the angular momentum and K the Laplace vector pointing
	// toward pericenter.
	L geom.Vec
	K geom.Vec
}

// Pericenter returns the pericenter distance a(1 - e).
func (el Elements) Pericenter() float64 {
	return el.A * (1 - el.E)
}

// Apocenter returns the apocenter distance a(1 + e).
func (el Elements) Apocenter() float64 {
	return el.A * (1 + el.E)
}

// SemiMinor returns the semi-minor axis.
func (el Elements) SemiMinor() float64 {
	return el.A * math.Sqrt(1-el.E*el.E)
}

// AscendingNode returns the longitude of the ascending node, zero for
// near-planar orbits.
func (el Elements) AscendingNode() float64 {
	if math.Hypot(el.L[geom.X], el.L[geom.Y]) < 1e-12*el.L.Length() {
		return 0
	}
	return math.Atan2(el.L[geom.X], el.L[geom.Y])
}

// PericenterArgument returns the argument of pericenter, the angle from
// the ascending-node direction to the Laplace vector.
func (el Elements) PericenterArgument() float64 {
	node := el.AscendingNode()
	dir := geom.NewVec(math.Cos(node), math.Sin(node), 0)
	k := el.K.Length()
	if k == 0 {
		return 0
	}
	omega := math.Acos(math.Max(-1, math.Min(1, geom.Dot(dir, el.K)/k)))
	if el.K[geom.Z] < 0 {
		omega = 2*math.Pi - omega
	}
	return omega
}

// ComputeOrbitalElements reconstructs the orbit of a two-body system
// with total mass m, reduced mass mu, relative position r and relative
// velocity v. It returns false for an unbound (parabolic or hyperbolic)
// configuration.
func ComputeOrbitalElements(m, mu float64, r, v geom.Vec) (Elements, bool) {
	energy := 0.5*mu*v.SqrLength() - units.G*m*mu/r.Length()
	if energy >= 0 {
		return Elements{}, false
	}
	var el Elements
	el.A = -units.G * m * mu / (2 * energy)
	el.L = geom.Cross(r, v).Scaled(mu)
	l := el.L.Length()
	el.I = math.Acos(el.L[geom.Z] / l)

	gmm := units.G * m * mu
	el.E = math.Sqrt(math.Max(0, 1+2*energy*l*l/(mu*gmm*gmm)))
	el.K = geom.Cross(v, el.L).Minus(r.Normalized().Scaled(gmm))
	return el, true
}

// SolveKeplersEquation finds the eccentric anomaly for mean anomaly m
// and eccentricity e by Newton iteration.
func SolveKeplersEquation(m, e float64, iterCnt int) float64 {
	ea := m
	for k := 0; k < iterCnt; k++ {
		ea = ea - (ea-e*math.Sin(ea)-m)/(1-e*math.Cos(ea))
	}
	return ea
}

// DefaultKeplerIterCnt is the iteration count used when callers have no
// reason to pick another.
const DefaultKeplerIterCnt = 10

func EccentricAnomalyToTrueAnomaly(ea, e float64) float64 {
	return 2 * math.Atan2(
		math.Sqrt(1+e)*math.Sin(ea/2),
		math.Sqrt(1-e)*math.Cos(ea/2))
}

func TrueAnomalyToEccentricAnomaly(nu, e float64) float64 {
	return 2 * math.Atan2(
		math.Sqrt(1-e)*math.Sin(nu/2),
		math.Sqrt(1+e)*math.Cos(nu/2))
}

// OrbitalPlanePosition evaluates the position at eccentric anomaly ea in
// the orbital plane, with pericenter on the +x axis.
func OrbitalPlanePosition(a, e, ea float64) geom.Vec {
	return geom.NewVec(
		a*(math.Cos(ea)-e),
		a*math.Sqrt(1-e*e)*math.Sin(ea),
		0)
}

// OrbitalPlaneVelocity evaluates the velocity at eccentric anomaly ea in
// the orbital plane for a system of total mass m.
func OrbitalPlaneVelocity(m, a, e, ea float64) geom.Vec {
	n := math.Sqrt(units.G * m / (a * a * a))
	factor := n * a / (1 - e*math.Cos(ea))
	return geom.NewVec(
		-factor*math.Sin(ea),
		factor*math.Sqrt(1-e*e)*math.Cos(ea),
		0)
}
