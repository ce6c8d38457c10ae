package post

import (
	"fmt"
	"math"

	"github.com/anovak/gosph/geom"
	"github.com/anovak/gosph/quant"
)

// subsetOrAll returns idxs, or the identity index set when idxs is nil.
func subsetOrAll(idxs []int, n int) []int {
	if idxs != nil {
		return idxs
	}
	all := make([]int, n)
	for i := range all {
		all[i] = i
	}
	return all
}

// SubsetCenterOfMass computes the center of mass of the selected
// particles, or of all particles when idxs is nil.
func SubsetCenterOfMass(
	masses []float64, positions []geom.Vec, idxs []int,
) geom.Vec {
	com := geom.Vec{}
	total := 0.0
	for _, i := range subsetOrAll(idxs, len(positions)) {
		com = com.Plus(positions[i].Spatial().Scaled(masses[i]))
		total += masses[i]
	}
	if total == 0 {
		return com
	}
	return com.Scaled(1 / total)
}

// InertiaTensor computes the inertia tensor of the selected particles
// about their center of mass.
func InertiaTensor(
	masses []float64, positions []geom.Vec, idxs []int,
) geom.SymTensor {
	idxs = subsetOrAll(idxs, len(positions))
	com := SubsetCenterOfMass(masses, positions, idxs)
	inertia := geom.NullSymTensor()
	for _, i := range idxs {
		dr := positions[i].Spatial().Minus(com)
		term := geom.IdentitySymTensor().Scaled(dr.SqrLength()).
			Plus(geom.SymOuter(dr, dr).Scaled(-1))
		inertia = inertia.Plus(term.Scaled(masses[i]))
	}
	return inertia
}

// AngularMomentum computes the total angular momentum of the selected
// particles about their center of mass.
func AngularMomentum(
	masses []float64, positions, velocities []geom.Vec, idxs []int,
) geom.Vec {
	idxs = subsetOrAll(idxs, len(positions))
	com := SubsetCenterOfMass(masses, positions, idxs)
	comV := SubsetCenterOfMass(masses, velocities, idxs)
	l := geom.Vec{}
	for _, i := range idxs {
		dr := positions[i].Spatial().Minus(com)
		dv := velocities[i].Spatial().Minus(comV)
		l = l.Plus(geom.Cross(dr, dv).Scaled(masses[i]))
	}
	return l
}

// AngularFrequency computes the angular frequency of the selected
// particles, treating them as a rigid body: omega = I^-1 L.
func AngularFrequency(
	masses []float64, positions, velocities []geom.Vec, idxs []int,
) geom.Vec {
	idxs = subsetOrAll(idxs, len(positions))
	l := AngularMomentum(masses, positions, velocities, idxs)
	inertia := InertiaTensor(masses, positions, idxs)
	return inertia.Inverse().Apply(l)
}

// Tumbler is a particle whose angular momentum is misaligned with its
// angular frequency by the angle Beta.
type Tumbler struct {
	Index int
	Beta  float64
}

// FindTumblers lists the particles whose angle between L = I omega and
// omega exceeds limit. Particles with zero spin are skipped.
func FindTumblers(storage *quant.Storage, limit float64) ([]Tumbler, error) {
	for _, id := range []quant.QuantityId{
		quant.AngularFrequency, quant.MomentOfInertia,
	} {
		if !storage.Has(id) {
			return nil, fmt.Errorf("post: tumbler search needs %v", id)
		}
	}
	omega := storage.Vectors(quant.AngularFrequency)
	inertia := storage.SymTensors(quant.MomentOfInertia)

	var tumblers []Tumbler
	for i := range omega {
		w := omega[i].Spatial()
		if w.SqrLength() == 0 {
			continue
		}
		l := inertia[i].Apply(w)
		cosBeta := geom.Dot(l, w) / (l.Length() * w.Length())
		beta := math.Acos(math.Max(-1, math.Min(1, cosBeta)))
		if beta > limit {
			tumblers = append(tumblers, Tumbler{Index: i, Beta: beta})
		}
	}
	return tumblers, nil
}
