package post

import (
	"fmt"

	"github.com/anovak/gosph/geom"
	"github.com/anovak/gosph/quant"
)

// MoonStatus classifies a particle relative to the largest fragment.
type MoonStatus int

const (
	// LargestFragment marks the most massive particle itself.
	LargestFragment MoonStatus = iota
	// Unobservable particles are too small relative to the fragment.
	Unobservable
	// Runaway particles are not gravitationally bound to the fragment.
	Runaway
	// Impactor particles are bound but their orbit intersects the
	// fragment surface.
	Impactor
	// Moon particles are bound on a non-intersecting orbit.
	Moon
)

func (s MoonStatus) String() string {
	switch s {
	case LargestFragment:
		return "largest fragment"
	case Unobservable:
		return "unobservable"
	case Runaway:
		return "runaway"
	case Impactor:
		return "impactor"
	case Moon:
		return "moon"
	}
	return fmt.Sprintf("MoonStatus(%d)", int(s))
}

// FindMoons classifies every particle against the most massive one.
// Particles with radius below limit times the fragment radius are
// unobservable; bound particles whose pericenter comes within radius
// times the sum of both radii are impactors.
func FindMoons(
	storage *quant.Storage, radius, limit float64,
) ([]MoonStatus, error) {
	for _, id := range []quant.QuantityId{quant.Position, quant.Mass} {
		if !storage.Has(id) {
			return nil, fmt.Errorf("post: moon search needs %v", id)
		}
	}
	if storage.Quantity(quant.Position).Order() < quant.OrderFirst {
		return nil, fmt.Errorf("post: moon search needs velocities")
	}
	masses := storage.Scalars(quant.Mass)
	positions := storage.Vectors(quant.Position)
	velocities := storage.VectorsDt(quant.Position)

	largest := 0
	for i := range masses {
		if masses[i] > masses[largest] {
			largest = i
		}
	}

	status := make([]MoonStatus, len(masses))
	status[largest] = LargestFragment
	hLargest := positions[largest][geom.H]
	for i := range masses {
		if i == largest {
			continue
		}
		h := positions[i][geom.H]
		if h < limit*hLargest {
			status[i] = Unobservable
			continue
		}

		m := masses[i] + masses[largest]
		mu := masses[i] * masses[largest] / m
		el, bound := ComputeOrbitalElements(m, mu,
			positions[i].Minus(positions[largest]).Spatial(),
			velocities[i].Minus(velocities[largest]).Spatial())
		switch {
		case !bound:
			status[i] = Runaway
		case el.Pericenter() < radius*(h+hLargest):
			status[i] = Impactor
		default:
			status[i] = Moon
		}
	}
	return status, nil
}

// FindMoonCount returns the number of particles classified as moons.
func FindMoonCount(status []MoonStatus) int {
	cnt := 0
	for _, s := range status {
		if s == Moon {
			cnt++
		}
	}
	return cnt
}
