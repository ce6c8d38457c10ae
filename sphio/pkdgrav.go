package sphio

import (
	"fmt"
	"math"
	"sort"

	"github.com/phil-mansfield/table"

	"github.com/anovak/gosph/geom"
	"github.com/anovak/gosph/quant"
	"github.com/anovak/gosph/units"
)

// PkdgravConversion converts pkdgrav's internal N-body units to SI. The
// defaults correspond to heliocentric units: distances in AU, masses in
// solar masses, velocities in units of Earth's orbital speed.
type PkdgravConversion struct {
	Distance float64
	Mass     float64
	Velocity float64
}

func DefaultPkdgravConversion() PkdgravConversion {
	return PkdgravConversion{
		Distance: units.Au,
		Mass:     units.SolarMass,
		Velocity: 2.97853e4,
	}
}

// PkdgravInput imports pkdgrav text dumps. The column layout is fixed:
// index, original index, mass, density (stored in the radius column),
// position, velocity, spin and color index. Particles come back sorted
// by decreasing mass, with positions upgraded to second order.
type PkdgravInput struct {
	Conversion PkdgravConversion
}

func NewPkdgravInput() *PkdgravInput {
	return &PkdgravInput{Conversion: DefaultPkdgravConversion()}
}

func (in *PkdgravInput) Load(path string, storage *quant.Storage) error {
	colIdxs := []int{2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13}
	cols, err := table.ReadTable(path, colIdxs, nil)
	if err != nil {
		return err
	}
	n := len(cols[0])
	for _, col := range cols {
		if len(col) != n {
			return fmt.Errorf("sphio: ragged pkdgrav table in %q", path)
		}
	}

	conv := in.Conversion
	massCol, rhoCol := cols[0], cols[1]
	omegaUnit := conv.Velocity / conv.Distance
	rhoUnit := conv.Mass / (conv.Distance * conv.Distance * conv.Distance)

	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return massCol[order[a]] > massCol[order[b]]
	})

	positions := make(quant.VectorBuffer, n)
	velocities := make(quant.VectorBuffer, n)
	masses := make(quant.ScalarBuffer, n)
	densities := make(quant.ScalarBuffer, n)
	spins := make(quant.VectorBuffer, n)
	flags := make(quant.IndexBuffer, n)
	for i, src := range order {
		mass := massCol[src] * conv.Mass
		rho := rhoCol[src] * rhoUnit
		positions[i] = geom.NewVec(
			cols[2][src]*conv.Distance,
			cols[3][src]*conv.Distance,
			cols[4][src]*conv.Distance)
		// The radius column is abused for density; recover the radius
		// from the mass and use it as the smoothing length.
		positions[i][geom.H] = math.Cbrt(3 * mass / (4 * math.Pi * rho))
		velocities[i] = geom.NewVec(
			cols[5][src]*conv.Velocity,
			cols[6][src]*conv.Velocity,
			cols[7][src]*conv.Velocity)
		spins[i] = geom.NewVec(
			cols[8][src]*omegaUnit,
			cols[9][src]*omegaUnit,
			cols[10][src]*omegaUnit)
		masses[i] = mass
		densities[i] = rho
		flags[i] = int64(cols[11][src])
	}

	storage.RemoveAll()
	storage.Insert(quant.Position, quant.OrderSecond, positions)
	copy(storage.VectorsDt(quant.Position), velocities)
	storage.Insert(quant.Mass, quant.OrderZero, masses)
	storage.Insert(quant.Density, quant.OrderZero, densities)
	storage.Insert(quant.AngularFrequency, quant.OrderZero, spins)
	storage.Insert(quant.Flag, quant.OrderZero, flags)
	return nil
}
