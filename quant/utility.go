package quant

import "github.com/anovak/gosph/geom"

// TotalMass sums the particle masses together with any attractor masses.
func TotalMass(s *Storage) float64 {
	total := 0.0
	for _, m := range s.Scalars(Mass) {
		total += m
	}
	for i := 0; i < s.AttractorCnt(); i++ {
		total += s.Attractor(i).Mass
	}
	return total
}

// CenterOfMass computes the mass-weighted mean of the given positions.
// The h slot of the result is zero.
func CenterOfMass(masses []float64, positions []geom.Vec) geom.Vec {
	var com geom.Vec
	total := 0.0
	for i := range positions {
		com = com.Plus(positions[i].Spatial().Scaled(masses[i]))
		total += masses[i]
	}
	if total == 0 {
		return geom.Vec{}
	}
	return com.Scaled(1 / total)
}

// MoveToCenterOfMassFrame shifts positions and velocities so that the
// center of mass rests at the origin. Smoothing lengths packed into the
// h slot of positions are preserved; attractors are shifted as well.
func MoveToCenterOfMassFrame(s *Storage) {
	masses := s.Scalars(Mass)
	positions := s.Vectors(Position)
	velocities := s.VectorsDt(Position)

	var com, comVel geom.Vec
	total := 0.0
	for i := range positions {
		com = com.Plus(positions[i].Spatial().Scaled(masses[i]))
		comVel = comVel.Plus(velocities[i].Spatial().Scaled(masses[i]))
		total += masses[i]
	}
	for i := 0; i < s.AttractorCnt(); i++ {
		a := s.Attractor(i)
		com = com.Plus(a.Position.Spatial().Scaled(a.Mass))
		comVel = comVel.Plus(a.Velocity.Spatial().Scaled(a.Mass))
		total += a.Mass
	}
	if total == 0 {
		return
	}
	com = com.Scaled(1 / total)
	comVel = comVel.Scaled(1 / total)

	for i := range positions {
		h := positions[i][geom.H]
		positions[i] = positions[i].Minus(com)
		positions[i][geom.H] = h
		velocities[i] = velocities[i].Minus(comVel)
	}
	for i := 0; i < s.AttractorCnt(); i++ {
		a := s.Attractor(i)
		a.Position = a.Position.Minus(com)
		a.Velocity = a.Velocity.Minus(comVel)
	}
}

// BoundingBox returns the smallest box containing all particle positions,
// each inflated by its smoothing length times radius.
func BoundingBox(s *Storage, radius float64) geom.Box {
	box := geom.EmptyBox()
	for _, r := range s.Vectors(Position) {
		h := r[geom.H] * radius
		box.Extend(r.Plus(geom.NewVec(h, h, h)))
		box.Extend(r.Minus(geom.NewVec(h, h, h)))
	}
	return box
}
