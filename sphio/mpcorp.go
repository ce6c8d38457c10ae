package sphio

import (
	"bufio"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/anovak/gosph/geom"
	"github.com/anovak/gosph/post"
	"github.com/anovak/gosph/quant"
	"github.com/anovak/gosph/units"
)

// MpcorpInput imports minor-planet orbital elements in the MPC catalog
// format. Each body becomes one particle with a position and velocity
// reconstructed from its elements in the ecliptic frame; the body-class
// digit at the end of each line goes into the flag quantity.
type MpcorpInput struct {
	// Albedo and Density convert absolute magnitude to size and mass.
	Albedo  float64
	Density float64
}

func NewMpcorpInput() *MpcorpInput {
	return &MpcorpInput{Albedo: 0.2, Density: 2500}
}

func (in *MpcorpInput) Load(path string, storage *quant.Storage) error {
	r, err := openStream(path)
	if err != nil {
		return err
	}
	defer r.Close()

	var (
		positions  quant.VectorBuffer
		velocities quant.VectorBuffer
		masses     quant.ScalarBuffer
		flags      quant.IndexBuffer
	)

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 1<<20), 1<<20)
	inHeader := true
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if inHeader {
			if strings.HasPrefix(line, "----") {
				inHeader = false
			}
			continue
		}
		if line == "" {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 11 {
			return fmt.Errorf("sphio: line %d: %d fields, expected at least 11",
				lineNo, len(fields))
		}
		// Field 0 is the designation and field 3 the packed epoch; the
		// orbital elements sit at fixed positions after them.
		numeric := func(idx int) (float64, error) {
			v, err := strconv.ParseFloat(fields[idx], 64)
			if err != nil {
				return 0, fmt.Errorf("sphio: line %d: bad value %q",
					lineNo, fields[idx])
			}
			return v, nil
		}
		var parseErr error
		at := func(idx int) float64 {
			v, err := numeric(idx)
			if err != nil && parseErr == nil {
				parseErr = err
			}
			return v
		}
		absMag := at(1)
		meanAnomaly := at(4) * units.Deg
		argPeriapsis := at(5) * units.Deg
		ascNode := at(6) * units.Deg
		inclination := at(7) * units.Deg
		ecc := at(8)
		meanMotion := at(9) * units.Deg / units.Day
		semiMajor := at(10) * units.Au
		if parseErr != nil {
			return parseErr
		}

		ea := post.SolveKeplersEquation(meanAnomaly, ecc, post.DefaultKeplerIterCnt)
		cosE, sinE := math.Cos(ea), math.Sin(ea)
		pos := geom.NewVec(
			semiMajor*(cosE-ecc),
			semiMajor*math.Sqrt(1-ecc*ecc)*sinE,
			0)
		factor := meanMotion * semiMajor / (1 - ecc*cosE)
		vel := geom.NewVec(
			-factor*sinE,
			factor*math.Sqrt(1-ecc*ecc)*cosE,
			0)

		rot := geom.RotateZ(ascNode).
			Times(geom.RotateX(inclination)).
			Times(geom.RotateZ(argPeriapsis))
		pos = rot.Apply(pos)
		vel = rot.Apply(vel)

		// The standard asteroid size from absolute magnitude and albedo.
		diameter := 1329 * units.Km / math.Sqrt(in.Albedo) *
			math.Pow(10, -absMag/5)
		radius := diameter / 2
		pos[geom.H] = radius

		class := int64(0)
		last := fields[len(fields)-1]
		if c, err := strconv.ParseInt(last, 10, 64); err == nil {
			class = c
		}

		positions = append(positions, pos)
		velocities = append(velocities, vel)
		masses = append(masses, in.Density*geom.SphereVolume(radius))
		flags = append(flags, class)
	}
	if err := scanner.Err(); err != nil {
		return err
	}

	storage.RemoveAll()
	storage.Insert(quant.Position, quant.OrderFirst, positions)
	copy(storage.VectorsDt(quant.Position), velocities)
	storage.Insert(quant.Mass, quant.OrderZero, masses)
	storage.Insert(quant.Flag, quant.OrderZero, flags)
	return nil
}
