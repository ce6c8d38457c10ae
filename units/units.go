// Package units collects the physical constants and unit conversions
// used across the analysis pipeline. Everything internal is SI.
package units

import "math"

const (
	// G is the gravitational constant in m^3 kg^-1 s^-2.
	G = 6.6743e-11

	// Au is the astronomical unit in meters.
	Au = 1.495978707e11

	Km  = 1e3
	Day = 86400.0
	Yr  = 365.25 * Day

	// SolarMass and EarthMass in kilograms.
	SolarMass = 1.989e30
	EarthMass = 5.972e24

	Deg = math.Pi / 180
)
