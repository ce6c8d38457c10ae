package main

const (
	ExampleSfdFile = `[Sfd]

#######################
# Required Parameters #
#######################

# The pkdgrav text dump that is analyzed.
Input = path/to/dump.bt
# The text file the size-frequency distribution is written to.
Output = path/to/sfd.txt

#######################
# Optional Parameters #
#######################

# Group gravitationally settled fragments into components before
# measuring radii. Without this every particle counts as one body.
# Components = true

# Connectivity radius in units of the smoothing length, used when
# Components is set.
# ComponentRadius = 2.0

# Bulk density in kg/m^3 used to convert component masses to radii.
# ReferenceDensity = 2700

# Drop bodies lighter than MassCutoff (kg) or faster than
# VelocityCutoff (m/s).
# MassCutoff = 0
# VelocityCutoff = 0

# Only count radii inside [RangeMin, RangeMax] (m). Unset means the
# range is taken from the data.
# RangeMin = 0
# RangeMax = 0

# LogFile = log.out`

	ExampleExtractFile = `[Extract]

#######################
# Required Parameters #
#######################

# The binary dump that is read. Gzipped dumps (.gz) work too.
Input = path/to/dump_0042.ss
# Mask for the output dump. A %d run of digits is replaced with the
# dump index.
Output = path/to/remnant_%04d.ss

#######################
# Optional Parameters #
#######################

# Connectivity radius in units of the smoothing length.
# ComponentRadius = 2.0

# LogFile = log.out`

	ExampleOrbitsFile = `[Orbits]

#######################
# Required Parameters #
#######################

# An MPC orbit catalog (mpcorp format).
Input = path/to/MPCORB.DAT
# The figure written by the generated matplotlib script.
Output = path/to/orbits.png

#######################
# Optional Parameters #
#######################

# Mass of the central body in solar masses.
# CentralMass = 1.0

# Geometric albedo and bulk density (kg/m^3) used to turn absolute
# magnitudes into diameters and masses.
# Albedo = 0.2
# Density = 2500

# LogFile = log.out`
)

// SharedConfig holds the fields every pipeline config carries.
type SharedConfig struct {
	// Required
	Input, Output string
	// Optional
	LogFile string
}

func (con *SharedConfig) ValidInput() bool {
	return con.Input != ""
}
func (con *SharedConfig) ValidOutput() bool {
	return con.Output != ""
}

type SfdConfig struct {
	SharedConfig
	Components       bool
	ComponentRadius  float64
	ReferenceDensity float64
	MassCutoff       float64
	VelocityCutoff   float64
	RangeMin         float64
	RangeMax         float64
}

type SfdWrapper struct {
	Sfd SfdConfig
}

func DefaultSfdWrapper() *SfdWrapper {
	con := SfdConfig{}
	con.ComponentRadius = 2
	con.ReferenceDensity = 2700
	return &SfdWrapper{con}
}

func (con *SfdConfig) ValidComponentRadius() bool {
	return con.ComponentRadius > 0
}
func (con *SfdConfig) ValidReferenceDensity() bool {
	return con.ReferenceDensity > 0
}
func (con *SfdConfig) ValidRange() bool {
	return con.RangeMax == 0 || con.RangeMax > con.RangeMin
}

type ExtractConfig struct {
	SharedConfig
	ComponentRadius float64
}

type ExtractWrapper struct {
	Extract ExtractConfig
}

func DefaultExtractWrapper() *ExtractWrapper {
	con := ExtractConfig{}
	con.ComponentRadius = 2
	return &ExtractWrapper{con}
}

func (con *ExtractConfig) ValidComponentRadius() bool {
	return con.ComponentRadius > 0
}

type OrbitsConfig struct {
	SharedConfig
	CentralMass float64
	Albedo      float64
	Density     float64
}

type OrbitsWrapper struct {
	Orbits OrbitsConfig
}

func DefaultOrbitsWrapper() *OrbitsWrapper {
	con := OrbitsConfig{}
	con.CentralMass = 1
	con.Albedo = 0.2
	con.Density = 2500
	return &OrbitsWrapper{con}
}

func (con *OrbitsConfig) ValidCentralMass() bool {
	return con.CentralMass > 0
}
func (con *OrbitsConfig) ValidAlbedo() bool {
	return con.Albedo > 0 && con.Albedo <= 1
}
