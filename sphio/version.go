package sphio

import "fmt"

// Version tags the layout of a binary dump. Values are ordered by release
// date and stored on the wire, so they must not be renumbered.
type Version uint32

const (
	VersionFirst Version = iota
	Version2018_04_07
	Version2018_10_24
	Version2021_03_20
	Version2021_08_08

	VersionLatest = Version2021_08_08
)

func (v Version) String() string {
	switch v {
	case VersionFirst:
		return "first"
	case Version2018_04_07:
		return "2018-04-07"
	case Version2018_10_24:
		return "2018-10-24"
	case Version2021_03_20:
		return "2021-03-20"
	case Version2021_08_08:
		return "2021-08-08"
	}
	return fmt.Sprintf("Version(%d)", uint32(v))
}

// RunType labels the simulation phase that produced a dump. It is stored
// as a string so that old readers can pass unknown values through.
type RunType int

const (
	RunTypeUnknown RunType = iota
	RunTypeSph
	RunTypeNBody
	RunTypeRubblePile
	RunTypeStatic
)

var runTypeNames = map[RunType]string{
	RunTypeSph:        "sph",
	RunTypeNBody:      "nbody",
	RunTypeRubblePile: "rubble-pile",
	RunTypeStatic:     "static",
}

func (t RunType) String() string {
	if name, ok := runTypeNames[t]; ok {
		return name
	}
	return "unknown"
}

// RunTypeFromString parses the wire representation of a run type;
// unrecognized names map to RunTypeUnknown.
func RunTypeFromString(s string) RunType {
	for t, name := range runTypeNames {
		if name == s {
			return t
		}
	}
	return RunTypeUnknown
}
