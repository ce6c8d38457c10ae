package sphio

import (
	"errors"

	"github.com/anovak/gosph/quant"
)

// Hdf5Input would read the fixed miluphcuda schema (/x, /v, /m, /p,
// /rho, /e, /sml). HDF5 needs a cgo binding, which this build does not
// carry, so loading reports a configuration error instead.
type Hdf5Input struct{}

var errNoHdf5 = errors.New("sphio: HDF5 support is not compiled in")

func (Hdf5Input) Load(path string, storage *quant.Storage) (Stats, error) {
	return Stats{}, errNoHdf5
}
