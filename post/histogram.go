package post

import (
	"fmt"
	"math"
	"sort"

	"github.com/anovak/gosph/geom"
	"github.com/anovak/gosph/quant"
	"github.com/anovak/gosph/sched"
	"github.com/anovak/gosph/units"
)

// HistogramSource selects what a histogram value stream is built from.
type HistogramSource int

const (
	// SourceParticles treats every particle as one body.
	SourceParticles HistogramSource = iota
	// SourceComponents first groups particles into components and
	// emits one value per component.
	SourceComponents
)

// HistogramId selects the measured value. Non-negative values are
// interpreted as a quant.QuantityId of a scalar quantity; the derived
// measures are negative to avoid clashes.
type HistogramId int

const (
	// HistogramRadii uses smoothing lengths as body radii, or
	// equivalent volume radii for components.
	HistogramRadii HistogramId = -1
	// HistogramEquivalentMassRadii converts masses to sphere radii at
	// the reference density.
	HistogramEquivalentMassRadii HistogramId = -2
	// HistogramVelocities uses speeds.
	HistogramVelocities HistogramId = -3
	// HistogramRotationalPeriod uses spin periods in hours; spinless
	// particles are dropped.
	HistogramRotationalPeriod HistogramId = -4
	// HistogramRotationalFrequency uses spin rates in revolutions per
	// day; spinless particles are dropped.
	HistogramRotationalFrequency HistogramId = -5
	// HistogramRotationalAxis uses the tilt of the spin axis from the
	// z axis; spinless particles are dropped.
	HistogramRotationalAxis HistogramId = -6
)

// QuantityHistogram makes the id selecting a scalar quantity directly.
func QuantityHistogram(id quant.QuantityId) HistogramId {
	return HistogramId(id)
}

// HistogramPoint is one histogram entry: a value and the number of
// bodies in its bin (differential) or at least as large (cumulative).
type HistogramPoint struct {
	Value float64
	Count int
}

// HistogramParams configures histogram construction. Use
// DefaultHistogramParams and override what differs.
type HistogramParams struct {
	Source HistogramSource
	Id     HistogramId

	// Range limits the accepted values; an empty interval selects the
	// range from the data.
	Range quant.Interval

	// BinCnt is the bin count of differential histograms; zero
	// derives it from the sample count.
	BinCnt int

	// CenterBins reports bin centers instead of lower edges.
	CenterBins bool

	// ComponentRadius is the connectivity radius multiplier when the
	// source is components.
	ComponentRadius float64

	// ReferenceDensity converts masses to equivalent radii.
	ReferenceDensity float64

	// MassCutoff drops bodies lighter than the cutoff when positive.
	MassCutoff float64

	// VelocityCutoff drops bodies faster than the cutoff when
	// positive, filtering out escaping debris.
	VelocityCutoff float64

	// Validator filters values before they are counted; nil accepts
	// everything.
	Validator func(value float64) bool
}

func DefaultHistogramParams() HistogramParams {
	return HistogramParams{
		Id:               HistogramRadii,
		Range:            quant.EmptyInterval(),
		ComponentRadius:  2,
		ReferenceDensity: 2700,
	}
}

func (p *HistogramParams) validate(v float64) bool {
	return p.Validator == nil || p.Validator(v)
}

// bodyFilter reports whether body i passes the mass and velocity
// cutoffs.
func bodyFilter(
	params *HistogramParams, masses []float64, velocities []geom.Vec, i int,
) bool {
	if params.MassCutoff > 0 && masses != nil && masses[i] < params.MassCutoff {
		return false
	}
	if params.VelocityCutoff > 0 && velocities != nil &&
		velocities[i].Spatial().Length() > params.VelocityCutoff {
		return false
	}
	return true
}

func histogramValues(
	s sched.Scheduler, storage *quant.Storage, params *HistogramParams,
) ([]float64, error) {
	var masses []float64
	if storage.Has(quant.Mass) {
		masses = storage.Scalars(quant.Mass)
	}
	var velocities []geom.Vec
	if storage.Has(quant.Position) &&
		storage.Quantity(quant.Position).Order() >= quant.OrderFirst {
		velocities = storage.VectorsDt(quant.Position)
	}

	if params.Source == SourceComponents {
		return componentValues(s, storage, params, masses, velocities)
	}

	n := storage.ParticleCnt()
	var values []float64
	push := func(i int, v float64) {
		if bodyFilter(params, masses, velocities, i) && params.validate(v) {
			values = append(values, v)
		}
	}

	switch params.Id {
	case HistogramRadii:
		positions := storage.Vectors(quant.Position)
		for i := 0; i < n; i++ {
			push(i, positions[i][geom.H])
		}
	case HistogramEquivalentMassRadii:
		if masses == nil {
			return nil, fmt.Errorf("post: histogram needs masses")
		}
		for i := 0; i < n; i++ {
			push(i, math.Cbrt(3*masses[i]/(4*math.Pi*params.ReferenceDensity)))
		}
	case HistogramVelocities:
		if velocities == nil {
			return nil, fmt.Errorf("post: histogram needs velocities")
		}
		for i := 0; i < n; i++ {
			push(i, velocities[i].Spatial().Length())
		}
	case HistogramRotationalPeriod, HistogramRotationalFrequency,
		HistogramRotationalAxis:
		if !storage.Has(quant.AngularFrequency) {
			return nil, fmt.Errorf("post: histogram needs spin rates")
		}
		spins := storage.Vectors(quant.AngularFrequency)
		for i := 0; i < n; i++ {
			w := spins[i].Spatial()
			wLen := w.Length()
			if wLen == 0 {
				continue
			}
			switch params.Id {
			case HistogramRotationalPeriod:
				push(i, 2*math.Pi/(3600*wLen))
			case HistogramRotationalFrequency:
				push(i, wLen*units.Day/(2*math.Pi))
			default:
				push(i, math.Acos(math.Max(-1, math.Min(1, w[geom.Z]/wLen))))
			}
		}
	default:
		id := quant.QuantityId(params.Id)
		if params.Id < 0 || !storage.Has(id) {
			return nil, fmt.Errorf("post: no quantity for histogram id %d",
				int(params.Id))
		}
		scalars := storage.Scalars(id)
		for i := 0; i < n; i++ {
			push(i, scalars[i])
		}
	}
	return values, nil
}

// componentValues groups the storage into components and reduces each
// one to a single value.
func componentValues(
	s sched.Scheduler, storage *quant.Storage, params *HistogramParams,
	masses []float64, velocities []geom.Vec,
) ([]float64, error) {
	comp, err := FindComponents(s, storage, params.ComponentRadius, 0)
	if err != nil {
		return nil, err
	}

	switch params.Id {
	case HistogramRadii:
		// Equivalent radii from summed particle volumes.
		if masses == nil || !storage.Has(quant.Density) {
			return nil, fmt.Errorf(
				"post: component radii need masses and densities")
		}
		densities := storage.Scalars(quant.Density)
		volumes := make([]float64, comp.Cnt)
		compMass := make([]float64, comp.Cnt)
		for i, c := range comp.Labels {
			volumes[c] += masses[i] / densities[i]
			compMass[c] += masses[i]
		}
		var values []float64
		for c := 0; c < comp.Cnt; c++ {
			if params.MassCutoff > 0 && compMass[c] < params.MassCutoff {
				continue
			}
			v := math.Cbrt(3 * volumes[c] / (4 * math.Pi))
			if params.validate(v) {
				values = append(values, v)
			}
		}
		return values, nil
	case HistogramVelocities:
		if masses == nil || velocities == nil {
			return nil, fmt.Errorf(
				"post: component velocities need masses and velocities")
		}
		sums := make([]geom.Vec, comp.Cnt)
		weights := make([]float64, comp.Cnt)
		for i, c := range comp.Labels {
			sums[c] = sums[c].Plus(velocities[i].Spatial().Scaled(masses[i]))
			weights[c] += masses[i]
		}
		var values []float64
		for c := 0; c < comp.Cnt; c++ {
			if params.MassCutoff > 0 && weights[c] < params.MassCutoff {
				continue
			}
			v := sums[c].Scaled(1 / weights[c]).Length()
			if params.VelocityCutoff > 0 && v > params.VelocityCutoff {
				continue
			}
			if params.validate(v) {
				values = append(values, v)
			}
		}
		return values, nil
	}
	return nil, fmt.Errorf("post: histogram id %d has no component variant",
		int(params.Id))
}

// CumulativeHistogram emits (value, count of bodies with value >= x)
// pairs in decreasing value order, one pair per distinct value.
func CumulativeHistogram(
	s sched.Scheduler, storage *quant.Storage, params HistogramParams,
) ([]HistogramPoint, error) {
	values, err := histogramValues(s, storage, &params)
	if err != nil {
		return nil, err
	}
	if len(values) == 0 {
		return nil, fmt.Errorf("post: no histogram samples")
	}
	sort.Float64s(values)

	valueRange := params.Range
	if valueRange.Empty() {
		for _, v := range values {
			valueRange = valueRange.Extend(v)
		}
	}

	var hist []HistogramPoint
	count := 1
	lastV := math.Inf(1)
	for i := len(values) - 1; i >= 0; i-- {
		v := values[i]
		if v < lastV {
			if valueRange.Contains(v) {
				hist = append(hist, HistogramPoint{Value: v, Count: count})
			}
			lastV = v
		}
		count++
	}
	if len(hist) == 0 {
		return nil, fmt.Errorf("post: all histogram samples filtered out")
	}
	return hist, nil
}

// histogramRangeEps pads an automatic range so extreme samples do not
// fall off the last bin through round-off.
const histogramRangeEps = 1e-6

// DifferentialHistogram bins the values and emits one point per bin.
// Out-of-range values are dropped.
func DifferentialHistogram(
	s sched.Scheduler, storage *quant.Storage, params HistogramParams,
) ([]HistogramPoint, error) {
	values, err := histogramValues(s, storage, &params)
	if err != nil {
		return nil, err
	}
	if len(values) == 0 {
		return nil, fmt.Errorf("post: no histogram samples")
	}

	valueRange := params.Range
	if valueRange.Empty() {
		for _, v := range values {
			valueRange = valueRange.Extend(v)
		}
		pad := histogramRangeEps * valueRange.Size()
		valueRange = quant.NewInterval(
			valueRange.Lower()-pad, valueRange.Upper()+pad)
	}

	binCnt := params.BinCnt
	if binCnt == 0 {
		binCnt = int(math.Sqrt(float64(len(values))) / 2)
		if binCnt < 1 {
			binCnt = 1
		}
	}

	size := valueRange.Size()
	singular := size == 0

	// Per-thread bins merged after the parallel pass.
	local := sched.NewThreadLocal(s, func() []int {
		return make([]int, binCnt)
	})
	s.ForEach(0, len(values), func(thread, i int) {
		v := values[i]
		bins := *local.Local(thread)
		if singular {
			bins[0]++
			return
		}
		idx := float64(binCnt) * (v - valueRange.Lower()) / size
		if idx >= 0 && idx < float64(binCnt) {
			bins[int(idx)]++
		}
	})

	hist := make([]HistogramPoint, binCnt)
	offset := 0.0
	if params.CenterBins {
		offset = 0.5
	}
	for i := 0; i < binCnt; i++ {
		hist[i].Value = valueRange.Lower() +
			(float64(i)+offset)*size/float64(binCnt)
		for _, bins := range local.Values() {
			hist[i].Count += bins[i]
		}
	}
	return hist, nil
}
