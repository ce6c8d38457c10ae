package post

import (
	"math"
	"sort"

	"github.com/anovak/gosph/quant"
)

// PlotPoint is a 2-D sample used by the statistics and regression
// helpers.
type PlotPoint struct {
	X, Y float64
}

// CorrelationCoefficient computes the Pearson correlation of the
// samples. At least two points are required.
func CorrelationCoefficient(points []PlotPoint) float64 {
	var meanX, meanY float64
	for _, p := range points {
		meanX += p.X
		meanY += p.Y
	}
	meanX /= float64(len(points))
	meanY /= float64(len(points))

	var corr, normX, normY float64
	for _, p := range points {
		corr += (p.X - meanX) * (p.Y - meanY)
		normX += (p.X - meanX) * (p.X - meanX)
		normY += (p.Y - meanY) * (p.Y - meanY)
	}
	// may drift slightly past [-1, 1] through round-off
	return corr / math.Sqrt(normX*normY)
}

// ChiSquareDistribution evaluates the chi-square probability density at
// chiSqr for the given degrees of freedom.
func ChiSquareDistribution(chiSqr, dof float64) float64 {
	return 1 / (math.Pow(2, 0.5*dof) * math.Gamma(0.5*dof)) *
		math.Pow(chiSqr, 0.5*dof-1) * math.Exp(-0.5*chiSqr)
}

// ChiSquareTest sums (measured-expected)^2/expected. A nonzero
// measurement against a zero expectation yields +Inf.
func ChiSquareTest(measured, expected []float64) float64 {
	chiSqr := 0.0
	for i := range measured {
		if expected[i] == 0 {
			if measured[i] == 0 {
				continue
			}
			return math.Inf(1)
		}
		d := measured[i] - expected[i]
		chiSqr += d * d / expected[i]
	}
	return chiSqr
}

// KolmogorovSmirnovDistribution evaluates the asymptotic KS probability
// Q(x) = 2 sum (-1)^(j-1) exp(-2 j^2 x^2).
func KolmogorovSmirnovDistribution(x float64) float64 {
	const eps1 = 1e-3
	const eps2 = 1e-8

	q := 0.0
	prevTerm := 0.0
	for j := 1; j < 100; j++ {
		sign := 1.0
		if j%2 == 0 {
			sign = -1
		}
		term := sign * math.Exp(-2*float64(j*j)*x*x)
		q += term
		if math.Abs(term) <= eps1*prevTerm || math.Abs(term) <= eps2*q {
			return 2 * q
		}
		prevTerm = math.Abs(term)
	}
	return 1
}

// KsResult carries the KS statistic D and the probability that a sample
// at least this extreme arises from the tested distribution.
type KsResult struct {
	D    float64
	Prob float64
}

// makeCdf sorts a copy of the data and pairs it with empirical CDF
// levels stepping by 1/(n-1).
func makeCdf(data []float64) []PlotPoint {
	sorted := append([]float64(nil), data...)
	sort.Float64s(sorted)
	cdf := make([]PlotPoint, len(sorted))
	step := 1 / float64(len(sorted)-1)
	for i, x := range sorted {
		cdf[i] = PlotPoint{X: x, Y: float64(i) * step}
	}
	return cdf
}

func ksProb(sqrtN, d float64) float64 {
	return KolmogorovSmirnovDistribution((sqrtN + 0.12 + 0.11/sqrtN) * d)
}

// KolmogorovSmirnovTest compares the empirical distribution of the data
// against an expected CDF.
func KolmogorovSmirnovTest(
	data []float64, expectedCdf func(float64) float64,
) KsResult {
	cdf := makeCdf(data)

	d := 0.0
	prevY := 0.0
	for _, p := range cdf {
		expectedY := expectedCdf(p.X)
		d = math.Max(d, math.Max(
			math.Abs(p.Y-expectedY), math.Abs(prevY-expectedY)))
		prevY = p.Y
	}
	return KsResult{D: d, Prob: ksProb(math.Sqrt(float64(len(data))), d)}
}

// KolmogorovSmirnovTest2 compares the empirical distributions of two
// samples.
func KolmogorovSmirnovTest2(data1, data2 []float64) KsResult {
	cdf1 := makeCdf(data1)
	cdf2 := makeCdf(data2)

	d := 0.0
	for i, j := 0, 0; i < len(cdf1) && j < len(cdf2); {
		if cdf1[i].X <= cdf2[j].X {
			i++
		}
		if i < len(cdf1) && cdf1[i].X >= cdf2[j].X {
			j++
		}
		if i < len(cdf1) && j < len(cdf2) {
			d = math.Max(d, math.Abs(cdf1[i].Y-cdf2[j].Y))
		}
	}

	n1, n2 := float64(len(data1)), float64(len(data2))
	sqrtNe := math.Sqrt(n1 * n2 / (n1 + n2))
	return KsResult{D: d, Prob: ksProb(sqrtNe, d)}
}

// KsFunction gives the expected quadrant probabilities around a point,
// ordered (++), (-+), (--), (+-) in (x, y) sign pairs.
type KsFunction func(p PlotPoint) [4]float64

func countQuadrants(origin PlotPoint, data []PlotPoint) [4]float64 {
	var quadrants [4]float64
	for _, p := range data {
		if p.Y > origin.Y {
			if p.X > origin.X {
				quadrants[0]++
			} else {
				quadrants[1]++
			}
		} else {
			if p.X > origin.X {
				quadrants[3]++
			} else {
				quadrants[2]++
			}
		}
	}
	for i := range quadrants {
		quadrants[i] /= float64(len(data))
	}
	return quadrants
}

// KolmogorovSmirnovTest2d runs the two-dimensional one-sample KS test
// of Fasano & Franceschini: the statistic is the largest excess of a
// measured quadrant fraction over its expectation, taken over all
// sample points.
func KolmogorovSmirnovTest2d(data []PlotPoint, expected KsFunction) KsResult {
	d := 0.0
	for _, p := range data {
		measured := countQuadrants(p, data)
		exp := expected(p)
		for i := 0; i < 4; i++ {
			d = math.Max(d, measured[i]-exp[i])
		}
	}

	sqrtN := math.Sqrt(float64(len(data)))
	r := CorrelationCoefficient(data)
	prob := KolmogorovSmirnovDistribution(
		sqrtN * d / (1 + math.Sqrt(1-r*r)*(0.25-0.75/sqrtN)))
	return KsResult{D: d, Prob: prob}
}

// UniformKsFunction gives the quadrant expectations of two independent
// uniform variables over the given ranges.
func UniformKsFunction(rangeX, rangeY quant.Interval) KsFunction {
	return func(p PlotPoint) [4]float64 {
		x := clamp01((p.X - rangeX.Lower()) / rangeX.Size())
		y := clamp01((p.Y - rangeY.Lower()) / rangeY.Size())
		return [4]float64{
			(1 - x) * (1 - y), x * (1 - y), x * y, (1 - x) * y,
		}
	}
}

func clamp01(x float64) float64 {
	return math.Max(0, math.Min(1, x))
}
