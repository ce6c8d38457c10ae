package post

import (
	"fmt"
	"math"

	"github.com/anovak/gosph/mat"
)

// LinearRegression fits y = a + b*x by least squares. It fails when the
// x samples carry no spread.
func LinearRegression(points []PlotPoint) (a, b float64, err error) {
	if len(points) < 2 {
		return 0, 0, fmt.Errorf("post: linear fit needs at least 2 points")
	}
	n := float64(len(points))
	var sx, sy, sxx, sxy float64
	for _, p := range points {
		sx += p.X
		sy += p.Y
		sxx += p.X * p.X
		sxy += p.X * p.Y
	}
	denom := n*sxx - sx*sx
	if denom == 0 || !isFinite(denom) {
		return 0, 0, fmt.Errorf("post: linear fit is rank deficient")
	}
	b = (n*sxy - sx*sy) / denom
	a = (sy - b*sx) / n
	return a, b, nil
}

// QuadraticRegression fits y = a + b*x + c*x^2 through the 3x3 normal
// equations. It fails when the system is rank deficient.
func QuadraticRegression(points []PlotPoint) (a, b, c float64, err error) {
	if len(points) < 3 {
		return 0, 0, 0, fmt.Errorf(
			"post: quadratic fit needs at least 3 points")
	}
	var s0, s1, s2, s3, s4 float64
	var t0, t1, t2 float64
	for _, p := range points {
		x2 := p.X * p.X
		s0++
		s1 += p.X
		s2 += x2
		s3 += x2 * p.X
		s4 += x2 * x2
		t0 += p.Y
		t1 += p.X * p.Y
		t2 += x2 * p.Y
	}

	normal := mat.NewMatrix([]float64{
		s0, s1, s2,
		s1, s2, s3,
		s2, s3, s4,
	}, 3, 3)
	luf := normal.LU()
	det := luf.Determinant()
	// the LU patches exact zero pivots, so compare against the scale
	// of the diagonal instead of zero
	if !isFinite(det) || math.Abs(det) < 1e-12*s0*s2*s4 {
		return 0, 0, 0, fmt.Errorf("post: quadratic fit is rank deficient")
	}
	coeffs := make([]float64, 3)
	luf.SolveVector([]float64{t0, t1, t2}, coeffs)
	return coeffs[0], coeffs[1], coeffs[2], nil
}

func isFinite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}
