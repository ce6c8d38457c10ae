// Package mat solves the small dense linear systems arising from
// least-squares normal equations, by LU decomposition with partial
// pivoting.
package mat

import (
	"math"
)

type Matrix struct {
	Vals          []float64
	Width, Height int
}

func NewMatrix(vals []float64, width, height int) *Matrix {
	if width <= 0 {
		panic("width must be positive.")
	} else if height <= 0 {
		panic("height must be positive.")
	} else if width*height != len(vals) {
		panic("height * width must equal len(vals).")
	}

	return &Matrix{Vals: vals, Width: width, Height: height}
}

// LUFactors holds the packed decomposition P*M = L*U of a square matrix,
// with the row permutation and its sign kept for the determinant.
type LUFactors struct {
	lu    []float64
	n     int
	pivot []int
	sign  float64
}

// LU factors m with implicitly scaled partial pivoting. It panics if m
// has a zero row or is non-square; a zero pivot met later is patched to
// a tiny value, so near-singular systems solve to garbage rather than
// dividing by zero. Callers gate on Determinant.
func (m *Matrix) LU() *LUFactors {
	if m.Width != m.Height {
		panic("m is non-square.")
	}

	n := m.Width
	luf := &LUFactors{
		lu:    make([]float64, n*n),
		n:     n,
		pivot: make([]int, n),
		sign:  1,
	}
	lu := luf.lu
	copy(lu, m.Vals)

	scale := make([]float64, n)
	for i := 0; i < n; i++ {
		iOffset := i * n
		max := 0.0
		for j := 0; j < n; j++ {
			if tmp := math.Abs(lu[iOffset+j]); tmp > max {
				max = tmp
			}
		}
		if max == 0 {
			panic("m is singular")
		}
		scale[i] = 1 / max
	}

	for k := 0; k < n; k++ {
		max, maxi := 0.0, 0
		for i := k; i < n; i++ {
			if tmp := scale[i] * math.Abs(lu[i*n+k]); tmp > max {
				max, maxi = tmp, i
			}
		}

		if k != maxi {
			kOffset, maxiOffset := n*k, n*maxi
			for j := 0; j < n; j++ {
				idx1, idx2 := kOffset+j, maxiOffset+j
				lu[idx1], lu[idx2] = lu[idx2], lu[idx1]
			}
			luf.sign = -luf.sign
			scale[maxi] = scale[k]
		}
		luf.pivot[k] = maxi

		if lu[n*k+k] == 0 {
			lu[n*k+k] = 1e-40
		}

		kOffset := k * n
		for i := k + 1; i < n; i++ {
			iOffset := i * n
			lu[iOffset+k] /= lu[kOffset+k]
			tmp := lu[iOffset+k]
			for j := k + 1; j < n; j++ {
				lu[iOffset+j] -= tmp * lu[kOffset+j]
			}
		}
	}
	return luf
}

// SolveVector solves M * xs = bs for xs.
//
// bs and xs may point to the same physical memory.
func (luf *LUFactors) SolveVector(bs, xs []float64) {
	n := luf.n
	if n != len(bs) {
		panic("len(bs) != luf.n")
	} else if n != len(xs) {
		panic("len(xs) != luf.n")
	}

	lu := luf.lu
	ys := xs
	copy(ys, bs)

	// Solve L * y = b, unscrambling the pivot permutation as we go and
	// skipping the leading zeros of b.
	nzIdx := 0
	for i := 0; i < n; i++ {
		piv := luf.pivot[i]
		sum := ys[piv]
		ys[piv] = ys[i]

		if nzIdx != 0 {
			iOffset := i * n
			for j := nzIdx - 1; j < i; j++ {
				sum -= lu[iOffset+j] * ys[j]
			}
		} else if sum != 0 {
			nzIdx = i + 1
		}

		ys[i] = sum
	}

	// Solve U * x = y.
	for i := n - 1; i >= 0; i-- {
		iOffset := n * i
		sum := ys[i]
		for j := i + 1; j < n; j++ {
			sum -= lu[iOffset+j] * xs[j]
		}
		xs[i] = sum / lu[iOffset+i]
	}
}

// Determinant of the factored matrix: the pivot sign times the product
// of the diagonal of U.
func (luf *LUFactors) Determinant() float64 {
	d := luf.sign
	lu := luf.lu
	n := luf.n

	for i := 0; i < n; i++ {
		d *= lu[i*n+i]
	}
	return d
}
