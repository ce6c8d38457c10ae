package geom

// SymTensor is a symmetric 3x3 tensor stored as its six independent
// components in the order xx, yy, zz, xy, xz, yz.
type SymTensor [6]float64

// Component indices of a SymTensor.
const (
	XX = iota
	YY
	ZZ
	XY
	XZ
	YZ
)

func NullSymTensor() SymTensor {
	return SymTensor{}
}

func IdentitySymTensor() SymTensor {
	return SymTensor{1, 1, 1, 0, 0, 0}
}

func (t SymTensor) At(i, j int) float64 {
	if i > j {
		i, j = j, i
	}
	switch {
	case i == j:
		return t[i]
	case i == 0 && j == 1:
		return t[XY]
	case i == 0 && j == 2:
		return t[XZ]
	default:
		return t[YZ]
	}
}

func (t SymTensor) Plus(u SymTensor) SymTensor {
	for i := range t {
		t[i] += u[i]
	}
	return t
}

func (t SymTensor) Scaled(s float64) SymTensor {
	for i := range t {
		t[i] *= s
	}
	return t
}

// Apply computes t * v.
func (t SymTensor) Apply(v Vec) Vec {
	return Vec{
		t[XX]*v[X] + t[XY]*v[Y] + t[XZ]*v[Z],
		t[XY]*v[X] + t[YY]*v[Y] + t[YZ]*v[Z],
		t[XZ]*v[X] + t[YZ]*v[Y] + t[ZZ]*v[Z],
		0,
	}
}

func (t SymTensor) Trace() float64 {
	return t[XX] + t[YY] + t[ZZ]
}

// Matrix returns the tensor as an affine matrix with zero translation.
func (t SymTensor) Matrix() AffineMatrix {
	return AffineFromRows(
		Vec{t[XX], t[XY], t[XZ], 0},
		Vec{t[XY], t[YY], t[YZ], 0},
		Vec{t[XZ], t[YZ], t[ZZ], 0},
	)
}

// Inverse inverts the tensor; it panics when singular.
func (t SymTensor) Inverse() SymTensor {
	inv := t.Matrix().Inverse()
	return SymTensor{
		inv.At(0, 0), inv.At(1, 1), inv.At(2, 2),
		inv.At(0, 1), inv.At(0, 2), inv.At(1, 2),
	}
}

// SymOuter is the symmetrized outer product (a b^T + b a^T) / 2.
func SymOuter(a, b Vec) SymTensor {
	return SymTensor{
		a[X] * b[X],
		a[Y] * b[Y],
		a[Z] * b[Z],
		0.5 * (a[X]*b[Y] + a[Y]*b[X]),
		0.5 * (a[X]*b[Z] + a[Z]*b[X]),
		0.5 * (a[Y]*b[Z] + a[Z]*b[Y]),
	}
}

// TracelessTensor is a symmetric traceless 3x3 tensor stored as the five
// independent components xx, yy, xy, xz, yz; zz is implied.
type TracelessTensor [5]float64

// Component indices of a TracelessTensor.
const (
	TXX = iota
	TYY
	TXY
	TXZ
	TYZ
)

func (t TracelessTensor) At(i, j int) float64 {
	if i > j {
		i, j = j, i
	}
	switch {
	case i == 0 && j == 0:
		return t[TXX]
	case i == 1 && j == 1:
		return t[TYY]
	case i == 2 && j == 2:
		return -t[TXX] - t[TYY]
	case i == 0 && j == 1:
		return t[TXY]
	case i == 0 && j == 2:
		return t[TXZ]
	default:
		return t[TYZ]
	}
}

func (t TracelessTensor) Plus(u TracelessTensor) TracelessTensor {
	for i := range t {
		t[i] += u[i]
	}
	return t
}

func (t TracelessTensor) Scaled(s float64) TracelessTensor {
	for i := range t {
		t[i] *= s
	}
	return t
}

// Tensor is a general 3x3 tensor in row-major order.
type Tensor [9]float64

func (t Tensor) At(i, j int) float64 {
	return t[3*i+j]
}

func (t *Tensor) Set(i, j int, x float64) {
	t[3*i+j] = x
}

func (t Tensor) Apply(v Vec) Vec {
	var out Vec
	for i := 0; i < 3; i++ {
		out[i] = t[3*i]*v[X] + t[3*i+1]*v[Y] + t[3*i+2]*v[Z]
	}
	return out
}
