package dense

import (
	"math"

	"github.com/fwaris/DiffSharp/internal/tensor"
)

// map2 applies f pairwise over two equal-shape buffers into a fresh tensor.
func map2[T floatT](out, a, b []T, f func(x, y T) T) {
	for i := range out {
		out[i] = f(a[i], b[i])
	}
}

// map1 applies f over one buffer into a fresh tensor.
func map1[T floatT](out, a []T, f func(x T) T) {
	for i := range out {
		out[i] = f(a[i])
	}
}

// binary dispatches an element-wise binary kernel by dtype.
func (bk *Backend) binary(name string, a, b *tensor.RawTensor, f32 func(x, y float32) float32, f64 func(x, y float64) float64) *tensor.RawTensor {
	checkSameShape(name, a, b)
	checkFloat(name, a)
	out := mustNew(a.Shape(), a.DType(), a.Device())
	switch a.DType() {
	case tensor.Float32:
		map2(out.AsFloat32(), a.AsFloat32(), b.AsFloat32(), f32)
	case tensor.Float64:
		map2(out.AsFloat64(), a.AsFloat64(), b.AsFloat64(), f64)
	}
	return out
}

// unary dispatches an element-wise unary kernel by dtype.
func (bk *Backend) unary(name string, a *tensor.RawTensor, f64 func(x float64) float64) *tensor.RawTensor {
	checkFloat(name, a)
	out := mustNew(a.Shape(), a.DType(), a.Device())
	switch a.DType() {
	case tensor.Float32:
		map1(out.AsFloat32(), a.AsFloat32(), func(x float32) float32 { return float32(f64(float64(x))) })
	case tensor.Float64:
		map1(out.AsFloat64(), a.AsFloat64(), f64)
	}
	return out
}

// scalar dispatches a broadcast-scalar kernel by dtype.
func (bk *Backend) scalar(name string, a *tensor.RawTensor, s float64, f64 func(x, y float64) float64) *tensor.RawTensor {
	checkFloat(name, a)
	out := mustNew(a.Shape(), a.DType(), a.Device())
	switch a.DType() {
	case tensor.Float32:
		s32 := float32(s)
		map1(out.AsFloat32(), a.AsFloat32(), func(x float32) float32 { return float32(f64(float64(x), float64(s32))) })
	case tensor.Float64:
		map1(out.AsFloat64(), a.AsFloat64(), func(x float64) float64 { return f64(x, s) })
	}
	return out
}

// Add performs element-wise addition.
func (bk *Backend) Add(a, b *tensor.RawTensor) *tensor.RawTensor {
	return bk.binary("add", a, b,
		func(x, y float32) float32 { return x + y },
		func(x, y float64) float64 { return x + y })
}

// Sub performs element-wise subtraction.
func (bk *Backend) Sub(a, b *tensor.RawTensor) *tensor.RawTensor {
	return bk.binary("sub", a, b,
		func(x, y float32) float32 { return x - y },
		func(x, y float64) float64 { return x - y })
}

// Mul performs element-wise multiplication.
func (bk *Backend) Mul(a, b *tensor.RawTensor) *tensor.RawTensor {
	return bk.binary("mul", a, b,
		func(x, y float32) float32 { return x * y },
		func(x, y float64) float64 { return x * y })
}

// Div performs element-wise division.
func (bk *Backend) Div(a, b *tensor.RawTensor) *tensor.RawTensor {
	return bk.binary("div", a, b,
		func(x, y float32) float32 { return x / y },
		func(x, y float64) float64 { return x / y })
}

// Pow performs element-wise exponentiation a^b.
func (bk *Backend) Pow(a, b *tensor.RawTensor) *tensor.RawTensor {
	return bk.binary("pow", a, b,
		func(x, y float32) float32 { return float32(math.Pow(float64(x), float64(y))) },
		math.Pow)
}

// AddScalar adds a scalar to every element.
func (bk *Backend) AddScalar(a *tensor.RawTensor, s float64) *tensor.RawTensor {
	return bk.scalar("add_scalar", a, s, func(x, y float64) float64 { return x + y })
}

// SubScalar subtracts a scalar from every element.
func (bk *Backend) SubScalar(a *tensor.RawTensor, s float64) *tensor.RawTensor {
	return bk.scalar("sub_scalar", a, s, func(x, y float64) float64 { return x - y })
}

// MulScalar multiplies every element by a scalar.
func (bk *Backend) MulScalar(a *tensor.RawTensor, s float64) *tensor.RawTensor {
	return bk.scalar("mul_scalar", a, s, func(x, y float64) float64 { return x * y })
}

// DivScalar divides every element by a scalar.
func (bk *Backend) DivScalar(a *tensor.RawTensor, s float64) *tensor.RawTensor {
	return bk.scalar("div_scalar", a, s, func(x, y float64) float64 { return x / y })
}

// PowScalar raises every element to a scalar power.
func (bk *Backend) PowScalar(a *tensor.RawTensor, s float64) *tensor.RawTensor {
	return bk.scalar("pow_scalar", a, s, math.Pow)
}

// Neg negates every element.
func (bk *Backend) Neg(a *tensor.RawTensor) *tensor.RawTensor {
	return bk.unary("neg", a, func(x float64) float64 { return -x })
}

// Abs computes the absolute value of every element.
func (bk *Backend) Abs(a *tensor.RawTensor) *tensor.RawTensor {
	return bk.unary("abs", a, math.Abs)
}

// Sign computes the signum of every element: -1, 0 or 1.
func (bk *Backend) Sign(a *tensor.RawTensor) *tensor.RawTensor {
	return bk.unary("sign", a, func(x float64) float64 {
		switch {
		case x > 0:
			return 1
		case x < 0:
			return -1
		default:
			return 0
		}
	})
}

// Exp computes the exponential of every element.
func (bk *Backend) Exp(a *tensor.RawTensor) *tensor.RawTensor {
	return bk.unary("exp", a, math.Exp)
}

// Log computes the natural logarithm of every element.
func (bk *Backend) Log(a *tensor.RawTensor) *tensor.RawTensor {
	return bk.unary("log", a, math.Log)
}

// Sqrt computes the square root of every element.
func (bk *Backend) Sqrt(a *tensor.RawTensor) *tensor.RawTensor {
	return bk.unary("sqrt", a, math.Sqrt)
}

// Sin computes the sine of every element.
func (bk *Backend) Sin(a *tensor.RawTensor) *tensor.RawTensor {
	return bk.unary("sin", a, math.Sin)
}

// Cos computes the cosine of every element.
func (bk *Backend) Cos(a *tensor.RawTensor) *tensor.RawTensor {
	return bk.unary("cos", a, math.Cos)
}

// Tanh computes the hyperbolic tangent of every element.
func (bk *Backend) Tanh(a *tensor.RawTensor) *tensor.RawTensor {
	return bk.unary("tanh", a, math.Tanh)
}

// compare dispatches a comparison kernel producing a Bool tensor.
func (bk *Backend) compare(name string, a, b *tensor.RawTensor, f func(x, y float64) bool) *tensor.RawTensor {
	checkSameShape(name, a, b)
	checkFloat(name, a)
	out := mustNew(a.Shape(), tensor.Bool, a.Device())
	res := out.AsBool()
	for i := range res {
		res[i] = f(a.Float64At(i), b.Float64At(i))
	}
	return out
}

// Eq compares element-wise for equality.
func (bk *Backend) Eq(a, b *tensor.RawTensor) *tensor.RawTensor {
	return bk.compare("eq", a, b, func(x, y float64) bool { return x == y })
}

// Ne compares element-wise for inequality.
func (bk *Backend) Ne(a, b *tensor.RawTensor) *tensor.RawTensor {
	return bk.compare("ne", a, b, func(x, y float64) bool { return x != y })
}

// Gt compares element-wise a > b.
func (bk *Backend) Gt(a, b *tensor.RawTensor) *tensor.RawTensor {
	return bk.compare("gt", a, b, func(x, y float64) bool { return x > y })
}

// Lt compares element-wise a < b.
func (bk *Backend) Lt(a, b *tensor.RawTensor) *tensor.RawTensor {
	return bk.compare("lt", a, b, func(x, y float64) bool { return x < y })
}

// Ge compares element-wise a >= b.
func (bk *Backend) Ge(a, b *tensor.RawTensor) *tensor.RawTensor {
	return bk.compare("ge", a, b, func(x, y float64) bool { return x >= y })
}

// Le compares element-wise a <= b.
func (bk *Backend) Le(a, b *tensor.RawTensor) *tensor.RawTensor {
	return bk.compare("le", a, b, func(x, y float64) bool { return x <= y })
}
