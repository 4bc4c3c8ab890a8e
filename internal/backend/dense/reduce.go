package dense

import (
	"github.com/gomlx/exceptions"

	"github.com/fwaris/DiffSharp/internal/tensor"
)

// Sum reduces the whole tensor to a scalar (rank-0) tensor.
func (bk *Backend) Sum(a *tensor.RawTensor) *tensor.RawTensor {
	checkFloat("sum", a)
	out := mustNew(tensor.Shape{}, a.DType(), a.Device())
	switch a.DType() {
	case tensor.Float32:
		var acc float32
		for _, v := range a.AsFloat32() {
			acc += v
		}
		out.AsFloat32()[0] = acc
	case tensor.Float64:
		var acc float64
		for _, v := range a.AsFloat64() {
			acc += v
		}
		out.AsFloat64()[0] = acc
	}
	return out
}

// Mean reduces the whole tensor to its scalar average.
func (bk *Backend) Mean(a *tensor.RawTensor) *tensor.RawTensor {
	if a.NumElements() == 0 {
		exceptions.Panicf("dense: mean: empty tensor of shape %v", a.Shape())
	}
	return bk.DivScalar(bk.Sum(a), float64(a.NumElements()))
}

// ArgMax returns the multi-index of the maximum element. Ties resolve to the
// first occurrence in row-major order.
func (bk *Backend) ArgMax(a *tensor.RawTensor) []int {
	return bk.argExtreme("argmax", a, func(v, best float64) bool { return v > best })
}

// ArgMin returns the multi-index of the minimum element.
func (bk *Backend) ArgMin(a *tensor.RawTensor) []int {
	return bk.argExtreme("argmin", a, func(v, best float64) bool { return v < best })
}

func (bk *Backend) argExtreme(name string, a *tensor.RawTensor, better func(v, best float64) bool) []int {
	checkFloat(name, a)
	if a.NumElements() == 0 {
		exceptions.Panicf("dense: %s: empty tensor of shape %v", name, a.Shape())
	}
	best := a.Float64At(0)
	bestAt := 0
	for i := 1; i < a.NumElements(); i++ {
		if v := a.Float64At(i); better(v, best) {
			best, bestAt = v, i
		}
	}
	return a.Shape().MultiIndex(bestAt)
}
