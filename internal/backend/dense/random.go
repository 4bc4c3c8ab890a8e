package dense

import (
	"github.com/gomlx/exceptions"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/fwaris/DiffSharp/internal/tensor"
)

// Random kernels consume the backend-owned pseudorandom source. The source
// is not synchronized; see the Backend type comment.

// RandomUniform fills a fresh tensor with samples from U(low, high).
func (bk *Backend) RandomUniform(shape tensor.Shape, dtype tensor.DataType, low, high float64) *tensor.RawTensor {
	if !dtype.IsFloat() {
		exceptions.Panicf("dense: random_uniform: unsupported dtype %s", dtype)
	}
	if high <= low {
		exceptions.Panicf("dense: random_uniform: invalid range [%v, %v)", low, high)
	}
	dist := distuv.Uniform{Min: low, Max: high, Src: bk.src}
	out := mustNew(shape, dtype, bk.device)
	for i := 0; i < out.NumElements(); i++ {
		out.SetFloat64At(i, dist.Rand())
	}
	return out
}

// RandomNormal fills a fresh tensor with samples from N(mean, stddev²).
func (bk *Backend) RandomNormal(shape tensor.Shape, dtype tensor.DataType, mean, stddev float64) *tensor.RawTensor {
	if !dtype.IsFloat() {
		exceptions.Panicf("dense: random_normal: unsupported dtype %s", dtype)
	}
	if stddev <= 0 {
		exceptions.Panicf("dense: random_normal: stddev must be > 0, got %v", stddev)
	}
	dist := distuv.Normal{Mu: mean, Sigma: stddev, Src: bk.src}
	out := mustNew(shape, dtype, bk.device)
	for i := 0; i < out.NumElements(); i++ {
		out.SetFloat64At(i, dist.Rand())
	}
	return out
}

// Multinomial draws numSamples category indices per distribution row. A 1-D
// probability tensor of shape (k) yields (numSamples); a 2-D tensor of shape
// (rows, k) yields (rows, numSamples). Results are Int32 indices.
func (bk *Backend) Multinomial(probs *tensor.RawTensor, numSamples int) *tensor.RawTensor {
	checkFloat("multinomial", probs)
	if numSamples < 1 {
		exceptions.Panicf("dense: multinomial: numSamples must be >= 1, got %d", numSamples)
	}
	s := probs.Shape()
	var rows, k int
	switch len(s) {
	case 1:
		rows, k = 1, s[0]
	case 2:
		rows, k = s[0], s[1]
	default:
		exceptions.Panicf("dense: multinomial: probability tensor must be 1-D or 2-D, got %v", s)
	}

	outShape := tensor.Shape{rows, numSamples}
	if len(s) == 1 {
		outShape = tensor.Shape{numSamples}
	}
	out := mustNew(outShape, tensor.Int32, bk.device)
	res := out.AsInt32()

	weights := make([]float64, k)
	for r := 0; r < rows; r++ {
		for j := 0; j < k; j++ {
			w := probs.Float64At(r*k + j)
			if w < 0 {
				exceptions.Panicf("dense: multinomial: negative probability %v at row %d, category %d", w, r, j)
			}
			weights[j] = w
		}
		dist := distuv.NewCategorical(weights, bk.src)
		for i := 0; i < numSamples; i++ {
			res[r*numSamples+i] = int32(dist.Rand())
		}
	}
	return out
}
