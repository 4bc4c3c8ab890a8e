package dense

import (
	"github.com/gomlx/exceptions"

	"github.com/fwaris/DiffSharp/internal/tensor"
)

// MatMul contracts two 2-D operands with the classic triple loop:
// (M, K) @ (K, N) -> (M, N). Inner dimensions must match.
func (bk *Backend) MatMul(a, b *tensor.RawTensor) *tensor.RawTensor {
	as, bs := a.Shape(), b.Shape()
	if len(as) != 2 || len(bs) != 2 {
		exceptions.Panicf("dense: matmul: operands must be 2-D, got %v and %v", as, bs)
	}
	if as[1] != bs[0] {
		exceptions.Panicf("dense: matmul: inner dimensions do not match: %v @ %v", as, bs)
	}
	checkFloat("matmul", a)
	checkSameDType("matmul", a, b)

	m, k, n := as[0], as[1], bs[1]
	out := mustNew(tensor.Shape{m, n}, a.DType(), a.Device())
	switch a.DType() {
	case tensor.Float32:
		matmulLoop(out.AsFloat32(), a.AsFloat32(), b.AsFloat32(), m, k, n)
	case tensor.Float64:
		matmulLoop(out.AsFloat64(), a.AsFloat64(), b.AsFloat64(), m, k, n)
	}
	return out
}

func matmulLoop[T floatT](out, a, b []T, m, k, n int) {
	for i := 0; i < m; i++ {
		for j := 0; j < n; j++ {
			var acc T
			for p := 0; p < k; p++ {
				acc += a[i*k+p] * b[p*n+j]
			}
			out[i*n+j] = acc
		}
	}
}

// checkSameDType checks dtype and device agreement without requiring
// equal shapes, for kernels with their own shape rules.
func checkSameDType(name string, a, b *tensor.RawTensor) {
	if a.DType() != b.DType() {
		exceptions.Panicf("dense: %s: mismatched dtypes %s vs %s", name, a.DType(), b.DType())
	}
	if a.Device() != b.Device() {
		exceptions.Panicf("dense: %s: mismatched devices %s vs %s", name, a.Device(), b.Device())
	}
}
