package dense

import (
	"math"

	"github.com/gomlx/exceptions"

	"github.com/fwaris/DiffSharp/internal/tensor"
)

// poolOutDims derives the pooled spatial extents. Floor rounding by default;
// ceil mode rounds the window count up so trailing elements still
// contribute.
func poolOutDims(name string, s tensor.Shape, kernel, stride, padding [2]int, ceilMode bool) (ho, wo int) {
	if len(s) != 4 {
		exceptions.Panicf("dense: %s: input must be 4-D (batch, channels, h, w), got %v", name, s)
	}
	for i := 0; i < 2; i++ {
		if kernel[i] < 1 {
			exceptions.Panicf("dense: %s: kernel size must be >= 1, got %d", name, kernel[i])
		}
		if stride[i] < 1 {
			exceptions.Panicf("dense: %s: stride must be >= 1, got %d", name, stride[i])
		}
		if padding[i] < 0 {
			exceptions.Panicf("dense: %s: padding must be >= 0, got %d", name, padding[i])
		}
		if padding[i] > kernel[i]/2 {
			exceptions.Panicf("dense: %s: padding %d exceeds half the kernel size %d", name, padding[i], kernel[i])
		}
	}
	span := func(in, k, st, p int) int {
		v := in + 2*p - k
		if v < 0 {
			exceptions.Panicf("dense: %s: kernel %v larger than padded input %v", name, kernel, s)
		}
		if ceilMode {
			v += st - 1
		}
		return v/st + 1
	}
	return span(s[2], kernel[0], stride[0], padding[0]), span(s[3], kernel[1], stride[1], padding[1])
}

// AvgPool2D averages each pooling window. With includePad, the divisor is
// the full kernel area even where the window overlaps padding; otherwise
// only in-range positions count.
func (bk *Backend) AvgPool2D(a *tensor.RawTensor, kernel, stride, padding [2]int, ceilMode, includePad bool) *tensor.RawTensor {
	checkFloat("avgpool2d", a)
	s := a.Shape()
	ho, wo := poolOutDims("avgpool2d", s, kernel, stride, padding, ceilMode)
	n, c, hi, wi := s[0], s[1], s[2], s[3]
	out := mustNew(tensor.Shape{n, c, ho, wo}, a.DType(), a.Device())
	for b := 0; b < n; b++ {
		for ch := 0; ch < c; ch++ {
			for oy := 0; oy < ho; oy++ {
				for ox := 0; ox < wo; ox++ {
					var acc float64
					count := 0
					for ky := 0; ky < kernel[0]; ky++ {
						iy := oy*stride[0] + ky - padding[0]
						if iy < 0 || iy >= hi {
							continue
						}
						for kx := 0; kx < kernel[1]; kx++ {
							ix := ox*stride[1] + kx - padding[1]
							if ix < 0 || ix >= wi {
								continue
							}
							acc += a.Float64At(((b*c+ch)*hi+iy)*wi + ix)
							count++
						}
					}
					div := float64(kernel[0] * kernel[1])
					if !includePad {
						div = float64(count)
					}
					out.SetFloat64At(((b*c+ch)*ho+oy)*wo+ox, acc/div)
				}
			}
		}
	}
	return out
}

// AvgPool2DBackward is the scatter-equally adjoint of AvgPool2D: every
// output adjoint is distributed over the input positions of its window,
// scaled by the same divisor the forward pass used, so the adjoint mass per
// window is conserved. Running this kernel forward is itself the reverse of
// AvgPool2D, and AvgPool2D is its reverse.
func (bk *Backend) AvgPool2DBackward(grad *tensor.RawTensor, inputShape tensor.Shape, kernel, stride, padding [2]int, ceilMode, includePad bool) *tensor.RawTensor {
	checkFloat("avgpool2d_backward", grad)
	ho, wo := poolOutDims("avgpool2d_backward", inputShape, kernel, stride, padding, ceilMode)
	gs := grad.Shape()
	if len(gs) != 4 || gs[2] != ho || gs[3] != wo || gs[0] != inputShape[0] || gs[1] != inputShape[1] {
		exceptions.Panicf("dense: avgpool2d_backward: adjoint shape %v does not match pooled shape [%d %d %d %d]",
			gs, inputShape[0], inputShape[1], ho, wo)
	}
	n, c, hi, wi := inputShape[0], inputShape[1], inputShape[2], inputShape[3]
	out := mustNew(inputShape, grad.DType(), grad.Device())
	for b := 0; b < n; b++ {
		for ch := 0; ch < c; ch++ {
			for oy := 0; oy < ho; oy++ {
				for ox := 0; ox < wo; ox++ {
					g := grad.Float64At(((b*c+ch)*ho+oy)*wo + ox)
					count := 0
					if !includePad {
						for ky := 0; ky < kernel[0]; ky++ {
							iy := oy*stride[0] + ky - padding[0]
							if iy < 0 || iy >= hi {
								continue
							}
							for kx := 0; kx < kernel[1]; kx++ {
								ix := ox*stride[1] + kx - padding[1]
								if ix >= 0 && ix < wi {
									count++
								}
							}
						}
					}
					div := float64(kernel[0] * kernel[1])
					if !includePad {
						div = float64(count)
					}
					for ky := 0; ky < kernel[0]; ky++ {
						iy := oy*stride[0] + ky - padding[0]
						if iy < 0 || iy >= hi {
							continue
						}
						for kx := 0; kx < kernel[1]; kx++ {
							ix := ox*stride[1] + kx - padding[1]
							if ix < 0 || ix >= wi {
								continue
							}
							at := ((b*c+ch)*hi+iy)*wi + ix
							out.SetFloat64At(at, out.Float64At(at)+g/div)
						}
					}
				}
			}
		}
	}
	return out
}

// MaxPool2D takes the maximum of each pooling window. Padding positions are
// treated as -inf and never win.
func (bk *Backend) MaxPool2D(a *tensor.RawTensor, kernel, stride, padding [2]int) *tensor.RawTensor {
	checkFloat("maxpool2d", a)
	s := a.Shape()
	ho, wo := poolOutDims("maxpool2d", s, kernel, stride, padding, false)
	n, c := s[0], s[1]
	out := mustNew(tensor.Shape{n, c, ho, wo}, a.DType(), a.Device())
	for b := 0; b < n; b++ {
		for ch := 0; ch < c; ch++ {
			for oy := 0; oy < ho; oy++ {
				for ox := 0; ox < wo; ox++ {
					best, _ := windowMax(a, b, ch, oy, ox, kernel, stride, padding)
					out.SetFloat64At(((b*c+ch)*ho+oy)*wo+ox, best)
				}
			}
		}
	}
	return out
}

// MaxPool2DBackward routes each output adjoint to the input position that
// held the window maximum. The argmax is recomputed from the input primal
// so the operation carries no state between passes.
func (bk *Backend) MaxPool2DBackward(a, grad *tensor.RawTensor, kernel, stride, padding [2]int) *tensor.RawTensor {
	checkFloat("maxpool2d_backward", a)
	s := a.Shape()
	ho, wo := poolOutDims("maxpool2d_backward", s, kernel, stride, padding, false)
	gs := grad.Shape()
	if len(gs) != 4 || gs[2] != ho || gs[3] != wo {
		exceptions.Panicf("dense: maxpool2d_backward: adjoint shape %v does not match pooled shape", gs)
	}
	n, c := s[0], s[1]
	out := mustNew(s, a.DType(), a.Device())
	for b := 0; b < n; b++ {
		for ch := 0; ch < c; ch++ {
			for oy := 0; oy < ho; oy++ {
				for ox := 0; ox < wo; ox++ {
					_, at := windowMax(a, b, ch, oy, ox, kernel, stride, padding)
					g := grad.Float64At(((b*c+ch)*ho+oy)*wo + ox)
					out.SetFloat64At(at, out.Float64At(at)+g)
				}
			}
		}
	}
	return out
}

// MaxPool2DTangent gathers the tangent at each window's argmax of the
// primal, the forward-mode counterpart of MaxPool2DBackward.
func (bk *Backend) MaxPool2DTangent(a, tangent *tensor.RawTensor, kernel, stride, padding [2]int) *tensor.RawTensor {
	checkSameShape("maxpool2d_tangent", a, tangent)
	s := a.Shape()
	ho, wo := poolOutDims("maxpool2d_tangent", s, kernel, stride, padding, false)
	n, c := s[0], s[1]
	out := mustNew(tensor.Shape{n, c, ho, wo}, a.DType(), a.Device())
	for b := 0; b < n; b++ {
		for ch := 0; ch < c; ch++ {
			for oy := 0; oy < ho; oy++ {
				for ox := 0; ox < wo; ox++ {
					_, at := windowMax(a, b, ch, oy, ox, kernel, stride, padding)
					out.SetFloat64At(((b*c+ch)*ho+oy)*wo+ox, tangent.Float64At(at))
				}
			}
		}
	}
	return out
}

// windowMax scans one pooling window and returns the maximum value and its
// flat input offset. Ties resolve to the first position in row-major order.
func windowMax(a *tensor.RawTensor, b, ch, oy, ox int, kernel, stride, padding [2]int) (float64, int) {
	s := a.Shape()
	c, hi, wi := s[1], s[2], s[3]
	best := math.Inf(-1)
	bestAt := -1
	for ky := 0; ky < kernel[0]; ky++ {
		iy := oy*stride[0] + ky - padding[0]
		if iy < 0 || iy >= hi {
			continue
		}
		for kx := 0; kx < kernel[1]; kx++ {
			ix := ox*stride[1] + kx - padding[1]
			if ix < 0 || ix >= wi {
				continue
			}
			at := ((b*c+ch)*hi+iy)*wi + ix
			if v := a.Float64At(at); v > best {
				best, bestAt = v, at
			}
		}
	}
	return best, bestAt
}
