package dense

import (
	"github.com/gomlx/exceptions"

	"github.com/fwaris/DiffSharp/internal/tensor"
)

// Convolution kernels compute cross-correlation: the kernel slides over the
// input without being spatially flipped. Padding is materialized by copying
// the input into the interior of a zero-filled larger buffer; stride greater
// than 1 is a post-pass that keeps every stride-th position of the stride-1
// result, so the output extent along an axis is
// ceil((inputLen + 2*padding - kernelLen + 1) / stride).

// Conv1D performs 1-D cross-correlation. Input is (batch, inChannels, len),
// kernel is (outChannels, inChannels, kernelLen).
func (bk *Backend) Conv1D(input, kernel *tensor.RawTensor, stride, padding int) *tensor.RawTensor {
	is, ks := input.Shape(), kernel.Shape()
	checkConvArgs("conv1d", is, ks, 3, stride, padding)
	checkFloat("conv1d", input)
	checkSameDType("conv1d", input, kernel)

	padded := bk.padSpatial(input, []int{padding})
	n, ci, li := padded.Shape()[0], padded.Shape()[1], padded.Shape()[2]
	co, kl := ks[0], ks[2]
	lo := li - kl + 1
	if lo <= 0 {
		exceptions.Panicf("dense: conv1d: kernel %v larger than padded input %v", ks, is)
	}

	full := mustNew(tensor.Shape{n, co, lo}, input.DType(), input.Device())
	switch input.DType() {
	case tensor.Float32:
		conv1dLoop(full.AsFloat32(), padded.AsFloat32(), kernel.AsFloat32(), n, ci, li, co, kl, lo)
	case tensor.Float64:
		conv1dLoop(full.AsFloat64(), padded.AsFloat64(), kernel.AsFloat64(), n, ci, li, co, kl, lo)
	}
	return bk.downsampleSpatial(full, []int{stride})
}

func conv1dLoop[T floatT](out, in, k []T, n, ci, li, co, kl, lo int) {
	for b := 0; b < n; b++ {
		for oc := 0; oc < co; oc++ {
			for ox := 0; ox < lo; ox++ {
				var acc T
				for ic := 0; ic < ci; ic++ {
					for kx := 0; kx < kl; kx++ {
						acc += in[(b*ci+ic)*li+ox+kx] * k[(oc*ci+ic)*kl+kx]
					}
				}
				out[(b*co+oc)*lo+ox] = acc
			}
		}
	}
}

// Conv2D performs 2-D cross-correlation. Input is (batch, inChannels, h, w),
// kernel is (outChannels, inChannels, kh, kw).
func (bk *Backend) Conv2D(input, kernel *tensor.RawTensor, stride, padding int) *tensor.RawTensor {
	is, ks := input.Shape(), kernel.Shape()
	checkConvArgs("conv2d", is, ks, 4, stride, padding)
	checkFloat("conv2d", input)
	checkSameDType("conv2d", input, kernel)

	padded := bk.padSpatial(input, []int{padding, padding})
	ps := padded.Shape()
	n, ci, hi, wi := ps[0], ps[1], ps[2], ps[3]
	co, kh, kw := ks[0], ks[2], ks[3]
	ho, wo := hi-kh+1, wi-kw+1
	if ho <= 0 || wo <= 0 {
		exceptions.Panicf("dense: conv2d: kernel %v larger than padded input %v", ks, is)
	}

	full := mustNew(tensor.Shape{n, co, ho, wo}, input.DType(), input.Device())
	switch input.DType() {
	case tensor.Float32:
		conv2dLoop(full.AsFloat32(), padded.AsFloat32(), kernel.AsFloat32(), n, ci, hi, wi, co, kh, kw, ho, wo)
	case tensor.Float64:
		conv2dLoop(full.AsFloat64(), padded.AsFloat64(), kernel.AsFloat64(), n, ci, hi, wi, co, kh, kw, ho, wo)
	}
	return bk.downsampleSpatial(full, []int{stride, stride})
}

func conv2dLoop[T floatT](out, in, k []T, n, ci, hi, wi, co, kh, kw, ho, wo int) {
	for b := 0; b < n; b++ {
		for oc := 0; oc < co; oc++ {
			for oy := 0; oy < ho; oy++ {
				for ox := 0; ox < wo; ox++ {
					var acc T
					for ic := 0; ic < ci; ic++ {
						for ky := 0; ky < kh; ky++ {
							for kx := 0; kx < kw; kx++ {
								acc += in[((b*ci+ic)*hi+oy+ky)*wi+ox+kx] * k[((oc*ci+ic)*kh+ky)*kw+kx]
							}
						}
					}
					out[((b*co+oc)*ho+oy)*wo+ox] = acc
				}
			}
		}
	}
}

// Conv1DInputBackward computes the input adjoint of Conv1D by scattering
// every output adjoint back through the kernel taps.
func (bk *Backend) Conv1DInputBackward(input, kernel, grad *tensor.RawTensor, stride, padding int) *tensor.RawTensor {
	is, ks, gs := input.Shape(), kernel.Shape(), grad.Shape()
	out := mustNew(is, input.DType(), input.Device())
	n, ci, li := is[0], is[1], is[2]
	co, kl := ks[0], ks[2]
	lo := gs[2]
	for b := 0; b < n; b++ {
		for oc := 0; oc < co; oc++ {
			for ox := 0; ox < lo; ox++ {
				g := grad.Float64At((b*co+oc)*lo + ox)
				for ic := 0; ic < ci; ic++ {
					for kx := 0; kx < kl; kx++ {
						ix := ox*stride + kx - padding
						if ix < 0 || ix >= li {
							continue
						}
						at := (b*ci+ic)*li + ix
						out.SetFloat64At(at, out.Float64At(at)+g*kernel.Float64At((oc*ci+ic)*kl+kx))
					}
				}
			}
		}
	}
	return out
}

// Conv1DKernelBackward computes the kernel adjoint of Conv1D.
func (bk *Backend) Conv1DKernelBackward(input, kernel, grad *tensor.RawTensor, stride, padding int) *tensor.RawTensor {
	is, ks, gs := input.Shape(), kernel.Shape(), grad.Shape()
	out := mustNew(ks, kernel.DType(), kernel.Device())
	n, ci, li := is[0], is[1], is[2]
	co, kl := ks[0], ks[2]
	lo := gs[2]
	for oc := 0; oc < co; oc++ {
		for ic := 0; ic < ci; ic++ {
			for kx := 0; kx < kl; kx++ {
				var acc float64
				for b := 0; b < n; b++ {
					for ox := 0; ox < lo; ox++ {
						ix := ox*stride + kx - padding
						if ix < 0 || ix >= li {
							continue
						}
						acc += grad.Float64At((b*co+oc)*lo+ox) * input.Float64At((b*ci+ic)*li+ix)
					}
				}
				out.SetFloat64At((oc*ci+ic)*kl+kx, acc)
			}
		}
	}
	return out
}

// Conv2DInputBackward computes the input adjoint of Conv2D.
func (bk *Backend) Conv2DInputBackward(input, kernel, grad *tensor.RawTensor, stride, padding int) *tensor.RawTensor {
	is, ks, gs := input.Shape(), kernel.Shape(), grad.Shape()
	out := mustNew(is, input.DType(), input.Device())
	n, ci, hi, wi := is[0], is[1], is[2], is[3]
	co, kh, kw := ks[0], ks[2], ks[3]
	ho, wo := gs[2], gs[3]
	for b := 0; b < n; b++ {
		for oc := 0; oc < co; oc++ {
			for oy := 0; oy < ho; oy++ {
				for ox := 0; ox < wo; ox++ {
					g := grad.Float64At(((b*co+oc)*ho+oy)*wo + ox)
					for ic := 0; ic < ci; ic++ {
						for ky := 0; ky < kh; ky++ {
							iy := oy*stride + ky - padding
							if iy < 0 || iy >= hi {
								continue
							}
							for kx := 0; kx < kw; kx++ {
								ix := ox*stride + kx - padding
								if ix < 0 || ix >= wi {
									continue
								}
								at := ((b*ci+ic)*hi+iy)*wi + ix
								out.SetFloat64At(at, out.Float64At(at)+g*kernel.Float64At(((oc*ci+ic)*kh+ky)*kw+kx))
							}
						}
					}
				}
			}
		}
	}
	return out
}

// Conv2DKernelBackward computes the kernel adjoint of Conv2D.
func (bk *Backend) Conv2DKernelBackward(input, kernel, grad *tensor.RawTensor, stride, padding int) *tensor.RawTensor {
	is, ks, gs := input.Shape(), kernel.Shape(), grad.Shape()
	out := mustNew(ks, kernel.DType(), kernel.Device())
	n, ci, hi, wi := is[0], is[1], is[2], is[3]
	co, kh, kw := ks[0], ks[2], ks[3]
	ho, wo := gs[2], gs[3]
	for oc := 0; oc < co; oc++ {
		for ic := 0; ic < ci; ic++ {
			for ky := 0; ky < kh; ky++ {
				for kx := 0; kx < kw; kx++ {
					var acc float64
					for b := 0; b < n; b++ {
						for oy := 0; oy < ho; oy++ {
							iy := oy*stride + ky - padding
							if iy < 0 || iy >= hi {
								continue
							}
							for ox := 0; ox < wo; ox++ {
								ix := ox*stride + kx - padding
								if ix < 0 || ix >= wi {
									continue
								}
								acc += grad.Float64At(((b*co+oc)*ho+oy)*wo+ox) * input.Float64At(((b*ci+ic)*hi+iy)*wi+ix)
							}
						}
					}
					out.SetFloat64At(((oc*ci+ic)*kh+ky)*kw+kx, acc)
				}
			}
		}
	}
	return out
}

// padSpatial copies the input into the interior of a zero-filled buffer
// enlarged by the per-spatial-axis padding. The two leading axes (batch,
// channels) are never padded.
func (bk *Backend) padSpatial(a *tensor.RawTensor, padding []int) *tensor.RawTensor {
	all := true
	for _, p := range padding {
		if p != 0 {
			all = false
		}
	}
	if all {
		return a
	}
	s := a.Shape()
	outShape := s.Clone()
	for i, p := range padding {
		outShape[2+i] += 2 * p
	}
	out := mustNew(outShape, a.DType(), a.Device())
	n := a.NumElements()
	for flat := 0; flat < n; flat++ {
		index := s.MultiIndex(flat)
		for i, p := range padding {
			index[2+i] += p
		}
		copyElem(out, outShape.FlatIndex(index), a, flat)
	}
	return out
}

// downsampleSpatial keeps every stride-th position along each spatial axis
// of a stride-1 result.
func (bk *Backend) downsampleSpatial(a *tensor.RawTensor, strides []int) *tensor.RawTensor {
	all := true
	for _, st := range strides {
		if st != 1 {
			all = false
		}
	}
	if all {
		return a
	}
	s := a.Shape()
	outShape := s.Clone()
	for i, st := range strides {
		outShape[2+i] = (s[2+i] + st - 1) / st
	}
	out := mustNew(outShape, a.DType(), a.Device())
	n := out.NumElements()
	for flat := 0; flat < n; flat++ {
		index := outShape.MultiIndex(flat)
		for i, st := range strides {
			index[2+i] *= st
		}
		copyElem(out, flat, a, s.FlatIndex(index))
	}
	return out
}

func checkConvArgs(name string, is, ks tensor.Shape, rank, stride, padding int) {
	if len(is) != rank || len(ks) != rank {
		exceptions.Panicf("dense: %s: input and kernel must be %d-D, got %v and %v", name, rank, is, ks)
	}
	if is[1] != ks[1] {
		exceptions.Panicf("dense: %s: channel mismatch: input %v vs kernel %v", name, is, ks)
	}
	if stride < 1 {
		exceptions.Panicf("dense: %s: stride must be >= 1, got %d", name, stride)
	}
	if padding < 0 {
		exceptions.Panicf("dense: %s: padding must be >= 0, got %d", name, padding)
	}
}
