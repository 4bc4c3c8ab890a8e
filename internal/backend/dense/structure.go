package dense

import (
	"github.com/gomlx/exceptions"
	"github.com/x448/float16"

	"github.com/fwaris/DiffSharp/internal/tensor"
)

// copyElem copies one element between buffers of the same dtype. The
// structural kernels move whole elements, so they work for every storage
// type without dtype dispatch.
func copyElem(dst *tensor.RawTensor, di int, src *tensor.RawTensor, si int) {
	es := src.DType().Size()
	copy(dst.Data()[di*es:(di+1)*es], src.Data()[si*es:(si+1)*es])
}

// Transpose swaps the two axes of a 2-D tensor.
func (bk *Backend) Transpose(a *tensor.RawTensor) *tensor.RawTensor {
	s := a.Shape()
	if len(s) != 2 {
		exceptions.Panicf("dense: transpose: tensor must be 2-D, got %v", s)
	}
	rows, cols := s[0], s[1]
	out := mustNew(tensor.Shape{cols, rows}, a.DType(), a.Device())
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			copyElem(out, j*rows+i, a, i*cols+j)
		}
	}
	return out
}

// Reshape reinterprets the buffer under a new shape with the same element
// count.
func (bk *Backend) Reshape(a *tensor.RawTensor, shape tensor.Shape) *tensor.RawTensor {
	out, err := a.WithShape(shape)
	if err != nil {
		exceptions.Panicf("dense: reshape: %v", err)
	}
	return out
}

// Squeeze removes a size-1 axis.
func (bk *Backend) Squeeze(a *tensor.RawTensor, axis int) *tensor.RawTensor {
	s := a.Shape()
	if axis < 0 || axis >= len(s) {
		exceptions.Panicf("dense: squeeze: axis %d out of range for shape %v", axis, s)
	}
	if s[axis] != 1 {
		exceptions.Panicf("dense: squeeze: axis %d of shape %v does not have size 1", axis, s)
	}
	newShape := make(tensor.Shape, 0, len(s)-1)
	newShape = append(newShape, s[:axis]...)
	newShape = append(newShape, s[axis+1:]...)
	return bk.Reshape(a, newShape)
}

// Unsqueeze inserts a size-1 axis.
func (bk *Backend) Unsqueeze(a *tensor.RawTensor, axis int) *tensor.RawTensor {
	s := a.Shape()
	if axis < 0 || axis > len(s) {
		exceptions.Panicf("dense: unsqueeze: axis %d out of range for shape %v", axis, s)
	}
	newShape := make(tensor.Shape, 0, len(s)+1)
	newShape = append(newShape, s[:axis]...)
	newShape = append(newShape, 1)
	newShape = append(newShape, s[axis:]...)
	return bk.Reshape(a, newShape)
}

// Flip reverses the tensor along the given set of axes. Axes must be unique
// and within [0, rank).
func (bk *Backend) Flip(a *tensor.RawTensor, axes []int) *tensor.RawTensor {
	s := a.Shape()
	seen := make(map[int]bool, len(axes))
	for _, ax := range axes {
		if ax < 0 || ax >= len(s) {
			exceptions.Panicf("dense: flip: axis %d out of range for shape %v", ax, s)
		}
		if seen[ax] {
			exceptions.Panicf("dense: flip: duplicate axis %d", ax)
		}
		seen[ax] = true
	}
	out := mustNew(s, a.DType(), a.Device())
	n := a.NumElements()
	for flat := 0; flat < n; flat++ {
		index := s.MultiIndex(flat)
		for _, ax := range axes {
			index[ax] = s[ax] - 1 - index[ax]
		}
		copyElem(out, s.FlatIndex(index), a, flat)
	}
	return out
}

// Dilate inserts dilation-1 zero gaps between elements along every axis:
// output extent is (in-1)*dilation + 1.
func (bk *Backend) Dilate(a *tensor.RawTensor, dilations []int) *tensor.RawTensor {
	s := a.Shape()
	outShape := dilatedShape("dilate", s, dilations)
	out := mustNew(outShape, a.DType(), a.Device())
	n := a.NumElements()
	for flat := 0; flat < n; flat++ {
		index := s.MultiIndex(flat)
		for i := range index {
			index[i] *= dilations[i]
		}
		copyElem(out, outShape.FlatIndex(index), a, flat)
	}
	return out
}

// Undilate removes dilation gaps, the exact inverse of Dilate.
func (bk *Backend) Undilate(a *tensor.RawTensor, dilations []int) *tensor.RawTensor {
	s := a.Shape()
	if len(dilations) != len(s) {
		exceptions.Panicf("dense: undilate: %d dilations for shape %v", len(dilations), s)
	}
	outShape := make(tensor.Shape, len(s))
	for i, d := range dilations {
		if d < 1 {
			exceptions.Panicf("dense: undilate: dilation must be >= 1, got %d on axis %d", d, i)
		}
		outShape[i] = (s[i]-1)/d + 1
	}
	out := mustNew(outShape, a.DType(), a.Device())
	n := out.NumElements()
	for flat := 0; flat < n; flat++ {
		index := outShape.MultiIndex(flat)
		for i := range index {
			index[i] *= dilations[i]
		}
		copyElem(out, flat, a, s.FlatIndex(index))
	}
	return out
}

func dilatedShape(name string, s tensor.Shape, dilations []int) tensor.Shape {
	if len(dilations) != len(s) {
		exceptions.Panicf("dense: %s: %d dilations for shape %v", name, len(dilations), s)
	}
	outShape := make(tensor.Shape, len(s))
	for i, d := range dilations {
		if d < 1 {
			exceptions.Panicf("dense: %s: dilation must be >= 1, got %d on axis %d", name, d, i)
		}
		outShape[i] = (s[i]-1)*d + 1
	}
	return outShape
}

// Stack joins equal-shape tensors along a new leading axis.
func (bk *Backend) Stack(ts []*tensor.RawTensor) *tensor.RawTensor {
	if len(ts) == 0 {
		exceptions.Panicf("dense: stack: no operands")
	}
	first := ts[0]
	for _, t := range ts[1:] {
		checkSameShape("stack", first, t)
	}
	outShape := append(tensor.Shape{len(ts)}, first.Shape().Clone()...)
	out := mustNew(outShape, first.DType(), first.Device())
	chunk := first.NumElements() * first.DType().Size()
	for i, t := range ts {
		copy(out.Data()[i*chunk:(i+1)*chunk], t.Data())
	}
	return out
}

// Unstack splits a tensor along its leading axis, the inverse of Stack.
func (bk *Backend) Unstack(a *tensor.RawTensor) []*tensor.RawTensor {
	s := a.Shape()
	if len(s) == 0 {
		exceptions.Panicf("dense: unstack: cannot unstack a scalar")
	}
	inner := s[1:].Clone()
	chunk := inner.NumElements() * a.DType().Size()
	out := make([]*tensor.RawTensor, s[0])
	for i := range out {
		t := mustNew(inner, a.DType(), a.Device())
		copy(t.Data(), a.Data()[i*chunk:(i+1)*chunk])
		out[i] = t
	}
	return out
}

// sliceResultShape derives the squeezed result shape of a slice and
// validates the bounds against the source shape.
func sliceResultShape(s tensor.Shape, bounds [][2]int) (full, squeezed tensor.Shape) {
	if len(bounds) != len(s) {
		exceptions.Panicf("dense: slice: %d bounds for shape %v", len(bounds), s)
	}
	full = make(tensor.Shape, len(s))
	for i, b := range bounds {
		lo, hi := b[0], b[1]
		if lo < 0 || hi < lo || hi >= s[i] {
			exceptions.Panicf("dense: slice: invalid bounds [%d,%d] on axis %d of shape %v", lo, hi, i, s)
		}
		full[i] = hi - lo + 1
	}
	squeezed = make(tensor.Shape, 0, len(full))
	for _, d := range full {
		if d != 1 {
			squeezed = append(squeezed, d)
		}
	}
	if len(squeezed) == 0 {
		squeezed = tensor.Shape{1}
	}
	return full, squeezed
}

// Slice copies the sub-region addressed by inclusive per-axis bounds into a
// fresh buffer. Result dimensions of size 1 are collapsed out unless that
// would remove every dimension.
func (bk *Backend) Slice(a *tensor.RawTensor, bounds [][2]int) *tensor.RawTensor {
	s := a.Shape()
	full, squeezed := sliceResultShape(s, bounds)
	out := mustNew(squeezed, a.DType(), a.Device())
	n := full.NumElements()
	src := make([]int, len(s))
	for flat := 0; flat < n; flat++ {
		index := full.MultiIndex(flat)
		for i := range index {
			src[i] = index[i] + bounds[i][0]
		}
		copyElem(out, flat, a, s.FlatIndex(src))
	}
	return out
}

// SliceScatter embeds a sliced tensor back into zeros of the original shape
// at the given bounds. It is the exact adjoint of Slice.
func (bk *Backend) SliceScatter(grad *tensor.RawTensor, bounds [][2]int, shape tensor.Shape) *tensor.RawTensor {
	full, squeezed := sliceResultShape(shape, bounds)
	if grad.NumElements() != full.NumElements() || !grad.Shape().Equal(squeezed) {
		exceptions.Panicf("dense: slice_scatter: gradient shape %v does not match sliced region %v of %v",
			grad.Shape(), squeezed, shape)
	}
	out := mustNew(shape, grad.DType(), grad.Device())
	n := full.NumElements()
	dst := make([]int, len(shape))
	for flat := 0; flat < n; flat++ {
		index := full.MultiIndex(flat)
		for i := range index {
			dst[i] = index[i] + bounds[i][0]
		}
		copyElem(out, shape.FlatIndex(dst), grad, flat)
	}
	return out
}

// Cast converts between storage types. Float16 is a storage-only type:
// casting is how half-precision tensors enter and leave the numeric kernels.
func (bk *Backend) Cast(a *tensor.RawTensor, dtype tensor.DataType) *tensor.RawTensor {
	if a.DType() == dtype {
		return a.Clone()
	}
	out := mustNew(a.Shape(), dtype, a.Device())
	n := a.NumElements()
	if dtype == tensor.Float16 {
		res := out.AsFloat16()
		for i := 0; i < n; i++ {
			res[i] = float16.Fromfloat32(float32(a.Float64At(i)))
		}
		return out
	}
	if dtype == tensor.Bool {
		exceptions.Panicf("dense: cast: cannot cast %s to bool", a.DType())
	}
	for i := 0; i < n; i++ {
		out.SetFloat64At(i, a.Float64At(i))
	}
	return out
}
