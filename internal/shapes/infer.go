package shapes

import (
	"github.com/pkg/errors"
)

// This file is the shape-checking contract: the same preconditions the dense
// kernels enforce, runnable on symbolic shapes without executing anything.
// Each function either returns the inferred output shape or an error naming
// the offending shapes. It is the standalone pre-execution checker; the
// production path validates the same preconditions in integer mode inside
// the kernels, and tests assert the two modes agree on concrete shapes.

// InferElementwise checks that two operands of an element-wise kernel agree.
func InferElementwise(a, b Shape) (Shape, error) {
	if len(a) != len(b) {
		return nil, errors.Errorf("elementwise operands have mismatched ranks: %s vs %s", a, b)
	}
	for i := range a {
		if !a[i].ConstrainEq(b[i]) {
			return nil, errors.Errorf("elementwise operands have mismatched shapes: %s vs %s (axis %d)", a, b, i)
		}
	}
	return Of(a...), nil
}

// InferMatMul checks 2-D matrix multiplication compatibility.
func InferMatMul(a, b Shape) (Shape, error) {
	if len(a) != 2 || len(b) != 2 {
		return nil, errors.Errorf("matmul requires 2-D operands, got %s and %s", a, b)
	}
	if !a[1].ConstrainEq(b[0]) {
		return nil, errors.Errorf("matmul inner dimensions do not match: %s @ %s", a, b)
	}
	return Of(a[0], b[1]), nil
}

// InferTranspose checks and derives the 2-D transpose shape.
func InferTranspose(a Shape) (Shape, error) {
	if len(a) != 2 {
		return nil, errors.Errorf("transpose requires a 2-D shape, got %s", a)
	}
	return Of(a[1], a[0]), nil
}

// InferSqueeze removes a size-1 axis.
func InferSqueeze(a Shape, axis int) (Shape, error) {
	if axis < 0 || axis >= len(a) {
		return nil, errors.Errorf("squeeze axis %d out of range for shape %s", axis, a)
	}
	if !a[axis].ConstrainEq(D(1)) {
		return nil, errors.Errorf("squeeze axis %d of shape %s does not have size 1", axis, a)
	}
	out := make(Shape, 0, len(a)-1)
	out = append(out, a[:axis]...)
	out = append(out, a[axis+1:]...)
	return out, nil
}

// InferUnsqueeze inserts a size-1 axis.
func InferUnsqueeze(a Shape, axis int) (Shape, error) {
	if axis < 0 || axis > len(a) {
		return nil, errors.Errorf("unsqueeze axis %d out of range for shape %s", axis, a)
	}
	out := make(Shape, 0, len(a)+1)
	out = append(out, a[:axis]...)
	out = append(out, D(1))
	out = append(out, a[axis:]...)
	return out, nil
}

// InferFlip validates the axis set of a flip: no duplicates, each in range.
// The shape is unchanged.
func InferFlip(a Shape, axes []int) (Shape, error) {
	seen := make(map[int]bool, len(axes))
	for _, ax := range axes {
		if ax < 0 || ax >= len(a) {
			return nil, errors.Errorf("flip axis %d out of range for shape %s", ax, a)
		}
		if seen[ax] {
			return nil, errors.Errorf("duplicate flip axis %d for shape %s", ax, a)
		}
		seen[ax] = true
	}
	return Of(a...), nil
}

// InferDilate derives the shape after inserting dilation-1 zero gaps along
// every axis: out = (in-1)*dilation + 1.
func InferDilate(a Shape, dilations []int) (Shape, error) {
	if len(dilations) != len(a) {
		return nil, errors.Errorf("dilate needs one dilation per axis: %d given for shape %s", len(dilations), a)
	}
	out := make(Shape, len(a))
	for i, d := range dilations {
		if d < 1 {
			return nil, errors.Errorf("dilation must be >= 1, got %d on axis %d", d, i)
		}
		out[i] = a[i].Sub(D(1)).Mul(D(d)).Add(D(1))
	}
	return out, nil
}

// InferUndilate derives the shape after removing dilation gaps, the inverse
// of InferDilate: out = (in-1)/dilation + 1.
func InferUndilate(a Shape, dilations []int) (Shape, error) {
	if len(dilations) != len(a) {
		return nil, errors.Errorf("undilate needs one dilation per axis: %d given for shape %s", len(dilations), a)
	}
	out := make(Shape, len(a))
	for i, d := range dilations {
		if d < 1 {
			return nil, errors.Errorf("dilation must be >= 1, got %d on axis %d", d, i)
		}
		out[i] = a[i].Sub(D(1)).Div(D(d)).Add(D(1))
	}
	return out, nil
}

// InferStack derives the shape of stacking n equal shapes along a new
// leading axis.
func InferStack(shapes []Shape) (Shape, error) {
	if len(shapes) == 0 {
		return nil, errors.New("stack requires at least one operand")
	}
	first := shapes[0]
	for i, s := range shapes[1:] {
		if _, err := InferElementwise(first, s); err != nil {
			return nil, errors.Wrapf(err, "stack operand %d", i+1)
		}
	}
	out := make(Shape, 0, len(first)+1)
	out = append(out, D(len(shapes)))
	out = append(out, first...)
	return out, nil
}

// convOutDim computes the stride-1 correlation length and applies the
// downsampling adjustment: ceil((in + 2*pad - kernel + 1) / stride).
func convOutDim(in, kernel Dim, stride, padding int) Dim {
	full := in.Add(D(2 * padding)).Sub(kernel).Add(D(1))
	return full.Add(D(stride - 1)).Div(D(stride))
}

// InferConv1D checks a 1-D cross-correlation: input (batch, inChannels, len),
// kernel (outChannels, inChannels, kernelLen).
func InferConv1D(input, kernel Shape, stride, padding int) (Shape, error) {
	if len(input) != 3 || len(kernel) != 3 {
		return nil, errors.Errorf("conv1d requires 3-D input and kernel, got %s and %s", input, kernel)
	}
	if stride < 1 {
		return nil, errors.Errorf("conv1d stride must be >= 1, got %d", stride)
	}
	if padding < 0 {
		return nil, errors.Errorf("conv1d padding must be >= 0, got %d", padding)
	}
	if !input[1].ConstrainEq(kernel[1]) {
		return nil, errors.Errorf("conv1d channel mismatch: input %s vs kernel %s", input, kernel)
	}
	if !kernel[2].ConstrainLe(input[2].Add(D(2 * padding))) {
		return nil, errors.Errorf("conv1d kernel %s larger than padded input %s", kernel, input)
	}
	return Of(input[0], kernel[0], convOutDim(input[2], kernel[2], stride, padding)), nil
}

// InferConv2D checks a 2-D cross-correlation: input (batch, inChannels, h, w),
// kernel (outChannels, inChannels, kh, kw).
func InferConv2D(input, kernel Shape, stride, padding int) (Shape, error) {
	if len(input) != 4 || len(kernel) != 4 {
		return nil, errors.Errorf("conv2d requires 4-D input and kernel, got %s and %s", input, kernel)
	}
	if stride < 1 {
		return nil, errors.Errorf("conv2d stride must be >= 1, got %d", stride)
	}
	if padding < 0 {
		return nil, errors.Errorf("conv2d padding must be >= 0, got %d", padding)
	}
	if !input[1].ConstrainEq(kernel[1]) {
		return nil, errors.Errorf("conv2d channel mismatch: input %s vs kernel %s", input, kernel)
	}
	for axis := 2; axis <= 3; axis++ {
		if !kernel[axis].ConstrainLe(input[axis].Add(D(2 * padding))) {
			return nil, errors.Errorf("conv2d kernel %s larger than padded input %s", kernel, input)
		}
	}
	return Of(input[0], kernel[0],
		convOutDim(input[2], kernel[2], stride, padding),
		convOutDim(input[3], kernel[3], stride, padding)), nil
}

// poolOutDim computes one pooled spatial extent. With ceilMode the length is
// rounded up, otherwise floor: (in + 2*pad - kernel)/stride + 1.
func poolOutDim(in Dim, kernel, stride, padding int, ceilMode bool) Dim {
	span := in.Add(D(2 * padding)).Sub(D(kernel))
	if ceilMode {
		span = span.Add(D(stride - 1))
	}
	return span.Div(D(stride)).Add(D(1))
}

// InferPool checks an N-spatial-axis pooling. The input carries two leading
// axes (batch, channels) followed by spatial axes; kernel, stride and
// padding each have one entry per spatial axis.
func InferPool(input Shape, kernel, stride, padding []int, ceilMode bool) (Shape, error) {
	spatial := len(kernel)
	if spatial < 1 || spatial > 3 {
		return nil, errors.Errorf("pooling supports 1 to 3 spatial axes, got %d", spatial)
	}
	if len(input) != spatial+2 {
		return nil, errors.Errorf("pooling over %d spatial axes requires rank %d input, got %s", spatial, spatial+2, input)
	}
	if len(stride) != spatial || len(padding) != spatial {
		return nil, errors.Errorf("pooling kernel/stride/padding lengths disagree: %d/%d/%d", spatial, len(stride), len(padding))
	}
	out := make(Shape, 0, len(input))
	out = append(out, input[0], input[1])
	for i := 0; i < spatial; i++ {
		if kernel[i] < 1 {
			return nil, errors.Errorf("pooling kernel size must be >= 1, got %d on spatial axis %d", kernel[i], i)
		}
		if stride[i] < 1 {
			return nil, errors.Errorf("pooling stride must be >= 1, got %d on spatial axis %d", stride[i], i)
		}
		if padding[i] < 0 {
			return nil, errors.Errorf("pooling padding must be >= 0, got %d on spatial axis %d", padding[i], i)
		}
		if padding[i] > kernel[i]/2 {
			return nil, errors.Errorf("pooling padding %d exceeds half the kernel size %d on spatial axis %d", padding[i], kernel[i], i)
		}
		if !D(kernel[i]).ConstrainLe(input[i+2].Add(D(2 * padding[i]))) {
			return nil, errors.Errorf("pooling kernel %v larger than padded input %s", kernel, input)
		}
		out = append(out, poolOutDim(input[i+2], kernel[i], stride[i], padding[i], ceilMode))
	}
	return out, nil
}

// InferReshape checks that the target shape preserves the element count.
// Both counts must be resolvable; symbolic sides fall back to a constraint
// query on the flattened dimensions.
func InferReshape(a, target Shape) (Shape, error) {
	an := a.Flatten()[0]
	tn := target.Flatten()[0]
	if !an.ConstrainEq(tn) {
		return nil, errors.Errorf("cannot reshape %s to %s: element counts differ", a, target)
	}
	return Of(target...), nil
}
