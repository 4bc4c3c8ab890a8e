package autodiff

import (
	"fmt"

	"github.com/gomlx/exceptions"

	"github.com/fwaris/DiffSharp/internal/tensor"
)

// Role says how a Tensor participates in differentiation.
type Role int

const (
	// Constant tensors carry no derivative information.
	Constant Role = iota
	// Forward tensors carry a tangent propagated alongside the primal.
	Forward
	// Reverse tensors are recorded on a Graph for a later Backward pass.
	Reverse
)

func (r Role) String() string {
	switch r {
	case Constant:
		return "constant"
	case Forward:
		return "forward"
	case Reverse:
		return "reverse"
	default:
		return fmt.Sprintf("Role(%d)", int(r))
	}
}

// Tensor is the differentiable facade over a raw tensor. A Tensor is
// immutable: every operation returns a new Tensor whose role is derived
// from its operands. Mixing Forward and Reverse operands in one operation
// is rejected; nest the modes through separate passes instead.
type Tensor struct {
	raw     *tensor.RawTensor
	backend tensor.Backend
	role    Role
	tangent *Tensor // Forward only
	graph   *Graph  // Reverse only
	node    int     // arena index, Reverse only
}

// NewConstant wraps a raw tensor as a non-differentiable value.
func NewConstant(raw *tensor.RawTensor, bk tensor.Backend) *Tensor {
	return &Tensor{raw: raw, backend: bk, role: Constant}
}

// NewForward pairs a primal with a tangent of the same shape for
// forward-mode propagation.
func NewForward(primal *tensor.RawTensor, tangent *tensor.RawTensor, bk tensor.Backend) *Tensor {
	if !primal.Shape().Equal(tangent.Shape()) {
		exceptions.Panicf("autodiff: tangent shape %v does not match primal shape %v", tangent.Shape(), primal.Shape())
	}
	return &Tensor{raw: primal, backend: bk, role: Forward, tangent: NewConstant(tangent, bk)}
}

// Variable records a raw tensor as a differentiable input on the tape and
// returns its Reverse-role facade.
func (g *Graph) Variable(raw *tensor.RawTensor) *Tensor {
	id := g.leaf(raw)
	return &Tensor{raw: raw, backend: g.backend, role: Reverse, graph: g, node: id}
}

// Primal returns the underlying raw value.
func (t *Tensor) Primal() *tensor.RawTensor { return t.raw }

// Role returns how the tensor participates in differentiation.
func (t *Tensor) Role() Role { return t.role }

// Shape returns the value's shape.
func (t *Tensor) Shape() tensor.Shape { return t.raw.Shape() }

// DType returns the value's storage type.
func (t *Tensor) DType() tensor.DataType { return t.raw.DType() }

// Backend returns the kernel backend the tensor computes on.
func (t *Tensor) Backend() tensor.Backend { return t.backend }

// Tangent returns the forward-mode tangent, or nil for other roles.
func (t *Tensor) Tangent() *Tensor { return t.tangent }

// Graph returns the tape a Reverse tensor is recorded on, or nil.
func (t *Tensor) Graph() *Graph { return t.graph }

// Detach returns the value stripped of derivative tracking.
func (t *Tensor) Detach() *Tensor {
	return NewConstant(t.raw, t.backend)
}

// Backward runs reverse propagation from this tensor. A nil seed means a
// ones tensor of this tensor's shape. Only Reverse tensors can start a
// backward pass.
func (t *Tensor) Backward(seed *tensor.RawTensor) {
	if t.role != Reverse {
		exceptions.Panicf("autodiff: backward from a %s tensor", t.role)
	}
	t.graph.Backward(t.node, seed)
}

// Adjoint returns the gradient accumulated for this tensor by the last
// Backward pass on its tape, or zeros if none reached it.
func (t *Tensor) Adjoint() *tensor.RawTensor {
	if t.role != Reverse {
		exceptions.Panicf("autodiff: adjoint of a %s tensor", t.role)
	}
	return t.graph.Adjoint(t.node)
}

func (t *Tensor) String() string {
	return fmt.Sprintf("Tensor[%s]%v (%s)", t.raw.DType(), t.raw.Shape(), t.role)
}

// apply runs one bound operation over the inputs: the primal kernel always,
// plus tangent propagation when any input is Forward, or tape recording
// when any input is Reverse.
func apply(op *Op, inputs ...*Tensor) *Tensor {
	fns := rules(op.Kind)
	bk := inputs[0].backend
	raws := make([]*tensor.RawTensor, len(inputs))
	anyForward, anyReverse := false, false
	for i, t := range inputs {
		raws[i] = t.raw
		switch t.role {
		case Forward:
			anyForward = true
		case Reverse:
			anyReverse = true
		}
	}
	if anyForward && anyReverse {
		exceptions.Panicf("autodiff: %s: cannot mix forward-mode and reverse-mode operands", fns.name)
	}

	out := fns.compute(op, bk, raws)
	switch {
	case anyReverse:
		g := graphOf(fns.name, inputs)
		ids := make([]int, len(inputs))
		for i, t := range inputs {
			if t.role == Reverse {
				ids[i] = t.node
			} else {
				ids[i] = g.leaf(t.raw)
			}
		}
		id := g.record(op, ids, out)
		return &Tensor{raw: out, backend: bk, role: Reverse, graph: g, node: id}
	case anyForward:
		tans := make([]*tensor.RawTensor, len(inputs))
		for i, t := range inputs {
			if t.role == Forward {
				tans[i] = t.tangent.raw
			} else {
				tans[i] = tensor.Zeros(t.raw.Shape(), t.raw.DType(), t.raw.Device())
			}
		}
		tout := fns.forward(op, bk, out, raws, tans)
		return &Tensor{raw: out, backend: bk, role: Forward, tangent: NewConstant(tout, bk)}
	default:
		return NewConstant(out, bk)
	}
}

// graphOf returns the single tape shared by all Reverse inputs.
func graphOf(name string, inputs []*Tensor) *Graph {
	var g *Graph
	for _, t := range inputs {
		if t.role != Reverse {
			continue
		}
		if g == nil {
			g = t.graph
		} else if g != t.graph {
			exceptions.Panicf("autodiff: %s: operands recorded on different tapes", name)
		}
	}
	return g
}

// Element-wise arithmetic.

func (t *Tensor) Add(o *Tensor) *Tensor { return apply(&Op{Kind: OpAdd}, t, o) }
func (t *Tensor) Sub(o *Tensor) *Tensor { return apply(&Op{Kind: OpSub}, t, o) }
func (t *Tensor) Mul(o *Tensor) *Tensor { return apply(&Op{Kind: OpMul}, t, o) }
func (t *Tensor) Div(o *Tensor) *Tensor { return apply(&Op{Kind: OpDiv}, t, o) }
func (t *Tensor) Pow(o *Tensor) *Tensor { return apply(&Op{Kind: OpPow}, t, o) }

func (t *Tensor) AddScalar(s float64) *Tensor { return apply(&Op{Kind: OpAddScalar, Scalar: s}, t) }
func (t *Tensor) SubScalar(s float64) *Tensor { return apply(&Op{Kind: OpSubScalar, Scalar: s}, t) }
func (t *Tensor) MulScalar(s float64) *Tensor { return apply(&Op{Kind: OpMulScalar, Scalar: s}, t) }
func (t *Tensor) DivScalar(s float64) *Tensor { return apply(&Op{Kind: OpDivScalar, Scalar: s}, t) }
func (t *Tensor) PowScalar(s float64) *Tensor { return apply(&Op{Kind: OpPowScalar, Scalar: s}, t) }

func (t *Tensor) Neg() *Tensor  { return apply(&Op{Kind: OpNeg}, t) }
func (t *Tensor) Abs() *Tensor  { return apply(&Op{Kind: OpAbs}, t) }
func (t *Tensor) Exp() *Tensor  { return apply(&Op{Kind: OpExp}, t) }
func (t *Tensor) Log() *Tensor  { return apply(&Op{Kind: OpLog}, t) }
func (t *Tensor) Sqrt() *Tensor { return apply(&Op{Kind: OpSqrt}, t) }
func (t *Tensor) Sin() *Tensor  { return apply(&Op{Kind: OpSin}, t) }
func (t *Tensor) Cos() *Tensor  { return apply(&Op{Kind: OpCos}, t) }
func (t *Tensor) Tanh() *Tensor { return apply(&Op{Kind: OpTanh}, t) }

// Reductions and linear algebra.

func (t *Tensor) Sum() *Tensor  { return apply(&Op{Kind: OpSum}, t) }
func (t *Tensor) Mean() *Tensor { return apply(&Op{Kind: OpMean}, t) }

func (t *Tensor) MatMul(o *Tensor) *Tensor { return apply(&Op{Kind: OpMatMul}, t, o) }
func (t *Tensor) Transpose() *Tensor       { return apply(&Op{Kind: OpTranspose}, t) }

// Structural operations.

func (t *Tensor) Reshape(shape tensor.Shape) *Tensor {
	return apply(&Op{Kind: OpReshape, Shape: shape.Clone()}, t)
}

func (t *Tensor) Squeeze(axis int) *Tensor {
	return apply(&Op{Kind: OpSqueeze, Axis: axis}, t)
}

func (t *Tensor) Unsqueeze(axis int) *Tensor {
	return apply(&Op{Kind: OpUnsqueeze, Axis: axis}, t)
}

func (t *Tensor) Flip(axes []int) *Tensor {
	return apply(&Op{Kind: OpFlip, Axes: append([]int(nil), axes...)}, t)
}

func (t *Tensor) Dilate(dilations []int) *Tensor {
	return apply(&Op{Kind: OpDilate, Dilations: append([]int(nil), dilations...)}, t)
}

func (t *Tensor) Undilate(dilations []int) *Tensor {
	return apply(&Op{Kind: OpUndilate, Dilations: append([]int(nil), dilations...)}, t)
}

func (t *Tensor) Slice(bounds [][2]int) *Tensor {
	return apply(&Op{Kind: OpSlice, Bounds: append([][2]int(nil), bounds...)}, t)
}

// Stack joins same-shape tensors along a new leading axis.
func Stack(ts []*Tensor) *Tensor {
	if len(ts) == 0 {
		exceptions.Panicf("autodiff: stack of zero tensors")
	}
	return apply(&Op{Kind: OpStack}, ts...)
}

// Unstack splits the leading axis into one tensor per entry. It is the
// composition of a slice per entry with a reshape back to the entry shape,
// so gradients flow through it like through any other operation.
func (t *Tensor) Unstack() []*Tensor {
	s := t.Shape()
	if len(s) < 1 {
		exceptions.Panicf("autodiff: unstack of a scalar")
	}
	inner := s[1:].Clone()
	out := make([]*Tensor, s[0])
	for i := range out {
		bounds := make([][2]int, len(s))
		bounds[0] = [2]int{i, i}
		for j := 1; j < len(s); j++ {
			bounds[j] = [2]int{0, s[j] - 1}
		}
		out[i] = t.Slice(bounds).Reshape(inner)
	}
	return out
}

// Convolution.

func (t *Tensor) Conv1D(kernel *Tensor, opts *ConvOptions) *Tensor {
	stride, padding := opts.normalize("conv1d")
	return apply(&Op{Kind: OpConv1D, Stride: stride, Padding: padding}, t, kernel)
}

func (t *Tensor) Conv2D(kernel *Tensor, opts *ConvOptions) *Tensor {
	stride, padding := opts.normalize("conv2d")
	return apply(&Op{Kind: OpConv2D, Stride: stride, Padding: padding}, t, kernel)
}

// Pooling. The 2-D kernels are the primitives; the 1-D and 3-D entry
// points route through them with singleton or merged spatial axes.

func (t *Tensor) AvgPool2D(kernel []int, opts *PoolOptions) *Tensor {
	k, s, p, ceil, incl := poolParams("avgpool2d", kernel, opts, 2)
	return apply(&Op{
		Kind:       OpAvgPool2D,
		PoolKernel: [2]int{k[0], k[1]}, PoolStride: [2]int{s[0], s[1]}, PoolPadding: [2]int{p[0], p[1]},
		CeilMode: ceil, IncludePad: incl,
	}, t)
}

// AvgPool2DReverse scatters a pooled tensor back over the pre-pooling
// extents, dividing by the same window divisor AvgPool2D uses. It is the
// exact algebraic adjoint of AvgPool2D: each is the derivative rule of the
// other. The reconstructed spatial extent along an axis is the minimal one,
// (out-1)*stride + kernel - 2*padding.
func (t *Tensor) AvgPool2DReverse(kernel []int, opts *PoolOptions) *Tensor {
	k, s, p, ceil, incl := poolParams("avgpool2d_reverse", kernel, opts, 2)
	return apply(&Op{
		Kind:       OpAvgPool2DReverse,
		PoolKernel: [2]int{k[0], k[1]}, PoolStride: [2]int{s[0], s[1]}, PoolPadding: [2]int{p[0], p[1]},
		CeilMode: ceil, IncludePad: incl,
	}, t)
}

func (t *Tensor) AvgPool1D(kernel []int, opts *PoolOptions) *Tensor {
	k, s, p, ceil, excl := lift1DPool("avgpool1d", kernel, opts)
	return t.Unsqueeze(2).AvgPool2D(k, &PoolOptions{Stride: s, Padding: p, CeilMode: ceil, ExcludePad: excl}).Squeeze(2)
}

func (t *Tensor) AvgPool1DReverse(kernel []int, opts *PoolOptions) *Tensor {
	k, s, p, ceil, excl := lift1DPool("avgpool1d_reverse", kernel, opts)
	return t.Unsqueeze(2).AvgPool2DReverse(k, &PoolOptions{Stride: s, Padding: p, CeilMode: ceil, ExcludePad: excl}).Squeeze(2)
}

// AvgPool3D pools a (batch, channels, d, h, w) tensor in two 2-D stages:
// the (h, w) plane with depth merged into channels, then the depth axis
// with the pooled plane flattened. Mean-of-means over fixed window sizes
// equals the mean over the product window, so the staging is exact for the
// default padding-inclusive divisor. The padding-exclusive divisor varies
// per window at padded borders and does not factor through the stages, so
// that combination is rejected.
func (t *Tensor) AvgPool3D(kernel []int, opts *PoolOptions) *Tensor {
	k, s, p, ceil, incl := poolParams("avgpool3d", kernel, opts, 3)
	check3DPoolDivisor("avgpool3d", p, incl)
	ts := t.Shape()
	if len(ts) != 5 {
		exceptions.Panicf("autodiff: avgpool3d: input must be 5-D (batch, channels, d, h, w), got %v", ts)
	}
	n, c, d, h, w := ts[0], ts[1], ts[2], ts[3], ts[4]

	plane := t.Reshape(tensor.Shape{n, c * d, h, w}).
		AvgPool2D(k[1:], &PoolOptions{Stride: s[1:], Padding: p[1:], CeilMode: ceil, ExcludePad: !incl})
	ho, wo := plane.Shape()[2], plane.Shape()[3]

	depth := plane.Reshape(tensor.Shape{n, c, d, ho * wo}).
		AvgPool2D([]int{k[0], 1}, &PoolOptions{Stride: []int{s[0], 1}, Padding: []int{p[0], 0}, CeilMode: ceil, ExcludePad: !incl})
	do := depth.Shape()[2]
	return depth.Reshape(tensor.Shape{n, c, do, ho, wo})
}

// AvgPool3DReverse inverts the two stages of AvgPool3D in reverse order.
func (t *Tensor) AvgPool3DReverse(kernel []int, opts *PoolOptions) *Tensor {
	k, s, p, ceil, incl := poolParams("avgpool3d_reverse", kernel, opts, 3)
	check3DPoolDivisor("avgpool3d_reverse", p, incl)
	ts := t.Shape()
	if len(ts) != 5 {
		exceptions.Panicf("autodiff: avgpool3d_reverse: input must be 5-D (batch, channels, d, h, w), got %v", ts)
	}
	n, c, do, ho, wo := ts[0], ts[1], ts[2], ts[3], ts[4]

	depth := t.Reshape(tensor.Shape{n, c, do, ho * wo}).
		AvgPool2DReverse([]int{k[0], 1}, &PoolOptions{Stride: []int{s[0], 1}, Padding: []int{p[0], 0}, CeilMode: ceil, ExcludePad: !incl})
	d := depth.Shape()[2]

	plane := depth.Reshape(tensor.Shape{n, c * d, ho, wo}).
		AvgPool2DReverse(k[1:], &PoolOptions{Stride: s[1:], Padding: p[1:], CeilMode: ceil, ExcludePad: !incl})
	h, w := plane.Shape()[2], plane.Shape()[3]
	return plane.Reshape(tensor.Shape{n, c, d, h, w})
}

func (t *Tensor) MaxPool2D(kernel []int, opts *PoolOptions) *Tensor {
	k, s, p, _, _ := poolParams("maxpool2d", kernel, opts, 2)
	return apply(&Op{
		Kind:       OpMaxPool2D,
		PoolKernel: [2]int{k[0], k[1]}, PoolStride: [2]int{s[0], s[1]}, PoolPadding: [2]int{p[0], p[1]},
	}, t)
}

func (t *Tensor) MaxPool1D(kernel []int, opts *PoolOptions) *Tensor {
	k, s, p, ceil, excl := lift1DPool("maxpool1d", kernel, opts)
	return t.Unsqueeze(2).MaxPool2D(k, &PoolOptions{Stride: s, Padding: p, CeilMode: ceil, ExcludePad: excl}).Squeeze(2)
}

// lift1DPool maps 1-D pooling parameters onto the 2-D kernels with a
// singleton leading spatial axis.
func lift1DPool(name string, kernel []int, opts *PoolOptions) (k, s, p []int, ceil, excl bool) {
	k1, s1, p1, ceil, incl := poolParams(name, kernel, opts, 1)
	return []int{1, k1[0]}, []int{1, s1[0]}, []int{0, p1[0]}, ceil, !incl
}

func check3DPoolDivisor(name string, p []int, includePad bool) {
	if includePad {
		return
	}
	for _, v := range p {
		if v != 0 {
			exceptions.Panicf("autodiff: %s: padding-exclusive averaging with nonzero padding is not supported", name)
		}
	}
}

// Non-differentiable surface. Comparisons and casts detach from both modes
// and return constants.

func (t *Tensor) Eq(o *Tensor) *Tensor { return t.comparison(func() *tensor.RawTensor { return t.backend.Eq(t.raw, o.raw) }) }
func (t *Tensor) Ne(o *Tensor) *Tensor { return t.comparison(func() *tensor.RawTensor { return t.backend.Ne(t.raw, o.raw) }) }
func (t *Tensor) Gt(o *Tensor) *Tensor { return t.comparison(func() *tensor.RawTensor { return t.backend.Gt(t.raw, o.raw) }) }
func (t *Tensor) Lt(o *Tensor) *Tensor { return t.comparison(func() *tensor.RawTensor { return t.backend.Lt(t.raw, o.raw) }) }
func (t *Tensor) Ge(o *Tensor) *Tensor { return t.comparison(func() *tensor.RawTensor { return t.backend.Ge(t.raw, o.raw) }) }
func (t *Tensor) Le(o *Tensor) *Tensor { return t.comparison(func() *tensor.RawTensor { return t.backend.Le(t.raw, o.raw) }) }

func (t *Tensor) comparison(f func() *tensor.RawTensor) *Tensor {
	return NewConstant(f(), t.backend)
}

// ArgMax returns the multi-index of the maximum element.
func (t *Tensor) ArgMax() []int { return t.backend.ArgMax(t.raw) }

// ArgMin returns the multi-index of the minimum element.
func (t *Tensor) ArgMin() []int { return t.backend.ArgMin(t.raw) }

// Cast converts the storage type. The result is a constant: casting is a
// storage decision, not a differentiable operation.
func (t *Tensor) Cast(dtype tensor.DataType) *Tensor {
	return NewConstant(t.backend.Cast(t.raw, dtype), t.backend)
}
