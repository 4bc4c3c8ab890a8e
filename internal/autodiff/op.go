// Package autodiff layers forward-mode and reverse-mode differentiation on
// top of the raw kernel contract. Every differentiable operation is an
// (OpKind, parameters) pair dispatched through a table of three functions:
// compute runs the primal kernel, forward propagates tangents, and reverse
// turns an output adjoint into per-operand input adjoints. The rules are
// stateless: everything reverse needs is recomputed from the recorded
// operand primals.
package autodiff

import (
	"github.com/gomlx/exceptions"

	"github.com/fwaris/DiffSharp/internal/tensor"
)

// OpKind identifies a differentiable operation.
type OpKind int

const (
	OpAdd OpKind = iota
	OpSub
	OpMul
	OpDiv
	OpPow
	OpAddScalar
	OpSubScalar
	OpMulScalar
	OpDivScalar
	OpPowScalar
	OpNeg
	OpAbs
	OpExp
	OpLog
	OpSqrt
	OpSin
	OpCos
	OpTanh
	OpSum
	OpMean
	OpMatMul
	OpTranspose
	OpReshape
	OpSqueeze
	OpUnsqueeze
	OpFlip
	OpDilate
	OpUndilate
	OpStack
	OpSlice
	OpConv1D
	OpConv2D
	OpAvgPool2D
	OpAvgPool2DReverse
	OpMaxPool2D
)

// Op is one bound operation: a kind plus the non-tensor parameters the
// kernels need. Only the fields relevant to the kind are set; an Op is
// immutable once applied.
type Op struct {
	Kind OpKind

	Scalar    float64      // *Scalar variants
	Axis      int          // Squeeze, Unsqueeze
	Axes      []int        // Flip
	Dilations []int        // Dilate, Undilate
	Bounds    [][2]int     // Slice
	Shape     tensor.Shape // Reshape target

	Stride  int // convolution
	Padding int // convolution

	PoolKernel  [2]int // pooling
	PoolStride  [2]int
	PoolPadding [2]int
	CeilMode    bool
	IncludePad  bool
}

// opFuncs is one dispatch-table entry: the primal kernel plus its two
// derivative rules.
//
// compute consumes operand primals and produces the output primal. forward
// receives the operand primals, the output primal and one tangent per
// operand (constants contribute zero tangents) and produces the output
// tangent. reverse receives the operand primals, the output primal and the
// output adjoint, and produces one input adjoint per operand.
type opFuncs struct {
	name    string
	compute func(op *Op, bk tensor.Backend, in []*tensor.RawTensor) *tensor.RawTensor
	forward func(op *Op, bk tensor.Backend, out *tensor.RawTensor, in, tan []*tensor.RawTensor) *tensor.RawTensor
	reverse func(op *Op, bk tensor.Backend, out *tensor.RawTensor, in []*tensor.RawTensor, adj *tensor.RawTensor) []*tensor.RawTensor
}

var opTable = map[OpKind]opFuncs{}

// register installs one dispatch-table entry. Called from the per-domain
// rule files at init time; a duplicate kind is a programming error.
func register(kind OpKind, fns opFuncs) {
	if _, dup := opTable[kind]; dup {
		exceptions.Panicf("autodiff: duplicate rules for op %q", fns.name)
	}
	opTable[kind] = fns
}

// rules looks up the dispatch-table entry for a kind.
func rules(kind OpKind) opFuncs {
	fns, ok := opTable[kind]
	if !ok {
		exceptions.Panicf("autodiff: no rules registered for op kind %d", kind)
	}
	return fns
}
