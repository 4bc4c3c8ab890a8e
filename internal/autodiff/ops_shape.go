package autodiff

import (
	"github.com/fwaris/DiffSharp/internal/tensor"
)

// Structural derivative rules. These operations move elements without
// changing them, so every rule is its own inverse rearrangement: the
// adjoint of a gather is the matching scatter and vice versa.

func init() {
	register(OpReshape, opFuncs{
		name: "reshape",
		compute: func(op *Op, bk tensor.Backend, in []*tensor.RawTensor) *tensor.RawTensor {
			return bk.Reshape(in[0], op.Shape)
		},
		forward: func(op *Op, bk tensor.Backend, out *tensor.RawTensor, in, tan []*tensor.RawTensor) *tensor.RawTensor {
			return bk.Reshape(tan[0], op.Shape)
		},
		reverse: func(op *Op, bk tensor.Backend, out *tensor.RawTensor, in []*tensor.RawTensor, adj *tensor.RawTensor) []*tensor.RawTensor {
			return []*tensor.RawTensor{bk.Reshape(adj, in[0].Shape())}
		},
	})

	register(OpSqueeze, opFuncs{
		name: "squeeze",
		compute: func(op *Op, bk tensor.Backend, in []*tensor.RawTensor) *tensor.RawTensor {
			return bk.Squeeze(in[0], op.Axis)
		},
		forward: func(op *Op, bk tensor.Backend, out *tensor.RawTensor, in, tan []*tensor.RawTensor) *tensor.RawTensor {
			return bk.Squeeze(tan[0], op.Axis)
		},
		reverse: func(op *Op, bk tensor.Backend, out *tensor.RawTensor, in []*tensor.RawTensor, adj *tensor.RawTensor) []*tensor.RawTensor {
			return []*tensor.RawTensor{bk.Unsqueeze(adj, op.Axis)}
		},
	})

	register(OpUnsqueeze, opFuncs{
		name: "unsqueeze",
		compute: func(op *Op, bk tensor.Backend, in []*tensor.RawTensor) *tensor.RawTensor {
			return bk.Unsqueeze(in[0], op.Axis)
		},
		forward: func(op *Op, bk tensor.Backend, out *tensor.RawTensor, in, tan []*tensor.RawTensor) *tensor.RawTensor {
			return bk.Unsqueeze(tan[0], op.Axis)
		},
		reverse: func(op *Op, bk tensor.Backend, out *tensor.RawTensor, in []*tensor.RawTensor, adj *tensor.RawTensor) []*tensor.RawTensor {
			return []*tensor.RawTensor{bk.Squeeze(adj, op.Axis)}
		},
	})

	register(OpFlip, opFuncs{
		name: "flip",
		compute: func(op *Op, bk tensor.Backend, in []*tensor.RawTensor) *tensor.RawTensor {
			return bk.Flip(in[0], op.Axes)
		},
		forward: func(op *Op, bk tensor.Backend, out *tensor.RawTensor, in, tan []*tensor.RawTensor) *tensor.RawTensor {
			return bk.Flip(tan[0], op.Axes)
		},
		reverse: func(op *Op, bk tensor.Backend, out *tensor.RawTensor, in []*tensor.RawTensor, adj *tensor.RawTensor) []*tensor.RawTensor {
			return []*tensor.RawTensor{bk.Flip(adj, op.Axes)}
		},
	})

	register(OpDilate, opFuncs{
		name: "dilate",
		compute: func(op *Op, bk tensor.Backend, in []*tensor.RawTensor) *tensor.RawTensor {
			return bk.Dilate(in[0], op.Dilations)
		},
		forward: func(op *Op, bk tensor.Backend, out *tensor.RawTensor, in, tan []*tensor.RawTensor) *tensor.RawTensor {
			return bk.Dilate(tan[0], op.Dilations)
		},
		// The inserted gaps are constants; their adjoints drop.
		reverse: func(op *Op, bk tensor.Backend, out *tensor.RawTensor, in []*tensor.RawTensor, adj *tensor.RawTensor) []*tensor.RawTensor {
			return []*tensor.RawTensor{bk.Undilate(adj, op.Dilations)}
		},
	})

	register(OpUndilate, opFuncs{
		name: "undilate",
		compute: func(op *Op, bk tensor.Backend, in []*tensor.RawTensor) *tensor.RawTensor {
			return bk.Undilate(in[0], op.Dilations)
		},
		forward: func(op *Op, bk tensor.Backend, out *tensor.RawTensor, in, tan []*tensor.RawTensor) *tensor.RawTensor {
			return bk.Undilate(tan[0], op.Dilations)
		},
		reverse: func(op *Op, bk tensor.Backend, out *tensor.RawTensor, in []*tensor.RawTensor, adj *tensor.RawTensor) []*tensor.RawTensor {
			return []*tensor.RawTensor{bk.Dilate(adj, op.Dilations)}
		},
	})

	register(OpStack, opFuncs{
		name: "stack",
		compute: func(op *Op, bk tensor.Backend, in []*tensor.RawTensor) *tensor.RawTensor {
			return bk.Stack(in)
		},
		forward: func(op *Op, bk tensor.Backend, out *tensor.RawTensor, in, tan []*tensor.RawTensor) *tensor.RawTensor {
			return bk.Stack(tan)
		},
		reverse: func(op *Op, bk tensor.Backend, out *tensor.RawTensor, in []*tensor.RawTensor, adj *tensor.RawTensor) []*tensor.RawTensor {
			return bk.Unstack(adj)
		},
	})

	register(OpSlice, opFuncs{
		name: "slice",
		compute: func(op *Op, bk tensor.Backend, in []*tensor.RawTensor) *tensor.RawTensor {
			return bk.Slice(in[0], op.Bounds)
		},
		forward: func(op *Op, bk tensor.Backend, out *tensor.RawTensor, in, tan []*tensor.RawTensor) *tensor.RawTensor {
			return bk.Slice(tan[0], op.Bounds)
		},
		// Scatter the adjoint back into a zero tensor of the input shape;
		// elements outside the bounds received no gradient.
		reverse: func(op *Op, bk tensor.Backend, out *tensor.RawTensor, in []*tensor.RawTensor, adj *tensor.RawTensor) []*tensor.RawTensor {
			return []*tensor.RawTensor{bk.SliceScatter(adj, op.Bounds, in[0].Shape())}
		},
	})
}
