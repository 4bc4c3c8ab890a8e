package autodiff

import (
	"github.com/fwaris/DiffSharp/internal/tensor"
)

// Convolution derivative rules. Cross-correlation is bilinear in (input,
// kernel), so the forward tangent is the sum of the two one-sided
// convolutions and the reverse rule splits the adjoint into an input
// scatter and a kernel accumulation.

func init() {
	register(OpConv1D, opFuncs{
		name: "conv1d",
		compute: func(op *Op, bk tensor.Backend, in []*tensor.RawTensor) *tensor.RawTensor {
			return bk.Conv1D(in[0], in[1], op.Stride, op.Padding)
		},
		forward: func(op *Op, bk tensor.Backend, out *tensor.RawTensor, in, tan []*tensor.RawTensor) *tensor.RawTensor {
			return bk.Add(
				bk.Conv1D(tan[0], in[1], op.Stride, op.Padding),
				bk.Conv1D(in[0], tan[1], op.Stride, op.Padding),
			)
		},
		reverse: func(op *Op, bk tensor.Backend, out *tensor.RawTensor, in []*tensor.RawTensor, adj *tensor.RawTensor) []*tensor.RawTensor {
			return []*tensor.RawTensor{
				bk.Conv1DInputBackward(in[0], in[1], adj, op.Stride, op.Padding),
				bk.Conv1DKernelBackward(in[0], in[1], adj, op.Stride, op.Padding),
			}
		},
	})

	register(OpConv2D, opFuncs{
		name: "conv2d",
		compute: func(op *Op, bk tensor.Backend, in []*tensor.RawTensor) *tensor.RawTensor {
			return bk.Conv2D(in[0], in[1], op.Stride, op.Padding)
		},
		forward: func(op *Op, bk tensor.Backend, out *tensor.RawTensor, in, tan []*tensor.RawTensor) *tensor.RawTensor {
			return bk.Add(
				bk.Conv2D(tan[0], in[1], op.Stride, op.Padding),
				bk.Conv2D(in[0], tan[1], op.Stride, op.Padding),
			)
		},
		reverse: func(op *Op, bk tensor.Backend, out *tensor.RawTensor, in []*tensor.RawTensor, adj *tensor.RawTensor) []*tensor.RawTensor {
			return []*tensor.RawTensor{
				bk.Conv2DInputBackward(in[0], in[1], adj, op.Stride, op.Padding),
				bk.Conv2DKernelBackward(in[0], in[1], adj, op.Stride, op.Padding),
			}
		},
	})
}
