package autodiff

import (
	"github.com/fwaris/DiffSharp/internal/tensor"
)

// Reduction and linear-algebra derivative rules.

func init() {
	register(OpSum, opFuncs{
		name: "sum",
		compute: func(op *Op, bk tensor.Backend, in []*tensor.RawTensor) *tensor.RawTensor {
			return bk.Sum(in[0])
		},
		forward: func(op *Op, bk tensor.Backend, out *tensor.RawTensor, in, tan []*tensor.RawTensor) *tensor.RawTensor {
			return bk.Sum(tan[0])
		},
		// Every input element contributed with weight 1, so the scalar
		// adjoint broadcasts over the input shape.
		reverse: func(op *Op, bk tensor.Backend, out *tensor.RawTensor, in []*tensor.RawTensor, adj *tensor.RawTensor) []*tensor.RawTensor {
			p := in[0]
			return []*tensor.RawTensor{tensor.Full(p.Shape(), adj.Float64At(0), p.DType(), p.Device())}
		},
	})

	register(OpMean, opFuncs{
		name: "mean",
		compute: func(op *Op, bk tensor.Backend, in []*tensor.RawTensor) *tensor.RawTensor {
			return bk.Mean(in[0])
		},
		forward: func(op *Op, bk tensor.Backend, out *tensor.RawTensor, in, tan []*tensor.RawTensor) *tensor.RawTensor {
			return bk.Mean(tan[0])
		},
		reverse: func(op *Op, bk tensor.Backend, out *tensor.RawTensor, in []*tensor.RawTensor, adj *tensor.RawTensor) []*tensor.RawTensor {
			p := in[0]
			g := adj.Float64At(0) / float64(p.NumElements())
			return []*tensor.RawTensor{tensor.Full(p.Shape(), g, p.DType(), p.Device())}
		},
	})

	register(OpMatMul, opFuncs{
		name: "matmul",
		compute: func(op *Op, bk tensor.Backend, in []*tensor.RawTensor) *tensor.RawTensor {
			return bk.MatMul(in[0], in[1])
		},
		forward: func(op *Op, bk tensor.Backend, out *tensor.RawTensor, in, tan []*tensor.RawTensor) *tensor.RawTensor {
			return bk.Add(bk.MatMul(tan[0], in[1]), bk.MatMul(in[0], tan[1]))
		},
		// dA = G B^T, dB = A^T G
		reverse: func(op *Op, bk tensor.Backend, out *tensor.RawTensor, in []*tensor.RawTensor, adj *tensor.RawTensor) []*tensor.RawTensor {
			return []*tensor.RawTensor{
				bk.MatMul(adj, bk.Transpose(in[1])),
				bk.MatMul(bk.Transpose(in[0]), adj),
			}
		},
	})

	register(OpTranspose, opFuncs{
		name: "transpose",
		compute: func(op *Op, bk tensor.Backend, in []*tensor.RawTensor) *tensor.RawTensor {
			return bk.Transpose(in[0])
		},
		forward: func(op *Op, bk tensor.Backend, out *tensor.RawTensor, in, tan []*tensor.RawTensor) *tensor.RawTensor {
			return bk.Transpose(tan[0])
		},
		reverse: func(op *Op, bk tensor.Backend, out *tensor.RawTensor, in []*tensor.RawTensor, adj *tensor.RawTensor) []*tensor.RawTensor {
			return []*tensor.RawTensor{bk.Transpose(adj)}
		},
	})
}
