package autodiff

import (
	"github.com/fwaris/DiffSharp/internal/tensor"
)

// Pooling derivative rules. Average pooling and its reverse form an exact
// adjoint pair: the derivative rule of each is the other kernel with the
// same parameters, so <avgpool(x), g> == <x, avgpoolReverse(g)> for every
// x and g. Max pooling routes gradients through the recomputed window
// argmax of the input primal.

func init() {
	register(OpAvgPool2D, opFuncs{
		name: "avgpool2d",
		compute: func(op *Op, bk tensor.Backend, in []*tensor.RawTensor) *tensor.RawTensor {
			return bk.AvgPool2D(in[0], op.PoolKernel, op.PoolStride, op.PoolPadding, op.CeilMode, op.IncludePad)
		},
		forward: func(op *Op, bk tensor.Backend, out *tensor.RawTensor, in, tan []*tensor.RawTensor) *tensor.RawTensor {
			return bk.AvgPool2D(tan[0], op.PoolKernel, op.PoolStride, op.PoolPadding, op.CeilMode, op.IncludePad)
		},
		reverse: func(op *Op, bk tensor.Backend, out *tensor.RawTensor, in []*tensor.RawTensor, adj *tensor.RawTensor) []*tensor.RawTensor {
			return []*tensor.RawTensor{
				bk.AvgPool2DBackward(adj, in[0].Shape(), op.PoolKernel, op.PoolStride, op.PoolPadding, op.CeilMode, op.IncludePad),
			}
		},
	})

	register(OpAvgPool2DReverse, opFuncs{
		name: "avgpool2d_reverse",
		compute: func(op *Op, bk tensor.Backend, in []*tensor.RawTensor) *tensor.RawTensor {
			return bk.AvgPool2DBackward(in[0], unpooledShape(op, in[0].Shape()), op.PoolKernel, op.PoolStride, op.PoolPadding, op.CeilMode, op.IncludePad)
		},
		forward: func(op *Op, bk tensor.Backend, out *tensor.RawTensor, in, tan []*tensor.RawTensor) *tensor.RawTensor {
			return bk.AvgPool2DBackward(tan[0], unpooledShape(op, tan[0].Shape()), op.PoolKernel, op.PoolStride, op.PoolPadding, op.CeilMode, op.IncludePad)
		},
		reverse: func(op *Op, bk tensor.Backend, out *tensor.RawTensor, in []*tensor.RawTensor, adj *tensor.RawTensor) []*tensor.RawTensor {
			return []*tensor.RawTensor{
				bk.AvgPool2D(adj, op.PoolKernel, op.PoolStride, op.PoolPadding, op.CeilMode, op.IncludePad),
			}
		},
	})

	register(OpMaxPool2D, opFuncs{
		name: "maxpool2d",
		compute: func(op *Op, bk tensor.Backend, in []*tensor.RawTensor) *tensor.RawTensor {
			return bk.MaxPool2D(in[0], op.PoolKernel, op.PoolStride, op.PoolPadding)
		},
		forward: func(op *Op, bk tensor.Backend, out *tensor.RawTensor, in, tan []*tensor.RawTensor) *tensor.RawTensor {
			return bk.MaxPool2DTangent(in[0], tan[0], op.PoolKernel, op.PoolStride, op.PoolPadding)
		},
		reverse: func(op *Op, bk tensor.Backend, out *tensor.RawTensor, in []*tensor.RawTensor, adj *tensor.RawTensor) []*tensor.RawTensor {
			return []*tensor.RawTensor{
				bk.MaxPool2DBackward(in[0], adj, op.PoolKernel, op.PoolStride, op.PoolPadding),
			}
		},
	})
}

// unpooledShape reconstructs the minimal pre-pooling shape from a pooled
// one: (out-1)*stride + kernel - 2*padding per spatial axis.
func unpooledShape(op *Op, pooled tensor.Shape) tensor.Shape {
	return tensor.Shape{
		pooled[0],
		pooled[1],
		(pooled[2]-1)*op.PoolStride[0] + op.PoolKernel[0] - 2*op.PoolPadding[0],
		(pooled[3]-1)*op.PoolStride[1] + op.PoolKernel[1] - 2*op.PoolPadding[1],
	}
}
