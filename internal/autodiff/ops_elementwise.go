package autodiff

import (
	"github.com/fwaris/DiffSharp/internal/tensor"
)

// Element-wise derivative rules. Each binary rule produces one adjoint per
// operand; fan-in of the two contributions happens in the tape, not here.

func init() {
	register(OpAdd, opFuncs{
		name: "add",
		compute: func(op *Op, bk tensor.Backend, in []*tensor.RawTensor) *tensor.RawTensor {
			return bk.Add(in[0], in[1])
		},
		forward: func(op *Op, bk tensor.Backend, out *tensor.RawTensor, in, tan []*tensor.RawTensor) *tensor.RawTensor {
			return bk.Add(tan[0], tan[1])
		},
		reverse: func(op *Op, bk tensor.Backend, out *tensor.RawTensor, in []*tensor.RawTensor, adj *tensor.RawTensor) []*tensor.RawTensor {
			return []*tensor.RawTensor{adj, adj}
		},
	})

	register(OpSub, opFuncs{
		name: "sub",
		compute: func(op *Op, bk tensor.Backend, in []*tensor.RawTensor) *tensor.RawTensor {
			return bk.Sub(in[0], in[1])
		},
		forward: func(op *Op, bk tensor.Backend, out *tensor.RawTensor, in, tan []*tensor.RawTensor) *tensor.RawTensor {
			return bk.Sub(tan[0], tan[1])
		},
		reverse: func(op *Op, bk tensor.Backend, out *tensor.RawTensor, in []*tensor.RawTensor, adj *tensor.RawTensor) []*tensor.RawTensor {
			return []*tensor.RawTensor{adj, bk.Neg(adj)}
		},
	})

	register(OpMul, opFuncs{
		name: "mul",
		compute: func(op *Op, bk tensor.Backend, in []*tensor.RawTensor) *tensor.RawTensor {
			return bk.Mul(in[0], in[1])
		},
		forward: func(op *Op, bk tensor.Backend, out *tensor.RawTensor, in, tan []*tensor.RawTensor) *tensor.RawTensor {
			return bk.Add(bk.Mul(tan[0], in[1]), bk.Mul(in[0], tan[1]))
		},
		reverse: func(op *Op, bk tensor.Backend, out *tensor.RawTensor, in []*tensor.RawTensor, adj *tensor.RawTensor) []*tensor.RawTensor {
			return []*tensor.RawTensor{bk.Mul(adj, in[1]), bk.Mul(adj, in[0])}
		},
	})

	register(OpDiv, opFuncs{
		name: "div",
		compute: func(op *Op, bk tensor.Backend, in []*tensor.RawTensor) *tensor.RawTensor {
			return bk.Div(in[0], in[1])
		},
		// d(a/b) = da/b - (a/b) db/b
		forward: func(op *Op, bk tensor.Backend, out *tensor.RawTensor, in, tan []*tensor.RawTensor) *tensor.RawTensor {
			return bk.Sub(bk.Div(tan[0], in[1]), bk.Div(bk.Mul(out, tan[1]), in[1]))
		},
		reverse: func(op *Op, bk tensor.Backend, out *tensor.RawTensor, in []*tensor.RawTensor, adj *tensor.RawTensor) []*tensor.RawTensor {
			return []*tensor.RawTensor{
				bk.Div(adj, in[1]),
				bk.Neg(bk.Div(bk.Mul(adj, out), in[1])),
			}
		},
	})

	register(OpPow, opFuncs{
		name: "pow",
		compute: func(op *Op, bk tensor.Backend, in []*tensor.RawTensor) *tensor.RawTensor {
			return bk.Pow(in[0], in[1])
		},
		// d(a^b) = a^b * (db ln a + b da / a)
		forward: func(op *Op, bk tensor.Backend, out *tensor.RawTensor, in, tan []*tensor.RawTensor) *tensor.RawTensor {
			return bk.Mul(out, bk.Add(
				bk.Mul(tan[1], bk.Log(in[0])),
				bk.Div(bk.Mul(in[1], tan[0]), in[0]),
			))
		},
		reverse: func(op *Op, bk tensor.Backend, out *tensor.RawTensor, in []*tensor.RawTensor, adj *tensor.RawTensor) []*tensor.RawTensor {
			return []*tensor.RawTensor{
				bk.Mul(adj, bk.Mul(in[1], bk.Pow(in[0], bk.SubScalar(in[1], 1)))),
				bk.Mul(adj, bk.Mul(out, bk.Log(in[0]))),
			}
		},
	})

	register(OpAddScalar, opFuncs{
		name: "add_scalar",
		compute: func(op *Op, bk tensor.Backend, in []*tensor.RawTensor) *tensor.RawTensor {
			return bk.AddScalar(in[0], op.Scalar)
		},
		forward: func(op *Op, bk tensor.Backend, out *tensor.RawTensor, in, tan []*tensor.RawTensor) *tensor.RawTensor {
			return tan[0]
		},
		reverse: func(op *Op, bk tensor.Backend, out *tensor.RawTensor, in []*tensor.RawTensor, adj *tensor.RawTensor) []*tensor.RawTensor {
			return []*tensor.RawTensor{adj}
		},
	})

	register(OpSubScalar, opFuncs{
		name: "sub_scalar",
		compute: func(op *Op, bk tensor.Backend, in []*tensor.RawTensor) *tensor.RawTensor {
			return bk.SubScalar(in[0], op.Scalar)
		},
		forward: func(op *Op, bk tensor.Backend, out *tensor.RawTensor, in, tan []*tensor.RawTensor) *tensor.RawTensor {
			return tan[0]
		},
		reverse: func(op *Op, bk tensor.Backend, out *tensor.RawTensor, in []*tensor.RawTensor, adj *tensor.RawTensor) []*tensor.RawTensor {
			return []*tensor.RawTensor{adj}
		},
	})

	register(OpMulScalar, opFuncs{
		name: "mul_scalar",
		compute: func(op *Op, bk tensor.Backend, in []*tensor.RawTensor) *tensor.RawTensor {
			return bk.MulScalar(in[0], op.Scalar)
		},
		forward: func(op *Op, bk tensor.Backend, out *tensor.RawTensor, in, tan []*tensor.RawTensor) *tensor.RawTensor {
			return bk.MulScalar(tan[0], op.Scalar)
		},
		reverse: func(op *Op, bk tensor.Backend, out *tensor.RawTensor, in []*tensor.RawTensor, adj *tensor.RawTensor) []*tensor.RawTensor {
			return []*tensor.RawTensor{bk.MulScalar(adj, op.Scalar)}
		},
	})

	register(OpDivScalar, opFuncs{
		name: "div_scalar",
		compute: func(op *Op, bk tensor.Backend, in []*tensor.RawTensor) *tensor.RawTensor {
			return bk.DivScalar(in[0], op.Scalar)
		},
		forward: func(op *Op, bk tensor.Backend, out *tensor.RawTensor, in, tan []*tensor.RawTensor) *tensor.RawTensor {
			return bk.DivScalar(tan[0], op.Scalar)
		},
		reverse: func(op *Op, bk tensor.Backend, out *tensor.RawTensor, in []*tensor.RawTensor, adj *tensor.RawTensor) []*tensor.RawTensor {
			return []*tensor.RawTensor{bk.DivScalar(adj, op.Scalar)}
		},
	})

	register(OpPowScalar, opFuncs{
		name: "pow_scalar",
		compute: func(op *Op, bk tensor.Backend, in []*tensor.RawTensor) *tensor.RawTensor {
			return bk.PowScalar(in[0], op.Scalar)
		},
		// d(a^s) = s a^(s-1) da
		forward: func(op *Op, bk tensor.Backend, out *tensor.RawTensor, in, tan []*tensor.RawTensor) *tensor.RawTensor {
			return bk.MulScalar(bk.Mul(tan[0], bk.PowScalar(in[0], op.Scalar-1)), op.Scalar)
		},
		reverse: func(op *Op, bk tensor.Backend, out *tensor.RawTensor, in []*tensor.RawTensor, adj *tensor.RawTensor) []*tensor.RawTensor {
			return []*tensor.RawTensor{bk.MulScalar(bk.Mul(adj, bk.PowScalar(in[0], op.Scalar-1)), op.Scalar)}
		},
	})

	register(OpNeg, opFuncs{
		name: "neg",
		compute: func(op *Op, bk tensor.Backend, in []*tensor.RawTensor) *tensor.RawTensor {
			return bk.Neg(in[0])
		},
		forward: func(op *Op, bk tensor.Backend, out *tensor.RawTensor, in, tan []*tensor.RawTensor) *tensor.RawTensor {
			return bk.Neg(tan[0])
		},
		reverse: func(op *Op, bk tensor.Backend, out *tensor.RawTensor, in []*tensor.RawTensor, adj *tensor.RawTensor) []*tensor.RawTensor {
			return []*tensor.RawTensor{bk.Neg(adj)}
		},
	})

	register(OpAbs, opFuncs{
		name: "abs",
		compute: func(op *Op, bk tensor.Backend, in []*tensor.RawTensor) *tensor.RawTensor {
			return bk.Abs(in[0])
		},
		forward: func(op *Op, bk tensor.Backend, out *tensor.RawTensor, in, tan []*tensor.RawTensor) *tensor.RawTensor {
			return bk.Mul(tan[0], bk.Sign(in[0]))
		},
		reverse: func(op *Op, bk tensor.Backend, out *tensor.RawTensor, in []*tensor.RawTensor, adj *tensor.RawTensor) []*tensor.RawTensor {
			return []*tensor.RawTensor{bk.Mul(adj, bk.Sign(in[0]))}
		},
	})

	register(OpExp, opFuncs{
		name: "exp",
		compute: func(op *Op, bk tensor.Backend, in []*tensor.RawTensor) *tensor.RawTensor {
			return bk.Exp(in[0])
		},
		forward: func(op *Op, bk tensor.Backend, out *tensor.RawTensor, in, tan []*tensor.RawTensor) *tensor.RawTensor {
			return bk.Mul(tan[0], out)
		},
		reverse: func(op *Op, bk tensor.Backend, out *tensor.RawTensor, in []*tensor.RawTensor, adj *tensor.RawTensor) []*tensor.RawTensor {
			return []*tensor.RawTensor{bk.Mul(adj, out)}
		},
	})

	register(OpLog, opFuncs{
		name: "log",
		compute: func(op *Op, bk tensor.Backend, in []*tensor.RawTensor) *tensor.RawTensor {
			return bk.Log(in[0])
		},
		forward: func(op *Op, bk tensor.Backend, out *tensor.RawTensor, in, tan []*tensor.RawTensor) *tensor.RawTensor {
			return bk.Div(tan[0], in[0])
		},
		reverse: func(op *Op, bk tensor.Backend, out *tensor.RawTensor, in []*tensor.RawTensor, adj *tensor.RawTensor) []*tensor.RawTensor {
			return []*tensor.RawTensor{bk.Div(adj, in[0])}
		},
	})

	register(OpSqrt, opFuncs{
		name: "sqrt",
		compute: func(op *Op, bk tensor.Backend, in []*tensor.RawTensor) *tensor.RawTensor {
			return bk.Sqrt(in[0])
		},
		forward: func(op *Op, bk tensor.Backend, out *tensor.RawTensor, in, tan []*tensor.RawTensor) *tensor.RawTensor {
			return bk.Div(tan[0], bk.MulScalar(out, 2))
		},
		reverse: func(op *Op, bk tensor.Backend, out *tensor.RawTensor, in []*tensor.RawTensor, adj *tensor.RawTensor) []*tensor.RawTensor {
			return []*tensor.RawTensor{bk.Div(adj, bk.MulScalar(out, 2))}
		},
	})

	register(OpSin, opFuncs{
		name: "sin",
		compute: func(op *Op, bk tensor.Backend, in []*tensor.RawTensor) *tensor.RawTensor {
			return bk.Sin(in[0])
		},
		forward: func(op *Op, bk tensor.Backend, out *tensor.RawTensor, in, tan []*tensor.RawTensor) *tensor.RawTensor {
			return bk.Mul(tan[0], bk.Cos(in[0]))
		},
		reverse: func(op *Op, bk tensor.Backend, out *tensor.RawTensor, in []*tensor.RawTensor, adj *tensor.RawTensor) []*tensor.RawTensor {
			return []*tensor.RawTensor{bk.Mul(adj, bk.Cos(in[0]))}
		},
	})

	register(OpCos, opFuncs{
		name: "cos",
		compute: func(op *Op, bk tensor.Backend, in []*tensor.RawTensor) *tensor.RawTensor {
			return bk.Cos(in[0])
		},
		forward: func(op *Op, bk tensor.Backend, out *tensor.RawTensor, in, tan []*tensor.RawTensor) *tensor.RawTensor {
			return bk.Neg(bk.Mul(tan[0], bk.Sin(in[0])))
		},
		reverse: func(op *Op, bk tensor.Backend, out *tensor.RawTensor, in []*tensor.RawTensor, adj *tensor.RawTensor) []*tensor.RawTensor {
			return []*tensor.RawTensor{bk.Neg(bk.Mul(adj, bk.Sin(in[0])))}
		},
	})

	register(OpTanh, opFuncs{
		name: "tanh",
		compute: func(op *Op, bk tensor.Backend, in []*tensor.RawTensor) *tensor.RawTensor {
			return bk.Tanh(in[0])
		},
		forward: func(op *Op, bk tensor.Backend, out *tensor.RawTensor, in, tan []*tensor.RawTensor) *tensor.RawTensor {
			return bk.Mul(tan[0], oneMinusSquare(bk, out))
		},
		reverse: func(op *Op, bk tensor.Backend, out *tensor.RawTensor, in []*tensor.RawTensor, adj *tensor.RawTensor) []*tensor.RawTensor {
			return []*tensor.RawTensor{bk.Mul(adj, oneMinusSquare(bk, out))}
		},
	})
}

// oneMinusSquare computes 1 - x*x, the tanh derivative factor.
func oneMinusSquare(bk tensor.Backend, x *tensor.RawTensor) *tensor.RawTensor {
	return bk.Neg(bk.SubScalar(bk.Mul(x, x), 1))
}
