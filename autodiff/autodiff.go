// Copyright 2026 The DiffSharp Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package autodiff exposes the differentiable tensor facade: forward-mode
// tangent propagation and reverse-mode (tape) differentiation over any
// compute backend.
//
// Reverse mode records operations on a Graph and replays them backwards:
//
//	import (
//	    "github.com/fwaris/DiffSharp/autodiff"
//	    "github.com/fwaris/DiffSharp/backend/dense"
//	    "github.com/fwaris/DiffSharp/tensor"
//	)
//
//	bk := dense.New()
//	g := autodiff.NewGraph(bk)
//	raw, _ := tensor.FromFloat64s([]float64{1, 2, 3}, tensor.Shape{3}, tensor.CPU)
//	x := g.Variable(raw)
//	y := x.Mul(x).Sum()
//	y.Backward(nil)
//	grad := x.Adjoint() // 2x
//
// Forward mode carries a tangent through the same operations:
//
//	x := autodiff.NewForward(raw, tangent, bk)
//	y := x.Exp()
//	dy := y.Tangent()
package autodiff

import (
	"github.com/fwaris/DiffSharp/internal/autodiff"
	"github.com/fwaris/DiffSharp/internal/tensor"
)

// Tensor is the differentiable facade over a raw tensor. Operations on it
// derive the result's differentiation role from the operands.
type Tensor = autodiff.Tensor

// Graph is the reverse-mode tape: an arena of recorded operations replayed
// backwards by Backward.
type Graph = autodiff.Graph

// Role says how a Tensor participates in differentiation.
type Role = autodiff.Role

const (
	Constant = autodiff.Constant
	Forward  = autodiff.Forward
	Reverse  = autodiff.Reverse
)

// ConvOptions carries the optional convolution parameters; the zero value
// means stride 1 and no padding.
type ConvOptions = autodiff.ConvOptions

// PoolOptions carries the optional pooling parameters; the zero value
// means stride equal to the kernel, no padding, floor rounding, and
// padding counted in averages.
type PoolOptions = autodiff.PoolOptions

// NewGraph creates an empty tape bound to a backend.
func NewGraph(bk tensor.Backend) *Graph {
	return autodiff.NewGraph(bk)
}

// NewConstant wraps a raw tensor as a non-differentiable value.
func NewConstant(raw *tensor.RawTensor, bk tensor.Backend) *Tensor {
	return autodiff.NewConstant(raw, bk)
}

// NewForward pairs a primal with a tangent for forward-mode propagation.
func NewForward(primal, tangent *tensor.RawTensor, bk tensor.Backend) *Tensor {
	return autodiff.NewForward(primal, tangent, bk)
}

// Stack joins same-shape tensors along a new leading axis.
func Stack(ts []*Tensor) *Tensor {
	return autodiff.Stack(ts)
}
