// Copyright 2026 The DiffSharp Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package shapes exposes the symbolic-capable shape layer: dimensions that
// are either concrete integers or named symbolic expressions, shapes built
// from them, and the inference rules the differentiable operations use.
//
// Symbolic dimensions let shape checking run before sizes are known. A
// constraint between two symbolic dimensions either binds an unknown (when
// the relation is linear in a single variable) or passes as "no
// contradiction detected"; it never proves a general relation.
//
// Example:
//
//	sc := shapes.NewScope()
//	n := sc.Var("N")
//	s := shapes.Of(n, shapes.D(3))
//	out, _ := shapes.InferMatMul(s, shapes.Of(shapes.D(3), shapes.D(4)))
package shapes

import (
	"github.com/fwaris/DiffSharp/internal/shapes"
)

// Dim is one dimension: a concrete extent or a symbolic expression.
type Dim = shapes.Dim

// Shape is a sequence of dimensions, concrete or symbolic.
type Shape = shapes.Shape

// Scope owns symbolic variables and the bindings the constraint checks
// accumulate.
type Scope = shapes.Scope

// Expr is a symbolic dimension expression tree.
type Expr = shapes.Expr

// D creates a concrete dimension.
func D(n int) Dim { return shapes.D(n) }

// Of builds a shape from dimensions.
func Of(dims ...Dim) Shape { return shapes.Of(dims...) }

// FromInts builds a fully concrete shape.
func FromInts(dims ...int) Shape { return shapes.FromInts(dims...) }

// NewScope creates an empty symbolic scope.
func NewScope() *Scope { return shapes.NewScope() }

// Inference rules shared by the differentiable operations. Each returns
// the output shape or an error naming the mismatched dimensions.

func InferElementwise(a, b Shape) (Shape, error) { return shapes.InferElementwise(a, b) }
func InferMatMul(a, b Shape) (Shape, error)      { return shapes.InferMatMul(a, b) }
func InferTranspose(a Shape) (Shape, error)      { return shapes.InferTranspose(a) }
func InferReshape(a Shape, to Shape) (Shape, error) {
	return shapes.InferReshape(a, to)
}
func InferSqueeze(a Shape, axis int) (Shape, error)   { return shapes.InferSqueeze(a, axis) }
func InferUnsqueeze(a Shape, axis int) (Shape, error) { return shapes.InferUnsqueeze(a, axis) }
func InferFlip(a Shape, axes []int) (Shape, error)    { return shapes.InferFlip(a, axes) }
func InferDilate(a Shape, dilations []int) (Shape, error) {
	return shapes.InferDilate(a, dilations)
}
func InferUndilate(a Shape, dilations []int) (Shape, error) {
	return shapes.InferUndilate(a, dilations)
}
func InferStack(ts []Shape) (Shape, error) { return shapes.InferStack(ts) }
func InferConv1D(input, kernel Shape, stride, padding int) (Shape, error) {
	return shapes.InferConv1D(input, kernel, stride, padding)
}
func InferConv2D(input, kernel Shape, stride, padding int) (Shape, error) {
	return shapes.InferConv2D(input, kernel, stride, padding)
}
func InferPool(input Shape, kernel, stride, padding []int, ceilMode bool) (Shape, error) {
	return shapes.InferPool(input, kernel, stride, padding, ceilMode)
}
