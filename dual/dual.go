// Copyright 2026 The DiffSharp Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package dual exposes scalar forward-mode differentiation to arbitrary
// order via lazy derivative towers.
//
// A DualN pairs a value with a suspended computation of its derivative,
// itself a DualN, so any derivative order of a composite function is one
// more Derivative() call away and nothing deeper is ever computed:
//
//	f := func(x *dual.DualN) *dual.DualN { return x.Mul(x).Mul(x) }
//	dual.DiffAll(3, f, 2) // [8 12 12 6]
package dual

import (
	"github.com/fwaris/DiffSharp/internal/dual"
)

// DualN is one level of a lazy derivative tower.
type DualN = dual.DualN

// Const lifts a constant: every derivative is zero.
func Const(v float64) *DualN { return dual.Const(v) }

// Var lifts the variable of differentiation: derivative one, then zeros.
func Var(v float64) *DualN { return dual.Var(v) }

// WithTangent lifts a value with an explicit first derivative.
func WithTangent(v, dv float64) *DualN { return dual.WithTangent(v, dv) }

// Diff returns f'(x).
func Diff(f func(*DualN) *DualN, x float64) float64 { return dual.Diff(f, x) }

// Diff2 returns f''(x).
func Diff2(f func(*DualN) *DualN, x float64) float64 { return dual.Diff2(f, x) }

// DiffN returns the nth derivative of f at x.
func DiffN(n int, f func(*DualN) *DualN, x float64) float64 { return dual.DiffN(n, f, x) }

// DiffAll returns f(x) and its first n derivatives.
func DiffAll(n int, f func(*DualN) *DualN, x float64) []float64 { return dual.DiffAll(n, f, x) }

// Grad returns the gradient of a scalar function of several variables.
func Grad(f func([]*DualN) *DualN, x []float64) []float64 { return dual.Grad(f, x) }

// Jvp returns the directional derivative of f at x along v.
func Jvp(f func([]*DualN) *DualN, x, v []float64) float64 { return dual.Jvp(f, x, v) }

// Jacobian returns the Jacobian of a vector function.
func Jacobian(f func([]*DualN) []*DualN, x []float64) [][]float64 { return dual.Jacobian(f, x) }

// JacobianT returns the transposed Jacobian, one row per input.
func JacobianT(f func([]*DualN) []*DualN, x []float64) [][]float64 { return dual.JacobianT(f, x) }

// Laplacian returns the sum of second partials of f at x.
func Laplacian(f func([]*DualN) *DualN, x []float64) float64 { return dual.Laplacian(f, x) }
