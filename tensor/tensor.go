// Copyright 2026 The DiffSharp Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package tensor exposes the dense tensor value type and the kernel
// contract compute backends implement.
//
// A RawTensor is an immutable dense array: a shape, a storage type and an
// exclusively-owned row-major buffer. Every operation allocates a fresh
// result; nothing mutates in place. Differentiation lives one layer up in
// the autodiff package, which drives these kernels through the Backend
// interface.
//
// Example:
//
//	import (
//	    "github.com/fwaris/DiffSharp/backend/dense"
//	    "github.com/fwaris/DiffSharp/tensor"
//	)
//
//	bk := dense.New()
//	x, _ := tensor.FromFloat64s([]float64{1, 2, 3, 4}, tensor.Shape{2, 2}, tensor.CPU)
//	y := bk.MatMul(x, x)
package tensor

import (
	"github.com/fwaris/DiffSharp/internal/tensor"
)

// Shape is a concrete tensor shape: one extent per axis, row-major layout.
type Shape = tensor.Shape

// RawTensor is the dense tensor value: shape, storage type and an
// exclusively-owned flat buffer.
type RawTensor = tensor.RawTensor

// DataType identifies the element storage type.
type DataType = tensor.DataType

// Device identifies where tensor data lives.
type Device = tensor.Device

// Backend is the kernel contract compute backends implement. Any
// implementation with the same observable behavior is substitutable
// behind the differentiable facade.
type Backend = tensor.Backend

const (
	Float16 = tensor.Float16
	Float32 = tensor.Float32
	Float64 = tensor.Float64
	Int32   = tensor.Int32
	Bool    = tensor.Bool
)

const (
	CPU = tensor.CPU
)

// NewRaw creates a zero-filled tensor with the given shape and type.
func NewRaw(shape Shape, dtype DataType, device Device) (*RawTensor, error) {
	return tensor.NewRaw(shape, dtype, device)
}

// Zeros creates a zero-filled tensor.
func Zeros(shape Shape, dtype DataType, device Device) *RawTensor {
	return tensor.Zeros(shape, dtype, device)
}

// Ones creates a tensor filled with ones.
func Ones(shape Shape, dtype DataType, device Device) *RawTensor {
	return tensor.Ones(shape, dtype, device)
}

// Full creates a tensor filled with a specific value.
func Full(shape Shape, value float64, dtype DataType, device Device) *RawTensor {
	return tensor.Full(shape, value, dtype, device)
}

// FromFloat32s creates a Float32 tensor from a Go slice. The slice is copied.
func FromFloat32s(data []float32, shape Shape, device Device) (*RawTensor, error) {
	return tensor.FromFloat32s(data, shape, device)
}

// FromFloat64s creates a Float64 tensor from a Go slice. The slice is copied.
func FromFloat64s(data []float64, shape Shape, device Device) (*RawTensor, error) {
	return tensor.FromFloat64s(data, shape, device)
}

// FromFloat16s creates a half-precision tensor from float32 values.
func FromFloat16s(data []float32, shape Shape, device Device) (*RawTensor, error) {
	return tensor.FromFloat16s(data, shape, device)
}

// Arange creates a 1-D tensor with values start, start+1, ..., end-1.
func Arange(start, end float64, dtype DataType, device Device) (*RawTensor, error) {
	return tensor.Arange(start, end, dtype, device)
}

// Eye creates a 2-D identity matrix.
func Eye(n int, dtype DataType, device Device) *RawTensor {
	return tensor.Eye(n, dtype, device)
}
