// Copyright 2026 The DiffSharp Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package dense exposes the CPU reference backend: dense row-major
// buffers and direct-loop kernels implementing the tensor.Backend
// contract.
//
// Example:
//
//	bk := dense.New()
//	g := autodiff.NewGraph(bk)
package dense

import (
	"github.com/fwaris/DiffSharp/internal/backend/dense"
)

// Backend is the dense CPU backend.
type Backend = dense.Backend

// New creates a dense backend with a time-seeded random source.
func New() *Backend {
	return dense.New()
}

// NewWithSeed creates a dense backend with a deterministic random source,
// for reproducible sampling.
func NewWithSeed(seed uint64) *Backend {
	return dense.NewWithSeed(seed)
}
