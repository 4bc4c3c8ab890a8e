// Package dense is the CPU implementation of the tensor.Backend kernel
// contract: dense row-major buffers, direct-loop kernels, no parallelism.
// Every kernel runs to completion on the calling goroutine and returns a
// fresh tensor.
package dense

import (
	"math/rand/v2"

	"github.com/gomlx/exceptions"

	"github.com/fwaris/DiffSharp/internal/tensor"
)

// floatT constrains the numeric kernels to the differentiable element types.
type floatT interface {
	~float32 | ~float64
}

// Backend is the dense CPU backend. It owns the process's pseudorandom
// source for the random-tensor and multinomial kernels; the source is not
// synchronized, so a Backend must not be shared across concurrent callers
// without external locking.
type Backend struct {
	device tensor.Device
	src    rand.Source
}

// New creates a dense backend with a time-seeded random source.
func New() *Backend {
	return &Backend{device: tensor.CPU, src: rand.NewPCG(rand.Uint64(), rand.Uint64())}
}

// NewWithSeed creates a dense backend with a deterministic random source.
func NewWithSeed(seed uint64) *Backend {
	return &Backend{device: tensor.CPU, src: rand.NewPCG(seed, seed)}
}

// Name returns the backend name.
func (b *Backend) Name() string {
	return "Dense"
}

// Device returns the compute device.
func (b *Backend) Device() tensor.Device {
	return b.device
}

// Compile-time check that Backend implements the kernel contract.
var _ tensor.Backend = (*Backend)(nil)

// mustNew allocates an output tensor or fails the calling kernel.
func mustNew(shape tensor.Shape, dtype tensor.DataType, device tensor.Device) *tensor.RawTensor {
	out, err := tensor.NewRaw(shape, dtype, device)
	if err != nil {
		exceptions.Panicf("dense: cannot allocate output tensor: %v", err)
	}
	return out
}

// checkSameShape fails the calling kernel when two operands disagree in
// shape or dtype.
func checkSameShape(name string, a, b *tensor.RawTensor) {
	if !a.Shape().Equal(b.Shape()) {
		exceptions.Panicf("dense: %s: mismatched shapes %v vs %v", name, a.Shape(), b.Shape())
	}
	if a.DType() != b.DType() {
		exceptions.Panicf("dense: %s: mismatched dtypes %s vs %s", name, a.DType(), b.DType())
	}
	if a.Device() != b.Device() {
		exceptions.Panicf("dense: %s: mismatched devices %s vs %s", name, a.Device(), b.Device())
	}
}

// checkFloat fails the calling kernel for non-differentiable storage types.
// Float16 storage must be cast up before numeric kernels run.
func checkFloat(name string, a *tensor.RawTensor) {
	if a.DType() != tensor.Float32 && a.DType() != tensor.Float64 {
		exceptions.Panicf("dense: %s: unsupported dtype %s (cast to float32 or float64 first)", name, a.DType())
	}
}
