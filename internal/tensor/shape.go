package tensor

import "fmt"

// Shape represents the dimensions of a tensor in the pure-integer mode used
// by the dense backend. The symbolic-capable mode lives in internal/shapes
// and behaves identically when every dimension is concrete.
type Shape []int

// NumElements returns the total number of elements in the tensor.
func (s Shape) NumElements() int {
	if len(s) == 0 {
		return 1 // scalar
	}
	n := 1
	for _, dim := range s {
		n *= dim
	}
	return n
}

// Validate checks if the shape is valid (all dimensions >= 0).
func (s Shape) Validate() error {
	for i, dim := range s {
		if dim < 0 {
			return fmt.Errorf("invalid dimension at index %d: %d (must be >= 0)", i, dim)
		}
	}
	return nil
}

// Equal checks if two shapes are equal.
func (s Shape) Equal(other Shape) bool {
	if len(s) != len(other) {
		return false
	}
	for i := range s {
		if s[i] != other[i] {
			return false
		}
	}
	return true
}

// Clone returns a copy of the shape.
func (s Shape) Clone() Shape {
	clone := make(Shape, len(s))
	copy(clone, s)
	return clone
}

// ComputeStrides calculates row-major strides for the shape.
// Strides define memory layout: stride[i] = product of all dimensions after i.
func (s Shape) ComputeStrides() []int {
	strides := make([]int, len(s))
	if len(s) == 0 {
		return strides
	}
	strides[len(s)-1] = 1
	for i := len(s) - 2; i >= 0; i-- {
		strides[i] = strides[i+1] * s[i+1]
	}
	return strides
}

// FlatIndex converts a multi-index into the row-major flat offset. Every
// indexed kernel (slicing, flipping, dilation, convolution) goes through
// this mapping or its strides.
func (s Shape) FlatIndex(index []int) int {
	flat := 0
	strides := s.ComputeStrides()
	for i, ix := range index {
		flat += ix * strides[i]
	}
	return flat
}

// MultiIndex converts a row-major flat offset back into a multi-index.
// It is the inverse of FlatIndex for all valid indices.
func (s Shape) MultiIndex(flat int) []int {
	index := make([]int, len(s))
	strides := s.ComputeStrides()
	for i := range s {
		index[i] = flat / strides[i]
		flat %= strides[i]
	}
	return index
}
