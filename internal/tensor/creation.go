package tensor

import (
	"github.com/pkg/errors"
	"github.com/x448/float16"
)

// Zeros creates a zero-filled tensor.
func Zeros(shape Shape, dtype DataType, device Device) *RawTensor {
	raw, err := NewRaw(shape, dtype, device)
	if err != nil {
		panic(err) // shape validation should prevent this
	}
	return raw
}

// Ones creates a tensor filled with ones.
func Ones(shape Shape, dtype DataType, device Device) *RawTensor {
	return Full(shape, 1, dtype, device)
}

// Full creates a tensor filled with a specific value.
func Full(shape Shape, value float64, dtype DataType, device Device) *RawTensor {
	raw := Zeros(shape, dtype, device)
	for i := 0; i < raw.NumElements(); i++ {
		raw.SetFloat64At(i, value)
	}
	return raw
}

// FromFloat32s creates a Float32 tensor from a Go slice. The slice is copied.
func FromFloat32s(data []float32, shape Shape, device Device) (*RawTensor, error) {
	if shape.NumElements() != len(data) {
		return nil, errors.Errorf("shape %v requires %d elements, but got %d", shape, shape.NumElements(), len(data))
	}
	raw, err := NewRaw(shape, Float32, device)
	if err != nil {
		return nil, err
	}
	copy(raw.AsFloat32(), data)
	return raw, nil
}

// FromFloat64s creates a Float64 tensor from a Go slice. The slice is copied.
func FromFloat64s(data []float64, shape Shape, device Device) (*RawTensor, error) {
	if shape.NumElements() != len(data) {
		return nil, errors.Errorf("shape %v requires %d elements, but got %d", shape, shape.NumElements(), len(data))
	}
	raw, err := NewRaw(shape, Float64, device)
	if err != nil {
		return nil, err
	}
	copy(raw.AsFloat64(), data)
	return raw, nil
}

// FromFloat16s creates a Float16 tensor from float32 values, converting each
// element to half precision.
func FromFloat16s(data []float32, shape Shape, device Device) (*RawTensor, error) {
	if shape.NumElements() != len(data) {
		return nil, errors.Errorf("shape %v requires %d elements, but got %d", shape, shape.NumElements(), len(data))
	}
	raw, err := NewRaw(shape, Float16, device)
	if err != nil {
		return nil, err
	}
	out := raw.AsFloat16()
	for i, v := range data {
		out[i] = float16.Fromfloat32(v)
	}
	return raw, nil
}

// Arange creates a 1-D tensor with values start, start+1, ..., end-1.
func Arange(start, end float64, dtype DataType, device Device) (*RawTensor, error) {
	n := int(end - start)
	if n <= 0 {
		return nil, errors.Errorf("arange: end %v must be greater than start %v", end, start)
	}
	raw := Zeros(Shape{n}, dtype, device)
	for i := 0; i < n; i++ {
		raw.SetFloat64At(i, start+float64(i))
	}
	return raw, nil
}

// Eye creates a 2-D identity matrix.
func Eye(n int, dtype DataType, device Device) *RawTensor {
	raw := Zeros(Shape{n, n}, dtype, device)
	for i := 0; i < n; i++ {
		raw.SetFloat64At(i*n+i, 1)
	}
	return raw
}
