// Package tensor provides the dense storage layer: the pure-integer Shape,
// the RawTensor flat buffer, and the Backend kernel contract every compute
// backend must implement.
package tensor

// DataType represents runtime type information for tensors.
type DataType int

// Supported data types.
const (
	Float16 DataType = iota
	Float32
	Float64
	Int32
	Bool
)

// Size returns the byte size of one element.
func (dt DataType) Size() int {
	switch dt {
	case Float16:
		return 2
	case Float32, Int32:
		return 4
	case Float64:
		return 8
	case Bool:
		return 1
	default:
		panic("unknown data type")
	}
}

// IsFloat reports whether the type participates in differentiable kernels.
func (dt DataType) IsFloat() bool {
	return dt == Float16 || dt == Float32 || dt == Float64
}

// String returns a human-readable name for the data type.
func (dt DataType) String() string {
	switch dt {
	case Float16:
		return "float16"
	case Float32:
		return "float32"
	case Float64:
		return "float64"
	case Int32:
		return "int32"
	case Bool:
		return "bool"
	default:
		return "unknown"
	}
}

// Device tags where a tensor's buffer lives. The dense backend is CPU-only;
// the tag exists so alternate backends can be substituted behind the same
// Backend contract.
type Device int

// Supported devices.
const (
	CPU Device = iota
)

// String returns a human-readable device name.
func (d Device) String() string {
	switch d {
	case CPU:
		return "CPU"
	default:
		return "Unknown"
	}
}
