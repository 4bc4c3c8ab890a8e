package tensor

import (
	"github.com/pkg/errors"
)

// ToScalar converts a single-element tensor to a plain float64. Non-scalar
// tensors are an unsupported conversion.
func (r *RawTensor) ToScalar() (float64, error) {
	if r.NumElements() != 1 {
		return 0, errors.Errorf("cannot convert tensor of shape %v to a scalar value", r.shape)
	}
	return r.Float64At(0), nil
}

// ToNested converts the tensor into a plain nested array of float64 values:
// []float64 for rank 1 up to [][][][]float64 for rank 4. Tensors with more
// than 4 axes are an unsupported conversion. Rank-0 tensors convert via
// ToScalar.
func (r *RawTensor) ToNested() (any, error) {
	s := r.shape
	switch len(s) {
	case 0:
		return r.ToScalar()
	case 1:
		out := make([]float64, s[0])
		for i := range out {
			out[i] = r.Float64At(i)
		}
		return out, nil
	case 2:
		out := make([][]float64, s[0])
		for i := range out {
			out[i] = make([]float64, s[1])
			for j := range out[i] {
				out[i][j] = r.Float64At(i*s[1] + j)
			}
		}
		return out, nil
	case 3:
		out := make([][][]float64, s[0])
		for i := range out {
			out[i] = make([][]float64, s[1])
			for j := range out[i] {
				out[i][j] = make([]float64, s[2])
				for k := range out[i][j] {
					out[i][j][k] = r.Float64At((i*s[1]+j)*s[2] + k)
				}
			}
		}
		return out, nil
	case 4:
		out := make([][][][]float64, s[0])
		for i := range out {
			out[i] = make([][][]float64, s[1])
			for j := range out[i] {
				out[i][j] = make([][]float64, s[2])
				for k := range out[i][j] {
					out[i][j][k] = make([]float64, s[3])
					for l := range out[i][j][k] {
						out[i][j][k][l] = r.Float64At(((i*s[1]+j)*s[2]+k)*s[3] + l)
					}
				}
			}
		}
		return out, nil
	default:
		return nil, errors.Errorf("cannot convert tensor with %d axes to a plain array (4 axes maximum)", len(s))
	}
}

// Float64s copies the whole buffer out as float64 values regardless of the
// storage dtype.
func (r *RawTensor) Float64s() []float64 {
	out := make([]float64, r.NumElements())
	for i := range out {
		out[i] = r.Float64At(i)
	}
	return out
}
