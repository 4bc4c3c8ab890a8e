package shapes

import (
	"hash/fnv"
	"strings"

	"github.com/pkg/errors"
)

// Shape is an ordered sequence of dimensions. Shapes are value types:
// created once, never mutated. Rank is len(s); element count is the product
// of all dimensions and requires every dimension to be resolvable.
type Shape []Dim

// Of builds a shape from dimension values.
func Of(dims ...Dim) Shape {
	s := make(Shape, len(dims))
	copy(s, dims)
	return s
}

// FromInts builds a fully concrete shape.
func FromInts(dims ...int) Shape {
	s := make(Shape, len(dims))
	for i, d := range dims {
		s[i] = D(d)
	}
	return s
}

// Rank returns the number of axes.
func (s Shape) Rank() int {
	return len(s)
}

// Dim returns the dimension at the given axis.
func (s Shape) Dim(axis int) (Dim, error) {
	if axis < 0 || axis >= len(s) {
		return Dim{}, errors.Errorf("axis %d out of range for shape %s of rank %d", axis, s, len(s))
	}
	return s[axis], nil
}

// NumElements returns the product of all dimensions. It fails with a
// descriptive error if any dimension cannot be resolved to a concrete value.
func (s Shape) NumElements() (int, error) {
	n := 1
	for i, d := range s {
		v, err := d.Value()
		if err != nil {
			return 0, errors.Wrapf(err, "cannot compute element count of shape %s: axis %d", s, i)
		}
		n *= v
	}
	return n, nil
}

// Ints resolves every dimension to a concrete integer.
func (s Shape) Ints() ([]int, error) {
	out := make([]int, len(s))
	for i, d := range s {
		v, err := d.Value()
		if err != nil {
			return nil, errors.Wrapf(err, "shape %s has unresolved axis %d", s, i)
		}
		out[i] = v
	}
	return out, nil
}

// IsSymbolic reports whether any dimension is symbolic.
func (s Shape) IsSymbolic() bool {
	for _, d := range s {
		if d.IsSymbolic() {
			return true
		}
	}
	return false
}

// Flatten returns the 1-D shape holding the same number of elements. The
// flattened dimension is built with Dim arithmetic, so it stays symbolic
// when the source is.
func (s Shape) Flatten() Shape {
	n := D(1)
	for _, d := range s {
		n = n.Mul(d)
	}
	return Shape{n}
}

// Slice derives the shape addressed by inclusive per-axis bounds. Result
// dimensions of size 1 are collapsed out, unless that would remove every
// dimension, in which case a rank-1 shape of size 1 remains. The derived
// shape keeps the representation kind of the source only through its
// surviving symbolic bounds; slicing always produces concrete extents.
func (s Shape) Slice(bounds [][2]int) (Shape, error) {
	if len(bounds) != len(s) {
		return nil, errors.Errorf("slice bounds have %d axes, shape %s has %d", len(bounds), s, len(s))
	}
	full := make(Shape, 0, len(s))
	for i, b := range bounds {
		lo, hi := b[0], b[1]
		if lo < 0 || hi < lo {
			return nil, errors.Errorf("invalid slice bounds [%d,%d] on axis %d of shape %s", lo, hi, i, s)
		}
		if !D(hi).ConstrainLe(s[i].Sub(D(1))) {
			return nil, errors.Errorf("slice bound %d exceeds axis %d of shape %s", hi, i, s)
		}
		full = append(full, D(hi-lo+1))
	}
	squeezed := make(Shape, 0, len(full))
	for _, d := range full {
		if d.n != 1 {
			squeezed = append(squeezed, d)
		}
	}
	if len(squeezed) == 0 {
		return Shape{D(1)}, nil
	}
	return squeezed, nil
}

// Equal is structural shape equality. Shapes of different representation
// kinds compare element-wise by dimension equality.
func (s Shape) Equal(o Shape) bool {
	if len(s) != len(o) {
		return false
	}
	for i := range s {
		if !s[i].Equal(o[i]) {
			return false
		}
	}
	return true
}

// Hash derives a hash from the dimension sequence. Structurally equal
// concrete shapes hash identically.
func (s Shape) Hash() uint64 {
	h := fnv.New64a()
	for _, d := range s {
		_, _ = h.Write([]byte(d.String()))
		_, _ = h.Write([]byte{'x'})
	}
	return h.Sum64()
}

// String renders the shape as [d0 d1 ...].
func (s Shape) String() string {
	parts := make([]string, len(s))
	for i, d := range s {
		parts[i] = d.String()
	}
	return "[" + strings.Join(parts, " ") + "]"
}
