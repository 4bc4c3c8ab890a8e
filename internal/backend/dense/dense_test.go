package dense

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fwaris/DiffSharp/internal/tensor"
)

func f64(t *testing.T, data []float64, shape tensor.Shape) *tensor.RawTensor {
	t.Helper()
	r, err := tensor.FromFloat64s(data, shape, tensor.CPU)
	require.NoError(t, err)
	return r
}

func TestElementwiseBinary(t *testing.T) {
	bk := New()
	a := f64(t, []float64{1, 2, 3, 4}, tensor.Shape{2, 2})
	b := f64(t, []float64{5, 6, 7, 8}, tensor.Shape{2, 2})

	assert.Equal(t, []float64{6, 8, 10, 12}, bk.Add(a, b).Float64s())
	assert.Equal(t, []float64{-4, -4, -4, -4}, bk.Sub(a, b).Float64s())
	assert.Equal(t, []float64{5, 12, 21, 32}, bk.Mul(a, b).Float64s())
	assert.Equal(t, []float64{0.2, 2.0 / 6, 3.0 / 7, 0.5}, bk.Div(a, b).Float64s())
}

func TestElementwiseDoesNotMutateOperands(t *testing.T) {
	bk := New()
	a := f64(t, []float64{1, 2}, tensor.Shape{2})
	b := f64(t, []float64{3, 4}, tensor.Shape{2})
	_ = bk.Add(a, b)
	assert.Equal(t, []float64{1, 2}, a.Float64s())
	assert.Equal(t, []float64{3, 4}, b.Float64s())
}

func TestShapeMismatchPanics(t *testing.T) {
	bk := New()
	a := f64(t, []float64{1, 2}, tensor.Shape{2})
	b := f64(t, []float64{1, 2, 3}, tensor.Shape{3})
	assert.Panics(t, func() { bk.Add(a, b) })
}

func TestIntDTypePanicsInNumericKernels(t *testing.T) {
	bk := New()
	a := tensor.Zeros(tensor.Shape{2}, tensor.Int32, tensor.CPU)
	assert.Panics(t, func() { bk.Exp(a) })
	assert.Panics(t, func() { bk.Add(a, a) })
}

func TestFloat16MustBeCastBeforeNumericKernels(t *testing.T) {
	bk := New()
	h, err := tensor.FromFloat16s([]float32{1, 2}, tensor.Shape{2}, tensor.CPU)
	require.NoError(t, err)
	assert.Panics(t, func() { bk.Add(h, h) })

	up := bk.Cast(h, tensor.Float32)
	assert.Equal(t, []float64{2, 4}, bk.Add(up, up).Float64s())
}

func TestScalarOps(t *testing.T) {
	bk := New()
	a := f64(t, []float64{1, 4, 9}, tensor.Shape{3})
	assert.Equal(t, []float64{3, 6, 11}, bk.AddScalar(a, 2).Float64s())
	assert.Equal(t, []float64{2, 8, 18}, bk.MulScalar(a, 2).Float64s())
	assert.Equal(t, []float64{1, 2, 3}, bk.PowScalar(a, 0.5).Float64s())
}

func TestUnaryOps(t *testing.T) {
	bk := New()
	a := f64(t, []float64{-2, 0, 3}, tensor.Shape{3})
	assert.Equal(t, []float64{2, 0, -3}, bk.Neg(a).Float64s())
	assert.Equal(t, []float64{2, 0, 3}, bk.Abs(a).Float64s())
	assert.Equal(t, []float64{-1, 0, 1}, bk.Sign(a).Float64s())

	e := bk.Exp(f64(t, []float64{0, 1}, tensor.Shape{2}))
	assert.InDelta(t, 1, e.Float64At(0), 1e-12)
	assert.InDelta(t, math.E, e.Float64At(1), 1e-12)
}

func TestComparisonsProduceBool(t *testing.T) {
	bk := New()
	a := f64(t, []float64{1, 2, 3}, tensor.Shape{3})
	b := f64(t, []float64{2, 2, 2}, tensor.Shape{3})
	lt := bk.Lt(a, b)
	assert.Equal(t, tensor.Bool, lt.DType())
	assert.Equal(t, []bool{true, false, false}, lt.AsBool())
	assert.Equal(t, []bool{false, true, false}, bk.Eq(a, b).AsBool())
}

func TestSumMean(t *testing.T) {
	bk := New()
	a := f64(t, []float64{1, 2, 3, 4}, tensor.Shape{2, 2})
	sum := bk.Sum(a)
	assert.Equal(t, tensor.Shape{}, sum.Shape())
	assert.Equal(t, 10.0, sum.Float64At(0))
	assert.Equal(t, 2.5, bk.Mean(a).Float64At(0))
}

func TestArgMaxArgMin(t *testing.T) {
	bk := New()
	a := f64(t, []float64{3, 1, 4, 1, 5, 9}, tensor.Shape{2, 3})
	assert.Equal(t, []int{1, 2}, bk.ArgMax(a))
	assert.Equal(t, []int{0, 1}, bk.ArgMin(a))
}

func TestMatMul(t *testing.T) {
	bk := New()
	a := f64(t, []float64{1, 2, 3, 4, 5, 6}, tensor.Shape{2, 3})
	b := f64(t, []float64{7, 8, 9, 10, 11, 12}, tensor.Shape{3, 2})
	c := bk.MatMul(a, b)
	assert.Equal(t, tensor.Shape{2, 2}, c.Shape())
	assert.Equal(t, []float64{58, 64, 139, 154}, c.Float64s())

	assert.Panics(t, func() { bk.MatMul(a, a) })
}

func TestTranspose(t *testing.T) {
	bk := New()
	a := f64(t, []float64{1, 2, 3, 4, 5, 6}, tensor.Shape{2, 3})
	at := bk.Transpose(a)
	assert.Equal(t, tensor.Shape{3, 2}, at.Shape())
	assert.Equal(t, []float64{1, 4, 2, 5, 3, 6}, at.Float64s())
}

func TestFlip(t *testing.T) {
	bk := New()
	a := f64(t, []float64{1, 2, 3, 4, 5, 6}, tensor.Shape{2, 3})
	assert.Equal(t, []float64{3, 2, 1, 6, 5, 4}, bk.Flip(a, []int{1}).Float64s())
	assert.Equal(t, []float64{6, 5, 4, 3, 2, 1}, bk.Flip(a, []int{0, 1}).Float64s())
	assert.Panics(t, func() { bk.Flip(a, []int{1, 1}) })
}

func TestDilateUndilateInverse(t *testing.T) {
	bk := New()
	a := f64(t, []float64{1, 2, 3}, tensor.Shape{3})
	d := bk.Dilate(a, []int{2})
	assert.Equal(t, tensor.Shape{5}, d.Shape())
	assert.Equal(t, []float64{1, 0, 2, 0, 3}, d.Float64s())
	assert.Equal(t, []float64{1, 2, 3}, bk.Undilate(d, []int{2}).Float64s())
}

func TestStackUnstackRoundTrip(t *testing.T) {
	bk := New()
	a := f64(t, []float64{1, 2}, tensor.Shape{2})
	b := f64(t, []float64{3, 4}, tensor.Shape{2})
	s := bk.Stack([]*tensor.RawTensor{a, b})
	assert.Equal(t, tensor.Shape{2, 2}, s.Shape())
	assert.Equal(t, []float64{1, 2, 3, 4}, s.Float64s())

	parts := bk.Unstack(s)
	require.Len(t, parts, 2)
	assert.Equal(t, []float64{1, 2}, parts[0].Float64s())
	assert.Equal(t, []float64{3, 4}, parts[1].Float64s())
}

func TestSliceSqueezesUnitAxes(t *testing.T) {
	bk := New()
	a := f64(t, []float64{1, 2, 3, 4, 5, 6}, tensor.Shape{2, 3})
	row := bk.Slice(a, [][2]int{{1, 1}, {0, 2}})
	assert.Equal(t, tensor.Shape{3}, row.Shape())
	assert.Equal(t, []float64{4, 5, 6}, row.Float64s())

	one := bk.Slice(a, [][2]int{{0, 0}, {2, 2}})
	assert.Equal(t, tensor.Shape{1}, one.Shape())
	assert.Equal(t, []float64{3}, one.Float64s())
}

func TestSliceScatterIsSliceAdjoint(t *testing.T) {
	bk := New()
	// <slice(x), g> == <x, scatter(g)> for matching regions.
	x := f64(t, []float64{1, 2, 3, 4, 5, 6}, tensor.Shape{2, 3})
	bounds := [][2]int{{0, 1}, {1, 2}}
	g := f64(t, []float64{10, 20, 30, 40}, tensor.Shape{2, 2})

	lhs := dot(bk.Slice(x, bounds).Float64s(), g.Float64s())
	rhs := dot(x.Float64s(), bk.SliceScatter(g, bounds, tensor.Shape{2, 3}).Float64s())
	assert.InDelta(t, lhs, rhs, 1e-12)
}

func TestCastFloat16RoundTrip(t *testing.T) {
	bk := New()
	a := f64(t, []float64{1.5, -0.25, 4096}, tensor.Shape{3})
	h := bk.Cast(a, tensor.Float16)
	assert.Equal(t, tensor.Float16, h.DType())
	back := bk.Cast(h, tensor.Float64)
	assert.Equal(t, []float64{1.5, -0.25, 4096}, back.Float64s())

	assert.Panics(t, func() { bk.Cast(a, tensor.Bool) })
}

func TestConv1DBasic(t *testing.T) {
	bk := New()
	// Sliding [1 0] over [1 2 3 4] picks out the leading elements.
	input := f64(t, []float64{1, 2, 3, 4}, tensor.Shape{1, 1, 4})
	kernel := f64(t, []float64{1, 0}, tensor.Shape{1, 1, 2})
	out := bk.Conv1D(input, kernel, 1, 0)
	assert.Equal(t, tensor.Shape{1, 1, 3}, out.Shape())
	assert.Equal(t, []float64{1, 2, 3}, out.Float64s())
}

func TestConv1DStrideIsDownsampledStrideOne(t *testing.T) {
	bk := New()
	input := f64(t, []float64{1, 2, 3, 4, 5}, tensor.Shape{1, 1, 5})
	kernel := f64(t, []float64{1, 1}, tensor.Shape{1, 1, 2})

	full := bk.Conv1D(input, kernel, 1, 0)
	assert.Equal(t, []float64{3, 5, 7, 9}, full.Float64s())

	strided := bk.Conv1D(input, kernel, 2, 0)
	// Every second position of the stride-1 result.
	assert.Equal(t, tensor.Shape{1, 1, 2}, strided.Shape())
	assert.Equal(t, []float64{3, 7}, strided.Float64s())
}

func TestConv1DPadding(t *testing.T) {
	bk := New()
	input := f64(t, []float64{1, 2, 3}, tensor.Shape{1, 1, 3})
	kernel := f64(t, []float64{1, 1}, tensor.Shape{1, 1, 2})
	out := bk.Conv1D(input, kernel, 1, 1)
	// Padded input [0 1 2 3 0].
	assert.Equal(t, []float64{1, 3, 5, 3}, out.Float64s())
}

func TestConv1DChannelAccumulation(t *testing.T) {
	bk := New()
	input := f64(t, []float64{
		1, 2, 3, // channel 0
		4, 5, 6, // channel 1
	}, tensor.Shape{1, 2, 3})
	kernel := f64(t, []float64{
		1, 0, // out 0, in 0
		0, 1, // out 0, in 1
	}, tensor.Shape{1, 2, 2})
	out := bk.Conv1D(input, kernel, 1, 0)
	// Position j sums input[0][j] + input[1][j+1].
	assert.Equal(t, []float64{6, 8}, out.Float64s())
}

func TestConv2DIdentityKernel(t *testing.T) {
	bk := New()
	input := f64(t, []float64{1, 2, 3, 4, 5, 6, 7, 8, 9}, tensor.Shape{1, 1, 3, 3})
	kernel := f64(t, []float64{1}, tensor.Shape{1, 1, 1, 1})
	out := bk.Conv2D(input, kernel, 1, 0)
	assert.Equal(t, input.Float64s(), out.Float64s())
}

func TestConv2DBoxKernel(t *testing.T) {
	bk := New()
	input := f64(t, []float64{1, 2, 3, 4, 5, 6, 7, 8, 9}, tensor.Shape{1, 1, 3, 3})
	kernel := f64(t, []float64{1, 1, 1, 1}, tensor.Shape{1, 1, 2, 2})
	out := bk.Conv2D(input, kernel, 1, 0)
	assert.Equal(t, tensor.Shape{1, 1, 2, 2}, out.Shape())
	assert.Equal(t, []float64{12, 16, 24, 28}, out.Float64s())
}

func TestConvCrossCorrelationDoesNotFlip(t *testing.T) {
	bk := New()
	input := f64(t, []float64{1, 0, 0}, tensor.Shape{1, 1, 3})
	kernel := f64(t, []float64{1, 2}, tensor.Shape{1, 1, 2})
	// Cross-correlation: out[0] = in[0]*k[0] + in[1]*k[1] = 1.
	out := bk.Conv1D(input, kernel, 1, 0)
	assert.Equal(t, []float64{1, 0}, out.Float64s())
}

func TestConvBackwardShapes(t *testing.T) {
	bk := New()
	input := f64(t, []float64{1, 2, 3, 4, 5}, tensor.Shape{1, 1, 5})
	kernel := f64(t, []float64{1, -1}, tensor.Shape{1, 1, 2})
	out := bk.Conv1D(input, kernel, 2, 1)
	grad := tensor.Ones(out.Shape(), tensor.Float64, tensor.CPU)

	gi := bk.Conv1DInputBackward(input, kernel, grad, 2, 1)
	assert.Equal(t, input.Shape(), gi.Shape())
	gk := bk.Conv1DKernelBackward(input, kernel, grad, 2, 1)
	assert.Equal(t, kernel.Shape(), gk.Shape())
}

func TestAvgPool2DBasic(t *testing.T) {
	bk := New()
	// A 1-D row lifted to 2-D: [1 2 3 4] with kernel 2, stride 2 averages
	// to [1.5 3.5].
	input := f64(t, []float64{1, 2, 3, 4}, tensor.Shape{1, 1, 1, 4})
	out := bk.AvgPool2D(input, [2]int{1, 2}, [2]int{1, 2}, [2]int{0, 0}, false, true)
	assert.Equal(t, tensor.Shape{1, 1, 1, 2}, out.Shape())
	assert.Equal(t, []float64{1.5, 3.5}, out.Float64s())
}

func TestAvgPool2DCeilMode(t *testing.T) {
	bk := New()
	input := f64(t, []float64{1, 2, 3, 4, 5}, tensor.Shape{1, 1, 1, 5})
	floor := bk.AvgPool2D(input, [2]int{1, 2}, [2]int{1, 2}, [2]int{0, 0}, false, true)
	assert.Equal(t, []float64{1.5, 3.5}, floor.Float64s())

	ceil := bk.AvgPool2D(input, [2]int{1, 2}, [2]int{1, 2}, [2]int{0, 0}, true, true)
	// The trailing window holds only element 5; include-pad still divides
	// by the kernel area.
	assert.Equal(t, []float64{1.5, 3.5, 2.5}, ceil.Float64s())
}

func TestAvgPool2DPaddingDivisors(t *testing.T) {
	bk := New()
	input := f64(t, []float64{1, 2, 3, 4}, tensor.Shape{1, 1, 2, 2})
	incl := bk.AvgPool2D(input, [2]int{2, 2}, [2]int{2, 2}, [2]int{1, 1}, true, true)
	// Each window sees one real element and three padded zeros.
	assert.Equal(t, []float64{0.25, 0.5, 0.75, 1}, incl.Float64s())

	excl := bk.AvgPool2D(input, [2]int{2, 2}, [2]int{2, 2}, [2]int{1, 1}, true, false)
	assert.Equal(t, []float64{1, 2, 3, 4}, excl.Float64s())
}

// TestAvgPoolAdjointDuality checks <avgpool(x), g> == <x, avgpoolReverse(g)>
// over random tensors: the two kernels are exact adjoints of each other.
func TestAvgPoolAdjointDuality(t *testing.T) {
	bk := NewWithSeed(7)
	cases := []struct {
		in      tensor.Shape
		kernel  [2]int
		stride  [2]int
		padding [2]int
		incl    bool
	}{
		{tensor.Shape{1, 1, 4, 4}, [2]int{2, 2}, [2]int{2, 2}, [2]int{0, 0}, true},
		{tensor.Shape{2, 3, 6, 8}, [2]int{2, 3}, [2]int{2, 3}, [2]int{0, 0}, true},
		{tensor.Shape{1, 2, 5, 5}, [2]int{3, 3}, [2]int{2, 2}, [2]int{1, 1}, true},
		{tensor.Shape{1, 2, 5, 5}, [2]int{3, 3}, [2]int{2, 2}, [2]int{1, 1}, false},
	}
	for _, c := range cases {
		x := bk.RandomNormal(c.in, tensor.Float64, 0, 1)
		pooled := bk.AvgPool2D(x, c.kernel, c.stride, c.padding, false, c.incl)
		g := bk.RandomNormal(pooled.Shape(), tensor.Float64, 0, 1)

		lhs := dot(pooled.Float64s(), g.Float64s())
		back := bk.AvgPool2DBackward(g, c.in, c.kernel, c.stride, c.padding, false, c.incl)
		rhs := dot(x.Float64s(), back.Float64s())
		assert.InDelta(t, lhs, rhs, 1e-9, "case %+v", c)
	}
}

func TestMaxPool2DRoutesToArgmax(t *testing.T) {
	bk := New()
	input := f64(t, []float64{
		1, 5, 2, 0,
		3, 4, 1, 6,
	}, tensor.Shape{1, 1, 2, 4})
	out := bk.MaxPool2D(input, [2]int{2, 2}, [2]int{2, 2}, [2]int{0, 0})
	assert.Equal(t, []float64{5, 6}, out.Float64s())

	grad := f64(t, []float64{10, 20}, tensor.Shape{1, 1, 1, 2})
	gi := bk.MaxPool2DBackward(input, grad, [2]int{2, 2}, [2]int{2, 2}, [2]int{0, 0})
	assert.Equal(t, []float64{
		0, 10, 0, 0,
		0, 0, 0, 20,
	}, gi.Float64s())
}

func TestMaxPool2DTangentFollowsArgmax(t *testing.T) {
	bk := New()
	input := f64(t, []float64{1, 9, 2, 3}, tensor.Shape{1, 1, 1, 4})
	tangent := f64(t, []float64{10, 20, 30, 40}, tensor.Shape{1, 1, 1, 4})
	out := bk.MaxPool2DTangent(input, tangent, [2]int{1, 2}, [2]int{1, 2}, [2]int{0, 0})
	assert.Equal(t, []float64{20, 40}, out.Float64s())
}

func TestRandomUniformRange(t *testing.T) {
	bk := NewWithSeed(42)
	r := bk.RandomUniform(tensor.Shape{1000}, tensor.Float64, -1, 1)
	for _, v := range r.Float64s() {
		assert.GreaterOrEqual(t, v, -1.0)
		assert.Less(t, v, 1.0)
	}
}

func TestRandomNormalDeterministicWithSeed(t *testing.T) {
	a := NewWithSeed(5).RandomNormal(tensor.Shape{16}, tensor.Float64, 0, 1)
	b := NewWithSeed(5).RandomNormal(tensor.Shape{16}, tensor.Float64, 0, 1)
	assert.Equal(t, a.Float64s(), b.Float64s())
}

func TestMultinomialDegenerate(t *testing.T) {
	bk := NewWithSeed(1)
	probs := f64(t, []float64{0, 0, 1, 0}, tensor.Shape{4})
	out := bk.Multinomial(probs, 8)
	assert.Equal(t, tensor.Shape{8}, out.Shape())
	for _, v := range out.AsInt32() {
		assert.Equal(t, int32(2), v)
	}
}

func TestMultinomialPerRow(t *testing.T) {
	bk := NewWithSeed(1)
	probs := f64(t, []float64{1, 0, 0, 1}, tensor.Shape{2, 2})
	out := bk.Multinomial(probs, 3)
	assert.Equal(t, tensor.Shape{2, 3}, out.Shape())
	res := out.AsInt32()
	assert.Equal(t, []int32{0, 0, 0}, res[:3])
	assert.Equal(t, []int32{1, 1, 1}, res[3:])

	neg := f64(t, []float64{0.5, -0.5}, tensor.Shape{2})
	assert.Panics(t, func() { bk.Multinomial(neg, 1) })
}

func dot(a, b []float64) float64 {
	var acc float64
	for i := range a {
		acc += a[i] * b[i]
	}
	return acc
}
