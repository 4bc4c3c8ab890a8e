package autodiff_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fwaris/DiffSharp/internal/autodiff"
	"github.com/fwaris/DiffSharp/internal/backend/dense"
	"github.com/fwaris/DiffSharp/internal/tensor"
)

func f64(t *testing.T, data []float64, shape tensor.Shape) *tensor.RawTensor {
	t.Helper()
	r, err := tensor.FromFloat64s(data, shape, tensor.CPU)
	require.NoError(t, err)
	return r
}

func scalar(t *testing.T, r *tensor.RawTensor) float64 {
	t.Helper()
	v, err := r.ToScalar()
	require.NoError(t, err)
	return v
}

func TestReverseSimpleChain(t *testing.T) {
	bk := dense.New()
	g := autodiff.NewGraph(bk)
	x := g.Variable(f64(t, []float64{3}, tensor.Shape{1}))

	// y = x² => dy/dx = 2x = 6
	y := x.Mul(x).Sum()
	y.Backward(nil)
	assert.InDelta(t, 6, x.Adjoint().Float64At(0), 1e-12)
}

func TestReverseFanOutAccumulates(t *testing.T) {
	bk := dense.New()
	g := autodiff.NewGraph(bk)
	x := g.Variable(f64(t, []float64{2, 3}, tensor.Shape{2}))

	// y = sum(x*x + x): each use of x contributes, dy/dx = 2x + 1.
	y := x.Mul(x).Add(x).Sum()
	y.Backward(nil)
	assert.Equal(t, []float64{5, 7}, x.Adjoint().Float64s())
}

func TestBackwardSeedDefaultsToOnes(t *testing.T) {
	bk := dense.New()
	g := autodiff.NewGraph(bk)
	x := g.Variable(f64(t, []float64{1, 2, 3}, tensor.Shape{3}))
	y := x.MulScalar(4)
	y.Backward(nil)
	assert.Equal(t, []float64{4, 4, 4}, x.Adjoint().Float64s())
}

func TestBackwardExplicitSeed(t *testing.T) {
	bk := dense.New()
	g := autodiff.NewGraph(bk)
	x := g.Variable(f64(t, []float64{1, 2}, tensor.Shape{2}))
	y := x.MulScalar(3)
	y.Backward(f64(t, []float64{10, 100}, tensor.Shape{2}))
	assert.Equal(t, []float64{30, 300}, x.Adjoint().Float64s())
}

func TestAdjointOfUnreachedVariableIsZero(t *testing.T) {
	bk := dense.New()
	g := autodiff.NewGraph(bk)
	x := g.Variable(f64(t, []float64{1}, tensor.Shape{1}))
	z := g.Variable(f64(t, []float64{5}, tensor.Shape{1}))
	y := x.Exp().Sum()
	y.Backward(nil)
	assert.Equal(t, []float64{0}, z.Adjoint().Float64s())
}

func TestSecondBackwardResetsAccumulation(t *testing.T) {
	bk := dense.New()
	g := autodiff.NewGraph(bk)
	x := g.Variable(f64(t, []float64{2}, tensor.Shape{1}))
	y := x.Mul(x).Sum()
	y.Backward(nil)
	y.Backward(nil)
	// Adjoints restart from scratch, they do not double.
	assert.InDelta(t, 4, x.Adjoint().Float64At(0), 1e-12)
}

func TestMixingForwardAndReversePanics(t *testing.T) {
	bk := dense.New()
	g := autodiff.NewGraph(bk)
	r := g.Variable(f64(t, []float64{1}, tensor.Shape{1}))
	f := autodiff.NewForward(f64(t, []float64{1}, tensor.Shape{1}), f64(t, []float64{1}, tensor.Shape{1}), bk)
	assert.Panics(t, func() { r.Add(f) })
}

func TestMixingTapesPanics(t *testing.T) {
	bk := dense.New()
	a := autodiff.NewGraph(bk).Variable(f64(t, []float64{1}, tensor.Shape{1}))
	b := autodiff.NewGraph(bk).Variable(f64(t, []float64{2}, tensor.Shape{1}))
	assert.Panics(t, func() { a.Add(b) })
}

func TestConstantOperandsStayOffTheTape(t *testing.T) {
	bk := dense.New()
	g := autodiff.NewGraph(bk)
	x := g.Variable(f64(t, []float64{2}, tensor.Shape{1}))
	c := autodiff.NewConstant(f64(t, []float64{10}, tensor.Shape{1}), bk)

	y := x.Mul(c).Sum()
	require.Equal(t, autodiff.Reverse, y.Role())
	y.Backward(nil)
	assert.InDelta(t, 10, x.Adjoint().Float64At(0), 1e-12)
}

func TestForwardModeTangentPropagation(t *testing.T) {
	bk := dense.New()
	// f(x) = x² at x=3 with unit tangent: df = 2x = 6.
	x := autodiff.NewForward(f64(t, []float64{3}, tensor.Shape{1}), f64(t, []float64{1}, tensor.Shape{1}), bk)
	y := x.Mul(x)
	require.Equal(t, autodiff.Forward, y.Role())
	assert.InDelta(t, 9, y.Primal().Float64At(0), 1e-12)
	assert.InDelta(t, 6, y.Tangent().Primal().Float64At(0), 1e-12)
}

func TestForwardModeMatchesReverseOnComposite(t *testing.T) {
	bk := dense.New()
	primal := []float64{0.5, 1.5, 2.5}
	f := func(x *autodiff.Tensor) *autodiff.Tensor {
		return x.Exp().Add(x.Sin()).Mul(x)
	}

	g := autodiff.NewGraph(bk)
	xr := g.Variable(f64(t, primal, tensor.Shape{3}))
	f(xr).Sum().Backward(nil)
	grad := xr.Adjoint().Float64s()

	// One forward pass per basis tangent reproduces the gradient of the
	// scalarized output.
	for i := 0; i < 3; i++ {
		seed := make([]float64, 3)
		seed[i] = 1
		xf := autodiff.NewForward(f64(t, primal, tensor.Shape{3}), f64(t, seed, tensor.Shape{3}), bk)
		got := f(xf).Sum().Tangent().Primal().Float64At(0)
		assert.InDelta(t, grad[i], got, 1e-10, "basis %d", i)
	}
}

func TestUnstackGradientFlows(t *testing.T) {
	bk := dense.New()
	g := autodiff.NewGraph(bk)
	x := g.Variable(f64(t, []float64{1, 2, 3, 4}, tensor.Shape{2, 2}))

	parts := x.Unstack()
	require.Len(t, parts, 2)
	y := parts[0].MulScalar(10).Add(parts[1].MulScalar(100)).Sum()
	y.Backward(nil)
	assert.Equal(t, []float64{10, 10, 100, 100}, x.Adjoint().Float64s())
}

func TestStackGradientSplits(t *testing.T) {
	bk := dense.New()
	g := autodiff.NewGraph(bk)
	a := g.Variable(f64(t, []float64{1, 2}, tensor.Shape{2}))
	b := g.Variable(f64(t, []float64{3, 4}, tensor.Shape{2}))

	y := autodiff.Stack([]*autodiff.Tensor{a, b})
	y.Backward(f64(t, []float64{1, 2, 3, 4}, tensor.Shape{2, 2}))
	assert.Equal(t, []float64{1, 2}, a.Adjoint().Float64s())
	assert.Equal(t, []float64{3, 4}, b.Adjoint().Float64s())
}

func TestSliceGradientScatters(t *testing.T) {
	bk := dense.New()
	g := autodiff.NewGraph(bk)
	x := g.Variable(f64(t, []float64{1, 2, 3, 4, 5, 6}, tensor.Shape{2, 3}))
	y := x.Slice([][2]int{{1, 1}, {0, 2}}).Sum()
	y.Backward(nil)
	assert.Equal(t, []float64{0, 0, 0, 1, 1, 1}, x.Adjoint().Float64s())
}

func TestMaxPoolGradientRoutesToArgmax(t *testing.T) {
	bk := dense.New()
	g := autodiff.NewGraph(bk)
	x := g.Variable(f64(t, []float64{1, 9, 2, 3}, tensor.Shape{1, 1, 1, 4}))
	y := x.MaxPool2D([]int{1, 2}, nil).Sum()
	y.Backward(nil)
	assert.Equal(t, []float64{0, 1, 0, 1}, x.Adjoint().Float64s())
}

func TestAvgPoolReverseIsAdjointAtFacade(t *testing.T) {
	bk := dense.NewWithSeed(11)
	x := bk.RandomNormal(tensor.Shape{1, 2, 4, 6}, tensor.Float64, 0, 1)
	gr := bk.RandomNormal(tensor.Shape{1, 2, 2, 3}, tensor.Float64, 0, 1)

	xc := autodiff.NewConstant(x, bk)
	gc := autodiff.NewConstant(gr, bk)
	pooled := xc.AvgPool2D([]int{2}, nil)
	unpooled := gc.AvgPool2DReverse([]int{2}, nil)

	lhs := dot(pooled.Primal().Float64s(), gr.Float64s())
	rhs := dot(x.Float64s(), unpooled.Primal().Float64s())
	assert.InDelta(t, lhs, rhs, 1e-9)
}

func TestAvgPool1DViaSingletonAxis(t *testing.T) {
	bk := dense.New()
	x := autodiff.NewConstant(f64(t, []float64{1, 2, 3, 4}, tensor.Shape{1, 1, 4}), bk)
	y := x.AvgPool1D([]int{2}, nil)
	assert.Equal(t, tensor.Shape{1, 1, 2}, y.Shape())
	assert.Equal(t, []float64{1.5, 3.5}, y.Primal().Float64s())
}

func TestAvgPool3DStagedEqualsDirectMean(t *testing.T) {
	bk := dense.NewWithSeed(3)
	x := bk.RandomNormal(tensor.Shape{1, 1, 2, 2, 2}, tensor.Float64, 0, 1)
	y := autodiff.NewConstant(x, bk).AvgPool3D([]int{2}, nil)
	require.Equal(t, tensor.Shape{1, 1, 1, 1, 1}, y.Shape())

	var want float64
	for _, v := range x.Float64s() {
		want += v
	}
	want /= 8
	assert.InDelta(t, want, y.Primal().Float64At(0), 1e-12)
}

func TestAvgPool3DGradient(t *testing.T) {
	bk := dense.New()
	g := autodiff.NewGraph(bk)
	x := g.Variable(tensor.Ones(tensor.Shape{1, 1, 2, 2, 2}, tensor.Float64, tensor.CPU))
	y := x.AvgPool3D([]int{2}, nil).Sum()
	y.Backward(nil)
	assert.Equal(t, []float64{0.125, 0.125, 0.125, 0.125, 0.125, 0.125, 0.125, 0.125}, x.Adjoint().Float64s())
}

func TestComparisonDetaches(t *testing.T) {
	bk := dense.New()
	g := autodiff.NewGraph(bk)
	x := g.Variable(f64(t, []float64{1, 2}, tensor.Shape{2}))
	mask := x.Gt(autodiff.NewConstant(f64(t, []float64{1.5, 1.5}, tensor.Shape{2}), bk))
	assert.Equal(t, autodiff.Constant, mask.Role())
	assert.Equal(t, tensor.Bool, mask.DType())
}

func dot(a, b []float64) float64 {
	var acc float64
	for i := range a {
		acc += a[i] * b[i]
	}
	return acc
}
