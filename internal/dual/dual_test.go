package dual

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCubeTower(t *testing.T) {
	// f(x) = x³ at x=2: value 8, then 3x²=12, 6x=12, 6, and zeros beyond.
	f := func(x *DualN) *DualN { return x.Mul(x).Mul(x) }
	got := DiffAll(5, f, 2)
	assert.Equal(t, []float64{8, 12, 12, 6, 0, 0}, got)
}

func TestConstTowerIsAllZeros(t *testing.T) {
	c := Const(7)
	assert.Equal(t, 7.0, c.Value())
	d := c.Derivative()
	for i := 0; i < 5; i++ {
		assert.Zero(t, d.Value())
		d = d.Derivative()
	}
}

func TestVarDerivativeIsOneThenZero(t *testing.T) {
	v := Var(3)
	assert.Equal(t, 3.0, v.Value())
	assert.Equal(t, 1.0, v.Derivative().Value())
	assert.Equal(t, 0.0, v.Derivative().Derivative().Value())
}

func TestDerivativeIsMemoized(t *testing.T) {
	x := Var(2)
	y := x.Mul(x)
	assert.Same(t, y.Derivative(), y.Derivative())
}

func TestExpTower(t *testing.T) {
	// Every derivative of e^x is e^x.
	f := func(x *DualN) *DualN { return x.Exp() }
	want := math.Exp(1.5)
	for n := 0; n <= 4; n++ {
		assert.InDelta(t, want, DiffN(n, f, 1.5), 1e-12, "order %d", n)
	}
}

func TestSinCosCycle(t *testing.T) {
	f := func(x *DualN) *DualN { return x.Sin() }
	x := 0.7
	assert.InDelta(t, math.Sin(x), DiffN(0, f, x), 1e-12)
	assert.InDelta(t, math.Cos(x), DiffN(1, f, x), 1e-12)
	assert.InDelta(t, -math.Sin(x), DiffN(2, f, x), 1e-12)
	assert.InDelta(t, -math.Cos(x), DiffN(3, f, x), 1e-12)
	assert.InDelta(t, math.Sin(x), DiffN(4, f, x), 1e-12)
}

func TestLogDerivatives(t *testing.T) {
	f := func(x *DualN) *DualN { return x.Log() }
	x := 2.0
	assert.InDelta(t, 1/x, Diff(f, x), 1e-12)
	assert.InDelta(t, -1/(x*x), Diff2(f, x), 1e-12)
	assert.InDelta(t, 2/(x*x*x), DiffN(3, f, x), 1e-12)
}

func TestSqrtDerivatives(t *testing.T) {
	f := func(x *DualN) *DualN { return x.Sqrt() }
	x := 4.0
	assert.InDelta(t, 2.0, DiffN(0, f, x), 1e-12)
	assert.InDelta(t, 0.25, Diff(f, x), 1e-12)
	assert.InDelta(t, -1.0/32, Diff2(f, x), 1e-12)
}

func TestTanhDerivative(t *testing.T) {
	f := func(x *DualN) *DualN { return x.Tanh() }
	x := 0.5
	th := math.Tanh(x)
	assert.InDelta(t, 1-th*th, Diff(f, x), 1e-12)
	assert.InDelta(t, -2*th*(1-th*th), Diff2(f, x), 1e-12)
}

func TestDivQuotientRule(t *testing.T) {
	// f(x) = x / (1 + x²)
	f := func(x *DualN) *DualN {
		return x.Div(x.Mul(x).AddConst(1))
	}
	x := 0.8
	d := 1 + x*x
	assert.InDelta(t, x/d, DiffN(0, f, x), 1e-12)
	assert.InDelta(t, (1-x*x)/(d*d), Diff(f, x), 1e-12)
}

func TestPowConstChain(t *testing.T) {
	// f(x) = (2x + 1)^3
	f := func(x *DualN) *DualN { return x.MulConst(2).AddConst(1).PowConst(3) }
	x := 1.0
	assert.InDelta(t, 27.0, DiffN(0, f, x), 1e-12)
	assert.InDelta(t, 54.0, Diff(f, x), 1e-12)  // 3(2x+1)²·2
	assert.InDelta(t, 72.0, Diff2(f, x), 1e-12) // 6(2x+1)·4
}

func TestPowTower(t *testing.T) {
	// x^x at x=2: value 4, derivative x^x (ln x + 1).
	f := func(x *DualN) *DualN { return x.Pow(x) }
	assert.InDelta(t, 4.0, DiffN(0, f, 2), 1e-12)
	assert.InDelta(t, 4*(math.Log(2)+1), Diff(f, 2), 1e-12)
}

func TestAbs(t *testing.T) {
	f := func(x *DualN) *DualN { return x.Abs() }
	assert.InDelta(t, 1.0, Diff(f, 3), 1e-12)
	assert.InDelta(t, -1.0, Diff(f, -3), 1e-12)
}

func TestGrad(t *testing.T) {
	// f(x, y) = x²y + y³: ∂x = 2xy, ∂y = x² + 3y²
	f := func(v []*DualN) *DualN {
		x, y := v[0], v[1]
		return x.Mul(x).Mul(y).Add(y.Mul(y).Mul(y))
	}
	g := Grad(f, []float64{2, 3})
	require.Len(t, g, 2)
	assert.InDelta(t, 12.0, g[0], 1e-12)
	assert.InDelta(t, 31.0, g[1], 1e-12)
}

func TestJvp(t *testing.T) {
	// Directional derivative equals grad · v.
	f := func(v []*DualN) *DualN {
		return v[0].Mul(v[1])
	}
	x := []float64{3, 5}
	v := []float64{1, 2}
	// grad = (y, x) = (5, 3); grad·v = 5 + 6 = 11.
	assert.InDelta(t, 11.0, Jvp(f, x, v), 1e-12)
}

func TestJacobian(t *testing.T) {
	// f(x, y) = (xy, x + y, y²)
	f := func(v []*DualN) []*DualN {
		x, y := v[0], v[1]
		return []*DualN{x.Mul(y), x.Add(y), y.Mul(y)}
	}
	j := Jacobian(f, []float64{2, 3})
	require.Len(t, j, 3)
	assert.InDelta(t, 3.0, j[0][0], 1e-12)
	assert.InDelta(t, 2.0, j[0][1], 1e-12)
	assert.InDelta(t, 1.0, j[1][0], 1e-12)
	assert.InDelta(t, 1.0, j[1][1], 1e-12)
	assert.InDelta(t, 0.0, j[2][0], 1e-12)
	assert.InDelta(t, 6.0, j[2][1], 1e-12)
}

func TestJacobianTIsTranspose(t *testing.T) {
	f := func(v []*DualN) []*DualN {
		x, y := v[0], v[1]
		return []*DualN{x.Mul(y), x.Add(y), y.Mul(y)}
	}
	x := []float64{2, 3}
	j := Jacobian(f, x)
	jt := JacobianT(f, x)
	require.Len(t, jt, 2)
	for i := range j {
		for k := range j[i] {
			assert.Equal(t, j[i][k], jt[k][i])
		}
	}
}

func TestLaplacian(t *testing.T) {
	// f(x, y) = x² + y²: Laplacian is 4 everywhere.
	f := func(v []*DualN) *DualN {
		return v[0].Mul(v[0]).Add(v[1].Mul(v[1]))
	}
	assert.InDelta(t, 4.0, Laplacian(f, []float64{1.5, -2.5}), 1e-12)
}
