package dual

// Derivative operators over scalar functions expressed on towers. Each
// operator runs the function once per seeded input; the tower's laziness
// means only the derivative orders actually requested are computed.

// Diff returns f'(x).
func Diff(f func(*DualN) *DualN, x float64) float64 {
	return f(Var(x)).Derivative().Value()
}

// Diff2 returns f''(x).
func Diff2(f func(*DualN) *DualN, x float64) float64 {
	return DiffN(2, f, x)
}

// DiffN returns the nth derivative of f at x. Order zero is f(x) itself.
func DiffN(n int, f func(*DualN) *DualN, x float64) float64 {
	d := f(Var(x))
	for ; n > 0; n-- {
		d = d.Derivative()
	}
	return d.Value()
}

// DiffAll returns f(x) and its first n derivatives, n+1 values in order of
// increasing derivative order, from one pass over the tower.
func DiffAll(n int, f func(*DualN) *DualN, x float64) []float64 {
	out := make([]float64, n+1)
	d := f(Var(x))
	for i := 0; i <= n; i++ {
		out[i] = d.Value()
		d = d.Derivative()
	}
	return out
}

// Grad returns the gradient of a scalar function of several variables,
// one forward pass per input.
func Grad(f func([]*DualN) *DualN, x []float64) []float64 {
	out := make([]float64, len(x))
	for i := range x {
		out[i] = f(seed(x, i)).Derivative().Value()
	}
	return out
}

// Jvp returns the directional derivative of f at x along v from a single
// forward pass with every input seeded by its component of v.
func Jvp(f func([]*DualN) *DualN, x, v []float64) float64 {
	in := make([]*DualN, len(x))
	for i := range x {
		in[i] = WithTangent(x[i], v[i])
	}
	return f(in).Derivative().Value()
}

// Jacobian returns the m-by-n Jacobian of a vector function of n inputs,
// one forward pass per input column.
func Jacobian(f func([]*DualN) []*DualN, x []float64) [][]float64 {
	var out [][]float64
	for j := range x {
		col := f(seed(x, j))
		if out == nil {
			out = make([][]float64, len(col))
			for i := range out {
				out[i] = make([]float64, len(x))
			}
		}
		for i, d := range col {
			out[i][j] = d.Derivative().Value()
		}
	}
	return out
}

// JacobianT returns the transposed Jacobian: one row per input, one column
// per output. Same work as Jacobian, different orientation.
func JacobianT(f func([]*DualN) []*DualN, x []float64) [][]float64 {
	out := make([][]float64, len(x))
	for j := range x {
		col := f(seed(x, j))
		out[j] = make([]float64, len(col))
		for i, d := range col {
			out[j][i] = d.Derivative().Value()
		}
	}
	return out
}

// Laplacian returns the sum of the second partials of f at x, one
// two-level forward pass per input.
func Laplacian(f func([]*DualN) *DualN, x []float64) float64 {
	var acc float64
	for i := range x {
		acc += f(seed(x, i)).Derivative().Derivative().Value()
	}
	return acc
}

// seed lifts x with a unit tangent on the ith input and constants elsewhere.
func seed(x []float64, i int) []*DualN {
	in := make([]*DualN, len(x))
	for j, v := range x {
		if j == i {
			in[j] = Var(v)
		} else {
			in[j] = Const(v)
		}
	}
	return in
}
