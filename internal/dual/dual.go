// Package dual implements scalar forward-mode differentiation to arbitrary
// order. A DualN is a lazily unrolled tower of derivatives at a point: the
// value plus a suspended computation of the next derivative, itself a
// DualN. Arithmetic on towers applies the usual calculus rules one level
// down, so the nth derivative of any composite expression is available by
// walking the tower n times; nothing beyond the levels actually walked is
// ever computed, and every level is computed at most once.
package dual

import "math"

// DualN is one level of a derivative tower. Values are immutable; the
// derivative thunk runs at most once and its result is cached.
type DualN struct {
	value float64
	deriv func() *DualN
	memo  *DualN
}

// zero is the all-zero tower: its derivative is itself.
var zero = func() *DualN {
	z := &DualN{}
	z.memo = z
	return z
}()

// Const lifts a constant: every derivative is zero.
func Const(v float64) *DualN {
	if v == 0 {
		return zero
	}
	return &DualN{value: v, memo: zero}
}

// Var lifts the variable of differentiation: derivative one, then zeros.
func Var(v float64) *DualN {
	return &DualN{value: v, memo: Const(1)}
}

// WithTangent lifts a value with an explicit first derivative, for
// directional seeding. Higher derivatives are zero.
func WithTangent(v, dv float64) *DualN {
	return &DualN{value: v, memo: Const(dv)}
}

// lift builds a tower level from a value and a suspended derivative.
func lift(v float64, deriv func() *DualN) *DualN {
	return &DualN{value: v, deriv: deriv}
}

// Value returns the primal value at this level.
func (a *DualN) Value() float64 {
	return a.value
}

// Derivative forces one level of the tower.
func (a *DualN) Derivative() *DualN {
	if a.memo == nil {
		a.memo = a.deriv()
		a.deriv = nil
	}
	return a.memo
}

func (a *DualN) Add(b *DualN) *DualN {
	return lift(a.value+b.value, func() *DualN {
		return a.Derivative().Add(b.Derivative())
	})
}

func (a *DualN) Sub(b *DualN) *DualN {
	return lift(a.value-b.value, func() *DualN {
		return a.Derivative().Sub(b.Derivative())
	})
}

// Mul applies the product rule with full towers on both sides, so every
// higher derivative of the product is reachable.
func (a *DualN) Mul(b *DualN) *DualN {
	return lift(a.value*b.value, func() *DualN {
		return a.Derivative().Mul(b).Add(a.Mul(b.Derivative()))
	})
}

func (a *DualN) Div(b *DualN) *DualN {
	return lift(a.value/b.value, func() *DualN {
		num := a.Derivative().Mul(b).Sub(a.Mul(b.Derivative()))
		return num.Div(b.Mul(b))
	})
}

func (a *DualN) Neg() *DualN {
	return lift(-a.value, func() *DualN {
		return a.Derivative().Neg()
	})
}

func (a *DualN) AddConst(c float64) *DualN {
	return lift(a.value+c, func() *DualN {
		return a.Derivative()
	})
}

func (a *DualN) MulConst(c float64) *DualN {
	return lift(a.value*c, func() *DualN {
		return a.Derivative().MulConst(c)
	})
}

// PowConst raises the tower to a constant power: d(a^c) = c a^(c-1) da.
func (a *DualN) PowConst(c float64) *DualN {
	return lift(math.Pow(a.value, c), func() *DualN {
		return a.Derivative().Mul(a.PowConst(c - 1)).MulConst(c)
	})
}

// Pow raises the tower to a tower power via exp(b ln a), so the base must
// be positive.
func (a *DualN) Pow(b *DualN) *DualN {
	return b.Mul(a.Log()).Exp()
}

func (a *DualN) Abs() *DualN {
	sign := Const(1)
	if a.value < 0 {
		sign = Const(-1)
	}
	return lift(math.Abs(a.value), func() *DualN {
		return a.Derivative().Mul(sign)
	})
}

// Exp self-references its result: d(e^a) = e^a da, and the same tower
// serves every level.
func (a *DualN) Exp() *DualN {
	var e *DualN
	e = lift(math.Exp(a.value), func() *DualN {
		return a.Derivative().Mul(e)
	})
	return e
}

func (a *DualN) Log() *DualN {
	return lift(math.Log(a.value), func() *DualN {
		return a.Derivative().Div(a)
	})
}

func (a *DualN) Sqrt() *DualN {
	var s *DualN
	s = lift(math.Sqrt(a.value), func() *DualN {
		return a.Derivative().Div(s.MulConst(2))
	})
	return s
}

func (a *DualN) Sin() *DualN {
	return lift(math.Sin(a.value), func() *DualN {
		return a.Derivative().Mul(a.Cos())
	})
}

func (a *DualN) Cos() *DualN {
	return lift(math.Cos(a.value), func() *DualN {
		return a.Derivative().Mul(a.Sin()).Neg()
	})
}

func (a *DualN) Tanh() *DualN {
	var t *DualN
	t = lift(math.Tanh(a.value), func() *DualN {
		return a.Derivative().Mul(Const(1).Sub(t.Mul(t)))
	})
	return t
}
