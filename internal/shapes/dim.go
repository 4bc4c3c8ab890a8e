// Package shapes implements the symbolic-capable shape model.
//
// A Dim is either a concrete non-negative integer or a symbolic expression
// bound to a solver Scope. A Shape is an ordered sequence of Dims. When every
// dimension is concrete the package behaves exactly like the pure-integer
// Shape used by the dense backend (see internal/tensor); when dimensions are
// symbolic, the same precondition checks run without executing any kernel.
package shapes

import (
	"fmt"

	"github.com/pkg/errors"
)

// Dim is a single tensor dimension: a concrete value, or a symbolic
// expression when expr is non-nil.
type Dim struct {
	n    int
	expr *Expr
}

// D creates a concrete dimension.
func D(n int) Dim {
	return Dim{n: n}
}

// IsSymbolic reports whether the dimension is backed by a symbolic expression.
func (d Dim) IsSymbolic() bool {
	return d.expr != nil
}

// Value resolves the dimension to a concrete integer. Symbolic dimensions
// resolve through their scope's bindings; an unresolved dimension is an error.
func (d Dim) Value() (int, error) {
	if d.expr == nil {
		return d.n, nil
	}
	if v, ok := d.expr.resolve(); ok {
		return v, nil
	}
	return 0, errors.Errorf("dimension %s is symbolically unresolved", d.expr)
}

// MustValue resolves the dimension or panics. Used by call sites that have
// already established the dimension is concrete.
func (d Dim) MustValue() int {
	v, err := d.Value()
	if err != nil {
		panic(err)
	}
	return v
}

// lift returns the expression form of d, constructing a constant node for
// concrete dimensions. The scope is taken from the other operand.
func (d Dim) lift(scope *Scope) *Expr {
	if d.expr != nil {
		return d.expr
	}
	return &Expr{kind: exprConst, scope: scope, k: d.n}
}

// binary applies integer arithmetic when both sides are concrete and builds
// a symbolic expression node otherwise.
func (d Dim) binary(o Dim, kind exprKind, f func(a, b int) int) Dim {
	if d.expr == nil && o.expr == nil {
		return Dim{n: f(d.n, o.n)}
	}
	scope := d.scope()
	if scope == nil {
		scope = o.scope()
	}
	return Dim{expr: &Expr{kind: kind, scope: scope, l: d.lift(scope), r: o.lift(scope)}}
}

func (d Dim) scope() *Scope {
	if d.expr == nil {
		return nil
	}
	return d.expr.scope
}

// Add returns d + o.
func (d Dim) Add(o Dim) Dim {
	return d.binary(o, exprAdd, func(a, b int) int { return a + b })
}

// Sub returns d - o.
func (d Dim) Sub(o Dim) Dim {
	return d.binary(o, exprSub, func(a, b int) int { return a - b })
}

// Mul returns d * o.
func (d Dim) Mul(o Dim) Dim {
	return d.binary(o, exprMul, func(a, b int) int { return a * b })
}

// Div returns d / o (floor division, matching kernel output-size arithmetic).
func (d Dim) Div(o Dim) Dim {
	return d.binary(o, exprDiv, func(a, b int) int { return a / b })
}

// Equal is structural dimension equality: two concrete dims compare by
// value, two symbolic dims by expression structure. A concrete dim and a
// symbolic dim are equal only if the symbolic side resolves to the same
// value.
func (d Dim) Equal(o Dim) bool {
	dv, derr := d.Value()
	ov, oerr := o.Value()
	if derr == nil && oerr == nil {
		return dv == ov
	}
	if d.expr != nil && o.expr != nil {
		return d.expr.structEqual(o.expr)
	}
	return false
}

// ConstrainEq asks the scope's solver whether d == o can hold. A true result
// means no contradiction was detected, not that the equality is proven; an
// unresolved relation is reported as satisfiable.
func (d Dim) ConstrainEq(o Dim) bool {
	if d.expr == nil && o.expr == nil {
		return d.n == o.n
	}
	scope := d.scope()
	if scope == nil {
		scope = o.scope()
	}
	return scope.checkEq(d.lift(scope), o.lift(scope))
}

// ConstrainLe asks the scope's solver whether d <= o can hold, with the same
// no-contradiction-detected semantics as ConstrainEq.
func (d Dim) ConstrainLe(o Dim) bool {
	if d.expr == nil && o.expr == nil {
		return d.n <= o.n
	}
	scope := d.scope()
	if scope == nil {
		scope = o.scope()
	}
	return scope.checkLe(d.lift(scope), o.lift(scope))
}

// String renders the concrete value, or the expression for symbolic dims.
func (d Dim) String() string {
	if d.expr != nil {
		return d.expr.String()
	}
	return fmt.Sprintf("%d", d.n)
}
