package shapes

import (
	"fmt"
	"strings"
)

type exprKind int

const (
	exprVar exprKind = iota
	exprConst
	exprAdd
	exprSub
	exprMul
	exprDiv
)

// Expr is a symbolic dimension expression: a variable, an integer constant,
// or an arithmetic node over two sub-expressions. Expressions are immutable
// once built.
type Expr struct {
	kind  exprKind
	scope *Scope
	name  string // exprVar
	k     int    // exprConst
	l, r  *Expr
}

// resolve evaluates the expression against the scope's current bindings.
// It reports false if any variable on a needed path is unbound.
func (e *Expr) resolve() (int, bool) {
	switch e.kind {
	case exprConst:
		return e.k, true
	case exprVar:
		if e.scope != nil {
			if v, ok := e.scope.bindings[e.name]; ok {
				return v, true
			}
		}
		return 0, false
	}
	lv, lok := e.l.resolve()
	rv, rok := e.r.resolve()
	if !lok || !rok {
		return 0, false
	}
	switch e.kind {
	case exprAdd:
		return lv + rv, true
	case exprSub:
		return lv - rv, true
	case exprMul:
		return lv * rv, true
	case exprDiv:
		if rv == 0 {
			return 0, false
		}
		return lv / rv, true
	}
	return 0, false
}

func (e *Expr) structEqual(o *Expr) bool {
	if e.kind != o.kind {
		return false
	}
	switch e.kind {
	case exprConst:
		return e.k == o.k
	case exprVar:
		return e.name == o.name
	}
	return e.l.structEqual(o.l) && e.r.structEqual(o.r)
}

// String renders the expression with explicit parentheses around compounds.
func (e *Expr) String() string {
	switch e.kind {
	case exprConst:
		return fmt.Sprintf("%d", e.k)
	case exprVar:
		return e.name
	}
	op := map[exprKind]string{exprAdd: "+", exprSub: "-", exprMul: "*", exprDiv: "/"}[e.kind]
	return "(" + e.l.String() + op + e.r.String() + ")"
}

// Scope owns a set of symbolic dimension variables and the constraints
// accumulated against them. It is the "external solver" of the constraint
// operators: checks report whether a contradiction was detected, which is a
// weaker guarantee than a proof of satisfiability.
//
// A Scope is not safe for concurrent use.
type Scope struct {
	vars     map[string]Dim
	bindings map[string]int
}

// NewScope creates an empty solver scope.
func NewScope() *Scope {
	return &Scope{
		vars:     make(map[string]Dim),
		bindings: make(map[string]int),
	}
}

// Var declares (or returns the previously declared) symbolic dimension with
// the given name.
func (s *Scope) Var(name string) Dim {
	if d, ok := s.vars[name]; ok {
		return d
	}
	d := Dim{expr: &Expr{kind: exprVar, scope: s, name: name}}
	s.vars[name] = d
	return d
}

// Bind fixes a variable to a concrete value. Later resolution and constraint
// checks see the binding.
func (s *Scope) Bind(name string, value int) {
	s.bindings[name] = value
}

// Binding reports the resolved value of a variable, if any.
func (s *Scope) Binding(name string) (int, bool) {
	v, ok := s.bindings[name]
	return v, ok
}

// checkEq decides whether l == r can hold under the current bindings.
//
// Resolution order:
//  1. both sides resolve: compare the integers;
//  2. exactly one side resolves and the other is linear in one unbound
//     variable: solve and bind the variable (this is how symbolic dims get
//     pinned during shape checking);
//  3. otherwise: no contradiction detected, report true.
func (s *Scope) checkEq(l, r *Expr) bool {
	lv, lok := l.resolve()
	rv, rok := r.resolve()
	if lok && rok {
		return lv == rv
	}
	if lok != rok {
		known, open := lv, r
		if rok {
			known, open = rv, l
		}
		if coeff, off, name, linear := linearForm(open); linear && coeff != 0 {
			if (known-off)%coeff != 0 {
				return false
			}
			v := (known - off) / coeff
			if v < 0 {
				return false
			}
			s.bindings[name] = v
			return true
		}
	}
	return true
}

// checkLe decides whether l <= r can hold under the current bindings. Both
// sides must resolve for a definite answer; anything open is reported as
// satisfiable.
func (s *Scope) checkLe(l, r *Expr) bool {
	lv, lok := l.resolve()
	rv, rok := r.resolve()
	if lok && rok {
		return lv <= rv
	}
	return true
}

// linearForm decomposes an expression into coeff*var + off when the
// expression is linear in exactly one unbound variable.
func linearForm(e *Expr) (coeff, off int, name string, ok bool) {
	switch e.kind {
	case exprConst:
		return 0, e.k, "", true
	case exprVar:
		if e.scope != nil {
			if v, bound := e.scope.bindings[e.name]; bound {
				return 0, v, "", true
			}
		}
		return 1, 0, e.name, true
	}
	lc, lo, ln, lok := linearForm(e.l)
	rc, ro, rn, rok := linearForm(e.r)
	if !lok || !rok {
		return 0, 0, "", false
	}
	if ln != "" && rn != "" && ln != rn {
		return 0, 0, "", false
	}
	if ln == "" {
		ln = rn
	}
	switch e.kind {
	case exprAdd:
		return lc + rc, lo + ro, ln, true
	case exprSub:
		return lc - rc, lo - ro, ln, true
	case exprMul:
		// Linear only when one side is a pure constant.
		if lc == 0 {
			return lo * rc, lo * ro, ln, true
		}
		if rc == 0 {
			return ro * lc, ro * lo, ln, true
		}
	case exprDiv:
		// Division keeps linearity only when the numerator divides cleanly;
		// anything else is left to the no-contradiction fallback.
		if rc == 0 && ro != 0 && lc%ro == 0 && lo%ro == 0 {
			return lc / ro, lo / ro, ln, true
		}
	}
	return 0, 0, "", false
}

// String lists the declared variables and their bindings, for diagnostics.
func (s *Scope) String() string {
	var b strings.Builder
	b.WriteString("scope{")
	first := true
	for name := range s.vars {
		if !first {
			b.WriteString(", ")
		}
		first = false
		b.WriteString(name)
		if v, ok := s.bindings[name]; ok {
			fmt.Fprintf(&b, "=%d", v)
		}
	}
	b.WriteString("}")
	return b.String()
}
