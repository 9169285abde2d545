// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package expr implements the symbolic scalar expressions that constraint
// equations are written in.
//
// An expression is a tree of operations over constants and parameter handles.
// The solver only relies on four things: build an expression from parameters,
// take its exact partial derivative 𝜕f/𝜕p with respect to any parameter, fold
// constant sub-trees, and evaluate it at the current parameter values.
//
// Evaluation requires the tree to be bound first: Bind deep-copies the tree and
// replaces every parameter handle with a pointer to its live value, so that
// repeated evaluation during Newton iterations never goes through a lookup.
package expr

import (
	"fmt"
	"math"
	"strconv"
)

// Param is the handle of a scalar unknown. The zero handle refers to nothing.
type Param uint32

// Op is the operation of an expression node.
type Op int

const (
	// OpParam references a parameter by handle.
	OpParam Op = iota
	// OpParamPtr references a parameter value directly, produced by Bind.
	OpParamPtr
	// OpConst is a numeric constant.
	OpConst

	OpPlus
	OpMinus
	OpTimes
	OpDiv

	OpNegate
	OpSqrt
	OpSquare
	OpSin
	OpCos
	OpASin
	OpACos
)

// Expr is a node of the expression tree.
type Expr struct {
	op  Op
	par Param
	ptr *float64
	v   float64
	a   *Expr
	b   *Expr
}

// FromParam returns the expression referencing parameter p.
func FromParam(p Param) *Expr { return &Expr{op: OpParam, par: p} }

// FromConst returns the constant expression v.
func FromConst(v float64) *Expr { return &Expr{op: OpConst, v: v} }

func binary(op Op, a, b *Expr) *Expr { return &Expr{op: op, a: a, b: b} }
func unary(op Op, a *Expr) *Expr     { return &Expr{op: op, a: a} }

func (e *Expr) Plus(b *Expr) *Expr  { return binary(OpPlus, e, b) }
func (e *Expr) Minus(b *Expr) *Expr { return binary(OpMinus, e, b) }
func (e *Expr) Times(b *Expr) *Expr { return binary(OpTimes, e, b) }
func (e *Expr) Div(b *Expr) *Expr   { return binary(OpDiv, e, b) }
func (e *Expr) Negate() *Expr       { return unary(OpNegate, e) }
func (e *Expr) Sqrt() *Expr         { return unary(OpSqrt, e) }
func (e *Expr) Square() *Expr       { return unary(OpSquare, e) }
func (e *Expr) Sin() *Expr          { return unary(OpSin, e) }
func (e *Expr) Cos() *Expr          { return unary(OpCos, e) }
func (e *Expr) ASin() *Expr         { return unary(OpASin, e) }
func (e *Expr) ACos() *Expr         { return unary(OpACos, e) }

// Op returns the operation of the node.
func (e *Expr) Op() Op { return e.op }

// Param returns the parameter handle of an OpParam or OpParamPtr node.
func (e *Expr) Param() Param { return e.par }

// Value returns the value of an OpConst node.
func (e *Expr) Value() float64 { return e.v }

// Operands returns the children of the node, nil where absent.
func (e *Expr) Operands() (a, b *Expr) { return e.a, e.b }

// Children returns the number of operands of the node.
func (e *Expr) Children() int {
	switch e.op {
	case OpParam, OpParamPtr, OpConst:
		return 0
	case OpPlus, OpMinus, OpTimes, OpDiv:
		return 2
	case OpNegate, OpSqrt, OpSquare, OpSin, OpCos, OpASin, OpACos:
		return 1
	default:
		panic(fmt.Sprintf("expr: unexpected operation %d", e.op))
	}
}

// IsZeroConst reports whether e is the constant zero.
func (e *Expr) IsZeroConst() bool { return e.op == OpConst && e.v == 0 }

// IsParam reports whether e is a bare parameter reference.
func (e *Expr) IsParam() bool { return e.op == OpParam || e.op == OpParamPtr }

// DeepCopy returns a copy of e sharing no nodes with it.
func (e *Expr) DeepCopy() *Expr {
	n := *e
	switch e.Children() {
	case 2:
		n.b = e.b.DeepCopy()
		fallthrough
	case 1:
		n.a = e.a.DeepCopy()
	}
	return &n
}

// Bind returns a deep copy of e in which every parameter reference points at
// the value returned by lookup. A nil pointer from lookup is a programmer error.
func (e *Expr) Bind(lookup func(Param) *float64) *Expr {
	n := *e
	switch e.op {
	case OpParam, OpParamPtr:
		ptr := lookup(e.par)
		if ptr == nil {
			panic(fmt.Sprintf("expr: no value for parameter %d", e.par))
		}
		n.op, n.ptr = OpParamPtr, ptr
		return &n
	}
	switch e.Children() {
	case 2:
		n.b = e.b.Bind(lookup)
		fallthrough
	case 1:
		n.a = e.a.Bind(lookup)
	}
	return &n
}

// Eval evaluates a bound expression.
func (e *Expr) Eval() float64 {
	switch e.op {
	case OpParam:
		panic(fmt.Sprintf("expr: parameter %d is not bound", e.par))
	case OpParamPtr:
		return *e.ptr
	case OpConst:
		return e.v
	case OpPlus:
		return e.a.Eval() + e.b.Eval()
	case OpMinus:
		return e.a.Eval() - e.b.Eval()
	case OpTimes:
		return e.a.Eval() * e.b.Eval()
	case OpDiv:
		return e.a.Eval() / e.b.Eval()
	case OpNegate:
		return -e.a.Eval()
	case OpSqrt:
		return math.Sqrt(e.a.Eval())
	case OpSquare:
		v := e.a.Eval()
		return v * v
	case OpSin:
		return math.Sin(e.a.Eval())
	case OpCos:
		return math.Cos(e.a.Eval())
	case OpASin:
		return math.Asin(e.a.Eval())
	case OpACos:
		return math.Acos(e.a.Eval())
	default:
		panic(fmt.Sprintf("expr: unexpected operation %d", e.op))
	}
}

// PartialWrt returns the symbolic partial derivative 𝜕e/𝜕p.
// The result is not folded; callers usually follow with FoldConstants.
func (e *Expr) PartialWrt(p Param) *Expr {
	switch e.op {
	case OpParam, OpParamPtr:
		if e.par == p {
			return FromConst(1)
		}
		return FromConst(0)
	case OpConst:
		return FromConst(0)
	case OpPlus:
		return e.a.PartialWrt(p).Plus(e.b.PartialWrt(p))
	case OpMinus:
		return e.a.PartialWrt(p).Minus(e.b.PartialWrt(p))
	case OpTimes:
		// (ab)′ = a′b + ab′
		da, db := e.a.PartialWrt(p), e.b.PartialWrt(p)
		return da.Times(e.b).Plus(e.a.Times(db))
	case OpDiv:
		// (a/b)′ = (a′b - ab′) / b²
		da, db := e.a.PartialWrt(p), e.b.PartialWrt(p)
		return da.Times(e.b).Minus(e.a.Times(db)).Div(e.b.Square())
	case OpNegate:
		return e.a.PartialWrt(p).Negate()
	case OpSqrt:
		// (√a)′ = a′ / 2√a
		return e.a.PartialWrt(p).Div(FromConst(2).Times(e.a.Sqrt()))
	case OpSquare:
		return FromConst(2).Times(e.a).Times(e.a.PartialWrt(p))
	case OpSin:
		return e.a.Cos().Times(e.a.PartialWrt(p))
	case OpCos:
		return e.a.Sin().Times(e.a.PartialWrt(p)).Negate()
	case OpASin:
		// (asin a)′ = a′ / √(1-a²)
		return e.a.PartialWrt(p).Div(FromConst(1).Minus(e.a.Square()).Sqrt())
	case OpACos:
		return e.a.PartialWrt(p).Div(FromConst(1).Minus(e.a.Square()).Sqrt()).Negate()
	default:
		panic(fmt.Sprintf("expr: unexpected operation %d", e.op))
	}
}

// FoldConstants returns an equivalent expression with constant sub-trees
// evaluated and the identities x+0, x-0, x·1, x·0, 0/x, -0 applied.
// The result shares no nodes with e.
func (e *Expr) FoldConstants() *Expr {
	n := *e
	switch e.Children() {
	case 0:
		return &n
	case 2:
		n.b = e.b.FoldConstants()
		fallthrough
	case 1:
		n.a = e.a.FoldConstants()
	}

	a, b := n.a, n.b
	switch n.op {
	case OpPlus, OpMinus, OpTimes, OpDiv:
		if a.op == OpConst && b.op == OpConst {
			return FromConst(n.Eval())
		}
	default:
		if a.op == OpConst {
			return FromConst(n.Eval())
		}
	}

	switch n.op {
	case OpPlus:
		if a.IsZeroConst() {
			return b
		}
		if b.IsZeroConst() {
			return a
		}
	case OpMinus:
		if b.IsZeroConst() {
			return a
		}
		if a.IsZeroConst() {
			return b.Negate()
		}
	case OpTimes:
		if a.IsZeroConst() || b.IsZeroConst() {
			return FromConst(0)
		}
		if a.op == OpConst && a.v == 1 {
			return b
		}
		if b.op == OpConst && b.v == 1 {
			return a
		}
	case OpDiv:
		if a.IsZeroConst() {
			return FromConst(0)
		}
		if b.op == OpConst && b.v == 1 {
			return a
		}
	}
	return &n
}

// ParamsUsed appends every distinct parameter handle referenced by e to list.
func (e *Expr) ParamsUsed(list []Param) []Param {
	switch e.op {
	case OpParam, OpParamPtr:
		for _, p := range list {
			if p == e.par {
				return list
			}
		}
		return append(list, e.par)
	}
	switch e.Children() {
	case 2:
		list = e.a.ParamsUsed(list)
		return e.b.ParamsUsed(list)
	case 1:
		return e.a.ParamsUsed(list)
	}
	return list
}

// DependsOn reports whether e references parameter p.
func (e *Expr) DependsOn(p Param) bool {
	switch e.op {
	case OpParam, OpParamPtr:
		return e.par == p
	}
	switch e.Children() {
	case 2:
		return e.a.DependsOn(p) || e.b.DependsOn(p)
	case 1:
		return e.a.DependsOn(p)
	}
	return false
}

// ReferencedParams counts the distinct parameters of e accepted by has.
// When exactly one is referenced it is returned with n = 1; otherwise n is
// 0 or 2 (meaning two or more) and p is zero.
func (e *Expr) ReferencedParams(has func(Param) bool) (p Param, n int) {
	switch e.op {
	case OpParam, OpParamPtr:
		if has(e.par) {
			return e.par, 1
		}
		return 0, 0
	}
	switch e.Children() {
	case 1:
		return e.a.ReferencedParams(has)
	case 2:
		pa, na := e.a.ReferencedParams(has)
		if na > 1 {
			return 0, 2
		}
		pb, nb := e.b.ReferencedParams(has)
		switch {
		case nb > 1:
			return 0, 2
		case na == 0:
			return pb, nb
		case nb == 0 || pa == pb:
			return pa, na
		default:
			return 0, 2
		}
	}
	return 0, 0
}

// SubstituteParams rewrites, in place, every parameter reference of e to the
// handle returned by by.
func (e *Expr) SubstituteParams(by func(Param) Param) {
	switch e.op {
	case OpParamPtr:
		panic("expr: substitution requires parameters referenced by handle")
	case OpParam:
		e.par = by(e.par)
		return
	}
	switch e.Children() {
	case 2:
		e.b.SubstituteParams(by)
		fallthrough
	case 1:
		e.a.SubstituteParams(by)
	}
}

// String prints the expression in a prefix-free infix form for diagnostics.
func (e *Expr) String() string {
	switch e.op {
	case OpParam, OpParamPtr:
		return "p" + strconv.FormatUint(uint64(e.par), 16)
	case OpConst:
		return strconv.FormatFloat(e.v, 'g', -1, 64)
	case OpPlus:
		return "(" + e.a.String() + " + " + e.b.String() + ")"
	case OpMinus:
		return "(" + e.a.String() + " - " + e.b.String() + ")"
	case OpTimes:
		return "(" + e.a.String() + " * " + e.b.String() + ")"
	case OpDiv:
		return "(" + e.a.String() + " / " + e.b.String() + ")"
	case OpNegate:
		return "-" + e.a.String()
	case OpSqrt:
		return "sqrt(" + e.a.String() + ")"
	case OpSquare:
		return "square(" + e.a.String() + ")"
	case OpSin:
		return "sin(" + e.a.String() + ")"
	case OpCos:
		return "cos(" + e.a.String() + ")"
	case OpASin:
		return "asin(" + e.a.String() + ")"
	case OpACos:
		return "acos(" + e.a.String() + ")"
	default:
		panic(fmt.Sprintf("expr: unexpected operation %d", e.op))
	}
}
