// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package sketch

import (
	"fmt"

	"github.com/curioloop/geosolve/expr"
)

// Param is a scalar unknown of the sketch.
type Param struct {
	H     HParam
	Group HGroup
	Val   float64
	// Known is set once a solve has determined the value.
	Known bool
	// Free is set when the value is not fixed by the constraints.
	Free bool
	// Tag is solver bookkeeping: 0 marks an active unknown.
	Tag int
	// Substd is the parameter this one has been replaced by, zero if none.
	Substd HParam
}

// ParamList owns parameters by value in insertion order.
// Pointers returned by Add, Find and At stay valid until the next Add or Clear.
type ParamList struct {
	elem  []Param
	index map[HParam]int
}

// Add appends p; adding a handle twice is a programmer error.
func (l *ParamList) Add(p Param) *Param {
	if l.index == nil {
		l.index = make(map[HParam]int)
	}
	if _, ok := l.index[p.H]; ok || p.H == 0 {
		panic(fmt.Sprintf("sketch: invalid or duplicate param %d", p.H))
	}
	l.index[p.H] = len(l.elem)
	l.elem = append(l.elem, p)
	return &l.elem[len(l.elem)-1]
}

// FindOrNil returns the parameter with handle h, nil when absent.
func (l *ParamList) FindOrNil(h HParam) *Param {
	if i, ok := l.index[h]; ok {
		return &l.elem[i]
	}
	return nil
}

// Find returns the parameter with handle h; a missing handle is a programmer error.
func (l *ParamList) Find(h HParam) *Param {
	p := l.FindOrNil(h)
	if p == nil {
		panic(fmt.Sprintf("sketch: param %d not found", h))
	}
	return p
}

// Has reports whether h is in the list.
func (l *ParamList) Has(h HParam) bool {
	_, ok := l.index[h]
	return ok
}

func (l *ParamList) Len() int         { return len(l.elem) }
func (l *ParamList) At(i int) *Param  { return &l.elem[i] }

// ClearTags resets the solver bookkeeping of every parameter.
func (l *ParamList) ClearTags() {
	for i := range l.elem {
		l.elem[i].Tag = 0
		l.elem[i].Substd = 0
	}
}

// Clear removes every parameter.
func (l *ParamList) Clear() {
	l.elem = l.elem[:0]
	clear(l.index)
}

// Equation is a scalar constraint E = 0.
type Equation struct {
	H   HEquation
	E   *expr.Expr
	Tag int
}

// EquationList owns equations by value in generation order.
type EquationList struct {
	elem []Equation
}

// Add appends the equation e = 0 with handle h.
func (l *EquationList) Add(h HEquation, e *expr.Expr) {
	l.elem = append(l.elem, Equation{H: h, E: e})
}

func (l *EquationList) Len() int           { return len(l.elem) }
func (l *EquationList) At(i int) *Equation { return &l.elem[i] }

// ClearTags marks every equation active.
func (l *EquationList) ClearTags() {
	for i := range l.elem {
		l.elem[i].Tag = 0
	}
}

// Clear removes every equation.
func (l *EquationList) Clear() {
	clear(l.elem)
	l.elem = l.elem[:0]
}
