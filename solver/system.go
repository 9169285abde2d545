// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package solver finds parameter values satisfying the constraints of one
// sketch group at a time.
//
// A solve writes the equations of the group, eliminates trivial equalities
// by substitution, solves every equation that involves a single unknown on
// its own, tests the rank of the remaining Jacobian and then runs Newton's
// method with a minimum-norm least squares step. Redundant or inconsistent
// constraints are reported through the result Status and the list of
// constraints whose removal would fix the system.
//
// A System is not safe for concurrent use; create one per goroutine.
package solver

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/curioloop/geosolve/expr"
	"github.com/curioloop/geosolve/lsq"
	"github.com/curioloop/geosolve/sketch"
)

// Tags marking solver phase membership of parameters and equations.
// Tags 1, 2, ... below these mark equations solved alone.
const (
	VarSubstituted = 10000
	VarDofTest     = 10001
	EqSubstituted  = 20000
)

// Status is the outcome of a solve.
type Status int

const (
	// Okay converged with a full rank Jacobian.
	Okay Status = iota
	// RedundantOkay converged but some constraints are redundant.
	RedundantOkay
	// DidntConverge failed to converge with a full rank Jacobian.
	DidntConverge
	// RedundantDidntConverge failed to converge and some constraints are
	// redundant.
	RedundantDidntConverge
)

func (s Status) String() string {
	switch s {
	case Okay:
		return "okay"
	case RedundantOkay:
		return "redundant-okay"
	case DidntConverge:
		return "didnt-converge"
	case RedundantDidntConverge:
		return "redundant-didnt-converge"
	}
	return fmt.Sprintf("Status(%d)", int(s))
}

// Converged reports whether the geometry satisfies every equation.
func (s Status) Converged() bool { return s == Okay || s == RedundantOkay }

// Redundant reports whether the rank test failed.
func (s Status) Redundant() bool { return s == RedundantOkay || s == RedundantDidntConverge }

// Flags select the optional work of Solve and SolveRank.
type Flags struct {
	// FindBad searches for the constraints causing a rank deficiency.
	FindBad bool
	// FindFree marks the parameters that are not fixed by the constraints.
	FindFree bool
	// ForceDofCheck disables substitution so the rank test sees every equation.
	ForceDofCheck bool
}

// Timing accumulates wall time per solve phase.
type Timing struct {
	WriteEquations time.Duration
	WriteJacobian  time.Duration
	EvalJacobian   time.Duration
	Substitution   time.Duration
	LinearSystem   time.Duration
	CalculateRank  time.Duration
}

// Summary describes the work done by a solve.
type Summary struct {
	NewtonIter int // Newton steps over every system solved
	Timing
}

// Result is the outcome of Solve or SolveRank.
type Result struct {
	Status Status
	// Dof is the number of unconstrained degrees of freedom, or -1 when it
	// could not be determined.
	Dof int
	// Bad lists the constraints to remove to fix a redundant system, or the
	// unsatisfied constraints of a system that did not converge.
	Bad []sketch.HConstraint
	Summary
}

type cell struct {
	col int
	e   *expr.Expr
}

// System holds the working parameter and equation tables of one group
// solve together with the scratch matrices.
type System struct {
	cfg Config
	log *slog.Logger
	sk  *sketch.Sketch

	param   sketch.ParamList
	eq      sketch.EquationList
	dragged map[sketch.HParam]struct{}

	mat struct {
		tag   int
		param []*sketch.Param
		eq    []*sketch.Equation
		sym   [][]cell     // symbolic Jacobian by row
		num   *lsq.Sparse  // numeric Jacobian
		b     []*expr.Expr // residual expressions
		bnum  []float64
		x     []float64
		scale []float64
	}

	timing Timing
	iter   int
}

// AddParam adds a working parameter.
func (s *System) AddParam(p sketch.Param) *sketch.Param { return s.param.Add(p) }

// LoadGroup adds a working copy of every parameter owned by group g.
func (s *System) LoadGroup(g sketch.HGroup) {
	for _, p := range s.sk.ParamsIn(g) {
		s.param.Add(sketch.Param{H: p.H, Group: p.Group, Val: p.Val})
	}
}

// Param returns the working parameter h, nil when absent.
func (s *System) Param(h sketch.HParam) *sketch.Param { return s.param.FindOrNil(h) }

// Params returns the working parameter table.
func (s *System) Params() *sketch.ParamList { return &s.param }

// AddEquation adds the equation e = 0 with handle h.
func (s *System) AddEquation(h sketch.HEquation, e *expr.Expr) { s.eq.Add(h, e) }

// Equations returns the working equation table.
func (s *System) Equations() *sketch.EquationList { return &s.eq }

// SetDragged marks parameters as being dragged.
func (s *System) SetDragged(hs ...sketch.HParam) {
	for _, h := range hs {
		s.dragged[h] = struct{}{}
	}
}

// IsDragged reports whether h is being dragged.
func (s *System) IsDragged(h sketch.HParam) bool {
	_, ok := s.dragged[h]
	return ok
}

// Clear empties the working tables, the dragged set and the scratch
// matrices so the System can solve another group.
func (s *System) Clear() {
	s.param.Clear()
	s.eq.Clear()
	clear(s.dragged)
	s.mat.param, s.mat.eq = nil, nil
	s.mat.sym, s.mat.num, s.mat.b = nil, nil, nil
	s.mat.bnum, s.mat.x, s.mat.scale = nil, nil, nil
}

// lookup resolves a parameter for evaluation: working parameters first,
// then the parameters of other groups through the sketch.
func (s *System) lookup(h sketch.HParam) *float64 {
	if p := s.param.FindOrNil(h); p != nil {
		return &p.Val
	}
	return s.sk.ValuePtr(h)
}
