// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package solver

import (
	"math"
	"slices"
	"time"

	"github.com/curioloop/geosolve/sketch"
)

// WriteEquationsExceptFor appends the equations of group g, leaving out
// constraint hc (sketch.NoConstraint to keep all).
//
// Labelled dimensions of an AllDimsReference group are updated to match
// the geometry instead of generating equations. A RelaxConstraints group
// keeps only its point coincidences besides the equations of its entities
// and of the group itself.
func (s *System) WriteEquationsExceptFor(hc sketch.HConstraint, g *sketch.Group) {
	start := time.Now()
	for _, c := range s.sk.ConstraintsIn(g.H) {
		if c.H == hc {
			continue
		}
		if c.HasLabel() && c.Type != sketch.Comment && g.AllDimsReference {
			c.ModifyToSatisfy(s.sk)
			continue
		}
		if g.RelaxConstraints && c.Type != sketch.PointsCoincident {
			continue
		}
		c.GenerateEquations(s.sk, &s.eq)
	}
	for _, e := range s.sk.EntitiesIn(g.H) {
		s.sk.GenerateEntityEquations(e, &s.eq)
	}
	g.GenerateEquations(&s.eq)
	s.timing.WriteEquations += time.Since(start)
}

// FindWhichToRemoveToFixJacobian returns the constraints of g whose removal
// alone gives a full rank Jacobian. Point coincidences are tried last.
func (s *System) FindWhichToRemoveToFixJacobian(g *sketch.Group, forceDofCheck bool) []sketch.HConstraint {
	var bad []sketch.HConstraint
	cs := s.sk.ConstraintsIn(g.H)
	for pass := 0; pass < 2; pass++ {
		for _, c := range cs {
			if (c.Type == sketch.PointsCoincident) != (pass == 1) {
				continue
			}

			s.param.ClearTags()
			s.eq.Clear()
			s.WriteEquationsExceptFor(c.H, g)
			s.eq.ClearTags()

			if !forceDofCheck {
				s.SolveBySubstitution()
			}

			s.WriteJacobian(0)
			s.EvalJacobian()
			if s.CalculateRank() == len(s.mat.eq) {
				bad = append(bad, c.H)
			}
		}
	}
	return bad
}

// MarkParamsFree clears the free mark of every working parameter. With
// find set, each active parameter is in turn held fixed; when the rest of
// the Jacobian stays full rank the parameter is marked free.
func (s *System) MarkParamsFree(find bool) {
	for i := 0; i < s.param.Len(); i++ {
		p := s.param.At(i)
		p.Free = false
		if !find || p.Tag != 0 {
			continue
		}
		p.Tag = VarDofTest
		s.WriteJacobian(0)
		s.EvalJacobian()
		if s.CalculateRank() == len(s.mat.eq) {
			p.Free = true
		}
		p.Tag = 0
	}
}

// CalculateDof returns the number of unknowns minus the number of equations
// of the last written Jacobian. Substitution and equations solved alone
// remove one unknown together with one equation and do not change it.
func (s *System) CalculateDof() int {
	return len(s.mat.param) - len(s.mat.eq)
}

// begin writes the equations of g. The parameters of g are loaded first
// when the working set is empty.
func (s *System) begin(g *sketch.Group) {
	if s.param.Len() == 0 {
		s.LoadGroup(g.H)
	}
	s.timing = Timing{}
	s.iter = 0
	s.eq.Clear()
	s.WriteEquationsExceptFor(sketch.NoConstraint, g)
	s.param.ClearTags()
	s.eq.ClearTags()
}

func (s *System) result(st Status, dof int, bad []sketch.HConstraint) *Result {
	s.log.Debug("solve timing",
		"writeEquations", s.timing.WriteEquations,
		"writeJacobian", s.timing.WriteJacobian,
		"evalJacobian", s.timing.EvalJacobian,
		"substitution", s.timing.Substitution,
		"linearSystem", s.timing.LinearSystem,
		"calculateRank", s.timing.CalculateRank)
	return &Result{
		Status:  st,
		Dof:     dof,
		Bad:     bad,
		Summary: Summary{NewtonIter: s.iter, Timing: s.timing},
	}
}

// Solve solves group g and writes the values found back into the sketch.
// Parameters added with LoadGroup or AddParam form the unknowns; with none,
// the parameters of g are loaded.
func (s *System) Solve(g *sketch.Group, flags Flags) *Result {
	s.begin(g)
	s.log.Debug("solving group", "group", g.Name, "params", s.param.Len(), "equations", s.eq.Len())

	// Substitution would overwrite an eliminated parameter with its
	// representative, so values that are not finite are caught first.
	if bad, found := s.nonFinite(); found {
		s.commit(false)
		s.log.Debug("group has parameters that are not finite", "group", g.Name, "constraints", len(bad))
		return s.result(DidntConverge, -1, bad)
	}

	if g.AllowRedundant || !flags.ForceDofCheck {
		s.SolveBySubstitution()
	}

	// Equations with a single unknown are solved on their own. An
	// inconsistency among them is caught by the rank test later.
	alone := 1
	for i := 0; i < s.eq.Len(); i++ {
		e := s.eq.At(i)
		if e.Tag != 0 {
			continue
		}
		h, n := e.E.ReferencedParams(s.param.Has)
		if n != 1 {
			continue
		}
		p := s.param.Find(h)
		if p.Tag != 0 {
			continue
		}
		e.Tag, p.Tag = alone, alone
		s.WriteJacobian(alone)
		if !s.NewtonSolve(alone) {
			return s.didntConverge(g, true)
		}
		alone++
	}

	s.WriteJacobian(0)
	rankOk := !g.AllowRedundant && s.TestRank()

	if !s.NewtonSolve(0) {
		return s.didntConverge(g, rankOk)
	}

	rankOk = !g.AllowRedundant && s.TestRank()

	if s.cfg.VerifyJacobian {
		if worst, err := s.JacobianError(); err != nil {
			s.log.Warn("jacobian check failed", "group", g.Name, "err", err)
		} else {
			s.log.Debug("jacobian check", "group", g.Name, "maxError", worst)
		}
	}

	dof := -1
	var bad []sketch.HConstraint
	if !rankOk {
		if !g.AllowRedundant && flags.FindBad {
			s.resolveSubstituted()
			bad = s.FindWhichToRemoveToFixJacobian(g, flags.ForceDofCheck)
		}
	} else {
		dof = s.CalculateDof()
		s.MarkParamsFree(flags.FindFree)
	}
	s.commit(true)

	st := RedundantOkay
	if rankOk {
		st = Okay
	}
	return s.result(st, dof, bad)
}

// nonFinite reports whether a working parameter is NaN or infinite,
// together with the constraints whose equations read one, each once.
func (s *System) nonFinite() (bad []sketch.HConstraint, found bool) {
	invalid := make(map[sketch.HParam]bool)
	for i := 0; i < s.param.Len(); i++ {
		if p := s.param.At(i); math.IsNaN(p.Val) || math.IsInf(p.Val, 0) {
			invalid[p.H] = true
		}
	}
	if len(invalid) == 0 {
		return nil, false
	}

	seen := make(map[sketch.HConstraint]bool)
	var used []sketch.HParam
	for i := 0; i < s.eq.Len(); i++ {
		e := s.eq.At(i)
		if !e.H.IsFromConstraint() || seen[e.H.Constraint()] {
			continue
		}
		used = e.E.ParamsUsed(used[:0])
		if slices.ContainsFunc(used, func(h sketch.HParam) bool { return invalid[h] }) {
			seen[e.H.Constraint()] = true
			bad = append(bad, e.H.Constraint())
		}
	}
	return bad, true
}

// didntConverge reports the constraints owning the unsatisfied equations of
// the system solved last, each once.
func (s *System) didntConverge(g *sketch.Group, rankOk bool) *Result {
	var bad []sketch.HConstraint
	seen := make(map[sketch.HConstraint]bool)
	for i, e := range s.mat.eq {
		r := s.mat.bnum[i]
		if !(math.Abs(r) > s.cfg.ConvergeTolerance || math.IsNaN(r)) {
			continue
		}
		if !e.H.IsFromConstraint() {
			continue
		}
		hc := e.H.Constraint()
		if !seen[hc] {
			seen[hc] = true
			bad = append(bad, hc)
		}
	}
	s.commit(false)
	s.log.Debug("group did not converge", "group", g.Name, "unsatisfied", len(bad))

	st := RedundantDidntConverge
	if rankOk {
		st = DidntConverge
	}
	return s.result(st, -1, bad)
}

// commit writes the working values back into the sketch. Substituted
// parameters take the value of their representative. A failed solve keeps
// the previous value wherever the new one is not finite.
func (s *System) commit(converged bool) {
	s.resolveSubstituted()
	for i := 0; i < s.param.Len(); i++ {
		p := s.param.At(i)
		pp := s.sk.GetParam(p.H)
		if converged || !(math.IsNaN(p.Val) || math.IsInf(p.Val, 0)) {
			pp.Val = p.Val
		}
		pp.Known = converged
		pp.Free = p.Free
	}
}

// SolveRank runs the rank test of group g without solving it, reporting
// Okay or RedundantOkay. Parameters are loaded as by Solve; their values
// are not written back.
func (s *System) SolveRank(g *sketch.Group, flags Flags) *Result {
	s.begin(g)

	if !flags.ForceDofCheck {
		s.SolveBySubstitution()
	}

	s.WriteJacobian(0)
	if s.TestRank() {
		dof := s.CalculateDof()
		s.MarkParamsFree(flags.FindFree)
		return s.result(Okay, dof, nil)
	}

	var bad []sketch.HConstraint
	if !g.AllowRedundant && flags.FindBad {
		bad = s.FindWhichToRemoveToFixJacobian(g, flags.ForceDofCheck)
	}
	return s.result(RedundantOkay, -1, bad)
}
