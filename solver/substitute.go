// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package solver

import (
	"time"

	"github.com/curioloop/geosolve/expr"
	"github.com/curioloop/geosolve/sketch"
)

// GetLastParamSubstitution follows the substitution chain of p to its
// representative. A chain never cycles in a consistent system; a cycle is
// broken where it is detected and logged.
func (s *System) GetLastParamSubstitution(p *sketch.Param) *sketch.Param {
	cur := p
	for steps := 0; cur.Substd != 0; steps++ {
		next := s.param.Find(cur.Substd)
		if next == p {
			s.log.Error("substitution cycle broken", "param", p.H)
			p.Substd = 0
			return p
		}
		if steps > s.param.Len() {
			// the cycle does not pass through p
			s.log.Error("substitution cycle broken", "param", cur.H)
			cur.Substd = 0
			break
		}
		cur = next
	}
	return cur
}

// SortSubstitutionByDragged re-links the chain starting at p so that the
// last dragged parameter on it, or p itself when none is dragged, becomes
// the representative of every other parameter on the chain.
func (s *System) SortSubstitutionByDragged(p *sketch.Param) {
	var chain []*sketch.Param
	var by *sketch.Param
	for cur := p; cur != nil; {
		chain = append(chain, cur)
		if s.IsDragged(cur.H) {
			by = cur
		}
		if cur.Substd == 0 {
			break
		}
		cur = s.param.Find(cur.Substd)
	}
	if by == nil {
		by = p
	}
	for _, q := range chain {
		if q == by {
			continue
		}
		q.Substd = by.H
		q.Tag = VarSubstituted
	}
	by.Substd = 0
	by.Tag = 0
}

func (s *System) substituteParamsByLast(e *expr.Expr) {
	e.SubstituteParams(func(h sketch.HParam) sketch.HParam {
		if p := s.param.FindOrNil(h); p != nil {
			return s.GetLastParamSubstitution(p).H
		}
		return h
	})
}

// SolveBySubstitution eliminates every equation of the form a - b between
// two working parameters by replacing one of them with the other in every
// equation. A dragged parameter is kept in preference to the other one.
func (s *System) SolveBySubstitution() {
	start := time.Now()
	for i := 0; i < s.eq.Len(); i++ {
		teq := s.eq.At(i)
		tex := teq.E
		if tex.Op() != expr.OpMinus {
			continue
		}
		ea, eb := tex.Operands()
		if ea.Op() != expr.OpParam || eb.Op() != expr.OpParam {
			continue
		}
		a, b := ea.Param(), eb.Param()
		// equations on outside parameters are solved alone or flagged later
		if !s.param.Has(a) || !s.param.Has(b) {
			continue
		}
		if a == b {
			teq.Tag = EqSubstituted
			continue
		}
		if s.IsDragged(a) {
			a, b = b, a
		}

		pa, pb := s.param.Find(a), s.param.Find(b)
		last := s.GetLastParamSubstitution(pa)
		last.Substd = pb.H
		last.Tag = VarSubstituted

		if pb.Substd != 0 {
			// the new link closes a loop when a and b were already merged
			s.GetLastParamSubstitution(pb)
			if pb.Substd == 0 {
				pb.Tag = 0
			}
		}
		teq.Tag = EqSubstituted
	}

	for i := 0; i < s.param.Len(); i++ {
		s.SortSubstitutionByDragged(s.param.At(i))
	}

	for i := 0; i < s.eq.Len(); i++ {
		s.substituteParamsByLast(s.eq.At(i).E)
	}

	for i := 0; i < s.param.Len(); i++ {
		p := s.param.At(i)
		if p.Substd == 0 {
			continue
		}
		p.Substd = s.GetLastParamSubstitution(s.param.Find(p.Substd)).H
	}

	s.timing.Substitution += time.Since(start)
}

// resolveSubstituted copies each representative's value into the
// parameters it replaced.
func (s *System) resolveSubstituted() {
	for i := 0; i < s.param.Len(); i++ {
		p := s.param.At(i)
		if p.Tag == VarSubstituted && p.Substd != 0 {
			p.Val = s.param.Find(p.Substd).Val
		}
	}
}
