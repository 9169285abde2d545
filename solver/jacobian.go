// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package solver

import (
	"math"
	"time"

	"github.com/curioloop/geosolve/expr"
	"github.com/curioloop/geosolve/lsq"
	"github.com/curioloop/geosolve/numdiff"
	"github.com/curioloop/geosolve/sketch"
)

// WriteJacobian selects the parameters and equations carrying tag and
// builds the symbolic Jacobian of those equations with respect to those
// parameters. Partial derivatives that fold to zero are not stored.
func (s *System) WriteJacobian(tag int) {
	start := time.Now()
	mat := &s.mat
	mat.tag = tag
	mat.param = mat.param[:0]
	mat.eq = mat.eq[:0]

	col := make(map[sketch.HParam]int)
	for i := 0; i < s.param.Len(); i++ {
		if p := s.param.At(i); p.Tag == tag {
			col[p.H] = len(mat.param)
			mat.param = append(mat.param, p)
		}
	}
	for i := 0; i < s.eq.Len(); i++ {
		if e := s.eq.At(i); e.Tag == tag {
			mat.eq = append(mat.eq, e)
		}
	}

	m, n := len(mat.eq), len(mat.param)
	mat.sym = make([][]cell, m)
	mat.b = make([]*expr.Expr, m)
	var used []sketch.HParam
	nz := 0
	for i, e := range mat.eq {
		f := e.E.Bind(s.lookup).FoldConstants()
		used = f.ParamsUsed(used[:0])
		for _, h := range used {
			j, ok := col[h]
			if !ok {
				continue
			}
			pd := f.PartialWrt(h).FoldConstants()
			if pd.IsZeroConst() {
				continue
			}
			mat.sym[i] = append(mat.sym[i], cell{j, pd})
			nz++
		}
		mat.b[i] = f
	}

	s.log.Debug("jacobian written", "tag", tag, "equations", m, "unknowns", n, "nonzeros", nz)
	s.timing.WriteJacobian += time.Since(start)
}

// EvalJacobian evaluates the symbolic Jacobian at the current parameter
// values. Entries evaluating to exactly zero are not stored.
func (s *System) EvalJacobian() {
	start := time.Now()
	mat := &s.mat
	mat.num = lsq.NewSparse(len(mat.eq), len(mat.param))
	for i, row := range mat.sym {
		for _, c := range row {
			if v := c.e.Eval(); v != 0 {
				mat.num.Insert(i, c.col, v)
			}
		}
	}
	s.timing.EvalJacobian += time.Since(start)
}

// CalculateRank returns the rank of the numeric Jacobian. An empty matrix
// has rank zero.
func (s *System) CalculateRank() int {
	m, n := s.mat.num.Dims()
	if m == 0 || n == 0 {
		return 0
	}
	start := time.Now()
	rank := lsq.Rank(s.mat.num, s.cfg.RankTolerance)
	s.timing.CalculateRank += time.Since(start)
	return rank
}

// TestRank evaluates the Jacobian and reports whether its rows are
// independent.
func (s *System) TestRank() bool {
	s.EvalJacobian()
	return s.CalculateRank() == len(s.mat.eq)
}

func (s *System) evalResiduals() {
	mat := &s.mat
	if cap(mat.bnum) < len(mat.b) {
		mat.bnum = make([]float64, len(mat.b))
	}
	mat.bnum = mat.bnum[:len(mat.b)]
	for i, f := range mat.b {
		mat.bnum[i] = f.Eval()
	}
}

// JacobianError returns the largest absolute difference between the
// symbolic Jacobian written last and a central difference estimate at the
// current parameter values. Parameter values are restored on return.
func (s *System) JacobianError() (float64, error) {
	mat := &s.mat
	m, n := len(mat.eq), len(mat.param)
	if m == 0 || n == 0 {
		return 0, nil
	}

	x0 := make([]float64, n)
	for j, p := range mat.param {
		x0[j] = p.Val
	}
	defer func() {
		for j, p := range mat.param {
			p.Val = x0[j]
		}
	}()

	approx := numdiff.ApproxSpec{
		N: n, M: m,
		Method: numdiff.Central,
		Object: func(x, y []float64) {
			for j, p := range mat.param {
				p.Val = x[j]
			}
			for i, f := range mat.b {
				y[i] = f.Eval()
			}
		},
	}
	jac := make([]float64, m*n)
	if err := approx.Diff(append([]float64(nil), x0...), jac); err != nil {
		return 0, err
	}

	for j, p := range mat.param {
		p.Val = x0[j]
	}
	s.EvalJacobian()

	worst := 0.0
	for i := 0; i < m; i++ {
		for j := 0; j < n; j++ {
			worst = math.Max(worst, math.Abs(mat.num.At(i, j)-jac[j+i*n]))
		}
	}
	return worst, nil
}
