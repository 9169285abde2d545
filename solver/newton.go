// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package solver

import (
	"math"
	"time"

	"github.com/curioloop/geosolve/lsq"
)

// solveLeastSquares computes the minimum-norm step 𝐗 with 𝐉𝐗 = 𝐁 for the
// residuals 𝐁 of the current operating point.
//
// The columns of 𝐉 are first scaled by 𝐒, DragScale for dragged parameters
// and 1 otherwise, so the step favours moving the parameters that are not
// being dragged:
//
//	𝐀 = 𝐉𝐒,  𝐀𝐀ᵀ𝐳 = 𝐁,  𝐗 = 𝐒𝐀ᵀ𝐳
func (s *System) solveLeastSquares() bool {
	mat := &s.mat
	n := len(mat.param)
	if cap(mat.scale) < n {
		mat.scale = make([]float64, n)
		mat.x = make([]float64, n)
	}
	mat.scale, mat.x = mat.scale[:n], mat.x[:n]

	for j, p := range mat.param {
		mat.scale[j] = 1
		if s.IsDragged(p.H) {
			mat.scale[j] = s.cfg.DragScale
		}
	}
	mat.num.ScaleColumns(mat.scale)

	start := time.Now()
	ok := lsq.NormalSolve(mat.num, mat.bnum, mat.x)
	s.timing.LinearSystem += time.Since(start)
	if !ok {
		return false
	}

	for j := range mat.x {
		mat.x[j] *= mat.scale[j]
	}
	return true
}

// NewtonSolve runs Newton's method on the parameters and equations carrying
// tag, writing their Jacobian first unless the last WriteJacobian already
// selected tag. It reports whether every residual fell below the converge
// tolerance within the iteration budget; a NaN parameter or residual aborts.
func (s *System) NewtonSolve(tag int) bool {
	mat := &s.mat
	if mat.tag != tag || mat.sym == nil {
		s.WriteJacobian(tag)
	}

	s.evalResiduals()
	converged := false
	iter := 0
	for ; iter < s.cfg.MaxIterations && !converged; iter++ {
		s.EvalJacobian()
		if !s.solveLeastSquares() {
			break
		}

		// 𝐉(𝐱ₖ)(𝐱ₖ₊₁ - 𝐱ₖ) = -𝐅(𝐱ₖ)
		for j, p := range mat.param {
			p.Val -= mat.x[j]
			if math.IsNaN(p.Val) {
				s.iter += iter + 1
				return false
			}
		}

		s.evalResiduals()
		converged = true
		for _, r := range mat.bnum {
			if math.IsNaN(r) {
				s.iter += iter + 1
				return false
			}
			if math.Abs(r) > s.cfg.ConvergeTolerance {
				converged = false
				break
			}
		}
	}

	s.iter += iter
	s.log.Debug("newton finished", "tag", tag, "steps", iter, "converged", converged)
	return converged
}
