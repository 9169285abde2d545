// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package lsq

import "math"

// Rank returns the pseudo-rank of 𝐀 for absolute tolerance tau.
// An empty matrix has rank 0 and is not factored.
func Rank(a *Sparse, tau float64) int {
	m, n := a.Dims()
	if m == 0 || n == 0 {
		return 0
	}
	var qr QR
	return qr.Factor(a.Dense(), m, n, tau)
}

// NormalSolve computes the minimum length solution of the generally
// non-square system 𝐀𝐱 ≅ 𝐛 through the normal equations
//
//	𝐀𝐀ᵀ𝐳 = 𝐛,  𝐱 = 𝐀ᵀ𝐳
//
// where b is an m-vector and x receives the n-vector.
//
// 𝐀𝐀ᵀ is singular when rows of 𝐀 are dependent; its pseudo-rank is taken at
// the relative threshold 20·(m+m)·ε·max‖𝐚ⱼ‖ so dependent rows contribute no
// component to 𝐳 instead of an unbounded one.
//
// It reports false when 𝐀 or 𝐛 holds NaN.
func NormalSolve(a *Sparse, b, x []float64) bool {
	m, n := a.Dims()
	if len(b) < m || len(x) < n {
		panic("bound check error")
	}
	if m == 0 || n == 0 {
		dzero(x[:n])
		return true
	}
	if a.HasNaN() || hasNaN(b[:m]) {
		return false
	}

	aat := a.MulTransposeSelf()

	cmax := zero
	for j := 0; j < m; j++ {
		cmax = math.Max(cmax, dnrm2(m, aat[m*j:], 1))
	}
	tau := 20 * float64(m+m) * eps * cmax

	z := make([]float64, m)
	copy(z, b[:m])

	var qr QR
	qr.Factor(aat, m, m, tau)
	qr.Solve(z)

	a.TransposeMulVec(z, x)
	return !hasNaN(x[:n])
}
