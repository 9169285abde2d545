// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package lsq

import "math"

// QR holds the Householder triangulation with column interchanges 𝐐𝐀𝐏 = 𝐑 of
// an m × n matrix 𝐀 together with the pseudo-rank k it implies.
//
// # Pseudo Rank
//
// Column j is chosen at step j as the remaining column whose sum of squares
// in rows j, ..., m-1 is greatest, so the diagonal of 𝐑 is non-increasing in
// magnitude. The pseudo-rank is the number of diagonal elements exceeding a
// user-specified absolute tolerance 𝛕 > 0. It is not a property of 𝐀 alone:
// it tells how many constraint rows are independent at the scale 𝛕.
//
// # Minimum Length Solution
//
// When k < n the leading k rows [𝐑₁₁:𝐑₁₂] are further triangulated from the
// right by orthogonal 𝐊 such that [𝐑₁₁:𝐑₁₂]𝐊 = [𝐖:೦]. The solution of minimum
// length of 𝐀𝐱 ≅ 𝐛 is then 𝐱 = 𝐏𝐊[𝐖⁻¹𝐜₁ ೦]ᵀ where 𝐜 = 𝐐𝐛 = [𝐜₁ 𝐜₂]ᵀ and the
// residual norm is ‖𝐜₂‖.
//
// # Memory Layout
//
// The factored matrix overwrites 𝐀:
//
//	       k        n-k
//	   ┌───┴───┐  ┌──┴──┐
//	⎡ w₁₁ w₁₂ w₁₃ k₁₄ k₁₅ ⎤┐          𝐐 occupies the strict lower triangle
//	⎥ u₁₂ w₂₂ w₂₃ k₂₄ k₂₅ ⎥├ k        𝐊 occupies the upper right rectangle
//	⎥ u₁₃ u₂₃ w₃₃ k₃₄ k₃₅ ⎥┘          𝐖 occupies the upper left triangle
//	⎥ u₁₄ u₂₄ u₃₄  †   †  ⎥
//	⎣ u₁₅ u₂₅ u₃₅ u₄₅  †  ⎦
//
// with pivot scalars of 𝐐 in h, of 𝐊 in g and the interchanges of 𝐏 in ip.
// Triangulating by 𝐊 overwrites the diagonal of 𝐑 that the reflections of 𝐐
// are built on, so it is kept in d.
//
// C.L. Lawson, R.J. Hanson, 'Solving least squares problems' Prentice Hall, 1974. (revised 1995 edition)
// Chapters 14, Algorithm 14.9.
type QR struct {
	a    []float64
	m, n int
	k    int
	h, g []float64
	d    []float64
	ip   []int
}

// Factor triangulates the column-major m × n matrix a in place (leading
// dimension m) and returns the pseudo-rank for absolute tolerance tau.
// The QR keeps a reference to a for subsequent Solve calls.
func (q *QR) Factor(a []float64, m, n int, tau float64) int {
	const factor = 0.001

	if m < 0 || n < 0 || m*n > len(a) {
		panic("bound check error")
	}

	q.a, q.m, q.n, q.k = a, m, n, 0
	diag := min(m, n)
	if diag <= 0 {
		return 0
	}

	q.h = grow(q.h, n)
	q.g = grow(q.g, diag)
	q.d = grow(q.d, diag)
	if cap(q.ip) < diag {
		q.ip = make([]int, diag)
	}
	q.ip = q.ip[:diag]

	h, g, ip, mda := q.h, q.g, q.ip, m

	hmax := zero
	for j := 0; j < diag; j++ {
		// Downdate the squared column lengths and find lmax.
		lmax := j
		if j > 0 {
			v := math.NaN()
			for l := j; l < n; l++ {
				t := a[(j-1)+mda*l]
				if h[l] -= t * t; !(h[l] <= v) {
					lmax, v = l, h[l]
				}
			}
		}
		// Recompute them when cancellation made the downdate inaccurate.
		if j == 0 || factor*h[lmax] < hmax*eps {
			v := math.NaN()
			for l := j; l < n; l++ {
				sm := zero
				for _, t := range a[j+mda*l : m+mda*l] {
					sm += t * t
				}
				if h[l] = sm; !(h[l] <= v) {
					lmax, v = l, h[l]
				}
			}
			hmax = h[lmax]
		}

		ip[j] = lmax
		if lmax != j {
			c1, c2 := a[mda*j:mda*j+m], a[mda*lmax:mda*lmax+m]
			for i := range c1 {
				c1[i], c2[i] = c2[i], c1[i]
			}
			h[lmax] = h[j]
		}

		// 𝐑 = 𝐐𝐀𝐏 for column j and the columns right of it.
		i := min(j+1, n-1)
		h[j] = reflector(j, j+1, m, a[mda*j:], 1)
		reflect(j, j+1, m, a[mda*j:], 1, h[j], a[mda*i:], 1, mda, n-j-1)
	}

	k := diag
	for j := 0; j < diag; j++ {
		if math.Abs(a[j+mda*j]) <= tau {
			k = j
			break
		}
	}

	for j := 0; j < diag; j++ {
		q.d[j] = a[j+mda*j]
	}

	// [𝐑₁₁:𝐑₁₂]𝐊 = [𝐖:೦]
	if k > 0 && k < n {
		for i := k - 1; i >= 0; i-- {
			g[i] = reflector(i, k, n, a[i:], mda)
			reflect(i, k, n, a[i:], mda, g[i], a, mda, 1, i)
		}
	}

	q.k = k
	return k
}

// Rank returns the pseudo-rank found by the last Factor.
func (q *QR) Rank() int { return q.k }

// Solve overwrites b with the minimum length solution 𝐱 of 𝐀𝐱 ≅ 𝐛 and
// returns the residual norm ‖𝐀𝐱 - 𝐛‖₂. b must hold max(m, n) elements: the
// right-hand side in its first m and the solution in its first n on return.
func (q *QR) Solve(b []float64) (rnorm float64) {
	a, m, n, k, mda := q.a, q.m, q.n, q.k, q.m
	diag := min(m, n)
	if len(b) < max(m, n) {
		panic("bound check error")
	}
	if diag <= 0 {
		dzero(b[:n])
		return dnrm2(m, b, 1)
	}

	// 𝐜 = 𝐐𝐛 on the diagonal of 𝐑 in place of the one of 𝐖
	for j := 0; j < diag; j++ {
		w := a[j+mda*j]
		a[j+mda*j] = q.d[j]
		reflect(j, j+1, m, a[mda*j:], 1, q.h[j], b, 1, 1, 1)
		a[j+mda*j] = w
	}

	if k < m {
		rnorm = dnrm2(m-k, b[k:], 1)
	}

	if k == 0 {
		dzero(b[:n])
		return
	}

	// 𝐖𝐲₁ = 𝐜₁
	for i := k - 1; i >= 0; i-- {
		sm := zero
		for j := i + 1; j < k; j++ {
			sm += a[i+mda*j] * b[j]
		}
		b[i] = (b[i] - sm) / a[i+mda*i]
	}

	// 𝐊[𝐲₁ ೦]ᵀ
	if k < n {
		dzero(b[k:n])
		for i := 0; i < k; i++ {
			reflect(i, k, n, a[i:], mda, q.g[i], b, 1, 1, 1)
		}
	}

	// 𝐱 = 𝐏𝐊𝐲
	for j := diag - 1; j >= 0; j-- {
		if l := q.ip[j]; l != j {
			b[l], b[j] = b[j], b[l]
		}
	}
	return
}

func grow(s []float64, n int) []float64 {
	if cap(s) < n {
		return make([]float64, n)
	}
	return s[:n]
}
