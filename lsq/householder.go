// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package lsq

import "math"

// reflector constructs the Householder transformation 𝐐 = 𝐈 - b⁻¹𝐮𝐮ᵀ (b = s·uₚ)
// that maps the strided vector v onto s·𝐞ₚ, zeroing the elements l, ..., m-1.
//
// On return v[p] holds s and v[l:m] hold the tail of 𝐮; the pivot uₚ is returned
// separately. When l ≥ m or v is zero the identity is used and uₚ = 0.
//
// C.L. Lawson, R.J. Hanson, 'Solving least squares problems' Prentice Hall, 1974. (revised 1995 edition)
// Chapters 10.
func reflector(p, l, m int, v []float64, inc int) (up float64) {
	if p < 0 || p >= l || l >= m {
		return
	}

	ip, il, im := p*inc, l*inc, (m-1)*inc
	if inc <= 0 || im >= len(v) {
		panic("bound check error")
	}

	vmax := math.Abs(v[ip])
	for j := il; j <= im; j += inc {
		vmax = math.Max(math.Abs(v[j]), vmax)
	}
	if vmax <= zero {
		return
	}

	// (vₚ² + ∑vᵢ²)¹ᐟ² computed on v/vmax to avoid overflow
	inv := one / vmax
	sum := (v[ip] * inv) * (v[ip] * inv)
	for j := il; j <= im; j += inc {
		sum += (v[j] * inv) * (v[j] * inv)
	}

	s := vmax * math.Sqrt(sum)
	if v[ip] > zero {
		s = -s
	}

	up = v[ip] - s
	v[ip] = s
	return
}

// reflect applies the transformation built by reflector to ncv vectors of c:
//
//	𝐐𝐜 = 𝐜 + b⁻¹(𝐮ᵀ𝐜)𝐮
//
// The k-th vector starts at c[k·icv] and its elements are ice apart.
func reflect(p, l, m int, u []float64, iue int, up float64, c []float64, ice, icv, ncv int) {
	if p < 0 || p >= l || l >= m || ncv <= 0 {
		return
	}

	b := u[p*iue] * up
	if b >= zero {
		return
	}
	b = one / b

	il, im := l*iue, (m-1)*iue
	if iue <= 0 || im >= len(u) {
		panic("bound check error")
	}

	for k := 0; k < ncv; k++ {
		cp := k*icv + p*ice
		cl := k*icv + l*ice
		cm := k*icv + (m-1)*ice
		if cm >= len(c) {
			panic("bound check error")
		}

		sm := c[cp] * up
		for iu, ic := il, cl; iu <= im; iu, ic = iu+iue, ic+ice {
			sm += c[ic] * u[iu]
		}
		if sm == zero {
			continue
		}

		sm *= b
		c[cp] += sm * up
		for iu, ic := il, cl; iu <= im; iu, ic = iu+iue, ic+ice {
			c[ic] += sm * u[iu]
		}
	}
}
