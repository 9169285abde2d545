// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package lsq

import "fmt"

// Entry is a structurally non-zero element of a sparse row.
type Entry struct {
	Col int
	Val float64
}

// Sparse is an m × n matrix stored row by row, each row holding only its
// structurally non-zero entries in insertion order.
//
// A constraint Jacobian has one row per equation and one column per unknown;
// an equation typically touches a handful of parameters, so rows stay short
// even when the sketch has hundreds of unknowns.
type Sparse struct {
	m, n int
	rows [][]Entry
}

// NewSparse returns an empty m × n matrix.
func NewSparse(m, n int) *Sparse {
	if m < 0 || n < 0 {
		panic(fmt.Sprintf("lsq: invalid shape %d × %d", m, n))
	}
	return &Sparse{m: m, n: n, rows: make([][]Entry, m)}
}

// Dims returns the number of rows and columns.
func (s *Sparse) Dims() (m, n int) { return s.m, s.n }

// Insert stores v at (i, j). Inserting the same position twice is a programmer error.
func (s *Sparse) Insert(i, j int, v float64) {
	if i < 0 || i >= s.m || j < 0 || j >= s.n {
		panic("bound check error")
	}
	for _, e := range s.rows[i] {
		if e.Col == j {
			panic(fmt.Sprintf("lsq: duplicate entry at (%d, %d)", i, j))
		}
	}
	s.rows[i] = append(s.rows[i], Entry{j, v})
}

// At returns the element at (i, j), zero when it is not stored.
func (s *Sparse) At(i, j int) float64 {
	for _, e := range s.rows[i] {
		if e.Col == j {
			return e.Val
		}
	}
	return zero
}

// Row returns the stored entries of row i.
func (s *Sparse) Row(i int) []Entry { return s.rows[i] }

// NonZeros returns the number of stored entries.
func (s *Sparse) NonZeros() (nz int) {
	for _, r := range s.rows {
		nz += len(r)
	}
	return
}

// ScaleColumns multiplies column j by scale[j].
func (s *Sparse) ScaleColumns(scale []float64) {
	if len(scale) != s.n {
		panic("bound check error")
	}
	for _, r := range s.rows {
		for k := range r {
			r[k].Val *= scale[r[k].Col]
		}
	}
}

// HasNaN reports whether any stored entry is NaN.
func (s *Sparse) HasNaN() bool {
	for _, r := range s.rows {
		for _, e := range r {
			if e.Val != e.Val {
				return true
			}
		}
	}
	return false
}

// Dense returns the matrix in column-major order with leading dimension m.
func (s *Sparse) Dense() []float64 {
	a := make([]float64, s.m*s.n)
	for i, r := range s.rows {
		for _, e := range r {
			a[i+s.m*e.Col] = e.Val
		}
	}
	return a
}

// MulTransposeSelf returns the m × m product 𝐀𝐀ᵀ in column-major order.
// Row pairs are only combined where their column patterns intersect.
func (s *Sparse) MulTransposeSelf() []float64 {
	m := s.m
	p := make([]float64, m*m)
	col := make([]float64, s.n)
	for i, ri := range s.rows {
		for _, e := range ri {
			col[e.Col] = e.Val
		}
		for j := 0; j <= i; j++ {
			sm := zero
			for _, e := range s.rows[j] {
				sm += col[e.Col] * e.Val
			}
			p[i+m*j] = sm
			p[j+m*i] = sm
		}
		for _, e := range ri {
			col[e.Col] = zero
		}
	}
	return p
}

// TransposeMulVec computes 𝐱 = 𝐀ᵀ𝐳 for an m-vector z into the n-vector x.
func (s *Sparse) TransposeMulVec(z, x []float64) {
	if len(z) < s.m || len(x) < s.n {
		panic("bound check error")
	}
	dzero(x[:s.n])
	for i, r := range s.rows {
		zi := z[i]
		for _, e := range r {
			x[e.Col] += e.Val * zi
		}
	}
}
