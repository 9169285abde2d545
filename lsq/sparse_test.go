// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package lsq

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func newSparse(m, n int, rows ...float64) *Sparse {
	s := NewSparse(m, n)
	for i := 0; i < m; i++ {
		for j := 0; j < n; j++ {
			if v := rows[i*n+j]; v != 0 {
				s.Insert(i, j, v)
			}
		}
	}
	return s
}

func TestSparse(t *testing.T) {
	s := newSparse(2, 3,
		1, 0, 2,
		0, 3, 0)

	if m, n := s.Dims(); m != 2 || n != 3 {
		t.Fatalf("unexpected dims %d × %d", m, n)
	}
	if s.NonZeros() != 3 {
		t.Fatalf("unexpected non-zeros %d", s.NonZeros())
	}
	if s.At(0, 2) != 2 || s.At(1, 0) != 0 {
		t.Fatal("unexpected element")
	}
	if diff := cmp.Diff([]Entry{{1, 3}}, s.Row(1)); diff != "" {
		t.Fatalf("unexpected row (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(colMajor(2, 3, 1, 0, 2, 0, 3, 0), s.Dense()); diff != "" {
		t.Fatalf("unexpected dense (-want +got):\n%s", diff)
	}

	s.ScaleColumns([]float64{2, 1, 0.5})
	if diff := cmp.Diff(colMajor(2, 3, 2, 0, 1, 0, 3, 0), s.Dense()); diff != "" {
		t.Fatalf("unexpected scaled (-want +got):\n%s", diff)
	}
}

func TestSparseProducts(t *testing.T) {
	s := newSparse(2, 3,
		1, 2, 0,
		0, 1, 3)

	want := colMajor(2, 2,
		5, 2,
		2, 10)
	if diff := cmp.Diff(want, s.MulTransposeSelf()); diff != "" {
		t.Fatalf("unexpected AAᵀ (-want +got):\n%s", diff)
	}

	x := []float64{9, 9, 9}
	s.TransposeMulVec([]float64{1, 2}, x)
	if diff := cmp.Diff([]float64{1, 4, 6}, x); diff != "" {
		t.Fatalf("unexpected Aᵀz (-want +got):\n%s", diff)
	}
}

func TestSparseDuplicate(t *testing.T) {
	s := NewSparse(1, 1)
	s.Insert(0, 0, 1)
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic on duplicate insert")
		}
	}()
	s.Insert(0, 0, 2)
}

func TestSparseNaN(t *testing.T) {
	s := NewSparse(1, 2)
	s.Insert(0, 1, 1)
	if s.HasNaN() {
		t.Fatal("unexpected NaN")
	}
	s.Insert(0, 0, math.NaN())
	if !s.HasNaN() {
		t.Fatal("NaN not detected")
	}
}

func TestRank(t *testing.T) {
	if r := Rank(NewSparse(0, 3), 1e-4); r != 0 {
		t.Fatalf("unexpected empty rank %d", r)
	}
	s := newSparse(3, 3,
		1, -1, 0,
		0, 1, -1,
		1, 0, -1)
	if r := Rank(s, 1e-4); r != 2 {
		t.Fatalf("unexpected rank %d", r)
	}
	s = newSparse(2, 3,
		1, 0, 0,
		0, 1e-6, 0)
	if r := Rank(s, 1e-4); r != 1 {
		t.Fatalf("tiny pivot counted, rank %d", r)
	}
}

func TestNormalSolve(t *testing.T) {
	s := newSparse(1, 2, 1, 1)
	x := make([]float64, 2)
	if !NormalSolve(s, []float64{10}, x) {
		t.Fatal("solve failed")
	}
	if !near(x, []float64{5, 5}, 1e-12) {
		t.Fatalf("unexpected solution %v", x)
	}

	// dependent but consistent rows
	s = newSparse(2, 2,
		1, 1,
		2, 2)
	if !NormalSolve(s, []float64{10, 20}, x) {
		t.Fatal("solve failed")
	}
	if !near(x, []float64{5, 5}, 1e-9) {
		t.Fatalf("unexpected redundant solution %v", x)
	}

	// 𝐀𝐀ᵀ singular with more rows than columns
	s = newSparse(3, 2,
		1, 0,
		0, 1,
		1, 1)
	if !NormalSolve(s, []float64{1, 2, 3}, x) {
		t.Fatal("solve failed")
	}
	if !near(x, []float64{1, 2}, 1e-9) {
		t.Fatalf("unexpected singular solution %v", x)
	}

	s = newSparse(2, 3,
		1, 0, 0,
		0, 1, 1)
	x = make([]float64, 3)
	if !NormalSolve(s, []float64{3, 4}, x) {
		t.Fatal("solve failed")
	}
	if !near(x, []float64{3, 2, 2}, 1e-12) {
		t.Fatalf("unexpected solution %v", x)
	}
}

func TestNormalSolveDegenerate(t *testing.T) {
	x := []float64{7, 7}
	if !NormalSolve(NewSparse(0, 2), nil, x) {
		t.Fatal("empty solve failed")
	}
	if !near(x, []float64{0, 0}, 0) {
		t.Fatalf("unexpected empty solution %v", x)
	}

	s := newSparse(1, 2, 1, 1)
	if NormalSolve(s, []float64{math.NaN()}, x) {
		t.Fatal("NaN right-hand side accepted")
	}
}
