// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package lsq provides the linear algebra behind constraint solving:
// a row-compressed sparse matrix, Householder triangulation with column
// interchanges for pseudo-rank determination, and minimum-length least
// squares solutions of rank-deficient systems.
//
// Dense matrices are stored column-major: element (i, j) of an m × n matrix
// lives at a[i+mda*j] where mda ≥ m is the leading dimension.
package lsq

const (
	zero = 0.0
	one  = 1.0
	eps  = float64(7)/3 - float64(4)/3 - 1.
)
