// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package numdiff estimates Jacobian matrices by finite differences.
//
// The constraint solver differentiates its equations symbolically; this
// package provides the independent estimate those exact partials are checked
// against.
package numdiff

import (
	"errors"
	"math"
)

var sqrtEps = math.Sqrt(math.Nextafter(1, 2) - 1)
var cubeEps = math.Pow(math.Nextafter(1, 2)-1, float64(1)/3)

type Method int

const (
	// Forward use the first order accuracy forward difference.
	Forward Method = iota
	// Central use the second order accuracy central difference.
	Central
)

var (
	ErrDimension = errors.New("numdiff: invalid dimensions")
	ErrMethod    = errors.New("numdiff: unknown method")
	ErrObject    = errors.New("numdiff: object function is required")
)

// ApproxSpec describes the finite difference estimate of the m × n Jacobian
// of a function 𝒇 : ℝⁿ → ℝᵐ.
//
// # Reference:
//
//   - https://en.wikipedia.org/wiki/Finite_difference
//   - https://github.com/scipy/scipy/blob/main/scipy/optimize/_numdiff.py
type ApproxSpec struct {
	N, M int
	// Function of which to estimate the derivatives.
	// The argument x passed to this function is an n-vector.
	// The result is store in an m-vector y.
	Object func(x, y []float64)
	// Finite difference method to use.
	Method Method
	// Relative step size used to compute absolute step size.
	// The default absolute step size is h = ε·sign(x₀)·max(1, |x₀|) with ε selected by Method.
	// Otherwise, absolute step size is computed as h = RelStep·sign(x₀)·|x₀|.
	RelStep float64
	// Absolute step size to use, RelStep is used when AbsStep is zero.
	// For Central method the sign of AbsStep is ignored.
	AbsStep float64

	f0, f1, f2 []float64
	step       []float64
}

// Check validates the approximation settings against x0 and the output jac, and
// allocates the working space.
func (as *ApproxSpec) Check(x0, jac []float64) error {
	switch {
	case as.N <= 0 || as.M <= 0:
		return ErrDimension
	case as.Method != Forward && as.Method != Central:
		return ErrMethod
	case as.Object == nil:
		return ErrObject
	case as.N != len(x0) || as.N*as.M != len(jac):
		return ErrDimension
	}

	if len(as.f0) != as.M {
		as.f0 = make([]float64, as.M)
		as.f1 = make([]float64, as.M)
		as.f2 = make([]float64, as.M)
	}
	if len(as.step) != as.N {
		as.step = make([]float64, as.N)
	}
	return nil
}

// Diff stores in jac the row-major m × n estimate of 𝜕𝒇ᵢ/𝜕xⱼ at x0.
// x0 is perturbed during evaluation and restored on return.
func (as *ApproxSpec) Diff(x0, jac []float64) error {
	if err := as.Check(x0, jac); err != nil {
		return err
	}

	as.absoluteStep(x0)
	if as.Method == Central {
		as.approxCentral(x0, jac)
	} else {
		as.approxForward(x0, jac)
	}
	return nil
}

func (as *ApproxSpec) absoluteStep(x0 []float64) {
	h := as.step

	var eps float64
	switch as.Method {
	case Forward:
		eps = sqrtEps
	case Central:
		eps = cubeEps
	default:
		panic("unknown method")
	}

	for i, v := range x0 {
		s := as.AbsStep
		if s == 0 && as.RelStep != 0 {
			s = math.Copysign(as.RelStep, v) * math.Abs(v)
		}
		if s == 0 || (v+s)-v == 0 {
			s = math.Copysign(eps, v) * math.Max(1.0, math.Abs(v))
		}
		if as.Method == Central {
			s = math.Abs(s)
		}
		h[i] = s
	}
}

func (as *ApproxSpec) approxForward(x0, df []float64) {
	f0, f1, h, n := as.f0, as.f1, as.step, as.N

	fun := as.Object
	fun(x0, f0)
	for i, s := range h {
		t := x0[i]
		x0[i] = t + s
		fun(x0, f1)
		d := 1.0 / s
		for j := range f0 {
			df[i+j*n] = (f1[j] - f0[j]) * d
		}
		x0[i] = t
	}
}

func (as *ApproxSpec) approxCentral(x0, df []float64) {
	f1, f2, h, n := as.f1, as.f2, as.step, as.N

	fun := as.Object
	for i, s := range h {
		t := x0[i]
		d := 1.0 / (2 * s)
		x0[i] = t - s
		fun(x0, f1)
		x0[i] = t + s
		fun(x0, f2)
		for j := range f1 {
			df[i+j*n] = (f2[j] - f1[j]) * d
		}
		x0[i] = t
	}
}
