// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package solver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"

	"github.com/curioloop/geosolve/sketch"
)

const (
	// ConvergeTolerance bounds every residual of a converged system. It must
	// stay well below sketch.LengthEps.
	ConvergeTolerance = sketch.LengthEps / 100
	// RankMagTolerance is the magnitude below which a pivot of the Jacobian
	// factorization counts as zero. Too small and inconsistent systems are
	// attempted and fail; too large and legitimate systems such as a skinny
	// right triangle dimensioned by its hypotenuse and long side are refused.
	RankMagTolerance = 1e-4
	// MaxIterations is the Newton iteration budget.
	MaxIterations = 50
	// DragScale weights the Jacobian columns of dragged parameters.
	DragScale = 1.0 / 20
)

// ErrConfig is wrapped by every error Config.New reports.
var ErrConfig = errors.New("solver: invalid config")

// Config holds the tunables of a System. Zero fields take the package
// defaults.
type Config struct {
	// Logger receives solver diagnostics; nil discards them.
	Logger *slog.Logger
	// ConvergeTolerance defaults to ConvergeTolerance.
	ConvergeTolerance float64
	// RankTolerance defaults to RankMagTolerance.
	RankTolerance float64
	// MaxIterations defaults to MaxIterations.
	MaxIterations int
	// DragScale defaults to DragScale; it must lie in (0, 1].
	DragScale float64
	// VerifyJacobian compares the symbolic Jacobian with a finite difference
	// estimate after each full solve and logs the discrepancy.
	VerifyJacobian bool
}

// New validates the config and returns a System solving groups of sk.
func (c Config) New(sk *sketch.Sketch) (sys *System, err error) {
	if c.ConvergeTolerance == 0 {
		c.ConvergeTolerance = ConvergeTolerance
	}
	if c.RankTolerance == 0 {
		c.RankTolerance = RankMagTolerance
	}
	if c.MaxIterations == 0 {
		c.MaxIterations = MaxIterations
	}
	if c.DragScale == 0 {
		c.DragScale = DragScale
	}
	if c.Logger == nil {
		c.Logger = slog.New(nopHandler{})
	}

	switch {
	case sk == nil:
		err = fmt.Errorf("%w: sketch is required", ErrConfig)
	case !(c.ConvergeTolerance > 0) || math.IsInf(c.ConvergeTolerance, 0):
		err = fmt.Errorf("%w: converge tolerance must be positive", ErrConfig)
	case !(c.RankTolerance > 0) || math.IsInf(c.RankTolerance, 0):
		err = fmt.Errorf("%w: rank tolerance must be positive", ErrConfig)
	case c.MaxIterations < 1:
		err = fmt.Errorf("%w: max iterations must be at least 1", ErrConfig)
	case !(c.DragScale > 0 && c.DragScale <= 1):
		err = fmt.Errorf("%w: drag scale must lie in (0, 1]", ErrConfig)
	}
	if err != nil {
		return
	}

	sys = &System{
		cfg:     c,
		log:     c.Logger,
		sk:      sk,
		dragged: make(map[sketch.HParam]struct{}),
	}
	return
}

// nopHandler discards every record and reports every level disabled, so
// call sites skip formatting.
type nopHandler struct{}

func (nopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (nopHandler) Handle(context.Context, slog.Record) error { return nil }
func (nopHandler) WithAttrs([]slog.Attr) slog.Handler        { return nopHandler{} }
func (nopHandler) WithGroup(string) slog.Handler             { return nopHandler{} }
