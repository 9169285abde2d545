// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package sketch

import (
	"fmt"

	"github.com/curioloop/geosolve/expr"
)

// GroupType selects how a group's geometry is created.
type GroupType int

const (
	// Drawing3D holds free geometry.
	Drawing3D GroupType = iota
	// DrawingWorkplane holds geometry drawn in Workplane.
	DrawingWorkplane
	// Transform holds copies of earlier geometry moved by the rotation
	// Rotation followed by the translation Translation.
	Transform
)

func (t GroupType) String() string {
	switch t {
	case Drawing3D:
		return "drawing-3d"
	case DrawingWorkplane:
		return "drawing-workplane"
	case Transform:
		return "transform"
	}
	return fmt.Sprintf("GroupType(%d)", int(t))
}

// Group is the unit of solving. Groups are solved in sketch order; the
// parameters of earlier groups are constants to later ones.
type Group struct {
	H         HGroup
	Name      string
	Type      GroupType
	Workplane HEntity

	Translation [3]HParam
	Rotation    [4]HParam

	// AllowRedundant skips the rank test, so redundant but consistent
	// constraints are accepted.
	AllowRedundant bool
	// RelaxConstraints keeps only point coincidence and intrinsic equations.
	RelaxConstraints bool
	// AllDimsReference turns every dimension into a reference dimension.
	AllDimsReference bool
}

// GenerateEquations appends the equations intrinsic to g: a transform's
// rotation must be a unit quaternion.
func (g *Group) GenerateEquations(l *EquationList) {
	if g.Type != Transform {
		return
	}
	q := expr.QuaternionFromParams(g.Rotation[0], g.Rotation[1], g.Rotation[2], g.Rotation[3])
	l.Add(g.H.Equation(0), q.Magnitude().Minus(expr.FromConst(1)))
}
