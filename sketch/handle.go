// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package sketch

import (
	"fmt"

	"github.com/curioloop/geosolve/expr"
)

// HParam is the handle of a Param. Handles are never reused within a Sketch.
type HParam = expr.Param

// HEntity is the handle of an Entity.
type HEntity uint32

// HConstraint is the handle of a Constraint.
type HConstraint uint32

// HGroup is the handle of a Group.
type HGroup uint32

const (
	// FreeIn3D as a workplane means the geometry is not confined to any plane.
	FreeIn3D HEntity = 0
	// NoEntity is the zero entity handle.
	NoEntity HEntity = 0
	// NoConstraint is the zero constraint handle.
	NoConstraint HConstraint = 0
)

// HEquation identifies an equation by its origin and index.
//
//	bits 31-30  origin: 0 constraint, 1 entity, 2 group
//	bits 29-8   origin handle
//	bits  7-0   index of the equation within its origin
type HEquation uint32

const (
	originConstraint = 0
	originEntity     = 1
	originGroup      = 2

	originShift = 30
	handleShift = 8
	handleMask  = 1<<(originShift-handleShift) - 1
	indexMask   = 1<<handleShift - 1
)

func equationHandle(origin uint32, h uint32, index int) HEquation {
	if h > handleMask || index < 0 || index > indexMask {
		panic(fmt.Sprintf("sketch: equation handle overflow (%d, %d)", h, index))
	}
	return HEquation(origin<<originShift | h<<handleShift | uint32(index))
}

// Equation returns the handle of the index-th equation generated by h.
func (h HConstraint) Equation(index int) HEquation {
	return equationHandle(originConstraint, uint32(h), index)
}

// Equation returns the handle of the index-th equation generated by h.
func (h HEntity) Equation(index int) HEquation {
	return equationHandle(originEntity, uint32(h), index)
}

// Equation returns the handle of the index-th equation generated by h.
func (h HGroup) Equation(index int) HEquation {
	return equationHandle(originGroup, uint32(h), index)
}

func (h HEquation) origin() uint32 { return uint32(h) >> originShift }
func (h HEquation) handle() uint32 { return uint32(h) >> handleShift & handleMask }

// IsFromConstraint reports whether the equation was generated by a constraint.
func (h HEquation) IsFromConstraint() bool { return h.origin() == originConstraint }

// IsFromEntity reports whether the equation was generated by an entity.
func (h HEquation) IsFromEntity() bool { return h.origin() == originEntity }

// IsFromGroup reports whether the equation was generated by a group.
func (h HEquation) IsFromGroup() bool { return h.origin() == originGroup }

// Constraint returns the originating constraint.
func (h HEquation) Constraint() HConstraint {
	if !h.IsFromConstraint() {
		panic(fmt.Sprintf("sketch: equation %#x is not from a constraint", uint32(h)))
	}
	return HConstraint(h.handle())
}

// Entity returns the originating entity.
func (h HEquation) Entity() HEntity {
	if !h.IsFromEntity() {
		panic(fmt.Sprintf("sketch: equation %#x is not from an entity", uint32(h)))
	}
	return HEntity(h.handle())
}

// Group returns the originating group.
func (h HEquation) Group() HGroup {
	if !h.IsFromGroup() {
		panic(fmt.Sprintf("sketch: equation %#x is not from a group", uint32(h)))
	}
	return HGroup(h.handle())
}

// Index returns the index of the equation within its origin.
func (h HEquation) Index() int { return int(uint32(h) & indexMask) }
