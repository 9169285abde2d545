// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package sketch is the data model of a parametric sketch: parameters,
// geometric entities, constraints and the groups they are solved in.
//
// Every cross reference is a handle resolved through the owning Sketch, and
// every variant-dependent operation is a type switch over the closed set of
// entity types. A missing handle or an entity of the wrong kind is a bug in
// the caller and panics.
package sketch

import (
	"fmt"

	"github.com/curioloop/geosolve/expr"
)

// Sketch owns the parameter, entity, constraint and group tables.
// Groups, entities and constraints are kept in insertion order, which is
// the order groups are solved in.
type Sketch struct {
	param ParamList

	entity      []Entity
	entityIndex map[HEntity]int

	constraint      []*Constraint
	constraintIndex map[HConstraint]int

	group      []*Group
	groupIndex map[HGroup]int

	nextParam      HParam
	nextEntity     HEntity
	nextConstraint HConstraint
	nextGroup      HGroup
}

// New returns an empty sketch.
func New() *Sketch {
	return &Sketch{
		entityIndex:     make(map[HEntity]int),
		constraintIndex: make(map[HConstraint]int),
		groupIndex:      make(map[HGroup]int),
	}
}

// AddParam creates a parameter of group g with initial value v.
func (s *Sketch) AddParam(g HGroup, v float64) HParam {
	s.nextParam++
	s.param.Add(Param{H: s.nextParam, Group: g, Val: v})
	return s.nextParam
}

// GetParam returns the parameter h; it panics when h does not exist.
func (s *Sketch) GetParam(h HParam) *Param { return s.param.Find(h) }

// FindParam returns the parameter h or nil.
func (s *Sketch) FindParam(h HParam) *Param { return s.param.FindOrNil(h) }

// Params returns the parameter table.
func (s *Sketch) Params() *ParamList { return &s.param }

// ParamsIn returns the parameters owned by group g.
// The pointers are invalidated by the next AddParam.
func (s *Sketch) ParamsIn(g HGroup) []*Param {
	var ps []*Param
	for i := 0; i < s.param.Len(); i++ {
		if p := s.param.At(i); p.Group == g {
			ps = append(ps, p)
		}
	}
	return ps
}

// AddEntity stores e, assigning a fresh handle when e has none, and returns
// its handle.
func (s *Sketch) AddEntity(e Entity) HEntity {
	b := e.Base()
	if b.H == 0 {
		s.nextEntity++
		b.H = s.nextEntity
	} else if b.H > s.nextEntity {
		s.nextEntity = b.H
	}
	if _, ok := s.entityIndex[b.H]; ok {
		panic(fmt.Sprintf("sketch: duplicate entity %d", b.H))
	}
	s.entityIndex[b.H] = len(s.entity)
	s.entity = append(s.entity, e)
	return b.H
}

// GetEntity returns the entity h; it panics when h does not exist.
func (s *Sketch) GetEntity(h HEntity) Entity {
	i, ok := s.entityIndex[h]
	if !ok {
		panic(fmt.Sprintf("sketch: entity %d not found", h))
	}
	return s.entity[i]
}

// Entities returns every entity in insertion order.
func (s *Sketch) Entities() []Entity { return s.entity }

// EntitiesIn returns the entities of group g.
func (s *Sketch) EntitiesIn(g HGroup) []Entity {
	var es []Entity
	for _, e := range s.entity {
		if e.Base().Group == g {
			es = append(es, e)
		}
	}
	return es
}

// AddConstraint stores c, assigning a fresh handle when c has none.
func (s *Sketch) AddConstraint(c *Constraint) HConstraint {
	if c.H == 0 {
		s.nextConstraint++
		c.H = s.nextConstraint
	} else if c.H > s.nextConstraint {
		s.nextConstraint = c.H
	}
	if _, ok := s.constraintIndex[c.H]; ok {
		panic(fmt.Sprintf("sketch: duplicate constraint %d", c.H))
	}
	s.constraintIndex[c.H] = len(s.constraint)
	s.constraint = append(s.constraint, c)
	return c.H
}

// GetConstraint returns the constraint h; it panics when h does not exist.
func (s *Sketch) GetConstraint(h HConstraint) *Constraint {
	i, ok := s.constraintIndex[h]
	if !ok {
		panic(fmt.Sprintf("sketch: constraint %d not found", h))
	}
	return s.constraint[i]
}

// Constraints returns every constraint in insertion order.
func (s *Sketch) Constraints() []*Constraint { return s.constraint }

// ConstraintsIn returns the constraints of group g.
func (s *Sketch) ConstraintsIn(g HGroup) []*Constraint {
	var cs []*Constraint
	for _, c := range s.constraint {
		if c.Group == g {
			cs = append(cs, c)
		}
	}
	return cs
}

// AddGroup stores g, assigning a fresh handle when g has none.
func (s *Sketch) AddGroup(g *Group) HGroup {
	if g.H == 0 {
		s.nextGroup++
		g.H = s.nextGroup
	} else if g.H > s.nextGroup {
		s.nextGroup = g.H
	}
	if _, ok := s.groupIndex[g.H]; ok {
		panic(fmt.Sprintf("sketch: duplicate group %d", g.H))
	}
	s.groupIndex[g.H] = len(s.group)
	s.group = append(s.group, g)
	return g.H
}

// GetGroup returns the group h; it panics when h does not exist.
func (s *Sketch) GetGroup(h HGroup) *Group {
	i, ok := s.groupIndex[h]
	if !ok {
		panic(fmt.Sprintf("sketch: group %d not found", h))
	}
	return s.group[i]
}

// Groups returns every group in solve order.
func (s *Sketch) Groups() []*Group { return s.group }

func (s *Sketch) val(h HParam) float64 { return s.param.Find(h).Val }

// ValuePtr returns the live value of parameter h, for expr.Expr.Bind.
func (s *Sketch) ValuePtr(h HParam) *float64 {
	if p := s.param.FindOrNil(h); p != nil {
		return &p.Val
	}
	return nil
}

// Eval evaluates e at the current parameter values of the sketch.
func (s *Sketch) Eval(e *expr.Expr) float64 {
	return e.Bind(s.ValuePtr).Eval()
}
