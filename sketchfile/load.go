// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package sketchfile

import (
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"

	"github.com/curioloop/geosolve/sketch"
)

type loader struct {
	sk   *sketch.Sketch
	ctx  *hcl.EvalContext
	file *File
}

func isWorkplane(e sketch.Entity) bool {
	_, ok := e.(*sketch.Workplane)
	return ok
}

func isPointOrNormal(e sketch.Entity) bool { return sketch.IsPoint(e) || sketch.IsNormal(e) }

func (l *loader) define(name string, h sketch.HEntity) error {
	if _, dup := l.file.entities[name]; dup {
		return fmt.Errorf("%w: entity %q declared twice", ErrParse, name)
	}
	l.sk.GetEntity(h).Base().Name = name
	l.file.entities[name] = h
	return nil
}

// lookup resolves the entity called name. is, when set, checks its variant.
func (l *loader) lookup(name, kind string, is func(sketch.Entity) bool) (sketch.HEntity, error) {
	h, ok := l.file.entities[name]
	if !ok {
		return 0, fmt.Errorf("%w: unknown %s %q", ErrReference, kind, name)
	}
	if is != nil && !is(l.sk.GetEntity(h)) {
		return 0, fmt.Errorf("%w: %q is not a %s", ErrReference, name, kind)
	}
	return h, nil
}

func (l *loader) points(names ...string) ([]sketch.HEntity, error) {
	hs := make([]sketch.HEntity, len(names))
	for i, n := range names {
		h, err := l.lookup(n, "point", sketch.IsPoint)
		if err != nil {
			return nil, err
		}
		hs[i] = h
	}
	return hs, nil
}

// normal resolves an optional normal; a circle drawn in a plane takes the
// plane's own.
func (l *loader) normal(name string, g *sketch.Group) (sketch.HEntity, error) {
	if name != "" {
		return l.lookup(name, "normal", sketch.IsNormal)
	}
	if g.Workplane == sketch.FreeIn3D {
		return 0, fmt.Errorf("%w: a circle outside a plane needs a normal", ErrGeometry)
	}
	return sketch.NoEntity, nil
}

func (l *loader) group(b *groupBlock) error {
	var gc groupContent
	if diags := gohcl.DecodeBody(b.Body, l.ctx, &gc); diags.HasErrors() {
		return fmt.Errorf("%w: %s", ErrParse, diags.Error())
	}

	sk := l.sk
	var g *sketch.Group
	if t := gc.Transform; t != nil {
		q, err := rotation(t.Rotation)
		if err != nil {
			return err
		}
		v, err := vector(t.Translation)
		if err != nil {
			return err
		}
		g = sk.NewTransformGroup(b.Name, q, v)
	} else {
		g = sk.NewGroup(b.Name, sketch.FreeIn3D)
	}
	g.AllowRedundant = gc.AllowRedundant
	g.RelaxConstraints = gc.RelaxConstraints
	g.AllDimsReference = gc.AllDimsReference

	for _, w := range gc.Workplanes {
		origin, err := vector(w.Origin)
		if err != nil {
			return fmt.Errorf("workplane %q: %w", w.Name, err)
		}
		q, err := rotation(w.Rotation)
		if err != nil {
			return fmt.Errorf("workplane %q: %w", w.Name, err)
		}
		add := sk.AddWorkplane
		if w.Reference {
			add = sk.AddReferenceWorkplane
		}
		if err := l.define(w.Name, add(g.H, origin, q)); err != nil {
			return err
		}
	}

	if gc.Plane != "" {
		if g.Type == sketch.Transform {
			return fmt.Errorf("%w: a transform group cannot draw in a plane", ErrGeometry)
		}
		wp, err := l.lookup(gc.Plane, "workplane", isWorkplane)
		if err != nil {
			return err
		}
		g.Workplane, g.Type = wp, sketch.DrawingWorkplane
	}

	steps := []func(*sketch.Group, *groupContent) error{
		l.addPoints, l.addNormals, l.addDistances, l.addCurves, l.addCopies, l.addConstraints,
	}
	for _, step := range steps {
		if err := step(g, &gc); err != nil {
			return err
		}
	}
	return nil
}

func (l *loader) addPoints(g *sketch.Group, gc *groupContent) error {
	for _, p := range gc.Points {
		var h sketch.HEntity
		switch len(p.At) {
		case 2:
			if g.Workplane == sketch.FreeIn3D {
				return fmt.Errorf("%w: point %q has 2 coordinates outside a plane", ErrGeometry, p.Name)
			}
			h = l.sk.AddPoint2D(g.H, g.Workplane, p.At[0], p.At[1])
		case 3:
			h = l.sk.AddPoint3D(g.H, sketch.Vector{X: p.At[0], Y: p.At[1], Z: p.At[2]})
		default:
			return fmt.Errorf("%w: point %q needs 2 or 3 coordinates, got %d", ErrGeometry, p.Name, len(p.At))
		}
		if err := l.define(p.Name, h); err != nil {
			return err
		}
	}
	return nil
}

func (l *loader) addNormals(g *sketch.Group, gc *groupContent) error {
	for _, n := range gc.Normals {
		q, err := rotation(n.Rotation)
		if err != nil {
			return fmt.Errorf("normal %q: %w", n.Name, err)
		}
		if err := l.define(n.Name, l.sk.AddNormal3D(g.H, q)); err != nil {
			return err
		}
	}
	return nil
}

func (l *loader) addDistances(g *sketch.Group, gc *groupContent) error {
	for _, d := range gc.Distances {
		if err := l.define(d.Name, l.sk.AddDistance(g.H, g.Workplane, d.Value)); err != nil {
			return err
		}
	}
	return nil
}

// addCurves adds the entities built on points: lines, circles, arcs,
// cubics and faces.
func (l *loader) addCurves(g *sketch.Group, gc *groupContent) error {
	sk, wp := l.sk, g.Workplane
	for _, b := range gc.Lines {
		pts, err := l.points(b.From, b.To)
		if err != nil {
			return fmt.Errorf("line %q: %w", b.Name, err)
		}
		if err := l.define(b.Name, sk.AddLine(g.H, wp, pts[0], pts[1])); err != nil {
			return err
		}
	}
	for _, b := range gc.Circles {
		pts, err := l.points(b.Center)
		if err != nil {
			return fmt.Errorf("circle %q: %w", b.Name, err)
		}
		n, err := l.normal(b.Normal, g)
		if err != nil {
			return fmt.Errorf("circle %q: %w", b.Name, err)
		}
		if err := l.define(b.Name, sk.AddCircle(g.H, wp, pts[0], n, b.Radius)); err != nil {
			return err
		}
	}
	for _, b := range gc.Arcs {
		pts, err := l.points(b.Center, b.Start, b.End)
		if err != nil {
			return fmt.Errorf("arc %q: %w", b.Name, err)
		}
		n, err := l.normal(b.Normal, g)
		if err != nil {
			return fmt.Errorf("arc %q: %w", b.Name, err)
		}
		if err := l.define(b.Name, sk.AddArc(g.H, wp, pts[0], pts[1], pts[2], n)); err != nil {
			return err
		}
	}
	for _, b := range gc.Cubics {
		if len(b.Points) < 4 {
			return fmt.Errorf("%w: cubic %q needs 4 control points, got %d", ErrGeometry, b.Name, len(b.Points))
		}
		pts, err := l.points(b.Points...)
		if err != nil {
			return fmt.Errorf("cubic %q: %w", b.Name, err)
		}
		if err := l.define(b.Name, sk.AddCubic(g.H, wp, pts...)); err != nil {
			return err
		}
	}
	for _, b := range gc.Faces {
		pts, err := l.points(b.Point)
		if err != nil {
			return fmt.Errorf("face %q: %w", b.Name, err)
		}
		n, err := vector(b.Normal)
		if err != nil {
			return fmt.Errorf("face %q: %w", b.Name, err)
		}
		if n.Magnitude() == 0 {
			return fmt.Errorf("%w: face %q has a zero normal", ErrGeometry, b.Name)
		}
		if err := l.define(b.Name, sk.AddFace(g.H, pts[0], n)); err != nil {
			return err
		}
	}
	return nil
}

func (l *loader) addCopies(g *sketch.Group, gc *groupContent) error {
	if len(gc.Copies) > 0 && g.Type != sketch.Transform {
		return fmt.Errorf("%w: copies need a transform block", ErrGeometry)
	}
	for _, b := range gc.Copies {
		src, err := l.lookup(b.Source, "point or normal", isPointOrNormal)
		if err != nil {
			return fmt.Errorf("copy %q: %w", b.Name, err)
		}
		var h sketch.HEntity
		if sketch.IsPoint(l.sk.GetEntity(src)) {
			h = l.sk.AddTransformedPoint(g, src)
		} else {
			h = l.sk.AddTransformedNormal(g, src)
		}
		if err := l.define(b.Name, h); err != nil {
			return err
		}
	}
	return nil
}

func (l *loader) addConstraints(g *sketch.Group, gc *groupContent) error {
	for _, b := range gc.Constraints {
		c, err := l.constraint(g, b)
		if err != nil {
			return fmt.Errorf("constraint %q: %w", b.Name, err)
		}
		if _, dup := l.file.constraints[b.Name]; dup {
			return fmt.Errorf("%w: constraint %q declared twice", ErrParse, b.Name)
		}
		l.file.constraints[b.Name] = l.sk.AddConstraint(c)
	}
	return nil
}

func (l *loader) constraint(g *sketch.Group, b *constraintBlock) (*sketch.Constraint, error) {
	typ, ok := sketch.ParseConstraintType(b.Type)
	if !ok {
		return nil, fmt.Errorf("%w: unknown constraint type %q", ErrParse, b.Type)
	}
	c := &sketch.Constraint{
		Group:     g.H,
		Type:      typ,
		Workplane: g.Workplane,
		ValA:      b.Value,
		Other:     b.Other,
		Reference: b.Reference,
		Name:      b.Name,
		Comment:   b.Comment,
	}
	if b.In3D {
		c.Workplane = sketch.FreeIn3D
	}

	refs := []struct {
		name string
		dst  *sketch.HEntity
		is   func(sketch.Entity) bool
		kind string
	}{
		{b.PtA, &c.PtA, sketch.IsPoint, "point"},
		{b.PtB, &c.PtB, sketch.IsPoint, "point"},
		{b.EntityA, &c.EntityA, nil, "entity"},
		{b.EntityB, &c.EntityB, nil, "entity"},
	}
	for _, r := range refs {
		if r.name == "" {
			continue
		}
		h, err := l.lookup(r.name, r.kind, r.is)
		if err != nil {
			return nil, err
		}
		*r.dst = h
	}

	if err := l.check(c); err != nil {
		return nil, err
	}
	return c, nil
}

// check generates the equations of c once so that entities of the wrong
// kind are reported here instead of failing the solve.
func (l *loader) check(c *sketch.Constraint) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrGeometry, r)
		}
	}()
	probe := *c
	probe.Reference = false
	var scratch sketch.EquationList
	probe.GenerateEquations(l.sk, &scratch)
	return nil
}
