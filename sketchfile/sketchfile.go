// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package sketchfile loads sketches described in HCL.
//
// A file holds an optional variables block and a sequence of groups solved
// in file order. Entity and constraint names are unique across the file and
// later groups may refer to the geometry of earlier ones.
//
//	variables {
//	  side = 10
//	}
//
//	group "sketch" {
//	  workplane "xy" {
//	    reference = true
//	  }
//	  plane = "xy"
//
//	  point "a" {
//	    at = [0, 0]
//	  }
//	  point "b" {
//	    at = [var.side, 0]
//	  }
//	  line "ab" {
//	    from = "a"
//	    to   = "b"
//	  }
//	  constraint "length" {
//	    type  = "pt-pt-distance"
//	    pt_a  = "a"
//	    pt_b  = "b"
//	    value = var.side * 2
//	  }
//	}
package sketchfile

import (
	"errors"
	"fmt"
	"maps"
	"math"
	"slices"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/gocty"

	"github.com/curioloop/geosolve/sketch"
)

var (
	ErrParse     = errors.New("sketchfile: invalid file")
	ErrReference = errors.New("sketchfile: unresolved reference")
	ErrGeometry  = errors.New("sketchfile: invalid geometry")
)

// File is a loaded sketch together with the names it was written with.
type File struct {
	Sketch *sketch.Sketch
	// Variables holds the value of every variable after overrides.
	Variables map[string]float64

	entities    map[string]sketch.HEntity
	constraints map[string]sketch.HConstraint
}

// Entity returns the entity declared as name.
func (f *File) Entity(name string) (sketch.HEntity, bool) {
	h, ok := f.entities[name]
	return h, ok
}

// Constraint returns the constraint declared as name.
func (f *File) Constraint(name string) (sketch.HConstraint, bool) {
	h, ok := f.constraints[name]
	return h, ok
}

// Load reads the sketch file at path. Entries of vars replace the values of
// the variables of the same name.
func Load(path string, vars map[string]float64) (*File, error) {
	f, diags := hclparse.NewParser().ParseHCLFile(path)
	if diags.HasErrors() {
		return nil, fmt.Errorf("%w: %s", ErrParse, diags.Error())
	}
	return decode(f.Body, vars)
}

// Parse reads a sketch from src. filename only appears in diagnostics.
func Parse(src []byte, filename string, vars map[string]float64) (*File, error) {
	f, diags := hclparse.NewParser().ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("%w: %s", ErrParse, diags.Error())
	}
	return decode(f.Body, vars)
}

func decode(body hcl.Body, vars map[string]float64) (*File, error) {
	var fs fileSchema
	if diags := gohcl.DecodeBody(body, nil, &fs); diags.HasErrors() {
		return nil, fmt.Errorf("%w: %s", ErrParse, diags.Error())
	}

	values, err := evalVariables(fs.Variables, vars)
	if err != nil {
		return nil, err
	}

	l := &loader{
		sk:  sketch.New(),
		ctx: varContext(values),
		file: &File{
			Variables:   make(map[string]float64, len(values)),
			entities:    make(map[string]sketch.HEntity),
			constraints: make(map[string]sketch.HConstraint),
		},
	}
	l.file.Sketch = l.sk
	for name, v := range values {
		var f float64
		if err := gocty.FromCtyValue(v, &f); err != nil {
			return nil, fmt.Errorf("%w: variable %q: %v", ErrParse, name, err)
		}
		l.file.Variables[name] = f
	}

	for _, b := range fs.Groups {
		if err := l.group(b); err != nil {
			return nil, fmt.Errorf("group %q: %w", b.Name, err)
		}
	}
	return l.file, nil
}

// evalVariables evaluates the variables in dependency order. A variable may
// refer to any other one through var.<name>.
func evalVariables(blocks []*variablesBlock, overrides map[string]float64) (map[string]cty.Value, error) {
	pending := make(map[string]*hcl.Attribute)
	for _, b := range blocks {
		attrs, diags := b.Body.JustAttributes()
		if diags.HasErrors() {
			return nil, fmt.Errorf("%w: %s", ErrParse, diags.Error())
		}
		for name, a := range attrs {
			if _, dup := pending[name]; dup {
				return nil, fmt.Errorf("%w: variable %q declared twice", ErrParse, name)
			}
			pending[name] = a
		}
	}

	values := make(map[string]cty.Value)
	for name, f := range overrides {
		v, err := gocty.ToCtyValue(f, cty.Number)
		if err != nil {
			return nil, fmt.Errorf("%w: variable %q: %v", ErrParse, name, err)
		}
		values[name] = v
		delete(pending, name)
	}

	for len(pending) > 0 {
		progress := false
		for _, name := range slices.Sorted(maps.Keys(pending)) {
			a := pending[name]
			if !resolvable(a.Expr, values) {
				continue
			}
			v, diags := a.Expr.Value(varContext(values))
			if diags.HasErrors() {
				return nil, fmt.Errorf("%w: %s", ErrParse, diags.Error())
			}
			var f float64
			if err := gocty.FromCtyValue(v, &f); err != nil {
				return nil, fmt.Errorf("%w: variable %q: %v", ErrParse, name, err)
			}
			values[name] = cty.NumberFloatVal(f)
			delete(pending, name)
			progress = true
		}
		if !progress {
			names := slices.Sorted(maps.Keys(pending))
			return nil, fmt.Errorf("%w: variables %s refer to undefined or to each other",
				ErrReference, strings.Join(names, ", "))
		}
	}
	return values, nil
}

// resolvable reports whether every var.<name> referenced by e has a value.
func resolvable(e hcl.Expression, values map[string]cty.Value) bool {
	for _, t := range e.Variables() {
		if t.RootName() != "var" || len(t) < 2 {
			continue
		}
		if attr, ok := t[1].(hcl.TraverseAttr); ok {
			if _, ok := values[attr.Name]; !ok {
				return false
			}
		}
	}
	return true
}

func varContext(values map[string]cty.Value) *hcl.EvalContext {
	return &hcl.EvalContext{
		Variables: map[string]cty.Value{"var": cty.ObjectVal(values)},
	}
}

func rotation(v []float64) (sketch.Quaternion, error) {
	switch len(v) {
	case 0:
		return sketch.IdentityQuaternion, nil
	case 4:
		q := sketch.Quaternion{W: v[0], VX: v[1], VY: v[2], VZ: v[3]}
		if m := q.Magnitude(); !(m > 0) || math.IsInf(m, 0) {
			return q, fmt.Errorf("%w: rotation %v is not a direction", ErrGeometry, v)
		}
		return q.WithMagnitude(1), nil
	}
	return sketch.Quaternion{}, fmt.Errorf("%w: rotation needs 4 components, got %d", ErrGeometry, len(v))
}

func vector(v []float64) (sketch.Vector, error) {
	switch len(v) {
	case 0:
		return sketch.Vector{}, nil
	case 3:
		return sketch.Vector{X: v[0], Y: v[1], Z: v[2]}, nil
	}
	return sketch.Vector{}, fmt.Errorf("%w: vector needs 3 components, got %d", ErrGeometry, len(v))
}
