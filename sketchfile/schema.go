// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package sketchfile

import "github.com/hashicorp/hcl/v2"

type fileSchema struct {
	Variables []*variablesBlock `hcl:"variables,block"`
	Groups    []*groupBlock     `hcl:"group,block"`
}

// variablesBlock is decoded attribute by attribute once the order of
// evaluation is known.
type variablesBlock struct {
	Body hcl.Body `hcl:",remain"`
}

// groupBlock is decoded after the variables are known.
type groupBlock struct {
	Name string   `hcl:"name,label"`
	Body hcl.Body `hcl:",remain"`
}

type groupContent struct {
	// Plane names the workplane the group draws in.
	Plane            string `hcl:"plane,optional"`
	AllowRedundant   bool   `hcl:"allow_redundant,optional"`
	RelaxConstraints bool   `hcl:"relax_constraints,optional"`
	AllDimsReference bool   `hcl:"all_dims_reference,optional"`

	Transform   *transformBlock    `hcl:"transform,block"`
	Workplanes  []*workplaneBlock  `hcl:"workplane,block"`
	Points      []*pointBlock      `hcl:"point,block"`
	Normals     []*normalBlock     `hcl:"normal,block"`
	Distances   []*distanceBlock   `hcl:"distance,block"`
	Lines       []*lineBlock       `hcl:"line,block"`
	Circles     []*circleBlock     `hcl:"circle,block"`
	Arcs        []*arcBlock        `hcl:"arc,block"`
	Cubics      []*cubicBlock      `hcl:"cubic,block"`
	Faces       []*faceBlock       `hcl:"face,block"`
	Copies      []*copyBlock       `hcl:"copy,block"`
	Constraints []*constraintBlock `hcl:"constraint,block"`
}

// transformBlock makes the group a transform: rotation [w, x, y, z] then
// translation [x, y, z].
type transformBlock struct {
	Rotation    []float64 `hcl:"rotation,optional"`
	Translation []float64 `hcl:"translation,optional"`
}

type workplaneBlock struct {
	Name      string    `hcl:"name,label"`
	Origin    []float64 `hcl:"origin,optional"`
	Rotation  []float64 `hcl:"rotation,optional"`
	Reference bool      `hcl:"reference,optional"`
}

// pointBlock is a point in the group's plane when At has two coordinates
// and a free point when it has three.
type pointBlock struct {
	Name string    `hcl:"name,label"`
	At   []float64 `hcl:"at"`
}

type normalBlock struct {
	Name     string    `hcl:"name,label"`
	Rotation []float64 `hcl:"rotation"`
}

type distanceBlock struct {
	Name  string  `hcl:"name,label"`
	Value float64 `hcl:"value"`
}

type lineBlock struct {
	Name string `hcl:"name,label"`
	From string `hcl:"from"`
	To   string `hcl:"to"`
}

type circleBlock struct {
	Name   string  `hcl:"name,label"`
	Center string  `hcl:"center"`
	Radius float64 `hcl:"radius"`
	Normal string  `hcl:"normal,optional"`
}

type arcBlock struct {
	Name   string `hcl:"name,label"`
	Center string `hcl:"center"`
	Start  string `hcl:"start"`
	End    string `hcl:"end"`
	Normal string `hcl:"normal,optional"`
}

type cubicBlock struct {
	Name   string   `hcl:"name,label"`
	Points []string `hcl:"points"`
}

type faceBlock struct {
	Name   string    `hcl:"name,label"`
	Point  string    `hcl:"point"`
	Normal []float64 `hcl:"normal"`
}

// copyBlock copies a point or a normal of an earlier group through the
// transform of its own group.
type copyBlock struct {
	Name   string `hcl:"name,label"`
	Source string `hcl:"source"`
}

type constraintBlock struct {
	Name    string  `hcl:"name,label"`
	Type    string  `hcl:"type"`
	Value   float64 `hcl:"value,optional"`
	PtA     string  `hcl:"pt_a,optional"`
	PtB     string  `hcl:"pt_b,optional"`
	EntityA string  `hcl:"entity_a,optional"`
	EntityB string  `hcl:"entity_b,optional"`
	// In3D measures the constraint in space instead of in the group's plane.
	In3D      bool   `hcl:"in_3d,optional"`
	Other     bool   `hcl:"other,optional"`
	Reference bool   `hcl:"reference,optional"`
	Comment   string `hcl:"comment,optional"`
}
