// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package sketch

import "fmt"

// NewGroup appends a drawing group; a non-zero workplane makes it a
// DrawingWorkplane group.
func (s *Sketch) NewGroup(name string, wrkpl HEntity) *Group {
	g := &Group{Name: name, Type: Drawing3D, Workplane: wrkpl}
	if wrkpl != FreeIn3D {
		g.Type = DrawingWorkplane
	}
	s.AddGroup(g)
	return g
}

// NewTransformGroup appends a transform group whose rotation and translation
// parameters start at q and t.
func (s *Sketch) NewTransformGroup(name string, q Quaternion, t Vector) *Group {
	g := &Group{Name: name, Type: Transform}
	s.AddGroup(g)
	for i, v := range [3]float64{t.X, t.Y, t.Z} {
		g.Translation[i] = s.AddParam(g.H, v)
	}
	for i, v := range [4]float64{q.W, q.VX, q.VY, q.VZ} {
		g.Rotation[i] = s.AddParam(g.H, v)
	}
	return g
}

// AddPoint3D adds a free point at p.
func (s *Sketch) AddPoint3D(g HGroup, p Vector) HEntity {
	e := &PointIn3D{EntityBase: EntityBase{Group: g}}
	for i, v := range [3]float64{p.X, p.Y, p.Z} {
		e.Param[i] = s.AddParam(g, v)
	}
	return s.AddEntity(e)
}

// AddPoint2D adds a point at (u, v) in workplane wrkpl.
func (s *Sketch) AddPoint2D(g HGroup, wrkpl HEntity, u, v float64) HEntity {
	s.workplane(wrkpl)
	e := &PointIn2D{EntityBase: EntityBase{Group: g, Workplane: wrkpl}}
	e.Param[0] = s.AddParam(g, u)
	e.Param[1] = s.AddParam(g, v)
	return s.AddEntity(e)
}

// AddNormal3D adds a free orientation q.
func (s *Sketch) AddNormal3D(g HGroup, q Quaternion) HEntity {
	e := &NormalIn3D{EntityBase: EntityBase{Group: g}}
	for i, v := range [4]float64{q.W, q.VX, q.VY, q.VZ} {
		e.Param[i] = s.AddParam(g, v)
	}
	return s.AddEntity(e)
}

// AddWorkplane adds a workplane through origin with orientation q whose
// origin and normal are solved for.
func (s *Sketch) AddWorkplane(g HGroup, origin Vector, q Quaternion) HEntity {
	o := s.AddPoint3D(g, origin)
	n := s.AddNormal3D(g, q)
	return s.AddEntity(&Workplane{EntityBase: EntityBase{Group: g}, Origin: o, Normal: n})
}

// AddReferenceWorkplane adds a workplane whose origin and orientation are
// locked.
func (s *Sketch) AddReferenceWorkplane(g HGroup, origin Vector, q Quaternion) HEntity {
	o := s.AddEntity(&PointNCopy{EntityBase: EntityBase{Group: g}, Num: origin})
	n := s.AddEntity(&NormalNCopy{EntityBase: EntityBase{Group: g}, Num: q})
	return s.AddEntity(&Workplane{EntityBase: EntityBase{Group: g}, Origin: o, Normal: n})
}

// AddDistance adds a free length v.
func (s *Sketch) AddDistance(g HGroup, wrkpl HEntity, v float64) HEntity {
	e := &Distance{EntityBase: EntityBase{Group: g, Workplane: wrkpl}}
	e.Param = s.AddParam(g, v)
	return s.AddEntity(e)
}

// AddLine adds the segment from a to b.
func (s *Sketch) AddLine(g HGroup, wrkpl, a, b HEntity) HEntity {
	s.mustPoints(a, b)
	return s.AddEntity(&LineSegment{
		EntityBase: EntityBase{Group: g, Workplane: wrkpl},
		Point:      [2]HEntity{a, b},
	})
}

// planeNormal returns the normal for a circular entity: the workplane's own
// for planar geometry, the given one otherwise.
func (s *Sketch) planeNormal(g HGroup, wrkpl, normal HEntity) HEntity {
	if normal != NoEntity {
		return normal
	}
	if wrkpl == FreeIn3D {
		panic("sketch: free circle needs a normal")
	}
	return s.AddEntity(&NormalIn2D{EntityBase: EntityBase{Group: g, Workplane: wrkpl}})
}

// AddCircle adds a circle about center with radius r. normal may be
// NoEntity for a circle drawn in a workplane.
func (s *Sketch) AddCircle(g HGroup, wrkpl, center, normal HEntity, r float64) HEntity {
	s.mustPoints(center)
	n := s.planeNormal(g, wrkpl, normal)
	d := s.AddDistance(g, wrkpl, r)
	return s.AddEntity(&Circle{
		EntityBase: EntityBase{Group: g, Workplane: wrkpl},
		Center:     center, Normal: n, Radius: d,
	})
}

// AddArc adds the arc about center from start to end. normal may be
// NoEntity for an arc drawn in a workplane.
func (s *Sketch) AddArc(g HGroup, wrkpl, center, start, end, normal HEntity) HEntity {
	s.mustPoints(center, start, end)
	n := s.planeNormal(g, wrkpl, normal)
	return s.AddEntity(&ArcOfCircle{
		EntityBase: EntityBase{Group: g, Workplane: wrkpl},
		Point:      [3]HEntity{center, start, end}, Normal: n,
	})
}

// AddCubic adds a Bezier spline through the control points pts.
func (s *Sketch) AddCubic(g HGroup, wrkpl HEntity, pts ...HEntity) HEntity {
	if len(pts) < 4 {
		panic(fmt.Sprintf("sketch: cubic needs 4 control points, got %d", len(pts)))
	}
	s.mustPoints(pts...)
	return s.AddEntity(&Cubic{
		EntityBase: EntityBase{Group: g, Workplane: wrkpl},
		Point:      append([]HEntity(nil), pts...),
	})
}

// AddFace adds the plane through point pt with normal n.
func (s *Sketch) AddFace(g HGroup, pt HEntity, n Vector) HEntity {
	s.mustPoints(pt)
	return s.AddEntity(&FaceNormalPt{
		EntityBase: EntityBase{Group: g},
		Point:      pt,
		Num:        Quaternion{0, n.X, n.Y, n.Z},
	})
}

// AddTransformedPoint adds a copy of src moved by the transform of g.
func (s *Sketch) AddTransformedPoint(g *Group, src HEntity) HEntity {
	if g.Type != Transform {
		panic(fmt.Sprintf("sketch: group %d is not a transform", g.H))
	}
	e := &PointNRotTrans{EntityBase: EntityBase{Group: g.H}, Num: s.PointGetNum(src)}
	copy(e.Param[:3], g.Translation[:])
	copy(e.Param[3:], g.Rotation[:])
	return s.AddEntity(e)
}

// AddTransformedNormal adds a copy of normal src rotated by the transform of g.
func (s *Sketch) AddTransformedNormal(g *Group, src HEntity) HEntity {
	if g.Type != Transform {
		panic(fmt.Sprintf("sketch: group %d is not a transform", g.H))
	}
	e := &NormalNRot{EntityBase: EntityBase{Group: g.H}, Num: s.NormalGetNum(src)}
	copy(e.Param[:], g.Rotation[:])
	return s.AddEntity(e)
}

func (s *Sketch) mustPoints(hs ...HEntity) {
	for _, h := range hs {
		if e := s.GetEntity(h); !IsPoint(e) {
			panic(badEntity("point lookup", e))
		}
	}
}
