// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package sketch

import (
	"fmt"
	"math"

	"github.com/curioloop/geosolve/expr"
)

// ConstraintType selects the relation a Constraint imposes.
type ConstraintType int

const (
	PointsCoincident ConstraintType = iota + 1
	PtPtDistance
	PtPlaneDistance
	PtLineDistance
	PtFaceDistance
	PtInPlane
	PtOnLine
	PtOnFace
	PtOnCircle
	EqualLengthLines
	LengthRatio
	EqualRadius
	Diameter
	Horizontal
	Vertical
	Parallel
	Perpendicular
	Angle
	AtMidpoint
	WhereDragged
	ArcLineTangent
	CubicLineTangent
	Comment
)

var constraintNames = map[ConstraintType]string{
	PointsCoincident: "points-coincident",
	PtPtDistance:     "pt-pt-distance",
	PtPlaneDistance:  "pt-plane-distance",
	PtLineDistance:   "pt-line-distance",
	PtFaceDistance:   "pt-face-distance",
	PtInPlane:        "pt-in-plane",
	PtOnLine:         "pt-on-line",
	PtOnFace:         "pt-on-face",
	PtOnCircle:       "pt-on-circle",
	EqualLengthLines: "equal-length-lines",
	LengthRatio:      "length-ratio",
	EqualRadius:      "equal-radius",
	Diameter:         "diameter",
	Horizontal:       "horizontal",
	Vertical:         "vertical",
	Parallel:         "parallel",
	Perpendicular:    "perpendicular",
	Angle:            "angle",
	AtMidpoint:       "at-midpoint",
	WhereDragged:     "where-dragged",
	ArcLineTangent:   "arc-line-tangent",
	CubicLineTangent: "cubic-line-tangent",
	Comment:          "comment",
}

func (t ConstraintType) String() string {
	if n, ok := constraintNames[t]; ok {
		return n
	}
	return fmt.Sprintf("ConstraintType(%d)", int(t))
}

// ParseConstraintType is the inverse of ConstraintType.String.
func ParseConstraintType(name string) (ConstraintType, bool) {
	for t, n := range constraintNames {
		if n == name {
			return t, true
		}
	}
	return 0, false
}

// Constraint is a user-authored relation between entities.
//
// Which of PtA, PtB, EntityA and EntityB are used depends on Type. ValA is
// the dimension of labelled constraints: a length, a ratio or an angle in
// degrees. Other flips the sense of Angle and selects the arc end point of
// ArcLineTangent and the cubic end of CubicLineTangent.
type Constraint struct {
	H         HConstraint
	Group     HGroup
	Type      ConstraintType
	Workplane HEntity

	ValA             float64
	PtA, PtB         HEntity
	EntityA, EntityB HEntity
	Other            bool
	// Reference dimensions follow the geometry instead of driving it.
	Reference bool
	Name      string
	Comment   string
}

// HasLabel reports whether the constraint carries a dimension.
func (c *Constraint) HasLabel() bool {
	switch c.Type {
	case PtPtDistance, PtPlaneDistance, PtLineDistance, PtFaceDistance,
		Diameter, LengthRatio, Angle, Comment:
		return true
	}
	return false
}

// GenerateEquations appends the equations of c to l. Reference constraints
// generate nothing.
func (c *Constraint) GenerateEquations(s *Sketch, l *EquationList) {
	if c.Reference {
		return
	}
	c.generate(s, l)
}

// ModifyToSatisfy sets ValA to the dimension the current geometry has.
func (c *Constraint) ModifyToSatisfy(s *Sketch) {
	if c.Type == Angle {
		a, b := s.VectorGetNum(c.EntityA), s.VectorGetNum(c.EntityB)
		if c.Other {
			a = a.ScaledBy(-1)
		}
		if c.Workplane != FreeIn3D {
			n := s.workplane(c.Workplane).Normal
			u, v := s.NormalU(n), s.NormalV(n)
			a, b = a.ProjectInto(u, v), b.ProjectInto(u, v)
		}
		cos := a.Dot(b) / (a.Magnitude() * b.Magnitude())
		c.ValA = math.Acos(math.Max(-1, math.Min(1, cos))) * 180 / math.Pi
		return
	}
	if !c.HasLabel() || c.Type == Comment {
		return
	}
	// dimensional equations are f(geometry) - ValA
	var l EquationList
	c.generate(s, &l)
	if l.Len() != 1 {
		panic(fmt.Sprintf("sketch: constraint %d generated %d equations, expected one", c.H, l.Len()))
	}
	c.ValA += s.Eval(l.At(0).E)
}

func (c *Constraint) generate(s *Sketch, l *EquationList) {
	add := func(i int, e *expr.Expr) { l.Add(c.H.Equation(i), e) }
	val := expr.FromConst(c.ValA)

	switch c.Type {
	case PointsCoincident:
		if c.Workplane == FreeIn3D {
			a, b := s.PointGetExprs(c.PtA), s.PointGetExprs(c.PtB)
			add(0, a.X.Minus(b.X))
			add(1, a.Y.Minus(b.Y))
			add(2, a.Z.Minus(b.Z))
		} else {
			au, av := s.PointGetExprsInWorkplane(c.PtA, c.Workplane)
			bu, bv := s.PointGetExprsInWorkplane(c.PtB, c.Workplane)
			add(0, au.Minus(bu))
			add(1, av.Minus(bv))
		}

	case PtPtDistance:
		add(0, s.Distance(c.Workplane, c.PtA, c.PtB).Minus(val))

	case PtPlaneDistance:
		add(0, s.pointPlaneDistance(s.PointGetExprs(c.PtA), c.EntityA).Minus(val))

	case PtLineDistance:
		add(0, s.PointLineDistance(c.Workplane, c.PtA, c.EntityA).Minus(val))

	case PtFaceDistance:
		add(0, s.pointFaceDistance(c.PtA, c.EntityA).Minus(val))

	case PtInPlane:
		add(0, s.pointPlaneDistance(s.PointGetExprs(c.PtA), c.EntityA))

	case PtOnFace:
		add(0, s.pointFaceDistance(c.PtA, c.EntityA))

	case PtOnLine:
		ln := s.line(c.EntityA)
		if c.Workplane == FreeIn3D {
			a, b := s.PointGetExprs(ln.Point[0]), s.PointGetExprs(ln.Point[1])
			p := s.PointGetExprs(c.PtA)
			pivot := s.PointGetNum(ln.Point[1]).Minus(s.PointGetNum(ln.Point[0]))
			ab, ap := b.Minus(a), p.Minus(a)
			add(0, vectorsParallel(0, ab, ap, pivot))
			add(1, vectorsParallel(1, ab, ap, pivot))
		} else {
			add(0, s.PointLineDistance(c.Workplane, c.PtA, c.EntityA))
		}

	case PtOnCircle:
		// constrains the point to the cylinder through the circle
		center := s.PointGetExprs(s.CircleCenter(c.EntityA))
		q := s.NormalGetExprs(s.CircleNormal(c.EntityA))
		d := center.Minus(s.PointGetExprs(c.PtA))
		du, dv := d.Dot(q.RotationU()), d.Dot(q.RotationV())
		r := s.CircleGetRadiusExpr(c.EntityA)
		add(0, du.Square().Plus(dv.Square()).Sqrt().Minus(r))

	case EqualLengthLines:
		a, b := s.line(c.EntityA), s.line(c.EntityB)
		la := s.Distance(c.Workplane, a.Point[0], a.Point[1])
		lb := s.Distance(c.Workplane, b.Point[0], b.Point[1])
		add(0, la.Minus(lb))

	case LengthRatio:
		a, b := s.line(c.EntityA), s.line(c.EntityB)
		la := s.Distance(c.Workplane, a.Point[0], a.Point[1])
		lb := s.Distance(c.Workplane, b.Point[0], b.Point[1])
		add(0, la.Div(lb).Minus(val))

	case EqualRadius:
		add(0, s.CircleGetRadiusExpr(c.EntityA).Minus(s.CircleGetRadiusExpr(c.EntityB)))

	case Diameter:
		r := s.CircleGetRadiusExpr(c.EntityA)
		add(0, r.Times(expr.FromConst(2)).Minus(val))

	case Horizontal, Vertical:
		if c.Workplane == FreeIn3D {
			panic(fmt.Sprintf("sketch: %v constraint %d needs a workplane", c.Type, c.H))
		}
		pa, pb := c.PtA, c.PtB
		if c.EntityA != NoEntity {
			ln := s.line(c.EntityA)
			pa, pb = ln.Point[0], ln.Point[1]
		}
		au, av := s.PointGetExprsInWorkplane(pa, c.Workplane)
		bu, bv := s.PointGetExprsInWorkplane(pb, c.Workplane)
		if c.Type == Horizontal {
			add(0, av.Minus(bv))
		} else {
			add(0, au.Minus(bu))
		}

	case Parallel:
		a, b := s.VectorGetExprs(c.EntityA), s.VectorGetExprs(c.EntityB)
		if c.Workplane == FreeIn3D {
			pivot := s.VectorGetNum(c.EntityA)
			add(0, vectorsParallel(0, a, b, pivot))
			add(1, vectorsParallel(1, a, b, pivot))
		} else {
			ua, va := s.inWorkplane(a, c.Workplane)
			ub, vb := s.inWorkplane(b, c.Workplane)
			add(0, ua.Times(vb).Minus(va.Times(ub)))
		}

	case Perpendicular, Angle:
		a, b := s.VectorGetExprs(c.EntityA), s.VectorGetExprs(c.EntityB)
		if c.Other {
			a = a.ScaledBy(expr.FromConst(-1))
		}
		cos := s.DirectionCosine(c.Workplane, a, b)
		if c.Type == Perpendicular {
			add(0, cos)
		} else {
			rads := val.Times(expr.FromConst(math.Pi / 180))
			add(0, cos.Minus(rads.Cos()))
		}

	case AtMidpoint:
		ln := s.line(c.EntityA)
		half := expr.FromConst(0.5)
		if c.Workplane == FreeIn3D {
			a, b := s.PointGetExprs(ln.Point[0]), s.PointGetExprs(ln.Point[1])
			m := a.Plus(b).ScaledBy(half)
			p := s.PointGetExprs(c.PtA)
			add(0, m.X.Minus(p.X))
			add(1, m.Y.Minus(p.Y))
			add(2, m.Z.Minus(p.Z))
		} else {
			au, av := s.PointGetExprsInWorkplane(ln.Point[0], c.Workplane)
			bu, bv := s.PointGetExprsInWorkplane(ln.Point[1], c.Workplane)
			pu, pv := s.PointGetExprsInWorkplane(c.PtA, c.Workplane)
			add(0, au.Plus(bu).Times(half).Minus(pu))
			add(1, av.Plus(bv).Times(half).Minus(pv))
		}

	case WhereDragged:
		p := s.PointGetNum(c.PtA)
		if c.Workplane == FreeIn3D {
			e := s.PointGetExprs(c.PtA)
			add(0, e.X.Minus(expr.FromConst(p.X)))
			add(1, e.Y.Minus(expr.FromConst(p.Y)))
			add(2, e.Z.Minus(expr.FromConst(p.Z)))
		} else {
			w := s.workplane(c.Workplane)
			q := s.NormalGetNum(w.Normal)
			d := p.Minus(s.PointGetNum(w.Origin))
			u, v := s.PointGetExprsInWorkplane(c.PtA, c.Workplane)
			add(0, u.Minus(expr.FromConst(d.Dot(q.RotationU()))))
			add(1, v.Minus(expr.FromConst(d.Dot(q.RotationV()))))
		}

	case ArcLineTangent:
		arc, ok := s.GetEntity(c.EntityA).(*ArcOfCircle)
		if !ok {
			panic(badEntity("ArcLineTangent", s.GetEntity(c.EntityA)))
		}
		center := s.PointGetExprs(arc.Point[0])
		end := arc.Point[1]
		if c.Other {
			end = arc.Point[2]
		}
		radius := s.PointGetExprs(end).Minus(center)
		add(0, s.DirectionCosine(c.Workplane, radius, s.VectorGetExprs(c.EntityB)))

	case CubicLineTangent:
		var a expr.Vector
		var pivot Vector
		if c.Other {
			a, pivot = s.CubicGetFinishTangentExprs(c.EntityA), s.CubicGetFinishTangentNum(c.EntityA)
		} else {
			a, pivot = s.CubicGetStartTangentExprs(c.EntityA), s.CubicGetStartTangentNum(c.EntityA)
		}
		b := s.VectorGetExprs(c.EntityB)
		if c.Workplane == FreeIn3D {
			add(0, vectorsParallel(0, a, b, pivot))
			add(1, vectorsParallel(1, a, b, pivot))
		} else {
			ua, va := s.inWorkplane(a, c.Workplane)
			ub, vb := s.inWorkplane(b, c.Workplane)
			add(0, ua.Times(vb).Minus(va.Times(ub)))
		}

	case Comment:

	default:
		panic(fmt.Sprintf("sketch: constraint %d has unknown type %v", c.H, c.Type))
	}
}

func (s *Sketch) line(h HEntity) *LineSegment {
	ln, ok := s.GetEntity(h).(*LineSegment)
	if !ok {
		panic(badEntity("line lookup", s.GetEntity(h)))
	}
	return ln
}

// inWorkplane returns the components of the direction v along the basis
// vectors of workplane w.
func (s *Sketch) inWorkplane(v expr.Vector, w HEntity) (u, vv *expr.Expr) {
	q := s.NormalGetExprs(s.workplane(w).Normal)
	return v.Dot(q.RotationU()), v.Dot(q.RotationV())
}

// Distance returns the distance between points a and b, measured in
// projection onto wrkpl unless it is FreeIn3D.
func (s *Sketch) Distance(wrkpl, a, b HEntity) *expr.Expr {
	if wrkpl == FreeIn3D {
		return s.PointGetExprs(a).Minus(s.PointGetExprs(b)).Magnitude()
	}
	au, av := s.PointGetExprsInWorkplane(a, wrkpl)
	bu, bv := s.PointGetExprsInWorkplane(b, wrkpl)
	du, dv := au.Minus(bu), av.Minus(bv)
	return du.Square().Plus(dv.Square()).Sqrt()
}

// PointLineDistance returns the distance from point p to line ln. Within a
// workplane the distance is signed by the side of the line p is on.
func (s *Sketch) PointLineDistance(wrkpl, p, ln HEntity) *expr.Expr {
	l := s.line(ln)
	if wrkpl == FreeIn3D {
		ea, eb := s.PointGetExprs(l.Point[0]), s.PointGetExprs(l.Point[1])
		ep := s.PointGetExprs(p)
		ab := ea.Minus(eb)
		return ab.Cross(ea.Minus(ep)).Magnitude().Div(ab.Magnitude())
	}
	ua, va := s.PointGetExprsInWorkplane(l.Point[0], wrkpl)
	ub, vb := s.PointGetExprsInWorkplane(l.Point[1], wrkpl)
	u, v := s.PointGetExprsInWorkplane(p, wrkpl)
	du, dv := ua.Minus(ub), va.Minus(vb)
	m := du.Square().Plus(dv.Square()).Sqrt()
	proj := dv.Times(ua.Minus(u)).Minus(du.Times(va.Minus(v)))
	return proj.Div(m)
}

func (s *Sketch) pointPlaneDistance(p expr.Vector, wrkpl HEntity) *expr.Expr {
	n, d := s.WorkplaneGetPlaneExprs(wrkpl)
	return p.Dot(n).Minus(d)
}

func (s *Sketch) pointFaceDistance(p, face HEntity) *expr.Expr {
	d := s.PointGetExprs(p).Minus(s.FaceGetPointExprs(face))
	return d.Dot(s.FaceGetNormalExprs(face))
}

// DirectionCosine returns the cosine of the angle between a and b, measured
// in projection onto wrkpl unless it is FreeIn3D.
func (s *Sketch) DirectionCosine(wrkpl HEntity, a, b expr.Vector) *expr.Expr {
	if wrkpl == FreeIn3D {
		return a.Dot(b).Div(a.Magnitude().Times(b.Magnitude()))
	}
	ua, va := s.inWorkplane(a, wrkpl)
	ub, vb := s.inWorkplane(b, wrkpl)
	maga := ua.Square().Plus(va.Square()).Sqrt()
	magb := ub.Square().Plus(vb.Square()).Sqrt()
	dot := ua.Times(ub).Plus(va.Times(vb))
	return dot.Div(maga.Times(magb))
}

// vectorsParallel returns one of two independent components of a × b.
// The component along the dominant axis of pivot, the current direction of
// a, is nearly zero whenever a ∥ b and is left out.
func vectorsParallel(eq int, a, b expr.Vector, pivot Vector) *expr.Expr {
	r := a.Cross(b)
	mx, my, mz := math.Abs(pivot.X), math.Abs(pivot.Y), math.Abs(pivot.Z)
	var first, second *expr.Expr
	switch {
	case mx > my && mx > mz:
		first, second = r.Y, r.Z
	case my > mz:
		first, second = r.Z, r.X
	default:
		first, second = r.X, r.Y
	}
	if eq == 0 {
		return first
	}
	return second
}
