// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package sketch

import (
	"errors"
	"math"
	"testing"

	"github.com/curioloop/geosolve/expr"
)

func evalVector(s *Sketch, v expr.Vector) Vector {
	return Vector{s.Eval(v.X), s.Eval(v.Y), s.Eval(v.Z)}
}

func evalQuaternion(s *Sketch, q expr.Quaternion) Quaternion {
	return Quaternion{s.Eval(q.W), s.Eval(q.VX), s.Eval(q.VY), s.Eval(q.VZ)}
}

func nearVector(a, b Vector, tol float64) bool {
	return a.Minus(b).Magnitude() <= tol
}

func nearQuaternion(a, b Quaternion, tol float64) bool {
	d := Quaternion{a.W - b.W, a.VX - b.VX, a.VY - b.VY, a.VZ - b.VZ}
	return d.Magnitude() <= tol
}

// tilted returns a sketch with a free workplane that is neither at the
// origin nor parallel to a coordinate plane.
func tilted() (s *Sketch, g *Group, wp HEntity) {
	s = New()
	g = s.NewGroup("tilted", FreeIn3D)
	q := AxisAngle(Vector{1, 2, 2}.WithMagnitude(1), 0.4)
	wp = s.AddWorkplane(g.H, Vector{1, 2, 3}, q)
	return
}

func (s *Sketch) params(g HGroup, vs ...float64) []HParam {
	hs := make([]HParam, len(vs))
	for i, v := range vs {
		hs[i] = s.AddParam(g, v)
	}
	return hs
}

func TestPointExprsMatchNum(t *testing.T) {
	s, g, wp := tilted()
	axis := Vector{0, 1, 1}.WithMagnitude(1)

	pts := map[string]HEntity{
		"in-3d": s.AddPoint3D(g.H, Vector{4, -1, 2}),
		"in-2d": s.AddPoint2D(g.H, wp, 3, -2),
		"copy":  s.AddEntity(&PointNCopy{EntityBase: EntityBase{Group: g.H}, Num: Vector{7, 8, 9}}),
	}

	tr := &PointNTrans{EntityBase: EntityBase{Group: g.H}, Num: Vector{1, 1, 1}, TimesApplied: 3}
	copy(tr.Param[:], s.params(g.H, 0.5, -1, 2))
	pts["trans"] = s.AddEntity(tr)

	aa := &PointNRotAA{EntityBase: EntityBase{Group: g.H}, Num: Vector{2, 0, 1}, TimesApplied: 2}
	copy(aa.Param[:], s.params(g.H, 1, 1, 0, 0.3, axis.X, axis.Y, axis.Z))
	pts["rot-aa"] = s.AddEntity(aa)

	xf := s.NewTransformGroup("xf", AxisAngle(axis, 0.7), Vector{1, -2, 5})
	pts["rot-trans"] = s.AddTransformedPoint(xf, pts["in-3d"])

	for name, h := range pts {
		num := s.PointGetNum(h)
		sym := evalVector(s, s.PointGetExprs(h))
		if !nearVector(num, sym, 1e-12) {
			t.Errorf("%s: numeric %v symbolic %v", name, num, sym)
		}
	}

	// a 2d point expressed in its own workplane is its parameters
	u, v := s.PointGetExprsInWorkplane(pts["in-2d"], wp)
	if s.Eval(u) != 3 || s.Eval(v) != -2 {
		t.Fatal("unexpected workplane coordinates")
	}
	// projecting a 3d point gives the same coordinates
	p3 := s.AddPoint3D(g.H, s.PointGetNum(pts["in-2d"]))
	u, v = s.PointGetExprsInWorkplane(p3, wp)
	if math.Abs(s.Eval(u)-3) > 1e-12 || math.Abs(s.Eval(v)+2) > 1e-12 {
		t.Fatalf("unexpected projected coordinates (%v, %v)", s.Eval(u), s.Eval(v))
	}
}

func TestNormalExprsMatchNum(t *testing.T) {
	s, g, wp := tilted()
	axis := Vector{1, 0, 1}.WithMagnitude(1)

	n3 := s.AddNormal3D(g.H, AxisAngle(Vector{0, 0, 1}, 0.2))
	nrm := map[string]HEntity{
		"in-3d": n3,
		"in-2d": s.AddEntity(&NormalIn2D{EntityBase: EntityBase{Group: g.H, Workplane: wp}}),
		"copy":  s.AddEntity(&NormalNCopy{EntityBase: EntityBase{Group: g.H}, Num: AxisAngle(axis, 1)}),
	}

	aa := &NormalNRotAA{EntityBase: EntityBase{Group: g.H}, Num: IdentityQuaternion, TimesApplied: 2}
	copy(aa.Param[:], s.params(g.H, 0.25, axis.X, axis.Y, axis.Z))
	nrm["rot-aa"] = s.AddEntity(aa)

	xf := s.NewTransformGroup("xf", AxisAngle(axis, -0.3), Vector{})
	nrm["rot"] = s.AddTransformedNormal(xf, n3)

	for name, h := range nrm {
		num := s.NormalGetNum(h)
		sym := evalQuaternion(s, s.NormalGetExprs(h))
		if !nearQuaternion(num, sym, 1e-12) {
			t.Errorf("%s: numeric %v symbolic %v", name, num, sym)
		}
		if vn, ve := s.VectorGetNum(h), evalVector(s, s.VectorGetExprs(h)); !nearVector(vn, ve, 1e-12) {
			t.Errorf("%s: vector numeric %v symbolic %v", name, vn, ve)
		}
	}

	if s.NormalGetNum(nrm["in-2d"]) != s.NormalGetNum(s.workplane(wp).Normal) {
		t.Fatal("2d normal does not follow its workplane")
	}
}

func TestFaceExprsMatchNum(t *testing.T) {
	s, g, _ := tilted()
	axis := Vector{0, 0, 1}
	up := Quaternion{0, 0, 0, 1}
	pt := Vector{1, 2, 3}

	faces := map[string]HEntity{
		"normal-pt": s.AddFace(g.H, s.AddPoint3D(g.H, pt), Vector{0, 3, 4}),
	}

	xp := &FaceXProd{EntityBase: EntityBase{Group: g.H}, Num: Quaternion{0, 1, 0, 0}, NumPoint: pt}
	copy(xp.Param[:], s.params(g.H, 0, 2, 0))
	faces["x-prod"] = s.AddEntity(xp)

	rt := &FaceNRotTrans{EntityBase: EntityBase{Group: g.H}, Num: up, NumPoint: pt}
	q := AxisAngle(Vector{1, 0, 0}, 0.3)
	copy(rt.Param[:], s.params(g.H, 1, 1, 1, q.W, q.VX, q.VY, q.VZ))
	faces["rot-trans"] = s.AddEntity(rt)

	tr := &FaceNTrans{EntityBase: EntityBase{Group: g.H}, Num: up, NumPoint: pt, TimesApplied: 2}
	copy(tr.Param[:], s.params(g.H, 0, 0, 1))
	faces["trans"] = s.AddEntity(tr)

	aa := &FaceNRotAA{EntityBase: EntityBase{Group: g.H}, Num: Quaternion{0, 1, 0, 0}, NumPoint: pt, TimesApplied: 1}
	copy(aa.Param[:], s.params(g.H, 0, 0, 0, 0.4, axis.X, axis.Y, axis.Z))
	faces["rot-aa"] = s.AddEntity(aa)

	for name, h := range faces {
		nn, ne := s.FaceGetNormalNum(h), evalVector(s, s.FaceGetNormalExprs(h))
		if !nearVector(nn, ne, 1e-12) {
			t.Errorf("%s: normal numeric %v symbolic %v", name, nn, ne)
		}
		if math.Abs(nn.Magnitude()-1) > 1e-12 {
			t.Errorf("%s: normal not unit %v", name, nn)
		}
		pn, pe := s.FaceGetPointNum(h), evalVector(s, s.FaceGetPointExprs(h))
		if !nearVector(pn, pe, 1e-12) {
			t.Errorf("%s: point numeric %v symbolic %v", name, pn, pe)
		}
	}

	if n := s.FaceGetNormalNum(faces["normal-pt"]); !nearVector(n, Vector{0, 0.6, 0.8}, 1e-15) {
		t.Fatalf("unexpected face normal %v", n)
	}
	if p := s.FaceGetPointNum(faces["trans"]); p != (Vector{1, 2, 5}) {
		t.Fatalf("unexpected translated face point %v", p)
	}
}

func TestPointForceTo(t *testing.T) {
	s, g, wp := tilted()
	target := Vector{-3, 5, 0.5}

	p3 := s.AddPoint3D(g.H, Vector{})
	tr := &PointNTrans{EntityBase: EntityBase{Group: g.H}, Num: Vector{1, 1, 1}, TimesApplied: 2}
	copy(tr.Param[:], s.params(g.H, 0, 0, 0))
	ht := s.AddEntity(tr)
	xf := s.NewTransformGroup("xf", AxisAngle(Vector{0, 0, 1}, 0.5), Vector{})
	hr := s.AddTransformedPoint(xf, p3)

	for _, h := range []HEntity{p3, ht, hr} {
		s.PointForceTo(h, target)
		if got := s.PointGetNum(h); !nearVector(got, target, 1e-12) {
			t.Errorf("point %d forced to %v", h, got)
		}
	}

	// a 2d point lands on the projection of the target into its plane
	p2 := s.AddPoint2D(g.H, wp, 0, 0)
	s.PointForceTo(p2, target)
	got := s.PointGetNum(p2)
	n := s.NormalN(s.workplane(wp).Normal)
	if off := target.Minus(got); off.Cross(n).Magnitude() > 1e-12 {
		t.Fatalf("2d point %v is not the projection of %v", got, target)
	}

	// rotating copies move along their orbit
	aa := &PointNRotAA{EntityBase: EntityBase{Group: g.H}, Num: Vector{1, 0, 0}, TimesApplied: 1}
	copy(aa.Param[:], s.params(g.H, 0, 0, 0, 0, 0, 0, 1))
	ha := s.AddEntity(aa)
	s.PointForceTo(ha, Vector{0, 1, 0})
	if got := s.PointGetNum(ha); !nearVector(got, Vector{0, 1, 0}, 1e-12) {
		t.Fatalf("rotated copy at %v", got)
	}

	// locked points stay
	c := s.AddEntity(&PointNCopy{EntityBase: EntityBase{Group: g.H}, Num: Vector{1, 2, 3}})
	s.PointForceTo(c, target)
	if s.PointGetNum(c) != (Vector{1, 2, 3}) {
		t.Fatal("locked point moved")
	}
}

func TestNormalForceTo(t *testing.T) {
	s, g, _ := tilted()
	q := AxisAngle(Vector{0, 1, 0}, 0.6)

	n3 := s.AddNormal3D(g.H, IdentityQuaternion)
	xf := s.NewTransformGroup("xf", IdentityQuaternion, Vector{})
	nr := s.AddTransformedNormal(xf, s.AddEntity(&NormalNCopy{
		EntityBase: EntityBase{Group: g.H},
		Num:        AxisAngle(Vector{1, 0, 0}, 0.2),
	}))

	for _, h := range []HEntity{n3, nr} {
		if err := s.NormalForceTo(h, q); err != nil {
			t.Fatal(err)
		}
		if got := s.NormalGetNum(h); !nearQuaternion(got, q, 1e-12) {
			t.Errorf("normal %d forced to %v", h, got)
		}
	}

	aa := &NormalNRotAA{EntityBase: EntityBase{Group: g.H}, Num: IdentityQuaternion, TimesApplied: 1}
	copy(aa.Param[:], s.params(g.H, 0, 0, 0, 1))
	ha := s.AddEntity(aa)
	before := s.NormalGetNum(ha)
	if err := s.NormalForceTo(ha, q); !errors.Is(err, errors.ErrUnsupported) {
		t.Fatalf("unexpected error %v", err)
	}
	if s.NormalGetNum(ha) != before {
		t.Fatal("axis-angle normal changed")
	}
}

func TestDistanceEntity(t *testing.T) {
	s := New()
	g := s.NewGroup("g", FreeIn3D)
	d := s.AddDistance(g.H, FreeIn3D, 2)
	s.DistanceForceTo(d, 4)
	if s.DistanceGetNum(d) != 4 || s.Eval(s.DistanceGetExpr(d)) != 4 {
		t.Fatal("distance not forced")
	}
	c := s.AddEntity(&DistanceNCopy{EntityBase: EntityBase{Group: g.H}, Num: 3})
	s.DistanceForceTo(c, 9)
	if s.DistanceGetNum(c) != 3 {
		t.Fatal("locked distance changed")
	}
	mustPanic(t, "distance of a point", func() { s.DistanceGetNum(s.AddPoint3D(g.H, Vector{})) })
}

// xyPlane returns a sketch whose first group holds the locked XY workplane
// and whose second group draws in it.
func xyPlane() (s *Sketch, g HGroup, wp HEntity) {
	s = New()
	ref := s.NewGroup("reference", FreeIn3D)
	wp = s.AddReferenceWorkplane(ref.H, Vector{}, IdentityQuaternion)
	g = s.NewGroup("sketch", wp).H
	return
}

func TestArcGeometry(t *testing.T) {
	s, g, wp := xyPlane()
	c := s.AddPoint2D(g, wp, 0, 0)
	a := s.AddPoint2D(g, wp, 2, 0)
	b := s.AddPoint2D(g, wp, 0, 2)
	arc := s.AddArc(g, wp, c, a, b, NoEntity)

	ta, tb, dt := s.ArcGetAngles(arc)
	if ta != 0 || math.Abs(tb-math.Pi/2) > 1e-15 || math.Abs(dt-math.Pi/2) > 1e-15 {
		t.Fatalf("unexpected angles %v %v %v", ta, tb, dt)
	}
	if r := s.CircleGetRadiusNum(arc); r != 2 {
		t.Fatalf("unexpected radius %v", r)
	}
	if s.EndpointStart(arc) != (Vector{2, 0, 0}) || s.EndpointFinish(arc) != (Vector{0, 2, 0}) {
		t.Fatal("unexpected arc endpoints")
	}

	s.PointForceTo(b, Vector{2, 0, 0})
	if _, _, dt = s.ArcGetAngles(arc); math.Abs(dt-2*math.Pi) > 1e-12 {
		t.Fatalf("closed arc sweeps %v", dt)
	}
}

func TestEntityEquations(t *testing.T) {
	s, g, wp := xyPlane()
	n := s.AddNormal3D(g, IdentityQuaternion)
	c := s.AddPoint2D(g, wp, 0, 0)
	a := s.AddPoint2D(g, wp, 2, 0)
	b := s.AddPoint2D(g, wp, 0, 3)
	arc := s.AddArc(g, wp, c, a, b, NoEntity)

	var l EquationList
	s.GenerateEntityEquations(s.GetEntity(n), &l)
	s.GenerateEntityEquations(s.GetEntity(arc), &l)
	if l.Len() != 2 {
		t.Fatalf("unexpected equation count %d", l.Len())
	}
	if s.Eval(l.At(0).E) != 0 || l.At(0).H.Entity() != n {
		t.Fatal("unexpected unit normal equation")
	}
	if v := s.Eval(l.At(1).E); v != -1 || l.At(1).H.Entity() != arc {
		t.Fatalf("unexpected arc equation %v", v)
	}

	// an arc closed by a coincidence is already fully determined
	s.AddConstraint(&Constraint{Group: g, Type: PointsCoincident, Workplane: wp, PtA: b, PtB: a})
	l.Clear()
	s.GenerateEntityEquations(s.GetEntity(arc), &l)
	if l.Len() != 0 {
		t.Fatal("closed arc generated an equation")
	}

	xf := s.NewTransformGroup("xf", IdentityQuaternion, Vector{})
	xf.GenerateEquations(&l)
	if l.Len() != 1 || !l.At(0).H.IsFromGroup() || s.Eval(l.At(0).E) != 0 {
		t.Fatal("unexpected transform equation")
	}
	s.GetGroup(g).GenerateEquations(&l)
	if l.Len() != 1 {
		t.Fatal("drawing group generated an equation")
	}
}

func TestCubicTangents(t *testing.T) {
	s, g, wp := xyPlane()
	var pts []HEntity
	for _, p := range [][2]float64{{0, 0}, {1, 0}, {2, 1}, {3, 3}} {
		pts = append(pts, s.AddPoint2D(g, wp, p[0], p[1]))
	}
	cu := s.AddCubic(g, wp, pts...)
	if v := s.CubicGetStartTangentNum(cu); v != (Vector{-1, 0, 0}) {
		t.Fatalf("unexpected start tangent %v", v)
	}
	if v := s.CubicGetFinishTangentNum(cu); v != (Vector{1, 2, 0}) {
		t.Fatalf("unexpected finish tangent %v", v)
	}
	if v := evalVector(s, s.CubicGetFinishTangentExprs(cu)); v != (Vector{1, 2, 0}) {
		t.Fatalf("unexpected symbolic finish tangent %v", v)
	}
	if s.EndpointFinish(cu) != (Vector{3, 3, 0}) {
		t.Fatal("unexpected cubic end")
	}
}

func TestVectorHelpers(t *testing.T) {
	for _, a := range []Vector{{0, 0, 1}, {1, 0, 0}, {0, 1, 0}, {1, 2, 3}, {-3, 0.5, 0.1}} {
		u, v := a.Normal(0), a.Normal(1)
		if math.Abs(u.Dot(a)) > 1e-12 || math.Abs(v.Dot(a)) > 1e-12 || math.Abs(u.Dot(v)) > 1e-12 {
			t.Errorf("%v: basis %v %v not orthogonal", a, u, v)
		}
		if math.Abs(u.Magnitude()-1) > 1e-12 || math.Abs(v.Magnitude()-1) > 1e-12 {
			t.Errorf("%v: basis not unit", a)
		}
	}

	u := Vector{1, 1, 0}.WithMagnitude(1)
	v := Vector{-1, 1, 0}.WithMagnitude(1)
	q := QuaternionFromUV(u, v)
	if !nearVector(q.RotationU(), u, 1e-12) || !nearVector(q.RotationV(), v, 1e-12) {
		t.Fatal("quaternion does not reproduce its basis")
	}
	if r := q.Times(q.Inverse()); !nearQuaternion(r, IdentityQuaternion, 1e-12) {
		t.Fatalf("q·q⁻¹ = %v", r)
	}
}
