// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package sketch

import (
	"errors"
	"fmt"
	"math"

	"github.com/curioloop/geosolve/expr"
)

func badEntity(op string, e Entity) string {
	return fmt.Sprintf("sketch: %s on entity %d of type %T", op, e.Base().H, e)
}

func constVector(v Vector) expr.Vector { return expr.VectorFromConst(v.X, v.Y, v.Z) }

func constQuaternion(q Quaternion) expr.Quaternion {
	return expr.QuaternionFromConst(q.W, q.VX, q.VY, q.VZ)
}

func (s *Sketch) vectorOf(p0, p1, p2 HParam) Vector {
	return Vector{s.val(p0), s.val(p1), s.val(p2)}
}

func (s *Sketch) quaternionOf(p0, p1, p2, p3 HParam) Quaternion {
	return Quaternion{s.val(p0), s.val(p1), s.val(p2), s.val(p3)}
}

// axisAngle is the rotation by angle·times about axis, both read from p:
// p[0] is the angle and p[1..3] the axis.
func (s *Sketch) axisAngle(p []HParam, times int) Quaternion {
	theta := float64(times) * s.val(p[0])
	return AxisAngle(s.vectorOf(p[1], p[2], p[3]), theta)
}

func axisAngleExprs(p []HParam, times int) expr.Quaternion {
	theta := expr.FromConst(float64(times)).Times(expr.FromParam(p[0]))
	c, sn := theta.Cos(), theta.Sin()
	return expr.Quaternion{
		W:  c,
		VX: sn.Times(expr.FromParam(p[1])),
		VY: sn.Times(expr.FromParam(p[2])),
		VZ: sn.Times(expr.FromParam(p[3])),
	}
}

func (s *Sketch) workplane(h HEntity) *Workplane {
	w, ok := s.GetEntity(h).(*Workplane)
	if !ok {
		panic(badEntity("workplane lookup", s.GetEntity(h)))
	}
	return w
}

// PointGetNum returns the current position of point h.
func (s *Sketch) PointGetNum(h HEntity) Vector {
	switch e := s.GetEntity(h).(type) {
	case *PointIn3D:
		return s.vectorOf(e.Param[0], e.Param[1], e.Param[2])
	case *PointIn2D:
		w := s.workplane(e.Workplane)
		q := s.NormalGetNum(w.Normal)
		p := q.RotationU().ScaledBy(s.val(e.Param[0]))
		p = p.Plus(q.RotationV().ScaledBy(s.val(e.Param[1])))
		return p.Plus(s.PointGetNum(w.Origin))
	case *PointNCopy:
		return e.Num
	case *PointNTrans:
		t := s.vectorOf(e.Param[0], e.Param[1], e.Param[2])
		return e.Num.Plus(t.ScaledBy(float64(e.TimesApplied)))
	case *PointNRotTrans:
		q := s.quaternionOf(e.Param[3], e.Param[4], e.Param[5], e.Param[6])
		return q.Rotate(e.Num).Plus(s.vectorOf(e.Param[0], e.Param[1], e.Param[2]))
	case *PointNRotAA:
		c := s.vectorOf(e.Param[0], e.Param[1], e.Param[2])
		q := s.axisAngle(e.Param[3:], e.TimesApplied)
		return q.Rotate(e.Num.Minus(c)).Plus(c)
	default:
		panic(badEntity("PointGetNum", e))
	}
}

// PointGetExprs returns the position of point h as expressions.
func (s *Sketch) PointGetExprs(h HEntity) expr.Vector {
	switch e := s.GetEntity(h).(type) {
	case *PointIn3D:
		return expr.VectorFromParams(e.Param[0], e.Param[1], e.Param[2])
	case *PointIn2D:
		w := s.workplane(e.Workplane)
		q := s.NormalGetExprs(w.Normal)
		r := s.PointGetExprs(w.Origin)
		r = r.Plus(q.RotationU().ScaledBy(expr.FromParam(e.Param[0])))
		return r.Plus(q.RotationV().ScaledBy(expr.FromParam(e.Param[1])))
	case *PointNCopy:
		return constVector(e.Num)
	case *PointNTrans:
		t := expr.VectorFromParams(e.Param[0], e.Param[1], e.Param[2])
		return constVector(e.Num).Plus(t.ScaledBy(expr.FromConst(float64(e.TimesApplied))))
	case *PointNRotTrans:
		q := expr.QuaternionFromParams(e.Param[3], e.Param[4], e.Param[5], e.Param[6])
		t := expr.VectorFromParams(e.Param[0], e.Param[1], e.Param[2])
		return q.Rotate(constVector(e.Num)).Plus(t)
	case *PointNRotAA:
		c := expr.VectorFromParams(e.Param[0], e.Param[1], e.Param[2])
		q := axisAngleExprs(e.Param[3:], e.TimesApplied)
		return q.Rotate(constVector(e.Num).Minus(c)).Plus(c)
	default:
		panic(badEntity("PointGetExprs", e))
	}
}

// PointGetExprsInWorkplane returns the coordinates of point h projected into
// workplane wrkpl.
func (s *Sketch) PointGetExprsInWorkplane(h, wrkpl HEntity) (u, v *expr.Expr) {
	if p, ok := s.GetEntity(h).(*PointIn2D); ok && p.Workplane == wrkpl {
		return expr.FromParam(p.Param[0]), expr.FromParam(p.Param[1])
	}
	w := s.workplane(wrkpl)
	q := s.NormalGetExprs(w.Normal)
	ev := s.PointGetExprs(h).Minus(s.PointGetExprs(w.Origin))
	return ev.Dot(q.RotationU()), ev.Dot(q.RotationV())
}

// PointGetQuaternion returns the rotation applied by a rotated point.
func (s *Sketch) PointGetQuaternion(h HEntity) Quaternion {
	switch e := s.GetEntity(h).(type) {
	case *PointNRotTrans:
		return s.quaternionOf(e.Param[3], e.Param[4], e.Param[5], e.Param[6])
	case *PointNRotAA:
		return s.axisAngle(e.Param[3:], e.TimesApplied)
	default:
		panic(badEntity("PointGetQuaternion", e))
	}
}

// PointForceTo moves point h to p by writing its parameters. Locked points
// are left alone; transformed points only change their translation or angle.
func (s *Sketch) PointForceTo(h HEntity, p Vector) {
	switch e := s.GetEntity(h).(type) {
	case *PointIn3D:
		s.GetParam(e.Param[0]).Val = p.X
		s.GetParam(e.Param[1]).Val = p.Y
		s.GetParam(e.Param[2]).Val = p.Z
	case *PointIn2D:
		w := s.workplane(e.Workplane)
		q := s.NormalGetNum(w.Normal)
		p = p.Minus(s.PointGetNum(w.Origin))
		s.GetParam(e.Param[0]).Val = p.Dot(q.RotationU())
		s.GetParam(e.Param[1]).Val = p.Dot(q.RotationV())
	case *PointNCopy:
	case *PointNTrans:
		if e.TimesApplied == 0 {
			break
		}
		t := p.Minus(e.Num).ScaledBy(1 / float64(e.TimesApplied))
		s.GetParam(e.Param[0]).Val = t.X
		s.GetParam(e.Param[1]).Val = t.Y
		s.GetParam(e.Param[2]).Val = t.Z
	case *PointNRotTrans:
		t := p.Minus(s.PointGetQuaternion(h).Rotate(e.Num))
		s.GetParam(e.Param[0]).Val = t.X
		s.GetParam(e.Param[1]).Val = t.Y
		s.GetParam(e.Param[2]).Val = t.Z
	case *PointNRotAA:
		if e.TimesApplied == 0 {
			break
		}
		c := s.vectorOf(e.Param[0], e.Param[1], e.Param[2])
		n := s.vectorOf(e.Param[4], e.Param[5], e.Param[6])
		u, v := n.Normal(0), n.Normal(1)
		po, no := p.Minus(c), e.Num.Minus(c)
		thetaf := math.Atan2(v.Dot(po), u.Dot(po)) - math.Atan2(v.Dot(no), u.Dot(no))
		times := float64(e.TimesApplied) * 2
		thetai := s.val(e.Param[3]) * times
		// smallest change of the step angle, so crossing ±π does not jump
		dtheta := thetaf - thetai
		for dtheta < -math.Pi {
			dtheta += 2 * math.Pi
		}
		for dtheta > math.Pi {
			dtheta -= 2 * math.Pi
		}
		s.GetParam(e.Param[3]).Val = (thetai + dtheta) / times
	default:
		panic(badEntity("PointForceTo", e))
	}
}

// PointParams returns the parameters that move point h directly.
func (s *Sketch) PointParams(h HEntity) []HParam {
	switch e := s.GetEntity(h).(type) {
	case *PointIn3D:
		return e.Param[:]
	case *PointIn2D:
		return e.Param[:]
	case *PointNCopy:
		return nil
	case *PointNTrans:
		return e.Param[:]
	case *PointNRotTrans:
		return e.Param[:3]
	case *PointNRotAA:
		return e.Param[3:4]
	default:
		panic(badEntity("PointParams", e))
	}
}

// NormalGetNum returns the current orientation of normal h.
func (s *Sketch) NormalGetNum(h HEntity) Quaternion {
	switch e := s.GetEntity(h).(type) {
	case *NormalIn3D:
		return s.quaternionOf(e.Param[0], e.Param[1], e.Param[2], e.Param[3])
	case *NormalIn2D:
		return s.NormalGetNum(s.workplane(e.Workplane).Normal)
	case *NormalNCopy:
		return e.Num
	case *NormalNRot:
		return s.quaternionOf(e.Param[0], e.Param[1], e.Param[2], e.Param[3]).Times(e.Num)
	case *NormalNRotAA:
		return s.axisAngle(e.Param[:], e.TimesApplied).Times(e.Num)
	default:
		panic(badEntity("NormalGetNum", e))
	}
}

// NormalGetExprs returns the orientation of normal h as expressions.
func (s *Sketch) NormalGetExprs(h HEntity) expr.Quaternion {
	switch e := s.GetEntity(h).(type) {
	case *NormalIn3D:
		return expr.QuaternionFromParams(e.Param[0], e.Param[1], e.Param[2], e.Param[3])
	case *NormalIn2D:
		return s.NormalGetExprs(s.workplane(e.Workplane).Normal)
	case *NormalNCopy:
		return constQuaternion(e.Num)
	case *NormalNRot:
		q := expr.QuaternionFromParams(e.Param[0], e.Param[1], e.Param[2], e.Param[3])
		return q.Times(constQuaternion(e.Num))
	case *NormalNRotAA:
		return axisAngleExprs(e.Param[:], e.TimesApplied).Times(constQuaternion(e.Num))
	default:
		panic(badEntity("NormalGetExprs", e))
	}
}

// NormalForceTo writes the orientation q into normal h. Locked normals are
// left alone. Axis-angle normals cannot be forced and report
// errors.ErrUnsupported without changing anything.
func (s *Sketch) NormalForceTo(h HEntity, q Quaternion) error {
	switch e := s.GetEntity(h).(type) {
	case *NormalIn3D:
		s.setQuaternion(e.Param[:], q)
	case *NormalIn2D, *NormalNCopy:
	case *NormalNRot:
		s.setQuaternion(e.Param[:], q.Times(e.Num.Inverse()))
	case *NormalNRotAA:
		return fmt.Errorf("sketch: force axis-angle normal %d: %w", h, errors.ErrUnsupported)
	default:
		panic(badEntity("NormalForceTo", e))
	}
	return nil
}

func (s *Sketch) setQuaternion(p []HParam, q Quaternion) {
	s.GetParam(p[0]).Val = q.W
	s.GetParam(p[1]).Val = q.VX
	s.GetParam(p[2]).Val = q.VY
	s.GetParam(p[3]).Val = q.VZ
}

func (s *Sketch) NormalU(h HEntity) Vector { return s.NormalGetNum(h).RotationU() }
func (s *Sketch) NormalV(h HEntity) Vector { return s.NormalGetNum(h).RotationV() }
func (s *Sketch) NormalN(h HEntity) Vector { return s.NormalGetNum(h).RotationN() }

// VectorGetNum returns the direction of a line segment (from its second
// point to its first) or the normal vector of a normal.
func (s *Sketch) VectorGetNum(h HEntity) Vector {
	e := s.GetEntity(h)
	if l, ok := e.(*LineSegment); ok {
		return s.PointGetNum(l.Point[0]).Minus(s.PointGetNum(l.Point[1]))
	}
	if IsNormal(e) {
		return s.NormalN(h)
	}
	panic(badEntity("VectorGetNum", e))
}

// VectorGetExprs is the symbolic form of VectorGetNum.
func (s *Sketch) VectorGetExprs(h HEntity) expr.Vector {
	e := s.GetEntity(h)
	if l, ok := e.(*LineSegment); ok {
		return s.PointGetExprs(l.Point[0]).Minus(s.PointGetExprs(l.Point[1]))
	}
	if IsNormal(e) {
		return s.NormalGetExprs(h).RotationN()
	}
	panic(badEntity("VectorGetExprs", e))
}

// DistanceGetNum returns the current length of distance h.
func (s *Sketch) DistanceGetNum(h HEntity) float64 {
	switch e := s.GetEntity(h).(type) {
	case *Distance:
		return s.val(e.Param)
	case *DistanceNCopy:
		return e.Num
	default:
		panic(badEntity("DistanceGetNum", e))
	}
}

// DistanceGetExpr returns the length of distance h as an expression.
func (s *Sketch) DistanceGetExpr(h HEntity) *expr.Expr {
	switch e := s.GetEntity(h).(type) {
	case *Distance:
		return expr.FromParam(e.Param)
	case *DistanceNCopy:
		return expr.FromConst(e.Num)
	default:
		panic(badEntity("DistanceGetExpr", e))
	}
}

// DistanceForceTo sets distance h to v; locked distances are left alone.
func (s *Sketch) DistanceForceTo(h HEntity, v float64) {
	switch e := s.GetEntity(h).(type) {
	case *Distance:
		s.GetParam(e.Param).Val = v
	case *DistanceNCopy:
	default:
		panic(badEntity("DistanceForceTo", e))
	}
}

// CircleCenter returns the centre point of a circle or an arc.
func (s *Sketch) CircleCenter(h HEntity) HEntity {
	switch e := s.GetEntity(h).(type) {
	case *Circle:
		return e.Center
	case *ArcOfCircle:
		return e.Point[0]
	default:
		panic(badEntity("CircleCenter", e))
	}
}

// CircleNormal returns the normal of a circle or an arc.
func (s *Sketch) CircleNormal(h HEntity) HEntity {
	switch e := s.GetEntity(h).(type) {
	case *Circle:
		return e.Normal
	case *ArcOfCircle:
		return e.Normal
	default:
		panic(badEntity("CircleNormal", e))
	}
}

// CircleGetRadiusNum returns the current radius of a circle or an arc.
func (s *Sketch) CircleGetRadiusNum(h HEntity) float64 {
	switch e := s.GetEntity(h).(type) {
	case *Circle:
		return s.DistanceGetNum(e.Radius)
	case *ArcOfCircle:
		return s.PointGetNum(e.Point[1]).Minus(s.PointGetNum(e.Point[0])).Magnitude()
	default:
		panic(badEntity("CircleGetRadiusNum", e))
	}
}

// CircleGetRadiusExpr returns the radius of a circle or an arc; the radius
// of an arc is measured to its start point.
func (s *Sketch) CircleGetRadiusExpr(h HEntity) *expr.Expr {
	switch e := s.GetEntity(h).(type) {
	case *Circle:
		return s.DistanceGetExpr(e.Radius)
	case *ArcOfCircle:
		return s.Distance(e.Workplane, e.Point[0], e.Point[1])
	default:
		panic(badEntity("CircleGetRadiusExpr", e))
	}
}

// ArcGetAngles returns the angles of the start and end points of arc h about
// its centre, and the swept angle in (0, 2π]. Coincident endpoints sweep a
// full turn.
func (s *Sketch) ArcGetAngles(h HEntity) (thetaA, thetaB, dtheta float64) {
	a, ok := s.GetEntity(h).(*ArcOfCircle)
	if !ok {
		panic(badEntity("ArcGetAngles", s.GetEntity(h)))
	}
	q := s.NormalGetNum(a.Normal)
	u, v := q.RotationU(), q.RotationV()
	c := s.PointGetNum(a.Point[0])
	pa := s.PointGetNum(a.Point[1]).Minus(c)
	pb := s.PointGetNum(a.Point[2]).Minus(c)
	thetaA = math.Atan2(pa.Dot(v), pa.Dot(u))
	thetaB = math.Atan2(pb.Dot(v), pb.Dot(u))
	dtheta = thetaB - thetaA
	for dtheta < 1e-6 {
		dtheta += 2 * math.Pi
	}
	for dtheta > 2*math.Pi {
		dtheta -= 2 * math.Pi
	}
	return
}

func (s *Sketch) cubic(h HEntity) *Cubic {
	c, ok := s.GetEntity(h).(*Cubic)
	if !ok || len(c.Point) < 4 {
		panic(badEntity("cubic lookup", s.GetEntity(h)))
	}
	return c
}

func (s *Sketch) CubicGetStartNum(h HEntity) Vector {
	return s.PointGetNum(s.cubic(h).Point[0])
}

func (s *Sketch) CubicGetFinishNum(h HEntity) Vector {
	c := s.cubic(h)
	return s.PointGetNum(c.Point[len(c.Point)-1])
}

// CubicGetStartTangentNum returns the first control point minus the second.
func (s *Sketch) CubicGetStartTangentNum(h HEntity) Vector {
	c := s.cubic(h)
	return s.PointGetNum(c.Point[0]).Minus(s.PointGetNum(c.Point[1]))
}

// CubicGetFinishTangentNum returns the last control point minus the one before it.
func (s *Sketch) CubicGetFinishTangentNum(h HEntity) Vector {
	c := s.cubic(h)
	n := len(c.Point)
	return s.PointGetNum(c.Point[n-1]).Minus(s.PointGetNum(c.Point[n-2]))
}

func (s *Sketch) CubicGetStartTangentExprs(h HEntity) expr.Vector {
	c := s.cubic(h)
	return s.PointGetExprs(c.Point[0]).Minus(s.PointGetExprs(c.Point[1]))
}

func (s *Sketch) CubicGetFinishTangentExprs(h HEntity) expr.Vector {
	c := s.cubic(h)
	n := len(c.Point)
	return s.PointGetExprs(c.Point[n-1]).Minus(s.PointGetExprs(c.Point[n-2]))
}

// EndpointStart returns the first endpoint of a line, an arc or a cubic.
func (s *Sketch) EndpointStart(h HEntity) Vector {
	switch e := s.GetEntity(h).(type) {
	case *LineSegment:
		return s.PointGetNum(e.Point[0])
	case *ArcOfCircle:
		return s.PointGetNum(e.Point[1])
	case *Cubic:
		return s.CubicGetStartNum(h)
	default:
		panic(badEntity("EndpointStart", e))
	}
}

// EndpointFinish returns the last endpoint of a line, an arc or a cubic.
func (s *Sketch) EndpointFinish(h HEntity) Vector {
	switch e := s.GetEntity(h).(type) {
	case *LineSegment:
		return s.PointGetNum(e.Point[1])
	case *ArcOfCircle:
		return s.PointGetNum(e.Point[2])
	case *Cubic:
		return s.CubicGetFinishNum(h)
	default:
		panic(badEntity("EndpointFinish", e))
	}
}

func (s *Sketch) WorkplaneGetOffset(h HEntity) Vector {
	return s.PointGetNum(s.workplane(h).Origin)
}

func (s *Sketch) WorkplaneGetOffsetExprs(h HEntity) expr.Vector {
	return s.PointGetExprs(s.workplane(h).Origin)
}

// WorkplaneGetPlaneExprs returns the plane of workplane h as n·p = dn.
func (s *Sketch) WorkplaneGetPlaneExprs(h HEntity) (n expr.Vector, dn *expr.Expr) {
	w := s.workplane(h)
	n = s.NormalGetExprs(w.Normal).RotationN()
	return n, s.PointGetExprs(w.Origin).Dot(n)
}

// FaceGetNormalNum returns the unit normal of face h.
func (s *Sketch) FaceGetNormalNum(h HEntity) Vector {
	var r Vector
	switch e := s.GetEntity(h).(type) {
	case *FaceNormalPt:
		r = Vector{e.Num.VX, e.Num.VY, e.Num.VZ}
	case *FaceXProd:
		r = s.vectorOf(e.Param[0], e.Param[1], e.Param[2]).Cross(Vector{e.Num.VX, e.Num.VY, e.Num.VZ})
	case *FaceNRotTrans:
		q := s.quaternionOf(e.Param[3], e.Param[4], e.Param[5], e.Param[6])
		r = q.Rotate(Vector{e.Num.VX, e.Num.VY, e.Num.VZ})
	case *FaceNTrans:
		r = Vector{e.Num.VX, e.Num.VY, e.Num.VZ}
	case *FaceNRotAA:
		r = s.axisAngle(e.Param[3:], e.TimesApplied).Rotate(Vector{e.Num.VX, e.Num.VY, e.Num.VZ})
	default:
		panic(badEntity("FaceGetNormalNum", e))
	}
	return r.WithMagnitude(1)
}

// FaceGetNormalExprs is the symbolic form of FaceGetNormalNum.
func (s *Sketch) FaceGetNormalExprs(h HEntity) expr.Vector {
	switch e := s.GetEntity(h).(type) {
	case *FaceNormalPt:
		return constVector(Vector{e.Num.VX, e.Num.VY, e.Num.VZ}.WithMagnitude(1))
	case *FaceXProd:
		vc := expr.VectorFromParams(e.Param[0], e.Param[1], e.Param[2])
		return vc.Cross(expr.VectorFromConst(e.Num.VX, e.Num.VY, e.Num.VZ)).WithMagnitude(expr.FromConst(1))
	case *FaceNRotTrans:
		q := expr.QuaternionFromParams(e.Param[3], e.Param[4], e.Param[5], e.Param[6])
		return q.Rotate(expr.VectorFromConst(e.Num.VX, e.Num.VY, e.Num.VZ))
	case *FaceNTrans:
		return expr.VectorFromConst(e.Num.VX, e.Num.VY, e.Num.VZ)
	case *FaceNRotAA:
		q := axisAngleExprs(e.Param[3:], e.TimesApplied)
		return q.Rotate(expr.VectorFromConst(e.Num.VX, e.Num.VY, e.Num.VZ))
	default:
		panic(badEntity("FaceGetNormalExprs", e))
	}
}

// FaceGetPointNum returns a point on face h.
func (s *Sketch) FaceGetPointNum(h HEntity) Vector {
	switch e := s.GetEntity(h).(type) {
	case *FaceNormalPt:
		return s.PointGetNum(e.Point)
	case *FaceXProd:
		return e.NumPoint
	case *FaceNRotTrans:
		q := s.quaternionOf(e.Param[3], e.Param[4], e.Param[5], e.Param[6])
		return q.Rotate(e.NumPoint).Plus(s.vectorOf(e.Param[0], e.Param[1], e.Param[2]))
	case *FaceNTrans:
		t := s.vectorOf(e.Param[0], e.Param[1], e.Param[2])
		return e.NumPoint.Plus(t.ScaledBy(float64(e.TimesApplied)))
	case *FaceNRotAA:
		c := s.vectorOf(e.Param[0], e.Param[1], e.Param[2])
		q := s.axisAngle(e.Param[3:], e.TimesApplied)
		return q.Rotate(e.NumPoint.Minus(c)).Plus(c)
	default:
		panic(badEntity("FaceGetPointNum", e))
	}
}

// FaceGetPointExprs is the symbolic form of FaceGetPointNum.
func (s *Sketch) FaceGetPointExprs(h HEntity) expr.Vector {
	switch e := s.GetEntity(h).(type) {
	case *FaceNormalPt:
		return s.PointGetExprs(e.Point)
	case *FaceXProd:
		return constVector(e.NumPoint)
	case *FaceNRotTrans:
		q := expr.QuaternionFromParams(e.Param[3], e.Param[4], e.Param[5], e.Param[6])
		t := expr.VectorFromParams(e.Param[0], e.Param[1], e.Param[2])
		return q.Rotate(constVector(e.NumPoint)).Plus(t)
	case *FaceNTrans:
		t := expr.VectorFromParams(e.Param[0], e.Param[1], e.Param[2])
		return constVector(e.NumPoint).Plus(t.ScaledBy(expr.FromConst(float64(e.TimesApplied))))
	case *FaceNRotAA:
		c := expr.VectorFromParams(e.Param[0], e.Param[1], e.Param[2])
		q := axisAngleExprs(e.Param[3:], e.TimesApplied)
		return q.Rotate(constVector(e.NumPoint).Minus(c)).Plus(c)
	default:
		panic(badEntity("FaceGetPointExprs", e))
	}
}

// GenerateEntityEquations appends the equations intrinsic to e: unit
// magnitude of a free normal, and equal radii at both ends of an arc.
func (s *Sketch) GenerateEntityEquations(e Entity, l *EquationList) {
	switch e := e.(type) {
	case *NormalIn3D:
		q := s.NormalGetExprs(e.H)
		l.Add(e.H.Equation(0), q.Magnitude().Minus(expr.FromConst(1)))
	case *ArcOfCircle:
		// copied arcs have their points fixed relative to each other
		if _, ok := s.GetEntity(e.Point[0]).(*PointIn2D); !ok {
			return
		}
		// a full circle made by joining the endpoints would be over-constrained
		for _, c := range s.constraint {
			if c.Group != e.Group || c.Type != PointsCoincident {
				continue
			}
			if (c.PtA == e.Point[1] && c.PtB == e.Point[2]) ||
				(c.PtA == e.Point[2] && c.PtB == e.Point[1]) {
				return
			}
		}
		ra := s.Distance(e.Workplane, e.Point[0], e.Point[1])
		rb := s.Distance(e.Workplane, e.Point[0], e.Point[2])
		l.Add(e.H.Equation(0), ra.Minus(rb))
	}
}
