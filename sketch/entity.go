// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package sketch

// Entity is a geometric primitive of the sketch. The set of variants is
// closed: every operation on entities is an exhaustive type switch and an
// unknown variant is a programmer error.
//
// Entities refer to parameters and to other entities by handle only.
type Entity interface {
	Base() *EntityBase
	entity()
}

// EntityBase carries the fields shared by every variant.
type EntityBase struct {
	H     HEntity
	Group HGroup
	// Workplane the entity is drawn in, FreeIn3D for free geometry.
	Workplane HEntity
	Name      string
}

func (b *EntityBase) Base() *EntityBase { return b }
func (*EntityBase) entity()             {}

// PointIn3D is a free point with coordinates (x, y, z).
type PointIn3D struct {
	EntityBase
	Param [3]HParam
}

// PointIn2D is a point with coordinates (u, v) in its workplane.
type PointIn2D struct {
	EntityBase
	Param [2]HParam
}

// PointNCopy is a locked copy of a point.
type PointNCopy struct {
	EntityBase
	Num Vector
}

// PointNTrans is Num translated TimesApplied times by (Param[0..2]).
type PointNTrans struct {
	EntityBase
	Num          Vector
	Param        [3]HParam
	TimesApplied int
}

// PointNRotTrans is Num rotated by the quaternion Param[3..6] and then
// translated by Param[0..2].
type PointNRotTrans struct {
	EntityBase
	Num   Vector
	Param [7]HParam
}

// PointNRotAA is Num rotated about the axis Param[4..6] through the centre
// Param[0..2] by the angle Param[3] applied TimesApplied times.
type PointNRotAA struct {
	EntityBase
	Num          Vector
	Param        [7]HParam
	TimesApplied int
}

// NormalIn3D is a free orientation given by a quaternion.
type NormalIn3D struct {
	EntityBase
	Param [4]HParam
}

// NormalIn2D is the orientation of its workplane.
type NormalIn2D struct {
	EntityBase
}

// NormalNCopy is a locked orientation.
type NormalNCopy struct {
	EntityBase
	Num Quaternion
}

// NormalNRot is Num rotated by the quaternion Param[0..3].
type NormalNRot struct {
	EntityBase
	Num   Quaternion
	Param [4]HParam
}

// NormalNRotAA is Num rotated about the axis Param[1..3] by the angle
// Param[0] applied TimesApplied times.
type NormalNRotAA struct {
	EntityBase
	Num          Quaternion
	Param        [4]HParam
	TimesApplied int
}

// Distance is a free length.
type Distance struct {
	EntityBase
	Param HParam
}

// DistanceNCopy is a locked length.
type DistanceNCopy struct {
	EntityBase
	Num float64
}

// Workplane is the plane through Origin oriented by Normal.
type Workplane struct {
	EntityBase
	Origin, Normal HEntity
}

// LineSegment joins two points.
type LineSegment struct {
	EntityBase
	Point [2]HEntity
}

// Circle is given by centre, orientation and a radius distance entity.
type Circle struct {
	EntityBase
	Center, Normal, Radius HEntity
}

// ArcOfCircle runs counter-clockwise about Point[0] from Point[1] to Point[2].
type ArcOfCircle struct {
	EntityBase
	Point  [3]HEntity
	Normal HEntity
}

// Cubic is a Bezier spline with at least four control points.
type Cubic struct {
	EntityBase
	Point []HEntity
}

// FaceNormalPt is the plane through Point with the locked normal Num.
type FaceNormalPt struct {
	EntityBase
	Point HEntity
	Num   Quaternion
}

// FaceXProd is the plane through NumPoint whose normal is the cross product
// of Param[0..2] with Num.
type FaceXProd struct {
	EntityBase
	Param    [3]HParam
	Num      Quaternion
	NumPoint Vector
}

// FaceNRotTrans is a face rotated by Param[3..6] and translated by Param[0..2].
type FaceNRotTrans struct {
	EntityBase
	Param    [7]HParam
	Num      Quaternion
	NumPoint Vector
}

// FaceNTrans is a face translated TimesApplied times by Param[0..2].
type FaceNTrans struct {
	EntityBase
	Param        [3]HParam
	Num          Quaternion
	NumPoint     Vector
	TimesApplied int
}

// FaceNRotAA is a face rotated like PointNRotAA.
type FaceNRotAA struct {
	EntityBase
	Param        [7]HParam
	Num          Quaternion
	NumPoint     Vector
	TimesApplied int
}

// IsPoint reports whether e is one of the point variants.
func IsPoint(e Entity) bool {
	switch e.(type) {
	case *PointIn3D, *PointIn2D, *PointNCopy, *PointNTrans, *PointNRotTrans, *PointNRotAA:
		return true
	}
	return false
}

// IsNormal reports whether e is one of the normal variants.
func IsNormal(e Entity) bool {
	switch e.(type) {
	case *NormalIn3D, *NormalIn2D, *NormalNCopy, *NormalNRot, *NormalNRotAA:
		return true
	}
	return false
}

// IsFace reports whether e is one of the face variants.
func IsFace(e Entity) bool {
	switch e.(type) {
	case *FaceNormalPt, *FaceXProd, *FaceNRotTrans, *FaceNTrans, *FaceNRotAA:
		return true
	}
	return false
}

// IsCircle reports whether e is a circle or an arc.
func IsCircle(e Entity) bool {
	switch e.(type) {
	case *Circle, *ArcOfCircle:
		return true
	}
	return false
}

// HasVector reports whether e has a direction: line segments and normals.
func HasVector(e Entity) bool {
	if _, ok := e.(*LineSegment); ok {
		return true
	}
	return IsNormal(e)
}

// HasEndpoints reports whether e is a line segment, an arc or a cubic.
func HasEndpoints(e Entity) bool {
	switch e.(type) {
	case *LineSegment, *ArcOfCircle, *Cubic:
		return true
	}
	return false
}
