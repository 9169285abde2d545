// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package sketch

import "math"

// LengthEps is the distance below which two points are considered the same.
const LengthEps = 1e-6

// Vector is a numeric 3-vector.
type Vector struct{ X, Y, Z float64 }

func (a Vector) Plus(b Vector) Vector  { return Vector{a.X + b.X, a.Y + b.Y, a.Z + b.Z} }
func (a Vector) Minus(b Vector) Vector { return Vector{a.X - b.X, a.Y - b.Y, a.Z - b.Z} }
func (a Vector) ScaledBy(s float64) Vector {
	return Vector{a.X * s, a.Y * s, a.Z * s}
}
func (a Vector) Dot(b Vector) float64 { return a.X*b.X + a.Y*b.Y + a.Z*b.Z }
func (a Vector) Cross(b Vector) Vector {
	return Vector{
		a.Y*b.Z - a.Z*b.Y,
		a.Z*b.X - a.X*b.Z,
		a.X*b.Y - a.Y*b.X,
	}
}
func (a Vector) Magnitude() float64 { return math.Sqrt(a.Dot(a)) }

// WithMagnitude rescales a to length s; the zero vector is returned unchanged.
func (a Vector) WithMagnitude(s float64) Vector {
	m := a.Magnitude()
	if m == 0 {
		return a
	}
	return a.ScaledBy(s / m)
}

// Equals reports whether a and b lie within LengthEps of each other.
func (a Vector) Equals(b Vector) bool {
	return a.Minus(b).Magnitude() < LengthEps
}

// Component returns X, Y or Z for i = 0, 1, 2.
func (a Vector) Component(i int) float64 {
	switch i {
	case 0:
		return a.X
	case 1:
		return a.Y
	default:
		return a.Z
	}
}

// Normal returns a unit vector perpendicular to a. which = 0 and which = 1
// select two such vectors that are perpendicular to each other.
func (a Vector) Normal(which int) Vector {
	var n Vector
	xa, ya, za := math.Abs(a.X), math.Abs(a.Y), math.Abs(a.Z)
	switch {
	case a.Equals(Vector{0, 0, 1}):
		n = Vector{1, 0, 0}
	case xa < ya && xa < za:
		n = Vector{0, a.Z, -a.Y}
	case ya < za:
		n = Vector{-a.Z, 0, a.X}
	default:
		n = Vector{a.Y, -a.X, 0}
	}
	if which == 1 {
		n = a.Cross(n)
	}
	return n.WithMagnitude(1)
}

// ProjectInto returns the component of a lying in the plane spanned by the
// orthonormal u and v.
func (a Vector) ProjectInto(u, v Vector) Vector {
	return u.ScaledBy(a.Dot(u)).Plus(v.ScaledBy(a.Dot(v)))
}

// Quaternion is a numeric quaternion w + vx·i + vy·j + vz·k. Unit quaternions
// encode orientations.
type Quaternion struct{ W, VX, VY, VZ float64 }

// IdentityQuaternion is the orientation of the XY plane.
var IdentityQuaternion = Quaternion{1, 0, 0, 0}

// QuaternionFromUV returns the orientation whose first two basis vectors are
// the orthonormal u and v.
func QuaternionFromUV(u, v Vector) Quaternion {
	n := u.Cross(v)
	var q Quaternion
	s, tr := 0.0, 1+u.X+v.Y+n.Z
	switch {
	case tr > 1e-4:
		s = 2 * math.Sqrt(tr)
		q = Quaternion{s / 4, (v.Z - n.Y) / s, (n.X - u.Z) / s, (u.Y - v.X) / s}
	case u.X > v.Y && u.X > n.Z:
		s = 2 * math.Sqrt(1+u.X-v.Y-n.Z)
		q = Quaternion{(v.Z - n.Y) / s, s / 4, (u.Y + v.X) / s, (n.X + u.Z) / s}
	case v.Y > n.Z:
		s = 2 * math.Sqrt(1-u.X+v.Y-n.Z)
		q = Quaternion{(n.X - u.Z) / s, (u.Y + v.X) / s, s / 4, (v.Z + n.Y) / s}
	default:
		s = 2 * math.Sqrt(1-u.X-v.Y+n.Z)
		q = Quaternion{(u.Y - v.X) / s, (n.X + u.Z) / s, (v.Z + n.Y) / s, s / 4}
	}
	return q.WithMagnitude(1)
}

// AxisAngle returns the quaternion (cos θ, sin θ·axis) with θ = angle.
func AxisAngle(axis Vector, angle float64) Quaternion {
	s := math.Sin(angle)
	return Quaternion{math.Cos(angle), axis.X * s, axis.Y * s, axis.Z * s}
}

func (q Quaternion) RotationU() Vector {
	return Vector{
		q.W*q.W + q.VX*q.VX - q.VY*q.VY - q.VZ*q.VZ,
		2*q.W*q.VZ + 2*q.VX*q.VY,
		2*q.VX*q.VZ - 2*q.W*q.VY,
	}
}

func (q Quaternion) RotationV() Vector {
	return Vector{
		2*q.VX*q.VY - 2*q.W*q.VZ,
		q.W*q.W - q.VX*q.VX + q.VY*q.VY - q.VZ*q.VZ,
		2*q.W*q.VX + 2*q.VY*q.VZ,
	}
}

func (q Quaternion) RotationN() Vector {
	return Vector{
		2*q.W*q.VY + 2*q.VX*q.VZ,
		2*q.VY*q.VZ - 2*q.W*q.VX,
		q.W*q.W - q.VX*q.VX - q.VY*q.VY + q.VZ*q.VZ,
	}
}

// Rotate applies the rotation encoded by the unit quaternion q to p.
func (q Quaternion) Rotate(p Vector) Vector {
	return q.RotationU().ScaledBy(p.X).
		Plus(q.RotationV().ScaledBy(p.Y)).
		Plus(q.RotationN().ScaledBy(p.Z))
}

// Times returns the Hamilton product q·b.
func (q Quaternion) Times(b Quaternion) Quaternion {
	return Quaternion{
		q.W*b.W - q.VX*b.VX - q.VY*b.VY - q.VZ*b.VZ,
		q.W*b.VX + q.VX*b.W + q.VY*b.VZ - q.VZ*b.VY,
		q.W*b.VY - q.VX*b.VZ + q.VY*b.W + q.VZ*b.VX,
		q.W*b.VZ + q.VX*b.VY - q.VY*b.VX + q.VZ*b.W,
	}
}

func (q Quaternion) Magnitude() float64 {
	return math.Sqrt(q.W*q.W + q.VX*q.VX + q.VY*q.VY + q.VZ*q.VZ)
}

func (q Quaternion) WithMagnitude(s float64) Quaternion {
	m := q.Magnitude()
	if m == 0 {
		return q
	}
	f := s / m
	return Quaternion{q.W * f, q.VX * f, q.VY * f, q.VZ * f}
}

// Inverse returns the conjugate of q divided by its squared magnitude.
func (q Quaternion) Inverse() Quaternion {
	m2 := q.W*q.W + q.VX*q.VX + q.VY*q.VY + q.VZ*q.VZ
	return Quaternion{q.W / m2, -q.VX / m2, -q.VY / m2, -q.VZ / m2}
}
