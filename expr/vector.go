// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package expr

// Vector is a 3-vector of expressions.
type Vector struct {
	X, Y, Z *Expr
}

// VectorFromParams returns the vector (x, y, z) of parameter references.
func VectorFromParams(x, y, z Param) Vector {
	return Vector{FromParam(x), FromParam(y), FromParam(z)}
}

// VectorFromConst returns the constant vector (x, y, z).
func VectorFromConst(x, y, z float64) Vector {
	return Vector{FromConst(x), FromConst(y), FromConst(z)}
}

func (v Vector) Plus(b Vector) Vector {
	return Vector{v.X.Plus(b.X), v.Y.Plus(b.Y), v.Z.Plus(b.Z)}
}

func (v Vector) Minus(b Vector) Vector {
	return Vector{v.X.Minus(b.X), v.Y.Minus(b.Y), v.Z.Minus(b.Z)}
}

func (v Vector) ScaledBy(s *Expr) Vector {
	return Vector{v.X.Times(s), v.Y.Times(s), v.Z.Times(s)}
}

func (v Vector) Dot(b Vector) *Expr {
	return v.X.Times(b.X).Plus(v.Y.Times(b.Y)).Plus(v.Z.Times(b.Z))
}

// Cross returns 𝐯 × 𝐛.
func (v Vector) Cross(b Vector) Vector {
	return Vector{
		v.Y.Times(b.Z).Minus(v.Z.Times(b.Y)),
		v.Z.Times(b.X).Minus(v.X.Times(b.Z)),
		v.X.Times(b.Y).Minus(v.Y.Times(b.X)),
	}
}

// Magnitude returns ‖𝐯‖₂.
func (v Vector) Magnitude() *Expr {
	return v.X.Square().Plus(v.Y.Square()).Plus(v.Z.Square()).Sqrt()
}

// WithMagnitude returns 𝐯 scaled to length s.
func (v Vector) WithMagnitude(s *Expr) Vector {
	return v.ScaledBy(s.Div(v.Magnitude()))
}

// Component returns the i-th component, i ∈ {0, 1, 2}.
func (v Vector) Component(i int) *Expr {
	switch i {
	case 0:
		return v.X
	case 1:
		return v.Y
	case 2:
		return v.Z
	}
	panic("expr: vector component out of range")
}

// Quaternion is a quaternion w + vx·i + vy·j + vz·k of expressions.
// Unit quaternions encode orientations: RotationU, RotationV and RotationN
// are the images of the x, y and z axes.
type Quaternion struct {
	W, VX, VY, VZ *Expr
}

// QuaternionFromParams returns the quaternion of parameter references.
func QuaternionFromParams(w, vx, vy, vz Param) Quaternion {
	return Quaternion{FromParam(w), FromParam(vx), FromParam(vy), FromParam(vz)}
}

// QuaternionFromConst returns the constant quaternion.
func QuaternionFromConst(w, vx, vy, vz float64) Quaternion {
	return Quaternion{FromConst(w), FromConst(vx), FromConst(vy), FromConst(vz)}
}

func two() *Expr { return FromConst(2) }

// RotationU returns the rotated x axis:
//
//	(w²+vx²-vy²-vz², 2(w·vz+vx·vy), 2(vx·vz-w·vy))
func (q Quaternion) RotationU() Vector {
	return Vector{
		q.W.Square().Plus(q.VX.Square()).Minus(q.VY.Square()).Minus(q.VZ.Square()),
		two().Times(q.W.Times(q.VZ).Plus(q.VX.Times(q.VY))),
		two().Times(q.VX.Times(q.VZ).Minus(q.W.Times(q.VY))),
	}
}

// RotationV returns the rotated y axis:
//
//	(2(vx·vy-w·vz), w²-vx²+vy²-vz², 2(w·vx+vy·vz))
func (q Quaternion) RotationV() Vector {
	return Vector{
		two().Times(q.VX.Times(q.VY).Minus(q.W.Times(q.VZ))),
		q.W.Square().Minus(q.VX.Square()).Plus(q.VY.Square()).Minus(q.VZ.Square()),
		two().Times(q.W.Times(q.VX).Plus(q.VY.Times(q.VZ))),
	}
}

// RotationN returns the rotated z axis:
//
//	(2(w·vy+vx·vz), 2(vy·vz-w·vx), w²-vx²-vy²+vz²)
func (q Quaternion) RotationN() Vector {
	return Vector{
		two().Times(q.W.Times(q.VY).Plus(q.VX.Times(q.VZ))),
		two().Times(q.VY.Times(q.VZ).Minus(q.W.Times(q.VX))),
		q.W.Square().Minus(q.VX.Square()).Minus(q.VY.Square()).Plus(q.VZ.Square()),
	}
}

// Rotate applies the rotation to p.
func (q Quaternion) Rotate(p Vector) Vector {
	u, v, n := q.RotationU(), q.RotationV(), q.RotationN()
	return u.ScaledBy(p.X).Plus(v.ScaledBy(p.Y)).Plus(n.ScaledBy(p.Z))
}

// Times returns the Hamilton product q·b.
//
//	w = w₁w₂ - 𝐯₁·𝐯₂
//	𝐯 = w₁𝐯₂ + w₂𝐯₁ + 𝐯₁×𝐯₂
func (q Quaternion) Times(b Quaternion) Quaternion {
	va := Vector{q.VX, q.VY, q.VZ}
	vb := Vector{b.VX, b.VY, b.VZ}
	w := q.W.Times(b.W).Minus(va.Dot(vb))
	v := vb.ScaledBy(q.W).Plus(va.ScaledBy(b.W)).Plus(va.Cross(vb))
	return Quaternion{w, v.X, v.Y, v.Z}
}

// Magnitude returns (w²+vx²+vy²+vz²)¹ᐟ².
func (q Quaternion) Magnitude() *Expr {
	return q.W.Square().Plus(q.VX.Square()).Plus(q.VY.Square()).Plus(q.VZ.Square()).Sqrt()
}
