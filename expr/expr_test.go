// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package expr

import (
	"math"
	"slices"
	"testing"
)

type values map[Param]*float64

func (v values) lookup(p Param) *float64 { return v[p] }

func newValues(kv ...float64) values {
	v := values{}
	for i := 0; i+1 < len(kv); i += 2 {
		x := kv[i+1]
		v[Param(kv[i])] = &x
	}
	return v
}

func TestEval(t *testing.T) {
	vals := newValues(1, 3, 2, 4)
	x, y := FromParam(1), FromParam(2)

	cases := []struct {
		e    *Expr
		want float64
	}{
		{x.Plus(y), 7},
		{x.Minus(y), -1},
		{x.Times(y), 12},
		{x.Div(y), 0.75},
		{x.Negate(), -3},
		{y.Sqrt(), 2},
		{x.Square(), 9},
		{x.Sin(), math.Sin(3)},
		{x.Cos(), math.Cos(3)},
		{FromConst(0.5).ASin(), math.Asin(0.5)},
		{FromConst(0.5).ACos(), math.Acos(0.5)},
		{x.Square().Plus(y.Square()).Sqrt(), 5},
	}
	for _, c := range cases {
		if got := c.e.Bind(vals.lookup).Eval(); math.Abs(got-c.want) > 1e-15 {
			t.Errorf("%v = %v, want %v", c.e, got, c.want)
		}
	}
}

func TestBindIsLive(t *testing.T) {
	vals := newValues(1, 2)
	e := FromParam(1).Square().Bind(vals.lookup)
	if e.Eval() != 4 {
		t.Fatal("unexpected value")
	}
	*vals[1] = 5
	if e.Eval() != 25 {
		t.Fatal("bound expression does not follow parameter value")
	}
}

func TestBindMissing(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic for unbound parameter")
		}
	}()
	FromParam(9).Bind(newValues().lookup)
}

func TestEvalUnbound(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic for unbound evaluation")
		}
	}()
	FromParam(1).Eval()
}

func TestPartialWrt(t *testing.T) {
	vals := newValues(1, 0.3, 2, 0.7)
	x, y := FromParam(1), FromParam(2)

	fns := []*Expr{
		x.Times(y).Plus(x.Square()),
		x.Div(y),
		x.Square().Plus(y.Square()).Sqrt(),
		x.Times(y).Sin(),
		x.Cos().Negate().Minus(y),
		x.Times(y).ASin(),
		x.Plus(y).Div(FromConst(2)).ACos(),
	}
	const h = 1e-6
	for _, f := range fns {
		bf := f.Bind(vals.lookup)
		for _, p := range []Param{1, 2} {
			d := f.PartialWrt(p).FoldConstants().Bind(vals.lookup).Eval()
			v := vals[p]
			t0 := *v
			*v = t0 + h
			fp := bf.Eval()
			*v = t0 - h
			fm := bf.Eval()
			*v = t0
			if num := (fp - fm) / (2 * h); math.Abs(num-d) > 1e-7 {
				t.Errorf("d(%v)/dp%d = %v, numeric %v", f, p, d, num)
			}
		}
	}
}

func TestPartialWrtUnrelated(t *testing.T) {
	e := FromParam(1).Times(FromParam(2)).Sin()
	d := e.PartialWrt(3).FoldConstants()
	if !d.IsZeroConst() {
		t.Fatalf("expected zero derivative, got %v", d)
	}
}

func TestFoldConstants(t *testing.T) {
	x := FromParam(1)
	cases := []struct {
		e    *Expr
		want string
	}{
		{FromConst(2).Times(FromConst(3)).Plus(FromConst(1)), "7"},
		{x.Plus(FromConst(0)), "p1"},
		{FromConst(0).Plus(x), "p1"},
		{x.Minus(FromConst(0)), "p1"},
		{FromConst(0).Minus(x), "-p1"},
		{x.Times(FromConst(1)), "p1"},
		{FromConst(1).Times(x), "p1"},
		{x.Times(FromConst(0)), "0"},
		{FromConst(0).Div(x), "0"},
		{x.Div(FromConst(1)), "p1"},
		{FromConst(4).Sqrt().Times(x), "(2 * p1)"},
	}
	for _, c := range cases {
		if got := c.e.FoldConstants().String(); got != c.want {
			t.Errorf("fold %v = %s, want %s", c.e, got, c.want)
		}
	}
}

func TestFoldConstantsCopies(t *testing.T) {
	x := FromParam(1)
	e := x.Plus(FromConst(0))
	f := e.FoldConstants()
	if f == x {
		t.Fatal("folded expression shares a node with its source")
	}
}

func TestParamsUsed(t *testing.T) {
	e := FromParam(3).Times(FromParam(1)).Plus(FromParam(3).Sin()).Minus(FromConst(2))
	got := e.ParamsUsed(nil)
	if !slices.Equal(got, []Param{3, 1}) {
		t.Fatalf("unexpected params %v", got)
	}
	if !e.DependsOn(1) || e.DependsOn(2) {
		t.Fatal("unexpected dependency")
	}
}

func TestReferencedParams(t *testing.T) {
	all := func(Param) bool { return true }
	only := func(p Param) bool { return p != 2 }

	cases := []struct {
		e    *Expr
		has  func(Param) bool
		p    Param
		n    int
	}{
		{FromConst(1), all, 0, 0},
		{FromParam(4).Times(FromConst(2)), all, 4, 1},
		{FromParam(4).Minus(FromParam(4)), all, 4, 1},
		{FromParam(4).Minus(FromParam(5)), all, 0, 2},
		{FromParam(1).Minus(FromParam(2)), only, 1, 1},
		{FromParam(2).Sqrt(), only, 0, 0},
		{FromParam(1).Plus(FromParam(2)).Plus(FromParam(3)), only, 0, 2},
	}
	for _, c := range cases {
		p, n := c.e.ReferencedParams(c.has)
		if p != c.p || n != c.n {
			t.Errorf("%v: got (%d, %d) want (%d, %d)", c.e, p, n, c.p, c.n)
		}
	}
}

func TestSubstituteParams(t *testing.T) {
	e := FromParam(1).Minus(FromParam(2)).Square()
	e.SubstituteParams(func(p Param) Param {
		if p == 2 {
			return 1
		}
		return p
	})
	if got := e.ParamsUsed(nil); !slices.Equal(got, []Param{1}) {
		t.Fatalf("unexpected params after substitution %v", got)
	}
	vals := newValues(1, 3)
	if v := e.Bind(vals.lookup).Eval(); v != 0 {
		t.Fatalf("unexpected value %v", v)
	}
}

func TestDeepCopy(t *testing.T) {
	e := FromParam(1).Plus(FromParam(2))
	c := e.DeepCopy()
	c.SubstituteParams(func(Param) Param { return 7 })
	if got := e.ParamsUsed(nil); !slices.Equal(got, []Param{1, 2}) {
		t.Fatalf("source modified: %v", got)
	}
}

func TestQuaternionRotation(t *testing.T) {
	// 90° about z
	s := math.Sqrt(0.5)
	q := QuaternionFromConst(s, 0, 0, s)
	vals := newValues()
	eval := func(v Vector) [3]float64 {
		return [3]float64{
			v.X.Bind(vals.lookup).Eval(),
			v.Y.Bind(vals.lookup).Eval(),
			v.Z.Bind(vals.lookup).Eval(),
		}
	}
	near := func(a, b [3]float64) bool {
		for i := range a {
			if math.Abs(a[i]-b[i]) > 1e-12 {
				return false
			}
		}
		return true
	}
	if u := eval(q.RotationU()); !near(u, [3]float64{0, 1, 0}) {
		t.Errorf("unexpected u %v", u)
	}
	if v := eval(q.RotationV()); !near(v, [3]float64{-1, 0, 0}) {
		t.Errorf("unexpected v %v", v)
	}
	if n := eval(q.RotationN()); !near(n, [3]float64{0, 0, 1}) {
		t.Errorf("unexpected n %v", n)
	}
	if r := eval(q.Rotate(VectorFromConst(1, 2, 3))); !near(r, [3]float64{-2, 1, 3}) {
		t.Errorf("unexpected rotation %v", r)
	}
	if m := q.Magnitude().Bind(vals.lookup).Eval(); math.Abs(m-1) > 1e-12 {
		t.Errorf("unexpected magnitude %v", m)
	}
}

func TestVectorOps(t *testing.T) {
	vals := newValues(1, 1, 2, 2, 3, 2)
	a := VectorFromParams(1, 2, 3)
	b := VectorFromConst(0, 0, 1)
	ev := func(e *Expr) float64 { return e.Bind(vals.lookup).Eval() }

	if m := ev(a.Magnitude()); m != 3 {
		t.Errorf("unexpected magnitude %v", m)
	}
	if d := ev(a.Dot(b)); d != 2 {
		t.Errorf("unexpected dot %v", d)
	}
	c := a.Cross(b)
	if x, y, z := ev(c.X), ev(c.Y), ev(c.Z); x != 2 || y != -1 || z != 0 {
		t.Errorf("unexpected cross (%v, %v, %v)", x, y, z)
	}
	w := a.WithMagnitude(FromConst(6))
	if m := ev(w.Magnitude()); math.Abs(m-6) > 1e-12 {
		t.Errorf("unexpected scaled magnitude %v", m)
	}
}
