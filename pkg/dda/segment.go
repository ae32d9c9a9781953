// Package dda is the differential drawing engine: parametric curves over
// [0, 1] and adaptive rasterizers that turn them into polylines or cubic
// Bezier chains within an error bound.
package dda

import (
	"math"

	"github.com/chazu/csgtree/pkg/vmath"
)

// Segment maps t in [0, 1] to a point. Implementations must be
// continuously differentiable.
type Segment interface {
	PointAt(t float64) vmath.Vec2
}

// Func adapts a plain function to Segment.
type Func func(t float64) vmath.Vec2

// PointAt calls f.
func (f Func) PointAt(t float64) vmath.Vec2 { return f(t) }

// Element evaluates Fn over the sub-range [MinT, MaxT]; t is remapped
// linearly before the call.
type Element struct {
	MinT, MaxT float64
	Fn         func(t float64) vmath.Vec2
}

// NewElement returns an Element over [minT, maxT].
func NewElement(minT, maxT float64, fn func(float64) vmath.Vec2) Element {
	return Element{MinT: minT, MaxT: maxT, Fn: fn}
}

// PointAt evaluates the element at the remapped parameter.
func (e Element) PointAt(t float64) vmath.Vec2 {
	return e.Fn(e.MinT + t*(e.MaxT-e.MinT))
}

// Line is the straight segment from A to B.
type Line struct {
	A, B vmath.Vec2
}

// PointAt interpolates between A and B.
func (l Line) PointAt(t float64) vmath.Vec2 { return vmath.Lerp2(l.A, l.B, t) }

// Arc is a circular arc around Center from angle From to To (radians).
type Arc struct {
	Center   vmath.Vec2
	Radius   float64
	From, To float64
}

// PointAt returns the point at the interpolated angle.
func (a Arc) PointAt(t float64) vmath.Vec2 {
	return a.Center.Add(vmath.Polar2(a.Radius, a.From+t*(a.To-a.From)))
}

// Circle returns a full circle of radius r around the origin, counter
// clockwise from angle 0.
func Circle(r float64) Arc {
	return Arc{Radius: r, From: 0, To: 2 * math.Pi}
}

// Cubic is a cubic Bezier segment.
type Cubic struct {
	P0, C1, C2, P1 vmath.Vec2
}

// PointAt evaluates the Bezier polynomial.
func (c Cubic) PointAt(t float64) vmath.Vec2 {
	return EvalCubic(c.P0, c.C1, c.C2, c.P1, t)
}

// EvalCubic evaluates the cubic Bezier (p0, c1, c2, p1) at t.
func EvalCubic(p0, c1, c2, p1 vmath.Vec2, t float64) vmath.Vec2 {
	u := 1 - t
	a := u * u * u
	b := 3 * u * u * t
	c := 3 * u * t * t
	d := t * t * t
	return vmath.Vec2{
		X: a*p0.X + b*c1.X + c*c2.X + d*p1.X,
		Y: a*p0.Y + b*c1.Y + c*c2.Y + d*p1.Y,
	}
}

// Cubics splits a flat Bezier chain p0, c1, c2, p1, c1, c2, p2, ... into
// its segments. Trailing points that do not form a full segment are
// ignored.
func Cubics(chain []vmath.Vec2) []Cubic {
	if len(chain) < 4 {
		return nil
	}
	n := (len(chain) - 1) / 3
	out := make([]Cubic, n)
	for i := range out {
		j := 3 * i
		out[i] = Cubic{P0: chain[j], C1: chain[j+1], C2: chain[j+2], P1: chain[j+3]}
	}
	return out
}

// Transformed applies m to every point of s.
type Transformed struct {
	Segment Segment
	M       vmath.Affine2
}

// PointAt transforms the underlying point.
func (t Transformed) PointAt(u float64) vmath.Vec2 {
	return vmath.Apply2(t.M, t.Segment.PointAt(u))
}

// Reversed walks s from t=1 to t=0.
type Reversed struct {
	Segment Segment
}

// PointAt evaluates the underlying segment at 1-t.
func (r Reversed) PointAt(t float64) vmath.Vec2 { return r.Segment.PointAt(1 - t) }
