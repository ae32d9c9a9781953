package dda

import (
	"github.com/chazu/csgtree/pkg/vmath"
)

const (
	// tangentStep is the half width of the finite difference used for
	// tangent estimates.
	tangentStep = 1e-7
	// maxHandle bounds the handle scale search, relative to the chord.
	maxHandle        = 2.0
	searchIterations = 60
	// maxBezierDepth bounds interval splitting so curves with cusps or
	// jumps terminate.
	maxBezierDepth = 24
)

// checkParams are the Bezier parameters compared against the curve.
var checkParams = [...]float64{0.25, 0.5, 0.75}

// RasterizeBezier approximates s by a chain of cubic Bezier segments in
// flat form p0, c1, c2, p1, c1, c2, p2, ... Each interval of the initial
// subdivision is fitted and bisected until every fitted cubic stays within
// maxError of the curve. maxError must be positive.
func RasterizeBezier(s Segment, initialSegmentCount int, maxError float64) []vmath.Vec2 {
	checkTolerance(maxError)
	n := max(initialSegmentCount, 1)
	out := []vmath.Vec2{s.PointAt(0)}
	for i := 0; i < n; i++ {
		t0 := float64(i) / float64(n)
		t1 := float64(i+1) / float64(n)
		out = fitBezier(out, s, t0, t1, maxError, 0)
	}
	return out
}

// fitBezier appends c1, c2, p1 for the interval [t0, t1], splitting it
// while the fit is not good enough.
func fitBezier(out []vmath.Vec2, s Segment, t0, t1, maxError float64, depth int) []vmath.Vec2 {
	p0 := s.PointAt(t0)
	p1 := s.PointAt(t1)
	pm := s.PointAt((t0 + t1) / 2)
	chord := vmath.Dist2(p0, p1)

	d0 := tangent(s, t0)
	d1 := tangent(s, t1)
	k := handleScale(p0, d0, p1, d1, chord, pm)
	c1 := p0.Add(d0.MulScalar(k * chord))
	c2 := p1.Sub(d1.MulScalar(k * chord))

	if depth < maxBezierDepth {
		split := false
		if chord == 0 {
			split = vmath.Dist2(pm, p0) > maxError
		} else {
			split = !fits(s, t0, t1, Cubic{P0: p0, C1: c1, C2: c2, P1: p1}, maxError)
		}
		if split {
			tm := (t0 + t1) / 2
			out = fitBezier(out, s, t0, tm, maxError, depth+1)
			return fitBezier(out, s, tm, t1, maxError, depth+1)
		}
	}
	return append(out, c1, c2, p1)
}

// tangent estimates the unit direction of s at t by a symmetric finite
// difference, one-sided at the ends of [0, 1].
func tangent(s Segment, t float64) vmath.Vec2 {
	a := max(t-tangentStep, 0)
	b := min(t+tangentStep, 1)
	return vmath.Normalize2(s.PointAt(b).Sub(s.PointAt(a)))
}

// handleScale finds the handle length, as a fraction of the chord, whose
// Bezier midpoint lies closest to the curve midpoint pm. The distance is
// convex in the scale, so interval shrinking converges to the optimum. Ties
// shrink toward shorter handles.
func handleScale(p0, d0, p1, d1 vmath.Vec2, chord float64, pm vmath.Vec2) float64 {
	dist := func(k float64) float64 {
		c1 := p0.Add(d0.MulScalar(k * chord))
		c2 := p1.Sub(d1.MulScalar(k * chord))
		return vmath.Dist2(EvalCubic(p0, c1, c2, p1, 0.5), pm)
	}
	lo, hi := 0.0, maxHandle
	for i := 0; i < searchIterations; i++ {
		center := (lo + hi) / 2
		if dist((lo+center)/2) <= dist((center+hi)/2) {
			hi = center
		} else {
			lo = center
		}
	}
	return (lo + hi) / 2
}

// fits reports whether c matches s on [t0, t1] at the check parameters.
func fits(s Segment, t0, t1 float64, c Cubic, maxError float64) bool {
	span := t1 - t0
	for _, u := range checkParams {
		b := c.PointAt(u)
		guess := t0 + u*span
		lo := max(t0, guess-span/4)
		hi := min(t1, guess+span/4)
		if vmath.Dist2(s.PointAt(nearestParam(s, b, lo, hi)), b) > maxError {
			return false
		}
	}
	return true
}

// nearestParam searches [lo, hi] for the parameter whose point is closest
// to p.
func nearestParam(s Segment, p vmath.Vec2, lo, hi float64) float64 {
	dist := func(t float64) float64 { return vmath.Dist2(s.PointAt(t), p) }
	for i := 0; i < searchIterations; i++ {
		center := (lo + hi) / 2
		if dist((lo+center)/2) < dist((center+hi)/2) {
			hi = center
		} else {
			lo = center
		}
	}
	return (lo + hi) / 2
}

// Connect returns the cubic c1, c2, q joining the end of the chain prev to
// the start q of the chain next. Handles follow the adjacent tangents of
// both chains and are a third of the gap long. Connect returns nil when
// the gap is zero.
func Connect(prev, next []vmath.Vec2) []vmath.Vec2 {
	if len(prev) == 0 || len(next) == 0 {
		return nil
	}
	p := prev[len(prev)-1]
	q := next[0]
	gap := vmath.Dist2(p, q)
	if gap == 0 {
		return nil
	}
	chordDir := vmath.Normalize2(q.Sub(p))

	dirP := chordDir
	if len(prev) > 1 {
		if d := vmath.Normalize2(p.Sub(prev[len(prev)-2])); d.Length() > 0 {
			dirP = d
		}
	}
	dirQ := chordDir
	if len(next) > 1 {
		if d := vmath.Normalize2(next[1].Sub(q)); d.Length() > 0 {
			dirQ = d
		}
	}
	h := gap / 3
	return []vmath.Vec2{p.Add(dirP.MulScalar(h)), q.Sub(dirQ.MulScalar(h)), q}
}

// JoinBezier appends the chain next to chain, inserting a connecting cubic
// when they do not meet.
func JoinBezier(chain, next []vmath.Vec2) []vmath.Vec2 {
	if len(chain) == 0 {
		return append(chain, next...)
	}
	if len(next) == 0 {
		return chain
	}
	chain = append(chain, Connect(chain, next)...)
	return append(chain, next[1:]...)
}

// CloseBezier connects the end of chain back to its start.
func CloseBezier(chain []vmath.Vec2) []vmath.Vec2 {
	if len(chain) < 2 {
		return chain
	}
	return append(chain, Connect(chain, chain[:2])...)
}
