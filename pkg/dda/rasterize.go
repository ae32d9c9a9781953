package dda

import (
	"fmt"

	"github.com/chazu/csgtree/pkg/vmath"
)

// maxDepth bounds bisection so pathological curves terminate.
const maxDepth = 32

// Rasterize approximates s by a polyline. The parameter range starts as
// initialSegmentCount equal intervals; an interval is bisected while its
// chord midpoint is farther than maxError/2 from the curve midpoint.
// Adjacent duplicate points are dropped. maxError must be positive.
func Rasterize(s Segment, initialSegmentCount int, maxError float64) []vmath.Vec2 {
	return rasterizeInto(nil, s, initialSegmentCount, maxError)
}

func rasterizeInto(out []vmath.Vec2, s Segment, n int, maxError float64) []vmath.Vec2 {
	checkTolerance(maxError)
	n = max(n, 1)
	tol := maxError / 2
	t0 := 0.0
	p0 := s.PointAt(0)
	out = appendPoint(out, p0)
	for i := 1; i <= n; i++ {
		t1 := float64(i) / float64(n)
		p1 := s.PointAt(t1)
		out = bisect(out, s, t0, p0, t1, p1, tol, 0)
		t0, p0 = t1, p1
	}
	return out
}

func bisect(out []vmath.Vec2, s Segment, t0 float64, p0 vmath.Vec2, t1 float64, p1 vmath.Vec2, tol float64, depth int) []vmath.Vec2 {
	tm := (t0 + t1) / 2
	pm := s.PointAt(tm)
	if depth < maxDepth && vmath.Dist2(vmath.Mid2(p0, p1), pm) > tol {
		out = bisect(out, s, t0, p0, tm, pm, tol, depth+1)
		return bisect(out, s, tm, pm, t1, p1, tol, depth+1)
	}
	return appendPoint(out, p1)
}

// checkTolerance panics unless maxError is a positive number. A zero or
// NaN tolerance would split every interval down to the depth limit.
func checkTolerance(maxError float64) {
	if !(maxError > 0) {
		panic(fmt.Sprintf("dda: maxError must be positive, got %g", maxError))
	}
}

func appendPoint(out []vmath.Vec2, p vmath.Vec2) []vmath.Vec2 {
	if n := len(out); n > 0 && out[n-1] == p {
		return out
	}
	return append(out, p)
}
