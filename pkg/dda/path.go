package dda

import (
	"math"
	"slices"

	"github.com/chazu/csgtree/pkg/vmath"
)

// Path is an ordered list of segments, each owning an equal share of the
// global parameter range.
type Path struct {
	segments []Segment
}

// NewPath returns a path over segs.
func NewPath(segs ...Segment) Path {
	return Path{segments: slices.Clone(segs)}
}

// Len returns the number of segments.
func (p Path) Len() int { return len(p.segments) }

// Segments returns a copy of the segment list.
func (p Path) Segments() []Segment { return slices.Clone(p.segments) }

// Append returns a path with segs added at the end.
func (p Path) Append(segs ...Segment) Path {
	return Path{segments: append(slices.Clone(p.segments), segs...)}
}

// PointAt locates the segment owning t and evaluates it at the local
// parameter. It panics on an empty path.
func (p Path) PointAt(t float64) vmath.Vec2 {
	n := len(p.segments)
	if n == 0 {
		panic("dda: PointAt on empty path")
	}
	x := t * float64(n)
	i := int(math.Floor(x))
	i = max(0, min(i, n-1))
	return p.segments[i].PointAt(x - float64(i))
}

// Rasterize samples every segment with Rasterize and concatenates the
// results, dropping adjacent duplicates.
func (p Path) Rasterize(initialSegmentCount int, maxError float64) []vmath.Vec2 {
	var out []vmath.Vec2
	for _, s := range p.segments {
		out = rasterizeInto(out, s, initialSegmentCount, maxError)
	}
	return out
}

// RasterizeBezier approximates every segment with a Bezier chain and joins
// consecutive chains with connecting cubics. With closed set, the end of
// the chain is connected back to its start.
func (p Path) RasterizeBezier(initialSegmentCount int, maxError float64, closed bool) []vmath.Vec2 {
	var out []vmath.Vec2
	for _, s := range p.segments {
		out = JoinBezier(out, RasterizeBezier(s, initialSegmentCount, maxError))
	}
	if closed {
		out = CloseBezier(out)
	}
	return out
}
