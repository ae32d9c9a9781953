package shape

import (
	"github.com/chazu/csgtree/pkg/dda"
	"github.com/chazu/csgtree/pkg/tree"
	"github.com/chazu/csgtree/pkg/vmath"
)

const ringEpsilon = 1e-9

// closeRing drops a trailing point that repeats the first one.
func closeRing(pts []vmath.Vec2) []vmath.Vec2 {
	if len(pts) > 1 && vmath.Dist2(pts[0], pts[len(pts)-1]) < ringEpsilon {
		return pts[:len(pts)-1]
	}
	return pts
}

// ToPolygon converts any two dimensional leaf to a Polygon. Curves are
// rasterized with r.MinSize as the error bound. The second result is false
// when it is not a shape this package knows how to rasterize.
func ToPolygon(it tree.Item, r tree.Rasterizing) (*Polygon, bool) {
	switch s := it.(type) {
	case *Polygon:
		return s, true
	case *Circle:
		n := r.Fragments(s.radius)
		pts := closeRing(dda.Rasterize(dda.Circle(s.radius), n, r.MinSize))
		return newPolygon(pts, nil, s.ItemBase), true
	case *Square:
		hx, hy := s.x/2, s.y/2
		pts := []vmath.Vec2{vmath.V2(-hx, -hy), vmath.V2(hx, -hy), vmath.V2(hx, hy), vmath.V2(-hx, hy)}
		return newPolygon(pts, nil, s.ItemBase), true
	case *Bezier:
		pts := closeRing(s.Path().Rasterize(1, r.MinSize))
		return newPolygon(pts, nil, s.ItemBase), true
	case Complex:
		return s.ToPolygon(r), true
	}
	return nil, false
}
