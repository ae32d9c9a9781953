// Package shape holds the two dimensional leaves of a CSG tree.
//
// Circle, Square, Polygon and Bezier are concrete geometry. Complex shapes
// such as Polar or gear profiles are defined by an algorithm and must be
// rasterized with ToPolygon or ToBezier before consumers that need points.
package shape

import (
	"fmt"
	"slices"

	"github.com/chazu/csgtree/pkg/dda"
	"github.com/chazu/csgtree/pkg/object"
	"github.com/chazu/csgtree/pkg/tree"
	"github.com/chazu/csgtree/pkg/vmath"
)

// Families.
const (
	KindShape   tree.Kind = "shape.Shape"
	KindComplex tree.Kind = "shape.Complex"
)

// Concrete kinds.
const (
	KindCircle  tree.Kind = "shape.Circle"
	KindSquare  tree.Kind = "shape.Square"
	KindPolygon tree.Kind = "shape.Polygon"
	KindBezier  tree.Kind = "shape.Bezier"
	KindPolar   tree.Kind = "shape.Polar"
)

// Complex is a shape produced by an algorithm.
type Complex interface {
	tree.Item
	ToPolygon(r tree.Rasterizing) *Polygon
	ToBezier(r tree.Rasterizing) *Bezier
}

var (
	circleLineage  = tree.Lineage(KindCircle, false, KindShape)
	squareLineage  = tree.Lineage(KindSquare, false, KindShape)
	polygonLineage = tree.Lineage(KindPolygon, false, KindShape)
	bezierLineage  = tree.Lineage(KindBezier, false, KindShape)
	polarLineage   = tree.Lineage(KindPolar, false, KindComplex, KindShape)
)

func init() {
	tree.RegisterKind(KindShape, KindComplex)
	tree.Register(KindCircle, 1, func(f object.Fields) tree.Item {
		return newCircle(f.Float("radius"), tree.ItemBaseFrom(f))
	}, KindShape)
	tree.Register(KindSquare, 1, func(f object.Fields) tree.Item {
		return newSquare(f.Float("x"), f.Float("y"), tree.ItemBaseFrom(f))
	}, KindShape)
	tree.Register(KindPolygon, 1, func(f object.Fields) tree.Item {
		return newPolygon(f.Vec2s("points"), f.IntLists("paths"), tree.ItemBaseFrom(f))
	}, KindShape)
	tree.Register(KindBezier, 1, func(f object.Fields) tree.Item {
		return newBezier(f.Vec2s("points"), tree.ItemBaseFrom(f))
	}, KindShape)
	tree.Register(KindPolar, 1, func(f object.Fields) tree.Item {
		return newPolar(f.Vec2s("anchors"), tree.ItemBaseFrom(f))
	}, KindComplex, KindShape)
}

// Circle is a circle around the origin.
type Circle struct {
	object.Base
	tree.ItemBase
	radius float64
}

// NewCircle returns a circle of the given radius.
func NewCircle(radius float64, opts ...tree.Option) *Circle {
	return newCircle(radius, tree.MakeItemBase(opts...))
}

func newCircle(radius float64, ib tree.ItemBase) *Circle {
	if radius <= 0 {
		panic(fmt.Sprintf("shape: circle radius must be positive, got %g", radius))
	}
	return &Circle{ItemBase: ib, radius: radius}
}

func (c *Circle) Radius() float64 { return c.radius }

func (c *Circle) TypeName() string     { return string(KindCircle) }
func (c *Circle) Kind() tree.Kind      { return KindCircle }
func (c *Circle) Lineage() []tree.Kind { return circleLineage }
func (c *Circle) Dim() tree.Dim        { return tree.Dim2 }
func (c *Circle) Fields() object.Fields {
	return c.ItemFields(object.F("radius", c.radius))
}

// Square is an axis aligned rectangle centered on the origin.
type Square struct {
	object.Base
	tree.ItemBase
	x, y float64
}

// NewSquare returns an x by y rectangle.
func NewSquare(x, y float64, opts ...tree.Option) *Square {
	return newSquare(x, y, tree.MakeItemBase(opts...))
}

func newSquare(x, y float64, ib tree.ItemBase) *Square {
	if x <= 0 || y <= 0 {
		panic(fmt.Sprintf("shape: square size must be positive, got %g x %g", x, y))
	}
	return &Square{ItemBase: ib, x: x, y: y}
}

// Size returns the edge lengths.
func (s *Square) Size() vmath.Vec2 { return vmath.V2(s.x, s.y) }

func (s *Square) TypeName() string     { return string(KindSquare) }
func (s *Square) Kind() tree.Kind      { return KindSquare }
func (s *Square) Lineage() []tree.Kind { return squareLineage }
func (s *Square) Dim() tree.Dim        { return tree.Dim2 }
func (s *Square) Fields() object.Fields {
	return s.ItemFields(object.F("x", s.x), object.F("y", s.y))
}

// Polygon is a list of points and optional paths of point indices. Without
// paths the points form a single closed outline; further paths cut holes.
type Polygon struct {
	object.Base
	tree.ItemBase
	points []vmath.Vec2
	paths  [][]int
}

// NewPolygon returns a polygon over points.
func NewPolygon(points []vmath.Vec2, paths [][]int, opts ...tree.Option) *Polygon {
	return newPolygon(points, paths, tree.MakeItemBase(opts...))
}

func newPolygon(points []vmath.Vec2, paths [][]int, ib tree.ItemBase) *Polygon {
	if len(points) < 3 {
		panic(fmt.Sprintf("shape: polygon needs at least 3 points, got %d", len(points)))
	}
	for i, path := range paths {
		if len(path) < 3 {
			panic(fmt.Sprintf("shape: polygon path %d has %d points", i, len(path)))
		}
		for _, idx := range path {
			if idx < 0 || idx >= len(points) {
				panic(fmt.Sprintf("shape: polygon path %d references point %d of %d", i, idx, len(points)))
			}
		}
	}
	cp := make([][]int, len(paths))
	for i, p := range paths {
		cp[i] = slices.Clone(p)
	}
	return &Polygon{ItemBase: ib, points: slices.Clone(points), paths: cp}
}

// Points returns a copy of the points.
func (p *Polygon) Points() []vmath.Vec2 { return slices.Clone(p.points) }

// Paths returns the outlines as point lists. A polygon without explicit
// paths has one outline over all points.
func (p *Polygon) Paths() [][]vmath.Vec2 {
	if len(p.paths) == 0 {
		return [][]vmath.Vec2{slices.Clone(p.points)}
	}
	out := make([][]vmath.Vec2, len(p.paths))
	for i, path := range p.paths {
		out[i] = make([]vmath.Vec2, len(path))
		for j, idx := range path {
			out[i][j] = p.points[idx]
		}
	}
	return out
}

func (p *Polygon) TypeName() string     { return string(KindPolygon) }
func (p *Polygon) Kind() tree.Kind      { return KindPolygon }
func (p *Polygon) Lineage() []tree.Kind { return polygonLineage }
func (p *Polygon) Dim() tree.Dim        { return tree.Dim2 }
func (p *Polygon) Fields() object.Fields {
	return p.ItemFields(object.F("points", p.points), object.F("paths", p.paths))
}

// Bezier is a closed outline of cubic Bezier segments stored as the flat
// chain p0, c1, c2, p1, c1, c2, p2, ...
type Bezier struct {
	object.Base
	tree.ItemBase
	points []vmath.Vec2
}

// NewBezier returns a Bezier outline over the flat chain points.
func NewBezier(points []vmath.Vec2, opts ...tree.Option) *Bezier {
	return newBezier(points, tree.MakeItemBase(opts...))
}

func newBezier(points []vmath.Vec2, ib tree.ItemBase) *Bezier {
	if len(points) < 4 || (len(points)-1)%3 != 0 {
		panic(fmt.Sprintf("shape: bezier chain needs 3k+1 points (k >= 1), got %d", len(points)))
	}
	return &Bezier{ItemBase: ib, points: slices.Clone(points)}
}

// Points returns a copy of the flat chain.
func (b *Bezier) Points() []vmath.Vec2 { return slices.Clone(b.points) }

// Path returns the chain as differential drawing segments.
func (b *Bezier) Path() dda.Path {
	cubics := dda.Cubics(b.points)
	segs := make([]dda.Segment, len(cubics))
	for i, c := range cubics {
		segs[i] = c
	}
	return dda.NewPath(segs...)
}

func (b *Bezier) TypeName() string     { return string(KindBezier) }
func (b *Bezier) Kind() tree.Kind      { return KindBezier }
func (b *Bezier) Lineage() []tree.Kind { return bezierLineage }
func (b *Bezier) Dim() tree.Dim        { return tree.Dim2 }
func (b *Bezier) Fields() object.Fields {
	return b.ItemFields(object.F("points", b.points))
}
