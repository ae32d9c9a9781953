package shape

import (
	"fmt"
	"slices"

	"github.com/chazu/csgtree/pkg/cache"
	"github.com/chazu/csgtree/pkg/dda"
	"github.com/chazu/csgtree/pkg/logging"
	"github.com/chazu/csgtree/pkg/object"
	"github.com/chazu/csgtree/pkg/tree"
	"github.com/chazu/csgtree/pkg/vmath"
)

// Polar is a closed outline through anchors given as (angle in degrees,
// radius). Between anchors both angle and radius change linearly, which
// yields spiral arcs rather than straight edges.
type Polar struct {
	object.Base
	tree.ItemBase
	anchors []vmath.Vec2
}

// NewPolar returns a polar outline. Anchor X is the angle, Y the radius.
func NewPolar(anchors []vmath.Vec2, opts ...tree.Option) *Polar {
	return newPolar(anchors, tree.MakeItemBase(opts...))
}

func newPolar(anchors []vmath.Vec2, ib tree.ItemBase) *Polar {
	if len(anchors) < 2 {
		panic(fmt.Sprintf("shape: polar outline needs at least 2 anchors, got %d", len(anchors)))
	}
	for i, a := range anchors {
		if a.Y < 0 {
			panic(fmt.Sprintf("shape: polar anchor %d has negative radius %g", i, a.Y))
		}
	}
	return &Polar{ItemBase: ib, anchors: slices.Clone(anchors)}
}

// Anchors returns a copy of the anchors.
func (p *Polar) Anchors() []vmath.Vec2 { return slices.Clone(p.anchors) }

// Path returns one element per anchor pair, closing back to the first
// anchor one turn later.
func (p *Polar) Path() dda.Path {
	segs := make([]dda.Segment, 0, len(p.anchors))
	for i, a := range p.anchors {
		b := p.anchors[(i+1)%len(p.anchors)]
		if i == len(p.anchors)-1 && b.X <= a.X {
			b.X += 360
		}
		segs = append(segs, dda.Func(func(t float64) vmath.Vec2 {
			angle := a.X + t*(b.X-a.X)
			r := a.Y + t*(b.Y-a.Y)
			return vmath.Polar2(r, vmath.Radians(angle))
		}))
	}
	return dda.NewPath(segs...)
}

// ToPolygon rasterizes the outline with min size as the error bound.
// Results are cached by outline and tolerance.
func (p *Polar) ToPolygon(r tree.Rasterizing) *Polygon {
	if v, ok := p.cached(r, false).(*Polygon); ok {
		return v
	}
	out := newPolygon(closeRing(p.Path().Rasterize(2, r.MinSize)), nil, p.ItemBase)
	p.store(out, r, false)
	return out
}

// ToBezier approximates the outline with a closed Bezier chain.
func (p *Polar) ToBezier(r tree.Rasterizing) *Bezier {
	if v, ok := p.cached(r, true).(*Bezier); ok {
		return v
	}
	out := newBezier(p.Path().RasterizeBezier(2, r.MinSize, true), p.ItemBase)
	p.store(out, r, true)
	return out
}

const rasterizedSuffix = "item"

func (p *Polar) cacheKey(r tree.Rasterizing, asBezier bool) uint64 {
	return object.HashValues("rasterized-polar", p, r.MinSize, asBezier)
}

// cached loads a rasterized outline under this outline's name, which
// takes no part in the key.
func (p *Polar) cached(r tree.Rasterizing, asBezier bool) tree.Item {
	v, ok := cache.Load(p.cacheKey(r, asBezier), rasterizedSuffix)
	if !ok {
		return nil
	}
	it, ok := v.(tree.Item)
	if !ok {
		return nil
	}
	if it.Name() != p.Name() {
		it = object.Copy(it, object.F("name", p.Name())).(tree.Item)
	}
	return it
}

func (p *Polar) store(it tree.Item, r tree.Rasterizing, asBezier bool) {
	logging.Logger().Debug("rasterized polar outline",
		"anchors", len(p.anchors), "min_size", r.MinSize, "bezier", asBezier)
	cache.Put(it, p.cacheKey(r, asBezier), rasterizedSuffix)
}

func (p *Polar) TypeName() string     { return string(KindPolar) }
func (p *Polar) Kind() tree.Kind      { return KindPolar }
func (p *Polar) Lineage() []tree.Kind { return polarLineage }
func (p *Polar) Dim() tree.Dim        { return tree.Dim2 }
func (p *Polar) Fields() object.Fields {
	return p.ItemFields(object.F("anchors", p.anchors))
}
