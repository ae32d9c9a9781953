package rewrite

import (
	"github.com/chazu/csgtree/pkg/shape"
	"github.com/chazu/csgtree/pkg/tree"
	"github.com/chazu/csgtree/pkg/visit"
)

// Output selects what complex shapes are rasterized into.
type Output int

const (
	OutputPolygon Output = iota
	OutputBezier
)

func (o Output) String() string {
	if o == OutputBezier {
		return "bezier"
	}
	return "polygon"
}

func rasterizer(out Output) *visit.Visitor {
	return visit.MustNew(visit.Rule{
		Kinds: []tree.Kind{shape.KindComplex},
		Leave: func(it tree.Item, ctx *visit.Context) tree.Item {
			c, ok := it.(shape.Complex)
			if !ok {
				return it
			}
			r := ctx.Attributes().Rasterizing()
			if out == OutputBezier {
				return c.ToBezier(r)
			}
			return c.ToPolygon(r)
		},
	})
}

var rasterizers = map[Output]*visit.Visitor{
	OutputPolygon: rasterizer(OutputPolygon),
	OutputBezier:  rasterizer(OutputBezier),
}

// Rasterizer returns a pass replacing complex shapes by their rasterized
// form, using the rasterizing attributes resolved at each shape.
func Rasterizer(out Output) Pass {
	v := rasterizers[out]
	return v.Run
}

// RasterizeComplex replaces complex shapes by polygons.
func RasterizeComplex(root tree.Item, attrs tree.Attributes) tree.Item {
	return rasterizers[OutputPolygon].Run(root, attrs)
}
