package rewrite

import (
	"github.com/samber/lo"

	"github.com/chazu/csgtree/pkg/boolean"
	"github.com/chazu/csgtree/pkg/solid"
	"github.com/chazu/csgtree/pkg/transform"
	"github.com/chazu/csgtree/pkg/tree"
	"github.com/chazu/csgtree/pkg/visit"
)

var pushTransforms = visit.MustNew(visit.Rule{
	Kinds: []tree.Kind{transform.KindTransform},
	Leave: func(it tree.Item, _ *visit.Context) tree.Item {
		return pushTransform(it.(transform.Transform))
	},
})

// PushTransformsInside moves transforms below groups and booleans and
// merges directly nested transforms of the same kind. Transforms carrying
// attributes stay where they are.
func PushTransformsInside(root tree.Item, attrs tree.Attributes) tree.Item {
	return pushTransforms.Run(root, attrs)
}

func pushTransform(t transform.Transform) tree.Item {
	if t.Attributes().Len() > 0 {
		return t
	}
	child := t.Children()[0]
	if inner, ok := child.(transform.Transform); ok {
		if merged, ok := transform.Merge(t, inner); ok {
			return pushTransform(merged)
		}
		return t
	}
	if child.Kind() != tree.KindGroup && !plainBoolean(child) || child.Dim() == tree.DimNone {
		return t
	}
	n := child.(tree.Node)
	distributed := lo.Map(n.Children(), func(c tree.Item, _ int) tree.Item {
		return pushTransform(transform.Rewrap(t, c))
	})
	return tree.WithChildren(n, distributed)
}

var pushExtrusions = visit.MustNew(visit.Rule{
	Kinds: []tree.Kind{solid.KindLinearExtrude, solid.KindRotateExtrude},
	Leave: func(it tree.Item, _ *visit.Context) tree.Item {
		return pushExtrusion(it)
	},
})

// PushExtrusionsInside replaces the extrusion of a 2D union by the union of
// the extruded children. Extrusions carrying attributes, and gear wheels,
// are left alone.
func PushExtrusionsInside(root tree.Item, attrs tree.Attributes) tree.Item {
	return pushExtrusions.Run(root, attrs)
}

func pushExtrusion(it tree.Item) tree.Item {
	switch it.Kind() {
	case solid.KindLinearExtrude, solid.KindRotateExtrude:
	default:
		return it
	}
	ext := it.(solid.Extrusion)
	if ext.Attributes().Len() > 0 || ext.Profile().Kind() != boolean.KindUnion {
		return it
	}
	u := ext.Profile().(*boolean.Union)
	extruded := lo.Map(u.Children(), func(c tree.Item, _ int) tree.Item {
		return pushExtrusion(tree.WithChildren(ext, []tree.Item{c}))
	})
	return tree.WithChildren(u, extruded)
}
