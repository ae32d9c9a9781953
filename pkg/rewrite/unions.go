package rewrite

import (
	"github.com/samber/lo"

	"github.com/chazu/csgtree/pkg/boolean"
	"github.com/chazu/csgtree/pkg/tree"
	"github.com/chazu/csgtree/pkg/visit"
)

var groupsToUnions = visit.MustNew(visit.Rule{
	Kinds: []tree.Kind{tree.KindGroup},
	Leave: func(it tree.Item, _ *visit.Context) tree.Item {
		g := it.(*tree.Group)
		children := g.Children()
		switch len(children) {
		case 0:
			return tree.NewEmpty(tree.Named(g.Name()), tree.WithAttributes(g.Attributes()))
		case 1:
			return inherit(g, children[0])
		}
		if _, ok := tree.CommonDim(children); !ok {
			return g
		}
		return boolean.NewUnion(children, tree.Named(g.Name()), tree.WithAttributes(g.Attributes()))
	},
})

// GroupsToUnions replaces every group by the union of its children. A group
// with a single child is replaced by the child; groups mixing 2D and 3D
// children stay groups.
func GroupsToUnions(root tree.Item, attrs tree.Attributes) tree.Item {
	return groupsToUnions.Run(root, attrs)
}

var flattenUnions = visit.MustNew(visit.Rule{
	Kinds: []tree.Kind{boolean.KindUnion},
	Leave: func(it tree.Item, _ *visit.Context) tree.Item {
		if it.Kind() != boolean.KindUnion {
			return it
		}
		u := it.(*boolean.Union)
		children := u.Children()
		if !lo.SomeBy(children, flattenable) {
			return u
		}
		flat := lo.FlatMap(children, func(c tree.Item, _ int) []tree.Item {
			if flattenable(c) {
				return tree.ChildrenOf(c)
			}
			return []tree.Item{c}
		})
		return tree.WithChildren(u, flat)
	},
})

// flattenable reports whether c is a plain union whose children can move
// into the parent union without changing attribute resolution.
func flattenable(c tree.Item) bool {
	return c.Kind() == boolean.KindUnion && c.Attributes().Len() == 0
}

// FlattenUnions merges unions nested directly in unions. Nested unions that
// carry attributes are kept.
func FlattenUnions(root tree.Item, attrs tree.Attributes) tree.Item {
	return flattenUnions.Run(root, attrs)
}
