package rewrite

import (
	"github.com/chazu/csgtree/pkg/logging"
	"github.com/chazu/csgtree/pkg/tree"
)

// Pipeline chains passes. It stops early when a pass leaves nothing.
func Pipeline(passes ...Pass) Pass {
	return func(root tree.Item, attrs tree.Attributes) tree.Item {
		for _, p := range passes {
			if root == nil {
				return nil
			}
			root = p(root, attrs)
		}
		return root
	}
}

// Normalize runs the full pipeline and rasterizes complex shapes into out.
// A tree without geometry normalizes to Empty.
func Normalize(root tree.Item, attrs tree.Attributes, out Output) tree.Item {
	norm := Pipeline(
		RemoveEmpty,
		GroupsToUnions,
		FlattenUnions,
		PushTransformsInside,
		PushExtrusionsInside,
		Rasterizer(out),
		FlattenUnions,
	)(root, attrs)
	if norm == nil {
		logging.Logger().Debug("normalized tree is empty", "root", root.Kind())
		return tree.NewEmpty(tree.Named(root.Name()))
	}
	return norm
}
