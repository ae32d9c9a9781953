// Package rewrite holds the tree passes that normalize a CSG tree before it
// is lowered to a kernel: empties are dropped, groups become unions,
// transforms and extrusions move towards the leaves and complex shapes are
// rasterized.
package rewrite

import (
	"github.com/samber/lo"

	"github.com/chazu/csgtree/pkg/boolean"
	"github.com/chazu/csgtree/pkg/object"
	"github.com/chazu/csgtree/pkg/tree"
)

// Pass rewrites a tree whose root inherits attrs. A pass may return nil
// when nothing is left of the tree.
type Pass func(root tree.Item, attrs tree.Attributes) tree.Item

// inherit moves the attributes of a node that is being dissolved onto the
// child taking its place.
func inherit(parent, child tree.Item) tree.Item {
	if parent.Attributes().Len() == 0 {
		return child
	}
	attrs := parent.Attributes().Override(child.Attributes())
	return object.Copy(child, object.F("attributes", attrs)).(tree.Item)
}

// plainBoolean reports whether it is one of the boolean node types itself
// rather than a solid assembled from one.
func plainBoolean(it tree.Item) bool {
	switch it.Kind() {
	case boolean.KindUnion, boolean.KindDifference, boolean.KindIntersection:
		return true
	}
	return false
}

func sameItems(a, b []tree.Item) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func attributesFree(items []tree.Item) bool {
	return lo.EveryBy(items, func(it tree.Item) bool { return it.Attributes().Len() == 0 })
}
