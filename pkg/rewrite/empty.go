package rewrite

import (
	"github.com/samber/lo"

	"github.com/chazu/csgtree/pkg/boolean"
	"github.com/chazu/csgtree/pkg/tree"
	"github.com/chazu/csgtree/pkg/visit"
)

var removeEmpty *visit.Visitor

func init() {
	removeEmpty = visit.MustNew(
		visit.Rule{
			Kinds: []tree.Kind{tree.KindEmpty},
			Leave: func(tree.Item, *visit.Context) tree.Item { return nil },
		},
		visit.Rule{
			Kinds: []tree.Kind{tree.KindNode},
			Enter: func(tree.Item, *visit.Context) bool { return false },
			Leave: func(it tree.Item, ctx *visit.Context) tree.Item {
				n := it.(tree.Node)
				old := n.Children()
				kept := lo.Map(old, func(c tree.Item, _ int) tree.Item {
					return removeEmpty.Visit(c, ctx)
				})
				return collapse(n, old, kept)
			},
		},
	)
}

// RemoveEmpty drops Empty items. Nodes that lose children are rebuilt so
// they stay valid: a difference without its base, an intersection missing
// an operand and a node left without children disappear, a difference
// without its cut and a union with one child are replaced by the remaining
// child.
func RemoveEmpty(root tree.Item, attrs tree.Attributes) tree.Item {
	return removeEmpty.Run(root, attrs)
}

// collapse rebuilds n from the visited children; kept holds nil where a
// child was removed.
func collapse(n tree.Node, old, kept []tree.Item) tree.Item {
	if sameItems(old, kept) {
		return n
	}
	children := lo.Compact(kept)
	if len(children) == 0 {
		return nil
	}
	if op, ok := n.(boolean.Operation); ok {
		switch op.Op() {
		case boolean.OpIntersection:
			if len(children) < len(old) {
				return nil
			}
		case boolean.OpDifference:
			if kept[0] == nil {
				return nil
			}
			if len(children) == 1 {
				return inherit(n, children[0])
			}
		case boolean.OpUnion:
			if len(children) == 1 {
				return inherit(n, children[0])
			}
		}
	}
	return tree.WithChildren(n, children)
}
