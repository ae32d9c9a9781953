package graph

import "github.com/chazu/csgtree/pkg/tree"

// Node is one distinct subtree of the design.
type Node struct {
	ID       NodeID
	Kind     tree.Kind
	Name     string
	Dim      tree.Dim
	Children []NodeID
	// Part is the part name of part nodes.
	Part string
	// Uses counts the places the subtree occurs in the tree.
	Uses int
	Item tree.Item
}

// IsPart reports whether n is a part node.
func (n *Node) IsPart() bool { return n.Kind == tree.KindPart }

// Is reports whether k appears in the lineage of the node's item.
func (n *Node) Is(k tree.Kind) bool { return tree.Is(n.Item, k) }
