package graph

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/samber/lo"

	"github.com/chazu/csgtree/pkg/object"
	"github.com/chazu/csgtree/pkg/tree"
)

// DesignGraph is the content-addressed index of a CSG tree. It is built
// once from a tree and never mutated afterwards.
type DesignGraph struct {
	Nodes map[NodeID]*Node
	Root  NodeID
	// NameIndex maps display names to the nodes carrying them. Equal
	// subtrees with different names share a node, so a node may be listed
	// under several names.
	NameIndex map[string][]NodeID
	// PartIndex maps part names to the distinct part nodes using them.
	PartIndex map[string][]NodeID
}

// New creates an empty DesignGraph.
func New() *DesignGraph {
	return &DesignGraph{
		Nodes:     make(map[NodeID]*Node),
		NameIndex: make(map[string][]NodeID),
		PartIndex: make(map[string][]NodeID),
	}
}

// Build indexes the tree rooted at root.
func Build(root tree.Item) *DesignGraph {
	g := New()
	g.Root = g.add(root)
	return g
}

func (g *DesignGraph) add(it tree.Item) NodeID {
	id := NodeID(object.Hash(it))
	g.indexName(it.Name(), id)
	if n, ok := g.Nodes[id]; ok {
		n.Uses++
		return id
	}
	n := &Node{ID: id, Kind: it.Kind(), Name: it.Name(), Dim: it.Dim(), Uses: 1, Item: it}
	if p, ok := it.(*tree.Part); ok {
		n.Part = p.PartName()
		g.PartIndex[n.Part] = append(g.PartIndex[n.Part], id)
	}
	g.AddNode(n)
	n.Children = lo.Map(tree.ChildrenOf(it), func(c tree.Item, _ int) NodeID { return g.add(c) })
	return id
}

func (g *DesignGraph) indexName(name string, id NodeID) {
	if name == "" || slices.Contains(g.NameIndex[name], id) {
		return
	}
	g.NameIndex[name] = append(g.NameIndex[name], id)
}

// AddNode adds a node to the graph. It does not check for duplicates.
func (g *DesignGraph) AddNode(n *Node) {
	g.Nodes[n.ID] = n
	g.indexName(n.Name, n.ID)
}

// Lookup returns the first node with the given display name, or nil.
func (g *DesignGraph) Lookup(name string) *Node {
	ids := g.NameIndex[name]
	if len(ids) == 0 {
		return nil
	}
	return g.Nodes[ids[0]]
}

// MustLookup returns the node with the given name, or panics.
func (g *DesignGraph) MustLookup(name string) *Node {
	n := g.Lookup(name)
	if n == nil {
		panic(fmt.Sprintf("graph: no node named %q", name))
	}
	return n
}

// Get returns the node with the given ID, or nil.
func (g *DesignGraph) Get(id NodeID) *Node {
	return g.Nodes[id]
}

// RootNode returns the root node, or nil for an empty graph.
func (g *DesignGraph) RootNode() *Node {
	return g.Nodes[g.Root]
}

// Parts returns the part nodes ordered by part name.
func (g *DesignGraph) Parts() []*Node {
	parts := lo.Filter(lo.Values(g.Nodes), func(n *Node, _ int) bool { return n.IsPart() })
	slices.SortFunc(parts, func(a, b *Node) int {
		return cmp.Or(cmp.Compare(a.Part, b.Part), cmp.Compare(a.ID, b.ID))
	})
	return parts
}

// Children returns the child nodes of the given node.
func (g *DesignGraph) Children(n *Node) []*Node {
	children := make([]*Node, 0, len(n.Children))
	for _, cid := range n.Children {
		if c := g.Nodes[cid]; c != nil {
			children = append(children, c)
		}
	}
	return children
}

// NodeCount returns the number of distinct subtrees.
func (g *DesignGraph) NodeCount() int {
	return len(g.Nodes)
}

// Stats summarizes a graph.
type Stats struct {
	Nodes int
	// Items counts tree items including repeated subtrees.
	Items  int
	Parts  int
	ByKind map[tree.Kind]int
}

// Stats counts the nodes of g by kind.
func (g *DesignGraph) Stats() Stats {
	nodes := lo.Values(g.Nodes)
	return Stats{
		Nodes:  len(nodes),
		Items:  g.countItems(g.Root, make(map[NodeID]int)),
		Parts:  len(g.PartIndex),
		ByKind: lo.CountValuesBy(nodes, func(n *Node) tree.Kind { return n.Kind }),
	}
}

// countItems expands shared subtrees; memo holds the expanded size per node.
func (g *DesignGraph) countItems(id NodeID, memo map[NodeID]int) int {
	if v, ok := memo[id]; ok {
		return v
	}
	n := g.Nodes[id]
	if n == nil {
		return 0
	}
	total := 1
	for _, c := range n.Children {
		total += g.countItems(c, memo)
	}
	memo[id] = total
	return total
}
