package tree

import (
	"fmt"

	"github.com/chazu/csgtree/pkg/object"
)

var (
	emptyLineage = Lineage(KindEmpty, false)
	groupLineage = Lineage(KindGroup, true)
	partLineage  = Lineage(KindPart, true)
)

func init() {
	Register(KindEmpty, 1, func(f object.Fields) Item {
		return &Empty{ItemBase: ItemBaseFrom(f)}
	})
	Register(KindGroup, 1, func(f object.Fields) Item {
		return newGroup(NodeBaseFrom(f))
	})
	Register(KindPart, 1, func(f object.Fields) Item {
		return newPart(f.Text("part"), NodeBaseFrom(f))
	})
}

// Empty is a placeholder without geometry.
type Empty struct {
	object.Base
	ItemBase
}

// NewEmpty returns an Empty item.
func NewEmpty(opts ...Option) *Empty {
	return &Empty{ItemBase: MakeItemBase(opts...)}
}

func (e *Empty) TypeName() string      { return string(KindEmpty) }
func (e *Empty) Kind() Kind            { return KindEmpty }
func (e *Empty) Lineage() []Kind       { return emptyLineage }
func (e *Empty) Dim() Dim              { return DimNone }
func (e *Empty) Fields() object.Fields { return e.ItemFields() }

// Group collects items without combining them. Its dimension is the common
// dimension of its children, or DimNone when they disagree.
type Group struct {
	object.Base
	NodeBase
	dim Dim
}

// NewGroup groups children.
func NewGroup(children []Item, opts ...Option) *Group {
	return newGroup(MakeNodeBase(children, opts...))
}

func newGroup(nb NodeBase) *Group {
	dim, _ := CommonDim(nb.children)
	return &Group{NodeBase: nb, dim: dim}
}

func (g *Group) TypeName() string      { return string(KindGroup) }
func (g *Group) Kind() Kind            { return KindGroup }
func (g *Group) Lineage() []Kind       { return groupLineage }
func (g *Group) Dim() Dim              { return g.dim }
func (g *Group) Fields() object.Fields { return g.NodeFields() }

// Part marks a manufactured solid. Parts sharing a part name are expected
// to wrap equal children; graph.Validate and rewrite.CollectParts check it.
type Part struct {
	object.Base
	NodeBase
	part string
}

// NewPart wraps a single 3D child under the given part name.
func NewPart(part string, child Item, opts ...Option) *Part {
	return newPart(part, MakeNodeBase([]Item{child}, opts...))
}

func newPart(part string, nb NodeBase) *Part {
	if part == "" {
		panic("tree: part needs a name")
	}
	if len(nb.children) != 1 {
		panic(fmt.Sprintf("tree: part %q needs exactly one child, got %d", part, len(nb.children)))
	}
	if d := nb.children[0].Dim(); d != Dim3 {
		panic(fmt.Sprintf("tree: part %q needs a 3D child, got %s", part, d))
	}
	return &Part{NodeBase: nb, part: part}
}

// PartName returns the manufacturing name.
func (p *Part) PartName() string { return p.part }

func (p *Part) TypeName() string { return string(KindPart) }
func (p *Part) Kind() Kind       { return KindPart }
func (p *Part) Lineage() []Kind  { return partLineage }
func (p *Part) Dim() Dim         { return Dim3 }
func (p *Part) Fields() object.Fields {
	return p.NodeFields(object.F("part", p.part))
}
