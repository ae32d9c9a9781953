package tree

import (
	"fmt"
	"slices"

	"github.com/chazu/csgtree/pkg/object"
)

// Item is any element of a CSG tree.
type Item interface {
	object.Object
	// Kind returns the concrete kind, equal to the type name.
	Kind() Kind
	// Lineage lists the concrete kind followed by the families the item
	// belongs to, most specific first. It always ends with KindItem.
	Lineage() []Kind
	// Name returns the display name. It takes no part in equality.
	Name() string
	Attributes() Attributes
	Dim() Dim
}

// Node is an Item with ordered children.
type Node interface {
	Item
	Children() []Item
}

// Option configures the shared item state of a constructor.
type Option func(*ItemBase)

// Named sets the display name.
func Named(name string) Option {
	return func(b *ItemBase) { b.name = name }
}

// WithAttributes merges attrs into the item's own attribute bag.
func WithAttributes(attrs Attributes) Option {
	return func(b *ItemBase) { b.attrs = b.attrs.Override(attrs) }
}

// ItemBase holds the display name and attribute bag every item carries.
type ItemBase struct {
	name  string
	attrs Attributes
}

// MakeItemBase applies opts to an empty ItemBase.
func MakeItemBase(opts ...Option) ItemBase {
	var b ItemBase
	for _, o := range opts {
		o(&b)
	}
	return b
}

// ItemBaseFrom reads the name and attributes fields.
func ItemBaseFrom(f object.Fields) ItemBase {
	return ItemBase{name: f.Text("name"), attrs: NewAttributes(f.Map("attributes"))}
}

func (b *ItemBase) Name() string           { return b.name }
func (b *ItemBase) Attributes() Attributes { return b.attrs }

// ItemFields returns the name and attributes fields followed by extra.
func (b *ItemBase) ItemFields(extra ...object.Field) object.Fields {
	f := make(object.Fields, 0, len(extra)+2)
	f = append(f, object.F("name", b.name), object.F("attributes", b.attrs))
	return append(f, extra...)
}

// NodeBase is the shared state of nodes.
type NodeBase struct {
	ItemBase
	children []Item
}

// MakeNodeBase builds node state from children. It panics on nil children.
func MakeNodeBase(children []Item, opts ...Option) NodeBase {
	for i, c := range children {
		if c == nil {
			panic(fmt.Sprintf("tree: child %d is nil", i))
		}
	}
	return NodeBase{ItemBase: MakeItemBase(opts...), children: slices.Clone(children)}
}

// NodeBaseFrom reads the name, attributes and children fields.
func NodeBaseFrom(f object.Fields) NodeBase {
	return NodeBase{ItemBase: ItemBaseFrom(f), children: ItemsFrom(f.Objects("children"))}
}

// Children returns a copy of the child list.
func (b *NodeBase) Children() []Item { return slices.Clone(b.children) }

// Child returns child i.
func (b *NodeBase) Child(i int) Item { return b.children[i] }

// NumChildren returns the number of children.
func (b *NodeBase) NumChildren() int { return len(b.children) }

// NodeFields returns name, attributes, extra and then children.
func (b *NodeBase) NodeFields(extra ...object.Field) object.Fields {
	f := b.ItemFields(extra...)
	return append(f, object.F("children", Objects(b.children)))
}

// Objects converts items to a field value.
func Objects(items []Item) []object.Object {
	objs := make([]object.Object, len(items))
	for i, it := range items {
		objs[i] = it
	}
	return objs
}

// ItemsFrom converts a field value back to items. It panics when an
// element is not an Item.
func ItemsFrom(objs []object.Object) []Item {
	items := make([]Item, len(objs))
	for i, o := range objs {
		it, ok := o.(Item)
		if !ok {
			panic(fmt.Sprintf("tree: %T is not a tree item", o))
		}
		items[i] = it
	}
	return items
}

// ChildrenOf returns the children of n, or nil when it is not a Node.
func ChildrenOf(it Item) []Item {
	if n, ok := it.(Node); ok {
		return n.Children()
	}
	return nil
}

// WithChildren rebuilds n with a new child list.
func WithChildren(n Node, children []Item) Item {
	return object.Copy(n, object.F("children", Objects(children))).(Item)
}

// Is reports whether k appears in the lineage of it.
func Is(it Item, k Kind) bool {
	return slices.Contains(it.Lineage(), k)
}

// Register registers a concrete item type with the object registry and its
// kind and families with the kind table.
func Register(kind Kind, version uint32, newItem func(object.Fields) Item, families ...Kind) {
	object.Register(object.Type{
		Name:    string(kind),
		Version: version,
		Exclude: []string{"name"},
		New:     func(f object.Fields) object.Object { return newItem(f) },
	})
	RegisterKind(kind)
	RegisterKind(families...)
}
