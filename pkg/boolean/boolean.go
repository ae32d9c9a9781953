// Package boolean holds the CSG set operations.
package boolean

import (
	"fmt"

	"github.com/chazu/csgtree/pkg/object"
	"github.com/chazu/csgtree/pkg/tree"
)

// KindBoolean is the family of all set operations.
const KindBoolean tree.Kind = "boolean.Boolean"

// Concrete kinds.
const (
	KindUnion        tree.Kind = "boolean.Union"
	KindDifference   tree.Kind = "boolean.Difference"
	KindIntersection tree.Kind = "boolean.Intersection"
)

// Op names a set operation.
type Op int

const (
	OpUnion Op = iota
	OpDifference
	OpIntersection
)

func (o Op) String() string {
	switch o {
	case OpUnion:
		return "union"
	case OpDifference:
		return "difference"
	case OpIntersection:
		return "intersection"
	}
	return fmt.Sprintf("Op(%d)", int(o))
}

// Operation is implemented by every node that combines its children with a
// set operation, including gear solids built from one.
type Operation interface {
	tree.Node
	Op() Op
}

var (
	unionLineage        = tree.Lineage(KindUnion, true, KindBoolean)
	differenceLineage   = tree.Lineage(KindDifference, true, KindBoolean)
	intersectionLineage = tree.Lineage(KindIntersection, true, KindBoolean)
)

func init() {
	tree.RegisterKind(KindBoolean)
	tree.Register(KindUnion, 1, func(f object.Fields) tree.Item {
		return NewUnionFrom(tree.NodeBaseFrom(f))
	}, KindBoolean)
	tree.Register(KindDifference, 1, func(f object.Fields) tree.Item {
		return NewDifferenceFrom(tree.NodeBaseFrom(f))
	}, KindBoolean)
	tree.Register(KindIntersection, 1, func(f object.Fields) tree.Item {
		return newIntersection(tree.NodeBaseFrom(f))
	}, KindBoolean)
}

// Check validates the child list of op and returns the resulting
// dimension. Empty children take no part in dimension inference. It
// panics on a wrong child count or mixed dimensions.
func Check(op Op, nb tree.NodeBase) tree.Dim {
	n := nb.NumChildren()
	switch {
	case op == OpUnion && n < 2:
		panic(fmt.Sprintf("boolean: union needs at least 2 children, got %d", n))
	case op != OpUnion && n != 2:
		panic(fmt.Sprintf("boolean: %s needs exactly 2 children, got %d", op, n))
	}
	dim, ok := tree.CommonDim(nb.Children())
	if !ok {
		panic(fmt.Sprintf("boolean: %s mixes 2D and 3D children", op))
	}
	return dim
}

// Union combines all children.
type Union struct {
	object.Base
	tree.NodeBase
	dim tree.Dim
}

// NewUnion returns the union of children.
func NewUnion(children []tree.Item, opts ...tree.Option) *Union {
	return NewUnionFrom(tree.MakeNodeBase(children, opts...))
}

// NewUnionFrom builds a Union over existing node state.
func NewUnionFrom(nb tree.NodeBase) *Union {
	return &Union{NodeBase: nb, dim: Check(OpUnion, nb)}
}

func (u *Union) Op() Op                { return OpUnion }
func (u *Union) TypeName() string      { return string(KindUnion) }
func (u *Union) Kind() tree.Kind       { return KindUnion }
func (u *Union) Lineage() []tree.Kind  { return unionLineage }
func (u *Union) Dim() tree.Dim         { return u.dim }
func (u *Union) Fields() object.Fields { return u.NodeFields() }

// Difference subtracts the second child from the first.
type Difference struct {
	object.Base
	tree.NodeBase
	dim tree.Dim
}

// NewDifference returns base minus cut.
func NewDifference(base, cut tree.Item, opts ...tree.Option) *Difference {
	return NewDifferenceFrom(tree.MakeNodeBase([]tree.Item{base, cut}, opts...))
}

// NewDifferenceFrom builds a Difference over existing node state.
func NewDifferenceFrom(nb tree.NodeBase) *Difference {
	return &Difference{NodeBase: nb, dim: Check(OpDifference, nb)}
}

func (d *Difference) Op() Op                { return OpDifference }
func (d *Difference) TypeName() string      { return string(KindDifference) }
func (d *Difference) Kind() tree.Kind       { return KindDifference }
func (d *Difference) Lineage() []tree.Kind  { return differenceLineage }
func (d *Difference) Dim() tree.Dim         { return d.dim }
func (d *Difference) Fields() object.Fields { return d.NodeFields() }

// Intersection keeps what both children share.
type Intersection struct {
	object.Base
	tree.NodeBase
	dim tree.Dim
}

// NewIntersection returns the intersection of a and b.
func NewIntersection(a, b tree.Item, opts ...tree.Option) *Intersection {
	return newIntersection(tree.MakeNodeBase([]tree.Item{a, b}, opts...))
}

func newIntersection(nb tree.NodeBase) *Intersection {
	return &Intersection{NodeBase: nb, dim: Check(OpIntersection, nb)}
}

func (i *Intersection) Op() Op                { return OpIntersection }
func (i *Intersection) TypeName() string      { return string(KindIntersection) }
func (i *Intersection) Kind() tree.Kind       { return KindIntersection }
func (i *Intersection) Lineage() []tree.Kind  { return intersectionLineage }
func (i *Intersection) Dim() tree.Dim         { return i.dim }
func (i *Intersection) Fields() object.Fields { return i.NodeFields() }
