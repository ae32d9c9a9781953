package solid

import (
	"fmt"

	"github.com/chazu/csgtree/pkg/object"
	"github.com/chazu/csgtree/pkg/tree"
)

var (
	linearExtrudeLineage = tree.Lineage(KindLinearExtrude, true, KindExtrusion, KindSolid)
	rotateExtrudeLineage = tree.Lineage(KindRotateExtrude, true, KindExtrusion, KindSolid)
)

func init() {
	tree.Register(KindLinearExtrude, 1, func(f object.Fields) tree.Item {
		return NewLinearExtrudeFrom(tree.NodeBaseFrom(f), f.Float("height"), f.Float("twist"), f.Float("scale"))
	}, KindExtrusion, KindSolid)
	tree.Register(KindRotateExtrude, 1, func(f object.Fields) tree.Item {
		return newRotateExtrude(tree.NodeBaseFrom(f), f.Float("angle"))
	}, KindExtrusion, KindSolid)
}

// Extrusion is implemented by nodes that sweep a single 2D child.
type Extrusion interface {
	tree.Node
	Profile() tree.Item
}

// Linear is an Extrusion along z. Gear wheels implement it as well as
// LinearExtrude.
type Linear interface {
	Extrusion
	Height() float64
	Twist() float64
	Scale() float64
}

// extrusionDim checks the single child and returns the node dimension:
// 3D for a 2D child, indeterminate for Empty.
func extrusionDim(what string, nb tree.NodeBase) tree.Dim {
	if nb.NumChildren() != 1 {
		panic(fmt.Sprintf("solid: %s needs exactly one child, got %d", what, nb.NumChildren()))
	}
	switch c := nb.Child(0); {
	case c.Kind() == tree.KindEmpty:
		return tree.DimNone
	case c.Dim() != tree.Dim2:
		panic(fmt.Sprintf("solid: %s needs a 2D child, got %s", what, c.Dim()))
	}
	return tree.Dim3
}

// LinearExtrude sweeps its shape along z, centered on z = 0. The shape is
// rotated by twist degrees and scaled by scale over the height.
type LinearExtrude struct {
	object.Base
	tree.NodeBase
	height, twist, scale float64
	dim                  tree.Dim
}

// NewLinearExtrude extrudes child to the given height.
func NewLinearExtrude(child tree.Item, height, twist, scale float64, opts ...tree.Option) *LinearExtrude {
	return NewLinearExtrudeFrom(tree.MakeNodeBase([]tree.Item{child}, opts...), height, twist, scale)
}

// NewLinearExtrudeFrom builds a LinearExtrude over existing node state.
// Gear wheels use it to share the extrusion invariants.
func NewLinearExtrudeFrom(nb tree.NodeBase, height, twist, scale float64) *LinearExtrude {
	dim := extrusionDim("linear extrude", nb)
	if height <= 0 {
		panic(fmt.Sprintf("solid: extrusion height must be positive, got %g", height))
	}
	if scale < 0 {
		panic(fmt.Sprintf("solid: extrusion scale must not be negative, got %g", scale))
	}
	return &LinearExtrude{NodeBase: nb, height: height, twist: twist, scale: scale, dim: dim}
}

func (e *LinearExtrude) Height() float64    { return e.height }
func (e *LinearExtrude) Twist() float64     { return e.twist }
func (e *LinearExtrude) Scale() float64     { return e.scale }
func (e *LinearExtrude) Profile() tree.Item { return e.Child(0) }

func (e *LinearExtrude) TypeName() string     { return string(KindLinearExtrude) }
func (e *LinearExtrude) Kind() tree.Kind      { return KindLinearExtrude }
func (e *LinearExtrude) Lineage() []tree.Kind { return linearExtrudeLineage }
func (e *LinearExtrude) Dim() tree.Dim        { return e.dim }
func (e *LinearExtrude) Fields() object.Fields {
	return e.NodeFields(
		object.F("height", e.height),
		object.F("twist", e.twist),
		object.F("scale", e.scale),
	)
}

// RotateExtrude sweeps its shape around the z axis. The shape's x axis
// becomes the radius.
type RotateExtrude struct {
	object.Base
	tree.NodeBase
	angle float64
	dim   tree.Dim
}

// NewRotateExtrude revolves child by angle degrees, 0 < angle <= 360.
func NewRotateExtrude(child tree.Item, angle float64, opts ...tree.Option) *RotateExtrude {
	return newRotateExtrude(tree.MakeNodeBase([]tree.Item{child}, opts...), angle)
}

func newRotateExtrude(nb tree.NodeBase, angle float64) *RotateExtrude {
	dim := extrusionDim("rotate extrude", nb)
	if angle <= 0 || angle > 360 {
		panic(fmt.Sprintf("solid: rotate extrude angle must be in (0, 360], got %g", angle))
	}
	return &RotateExtrude{NodeBase: nb, angle: angle, dim: dim}
}

func (e *RotateExtrude) Angle() float64     { return e.angle }
func (e *RotateExtrude) Profile() tree.Item { return e.Child(0) }

func (e *RotateExtrude) TypeName() string     { return string(KindRotateExtrude) }
func (e *RotateExtrude) Kind() tree.Kind      { return KindRotateExtrude }
func (e *RotateExtrude) Lineage() []tree.Kind { return rotateExtrudeLineage }
func (e *RotateExtrude) Dim() tree.Dim        { return e.dim }
func (e *RotateExtrude) Fields() object.Fields {
	return e.NodeFields(object.F("angle", e.angle))
}
