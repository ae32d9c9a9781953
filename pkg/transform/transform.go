// Package transform holds the affine CSG nodes. Each wraps exactly one
// child and keeps its dimension; a 2D child restricts the node to the
// xy plane.
package transform

import (
	"fmt"

	"github.com/chazu/csgtree/pkg/object"
	"github.com/chazu/csgtree/pkg/tree"
	"github.com/chazu/csgtree/pkg/vmath"
)

// KindTransform is the family of affine nodes.
const KindTransform tree.Kind = "transform.Transform"

// Concrete kinds.
const (
	KindTranslate tree.Kind = "transform.Translate"
	KindScale     tree.Kind = "transform.Scale"
	KindRotate    tree.Kind = "transform.Rotate"
)

// Transform is implemented by all affine nodes.
type Transform interface {
	tree.Node
	// Vector returns the node parameters: offset, factors or angles in
	// degrees about x, y and z.
	Vector() vmath.Vec3
	Matrix3() vmath.Affine3
	// Matrix2 returns the xy part of the transformation.
	Matrix2() vmath.Affine2
}

var (
	translateLineage = tree.Lineage(KindTranslate, true, KindTransform)
	scaleLineage     = tree.Lineage(KindScale, true, KindTransform)
	rotateLineage    = tree.Lineage(KindRotate, true, KindTransform)
)

func init() {
	tree.RegisterKind(KindTransform)
	tree.Register(KindTranslate, 1, func(f object.Fields) tree.Item {
		return newTranslate(tree.NodeBaseFrom(f), vec(f))
	}, KindTransform)
	tree.Register(KindScale, 1, func(f object.Fields) tree.Item {
		return newScale(tree.NodeBaseFrom(f), vec(f))
	}, KindTransform)
	tree.Register(KindRotate, 1, func(f object.Fields) tree.Item {
		return newRotate(tree.NodeBaseFrom(f), vec(f))
	}, KindTransform)
}

func vec(f object.Fields) vmath.Vec3 {
	return vmath.V3(f.Float("x"), f.Float("y"), f.Float("z"))
}

// affine is the state shared by the three node types.
type affine struct {
	object.Base
	tree.NodeBase
	v vmath.Vec3
}

func makeAffine(what string, nb tree.NodeBase, v vmath.Vec3, planar func(vmath.Vec3) bool) affine {
	if nb.NumChildren() != 1 {
		panic(fmt.Sprintf("transform: %s needs exactly one child, got %d", what, nb.NumChildren()))
	}
	if nb.Child(0).Dim() == tree.Dim2 && !planar(v) {
		panic(fmt.Sprintf("transform: %s %v leaves the xy plane of a 2D child", what, v))
	}
	return affine{NodeBase: nb, v: v}
}

func (a *affine) Vector() vmath.Vec3 { return a.v }
func (a *affine) Dim() tree.Dim      { return a.Child(0).Dim() }

func (a *affine) Fields() object.Fields {
	return a.NodeFields(object.F("x", a.v.X), object.F("y", a.v.Y), object.F("z", a.v.Z))
}

// Translate moves its child.
type Translate struct{ affine }

// NewTranslate moves child by (x, y, z).
func NewTranslate(child tree.Item, x, y, z float64, opts ...tree.Option) *Translate {
	return newTranslate(tree.MakeNodeBase([]tree.Item{child}, opts...), vmath.V3(x, y, z))
}

func newTranslate(nb tree.NodeBase, v vmath.Vec3) *Translate {
	return &Translate{makeAffine("translate", nb, v, func(v vmath.Vec3) bool { return v.Z == 0 })}
}

func (t *Translate) TypeName() string       { return string(KindTranslate) }
func (t *Translate) Kind() tree.Kind        { return KindTranslate }
func (t *Translate) Lineage() []tree.Kind   { return translateLineage }
func (t *Translate) Matrix3() vmath.Affine3 { return vmath.Translate3(t.v.X, t.v.Y, t.v.Z) }
func (t *Translate) Matrix2() vmath.Affine2 { return vmath.Translate2(t.v.X, t.v.Y) }

// Scale scales its child about the origin.
type Scale struct{ affine }

// NewScale scales child by (sx, sy, sz).
func NewScale(child tree.Item, sx, sy, sz float64, opts ...tree.Option) *Scale {
	return newScale(tree.MakeNodeBase([]tree.Item{child}, opts...), vmath.V3(sx, sy, sz))
}

func newScale(nb tree.NodeBase, v vmath.Vec3) *Scale {
	if v.X == 0 || v.Y == 0 || v.Z == 0 {
		panic(fmt.Sprintf("transform: scale %v collapses a dimension", v))
	}
	return &Scale{makeAffine("scale", nb, v, func(v vmath.Vec3) bool { return v.Z == 1 })}
}

func (s *Scale) TypeName() string       { return string(KindScale) }
func (s *Scale) Kind() tree.Kind        { return KindScale }
func (s *Scale) Lineage() []tree.Kind   { return scaleLineage }
func (s *Scale) Matrix3() vmath.Affine3 { return vmath.Scale3(s.v.X, s.v.Y, s.v.Z) }
func (s *Scale) Matrix2() vmath.Affine2 { return vmath.Scale2(s.v.X, s.v.Y) }

// Rotate rotates its child about x, then y, then z, angles in degrees.
type Rotate struct{ affine }

// NewRotate rotates child by (rx, ry, rz) degrees.
func NewRotate(child tree.Item, rx, ry, rz float64, opts ...tree.Option) *Rotate {
	return newRotate(tree.MakeNodeBase([]tree.Item{child}, opts...), vmath.V3(rx, ry, rz))
}

func newRotate(nb tree.NodeBase, v vmath.Vec3) *Rotate {
	return &Rotate{makeAffine("rotate", nb, v, func(v vmath.Vec3) bool { return v.X == 0 && v.Y == 0 })}
}

func (r *Rotate) TypeName() string       { return string(KindRotate) }
func (r *Rotate) Kind() tree.Kind        { return KindRotate }
func (r *Rotate) Lineage() []tree.Kind   { return rotateLineage }
func (r *Rotate) Matrix3() vmath.Affine3 { return vmath.Rotate3(r.v.X, r.v.Y, r.v.Z) }
func (r *Rotate) Matrix2() vmath.Affine2 { return vmath.Rotate2(r.v.Z) }

// Rewrap returns a transform of the same kind and parameters as t around
// a new child, keeping name and attributes.
func Rewrap(t Transform, child tree.Item) Transform {
	return tree.WithChildren(t, []tree.Item{child}).(Transform)
}

// Merge combines outer applied after inner into one node over inner's
// child when both are of the same kind and the result is exact: offsets
// add, factors multiply, and rotations add when both turn about the same
// single axis. Outer's name and attributes are kept.
func Merge(outer, inner Transform) (Transform, bool) {
	if outer.Kind() != inner.Kind() {
		return nil, false
	}
	a, b := outer.Vector(), inner.Vector()
	var v vmath.Vec3
	switch outer.Kind() {
	case KindTranslate:
		v = a.Add(b)
	case KindScale:
		v = vmath.V3(a.X*b.X, a.Y*b.Y, a.Z*b.Z)
	case KindRotate:
		axis := singleAxis(a)
		if axis < 0 || axis != singleAxis(b) {
			return nil, false
		}
		v = a.Add(b)
	default:
		return nil, false
	}
	child := inner.Children()[0]
	m := object.Copy(outer,
		object.F("x", v.X), object.F("y", v.Y), object.F("z", v.Z),
		object.F("children", tree.Objects([]tree.Item{child})),
	)
	return m.(Transform), true
}

// singleAxis returns 0, 1 or 2 when v has exactly one non-zero component,
// else -1.
func singleAxis(v vmath.Vec3) int {
	axis := -1
	for i, c := range []float64{v.X, v.Y, v.Z} {
		if c == 0 {
			continue
		}
		if axis >= 0 {
			return -1
		}
		axis = i
	}
	return axis
}
