package gear

import (
	"fmt"

	"github.com/chazu/csgtree/pkg/boolean"
	"github.com/chazu/csgtree/pkg/object"
	"github.com/chazu/csgtree/pkg/solid"
	"github.com/chazu/csgtree/pkg/transform"
	"github.com/chazu/csgtree/pkg/tree"
	"github.com/chazu/csgtree/pkg/vmath"
)

// KindGear is the family of all gear solids.
const KindGear tree.Kind = "gear.Gear"

// Concrete kinds.
const (
	KindWheel                 tree.Kind = "gear.Wheel"
	KindHerringboneWheel      tree.Kind = "gear.HerringboneWheel"
	KindInnerWheel            tree.Kind = "gear.InnerWheel"
	KindInnerHerringboneWheel tree.Kind = "gear.InnerHerringboneWheel"
)

// DefaultRim is the rim thickness of inner wheels when none is given.
const DefaultRim = 1.0

var (
	wheelLineage = tree.Lineage(KindWheel, true,
		KindGear, solid.KindLinearExtrude, solid.KindExtrusion, solid.KindSolid)
	herringboneLineage = tree.Lineage(KindHerringboneWheel, true,
		KindGear, boolean.KindUnion, boolean.KindBoolean, solid.KindSolid)
	innerWheelLineage = tree.Lineage(KindInnerWheel, true,
		KindGear, boolean.KindDifference, boolean.KindBoolean, solid.KindSolid)
	innerHerringboneLineage = tree.Lineage(KindInnerHerringboneWheel, true,
		KindGear, boolean.KindDifference, boolean.KindBoolean, solid.KindSolid)
)

func init() {
	tree.RegisterKind(KindGear)
	tree.Register(KindWheel, 1, func(f object.Fields) tree.Item {
		return newWheel(solidFrom(f, false), tree.NodeBaseFrom(f))
	}, KindGear, solid.KindLinearExtrude, solid.KindExtrusion, solid.KindSolid)
	tree.Register(KindHerringboneWheel, 1, func(f object.Fields) tree.Item {
		return newHerringboneWheel(solidFrom(f, false), tree.NodeBaseFrom(f))
	}, KindGear, boolean.KindUnion, boolean.KindBoolean, solid.KindSolid)
	tree.Register(KindInnerWheel, 1, func(f object.Fields) tree.Item {
		return newInnerWheel(solidFrom(f, true), f.Float("rim"), tree.NodeBaseFrom(f))
	}, KindGear, boolean.KindDifference, boolean.KindBoolean, solid.KindSolid)
	tree.Register(KindInnerHerringboneWheel, 1, func(f object.Fields) tree.Item {
		return newInnerHerringboneWheel(solidFrom(f, true), f.Float("rim"), tree.NodeBaseFrom(f))
	}, KindGear, boolean.KindDifference, boolean.KindBoolean, solid.KindSolid)
}

// Gear is implemented by profiles and gear solids.
type Gear interface {
	tree.Item
	Geometry() Geometry
}

// AxisDistance returns the center distance of two gears.
func AxisDistance(a, b Gear) float64 {
	return CenterDistance(a.Geometry(), b.Geometry())
}

// gearSolid is the state shared by the gear solids.
type gearSolid struct {
	geo         Geometry
	height, mhf float64
	rot         float64
}

func newGearSolid(p Params, height float64, inner bool) gearSolid {
	if height <= 0 {
		panic(fmt.Sprintf("gear: height must be positive, got %g", height))
	}
	g := NewGeometry(p)
	g.inner = inner
	return gearSolid{geo: g, height: height, mhf: mhfOrDefault(p.Mhf), rot: p.Rot}
}

func solidFrom(f object.Fields, inner bool) gearSolid {
	return gearSolid{
		geo:    geometryFrom(f, inner),
		height: f.Float("height"),
		mhf:    f.Float("mhf"),
		rot:    f.Float("rot"),
	}
}

func (s gearSolid) fields(extra ...object.Field) []object.Field {
	f := append(s.geo.fields(),
		object.F("height", s.height),
		object.F("mhf", s.mhf),
		object.F("rot", s.rot),
	)
	return append(f, extra...)
}

// twist is the rotation of the profile over the full height, in degrees.
func (s gearSolid) twist() float64 {
	return vmath.Degrees(s.geo.beta() * s.height / s.geo.m)
}

func (s gearSolid) profile(b, rot float64, opts []tree.Option) *Profile {
	p := s.geo.params()
	p.B, p.Mhf, p.Rot = b, s.mhf, rot
	if s.geo.inner {
		return NewInnerProfile(p, opts...)
	}
	return NewProfile(p, opts...)
}

// halves builds the two oppositely twisted extrusions of a herringbone,
// each slightly longer than half the height so they fuse.
func (s gearSolid) halves(opts []tree.Option) *boolean.Union {
	twist := s.twist()
	h2 := s.height/2 + vmath.Epsilon
	h4 := s.height / 4
	upper := solid.NewLinearExtrude(s.profile(s.geo.b, s.rot+twist/2, opts), h2, twist, 1, opts...)
	lower := solid.NewLinearExtrude(s.profile(-s.geo.b, s.rot-twist/2, opts), h2, -twist, 1, opts...)
	return boolean.NewUnion([]tree.Item{
		transform.NewTranslate(upper, 0, 0, h4),
		transform.NewTranslate(lower, 0, 0, -h4),
	})
}

// rimCylinder is the blank an inner gear is cut from.
func (s gearSolid) rimCylinder(rim float64) *solid.Cylinder {
	p := s.profile(s.geo.b, s.rot, nil)
	r := (p.Da() + clearance*s.geo.m + 2*rim) / 2
	return solid.NewCylinder(s.height, r, r)
}

func (s gearSolid) Geometry() Geometry { return s.geo }
func (s gearSolid) Height() float64    { return s.height }
func (s gearSolid) Rotation() float64  { return s.rot }

// Wheel is a spur or helical gear: a linear extrusion of its profile.
type Wheel struct {
	object.Base
	tree.NodeBase
	gearSolid
	twist float64
	dim   tree.Dim
}

// NewWheel extrudes the profile of p to height.
func NewWheel(p Params, height float64, opts ...tree.Option) *Wheel {
	s := newGearSolid(p, height, false)
	prof := s.profile(s.geo.b, s.rot+s.twist()/2, opts)
	return newWheel(s, tree.MakeNodeBase([]tree.Item{prof}, opts...))
}

func newWheel(s gearSolid, nb tree.NodeBase) *Wheel {
	twist := s.twist()
	ext := solid.NewLinearExtrudeFrom(nb, s.height, twist, 1)
	return &Wheel{NodeBase: nb, gearSolid: s, twist: twist, dim: ext.Dim()}
}

func (w *Wheel) Twist() float64     { return w.twist }
func (w *Wheel) Scale() float64     { return 1 }
func (w *Wheel) Profile() tree.Item { return w.Child(0) }

func (w *Wheel) TypeName() string      { return string(KindWheel) }
func (w *Wheel) Kind() tree.Kind       { return KindWheel }
func (w *Wheel) Lineage() []tree.Kind  { return wheelLineage }
func (w *Wheel) Dim() tree.Dim         { return w.dim }
func (w *Wheel) Fields() object.Fields { return w.NodeFields(w.fields()...) }

// HerringboneWheel is the union of two helical halves with opposite helix
// angles.
type HerringboneWheel struct {
	object.Base
	tree.NodeBase
	gearSolid
	dim tree.Dim
}

// NewHerringboneWheel builds a herringbone gear of the given height.
func NewHerringboneWheel(p Params, height float64, opts ...tree.Option) *HerringboneWheel {
	s := newGearSolid(p, height, false)
	return newHerringboneWheel(s, tree.MakeNodeBase(s.halves(opts).Children(), opts...))
}

func newHerringboneWheel(s gearSolid, nb tree.NodeBase) *HerringboneWheel {
	return &HerringboneWheel{NodeBase: nb, gearSolid: s, dim: boolean.NewUnionFrom(nb).Dim()}
}

func (w *HerringboneWheel) Op() boolean.Op        { return boolean.OpUnion }
func (w *HerringboneWheel) TypeName() string      { return string(KindHerringboneWheel) }
func (w *HerringboneWheel) Kind() tree.Kind       { return KindHerringboneWheel }
func (w *HerringboneWheel) Lineage() []tree.Kind  { return herringboneLineage }
func (w *HerringboneWheel) Dim() tree.Dim         { return w.dim }
func (w *HerringboneWheel) Fields() object.Fields { return w.NodeFields(w.fields()...) }

// InnerWheel is a ring gear: a rim cylinder minus the extruded inner
// profile.
type InnerWheel struct {
	object.Base
	tree.NodeBase
	gearSolid
	rim float64
	dim tree.Dim
}

// NewInnerWheel builds a ring gear with rim thickness rim. A zero rim
// selects DefaultRim.
func NewInnerWheel(p Params, height, rim float64, opts ...tree.Option) *InnerWheel {
	s := newGearSolid(p, height, true)
	rim = rimOrDefault(rim)
	twist := s.twist()
	cut := solid.NewLinearExtrude(s.profile(s.geo.b, s.rot+twist/2, opts), height+vmath.Epsilon, twist, 1)
	return newInnerWheel(s, rim, tree.MakeNodeBase([]tree.Item{s.rimCylinder(rim), cut}, opts...))
}

func newInnerWheel(s gearSolid, rim float64, nb tree.NodeBase) *InnerWheel {
	return &InnerWheel{NodeBase: nb, gearSolid: s, rim: rim, dim: boolean.NewDifferenceFrom(nb).Dim()}
}

func rimOrDefault(rim float64) float64 {
	switch {
	case rim == 0:
		return DefaultRim
	case rim < 0:
		panic(fmt.Sprintf("gear: rim must not be negative, got %g", rim))
	}
	return rim
}

// Rim returns the rim thickness.
func (w *InnerWheel) Rim() float64 { return w.rim }

func (w *InnerWheel) Op() boolean.Op       { return boolean.OpDifference }
func (w *InnerWheel) TypeName() string     { return string(KindInnerWheel) }
func (w *InnerWheel) Kind() tree.Kind      { return KindInnerWheel }
func (w *InnerWheel) Lineage() []tree.Kind { return innerWheelLineage }
func (w *InnerWheel) Dim() tree.Dim        { return w.dim }
func (w *InnerWheel) Fields() object.Fields {
	return w.NodeFields(w.fields(object.F("rim", w.rim))...)
}

// InnerHerringboneWheel is a ring gear cut by a herringbone profile.
type InnerHerringboneWheel struct {
	object.Base
	tree.NodeBase
	gearSolid
	rim float64
	dim tree.Dim
}

// NewInnerHerringboneWheel builds a herringbone ring gear. A zero rim
// selects DefaultRim.
func NewInnerHerringboneWheel(p Params, height, rim float64, opts ...tree.Option) *InnerHerringboneWheel {
	s := newGearSolid(p, height, true)
	rim = rimOrDefault(rim)
	nb := tree.MakeNodeBase([]tree.Item{s.rimCylinder(rim), s.halves(opts)}, opts...)
	return newInnerHerringboneWheel(s, rim, nb)
}

func newInnerHerringboneWheel(s gearSolid, rim float64, nb tree.NodeBase) *InnerHerringboneWheel {
	return &InnerHerringboneWheel{NodeBase: nb, gearSolid: s, rim: rim, dim: boolean.NewDifferenceFrom(nb).Dim()}
}

// Rim returns the rim thickness.
func (w *InnerHerringboneWheel) Rim() float64 { return w.rim }

func (w *InnerHerringboneWheel) Op() boolean.Op       { return boolean.OpDifference }
func (w *InnerHerringboneWheel) TypeName() string     { return string(KindInnerHerringboneWheel) }
func (w *InnerHerringboneWheel) Kind() tree.Kind      { return KindInnerHerringboneWheel }
func (w *InnerHerringboneWheel) Lineage() []tree.Kind { return innerHerringboneLineage }
func (w *InnerHerringboneWheel) Dim() tree.Dim        { return w.dim }
func (w *InnerHerringboneWheel) Fields() object.Fields {
	return w.NodeFields(w.fields(object.F("rim", w.rim))...)
}
