// Package solid holds the three dimensional primitives and extrusions of a
// CSG tree. Every primitive is centered on the origin.
package solid

import (
	"fmt"
	"slices"

	"github.com/chazu/csgtree/pkg/object"
	"github.com/chazu/csgtree/pkg/tree"
	"github.com/chazu/csgtree/pkg/vmath"
)

// KindSolid is the family of all solids.
const KindSolid tree.Kind = "solid.Solid"

// KindExtrusion is the family of nodes turning a shape into a solid.
const KindExtrusion tree.Kind = "solid.Extrusion"

// Concrete kinds.
const (
	KindSphere        tree.Kind = "solid.Sphere"
	KindCube          tree.Kind = "solid.Cube"
	KindCylinder      tree.Kind = "solid.Cylinder"
	KindPolyhedron    tree.Kind = "solid.Polyhedron"
	KindLinearExtrude tree.Kind = "solid.LinearExtrude"
	KindRotateExtrude tree.Kind = "solid.RotateExtrude"
)

var (
	sphereLineage     = tree.Lineage(KindSphere, false, KindSolid)
	cubeLineage       = tree.Lineage(KindCube, false, KindSolid)
	cylinderLineage   = tree.Lineage(KindCylinder, false, KindSolid)
	polyhedronLineage = tree.Lineage(KindPolyhedron, false, KindSolid)
)

func init() {
	tree.RegisterKind(KindSolid, KindExtrusion)
	tree.Register(KindSphere, 1, func(f object.Fields) tree.Item {
		return newSphere(f.Float("radius"), tree.ItemBaseFrom(f))
	}, KindSolid)
	tree.Register(KindCube, 1, func(f object.Fields) tree.Item {
		return newCube(f.Float("x"), f.Float("y"), f.Float("z"), tree.ItemBaseFrom(f))
	}, KindSolid)
	tree.Register(KindCylinder, 1, func(f object.Fields) tree.Item {
		return newCylinder(f.Float("height"), f.Float("radius1"), f.Float("radius2"), tree.ItemBaseFrom(f))
	}, KindSolid)
	tree.Register(KindPolyhedron, 1, func(f object.Fields) tree.Item {
		return newPolyhedron(f.Vec3s("points"), f.IntLists("faces"), tree.ItemBaseFrom(f))
	}, KindSolid)
}

// Sphere is a ball around the origin.
type Sphere struct {
	object.Base
	tree.ItemBase
	radius float64
}

// NewSphere returns a sphere of the given radius.
func NewSphere(radius float64, opts ...tree.Option) *Sphere {
	return newSphere(radius, tree.MakeItemBase(opts...))
}

func newSphere(radius float64, ib tree.ItemBase) *Sphere {
	if radius <= 0 {
		panic(fmt.Sprintf("solid: sphere radius must be positive, got %g", radius))
	}
	return &Sphere{ItemBase: ib, radius: radius}
}

func (s *Sphere) Radius() float64 { return s.radius }

func (s *Sphere) TypeName() string     { return string(KindSphere) }
func (s *Sphere) Kind() tree.Kind      { return KindSphere }
func (s *Sphere) Lineage() []tree.Kind { return sphereLineage }
func (s *Sphere) Dim() tree.Dim        { return tree.Dim3 }
func (s *Sphere) Fields() object.Fields {
	return s.ItemFields(object.F("radius", s.radius))
}

// Cube is an axis aligned box.
type Cube struct {
	object.Base
	tree.ItemBase
	x, y, z float64
}

// NewCube returns an x by y by z box.
func NewCube(x, y, z float64, opts ...tree.Option) *Cube {
	return newCube(x, y, z, tree.MakeItemBase(opts...))
}

func newCube(x, y, z float64, ib tree.ItemBase) *Cube {
	if x <= 0 || y <= 0 || z <= 0 {
		panic(fmt.Sprintf("solid: cube size must be positive, got %g x %g x %g", x, y, z))
	}
	return &Cube{ItemBase: ib, x: x, y: y, z: z}
}

// Size returns the edge lengths.
func (c *Cube) Size() vmath.Vec3 { return vmath.V3(c.x, c.y, c.z) }

func (c *Cube) TypeName() string     { return string(KindCube) }
func (c *Cube) Kind() tree.Kind      { return KindCube }
func (c *Cube) Lineage() []tree.Kind { return cubeLineage }
func (c *Cube) Dim() tree.Dim        { return tree.Dim3 }
func (c *Cube) Fields() object.Fields {
	return c.ItemFields(object.F("x", c.x), object.F("y", c.y), object.F("z", c.z))
}

// Cylinder is a cone frustum along z, radius1 at -height/2 and radius2 at
// +height/2.
type Cylinder struct {
	object.Base
	tree.ItemBase
	height, radius1, radius2 float64
}

// NewCylinder returns a cylinder; radius2 == radius1 for a straight one.
func NewCylinder(height, radius1, radius2 float64, opts ...tree.Option) *Cylinder {
	return newCylinder(height, radius1, radius2, tree.MakeItemBase(opts...))
}

func newCylinder(height, r1, r2 float64, ib tree.ItemBase) *Cylinder {
	if height <= 0 {
		panic(fmt.Sprintf("solid: cylinder height must be positive, got %g", height))
	}
	if r1 < 0 || r2 < 0 || r1+r2 == 0 {
		panic(fmt.Sprintf("solid: cylinder radii %g, %g are invalid", r1, r2))
	}
	return &Cylinder{ItemBase: ib, height: height, radius1: r1, radius2: r2}
}

func (c *Cylinder) Height() float64  { return c.height }
func (c *Cylinder) Radius1() float64 { return c.radius1 }
func (c *Cylinder) Radius2() float64 { return c.radius2 }

func (c *Cylinder) TypeName() string     { return string(KindCylinder) }
func (c *Cylinder) Kind() tree.Kind      { return KindCylinder }
func (c *Cylinder) Lineage() []tree.Kind { return cylinderLineage }
func (c *Cylinder) Dim() tree.Dim        { return tree.Dim3 }
func (c *Cylinder) Fields() object.Fields {
	return c.ItemFields(
		object.F("height", c.height),
		object.F("radius1", c.radius1),
		object.F("radius2", c.radius2),
	)
}

// Polyhedron is a closed surface of triangles given as point indices.
type Polyhedron struct {
	object.Base
	tree.ItemBase
	points []vmath.Vec3
	faces  [][]int
}

// NewPolyhedron returns a polyhedron. Faces must be triangles.
func NewPolyhedron(points []vmath.Vec3, faces [][]int, opts ...tree.Option) *Polyhedron {
	return newPolyhedron(points, faces, tree.MakeItemBase(opts...))
}

func newPolyhedron(points []vmath.Vec3, faces [][]int, ib tree.ItemBase) *Polyhedron {
	if len(points) < 4 || len(faces) < 4 {
		panic(fmt.Sprintf("solid: polyhedron needs at least 4 points and 4 faces, got %d and %d", len(points), len(faces)))
	}
	cp := make([][]int, len(faces))
	for i, face := range faces {
		if len(face) != 3 {
			panic(fmt.Sprintf("solid: polyhedron face %d has %d corners, expected 3", i, len(face)))
		}
		for _, idx := range face {
			if idx < 0 || idx >= len(points) {
				panic(fmt.Sprintf("solid: polyhedron face %d references point %d of %d", i, idx, len(points)))
			}
		}
		cp[i] = slices.Clone(face)
	}
	return &Polyhedron{ItemBase: ib, points: slices.Clone(points), faces: cp}
}

// Points returns a copy of the vertices.
func (p *Polyhedron) Points() []vmath.Vec3 { return slices.Clone(p.points) }

// Faces returns a copy of the triangle index lists.
func (p *Polyhedron) Faces() [][]int {
	out := make([][]int, len(p.faces))
	for i, f := range p.faces {
		out[i] = slices.Clone(f)
	}
	return out
}

func (p *Polyhedron) TypeName() string     { return string(KindPolyhedron) }
func (p *Polyhedron) Kind() tree.Kind      { return KindPolyhedron }
func (p *Polyhedron) Lineage() []tree.Kind { return polyhedronLineage }
func (p *Polyhedron) Dim() tree.Dim        { return tree.Dim3 }
func (p *Polyhedron) Fields() object.Fields {
	return p.ItemFields(object.F("points", p.points), object.F("faces", p.faces))
}
