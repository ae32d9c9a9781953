// Package sdfx implements the kernel.Kernel interface using the
// github.com/deadsy/sdfx SDF-based CAD library.
package sdfx

import (
	"fmt"
	"math"

	"github.com/chazu/csgtree/pkg/kernel"
	"github.com/chazu/csgtree/pkg/vmath"
	"github.com/deadsy/sdfx/render"
	"github.com/deadsy/sdfx/sdf"
	v2 "github.com/deadsy/sdfx/vec/v2"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Compile-time interface check.
var _ kernel.Kernel = (*SdfxKernel)(nil)

// defaultMeshCells controls marching cubes tessellation resolution.
const defaultMeshCells = 200

// sdfxSolid wraps an sdf.SDF3 to implement kernel.Solid.
type sdfxSolid struct {
	s sdf.SDF3
}

// BoundingBox returns the axis-aligned bounding box.
func (s *sdfxSolid) BoundingBox() (min, max [3]float64) {
	bb := s.s.BoundingBox()
	min = [3]float64{bb.Min.X, bb.Min.Y, bb.Min.Z}
	max = [3]float64{bb.Max.X, bb.Max.Y, bb.Max.Z}
	return min, max
}

// sdfxShape wraps an sdf.SDF2 to implement kernel.Shape.
type sdfxShape struct {
	s sdf.SDF2
}

func (s *sdfxShape) BoundingBox() (min, max [2]float64) {
	bb := s.s.BoundingBox()
	return [2]float64{bb.Min.X, bb.Min.Y}, [2]float64{bb.Max.X, bb.Max.Y}
}

// Option configures an SdfxKernel.
type Option func(*SdfxKernel)

// WithMeshCells sets the marching cubes resolution along the longest axis.
func WithMeshCells(n int) Option {
	return func(k *SdfxKernel) {
		if n > 0 {
			k.cells = n
		}
	}
}

// SdfxKernel implements kernel.Kernel using sdfx.
type SdfxKernel struct {
	cells int
}

// New returns a new SdfxKernel.
func New(opts ...Option) *SdfxKernel {
	k := &SdfxKernel{cells: defaultMeshCells}
	for _, o := range opts {
		o(k)
	}
	return k
}

// unwrap extracts the underlying sdf.SDF3 from a kernel.Solid.
func unwrap(s kernel.Solid) sdf.SDF3 {
	return s.(*sdfxSolid).s
}

// wrap creates a kernel.Solid from an sdf.SDF3.
func wrap(s sdf.SDF3) kernel.Solid {
	return &sdfxSolid{s: s}
}

func unwrap2(s kernel.Shape) sdf.SDF2 {
	return s.(*sdfxShape).s
}

func wrap2(s sdf.SDF2) kernel.Shape {
	return &sdfxShape{s: s}
}

// Circle creates a disc centered on the origin.
func (k *SdfxKernel) Circle(radius float64) kernel.Shape {
	s, err := sdf.Circle2D(radius)
	if err != nil {
		panic(fmt.Sprintf("sdfx.Circle2D: %v", err))
	}
	return wrap2(s)
}

// Rect creates a rectangle centered on the origin.
func (k *SdfxKernel) Rect(x, y float64) kernel.Shape {
	return wrap2(sdf.Box2D(v2.Vec{X: x, Y: y}, 0))
}

// Polygon creates a region bounded by the first outline with the
// remaining outlines cut out of it.
func (k *SdfxKernel) Polygon(outlines ...[]vmath.Vec2) (kernel.Shape, error) {
	if len(outlines) == 0 {
		return nil, fmt.Errorf("sdfx: polygon without outlines")
	}
	var out sdf.SDF2
	for i, pts := range outlines {
		if len(pts) < 3 {
			return nil, fmt.Errorf("sdfx: outline %d has %d points, need at least 3", i, len(pts))
		}
		s, err := sdf.Polygon2D(pts)
		if err != nil {
			return nil, fmt.Errorf("sdfx: outline %d: %w", i, err)
		}
		if out == nil {
			out = s
			continue
		}
		out = sdf.Difference2D(out, s)
	}
	return wrap2(out), nil
}

// Union2 returns the union of two shapes.
func (k *SdfxKernel) Union2(a, b kernel.Shape) kernel.Shape {
	return wrap2(sdf.Union2D(unwrap2(a), unwrap2(b)))
}

// Difference2 returns the difference a - b.
func (k *SdfxKernel) Difference2(a, b kernel.Shape) kernel.Shape {
	return wrap2(sdf.Difference2D(unwrap2(a), unwrap2(b)))
}

// Intersection2 returns the intersection of two shapes.
func (k *SdfxKernel) Intersection2(a, b kernel.Shape) kernel.Shape {
	return wrap2(sdf.Intersect2D(unwrap2(a), unwrap2(b)))
}

// Transform2 applies an affine matrix to a shape.
func (k *SdfxKernel) Transform2(s kernel.Shape, m vmath.Affine2) kernel.Shape {
	return wrap2(sdf.Transform2D(unwrap2(s), m))
}

// Box creates a box with the given dimensions centered on the origin.
func (k *SdfxKernel) Box(x, y, z float64) kernel.Solid {
	s, err := sdf.Box3D(v3.Vec{X: x, Y: y, Z: z}, 0)
	if err != nil {
		panic(fmt.Sprintf("sdfx.Box3D: %v", err))
	}
	return wrap(s)
}

// Sphere creates a sphere centered on the origin.
func (k *SdfxKernel) Sphere(radius float64) kernel.Solid {
	s, err := sdf.Sphere3D(radius)
	if err != nil {
		panic(fmt.Sprintf("sdfx.Sphere3D: %v", err))
	}
	return wrap(s)
}

// Cylinder creates a cylinder with the given height and radius.
// The segments parameter is ignored since SDF represents smooth surfaces.
func (k *SdfxKernel) Cylinder(height, radius float64, segments int) kernel.Solid {
	s, err := sdf.Cylinder3D(height, radius, 0)
	if err != nil {
		panic(fmt.Sprintf("sdfx.Cylinder3D: %v", err))
	}
	return wrap(s)
}

// Cone creates a truncated cone with radius1 at the bottom and radius2 at
// the top. Equal radii give a cylinder.
func (k *SdfxKernel) Cone(height, radius1, radius2 float64) kernel.Solid {
	if radius1 == radius2 {
		return k.Cylinder(height, radius1, 0)
	}
	s, err := sdf.Cone3D(height, radius1, radius2, 0)
	if err != nil {
		panic(fmt.Sprintf("sdfx.Cone3D: %v", err))
	}
	return wrap(s)
}

// Extrude sweeps a shape along Z, turning it by twist degrees and scaling
// it by scale towards the top.
func (k *SdfxKernel) Extrude(s kernel.Shape, height, twist, scale float64) kernel.Solid {
	shape := unwrap2(s)
	switch {
	case twist == 0 && scale == 1:
		return wrap(sdf.Extrude3D(shape, height))
	case scale == 1:
		return wrap(sdf.TwistExtrude3D(shape, height, vmath.Radians(twist)))
	default:
		return wrap(sdf.ScaleTwistExtrude3D(shape, height, vmath.Radians(twist), v2.Vec{X: scale, Y: scale}))
	}
}

// Revolve sweeps a shape around Z. Angles of 360 or more give a full
// revolution.
func (k *SdfxKernel) Revolve(s kernel.Shape, angle float64) (kernel.Solid, error) {
	var (
		out sdf.SDF3
		err error
	)
	if angle >= 360 {
		out, err = sdf.Revolve3D(unwrap2(s))
	} else {
		out, err = sdf.RevolveTheta3D(unwrap2(s), vmath.Radians(angle))
	}
	if err != nil {
		return nil, fmt.Errorf("sdfx: revolve: %w", err)
	}
	return wrap(out), nil
}

// Union returns the union of two solids.
func (k *SdfxKernel) Union(a, b kernel.Solid) kernel.Solid {
	return wrap(sdf.Union3D(unwrap(a), unwrap(b)))
}

// Difference returns the difference a - b.
func (k *SdfxKernel) Difference(a, b kernel.Solid) kernel.Solid {
	return wrap(sdf.Difference3D(unwrap(a), unwrap(b)))
}

// Intersection returns the intersection of two solids.
func (k *SdfxKernel) Intersection(a, b kernel.Solid) kernel.Solid {
	return wrap(sdf.Intersect3D(unwrap(a), unwrap(b)))
}

// Translate moves a solid by (x, y, z).
func (k *SdfxKernel) Translate(s kernel.Solid, x, y, z float64) kernel.Solid {
	return k.Transform(s, vmath.Translate3(x, y, z))
}

// Rotate rotates a solid by Euler angles (degrees) around X, Y, Z axes.
func (k *SdfxKernel) Rotate(s kernel.Solid, x, y, z float64) kernel.Solid {
	return k.Transform(s, vmath.Rotate3(x, y, z))
}

// Scale scales a solid along each axis.
func (k *SdfxKernel) Scale(s kernel.Solid, x, y, z float64) kernel.Solid {
	if x == y && y == z {
		return wrap(sdf.ScaleUniform3D(unwrap(s), x))
	}
	return k.Transform(s, vmath.Scale3(x, y, z))
}

// Transform applies an affine matrix to a solid.
func (k *SdfxKernel) Transform(s kernel.Solid, m vmath.Affine3) kernel.Solid {
	return wrap(sdf.Transform3D(unwrap(s), m))
}

// ToMesh converts a solid to a triangle mesh using marching cubes.
func (k *SdfxKernel) ToMesh(s kernel.Solid) (*kernel.Mesh, error) {
	sdf3 := unwrap(s)
	bb := sdf3.BoundingBox()
	if size := bb.Size(); size.X <= 0 || size.Y <= 0 || size.Z <= 0 || math.IsNaN(size.X) {
		return nil, fmt.Errorf("sdfx: solid has a degenerate bounding box %v", size)
	}

	renderer := render.NewMarchingCubesUniform(k.cells)
	triangles := render.ToTriangles(sdf3, renderer)

	numTri := len(triangles)
	numVerts := numTri * 3

	vertices := make([]float32, 0, numVerts*3)
	normals := make([]float32, 0, numVerts*3)
	indices := make([]uint32, 0, numVerts)

	for i, tri := range triangles {
		// Compute face normal.
		n := tri.Normal()
		nx := float32(n.X)
		ny := float32(n.Y)
		nz := float32(n.Z)

		for j := 0; j < 3; j++ {
			v := tri[j]
			vertices = append(vertices, float32(v.X), float32(v.Y), float32(v.Z))
			normals = append(normals, nx, ny, nz)
			indices = append(indices, uint32(i*3+j))
		}
	}

	return &kernel.Mesh{
		Vertices: vertices,
		Normals:  normals,
		Indices:  indices,
	}, nil
}
