// Package kernel defines the abstract geometry kernel interface.
// Tessellation lowers a CSG tree into kernel shapes and solids and asks the
// kernel for a triangle mesh. The kernel abstraction allows swapping
// backends without changing the rest of the system.
package kernel

import (
	"errors"

	"github.com/chazu/csgtree/pkg/vmath"
)

// ErrUnsupported is returned by kernels that cannot build a requested
// primitive.
var ErrUnsupported = errors.New("kernel: unsupported primitive")

// Solid is an opaque handle to a geometry kernel solid.
// Implementations wrap their internal representation.
type Solid interface {
	// BoundingBox returns the axis-aligned bounding box.
	BoundingBox() (min, max [3]float64)
}

// Shape is an opaque handle to a planar region in the XY plane.
type Shape interface {
	BoundingBox() (min, max [2]float64)
}

// Kernel is the abstract geometry kernel interface.
//
// All primitives are centered on the origin. Cylinders, cones and
// extrusions run along Z from -height/2 to height/2. Angles are in degrees.
type Kernel interface {
	// Planar primitives
	Circle(radius float64) Shape
	Rect(x, y float64) Shape
	// Polygon builds a region from closed outlines. The first outline is
	// the boundary, the rest are holes.
	Polygon(outlines ...[]vmath.Vec2) (Shape, error)

	// Planar operations
	Union2(a, b Shape) Shape
	Difference2(a, b Shape) Shape
	Intersection2(a, b Shape) Shape
	Transform2(s Shape, m vmath.Affine2) Shape

	// Primitives
	Box(x, y, z float64) Solid
	Sphere(radius float64) Solid
	Cylinder(height, radius float64, segments int) Solid
	Cone(height, radius1, radius2 float64) Solid

	// Extrusion
	Extrude(s Shape, height, twist, scale float64) Solid
	// Revolve sweeps s around the Y axis of its plane, which becomes Z.
	Revolve(s Shape, angle float64) (Solid, error)

	// Boolean operations
	Union(a, b Solid) Solid
	Difference(a, b Solid) Solid
	Intersection(a, b Solid) Solid

	// Transforms
	Translate(s Solid, x, y, z float64) Solid
	Rotate(s Solid, x, y, z float64) Solid // Euler angles in degrees
	Scale(s Solid, x, y, z float64) Solid
	Transform(s Solid, m vmath.Affine3) Solid

	// Mesh output
	ToMesh(s Solid) (*Mesh, error)
}
