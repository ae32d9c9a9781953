// Package tessellate lowers a CSG tree into a geometry kernel and produces
// triangle meshes. One mesh is produced per distinct part, or one for the
// whole design when it declares no parts.
package tessellate

import (
	"errors"
	"fmt"

	"github.com/chazu/csgtree/pkg/boolean"
	"github.com/chazu/csgtree/pkg/graph"
	"github.com/chazu/csgtree/pkg/kernel"
	"github.com/chazu/csgtree/pkg/logging"
	"github.com/chazu/csgtree/pkg/object"
	"github.com/chazu/csgtree/pkg/rewrite"
	"github.com/chazu/csgtree/pkg/shape"
	"github.com/chazu/csgtree/pkg/solid"
	"github.com/chazu/csgtree/pkg/transform"
	"github.com/chazu/csgtree/pkg/tree"
	"github.com/chazu/csgtree/pkg/vmath"
)

// ErrNotSolid is returned when the design root has no 3D geometry.
var ErrNotSolid = errors.New("tessellate: design is not a solid")

// transformStack accumulates affine transforms during tree traversal.
// Each entry is the product of all transforms above it.
type transformStack struct {
	m3 []vmath.Affine3
	m2 []vmath.Affine2
}

func (ts *transformStack) push3(m vmath.Affine3) {
	ts.m3 = append(ts.m3, vmath.Compose3(m, ts.top3()))
}

func (ts *transformStack) pop3() { ts.m3 = ts.m3[:len(ts.m3)-1] }

func (ts *transformStack) top3() vmath.Affine3 {
	if len(ts.m3) == 0 {
		return vmath.Identity3()
	}
	return ts.m3[len(ts.m3)-1]
}

func (ts *transformStack) push2(m vmath.Affine2) {
	ts.m2 = append(ts.m2, vmath.Compose2(m, ts.top2()))
}

func (ts *transformStack) pop2() { ts.m2 = ts.m2[:len(ts.m2)-1] }

func (ts *transformStack) top2() vmath.Affine2 {
	if len(ts.m2) == 0 {
		return vmath.Identity2()
	}
	return ts.m2[len(ts.m2)-1]
}

// Tessellate normalizes root and produces triangle meshes using the
// provided geometry kernel. Parts are meshed in their own coordinate
// system; transforms above a part only place its instances. The
// tessellator never mutates the tree.
func Tessellate(root tree.Item, k kernel.Kernel, attrs tree.Attributes) ([]*kernel.Mesh, error) {
	if root == nil {
		return nil, nil
	}

	norm := rewrite.Normalize(root, attrs, rewrite.OutputPolygon)
	parts, err := rewrite.CollectParts(norm, attrs)
	if err != nil {
		return nil, fmt.Errorf("tessellate: %w", err)
	}

	if len(parts) == 0 {
		if norm.Kind() == tree.KindEmpty {
			return nil, nil
		}
		if norm.Dim() != tree.Dim3 {
			return nil, fmt.Errorf("%w: root %s is %s", ErrNotSolid, norm.Kind(), norm.Dim())
		}
		name := root.Name()
		if name == "" {
			name = graph.NodeID(object.Hash(root)).Short()
		}
		m, err := mesh(k, norm, attrs, name)
		if err != nil || m == nil {
			return nil, err
		}
		m.Count = 1
		return []*kernel.Mesh{m}, nil
	}

	meshes := make([]*kernel.Mesh, 0, len(parts))
	for _, p := range parts {
		m, err := mesh(k, p.Item, p.Attributes, p.Name)
		if err != nil {
			return nil, err
		}
		if m == nil {
			logging.Logger().Debug("part has no geometry", "part", p.Name)
			continue
		}
		m.Count = p.Count
		meshes = append(meshes, m)
	}
	return meshes, nil
}

// mesh lowers one subtree and converts it to a mesh. A subtree without
// geometry yields a nil mesh.
func mesh(k kernel.Kernel, it tree.Item, attrs tree.Attributes, name string) (*kernel.Mesh, error) {
	l := &lowerer{k: k}
	s, err := l.solid(it, attrs)
	if err != nil {
		return nil, fmt.Errorf("tessellate: %s: %w", name, err)
	}
	if s == nil {
		return nil, nil
	}
	m, err := k.ToMesh(s)
	if err != nil {
		return nil, fmt.Errorf("tessellate: ToMesh failed for %s: %w", name, err)
	}
	m.PartName = name
	logging.Logger().Debug("tessellated", "part", name, "triangles", m.TriangleCount())
	return m, nil
}

// lowerer walks a tree and builds kernel geometry. Transforms are not
// emitted as nodes; the accumulated matrix is applied to every leaf.
type lowerer struct {
	k  kernel.Kernel
	ts transformStack
}

func (l *lowerer) leaf3(s kernel.Solid) kernel.Solid {
	if m := l.ts.top3(); m != vmath.Identity3() {
		return l.k.Transform(s, m)
	}
	return s
}

func (l *lowerer) leaf2(s kernel.Shape) kernel.Shape {
	if m := l.ts.top2(); m != vmath.Identity2() {
		return l.k.Transform2(s, m)
	}
	return s
}

// solid lowers a 3D item. A nil solid without an error means the item
// has no volume.
func (l *lowerer) solid(it tree.Item, attrs tree.Attributes) (kernel.Solid, error) {
	attrs = attrs.Override(it.Attributes())

	switch v := it.(type) {
	case *tree.Empty:
		return nil, nil
	case *tree.Part:
		return l.solid(v.Child(0), attrs)
	case *solid.Sphere:
		return l.leaf3(l.k.Sphere(v.Radius())), nil
	case *solid.Cube:
		size := v.Size()
		return l.leaf3(l.k.Box(size.X, size.Y, size.Z)), nil
	case *solid.Cylinder:
		return l.leaf3(l.k.Cone(v.Height(), v.Radius1(), v.Radius2())), nil
	case *solid.Polyhedron:
		return nil, fmt.Errorf("polyhedron %q: %w", v.Name(), kernel.ErrUnsupported)
	case *solid.RotateExtrude:
		s, err := l.profile(v.Profile(), attrs)
		if err != nil || s == nil {
			return nil, err
		}
		out, err := l.k.Revolve(s, v.Angle())
		if err != nil {
			return nil, err
		}
		return l.leaf3(out), nil
	case solid.Linear:
		s, err := l.profile(v.Profile(), attrs)
		if err != nil || s == nil {
			return nil, err
		}
		return l.leaf3(l.k.Extrude(s, v.Height(), v.Twist(), v.Scale())), nil
	case transform.Transform:
		l.ts.push3(v.Matrix3())
		defer l.ts.pop3()
		return l.solid(v.Children()[0], attrs)
	case boolean.Operation:
		return l.combine3(v.Op(), v.Children(), attrs)
	case *tree.Group:
		var out kernel.Solid
		for _, c := range v.Children() {
			if c.Dim() != tree.Dim3 {
				logging.Logger().Debug("skipping non-solid group member", "kind", c.Kind(), "dim", c.Dim())
				continue
			}
			s, err := l.solid(c, attrs)
			if err != nil {
				return nil, err
			}
			out = l.union3(out, s)
		}
		return out, nil
	}
	return nil, fmt.Errorf("cannot lower %s as a solid: %w", it.Kind(), kernel.ErrUnsupported)
}

func (l *lowerer) union3(a, b kernel.Solid) kernel.Solid {
	switch {
	case a == nil:
		return b
	case b == nil:
		return a
	}
	return l.k.Union(a, b)
}

func (l *lowerer) combine3(op boolean.Op, children []tree.Item, attrs tree.Attributes) (kernel.Solid, error) {
	var out kernel.Solid
	for i, c := range children {
		s, err := l.solid(c, attrs)
		if err != nil {
			return nil, err
		}
		switch {
		case i == 0:
			out = s
		case op == boolean.OpUnion:
			out = l.union3(out, s)
		case out == nil:
		case op == boolean.OpDifference:
			if s != nil {
				out = l.k.Difference(out, s)
			}
		case s == nil:
			return nil, nil
		default:
			out = l.k.Intersection(out, s)
		}
		if out == nil && op != boolean.OpUnion {
			return nil, nil
		}
	}
	return out, nil
}

// profile lowers the planar child of an extrusion. Planar transforms start
// afresh below every extrusion.
func (l *lowerer) profile(it tree.Item, attrs tree.Attributes) (kernel.Shape, error) {
	saved := l.ts.m2
	l.ts.m2 = nil
	defer func() { l.ts.m2 = saved }()
	return l.shape(it, attrs)
}

func (l *lowerer) shape(it tree.Item, attrs tree.Attributes) (kernel.Shape, error) {
	attrs = attrs.Override(it.Attributes())

	switch v := it.(type) {
	case *tree.Empty:
		return nil, nil
	case *shape.Circle:
		return l.leaf2(l.k.Circle(v.Radius())), nil
	case *shape.Square:
		size := v.Size()
		return l.leaf2(l.k.Rect(size.X, size.Y)), nil
	case transform.Transform:
		l.ts.push2(v.Matrix2())
		defer l.ts.pop2()
		return l.shape(v.Children()[0], attrs)
	case boolean.Operation:
		return l.combine2(v.Op(), v.Children(), attrs)
	case *tree.Group:
		var out kernel.Shape
		for _, c := range v.Children() {
			s, err := l.shape(c, attrs)
			if err != nil {
				return nil, err
			}
			out = l.union2(out, s)
		}
		return out, nil
	}

	poly, ok := shape.ToPolygon(it, attrs.Rasterizing())
	if !ok {
		return nil, fmt.Errorf("cannot lower %s as a shape: %w", it.Kind(), kernel.ErrUnsupported)
	}
	s, err := l.k.Polygon(poly.Paths()...)
	if err != nil {
		return nil, fmt.Errorf("%s %q: %w", it.Kind(), it.Name(), err)
	}
	return l.leaf2(s), nil
}

func (l *lowerer) union2(a, b kernel.Shape) kernel.Shape {
	switch {
	case a == nil:
		return b
	case b == nil:
		return a
	}
	return l.k.Union2(a, b)
}

func (l *lowerer) combine2(op boolean.Op, children []tree.Item, attrs tree.Attributes) (kernel.Shape, error) {
	var out kernel.Shape
	for i, c := range children {
		s, err := l.shape(c, attrs)
		if err != nil {
			return nil, err
		}
		switch {
		case i == 0:
			out = s
		case op == boolean.OpUnion:
			out = l.union2(out, s)
		case out == nil:
		case op == boolean.OpDifference:
			if s != nil {
				out = l.k.Difference2(out, s)
			}
		case s == nil:
			return nil, nil
		default:
			out = l.k.Intersection2(out, s)
		}
		if out == nil && op != boolean.OpUnion {
			return nil, nil
		}
	}
	return out, nil
}
