package engine

import (
	"fmt"
	"strings"

	"github.com/chazu/csgtree/pkg/boolean"
	"github.com/chazu/csgtree/pkg/shape"
	"github.com/chazu/csgtree/pkg/solid"
	"github.com/chazu/csgtree/pkg/transform"
	"github.com/chazu/csgtree/pkg/tree"
	"github.com/chazu/csgtree/pkg/vmath"
	zygo "github.com/glycerine/zygomys/zygo"
)

// itemBuiltin parses the arguments of an item builtin and returns the
// constructor to run.
type itemBuiltin func(pa kwArgs, opts []tree.Option) (func() tree.Item, error)

// addItem registers an item builtin. Hyphens in fn are registered as
// underscores to match preprocessSource.
func addItem(env *zygo.Zlisp, fn string, b itemBuiltin) {
	env.AddFunction(strings.ReplaceAll(fn, "-", "_"), func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		opts, err := itemOptions(fn, pa)
		if err != nil {
			return zygo.SexpNull, err
		}
		construct, err := b(pa, opts)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("%s: %w", fn, err)
		}
		return build(fn, construct)
	})
}

// radiusArg reads :r, :d or a leading positional radius.
func radiusArg(pa kwArgs, r, d string) (float64, bool, error) {
	if v, ok := pa.kw[r]; ok {
		f, err := toFloat64(v)
		return f, true, err
	}
	if v, ok := pa.kw[d]; ok {
		f, err := toFloat64(v)
		return f / 2, true, err
	}
	return 0, false, nil
}

func requireRadius(pa kwArgs) (float64, error) {
	f, ok, err := radiusArg(pa, "r", "d")
	if ok || err != nil {
		return f, err
	}
	if len(pa.positional) > 0 {
		return toFloat64(pa.positional[0])
	}
	return 0, fmt.Errorf("radius required (:r or :d)")
}

// sizeArg reads a size from :size, the per axis keywords or the leading
// positional numbers. A single number applies to every axis.
func sizeArg(pa kwArgs, axes ...string) ([]float64, error) {
	out := make([]float64, len(axes))
	fill := func(f float64) {
		for i := range out {
			out[i] = f
		}
	}
	src := pa.positional
	if v, ok := pa.kw["size"]; ok {
		src = []zygo.Sexp{v}
	}
	switch {
	case len(src) == 0:
	case len(src) >= len(axes):
		for i := range axes {
			f, err := toFloat64(src[i])
			if err != nil {
				return nil, err
			}
			out[i] = f
		}
	default:
		if f, err := toFloat64(src[0]); err == nil {
			fill(f)
			break
		}
		v, err := toVec3(src[0])
		if err != nil {
			return nil, fmt.Errorf("size: %w", err)
		}
		copy(out, []float64{v.X, v.Y, v.Z})
	}
	for i, axis := range axes {
		v, ok := pa.kw[axis]
		if !ok {
			continue
		}
		f, err := toFloat64(v)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", axis, err)
		}
		out[i] = f
	}
	return out, nil
}

// listArg reads a list from the keyword or the first positional argument.
func listArg(pa kwArgs, key string) (zygo.Sexp, error) {
	if v, ok := pa.kw[key]; ok {
		return v, nil
	}
	if len(pa.positional) > 0 {
		return pa.positional[0], nil
	}
	return nil, fmt.Errorf(":%s required", key)
}

func toPoints2(s zygo.Sexp) ([]vmath.Vec2, error) {
	items, err := sexpListToSlice(s)
	if err != nil {
		return nil, err
	}
	out := make([]vmath.Vec2, len(items))
	for i, it := range items {
		if out[i], err = toVec2(it); err != nil {
			return nil, fmt.Errorf("point %d: %w", i, err)
		}
	}
	return out, nil
}

func toPoints3(s zygo.Sexp) ([]vmath.Vec3, error) {
	items, err := sexpListToSlice(s)
	if err != nil {
		return nil, err
	}
	out := make([]vmath.Vec3, len(items))
	for i, it := range items {
		if out[i], err = toVec3(it); err != nil {
			return nil, fmt.Errorf("point %d: %w", i, err)
		}
	}
	return out, nil
}

// childItems collects the item arguments, skipping a leading non-item
// parameter when skip is set.
func childItems(pa kwArgs, skip bool) ([]tree.Item, error) {
	args := pa.positional
	if skip && len(args) > 0 {
		if _, ok := args[0].(*sexpItem); !ok {
			args = args[1:]
		}
	}
	children, err := toItems(args)
	if err != nil {
		return nil, err
	}
	if len(children) == 0 {
		return nil, fmt.Errorf("at least one child required")
	}
	return children, nil
}

// registerShapes installs the planar primitives.
func registerShapes(env *zygo.Zlisp) {
	// (circle 5) (circle :d 10 :fn 32)
	addItem(env, "circle", func(pa kwArgs, opts []tree.Option) (func() tree.Item, error) {
		r, err := requireRadius(pa)
		if err != nil {
			return nil, err
		}
		return func() tree.Item { return shape.NewCircle(r, opts...) }, nil
	})

	// (square 10) (square 10 20) (square :size (vec2 10 20))
	addItem(env, "square", func(pa kwArgs, opts []tree.Option) (func() tree.Item, error) {
		size, err := sizeArg(pa, "x", "y")
		if err != nil {
			return nil, err
		}
		return func() tree.Item { return shape.NewSquare(size[0], size[1], opts...) }, nil
	})

	// (polygon :points (list (vec2 0 0) ...) :paths (list (list 0 1 2)))
	addItem(env, "polygon", func(pa kwArgs, opts []tree.Option) (func() tree.Item, error) {
		src, err := listArg(pa, "points")
		if err != nil {
			return nil, err
		}
		points, err := toPoints2(src)
		if err != nil {
			return nil, fmt.Errorf("points: %w", err)
		}
		var paths [][]int
		if v, ok := pa.kw["paths"]; ok {
			if paths, err = toIndexLists(v); err != nil {
				return nil, fmt.Errorf("paths: %w", err)
			}
		}
		return func() tree.Item { return shape.NewPolygon(points, paths, opts...) }, nil
	})

	// (bezier :points (list (vec2 0 0) ...))
	addItem(env, "bezier", func(pa kwArgs, opts []tree.Option) (func() tree.Item, error) {
		src, err := listArg(pa, "points")
		if err != nil {
			return nil, err
		}
		points, err := toPoints2(src)
		if err != nil {
			return nil, fmt.Errorf("points: %w", err)
		}
		return func() tree.Item { return shape.NewBezier(points, opts...) }, nil
	})

	// (polar :anchors (list (vec2 angle radius) ...))
	addItem(env, "polar", func(pa kwArgs, opts []tree.Option) (func() tree.Item, error) {
		src, err := listArg(pa, "anchors")
		if err != nil {
			return nil, err
		}
		anchors, err := toPoints2(src)
		if err != nil {
			return nil, fmt.Errorf("anchors: %w", err)
		}
		return func() tree.Item { return shape.NewPolar(anchors, opts...) }, nil
	})

	// (empty)
	addItem(env, "empty", func(pa kwArgs, opts []tree.Option) (func() tree.Item, error) {
		return func() tree.Item { return tree.NewEmpty(opts...) }, nil
	})
}

// registerSolids installs the spatial primitives and extrusions.
func registerSolids(env *zygo.Zlisp) {
	// (sphere 5) (sphere :d 10)
	addItem(env, "sphere", func(pa kwArgs, opts []tree.Option) (func() tree.Item, error) {
		r, err := requireRadius(pa)
		if err != nil {
			return nil, err
		}
		return func() tree.Item { return solid.NewSphere(r, opts...) }, nil
	})

	// (cube 10) (cube 10 20 30) (cube :size (vec3 10 20 30))
	addItem(env, "cube", func(pa kwArgs, opts []tree.Option) (func() tree.Item, error) {
		size, err := sizeArg(pa, "x", "y", "z")
		if err != nil {
			return nil, err
		}
		return func() tree.Item { return solid.NewCube(size[0], size[1], size[2], opts...) }, nil
	})

	// (cylinder :h 10 :r 2) (cylinder :h 10 :r1 2 :r2 1)
	addItem(env, "cylinder", func(pa kwArgs, opts []tree.Option) (func() tree.Item, error) {
		h, err := floatArg("cylinder", pa, 0, "h", "height")
		if err != nil {
			return nil, err
		}
		r, hasR, err := radiusArg(pa, "r", "d")
		if err != nil {
			return nil, err
		}
		r1, has1, err := radiusArg(pa, "r1", "d1")
		if err != nil {
			return nil, err
		}
		r2, has2, err := radiusArg(pa, "r2", "d2")
		if err != nil {
			return nil, err
		}
		if !has1 {
			r1 = r
		}
		if !has2 {
			r2 = r
		}
		if !hasR && !has1 && !has2 {
			return nil, fmt.Errorf("radius required (:r, :r1 or :r2)")
		}
		return func() tree.Item { return solid.NewCylinder(h, r1, r2, opts...) }, nil
	})

	// (polyhedron :points (list (vec3 0 0 0) ...) :faces (list (list 0 1 2) ...))
	addItem(env, "polyhedron", func(pa kwArgs, opts []tree.Option) (func() tree.Item, error) {
		src, err := listArg(pa, "points")
		if err != nil {
			return nil, err
		}
		points, err := toPoints3(src)
		if err != nil {
			return nil, fmt.Errorf("points: %w", err)
		}
		f, ok := pa.kw["faces"]
		if !ok {
			return nil, fmt.Errorf(":faces required")
		}
		faces, err := toIndexLists(f)
		if err != nil {
			return nil, fmt.Errorf("faces: %w", err)
		}
		return func() tree.Item { return solid.NewPolyhedron(points, faces, opts...) }, nil
	})

	// (linear-extrude :height 10 :twist 90 :scale 0.5 child...)
	addItem(env, "linear-extrude", func(pa kwArgs, opts []tree.Option) (func() tree.Item, error) {
		h, err := floatArg("linear-extrude", pa, 0, "height", "h")
		if err != nil {
			return nil, err
		}
		twist, err := floatArg("linear-extrude", pa, 0, "twist")
		if err != nil {
			return nil, err
		}
		scale, err := floatArg("linear-extrude", pa, 1, "scale")
		if err != nil {
			return nil, err
		}
		children, err := childItems(pa, false)
		if err != nil {
			return nil, err
		}
		return func() tree.Item {
			return solid.NewLinearExtrude(single(children), h, twist, scale, opts...)
		}, nil
	})

	// (rotate-extrude :angle 180 child...)
	addItem(env, "rotate-extrude", func(pa kwArgs, opts []tree.Option) (func() tree.Item, error) {
		angle, err := floatArg("rotate-extrude", pa, 360, "angle")
		if err != nil {
			return nil, err
		}
		children, err := childItems(pa, false)
		if err != nil {
			return nil, err
		}
		return func() tree.Item { return solid.NewRotateExtrude(single(children), angle, opts...) }, nil
	})
}

// vectorArg reads a transform vector from a leading positional argument,
// :by, and the per axis keywords. fromNumber interprets a lone number; nil
// rejects one.
func vectorArg(pa kwArgs, def float64, fromNumber func(float64) vmath.Vec3) (vmath.Vec3, error) {
	v := vmath.V3(def, def, def)
	if len(pa.positional) > 0 {
		if _, isItem := pa.positional[0].(*sexpItem); !isItem {
			first := pa.positional[0]
			if f, err := toFloat64(first); err == nil {
				if fromNumber == nil {
					return v, fmt.Errorf("expected a vector, got %g", f)
				}
				v = fromNumber(f)
			} else if v, err = toVec3(first); err != nil {
				return v, err
			}
		}
	}
	if by, ok := pa.kw["by"]; ok {
		var err error
		if v, err = toVec3(by); err != nil {
			return v, fmt.Errorf("by: %w", err)
		}
	}
	for i, axis := range []string{"x", "y", "z"} {
		s, ok := pa.kw[axis]
		if !ok {
			continue
		}
		f, err := toFloat64(s)
		if err != nil {
			return v, fmt.Errorf("%s: %w", axis, err)
		}
		switch i {
		case 0:
			v.X = f
		case 1:
			v.Y = f
		default:
			v.Z = f
		}
	}
	return v, nil
}

// registerOperations installs booleans, transforms, groups and parts.
func registerOperations(env *zygo.Zlisp) {
	// (union a b ...)
	addItem(env, "union", func(pa kwArgs, opts []tree.Option) (func() tree.Item, error) {
		children, err := childItems(pa, false)
		if err != nil {
			return nil, err
		}
		if len(children) == 1 && len(opts) == 0 {
			return func() tree.Item { return children[0] }, nil
		}
		return func() tree.Item { return boolean.NewUnion(children, opts...) }, nil
	})

	// (difference base cut...)  several cuts are united first
	addItem(env, "difference", func(pa kwArgs, opts []tree.Option) (func() tree.Item, error) {
		children, err := childItems(pa, false)
		if err != nil {
			return nil, err
		}
		if len(children) < 2 {
			return nil, fmt.Errorf("base and at least one cut required")
		}
		return func() tree.Item {
			cut := children[1]
			if len(children) > 2 {
				cut = boolean.NewUnion(children[1:])
			}
			return boolean.NewDifference(children[0], cut, opts...)
		}, nil
	})

	// (intersection a b ...)
	addItem(env, "intersection", func(pa kwArgs, opts []tree.Option) (func() tree.Item, error) {
		children, err := childItems(pa, false)
		if err != nil {
			return nil, err
		}
		if len(children) < 2 {
			return nil, fmt.Errorf("at least two operands required")
		}
		return func() tree.Item {
			out := children[0]
			for i, c := range children[1:] {
				if i == len(children)-2 {
					return boolean.NewIntersection(out, c, opts...)
				}
				out = boolean.NewIntersection(out, c)
			}
			return out
		}, nil
	})

	// (translate (vec3 1 2 3) child...) (translate :x 5 child)
	addItem(env, "translate", func(pa kwArgs, opts []tree.Option) (func() tree.Item, error) {
		v, err := vectorArg(pa, 0, nil)
		if err != nil {
			return nil, err
		}
		children, err := childItems(pa, true)
		if err != nil {
			return nil, err
		}
		return func() tree.Item { return transform.NewTranslate(single(children), v.X, v.Y, v.Z, opts...) }, nil
	})

	// (rotate 45 child) rotates about z; (rotate (vec3 90 0 0) child)
	addItem(env, "rotate", func(pa kwArgs, opts []tree.Option) (func() tree.Item, error) {
		v, err := vectorArg(pa, 0, func(f float64) vmath.Vec3 { return vmath.V3(0, 0, f) })
		if err != nil {
			return nil, err
		}
		children, err := childItems(pa, true)
		if err != nil {
			return nil, err
		}
		return func() tree.Item { return transform.NewRotate(single(children), v.X, v.Y, v.Z, opts...) }, nil
	})

	// (scale 2 child) (scale (vec3 1 1 2) child)
	addItem(env, "scale", func(pa kwArgs, opts []tree.Option) (func() tree.Item, error) {
		v, err := vectorArg(pa, 1, func(f float64) vmath.Vec3 { return vmath.V3(f, f, f) })
		if err != nil {
			return nil, err
		}
		children, err := childItems(pa, true)
		if err != nil {
			return nil, err
		}
		return func() tree.Item { return transform.NewScale(single(children), v.X, v.Y, v.Z, opts...) }, nil
	})

	// (group a b ...)
	addItem(env, "group", func(pa kwArgs, opts []tree.Option) (func() tree.Item, error) {
		children, err := toItems(pa.positional)
		if err != nil {
			return nil, err
		}
		return func() tree.Item { return tree.NewGroup(children, opts...) }, nil
	})

	// (part "leg" child)
	addItem(env, "part", func(pa kwArgs, opts []tree.Option) (func() tree.Item, error) {
		if len(pa.positional) < 2 {
			return nil, fmt.Errorf("a part name and a child are required")
		}
		partName, err := toString(pa.positional[0])
		if err != nil {
			return nil, fmt.Errorf("name: %w", err)
		}
		children, err := childItems(pa, true)
		if err != nil {
			return nil, err
		}
		return func() tree.Item { return tree.NewPart(partName, single(children), opts...) }, nil
	})
}
