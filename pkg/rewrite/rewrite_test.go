package rewrite_test

import (
	"errors"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chazu/csgtree/pkg/boolean"
	"github.com/chazu/csgtree/pkg/cache"
	"github.com/chazu/csgtree/pkg/object"
	"github.com/chazu/csgtree/pkg/rewrite"
	"github.com/chazu/csgtree/pkg/shape"
	"github.com/chazu/csgtree/pkg/solid"
	"github.com/chazu/csgtree/pkg/transform"
	"github.com/chazu/csgtree/pkg/tree"
	"github.com/chazu/csgtree/pkg/vmath"
)

func TestMain(m *testing.M) {
	dir, err := os.MkdirTemp("", "rewrite-cache")
	if err != nil {
		panic(err)
	}
	cache.Configure(cache.Config{Dir: dir, Persist: false, Backend: cache.BackendDir})
	code := m.Run()
	_ = cache.Shutdown()
	_ = os.RemoveAll(dir)
	os.Exit(code)
}

var none tree.Attributes

func red() tree.Attributes { return tree.NewAttributes(map[string]any{"color": "red"}) }

func TestRemoveEmpty(t *testing.T) {
	cube := solid.NewCube(1, 1, 1)
	sphere := solid.NewSphere(1)

	t.Run("untouched", func(t *testing.T) {
		root := boolean.NewUnion([]tree.Item{cube, sphere})
		assert.Same(t, root, rewrite.RemoveEmpty(root, none))
	})
	t.Run("group", func(t *testing.T) {
		got := rewrite.RemoveEmpty(tree.NewGroup([]tree.Item{tree.NewEmpty(), cube}), none)
		require.Equal(t, tree.KindGroup, got.Kind())
		assert.Equal(t, []tree.Item{cube}, tree.ChildrenOf(got))
	})
	t.Run("difference without cut", func(t *testing.T) {
		got := rewrite.RemoveEmpty(boolean.NewDifference(cube, tree.NewEmpty()), none)
		assert.Same(t, cube, got)
	})
	t.Run("difference without base", func(t *testing.T) {
		assert.Nil(t, rewrite.RemoveEmpty(boolean.NewDifference(tree.NewEmpty(), cube), none))
	})
	t.Run("intersection", func(t *testing.T) {
		assert.Nil(t, rewrite.RemoveEmpty(boolean.NewIntersection(cube, tree.NewEmpty()), none))
	})
	t.Run("union keeps attributes", func(t *testing.T) {
		u := boolean.NewUnion([]tree.Item{tree.NewEmpty(), sphere}, tree.WithAttributes(red()))
		got := rewrite.RemoveEmpty(u, none)
		require.Equal(t, solid.KindSphere, got.Kind())
		v, ok := got.Attributes().Get("color")
		require.True(t, ok)
		assert.Equal(t, "red", v)
	})
	t.Run("single child nodes", func(t *testing.T) {
		assert.Nil(t, rewrite.RemoveEmpty(transform.NewTranslate(tree.NewEmpty(), 1, 0, 0), none))
		assert.Nil(t, rewrite.RemoveEmpty(solid.NewLinearExtrude(tree.NewEmpty(), 1, 0, 1), none))
	})
	t.Run("root", func(t *testing.T) {
		assert.Nil(t, rewrite.RemoveEmpty(tree.NewEmpty(), none))
	})
}

func TestGroupsToUnions(t *testing.T) {
	a, b := solid.NewCube(1, 1, 1), solid.NewSphere(2)

	got := rewrite.GroupsToUnions(tree.NewGroup([]tree.Item{a, b}, tree.Named("pair")), none)
	require.Equal(t, boolean.KindUnion, got.Kind())
	assert.Equal(t, "pair", got.Name())
	assert.Len(t, tree.ChildrenOf(got), 2)

	assert.Same(t, a, rewrite.GroupsToUnions(tree.NewGroup([]tree.Item{a}), none))

	mixed := tree.NewGroup([]tree.Item{a, shape.NewCircle(1)})
	assert.Same(t, mixed, rewrite.GroupsToUnions(mixed, none))
}

func TestFlattenUnions(t *testing.T) {
	a, b, c := solid.NewCube(1, 1, 1), solid.NewSphere(1), solid.NewCylinder(1, 1, 1)

	nested := boolean.NewUnion([]tree.Item{boolean.NewUnion([]tree.Item{a, b}), c})
	got := rewrite.FlattenUnions(nested, none)
	assert.Equal(t, []tree.Item{a, b, c}, tree.ChildrenOf(got))

	marked := boolean.NewUnion([]tree.Item{boolean.NewUnion([]tree.Item{a, b}, tree.WithAttributes(red())), c})
	assert.Same(t, marked, rewrite.FlattenUnions(marked, none))
}

func TestPushTransformsInside(t *testing.T) {
	a, b := solid.NewCube(1, 1, 1), solid.NewSphere(1)

	t.Run("distribute", func(t *testing.T) {
		root := transform.NewTranslate(boolean.NewDifference(a, b), 1, 2, 3)
		got := rewrite.PushTransformsInside(root, none)
		require.Equal(t, boolean.KindDifference, got.Kind())
		for _, c := range tree.ChildrenOf(got) {
			tr, ok := c.(transform.Transform)
			require.True(t, ok)
			assert.Equal(t, vmath.V3(1, 2, 3), tr.Vector())
		}
	})
	t.Run("merge", func(t *testing.T) {
		root := transform.NewTranslate(transform.NewTranslate(a, 1, 0, 0), 0, 2, 0)
		got := rewrite.PushTransformsInside(root, none).(transform.Transform)
		assert.Equal(t, vmath.V3(1, 2, 0), got.Vector())
		assert.Same(t, a, got.Children()[0])
	})
	t.Run("merge then distribute", func(t *testing.T) {
		root := transform.NewScale(transform.NewScale(boolean.NewUnion([]tree.Item{a, b}), 2, 2, 2), 3, 1, 1)
		got := rewrite.PushTransformsInside(root, none)
		require.Equal(t, boolean.KindUnion, got.Kind())
		first := tree.ChildrenOf(got)[0].(transform.Transform)
		assert.Equal(t, vmath.V3(6, 2, 2), first.Vector())
	})
	t.Run("different axes", func(t *testing.T) {
		root := transform.NewRotate(transform.NewRotate(a, 0, 30, 0), 45, 0, 0)
		assert.Same(t, root, rewrite.PushTransformsInside(root, none))
	})
	t.Run("attributes pin the transform", func(t *testing.T) {
		root := transform.NewTranslate(boolean.NewUnion([]tree.Item{a, b}), 1, 0, 0, tree.WithAttributes(red()))
		assert.Same(t, root, rewrite.PushTransformsInside(root, none))
	})
}

func TestPushExtrusionsInside(t *testing.T) {
	profile := boolean.NewUnion([]tree.Item{shape.NewCircle(1), shape.NewSquare(1, 2)})
	got := rewrite.PushExtrusionsInside(solid.NewLinearExtrude(profile, 5, 10, 1), none)

	require.Equal(t, boolean.KindUnion, got.Kind())
	assert.Equal(t, tree.Dim3, got.Dim())
	for _, c := range tree.ChildrenOf(got) {
		ext, ok := c.(*solid.LinearExtrude)
		require.True(t, ok)
		assert.Equal(t, 5.0, ext.Height())
		assert.Equal(t, 10.0, ext.Twist())
	}

	plain := solid.NewRotateExtrude(shape.NewCircle(1), 90)
	assert.Same(t, plain, rewrite.PushExtrusionsInside(plain, none))
}

func polar() *shape.Polar {
	return shape.NewPolar([]vmath.Vec2{{X: 0, Y: 2}, {X: 120, Y: 3}, {X: 240, Y: 2}}, tree.Named("blob"))
}

func TestRasterizeComplex(t *testing.T) {
	root := solid.NewLinearExtrude(polar(), 1, 0, 1)
	got := rewrite.RasterizeComplex(root, none)
	poly, ok := tree.ChildrenOf(got)[0].(*shape.Polygon)
	require.True(t, ok)
	assert.Equal(t, "blob", poly.Name())

	coarse := rewrite.RasterizeComplex(root, tree.NewAttributes(map[string]any{tree.AttrMinSize: 1.0}))
	fine := rewrite.RasterizeComplex(root, tree.NewAttributes(map[string]any{tree.AttrMinSize: 0.001}))
	n := func(it tree.Item) int { return len(tree.ChildrenOf(it)[0].(*shape.Polygon).Points()) }
	assert.Less(t, n(coarse), n(fine))

	bez := rewrite.Rasterizer(rewrite.OutputBezier)(root, none)
	assert.Equal(t, shape.KindBezier, tree.ChildrenOf(bez)[0].Kind())
}

func TestCollectParts(t *testing.T) {
	bolt := func() tree.Item { return solid.NewCylinder(10, 1, 1) }
	root := tree.NewGroup([]tree.Item{
		tree.NewPart("bolt", bolt()),
		transform.NewTranslate(tree.NewPart("bolt", bolt()), 5, 0, 0),
		tree.NewPart("plate", solid.NewCube(20, 20, 1), tree.WithAttributes(red())),
	})

	parts, err := rewrite.CollectParts(root, none)
	require.NoError(t, err)
	require.Len(t, parts, 2)
	assert.Equal(t, "bolt", parts[0].Name)
	assert.Equal(t, 2, parts[0].Count)
	assert.Equal(t, "plate", parts[1].Name)
	_, ok := parts[1].Attributes.Get("color")
	assert.True(t, ok)

	bad := tree.NewGroup([]tree.Item{
		tree.NewPart("bolt", bolt()),
		tree.NewPart("bolt", solid.NewCylinder(12, 1, 1)),
	})
	_, err = rewrite.CollectParts(bad, none)
	var mismatch *rewrite.PartMismatchError
	require.True(t, errors.As(err, &mismatch))
	assert.Equal(t, "bolt", mismatch.Name)
}

func TestNormalize(t *testing.T) {
	root := transform.NewTranslate(tree.NewGroup([]tree.Item{
		tree.NewEmpty(),
		solid.NewLinearExtrude(polar(), 2, 0, 1),
		tree.NewGroup([]tree.Item{solid.NewSphere(1), solid.NewCube(1, 1, 1)}),
	}), 0, 0, 4)

	got := rewrite.Normalize(root, none, rewrite.OutputPolygon)
	require.Equal(t, boolean.KindUnion, got.Kind())
	children := tree.ChildrenOf(got)
	require.Len(t, children, 3)
	for _, c := range children {
		require.Equal(t, transform.KindTranslate, c.Kind())
	}
	ext := tree.ChildrenOf(children[0])[0]
	assert.Equal(t, shape.KindPolygon, tree.ChildrenOf(ext)[0].Kind())

	empty := rewrite.Normalize(tree.NewGroup([]tree.Item{tree.NewEmpty()}, tree.Named("void")), none, rewrite.OutputPolygon)
	assert.Equal(t, tree.KindEmpty, empty.Kind())
	assert.Equal(t, "void", empty.Name())
}

func TestNormalizeIsStable(t *testing.T) {
	root := tree.NewGroup([]tree.Item{solid.NewSphere(1), solid.NewCube(1, 1, 1)})
	once := rewrite.Normalize(root, none, rewrite.OutputPolygon)
	twice := rewrite.Normalize(once, none, rewrite.OutputPolygon)
	assert.True(t, object.Equal(once, twice))
}
