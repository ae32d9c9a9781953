package shape_test

import (
	"math"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chazu/csgtree/pkg/cache"
	"github.com/chazu/csgtree/pkg/object"
	"github.com/chazu/csgtree/pkg/shape"
	"github.com/chazu/csgtree/pkg/tree"
	"github.com/chazu/csgtree/pkg/vmath"
)

func TestMain(m *testing.M) {
	dir, err := os.MkdirTemp("", "shape-cache")
	if err != nil {
		panic(err)
	}
	cache.Configure(cache.Config{Dir: dir, Persist: false, Backend: cache.BackendDir})
	code := m.Run()
	_ = cache.Shutdown()
	_ = os.RemoveAll(dir)
	os.Exit(code)
}

var fine = tree.Rasterizing{MinAngle: 5, MinSize: 0.01, MinSlices: 1}

func TestConstructorsRejectBadInput(t *testing.T) {
	assert.Panics(t, func() { shape.NewCircle(0) })
	assert.Panics(t, func() { shape.NewSquare(1, -1) })
	assert.Panics(t, func() { shape.NewPolygon([]vmath.Vec2{{}, {X: 1}}, nil) })
	assert.Panics(t, func() {
		shape.NewPolygon([]vmath.Vec2{{}, {X: 1}, {Y: 1}}, [][]int{{0, 1, 3}})
	})
	assert.Panics(t, func() { shape.NewBezier(make([]vmath.Vec2, 5)) })
	assert.Panics(t, func() { shape.NewPolar([]vmath.Vec2{{X: 0, Y: 1}}) })
}

func TestShapesAre2D(t *testing.T) {
	items := []tree.Item{
		shape.NewCircle(1),
		shape.NewSquare(1, 2),
		shape.NewPolar([]vmath.Vec2{{X: 0, Y: 1}, {X: 180, Y: 2}}),
	}
	for _, it := range items {
		assert.Equal(t, tree.Dim2, it.Dim(), it.Kind())
		assert.True(t, tree.Is(it, shape.KindShape))
	}
	assert.True(t, tree.Is(items[2], shape.KindComplex))
}

func TestNameDoesNotAffectEquality(t *testing.T) {
	a := shape.NewCircle(3, tree.Named("a"))
	b := shape.NewCircle(3, tree.Named("b"))
	assert.True(t, object.Equal(a, b))
	assert.False(t, object.Equal(a, shape.NewCircle(4)))
}

func TestCircleToPolygon(t *testing.T) {
	c := shape.NewCircle(10, tree.Named("disk"))
	p, ok := shape.ToPolygon(c, fine)
	require.True(t, ok)
	assert.Equal(t, "disk", p.Name())

	pts := p.Points()
	assert.GreaterOrEqual(t, len(pts), fine.Fragments(10))
	for _, q := range pts {
		assert.InDelta(t, 10, q.Length(), 1e-9)
	}
	assert.Greater(t, vmath.Dist2(pts[0], pts[len(pts)-1]), 1e-6, "ring is not closed twice")
}

func TestSquareToPolygon(t *testing.T) {
	p, ok := shape.ToPolygon(shape.NewSquare(4, 2), fine)
	require.True(t, ok)
	assert.Equal(t, []vmath.Vec2{{X: -2, Y: -1}, {X: 2, Y: -1}, {X: 2, Y: 1}, {X: -2, Y: 1}}, p.Points())
}

func TestPolygonPaths(t *testing.T) {
	pts := []vmath.Vec2{{}, {X: 4}, {X: 4, Y: 4}, {Y: 4}, {X: 1, Y: 1}, {X: 2, Y: 1}, {X: 1, Y: 2}}
	p := shape.NewPolygon(pts, [][]int{{0, 1, 2, 3}, {4, 5, 6}})
	paths := p.Paths()
	require.Len(t, paths, 2)
	assert.Equal(t, pts[4:], paths[1])

	single := shape.NewPolygon(pts[:4], nil)
	assert.Equal(t, [][]vmath.Vec2{pts[:4]}, single.Paths())
}

func TestPolarStaysBetweenRadii(t *testing.T) {
	p := shape.NewPolar([]vmath.Vec2{{X: 0, Y: 5}, {X: 120, Y: 8}, {X: 240, Y: 5}})
	poly := p.ToPolygon(fine)
	for _, q := range poly.Points() {
		assert.GreaterOrEqual(t, q.Length(), 5-1e-9)
		assert.LessOrEqual(t, q.Length(), 8+1e-9)
	}
	first := poly.Points()[0]
	assert.InDelta(t, 5, first.X, 1e-9)
	assert.InDelta(t, 0, first.Y, 1e-9)
}

func TestPolarToBezierEndpoints(t *testing.T) {
	p := shape.NewPolar([]vmath.Vec2{{X: 0, Y: 5}, {X: 90, Y: 5}, {X: 180, Y: 5}, {X: 270, Y: 5}})
	b := p.ToBezier(fine)
	pts := b.Points()
	assert.Zero(t, (len(pts)-1)%3)
	assert.InDelta(t, 5, pts[0].X, 1e-9)
	for i := 0; i < len(pts); i += 3 {
		assert.InDelta(t, 5, pts[i].Length(), 0.05)
	}
}

func TestPolarRasterizationIsCached(t *testing.T) {
	p := shape.NewPolar([]vmath.Vec2{{X: 0, Y: 3}, {X: 150, Y: 6}, {X: 260, Y: 4}}, tree.Named("cam"))
	first := p.ToPolygon(fine)
	assert.Same(t, first, p.ToPolygon(fine))
	assert.Same(t, p.ToBezier(fine), p.ToBezier(fine))
	assert.NotSame(t, first, p.ToPolygon(tree.DefaultRasterizing), "tolerance is part of the key")

	renamed := object.Copy(p, object.F("name", "other")).(*shape.Polar)
	got := renamed.ToPolygon(fine)
	assert.Equal(t, "other", got.Name())
	assert.Equal(t, "cam", first.Name())
	assert.Equal(t, first.Points(), got.Points())
}

func TestBezierToPolygon(t *testing.T) {
	// A square drawn with straight cubics.
	corners := []vmath.Vec2{{}, {X: 3}, {X: 3, Y: 3}, {Y: 3}, {}}
	var chain []vmath.Vec2
	for i := 0; i < 4; i++ {
		a, b := corners[i], corners[i+1]
		if i == 0 {
			chain = append(chain, a)
		}
		chain = append(chain, vmath.Lerp2(a, b, 1.0/3), vmath.Lerp2(a, b, 2.0/3), b)
	}
	p, ok := shape.ToPolygon(shape.NewBezier(chain), fine)
	require.True(t, ok)
	for _, q := range p.Points() {
		onEdge := math.Abs(q.X) < 1e-9 || math.Abs(q.X-3) < 1e-9 || math.Abs(q.Y) < 1e-9 || math.Abs(q.Y-3) < 1e-9
		assert.True(t, onEdge, "%v", q)
	}
}

func TestToPolygonUnknown(t *testing.T) {
	_, ok := shape.ToPolygon(tree.NewEmpty(), fine)
	assert.False(t, ok)
}

func TestPolygonRoundTrip(t *testing.T) {
	p := shape.NewPolygon([]vmath.Vec2{{}, {X: 1}, {Y: 1}}, [][]int{{0, 1, 2}}, tree.Named("tri"))
	data, err := object.Marshal(p)
	require.NoError(t, err)
	got, err := object.Unmarshal(data)
	require.NoError(t, err)
	assert.True(t, object.Equal(p, got))
	assert.Equal(t, "tri", got.(*shape.Polygon).Name())
}

func TestPolarRoundTrip(t *testing.T) {
	p := shape.NewPolar([]vmath.Vec2{{X: 0, Y: 5}, {X: 120, Y: 8}, {X: 240, Y: 5}}, tree.Named("cam"))
	data, err := object.Marshal(p)
	require.NoError(t, err)
	got, err := object.Unmarshal(data)
	require.NoError(t, err)
	assert.True(t, object.Equal(p, got))
	back := got.(*shape.Polar)
	assert.Equal(t, p.Anchors(), back.Anchors())
	assert.Equal(t, "cam", back.Name())
}
