package preview_test

import (
	"bytes"
	"image"
	"image/color"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chazu/csgtree/pkg/boolean"
	"github.com/chazu/csgtree/pkg/cache"
	"github.com/chazu/csgtree/pkg/gear"
	"github.com/chazu/csgtree/pkg/preview"
	"github.com/chazu/csgtree/pkg/shape"
	"github.com/chazu/csgtree/pkg/solid"
	"github.com/chazu/csgtree/pkg/transform"
	"github.com/chazu/csgtree/pkg/tree"
	"github.com/chazu/csgtree/pkg/vmath"
)

func TestMain(m *testing.M) {
	dir, err := os.MkdirTemp("", "preview-cache")
	if err != nil {
		panic(err)
	}
	cache.Configure(cache.Config{Dir: dir, Backend: cache.BackendDir})
	code := m.Run()
	_ = cache.Shutdown()
	_ = os.RemoveAll(dir)
	os.Exit(code)
}

var (
	black = color.RGBA{A: 255}
	white = color.RGBA{R: 255, G: 255, B: 255, A: 255}
	opts  = preview.Options{Size: 100, Margin: 10, Fill: color.Black, Background: color.White}
)

func render(t *testing.T, it tree.Item) *image.RGBA {
	t.Helper()
	img, err := preview.Render(it, tree.Attributes{}, opts)
	require.NoError(t, err)
	return img
}

func TestRenderCircle(t *testing.T) {
	img := render(t, shape.NewCircle(10))
	assert.Equal(t, image.Rect(0, 0, 100, 100), img.Bounds())
	assert.Equal(t, black, img.RGBAAt(50, 50))
	assert.Equal(t, white, img.RGBAAt(2, 2))
	assert.Equal(t, white, img.RGBAAt(15, 15), "outside the circle but inside the margin box")
}

func TestRenderKeepsAspect(t *testing.T) {
	img := render(t, shape.NewSquare(40, 10))
	assert.Equal(t, 100, img.Bounds().Dx())
	assert.Equal(t, 40, img.Bounds().Dy())
}

func TestRenderDifferenceClearsCut(t *testing.T) {
	img := render(t, boolean.NewDifference(shape.NewSquare(20, 20), shape.NewCircle(5)))
	assert.Equal(t, white, img.RGBAAt(50, 50))
	assert.Equal(t, black, img.RGBAAt(12, 12))
}

func TestRenderPolygonHole(t *testing.T) {
	points := []vmath.Vec2{
		vmath.V2(-10, -10), vmath.V2(10, -10), vmath.V2(10, 10), vmath.V2(-10, 10),
		vmath.V2(-5, -5), vmath.V2(5, -5), vmath.V2(5, 5), vmath.V2(-5, 5),
	}
	img := render(t, shape.NewPolygon(points, [][]int{{0, 1, 2, 3}, {4, 5, 6, 7}}))
	assert.Equal(t, white, img.RGBAAt(50, 50))
	assert.Equal(t, black, img.RGBAAt(12, 50))
}

func TestRenderTransformed(t *testing.T) {
	// Two discs side by side: the gap between them stays empty.
	it := tree.NewGroup([]tree.Item{
		transform.NewTranslate(shape.NewCircle(5), -10, 0, 0),
		transform.NewTranslate(shape.NewCircle(5), 10, 0, 0),
	})
	img := render(t, it)
	mid := img.Bounds().Dy() / 2
	assert.Equal(t, white, img.RGBAAt(50, mid))
	assert.Equal(t, black, img.RGBAAt(20, mid))
	assert.Equal(t, black, img.RGBAAt(80, mid))
}

func TestRenderGearProfile(t *testing.T) {
	img := render(t, gear.NewProfile(gear.Params{N: 20, M: 2}))
	assert.Equal(t, black, img.RGBAAt(50, 50))
	assert.Equal(t, white, img.RGBAAt(1, 1))
}

func TestRenderErrors(t *testing.T) {
	_, err := preview.Render(solid.NewCube(1, 1, 1), tree.Attributes{}, opts)
	assert.ErrorIs(t, err, preview.ErrNotPlanar)

	_, err = preview.Render(boolean.NewIntersection(shape.NewCircle(1), shape.NewSquare(1, 1)), tree.Attributes{}, opts)
	assert.ErrorContains(t, err, "intersection")

	_, err = preview.Render(shape.NewCircle(1), tree.Attributes{}, preview.Options{Size: 10, Margin: 5})
	assert.Error(t, err)
}

func TestEncode(t *testing.T) {
	img := render(t, shape.NewCircle(1))

	var buf bytes.Buffer
	require.NoError(t, preview.Encode(&buf, img, preview.FormatPNG))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("\x89PNG")))

	buf.Reset()
	require.NoError(t, preview.Encode(&buf, img, preview.FormatBMP))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("BM")))

	assert.Error(t, preview.Encode(&buf, img, "gif"))
}
