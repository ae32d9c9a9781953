// Package preview rasterizes planar designs into images for quick visual
// checks of profiles and outlines.
package preview

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"
	"math"

	"golang.org/x/image/bmp"
	"golang.org/x/image/vector"

	"github.com/chazu/csgtree/pkg/boolean"
	"github.com/chazu/csgtree/pkg/rewrite"
	"github.com/chazu/csgtree/pkg/shape"
	"github.com/chazu/csgtree/pkg/transform"
	"github.com/chazu/csgtree/pkg/tree"
	"github.com/chazu/csgtree/pkg/vmath"
)

// ErrNotPlanar is returned for items that are not two dimensional.
var ErrNotPlanar = errors.New("preview: item is not planar")

// Options control the output image.
type Options struct {
	// Size is the length of the longer image side in pixels.
	Size int
	// Margin is left empty on every side, in pixels.
	Margin     int
	Fill       color.Color
	Background color.Color
}

// DefaultOptions renders black on white at 512 pixels.
var DefaultOptions = Options{Size: 512, Margin: 8, Fill: color.Black, Background: color.White}

// layer is one outline painted either with the fill or the background.
type layer struct {
	ring  []vmath.Vec2
	clear bool
}

// Render normalizes a planar item and paints it. Differences are painted
// by clearing the cut areas, so a cut only removes what was drawn before it.
func Render(it tree.Item, attrs tree.Attributes, opts Options) (*image.RGBA, error) {
	if it.Dim() != tree.Dim2 {
		return nil, fmt.Errorf("%w: %s is %s", ErrNotPlanar, it.Kind(), it.Dim())
	}
	if opts.Size <= 2*opts.Margin {
		return nil, fmt.Errorf("preview: size %d leaves no room inside margin %d", opts.Size, opts.Margin)
	}
	norm := rewrite.Normalize(it, attrs, rewrite.OutputPolygon)

	var c collector
	if err := c.walk(norm, attrs, vmath.Identity2(), false); err != nil {
		return nil, err
	}
	if len(c.layers) == 0 {
		return nil, fmt.Errorf("preview: %s has no outline", it.Kind())
	}
	return paint(c.layers, opts), nil
}

type collector struct {
	layers []layer
}

func (c *collector) walk(it tree.Item, attrs tree.Attributes, m vmath.Affine2, clear bool) error {
	attrs = attrs.Override(it.Attributes())

	switch v := it.(type) {
	case *tree.Empty:
		return nil
	case transform.Transform:
		return c.walk(v.Children()[0], attrs, vmath.Compose2(v.Matrix2(), m), clear)
	case boolean.Operation:
		switch v.Op() {
		case boolean.OpIntersection:
			return fmt.Errorf("preview: intersections cannot be painted")
		case boolean.OpDifference:
			if err := c.walk(v.Children()[0], attrs, m, clear); err != nil {
				return err
			}
			for _, cut := range v.Children()[1:] {
				if err := c.walk(cut, attrs, m, !clear); err != nil {
					return err
				}
			}
			return nil
		}
		return c.walkAll(v.Children(), attrs, m, clear)
	case *tree.Group:
		return c.walkAll(v.Children(), attrs, m, clear)
	}

	poly, ok := shape.ToPolygon(it, attrs.Rasterizing())
	if !ok {
		return fmt.Errorf("preview: cannot paint %s", it.Kind())
	}
	for i, path := range poly.Paths() {
		ring := make([]vmath.Vec2, len(path))
		for j, p := range path {
			ring[j] = vmath.Apply2(m, p)
		}
		// Later outlines of a polygon are holes.
		c.layers = append(c.layers, layer{ring: ring, clear: clear != (i > 0)})
	}
	return nil
}

func (c *collector) walkAll(items []tree.Item, attrs tree.Attributes, m vmath.Affine2, clear bool) error {
	for _, child := range items {
		if err := c.walk(child, attrs, m, clear); err != nil {
			return err
		}
	}
	return nil
}

func paint(layers []layer, opts Options) *image.RGBA {
	lo := vmath.V2(math.Inf(1), math.Inf(1))
	hi := vmath.V2(math.Inf(-1), math.Inf(-1))
	for _, l := range layers {
		for _, p := range l.ring {
			lo = vmath.V2(math.Min(lo.X, p.X), math.Min(lo.Y, p.Y))
			hi = vmath.V2(math.Max(hi.X, p.X), math.Max(hi.Y, p.Y))
		}
	}
	span := math.Max(hi.X-lo.X, hi.Y-lo.Y)
	if span <= 0 {
		span = 1
	}
	inner := float64(opts.Size - 2*opts.Margin)
	scale := inner / span
	extent := func(d float64) int { return int(math.Ceil(d*scale-1e-9)) + 2*opts.Margin }
	w, h := extent(hi.X-lo.X), extent(hi.Y-lo.Y)
	w, h = max(w, 1), max(h, 1)

	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), image.NewUniform(opts.Background), image.Point{}, draw.Src)

	// Image y grows downwards.
	px := func(p vmath.Vec2) (float32, float32) {
		return float32(float64(opts.Margin) + (p.X-lo.X)*scale),
			float32(float64(h-opts.Margin) - (p.Y-lo.Y)*scale)
	}
	fill := image.NewUniform(opts.Fill)
	bg := image.NewUniform(opts.Background)
	z := vector.NewRasterizer(w, h)
	for _, l := range layers {
		if len(l.ring) < 3 {
			continue
		}
		z.Reset(w, h)
		z.DrawOp = draw.Over
		z.MoveTo(px(l.ring[0]))
		for _, p := range l.ring[1:] {
			z.LineTo(px(p))
		}
		z.ClosePath()
		src := fill
		if l.clear {
			src = bg
		}
		z.Draw(img, img.Bounds(), src, image.Point{})
	}
	return img
}

// Format selects the image encoding.
type Format string

const (
	FormatPNG Format = "png"
	FormatBMP Format = "bmp"
)

// Encode writes img in the given format.
func Encode(w io.Writer, img image.Image, f Format) error {
	switch f {
	case FormatPNG, "":
		return png.Encode(w, img)
	case FormatBMP:
		return bmp.Encode(w, img)
	}
	return fmt.Errorf("preview: unknown format %q", f)
}
