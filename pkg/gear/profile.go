package gear

import (
	"math"

	"github.com/chazu/csgtree/pkg/cache"
	"github.com/chazu/csgtree/pkg/dda"
	"github.com/chazu/csgtree/pkg/logging"
	"github.com/chazu/csgtree/pkg/object"
	"github.com/chazu/csgtree/pkg/shape"
	"github.com/chazu/csgtree/pkg/tree"
	"github.com/chazu/csgtree/pkg/vmath"
)

// KindProfile is the concrete kind of Profile.
const KindProfile tree.Kind = "gear.Profile"

var profileLineage = tree.Lineage(KindProfile, false, shape.KindComplex, shape.KindShape)

func init() {
	tree.Register(KindProfile, 1, func(f object.Fields) tree.Item {
		inner := f.Bool("inner")
		return newProfile(geometryFrom(f, inner), f.Float("mhf"), f.Float("rot"), tree.ItemBaseFrom(f))
	}, shape.KindComplex, shape.KindShape)
}

const (
	bisectLimit   = 1e-13
	maxBisections = 200
	// clearance is the bottom clearance as a multiple of the module.
	clearance = 0.167
)

// Profile is the 2D outline of a gear wheel, or of the cut of an inner
// gear.
type Profile struct {
	object.Base
	tree.ItemBase
	geo      Geometry
	mhf, rot float64

	c, db, v, da, r0, ra float64
	headAngle            float64
	toothAngleAtD0       float64
	toothAngleAtBase     float64
}

// NewProfile returns the outline of an external gear.
func NewProfile(p Params, opts ...tree.Option) *Profile {
	return newProfile(NewGeometry(p), mhfOrDefault(p.Mhf), p.Rot, tree.MakeItemBase(opts...))
}

// NewInnerProfile returns the outline cut out of an internal gear.
func NewInnerProfile(p Params, opts ...tree.Option) *Profile {
	g := NewGeometry(p)
	g.inner = true
	return newProfile(g, mhfOrDefault(p.Mhf), p.Rot, tree.MakeItemBase(opts...))
}

func mhfOrDefault(mhf float64) float64 {
	if mhf == 0 {
		return DefaultMinTipWidth
	}
	return mhf
}

func newProfile(g Geometry, mhf, rot float64, ib tree.ItemBase) *Profile {
	p := &Profile{ItemBase: ib, geo: g, mhf: mhf, rot: rot}
	a := g.alpha()
	p.c = clearance * g.m
	p.db = g.D0() * math.Cos(math.Atan(math.Tan(a)/math.Cos(math.Abs(g.beta()))))
	p.v = g.x * g.m
	p.da = g.Da() + 2*p.v

	// Tip shortening keeps the addendum inside the mating clearance and the
	// tip at least mhf*m wide.
	maxDa := (g.distanceToUncorrected() - (g.D0()/2 - g.m)) * 2
	p.da = math.Min(p.da, maxDa)
	if g.ToothWidthAtDiameter(p.da)/2 < mhf*g.m {
		p.da = p.findDiameterForWidth(g.D0(), p.da, mhf*g.m*2)
	}

	p.r0 = g.D0() / 2
	p.ra = p.da / 2
	p.headAngle = p.toothAngle(p.da)
	p.toothAngleAtD0 = p.toothAngle(g.D0())
	p.toothAngleAtBase = p.toothAngle(p.db)
	return p
}

// Geometry returns the gear geometry.
func (p *Profile) Geometry() Geometry { return p.geo }

// Da returns the addendum diameter after profile shift and tip shortening.
func (p *Profile) Da() float64 { return p.da }

// Db returns the base circle diameter.
func (p *Profile) Db() float64 { return p.db }

// Rotation returns the rotation in degrees.
func (p *Profile) Rotation() float64 { return p.rot }

func (p *Profile) TypeName() string     { return string(KindProfile) }
func (p *Profile) Kind() tree.Kind      { return KindProfile }
func (p *Profile) Lineage() []tree.Kind { return profileLineage }
func (p *Profile) Dim() tree.Dim        { return tree.Dim2 }
func (p *Profile) Fields() object.Fields {
	extra := append(p.geo.fields(),
		object.F("inner", p.geo.inner),
		object.F("mhf", p.mhf),
		object.F("rot", p.rot),
	)
	return p.ItemFields(extra...)
}

func (p *Profile) findDiameterForWidth(lo, hi, width float64) float64 {
	for range maxBisections {
		if hi-lo < bisectLimit {
			break
		}
		mid := (lo + hi) / 2
		if p.geo.ToothWidthAtDiameter(mid) < width {
			hi = mid
		} else {
			lo = mid
		}
	}
	return (lo + hi) / 2
}

// toothAngle returns the half angle a tooth spans at diameter d. Below the
// base circle (or the pitch circle of inner gears) the involute is
// mirrored.
func (p *Profile) toothAngle(d float64) float64 {
	pivot, pivotAngle := p.db, p.toothAngleAtBase
	if p.geo.inner {
		pivot, pivotAngle = p.geo.D0(), p.toothAngleAtD0
	}
	if d < pivot {
		md := 2*pivot - d
		return 2*pivotAngle - p.geo.ToothWidthAtDiameter(md)/md
	}
	return p.geo.ToothWidthAtDiameter(d) / d
}

func (p *Profile) flank(d float64, left bool, rotate float64) vmath.Vec2 {
	r := d / 2
	a := p.toothAngle(d) + rotate
	x := math.Sin(a) * r
	if left {
		x = -x
	}
	return vmath.V2(x, math.Cos(a)*r)
}

// undercut returns the trochoid traced by the tool tip at roll angle.
func (p *Profile) undercut(angle float64, mirror bool) vmath.Vec2 {
	g := p.geo
	reach := g.m + p.c/2
	half := (g.P0()/2 - reach*math.Tan(g.alpha())*2) / 2
	roll := p.r0 * angle
	cx := roll - half
	if angle > 0 {
		cx = roll + half
	}
	cy := p.r0 + p.v - reach
	rp := vmath.RotatePoint2(vmath.V2(-cx, cy), -vmath.Degrees(angle))
	if mirror {
		return vmath.MirrorX2(rp)
	}
	return rp
}

func (p *Profile) undercutToInvolute(angle float64) float64 {
	up := p.undercut(angle, false)
	r := up.Length()
	upAngle := math.Atan2(up.X, up.Y)
	return (upAngle - (p.toothAngle(2*r) - math.Pi/float64(p.geo.n))) * r
}

// undercutCut finds the roll angle where the undercut crosses the
// involute.
func (p *Profile) undercutCut() (float64, bool) {
	lo, hi := 0.0, math.Pi
	for range maxBisections {
		mid := (lo + hi) / 2
		d := p.undercutToInvolute(mid)
		if hi-lo < bisectLimit {
			return mid, math.Abs(d) <= 1e-9
		}
		if d > 0 {
			hi = mid
		} else {
			lo = mid
		}
	}
	return 0, false
}

// undercutNearest approaches the closest point of undercut and involute
// when they do not cross.
func (p *Profile) undercutNearest() float64 {
	lo, hi := 0.0, math.Pi
	for range maxBisections {
		if hi-lo < bisectLimit {
			break
		}
		mid := (lo + hi) / 2
		if p.undercutToInvolute((lo+mid)/2) < p.undercutToInvolute((hi+mid)/2) {
			hi = mid
		} else {
			lo = mid
		}
	}
	return (lo + hi) / 2
}

func (p *Profile) undercutSlope(phi float64) float64 {
	p1 := p.undercut(phi+1e-13, true)
	p2 := p.undercut(phi+1e-9, true)
	return math.Atan2(p2.Y-p1.Y, p2.X-p1.X)
}

// undercutLimit finds the roll angle where the undercut slope reaches 45
// degrees; below it the gap bottom is a clearance arc.
func (p *Profile) undercutLimit(lo, hi float64) float64 {
	for range maxBisections {
		if hi-lo < bisectLimit {
			break
		}
		mid := (lo + hi) / 2
		if p.undercutSlope(mid) < math.Pi/4 {
			lo = mid
		} else {
			hi = mid
		}
	}
	return (lo + hi) / 2
}

// ToothPath returns the boundary of a single tooth and the gap after it.
func (p *Profile) ToothPath() dda.Path {
	g := p.geo
	toothRot := math.Pi / float64(g.n)

	var startD float64
	var undercutRight, undercutLeft, bottom dda.Segment
	if g.inner {
		startD = g.D0() - g.m
	} else {
		angle, ok := p.undercutCut()
		if !ok {
			angle = p.undercutNearest()
		}
		startD = 2 * p.undercut(angle, false).Length()
		limit := p.undercutLimit(0, angle)
		mirrored := func(a float64) vmath.Vec2 { return p.undercut(a, true) }
		right := dda.NewElement(angle, limit, mirrored)
		left := dda.NewElement(-limit, -angle, mirrored)
		c1, c2 := right.PointAt(1), left.PointAt(0)
		bottom = newRootArc(p.undercutSlope(limit), vmath.Dist2(c1, c2), c1.Y)
		undercutRight, undercutLeft = right, left
	}

	leftFlank := dda.NewElement(p.da, startD, func(d float64) vmath.Vec2 { return p.flank(d, true, -toothRot) })
	rightFlank := dda.NewElement(startD, p.da, func(d float64) vmath.Vec2 { return p.flank(d, false, toothRot) })

	if g.inner {
		b, e := leftFlank.PointAt(0), rightFlank.PointAt(1)
		p1 := p.flank(p.da, true, 0)
		p2 := p.flank(p.da-1e-9, true, 0)
		head := newInnerHead(math.Atan2(p1.Y-p2.Y, p1.X-p2.X), vmath.Dist2(b, e), p1.Y, toothRot)
		ir := p.r0 - g.m/2
		begin := p.toothAngle(2*ir) - toothRot
		base := dda.NewElement(-begin, begin, func(a float64) vmath.Vec2 {
			return vmath.V2(math.Sin(a)*ir, math.Cos(a)*ir)
		})
		return dda.NewPath(rightFlank, head, leftFlank, base)
	}

	head := dda.NewElement(p.headAngle, -p.headAngle, func(a float64) vmath.Vec2 {
		return vmath.V2(math.Sin(a+toothRot)*p.ra, math.Cos(a+toothRot)*p.ra)
	})
	return dda.NewPath(rightFlank, head, leftFlank, undercutRight, bottom, undercutLeft)
}

// rootArc closes the gap bottom between the two undercut branches.
type rootArc struct {
	slope, radius, center float64
}

func newRootArc(slope, width, y float64) rootArc {
	r := width / (2 * math.Sin(slope))
	return rootArc{slope: slope, radius: r, center: y + math.Cos(slope)*r}
}

func (a rootArc) PointAt(t float64) vmath.Vec2 {
	at := -a.slope * (t - 0.5) * 2
	return vmath.V2(math.Sin(at)*a.radius, a.center-math.Abs(math.Cos(at)*a.radius))
}

// innerHead closes the tooth head of an inner gear.
type innerHead struct {
	slope, radius, center float64
	rot                   vmath.Affine2
}

func newInnerHead(slope, width, y, toothRot float64) innerHead {
	r := width / (2 * math.Sin(slope))
	return innerHead{
		slope:  slope,
		radius: r,
		center: y - math.Cos(slope)*r,
		rot:    vmath.Rotate2(-vmath.Degrees(toothRot)),
	}
}

func (h innerHead) PointAt(t float64) vmath.Vec2 {
	at := -(t - 0.5) * 2 * h.slope
	return vmath.Apply2(h.rot, vmath.V2(math.Sin(at)*h.radius, math.Cos(math.Abs(at))*h.radius+h.center))
}

const profileSuffix = "item"

// ToPolygon rasterizes the full wheel outline with r.MinSize as the error
// bound. Results are cached by profile and tolerance.
func (p *Profile) ToPolygon(r tree.Rasterizing) *shape.Polygon {
	if v, ok := p.cached(r, false).(*shape.Polygon); ok {
		return v
	}
	tooth := p.ToothPath().Rasterize(2, r.MinSize)
	var pts []vmath.Vec2
	for i := range p.geo.n {
		m := p.toothRotation(i)
		for _, q := range tooth {
			pts = appendDistinct(pts, vmath.Apply2(m, q))
		}
	}
	for len(pts) > 3 && vmath.Dist2(pts[0], pts[len(pts)-1]) < distinctEpsilon {
		pts = pts[:len(pts)-1]
	}
	out := shape.NewPolygon(pts, nil, p.options()...)
	p.store(out, r, false)
	return out
}

// ToBezier approximates the wheel outline with a closed Bezier chain,
// connecting consecutive teeth with joining cubics.
func (p *Profile) ToBezier(r tree.Rasterizing) *shape.Bezier {
	if v, ok := p.cached(r, true).(*shape.Bezier); ok {
		return v
	}
	tooth := p.ToothPath().RasterizeBezier(2, r.MinSize, false)
	var chain []vmath.Vec2
	for i := range p.geo.n {
		m := p.toothRotation(i)
		next := make([]vmath.Vec2, len(tooth))
		for j, q := range tooth {
			next[j] = vmath.Apply2(m, q)
		}
		chain = dda.JoinBezier(chain, next)
	}
	out := shape.NewBezier(dda.CloseBezier(chain), p.options()...)
	p.store(out, r, true)
	return out
}

func (p *Profile) toothRotation(i int) vmath.Affine2 {
	return vmath.Rotate2(360/float64(p.geo.n)*float64(i) + p.rot)
}

func (p *Profile) options() []tree.Option {
	return []tree.Option{tree.Named(p.Name()), tree.WithAttributes(p.Attributes())}
}

func (p *Profile) cacheKey(r tree.Rasterizing, asBezier bool) uint64 {
	return object.HashValues("rasterized-gearwheel-profile", p, r.MinSize, asBezier)
}

// cached loads a rasterized outline and gives it this profile's name,
// which takes no part in the key.
func (p *Profile) cached(r tree.Rasterizing, asBezier bool) tree.Item {
	v, ok := cache.Load(p.cacheKey(r, asBezier), profileSuffix)
	if !ok {
		return nil
	}
	it, ok := v.(tree.Item)
	if !ok {
		return nil
	}
	if it.Name() != p.Name() {
		it = object.Copy(it, object.F("name", p.Name())).(tree.Item)
	}
	return it
}

func (p *Profile) store(it tree.Item, r tree.Rasterizing, asBezier bool) {
	logging.Logger().Debug("rasterized gear profile",
		"teeth", p.geo.n, "module", p.geo.m, "inner", p.geo.inner,
		"min_size", r.MinSize, "bezier", asBezier)
	cache.Put(it, p.cacheKey(r, asBezier), profileSuffix)
}

const distinctEpsilon = 1e-9

func appendDistinct(pts []vmath.Vec2, q vmath.Vec2) []vmath.Vec2 {
	if n := len(pts); n > 0 && vmath.Dist2(pts[n-1], q) < distinctEpsilon {
		return pts
	}
	return append(pts, q)
}
