// Package gear builds involute gear profiles and the solids made from them.
//
// A gear is described by its tooth count and exactly one of module, pitch
// diameter, addendum diameter or circular pitch. Profile is a Complex
// shape that derives one tooth outline from the involute, rasterizes it
// and replicates it around the wheel. Wheel, HerringboneWheel, InnerWheel
// and InnerHerringboneWheel are solids assembled from profiles.
package gear

import (
	"fmt"
	"math"

	"github.com/chazu/csgtree/pkg/object"
	"github.com/chazu/csgtree/pkg/vmath"
)

// Defaults applied to zero Params fields.
const (
	DefaultPressureAngle = 20.0
	DefaultMinTipWidth   = 0.2
)

// Params describe a gear. N and exactly one of M, D0, Da and P0 must be
// set.
type Params struct {
	N  int     // tooth count
	M  float64 // module
	D0 float64 // pitch diameter
	Da float64 // addendum diameter
	P0 float64 // circular pitch

	// X is the profile shift factor. Nil selects 1 - N/17 for N < 16 and
	// 0 otherwise.
	X *float64
	// A is the pressure angle in degrees, zero selects 20.
	A float64
	// B is the helix angle in degrees.
	B float64
	// Mhf is the minimum tip width as a multiple of the module, zero
	// selects 0.2.
	Mhf float64
	// Rot rotates the profile, in degrees.
	Rot float64
}

// Shift returns a pointer to x for Params.X.
func Shift(x float64) *float64 { return &x }

// Geometry is the basic geometry shared by every gear part.
type Geometry struct {
	n     int
	m     float64
	x     float64
	a, b  float64 // degrees
	inner bool
}

// NewGeometry resolves p. It panics unless exactly one size parameter is
// set.
func NewGeometry(p Params) Geometry {
	if p.N < 3 {
		panic(fmt.Sprintf("gear: need at least 3 teeth, got %d", p.N))
	}
	n := float64(p.N)
	set := 0
	var m float64
	for _, s := range []struct {
		v float64
		m func(float64) float64
	}{
		{p.M, func(v float64) float64 { return v }},
		{p.D0, func(v float64) float64 { return v / n }},
		{p.Da, func(v float64) float64 { return v / (n + 2) }},
		{p.P0, func(v float64) float64 { return v / math.Pi }},
	} {
		if s.v < 0 {
			panic(fmt.Sprintf("gear: size parameters must be positive, got %+v", p))
		}
		if s.v > 0 {
			set++
			m = s.m(s.v)
		}
	}
	if set != 1 {
		panic(fmt.Sprintf("gear: exactly one of m, d0, da and p0 must be set, got %+v", p))
	}

	g := Geometry{n: p.N, m: m, a: p.A, b: p.B}
	if g.a == 0 {
		g.a = DefaultPressureAngle
	}
	switch {
	case p.X != nil:
		g.x = *p.X
	case p.N < 16:
		g.x = 1 - n/17
	}
	return g
}

func geometryFrom(f object.Fields, inner bool) Geometry {
	return Geometry{
		n:     f.Int("n"),
		m:     f.Float("m"),
		x:     f.Float("x"),
		a:     f.Float("a"),
		b:     f.Float("b"),
		inner: inner,
	}
}

func (g Geometry) fields() []object.Field {
	return []object.Field{
		object.F("n", g.n),
		object.F("m", g.m),
		object.F("x", g.x),
		object.F("a", g.a),
		object.F("b", g.b),
	}
}

func (g Geometry) params() Params {
	return Params{N: g.n, M: g.m, X: Shift(g.x), A: g.a, B: g.b}
}

// N returns the tooth count.
func (g Geometry) N() int { return g.n }

// M returns the module.
func (g Geometry) M() float64 { return g.m }

// D0 returns the pitch diameter.
func (g Geometry) D0() float64 { return g.m * float64(g.n) }

// Da returns the nominal addendum diameter, before profile shift and tip
// shortening.
func (g Geometry) Da() float64 { return g.m * float64(g.n+2) }

// P0 returns the circular pitch.
func (g Geometry) P0() float64 { return math.Pi * g.m }

// X returns the profile shift factor.
func (g Geometry) X() float64 { return g.x }

// PressureAngle returns the pressure angle in degrees.
func (g Geometry) PressureAngle() float64 { return g.a }

// HelixAngle returns the helix angle in degrees.
func (g Geometry) HelixAngle() float64 { return g.b }

// Inner reports whether the geometry describes an internal gear.
func (g Geometry) Inner() bool { return g.inner }

func (g Geometry) alpha() float64 { return vmath.Radians(g.a) }
func (g Geometry) beta() float64  { return vmath.Radians(g.b) }

// Involute returns tan(a) - a.
func Involute(a float64) float64 { return math.Tan(a) - a }

// SolveInvolute returns the angle a with Involute(a) == inv by Newton
// iteration. It panics when the iteration does not converge.
func SolveInvolute(inv float64) float64 {
	var a float64
	if inv < -2 || inv > 2 {
		a = math.Atan(inv)
	} else {
		a = math.Cbrt(3*inv) - 0.4*inv
	}
	for range 50 {
		t := math.Tan(a)
		next := a + (inv-t+a)/(t*t)
		if math.Abs(next-a) < 1e-11 {
			return next
		}
		a = next
	}
	panic(fmt.Sprintf("gear: involute solver does not converge for %g", inv))
}

// CenterDistance returns the axis distance of two mating gears. Both need
// the same module and pressure angle. An inner gear must carry at least
// the profile shift of its partner; external pairs need opposite helix
// angles. Violations panic.
func CenterDistance(g, o Geometry) float64 {
	if g.m != o.m {
		panic(fmt.Sprintf("gear: mating gears need the same module, got %g and %g", g.m, o.m))
	}
	if g.a != o.a {
		panic(fmt.Sprintf("gear: mating gears need the same pressure angle, got %g and %g", g.a, o.a))
	}
	switch {
	case g.inner && o.inner:
		panic("gear: cannot pair two inner gears")
	case o.inner:
		return g.distanceWithInner(o)
	case g.inner:
		return o.distanceWithInner(g)
	}
	if g.b != -o.b {
		panic(fmt.Sprintf("gear: external gears need opposite helix angles, got %g and %g", g.b, o.b))
	}
	return g.distanceExternal(o)
}

func (g Geometry) distanceExternal(o Geometry) float64 {
	a := g.alpha()
	n := float64(g.n + o.n)
	ab := SolveInvolute(2*((g.x+o.x)/n)*math.Tan(a) + Involute(a))
	return g.m * n * (math.Cos(a) / (2 * math.Cos(ab)))
}

func (g Geometry) distanceWithInner(inner Geometry) float64 {
	if inner.x < g.x {
		panic(fmt.Sprintf("gear: inner gear shift %g is smaller than the gear shift %g", inner.x, g.x))
	}
	return inner.distanceExternal(inner) - g.distanceExternal(inner)
}

// distanceToUncorrected is the center distance to an unshifted copy of g.
func (g Geometry) distanceToUncorrected() float64 {
	a := g.alpha()
	n := float64(g.n)
	ab := SolveInvolute(2*(g.x/(2*n))*math.Tan(a) + Involute(a))
	return g.m * 2 * n * (math.Cos(a) / (2 * math.Cos(ab)))
}

// ToothWidthAtDiameter returns the arc width of a tooth at diameter d.
func (g Geometry) ToothWidthAtDiameter(d float64) float64 {
	a := g.alpha()
	d0 := g.D0()
	ac := math.Min(d0/d*math.Cos(a), 1)
	s0 := g.m * (math.Pi/2 + 2*g.x*math.Tan(a))
	return d * (s0/d0 + Involute(a) - Involute(math.Acos(ac)))
}
