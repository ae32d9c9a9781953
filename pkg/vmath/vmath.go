// Package vmath provides the scalar, vector and affine helpers shared by the
// tree model, the curve rasterizers and the gear math. Vectors and matrices
// are the sdfx types so kernel lowering needs no conversion.
package vmath

import (
	"math"

	v2 "github.com/deadsy/sdfx/vec/v2"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Vec2 is a 2D point or direction.
type Vec2 = v2.Vec

// Vec3 is a 3D point or direction.
type Vec3 = v3.Vec

// Epsilon is the overlap added where two solids must fuse, such as the two
// halves of a herringbone gear.
const Epsilon = 0.001

// V2 returns the vector (x, y).
func V2(x, y float64) Vec2 { return Vec2{X: x, Y: y} }

// V3 returns the vector (x, y, z).
func V3(x, y, z float64) Vec3 { return Vec3{X: x, Y: y, Z: z} }

// Dist2 returns the euclidean distance between a and b.
func Dist2(a, b Vec2) float64 { return a.Sub(b).Length() }

// Lerp2 interpolates linearly between a (t=0) and b (t=1).
func Lerp2(a, b Vec2, t float64) Vec2 {
	return a.Add(b.Sub(a).MulScalar(t))
}

// Mid2 returns the midpoint of a and b.
func Mid2(a, b Vec2) Vec2 { return Lerp2(a, b, 0.5) }

// Normalize2 returns v scaled to unit length. The zero vector is returned
// unchanged.
func Normalize2(v Vec2) Vec2 {
	l := v.Length()
	if l == 0 {
		return v
	}
	return v.MulScalar(1 / l)
}

// Polar2 returns the point at radius r and angle a (radians).
func Polar2(r, a float64) Vec2 {
	return Vec2{X: r * math.Cos(a), Y: r * math.Sin(a)}
}

// Angle2 returns the angle of v in radians, in (-pi, pi].
func Angle2(v Vec2) float64 { return math.Atan2(v.Y, v.X) }

// RotatePoint2 rotates p around the origin by deg degrees.
func RotatePoint2(p Vec2, deg float64) Vec2 {
	return Rotate2(deg).MulPosition(p)
}

// MirrorX2 mirrors p on the y axis.
func MirrorX2(p Vec2) Vec2 { return Vec2{X: -p.X, Y: p.Y} }

// Radians converts degrees to radians.
func Radians(deg float64) float64 { return deg * math.Pi / 180 }

// Degrees converts radians to degrees.
func Degrees(rad float64) float64 { return rad * 180 / math.Pi }

// NearlyEqual reports whether |a-b| <= tol.
func NearlyEqual(a, b, tol float64) bool { return math.Abs(a-b) <= tol }

// Clamp limits v to [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
