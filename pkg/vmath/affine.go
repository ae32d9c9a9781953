package vmath

import (
	"github.com/deadsy/sdfx/sdf"
)

// Affine2 is a 2D homogeneous transform.
type Affine2 = sdf.M33

// Affine3 is a 3D homogeneous transform.
type Affine3 = sdf.M44

// Identity2 returns the 2D identity transform.
func Identity2() Affine2 { return sdf.Identity2d() }

// Identity3 returns the 3D identity transform.
func Identity3() Affine3 { return sdf.Identity3d() }

// Translate2 returns a 2D translation by (x, y).
func Translate2(x, y float64) Affine2 { return sdf.Translate2d(V2(x, y)) }

// Scale2 returns a 2D scale by (sx, sy).
func Scale2(sx, sy float64) Affine2 { return sdf.Scale2d(V2(sx, sy)) }

// Rotate2 returns a counter-clockwise 2D rotation by deg degrees.
func Rotate2(deg float64) Affine2 { return sdf.Rotate2d(Radians(deg)) }

// Translate3 returns a 3D translation by (x, y, z).
func Translate3(x, y, z float64) Affine3 { return sdf.Translate3d(V3(x, y, z)) }

// Scale3 returns a 3D scale by (sx, sy, sz).
func Scale3(sx, sy, sz float64) Affine3 { return sdf.Scale3d(V3(sx, sy, sz)) }

// Rotate3 returns the rotation by rx around X, then ry around Y, then rz
// around Z, all in degrees.
func Rotate3(rx, ry, rz float64) Affine3 {
	return sdf.RotateZ(Radians(rz)).Mul(sdf.RotateY(Radians(ry))).Mul(sdf.RotateX(Radians(rx)))
}

// Compose2 returns the transform applying first a and then b.
func Compose2(a, b Affine2) Affine2 { return b.Mul(a) }

// Compose3 returns the transform applying first a and then b.
func Compose3(a, b Affine3) Affine3 { return b.Mul(a) }

// Apply2 transforms p by m.
func Apply2(m Affine2, p Vec2) Vec2 { return m.MulPosition(p) }

// Apply3 transforms p by m.
func Apply3(m Affine3, p Vec3) Vec3 { return m.MulPosition(p) }
