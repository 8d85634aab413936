package sdf

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/df07/go-procedural-raymarcher/pkg/core"
)

// Twist rotates the xz plane of p by k*y radians
func Twist(p core.Vec3, k float32) core.Vec3 {
	xz := mgl32.Rotate2D(k * p.Y).Mul2x1(mgl32.Vec2{p.X, p.Z})
	return core.Vec3{X: xz[0], Y: p.Y, Z: xz[1]}
}

// Round inflates a distance by r
func Round(d, r float32) float32 {
	return d - r
}

// Repeat folds p into a single cell centred at the origin so that every axis
// lands in [-cell/2, cell/2). Axes with a non-positive cell size are left alone.
func Repeat(p, cell core.Vec3) core.Vec3 {
	return core.Vec3{
		X: repeatAxis(p.X, cell.X),
		Y: repeatAxis(p.Y, cell.Y),
		Z: repeatAxis(p.Z, cell.Z),
	}
}

func repeatAxis(v, c float32) float32 {
	if !(c > 0) {
		return v
	}
	q := v - c*math32.Floor(v/c+0.5)
	// float rounding can land exactly on the open upper bound
	if q >= 0.5*c {
		q -= c
	} else if q < -0.5*c {
		q += c
	}
	return q
}

// Translate moves the shape by offset (the query point moves the other way)
func Translate(p, offset core.Vec3) core.Vec3 {
	return p.Subtract(offset)
}
