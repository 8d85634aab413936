// Package sdf holds the pure distance functions the scene composer is built from:
// primitives, boolean combinators and domain transforms. Every function is
// branch-light, allocation free and safe to call from any number of goroutines.
package sdf

import (
	"github.com/chewxy/math32"

	"github.com/df07/go-procedural-raymarcher/pkg/core"
)

// DistanceFunc maps a point to a signed distance (negative inside).
// It is the only shape a dynamically supplied scene may take.
type DistanceFunc func(p core.Vec3) float32

// Sphere is the exact distance to a sphere of radius r at the origin
func Sphere(p core.Vec3, r float32) float32 {
	return p.Length() - r
}

// Box is the exact distance to an axis-aligned box with half extents b
func Box(p core.Vec3, b core.Vec3) float32 {
	q := p.Abs().Subtract(b)
	return q.MaxScalar(0).Length() + min(q.MaxComponent(), 0)
}

// Cylinder is the exact distance to a y-aligned capped cylinder with radius r
// and half height h
func Cylinder(p core.Vec3, r, h float32) float32 {
	dx := math32.Hypot(p.X, p.Z) - r
	dy := math32.Abs(p.Y) - h
	return min(max(dx, dy), 0) + math32.Hypot(max(dx, 0), max(dy, 0))
}

// Torus is the exact distance to a torus lying in the xz plane
func Torus(p core.Vec3, major, minor float32) float32 {
	qx := math32.Hypot(p.X, p.Z) - major
	return math32.Hypot(qx, p.Y) - minor
}

// Capsule is the exact distance to a segment a-b inflated by r.
// A degenerate segment (a == b) is a sphere around a.
func Capsule(p, a, b core.Vec3, r float32) float32 {
	pa := p.Subtract(a)
	ba := b.Subtract(a)
	var h float32
	if den := ba.Dot(ba); den > 0 {
		h = core.Saturate(pa.Dot(ba) / den)
	}
	return pa.Subtract(ba.Multiply(h)).Length() - r
}

// Plane is the distance to the plane dot(p, n) + offset = 0; n must be unit length
func Plane(p, n core.Vec3, offset float32) float32 {
	return p.Dot(n) + offset
}

// UnitSphere is the fallback distance function used whenever a dynamic
// primitive is missing
func UnitSphere(p core.Vec3) float32 {
	return Sphere(p, 1)
}
