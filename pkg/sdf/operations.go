package sdf

import "github.com/df07/go-procedural-raymarcher/pkg/core"

// MinBlendK is the floor applied to every smooth blend radius.
const MinBlendK float32 = 1e-4

// ClampBlend returns k raised to MinBlendK. NaN and non-positive values map to the floor.
func ClampBlend(k float32) float32 {
	if !(k > MinBlendK) {
		return MinBlendK
	}
	return k
}

// Union keeps the closer of two shapes
func Union(d1, d2 float32) float32 {
	return min(d1, d2)
}

// Subtract carves d2 out of d1
func Subtract(d1, d2 float32) float32 {
	return max(d1, -d2)
}

// Intersect keeps the overlap of two shapes
func Intersect(d1, d2 float32) float32 {
	return max(d1, d2)
}

// SmoothUnion blends two shapes over a radius k
func SmoothUnion(d1, d2, k float32) float32 {
	k = ClampBlend(k)
	h := core.Saturate(0.5 + 0.5*(d2-d1)/k)
	return core.Mix(d2, d1, h) - k*h*(1-h)
}

// SmoothSubtract carves d2 out of d1 with a rounded seam of radius k
func SmoothSubtract(d1, d2, k float32) float32 {
	k = ClampBlend(k)
	h := core.Saturate(0.5 - 0.5*(d1+d2)/k)
	return core.Mix(d1, -d2, h) + k*h*(1-h)
}

// SmoothIntersect keeps the overlap of two shapes with a rounded edge of radius k
func SmoothIntersect(d1, d2, k float32) float32 {
	k = ClampBlend(k)
	h := core.Saturate(0.5 - 0.5*(d2-d1)/k)
	return core.Mix(d2, d1, h) + k*h*(1-h)
}
