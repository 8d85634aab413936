package core

import "github.com/chewxy/math32"

// Clamp limits x to [lo, hi]. NaN maps to lo.
func Clamp(x, lo, hi float32) float32 {
	if !(x > lo) {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}

// Saturate clamps x to [0, 1]
func Saturate(x float32) float32 {
	return Clamp(x, 0, 1)
}

// Mix linearly interpolates between a and b
func Mix(a, b, t float32) float32 {
	return a + (b-a)*t
}

// Fract returns x - floor(x), always in [0, 1)
func Fract(x float32) float32 {
	f := x - math32.Floor(x)
	// x - floor(x) can round up to exactly 1 for tiny negative x
	if f >= 1 {
		return 0
	}
	return f
}

// Smoothstep performs Hermite interpolation between edge0 and edge1
func Smoothstep(edge0, edge1, x float32) float32 {
	t := Saturate((x - edge0) / (edge1 - edge0))
	return t * t * (3 - 2*t)
}

// Step returns 0 when x < edge, otherwise 1
func Step(edge, x float32) float32 {
	if x < edge {
		return 0
	}
	return 1
}
