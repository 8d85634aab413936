// Package procedural generates colors directly from 2D world coordinates.
// Everything here is a pure function of its arguments with a fixed or
// clamped loop count, so any zoom level can be recomputed from scratch.
package procedural

import (
	"github.com/chewxy/math32"

	"github.com/df07/go-procedural-raymarcher/pkg/core"
)

const (
	// MaxOctaves bounds every fbm loop
	MaxOctaves        = 12
	DefaultOctaves    = 6
	DefaultPersist    = 0.5
	DefaultLacunarity = 2.0

	hashScale = 43758.5453
)

// Hash2 maps a 2D point to a pseudo-random value in [0, 1)
func Hash2(p core.Vec2) float32 {
	return core.Fract(math32.Sin(p.X*127.1+p.Y*311.7) * hashScale)
}

// Hash3 maps a 3D point to a pseudo-random value in [0, 1)
func Hash3(p core.Vec3) float32 {
	return core.Fract(math32.Sin(p.X*127.1+p.Y*311.7+p.Z*74.7) * hashScale)
}

// Hash22 maps a 2D point to a pseudo-random 2D offset in [0, 1)^2
func Hash22(p core.Vec2) core.Vec2 {
	return core.Vec2{
		X: core.Fract(math32.Sin(p.X*127.1+p.Y*311.7) * hashScale),
		Y: core.Fract(math32.Sin(p.X*269.5+p.Y*183.3) * hashScale),
	}
}

func quintic(t float32) float32 {
	return t * t * t * (t*(t*6-15) + 10)
}

// Noise blends the hashes of the four corners of p's unit cell with quintic
// weights. The result is in [0, 1].
func Noise(p core.Vec2) float32 {
	i := p.Floor()
	f := p.Subtract(i)

	a := Hash2(i)
	b := Hash2(i.Add(core.Vec2{X: 1}))
	c := Hash2(i.Add(core.Vec2{Y: 1}))
	d := Hash2(i.Add(core.Vec2{X: 1, Y: 1}))

	ux, uy := quintic(f.X), quintic(f.Y)
	return core.Mix(core.Mix(a, b, ux), core.Mix(c, d, ux), uy)
}

// ClampOctaves limits an octave count to [1, MaxOctaves]
func ClampOctaves(octaves int) int {
	return max(1, min(octaves, MaxOctaves))
}

// FBM sums octaves of Noise at doubling frequency and halving amplitude.
// The first octave has amplitude 1, so FBM(p, 1) == Noise(p).
func FBM(p core.Vec2, octaves int) float32 {
	return FBMWith(p, octaves, DefaultPersist, DefaultLacunarity)
}

// FBMWith is FBM with explicit persistence (amplitude factor) and lacunarity
// (frequency factor)
func FBMWith(p core.Vec2, octaves int, persistence, lacunarity float32) float32 {
	octaves = ClampOctaves(octaves)
	var sum float32
	amp := float32(1)
	freq := float32(1)
	for i := 0; i < octaves; i++ {
		sum += amp * Noise(p.Multiply(freq))
		amp *= persistence
		freq *= lacunarity
	}
	return sum
}

// FBMRange returns the largest value FBMWith can produce, for normalizing
func FBMRange(octaves int, persistence float32) float32 {
	octaves = ClampOctaves(octaves)
	var total float32
	amp := float32(1)
	for i := 0; i < octaves; i++ {
		total += amp
		amp *= persistence
	}
	return total
}
