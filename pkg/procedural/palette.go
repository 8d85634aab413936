package procedural

import (
	"github.com/chewxy/math32"

	"github.com/df07/go-procedural-raymarcher/pkg/core"
)

// HSV converts hue (wrapping), saturation and value to RGB
func HSV(h, s, v float32) core.Vec3 {
	h = core.Fract(h)
	rgb := core.Vec3{
		X: core.Saturate(math32.Abs(core.Fract(h+1)*6-3) - 1),
		Y: core.Saturate(math32.Abs(core.Fract(h+2.0/3)*6-3) - 1),
		Z: core.Saturate(math32.Abs(core.Fract(h+1.0/3)*6-3) - 1),
	}
	return core.Splat3(1).Mix(rgb, s).Multiply(v)
}

// Cosine is the a + b*cos(2pi(c*t + d)) palette
func Cosine(t float32, a, b, c, d core.Vec3) core.Vec3 {
	return core.Vec3{
		X: a.X + b.X*math32.Cos(2*math32.Pi*(c.X*t+d.X)),
		Y: a.Y + b.Y*math32.Cos(2*math32.Pi*(c.Y*t+d.Y)),
		Z: a.Z + b.Z*math32.Cos(2*math32.Pi*(c.Z*t+d.Z)),
	}
}

// Rainbow is the cosine palette used for fractals and cell fills
func Rainbow(t float32) core.Vec3 {
	return Cosine(t,
		core.Splat3(0.5), core.Splat3(0.5), core.Splat3(1),
		core.NewVec3(0, 0.33, 0.67))
}

var terrainStops = [...]struct {
	height float32
	color  core.Vec3
}{
	{0.00, core.NewVec3(0.05, 0.10, 0.35)}, // deep water
	{0.40, core.NewVec3(0.15, 0.35, 0.65)}, // shallows
	{0.45, core.NewVec3(0.85, 0.80, 0.55)}, // sand
	{0.55, core.NewVec3(0.25, 0.55, 0.20)}, // grass
	{0.70, core.NewVec3(0.20, 0.35, 0.15)}, // forest
	{0.85, core.NewVec3(0.45, 0.40, 0.35)}, // rock
	{1.00, core.NewVec3(0.95, 0.95, 0.97)}, // snow
}

// Terrain maps a height in [0, 1] to a landscape color
func Terrain(h float32) core.Vec3 {
	h = core.Saturate(h)
	if h >= 1 {
		return terrainStops[len(terrainStops)-1].color
	}
	for i := 1; i < len(terrainStops); i++ {
		lo, hi := terrainStops[i-1], terrainStops[i]
		if h <= hi.height {
			t := (h - lo.height) / (hi.height - lo.height)
			return lo.color.Mix(hi.color, t)
		}
	}
	return terrainStops[len(terrainStops)-1].color
}
