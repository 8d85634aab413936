// Package shading turns a march result into a display color: surface normal
// and ambient occlusion from the distance field, three directional lights with
// a specular highlight and a Fresnel rim, distance fog, the miss background
// and the final gamma and vignette.
package shading

import (
	"github.com/chewxy/math32"

	"github.com/df07/go-procedural-raymarcher/pkg/core"
	"github.com/df07/go-procedural-raymarcher/pkg/raymarch"
	"github.com/df07/go-procedural-raymarcher/pkg/sdf"
)

const (
	NormalOffset  float32 = 1e-4
	AOSamples             = 5
	Ambient       float32 = 0.15
	SpecularPower float32 = 32
	FogDensity    float32 = 0.005
	Gamma         float32 = 2.2
)

// Light is a directional light; Direction points toward the light
type Light struct {
	Direction core.Vec3
	Color     core.Vec3
	Weight    float32
}

var (
	// Lights are key, fill and back in that order; the key light also
	// drives the specular highlight
	Lights = [3]Light{
		{core.NewVec3(0.5, 1, 0.3).Normalize(), core.NewVec3(1, 0.95, 0.85), 1},
		{core.NewVec3(-0.6, 0.3, -0.4).Normalize(), core.NewVec3(0.45, 0.55, 0.75), 0.35},
		{core.NewVec3(-0.2, 0.4, -1).Normalize(), core.NewVec3(0.7, 0.7, 0.8), 0.2},
	}

	Albedo     = core.NewVec3(0.8, 0.75, 0.7)
	FogColor   = core.NewVec3(0.02, 0.02, 0.05)
	SkyColor   = core.NewVec3(0.16, 0.19, 0.27)
	GridColor  = core.NewVec3(1, 1, 1)
	up         = core.NewVec3(0, 1, 0)
	gridFreq   = float32(8)
	gridWeight = float32(0.04)
)

// EstimateNormal returns the normalized central-difference gradient of dist at p.
// A flat gradient (inside a constant field) reports +y.
func EstimateNormal(dist sdf.DistanceFunc, p core.Vec3) core.Vec3 {
	e := NormalOffset
	g := core.Vec3{
		X: dist(core.Vec3{X: p.X + e, Y: p.Y, Z: p.Z}) - dist(core.Vec3{X: p.X - e, Y: p.Y, Z: p.Z}),
		Y: dist(core.Vec3{X: p.X, Y: p.Y + e, Z: p.Z}) - dist(core.Vec3{X: p.X, Y: p.Y - e, Z: p.Z}),
		Z: dist(core.Vec3{X: p.X, Y: p.Y, Z: p.Z + e}) - dist(core.Vec3{X: p.X, Y: p.Y, Z: p.Z - e}),
	}
	if !(g.LengthSquared() > 0) || !g.IsFinite() {
		return up
	}
	return g.Normalize()
}

// AmbientOcclusion samples dist at five heights along n and returns an
// occlusion factor in [0, 1] (1 is fully open)
func AmbientOcclusion(dist sdf.DistanceFunc, p, n core.Vec3) float32 {
	var occ float32
	decay := float32(1)
	for i := 0; i < AOSamples; i++ {
		h := 0.01 + 0.12*float32(i)/4
		d := dist(p.Add(n.Multiply(h)))
		occ += (h - d) * decay
		decay *= 0.95
	}
	return core.Saturate(1 - 3*occ)
}

// Lighting combines the weighted diffuse lights, the key light's Blinn-Phong
// highlight, a Fresnel rim and the ambient term for a surface with normal n
// seen along rd
func Lighting(n, rd core.Vec3) core.Vec3 {
	var diffuse core.Vec3
	for _, l := range Lights {
		ndl := max(n.Dot(l.Direction), 0)
		diffuse = diffuse.Add(l.Color.Multiply(ndl * l.Weight))
	}

	key := Lights[0]
	half := key.Direction.Subtract(rd).Normalize()
	spec := math32.Pow(max(n.Dot(half), 0), SpecularPower) * 0.5

	rim := math32.Pow(core.Saturate(1+n.Dot(rd)), 3) * 0.25

	col := Albedo.MultiplyVec(diffuse.Add(core.Splat3(Ambient)))
	col = col.Add(key.Color.Multiply(spec))
	return col.Add(core.Splat3(rim))
}

// Fog blends color toward FogColor by 1 - exp(-density * t^2)
func Fog(color core.Vec3, t float32) core.Vec3 {
	f := 1 - math32.Exp(-FogDensity*t*t)
	return color.Mix(FogColor, f)
}

// Background is the miss color: a vertical gradient with a faint grid
func Background(uv core.Vec2) core.Vec3 {
	col := FogColor.Mix(SkyColor, core.Saturate(uv.Y))
	grid := max(lineMask(uv.X*gridFreq), lineMask(uv.Y*gridFreq))
	return col.Add(GridColor.Multiply(grid * gridWeight))
}

// lineMask is 1 on integer values of v, fading to 0 within 0.05
func lineMask(v float32) float32 {
	d := math32.Abs(core.Fract(v+0.5) - 0.5)
	return 1 - core.Smoothstep(0, 0.05, d)
}

// ShadeLinear returns the color of one march before gamma and vignette
func ShadeLinear(dist sdf.DistanceFunc, ray core.Ray, res raymarch.Result, flags raymarch.Flags, uv core.Vec2) core.Vec3 {
	if !res.Hit {
		return Background(uv)
	}

	p := ray.At(res.Distance)
	n := EstimateNormal(dist, p)
	if flags&raymarch.FlagShowNormals != 0 {
		return n.Multiply(0.5).Add(core.Splat3(0.5))
	}

	col := Lighting(n, ray.Direction)
	if flags&raymarch.FlagAmbientOcclusion != 0 {
		col = col.Multiply(AmbientOcclusion(dist, p, n))
	}
	return Fog(col, res.Distance)
}

// Finish applies gamma and the radial vignette and clamps to [0, 1]
func Finish(color core.Vec3, uv core.Vec2) core.Vec3 {
	q := uv.Subtract(core.NewVec2(0.5, 0.5))
	vignette := core.Saturate(1 - 0.6*q.Dot(q))
	return color.GammaCorrect(Gamma).Multiply(vignette).Clamp(0, 1)
}

// Shade returns the display color for one march
func Shade(dist sdf.DistanceFunc, ray core.Ray, res raymarch.Result, flags raymarch.Flags, uv core.Vec2) core.Vec3 {
	return Finish(ShadeLinear(dist, ray, res, flags, uv), uv)
}
