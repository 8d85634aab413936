// Package xray renders the debug overlays: alternate color stages built on the
// same noise primitives as the procedural generators.
package xray

import (
	"github.com/chewxy/math32"

	"github.com/df07/go-procedural-raymarcher/pkg/core"
	"github.com/df07/go-procedural-raymarcher/pkg/procedural"
)

// Type selects an overlay
type Type uint32

const (
	MotionVectors Type = iota
	FrequencyHeatmap
	EquationOverlay
	Wireframe

	// TypeCount is one past the last valid overlay
	TypeCount
)

const (
	fieldOctaves = 6
	gradientStep = 0.01
	heatBands    = 8
)

// Fallback is the color of an unknown overlay type
var Fallback = core.Splat3(0.5)

// Params mirror the procedural parameter slots. Non-positive values select
// the defaults listed in Info.
type Params struct {
	Type Type
	Time float32
	P1   float32
	P2   float32
	P3   float32
	P4   float32
}

func orDefault(v, def float32) float32 {
	if v > 0 {
		return v
	}
	return def
}

// Render maps uv through the shared zoom/pan transform and shades the overlay
func Render(uv core.Vec2, zoom float32, pan core.Vec2, params Params) core.Vec3 {
	return RenderAt(procedural.WorldPoint(uv, zoom, pan), params)
}

// RenderAt shades the overlay at a world point. Non-finite results fall back
// to gray.
func RenderAt(w core.Vec2, params Params) core.Vec3 {
	col := render(w, params)
	if !col.IsFinite() {
		return Fallback
	}
	return col
}

func render(w core.Vec2, params Params) core.Vec3 {
	switch params.Type {
	case MotionVectors:
		return motionVectors(w, params)
	case FrequencyHeatmap:
		return frequencyHeatmap(w, params)
	case EquationOverlay:
		return equationOverlay(w, params)
	case Wireframe:
		return wireframe(w, params)
	default:
		return Fallback
	}
}

// field is the fbm scalar field every overlay visualizes, normalized to [0, 1]
func field(p core.Vec2) float32 {
	return procedural.FBM(p, fieldOctaves) / procedural.FBMRange(fieldOctaves, procedural.DefaultPersist)
}

// Gradient is the central-difference gradient of the overlay field
func Gradient(p core.Vec2) core.Vec2 {
	const e = gradientStep
	return core.Vec2{
		X: (field(core.Vec2{X: p.X + e, Y: p.Y}) - field(core.Vec2{X: p.X - e, Y: p.Y})) / (2 * e),
		Y: (field(core.Vec2{X: p.X, Y: p.Y + e}) - field(core.Vec2{X: p.X, Y: p.Y - e})) / (2 * e),
	}
}

// flowOffset shifts the field with time; the overlay shows the static
// gradient of the shifted field, not inter-frame motion
func flowOffset(time float32) core.Vec2 {
	return core.Vec2{X: time * 0.1, Y: time * 0.07}
}

func motionVectors(w core.Vec2, params Params) core.Vec3 {
	scale := orDefault(params.P1, 6)
	arrows := orDefault(params.P2, 8)
	gain := orDefault(params.P3, 0.5)

	s := w.Multiply(scale).Add(flowOffset(params.Time))
	g := Gradient(s)

	// vertical component drives red, horizontal drives green
	col := core.Vec3{
		X: core.Saturate(math32.Abs(g.Y) * gain),
		Y: core.Saturate(math32.Abs(g.X) * gain),
		Z: 0.15 + 0.25*core.Saturate(g.Length()*gain*0.5),
	}

	// one arrow per grid cell, pointing along the gradient at the cell centre
	a := w.Multiply(arrows)
	centre := a.Floor().Add(core.Vec2{X: 0.5, Y: 0.5})
	cg := Gradient(centre.Multiply(scale / arrows).Add(flowOffset(params.Time)))
	glyph := arrow(a.Subtract(centre), cg)
	return col.Mix(core.Splat3(1), glyph)
}

// arrow returns the coverage of an arrow glyph at local cell position q
func arrow(q, dir core.Vec2) float32 {
	if !(dir.Length() > 1e-6) {
		return 0
	}
	d := dir.Normalize()
	tail := d.Multiply(-0.35)
	tip := d.Multiply(0.35)
	side := core.Vec2{X: -d.Y, Y: d.X}

	back := tip.Subtract(d.Multiply(0.15))
	left := back.Add(side.Multiply(0.1))
	right := back.Subtract(side.Multiply(0.1))

	dist := min(segment(q, tail, tip), segment(q, tip, left), segment(q, tip, right))
	return 1 - core.Smoothstep(0.02, 0.05, dist)
}

// segment is the distance from p to the segment a-b
func segment(p, a, b core.Vec2) float32 {
	pa := p.Subtract(a)
	ba := b.Subtract(a)
	var h float32
	if den := ba.Dot(ba); den > 0 {
		h = core.Saturate(pa.Dot(ba) / den)
	}
	return pa.Subtract(ba.Multiply(h)).Length()
}

// Heat is the four stop ramp: dark blue, purple, orange, yellow
func Heat(t float32) core.Vec3 {
	stops := [4]core.Vec3{
		core.NewVec3(0.02, 0.02, 0.35),
		core.NewVec3(0.55, 0.05, 0.60),
		core.NewVec3(1.00, 0.50, 0.05),
		core.NewVec3(1.00, 0.95, 0.25),
	}
	t = core.Saturate(t) * 3
	i := min(int(t), 2)
	return stops[i].Mix(stops[i+1], t-float32(i))
}

// FrequencyEnergy sums noise at 8 doubling frequencies weighted by 1/f and
// normalized to [0, 1]. It approximates spectral content; it is not a Fourier
// transform.
func FrequencyEnergy(p core.Vec2) float32 {
	var sum, weights float32
	freq := float32(1)
	for i := 0; i < heatBands; i++ {
		sum += procedural.Noise(p.Multiply(freq)) / freq
		weights += 1 / freq
		freq *= 2
	}
	return sum / weights
}

func frequencyHeatmap(w core.Vec2, params Params) core.Vec3 {
	scale := orDefault(params.P1, 4)
	contrast := orDefault(params.P2, 1)

	e := FrequencyEnergy(w.Multiply(scale).Add(flowOffset(params.Time)))
	return Heat(core.Smoothstep(0.2, 0.8, 0.5+(e-0.5)*contrast))
}

func equationOverlay(w core.Vec2, params Params) core.Vec3 {
	scale := orDefault(params.P1, 4)
	bands := orDefault(params.P2, 10)

	s := w.Multiply(scale)
	f := field(s.Add(flowOffset(params.Time)))

	// filled contour bands with a dark edge at every level
	level := math32.Floor(f*bands) / bands
	col := procedural.HSV(0.6-level*0.5, 0.45, 0.25+0.5*level)
	edge := lineCoverage(f*bands, 0.06)
	col = col.Mix(core.Splat3(0.02), edge*0.8)

	minor := max(lineCoverage(s.X*5, 0.04), lineCoverage(s.Y*5, 0.04))
	major := max(lineCoverage(s.X, 0.015), lineCoverage(s.Y, 0.015))
	col = col.Mix(core.Splat3(0.7), minor*0.25)
	col = col.Mix(core.Splat3(0.9), major*0.6)

	// x axis red, y axis green
	col = col.Mix(core.NewVec3(1, 0.2, 0.2), 1-core.Smoothstep(0.01, 0.025, math32.Abs(s.Y)))
	return col.Mix(core.NewVec3(0.2, 1, 0.2), 1-core.Smoothstep(0.01, 0.025, math32.Abs(s.X)))
}

func wireframe(w core.Vec2, params Params) core.Vec3 {
	scale := orDefault(params.P1, 8)
	width := orDefault(params.P2, 0.03)

	s := w.Multiply(scale)
	f := s.Fract()

	// each unit cell is split into two triangles along its diagonal
	edges := max(
		1-core.Smoothstep(0, width, min(f.X, 1-f.X)),
		1-core.Smoothstep(0, width, min(f.Y, 1-f.Y)),
		1-core.Smoothstep(0, width, math32.Abs(f.X-f.Y)*0.70710678),
	)

	// light the mesh as if it were the height field of the overlay field
	g := Gradient(s.Multiply(0.25))
	n := core.NewVec3(-g.X, 1, -g.Y).Normalize()
	light := 0.35 + 0.65*max(n.Dot(core.NewVec3(0.4, 0.8, 0.45).Normalize()), 0)

	pulse := 0.6 + 0.4*math32.Sin(params.Time*2-s.Length()*0.5)
	col := core.NewVec3(0.02, 0.03, 0.05)
	col = col.Mix(core.NewVec3(0.2, 0.8, 1).Multiply(light*pulse), edges)

	r := core.Vec2{X: f.X - math32.Floor(f.X+0.5), Y: f.Y - math32.Floor(f.Y+0.5)}
	vertex := 1 - core.Smoothstep(width, width*2.5, r.Length())
	return col.Mix(core.NewVec3(1, 0.9, 0.4), vertex)
}

// lineCoverage is 1 on integer values of v and fades out at width
func lineCoverage(v, width float32) float32 {
	d := math32.Abs(core.Fract(v+0.5) - 0.5)
	return 1 - core.Smoothstep(0, width, d)
}
