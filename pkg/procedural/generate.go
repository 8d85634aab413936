package procedural

import (
	"github.com/chewxy/math32"

	"github.com/df07/go-procedural-raymarcher/pkg/core"
)

// ContentType selects a generator
type ContentType uint32

const (
	ContentPerlin ContentType = iota
	ContentPolynomial
	ContentMandelbrot
	ContentRadial
	ContentVoronoi
	ContentPlasma
	ContentGrid

	// ContentCount is one past the last valid content type
	ContentCount
)

// MinZoom is the smallest zoom the view transform accepts
const MinZoom float32 = 1e-6

// Fallback is the color of an unknown content type
var Fallback = core.Splat3(0.5)

// ContentInfo describes a generator and what its four parameters mean
type ContentInfo struct {
	Type   ContentType `json:"type"`
	Name   string      `json:"name"`
	Params [4]string   `json:"params"`
}

// Catalog lists every generator in content type order
var Catalog = [ContentCount]ContentInfo{
	{ContentPerlin, "Perlin Terrain", [4]string{"scale (10)", "octaves (6)", "persistence (0.5)", "lacunarity (2)"}},
	{ContentPolynomial, "Polynomial", [4]string{"x^3", "x^2", "x", "constant"}},
	{ContentMandelbrot, "Mandelbrot", [4]string{"scale (3)", "iterations (100)", "fractal kind (0)", "escape radius (2)"}},
	{ContentRadial, "Radial Field", [4]string{"rings (10)", "sectors (6)", "", ""}},
	{ContentVoronoi, "Voronoi Cells", [4]string{"scale (5)", "edge width (0.05)", "", ""}},
	{ContentPlasma, "Plasma", [4]string{"scale (10)", "speed (1)", "", ""}},
	{ContentGrid, "Grid", [4]string{"cells per unit (10)", "line width (0.02)", "", ""}},
}

// Params are the per-frame generator inputs. A non-positive parameter selects
// the generator's default, except for the polynomial coefficients which are
// used as given.
type Params struct {
	Content ContentType
	Time    float32
	P1      float32
	P2      float32
	P3      float32
	P4      float32
}

func orDefault(v, def float32) float32 {
	if v > 0 {
		return v
	}
	return def
}

// countParam converts a loop-count parameter to an int in [1, hi]. The
// clamp happens in float so huge or NaN values never reach the conversion.
func countParam(v float32, def, hi int) int {
	n := orDefault(v, float32(def))
	if n > float32(hi) {
		return hi
	}
	return max(1, int(n))
}

// fractalKind rounds a parameter to the nearest escape-time kind
func fractalKind(v float32) FractalKind {
	if !(v > 0) {
		return Mandelbrot
	}
	k := math32.Round(v)
	if k >= float32(FractalKindCount) {
		return FractalKindCount - 1
	}
	return FractalKind(k)
}

// WorldPoint maps a uv coordinate to world space: (uv - 0.5) / zoom + pan
func WorldPoint(uv core.Vec2, zoom float32, pan core.Vec2) core.Vec2 {
	if !(zoom > MinZoom) {
		zoom = MinZoom
	}
	// divide rather than multiply by 1/zoom so power-of-two offsets stay exact
	return core.Vec2{
		X: (uv.X-0.5)/zoom + pan.X,
		Y: (uv.Y-0.5)/zoom + pan.Y,
	}
}

// Generate is the 2D entry point: uv through the zoom/pan transform, then
// GenerateAt
func Generate(uv core.Vec2, zoom float32, pan core.Vec2, params Params) core.Vec3 {
	return GenerateAt(WorldPoint(uv, zoom, pan), params)
}

// GenerateAt returns the color of the selected generator at a world point.
// It never looks at the zoom, so every magnification agrees. Parameters that
// drive a generator out of float32 range yield the fallback gray.
func GenerateAt(w core.Vec2, params Params) core.Vec3 {
	col := generate(w, params)
	if !col.IsFinite() {
		return Fallback
	}
	return col
}

func generate(w core.Vec2, params Params) core.Vec3 {
	switch params.Content {
	case ContentPerlin:
		return perlinTerrain(w, params)
	case ContentPolynomial:
		return polynomial(w, params)
	case ContentMandelbrot:
		return mandelbrot(w, params)
	case ContentRadial:
		return radial(w, params)
	case ContentVoronoi:
		return voronoiCells(w, params)
	case ContentPlasma:
		return plasma(w, params)
	case ContentGrid:
		return grid(w, params)
	default:
		return Fallback
	}
}

func perlinTerrain(w core.Vec2, params Params) core.Vec3 {
	scale := orDefault(params.P1, 10)
	octaves := countParam(params.P2, DefaultOctaves, MaxOctaves)
	persistence := orDefault(params.P3, DefaultPersist)
	lacunarity := orDefault(params.P4, DefaultLacunarity)

	h := FBMWith(w.Multiply(scale), octaves, persistence, lacunarity) / FBMRange(octaves, persistence)
	return Terrain(h)
}

// polynomial plots y = a x^3 + b x^2 + c x + d over [-2, 2] at zoom 1
func polynomial(w core.Vec2, params Params) core.Vec3 {
	const span = 4
	x, y := w.X*span, w.Y*span
	a, b, c, d := params.P1, params.P2, params.P3, params.P4

	f := ((a*x+b)*x+c)*x + d
	df := (3*a*x+2*b)*x + c
	// vertical gap divided by the slope approximates the distance to the curve
	dist := math32.Abs(y-f) / math32.Sqrt(1+df*df)

	below := core.NewVec3(0.10, 0.18, 0.30)
	above := core.NewVec3(0.05, 0.07, 0.12)
	col := above
	if y < f {
		col = below
	}
	col = col.Add(core.Splat3(0.04 * max(gridLine(x, 0.02), gridLine(y, 0.02))))
	col = col.Mix(core.NewVec3(0.6, 0.6, 0.6), max(axisLine(x, 0.015), axisLine(y, 0.015)))
	return col.Mix(core.NewVec3(1, 0.8, 0.2), 1-core.Smoothstep(0.01, 0.03, dist))
}

func mandelbrot(w core.Vec2, params Params) core.Vec3 {
	scale := orDefault(params.P1, 3)
	iterations := countParam(params.P2, DefaultIterations, HardMaxIterations)
	kind := fractalKind(params.P3)
	radius := orDefault(params.P4, DefaultEscapeRadius)

	p := w.Multiply(scale)
	var e Escape
	if kind == Julia {
		e = EscapeTime(Julia, p, DefaultJuliaC, iterations, radius)
	} else {
		c := p.Add(core.Vec2{X: -0.5})
		e = EscapeTime(kind, core.Vec2{}, c, iterations, radius)
	}

	if !e.Escaped {
		return core.Vec3{}
	}
	t := e.Smooth / float32(ClampIterations(iterations))
	return Rainbow(t*4 + 0.1*params.Time)
}

func radial(w core.Vec2, params Params) core.Vec3 {
	rings := orDefault(params.P1, 10)
	sectors := orDefault(params.P2, 6)

	r := w.Length()
	a := math32.Atan2(w.Y, w.X)
	ringWave := 0.5 + 0.5*math32.Sin(r*rings*2*math32.Pi-params.Time)
	sectorWave := 0.5 + 0.5*math32.Cos(a*sectors+params.Time)

	hue := a/(2*math32.Pi) + 0.5
	return HSV(hue, 0.6+0.4*sectorWave, 0.3+0.7*ringWave)
}

func voronoiCells(w core.Vec2, params Params) core.Vec3 {
	scale := orDefault(params.P1, 5)
	edge := orDefault(params.P2, 0.05)

	v := Voronoi(w.Multiply(scale), params.Time)
	col := Rainbow(v.ID).Multiply(1 - 0.5*v.F1)
	border := 1 - core.Smoothstep(0, edge, v.F2-v.F1)
	return col.Mix(core.NewVec3(0.05, 0.05, 0.08), border)
}

func plasma(w core.Vec2, params Params) core.Vec3 {
	scale := orDefault(params.P1, 10)
	t := params.Time * orDefault(params.P2, 1)
	x, y := w.X*scale, w.Y*scale

	v := math32.Sin(x+t) +
		math32.Sin(y+t*1.3) +
		math32.Sin((x+y)*0.5+t*0.7) +
		math32.Sin(math32.Sqrt(x*x+y*y)+t)
	return HSV(v/8+0.5, 0.8, 1)
}

func grid(w core.Vec2, params Params) core.Vec3 {
	cells := orDefault(params.P1, 10)
	width := orDefault(params.P2, 0.02)

	x, y := w.X*cells, w.Y*cells
	minor := max(gridLine(x, width), gridLine(y, width))
	major := max(gridLine(x/5, width/5), gridLine(y/5, width/5))

	col := core.NewVec3(0.03, 0.04, 0.06)
	col = col.Mix(core.NewVec3(0.2, 0.6, 0.3), minor*0.5)
	col = col.Mix(core.NewVec3(0.3, 1, 0.5), major)
	return col.Mix(core.NewVec3(1, 1, 1), max(axisLine(w.X, width/cells), axisLine(w.Y, width/cells)))
}

// gridLine is 1 on integer values of v and fades to 0 at width
func gridLine(v, width float32) float32 {
	d := math32.Abs(core.Fract(v+0.5) - 0.5)
	return 1 - core.Smoothstep(0, width, d)
}

// axisLine is 1 on v == 0 and fades to 0 at width
func axisLine(v, width float32) float32 {
	return 1 - core.Smoothstep(0, width, math32.Abs(v))
}
