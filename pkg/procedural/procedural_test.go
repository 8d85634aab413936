package procedural

import (
	"testing"

	"github.com/chewxy/math32"

	"github.com/df07/go-procedural-raymarcher/pkg/core"
)

func nearVec(a, b core.Vec3, tol float32) bool {
	return a.Subtract(b).Length() <= tol
}

var samples = []core.Vec2{
	core.NewVec2(0, 0),
	core.NewVec2(0.5, 0.25),
	core.NewVec2(-3.7, 12.1),
	core.NewVec2(101.01, -55.5),
	core.NewVec2(-0.001, 0.999),
}

func TestHashRangeAndDeterminism(t *testing.T) {
	for _, p := range samples {
		h := Hash2(p)
		if h < 0 || h >= 1 {
			t.Errorf("Hash2(%v) = %f outside [0, 1)", p, h)
		}
		if Hash2(p) != h {
			t.Errorf("Hash2(%v) is not deterministic", p)
		}
		o := Hash22(p)
		if o.X < 0 || o.X >= 1 || o.Y < 0 || o.Y >= 1 {
			t.Errorf("Hash22(%v) = %v outside [0, 1)", p, o)
		}
		h3 := Hash3(core.NewVec3(p.X, p.Y, 1.5))
		if h3 < 0 || h3 >= 1 {
			t.Errorf("Hash3 = %f outside [0, 1)", h3)
		}
	}
}

func TestNoiseRangeAndLattice(t *testing.T) {
	for _, p := range samples {
		n := Noise(p)
		if n < 0 || n > 1 {
			t.Errorf("Noise(%v) = %f outside [0, 1]", p, n)
		}
	}
	// on a lattice point noise equals the corner hash
	corner := core.NewVec2(7, -3)
	if Noise(corner) != Hash2(corner) {
		t.Errorf("Expected Noise on a lattice point to equal its hash")
	}
}

func TestFBMSingleOctaveIsNoise(t *testing.T) {
	for _, p := range samples {
		if FBM(p, 1) != Noise(p) {
			t.Errorf("FBM(%v, 1) = %f, expected Noise %f", p, FBM(p, 1), Noise(p))
		}
		if FBMWith(p, 1, 0.7, 3) != Noise(p) {
			t.Errorf("FBMWith single octave must ignore persistence and lacunarity")
		}
	}
}

func TestFBMOctaveClamp(t *testing.T) {
	p := core.NewVec2(1.3, 2.7)
	if FBM(p, 0) != FBM(p, 1) {
		t.Errorf("Expected zero octaves to clamp to one")
	}
	if FBM(p, 1000) != FBM(p, MaxOctaves) {
		t.Errorf("Expected octaves to clamp to %d", MaxOctaves)
	}
	if got := FBMRange(3, 0.5); got != 1.75 {
		t.Errorf("Expected range 1.75, got %f", got)
	}
	for _, q := range samples {
		if v := FBM(q, 6); v < 0 || v > FBMRange(6, DefaultPersist) {
			t.Errorf("FBM(%v) = %f outside its range", q, v)
		}
	}
}

func TestVoronoi(t *testing.T) {
	for _, p := range samples {
		for _, tm := range []float32{0, 1.7} {
			v := Voronoi(p, tm)
			if v.F1 < 0 {
				t.Errorf("Voronoi(%v) F1 = %f is negative", p, v.F1)
			}
			if v.F2 < v.F1 {
				t.Errorf("Voronoi(%v) F2 %f < F1 %f", p, v.F2, v.F1)
			}
			if v.ID < 0 || v.ID >= 1 {
				t.Errorf("Voronoi(%v) ID %f outside [0, 1)", p, v.ID)
			}
		}
	}

	cell := core.NewVec2(3, -2)
	seed := VoronoiSeed(cell, 0)
	v := Voronoi(seed, 0)
	if v.F1 > 1e-5 {
		t.Errorf("Expected distance ~0 at a seed, got %f", v.F1)
	}
	if v.Cell != cell {
		t.Errorf("Expected nearest cell %v, got %v", cell, v.Cell)
	}
}

func TestEscapeTime(t *testing.T) {
	inSet := MandelbrotAt(core.NewVec2(0, 0), 1_000_000)
	if inSet.Escaped {
		t.Errorf("Expected c=0 never to escape")
	}
	if inSet.Iterations != HardMaxIterations {
		t.Errorf("Expected hard ceiling %d, got %d", HardMaxIterations, inSet.Iterations)
	}

	out := MandelbrotAt(core.NewVec2(2, 2), 50)
	if !out.Escaped || out.Iterations != 1 {
		t.Errorf("Expected escape after 1 iteration, got %+v", out)
	}

	soft := MandelbrotAt(core.NewVec2(-0.5, 0), 20)
	if soft.Escaped || soft.Iterations != 20 {
		t.Errorf("Expected soft limit 20, got %+v", soft)
	}

	if got := MandelbrotAt(core.NewVec2(0, 0), 0).Iterations; got != 1 {
		t.Errorf("Expected zero iterations to clamp to 1, got %d", got)
	}

	// the Julia set for c=0 is the unit disc
	if JuliaAt(core.NewVec2(0.5, 0), core.NewVec2(0, 0), 100).Escaped {
		t.Errorf("Expected point inside the unit disc to stay bounded")
	}
	if !JuliaAt(core.NewVec2(1.5, 0), core.NewVec2(0, 0), 100).Escaped {
		t.Errorf("Expected point outside the unit disc to escape")
	}

	for _, kind := range []FractalKind{BurningShip, Tricorn} {
		if EscapeTime(kind, core.Vec2{}, core.Vec2{}, 100, 2).Escaped {
			t.Errorf("Fractal %d: expected c=0 to stay bounded", kind)
		}
	}
}

func TestMandelbrotInSetIsBlack(t *testing.T) {
	// world origin maps to c = (-0.5, 0), inside the main cardioid
	col := GenerateAt(core.NewVec2(0, 0), Params{Content: ContentMandelbrot})
	if col != (core.Vec3{}) {
		t.Errorf("Expected black in-set color, got %v", col)
	}
	far := GenerateAt(core.NewVec2(0.8, 0.8), Params{Content: ContentMandelbrot})
	if far == (core.Vec3{}) {
		t.Errorf("Expected escaped point to be colored")
	}
}

func TestUnknownContentIsGray(t *testing.T) {
	for _, ct := range []ContentType{ContentCount, 42, 1 << 31} {
		if got := Generate(core.NewVec2(0.3, 0.7), 1, core.Vec2{}, Params{Content: ct}); got != Fallback {
			t.Errorf("Content %d: expected gray fallback, got %v", ct, got)
		}
	}
}

func TestInfiniteZoomConsistency(t *testing.T) {
	pan := core.NewVec2(0.3125, -0.171875)
	offset := core.NewVec2(1.0/4096, -3.0/4096)

	for ct := ContentType(0); ct < ContentCount; ct++ {
		params := Params{Content: ct, Time: 0.75, P1: 0, P2: 0}
		if ct == ContentPolynomial {
			params.P1, params.P2, params.P3, params.P4 = 1, -0.5, 0.25, 0.1
		}

		t.Run(Catalog[ct].Name, func(t *testing.T) {
			for _, zoom := range []float32{1, 1000} {
				// the centre of the view is the pan point at every zoom
				centre := Generate(core.NewVec2(0.5, 0.5), zoom, pan, params)
				if want := GenerateAt(pan, params); centre != want {
					t.Errorf("Zoom %g: centre %v differs from world color %v", zoom, centre, want)
				}
			}

			uv1 := core.NewVec2(0.5, 0.5).Add(offset)
			uv1000 := core.NewVec2(0.5, 0.5).Add(offset.Multiply(1000))
			a := Generate(uv1, 1, pan, params)
			b := Generate(uv1000, 1000, pan, params)
			if !nearVec(a, b, 1e-4) {
				t.Errorf("Expected identical color at zoom 1 and 1000, got %v and %v", a, b)
			}
		})
	}
}

func TestGeneratorsStayFinite(t *testing.T) {
	nan := math32.NaN()
	inf := math32.Inf(1)

	paramSets := []struct {
		name   string
		params Params
	}{
		{"defaults", Params{}},
		{"negative", Params{P1: -1, P2: -5, P3: -2, P4: -1}},
		{"escape radius one", Params{P4: 1}},
		{"escape radius below one", Params{P4: 0.5}},
		{"huge", Params{P1: 1e30, P2: 1e30, P3: 1e30, P4: 1e30}},
		{"tiny", Params{P1: 1e-30, P2: 1e-30, P3: 1e-30, P4: 1e-30}},
		{"NaN", Params{P1: nan, P2: nan, P3: nan, P4: nan}},
		{"infinite", Params{P1: inf, P2: inf, P3: inf, P4: inf}},
		{"huge time", Params{Time: 1e30}},
	}
	points := append([]core.Vec2{
		core.NewVec2(1e30, -1e30),
		core.NewVec2(nan, 0),
		core.NewVec2(0, inf),
	}, samples...)

	for ct := ContentType(0); ct < ContentCount; ct++ {
		for _, ps := range paramSets {
			t.Run(Catalog[ct].Name+"/"+ps.name, func(t *testing.T) {
				params := ps.params
				params.Content = ct
				for _, p := range points {
					if col := GenerateAt(p, params); !col.IsFinite() {
						t.Errorf("Content %d at %v with %+v produced %v", ct, p, ps.params, col)
					}
				}
			})
		}
	}
}

func TestEscapeRadiusBelowOneUsesDefault(t *testing.T) {
	points := []core.Vec2{
		core.NewVec2(0.6, 0.1),
		core.NewVec2(-0.2, 0.4),
		core.NewVec2(0.8, 0.8),
	}

	for _, radius := range []float32{-1, 0, 0.5, 1} {
		for _, p := range points {
			want := GenerateAt(p, Params{Content: ContentMandelbrot})
			got := GenerateAt(p, Params{Content: ContentMandelbrot, P4: radius})
			if got != want {
				t.Errorf("Radius %g at %v: expected %v, got %v", radius, p, want, got)
			}
		}

		e := EscapeTime(Mandelbrot, core.Vec2{}, core.NewVec2(2, 2), 50, radius)
		if !e.Escaped || math32.IsNaN(e.Smooth) || math32.IsInf(e.Smooth, 0) {
			t.Errorf("Radius %g: expected a finite smooth count, got %+v", radius, e)
		}
	}
}

func TestEscapeTimeOverflowKeepsSmoothFinite(t *testing.T) {
	e := EscapeTime(Mandelbrot, core.Vec2{}, core.NewVec2(1e30, 1e30), 10, 2)
	if !e.Escaped || e.Smooth != 1 {
		t.Errorf("Expected escape after 1 iteration with smooth count 1, got %+v", e)
	}
}

func TestFractalKindParam(t *testing.T) {
	tests := []struct {
		value    float32
		expected FractalKind
	}{
		{0, Mandelbrot},
		{-3, Mandelbrot},
		{math32.NaN(), Mandelbrot},
		{0.6, Julia},
		{1.4, Julia},
		{2, BurningShip},
		{3, Tricorn},
		{1e30, Tricorn},
		{math32.Inf(1), Tricorn},
	}

	for _, tt := range tests {
		if got := fractalKind(tt.value); got != tt.expected {
			t.Errorf("fractalKind(%g): expected %d, got %d", tt.value, tt.expected, got)
		}
	}
}

func TestCountParam(t *testing.T) {
	tests := []struct {
		value    float32
		expected int
	}{
		{0, 100},
		{-1, 100},
		{math32.NaN(), 100},
		{0.5, 1},
		{40, 40},
		{1e30, HardMaxIterations},
		{math32.Inf(1), HardMaxIterations},
	}

	for _, tt := range tests {
		if got := countParam(tt.value, 100, HardMaxIterations); got != tt.expected {
			t.Errorf("countParam(%g): expected %d, got %d", tt.value, tt.expected, got)
		}
	}
}

func TestGenerateIsDeterministic(t *testing.T) {
	params := Params{Content: ContentVoronoi, Time: 1.25, P1: 7}
	for _, p := range samples {
		if GenerateAt(p, params) != GenerateAt(p, params) {
			t.Errorf("Expected identical colors at %v", p)
		}
	}
}

func TestWorldPoint(t *testing.T) {
	w := WorldPoint(core.NewVec2(1, 0), 2, core.NewVec2(10, 20))
	if w != core.NewVec2(10.25, 19.75) {
		t.Errorf("Expected (10.25, 19.75), got %v", w)
	}
	// a non-positive zoom is raised to MinZoom instead of dividing by zero
	z := WorldPoint(core.NewVec2(0.5, 0.5), 0, core.Vec2{})
	if z.X != 0 || z.Y != 0 || math32.IsNaN(z.X) {
		t.Errorf("Expected origin, got %v", z)
	}
}

func TestPalettes(t *testing.T) {
	if !nearVec(HSV(0, 1, 1), core.NewVec3(1, 0, 0), 1e-5) {
		t.Errorf("Expected red, got %v", HSV(0, 1, 1))
	}
	if !nearVec(HSV(1.0/3, 1, 1), core.NewVec3(0, 1, 0), 1e-5) {
		t.Errorf("Expected green, got %v", HSV(1.0/3, 1, 1))
	}
	if !nearVec(HSV(0.7, 0, 0.4), core.Splat3(0.4), 1e-5) {
		t.Errorf("Expected gray, got %v", HSV(0.7, 0, 0.4))
	}
	if Terrain(-1) != terrainStops[0].color || Terrain(2) != terrainStops[len(terrainStops)-1].color {
		t.Errorf("Expected terrain to clamp at the end stops")
	}
}

func TestLODForZoom(t *testing.T) {
	tests := []struct {
		zoom       float64
		iterations int
		precision  Precision
	}{
		{0.01, 4, PrecisionStandard},
		{1, 4, PrecisionStandard},
		{50, 9, PrecisionStandard},
		{5e4, 18, PrecisionDouble},
		{1e30, 20, PrecisionArbitrary},
	}
	for _, tt := range tests {
		lod := LODForZoom(tt.zoom)
		if lod.Iterations != tt.iterations {
			t.Errorf("Zoom %g: expected %d iterations, got %d", tt.zoom, tt.iterations, lod.Iterations)
		}
		if lod.Precision != tt.precision {
			t.Errorf("Zoom %g: expected %s precision, got %s", tt.zoom, tt.precision, lod.Precision)
		}
	}

	if got := LODForZoom(4).RecommendedResolution(512); got != 1024 {
		t.Errorf("Expected 1024, got %d", got)
	}
	if got := LODForZoom(1e12).RecommendedResolution(512); got != 8192 {
		t.Errorf("Expected 8192, got %d", got)
	}
	if got := LODForZoom(1e-4).RecommendedResolution(512); got != 64 {
		t.Errorf("Expected 64, got %d", got)
	}
	if !LODForZoom(1e5).PrecisionExhausted() || LODForZoom(10).PrecisionExhausted() {
		t.Errorf("Expected precision to run out past 1e4")
	}
}
