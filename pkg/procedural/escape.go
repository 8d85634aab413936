package procedural

import (
	"github.com/chewxy/math32"

	"github.com/df07/go-procedural-raymarcher/pkg/core"
)

const (
	// HardMaxIterations caps every escape-time loop regardless of the request
	HardMaxIterations   = 256
	DefaultIterations   = 100
	DefaultEscapeRadius = 2
)

// FractalKind selects the escape-time recurrence
type FractalKind uint8

const (
	Mandelbrot FractalKind = iota
	Julia
	BurningShip
	Tricorn

	// FractalKindCount is one past the last valid kind
	FractalKindCount
)

// DefaultJuliaC is the Julia constant used when none is given
var DefaultJuliaC = core.Vec2{X: -0.8, Y: 0.156}

// Escape is the outcome of an escape-time iteration
type Escape struct {
	Iterations int
	Escaped    bool
	Smooth     float32 // continuous iteration count, only set when Escaped
}

// ClampIterations limits a requested iteration count to [1, HardMaxIterations]
func ClampIterations(n int) int {
	return max(1, min(n, HardMaxIterations))
}

// EscapeTime iterates z <- f(z) + c from z until |z|^2 exceeds radius^2 or
// the iteration budget runs out
func EscapeTime(kind FractalKind, z, c core.Vec2, maxIterations int, radius float32) Escape {
	limit := ClampIterations(maxIterations)
	// the smooth count needs log(radius) > 0
	if !(radius > 1) {
		radius = DefaultEscapeRadius
	}
	r2 := radius * radius

	for i := 0; i < limit; i++ {
		x, y := z.X, z.Y
		switch kind {
		case BurningShip:
			x, y = math32.Abs(x), math32.Abs(y)
		case Tricorn:
			y = -y
		}
		z = core.Vec2{X: x*x - y*y + c.X, Y: 2*x*y + c.Y}

		m2 := z.Dot(z)
		if m2 > r2 {
			// log2(log|z|) gives the fractional part of the count
			smooth := float32(i+1) - math32.Log2(math32.Log(m2)*0.5/math32.Log(radius))
			if math32.IsNaN(smooth) || math32.IsInf(smooth, 0) {
				// |z|^2 overflowed float32
				smooth = float32(i + 1)
			}
			return Escape{Iterations: i + 1, Escaped: true, Smooth: smooth}
		}
	}

	return Escape{Iterations: limit}
}

// MandelbrotAt iterates the Mandelbrot recurrence for c
func MandelbrotAt(c core.Vec2, maxIterations int) Escape {
	return EscapeTime(Mandelbrot, core.Vec2{}, c, maxIterations, DefaultEscapeRadius)
}

// JuliaAt iterates the Julia recurrence starting at z with constant c
func JuliaAt(z, c core.Vec2, maxIterations int) Escape {
	return EscapeTime(Julia, z, c, maxIterations, DefaultEscapeRadius)
}
