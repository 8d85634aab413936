// Package raymarch implements sphere tracing against a distance function.
package raymarch

import (
	"github.com/chewxy/math32"

	"github.com/df07/go-procedural-raymarcher/pkg/core"
	"github.com/df07/go-procedural-raymarcher/pkg/sdf"
)

// Flags is the render flag bitmask shared with the frame parameter block
type Flags uint32

const (
	FlagShowNormals Flags = 1 << iota
	FlagAmbientOcclusion
)

// HardMaxSteps caps the march loop no matter what the settings ask for
const HardMaxSteps = 512

// Settings controls a single march
type Settings struct {
	MaxSteps    uint32  // soft step budget, clamped to [1, HardMaxSteps]
	MaxDistance float32 // rays travelling further than this miss
	Epsilon     float32 // surface hit tolerance
	Flags       Flags
}

// DefaultSettings returns the viewer defaults
func DefaultSettings() Settings {
	return Settings{
		MaxSteps:    128,
		MaxDistance: 100,
		Epsilon:     0.001,
		Flags:       FlagAmbientOcclusion,
	}
}

// StepLimit returns the effective iteration count
func (s Settings) StepLimit() int {
	if s.MaxSteps == 0 {
		return 1
	}
	return int(min(s.MaxSteps, HardMaxSteps))
}

// Has reports whether flag f is set
func (s Settings) Has(f Flags) bool {
	return s.Flags&f != 0
}

// Result of a march. Distance is the ray parameter of the hit and is only
// meaningful when Hit is true.
type Result struct {
	Hit      bool
	Distance float32
	Steps    int
}

// March sphere-traces ray through dist. The loop runs at most
// settings.StepLimit() times.
func March(ray core.Ray, dist sdf.DistanceFunc, settings Settings) Result {
	limit := settings.StepLimit()
	var t float32

	for i := 0; i < limit; i++ {
		d := dist(ray.At(t))
		if math32.IsNaN(d) {
			return Result{Steps: i + 1}
		}
		if d < settings.Epsilon {
			return Result{Hit: true, Distance: t, Steps: i + 1}
		}
		// the far limit applies to where this sample was taken, so a step
		// that lands just past it still gets its hit test
		if t > settings.MaxDistance {
			return Result{Steps: i + 1}
		}
		t += d
	}

	return Result{Steps: limit}
}
