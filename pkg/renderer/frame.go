package renderer

import (
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/df07/go-procedural-raymarcher/pkg/core"
	"github.com/df07/go-procedural-raymarcher/pkg/kernel"
	"github.com/df07/go-procedural-raymarcher/pkg/procedural"
	"github.com/df07/go-procedural-raymarcher/pkg/scene"
	"github.com/df07/go-procedural-raymarcher/pkg/xray"
)

// MaxDimension is the largest width or height a frame may have
const MaxDimension = 8192

// ErrInvalidFrame is returned when a frame cannot be rendered as configured
var ErrInvalidFrame = errors.New("invalid frame")

// Mode selects which kernel entry point a frame renders
type Mode int

const (
	ModeSDF Mode = iota
	ModeProcedural
	ModeXRay
)

var modeNames = [...]string{"sdf", "procedural", "xray"}

func (m Mode) String() string {
	if m >= 0 && int(m) < len(modeNames) {
		return modeNames[m]
	}
	return fmt.Sprintf("mode(%d)", int(m))
}

// ParseMode converts a mode name to a Mode
func ParseMode(s string) (Mode, error) {
	for i, name := range modeNames {
		if s == name {
			return Mode(i), nil
		}
	}
	return ModeSDF, fmt.Errorf("unknown render mode %q", s)
}

// Frame is the per-frame snapshot every worker reads. It is built once before
// rendering starts and must not be modified while a render is in flight.
type Frame struct {
	Mode       Mode
	SDF        kernel.FrameBlock
	Procedural kernel.ProceduralBlock
	XRay       kernel.XRayBlock
	Composer   *scene.Composer
}

// NewFrame creates a frame with default blocks for every mode
func NewFrame(mode Mode, width, height int) *Frame {
	return &Frame{
		Mode:       mode,
		SDF:        kernel.NewFrameBlock(width, height),
		Procedural: kernel.NewProceduralBlock(width, height, procedural.ContentPerlin),
		XRay:       kernel.NewXRayBlock(width, height, xray.MotionVectors),
		Composer:   scene.NewComposer(),
	}
}

// Size returns the pixel dimensions of the active block
func (f *Frame) Size() (int, int) {
	var r mgl32.Vec2
	switch f.Mode {
	case ModeProcedural:
		r = f.Procedural.Resolution
	case ModeXRay:
		r = f.XRay.Resolution
	default:
		r = f.SDF.Resolution
	}
	return int(r[0]), int(r[1])
}

// SetTime stores the animation time in every block
func (f *Frame) SetTime(t float32) {
	f.SDF.Time = t
	f.Procedural.Time = t
	f.XRay.Time = t
}

// Validate checks the frame can be rendered
func (f *Frame) Validate() error {
	if f.Mode < ModeSDF || f.Mode > ModeXRay {
		return fmt.Errorf("%w: unknown mode %d", ErrInvalidFrame, int(f.Mode))
	}
	w, h := f.Size()
	if w <= 0 || h <= 0 || w > MaxDimension || h > MaxDimension {
		return fmt.Errorf("%w: size %dx%d outside 1..%d", ErrInvalidFrame, w, h, MaxDimension)
	}
	if f.Mode == ModeSDF && f.Composer == nil {
		return fmt.Errorf("%w: no scene composer", ErrInvalidFrame)
	}
	return nil
}

// UV maps pixel (x, y) plus a sub-pixel offset to kernel coordinates.
// Image rows grow downward while uv (0,0) is the bottom-left corner.
func (f *Frame) UV(x, y int, ox, oy float32) core.Vec2 {
	w, h := f.Size()
	return core.NewVec2((float32(x)+ox)/float32(w), 1-(float32(y)+oy)/float32(h))
}

// Shade evaluates one sample of pixel (x, y) with the active kernel
func (f *Frame) Shade(x, y int, ox, oy float32) kernel.Sample {
	uv := f.UV(x, y, ox, oy)
	switch f.Mode {
	case ModeProcedural:
		return kernel.Sample{Color: kernel.Shade2D(&f.Procedural, uv)}
	case ModeXRay:
		return kernel.Sample{Color: kernel.ShadeXRay(&f.XRay, uv)}
	default:
		return kernel.Raymarch(&f.SDF, f.Composer, uv)
	}
}
