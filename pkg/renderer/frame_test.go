package renderer

import (
	"testing"

	"github.com/df07/go-procedural-raymarcher/pkg/kernel"
)

func TestParseMode(t *testing.T) {
	for _, mode := range []Mode{ModeSDF, ModeProcedural, ModeXRay} {
		parsed, err := ParseMode(mode.String())
		if err != nil || parsed != mode {
			t.Errorf("ParseMode(%q) = %v, %v", mode.String(), parsed, err)
		}
	}
	if _, err := ParseMode("vector"); err == nil {
		t.Errorf("Expected an error for an unknown mode")
	}
}

func TestFrameUV(t *testing.T) {
	frame := NewFrame(ModeProcedural, 100, 50)

	tests := []struct {
		x, y   int
		ox, oy float32
		u, v   float32
	}{
		{0, 0, 0, 0, 0, 1},
		{0, 49, 0.5, 0.5, 0.005, 0.01},
		{99, 0, 1, 0, 1, 1},
		{50, 25, 0, 0, 0.5, 0.5},
	}
	for _, tt := range tests {
		uv := frame.UV(tt.x, tt.y, tt.ox, tt.oy)
		if !near(uv.X, tt.u, 1e-6) || !near(uv.Y, tt.v, 1e-6) {
			t.Errorf("UV(%d, %d, %f, %f): expected (%f, %f), got %v", tt.x, tt.y, tt.ox, tt.oy, tt.u, tt.v, uv)
		}
	}
}

func TestFrameSizeFollowsMode(t *testing.T) {
	frame := NewFrame(ModeSDF, 64, 32)
	frame.XRay = kernel.NewXRayBlock(10, 20, 0)

	if w, h := frame.Size(); w != 64 || h != 32 {
		t.Errorf("Expected 64x32, got %dx%d", w, h)
	}
	frame.Mode = ModeXRay
	if w, h := frame.Size(); w != 10 || h != 20 {
		t.Errorf("Expected 10x20, got %dx%d", w, h)
	}
}

func TestFrameShadeDispatch(t *testing.T) {
	frame := NewFrame(ModeSDF, 16, 16)
	frame.SetTime(2)

	uv := frame.UV(3, 4, 0.5, 0.5)
	if got, want := frame.Shade(3, 4, 0.5, 0.5), kernel.Raymarch(&frame.SDF, frame.Composer, uv); got != want {
		t.Errorf("SDF mode: expected %+v, got %+v", want, got)
	}

	frame.Mode = ModeProcedural
	if got, want := frame.Shade(3, 4, 0.5, 0.5).Color, kernel.Shade2D(&frame.Procedural, uv); got != want {
		t.Errorf("Procedural mode: expected %v, got %v", want, got)
	}

	frame.Mode = ModeXRay
	if got, want := frame.Shade(3, 4, 0.5, 0.5).Color, kernel.ShadeXRay(&frame.XRay, uv); got != want {
		t.Errorf("XRay mode: expected %v, got %v", want, got)
	}
	if frame.XRay.Time != 2 || frame.Procedural.Time != 2 || frame.SDF.Time != 2 {
		t.Errorf("Expected SetTime to update every block")
	}
}
