package renderer

import (
	"errors"
	"testing"

	"github.com/df07/go-procedural-raymarcher/pkg/raymarch"
)

func TestBuildFrameDefaults(t *testing.T) {
	frame, err := BuildFrame(DefaultFrameOptions(ModeSDF, 32, 24), nil)
	if err != nil {
		t.Fatalf("BuildFrame failed: %v", err)
	}

	if w, h := frame.Size(); w != 32 || h != 24 {
		t.Errorf("Expected 32x24, got %dx%d", w, h)
	}
	if frame.Composer == nil {
		t.Errorf("Expected a default composer")
	}
	if got := frame.SDF.Settings(); got != raymarch.DefaultSettings() {
		t.Errorf("Expected default march settings, got %+v", got)
	}
	pos := frame.SDF.CameraPos
	if !near(pos[0], 0, 1e-4) || !near(pos[1], 0, 1e-4) || !near(pos[2], 5, 1e-4) {
		t.Errorf("Expected camera at (0,0,5), got %v", pos)
	}
}

func TestBuildFrameCamera(t *testing.T) {
	opts := DefaultFrameOptions(ModeSDF, 16, 16)
	opts.Yaw = 90
	opts.Distance = 3

	frame, err := BuildFrame(opts, nil)
	if err != nil {
		t.Fatalf("BuildFrame failed: %v", err)
	}
	pos := frame.SDF.CameraPos
	if !near(pos[0], 3, 1e-4) || !near(pos[1], 0, 1e-4) || !near(pos[2], 0, 1e-4) {
		t.Errorf("Expected camera at (3,0,0), got %v", pos)
	}

	opts.Yaw = 0
	opts.Pitch = 30
	frame, err = BuildFrame(opts, nil)
	if err != nil {
		t.Fatalf("BuildFrame failed: %v", err)
	}
	if frame.SDF.CameraPos[1] <= 0 {
		t.Errorf("Expected positive pitch to raise the camera, got %v", frame.SDF.CameraPos)
	}
}

func TestBuildFrame2D(t *testing.T) {
	opts := DefaultFrameOptions(ModeXRay, 16, 16)
	opts.XRay = 2
	opts.Content = 3
	opts.Zoom = 4
	opts.Params = [4]float32{1, 2, 3, 4}

	frame, err := BuildFrame(opts, nil)
	if err != nil {
		t.Fatalf("BuildFrame failed: %v", err)
	}
	if frame.XRay.XRayType != 2 || frame.Procedural.ContentType != 3 {
		t.Errorf("Expected selectors 2 and 3, got %d and %d", frame.XRay.XRayType, frame.Procedural.ContentType)
	}
	if frame.XRay.Zoom != 4 || frame.XRay.Param4 != 4 || frame.Procedural.Param1 != 1 {
		t.Errorf("Expected zoom and params copied into both 2D blocks")
	}
}

func TestBuildFrameErrors(t *testing.T) {
	badFov := DefaultFrameOptions(ModeSDF, 16, 16)
	badFov.Fov = 0
	if _, err := BuildFrame(badFov, nil); !errors.Is(err, ErrDegenerateCamera) {
		t.Errorf("Expected ErrDegenerateCamera for zero fov, got %v", err)
	}

	if _, err := BuildFrame(DefaultFrameOptions(ModeProcedural, 0, 16), nil); !errors.Is(err, ErrInvalidFrame) {
		t.Errorf("Expected ErrInvalidFrame for zero width, got %v", err)
	}
}
