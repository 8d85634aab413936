package main

import (
	"context"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/df07/go-procedural-raymarcher/pkg/procedural"
	"github.com/df07/go-procedural-raymarcher/pkg/renderer"
	"github.com/df07/go-procedural-raymarcher/pkg/scene"
	"github.com/df07/go-procedural-raymarcher/pkg/xray"
)

type testLogger struct{}

func (testLogger) Printf(format string, args ...interface{}) {}

func testSettings(t *testing.T) settings {
	progressive := renderer.DefaultProgressiveConfig()
	progressive.MaxSamplesPerPixel = 1
	progressive.MaxPasses = 1
	return settings{
		progressive: progressive,
		supersample: 1,
		format:      renderer.FormatPNG,
		outDir:      t.TempDir(),
	}
}

func TestGalleryJobs(t *testing.T) {
	base := renderer.DefaultFrameOptions(renderer.ModeSDF, 16, 16)
	demos := len(scene.Catalog) - 1

	tests := []struct {
		name     string
		composer *scene.Composer
		expected int
	}{
		{"empty dynamic slot", scene.NewComposer(), demos + int(procedural.ContentCount) + int(xray.TypeCount)},
		{"loaded dynamic slot", mustDynamic(t, renderer.DefaultDynamicScene), demos + 1 + int(procedural.ContentCount) + int(xray.TypeCount)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			jobs := galleryJobs(base, tt.composer)
			if len(jobs) != tt.expected {
				t.Fatalf("Expected %d jobs, got %d", tt.expected, len(jobs))
			}

			names := make(map[string]bool)
			for _, j := range jobs {
				if names[j.name] {
					t.Errorf("Duplicate job name %q", j.name)
				}
				names[j.name] = true
				if strings.ContainsAny(j.name, " /") {
					t.Errorf("Job name %q is not file safe", j.name)
				}
				if !strings.HasPrefix(j.name, j.frame.Mode.String()+"_") {
					t.Errorf("Job %q does not match its mode %s", j.name, j.frame.Mode)
				}
			}
		})
	}
}

func mustDynamic(t *testing.T, name string) *scene.Composer {
	t.Helper()
	composer, err := renderer.NewDynamicComposer(name)
	if err != nil {
		t.Fatalf("NewDynamicComposer failed: %v", err)
	}
	return composer
}

func TestCaptionLines(t *testing.T) {
	stats := renderer.RenderStats{TotalPixels: 256, AverageSamples: 1, AverageSteps: 12.5, HitPixels: 100}

	tests := []struct {
		name     string
		mode     renderer.Mode
		setup    func(o *renderer.FrameOptions)
		expected string
	}{
		{"sdf scene name", renderer.ModeSDF, func(o *renderer.FrameOptions) { o.Scene = scene.SimpleSphere }, "Simple Sphere"},
		{"sdf unknown scene", renderer.ModeSDF, func(o *renderer.FrameOptions) { o.Scene = 42 }, "Carved Sphere"},
		{"sdf steps", renderer.ModeSDF, func(o *renderer.FrameOptions) {}, "12.5 steps/sample"},
		{"procedural name", renderer.ModeProcedural, func(o *renderer.FrameOptions) { o.Content = uint32(procedural.ContentMandelbrot) }, "Mandelbrot"},
		{"polynomial equation", renderer.ModeProcedural, func(o *renderer.FrameOptions) {
			o.Content = uint32(procedural.ContentPolynomial)
			o.Params = [4]float32{1, 0, -2, 0.5}
		}, "y = 1x^3 + 0x^2 + -2x + 0.5"},
		{"xray equation", renderer.ModeXRay, func(o *renderer.FrameOptions) { o.XRay = uint32(xray.FrequencyHeatmap) }, xray.Describe(xray.FrequencyHeatmap).Equation},
		{"size", renderer.ModeXRay, func(o *renderer.FrameOptions) {}, "16x16"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := renderer.DefaultFrameOptions(tt.mode, 16, 16)
			tt.setup(&opts)
			joined := strings.Join(captionLines(opts, stats), "\n")
			if !strings.Contains(joined, tt.expected) {
				t.Errorf("Expected caption to contain %q, got:\n%s", tt.expected, joined)
			}
		})
	}
}

func TestRenderImageSupersample(t *testing.T) {
	cfg := testSettings(t)
	cfg.supersample = 2

	j := job{name: "test", frame: renderer.DefaultFrameOptions(renderer.ModeProcedural, 16, 12)}
	img, stats, err := renderImage(context.Background(), j, nil, cfg, testLogger{})
	if err != nil {
		t.Fatalf("renderImage failed: %v", err)
	}

	if b := img.Bounds(); b.Dx() != 16 || b.Dy() != 12 {
		t.Errorf("Expected a 16x12 image, got %v", b)
	}
	if stats.TotalPixels != 32*24 {
		t.Errorf("Expected stats for the 32x24 render, got %d pixels", stats.TotalPixels)
	}
}

func TestRenderImageInvalid(t *testing.T) {
	j := job{name: "broken", frame: renderer.DefaultFrameOptions(renderer.ModeSDF, 0, 16)}
	if _, _, err := renderImage(context.Background(), j, nil, testSettings(t), testLogger{}); err == nil {
		t.Errorf("Expected an error for an empty frame")
	} else if !strings.HasPrefix(err.Error(), "broken:") {
		t.Errorf("Expected the job name in the error, got %v", err)
	}
}

func TestRunSingle(t *testing.T) {
	cfg := testSettings(t)
	cfg.caption = true

	j := job{name: "xray", frame: renderer.DefaultFrameOptions(renderer.ModeXRay, 32, 32)}
	if err := runSingle(context.Background(), j, nil, cfg, "20250101_000000", testLogger{}); err != nil {
		t.Fatalf("runSingle failed: %v", err)
	}

	path := filepath.Join(cfg.outDir, "xray", "render_20250101_000000.png")
	file, err := os.Open(path)
	if err != nil {
		t.Fatalf("Expected output at %s: %v", path, err)
	}
	defer file.Close()

	img, err := png.Decode(file)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 32 || b.Dy() != 32 {
		t.Errorf("Expected a 32x32 image, got %v", b)
	}
}

func TestRunGallery(t *testing.T) {
	cfg := testSettings(t)
	cfg.format = renderer.FormatBMP

	base := renderer.DefaultFrameOptions(renderer.ModeSDF, 16, 16)
	jobs := galleryJobs(base, scene.NewComposer())
	if err := runGallery(context.Background(), jobs, scene.NewComposer(), cfg, "ts", 4, testLogger{}); err != nil {
		t.Fatalf("runGallery failed: %v", err)
	}

	entries, err := os.ReadDir(filepath.Join(cfg.outDir, "gallery", "ts"))
	if err != nil {
		t.Fatalf("ReadDir failed: %v", err)
	}
	if len(entries) != len(jobs) {
		t.Errorf("Expected %d images, got %d", len(jobs), len(entries))
	}
}

func TestRunGalleryCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	base := renderer.DefaultFrameOptions(renderer.ModeSDF, 16, 16)
	jobs := galleryJobs(base, scene.NewComposer())
	if err := runGallery(ctx, jobs, scene.NewComposer(), testSettings(t), "ts", 2, testLogger{}); err == nil {
		t.Errorf("Expected an error from a cancelled gallery")
	}
}
