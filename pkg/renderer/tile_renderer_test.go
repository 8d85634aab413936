package renderer

import (
	"image"
	"math"
	"testing"

	"github.com/df07/go-procedural-raymarcher/pkg/procedural"
	"github.com/df07/go-procedural-raymarcher/pkg/scene"
)

func newPixelStats(width, height int) [][]PixelStats {
	pixelStats := make([][]PixelStats, height)
	for i := range pixelStats {
		pixelStats[i] = make([]PixelStats, width)
	}
	return pixelStats
}

// flatFrame renders the gray fallback everywhere
func flatFrame(width, height int) *Frame {
	frame := NewFrame(ModeProcedural, width, height)
	frame.Procedural.ContentType = uint32(procedural.ContentCount) + 5
	return frame
}

func TestSubPixelOffsets(t *testing.T) {
	ox, oy := SubPixelOffset(0)
	if ox != 0.5 || oy != 0.5 {
		t.Errorf("Expected sample 0 at the pixel centre, got (%f, %f)", ox, oy)
	}

	seen := map[[2]float32]bool{}
	for n := 0; n < 64; n++ {
		ox, oy := SubPixelOffset(n)
		if ox < 0 || ox >= 1 || oy < 0 || oy >= 1 {
			t.Errorf("Sample %d offset (%f, %f) outside the pixel", n, ox, oy)
		}
		key := [2]float32{ox, oy}
		if seen[key] {
			t.Errorf("Sample %d repeats offset (%f, %f)", n, ox, oy)
		}
		seen[key] = true

		if ax, ay := SubPixelOffset(n); ax != ox || ay != oy {
			t.Errorf("Sample %d offset is not reproducible", n)
		}
	}
}

func TestTileRendererPixelSampling(t *testing.T) {
	frame := NewFrame(ModeXRay, 2, 2)
	renderer := NewTileRenderer(frame, SamplingConfig{AdaptiveMinSamples: 1, AdaptiveThreshold: 0})

	pixelStats := newPixelStats(2, 2)
	targetSamples := 4
	stats := renderer.RenderTileBounds(image.Rect(0, 0, 2, 2), pixelStats, targetSamples)

	if stats.TotalPixels != 4 {
		t.Errorf("Expected 4 pixels, got %d", stats.TotalPixels)
	}
	if stats.MaxSamples != targetSamples {
		t.Errorf("Expected max samples %d, got %d", targetSamples, stats.MaxSamples)
	}

	for y := 0; y < 2; y++ {
		for x := 0; x < 2; x++ {
			if pixelStats[y][x].SampleCount != targetSamples {
				t.Errorf("Expected pixel [%d][%d] to have %d samples, got %d", y, x, targetSamples, pixelStats[y][x].SampleCount)
			}
			if !pixelStats[y][x].GetColor().IsFinite() {
				t.Errorf("Expected finite color for pixel [%d][%d]", y, x)
			}
		}
	}
}

func TestTileRendererAdaptiveSampling(t *testing.T) {
	config := SamplingConfig{AdaptiveMinSamples: 0.1, AdaptiveThreshold: 0.001}
	renderer := NewTileRenderer(flatFrame(1, 1), config)

	pixelStats := newPixelStats(1, 1)
	targetSamples := 100
	stats := renderer.RenderTileBounds(image.Rect(0, 0, 1, 1), pixelStats, targetSamples)

	actualSamples := pixelStats[0][0].SampleCount
	if stats.TotalPixels != 1 {
		t.Errorf("Expected 1 pixel, got %d", stats.TotalPixels)
	}
	if actualSamples >= targetSamples {
		t.Errorf("Expected adaptive sampling to stop early, but used %d/%d samples", actualSamples, targetSamples)
	}

	minSamples := int(float64(targetSamples) * config.AdaptiveMinSamples)
	if actualSamples != minSamples {
		t.Errorf("Expected a flat pixel to stop at the minimum %d samples, got %d", minSamples, actualSamples)
	}
}

func TestTileRendererStatistics(t *testing.T) {
	frame := NewFrame(ModeSDF, 3, 2)
	renderer := NewTileRenderer(frame, DefaultSamplingConfig())

	pixelStats := newPixelStats(3, 2)
	stats := renderer.RenderTileBounds(image.Rect(0, 0, 3, 2), pixelStats, 5)

	if stats.TotalPixels != 6 {
		t.Errorf("Expected 6 pixels, got %d", stats.TotalPixels)
	}
	if stats.TotalSamples == 0 {
		t.Error("Expected non-zero total samples")
	}
	if stats.MinSamples > stats.MaxSamplesUsed {
		t.Error("Expected min samples <= max samples")
	}

	expectedAverage := float64(stats.TotalSamples) / float64(stats.TotalPixels)
	if math.Abs(stats.AverageSamples-expectedAverage) > 0.001 {
		t.Errorf("Expected average %f, got %f", expectedAverage, stats.AverageSamples)
	}

	steps := 0
	for _, row := range pixelStats {
		for _, ps := range row {
			steps += ps.StepsAccum
		}
	}
	if steps == 0 {
		t.Error("Expected march steps to be recorded")
	}
}

func TestTileRendererDeterministic(t *testing.T) {
	frame := NewFrame(ModeSDF, 4, 4)
	frame.SDF.SceneID = scene.TwistedBox
	renderer := NewTileRenderer(frame, DefaultSamplingConfig())
	bounds := image.Rect(0, 0, 4, 4)

	pixelStats1 := newPixelStats(4, 4)
	stats1 := renderer.RenderTileBounds(bounds, pixelStats1, 6)
	pixelStats2 := newPixelStats(4, 4)
	stats2 := renderer.RenderTileBounds(bounds, pixelStats2, 6)

	if stats1 != stats2 {
		t.Errorf("Expected same stats, got %+v and %+v", stats1, stats2)
	}
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			if pixelStats1[y][x] != pixelStats2[y][x] {
				t.Errorf("Expected identical pixel [%d][%d], got %+v and %+v", y, x, pixelStats1[y][x], pixelStats2[y][x])
			}
		}
	}
}

func TestTileRendererBoundsClipping(t *testing.T) {
	renderer := NewTileRenderer(flatFrame(5, 5), DefaultSamplingConfig())

	pixelStats := newPixelStats(5, 5)
	stats := renderer.RenderTileBounds(image.Rect(1, 1, 3, 3), pixelStats, 2)

	if stats.TotalPixels != 4 {
		t.Errorf("Expected 4 pixels processed, got %d", stats.TotalPixels)
	}

	for y := 0; y < 5; y++ {
		for x := 0; x < 5; x++ {
			inBounds := x >= 1 && x < 3 && y >= 1 && y < 3
			hasSamples := pixelStats[y][x].SampleCount > 0

			if inBounds && !hasSamples {
				t.Errorf("Expected pixel [%d][%d] in bounds to have samples", y, x)
			}
			if !inBounds && hasSamples {
				t.Errorf("Expected pixel [%d][%d] outside bounds to have no samples", y, x)
			}
		}
	}
}
