package renderer

import (
	"image"
	"math"

	"github.com/df07/go-procedural-raymarcher/pkg/core"
)

// R2 sequence increments (inverse powers of the plastic number)
const (
	r2Alpha1 = 0.7548776662
	r2Alpha2 = 0.5698402910
)

// SamplingConfig controls adaptive sampling
type SamplingConfig struct {
	AdaptiveMinSamples float64 // Fraction of the target taken before convergence is tested
	AdaptiveThreshold  float64 // Relative luminance error at which a pixel stops
}

// DefaultSamplingConfig returns the adaptive sampling defaults
func DefaultSamplingConfig() SamplingConfig {
	return SamplingConfig{
		AdaptiveMinSamples: 0.25,
		AdaptiveThreshold:  0.02,
	}
}

// SubPixelOffset returns the offset of sample n inside its pixel. Sample 0 is
// the pixel centre and later samples follow the R2 low-discrepancy sequence,
// so every pass is reproducible.
func SubPixelOffset(n int) (float32, float32) {
	ox := math.Mod(0.5+float64(n)*r2Alpha1, 1)
	oy := math.Mod(0.5+float64(n)*r2Alpha2, 1)
	return float32(ox), float32(oy)
}

// TileRenderer renders the pixels of a tile with the frame's kernel
type TileRenderer struct {
	frame  *Frame
	config SamplingConfig
}

// NewTileRenderer creates a new tile renderer for a frame
func NewTileRenderer(frame *Frame, config SamplingConfig) *TileRenderer {
	return &TileRenderer{
		frame:  frame,
		config: config,
	}
}

// RenderTileBounds renders pixels within the specified bounds
func (tr *TileRenderer) RenderTileBounds(bounds image.Rectangle, pixelStats [][]PixelStats, targetSamples int) RenderStats {
	// Initialize statistics tracking for this specific bounds
	stats := tr.initRenderStatsForBounds(bounds, targetSamples)

	for j := bounds.Min.Y; j < bounds.Max.Y; j++ {
		for i := bounds.Min.X; i < bounds.Max.X; i++ {
			samplesUsed := tr.adaptiveSamplePixel(i, j, &pixelStats[j][i], targetSamples)
			tr.updateStats(&stats, samplesUsed)
		}
	}

	tr.finalizeStats(&stats)
	return stats
}

// adaptiveSamplePixel takes samples until the pixel converges or reaches maxSamples
func (tr *TileRenderer) adaptiveSamplePixel(i, j int, ps *PixelStats, maxSamples int) int {
	initialSampleCount := ps.SampleCount

	for ps.SampleCount < maxSamples && !tr.shouldStopSampling(ps, maxSamples) {
		ox, oy := SubPixelOffset(ps.SampleCount)
		sample := tr.frame.Shade(i, j, ox, oy)
		ps.AddSample(sanitize(sample.Color))
		ps.RecordMarch(sample.Steps, sample.Hit)
	}

	return ps.SampleCount - initialSampleCount
}

// sanitize keeps a single bad sample from poisoning the pixel accumulator
func sanitize(c core.Vec3) core.Vec3 {
	if !c.IsFinite() {
		return c.Clamp(0, 1)
	}
	return c
}

// shouldStopSampling determines if adaptive sampling should stop based on perceptual relative error
func (tr *TileRenderer) shouldStopSampling(ps *PixelStats, maxSamples int) bool {
	// Calculate minimum samples as percentage of max samples, but ensure at least 1 sample
	minSamples := max(1, int(float64(maxSamples)*tr.config.AdaptiveMinSamples))

	if ps.SampleCount < minSamples {
		return false
	}

	mean := ps.LuminanceAccum / float64(ps.SampleCount)
	meanSq := ps.LuminanceSqAccum / float64(ps.SampleCount)
	variance := math.Max(0, meanSq-mean*mean)

	// Avoid division by zero for black pixels
	if mean <= 1e-8 {
		return variance < 1e-6
	}

	relativeError := math.Sqrt(variance) / mean
	return relativeError < tr.config.AdaptiveThreshold
}

// initRenderStatsForBounds initializes the render statistics tracking for specific bounds
func (tr *TileRenderer) initRenderStatsForBounds(bounds image.Rectangle, maxSamples int) RenderStats {
	pixelCount := bounds.Dx() * bounds.Dy()
	return RenderStats{
		TotalPixels:    pixelCount,
		TotalSamples:   0,
		AverageSamples: 0,
		MaxSamples:     maxSamples,
		MinSamples:     maxSamples, // Start with max, will be reduced
		MaxSamplesUsed: 0,
	}
}

// updateStats updates the render statistics with data from a single pixel
func (tr *TileRenderer) updateStats(stats *RenderStats, samplesUsed int) {
	stats.TotalSamples += samplesUsed
	stats.MinSamples = min(stats.MinSamples, samplesUsed)
	stats.MaxSamplesUsed = max(stats.MaxSamplesUsed, samplesUsed)
}

// finalizeStats calculates final statistics after all pixels are rendered
func (tr *TileRenderer) finalizeStats(stats *RenderStats) {
	if stats.TotalPixels > 0 {
		stats.AverageSamples = float64(stats.TotalSamples) / float64(stats.TotalPixels)
	}
}
