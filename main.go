package main

import (
	"context"
	"flag"
	"fmt"
	"image"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"golang.org/x/sync/errgroup"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/df07/go-procedural-raymarcher/pkg/core"
	"github.com/df07/go-procedural-raymarcher/pkg/loaders"
	"github.com/df07/go-procedural-raymarcher/pkg/procedural"
	"github.com/df07/go-procedural-raymarcher/pkg/raymarch"
	"github.com/df07/go-procedural-raymarcher/pkg/renderer"
	"github.com/df07/go-procedural-raymarcher/pkg/scene"
	"github.com/df07/go-procedural-raymarcher/pkg/xray"
)

// job is one image to render
type job struct {
	name  string
	frame renderer.FrameOptions
}

// settings holds everything shared by the images of one invocation
type settings struct {
	progressive renderer.ProgressiveConfig
	supersample int
	format      renderer.Format
	caption     bool
	outDir      string
}

func main() {
	// Parse command line flags
	mode := flag.String("mode", "sdf", "Render mode: 'sdf', 'procedural' or 'xray'")
	sceneID := flag.Uint("scene", 0, fmt.Sprintf("Scene id: 0-%d for demos, %d for the dynamic scene", len(scene.Catalog)-2, scene.DynamicSceneID))
	dynamic := flag.String("dynamic", renderer.DefaultDynamicScene,
		"Scene loaded into the dynamic slot: "+strings.Join(renderer.DynamicSceneNames(), ", ")+" or a .scene file, empty for none")
	content := flag.Uint("content", 0, fmt.Sprintf("Procedural content type 0-%d", procedural.ContentCount-1))
	xrayType := flag.Uint("xray", 0, fmt.Sprintf("X-ray overlay 0-%d", xray.TypeCount-1))
	width := flag.Int("width", 400, "Image width in pixels")
	height := flag.Int("height", 300, "Image height in pixels")
	zoom := flag.Float64("zoom", 1, "2D zoom factor")
	panX := flag.Float64("panx", 0, "2D pan x")
	panY := flag.Float64("pany", 0, "2D pan y")
	t := flag.Float64("time", 0, "Animation time in seconds")
	var params [4]*float64
	for i := range params {
		params[i] = flag.Float64(fmt.Sprintf("p%d", i+1), 0, fmt.Sprintf("Generator parameter %d (0 = default)", i+1))
	}
	steps := flag.Uint("steps", 128, "Maximum march steps")
	epsilon := flag.Float64("epsilon", 0.001, "Surface hit tolerance")
	maxDist := flag.Float64("maxdist", 100, "Maximum march distance")
	normals := flag.Bool("normals", false, "Shade with surface normals")
	ao := flag.Bool("ao", true, "Ambient occlusion")
	samples := flag.Int("samples", 16, "Maximum samples per pixel")
	passes := flag.Int("passes", 4, "Maximum progressive passes")
	supersample := flag.Int("supersample", 1, "Render at this multiple of the output size and downscale")
	format := flag.String("format", "png", "Output format: png, bmp or tiff")
	caption := flag.Bool("caption", false, "Burn a caption with the mode and render statistics into the image")
	gallery := flag.Bool("gallery", false, "Render every demo scene, content type and x-ray overlay")
	jobs := flag.Int("jobs", max(1, runtime.NumCPU()/4), "Gallery images rendered at once")
	out := flag.String("out", "output", "Output directory")
	help := flag.Bool("help", false, "Show help information")
	flag.Parse()

	// Show help if requested
	if *help {
		printHelp()
		return
	}

	logger := renderer.NewDefaultLogger()

	renderMode, err := renderer.ParseMode(*mode)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(2)
	}
	outFormat, err := renderer.ParseFormat(*format)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(2)
	}
	if *supersample < 1 || *supersample > 4 {
		fmt.Printf("Error: supersample must be between 1 and 4, got %d\n", *supersample)
		os.Exit(2)
	}

	composer, err := renderer.NewDynamicComposer(*dynamic)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(2)
	}

	opts := renderer.DefaultFrameOptions(renderMode, *width, *height)
	opts.Scene = uint32(*sceneID)
	opts.Content = uint32(*content)
	opts.XRay = uint32(*xrayType)
	opts.Zoom = float32(*zoom)
	opts.Pan = mgl32.Vec2{float32(*panX), float32(*panY)}
	opts.Time = float32(*t)
	for i, p := range params {
		opts.Params[i] = float32(*p)
	}
	opts.March = raymarch.Settings{
		MaxSteps:    uint32(*steps),
		MaxDistance: float32(*maxDist),
		Epsilon:     float32(*epsilon),
	}
	if *normals {
		opts.March.Flags |= raymarch.FlagShowNormals
	}
	if *ao {
		opts.March.Flags |= raymarch.FlagAmbientOcclusion
	}

	progressive := renderer.DefaultProgressiveConfig()
	progressive.MaxSamplesPerPixel = *samples
	progressive.MaxPasses = *passes

	cfg := settings{
		progressive: progressive,
		supersample: *supersample,
		format:      outFormat,
		caption:     *caption,
		outDir:      *out,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	timestamp := time.Now().Format("20060102_150405")
	if *gallery {
		err = runGallery(ctx, galleryJobs(opts, composer), composer, cfg, timestamp, *jobs, logger)
	} else {
		err = runSingle(ctx, job{name: renderMode.String(), frame: opts}, composer, cfg, timestamp, logger)
	}
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
}

func printHelp() {
	fmt.Println("Procedural Raymarcher")
	fmt.Println("Usage: raymarcher [options]")
	fmt.Println()
	fmt.Println("Options:")
	flag.PrintDefaults()
	fmt.Println()
	fmt.Println("Available scenes:")
	for _, info := range scene.Catalog {
		fmt.Printf("  %3d - %s: %s\n", info.ID, info.Name, info.Description)
	}
	if files, err := loaders.ListSceneFiles("scenes"); err == nil && len(files) > 0 {
		fmt.Println()
		fmt.Println("Scene files for -dynamic:")
		for _, f := range files {
			fmt.Printf("  %s - %s: %s\n", f.FilePath, f.Name, f.Description)
		}
	}
	fmt.Println()
	fmt.Println("Available content types:")
	for _, info := range procedural.Catalog {
		fmt.Printf("  %3d - %s (p1..p4: %s)\n", info.Type, info.Name, strings.Join(info.Params[:], ", "))
	}
	fmt.Println()
	fmt.Println("Available x-ray overlays:")
	for _, info := range xray.All() {
		fmt.Printf("  %3d - %s: %s\n", info.Type, info.Name, info.Description)
	}
	fmt.Println()
	fmt.Println("Output will be saved to output/<mode>/render_<timestamp>.<format>")
}

func runSingle(ctx context.Context, j job, composer *scene.Composer, cfg settings, timestamp string, logger core.Logger) error {
	dir := filepath.Join(cfg.outDir, j.frame.Mode.String())
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}
	path := filepath.Join(dir, fmt.Sprintf("render_%s.%s", timestamp, cfg.format.Extension()))
	return renderJob(ctx, j, composer, cfg, path, logger)
}

// runGallery renders every job with at most limit renders in flight; the
// first failure cancels the rest
func runGallery(ctx context.Context, jobs []job, composer *scene.Composer, cfg settings, timestamp string, limit int, logger core.Logger) error {
	dir := filepath.Join(cfg.outDir, "gallery", timestamp)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(max(1, limit))
	for _, j := range jobs {
		j := j
		path := filepath.Join(dir, fmt.Sprintf("%s.%s", j.name, cfg.format.Extension()))
		g.Go(func() error {
			return renderJob(ctx, j, composer, cfg, path, logger)
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	fmt.Printf("Gallery of %d images saved in %s\n", len(jobs), dir)
	return nil
}

// galleryJobs lists every demo scene, content type and overlay using base for
// the shared view settings
func galleryJobs(base renderer.FrameOptions, composer *scene.Composer) []job {
	var jobs []job
	for _, info := range scene.Catalog {
		if info.ID == scene.DynamicSceneID && !composer.HasDynamic() {
			continue
		}
		opts := base
		opts.Mode = renderer.ModeSDF
		opts.Scene = info.ID
		jobs = append(jobs, job{name: fmt.Sprintf("sdf_%03d_%s", info.ID, slug(info.Name)), frame: opts})
	}
	for _, info := range procedural.Catalog {
		opts := base
		opts.Mode = renderer.ModeProcedural
		opts.Content = uint32(info.Type)
		jobs = append(jobs, job{name: fmt.Sprintf("procedural_%d_%s", info.Type, slug(info.Name)), frame: opts})
	}
	for _, info := range xray.All() {
		opts := base
		opts.Mode = renderer.ModeXRay
		opts.XRay = uint32(info.Type)
		jobs = append(jobs, job{name: fmt.Sprintf("xray_%d_%s", info.Type, slug(info.Name)), frame: opts})
	}
	return jobs
}

func slug(name string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), " ", "-")
}

// renderImage renders one frame, supersampling when cfg asks for it
func renderImage(ctx context.Context, j job, composer *scene.Composer, cfg settings, logger core.Logger) (*image.RGBA, renderer.RenderStats, error) {
	opts := j.frame
	opts.Width *= cfg.supersample
	opts.Height *= cfg.supersample

	frame, err := renderer.BuildFrame(opts, composer)
	if err != nil {
		return nil, renderer.RenderStats{}, fmt.Errorf("%s: %w", j.name, err)
	}
	pr, err := renderer.NewProgressiveRenderer(frame, cfg.progressive, logger)
	if err != nil {
		return nil, renderer.RenderStats{}, fmt.Errorf("%s: %w", j.name, err)
	}
	result, err := pr.Render(ctx)
	if err != nil {
		return nil, renderer.RenderStats{}, fmt.Errorf("%s: %w", j.name, err)
	}
	return renderer.Downsample(result.Image, cfg.supersample), result.Stats, nil
}

func renderJob(ctx context.Context, j job, composer *scene.Composer, cfg settings, path string, logger core.Logger) error {
	startTime := time.Now()
	img, stats, err := renderImage(ctx, j, composer, cfg, logger)
	if err != nil {
		return err
	}
	elapsed := time.Since(startTime)

	if cfg.caption {
		renderer.Caption(img, captionLines(j.frame, stats))
	}

	if err := saveImage(path, img, cfg.format); err != nil {
		return err
	}
	printReport(j.name, path, stats, elapsed)
	return nil
}

func saveImage(path string, img image.Image, format renderer.Format) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	if err := renderer.Encode(file, img, format); err != nil {
		file.Close()
		return fmt.Errorf("encoding %s: %w", path, err)
	}
	return file.Close()
}

func printReport(name, path string, stats renderer.RenderStats, elapsed time.Duration) {
	p := message.NewPrinter(language.English)
	p.Printf("%s: %d pixels, %d samples (%.1f per pixel, range %d - %d), %d march steps, %d hit pixels in %v\n",
		name, stats.TotalPixels, stats.TotalSamples, stats.AverageSamples, stats.MinSamples, stats.MaxSamplesUsed,
		stats.TotalSteps, stats.HitPixels, elapsed.Round(time.Millisecond))
	p.Printf("  saved as %s\n", path)
}

// captionLines describes what the frame shows followed by its statistics
func captionLines(opts renderer.FrameOptions, stats renderer.RenderStats) []string {
	var lines []string
	switch opts.Mode {
	case renderer.ModeSDF:
		lines = append(lines, fmt.Sprintf("SDF %d: %s", opts.Scene, sceneName(opts.Scene)))
		lines = append(lines, fmt.Sprintf("%.1f steps/sample, %d/%d hit", stats.AverageSteps, stats.HitPixels, stats.TotalPixels))
	case renderer.ModeProcedural:
		lines = append(lines, fmt.Sprintf("%s  zoom %g", contentName(opts.Content), opts.Zoom))
		if opts.Content == uint32(procedural.ContentPolynomial) {
			p := opts.Params
			lines = append(lines, fmt.Sprintf("y = %gx^3 + %gx^2 + %gx + %g", p[0], p[1], p[2], p[3]))
		}
	case renderer.ModeXRay:
		info := xray.Describe(xray.Type(opts.XRay))
		lines = append(lines, info.Name, info.Equation)
	}
	lines = append(lines, fmt.Sprintf("%dx%d, %.1f samples/pixel", opts.Width, opts.Height, stats.AverageSamples))
	return lines
}

func sceneName(id uint32) string {
	for _, info := range scene.Catalog {
		if info.ID == id {
			return info.Name
		}
	}
	// unknown ids render demo 0
	return scene.Catalog[scene.CarvedSphere].Name
}

func contentName(c uint32) string {
	if c < uint32(procedural.ContentCount) {
		return procedural.Catalog[c].Name
	}
	return "Unknown content"
}
