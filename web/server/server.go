package server

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"image"
	"image/png"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/df07/go-procedural-raymarcher/pkg/loaders"
	"github.com/df07/go-procedural-raymarcher/pkg/procedural"
	"github.com/df07/go-procedural-raymarcher/pkg/raymarch"
	"github.com/df07/go-procedural-raymarcher/pkg/renderer"
	"github.com/df07/go-procedural-raymarcher/pkg/scene"
	"github.com/df07/go-procedural-raymarcher/pkg/xray"
)

// DefaultTileSize is the tile edge used for streamed renders
const DefaultTileSize = 64

// Server handles web requests for the procedural renderer
type Server struct {
	port      int
	composer  *scene.Composer
	scenesDir string
	logger    *slog.Logger
}

// NewServer creates a new web server. A nil composer serves the built-in
// demos with an empty dynamic slot. Scene files in scenesDir can replace the
// dynamic slot per request.
func NewServer(port int, composer *scene.Composer, scenesDir string) *Server {
	if composer == nil {
		composer = scene.NewComposer()
	}
	return &Server{
		port:      port,
		composer:  composer,
		scenesDir: scenesDir,
		logger:    slog.Default(),
	}
}

// RenderRequest represents a render request from the client
type RenderRequest struct {
	Mode      renderer.Mode
	Scene     int
	SceneFile string // id of a scene file for the dynamic slot
	Content   int
	XRay      int
	Width     int
	Height    int

	// 2D view
	Zoom float64
	PanX float64
	PanY float64
	Time float64
	P    [4]float64

	// 3D camera and march settings
	Fov         float64
	Yaw         float64
	Pitch       float64
	Distance    float64
	MaxSteps    int
	Epsilon     float64
	MaxDistance float64
	Normals     bool
	AO          bool

	// Progressive sampling
	MaxSamples         int
	MaxPasses          int
	AdaptiveMinSamples float64
	AdaptiveThreshold  float64
}

// intLimit and floatLimit describe a validated query parameter
type intLimit struct {
	Default int `json:"default"`
	Min     int `json:"min"`
	Max     int `json:"max"`
}

type floatLimit struct {
	Default float64 `json:"default"`
	Min     float64 `json:"min"`
	Max     float64 `json:"max"`
}

var (
	limitWidth    = intLimit{400, 16, 2048}
	limitHeight   = intLimit{300, 16, 2048}
	limitScene    = intLimit{0, 0, int(scene.DynamicSceneID)}
	limitContent  = intLimit{0, 0, int(procedural.ContentCount) - 1}
	limitXRay     = intLimit{0, 0, int(xray.TypeCount) - 1}
	limitSteps    = intLimit{128, 1, raymarch.HardMaxSteps}
	limitSamples  = intLimit{16, 1, 256}
	limitPasses   = intLimit{4, 1, 64}
	limitZoom     = floatLimit{1, float64(procedural.MinZoom), 1e7}
	limitPan      = floatLimit{0, -1e6, 1e6}
	limitTime     = floatLimit{0, 0, 1e6}
	limitParam    = floatLimit{0, -1e6, 1e6}
	limitFov      = floatLimit{45, 10, 120}
	limitYaw      = floatLimit{0, -360, 360}
	limitPitch    = floatLimit{0, -89, 89}
	limitDistance = floatLimit{5, 1, 50}
	limitEpsilon  = floatLimit{0.001, 1e-6, 0.1}
	limitMaxDist  = floatLimit{100, 1, 1000}
	limitAdaptMin = floatLimit{0.25, 0.01, 1}
	limitAdaptThr = floatLimit{0.02, 0.001, 0.5}
)

// Handler returns the HTTP routes served by s
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/health", s.handleHealth)
	mux.HandleFunc("/api/config", s.handleConfig)
	mux.HandleFunc("/api/render", s.handleRender)
	mux.HandleFunc("/api/inspect", s.handleInspect)
	return mux
}

// Start starts the web server
func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.port)
	s.logger.Info("starting web server", "url", "http://localhost"+addr)

	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return srv.ListenAndServe()
}

// handleHealth provides a simple health check endpoint
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleConfig returns defaults, validation limits and the scene, content and
// overlay catalogues
func (s *Server) handleConfig(w http.ResponseWriter, r *http.Request) {
	sceneFiles, err := loaders.ListSceneFiles(s.scenesDir)
	if err != nil {
		s.logger.Warn("listing scene files", "dir", s.scenesDir, "err", err)
		sceneFiles = []loaders.SceneFile{}
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"modes":          []string{renderer.ModeSDF.String(), renderer.ModeProcedural.String(), renderer.ModeXRay.String()},
		"scenes":         scene.Catalog,
		"sceneFiles":     sceneFiles,
		"dynamicScene":   s.composer.HasDynamic(),
		"dynamicSceneId": scene.DynamicSceneID,
		"contents":       procedural.Catalog,
		"xrayModes":      xray.All(),
		"tileSize":       DefaultTileSize,
		"limits": map[string]interface{}{
			"width":              limitWidth,
			"height":             limitHeight,
			"scene":              limitScene,
			"content":            limitContent,
			"xray":               limitXRay,
			"steps":              limitSteps,
			"maxSamples":         limitSamples,
			"maxPasses":          limitPasses,
			"zoom":               limitZoom,
			"pan":                limitPan,
			"time":               limitTime,
			"param":              limitParam,
			"fov":                limitFov,
			"yaw":                limitYaw,
			"pitch":              limitPitch,
			"distance":           limitDistance,
			"epsilon":            limitEpsilon,
			"maxDistance":        limitMaxDist,
			"adaptiveMinSamples": limitAdaptMin,
			"adaptiveThreshold":  limitAdaptThr,
		},
	})
}

// parseCommonSceneParams parses the parameters shared by render and inspect
func (s *Server) parseCommonSceneParams(r *http.Request, req *RenderRequest) error {
	q := r.URL.Query()

	req.Mode = renderer.ModeSDF
	if mode := q.Get("mode"); mode != "" {
		parsed, err := renderer.ParseMode(mode)
		if err != nil {
			return err
		}
		req.Mode = parsed
	}
	req.SceneFile = q.Get("sceneFile")

	ints := []struct {
		dst   *int
		key   string
		limit intLimit
	}{
		{&req.Scene, "scene", limitScene},
		{&req.Content, "content", limitContent},
		{&req.XRay, "xray", limitXRay},
		{&req.Width, "width", limitWidth},
		{&req.Height, "height", limitHeight},
		{&req.MaxSteps, "steps", limitSteps},
	}
	for _, p := range ints {
		v, err := parseIntParam(q, p.key, p.limit.Default, p.limit.Min, p.limit.Max)
		if err != nil {
			return err
		}
		*p.dst = v
	}

	floats := []struct {
		dst   *float64
		key   string
		limit floatLimit
	}{
		{&req.Zoom, "zoom", limitZoom},
		{&req.PanX, "panX", limitPan},
		{&req.PanY, "panY", limitPan},
		{&req.Time, "time", limitTime},
		{&req.P[0], "p1", limitParam},
		{&req.P[1], "p2", limitParam},
		{&req.P[2], "p3", limitParam},
		{&req.P[3], "p4", limitParam},
		{&req.Fov, "fov", limitFov},
		{&req.Yaw, "yaw", limitYaw},
		{&req.Pitch, "pitch", limitPitch},
		{&req.Distance, "distance", limitDistance},
		{&req.Epsilon, "epsilon", limitEpsilon},
		{&req.MaxDistance, "maxDistance", limitMaxDist},
	}
	for _, p := range floats {
		v, err := parseFloatParam(q, p.key, p.limit.Default, p.limit.Min, p.limit.Max)
		if err != nil {
			return err
		}
		*p.dst = v
	}

	var err error
	if req.Normals, err = parseBoolParam(q, "normals", false); err != nil {
		return err
	}
	if req.AO, err = parseBoolParam(q, "ao", true); err != nil {
		return err
	}
	return nil
}

// buildFrame converts a validated request into a frame snapshot
func (s *Server) buildFrame(req *RenderRequest) (*renderer.Frame, error) {
	opts := renderer.DefaultFrameOptions(req.Mode, req.Width, req.Height)
	opts.Scene = uint32(req.Scene)
	opts.Content = uint32(req.Content)
	opts.XRay = uint32(req.XRay)
	opts.Time = float32(req.Time)

	opts.Fov = float32(req.Fov)
	opts.Yaw = float32(req.Yaw)
	opts.Pitch = float32(req.Pitch)
	opts.Distance = float32(req.Distance)
	opts.March = raymarch.Settings{
		MaxSteps:    uint32(req.MaxSteps),
		MaxDistance: float32(req.MaxDistance),
		Epsilon:     float32(req.Epsilon),
	}
	if req.Normals {
		opts.March.Flags |= raymarch.FlagShowNormals
	}
	if req.AO {
		opts.March.Flags |= raymarch.FlagAmbientOcclusion
	}

	opts.Zoom = float32(req.Zoom)
	opts.Pan = mgl32.Vec2{float32(req.PanX), float32(req.PanY)}
	for i, p := range req.P {
		opts.Params[i] = float32(p)
	}

	composer := s.composer
	if req.SceneFile != "" {
		file, err := loaders.FindSceneFile(s.scenesDir, req.SceneFile)
		if err != nil {
			return nil, err
		}
		if composer, err = renderer.NewDynamicComposer(file.FilePath); err != nil {
			return nil, err
		}
	}
	return renderer.BuildFrame(opts, composer)
}

// parseIntParam parses an integer parameter from URL query with validation
func parseIntParam(values url.Values, key string, defaultValue, min, max int) (int, error) {
	if value := values.Get(key); value != "" {
		parsed, err := strconv.Atoi(value)
		if err != nil {
			return 0, fmt.Errorf("invalid %s: %s", key, value)
		}
		if parsed < min || parsed > max {
			return 0, fmt.Errorf("%s must be between %d and %d, got: %d", key, min, max, parsed)
		}
		return parsed, nil
	}
	return defaultValue, nil
}

// parseFloatParam parses a float parameter from URL query with validation.
// NaN never passes the range check.
func parseFloatParam(values url.Values, key string, defaultValue, min, max float64) (float64, error) {
	if value := values.Get(key); value != "" {
		parsed, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid %s: %s", key, value)
		}
		if !(parsed >= min && parsed <= max) {
			return 0, fmt.Errorf("%s must be between %g and %g, got: %g", key, min, max, parsed)
		}
		return parsed, nil
	}
	return defaultValue, nil
}

// parseBoolParam parses a boolean parameter from URL query
func parseBoolParam(values url.Values, key string, defaultValue bool) (bool, error) {
	if value := values.Get(key); value != "" {
		parsed, err := strconv.ParseBool(value)
		if err != nil {
			return false, fmt.Errorf("invalid %s: %s", key, value)
		}
		return parsed, nil
	}
	return defaultValue, nil
}

// imageToBase64PNG converts an image to base64-encoded PNG
func (s *Server) imageToBase64PNG(img image.Image) (string, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

// writeJSON encodes v before committing the status, so an unencodable value
// becomes a 500 error body instead of an empty success
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	body, err := json.Marshal(v)
	if err != nil {
		slog.Error("encoding response", "err", err)
		status = http.StatusInternalServerError
		body, _ = json.Marshal(map[string]string{"error": "failed to encode response"})
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.WriteHeader(status)
	w.Write(append(body, '\n'))
}

func writeJSONError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
