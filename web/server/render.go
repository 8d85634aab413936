package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/df07/go-procedural-raymarcher/pkg/core"
	"github.com/df07/go-procedural-raymarcher/pkg/procedural"
	"github.com/df07/go-procedural-raymarcher/pkg/renderer"
)

// TileUpdate represents a single tile update sent via SSE
type TileUpdate struct {
	TileX       int    `json:"tileX"`
	TileY       int    `json:"tileY"`
	ImageData   string `json:"imageData"` // Base64 encoded PNG of just this tile
	PassNumber  int    `json:"passNumber"`
	TileNumber  int    `json:"tileNumber"`  // Current tile number in this pass (1-based)
	TotalTiles  int    `json:"totalTiles"`  // Total number of tiles in the image
	TotalPasses int    `json:"totalPasses"` // Total number of passes planned
}

// PassUpdate is the payload of a passComplete event
type PassUpdate struct {
	Event          string     `json:"event"`
	Mode           string     `json:"mode"`
	PassNumber     int        `json:"passNumber"`
	TotalPasses    int        `json:"totalPasses"`
	ElapsedMs      int64      `json:"elapsedMs"`
	ImageData      string     `json:"imageData"`
	TotalPixels    int        `json:"totalPixels"`
	TotalSamples   int        `json:"totalSamples"`
	AverageSamples float64    `json:"averageSamples"`
	MaxSamples     int        `json:"maxSamples"`
	MinSamples     int        `json:"minSamples"`
	MaxSamplesUsed int        `json:"maxSamplesUsed"`
	AverageSteps   float64    `json:"averageSteps"`
	HitPixels      int        `json:"hitPixels"`
	Luminance      float64    `json:"averageLuminance"`
	LOD            *LODUpdate `json:"lod,omitempty"` // 2D modes only
}

// LODUpdate is the zoom detail advice sent with each 2D pass
type LODUpdate struct {
	procedural.LOD
	RecommendedWidth   int  `json:"recommendedWidth"`
	RecommendedHeight  int  `json:"recommendedHeight"`
	PrecisionExhausted bool `json:"precisionExhausted"`
}

func newLODUpdate(zoom float64, width, height int) *LODUpdate {
	lod := procedural.LODForZoom(zoom)
	return &LODUpdate{
		LOD:                lod,
		RecommendedWidth:   lod.RecommendedResolution(width),
		RecommendedHeight:  lod.RecommendedResolution(height),
		PrecisionExhausted: lod.PrecisionExhausted(),
	}
}

// SSEEvent represents a unified SSE event for thread-safe writing
type SSEEvent struct {
	Type string `json:"type"` // "console", "tile", "passComplete", "error", "complete"
	Data string `json:"data"` // JSON-encoded data
}

// RenderingPipeline contains the frame snapshot and its renderer
type RenderingPipeline struct {
	Frame    *renderer.Frame
	Renderer *renderer.ProgressiveRenderer
}

// handleRender handles progressive rendering with real-time tile streaming via SSE
func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	s.setSSEHeaders(w)

	ctx := r.Context()

	// A single writer goroutine owns w; the handler waits for it so nothing
	// touches the response after we return
	sseEventChan := make(chan SSEEvent, 100)
	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		s.writeSSEEvents(w, ctx, sseEventChan)
	}()
	defer func() {
		close(sseEventChan)
		<-writerDone
	}()

	req, err := s.parseRenderRequest(r)
	if err != nil {
		s.handleError(ctx, sseEventChan, fmt.Sprintf("Invalid request: %v", err))
		return
	}

	consoleChan, webLogger := s.setupConsoleLogging()
	consoleStop := make(chan struct{})
	consoleDone := make(chan struct{})
	go func() {
		defer close(consoleDone)
		s.streamConsoleMessages(ctx, consoleChan, consoleStop, sseEventChan)
	}()

	pipeline, err := s.setupRenderingPipeline(req, webLogger)
	if err != nil {
		close(consoleStop)
		<-consoleDone
		s.handleError(ctx, sseEventChan, err.Error())
		return
	}

	startTime := time.Now()
	passChan, tileChan, errChan := pipeline.Renderer.RenderProgressive(ctx, renderer.RenderOptions{TileUpdates: true})

	ok := s.handleRenderingEvents(ctx, sseEventChan, passChan, tileChan, errChan, pipeline.Frame, req, startTime)

	// flush the console before the terminal event
	close(consoleStop)
	<-consoleDone

	if ok {
		select {
		case sseEventChan <- SSEEvent{Type: "complete", Data: "Rendering completed"}:
		case <-ctx.Done():
		}
	}
}

// setSSEHeaders sets the required headers for Server-Sent Events
func (s *Server) setSSEHeaders(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("Access-Control-Allow-Origin", "*")
}

// setupConsoleLogging creates console channel and web logger for a render
func (s *Server) setupConsoleLogging() (chan ConsoleMessage, core.Logger) {
	consoleChan := make(chan ConsoleMessage, 50)
	renderID := fmt.Sprintf("render-%d", time.Now().UnixNano())
	webLogger := NewWebLogger(renderID, consoleChan)
	return consoleChan, webLogger
}

// writeSSEEvents handles writing all SSE events in a single goroutine (thread-safe)
func (s *Server) writeSSEEvents(w http.ResponseWriter, ctx context.Context, sseEventChan chan SSEEvent) {
	for {
		select {
		case event, ok := <-sseEventChan:
			if !ok {
				return
			}

			// Check if client is still connected before writing
			select {
			case <-ctx.Done():
				return
			default:
			}

			if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event.Type, event.Data); err != nil {
				// Client disconnected during write
				return
			}
			if flusher, ok := w.(http.Flusher); ok {
				flusher.Flush()
			}

		case <-ctx.Done():
			return
		}
	}
}

// streamConsoleMessages forwards console messages until stop is closed, then
// drains whatever is still buffered. The console channel is never closed
// because render workers may still log after the client goes away.
func (s *Server) streamConsoleMessages(ctx context.Context, consoleChan <-chan ConsoleMessage, stop <-chan struct{}, sseEventChan chan SSEEvent) {
	forward := func(msg ConsoleMessage) bool {
		data, err := json.Marshal(msg)
		if err != nil {
			s.logger.Error("marshal console message", "err", err)
			return true
		}
		select {
		case sseEventChan <- SSEEvent{Type: "console", Data: string(data)}:
			return true
		case <-ctx.Done():
			return false
		}
	}

	for {
		select {
		case msg := <-consoleChan:
			if !forward(msg) {
				return
			}
		case <-stop:
			for {
				select {
				case msg := <-consoleChan:
					if !forward(msg) {
						return
					}
				default:
					return
				}
			}
		case <-ctx.Done():
			return
		}
	}
}

// setupRenderingPipeline builds the frame snapshot and its progressive renderer
func (s *Server) setupRenderingPipeline(req *RenderRequest, logger core.Logger) (*RenderingPipeline, error) {
	frame, err := s.buildFrame(req)
	if err != nil {
		return nil, err
	}

	config := renderer.ProgressiveConfig{
		TileSize:           DefaultTileSize,
		InitialSamples:     1,
		MaxSamplesPerPixel: req.MaxSamples,
		MaxPasses:          req.MaxPasses,
		NumWorkers:         0, // Auto-detect
		Sampling: renderer.SamplingConfig{
			AdaptiveMinSamples: req.AdaptiveMinSamples,
			AdaptiveThreshold:  req.AdaptiveThreshold,
		},
	}

	pr, err := renderer.NewProgressiveRenderer(frame, config, logger)
	if err != nil {
		return nil, err
	}
	return &RenderingPipeline{
		Frame:    frame,
		Renderer: pr,
	}, nil
}

// handleRenderingEvents processes the main rendering event loop. It reports
// whether the render ran to completion.
func (s *Server) handleRenderingEvents(ctx context.Context, sseEventChan chan SSEEvent,
	passChan <-chan renderer.PassResult, tileChan <-chan renderer.TileCompletionResult, errChan <-chan error,
	frame *renderer.Frame, req *RenderRequest, startTime time.Time) bool {

	for passChan != nil || tileChan != nil || errChan != nil {
		select {
		case passResult, ok := <-passChan:
			if !ok {
				passChan = nil
				continue
			}
			s.handlePassComplete(ctx, sseEventChan, passResult, frame, req, startTime)

		case tileResult, ok := <-tileChan:
			if !ok {
				tileChan = nil
				continue
			}
			s.handleTileUpdate(ctx, sseEventChan, tileResult)

		case err, ok := <-errChan:
			if !ok {
				errChan = nil
				continue
			}
			if err != nil {
				s.handleError(ctx, sseEventChan, fmt.Sprintf("Rendering failed: %v", err))
				return false
			}

		case <-ctx.Done():
			return false
		}
	}
	return true
}

// handlePassComplete processes and sends pass completion events
func (s *Server) handlePassComplete(ctx context.Context, sseEventChan chan SSEEvent, passResult renderer.PassResult, frame *renderer.Frame, req *RenderRequest, startTime time.Time) {
	select {
	case <-ctx.Done():
		return
	default:
	}

	imageData, err := s.imageToBase64PNG(passResult.Image)
	if err != nil {
		s.logger.Error("encode pass image", "pass", passResult.PassNumber, "err", err)
		return
	}

	stats := passResult.Stats
	update := PassUpdate{
		Event:          "passComplete",
		Mode:           frame.Mode.String(),
		PassNumber:     passResult.PassNumber,
		TotalPasses:    req.MaxPasses,
		ElapsedMs:      time.Since(startTime).Milliseconds(),
		ImageData:      imageData,
		TotalPixels:    stats.TotalPixels,
		TotalSamples:   stats.TotalSamples,
		AverageSamples: stats.AverageSamples,
		MaxSamples:     stats.MaxSamples,
		MinSamples:     stats.MinSamples,
		MaxSamplesUsed: stats.MaxSamplesUsed,
		AverageSteps:   stats.AverageSteps,
		HitPixels:      stats.HitPixels,
		Luminance:      renderer.CalculateAverageLuminance(passResult.Image),
	}
	if frame.Mode != renderer.ModeSDF {
		update.LOD = newLODUpdate(req.Zoom, req.Width, req.Height)
		if update.LOD.PrecisionExhausted && passResult.PassNumber == 1 {
			s.logger.Warn("zoom exceeds float32 precision", "zoom", req.Zoom)
		}
	}

	data, err := json.Marshal(update)
	if err != nil {
		s.logger.Error("marshal pass update", "err", err)
		return
	}

	select {
	case sseEventChan <- SSEEvent{Type: "passComplete", Data: string(data)}:
	case <-ctx.Done():
	}
}

// handleTileUpdate processes and sends tile update events
func (s *Server) handleTileUpdate(ctx context.Context, sseEventChan chan SSEEvent, tileResult renderer.TileCompletionResult) {
	select {
	case <-ctx.Done():
		return
	default:
	}

	tileData, err := s.imageToBase64PNG(tileResult.TileImage)
	if err != nil {
		s.logger.Error("encode tile image", "tileX", tileResult.TileX, "tileY", tileResult.TileY, "err", err)
		return
	}

	update := TileUpdate{
		TileX:       tileResult.TileX,
		TileY:       tileResult.TileY,
		ImageData:   tileData,
		PassNumber:  tileResult.PassNumber,
		TileNumber:  tileResult.TileNumber,
		TotalTiles:  tileResult.TotalTiles,
		TotalPasses: tileResult.TotalPasses,
	}

	data, err := json.Marshal(update)
	if err != nil {
		s.logger.Error("marshal tile update", "err", err)
		return
	}

	select {
	case sseEventChan <- SSEEvent{Type: "tile", Data: string(data)}:
	case <-ctx.Done():
	}
}

// parseRenderRequest parses request parameters
func (s *Server) parseRenderRequest(r *http.Request) (*RenderRequest, error) {
	req := &RenderRequest{}

	if err := s.parseCommonSceneParams(r, req); err != nil {
		return nil, err
	}

	q := r.URL.Query()
	var err error
	if req.MaxSamples, err = parseIntParam(q, "maxSamples", limitSamples.Default, limitSamples.Min, limitSamples.Max); err != nil {
		return nil, err
	}
	if req.MaxPasses, err = parseIntParam(q, "maxPasses", limitPasses.Default, limitPasses.Min, limitPasses.Max); err != nil {
		return nil, err
	}
	if req.AdaptiveMinSamples, err = parseFloatParam(q, "adaptiveMinSamples", limitAdaptMin.Default, limitAdaptMin.Min, limitAdaptMin.Max); err != nil {
		return nil, err
	}
	if req.AdaptiveThreshold, err = parseFloatParam(q, "adaptiveThreshold", limitAdaptThr.Default, limitAdaptThr.Min, limitAdaptThr.Max); err != nil {
		return nil, err
	}

	// Performance warning
	if req.Width*req.Height > 1024*768 && req.MaxSamples > 64 {
		s.logger.Warn("large image with high samples may render slowly", "width", req.Width, "height", req.Height, "samples", req.MaxSamples)
	}

	return req, nil
}

// handleError sends an error event to the SSE channel
func (s *Server) handleError(ctx context.Context, sseEventChan chan SSEEvent, message string) {
	select {
	case sseEventChan <- SSEEvent{Type: "error", Data: message}:
	case <-ctx.Done():
	}
}
