package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/df07/go-schwarzschild-raytracer/pkg/catalog"
	"github.com/df07/go-schwarzschild-raytracer/pkg/core"
	"github.com/df07/go-schwarzschild-raytracer/pkg/renderer"
	"github.com/df07/go-schwarzschild-raytracer/pkg/scene"
)

// RenderRequest represents a render request from the client.
// Zero numeric fields keep the scene's own values.
type RenderRequest struct {
	Scene        string  `json:"scene"`        // Scene ID (preset name or file:<name>)
	Width        int     `json:"width"`        // Image width
	Height       int     `json:"height"`       // Image height
	RaysPerPixel int     `json:"raysPerPixel"` // Sub-sample rays per pixel
	MaxSteps     int     `json:"maxSteps"`     // Integration step budget per ray
	Exposure     float64 `json:"exposure"`     // Tone map exposure
	Gamma        float64 `json:"gamma"`        // Tone map gamma
	Predict      bool    `json:"predict"`      // Enable the horizon predictor
	Radius       float64 `json:"radius"`       // Horizon radius the scene is scaled to; 0 keeps the scene's own
}

// SSEEvent represents a unified SSE event for thread-safe writing
type SSEEvent struct {
	Type string `json:"type"` // "start", "console", "progress", "image", "error", "complete"
	Data string `json:"data"` // JSON-encoded data
}

// Stats represents render statistics
type Stats struct {
	TotalPixels  int            `json:"totalPixels"`
	TotalSamples int            `json:"totalSamples"`
	Collided     int            `json:"collided"`
	Escaped      int            `json:"escaped"`
	Diverged     int            `json:"diverged"`
	ObstacleHits map[string]int `json:"obstacleHits"`
	AverageSteps float64        `json:"averageSteps"`
	MaxStepsUsed int            `json:"maxStepsUsed"`
	MaxRadiance  float64        `json:"maxRadiance"`
}

func newStats(rs renderer.RenderStats) Stats {
	hits := make(map[string]int, len(rs.ObstacleHits))
	for kind, n := range rs.ObstacleHits {
		hits[kind.String()] = n
	}
	return Stats{
		TotalPixels:  rs.TotalPixels,
		TotalSamples: rs.TotalSamples,
		Collided:     rs.Collided,
		Escaped:      rs.Escaped,
		Diverged:     rs.Diverged,
		ObstacleHits: hits,
		AverageSteps: rs.AverageSteps(),
		MaxStepsUsed: rs.MaxStepsUsed,
		MaxRadiance:  rs.MaxRadiance,
	}
}

// RenderStart announces a render before computing starts
type RenderStart struct {
	RenderID string `json:"renderId"`
	Scene    string `json:"scene"`
	Width    int    `json:"width"`
	Height   int    `json:"height"`
}

// RenderUpdate carries the finished image
type RenderUpdate struct {
	RenderID  string `json:"renderId"`
	ImageData string `json:"imageData"` // Base64 encoded PNG
	Stats     Stats  `json:"stats"`
	ElapsedMs int64  `json:"elapsedMs"`
}

// handleRender renders a scene and streams console, progress and the final image via SSE
func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	s.setSSEHeaders(w)

	ctx := r.Context()

	// Single writer goroutine; it must finish before the handler returns
	sseEventChan := make(chan SSEEvent, 100)
	writerDone := make(chan struct{})
	go func() {
		s.writeSSEEvents(w, ctx, sseEventChan)
		close(writerDone)
	}()

	s.render(ctx, r, sseEventChan)

	close(sseEventChan)
	<-writerDone
}

// render runs one request to completion, sending every event to sseEventChan
func (s *Server) render(ctx context.Context, r *http.Request, sseEventChan chan SSEEvent) {
	req, err := s.parseRenderRequest(r)
	if err != nil {
		s.handleError(ctx, sseEventChan, fmt.Sprintf("Invalid request: %v", err))
		return
	}

	sceneObj, err := s.createScene(req)
	if err != nil {
		s.handleError(ctx, sseEventChan, err.Error())
		return
	}

	renderID := uuid.NewString()
	s.sendJSON(ctx, sseEventChan, "start", RenderStart{
		RenderID: renderID,
		Scene:    sceneObj.Name,
		Width:    sceneObj.Width,
		Height:   sceneObj.Height,
	})

	consoleChan, webLogger := s.setupConsoleLogging(renderID)
	consoleDone := make(chan struct{})
	go func() {
		s.streamConsoleMessages(ctx, consoleChan, sseEventChan)
		close(consoleDone)
	}()
	defer func() {
		close(consoleChan)
		<-consoleDone
	}()

	raytracer, err := sceneObj.NewRaytracer(0, webLogger)
	if err != nil {
		s.handleError(ctx, sseEventChan, err.Error())
		return
	}

	progress := core.ProgressFunc(func(percent float64) {
		s.hub.publish(ProgressMessage{RenderID: renderID, Scene: sceneObj.Name, Percent: percent, Status: "running"})
		data, _ := json.Marshal(map[string]float64{"percent": percent})
		select {
		case sseEventChan <- SSEEvent{Type: "progress", Data: string(data)}:
		default:
			// Channel full, skip update to avoid blocking workers
		}
	})

	startTime := time.Now()
	s.metrics.activeRenders.Inc()
	buffer, stats, err := raytracer.Render(ctx, progress)
	s.metrics.activeRenders.Dec()

	status := "completed"
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		status = "cancelled"
	case err != nil:
		status = "failed"
	}
	s.metrics.observeRender(status, stats)
	s.hub.publish(ProgressMessage{RenderID: renderID, Scene: sceneObj.Name, Percent: 100, Status: status})

	if err != nil {
		s.handleError(ctx, sseEventChan, fmt.Sprintf("Rendering failed: %v", err))
		return
	}

	imageData, err := imageToBase64PNG(renderer.ToneMap(buffer, sceneObj.Exposure, sceneObj.Gamma))
	if err != nil {
		s.handleError(ctx, sseEventChan, fmt.Sprintf("Failed to encode image: %v", err))
		return
	}
	s.sendJSON(ctx, sseEventChan, "image", RenderUpdate{
		RenderID:  renderID,
		ImageData: imageData,
		Stats:     newStats(stats),
		ElapsedMs: time.Since(startTime).Milliseconds(),
	})

	if err := s.catalogRender(ctx, renderID, sceneObj, stats); err != nil {
		log.Printf("Error cataloguing render %s: %v", renderID, err)
	}

	select {
	case sseEventChan <- SSEEvent{Type: "complete", Data: "Rendering completed"}:
	case <-ctx.Done():
	}
}

func (s *Server) catalogRender(ctx context.Context, renderID string, sceneObj scene.Scene, stats renderer.RenderStats) error {
	sceneJSON, err := scene.MarshalScene(sceneObj)
	if err != nil {
		return err
	}
	record := catalog.NewRecord(sceneObj.Name, sceneJSON, sceneObj.Width, sceneObj.Height, stats, "", time.Now())
	record.ID = renderID
	return s.store.SaveRender(context.WithoutCancel(ctx), record)
}

// setSSEHeaders sets the required headers for Server-Sent Events
func (s *Server) setSSEHeaders(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("Access-Control-Allow-Origin", "*")
}

// setupConsoleLogging creates console channel and web logger for a render
func (s *Server) setupConsoleLogging(renderID string) (chan ConsoleMessage, core.Logger) {
	consoleChan := make(chan ConsoleMessage, 50)
	return consoleChan, NewWebLogger(renderID, consoleChan)
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

// streamConsoleMessages forwards console messages until consoleChan is closed
func (s *Server) streamConsoleMessages(ctx context.Context, consoleChan chan ConsoleMessage, sseEventChan chan SSEEvent) {
	for {
		select {
		case consoleMsg, ok := <-consoleChan:
			if !ok {
				return
			}

			data, err := json.Marshal(consoleMsg)
			if err != nil {
				log.Printf("Error marshaling console message: %v", err)
				continue
			}

			select {
			case sseEventChan <- SSEEvent{Type: "console", Data: string(data)}:
			case <-ctx.Done():
				return
			default:
				// Channel full, skip message to avoid blocking
			}

		case <-ctx.Done():
			return
		}
	}
}

// sendJSON marshals v and sends it as an event, giving up if the client leaves
func (s *Server) sendJSON(ctx context.Context, sseEventChan chan SSEEvent, eventType string, v interface{}) {
	data, err := json.Marshal(v)
	if err != nil {
		log.Printf("Error marshaling %s event: %v", eventType, err)
		return
	}
	select {
	case sseEventChan <- SSEEvent{Type: eventType, Data: string(data)}:
	case <-ctx.Done():
	}
}

// handleError sends an error event to the SSE channel
func (s *Server) handleError(ctx context.Context, sseEventChan chan SSEEvent, message string) {
	select {
	case sseEventChan <- SSEEvent{Type: "error", Data: message}:
	case <-ctx.Done():
		// Client disconnected, don't block
	}
}

// parseCommonSceneParams parses the scene selection and image size shared by render and inspect
func (s *Server) parseCommonSceneParams(r *http.Request, req *RenderRequest) error {
	query := r.URL.Query()
	req.Scene = query.Get("scene")
	if req.Scene == "" {
		req.Scene = scene.PresetDisk
	}

	var err error
	if req.Width, err = parseIntParam(query, "width", 0, 0, 2000); err != nil {
		return err
	}
	if req.Height, err = parseIntParam(query, "height", 0, 0, 2000); err != nil {
		return err
	}
	if req.Radius, err = parseFloatParam(query, "radius", 0, 0, 1e6); err != nil {
		return err
	}
	req.Predict = query.Get("predict") == "true"
	return nil
}

// parseRenderRequest parses request parameters
func (s *Server) parseRenderRequest(r *http.Request) (*RenderRequest, error) {
	req := &RenderRequest{}
	if err := s.parseCommonSceneParams(r, req); err != nil {
		return nil, err
	}

	query := r.URL.Query()
	var err error
	if req.RaysPerPixel, err = parseIntParam(query, "raysPerPixel", 0, 0, 256); err != nil {
		return nil, err
	}
	if req.MaxSteps, err = parseIntParam(query, "maxSteps", 0, 0, 100000); err != nil {
		return nil, err
	}
	if req.Exposure, err = parseFloatParam(query, "exposure", 0, 0, 100); err != nil {
		return nil, err
	}
	if req.Gamma, err = parseFloatParam(query, "gamma", 0, 0, 10); err != nil {
		return nil, err
	}

	// Performance warning
	if req.Width*req.Height > 800*600 && req.RaysPerPixel > 16 {
		log.Printf("Render warning: Large image with many rays per pixel may render slowly")
	}

	return req, nil
}

// createScene resolves the requested scene and applies the request's overrides
func (s *Server) createScene(req *RenderRequest) (scene.Scene, error) {
	sceneObj, err := scene.Resolve(req.Scene, s.scenesDir, req.Radius)
	if err != nil {
		return scene.Scene{}, err
	}

	if req.Width > 0 {
		sceneObj.Width = req.Width
	}
	if req.Height > 0 {
		sceneObj.Height = req.Height
	}
	if req.RaysPerPixel > 0 {
		sceneObj.RaysPerPixel = req.RaysPerPixel
	}
	if req.MaxSteps > 0 {
		sceneObj.MaxSteps = req.MaxSteps
	}
	if req.Exposure > 0 {
		sceneObj.Exposure = req.Exposure
	}
	if req.Gamma > 0 {
		sceneObj.Gamma = req.Gamma
	}
	if req.Predict {
		sceneObj.PredictHorizon = true
	}

	if err := sceneObj.Validate(); err != nil {
		return scene.Scene{}, fmt.Errorf("invalid scene %q: %w", req.Scene, err)
	}
	return sceneObj, nil
}
