package server

import (
	"net/http"
	"strconv"

	"github.com/df07/go-schwarzschild-raytracer/pkg/geodesic"
	"github.com/df07/go-schwarzschild-raytracer/pkg/renderer"
)

const maxPathPoints = 2000

// InspectResponse represents the JSON response for pixel inspection
type InspectResponse struct {
	Outcome       string       `json:"outcome"`
	Obstacle      string       `json:"obstacle,omitempty"`
	ObstacleIndex int          `json:"obstacleIndex"`
	Steps         int          `json:"steps"`
	Direction     [2]float64   `json:"direction"` // Local emission angles (theta, phi)
	Position      [4]float64   `json:"position"`  // Collision point, or the last finite state
	Color         [3]float64   `json:"color"`     // Linear radiance before tone mapping
	InitialNorm   float64      `json:"initialNorm"`
	FinalNorm     float64      `json:"finalNorm"`
	Path          [][3]float64 `json:"path,omitempty"` // Cartesian points, thinned to at most maxPathPoints
}

// pathRecorder keeps every stride-th step as a cartesian point
type pathRecorder struct {
	stride int
	points [][3]float64
}

func (p *pathRecorder) RecordStep(step int, ray geodesic.Ray, _ float64) {
	if step%p.stride != 0 {
		return
	}
	c := ray.Position.Cartesian()
	p.points = append(p.points, [3]float64{c.X, c.Y, c.Z})
}

// handleInspect traces the center ray of one pixel and describes how it ended
func (s *Server) handleInspect(w http.ResponseWriter, r *http.Request) {
	inspectReq := &RenderRequest{}
	if err := s.parseCommonSceneParams(r, inspectReq); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid scene parameters: " + err.Error()})
		return
	}

	pixelX, err := strconv.Atoi(r.URL.Query().Get("x"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid x coordinate"})
		return
	}
	pixelY, err := strconv.Atoi(r.URL.Query().Get("y"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid y coordinate"})
		return
	}

	sceneObj, err := s.createScene(inspectReq)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	if pixelX < 0 || pixelX >= sceneObj.Width || pixelY < 0 || pixelY >= sceneObj.Height {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Pixel coordinates out of bounds"})
		return
	}

	raytracer, err := sceneObj.NewRaytracer(1, NewWebLogger("inspect", nil))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	var recorder geodesic.Recorder
	var path *pathRecorder
	if r.URL.Query().Get("path") == "true" {
		path = &pathRecorder{stride: max(1, (sceneObj.MaxSteps+maxPathPoints-1)/maxPathPoints)}
		recorder = path
	}

	initial, result := raytracer.TracePixel(pixelX, pixelY, recorder)
	theta, phi := raytracer.Camera().Direction(pixelX, pixelY, 0.5, 0.5)
	space := raytracer.Space()

	response := InspectResponse{
		Outcome:       result.Outcome.String(),
		ObstacleIndex: -1,
		Steps:         result.Steps,
		Direction:     [2]float64{theta, phi},
		Position:      result.Final.Position,
		InitialNorm:   initial.NullNorm(space),
		FinalNorm:     result.Final.NullNorm(space),
	}
	if c := result.Collision; c != nil {
		response.Obstacle = c.Obstacle.String()
		response.ObstacleIndex = c.Index
		response.Position = c.Position
		response.Color = [3]float64{c.Color.X, c.Color.Y, c.Color.Z}
	} else {
		color := renderer.SampleColor(result)
		response.Color = [3]float64{color.X, color.Y, color.Z}
	}
	if path != nil {
		response.Path = path.points
	}

	writeJSON(w, http.StatusOK, response)
}
