package renderer

import (
	"time"

	"github.com/df07/go-schwarzschild-raytracer/pkg/core"
	"github.com/df07/go-schwarzschild-raytracer/pkg/geodesic"
	"github.com/df07/go-schwarzschild-raytracer/pkg/obstacle"
)

// RenderStats contains statistics about the rendering process
type RenderStats struct {
	TotalPixels  int                   // Total number of pixels rendered
	TotalSamples int                   // Total number of sub-sample rays traced
	Collided     int                   // Rays stopped by an obstacle
	Escaped      int                   // Rays that exhausted the step budget
	Diverged     int                   // Rays that became non-finite
	ObstacleHits map[obstacle.Kind]int // Collisions per obstacle kind
	TotalSteps   int64                 // Integration steps across all rays
	MaxStepsUsed int                   // Longest single trace
	MaxRadiance  float64               // Global maximum channel used for tone mapping
	Duration     time.Duration         // Wall time of the compute pass
}

// Record adds one traced ray to the statistics
func (s *RenderStats) Record(result geodesic.Result) {
	s.TotalSamples++
	s.TotalSteps += int64(result.Steps)
	s.MaxStepsUsed = max(s.MaxStepsUsed, result.Steps)

	switch result.Outcome {
	case geodesic.OutcomeCollided:
		s.Collided++
		if s.ObstacleHits == nil {
			s.ObstacleHits = make(map[obstacle.Kind]int)
		}
		s.ObstacleHits[result.Collision.Obstacle]++
	case geodesic.OutcomeEscaped:
		s.Escaped++
	case geodesic.OutcomeDiverged:
		s.Diverged++
	}
}

// Merge folds another set of statistics, typically one tile's, into s
func (s *RenderStats) Merge(other RenderStats) {
	s.TotalPixels += other.TotalPixels
	s.TotalSamples += other.TotalSamples
	s.Collided += other.Collided
	s.Escaped += other.Escaped
	s.Diverged += other.Diverged
	s.TotalSteps += other.TotalSteps
	s.MaxStepsUsed = max(s.MaxStepsUsed, other.MaxStepsUsed)

	for kind, n := range other.ObstacleHits {
		if s.ObstacleHits == nil {
			s.ObstacleHits = make(map[obstacle.Kind]int)
		}
		s.ObstacleHits[kind] += n
	}
}

// AverageSteps returns the mean number of integration steps per ray
func (s RenderStats) AverageSteps() float64 {
	if s.TotalSamples == 0 {
		return 0
	}
	return float64(s.TotalSteps) / float64(s.TotalSamples)
}

// PixelStats accumulates the sub-samples of a single pixel
type PixelStats struct {
	ColorAccum  core.Vec3 // RGB accumulator for final result
	SampleCount int       // Number of samples taken
}

// AddSample adds a new color sample to the pixel statistics
func (ps *PixelStats) AddSample(color core.Vec3) {
	ps.ColorAccum = ps.ColorAccum.Add(color)
	ps.SampleCount++
}

// GetColor returns the current average color for this pixel
func (ps *PixelStats) GetColor() core.Vec3 {
	if ps.SampleCount == 0 {
		return core.Vec3{X: 0, Y: 0, Z: 0}
	}
	return ps.ColorAccum.Multiply(1.0 / float64(ps.SampleCount))
}
