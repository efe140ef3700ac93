package renderer

import (
	"image"

	"github.com/df07/go-schwarzschild-raytracer/pkg/core"
	"github.com/df07/go-schwarzschild-raytracer/pkg/geodesic"
	"github.com/df07/go-schwarzschild-raytracer/pkg/spacetime"
)

// Diagnostic colors for rays that never reached an obstacle
var (
	DivergedColor = core.NewVec3(50, 0, 0)
	EscapedColor  = core.NewVec3(0, 0, 50)
)

// SampleColor returns the radiance a finished trace contributes to its pixel
func SampleColor(result geodesic.Result) core.Vec3 {
	switch result.Outcome {
	case geodesic.OutcomeCollided:
		return result.Collision.Color
	case geodesic.OutcomeDiverged:
		return DivergedColor
	default:
		return EscapedColor
	}
}

// TileRenderer traces every sub-sample of the pixels inside a tile.
// It holds no per-render mutable state besides the shared progress counter.
type TileRenderer struct {
	space    *spacetime.Space
	camera   *Camera
	trace    geodesic.TraceConfig
	offsets  []float64
	progress *progressCounter
}

// NewTileRenderer creates a tile renderer for the given spacetime and camera
func NewTileRenderer(space *spacetime.Space, camera *Camera, config Config, progress *progressCounter) *TileRenderer {
	return &TileRenderer{
		space:  space,
		camera: camera,
		trace: geodesic.TraceConfig{
			MaxSteps: config.MaxSteps,
			StepSize: config.StepSize,
			Adaptive: config.Adaptive,
		},
		offsets:  SubsampleOffsets(config.RaysPerPixel),
		progress: progress,
	}
}

// RenderTileBounds renders pixels within the specified bounds into the buffer.
// Tiles have non-overlapping bounds, so concurrent calls write disjoint slots.
func (tr *TileRenderer) RenderTileBounds(bounds image.Rectangle, buffer *Radiance, sampler core.Sampler) RenderStats {
	stats := RenderStats{TotalPixels: bounds.Dx() * bounds.Dy()}

	for j := bounds.Min.Y; j < bounds.Max.Y; j++ {
		for i := bounds.Min.X; i < bounds.Max.X; i++ {
			buffer.Set(i, j, tr.samplePixel(i, j, sampler, &stats))
			if tr.progress != nil {
				tr.progress.add(1)
			}
		}
	}

	return stats
}

// samplePixel averages the sub-sample grid of pixel (i, j)
func (tr *TileRenderer) samplePixel(i, j int, sampler core.Sampler, stats *RenderStats) core.Vec3 {
	var ps PixelStats
	for _, oy := range tr.offsets {
		for _, ox := range tr.offsets {
			ray := tr.camera.GetRay(i, j, ox, oy, tr.space)
			result := ray.Trace(tr.space, tr.trace, sampler, nil)
			stats.Record(result)
			ps.AddSample(SampleColor(result))
		}
	}
	return ps.GetColor()
}

// TracePixel traces a single ray through the center of pixel (i, j)
func (tr *TileRenderer) TracePixel(i, j int, sampler core.Sampler, recorder geodesic.Recorder) (geodesic.Ray, geodesic.Result) {
	ray := tr.camera.GetRay(i, j, 0.5, 0.5, tr.space)
	return ray, ray.Trace(tr.space, tr.trace, sampler, recorder)
}
