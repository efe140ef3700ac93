package renderer

import (
	"context"
	"fmt"
	"time"

	"github.com/df07/go-schwarzschild-raytracer/pkg/core"
	"github.com/df07/go-schwarzschild-raytracer/pkg/geodesic"
	"github.com/df07/go-schwarzschild-raytracer/pkg/spacetime"
)

// DefaultLogger implements core.Logger by writing to stdout
type DefaultLogger struct{}

func (dl *DefaultLogger) Printf(format string, args ...interface{}) {
	fmt.Printf(format, args...)
}

// NewDefaultLogger creates a new default logger
func NewDefaultLogger() core.Logger {
	return &DefaultLogger{}
}

// Config contains the integration and scheduling parameters of a render
type Config struct {
	RaysPerPixel int     // Sub-samples per pixel, arranged as a square grid
	MaxSteps     int     // Step budget per ray
	StepSize     float64 // Nominal affine step
	Adaptive     bool    // Shrink steps near the horizon and the polar axis
	TileSize     int     // Size of each square tile in pixels
	NumWorkers   int     // Number of parallel workers (0 = use CPU count)
	Seed         int64   // Base seed of the per-tile generators
}

// DefaultConfig returns sensible default values
func DefaultConfig() Config {
	return Config{
		RaysPerPixel: 4,
		MaxSteps:     1000,
		StepSize:     40,
		Adaptive:     true,
		TileSize:     32,
		NumWorkers:   0,
		Seed:         42,
	}
}

// Raytracer renders a camera view of a spacetime
type Raytracer struct {
	space  *spacetime.Space
	camera *Camera
	config Config
	logger core.Logger
}

// NewRaytracer creates a new raytracer; a nil logger writes to stdout
func NewRaytracer(space *spacetime.Space, camera *Camera, config Config, logger core.Logger) *Raytracer {
	if logger == nil {
		logger = NewDefaultLogger()
	}
	if config.TileSize <= 0 {
		config.TileSize = DefaultConfig().TileSize
	}
	return &Raytracer{
		space:  space,
		camera: camera,
		config: config,
		logger: logger,
	}
}

// Camera returns the camera being rendered
func (rt *Raytracer) Camera() *Camera {
	return rt.camera
}

// Space returns the spacetime being rendered
func (rt *Raytracer) Space() *spacetime.Space {
	return rt.space
}

// Render traces every pixel in parallel and returns the linear radiance buffer.
// All tiles finish before the global maximum is reduced into the statistics.
// Cancelling ctx stops handing out tiles; tiles already in flight run to completion
// and the partial buffer is returned together with ctx's error. sink may be nil.
func (rt *Raytracer) Render(ctx context.Context, sink core.ProgressSink) (*Radiance, RenderStats, error) {
	start := time.Now()
	width, height := rt.camera.Width(), rt.camera.Height()

	buffer := NewRadiance(width, height)
	tiles := NewTileGrid(width, height, rt.config.TileSize, rt.config.Seed)
	progress := newProgressCounter(width*height, sink)
	tileRenderer := NewTileRenderer(rt.space, rt.camera, rt.config, progress)

	pool := NewWorkerPool(tileRenderer, len(tiles), rt.config.NumWorkers)
	pool.Start()

	rt.logger.Printf("Rendering %dx%d with %d rays per pixel (%d tiles, %d workers)...\n",
		width, height, len(tileRenderer.offsets)*len(tileRenderer.offsets), len(tiles), pool.GetNumWorkers())

	var submitErr error
	submitted := 0
	for i, tile := range tiles {
		if submitErr = pool.SubmitTask(ctx, TileTask{Tile: tile, TaskID: i, Buffer: buffer}); submitErr != nil {
			break
		}
		submitted++
	}
	pool.Stop()

	var stats RenderStats
	for i := 0; i < submitted; i++ {
		result, ok := pool.GetResult()
		if !ok {
			return nil, RenderStats{}, fmt.Errorf("worker pool closed unexpectedly")
		}
		if result.Error != nil {
			return nil, RenderStats{}, fmt.Errorf("tile %d: %w", result.TaskID, result.Error)
		}
		stats.Merge(result.Stats)
	}

	stats.MaxRadiance = buffer.Max()
	stats.Duration = time.Since(start)

	if submitErr != nil {
		rt.logger.Printf("Rendering cancelled after %d of %d tiles\n", submitted, len(tiles))
		return buffer, stats, submitErr
	}

	rt.logger.Printf("Render completed in %v (%d collided, %d escaped, %d diverged)\n",
		stats.Duration, stats.Collided, stats.Escaped, stats.Diverged)
	return buffer, stats, nil
}

// TracePixel traces the center ray of pixel (i, j) with a generator seeded from
// the render seed, reporting every step to recorder. It returns the initial ray
// and the trace result.
func (rt *Raytracer) TracePixel(i, j int, recorder geodesic.Recorder) (geodesic.Ray, geodesic.Result) {
	tileRenderer := NewTileRenderer(rt.space, rt.camera, rt.config, nil)
	return tileRenderer.TracePixel(i, j, core.NewSeededSampler(rt.config.Seed), recorder)
}
