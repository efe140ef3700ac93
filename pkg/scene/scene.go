// Package scene describes a complete black hole render: the spacetime, its
// obstacles, the camera, and the integration and tone mapping parameters.
package scene

import (
	"fmt"

	"github.com/df07/go-schwarzschild-raytracer/pkg/core"
	"github.com/df07/go-schwarzschild-raytracer/pkg/obstacle"
	"github.com/df07/go-schwarzschild-raytracer/pkg/renderer"
	"github.com/df07/go-schwarzschild-raytracer/pkg/spacetime"
)

// DiskKind selects the emitter around the hole
type DiskKind string

const (
	DiskNone   DiskKind = "none"
	DiskVolume DiskKind = "volume" // Semi-transparent accretion slab
	DiskRing   DiskKind = "ring"   // Flat ring in the equatorial plane
)

// Disk configures the ring or accretion volume
type Disk struct {
	Kind           DiskKind
	InnerRadius    float64
	OuterRadius    float64
	Thickness      float64 // Volume only
	Temperature    float64 // Peak temperature in kelvin
	Brightness     float64 // Radiance at peak luminosity
	Opacity        float64 // Volume only; optical depth per unit length at unit density
	NoiseAmplitude float64
	Noise          obstacle.NoiseConfig
}

// Camera places and aims the camera. All angles are in radians.
type Camera struct {
	Distance   float64
	Theta      float64
	Phi        float64
	Pitch      float64
	Yaw        float64
	Roll       float64
	FovX, FovY float64
}

// Scene contains all the parameters needed for rendering
type Scene struct {
	Name        string
	Description string

	HorizonRadius float64 // Schwarzschild radius
	Speed         float64 // Propagation speed, 1 in standard use
	Width, Height int

	Camera         Camera
	Disk           Disk
	CutoffRadius   float64
	PredictHorizon bool // Add the early-exit horizon heuristic

	RaysPerPixel int
	MaxSteps     int
	StepSize     float64
	Adaptive     bool
	Seed         int64

	Exposure float64
	Gamma    float64
}

// Validate reports the first parameter that would make the render meaningless
func (s *Scene) Validate() error {
	switch {
	case s.HorizonRadius <= 0:
		return fmt.Errorf("horizon radius must be positive, got %g", s.HorizonRadius)
	case s.Speed <= 0:
		return fmt.Errorf("propagation speed must be positive, got %g", s.Speed)
	case s.Width <= 0 || s.Height <= 0:
		return fmt.Errorf("image size must be positive, got %dx%d", s.Width, s.Height)
	case s.Camera.Distance <= s.HorizonRadius:
		return fmt.Errorf("camera distance %g must lie outside the horizon radius %g", s.Camera.Distance, s.HorizonRadius)
	case s.Camera.FovX <= 0 || s.Camera.FovY <= 0:
		return fmt.Errorf("field of view must be positive, got (%g, %g)", s.Camera.FovX, s.Camera.FovY)
	case s.CutoffRadius <= s.HorizonRadius:
		return fmt.Errorf("cutoff radius %g must lie outside the horizon radius %g", s.CutoffRadius, s.HorizonRadius)
	case s.RaysPerPixel <= 0:
		return fmt.Errorf("rays per pixel must be positive, got %d", s.RaysPerPixel)
	case s.MaxSteps <= 0:
		return fmt.Errorf("max steps must be positive, got %d", s.MaxSteps)
	case s.StepSize <= 0:
		return fmt.Errorf("step size must be positive, got %g", s.StepSize)
	case s.Exposure <= 0 || s.Gamma <= 0:
		return fmt.Errorf("exposure and gamma must be positive, got %g and %g", s.Exposure, s.Gamma)
	}
	return s.Disk.validate()
}

func (d *Disk) validate() error {
	switch d.Kind {
	case DiskNone, "":
		return nil
	case DiskVolume:
		if d.Thickness <= 0 {
			return fmt.Errorf("disk thickness must be positive, got %g", d.Thickness)
		}
	case DiskRing:
	default:
		return fmt.Errorf("unknown disk kind %q", d.Kind)
	}
	if d.InnerRadius <= 0 || d.OuterRadius <= d.InnerRadius {
		return fmt.Errorf("disk radii must satisfy 0 < inner < outer, got %g and %g", d.InnerRadius, d.OuterRadius)
	}
	return nil
}

// Rescale converts every length in the scene to the horizon radius rs so that
// the geometry stays the same in units of the radius. Angles, image settings
// and tone mapping are untouched. A non-positive rs leaves the scene as it is.
func (s *Scene) Rescale(rs float64) {
	if rs <= 0 || s.HorizonRadius <= 0 {
		return
	}
	k := rs / s.HorizonRadius
	s.HorizonRadius = rs
	s.Camera.Distance *= k
	s.CutoffRadius *= k
	s.StepSize *= k

	s.Disk.InnerRadius *= k
	s.Disk.OuterRadius *= k
	s.Disk.Thickness *= k
	// per-length quantities
	s.Disk.Opacity /= k
	s.Disk.Noise.Frequency /= k
}

// Obstacles returns the obstacle list in priority order: the optional predictor,
// the horizon, the distance cutoff, then the disk.
func (s *Scene) Obstacles() []obstacle.Obstacle {
	var obstacles []obstacle.Obstacle
	if s.PredictHorizon {
		obstacles = append(obstacles, obstacle.NewHorizonPredictor(s.HorizonRadius))
	}
	obstacles = append(obstacles,
		obstacle.NewHorizon(s.HorizonRadius),
		obstacle.NewDistanceCutoff(s.CutoffRadius),
	)

	switch s.Disk.Kind {
	case DiskVolume:
		obstacles = append(obstacles, obstacle.NewAccretionVolume(s.Disk.InnerRadius, s.Disk.OuterRadius, s.Disk.Thickness, s.texture()))
	case DiskRing:
		obstacles = append(obstacles, obstacle.NewRing(s.Disk.InnerRadius, s.Disk.OuterRadius, s.texture()))
	}
	return obstacles
}

func (s *Scene) texture() *obstacle.DiskTexture {
	texture := &obstacle.DiskTexture{
		RMin:            s.Disk.InnerRadius,
		PeakTemperature: s.Disk.Temperature,
		Brightness:      s.Disk.Brightness,
		Opacity:         s.Disk.Opacity,
		NoiseAmplitude:  s.Disk.NoiseAmplitude,
	}
	if s.Disk.NoiseAmplitude != 0 {
		texture.Noise = obstacle.NewNoiseField(s.Disk.Noise)
	}
	return texture
}

// Space builds the spacetime with the scene's obstacles
func (s *Scene) Space() *spacetime.Space {
	return spacetime.NewSpace(s.HorizonRadius, s.Speed, s.Obstacles()...)
}

// CameraConfig converts the scene camera into renderer form
func (s *Scene) CameraConfig() renderer.CameraConfig {
	return renderer.CameraConfig{
		Distance: s.Camera.Distance,
		Theta:    s.Camera.Theta,
		Phi:      s.Camera.Phi,
		Pitch:    s.Camera.Pitch,
		Yaw:      s.Camera.Yaw,
		Roll:     s.Camera.Roll,
		FovX:     s.Camera.FovX,
		FovY:     s.Camera.FovY,
		Width:    s.Width,
		Height:   s.Height,
	}
}

// RenderConfig returns the integration settings with the given worker count
func (s *Scene) RenderConfig(numWorkers int) renderer.Config {
	config := renderer.DefaultConfig()
	config.RaysPerPixel = s.RaysPerPixel
	config.MaxSteps = s.MaxSteps
	config.StepSize = s.StepSize
	config.Adaptive = s.Adaptive
	config.Seed = s.Seed
	config.NumWorkers = numWorkers
	return config
}

// NewRaytracer validates the scene and assembles a raytracer for it
func (s *Scene) NewRaytracer(numWorkers int, logger core.Logger) (*renderer.Raytracer, error) {
	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("invalid scene %q: %w", s.Name, err)
	}
	camera := renderer.NewCamera(s.CameraConfig())
	return renderer.NewRaytracer(s.Space(), camera, s.RenderConfig(numWorkers), logger), nil
}
