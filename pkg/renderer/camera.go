package renderer

import (
	"math"

	"github.com/df07/go-schwarzschild-raytracer/pkg/core"
	"github.com/df07/go-schwarzschild-raytracer/pkg/geodesic"
	"github.com/df07/go-schwarzschild-raytracer/pkg/spacetime"
)

// CameraConfig contains all parameters needed to create a camera.
// The camera sits at spherical position (Distance, Theta, Phi) around the hole.
// With a zero orientation the image center looks straight at the hole and the
// image top points toward decreasing polar angle.
type CameraConfig struct {
	Distance float64 // Radial coordinate of the camera
	Theta    float64 // Polar angle of the camera position
	Phi      float64 // Azimuth of the camera position

	Pitch float64 // Orientation: polar offset of the view center
	Yaw   float64 // Orientation: azimuthal offset of the view center
	Roll  float64 // Orientation: rotation of the screen axes

	FovX, FovY    float64 // Angular extent of the image in radians
	Width, Height int     // Image resolution in pixels
}

// Camera maps pixels to local emission directions and builds the rays for them.
// It is immutable and safe to share across workers.
type Camera struct {
	config           CameraConfig
	position         core.Vec4
	sinRoll, cosRoll float64
}

// NewCamera creates a spherical pinhole camera
func NewCamera(config CameraConfig) *Camera {
	sinRoll, cosRoll := math.Sincos(config.Roll)
	return &Camera{
		config:   config,
		position: core.NewVec4(0, config.Distance, config.Theta, config.Phi),
		sinRoll:  sinRoll,
		cosRoll:  cosRoll,
	}
}

// Config returns the configuration the camera was built from
func (c *Camera) Config() CameraConfig {
	return c.config
}

// Position returns the camera's 4-position at t = 0
func (c *Camera) Position() core.Vec4 {
	return c.position
}

// Width returns the image width in pixels
func (c *Camera) Width() int { return c.config.Width }

// Height returns the image height in pixels
func (c *Camera) Height() int { return c.config.Height }

// Direction returns the local emission angles for a point inside pixel (i, j).
// offsetX and offsetY locate the point inside the pixel, 0.5 being the center.
func (c *Camera) Direction(i, j int, offsetX, offsetY float64) (theta, phi float64) {
	dx := (float64(i)+offsetX)/float64(c.config.Width) - 0.5
	dy := (float64(j)+offsetY)/float64(c.config.Height) - 0.5

	// Roll rotates the screen axes before the field of view is applied
	rx := dx*c.cosRoll - dy*c.sinRoll
	ry := dx*c.sinRoll + dy*c.cosRoll

	phi = c.config.Yaw + rx*c.config.FovX
	theta = math.Pi/2 + c.config.Pitch + ry*c.config.FovY
	return theta, phi
}

// GetRay builds the null ray leaving the camera through a point inside pixel (i, j)
func (c *Camera) GetRay(i, j int, offsetX, offsetY float64, space *spacetime.Space) geodesic.Ray {
	theta, phi := c.Direction(i, j, offsetX, offsetY)
	return geodesic.NewRay(c.position, theta, phi, space)
}

// SubsampleOffsets returns the in-pixel offsets of a k×k grid with k = max(1, ⌊√n⌋)
func SubsampleOffsets(n int) []float64 {
	k := max(1, int(math.Sqrt(float64(n))))
	offsets := make([]float64, k)
	for a := range offsets {
		offsets[a] = (float64(a) + 0.5) / float64(k)
	}
	return offsets
}
