package obstacle

import (
	"math"

	"github.com/df07/go-schwarzschild-raytracer/pkg/core"
)

const defaultOpacity = 0.5

// DiskTexture is the procedural blackbody shading shared by the ring and the accretion volume.
type DiskTexture struct {
	RMin            float64     // Inner edge of the emission profile
	PeakTemperature float64     // Temperature in kelvin at peak luminosity
	Brightness      float64     // Radiance scale at peak luminosity
	Opacity         float64     // Optical depth per unit path length at unit density
	NoiseAmplitude  float64     // Relative perturbation of luminosity by the noise field
	Noise           *NoiseField // Optional; nil gives a perfectly smooth disk
}

// noise samples the field at (r, theta) with the polar angle compressed so
// that bands follow the radial direction
func (d *DiskTexture) noise(r, theta float64) float64 {
	if d.Noise == nil {
		return 0
	}
	return d.Noise.Eval(r, theta/math.Pi/10)
}

// Density returns the perturbed normalized luminosity at (r, theta). It is never negative.
func (d *DiskTexture) Density(r, theta float64) float64 {
	l := Luminosity(r, d.RMin) * (1 + d.NoiseAmplitude*d.noise(r, theta))
	return max(0, l)
}

// Color returns the emitted radiance at (r, theta)
func (d *DiskTexture) Color(r, theta float64) core.Vec3 {
	l := d.Density(r, theta)
	return BlackbodyColor(Temperature(l, d.PeakTemperature)).Multiply(l * d.Brightness)
}
