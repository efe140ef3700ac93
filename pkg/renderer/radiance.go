package renderer

import "github.com/df07/go-schwarzschild-raytracer/pkg/core"

// Radiance is a linear, unbounded RGB buffer with one entry per pixel, row-major
// with the origin at the top-left corner.
type Radiance struct {
	Width, Height int
	Pix           []core.Vec3
}

// NewRadiance allocates a black buffer
func NewRadiance(width, height int) *Radiance {
	return &Radiance{
		Width:  width,
		Height: height,
		Pix:    make([]core.Vec3, width*height),
	}
}

// At returns the radiance of pixel (x, y)
func (r *Radiance) At(x, y int) core.Vec3 {
	return r.Pix[y*r.Width+x]
}

// Set stores the radiance of pixel (x, y)
func (r *Radiance) Set(x, y int, c core.Vec3) {
	r.Pix[y*r.Width+x] = c
}

// Max returns the largest channel value in the buffer, 0 for an empty or black buffer
func (r *Radiance) Max() float64 {
	m := 0.0
	for _, c := range r.Pix {
		m = max(m, c.MaxComponent())
	}
	return m
}
