// Package geodesic integrates light rays through a Schwarzschild spacetime.
package geodesic

import (
	"math"

	"github.com/df07/go-schwarzschild-raytracer/pkg/core"
	"github.com/df07/go-schwarzschild-raytracer/pkg/spacetime"
)

// Ray is a point on a light-like geodesic: a 4-position and its tangent 4-velocity,
// both in (t, r, theta, phi) order.
type Ray struct {
	Position core.Vec4
	Velocity core.Vec4
}

// LocalDirection converts observer-frame angles into a unit vector over the
// orthonormal basis (e_r, e_θ, e_φ). The frame's up axis is -e_θ; theta is the
// polar angle from up and phi the azimuth from -e_r (toward the hole) toward +e_φ.
func LocalDirection(theta, phi float64) (nr, nTheta, nPhi float64) {
	sinT, cosT := math.Sincos(theta)
	sinP, cosP := math.Sincos(phi)
	return -sinT * cosP, -cosT, sinT * sinP
}

// NewRay creates a ray at position heading in the local direction (theta, phi).
// The spatial velocity has local speed C and the time component is solved from
// the null condition g_μν v^μ v^ν = 0. A negative discriminant, which only
// appears for degenerate positions, yields a zero time component instead of NaN.
func NewRay(position core.Vec4, theta, phi float64, space *spacetime.Space) Ray {
	nr, nTheta, nPhi := LocalDirection(theta, phi)
	g := space.Metric(position)
	c := space.C

	var v core.Vec4
	v[core.R] = c * nr / math.Sqrt(g[core.R])
	v[core.Theta] = c * nTheta / math.Sqrt(g[core.Theta])
	v[core.Phi] = c * nPhi / math.Sqrt(g[core.Phi])

	spatial := g[core.R]*v[core.R]*v[core.R] +
		g[core.Theta]*v[core.Theta]*v[core.Theta] +
		g[core.Phi]*v[core.Phi]*v[core.Phi]
	discriminant := -spatial / g[core.T]
	if discriminant > 0 {
		v[core.T] = math.Sqrt(discriminant)
	}

	// Directions with no azimuthal or polar component produce 0/0 at the poles
	for i := range v {
		if math.IsNaN(v[i]) {
			v[i] = 0
		}
	}

	return Ray{Position: position, Velocity: v}
}

// derivative returns d(position)/dλ and d(velocity)/dλ for a state
func derivative(space *spacetime.Space, position, velocity core.Vec4) (core.Vec4, core.Vec4) {
	return velocity, space.Acceleration(position, velocity)
}

// Step advances the ray by one classic fourth-order Runge-Kutta step of size h
// on the geodesic equation written as a first-order system in (position, velocity).
// Each stage re-evaluates the connection at its own intermediate position.
func (r Ray) Step(h float64, space *spacetime.Space) Ray {
	x0, v0 := r.Position, r.Velocity

	dx1, dv1 := derivative(space, x0, v0)
	dx2, dv2 := derivative(space, x0.AddScaled(dx1, h/2), v0.AddScaled(dv1, h/2))
	dx3, dv3 := derivative(space, x0.AddScaled(dx2, h/2), v0.AddScaled(dv2, h/2))
	dx4, dv4 := derivative(space, x0.AddScaled(dx3, h), v0.AddScaled(dv3, h))

	dx := dx1.Add(dx2.Multiply(2)).Add(dx3.Multiply(2)).Add(dx4)
	dv := dv1.Add(dv2.Multiply(2)).Add(dv3.Multiply(2)).Add(dv4)

	return Ray{
		Position: x0.AddScaled(dx, h/6),
		Velocity: v0.AddScaled(dv, h/6),
	}
}

// IsFinite reports whether every position and velocity component is finite
func (r Ray) IsFinite() bool {
	return r.Position.IsFinite() && r.Velocity.IsFinite()
}

// NullNorm returns g_μν v^μ v^ν at the ray's position
func (r Ray) NullNorm(space *spacetime.Space) float64 {
	return space.NullNorm(r.Position, r.Velocity)
}
