// Package spacetime describes the exterior Schwarzschild geometry in spherical
// coordinates (t, r, theta, phi).
package spacetime

import (
	"math"

	"github.com/df07/go-schwarzschild-raytracer/pkg/core"
	"github.com/df07/go-schwarzschild-raytracer/pkg/obstacle"
)

// Connection holds the Christoffel symbols Γ^i_jk indexed [i][j][k].
// It is a plain value: every evaluation returns a fresh copy, so nothing is
// shared between rays or integration stages.
type Connection [4][4][4]float64

// Metric holds the diagonal metric coefficients g_tt, g_rr, g_θθ, g_φφ
type Metric [4]float64

// Space is a Schwarzschild spacetime plus the obstacles rays can hit.
// It is read-only during a render and safe to share across goroutines.
type Space struct {
	HorizonRadius float64             // Schwarzschild radius rs
	C             float64             // Propagation speed, 1 in standard use
	Obstacles     []obstacle.Obstacle // Checked in order, first match wins
}

// NewSpace creates a spacetime with the given horizon radius, speed and obstacles
func NewSpace(horizonRadius, c float64, obstacles ...obstacle.Obstacle) *Space {
	return &Space{
		HorizonRadius: horizonRadius,
		C:             c,
		Obstacles:     obstacles,
	}
}

// Christoffel evaluates the connection coefficients at a position.
// The result depends only on r and theta and diverges as r approaches the
// horizon or theta approaches 0 or pi; callers treat non-finite results as a
// terminated ray.
func (s *Space) Christoffel(position core.Vec4) Connection {
	var g Connection

	rs := s.HorizonRadius
	r := position[core.R]
	sinTheta, cosTheta := math.Sincos(position[core.Theta])
	rMinusRs := r - rs

	// Γ^t_tr
	g[core.T][core.T][core.R] = rs / (2 * r * rMinusRs)
	g[core.T][core.R][core.T] = g[core.T][core.T][core.R]

	// Γ^r_tt, Γ^r_rr, Γ^r_θθ, Γ^r_φφ
	g[core.R][core.T][core.T] = rs * rMinusRs / (2 * r * r * r * s.C * s.C)
	g[core.R][core.R][core.R] = -rs / (2 * r * rMinusRs)
	g[core.R][core.Theta][core.Theta] = -rMinusRs
	g[core.R][core.Phi][core.Phi] = -rMinusRs * sinTheta * sinTheta

	// Γ^θ_rθ, Γ^θ_φφ
	g[core.Theta][core.R][core.Theta] = 1 / r
	g[core.Theta][core.Theta][core.R] = 1 / r
	g[core.Theta][core.Phi][core.Phi] = -sinTheta * cosTheta

	// Γ^φ_rφ, Γ^φ_θφ
	g[core.Phi][core.R][core.Phi] = 1 / r
	g[core.Phi][core.Phi][core.R] = 1 / r
	g[core.Phi][core.Theta][core.Phi] = cosTheta / sinTheta
	g[core.Phi][core.Phi][core.Theta] = cosTheta / sinTheta

	return g
}

// Acceleration returns d²x^i/dλ² = -Γ^i_jk v^j v^k for a velocity at a position.
// Only the non-zero symbols are expanded.
func (s *Space) Acceleration(position, velocity core.Vec4) core.Vec4 {
	g := s.Christoffel(position)
	vt, vr, vth, vph := velocity[core.T], velocity[core.R], velocity[core.Theta], velocity[core.Phi]

	return core.Vec4{
		-2 * g[core.T][core.T][core.R] * vt * vr,
		-(g[core.R][core.T][core.T]*vt*vt +
			g[core.R][core.R][core.R]*vr*vr +
			g[core.R][core.Theta][core.Theta]*vth*vth +
			g[core.R][core.Phi][core.Phi]*vph*vph),
		-(2*g[core.Theta][core.R][core.Theta]*vr*vth +
			g[core.Theta][core.Phi][core.Phi]*vph*vph),
		-(2*g[core.Phi][core.R][core.Phi]*vr*vph +
			2*g[core.Phi][core.Theta][core.Phi]*vth*vph),
	}
}

// Metric returns the diagonal metric coefficients at a position
func (s *Space) Metric(position core.Vec4) Metric {
	r := position[core.R]
	sinTheta := math.Sin(position[core.Theta])
	f := 1 - s.HorizonRadius/r

	return Metric{
		-f / (s.C * s.C),
		1 / f,
		r * r,
		r * r * sinTheta * sinTheta,
	}
}

// NullNorm returns g_μν v^μ v^ν. It is zero for a light-like tangent vector;
// its drift along a trace measures integration error.
func (s *Space) NullNorm(position, velocity core.Vec4) float64 {
	m := s.Metric(position)
	sum := 0.0
	for i := range m {
		sum += m[i] * velocity[i] * velocity[i]
	}
	return sum
}
