package geodesic

import (
	"math"
	"testing"

	"github.com/df07/go-schwarzschild-raytracer/pkg/core"
	"github.com/df07/go-schwarzschild-raytracer/pkg/spacetime"
)

func TestLocalDirection(t *testing.T) {
	tests := []struct {
		name             string
		theta, phi       float64
		nr, nTheta, nPhi float64
	}{
		{"Toward the hole", math.Pi / 2, 0, -1, 0, 0},
		{"Away from the hole", math.Pi / 2, math.Pi, 1, 0, 0},
		{"Prograde", math.Pi / 2, math.Pi / 2, 0, 0, 1},
		{"Up", 0, 0, 0, -1, 0},
		{"Down", math.Pi, 0, 0, 1, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			nr, nTheta, nPhi := LocalDirection(tt.theta, tt.phi)
			const tolerance = 1e-12
			if math.Abs(nr-tt.nr) > tolerance || math.Abs(nTheta-tt.nTheta) > tolerance || math.Abs(nPhi-tt.nPhi) > tolerance {
				t.Errorf("Expected (%f, %f, %f), got (%f, %f, %f)", tt.nr, tt.nTheta, tt.nPhi, nr, nTheta, nPhi)
			}
			if norm := nr*nr + nTheta*nTheta + nPhi*nPhi; math.Abs(norm-1) > tolerance {
				t.Errorf("Direction not unit length: %f", norm)
			}
		})
	}
}

func TestNewRay_IsNull(t *testing.T) {
	tests := []struct {
		name       string
		c          float64
		position   core.Vec4
		theta, phi float64
	}{
		{"Radial inward", 1, core.NewVec4(0, 10, math.Pi/2, 0), math.Pi / 2, 0},
		{"Oblique", 1, core.NewVec4(0, 7, 1.1, 0.3), 0.7, 2.1},
		{"Grazing at photon sphere", 1, core.NewVec4(0, 1.5, math.Pi/2, 0), math.Pi / 2, math.Pi / 2},
		{"Non-unit speed", 3, core.NewVec4(0, 4, 2.0, 1), 1.3, -0.4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			space := spacetime.NewSpace(1, tt.c)
			ray := NewRay(tt.position, tt.theta, tt.phi, space)

			if ray.Position != tt.position {
				t.Errorf("Expected position %v, got %v", tt.position, ray.Position)
			}
			if ray.Velocity[core.T] <= 0 {
				t.Errorf("Expected future-directed time component, got %f", ray.Velocity[core.T])
			}
			if norm := ray.NullNorm(space); math.Abs(norm) > 1e-9*tt.c*tt.c {
				t.Errorf("Expected null velocity, norm %e", norm)
			}
		})
	}
}

func TestNewRay_NegativeDiscriminant(t *testing.T) {
	// Inside the horizon g_tt is positive and no real time component exists
	space := spacetime.NewSpace(1, 1)
	ray := NewRay(core.NewVec4(0, 0.5, math.Pi/2, 0), math.Pi/2, math.Pi/2, space)

	if ray.Velocity[core.T] != 0 {
		t.Errorf("Expected zero time component, got %f", ray.Velocity[core.T])
	}
	for i, v := range ray.Velocity {
		if math.IsNaN(v) {
			t.Errorf("Velocity component %d is NaN", i)
		}
	}
}

func TestRay_Step_MatchesEulerForSmallSteps(t *testing.T) {
	space := spacetime.NewSpace(1, 1)
	ray := NewRay(core.NewVec4(0, 8, 1.2, 0.5), 1.0, 0.8, space)

	const h = 1e-4
	next := ray.Step(h, space)
	euler := ray.Position.AddScaled(ray.Velocity, h)

	for i := range next.Position {
		if math.Abs(next.Position[i]-euler[i]) > 1e-6 {
			t.Errorf("Component %d: RK4 %f vs Euler %f", i, next.Position[i], euler[i])
		}
	}
}

func TestRay_Step_StaticSpaceIsStraightLine(t *testing.T) {
	// A vanishing horizon radius is flat space in spherical coordinates,
	// where light travels on straight cartesian lines.
	space := spacetime.NewSpace(0, 1)
	ray := NewRay(core.NewVec4(0, 10, 1.3, 0.2), 1.1, 0.9, space)

	start := ray.Position.Cartesian()
	var points []core.Vec3
	for i := 0; i < 50; i++ {
		ray = ray.Step(0.1, space)
		points = append(points, ray.Position.Cartesian())
	}

	direction := points[0].Subtract(start)
	for i, p := range points {
		offset := p.Subtract(start)
		if angle := offset.AngleTo(direction); angle > 1e-5 {
			t.Fatalf("Step %d leaves the straight line by %e radians", i, angle)
		}
	}
}
