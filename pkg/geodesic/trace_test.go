package geodesic

import (
	"math"
	"testing"

	"github.com/df07/go-schwarzschild-raytracer/pkg/core"
	"github.com/df07/go-schwarzschild-raytracer/pkg/obstacle"
	"github.com/df07/go-schwarzschild-raytracer/pkg/spacetime"
)

// stepLog collects every recorded state of a trace
type stepLog struct {
	rays  []Ray
	sizes []float64
}

func (l *stepLog) RecordStep(step int, ray Ray, stepSize float64) {
	l.rays = append(l.rays, ray)
	l.sizes = append(l.sizes, stepSize)
}

func TestTrace_RadialInfallReachesHorizon(t *testing.T) {
	space := spacetime.NewSpace(1, 1, obstacle.NewHorizon(1), obstacle.NewDistanceCutoff(20))
	ray := NewRay(core.NewVec4(0, 10, math.Pi/2, 0), math.Pi/2, 0, space)

	log := &stepLog{}
	result := ray.Trace(space, TraceConfig{MaxSteps: 5000, StepSize: 0.1, Adaptive: true}, core.ConstantSampler(0.5), log)

	if result.Outcome != OutcomeCollided {
		t.Fatalf("Expected collision, got %s", result.Outcome)
	}
	if result.Collision.Obstacle != obstacle.KindHorizon || result.Collision.Index != 0 {
		t.Errorf("Expected horizon at index 0, got %s at %d", result.Collision.Obstacle, result.Collision.Index)
	}
	// Near the horizon steps are floored at rs/200, so the last one ends shortly inside
	if r := result.Collision.Position[core.R]; r > 1 || r < 0.97 {
		t.Errorf("Expected collision radius just inside 1, got %f", r)
	}

	previous := ray.Position[core.R]
	for i, state := range log.rays {
		if state.Position[core.R] > previous {
			t.Fatalf("Radius increased at step %d: %f -> %f", i+1, previous, state.Position[core.R])
		}
		previous = state.Position[core.R]
	}
	if len(log.rays) != result.Steps {
		t.Errorf("Recorder saw %d steps, result reports %d", len(log.rays), result.Steps)
	}
}

func TestTrace_RadialEscape(t *testing.T) {
	space := spacetime.NewSpace(1, 1, obstacle.NewHorizon(1), obstacle.NewDistanceCutoff(100))
	start := core.NewVec4(0, 10, math.Pi/2, 0)
	ray := NewRay(start, math.Pi/2, math.Pi, space)

	log := &stepLog{}
	result := ray.Trace(space, TraceConfig{MaxSteps: 1000, StepSize: 1}, core.ConstantSampler(0.5), log)

	if result.Outcome != OutcomeCollided || result.Collision.Obstacle != obstacle.KindDistanceCutoff {
		t.Fatalf("Expected distance cutoff collision, got %s", result.Outcome)
	}

	previous := start[core.R]
	for i, state := range log.rays {
		if state.Position[core.R] < previous {
			t.Fatalf("Radius decreased at step %d", i+1)
		}
		previous = state.Position[core.R]
	}

	end := result.Collision.Position
	if d := math.Abs(end[core.Theta] - start[core.Theta]); d > 1e-3 {
		t.Errorf("Polar angle drifted by %e", d)
	}
	if d := math.Abs(end[core.Phi] - start[core.Phi]); d > 1e-3 {
		t.Errorf("Azimuth drifted by %e", d)
	}
}

func TestTrace_PhotonSphereOrbit(t *testing.T) {
	space := spacetime.NewSpace(1, 1, obstacle.NewHorizon(1))
	ray := NewRay(core.NewVec4(0, 1.5, math.Pi/2, 0), math.Pi/2, math.Pi/2, space)

	// dφ/dλ = 1/1.5 at the photon sphere, so 1000 steps of 0.01 sweep 6.67 rad
	const steps = 1000
	log := &stepLog{}
	result := ray.Trace(space, TraceConfig{MaxSteps: steps, StepSize: 0.01}, core.ConstantSampler(0.5), log)

	if result.Outcome != OutcomeEscaped || result.Steps != steps {
		t.Fatalf("Expected %d steps without collision, got %s after %d", steps, result.Outcome, result.Steps)
	}
	for i, state := range log.rays {
		if d := math.Abs(state.Position[core.R] - 1.5); d > 1e-3 {
			t.Fatalf("Orbit radius off by %e at step %d", d, i+1)
		}
	}
	if d := math.Abs(result.Final.Position[core.R] - 1.5); d > 1e-3 {
		t.Errorf("Final orbit radius off by %e", d)
	}
	if phi := result.Final.Position[core.Phi]; phi < 2*math.Pi {
		t.Errorf("Expected at least one full prograde orbit, phi = %f", phi)
	}
}

func TestTrace_PreservesNullCondition(t *testing.T) {
	space := spacetime.NewSpace(1, 1)
	ray := NewRay(core.NewVec4(0, 10, 1.2, 0), 1.0, 0.6, space)

	log := &stepLog{}
	ray.Trace(space, TraceConfig{MaxSteps: 100, StepSize: 0.05}, core.ConstantSampler(0.5), log)

	for i, state := range log.rays {
		if norm := state.NullNorm(space); math.Abs(norm) > 1e-6 {
			t.Fatalf("Null norm drifted to %e at step %d", norm, i+1)
		}
	}
}

func TestTrace_Outcomes(t *testing.T) {
	tests := []struct {
		name      string
		obstacles []obstacle.Obstacle
		position  core.Vec4
		phi       float64
		maxSteps  int
		expected  Outcome
		steps     int
		index     int
	}{
		{
			name:     "Budget exhausted",
			position: core.NewVec4(0, 10, math.Pi/2, 0),
			phi:      math.Pi,
			maxSteps: 10,
			expected: OutcomeEscaped,
			steps:    10,
		},
		{
			name:     "Diverges on the polar axis",
			position: core.NewVec4(0, 10, 0, 0),
			phi:      math.Pi / 2,
			maxSteps: 10,
			expected: OutcomeDiverged,
			steps:    1,
		},
		{
			name:      "First matching obstacle wins",
			obstacles: []obstacle.Obstacle{obstacle.NewHorizon(1), obstacle.NewDistanceCutoff(5), obstacle.NewDistanceCutoff(6)},
			position:  core.NewVec4(0, 10, math.Pi/2, 0),
			phi:       math.Pi,
			maxSteps:  10,
			expected:  OutcomeCollided,
			steps:     1,
			index:     1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			space := spacetime.NewSpace(1, 1, tt.obstacles...)
			ray := NewRay(tt.position, math.Pi/2, tt.phi, space)
			result := ray.Trace(space, TraceConfig{MaxSteps: tt.maxSteps, StepSize: 0.5}, core.ConstantSampler(0.5), nil)

			if result.Outcome != tt.expected {
				t.Fatalf("Expected %s, got %s", tt.expected, result.Outcome)
			}
			if result.Steps != tt.steps {
				t.Errorf("Expected %d steps, got %d", tt.steps, result.Steps)
			}
			if tt.expected == OutcomeCollided && result.Collision.Index != tt.index {
				t.Errorf("Expected obstacle %d, got %d", tt.index, result.Collision.Index)
			}
			if tt.expected != OutcomeCollided && result.Collision != nil {
				t.Errorf("Expected no collision, got %+v", result.Collision)
			}
			if !result.Final.Position.IsFinite() {
				t.Errorf("Final state should be the last finite state, got %v", result.Final.Position)
			}
		})
	}
}

func TestNextStepSize(t *testing.T) {
	space := spacetime.NewSpace(1, 1)
	fixed := TraceConfig{StepSize: 1}
	adaptive := TraceConfig{StepSize: 1, Adaptive: true}

	far := NewRay(core.NewVec4(0, 10, math.Pi/2, 0), math.Pi/2, 0, space)
	nearHorizon := NewRay(core.NewVec4(0, 1.0001, math.Pi/2, 0), math.Pi/2, 0, space)
	nearPole := NewRay(core.NewVec4(0, 10, 0.05, 0), math.Pi/2, 0, space)

	tests := []struct {
		name     string
		ray      Ray
		config   TraceConfig
		expected float64
	}{
		{"Fixed ignores position", nearHorizon, fixed, 1},
		{"Far from horizon", far, adaptive, 0.9},
		{"Floored near horizon", nearHorizon, adaptive, 0.005},
		{"Floor is absolute for large steps", nearHorizon, TraceConfig{StepSize: 40, Adaptive: true}, 0.005},
		{"Floor never exceeds the nominal step", nearHorizon, TraceConfig{StepSize: 0.001, Adaptive: true}, 0.001},
		{"Shrunk near pole", nearPole, adaptive, 0.1 * 10 * math.Sin(0.05)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NextStepSize(tt.ray, space, tt.config)
			if math.Abs(got-tt.expected) > 1e-6 {
				t.Errorf("Expected step %f, got %f", tt.expected, got)
			}
		})
	}
}

func TestOutcome_String(t *testing.T) {
	tests := map[Outcome]string{
		OutcomeCollided: "collided",
		OutcomeEscaped:  "escaped",
		OutcomeDiverged: "diverged",
		Outcome(9):      "outcome(9)",
	}
	for outcome, expected := range tests {
		if outcome.String() != expected {
			t.Errorf("Expected %q, got %q", expected, outcome.String())
		}
	}
}
