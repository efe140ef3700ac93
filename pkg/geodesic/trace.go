package geodesic

import (
	"fmt"
	"math"

	"github.com/df07/go-schwarzschild-raytracer/pkg/core"
	"github.com/df07/go-schwarzschild-raytracer/pkg/obstacle"
	"github.com/df07/go-schwarzschild-raytracer/pkg/spacetime"
)

// polarRatio is the largest allowed ratio of step displacement to distance from the polar axis
const polarRatio = 0.1

// Outcome is the terminal classification of a trace
type Outcome int

const (
	OutcomeCollided Outcome = iota // Stopped on an obstacle
	OutcomeEscaped                 // Step budget exhausted without a collision
	OutcomeDiverged                // A coordinate became non-finite
)

func (o Outcome) String() string {
	switch o {
	case OutcomeCollided:
		return "collided"
	case OutcomeEscaped:
		return "escaped"
	case OutcomeDiverged:
		return "diverged"
	default:
		return fmt.Sprintf("outcome(%d)", int(o))
	}
}

// TraceConfig bounds a trace
type TraceConfig struct {
	MaxSteps int     // Step budget; every trace terminates within it
	StepSize float64 // Nominal affine step
	Adaptive bool    // Shrink steps near the horizon and the polar axis
}

// Collision is the terminal hit of a trace
type Collision struct {
	Position core.Vec4
	Color    core.Vec3
	Obstacle obstacle.Kind
	Index    int // Position of the obstacle in Space.Obstacles
}

// Result is what a trace returns
type Result struct {
	Outcome   Outcome
	Collision *Collision // Non-nil only for OutcomeCollided
	Steps     int        // Integration steps taken
	Final     Ray        // Last finite state reached
}

// Recorder observes every accepted integration step of a trace
type Recorder interface {
	RecordStep(step int, ray Ray, stepSize float64)
}

// RecorderFunc adapts a plain function to Recorder
type RecorderFunc func(step int, ray Ray, stepSize float64)

// RecordStep implements Recorder
func (f RecorderFunc) RecordStep(step int, ray Ray, stepSize float64) { f(step, ray, stepSize) }

// NextStepSize returns the step to take from the ray's current state
func NextStepSize(r Ray, space *spacetime.Space, config TraceConfig) float64 {
	h := config.StepSize
	if !config.Adaptive {
		return h
	}

	rs := space.HorizonRadius
	radius := r.Position[core.R]
	// The step never shrinks below rs/200, so scenes scaled with rs trace identically
	floor := min(rs/200/config.StepSize, 1)

	h *= max(floor, min(1, math.Abs(1-rs/radius)))

	// Shrink further when one step would move a sizeable fraction of the distance to the polar axis
	g := space.Metric(r.Position)
	v := r.Velocity
	speed := math.Sqrt(math.Abs(g[core.R]*v[core.R]*v[core.R] +
		g[core.Theta]*v[core.Theta]*v[core.Theta] +
		g[core.Phi]*v[core.Phi]*v[core.Phi]))
	axisDistance := radius * math.Abs(math.Sin(r.Position[core.Theta]))
	if axisDistance > 0 && speed > 0 {
		if ratio := h * speed / axisDistance; ratio > polarRatio {
			h *= polarRatio / ratio
		}
	}

	if minimum := config.StepSize * floor; h < minimum || math.IsNaN(h) {
		h = minimum
	}
	return h
}

// Trace advances the ray until it collides with an obstacle, becomes non-finite,
// or exhausts the step budget. After every step the traversed segment is tested
// against the obstacles in declaration order and the first match wins.
// The sampler feeds the accretion volume's probabilistic collision; recorder may be nil.
func (r Ray) Trace(space *spacetime.Space, config TraceConfig, sampler core.Sampler, recorder Recorder) Result {
	current := r
	for step := 1; step <= config.MaxSteps; step++ {
		h := NextStepSize(current, space, config)
		next := current.Step(h, space)

		if !next.IsFinite() {
			return Result{Outcome: OutcomeDiverged, Steps: step, Final: current}
		}
		if recorder != nil {
			recorder.RecordStep(step, next, h)
		}

		for i, o := range space.Obstacles {
			hit, ok := o.Collide(current.Position, next.Position, h, sampler)
			if !ok {
				continue
			}
			return Result{
				Outcome: OutcomeCollided,
				Collision: &Collision{
					Position: hit.Position,
					Color:    o.Color(hit.Position),
					Obstacle: o.Kind,
					Index:    i,
				},
				Steps: step,
				Final: next,
			}
		}
		current = next
	}
	return Result{Outcome: OutcomeEscaped, Steps: config.MaxSteps, Final: current}
}
