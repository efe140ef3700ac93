// Package obstacle defines the closed set of scene geometries a traced ray can
// terminate on, with a collision test over one integration segment and a
// surface color for each kind.
package obstacle

import (
	"fmt"
	"math"

	"github.com/df07/go-schwarzschild-raytracer/pkg/core"
)

// Kind enumerates the obstacle variants. The set is closed: every switch over
// Kind in this package is exhaustive and panics on an unknown value.
type Kind int

const (
	KindHorizon Kind = iota
	KindHorizonPredictor
	KindDistanceCutoff
	KindRing
	KindAccretionVolume
)

// Diagnostic and fixed surface colors, in the same linear units as disk radiance.
var (
	horizonColor = core.NewVec3(0, 0, 0)
	cutoffColor  = core.NewVec3(0, 20, 50)
)

func (k Kind) String() string {
	switch k {
	case KindHorizon:
		return "horizon"
	case KindHorizonPredictor:
		return "horizon-predictor"
	case KindDistanceCutoff:
		return "distance-cutoff"
	case KindRing:
		return "ring"
	case KindAccretionVolume:
		return "accretion-volume"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Obstacle is a tagged union over the scene geometry kinds.
// Only the fields relevant to Kind are meaningful:
//   - Horizon, HorizonPredictor, DistanceCutoff: Radius
//   - Ring: RMin, RMax, Texture
//   - AccretionVolume: RMin, RMax, Thickness, Texture
//
// Obstacles are immutable after construction and safe to share across goroutines.
type Obstacle struct {
	Kind      Kind
	Radius    float64
	RMin      float64
	RMax      float64
	Thickness float64
	Texture   *DiskTexture
}

// Hit describes where a segment met an obstacle.
type Hit struct {
	Position core.Vec4 // Point used for shading
	Fraction float64   // Ring: interpolation fraction a. AccretionVolume: path length inside the slab.
}

// NewHorizon creates the event horizon obstacle
func NewHorizon(radius float64) Obstacle {
	return Obstacle{Kind: KindHorizon, Radius: radius}
}

// NewHorizonPredictor creates the early-exit heuristic for rays aimed into the horizon silhouette
func NewHorizonPredictor(radius float64) Obstacle {
	return Obstacle{Kind: KindHorizonPredictor, Radius: radius}
}

// NewDistanceCutoff creates the outer boundary that keeps traces finite
func NewDistanceCutoff(radius float64) Obstacle {
	return Obstacle{Kind: KindDistanceCutoff, Radius: radius}
}

// NewRing creates a flat ring in the equatorial plane
func NewRing(rMin, rMax float64, texture *DiskTexture) Obstacle {
	return Obstacle{Kind: KindRing, RMin: rMin, RMax: rMax, Texture: texture}
}

// NewAccretionVolume creates a semi-transparent slab of the given thickness around the equatorial plane
func NewAccretionVolume(rMin, rMax, thickness float64, texture *DiskTexture) Obstacle {
	return Obstacle{Kind: KindAccretionVolume, RMin: rMin, RMax: rMax, Thickness: thickness, Texture: texture}
}

// Collide tests the segment prev -> next, traversed with the given step size.
// The sampler is only consulted by the accretion volume.
func (o Obstacle) Collide(prev, next core.Vec4, stepSize float64, sampler core.Sampler) (Hit, bool) {
	switch o.Kind {
	case KindHorizon:
		if next[core.R] <= o.Radius {
			return Hit{Position: next}, true
		}
		return Hit{}, false
	case KindHorizonPredictor:
		return o.collidePredictor(prev, next)
	case KindDistanceCutoff:
		if next[core.R] >= o.Radius {
			return Hit{Position: next}, true
		}
		return Hit{}, false
	case KindRing:
		return o.collideRing(prev, next)
	case KindAccretionVolume:
		return o.collideVolume(prev, next, stepSize, sampler)
	default:
		panic(fmt.Sprintf("obstacle: unknown kind %d", int(o.Kind)))
	}
}

// Color returns the radiance emitted toward the ray at a collision position
func (o Obstacle) Color(position core.Vec4) core.Vec3 {
	switch o.Kind {
	case KindHorizon, KindHorizonPredictor:
		return horizonColor
	case KindDistanceCutoff:
		return cutoffColor
	case KindRing, KindAccretionVolume:
		if o.Texture == nil {
			return horizonColor
		}
		return o.Texture.Color(position[core.R], position[core.Theta])
	default:
		panic(fmt.Sprintf("obstacle: unknown kind %d", int(o.Kind)))
	}
}

// collidePredictor reports a collision when the segment moves inward below the
// photon sphere and the angular window of the horizon seen from the new point
// lies inside the window seen from the previous point.
func (o Obstacle) collidePredictor(prev, next core.Vec4) (Hit, bool) {
	r1, r2 := prev[core.R], next[core.R]
	if r2 >= o.Radius*3/2 || r2 >= r1 {
		return Hit{}, false
	}

	angle := prev.Cartesian().AngleTo(next.Cartesian())
	half1 := math.Acos(o.Radius / r1)
	half2 := math.Acos(o.Radius / r2)

	// Inside the horizon acos is NaN and every comparison below is false
	if -half1 < angle-half2 && half1 > angle+half2 {
		return Hit{Position: next}, true
	}
	return Hit{}, false
}

// equatorCrossing returns the fraction a at which linear interpolation of the
// polar angle between prev and next reaches pi/2. ok is false when the polar
// angle does not change across the segment.
func equatorCrossing(prev, next core.Vec4) (a float64, ok bool) {
	theta1 := foldPolar(prev[core.Theta])
	theta2 := foldPolar(next[core.Theta])
	if theta2 == theta1 {
		return 0, false
	}
	a = (math.Pi/2 - theta1) / (theta2 - theta1)
	if math.IsNaN(a) || math.IsInf(a, 0) {
		return 0, false
	}
	return a, true
}

// foldPolar maps any polar angle onto [0, pi] by reflection, so rays passing
// over the poles keep a meaningful distance from the equator.
func foldPolar(theta float64) float64 {
	theta = math.Mod(theta, 2*math.Pi)
	if theta < 0 {
		theta += 2 * math.Pi
	}
	if theta > math.Pi {
		theta = 2*math.Pi - theta
	}
	return theta
}

func lerp4(a, b core.Vec4, t float64) core.Vec4 {
	return a.Multiply(1 - t).AddScaled(b, t)
}

func (o Obstacle) collideRing(prev, next core.Vec4) (Hit, bool) {
	a, ok := equatorCrossing(prev, next)
	if !ok || a < 0 || a > 1 {
		return Hit{}, false
	}
	r := prev[core.R]*(1-a) + next[core.R]*a
	if r < o.RMin || r > o.RMax {
		return Hit{}, false
	}
	position := lerp4(prev, next, a)
	position[core.Theta] = math.Pi / 2
	return Hit{Position: position, Fraction: a}, true
}

// altitude is the signed height above the equatorial plane
func altitude(p core.Vec4) float64 {
	return p[core.R] * math.Sin(p[core.Theta]-math.Pi/2)
}

// slabPathLength returns the part of stepSize spent inside |altitude| <= thickness/2
func slabPathLength(alt1, alt2, thickness, stepSize float64, crosses bool) float64 {
	half := thickness / 2
	da := alt2 - alt1
	sign := -1.0
	if alt2 > alt1 {
		sign = 1.0
	}

	var length float64
	switch {
	case math.Abs(alt1) <= half && math.Abs(alt2) <= half:
		length = stepSize
	case math.Abs(alt2) <= half:
		length = stepSize * (sign*half + alt2) / da
	case math.Abs(alt1) <= half:
		length = stepSize * (sign*half - alt1) / da
	case crosses:
		length = stepSize * sign * thickness / da
	}
	if math.IsNaN(length) {
		return 0
	}
	return max(0, min(stepSize, length))
}

func (o Obstacle) collideVolume(prev, next core.Vec4, stepSize float64, sampler core.Sampler) (Hit, bool) {
	a, ok := equatorCrossing(prev, next)
	crosses := ok && a >= 0 && a <= 1

	// Radial range is checked at the equator crossing when there is one,
	// otherwise at the new position
	position := next
	if crosses {
		position = lerp4(prev, next, a)
	}
	r := position[core.R]
	if r < o.RMin || r > o.RMax {
		return Hit{}, false
	}

	length := slabPathLength(altitude(prev), altitude(next), o.Thickness, stepSize, crosses)
	if length <= 0 {
		return Hit{}, false
	}

	density := 1.0
	if o.Texture != nil {
		density = o.Texture.Density(r, position[core.Theta])
	}
	probability := 1 - math.Exp(-length*density*o.opacity())
	if sampler.Get1D() < probability {
		return Hit{Position: position, Fraction: length}, true
	}
	return Hit{}, false
}

func (o Obstacle) opacity() float64 {
	if o.Texture == nil || o.Texture.Opacity <= 0 {
		return defaultOpacity
	}
	return o.Texture.Opacity
}
