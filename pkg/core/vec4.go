package core

import "math"

// Indices into a Vec4 holding spherical spacetime coordinates.
const (
	T     = 0
	R     = 1
	Theta = 2
	Phi   = 3
)

// Vec4 is a spacetime 4-vector in (t, r, theta, phi) order.
// The same type carries positions and tangent vectors.
type Vec4 [4]float64

// NewVec4 creates a new Vec4
func NewVec4(t, r, theta, phi float64) Vec4 {
	return Vec4{t, r, theta, phi}
}

// Add returns the component-wise sum
func (v Vec4) Add(other Vec4) Vec4 {
	return Vec4{v[0] + other[0], v[1] + other[1], v[2] + other[2], v[3] + other[3]}
}

// Multiply returns the vector scaled by a scalar
func (v Vec4) Multiply(scalar float64) Vec4 {
	return Vec4{v[0] * scalar, v[1] * scalar, v[2] * scalar, v[3] * scalar}
}

// AddScaled returns v + other*scalar
func (v Vec4) AddScaled(other Vec4, scalar float64) Vec4 {
	return Vec4{
		v[0] + other[0]*scalar,
		v[1] + other[1]*scalar,
		v[2] + other[2]*scalar,
		v[3] + other[3]*scalar,
	}
}

// IsFinite reports whether no component is NaN or infinite
func (v Vec4) IsFinite() bool {
	for _, c := range v {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return false
		}
	}
	return true
}

// Cartesian returns the spatial part of a position as a cartesian vector
func (v Vec4) Cartesian() Vec3 {
	return SphericalToCartesian(v[R], v[Theta], v[Phi])
}
