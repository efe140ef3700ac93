package core

import "math"

// Vec3 represents a 3D vector. It doubles as a linear RGB radiance triple (X=R, Y=G, Z=B).
type Vec3 struct {
	X, Y, Z float64
}

// NewVec3 creates a new Vec3
func NewVec3(x, y, z float64) Vec3 {
	return Vec3{X: x, Y: y, Z: z}
}

// Add returns the sum of two vectors
func (v Vec3) Add(other Vec3) Vec3 {
	return Vec3{v.X + other.X, v.Y + other.Y, v.Z + other.Z}
}

// Subtract returns the difference of two vectors
func (v Vec3) Subtract(other Vec3) Vec3 {
	return Vec3{v.X - other.X, v.Y - other.Y, v.Z - other.Z}
}

// Multiply returns the vector scaled by a scalar
func (v Vec3) Multiply(scalar float64) Vec3 {
	return Vec3{v.X * scalar, v.Y * scalar, v.Z * scalar}
}

// Length returns the magnitude of the vector
func (v Vec3) Length() float64 {
	return math.Sqrt(v.X*v.X + v.Y*v.Y + v.Z*v.Z)
}

// Dot returns the dot product of two vectors
func (v Vec3) Dot(other Vec3) float64 {
	return v.X*other.X + v.Y*other.Y + v.Z*other.Z
}

// MaxComponent returns the largest of the three components
func (v Vec3) MaxComponent() float64 {
	return max(v.X, v.Y, v.Z)
}

// AngleTo returns the angle in radians between two non-zero vectors
func (v Vec3) AngleTo(other Vec3) float64 {
	denom := v.Length() * other.Length()
	if denom == 0 {
		return 0
	}
	// Clamp guards acos against rounding just outside [-1, 1]
	return math.Acos(max(-1, min(1, v.Dot(other)/denom)))
}

// SphericalToCartesian converts (r, theta, phi) with theta measured from +Z into cartesian coordinates
func SphericalToCartesian(r, theta, phi float64) Vec3 {
	sinTheta := math.Sin(theta)
	return Vec3{
		X: r * sinTheta * math.Cos(phi),
		Y: r * sinTheta * math.Sin(phi),
		Z: r * math.Cos(theta),
	}
}
