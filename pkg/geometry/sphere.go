// Package geometry converts between spherical and cartesian coordinates
// using the physics convention: theta is the polar angle measured from the
// +z axis and phi is the azimuth in the x-y plane measured from +x.
package geometry

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Radians converts an angle in degrees to radians.
func Radians(deg float64) float64 {
	return deg * math.Pi / 180
}

// Degrees converts an angle in radians to degrees.
func Degrees(rad float64) float64 {
	return rad * 180 / math.Pi
}

// SphereToCart returns the cartesian vector for radius r, polar angle theta
// and azimuth phi (radians).
func SphereToCart(r, theta, phi float64) r3.Vec {
	sinTheta, cosTheta := math.Sincos(theta)
	sinPhi, cosPhi := math.Sincos(phi)
	return r3.Vec{
		X: r * sinTheta * cosPhi,
		Y: r * sinTheta * sinPhi,
		Z: r * cosTheta,
	}
}

// CartToSphere is the inverse of SphereToCart. The zero vector maps to
// (0, 0, 0); phi is in (-pi, pi].
func CartToSphere(v r3.Vec) (r, theta, phi float64) {
	r = r3.Norm(v)
	if r == 0 {
		return 0, 0, 0
	}
	// Clamp against rounding pushing |z/r| above 1.
	cosTheta := math.Max(-1, math.Min(1, v.Z/r))
	return r, math.Acos(cosTheta), math.Atan2(v.Y, v.X)
}

// UnitFromDegrees returns the unit vector for a (polar, azimuth) pair
// given in degrees.
func UnitFromDegrees(polar, azimuth float64) r3.Vec {
	return SphereToCart(1, Radians(polar), Radians(azimuth))
}
