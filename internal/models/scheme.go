package models

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

var (
	// ErrInvalidArgument reports inputs that violate a caller contract
	// (mismatched lengths, negative b-values, empty arrays).
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrDomain reports inputs that are well formed but make the model
	// undefined or non-physical (zero SNR, negative ball fraction).
	ErrDomain = errors.New("domain error")
)

// GradientTable is a diffusion gradient sampling scheme.
type GradientTable struct {
	// BValues holds the diffusion weighting of each acquisition in s/mm^2.
	// Index 0 is conventionally the unweighted (b=0) acquisition.
	BValues []float64

	// Directions holds the gradient direction of each acquisition,
	// index-aligned with BValues.
	Directions []r3.Vec
}

// Len returns the number of acquisitions in the scheme.
func (g GradientTable) Len() int {
	return len(g.BValues)
}

// Validate checks that the scheme is index-aligned and numerically sane.
func (g GradientTable) Validate() error {
	if len(g.BValues) != len(g.Directions) {
		return fmt.Errorf("%w: %d b-values but %d gradient directions",
			ErrInvalidArgument, len(g.BValues), len(g.Directions))
	}

	for i, b := range g.BValues {
		if math.IsNaN(b) || math.IsInf(b, 0) {
			return fmt.Errorf("%w: b-value %d is not finite", ErrInvalidArgument, i)
		}
		if b < 0 {
			return fmt.Errorf("%w: b-value %d is negative (%g)", ErrInvalidArgument, i, b)
		}
	}

	for i, d := range g.Directions {
		if !isFiniteVec(d) {
			return fmt.Errorf("%w: gradient direction %d is not finite", ErrInvalidArgument, i)
		}
	}

	return nil
}

// Stick is a single anisotropic compartment of the Sticks & Ball model.
type Stick struct {
	// Polar is the angle from the z axis in degrees
	Polar float64 `yaml:"polar"`

	// Azimuth is the angle in the x-y plane from the x axis in degrees
	Azimuth float64 `yaml:"azimuth"`

	// Fraction is the volume fraction of the stick in percent
	Fraction float64 `yaml:"fraction"`
}

func isFiniteVec(v r3.Vec) bool {
	for _, c := range []float64{v.X, v.Y, v.Z} {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return false
		}
	}
	return true
}

// NewSticks pairs (polar, azimuth) angles in degrees with percentage
// fractions. Both lists must have the same length.
func NewSticks(angles [][2]float64, fractions []float64) ([]Stick, error) {
	if len(angles) != len(fractions) {
		return nil, fmt.Errorf("%w: %d stick angles but %d fractions",
			ErrInvalidArgument, len(angles), len(fractions))
	}
	sticks := make([]Stick, len(angles))
	for i, a := range angles {
		sticks[i] = Stick{Polar: a[0], Azimuth: a[1], Fraction: fractions[i]}
	}
	return sticks, nil
}
