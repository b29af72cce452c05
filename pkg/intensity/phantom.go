package intensity

import (
	"fmt"
	"image"

	"gonum.org/v1/gonum/mat"

	"dwisim/internal/models"
)

// Region is a rectangular patch of constant intensity in a phantom.
type Region struct {
	// Rect is the half-open pixel rectangle; X indexes columns, Y rows
	Rect  image.Rectangle
	Value float64
}

// Phantom builds a size x size zero background and paints regions onto it
// in order, so later regions overwrite earlier ones.
func Phantom(size int, regions ...Region) (*mat.Dense, error) {
	if size <= 0 {
		return nil, fmt.Errorf("%w: phantom size must be positive, got %d", models.ErrInvalidArgument, size)
	}

	m := mat.NewDense(size, size, nil)
	bounds := image.Rect(0, 0, size, size)
	for _, reg := range regions {
		rect := reg.Rect.Intersect(bounds)
		for y := rect.Min.Y; y < rect.Max.Y; y++ {
			for x := rect.Min.X; x < rect.Max.X; x++ {
				m.Set(y, x, reg.Value)
			}
		}
	}
	return m, nil
}

// DefaultPhantom is a 128x128 slice with a 48x48 square of intensity 100
// around a 9x9 bright core of 255.
func DefaultPhantom() *mat.Dense {
	m, _ := Phantom(128,
		Region{Rect: image.Rect(40, 40, 88, 88), Value: 100},
		Region{Rect: image.Rect(60, 60, 69, 69), Value: 255},
	)
	return m
}
