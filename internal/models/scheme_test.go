package models

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"
)

// TestGradientTableValidate checks the scheme contract violations
func TestGradientTableValidate(t *testing.T) {
	valid := GradientTable{
		BValues:    []float64{0, 1000, 1000},
		Directions: []r3.Vec{{}, {X: 1}, {Y: 1}},
	}
	require.NoError(t, valid.Validate())
	assert.Equal(t, 3, valid.Len())

	tests := []struct {
		name  string
		table GradientTable
	}{
		{
			name: "length mismatch",
			table: GradientTable{
				BValues:    []float64{0, 1000},
				Directions: []r3.Vec{{}},
			},
		},
		{
			name: "negative b-value",
			table: GradientTable{
				BValues:    []float64{0, -5},
				Directions: []r3.Vec{{}, {X: 1}},
			},
		},
		{
			name: "NaN b-value",
			table: GradientTable{
				BValues:    []float64{math.NaN()},
				Directions: []r3.Vec{{}},
			},
		},
		{
			name: "infinite direction",
			table: GradientTable{
				BValues:    []float64{0, 1000},
				Directions: []r3.Vec{{}, {Z: math.Inf(1)}},
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.table.Validate()
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidArgument)
		})
	}
}

// TestEmptyGradientTable verifies that an empty scheme is valid
func TestEmptyGradientTable(t *testing.T) {
	var g GradientTable
	assert.NoError(t, g.Validate())
	assert.Zero(t, g.Len())
}

func TestNewSticks(t *testing.T) {
	sticks, err := NewSticks([][2]float64{{0, 0}, {90, 45}}, []float64{35, 20})
	require.NoError(t, err)
	assert.Equal(t, []Stick{
		{Polar: 0, Azimuth: 0, Fraction: 35},
		{Polar: 90, Azimuth: 45, Fraction: 20},
	}, sticks)

	_, err = NewSticks([][2]float64{{0, 0}}, []float64{35, 20})
	assert.ErrorIs(t, err, ErrInvalidArgument)

	sticks, err = NewSticks(nil, nil)
	require.NoError(t, err)
	assert.Empty(t, sticks)
}
