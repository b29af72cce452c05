package intensity

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"dwisim/internal/models"
)

// UpperBound estimates the upper intensity bound for contrast
// normalisation of a 2D slice.
//
// The data is binned into DefaultBins equal-width bins. Every bin whose
// count exceeds rate times the count of the most populated bin is kept, and
// the upper edge of the highest-intensity kept bin is returned. Sparse
// bright outliers are thereby clipped. With rate >= 1 no bin qualifies and
// the data maximum is returned. The result always lies in [min, max].
func UpperBound(data mat.Matrix, rate float64) (float64, error) {
	if math.IsNaN(rate) {
		return 0, fmt.Errorf("%w: rate is NaN", models.ErrInvalidArgument)
	}

	h, err := NewHistogram(data, DefaultBins)
	if err != nil {
		return 0, err
	}

	high := h.Max
	top := -1
	for _, b := range h.Dominant(rate) {
		if b.Index > top {
			top = b.Index
		}
	}
	if top >= 0 {
		high = h.Bins[top].Upper
	}

	// Constant images get a widened range whose edges overshoot the data.
	return math.Max(h.Min, math.Min(high, h.Max)), nil
}

// Bounds returns the normalisation window of data: the data minimum and
// the UpperBound for rate.
func Bounds(data mat.Matrix, rate float64) (low, high float64, err error) {
	high, err = UpperBound(data, rate)
	if err != nil {
		return 0, 0, err
	}
	r, c := data.Dims()
	low = data.At(0, 0)
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			low = math.Min(low, data.At(i, j))
		}
	}
	return low, high, nil
}

// Rescale maps [low, high] linearly onto [outLow, outHigh]. Values below low
// map to outLow and values above high map to outHigh.
func Rescale(data mat.Matrix, low, high, outLow, outHigh float64) (*mat.Dense, error) {
	for _, v := range []float64{low, high, outLow, outHigh} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, fmt.Errorf("%w: rescale bounds must be finite", models.ErrInvalidArgument)
		}
	}
	if high <= low {
		return nil, fmt.Errorf("%w: empty input window [%g, %g]", models.ErrInvalidArgument, low, high)
	}
	if data == nil {
		return nil, fmt.Errorf("%w: nil intensity array", models.ErrInvalidArgument)
	}
	r, c := data.Dims()
	if r == 0 || c == 0 {
		return nil, fmt.Errorf("%w: empty intensity array", models.ErrInvalidArgument)
	}

	scale := (outHigh - outLow) / (high - low)
	out := mat.NewDense(r, c, nil)
	out.Apply(func(i, j int, v float64) float64 {
		switch {
		case v <= low:
			return outLow
		case v >= high:
			return outHigh
		default:
			return outLow + (v-low)*scale
		}
	}, data)
	return out, nil
}
