// Package intensity estimates contrast windows for MRI slice images and
// rescales intensities into a display range.
package intensity

import (
	"cmp"
	"fmt"
	"math"
	"sort"

	"golang.org/x/exp/slices"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"dwisim/internal/models"
)

// DefaultBins is the number of histogram bins used by UpperBound.
const DefaultBins = 10

// Bin is one equal-width histogram bin. Bins are half-open [Lower, Upper)
// except the last one, which also contains Upper.
type Bin struct {
	Count int
	Lower float64
	Upper float64
}

// Histogram is an equal-width intensity histogram of a 2D array.
type Histogram struct {
	Bins []Bin

	// Min and Max are the extreme values of the data, which may differ
	// from the outer bin edges when all values are equal.
	Min float64
	Max float64
}

// RankedBin is a bin together with its position in the histogram.
type RankedBin struct {
	Index int
	Bin
}

// NewHistogram computes an nbins histogram of data over [min, max]. When
// every value is equal the range is widened to [min-0.5, max+0.5].
func NewHistogram(data mat.Matrix, nbins int) (*Histogram, error) {
	if nbins < 1 {
		return nil, fmt.Errorf("%w: need at least one bin, got %d", models.ErrInvalidArgument, nbins)
	}

	values, err := flatten(data)
	if err != nil {
		return nil, err
	}
	sort.Float64s(values)

	minV, maxV := values[0], values[len(values)-1]
	lo, hi := minV, maxV
	if lo == hi {
		lo -= 0.5
		hi += 0.5
	}

	edges := floats.Span(make([]float64, nbins+1), lo, hi)
	edges[nbins] = hi

	// stat.Histogram treats the last divider as exclusive; nudge it so the
	// maximum lands in the last bin.
	dividers := make([]float64, len(edges))
	copy(dividers, edges)
	dividers[nbins] = math.Nextafter(hi, math.Inf(1))

	counts := stat.Histogram(nil, dividers, values, nil)

	bins := make([]Bin, nbins)
	for i := range bins {
		bins[i] = Bin{
			Count: int(counts[i]),
			Lower: edges[i],
			Upper: edges[i+1],
		}
	}

	return &Histogram{Bins: bins, Min: minV, Max: maxV}, nil
}

// Ranked returns the bins ordered by decreasing count. Bins with equal
// counts keep their histogram order.
func (h *Histogram) Ranked() []RankedBin {
	ranked := make([]RankedBin, len(h.Bins))
	for i, b := range h.Bins {
		ranked[i] = RankedBin{Index: i, Bin: b}
	}
	slices.SortStableFunc(ranked, func(a, b RankedBin) int {
		return cmp.Compare(b.Count, a.Count)
	})
	return ranked
}

// Dominant returns the bins whose count relative to the most populated bin
// is strictly greater than rate, most populated first.
func (h *Histogram) Dominant(rate float64) []RankedBin {
	ranked := h.Ranked()
	if len(ranked) == 0 || ranked[0].Count == 0 {
		return nil
	}

	peak := float64(ranked[0].Count)
	n := 0
	for _, r := range ranked {
		if float64(r.Count)/peak > rate {
			n++
		}
	}
	return ranked[:n]
}

// flatten copies the elements of data in row-major order, rejecting empty
// and non-finite input.
func flatten(data mat.Matrix) ([]float64, error) {
	if data == nil {
		return nil, fmt.Errorf("%w: nil intensity array", models.ErrInvalidArgument)
	}
	r, c := data.Dims()
	if r == 0 || c == 0 {
		return nil, fmt.Errorf("%w: empty intensity array", models.ErrInvalidArgument)
	}

	values := make([]float64, 0, r*c)
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			v := data.At(i, j)
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return nil, fmt.Errorf("%w: non-finite intensity at (%d, %d)", models.ErrInvalidArgument, i, j)
			}
			values = append(values, v)
		}
	}
	return values, nil
}
