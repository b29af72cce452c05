// Package visualization renders 2D intensity arrays as grayscale images and
// loads slice images back into intensity arrays.
package visualization

import (
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"math"
	"os"
	"path/filepath"
	"strings"

	"gonum.org/v1/gonum/mat"
)

// Viewer renders a single MRI slice held as a row-major intensity matrix.
// Row i of the matrix becomes image row y=i.
type Viewer struct {
	// data holds the slice intensities
	data mat.Matrix

	// dimensions of the slice
	rows int
	cols int
}

// NewViewer creates a viewer for the given slice
func NewViewer(data mat.Matrix) *Viewer {
	rows, cols := data.Dims()
	return &Viewer{
		data: data,
		rows: rows,
		cols: cols,
	}
}

// Render maps the window [low, high] onto the full 8-bit gray range.
// Intensities outside the window are clipped to black or white.
func (v *Viewer) Render(low, high float64) (*image.Gray, error) {
	if math.IsNaN(low) || math.IsNaN(high) || high < low {
		return nil, fmt.Errorf("invalid display window [%g, %g]", low, high)
	}

	img := image.NewGray(image.Rect(0, 0, v.cols, v.rows))
	span := high - low
	for y := 0; y < v.rows; y++ {
		for x := 0; x < v.cols; x++ {
			var value float64
			if span > 0 {
				value = (v.data.At(y, x) - low) / span * 255
			}
			img.SetGray(x, y, color.Gray{Y: uint8(math.Round(math.Max(0, math.Min(255, value))))})
		}
	}

	return img, nil
}

// RenderAuto renders the slice with the window spanning its own minimum
// and maximum.
func (v *Viewer) RenderAuto() (*image.Gray, error) {
	if v.rows == 0 || v.cols == 0 {
		return nil, fmt.Errorf("cannot render an empty slice")
	}
	low, high := math.Inf(1), math.Inf(-1)
	for y := 0; y < v.rows; y++ {
		for x := 0; x < v.cols; x++ {
			val := v.data.At(y, x)
			low = math.Min(low, val)
			high = math.Max(high, val)
		}
	}
	return v.Render(low, high)
}

// SaveSlice saves a rendered slice as PNG or JPEG depending on the file
// extension, creating the parent directory if needed.
func SaveSlice(img image.Image, filename string) error {
	var encode func(f *os.File) error
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".png":
		encode = func(f *os.File) error { return png.Encode(f, img) }
	case ".jpg", ".jpeg":
		encode = func(f *os.File) error { return jpeg.Encode(f, img, &jpeg.Options{Quality: 90}) }
	default:
		return fmt.Errorf("unsupported image format: %s", filename)
	}

	if err := os.MkdirAll(filepath.Dir(filename), 0755); err != nil {
		return err
	}

	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer file.Close()

	return encode(file)
}
