package visualization

import (
	"fmt"
	"image"
	"image/color"
	_ "image/jpeg"
	_ "image/png"
	"os"

	"gonum.org/v1/gonum/mat"
)

// LoadSlice decodes a PNG or JPEG slice into a matrix of 8-bit luminance
// values (0-255), one row per image row.
func LoadSlice(path string) (*mat.Dense, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	img, _, err := image.Decode(file)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", path, err)
	}

	return ImageToMatrix(img)
}

// ImageToMatrix converts an image to its luminance matrix
func ImageToMatrix(img image.Image) (*mat.Dense, error) {
	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	if width == 0 || height == 0 {
		return nil, fmt.Errorf("image has no pixels")
	}

	m := mat.NewDense(height, width, nil)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			g := color.GrayModel.Convert(img.At(bounds.Min.X+x, bounds.Min.Y+y)).(color.Gray)
			m.Set(y, x, float64(g.Y))
		}
	}
	return m, nil
}
