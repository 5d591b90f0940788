package inference

import (
	"errors"
	"image"

	"github.com/nfnt/resize"
)

const channels = 3

// Preprocess resizes img to a size×size square and packs it as planar RGB
// (CHW) float32 values in [0, 1].
func Preprocess(img image.Image, size int) ([]float32, error) {
	if size <= 0 {
		return nil, errors.New("preprocess: image size must be positive")
	}
	if img == nil || img.Bounds().Empty() {
		return nil, errors.New("preprocess: empty image")
	}

	resized := resize.Resize(uint(size), uint(size), img, resize.Lanczos3)

	bounds := resized.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	plane := width * height
	input := make([]float32, channels*plane)

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			r, g, b, _ := resized.At(bounds.Min.X+x, bounds.Min.Y+y).RGBA()

			i := y*width + x
			input[i] = float32(r) / 65535.0
			input[plane+i] = float32(g) / 65535.0
			input[2*plane+i] = float32(b) / 65535.0
		}
	}
	return input, nil
}
