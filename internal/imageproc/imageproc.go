// Package imageproc implements the canonical image transform shared by
// dataset building and prediction: decode, anti-aliased resize to the model
// input shape and normalization to the unit range.
package imageproc

import (
	"fmt"
	"image"
	_ "image/gif"  // register GIF decoder
	_ "image/jpeg" // register JPEG decoder
	_ "image/png"  // register PNG decoder
	"os"

	"github.com/nfnt/resize"

	"github.com/tmakinen/fruitnet-go/internal/errors"
)

// Tensor is a fixed-shape image tensor in CHW order with values in [0,1].
type Tensor struct {
	Data     []float64
	Width    int
	Height   int
	Channels int
}

// NewTensor allocates a zero tensor of the given shape.
func NewTensor(width, height, channels int) *Tensor {
	return &Tensor{
		Data:     make([]float64, width*height*channels),
		Width:    width,
		Height:   height,
		Channels: channels,
	}
}

// At returns the value at channel c, row y, column x.
func (t *Tensor) At(c, y, x int) float64 {
	return t.Data[c*t.Height*t.Width+y*t.Width+x]
}

// Set stores v at channel c, row y, column x.
func (t *Tensor) Set(c, y, x int, v float64) {
	t.Data[c*t.Height*t.Width+y*t.Width+x] = v
}

// Decode opens and decodes an image file.
func Decode(path string) (image.Image, error) {
	file, err := os.Open(path)
	if err != nil {
		category := errors.CategoryFileIO
		if os.IsNotExist(err) {
			category = errors.CategoryNotFound
		}
		return nil, errors.New(fmt.Errorf("opening image %s: %w", path, err)).
			Component("imageproc").
			Category(category).
			Context("path", path).
			Build()
	}
	defer file.Close()

	img, _, err := image.Decode(file)
	if err != nil {
		return nil, errors.New(fmt.Errorf("decoding image %s: %w", path, err)).
			Component("imageproc").
			Category(errors.CategoryImageDecode).
			Context("path", path).
			Build()
	}

	return img, nil
}

// Preprocess resizes img to width x height with an anti-aliased Lanczos filter
// and normalizes 8-bit channel values to [0,1]. The output shape is constant
// regardless of the input shape. This exact transform must be used for both
// dataset building and prediction; the model depends on the two paths being
// identical. Channels selects the leading RGB channels and must be at most 3,
// which configuration validation guarantees.
func Preprocess(img image.Image, width, height, channels int) *Tensor {
	resized := resize.Resize(uint(width), uint(height), img, resize.Lanczos3)

	t := NewTensor(width, height, channels)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			r, g, b, _ := resized.At(x, y).RGBA()
			// RGBA returns 16-bit values, scale down to 8-bit first
			channelValues := []float64{
				float64(r >> 8),
				float64(g >> 8),
				float64(b >> 8),
			}
			for c := 0; c < channels; c++ {
				t.Set(c, y, x, channelValues[c]/255.0)
			}
		}
	}

	return t
}

// Load decodes and preprocesses an image file in one step.
func Load(path string, width, height, channels int) (*Tensor, error) {
	img, err := Decode(path)
	if err != nil {
		return nil, err
	}
	return Preprocess(img, width, height, channels), nil
}
