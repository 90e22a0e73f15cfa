// Package imageio handles the image boundary: decoding retinal photos,
// resizing them to the classifier's input resolution, and converting between
// image.Image and normalized tensors.
package imageio

import (
	"fmt"
	"image"
	_ "image/jpeg"
	"image/png"
	"os"

	"github.com/nfnt/resize"
	xdraw "golang.org/x/image/draw"

	"github.com/ivlev/retinareport/internal/tensor"
)

// Load decodes a JPEG or PNG file.
func Load(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", path, err)
	}
	return img, nil
}

// ToTensor resizes the image to height×width with Lanczos resampling and
// normalizes pixel values to [0,1] in H×W×C order.
func ToTensor(img image.Image, height, width int) *tensor.Tensor {
	resized := resize.Resize(uint(width), uint(height), img, resize.Lanczos3)

	t := tensor.New(height, width, 3)
	bounds := resized.Bounds()
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			r, g, b, _ := resized.At(bounds.Min.X+x, bounds.Min.Y+y).RGBA()
			t.Set(y, x, 0, float32(r)/65535.0)
			t.Set(y, x, 1, float32(g)/65535.0)
			t.Set(y, x, 2, float32(b)/65535.0)
		}
	}
	return t
}

// FromTensor renders a [0,1] RGB tensor back into an image.
func FromTensor(t *tensor.Tensor) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, t.W, t.H))
	for y := 0; y < t.H; y++ {
		for x := 0; x < t.W; x++ {
			i := img.PixOffset(x, y)
			img.Pix[i+0] = toByte(t.At(y, x, 0))
			img.Pix[i+1] = toByte(t.At(y, x, 1))
			img.Pix[i+2] = toByte(t.At(y, x, 2))
			img.Pix[i+3] = 0xff
		}
	}
	return img
}

// Scale resizes an image to the given width, preserving aspect ratio.
func Scale(img image.Image, width int) image.Image {
	bounds := img.Bounds()
	if bounds.Dx() == 0 || bounds.Dx() == width {
		return img
	}
	height := bounds.Dy() * width / bounds.Dx()
	if height < 1 {
		height = 1
	}
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, xdraw.Over, nil)
	return dst
}

// SavePNG writes an image as PNG, creating the file with 0644.
func SavePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()

	if err := png.Encode(f, img); err != nil {
		return fmt.Errorf("failed to encode PNG: %w", err)
	}
	return nil
}

func toByte(v float32) uint8 {
	if v <= 0 {
		return 0
	}
	if v >= 1 {
		return 255
	}
	return uint8(v*255 + 0.5)
}
