package saliency

import (
	"fmt"

	"github.com/ivlev/retinareport/internal/tensor"
)

// DefaultAlpha is the blending weight used when the caller has no opinion.
const DefaultAlpha = 0.4

// Overlay composites a false-color rendering of the heatmap onto the
// original image: output = colormap*alpha + image*(1-alpha). The heatmap is
// first resized to the image's pixel dimensions. Images with values above 1
// are treated as 0-255 and normalized. Pure function of its inputs.
func Overlay(img *tensor.Tensor, hm *Heatmap, alpha float64, cm Colormap) (*tensor.Tensor, error) {
	if img.C != 3 {
		return nil, fmt.Errorf("overlay: image must have 3 channels, got %d", img.C)
	}
	if alpha < 0 || alpha > 1 {
		return nil, fmt.Errorf("overlay: alpha %.3f outside [0,1]", alpha)
	}
	if cm == nil {
		cm = Jet
	}

	src := img
	if img.Max() > 1 {
		src = img.Clone()
		for i := range src.Data {
			src.Data[i] /= 255
		}
	}

	resized := hm.Resize(src.H, src.W)

	a := float32(alpha)
	out := tensor.New(src.H, src.W, 3)
	for y := 0; y < src.H; y++ {
		for x := 0; x < src.W; x++ {
			r, g, b := cm(resized.At(y, x))
			out.Set(y, x, 0, r*a+src.At(y, x, 0)*(1-a))
			out.Set(y, x, 1, g*a+src.At(y, x, 1)*(1-a))
			out.Set(y, x, 2, b*a+src.At(y, x, 2)*(1-a))
		}
	}
	return out, nil
}
