package saliency

import "fmt"

// Colormap maps a normalized scalar in [0,1] to an RGB triple in [0,1].
type Colormap func(v float32) (r, g, b float32)

// NewColormap resolves a colormap by name. An empty name selects jet.
func NewColormap(name string) (Colormap, error) {
	switch name {
	case "jet", "":
		return Jet, nil
	case "hot":
		return Hot, nil
	case "grayscale":
		return Grayscale, nil
	default:
		return nil, fmt.Errorf("unknown colormap: %s", name)
	}
}

// Jet is the classic blue→green→yellow→red spectrum used for saliency
// overlays: cold colors for low importance, warm for high.
func Jet(v float32) (float32, float32, float32) {
	v = clampf(v, 0, 1)
	r := clampf(1.5-absf(4*v-3), 0, 1)
	g := clampf(1.5-absf(4*v-2), 0, 1)
	b := clampf(1.5-absf(4*v-1), 0, 1)
	return r, g, b
}

// Hot ramps black→red→yellow→white.
func Hot(v float32) (float32, float32, float32) {
	v = clampf(v, 0, 1)
	r := clampf(3*v, 0, 1)
	g := clampf(3*v-1, 0, 1)
	b := clampf(3*v-2, 0, 1)
	return r, g, b
}

// Grayscale maps the scalar straight to luminance.
func Grayscale(v float32) (float32, float32, float32) {
	v = clampf(v, 0, 1)
	return v, v, v
}

func clampf(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func absf(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}
