package saliency

// Heatmap is a scalar importance map over spatial locations, values in [0,1].
type Heatmap struct {
	H, W int
	Data []float32
}

// NewHeatmap allocates a zero-filled map.
func NewHeatmap(h, w int) *Heatmap {
	return &Heatmap{H: h, W: w, Data: make([]float32, h*w)}
}

func (h *Heatmap) At(y, x int) float32 {
	return h.Data[y*h.W+x]
}

func (h *Heatmap) Set(y, x int, v float32) {
	h.Data[y*h.W+x] = v
}

// Max returns the largest value. Zero for an empty map.
func (h *Heatmap) Max() float32 {
	if len(h.Data) == 0 {
		return 0
	}
	max := h.Data[0]
	for _, v := range h.Data[1:] {
		if v > max {
			max = v
		}
	}
	return max
}

// Resize upsamples or downsamples the map to width×height using bilinear
// interpolation. A map of the requested size is returned unchanged.
func (h *Heatmap) Resize(height, width int) *Heatmap {
	if h.H == height && h.W == width {
		return h
	}
	out := NewHeatmap(height, width)

	// Map output pixel centers back into source coordinates.
	scaleY := float64(h.H) / float64(height)
	scaleX := float64(h.W) / float64(width)

	for y := 0; y < height; y++ {
		srcY := (float64(y)+0.5)*scaleY - 0.5
		y0 := clampInt(int(srcY), 0, h.H-1)
		y1 := clampInt(y0+1, 0, h.H-1)
		ty := srcY - float64(y0)
		if ty < 0 {
			ty = 0
		}
		for x := 0; x < width; x++ {
			srcX := (float64(x)+0.5)*scaleX - 0.5
			x0 := clampInt(int(srcX), 0, h.W-1)
			x1 := clampInt(x0+1, 0, h.W-1)
			tx := srcX - float64(x0)
			if tx < 0 {
				tx = 0
			}

			top := lerp(float64(h.At(y0, x0)), float64(h.At(y0, x1)), tx)
			bottom := lerp(float64(h.At(y1, x0)), float64(h.At(y1, x1)), tx)
			out.Set(y, x, float32(lerp(top, bottom, ty)))
		}
	}
	return out
}

// lerp performs linear interpolation between a and b.
func lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
