package saliency

import "testing"

// fillRamp writes an increasing ramp for resize tests.
func fillRamp(h *Heatmap) {
	for y := 0; y < h.H; y++ {
		for x := 0; x < h.W; x++ {
			h.Set(y, x, float32(y*h.W+x)/float32(h.H*h.W))
		}
	}
}

func TestHeatmapResizeShape(t *testing.T) {
	hm := NewHeatmap(7, 7)
	fillRamp(hm)

	out := hm.Resize(224, 224)
	if out.H != 224 || out.W != 224 {
		t.Errorf("Expected 224x224, got %dx%d", out.H, out.W)
	}
}

func TestHeatmapResizeNoopSameSize(t *testing.T) {
	hm := NewHeatmap(16, 16)
	fillRamp(hm)

	out := hm.Resize(16, 16)
	for i := range hm.Data {
		if out.Data[i] != hm.Data[i] {
			t.Fatalf("Same-size resize changed pixel %d", i)
		}
	}
}

func TestHeatmapResizePreservesConstant(t *testing.T) {
	hm := NewHeatmap(7, 7)
	for i := range hm.Data {
		hm.Data[i] = 0.75
	}

	out := hm.Resize(100, 60)
	for i, v := range out.Data {
		if abs64(float64(v-0.75)) > 1e-6 {
			t.Fatalf("Pixel %d drifted from constant: %v", i, v)
		}
	}
}

func TestHeatmapResizeStaysInRange(t *testing.T) {
	hm := NewHeatmap(7, 7)
	fillRamp(hm)

	// Bilinear interpolation cannot overshoot the input range.
	for _, size := range [][2]int{{224, 224}, {3, 3}, {50, 13}} {
		out := hm.Resize(size[0], size[1])
		for i, v := range out.Data {
			if v < 0 || v > 1 {
				t.Fatalf("Resize to %v: pixel %d outside [0,1]: %v", size, i, v)
			}
		}
	}
}

func TestHeatmapMax(t *testing.T) {
	hm := NewHeatmap(3, 3)
	if hm.Max() != 0 {
		t.Errorf("Zero map max should be 0, got %v", hm.Max())
	}
	hm.Set(1, 2, 0.8)
	hm.Set(2, 0, 0.3)
	if hm.Max() != 0.8 {
		t.Errorf("Expected 0.8, got %v", hm.Max())
	}
}
