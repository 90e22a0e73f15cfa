// Package analyzer extracts focus regions from saliency heatmaps: the
// connected areas of high importance that the report describes to the
// patient ("the computer looked most closely here").
package analyzer

import (
	"image"
	"sort"

	"github.com/ivlev/retinareport/internal/saliency"
)

// Region is one connected area of high heatmap activation.
type Region struct {
	Rect image.Rectangle // bounding box in heatmap coordinates
	Mean float64         // mean activation inside the bounding box
	Peak float32         // maximum activation inside the region
	Area int             // number of pixels above threshold
}

// RegionDetector finds connected components above an activation threshold.
type RegionDetector struct {
	Threshold float32 // activation cutoff in [0,1]
	MinArea   int     // minimum component size in pixels
}

// NewRegionDetector creates a detector with defaults suited to upsampled
// Grad-CAM maps.
func NewRegionDetector() *RegionDetector {
	return &RegionDetector{
		Threshold: 0.6,
		MinArea:   16,
	}
}

// Detect finds focus regions, strongest first.
func (d *RegionDetector) Detect(hm *saliency.Heatmap) []Region {
	visited := make([]bool, hm.H*hm.W)

	var regions []Region
	for y := 0; y < hm.H; y++ {
		for x := 0; x < hm.W; x++ {
			if visited[y*hm.W+x] || hm.At(y, x) < d.Threshold {
				continue
			}
			region := d.floodFill(hm, visited, x, y)
			if region.Area >= d.MinArea {
				regions = append(regions, region)
			}
		}
	}

	// Rank by mean activation so the report lists the hottest area first.
	sort.Slice(regions, func(i, j int) bool {
		return regions[i].Mean > regions[j].Mean
	})
	return regions
}

// floodFill walks a connected component and returns its bounding region.
func (d *RegionDetector) floodFill(hm *saliency.Heatmap, visited []bool, startX, startY int) Region {
	minX, minY := startX, startY
	maxX, maxY := startX, startY
	var peak float32
	area := 0

	stack := []image.Point{{X: startX, Y: startY}}
	for len(stack) > 0 {
		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		x, y := p.X, p.Y
		if x < 0 || x >= hm.W || y < 0 || y >= hm.H {
			continue
		}
		if visited[y*hm.W+x] || hm.At(y, x) < d.Threshold {
			continue
		}
		visited[y*hm.W+x] = true
		area++

		if v := hm.At(y, x); v > peak {
			peak = v
		}
		if x < minX {
			minX = x
		}
		if x > maxX {
			maxX = x
		}
		if y < minY {
			minY = y
		}
		if y > maxY {
			maxY = y
		}

		stack = append(stack,
			image.Point{X: x + 1, Y: y},
			image.Point{X: x - 1, Y: y},
			image.Point{X: x, Y: y + 1},
			image.Point{X: x, Y: y - 1},
		)
	}

	rect := image.Rect(minX, minY, maxX+1, maxY+1)
	var sum float64
	for y := rect.Min.Y; y < rect.Max.Y; y++ {
		for x := rect.Min.X; x < rect.Max.X; x++ {
			sum += float64(hm.At(y, x))
		}
	}
	mean := 0.0
	if n := rect.Dx() * rect.Dy(); n > 0 {
		mean = sum / float64(n)
	}

	return Region{Rect: rect, Mean: mean, Peak: peak, Area: area}
}

// Quadrant names the image quadrant containing the region's center, for the
// plain-language report text.
func (r Region) Quadrant(w, h int) string {
	cx := (r.Rect.Min.X + r.Rect.Max.X) / 2
	cy := (r.Rect.Min.Y + r.Rect.Max.Y) / 2

	vert := "upper"
	if cy >= h/2 {
		vert = "lower"
	}
	horiz := "left"
	if cx >= w/2 {
		horiz = "right"
	}
	// Center third in both axes reads better as just "center".
	if cx > w/3 && cx < 2*w/3 && cy > h/3 && cy < 2*h/3 {
		return "center"
	}
	return vert + " " + horiz
}
