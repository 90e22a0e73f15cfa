// Package chart renders the per-class confidence bar chart embedded in
// patient reports.
package chart

import (
	"fmt"
	"image/color"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// Confidence writes a horizontal bar chart of class probabilities to a PNG
// file. The bar of the predicted class is highlighted.
func Confidence(probs []float32, classes []string, predicted int, path string) error {
	if len(probs) != len(classes) {
		return fmt.Errorf("chart: %d probabilities for %d classes", len(probs), len(classes))
	}
	if predicted < 0 || predicted >= len(probs) {
		return fmt.Errorf("chart: predicted class %d out of range", predicted)
	}

	p := plot.New()
	p.Title.Text = "How Sure is the Computer?"
	p.X.Label.Text = "Confidence (%)"
	p.X.Min = 0
	p.X.Max = 110

	values := make(plotter.Values, len(probs))
	highlight := make(plotter.Values, len(probs))
	for i, v := range probs {
		pct := float64(v) * 100
		values[i] = pct
		if i == predicted {
			highlight[i] = pct
		}
	}

	width := vg.Points(18)

	bars, err := plotter.NewBarChart(values, width)
	if err != nil {
		return fmt.Errorf("chart: %w", err)
	}
	bars.Horizontal = true
	bars.Color = color.RGBA{R: 0xad, G: 0xd8, B: 0xe6, A: 0xff}
	bars.LineStyle.Width = 0

	top, err := plotter.NewBarChart(highlight, width)
	if err != nil {
		return fmt.Errorf("chart: %w", err)
	}
	top.Horizontal = true
	top.Color = color.RGBA{G: 0x80, A: 0xff}
	top.LineStyle.Width = 0

	p.Add(bars, top)
	p.NominalY(classes...)

	if err := p.Save(6*vg.Inch, 4*vg.Inch, path); err != nil {
		return fmt.Errorf("chart: failed to save %s: %w", path, err)
	}
	return nil
}
