// Package engine wires the full report pipeline: classify one retinal
// photo, explain the prediction with Grad-CAM, and render the patient
// report.
package engine

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ivlev/retinareport/internal/analyzer"
	"github.com/ivlev/retinareport/internal/chart"
	"github.com/ivlev/retinareport/internal/classifier"
	"github.com/ivlev/retinareport/internal/config"
	"github.com/ivlev/retinareport/internal/imageio"
	"github.com/ivlev/retinareport/internal/patients"
	"github.com/ivlev/retinareport/internal/report"
	"github.com/ivlev/retinareport/internal/saliency"
	"github.com/ivlev/retinareport/internal/tensor"
)

// ReportProject generates screening reports with a fixed classifier and
// configuration. The classifier's weights are read-only during inference,
// but the native backend caches activations per pass, so batch runs give
// each worker its own classifier via the Factory.
type ReportProject struct {
	Config   *config.Config
	Clf      classifier.Classifier
	Renderer report.Renderer
	// Factory builds an independent classifier instance per batch worker.
	// Optional; when nil, batch runs share Clf and are serialized.
	Factory func() (classifier.Classifier, error)
	// TargetClass forces the Grad-CAM target. Defaults to the predicted
	// class.
	TargetClass int
}

// NewReportProject assembles a project.
func NewReportProject(cfg *config.Config, clf classifier.Classifier, renderer report.Renderer) *ReportProject {
	return &ReportProject{
		Config:      cfg,
		Clf:         clf,
		Renderer:    renderer,
		TargetClass: saliency.UsePredictedClass,
	}
}

// Result summarizes one generated report.
type Result struct {
	Patient    patients.Patient
	Prediction *classifier.Prediction
	OutputDir  string
	HTMLPath   string
	PDFPath    string
}

// Run generates the complete report for one patient into
// <OutputDir>/<patient id>/.
func (p *ReportProject) Run(patient patients.Patient, imagePath string) (*Result, error) {
	return p.runWith(p.Clf, patient, imagePath)
}

func (p *ReportProject) runWith(clf classifier.Classifier, patient patients.Patient, imagePath string) (*Result, error) {
	start := time.Now()

	outDir := filepath.Join(p.Config.OutputDir, patient.ID)
	if err := os.MkdirAll(outDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", outDir, err)
	}

	img, err := imageio.Load(imagePath)
	if err != nil {
		return nil, err
	}

	h, w := clf.InputSize()
	input := imageio.ToTensor(img, h, w)

	pred, err := classifier.Predict(clf, input)
	if err != nil {
		return nil, fmt.Errorf("prediction failed for %s: %w", patient.ID, err)
	}
	fmt.Printf("[*] %s: %s (%.1f%% confidence)\n", patient.ID, pred.Label, pred.Confidence*100)

	// Report images are rendered at display resolution.
	size := p.Config.DisplaySize
	display := imageio.ToTensor(img, size, size)
	if err := imageio.SavePNG(filepath.Join(outDir, "original.png"), imageio.FromTensor(display)); err != nil {
		return nil, err
	}

	target := p.TargetClass
	if target == saliency.UsePredictedClass {
		target = pred.Class
	}
	focusAreas, hasOverlay, err := p.explain(clf, input, display, target, outDir)
	if err != nil {
		return nil, err
	}

	if err := chart.Confidence(pred.Probabilities, clf.Classes(), pred.Class, filepath.Join(outDir, "confidence.png")); err != nil {
		return nil, err
	}

	data := report.Build(patient, pred, focusAreas, time.Now())
	if !hasOverlay {
		data.OverlayPath = ""
	}
	data.QRPath = "qr.png"
	if err := report.WriteQR(data.ReportID, filepath.Join(outDir, "qr.png")); err != nil {
		return nil, err
	}

	htmlPath := filepath.Join(outDir, "report.html")
	if err := report.WriteHTML(data, p.Config.TemplatePath, htmlPath); err != nil {
		return nil, err
	}

	res := &Result{
		Patient:    patient,
		Prediction: pred,
		OutputDir:  outDir,
		HTMLPath:   htmlPath,
	}

	if p.Config.PDF {
		if p.Renderer == nil {
			return nil, errors.New("PDF requested but no renderer configured")
		}
		pdfPath := filepath.Join(outDir, "report.pdf")
		if err := p.Renderer.RenderPDF(htmlPath, pdfPath); err != nil {
			return nil, err
		}
		res.PDFPath = pdfPath
		if err := report.Thumbnail(pdfPath, filepath.Join(outDir, "thumbnail.png"), p.Config.ThumbnailWidth); err != nil {
			return nil, err
		}
	}

	fmt.Printf("[+] Report for %s written to %s (%.2fs)\n", patient.ID, outDir, time.Since(start).Seconds())
	return res, nil
}

// explain computes the Grad-CAM overlay and names the focus areas. A
// classifier without gradient capability produces a report without the
// overlay section, matching how screening stations run forward-only models.
func (p *ReportProject) explain(clf classifier.Classifier, input, display *tensor.Tensor, class int, outDir string) ([]string, bool, error) {
	grad, ok := clf.(classifier.GradClassifier)
	if !ok {
		log.Printf("[!] Backend exposes no feature gradients, skipping Grad-CAM")
		return nil, false, nil
	}

	hm, err := saliency.ComputeHeatmap(grad, input, class)
	if err != nil {
		return nil, false, fmt.Errorf("Grad-CAM failed: %w", err)
	}

	cm, err := saliency.NewColormap(p.Config.Colormap)
	if err != nil {
		return nil, false, err
	}
	overlay, err := saliency.Overlay(display, hm, p.Config.Alpha, cm)
	if err != nil {
		return nil, false, err
	}
	if err := imageio.SavePNG(filepath.Join(outDir, "overlay.png"), imageio.FromTensor(overlay)); err != nil {
		return nil, false, err
	}

	detector := analyzer.NewRegionDetector()
	detector.Threshold = float32(p.Config.RegionThreshold)
	resized := hm.Resize(display.H, display.W)

	var areas []string
	seen := map[string]bool{}
	for _, region := range detector.Detect(resized) {
		name := region.Quadrant(display.W, display.H)
		if !seen[name] {
			seen[name] = true
			areas = append(areas, name)
		}
	}
	return areas, true, nil
}

// RunBatch regenerates reports for every registry patient whose image
// exists in imageDir as <id>.png. Individual failures are logged and
// counted without aborting the batch. Returns generated and failed counts.
func (p *ReportProject) RunBatch(reg *patients.Registry, imageDir string) (int, int, error) {
	var generated, failed int64

	g := new(errgroup.Group)
	// The native backend caches activations per pass, so without a Factory
	// the shared classifier must not run concurrently.
	limit := p.Config.Workers
	if p.Factory == nil {
		limit = 1
	}
	g.SetLimit(limit)

	for _, patient := range reg.All() {
		g.Go(func() error {
			clf := p.Clf
			if p.Factory != nil {
				fresh, err := p.Factory()
				if err != nil {
					return err
				}
				clf = fresh
			}

			imagePath := filepath.Join(imageDir, patient.ID+".png")
			if _, err := os.Stat(imagePath); err != nil {
				log.Printf("[!] No image for %s, skipping", patient.ID)
				atomic.AddInt64(&failed, 1)
				return nil
			}

			if _, err := p.runWith(clf, patient, imagePath); err != nil {
				log.Printf("[!] Report for %s failed: %v", patient.ID, err)
				atomic.AddInt64(&failed, 1)
				return nil
			}
			atomic.AddInt64(&generated, 1)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return int(generated), int(failed), err
	}
	return int(generated), int(failed), nil
}
