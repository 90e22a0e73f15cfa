package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/ivlev/retinareport/internal/classifier"
	"github.com/ivlev/retinareport/internal/classifier/native"
	"github.com/ivlev/retinareport/internal/classifier/onnx"
	"github.com/ivlev/retinareport/internal/config"
	"github.com/ivlev/retinareport/internal/engine"
	"github.com/ivlev/retinareport/internal/patients"
	"github.com/ivlev/retinareport/internal/report"
	"github.com/ivlev/retinareport/internal/system"
)

func main() {
	system.InitResourceLimits()

	for _, d := range []string{"input/images", "output/reports"} {
		os.MkdirAll(d, 0755)
	}

	configPtr := flag.String("config", "", "Path to YAML config (optional)")
	imagePtr := flag.String("image", "", "Path to retinal image (default: latest file in input/images/)")
	patientPtr := flag.String("patient", "", "Patient ID (required)")
	agePtr := flag.Int("age", 0, "Patient age (optional)")
	genderPtr := flag.String("gender", "", "Patient gender (optional)")
	modelPtr := flag.String("model", "", "Path to model bundle (overrides config)")
	backendPtr := flag.String("backend", "", "Classifier backend: native, onnx (overrides config)")
	alphaPtr := flag.Float64("alpha", -1, "Heatmap blend weight in [0,1] (overrides config)")
	colormapPtr := flag.String("colormap", "", "Heatmap colormap: jet, hot, grayscale (overrides config)")
	targetPtr := flag.Int("target-class", -1, "Grad-CAM target class (default: predicted class)")
	pdfPtr := flag.Bool("pdf", false, "Also print the report to PDF")
	outputPtr := flag.String("output", "", "Output directory (overrides config)")

	flag.Parse()

	if *patientPtr == "" {
		log.Fatalf("[-] Error: -patient is required")
	}

	cfg, err := config.Load(*configPtr)
	if err != nil {
		log.Fatalf("[-] Config error: %v", err)
	}
	if *modelPtr != "" {
		cfg.ModelPath = *modelPtr
	}
	if *backendPtr != "" {
		cfg.Backend = *backendPtr
	}
	if *alphaPtr >= 0 {
		cfg.Alpha = *alphaPtr
	}
	if *colormapPtr != "" {
		cfg.Colormap = *colormapPtr
	}
	if *outputPtr != "" {
		cfg.OutputDir = *outputPtr
	}
	if *pdfPtr {
		cfg.PDF = true
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("[-] Config error: %v", err)
	}

	imagePath := *imagePtr
	if imagePath == "" {
		latest, err := system.FindLatestImage("input/images")
		if err != nil {
			log.Fatalf("[-] Error: %v. Put a retinal photo in input/images/", err)
		}
		imagePath = latest
		fmt.Printf("[*] Selected image: %s\n", imagePath)
	}

	clf, closeFn, err := loadClassifier(cfg)
	if err != nil {
		log.Fatalf("[-] Failed to load classifier: %v", err)
	}
	defer closeFn()
	fmt.Printf("[*] Model loaded: %s (%s backend, classes: %v)\n", cfg.ModelPath, cfg.Backend, clf.Classes())

	patient := patients.Patient{
		ID:        *patientPtr,
		Age:       *agePtr,
		Gender:    *genderPtr,
		Diagnosis: -1,
	}

	var renderer report.Renderer
	if cfg.PDF {
		renderer = &report.ChromeRenderer{Bin: cfg.ChromeBin}
	}

	project := engine.NewReportProject(cfg, clf, renderer)
	if *targetPtr >= 0 {
		project.TargetClass = *targetPtr
		fmt.Printf("[*] Grad-CAM target class forced to %d\n", *targetPtr)
	}

	res, err := project.Run(patient, imagePath)
	if err != nil {
		log.Fatalf("[-] Report failed: %v", err)
	}

	fmt.Printf("[+++] Done! Report: %s\n", res.HTMLPath)
	if res.PDFPath != "" {
		fmt.Printf("[+++] PDF: %s\n", res.PDFPath)
	}
}

func loadClassifier(cfg *config.Config) (classifier.Classifier, func(), error) {
	switch cfg.Backend {
	case "onnx":
		meta := cfg.OnnxMetadataPath
		if meta == "" {
			meta = cfg.ModelPath + ".json"
		}
		m, err := onnx.Load(cfg.ModelPath, meta)
		if err != nil {
			return nil, nil, err
		}
		return m, m.Close, nil
	default:
		m, err := native.Load(cfg.ModelPath)
		if err != nil {
			return nil, nil, err
		}
		return m, func() {}, nil
	}
}
