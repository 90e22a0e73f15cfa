// Command regenerate rebuilds every patient report from a CSV registry,
// for example after a model or template update.
package main

import (
	"flag"
	"fmt"
	"log"
	"runtime"
	"time"

	"github.com/ivlev/retinareport/internal/classifier"
	"github.com/ivlev/retinareport/internal/classifier/native"
	"github.com/ivlev/retinareport/internal/config"
	"github.com/ivlev/retinareport/internal/engine"
	"github.com/ivlev/retinareport/internal/patients"
	"github.com/ivlev/retinareport/internal/report"
	"github.com/ivlev/retinareport/internal/system"
)

func main() {
	system.InitResourceLimits()

	configPtr := flag.String("config", "", "Path to YAML config (optional)")
	csvPtr := flag.String("csv", "data/test.csv", "Patient registry CSV")
	imagesPtr := flag.String("images", "data/images", "Directory with <id>.png retinal photos")
	modelPtr := flag.String("model", "", "Path to model bundle (overrides config)")
	workersPtr := flag.Int("workers", 0, "Parallel report workers (0 = config value, capped at CPU count)")
	pdfPtr := flag.Bool("pdf", false, "Also print each report to PDF")

	flag.Parse()

	cfg, err := config.Load(*configPtr)
	if err != nil {
		log.Fatalf("[-] Config error: %v", err)
	}
	if *modelPtr != "" {
		cfg.ModelPath = *modelPtr
	}
	if *workersPtr > 0 {
		cfg.Workers = *workersPtr
	}
	if cfg.Workers > runtime.NumCPU() {
		cfg.Workers = runtime.NumCPU()
	}
	if *pdfPtr {
		cfg.PDF = true
	}

	reg, err := patients.LoadCSV(*csvPtr)
	if err != nil {
		log.Fatalf("[-] Registry error: %v", err)
	}
	fmt.Printf("[*] Registry: %s (%d patients)\n", *csvPtr, reg.Len())

	// Each worker loads its own model instance: the native backend keeps
	// per-pass state.
	factory := func() (classifier.Classifier, error) {
		return native.Load(cfg.ModelPath)
	}
	clf, err := factory()
	if err != nil {
		log.Fatalf("[-] Failed to load classifier: %v", err)
	}
	fmt.Printf("[*] Model loaded: %s (classes: %v)\n", cfg.ModelPath, clf.Classes())

	var renderer report.Renderer
	if cfg.PDF {
		renderer = &report.ChromeRenderer{Bin: cfg.ChromeBin}
	}

	project := engine.NewReportProject(cfg, clf, renderer)
	project.Factory = factory

	start := time.Now()
	generated, failed, err := project.RunBatch(reg, *imagesPtr)
	if err != nil {
		log.Fatalf("[-] Batch failed: %v", err)
	}

	fmt.Printf("[+++] Done in %.1fs: %d reports generated, %d failed/skipped\n",
		time.Since(start).Seconds(), generated, failed)
	system.PrintMemoryStats()
}
