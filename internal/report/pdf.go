package report

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
)

// Renderer rasterizes a finished HTML report into a PDF file.
type Renderer interface {
	RenderPDF(htmlPath, pdfPath string) error
}

// ChromeRenderer prints reports through a headless Chrome instance.
type ChromeRenderer struct {
	// Bin overrides the browser binary; empty means auto-detect/download.
	Bin string
}

func (r *ChromeRenderer) RenderPDF(htmlPath, pdfPath string) error {
	abs, err := filepath.Abs(htmlPath)
	if err != nil {
		return err
	}

	l := launcher.New().Headless(true)
	if r.Bin != "" {
		l = l.Bin(r.Bin)
	}
	controlURL, err := l.Launch()
	if err != nil {
		return fmt.Errorf("failed to launch browser: %w", err)
	}

	browser := rod.New().ControlURL(controlURL)
	if err := browser.Connect(); err != nil {
		return fmt.Errorf("failed to connect to browser: %w", err)
	}
	defer browser.Close()

	page, err := browser.Page(proto.TargetCreateTarget{URL: "file://" + abs})
	if err != nil {
		return fmt.Errorf("failed to open report page: %w", err)
	}
	if err := page.WaitLoad(); err != nil {
		return fmt.Errorf("report page never finished loading: %w", err)
	}

	stream, err := page.PDF(&proto.PagePrintToPDF{PrintBackground: true})
	if err != nil {
		return fmt.Errorf("failed to print report: %w", err)
	}
	data, err := io.ReadAll(stream)
	if err != nil {
		return fmt.Errorf("failed to read PDF stream: %w", err)
	}

	if err := os.WriteFile(pdfPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", pdfPath, err)
	}
	return nil
}
