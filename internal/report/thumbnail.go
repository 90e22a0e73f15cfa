package report

import (
	"fmt"

	"github.com/gen2brain/go-fitz"

	"github.com/ivlev/retinareport/internal/imageio"
)

// Thumbnail renders the first page of a generated PDF to a PNG preview of
// the given width.
func Thumbnail(pdfPath, pngPath string, width int) error {
	doc, err := fitz.New(pdfPath)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", pdfPath, err)
	}
	defer doc.Close()

	if doc.NumPage() == 0 {
		return fmt.Errorf("%s has no pages", pdfPath)
	}

	img, err := doc.ImageDPI(0, 96)
	if err != nil {
		return fmt.Errorf("failed to render first page: %w", err)
	}

	if width > 0 {
		return imageio.SavePNG(pngPath, imageio.Scale(img, width))
	}
	return imageio.SavePNG(pngPath, img)
}
