// Package report assembles patient-facing HTML screening reports and prints
// them to PDF.
package report

import (
	"fmt"
	"html/template"
	"os"
	"strings"
	"time"

	qrcode "github.com/skip2/go-qrcode"

	"github.com/ivlev/retinareport/internal/classifier"
	"github.com/ivlev/retinareport/internal/patients"
)

// Data holds everything the report template substitutes.
type Data struct {
	ReportID        string
	PatientID       string
	Age             string
	Gender          string
	Date            string
	Diagnosis       string
	Positive        bool // any class above "No DR"
	ConfidencePct   int
	ConfidenceLevel string
	ImagePath       string
	OverlayPath     string
	ChartPath       string
	QRPath          string
	FocusAreas      string
	Explanation     template.HTML
	NextSteps       template.HTML
}

// Build fills report data from a patient record and a prediction. Image
// paths are relative to the report's own directory. focusAreas may be empty.
func Build(p patients.Patient, pred *classifier.Prediction, focusAreas []string, now time.Time) *Data {
	age := "N/A"
	if p.Age > 0 {
		age = fmt.Sprintf("%d", p.Age)
	}
	gender := p.Gender
	if gender == "" {
		gender = "N/A"
	}

	return &Data{
		ReportID:        fmt.Sprintf("%s-%s", p.ID, now.Format("20060102-150405")),
		PatientID:       p.ID,
		Age:             age,
		Gender:          gender,
		Date:            now.Format("January 2, 2006"),
		Diagnosis:       pred.Label,
		Positive:        pred.Class > 0,
		ConfidencePct:   int(pred.Confidence * 100),
		ConfidenceLevel: ConfidenceLevel(pred.Confidence),
		ImagePath:       "original.png",
		OverlayPath:     "overlay.png",
		ChartPath:       "confidence.png",
		FocusAreas:      joinAreas(focusAreas),
		Explanation:     Explanation(pred.Class, pred.Confidence),
		NextSteps:       NextSteps(pred.Class),
	}
}

// joinAreas renders up to three area names as prose ("center and upper left").
func joinAreas(areas []string) string {
	if len(areas) > 3 {
		areas = areas[:3]
	}
	switch len(areas) {
	case 0:
		return ""
	case 1:
		return areas[0]
	default:
		return strings.Join(areas[:len(areas)-1], ", ") + " and " + areas[len(areas)-1]
	}
}

// WriteHTML renders the report to path. templatePath may be empty to use the
// built-in layout.
func WriteHTML(data *Data, templatePath, path string) error {
	text := defaultTemplate
	if templatePath != "" {
		raw, err := os.ReadFile(templatePath)
		if err != nil {
			return fmt.Errorf("failed to read template: %w", err)
		}
		text = string(raw)
	}

	tmpl, err := template.New("report").Parse(text)
	if err != nil {
		return fmt.Errorf("failed to parse report template: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()

	if err := tmpl.Execute(f, data); err != nil {
		return fmt.Errorf("failed to render report: %w", err)
	}
	return nil
}

// WriteQR saves the verification QR code for a report id.
func WriteQR(reportID, path string) error {
	if err := qrcode.WriteFile(reportID, qrcode.Medium, 256, path); err != nil {
		return fmt.Errorf("failed to write QR code: %w", err)
	}
	return nil
}
