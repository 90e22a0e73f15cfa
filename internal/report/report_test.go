package report

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/ivlev/retinareport/internal/classifier"
	"github.com/ivlev/retinareport/internal/patients"
)

func TestConfidenceLevel(t *testing.T) {
	tests := []struct {
		confidence float32
		want       string
	}{
		{0.95, "Very High"},
		{0.9, "Very High"},
		{0.8, "High"},
		{0.75, "High"},
		{0.65, "Medium"},
		{0.6, "Medium"},
		{0.5, "Low"},
		{0, "Low"},
	}

	for _, tt := range tests {
		if got := ConfidenceLevel(tt.confidence); got != tt.want {
			t.Errorf("ConfidenceLevel(%v) = %q, want %q", tt.confidence, got, tt.want)
		}
	}
}

func TestRecommend(t *testing.T) {
	rec := Recommend(4, 0.95)
	if rec.Urgency != "immediate" {
		t.Errorf("Urgency = %q, want immediate", rec.Urgency)
	}
	if rec.Note != "High confidence result" {
		t.Errorf("Note = %q", rec.Note)
	}

	rec = Recommend(2, 0.65)
	if rec.Urgency != "refer" {
		t.Errorf("Urgency = %q, want refer", rec.Urgency)
	}
	if !strings.Contains(rec.Note, "manual review") {
		t.Errorf("Expected low-confidence note, got %q", rec.Note)
	}

	rec = Recommend(1, 0.8)
	if !strings.Contains(rec.Note, "additional screening") {
		t.Errorf("Expected medium-confidence note, got %q", rec.Note)
	}

	// Out-of-range classes fall back to the healthy guidance.
	if Recommend(-1, 0.9).Urgency != "routine" {
		t.Error("Expected routine urgency for out-of-range class")
	}
}

func TestExplanationLowConfidenceNote(t *testing.T) {
	with := string(Explanation(2, 0.6))
	if !strings.Contains(with, "less sure") {
		t.Error("Expected review note below 0.7 confidence")
	}
	if !strings.Contains(with, "60% confident") {
		t.Errorf("Expected confidence percentage, got %q", with)
	}

	without := string(Explanation(2, 0.9))
	if strings.Contains(without, "less sure") {
		t.Error("Unexpected review note at high confidence")
	}
}

func testPrediction() *classifier.Prediction {
	return &classifier.Prediction{
		Class:         2,
		Label:         "Moderate",
		Confidence:    0.87,
		Probabilities: []float32{0.02, 0.05, 0.87, 0.04, 0.02},
	}
}

func TestBuild(t *testing.T) {
	p := patients.Patient{ID: "0005cfc8afb6", Age: 52, Gender: "Female", Diagnosis: 2}
	now := time.Date(2026, time.March, 14, 10, 30, 0, 0, time.UTC)

	data := Build(p, testPrediction(), []string{"center", "upper left"}, now)

	if data.ReportID != "0005cfc8afb6-20260314-103000" {
		t.Errorf("ReportID = %q", data.ReportID)
	}
	if data.Date != "March 14, 2026" {
		t.Errorf("Date = %q", data.Date)
	}
	if !data.Positive {
		t.Error("Expected positive result for class 2")
	}
	if data.ConfidencePct != 87 {
		t.Errorf("ConfidencePct = %d, want 87", data.ConfidencePct)
	}
	if data.ConfidenceLevel != "High" {
		t.Errorf("ConfidenceLevel = %q, want High", data.ConfidenceLevel)
	}
	if data.FocusAreas != "center and upper left" {
		t.Errorf("FocusAreas = %q", data.FocusAreas)
	}
	if data.ImagePath != "original.png" || data.OverlayPath != "overlay.png" {
		t.Error("Image paths should be relative to the report directory")
	}
}

func TestBuildMissingDemographics(t *testing.T) {
	p := patients.Patient{ID: "abc", Diagnosis: -1}
	pred := &classifier.Prediction{Class: 0, Label: "No DR", Confidence: 0.93}

	data := Build(p, pred, nil, time.Now())
	if data.Age != "N/A" || data.Gender != "N/A" {
		t.Errorf("Age = %q, Gender = %q, want N/A for both", data.Age, data.Gender)
	}
	if data.Positive {
		t.Error("Class 0 must not be positive")
	}
	if data.FocusAreas != "" {
		t.Errorf("FocusAreas = %q, want empty", data.FocusAreas)
	}
}

func TestJoinAreas(t *testing.T) {
	tests := []struct {
		name  string
		areas []string
		want  string
	}{
		{"none", nil, ""},
		{"one", []string{"center"}, "center"},
		{"two", []string{"center", "upper left"}, "center and upper left"},
		{"three", []string{"a", "b", "c"}, "a, b and c"},
		{"caps at three", []string{"a", "b", "c", "d"}, "a, b and c"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := joinAreas(tt.areas); got != tt.want {
				t.Errorf("joinAreas(%v) = %q, want %q", tt.areas, got, tt.want)
			}
		})
	}
}

func TestWriteHTML(t *testing.T) {
	p := patients.Patient{ID: "abc123", Age: 40, Gender: "Male"}
	data := Build(p, testPrediction(), []string{"lower right"}, time.Now())
	data.QRPath = "qr.png"

	path := filepath.Join(t.TempDir(), "report.html")
	if err := WriteHTML(data, "", path); err != nil {
		t.Fatalf("WriteHTML failed: %v", err)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read report: %v", err)
	}
	html := string(raw)

	for _, want := range []string{
		"abc123",
		"Moderate",
		"WHAT THE COMPUTER SAW",
		"lower right",
		"overlay.png",
		"confidence.png",
		"qr.png",
		"87%",
	} {
		if !strings.Contains(html, want) {
			t.Errorf("Report missing %q", want)
		}
	}
}

func TestWriteHTMLOmitsOverlaySection(t *testing.T) {
	p := patients.Patient{ID: "abc123"}
	data := Build(p, testPrediction(), nil, time.Now())
	data.OverlayPath = ""

	path := filepath.Join(t.TempDir(), "report.html")
	if err := WriteHTML(data, "", path); err != nil {
		t.Fatalf("WriteHTML failed: %v", err)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read report: %v", err)
	}
	if strings.Contains(string(raw), "WHAT THE COMPUTER SAW") {
		t.Error("Overlay section rendered without an overlay image")
	}
}

func TestWriteHTMLCustomTemplate(t *testing.T) {
	dir := t.TempDir()
	tmplPath := filepath.Join(dir, "custom.html")
	if err := os.WriteFile(tmplPath, []byte("<h1>{{.PatientID}}</h1>"), 0644); err != nil {
		t.Fatalf("Failed to write template: %v", err)
	}

	data := Build(patients.Patient{ID: "xyz"}, testPrediction(), nil, time.Now())
	path := filepath.Join(dir, "report.html")
	if err := WriteHTML(data, tmplPath, path); err != nil {
		t.Fatalf("WriteHTML failed: %v", err)
	}

	raw, _ := os.ReadFile(path)
	if string(raw) != "<h1>xyz</h1>" {
		t.Errorf("Rendered %q", string(raw))
	}
}

func TestWriteQR(t *testing.T) {
	path := filepath.Join(t.TempDir(), "qr.png")
	if err := WriteQR("abc123-20260314-103000", path); err != nil {
		t.Fatalf("WriteQR failed: %v", err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("QR file missing: %v", err)
	}
	if info.Size() == 0 {
		t.Error("QR file is empty")
	}
}
