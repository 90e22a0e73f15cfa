package classifier

import (
	"errors"
	"testing"

	"github.com/ivlev/retinareport/internal/tensor"
)

type fakeClassifier struct {
	h, w    int
	classes []string
	probs   []float32
	err     error
}

func (f *fakeClassifier) InputSize() (int, int) { return f.h, f.w }
func (f *fakeClassifier) Classes() []string     { return f.classes }
func (f *fakeClassifier) Predict(img *tensor.Tensor) ([]float32, error) {
	return f.probs, f.err
}

func TestArgmax(t *testing.T) {
	tests := []struct {
		name  string
		probs []float32
		want  int
	}{
		{"single winner", []float32{0.1, 0.7, 0.2}, 1},
		{"winner first", []float32{0.9, 0.05, 0.05}, 0},
		{"winner last", []float32{0.1, 0.2, 0.7}, 2},
		{"tie breaks to lowest index", []float32{0.2, 0.4, 0.4}, 1},
		{"all equal", []float32{0.25, 0.25, 0.25, 0.25}, 0},
		{"single class", []float32{1}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Argmax(tt.probs); got != tt.want {
				t.Errorf("Argmax(%v) = %d, want %d", tt.probs, got, tt.want)
			}
		})
	}
}

func TestPredict(t *testing.T) {
	clf := &fakeClassifier{
		h: 4, w: 4,
		classes: []string{"No DR", "Mild", "Moderate"},
		probs:   []float32{0.1, 0.2, 0.7},
	}

	pred, err := Predict(clf, tensor.New(4, 4, 3))
	if err != nil {
		t.Fatalf("Predict failed: %v", err)
	}
	if pred.Class != 2 {
		t.Errorf("Class = %d, want 2", pred.Class)
	}
	if pred.Label != "Moderate" {
		t.Errorf("Label = %q, want Moderate", pred.Label)
	}
	if pred.Confidence != 0.7 {
		t.Errorf("Confidence = %v, want 0.7", pred.Confidence)
	}
	if len(pred.Probabilities) != 3 {
		t.Errorf("Expected 3 probabilities, got %d", len(pred.Probabilities))
	}
}

func TestPredictCountMismatch(t *testing.T) {
	clf := &fakeClassifier{
		h: 4, w: 4,
		classes: []string{"No DR", "Mild"},
		probs:   []float32{0.5, 0.3, 0.2},
	}

	if _, err := Predict(clf, tensor.New(4, 4, 3)); err == nil {
		t.Error("Expected error for probability/class count mismatch")
	}
}

func TestPredictPropagatesError(t *testing.T) {
	wantErr := errors.New("session gone")
	clf := &fakeClassifier{h: 4, w: 4, classes: []string{"a"}, err: wantErr}

	if _, err := Predict(clf, tensor.New(4, 4, 3)); !errors.Is(err, wantErr) {
		t.Errorf("Expected wrapped classifier error, got %v", err)
	}
}

func TestCheckShape(t *testing.T) {
	clf := &fakeClassifier{h: 224, w: 224, classes: []string{"a"}}

	tests := []struct {
		name    string
		img     *tensor.Tensor
		wantErr bool
	}{
		{"matching", tensor.New(224, 224, 3), false},
		{"wrong height", tensor.New(112, 224, 3), true},
		{"wrong width", tensor.New(224, 112, 3), true},
		{"wrong channels", tensor.New(224, 224, 1), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckShape(clf, tt.img)
			if tt.wantErr {
				if !errors.Is(err, ErrShapeMismatch) {
					t.Errorf("Expected ErrShapeMismatch, got %v", err)
				}
			} else if err != nil {
				t.Errorf("Unexpected error: %v", err)
			}
		})
	}
}
