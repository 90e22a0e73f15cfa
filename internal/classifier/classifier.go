package classifier

import (
	"errors"
	"fmt"

	"github.com/ivlev/retinareport/internal/tensor"
)

// ErrShapeMismatch is returned when an input image does not match the
// classifier's expected spatial dimensions. Checked before inference.
var ErrShapeMismatch = errors.New("input image shape does not match classifier input")

// Classifier is an opaque mapping from a normalized RGB image tensor to a
// probability vector over a fixed ordered label set.
type Classifier interface {
	// InputSize returns the expected spatial dimensions of input images.
	InputSize() (h, w int)
	// Classes returns the ordered class labels.
	Classes() []string
	// Predict runs a forward pass and returns one probability per class.
	Predict(img *tensor.Tensor) ([]float32, error)
}

// LayerInfo describes one internal layer of a classifier in network order.
// OutputRank counts the implicit batch axis, so a spatial feature map
// (batch, height, width, channels) reports rank 4.
type LayerInfo struct {
	Name       string
	OutputRank int
}

// GradClassifier extends Classifier with the capabilities Grad-CAM needs:
// enumerable layers and differentiation of a class score with respect to an
// intermediate layer's activations.
type GradClassifier interface {
	Classifier
	// Layers lists internal layers in network order.
	Layers() []LayerInfo
	// FeatureGradients runs a forward pass, captures the output of the layer
	// at index layer, and returns it together with the gradient of the given
	// class's probability with respect to that output.
	FeatureGradients(img *tensor.Tensor, layer, class int) (feat, grads *tensor.Tensor, err error)
}

// Prediction is the outcome of classifying one image.
type Prediction struct {
	Class         int
	Label         string
	Confidence    float32
	Probabilities []float32
}

// Argmax returns the index of the maximum value. Ties break to the lowest
// index.
func Argmax(probs []float32) int {
	best := 0
	for i, v := range probs {
		if v > probs[best] {
			best = i
		}
	}
	return best
}

// Predict runs the classifier and packages the result.
func Predict(c Classifier, img *tensor.Tensor) (*Prediction, error) {
	probs, err := c.Predict(img)
	if err != nil {
		return nil, err
	}
	classes := c.Classes()
	if len(probs) != len(classes) {
		return nil, fmt.Errorf("classifier returned %d probabilities for %d classes", len(probs), len(classes))
	}
	idx := Argmax(probs)
	return &Prediction{
		Class:         idx,
		Label:         classes[idx],
		Confidence:    probs[idx],
		Probabilities: probs,
	}, nil
}

// CheckShape validates an image against the classifier's expected input.
func CheckShape(c Classifier, img *tensor.Tensor) error {
	h, w := c.InputSize()
	if img.H != h || img.W != w || img.C != 3 {
		return fmt.Errorf("%w: got %dx%dx%d, want %dx%dx3", ErrShapeMismatch, img.H, img.W, img.C, h, w)
	}
	return nil
}
