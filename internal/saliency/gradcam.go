// Package saliency computes Grad-CAM importance maps over a classifier's
// deepest spatial feature map and composites them onto the original image
// for human viewing.
package saliency

import (
	"errors"
	"fmt"

	"github.com/ivlev/retinareport/internal/classifier"
	"github.com/ivlev/retinareport/internal/tensor"
)

// ErrLayerNotFound means the classifier exposes no spatial feature map to
// instrument. Fatal, no fallback.
var ErrLayerNotFound = errors.New("classifier has no four-axis intermediate layer")

// ErrGradient wraps failures of the differentiation step.
var ErrGradient = errors.New("gradient computation failed")

// UsePredictedClass selects the argmax of the forward probabilities as the
// Grad-CAM target.
const UsePredictedClass = -1

// ComputeHeatmap builds a Grad-CAM map for one image. The instrumented layer
// is the last layer in network order whose output keeps spatial structure
// (batch, height, width, channels). When target is UsePredictedClass the
// engine first runs a forward pass and targets the argmax class, ties broken
// by lowest index.
//
// The returned map has the feature map's spatial size, not the image's, with
// values in [0,1]. A map whose positive activations are all zero comes back
// all-zero rather than NaN.
func ComputeHeatmap(clf classifier.GradClassifier, img *tensor.Tensor, target int) (*Heatmap, error) {
	if err := classifier.CheckShape(clf, img); err != nil {
		return nil, err
	}

	layerIdx := lastSpatialLayer(clf)
	if layerIdx < 0 {
		return nil, ErrLayerNotFound
	}

	if target == UsePredictedClass {
		probs, err := clf.Predict(img)
		if err != nil {
			return nil, fmt.Errorf("forward pass for target selection: %w", err)
		}
		target = classifier.Argmax(probs)
	}
	if target < 0 || target >= len(clf.Classes()) {
		return nil, fmt.Errorf("target class %d out of range (%d classes)", target, len(clf.Classes()))
	}

	feat, grads, err := clf.FeatureGradients(img, layerIdx, target)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGradient, err)
	}
	if !feat.SameShape(grads) {
		return nil, fmt.Errorf("%w: feature map %s and gradient %s differ in shape", ErrGradient, feat, grads)
	}

	// Channel importance: spatial mean of the gradient per channel.
	weights := make([]float32, feat.C)
	area := float32(feat.H * feat.W)
	for y := 0; y < feat.H; y++ {
		for x := 0; x < feat.W; x++ {
			for c := 0; c < feat.C; c++ {
				weights[c] += grads.At(y, x, c)
			}
		}
	}
	for c := range weights {
		weights[c] /= area
	}

	// Weighted channel sum, negatives clipped.
	hm := NewHeatmap(feat.H, feat.W)
	for y := 0; y < feat.H; y++ {
		for x := 0; x < feat.W; x++ {
			var sum float32
			for c := 0; c < feat.C; c++ {
				sum += feat.At(y, x, c) * weights[c]
			}
			if sum < 0 {
				sum = 0
			}
			hm.Set(y, x, sum)
		}
	}

	// Max-normalize. A zero maximum means nothing increased the class
	// evidence; the map stays all-zero instead of dividing by zero.
	max := hm.Max()
	if max > 0 {
		for i := range hm.Data {
			hm.Data[i] /= max
		}
	}
	return hm, nil
}

// lastSpatialLayer scans the layer list in reverse network order for the
// deepest four-axis output. Reverse-linear-scan is the defined tie-break for
// branching architectures.
func lastSpatialLayer(clf classifier.GradClassifier) int {
	layers := clf.Layers()
	for i := len(layers) - 1; i >= 0; i-- {
		if layers[i].OutputRank == 4 {
			return i
		}
	}
	return -1
}
