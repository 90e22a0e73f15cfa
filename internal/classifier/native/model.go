// Package native implements the classifier capability on a small sequential
// convolutional network with hand-rolled forward and backward passes. The
// architecture and weights come from a JSON bundle, so Grad-CAM works without
// any external runtime.
package native

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/ivlev/retinareport/internal/classifier"
	"github.com/ivlev/retinareport/internal/tensor"
)

// Metadata mirrors the header of a weight bundle.
type Metadata struct {
	InputShape []int       `json:"input_shape"` // [height, width, channels]
	Classes    []string    `json:"classes"`
	Layers     []LayerSpec `json:"layers"`
}

// LayerSpec is one entry of the bundle's layer list.
type LayerSpec struct {
	Type    string    `json:"type"` // conv, relu, maxpool, flatten, dense, softmax
	Name    string    `json:"name"`
	Kernel  int       `json:"kernel,omitempty"`
	Filters int       `json:"filters,omitempty"`
	Size    int       `json:"size,omitempty"`
	Units   int       `json:"units,omitempty"`
	Weights []float32 `json:"weights,omitempty"`
	Bias    []float32 `json:"bias,omitempty"`
}

// Model is a loaded network. It keeps per-layer forward caches, so one
// instance serves one pass at a time.
type Model struct {
	meta   Metadata
	layers []layer
}

// Load reads a weight bundle from disk and builds the network.
func Load(path string) (*Model, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read model bundle: %w", err)
	}
	var meta Metadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("failed to parse model bundle: %w", err)
	}
	return Build(meta)
}

// Build assembles a model from parsed metadata.
func Build(meta Metadata) (*Model, error) {
	if len(meta.InputShape) != 3 {
		return nil, fmt.Errorf("model bundle: input_shape must have 3 dims, got %d", len(meta.InputShape))
	}
	if len(meta.Classes) == 0 {
		return nil, fmt.Errorf("model bundle: no classes defined")
	}

	m := &Model{meta: meta}
	// Track channel count through the network so weight lengths can be
	// validated up front instead of mid-inference.
	h, w, c := meta.InputShape[0], meta.InputShape[1], meta.InputShape[2]
	spatial := true

	for i, spec := range meta.Layers {
		name := spec.Name
		if name == "" {
			name = fmt.Sprintf("%s_%d", spec.Type, i)
		}
		switch spec.Type {
		case "conv":
			if !spatial {
				return nil, fmt.Errorf("layer %s: conv after flatten", name)
			}
			if spec.Kernel <= 0 || spec.Filters <= 0 {
				return nil, fmt.Errorf("layer %s: conv needs kernel and filters", name)
			}
			wantW := spec.Kernel * spec.Kernel * c * spec.Filters
			if len(spec.Weights) != wantW {
				return nil, fmt.Errorf("layer %s: %d weights, want %d", name, len(spec.Weights), wantW)
			}
			if len(spec.Bias) != spec.Filters {
				return nil, fmt.Errorf("layer %s: %d biases, want %d", name, len(spec.Bias), spec.Filters)
			}
			m.layers = append(m.layers, &convLayer{
				name: name, kernel: spec.Kernel, inCh: c,
				filters: spec.Filters, weights: spec.Weights, bias: spec.Bias,
			})
			c = spec.Filters
		case "relu":
			rank := 4
			if !spatial {
				rank = 2
			}
			m.layers = append(m.layers, &reluLayer{name: name, rank: rank})
		case "maxpool":
			if !spatial {
				return nil, fmt.Errorf("layer %s: maxpool after flatten", name)
			}
			if spec.Size <= 0 {
				return nil, fmt.Errorf("layer %s: maxpool needs size", name)
			}
			if h%spec.Size != 0 || w%spec.Size != 0 {
				return nil, fmt.Errorf("layer %s: %dx%d not divisible by pool size %d", name, h, w, spec.Size)
			}
			m.layers = append(m.layers, &maxPoolLayer{name: name, size: spec.Size})
			h /= spec.Size
			w /= spec.Size
		case "flatten":
			if !spatial {
				return nil, fmt.Errorf("layer %s: duplicate flatten", name)
			}
			m.layers = append(m.layers, &flattenLayer{name: name})
			c = h * w * c
			h, w = 1, 1
			spatial = false
		case "dense":
			if spatial {
				return nil, fmt.Errorf("layer %s: dense before flatten", name)
			}
			if spec.Units <= 0 {
				return nil, fmt.Errorf("layer %s: dense needs units", name)
			}
			wantW := c * spec.Units
			if len(spec.Weights) != wantW {
				return nil, fmt.Errorf("layer %s: %d weights, want %d", name, len(spec.Weights), wantW)
			}
			if len(spec.Bias) != spec.Units {
				return nil, fmt.Errorf("layer %s: %d biases, want %d", name, len(spec.Bias), spec.Units)
			}
			m.layers = append(m.layers, &denseLayer{
				name: name, inputs: c, units: spec.Units,
				weights: spec.Weights, bias: spec.Bias,
			})
			c = spec.Units
		case "softmax":
			m.layers = append(m.layers, &softmaxLayer{name: name})
		default:
			return nil, fmt.Errorf("layer %s: unknown type %q", name, spec.Type)
		}
	}

	if spatial {
		return nil, fmt.Errorf("model bundle: network never flattens to class scores")
	}
	if c != len(meta.Classes) {
		return nil, fmt.Errorf("model bundle: final layer has %d outputs for %d classes", c, len(meta.Classes))
	}
	return m, nil
}

func (m *Model) InputSize() (int, int) {
	return m.meta.InputShape[0], m.meta.InputShape[1]
}

func (m *Model) Classes() []string {
	return m.meta.Classes
}

// Predict runs a full forward pass.
func (m *Model) Predict(img *tensor.Tensor) ([]float32, error) {
	if err := classifier.CheckShape(m, img); err != nil {
		return nil, err
	}
	cur := img
	var err error
	for _, l := range m.layers {
		cur, err = l.Forward(cur)
		if err != nil {
			return nil, fmt.Errorf("forward pass in %s: %w", l.Name(), err)
		}
	}
	return cur.Data, nil
}

// Layers lists internal layers in network order.
func (m *Model) Layers() []classifier.LayerInfo {
	infos := make([]classifier.LayerInfo, len(m.layers))
	for i, l := range m.layers {
		infos[i] = classifier.LayerInfo{Name: l.Name(), OutputRank: l.OutputRank()}
	}
	return infos
}

// FeatureGradients captures the activations of layers[layer] during a
// forward pass and backpropagates the given class's probability down to that
// feature map.
func (m *Model) FeatureGradients(img *tensor.Tensor, layer, class int) (*tensor.Tensor, *tensor.Tensor, error) {
	if err := classifier.CheckShape(m, img); err != nil {
		return nil, nil, err
	}
	if layer < 0 || layer >= len(m.layers) {
		return nil, nil, fmt.Errorf("layer index %d out of range (network has %d layers)", layer, len(m.layers))
	}

	cur := img
	var feat *tensor.Tensor
	var err error
	for i, l := range m.layers {
		cur, err = l.Forward(cur)
		if err != nil {
			return nil, nil, fmt.Errorf("forward pass in %s: %w", l.Name(), err)
		}
		if i == layer {
			feat = cur
		}
	}
	if class < 0 || class >= len(cur.Data) {
		return nil, nil, fmt.Errorf("class index %d out of range (%d outputs)", class, len(cur.Data))
	}

	// Seed with the one-hot gradient of the selected class probability.
	grad := tensor.New(1, 1, len(cur.Data))
	grad.Data[class] = 1
	for i := len(m.layers) - 1; i > layer; i-- {
		grad, err = m.layers[i].Backward(grad)
		if err != nil {
			return nil, nil, fmt.Errorf("backward pass in %s: %w", m.layers[i].Name(), err)
		}
	}
	return feat, grad, nil
}
