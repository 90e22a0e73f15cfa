// Package onnx wraps an ONNX Runtime session behind the Classifier
// capability. The runtime exposes forward inference only, so this backend
// cannot serve Grad-CAM; use the native backend when explanations are needed.
package onnx

import (
	"encoding/json"
	"fmt"
	"os"

	ort "github.com/yalue/onnxruntime_go"

	"github.com/ivlev/retinareport/internal/classifier"
	"github.com/ivlev/retinareport/internal/tensor"
)

// Metadata sits next to the .onnx file and describes its tensor shapes.
type Metadata struct {
	InputShape  []int64  `json:"input_shape"`
	OutputShape []int64  `json:"output_shape"`
	Classes     []string `json:"classes"`
	ImageSize   int      `json:"image_size"`
}

type Model struct {
	session      *ort.AdvancedSession
	meta         Metadata
	inputTensor  *ort.Tensor[float32]
	outputTensor *ort.Tensor[float32]
}

// Load initializes the ONNX environment and opens a session for the model at
// modelPath. metadataPath points at the JSON shape/label description.
func Load(modelPath, metadataPath string) (*Model, error) {
	if err := ort.InitializeEnvironment(); err != nil {
		return nil, fmt.Errorf("failed to initialize ONNX environment: %w", err)
	}

	metaFile, err := os.ReadFile(metadataPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read metadata: %w", err)
	}
	var meta Metadata
	if err := json.Unmarshal(metaFile, &meta); err != nil {
		return nil, fmt.Errorf("failed to parse metadata: %w", err)
	}

	inputTensor, err := ort.NewEmptyTensor[float32](ort.NewShape(meta.InputShape...))
	if err != nil {
		return nil, fmt.Errorf("failed to create input tensor: %w", err)
	}
	outputTensor, err := ort.NewEmptyTensor[float32](ort.NewShape(meta.OutputShape...))
	if err != nil {
		inputTensor.Destroy()
		return nil, fmt.Errorf("failed to create output tensor: %w", err)
	}

	session, err := ort.NewAdvancedSession(modelPath,
		[]string{"input"}, []string{"output"},
		[]ort.ArbitraryTensor{inputTensor}, []ort.ArbitraryTensor{outputTensor},
		nil)
	if err != nil {
		inputTensor.Destroy()
		outputTensor.Destroy()
		return nil, fmt.Errorf("failed to create ONNX session: %w", err)
	}

	return &Model{
		session:      session,
		meta:         meta,
		inputTensor:  inputTensor,
		outputTensor: outputTensor,
	}, nil
}

func (m *Model) InputSize() (int, int) {
	return m.meta.ImageSize, m.meta.ImageSize
}

func (m *Model) Classes() []string {
	return m.meta.Classes
}

// Predict copies the image into the session's input tensor in CHW order and
// runs inference.
func (m *Model) Predict(img *tensor.Tensor) ([]float32, error) {
	if err := classifier.CheckShape(m, img); err != nil {
		return nil, err
	}

	data := m.inputTensor.GetData()
	plane := img.H * img.W
	for y := 0; y < img.H; y++ {
		for x := 0; x < img.W; x++ {
			idx := y*img.W + x
			data[idx] = img.At(y, x, 0)
			data[plane+idx] = img.At(y, x, 1)
			data[2*plane+idx] = img.At(y, x, 2)
		}
	}

	if err := m.session.Run(); err != nil {
		return nil, fmt.Errorf("inference failed: %w", err)
	}

	out := m.outputTensor.GetData()
	probs := make([]float32, len(m.meta.Classes))
	copy(probs, out)
	return probs, nil
}

// Close releases the session and its tensors.
func (m *Model) Close() {
	if m.inputTensor != nil {
		m.inputTensor.Destroy()
	}
	if m.outputTensor != nil {
		m.outputTensor.Destroy()
	}
	if m.session != nil {
		m.session.Destroy()
	}
	ort.DestroyEnvironment()
}
