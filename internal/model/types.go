// Package model describes the pretrained classifier's descriptor files and
// how to obtain them.
package model

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
)

const (
	defaultInputName  = "input"
	defaultOutputName = "output"
)

// Metadata is the JSON descriptor shipped next to the model file.
type Metadata struct {
	InputShape  []int64  `json:"input_shape"`
	OutputShape []int64  `json:"output_shape"`
	Classes     []string `json:"classes"`
	ImageSize   int      `json:"image_size"`
	InputName   string   `json:"input_name,omitempty"`
	OutputName  string   `json:"output_name,omitempty"`
}

// PredictionRequest carries an already preprocessed CHW tensor.
type PredictionRequest struct {
	Image []float32 `json:"image"`
}

// ReadMetadata loads and validates a descriptor file.
func ReadMetadata(path string) (Metadata, error) {
	var meta Metadata
	data, err := os.ReadFile(path)
	if err != nil {
		return meta, fmt.Errorf("read metadata: %w", err)
	}
	if err := json.Unmarshal(data, &meta); err != nil {
		return meta, fmt.Errorf("parse metadata: %w", err)
	}
	meta.ApplyDefaults()
	if err := meta.Validate(); err != nil {
		return meta, err
	}
	return meta, nil
}

// ApplyDefaults fills the tensor names the exporter uses by default.
func (m *Metadata) ApplyDefaults() {
	if m.InputName == "" {
		m.InputName = defaultInputName
	}
	if m.OutputName == "" {
		m.OutputName = defaultOutputName
	}
}

// Validate checks the descriptor is usable for image classification.
func (m Metadata) Validate() error {
	if len(m.Classes) == 0 {
		return errors.New("metadata: no classes")
	}
	if m.ImageSize <= 0 {
		return errors.New("metadata: image_size must be positive")
	}
	if len(m.InputShape) == 0 || len(m.OutputShape) == 0 {
		return errors.New("metadata: input_shape and output_shape are required")
	}
	if got, want := m.InputSize(), 3*m.ImageSize*m.ImageSize; got != want {
		return fmt.Errorf("metadata: input_shape holds %d values, image_size needs %d", got, want)
	}
	if out := m.OutputSize(); out < len(m.Classes) {
		return fmt.Errorf("metadata: output_shape holds %d values for %d classes", out, len(m.Classes))
	}
	return nil
}

// InputSize is the number of float values the model expects.
func (m Metadata) InputSize() int {
	return product(m.InputShape)
}

// OutputSize is the number of float values the model produces.
func (m Metadata) OutputSize() int {
	return product(m.OutputShape)
}

func product(shape []int64) int {
	if len(shape) == 0 {
		return 0
	}
	n := 1
	for _, dim := range shape {
		n *= int(dim)
	}
	return n
}
