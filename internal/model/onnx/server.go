// Package onnx runs the pet-face classifier with ONNX Runtime.
package onnx

import (
	"context"
	"fmt"
	"image"
	"net/http"
	"sync"

	ort "github.com/yalue/onnxruntime_go"

	"github.com/Brownie44l1/petface/internal/classify"
	"github.com/Brownie44l1/petface/internal/inference"
	"github.com/Brownie44l1/petface/internal/model"
)

// Server owns one ONNX session with fixed input and output tensors. Runs are
// serialized because the tensors are shared.
type Server struct {
	mu           sync.Mutex
	session      *ort.AdvancedSession
	Metadata     model.Metadata
	inputTensor  *ort.Tensor[float32]
	outputTensor *ort.Tensor[float32]
}

// Open locates the descriptor files for src (downloading them if needed)
// and starts a Server on them.
func Open(ctx context.Context, client *http.Client, src model.Source) (*Server, error) {
	modelPath, metadataPath, err := model.Locate(ctx, client, src)
	if err != nil {
		return nil, err
	}
	if src.SharedLibrary != "" {
		ort.SetSharedLibraryPath(src.SharedLibrary)
	}
	return NewServer(modelPath, metadataPath)
}

// Opener adapts Open to an inference.OpenFunc.
func Opener(client *http.Client, src model.Source) inference.OpenFunc {
	return func(ctx context.Context) (inference.Predictor, error) {
		s, err := Open(ctx, client, src)
		if err != nil {
			return nil, err
		}
		return s, nil
	}
}

// NewServer initializes the ONNX environment and builds a session for the
// model at modelPath.
func NewServer(modelPath, metadataPath string) (*Server, error) {
	metadata, err := model.ReadMetadata(metadataPath)
	if err != nil {
		return nil, err
	}

	if err := ort.InitializeEnvironment(); err != nil {
		return nil, fmt.Errorf("failed to initialize ONNX environment: %w", err)
	}

	s := &Server{Metadata: metadata}
	if err := s.build(modelPath); err != nil {
		s.Close()
		return nil, err
	}
	return s, nil
}

func (s *Server) build(modelPath string) error {
	var err error
	s.inputTensor, err = ort.NewEmptyTensor[float32](ort.NewShape(s.Metadata.InputShape...))
	if err != nil {
		return fmt.Errorf("failed to create input tensor: %w", err)
	}
	s.outputTensor, err = ort.NewEmptyTensor[float32](ort.NewShape(s.Metadata.OutputShape...))
	if err != nil {
		return fmt.Errorf("failed to create output tensor: %w", err)
	}
	s.session, err = ort.NewAdvancedSession(modelPath,
		[]string{s.Metadata.InputName}, []string{s.Metadata.OutputName},
		[]ort.ArbitraryTensor{s.inputTensor}, []ort.ArbitraryTensor{s.outputTensor},
		nil)
	if err != nil {
		return fmt.Errorf("failed to create ONNX session: %w", err)
	}
	return nil
}

// Classes returns the class labels in output order.
func (s *Server) Classes() []string {
	out := make([]string, len(s.Metadata.Classes))
	copy(out, s.Metadata.Classes)
	return out
}

// InputSize is the number of values Predict expects.
func (s *Server) InputSize() int {
	return s.Metadata.InputSize()
}

// Predict runs the model on a preprocessed CHW tensor. Predictions follow
// the metadata class order.
func (s *Server) Predict(inputData []float32) ([]classify.Prediction, error) {
	if len(inputData) != s.InputSize() {
		return nil, fmt.Errorf("expected %d input values, got %d", s.InputSize(), len(inputData))
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.session == nil {
		return nil, fmt.Errorf("inference failed: server closed")
	}

	copy(s.inputTensor.GetData(), inputData)
	if err := s.session.Run(); err != nil {
		return nil, fmt.Errorf("inference failed: %w", err)
	}

	outputData := s.outputTensor.GetData()
	predictions := make([]classify.Prediction, 0, len(s.Metadata.Classes))
	for i, class := range s.Metadata.Classes {
		if i >= len(outputData) {
			break
		}
		predictions = append(predictions, classify.Prediction{
			ClassName:   class,
			Probability: float64(outputData[i]),
		})
	}
	return predictions, nil
}

// PredictImage preprocesses img to the model's input size and runs it.
func (s *Server) PredictImage(ctx context.Context, img image.Image) ([]classify.Prediction, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	input, err := inference.Preprocess(img, s.Metadata.ImageSize)
	if err != nil {
		return nil, err
	}
	return s.Predict(input)
}

// Close destroys the session, tensors and ONNX environment.
func (s *Server) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.inputTensor != nil {
		s.inputTensor.Destroy()
		s.inputTensor = nil
	}
	if s.outputTensor != nil {
		s.outputTensor.Destroy()
		s.outputTensor = nil
	}
	if s.session != nil {
		s.session.Destroy()
		s.session = nil
	}
	return ort.DestroyEnvironment()
}
