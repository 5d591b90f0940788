// Package inference defines how sessions reach a classification model: the
// Predictor surface, a lazily loaded shared model, and image preprocessing.
package inference

import (
	"context"
	"image"

	"github.com/Brownie44l1/petface/internal/classify"
)

// Predictor runs the pretrained model on an image. Predictions come back in
// the model's class order.
type Predictor interface {
	Classes() []string
	PredictImage(ctx context.Context, img image.Image) ([]classify.Prediction, error)
}

// RawPredictor is implemented by predictors that also accept an already
// preprocessed input tensor.
type RawPredictor interface {
	InputSize() int
	Predict(input []float32) ([]classify.Prediction, error)
}

// OpenFunc loads a model. It is called again after a failed attempt.
type OpenFunc func(ctx context.Context) (Predictor, error)
