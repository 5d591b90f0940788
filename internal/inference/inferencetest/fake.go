// Package inferencetest provides a scripted Predictor for tests.
package inferencetest

import (
	"context"
	"image"
	"sync"

	"github.com/Brownie44l1/petface/internal/classify"
)

// Fake returns canned predictions and counts calls. Set Err to make
// PredictImage fail, or Block to hold calls until the channel is closed.
type Fake struct {
	Labels []string

	mu    sync.Mutex
	preds []classify.Prediction
	err   error
	block chan struct{}
	calls int
}

// New returns a Fake that answers every call with preds.
func New(labels []string, preds ...classify.Prediction) *Fake {
	return &Fake{Labels: labels, preds: preds}
}

func (f *Fake) Classes() []string { return f.Labels }

func (f *Fake) PredictImage(ctx context.Context, _ image.Image) ([]classify.Prediction, error) {
	f.mu.Lock()
	f.calls++
	block := f.block
	f.mu.Unlock()

	if block != nil {
		select {
		case <-block:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	out := make([]classify.Prediction, len(f.preds))
	copy(out, f.preds)
	return out, nil
}

// Set replaces the canned answer.
func (f *Fake) Set(err error, preds ...classify.Prediction) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.err = err
	f.preds = preds
}

// Hold makes subsequent calls wait until the returned func is called.
func (f *Fake) Hold() (release func()) {
	ch := make(chan struct{})
	f.mu.Lock()
	f.block = ch
	f.mu.Unlock()
	var once sync.Once
	return func() {
		once.Do(func() {
			f.mu.Lock()
			f.block = nil
			f.mu.Unlock()
			close(ch)
		})
	}
}

// Calls reports how many times PredictImage has been called.
func (f *Fake) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}
