package session

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"io"
	"log/slog"
	"os"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Brownie44l1/petface/internal/classify"
	"github.com/Brownie44l1/petface/internal/inference"
	"github.com/Brownie44l1/petface/internal/inference/inferencetest"
)

var (
	classes  = []string{"강아지", "고양이"}
	dogPreds = []classify.Prediction{
		{ClassName: "강아지", Probability: 0.92},
		{ClassName: "고양이", Probability: 0.08},
	}
	catPreds = []classify.Prediction{
		{ClassName: "강아지", Probability: 0.1},
		{ClassName: "고양이", Probability: 0.9},
	}
)

func quietOptions() Options {
	return Options{Logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
}

func loaderFor(p inference.Predictor) *inference.Loader {
	return inference.NewLoader(func(context.Context) (inference.Predictor, error) {
		return p, nil
	}, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func newFake(preds ...classify.Prediction) *inferencetest.Fake {
	return inferencetest.New(classes, preds...)
}

func pngReader(t *testing.T) io.Reader {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	img.Set(1, 1, color.RGBA{R: 200, A: 255})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return &buf
}

func countFiles(t *testing.T, dir string) int {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if errors.Is(err, os.ErrNotExist) {
		return 0
	}
	require.NoError(t, err)
	return len(entries)
}

// fakeDevice is a camera that serves a blank frame and counts lifecycle calls.
type fakeDevice struct {
	mu       sync.Mutex
	running  bool
	starts   int
	stops    int
	frames   int
	startErr error
}

func (d *fakeDevice) Start(context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.startErr != nil {
		return d.startErr
	}
	d.starts++
	d.running = true
	return nil
}

func (d *fakeDevice) Frame(ctx context.Context) (image.Image, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.running {
		return nil, errors.New("fake camera stopped")
	}
	d.frames++
	return image.NewRGBA(image.Rect(0, 0, 4, 4)), nil
}

func (d *fakeDevice) Stop() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stops++
	d.running = false
	return nil
}

func (d *fakeDevice) counts() (starts, stops, frames int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.starts, d.stops, d.frames
}
