package inference

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"golang.org/x/sync/singleflight"
)

// Loader loads the model on first use and hands the same instance to every
// later caller. Concurrent first calls share one load. A failed load is not
// remembered.
type Loader struct {
	open   OpenFunc
	logger *slog.Logger
	group  singleflight.Group

	mu    sync.RWMutex
	model Predictor
}

// NewLoader wraps open in a memoizing loader.
func NewLoader(open OpenFunc, logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{open: open, logger: logger}
}

// Get returns the loaded model, loading it if needed. The load itself is not
// cancelled when ctx is, so other waiters still get the model.
func (l *Loader) Get(ctx context.Context) (Predictor, error) {
	if m := l.Loaded(); m != nil {
		return m, nil
	}

	ch := l.group.DoChan("model", func() (any, error) {
		if m := l.Loaded(); m != nil {
			return m, nil
		}
		l.logger.Info("loading model")
		m, err := l.open(context.WithoutCancel(ctx))
		if err != nil {
			l.logger.Error("model load failed", "error", err)
			return nil, fmt.Errorf("load model: %w", err)
		}
		l.mu.Lock()
		l.model = m
		l.mu.Unlock()
		l.logger.Info("model loaded", "classes", m.Classes())
		return m, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(Predictor), nil
	}
}

// Loaded returns the model if it has been loaded, nil otherwise.
func (l *Loader) Loaded() Predictor {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.model
}

// Close releases the model when it holds resources.
func (l *Loader) Close() error {
	l.mu.Lock()
	m := l.model
	l.model = nil
	l.mu.Unlock()
	if c, ok := m.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
