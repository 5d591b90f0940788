package camera

import (
	"context"
	"fmt"
	"image"
	"net/http"
	"sync"
)

// Snapshot reads frames from an HTTP endpoint that returns a single JPEG or
// PNG per request, as most IP cameras expose.
type Snapshot struct {
	url    string
	client *http.Client

	mu      sync.Mutex
	running bool
}

// NewSnapshot creates a snapshot camera for url.
func NewSnapshot(url string, client *http.Client) *Snapshot {
	if client == nil {
		client = http.DefaultClient
	}
	return &Snapshot{url: url, client: client}
}

// Start grabs one frame to check the camera is reachable.
func (s *Snapshot) Start(ctx context.Context) error {
	if _, err := s.fetch(ctx); err != nil {
		return fmt.Errorf("start camera: %w", err)
	}
	s.mu.Lock()
	s.running = true
	s.mu.Unlock()
	return nil
}

// Frame fetches the current frame.
func (s *Snapshot) Frame(ctx context.Context) (image.Image, error) {
	s.mu.Lock()
	running := s.running
	s.mu.Unlock()
	if !running {
		return nil, ErrStopped
	}
	return s.fetch(ctx)
}

// Stop marks the camera stopped.
func (s *Snapshot) Stop() error {
	s.mu.Lock()
	s.running = false
	s.mu.Unlock()
	return nil
}

func (s *Snapshot) fetch(ctx context.Context) (image.Image, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("snapshot %s: %s", s.url, resp.Status)
	}
	img, _, err := image.Decode(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	return img, nil
}
