package session

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"
)

// Registry tracks the open upload sessions, one per client.
type Registry struct {
	models   ModelSource
	root     string
	maxBytes int64
	opts     Options

	mu       sync.Mutex
	sessions map[string]*Upload
}

// NewRegistry keeps each session's preview under its own directory in root.
func NewRegistry(models ModelSource, root string, maxBytes int64, opts Options) *Registry {
	return &Registry{
		models:   models,
		root:     root,
		maxBytes: maxBytes,
		opts:     opts,
		sessions: make(map[string]*Upload),
	}
}

// Create opens a new upload session.
func (r *Registry) Create() (*Upload, error) {
	id := uuid.NewString()
	dir := filepath.Join(r.root, id)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create session dir: %w", err)
	}
	u := NewUpload(id, r.models, NewPreviewStore(dir, r.maxBytes), r.opts)

	r.mu.Lock()
	r.sessions[id] = u
	r.mu.Unlock()
	r.opts.logger().Debug("session created", "session", id)
	return u, nil
}

// Get looks up a session.
func (r *Registry) Get(id string) (*Upload, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	return u, nil
}

// Delete closes a session and removes its files.
func (r *Registry) Delete(id string) error {
	r.mu.Lock()
	u, ok := r.sessions[id]
	delete(r.sessions, id)
	r.mu.Unlock()
	if !ok {
		return ErrNotFound
	}
	return r.close(u)
}

// Len reports how many sessions are open.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// Close closes every session.
func (r *Registry) Close() error {
	r.mu.Lock()
	sessions := r.sessions
	r.sessions = make(map[string]*Upload)
	r.mu.Unlock()

	var first error
	for _, u := range sessions {
		if err := r.close(u); err != nil && first == nil {
			first = err
		}
	}
	return first
}

func (r *Registry) close(u *Upload) error {
	err := u.Close()
	if rerr := os.RemoveAll(filepath.Join(r.root, u.ID())); rerr != nil && err == nil {
		err = rerr
	}
	return err
}
