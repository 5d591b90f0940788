package session

import (
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// Handle identifies the temporary copy of a selected image.
type Handle struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Size int64  `json:"size"`
	path string
}

// PreviewStore keeps at most one live preview file. Replacing the preview
// deletes the previous file before the new one is created.
type PreviewStore struct {
	dir      string
	maxBytes int64

	mu      sync.Mutex
	current *Handle
}

// NewPreviewStore stores previews under dir. Uploads larger than maxBytes
// are rejected; zero means no limit.
func NewPreviewStore(dir string, maxBytes int64) *PreviewStore {
	return &PreviewStore{dir: dir, maxBytes: maxBytes}
}

// Replace releases the current preview and stores r as the new one.
func (p *PreviewStore) Replace(r io.Reader, name string) (Handle, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.releaseLocked(); err != nil {
		return Handle{}, err
	}
	if err := os.MkdirAll(p.dir, 0o755); err != nil {
		return Handle{}, fmt.Errorf("create preview dir: %w", err)
	}

	id := uuid.NewString()
	path := filepath.Join(p.dir, id+strings.ToLower(filepath.Ext(name)))
	f, err := os.Create(path)
	if err != nil {
		return Handle{}, fmt.Errorf("create preview: %w", err)
	}

	src := r
	if p.maxBytes > 0 {
		src = io.LimitReader(r, p.maxBytes+1)
	}
	n, err := io.Copy(f, src)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err == nil && p.maxBytes > 0 && n > p.maxBytes {
		err = fmt.Errorf("image exceeds %d bytes", p.maxBytes)
	}
	if err != nil {
		os.Remove(path)
		return Handle{}, fmt.Errorf("store preview: %w", err)
	}

	p.current = &Handle{ID: id, Name: filepath.Base(name), Size: n, path: path}
	return *p.current, nil
}

// Current returns the live handle, if any.
func (p *PreviewStore) Current() (Handle, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.current == nil {
		return Handle{}, false
	}
	return *p.current, true
}

// Open opens the preview file for id. Only the live handle can be opened.
func (p *PreviewStore) Open(id string) (*os.File, Handle, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.current == nil || p.current.ID != id {
		return nil, Handle{}, ErrNotFound
	}
	f, err := os.Open(p.current.path)
	if err != nil {
		return nil, Handle{}, err
	}
	return f, *p.current, nil
}

// Decode decodes the image behind id.
func (p *PreviewStore) Decode(id string) (image.Image, error) {
	f, _, err := p.Open(id)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	return img, nil
}

// Release deletes the live preview. It is a no-op when there is none.
func (p *PreviewStore) Release() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.releaseLocked()
}

func (p *PreviewStore) releaseLocked() error {
	if p.current == nil {
		return nil
	}
	path := p.current.path
	p.current = nil
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("release preview: %w", err)
	}
	return nil
}
