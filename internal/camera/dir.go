package camera

import (
	"context"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
)

// Dir plays back the images in a directory in name order, looping forever.
type Dir struct {
	path string

	mu      sync.Mutex
	files   []string
	next    int
	running bool
}

// NewDir creates a playback device for the images under path.
func NewDir(path string) *Dir {
	return &Dir{path: path}
}

// Start lists the playable images. It fails when there are none.
func (d *Dir) Start(_ context.Context) error {
	entries, err := os.ReadDir(d.path)
	if err != nil {
		return fmt.Errorf("start camera: %w", err)
	}
	var files []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(e.Name())) {
		case ".jpg", ".jpeg", ".png":
			files = append(files, filepath.Join(d.path, e.Name()))
		}
	}
	if len(files) == 0 {
		return fmt.Errorf("start camera: no images in %s", d.path)
	}
	sort.Strings(files)

	d.mu.Lock()
	defer d.mu.Unlock()
	d.files = files
	d.next = 0
	d.running = true
	return nil
}

// Frame decodes the next image.
func (d *Dir) Frame(ctx context.Context) (image.Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	d.mu.Lock()
	if !d.running {
		d.mu.Unlock()
		return nil, ErrStopped
	}
	path := d.files[d.next]
	d.next = (d.next + 1) % len(d.files)
	d.mu.Unlock()

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", filepath.Base(path), err)
	}
	return img, nil
}

// Stop ends playback.
func (d *Dir) Stop() error {
	d.mu.Lock()
	d.running = false
	d.mu.Unlock()
	return nil
}
