package model

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
)

const (
	// ModelFile and MetadataFile are the descriptor names under a base URL.
	ModelFile    = "model.onnx"
	MetadataFile = "metadata.json"
)

// Source says where the model and its metadata live. BaseURL, when set,
// wins over the local paths: both files are downloaded into CacheDir.
type Source struct {
	ModelPath     string
	MetadataPath  string
	BaseURL       string
	CacheDir      string
	SharedLibrary string
}

// Fetch downloads the model and metadata from baseURL into dir and returns
// their local paths.
func Fetch(ctx context.Context, client *http.Client, baseURL, dir string) (string, string, error) {
	if client == nil {
		client = http.DefaultClient
	}
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	base, err := url.Parse(baseURL)
	if err != nil {
		return "", "", fmt.Errorf("parse model url: %w", err)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", "", fmt.Errorf("create model cache dir: %w", err)
	}

	paths := make([]string, 0, 2)
	for _, name := range []string{ModelFile, MetadataFile} {
		dst := filepath.Join(dir, name)
		if err := download(ctx, client, base.JoinPath(name).String(), dst); err != nil {
			return "", "", err
		}
		paths = append(paths, dst)
	}
	return paths[0], paths[1], nil
}

func download(ctx context.Context, client *http.Client, src, dst string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, src, nil)
	if err != nil {
		return fmt.Errorf("build request for %s: %w", src, err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("fetch %s: %w", src, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("fetch %s: unexpected status %s", src, resp.Status)
	}

	tmp := dst + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("create %s: %w", tmp, err)
	}
	if _, err := io.Copy(f, resp.Body); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("write %s: %w", dst, err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("close %s: %w", dst, err)
	}
	if err := os.Rename(tmp, dst); err != nil {
		return fmt.Errorf("rename %s: %w", dst, err)
	}
	return nil
}

// Locate resolves src to local model and metadata paths, downloading them
// first when a base URL is configured.
func Locate(ctx context.Context, client *http.Client, src Source) (string, string, error) {
	if src.BaseURL == "" {
		if src.ModelPath == "" || src.MetadataPath == "" {
			return "", "", fmt.Errorf("model source: model and metadata paths are required")
		}
		return src.ModelPath, src.MetadataPath, nil
	}
	dir := src.CacheDir
	if dir == "" {
		dir = filepath.Join(os.TempDir(), "petface-model")
	}
	return Fetch(ctx, client, src.BaseURL, dir)
}
