package camera

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	img.Set(0, 0, color.White)
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestSnapshotLifecycle(t *testing.T) {
	frame := pngBytes(t, 4, 3)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		w.Write(frame)
	}))
	defer srv.Close()

	cam := NewSnapshot(srv.URL, srv.Client())
	ctx := context.Background()

	_, err := cam.Frame(ctx)
	assert.ErrorIs(t, err, ErrStopped)

	require.NoError(t, cam.Start(ctx))
	img, err := cam.Frame(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, img.Bounds().Dx())

	require.NoError(t, cam.Stop())
	require.NoError(t, cam.Stop())
	_, err = cam.Frame(ctx)
	assert.ErrorIs(t, err, ErrStopped)
}

func TestSnapshotStartFailsWhenUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "forbidden", http.StatusForbidden)
	}))
	defer srv.Close()

	cam := NewSnapshot(srv.URL, srv.Client())
	assert.Error(t, cam.Start(context.Background()))
}

func TestDirCyclesImages(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.png"), pngBytes(t, 1, 1), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.png"), pngBytes(t, 2, 2), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("skip"), 0o644))

	cam := NewDir(dir)
	ctx := context.Background()
	require.NoError(t, cam.Start(ctx))

	var widths []int
	for i := 0; i < 3; i++ {
		img, err := cam.Frame(ctx)
		require.NoError(t, err)
		widths = append(widths, img.Bounds().Dx())
	}
	assert.Equal(t, []int{1, 2, 1}, widths)

	require.NoError(t, cam.Stop())
	_, err := cam.Frame(ctx)
	assert.ErrorIs(t, err, ErrStopped)
}

func TestDirStartFailsWithoutImages(t *testing.T) {
	assert.Error(t, NewDir(t.TempDir()).Start(context.Background()))
}
