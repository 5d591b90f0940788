package session

import (
	"context"
	"io"
	"sync"

	"github.com/Brownie44l1/petface/internal/board"
	"github.com/Brownie44l1/petface/internal/classify"
	"github.com/Brownie44l1/petface/internal/inference"
)

// ModelSource hands out the shared model, loading it on first use.
type ModelSource interface {
	Get(ctx context.Context) (inference.Predictor, error)
}

// Upload is the controller for the image-upload classifier. Every Select
// bumps a generation counter; only the newest selection may render.
type Upload struct {
	id      string
	models  ModelSource
	preview *PreviewStore
	opts    Options

	// replaceMu orders preview replacement against the generation check.
	replaceMu sync.Mutex

	mu     sync.Mutex
	gen    uint64
	status Status
	result classify.Result
	board  *board.Board
}

// NewUpload creates an upload session that keeps its preview in preview.
func NewUpload(id string, models ModelSource, preview *PreviewStore, opts Options) *Upload {
	return &Upload{
		id:      id,
		models:  models,
		preview: preview,
		opts:    opts,
		status:  StatusReady,
		result:  classify.Undecided,
	}
}

// ID returns the session identifier.
func (u *Upload) ID() string { return u.id }

// Select classifies the image read from r. Failures become a status and
// leave the last result untouched. If another Select or Reset happens before
// this one finishes, its outcome is dropped and ErrStale is returned.
func (u *Upload) Select(ctx context.Context, r io.Reader, name string) (View, error) {
	gen := u.begin()
	log := u.opts.logger().With("session", u.id, "generation", gen)

	u.setStatus(gen, StatusModelLoading)
	m, err := u.models.Get(ctx)
	if err != nil {
		return u.fail(gen, StatusModelError, err)
	}
	u.ensureBoard(m.Classes())

	u.setStatus(gen, StatusImageLoading)
	h, err := u.replacePreview(gen, r, name)
	if err != nil {
		return u.fail(gen, StatusDecodeError, err)
	}
	log.Debug("preview stored", "handle", h.ID, "bytes", h.Size)

	img, err := u.preview.Decode(h.ID)
	if err != nil {
		return u.fail(gen, StatusDecodeError, err)
	}

	u.setStatus(gen, StatusAnalyzing)
	preds, err := m.PredictImage(ctx, img)
	if err != nil {
		return u.fail(gen, StatusPredictError, err)
	}

	result := classify.Resolve(preds)
	u.mu.Lock()
	if gen != u.gen {
		u.mu.Unlock()
		log.Debug("dropping stale prediction")
		return u.View(), ErrStale
	}
	u.board.Update(preds)
	u.result = result
	u.status = StatusDone
	u.mu.Unlock()

	log.Info("image classified", "kind", result.Kind, "score", result.Score, "file", h.Name)
	return u.View(), nil
}

// Reset drops the preview and result and returns to the ready state.
// Selections still in flight are superseded.
func (u *Upload) Reset() (View, error) {
	u.mu.Lock()
	u.gen++
	u.status = StatusReady
	u.result = classify.Undecided
	if u.board != nil {
		u.board.Reset()
	}
	u.mu.Unlock()

	err := u.preview.Release()
	return u.View(), err
}

// Close supersedes in-flight work and releases the preview.
func (u *Upload) Close() error {
	u.mu.Lock()
	u.gen++
	u.mu.Unlock()
	return u.preview.Release()
}

// View returns what the session currently shows.
func (u *Upload) View() View {
	u.mu.Lock()
	v := newView(u.status, u.result, u.board)
	u.mu.Unlock()
	if h, ok := u.preview.Current(); ok {
		v.Preview = h.ID
	}
	return v
}

// Preview returns the session's preview store.
func (u *Upload) Preview() *PreviewStore { return u.preview }

func (u *Upload) begin() uint64 {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.gen++
	return u.gen
}

func (u *Upload) replacePreview(gen uint64, r io.Reader, name string) (Handle, error) {
	u.replaceMu.Lock()
	defer u.replaceMu.Unlock()
	u.mu.Lock()
	current := gen == u.gen
	u.mu.Unlock()
	if !current {
		return Handle{}, ErrStale
	}
	return u.preview.Replace(r, name)
}

func (u *Upload) setStatus(gen uint64, st Status) {
	u.mu.Lock()
	defer u.mu.Unlock()
	if gen == u.gen {
		u.status = st
	}
}

func (u *Upload) ensureBoard(classes []string) {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.board == nil {
		u.board = board.New(classes)
	}
}

func (u *Upload) fail(gen uint64, st Status, err error) (View, error) {
	u.mu.Lock()
	stale := gen != u.gen
	if !stale {
		u.status = st
	}
	u.mu.Unlock()
	if stale {
		return u.View(), ErrStale
	}

	u.opts.logger().Warn("upload failed", "session", u.id, "status", st.Code(), "error", err)
	serr := &StatusError{Status: st, Err: err}
	u.opts.report(serr)
	return u.View(), serr
}
