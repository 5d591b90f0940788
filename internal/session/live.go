package session

import (
	"context"
	"sync"
	"time"

	"github.com/Brownie44l1/petface/internal/board"
	"github.com/Brownie44l1/petface/internal/camera"
	"github.com/Brownie44l1/petface/internal/classify"
	"github.com/Brownie44l1/petface/internal/inference"
)

// DefaultFrameInterval paces the live loop at roughly 30 frames a second.
const DefaultFrameInterval = time.Second / 30

// Live is the controller for the camera classifier. While running, one
// goroutine captures a frame, waits for its prediction and renders it, once
// per frame tick. Predictions never overlap; slow ones drop ticks.
type Live struct {
	models   ModelSource
	device   camera.Device
	interval time.Duration
	opts     Options

	// lifecycle serializes Start and Stop.
	lifecycle sync.Mutex
	cancel    context.CancelFunc
	done      chan struct{}

	mu     sync.Mutex
	status Status
	result classify.Result
	board  *board.Board
	frames uint64
}

// NewLive creates a stopped live session reading from device.
func NewLive(models ModelSource, device camera.Device, interval time.Duration, opts Options) *Live {
	if interval <= 0 {
		interval = DefaultFrameInterval
	}
	return &Live{
		models:   models,
		device:   device,
		interval: interval,
		opts:     opts,
		status:   StatusStopped,
		result:   classify.Undecided,
	}
}

// Start loads the model, starts the camera and begins the frame loop. It is
// a no-op while the loop is running.
func (l *Live) Start(ctx context.Context) (View, error) {
	l.lifecycle.Lock()
	defer l.lifecycle.Unlock()

	if l.runningLocked() {
		return l.View(), nil
	}
	// A loop that ended on an error has already stopped the device.
	if l.cancel != nil {
		l.cancel()
	}
	l.cancel, l.done = nil, nil

	l.setStatus(StatusCameraStarting)
	m, err := l.models.Get(ctx)
	if err != nil {
		return l.fail(StatusModelError, err)
	}
	l.mu.Lock()
	if l.board == nil {
		l.board = board.New(m.Classes())
	}
	l.frames = 0
	l.mu.Unlock()

	if err := l.device.Start(ctx); err != nil {
		return l.fail(StatusCameraError, err)
	}

	loopCtx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	l.cancel, l.done = cancel, done
	l.setStatus(StatusLive)
	l.opts.logger().Info("live session started", "interval", l.interval)

	go l.loop(loopCtx, m, done)
	return l.View(), nil
}

// Stop ends the frame loop, waits for it to exit and stops the camera.
// Calling it again, or before Start, does nothing. Once Stop returns no
// further frames are read and no further predictions run.
func (l *Live) Stop() (View, error) {
	l.lifecycle.Lock()
	defer l.lifecycle.Unlock()

	if l.done == nil {
		return l.View(), nil
	}
	l.cancel()
	<-l.done
	l.cancel, l.done = nil, nil

	err := l.device.Stop()
	l.mu.Lock()
	if !l.status.Failed() {
		l.status = StatusStopped
	}
	frames := l.frames
	l.mu.Unlock()
	l.opts.logger().Info("live session stopped", "frames", frames)
	return l.View(), err
}

// Running reports whether the frame loop is active.
func (l *Live) Running() bool {
	l.lifecycle.Lock()
	defer l.lifecycle.Unlock()
	return l.runningLocked()
}

// View returns what the session currently shows.
func (l *Live) View() View {
	l.mu.Lock()
	defer l.mu.Unlock()
	v := newView(l.status, l.result, l.board)
	v.Frames = l.frames
	return v
}

func (l *Live) runningLocked() bool {
	if l.done == nil {
		return false
	}
	select {
	case <-l.done:
		return false
	default:
		return true
	}
}

func (l *Live) loop(ctx context.Context, m inference.Predictor, done chan struct{}) {
	defer close(done)
	ticker := time.NewTicker(l.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		frame, err := l.device.Frame(ctx)
		if ctx.Err() != nil {
			return
		}
		if err != nil {
			l.abort(StatusCameraError, err)
			return
		}

		preds, err := m.PredictImage(ctx, frame)
		if ctx.Err() != nil {
			return
		}
		if err != nil {
			l.abort(StatusPredictError, err)
			return
		}

		result := classify.Resolve(preds)
		l.mu.Lock()
		l.board.Update(preds)
		l.result = result
		l.frames++
		l.mu.Unlock()
	}
}

// abort ends the loop from inside after a failure. There is no automatic
// retry; the user has to start again.
func (l *Live) abort(st Status, err error) {
	l.setStatus(st)
	if serr := l.device.Stop(); serr != nil {
		l.opts.logger().Warn("stop camera", "error", serr)
	}
	l.opts.logger().Warn("live session failed", "status", st.Code(), "error", err)
	l.opts.report(&StatusError{Status: st, Err: err})
}

func (l *Live) fail(st Status, err error) (View, error) {
	l.setStatus(st)
	l.opts.logger().Warn("live session start failed", "status", st.Code(), "error", err)
	serr := &StatusError{Status: st, Err: err}
	l.opts.report(serr)
	return l.View(), serr
}

func (l *Live) setStatus(st Status) {
	l.mu.Lock()
	l.status = st
	l.mu.Unlock()
}
