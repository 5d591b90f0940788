package session

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/Brownie44l1/petface/internal/board"
	"github.com/Brownie44l1/petface/internal/classify"
)

var (
	// ErrStale means a newer selection or a reset superseded this one; its
	// outcome was dropped.
	ErrStale = errors.New("session: superseded by a newer selection")
	// ErrNotFound is returned for unknown sessions or preview handles.
	ErrNotFound = errors.New("session: not found")
)

// StatusError is a failure that has already been turned into a status line.
type StatusError struct {
	Status Status
	Err    error
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: %v", e.Status.Code(), e.Err)
}

func (e *StatusError) Unwrap() error { return e.Err }

// View is a point-in-time copy of what a session shows.
type View struct {
	Status   string            `json:"status"`
	Message  string            `json:"message"`
	Result   classify.Result   `json:"result"`
	Headline classify.Headline `json:"headline"`
	Rows     []board.Row       `json:"rows"`
	Preview  string            `json:"preview,omitempty"`
	Frames   uint64            `json:"frames,omitempty"`
}

func newView(status Status, result classify.Result, b *board.Board) View {
	v := View{
		Status:   status.Code(),
		Message:  status.Message(),
		Result:   result,
		Headline: classify.Describe(result),
		Rows:     []board.Row{},
	}
	if b != nil {
		v.Rows = b.Rows()
	}
	return v
}

// Options carries the ambient dependencies of a session.
type Options struct {
	Logger *slog.Logger
	// OnError receives every failure that was turned into a status.
	OnError func(error)
}

func (o Options) logger() *slog.Logger {
	if o.Logger == nil {
		return slog.Default()
	}
	return o.Logger
}

func (o Options) report(err error) {
	if o.OnError != nil {
		o.OnError(err)
	}
}
