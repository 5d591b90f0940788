// Package report forwards handled errors to Sentry when a DSN is set.
package report

import (
	"fmt"
	"time"

	"github.com/getsentry/sentry-go"
)

// Reporter sends errors to Sentry. A nil or disabled Reporter drops them.
type Reporter struct {
	enabled bool
}

// New initializes Sentry for dsn. An empty dsn returns a disabled reporter.
func New(dsn, release string) (*Reporter, error) {
	if dsn == "" {
		return &Reporter{}, nil
	}
	if err := sentry.Init(sentry.ClientOptions{
		Dsn:     dsn,
		Release: release,
	}); err != nil {
		return nil, fmt.Errorf("init sentry: %w", err)
	}
	return &Reporter{enabled: true}, nil
}

// Enabled reports whether errors are being sent.
func (r *Reporter) Enabled() bool {
	return r != nil && r.enabled
}

// Capture sends err.
func (r *Reporter) Capture(err error) {
	if !r.Enabled() || err == nil {
		return
	}
	sentry.CaptureException(err)
}

// Flush waits up to timeout for queued events.
func (r *Reporter) Flush(timeout time.Duration) {
	if r.Enabled() {
		sentry.Flush(timeout)
	}
}
