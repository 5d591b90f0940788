// Package camera provides frame sources for the live classifier.
package camera

import (
	"context"
	"errors"
	"image"
	_ "image/jpeg"
	_ "image/png"
)

// ErrStopped is returned by Frame when the device is not running.
var ErrStopped = errors.New("camera: device not running")

// Device is a capture source with an explicit lifecycle. Stop must be safe to
// call more than once.
type Device interface {
	Start(ctx context.Context) error
	Frame(ctx context.Context) (image.Image, error)
	Stop() error
}
