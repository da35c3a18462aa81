// Package capture is the frame-source boundary of the pipeline. Sources
// hand out RGBA frames stamped with a monotonic capture time; the pipeline
// makes no assumption about frame rate or resolution.
package capture

import (
	"context"
	"time"

	"codeberg.org/mutker/camvitals/internal/errors"
)

const bytesPerPixel = 4

// Frame is one RGBA picture. Pix is owned by the source and is only valid
// until the next call to Next.
type Frame struct {
	Pix       []byte
	Width     int
	Height    int
	Stride    int
	Timestamp time.Time
	Seq       uint64
}

// Source produces frames on demand.
type Source interface {
	// Open acquires the device or stream named by selector. An empty
	// selector means the source's configured default.
	Open(ctx context.Context, selector string) error

	// Next returns the next frame. It returns an error coded
	// errors.ErrSourceExhausted once the source has no more frames.
	Next(ctx context.Context) (*Frame, error)

	Close() error
}

// ErrExhausted signals the end of a finite source.
var ErrExhausted = errors.New().New(errors.ErrSourceExhausted)

func errNotOpen() error {
	return errors.New().WithMessage(errors.ErrInvalidOperation, "source is not open")
}
