package capture

import (
	"bufio"
	"context"
	"io"
	"os"
	"time"

	"codeberg.org/mutker/camvitals/internal/errors"
)

const rawReadBuffer = 1 << 20

// RawReader reads a stream of tightly packed RGBA frames of a fixed size,
// such as the output of `ffmpeg -f rawvideo -pix_fmt rgba -`. Each frame is
// stamped with the monotonic clock when it has been fully read. One frame
// buffer is reused for the whole stream.
type RawReader struct {
	Path          string
	Width, Height int

	now    func() time.Time
	file   io.ReadCloser
	reader *bufio.Reader
	frame  Frame
	seq    uint64
}

func NewRawReader(path string, width, height int) *RawReader {
	return &RawReader{Path: path, Width: width, Height: height, now: time.Now}
}

// Open opens selector, or Path when selector is empty. "-" reads stdin.
func (r *RawReader) Open(_ context.Context, selector string) error {
	errFactory := errors.New()

	if r.Width <= 0 || r.Height <= 0 {
		return errFactory.WithData(errors.ErrInvalidArgument, struct {
			Width  int
			Height int
		}{r.Width, r.Height})
	}

	path := selector
	if path == "" {
		path = r.Path
	}

	switch path {
	case "", "-":
		r.file = io.NopCloser(os.Stdin)
	default:
		f, err := os.Open(path)
		if err != nil {
			return errFactory.Wrap(errors.ErrAcquisition, err)
		}
		r.file = f
	}

	r.reader = bufio.NewReaderSize(r.file, rawReadBuffer)
	r.seq = 0
	r.resize(r.Width, r.Height)

	return nil
}

// openReader attaches an already open stream.
func (r *RawReader) openReader(rc io.ReadCloser) {
	r.file = rc
	r.reader = bufio.NewReaderSize(rc, rawReadBuffer)
	r.seq = 0
	r.resize(r.Width, r.Height)
}

func (r *RawReader) resize(w, h int) {
	size := w * h * bytesPerPixel
	if cap(r.frame.Pix) < size {
		r.frame.Pix = make([]byte, size)
	}
	r.frame.Pix = r.frame.Pix[:size]
	r.frame.Width, r.frame.Height, r.frame.Stride = w, h, w*bytesPerPixel
}

func (r *RawReader) Next(ctx context.Context) (*Frame, error) {
	if r.reader == nil {
		return nil, errNotOpen()
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if _, err := io.ReadFull(r.reader, r.frame.Pix); err != nil {
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return nil, ErrExhausted
		}
		return nil, errors.New().Wrap(errors.ErrInvalidFrame, err)
	}

	now := r.now
	if now == nil {
		now = time.Now
	}
	r.frame.Timestamp = now()
	r.frame.Seq = r.seq
	r.seq++

	return &r.frame, nil
}

func (r *RawReader) Close() error {
	if r.file == nil {
		return nil
	}
	err := r.file.Close()
	r.file = nil
	r.reader = nil
	if err != nil {
		return errors.New().Wrap(errors.ErrShutdownFailed, err)
	}
	return nil
}
