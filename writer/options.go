package writer

import (
	"io"
	"time"

	"github.com/tsawler/pdfraster/codec"
	"github.com/tsawler/pdfraster/observability"
)

// Option configures a Writer.
type Option func(*Writer)

// WithCodec replaces the codec used by WriteStrip.
func WithCodec(c codec.Codec) Option {
	return func(w *Writer) {
		if c != nil {
			w.codec = c
		}
	}
}

// WithLogger sets the logger; page and strip emission is logged at Debug.
func WithLogger(l observability.Logger) Option {
	return func(w *Writer) {
		w.log = observability.OrNop(l)
	}
}

// WithClock sets the time source for /CreationDate and the file ID.
func WithClock(now func() time.Time) Option {
	return func(w *Writer) {
		if now != nil {
			w.now = now
		}
	}
}

// WithIDSource sets the source of the random bytes mixed into the file ID.
func WithIDSource(r io.Reader) Option {
	return func(w *Writer) {
		if r != nil {
			w.random = r
		}
	}
}
