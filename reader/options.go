package reader

import (
	"github.com/tsawler/pdfraster/codec"
	"github.com/tsawler/pdfraster/core"
	"github.com/tsawler/pdfraster/observability"
)

// Option configures a Reader.
type Option func(*Reader)

// WithErrorHandler receives every problem found in the file, including
// warnings that do not stop the operation.
func WithErrorHandler(h core.ErrorHandler) Option {
	return func(r *Reader) {
		r.handler = h
	}
}

// WithLogger sets the logger. Warnings and informational reports go to
// Debug, everything more severe to Warn.
func WithLogger(l observability.Logger) Option {
	return func(r *Reader) {
		r.log = observability.OrNop(l)
	}
}

// WithCodec replaces the codec used to decode strips.
func WithCodec(c codec.Codec) Option {
	return func(r *Reader) {
		if c != nil {
			r.codec = c
		}
	}
}
