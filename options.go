package pdfraster

import (
	"github.com/tsawler/pdfraster/codec"
	"github.com/tsawler/pdfraster/observability"
)

// ExtractOptions holds configuration for reading.
type ExtractOptions struct {
	// Page selection (1-indexed in API, stored as-is)
	pages []int

	// OCR language(s) for Text, "+" separated
	language string

	logger observability.Logger
	codec  codec.Codec
}

// defaultOptions returns the default extraction options.
func defaultOptions() ExtractOptions {
	return ExtractOptions{
		pages:    nil, // nil means all pages
		language: "eng",
	}
}

// clone creates a deep copy of ExtractOptions.
func (o ExtractOptions) clone() ExtractOptions {
	newOpts := o
	if o.pages != nil {
		newOpts.pages = make([]int, len(o.pages))
		copy(newOpts.pages, o.pages)
	}
	return newOpts
}
