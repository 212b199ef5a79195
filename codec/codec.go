// Package codec is the boundary between the PDF/raster format engine and
// pixel compression. The reader and writer only move opaque strip payloads;
// a Codec turns packed pixels into a payload and back.
//
// Default returns the built-in implementation: Flate and CCITT Group 4 come
// from internal/filters and JPEG from image/jpeg.
package codec

import (
	"errors"
	"fmt"

	"github.com/tsawler/pdfraster/core"
	"github.com/tsawler/pdfraster/internal/filters"
	"github.com/tsawler/pdfraster/model"
)

// DefaultJPEGQuality is used when Params.Quality is zero.
const DefaultJPEGQuality = 85

// ErrUnsupported is returned for a format/compression pair a codec cannot
// handle.
var ErrUnsupported = errors.New("unsupported format and compression")

// Params describes the pixels on either side of the boundary. Pixels are
// packed rows as described by model.PixelFormat.
type Params struct {
	Width       int
	Height      int
	Format      model.PixelFormat
	Compression model.Compression
	Quality     int  // JPEG quality 1..100
	K           int  // CCITT K; the writer always uses -1
	BlackIs1    bool // CCITT /BlackIs1
	Predictor   int  // Flate /Predictor, 0 or 1 for none
}

// Codec encodes and decodes strip payloads.
type Codec interface {
	Encode(pixels []byte, p Params) ([]byte, error)
	Decode(data []byte, p Params) ([]byte, error)
}

// Validate reports whether PDF/raster allows the pair: CCITT requires
// bitonal pixels and JPEG only carries 8-bit samples.
func Validate(format model.PixelFormat, compression model.Compression) error {
	switch {
	case compression == model.CompressionCCITTG4 && format != model.FormatBitonal:
		return fmt.Errorf("%w: ccitt requires bitonal pixels, got %s", core.ErrInvalidCombination, format)
	case compression == model.CompressionJPEG && format.BitsPerComponent() != 8:
		return fmt.Errorf("%w: jpeg cannot encode %s pixels", core.ErrInvalidCombination, format)
	}
	return nil
}

type defaultCodec struct{}

// Default returns the built-in codec.
func Default() Codec {
	return defaultCodec{}
}

func (defaultCodec) Encode(pixels []byte, p Params) ([]byte, error) {
	if err := checkParams(p); err != nil {
		return nil, err
	}
	want := p.Format.ImageBytes(p.Width, p.Height)
	if len(pixels) < want {
		return nil, fmt.Errorf("pixel buffer has %d bytes, need %d", len(pixels), want)
	}
	pixels = pixels[:want]

	switch p.Compression {
	case model.CompressionUncompressed:
		return pixels, nil
	case model.CompressionFlate:
		return filters.FlateEncode(pixels, 0)
	case model.CompressionCCITTG4:
		return filters.CCITTFaxEncode(pixels, p.Width, p.Height, p.BlackIs1)
	case model.CompressionJPEG:
		return encodeJPEG(pixels, p)
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupported, p.Compression)
}

func (defaultCodec) Decode(data []byte, p Params) ([]byte, error) {
	if err := checkParams(p); err != nil {
		return nil, err
	}

	var out []byte
	var err error
	switch p.Compression {
	case model.CompressionUncompressed:
		out = data
	case model.CompressionFlate:
		out, err = filters.FlateDecode(data, flateParams(p))
	case model.CompressionCCITTG4:
		out, err = filters.CCITTFaxDecode(data, filters.Params{
			"K":        p.K,
			"Columns":  p.Width,
			"Rows":     p.Height,
			"BlackIs1": p.BlackIs1,
		})
	case model.CompressionJPEG:
		out, err = decodeJPEG(data, p)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupported, p.Compression)
	}
	if err != nil {
		return nil, err
	}

	want := p.Format.ImageBytes(p.Width, p.Height)
	if len(out) < want {
		return nil, fmt.Errorf("decoded %d bytes, need %d", len(out), want)
	}
	return out[:want], nil
}

func checkParams(p Params) error {
	if !p.Format.Valid() {
		return fmt.Errorf("%w: pixel format %s", ErrUnsupported, p.Format)
	}
	if p.Width <= 0 || p.Height <= 0 {
		return fmt.Errorf("invalid image size %dx%d", p.Width, p.Height)
	}
	return Validate(p.Format, p.Compression)
}

func flateParams(p Params) filters.Params {
	if p.Predictor <= 1 {
		return nil
	}
	return filters.Params{
		"Predictor":        p.Predictor,
		"Columns":          p.Width,
		"Colors":           p.Format.Components(),
		"BitsPerComponent": p.Format.BitsPerComponent(),
	}
}
