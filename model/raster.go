package model

import "fmt"

// PixelFormat identifies the sample layout of a raster image.
type PixelFormat int

const (
	FormatNull    PixelFormat = iota // unset or invalid
	FormatBitonal                    // 1 bit per pixel, 0 = black
	FormatGray8                      // 8 bits per pixel, 0 = black
	FormatGray16                     // 16 bits per pixel, big-endian, 0 = black
	FormatRGB24                      // 3 x 8 bits per pixel
	FormatRGB48                      // 3 x 16 bits per pixel, big-endian
)

// String returns the format name.
func (f PixelFormat) String() string {
	switch f {
	case FormatBitonal:
		return "bitonal"
	case FormatGray8:
		return "gray8"
	case FormatGray16:
		return "gray16"
	case FormatRGB24:
		return "rgb24"
	case FormatRGB48:
		return "rgb48"
	case FormatNull:
		return "null"
	default:
		return fmt.Sprintf("PixelFormat(%d)", int(f))
	}
}

// Valid reports whether f is one of the five writable formats.
func (f PixelFormat) Valid() bool {
	return f >= FormatBitonal && f <= FormatRGB48
}

// BitsPerComponent returns 1, 8 or 16.
func (f PixelFormat) BitsPerComponent() int {
	switch f {
	case FormatBitonal:
		return 1
	case FormatGray16, FormatRGB48:
		return 16
	default:
		return 8
	}
}

// Components returns 3 for RGB formats and 1 otherwise.
func (f PixelFormat) Components() int {
	if f == FormatRGB24 || f == FormatRGB48 {
		return 3
	}
	return 1
}

// IsGray reports whether the format has a single component.
func (f PixelFormat) IsGray() bool {
	return f == FormatBitonal || f == FormatGray8 || f == FormatGray16
}

// RowBytes returns the size of one packed row of width pixels. Rows are
// padded to a whole byte.
func (f PixelFormat) RowBytes(width int) int {
	return (width*f.BitsPerComponent()*f.Components() + 7) / 8
}

// ImageBytes returns the size of width x height packed pixels.
func (f PixelFormat) ImageBytes(width, height int) int {
	return f.RowBytes(width) * height
}

// FormatFor maps a colorspace family and bit depth to a pixel format.
// It returns FormatNull for combinations PDF/raster does not allow.
func FormatFor(gray bool, bpc int) PixelFormat {
	switch {
	case gray && bpc == 1:
		return FormatBitonal
	case gray && bpc == 8:
		return FormatGray8
	case gray && bpc == 16:
		return FormatGray16
	case !gray && bpc == 8:
		return FormatRGB24
	case !gray && bpc == 16:
		return FormatRGB48
	}
	return FormatNull
}

// Compression identifies how strip data is encoded.
type Compression int

const (
	CompressionNull         Compression = iota // unset or invalid
	CompressionUncompressed                    // no /Filter
	CompressionJPEG                            // DCTDecode
	CompressionCCITTG4                         // CCITTFaxDecode, K -1
	CompressionFlate                           // FlateDecode
)

// String returns the compression name.
func (c Compression) String() string {
	switch c {
	case CompressionUncompressed:
		return "uncompressed"
	case CompressionJPEG:
		return "jpeg"
	case CompressionCCITTG4:
		return "ccitt-g4"
	case CompressionFlate:
		return "flate"
	case CompressionNull:
		return "null"
	default:
		return fmt.Sprintf("Compression(%d)", int(c))
	}
}

// FilterName returns the PDF filter name for c, or "" when no filter applies.
func (c Compression) FilterName() string {
	switch c {
	case CompressionJPEG:
		return "DCTDecode"
	case CompressionCCITTG4:
		return "CCITTFaxDecode"
	case CompressionFlate:
		return "FlateDecode"
	}
	return ""
}

// CompressionForFilter maps a /Filter name (long or abbreviated) to a
// compression. An empty name means uncompressed.
func CompressionForFilter(name string) Compression {
	switch name {
	case "":
		return CompressionUncompressed
	case "DCTDecode", "DCT":
		return CompressionJPEG
	case "CCITTFaxDecode", "CCF":
		return CompressionCCITTG4
	case "FlateDecode", "Fl":
		return CompressionFlate
	}
	return CompressionNull
}
