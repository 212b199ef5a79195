// Package format identifies the files pdfraster can read or convert:
// PDF/raster documents, plain PDF, and the image formats accepted as
// conversion input.
package format

import (
	"bytes"
	"io"
	"path/filepath"
	"strings"

	"github.com/tsawler/pdfraster/reader"
)

// Format represents a recognized file format.
type Format int

const (
	// Unknown indicates an unrecognized format.
	Unknown Format = iota
	// PDF indicates a PDF document without a PDF/raster tag.
	PDF
	// PDFRaster indicates a PDF/raster document.
	PDFRaster
	// PNG indicates a PNG image.
	PNG
	// JPEG indicates a JPEG image.
	JPEG
	// TIFF indicates a TIFF image.
	TIFF
	// BMP indicates a Windows bitmap.
	BMP
	// GIF indicates a GIF image.
	GIF
)

// String returns the string representation of the format.
func (f Format) String() string {
	switch f {
	case PDF:
		return "PDF"
	case PDFRaster:
		return "PDF/raster"
	case PNG:
		return "PNG"
	case JPEG:
		return "JPEG"
	case TIFF:
		return "TIFF"
	case BMP:
		return "BMP"
	case GIF:
		return "GIF"
	default:
		return "Unknown"
	}
}

// Extension returns the typical file extension for the format.
func (f Format) Extension() string {
	switch f {
	case PDF, PDFRaster:
		return ".pdf"
	case PNG:
		return ".png"
	case JPEG:
		return ".jpg"
	case TIFF:
		return ".tif"
	case BMP:
		return ".bmp"
	case GIF:
		return ".gif"
	default:
		return ""
	}
}

// IsImage reports whether f is an image format that can be converted.
func (f Format) IsImage() bool {
	switch f {
	case PNG, JPEG, TIFF, BMP, GIF:
		return true
	}
	return false
}

// Detect determines file format from filename extension. A .pdf name
// reports PDF; telling PDF/raster apart needs the content.
func Detect(filename string) Format {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".pdf":
		return PDF
	case ".png":
		return PNG
	case ".jpg", ".jpeg":
		return JPEG
	case ".tif", ".tiff":
		return TIFF
	case ".bmp":
		return BMP
	case ".gif":
		return GIF
	default:
		return Unknown
	}
}

// DetectFromMagic checks file magic bytes to determine format.
// PDF/raster lives at the end of a file, so any PDF header reports PDF;
// use DetectFromReader to tell them apart.
func DetectFromMagic(data []byte) Format {
	switch {
	case bytes.HasPrefix(data, []byte("%PDF-")):
		return PDF
	case bytes.HasPrefix(data, []byte("\x89PNG\r\n\x1a\n")):
		return PNG
	case bytes.HasPrefix(data, []byte{0xFF, 0xD8, 0xFF}):
		return JPEG
	case bytes.HasPrefix(data, []byte("II*\x00")), bytes.HasPrefix(data, []byte("MM\x00*")):
		return TIFF
	case bytes.HasPrefix(data, []byte("GIF87a")), bytes.HasPrefix(data, []byte("GIF89a")):
		return GIF
	case len(data) >= 14 && data[0] == 'B' && data[1] == 'M':
		return BMP
	}
	return Unknown
}

// DetectFromReader inspects the content to determine format. PDF files
// are checked for the PDF/raster markers.
func DetectFromReader(r io.ReaderAt, size int64) (Format, error) {
	magic := make([]byte, 16)
	n, err := r.ReadAt(magic, 0)
	if err != nil && err != io.EOF {
		return Unknown, err
	}

	f := DetectFromMagic(magic[:n])
	if f != PDF {
		return f, nil
	}
	if ok, _, _ := reader.Recognize(io.NewSectionReader(r, 0, size)); ok {
		return PDFRaster, nil
	}
	return PDF, nil
}
