package format

import (
	"bytes"
	"errors"
	"testing"

	"github.com/tsawler/pdfraster/writer"
)

func TestFormat_String(t *testing.T) {
	tests := []struct {
		format Format
		want   string
	}{
		{PDF, "PDF"},
		{PDFRaster, "PDF/raster"},
		{PNG, "PNG"},
		{JPEG, "JPEG"},
		{TIFF, "TIFF"},
		{BMP, "BMP"},
		{GIF, "GIF"},
		{Unknown, "Unknown"},
		{Format(99), "Unknown"},
	}

	for _, tt := range tests {
		if got := tt.format.String(); got != tt.want {
			t.Errorf("Format(%d).String() = %q, want %q", tt.format, got, tt.want)
		}
	}
}

func TestFormat_Extension(t *testing.T) {
	tests := []struct {
		format Format
		want   string
	}{
		{PDF, ".pdf"},
		{PDFRaster, ".pdf"},
		{PNG, ".png"},
		{JPEG, ".jpg"},
		{TIFF, ".tif"},
		{Unknown, ""},
	}

	for _, tt := range tests {
		if got := tt.format.Extension(); got != tt.want {
			t.Errorf("Format(%d).Extension() = %q, want %q", tt.format, got, tt.want)
		}
	}
}

func TestFormat_IsImage(t *testing.T) {
	for _, f := range []Format{PNG, JPEG, TIFF, BMP, GIF} {
		if !f.IsImage() {
			t.Errorf("%s should be an image format", f)
		}
	}
	for _, f := range []Format{Unknown, PDF, PDFRaster} {
		if f.IsImage() {
			t.Errorf("%s should not be an image format", f)
		}
	}
}

func TestDetect(t *testing.T) {
	tests := []struct {
		filename string
		want     Format
	}{
		{"scan.pdf", PDF},
		{"scan.PDF", PDF},
		{"page.png", PNG},
		{"page.jpg", JPEG},
		{"page.JPEG", JPEG},
		{"page.tif", TIFF},
		{"page.tiff", TIFF},
		{"page.bmp", BMP},
		{"page.gif", GIF},
		{"document.txt", Unknown},
		{"document", Unknown},
		{"", Unknown},
		{"/path/to/file.pdf", PDF},
	}

	for _, tt := range tests {
		if got := Detect(tt.filename); got != tt.want {
			t.Errorf("Detect(%q) = %v, want %v", tt.filename, got, tt.want)
		}
	}
}

func TestDetectFromMagic(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want Format
	}{
		{"PDF", []byte("%PDF-1.4"), PDF},
		{"PNG", []byte("\x89PNG\r\n\x1a\n\x00\x00"), PNG},
		{"JPEG", []byte{0xFF, 0xD8, 0xFF, 0xE0}, JPEG},
		{"TIFF little endian", []byte("II*\x00\x08\x00"), TIFF},
		{"TIFF big endian", []byte("MM\x00*\x00\x08"), TIFF},
		{"GIF", []byte("GIF89a\x01\x00"), GIF},
		{"BMP", append([]byte("BM"), make([]byte, 12)...), BMP},
		{"short BMP", []byte("BM"), Unknown},
		{"bare percent PDF", []byte("%PDF"), Unknown},
		{"empty data", []byte{}, Unknown},
		{"text file", []byte("Hello, World!"), Unknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DetectFromMagic(tt.data); got != tt.want {
				t.Errorf("DetectFromMagic() = %v, want %v", got, tt.want)
			}
		})
	}
}

func rasterFile(t *testing.T) []byte {
	t.Helper()
	w := writer.New()
	var buf bytes.Buffer
	if err := w.Begin(&buf); err != nil {
		t.Fatal(err)
	}
	if err := w.StartPage(8); err != nil {
		t.Fatal(err)
	}
	if err := w.WriteStrip(1, []byte{0xFF}); err != nil {
		t.Fatal(err)
	}
	if err := w.End(); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestDetectFromReader(t *testing.T) {
	raster := rasterFile(t)
	plain := bytes.Replace(raster, []byte("%PDF-raster-1.0"), []byte("%comment-xx-1.0"), 1)

	tests := []struct {
		name string
		data []byte
		want Format
	}{
		{"PDF/raster", raster, PDFRaster},
		{"plain PDF", plain, PDF},
		{"truncated PDF", []byte("%PDF-1.4\n%%EOF"), PDF},
		{"PNG", []byte("\x89PNG\r\n\x1a\n"), PNG},
		{"text", []byte("Hello, World! This is plain text."), Unknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DetectFromReader(bytes.NewReader(tt.data), int64(len(tt.data)))
			if err != nil {
				t.Fatalf("DetectFromReader() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("DetectFromReader() = %v, want %v", got, tt.want)
			}
		})
	}
}

type failingReaderAt struct{}

func (failingReaderAt) ReadAt(p []byte, off int64) (int, error) {
	return 0, errors.New("read failed")
}

func TestDetectFromReader_Error(t *testing.T) {
	if _, err := DetectFromReader(failingReaderAt{}, 100); err == nil {
		t.Error("expected read error")
	}
}
