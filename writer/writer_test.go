package writer

import (
	"bytes"
	"errors"
	"fmt"
	"log"
	"regexp"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/tsawler/pdfraster/core"
	"github.com/tsawler/pdfraster/model"
	"github.com/tsawler/pdfraster/observability"
)

var fixedTime = time.Date(2024, 3, 5, 14, 7, 9, 0, time.UTC)

func newTestWriter() *Writer {
	return New(
		WithClock(func() time.Time { return fixedTime }),
		WithIDSource(bytes.NewReader(make([]byte, 16))),
	)
}

// writeDoc writes pages of the given heights, one strip per page.
func writeDoc(t *testing.T, w *Writer, width int, heights ...int) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := w.Begin(&buf); err != nil {
		t.Fatalf("Begin failed: %v", err)
	}
	for _, h := range heights {
		if err := w.StartPage(width); err != nil {
			t.Fatalf("StartPage failed: %v", err)
		}
		f := w.settings.format
		if err := w.WriteStrip(h, make([]byte, f.ImageBytes(width, h))); err != nil {
			t.Fatalf("WriteStrip failed: %v", err)
		}
	}
	if err := w.End(); err != nil {
		t.Fatalf("End failed: %v", err)
	}
	return buf.Bytes()
}

// checkXRef verifies that every in-use xref row points at its object and
// that startxref points at the table.
func checkXRef(t *testing.T, data []byte) int {
	t.Helper()
	m := regexp.MustCompile(`startxref\n(\d+)\n%%EOF\n$`).FindSubmatch(data)
	if m == nil {
		t.Fatal("missing startxref trailer")
	}
	start, _ := strconv.Atoi(string(m[1]))
	var count int
	if _, err := fmt.Sscanf(string(data[start:]), "xref\n0 %d\n", &count); err != nil {
		t.Fatalf("no xref header at %d: %v", start, err)
	}
	rows := data[start+len(fmt.Sprintf("xref\n0 %d\n", count)):]
	if got := string(rows[:20]); got != "0000000000 65535 f \n" {
		t.Errorf("entry 0 = %q", got)
	}
	for i := 1; i < count; i++ {
		row := string(rows[i*20 : (i+1)*20])
		off, err := strconv.Atoi(row[:10])
		if err != nil || row[17] != 'n' {
			t.Fatalf("bad xref row %d: %q", i, row)
		}
		if want := fmt.Sprintf("%d 0 obj\n", i); !bytes.HasPrefix(data[off:], []byte(want)) {
			t.Errorf("object %d: offset %d does not start %q", i, off, want)
		}
	}
	return count
}

func TestDocumentStructure(t *testing.T) {
	w := newTestWriter()
	data := writeDoc(t, w, 8, 2)

	if !bytes.HasPrefix(data, []byte("%PDF-1.7\n%\xE2\xE3\xCF\xD3\n")) {
		t.Errorf("bad header %q", data[:16])
	}
	// catalog, pages, info, page, strip, contents
	if count := checkXRef(t, data); count != 7 {
		t.Errorf("xref has %d entries, want 7", count)
	}
	s := string(data)
	if !strings.Contains(s, "%PDF-raster-1.0\nxref\n") {
		t.Error("PDF/raster tag should directly precede the xref table")
	}
	for _, want := range []string{
		"1 0 obj\n<</Type /Catalog /Pages 2 0 R >>\nendobj\n",
		"2 0 obj\n<</Type /Pages /Count 1 /Kids [4 0 R] >>\nendobj\n",
		"/Producer (pdfraster 1.0.0) /CreationDate (D:20240305140709Z) ",
		"trailer\n<</Size 7 /Root 1 0 R /Info 3 0 R /ID [<",
		"/Type /XObject /Subtype /Image /Width 8 /Height 2 /BitsPerComponent 1 ",
		"/Decode [0 1] /Length 2 >>\nstream\n\x00\x00\nendstream",
		"/MediaBox [0 0 1.92 0.48] ",
	} {
		if !strings.Contains(s, want) {
			t.Errorf("output missing %q", want)
		}
	}
	id := regexp.MustCompile(`/ID \[<([0-9A-F]{32})> <([0-9A-F]{32})>\]`).FindStringSubmatch(s)
	if id == nil || id[1] != id[2] {
		t.Errorf("bad file ID in %q", s[strings.Index(s, "trailer"):])
	}
	if w.Active() {
		t.Error("writer should be inactive after End")
	}
}

func TestDeterministicOutput(t *testing.T) {
	a := writeDoc(t, newTestWriter(), 16, 4, 4)
	b := writeDoc(t, newTestWriter(), 16, 4, 4)
	if !bytes.Equal(a, b) {
		t.Error("same clock and ID source should produce identical files")
	}
}

func TestTrailerSize(t *testing.T) {
	w := newTestWriter()
	w.SetPixelFormat(model.FormatGray8)
	data := writeDoc(t, w, 10, 3, 3, 3, 3, 3)

	// three document objects plus page, strip and contents per page
	if count := checkXRef(t, data); count != 19 {
		t.Errorf("xref has %d entries, want 19", count)
	}
	if !bytes.Contains(data, []byte("/Size 19 ")) {
		t.Error("trailer /Size should equal the xref entry count")
	}
	if !bytes.Contains(data, []byte("/Count 5 /Kids [4 0 R 7 0 R 10 0 R 13 0 R 16 0 R]")) {
		t.Error("unexpected page tree")
	}
}

func TestContentStream(t *testing.T) {
	got := contentStream(36, 28.8, []int{40, 40}, 200)
	want := "q\n36 0 0 14.4 0 14.4 cm\n/strip0 Do\nQ\n" +
		"q\n36 0 0 14.4 0 0 cm\n/strip1 Do\nQ\n"
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("content stream mismatch (-want +got):\n%s", diff)
	}
}

func TestMultiStripPage(t *testing.T) {
	w := newTestWriter()
	w.SetResolution(200, 200)
	w.SetPixelFormat(model.FormatGray8)
	w.SetCompression(model.CompressionFlate)

	var buf bytes.Buffer
	if err := w.Begin(&buf); err != nil {
		t.Fatal(err)
	}
	if err := w.StartPage(100); err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 2; i++ {
		if err := w.WriteStrip(40, make([]byte, 4000)); err != nil {
			t.Fatal(err)
		}
	}
	if err := w.End(); err != nil {
		t.Fatal(err)
	}
	checkXRef(t, buf.Bytes())

	s := buf.String()
	for _, want := range []string{
		"/MediaBox [0 0 36 28.8] ",
		"/XObject <</strip0 5 0 R /strip1 6 0 R >>",
		"/Filter /FlateDecode",
		"/ColorSpace [/CalGray <</WhitePoint [0.9505 1 1.089] /Gamma 2.2 >>]",
		"q\n36 0 0 14.4 0 14.4 cm\n/strip0 Do\nQ\n",
	} {
		if !strings.Contains(s, want) {
			t.Errorf("output missing %q", want)
		}
	}
}

func TestCCITTStripDictionary(t *testing.T) {
	w := newTestWriter()
	w.SetCompression(model.CompressionCCITTG4)
	w.SetRotation(-90)
	data := string(writeDoc(t, w, 64, 16))

	for _, want := range []string{
		"/Filter /CCITTFaxDecode /DecodeParms <</K -1 /Columns 64 /Rows 16 /BlackIs1 true >> /Decode [0 1] ",
		"/Rotate 270 ",
	} {
		if !strings.Contains(data, want) {
			t.Errorf("output missing %q", want)
		}
	}
}

func TestColorspaceSelection(t *testing.T) {
	const calGray = "[/CalGray <</WhitePoint [0.9505 1 1.089] /Gamma 2.2 >>]"
	const calRGB = "[/CalRGB <</WhitePoint [0.9505 1 1.089] /Gamma [2.2 2.2 2.2] >>]"

	tests := []struct {
		name   string
		modify func(*pageSettings)
		want   string
	}{
		{"bitonal default", func(s *pageSettings) {}, calGray},
		{"bitonal uncalibrated", func(s *pageSettings) { s.bitonalUncalibrated = true }, "/DeviceGray"},
		{"bitonal gray off", func(s *pageSettings) { s.calibrateGray = false }, "/DeviceGray"},
		{"gray8", func(s *pageSettings) { s.format = model.FormatGray8 }, calGray},
		{"gray16 device", func(s *pageSettings) {
			s.format = model.FormatGray16
			s.calibrateGray = false
		}, "/DeviceGray"},
		{"rgb24", func(s *pageSettings) { s.format = model.FormatRGB24 }, calRGB},
		{"rgb48 device", func(s *pageSettings) {
			s.format = model.FormatRGB48
			s.calibrateRGB = false
		}, "/DeviceRGB"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := New()
			s := w.settings
			tt.modify(&s)
			cs, err := w.colorspace(s)
			if err != nil {
				t.Fatal(err)
			}
			if got := cs.String(); got != tt.want {
				t.Errorf("colorspace = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestICCProfileWrittenOnce(t *testing.T) {
	w := newTestWriter()
	w.SetPixelFormat(model.FormatGray8)
	w.SetGrayICCProfile([]byte("not a real profile"))
	raw := writeDoc(t, w, 4, 2, 2)
	checkXRef(t, raw)
	data := string(raw)

	if n := strings.Count(data, "/N 1 /Alternate /DeviceGray /Length 18 >>\nstream\nnot a real profile"); n != 1 {
		t.Errorf("profile stream written %d times, want 1", n)
	}
	if n := strings.Count(data, "/ColorSpace [/ICCBased 5 0 R]"); n != 2 {
		t.Errorf("found %d ICCBased strips, want 2", n)
	}
}

func TestInfoEntries(t *testing.T) {
	w := newTestWriter()
	w.SetCreator("scanner")
	w.SetTitle("Invoice")
	w.SetAuthor("Zoë")
	data := string(writeDoc(t, w, 8, 1))

	if !strings.Contains(data, `/Creator (scanner) /Title (Invoice) /Author (\376\377\000Z\000o\000\353) `) {
		t.Errorf("unexpected Info dictionary in %q", data)
	}
}

func TestSetRotation(t *testing.T) {
	tests := []struct {
		in   int
		want int
	}{
		{0, 0},
		{90, 90},
		{-90, 270},
		{450, 90},
		{-720, 0},
		{45, 180}, // ignored, keeps the previous value
	}
	w := New()
	w.SetRotation(180)
	for _, tt := range tests {
		if tt.in == 45 {
			w.SetRotation(180)
		}
		w.SetRotation(tt.in)
		if w.settings.rotation != tt.want {
			t.Errorf("SetRotation(%d) = %d, want %d", tt.in, w.settings.rotation, tt.want)
		}
	}
}

func TestSettersClamp(t *testing.T) {
	w := New()
	w.SetJPEGQuality(0)
	if w.settings.quality != 1 {
		t.Errorf("quality = %d, want 1", w.settings.quality)
	}
	w.SetJPEGQuality(500)
	if w.settings.quality != 100 {
		t.Errorf("quality = %d, want 100", w.settings.quality)
	}
	w.SetResolution(-1, 150)
	if w.settings.xdpi != 300 || w.settings.ydpi != 150 {
		t.Errorf("resolution = %v x %v", w.settings.xdpi, w.settings.ydpi)
	}
	if prev := w.SetBitonalUncalibrated(true); prev {
		t.Error("bitonal calibration should default to calibrated")
	}
	if prev := w.SetBitonalUncalibrated(false); !prev {
		t.Error("SetBitonalUncalibrated should return the previous value")
	}
}

func TestAPIErrors(t *testing.T) {
	apiLevel := func(t *testing.T, err error, target error) {
		t.Helper()
		if !errors.Is(err, target) {
			t.Fatalf("got %v, want %v", err, target)
		}
		var e *core.Error
		if !errors.As(err, &e) || e.Level != core.LevelAPI {
			t.Errorf("error %v should be a LevelAPI *core.Error", err)
		}
	}

	w := newTestWriter()
	apiLevel(t, w.End(), core.ErrWriterInactive)
	apiLevel(t, w.StartPage(10), core.ErrWriterInactive)
	apiLevel(t, w.EndPage(), core.ErrWriterInactive)

	var buf bytes.Buffer
	if err := w.Begin(&buf); err != nil {
		t.Fatal(err)
	}
	apiLevel(t, w.Begin(&buf), core.ErrWriterActive)
	apiLevel(t, w.WriteStrip(1, []byte{0}), core.ErrNoPageOpen)
	if err := w.EndPage(); err != nil {
		t.Errorf("EndPage without a page should be a no-op, got %v", err)
	}

	w.SetPixelFormat(model.FormatGray8)
	w.SetCompression(model.CompressionCCITTG4)
	if err := w.StartPage(8); err != nil {
		t.Fatal(err)
	}
	apiLevel(t, w.WriteStrip(1, make([]byte, 8)), core.ErrInvalidCombination)

	w.SetPixelFormat(model.FormatBitonal)
	w.SetCompression(model.CompressionJPEG)
	if err := w.StartPage(8); err != nil {
		t.Fatal(err)
	}
	apiLevel(t, w.WriteEncodedStrip(1, []byte{0}), core.ErrInvalidCombination)

	for _, f := range []model.PixelFormat{model.FormatGray16, model.FormatRGB48} {
		w.SetPixelFormat(f)
		if err := w.StartPage(8); err != nil {
			t.Fatal(err)
		}
		apiLevel(t, w.WriteStrip(1, make([]byte, f.ImageBytes(8, 1))), core.ErrInvalidCombination)
		apiLevel(t, w.WriteEncodedStrip(1, []byte{0xFF, 0xD8}), core.ErrInvalidCombination)
	}

	w.SetCompression(model.CompressionUncompressed)
	if err := w.StartPage(8); err != nil {
		t.Fatal(err)
	}
	var e *core.Error
	err := w.WriteStrip(4, []byte{0})
	if !errors.As(err, &e) || e.Code != core.CodeStripBufferSize {
		t.Errorf("short buffer: got %v", err)
	}
	if err := w.End(); err != nil {
		t.Fatalf("End failed: %v", err)
	}
}

type failingWriter struct{}

func (failingWriter) Write(p []byte) (int, error) { return 0, errors.New("disk full") }

func TestIOError(t *testing.T) {
	var logged bytes.Buffer
	w := newTestWriter()
	WithLogger(observability.NewStdLogger(log.New(&logged, "", 0)))(w)
	if err := w.Begin(failingWriter{}); err != nil {
		t.Fatalf("header is buffered, Begin should succeed: %v", err)
	}
	err := w.End()
	var e *core.Error
	if !errors.As(err, &e) || e.Level != core.LevelIO {
		t.Errorf("got %v, want a LevelIO error", err)
	}
	if out := logged.String(); !strings.Contains(out, "write failed op=End") || !strings.Contains(out, "disk full") {
		t.Errorf("log output = %q", out)
	}
}

func TestWriterReuse(t *testing.T) {
	w := newTestWriter()
	first := writeDoc(t, w, 8, 1)
	w.random = bytes.NewReader(make([]byte, 16))
	second := writeDoc(t, w, 8, 1)
	if !bytes.Equal(first, second) {
		t.Error("a writer should start each document from scratch")
	}
}
