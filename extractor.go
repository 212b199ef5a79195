package pdfraster

import (
	"fmt"
	"image"
	"os"
	"sort"
	"strings"

	"github.com/tsawler/pdfraster/codec"
	"github.com/tsawler/pdfraster/core"
	"github.com/tsawler/pdfraster/format"
	"github.com/tsawler/pdfraster/model"
	"github.com/tsawler/pdfraster/observability"
	"github.com/tsawler/pdfraster/ocr"
	"github.com/tsawler/pdfraster/reader"
)

// Extractor provides a fluent interface for reading PDF/raster files.
// Each configuration method returns a new Extractor instance, allowing
// method chaining.
type Extractor struct {
	// Source
	filename string

	reader *reader.Reader

	// Lifecycle
	ownsReader   bool // true if we opened the reader and should close it
	readerOpened bool // true if reader has been opened

	// Configuration
	options ExtractOptions

	// Accumulated error (fail-fast)
	err error

	// Problems reported by the reader, shared by every Extractor that
	// shares the reader
	warnings *warningLog
}

type warningLog struct {
	items []Warning
}

func (l *warningLog) collect(level core.ErrorLevel, code core.ReadErrorCode, offset int64, msg string) {
	l.items = append(l.items, Warning{Level: level, Code: code, Offset: offset, Message: msg})
}

// list returns a copy of the collected warnings.
func (l *warningLog) list() []Warning {
	if l == nil || len(l.items) == 0 {
		return nil
	}
	return append([]Warning(nil), l.items...)
}

// clone creates a shallow copy of the Extractor with a deep copy of options.
func (e *Extractor) clone() *Extractor {
	return &Extractor{
		filename:     e.filename,
		reader:       e.reader,
		ownsReader:   e.ownsReader,
		readerOpened: e.readerOpened,
		options:      e.options.clone(),
		err:          e.err,
		warnings:     e.warnings,
	}
}

// ensureReader opens the reader if not already open.
func (e *Extractor) ensureReader() error {
	if e.readerOpened {
		return nil
	}
	if e.filename == "" {
		return fmt.Errorf("no filename specified")
	}

	file, err := os.Open(e.filename)
	if err != nil {
		return fmt.Errorf("failed to open file: %w", err)
	}
	stat, err := file.Stat()
	if err != nil {
		file.Close()
		return fmt.Errorf("failed to stat file: %w", err)
	}
	f, err := format.DetectFromReader(file, stat.Size())
	if err != nil {
		file.Close()
		return fmt.Errorf("failed to detect format: %w", err)
	}
	if f != format.PDFRaster {
		file.Close()
		return fmt.Errorf("unsupported file format: %s", f)
	}
	file.Close()

	e.warnings = &warningLog{}
	opts := []reader.Option{reader.WithErrorHandler(e.warnings.collect)}
	if e.options.logger != nil {
		opts = append(opts, reader.WithLogger(e.options.logger))
	}
	if e.options.codec != nil {
		opts = append(opts, reader.WithCodec(e.options.codec))
	}
	r, err := reader.OpenFile(e.filename, opts...)
	if err != nil {
		return fmt.Errorf("failed to open PDF/raster: %w", err)
	}
	e.reader = r
	e.ownsReader = true
	e.readerOpened = true
	return nil
}

// Close releases resources associated with the Extractor.
// It is safe to call Close multiple times.
func (e *Extractor) Close() error {
	if e.ownsReader && e.reader != nil {
		err := e.reader.Close()
		e.reader = nil
		e.ownsReader = false
		return err
	}
	return nil
}

// Pages specifies which pages to read (1-indexed).
// Multiple calls are cumulative.
//
// Example:
//
//	images, _, err := pdfraster.Open("scan.pdf").Pages(1, 3, 5).Images()
func (e *Extractor) Pages(pages ...int) *Extractor {
	newExt := e.clone()
	newExt.options.pages = append(newExt.options.pages, pages...)
	return newExt
}

// PageRange specifies a range of pages to read (1-indexed, inclusive).
func (e *Extractor) PageRange(start, end int) *Extractor {
	newExt := e.clone()
	for i := start; i <= end; i++ {
		newExt.options.pages = append(newExt.options.pages, i)
	}
	return newExt
}

// Language sets the OCR language(s) used by Text, e.g. "eng+deu".
func (e *Extractor) Language(lang string) *Extractor {
	newExt := e.clone()
	newExt.options.language = lang
	return newExt
}

// WithLogger sets the logger passed to the reader.
func (e *Extractor) WithLogger(l observability.Logger) *Extractor {
	newExt := e.clone()
	newExt.options.logger = l
	return newExt
}

// WithCodec replaces the codec used to decode strips.
func (e *Extractor) WithCodec(c codec.Codec) *Extractor {
	newExt := e.clone()
	newExt.options.codec = c
	return newExt
}

// PageCount returns the number of pages in the document.
// This does NOT close the reader, allowing further operations.
func (e *Extractor) PageCount() (int, error) {
	if e.err != nil {
		return 0, e.err
	}
	if err := e.ensureReader(); err != nil {
		return 0, err
	}
	return e.reader.PageCount()
}

// Info returns the document information dictionary.
// This does NOT close the reader.
func (e *Extractor) Info() (reader.Info, error) {
	if e.err != nil {
		return reader.Info{}, e.err
	}
	if err := e.ensureReader(); err != nil {
		return reader.Info{}, err
	}
	return e.reader.Info()
}

// PageInfos returns the metadata of the selected pages.
// This is a terminal operation that closes the underlying reader.
func (e *Extractor) PageInfos() ([]model.PageInfo, []Warning, error) {
	return collectPages(e, func(r *reader.Reader, page int) (model.PageInfo, error) {
		return r.PageInfo(page)
	})
}

// Pixels returns the packed pixels of the selected pages, one slice per
// page, laid out as described by model.PixelFormat.
// This is a terminal operation that closes the underlying reader.
func (e *Extractor) Pixels() ([][]byte, []Warning, error) {
	return collectPages(e, func(r *reader.Reader, page int) ([]byte, error) {
		return r.ReadPagePixels(page)
	})
}

// Images decodes the selected pages into images.
// This is a terminal operation that closes the underlying reader.
//
// Example:
//
//	images, _, err := pdfraster.Open("scan.pdf").Pages(1).Images()
func (e *Extractor) Images() ([]image.Image, []Warning, error) {
	return collectPages(e, func(r *reader.Reader, page int) (image.Image, error) {
		return r.PageImage(page)
	})
}

// PNGs renders the selected pages as PNG files.
// This is a terminal operation that closes the underlying reader.
func (e *Extractor) PNGs() ([][]byte, []Warning, error) {
	return collectPages(e, func(r *reader.Reader, page int) ([]byte, error) {
		return r.PagePNG(page)
	})
}

// Text runs OCR over the selected pages and returns the recognized text,
// pages separated by blank lines. It needs a build with the "ocr" tag.
// This is a terminal operation that closes the underlying reader.
func (e *Extractor) Text() (string, []Warning, error) {
	if e.err != nil {
		return "", nil, e.err
	}
	client, err := ocr.New()
	if err != nil {
		return "", nil, err
	}
	defer client.Close()
	if e.options.language != "" {
		if err := client.SetLanguage(e.options.language); err != nil {
			return "", nil, fmt.Errorf("failed to set OCR language: %w", err)
		}
	}

	texts, warnings, err := collectPages(e, func(r *reader.Reader, page int) (string, error) {
		return client.RecognizePage(r, page)
	})
	if err != nil {
		return "", warnings, err
	}

	var result strings.Builder
	for _, text := range texts {
		if result.Len() > 0 && len(text) > 0 {
			result.WriteString("\n\n")
		}
		result.WriteString(text)
	}
	return result.String(), warnings, nil
}

// collectPages runs fn over the selected pages and closes the reader.
func collectPages[T any](e *Extractor, fn func(r *reader.Reader, page int) (T, error)) ([]T, []Warning, error) {
	if e.err != nil {
		return nil, nil, e.err
	}
	if err := e.ensureReader(); err != nil {
		return nil, e.warnings.list(), err
	}
	defer e.Close()

	pageIndices, err := e.resolvePages()
	if err != nil {
		return nil, e.warnings.list(), err
	}
	out := make([]T, 0, len(pageIndices))
	for _, pageNum := range pageIndices {
		v, err := fn(e.reader, pageNum)
		if err != nil {
			return nil, e.warnings.list(), fmt.Errorf("page %d: %w", pageNum+1, err)
		}
		out = append(out, v)
	}
	return out, e.warnings.list(), nil
}

// resolvePages converts 1-indexed page numbers to 0-indexed and validates them.
// If no pages specified, returns all pages.
func (e *Extractor) resolvePages() ([]int, error) {
	pageCount, err := e.reader.PageCount()
	if err != nil {
		return nil, fmt.Errorf("failed to get page count: %w", err)
	}

	if len(e.options.pages) == 0 {
		pageIndices := make([]int, pageCount)
		for i := 0; i < pageCount; i++ {
			pageIndices[i] = i
		}
		return pageIndices, nil
	}

	seen := make(map[int]bool)
	var pageIndices []int
	for _, p := range e.options.pages {
		if p < 1 || p > pageCount {
			return nil, fmt.Errorf("page %d out of range (1-%d)", p, pageCount)
		}
		zeroIndexed := p - 1
		if !seen[zeroIndexed] {
			seen[zeroIndexed] = true
			pageIndices = append(pageIndices, zeroIndexed)
		}
	}

	sort.Ints(pageIndices)
	return pageIndices, nil
}
