// Package pdfraster reads and writes PDF/raster files, the image-only PDF
// subset produced by document scanners.
//
// Reading:
//
//	images, warnings, err := pdfraster.Open("scan.pdf").Images()
//	if err != nil {
//	    // handle error
//	}
//	if len(warnings) > 0 {
//	    log.Println("Warnings:", pdfraster.FormatWarnings(warnings))
//	}
//
// With options:
//
//	pixels, _, err := pdfraster.Open("scan.pdf").
//	    Pages(1, 3).
//	    Pixels()
//
// Writing:
//
//	err := pdfraster.Create("out.pdf").
//	    Resolution(300, 300).
//	    Title("Invoice").
//	    AddFile("page1.png").
//	    AddFile("page2.tif").
//	    Save()
//
// The reader and writer packages give full control over strips,
// colorspaces and error reporting.
package pdfraster

import (
	"github.com/tsawler/pdfraster/reader"
)

// Open opens a PDF/raster file and returns an Extractor for fluent
// configuration. The file is opened lazily by the first operation.
// Terminal operations such as Images() close it; otherwise call Close.
//
// Example:
//
//	n, err := pdfraster.Open("scan.pdf").PageCount()
func Open(filename string) *Extractor {
	return &Extractor{
		filename: filename,
		options:  defaultOptions(),
	}
}

// FromReader creates an Extractor from an already-opened reader.Reader.
// The caller is responsible for closing the reader.
//
// Example:
//
//	r, err := reader.OpenFile("scan.pdf")
//	if err != nil {
//	    // handle error
//	}
//	defer r.Close()
//	images, _, err := pdfraster.FromReader(r).Pages(2).Images()
func FromReader(r *reader.Reader) *Extractor {
	return &Extractor{
		reader:       r,
		ownsReader:   false,
		readerOpened: true,
		options:      defaultOptions(),
	}
}

// Must is a helper that wraps a call to a function returning (T, error)
// and panics if the error is non-nil. It is intended for use in scripts
// or tests where error handling would be cumbersome.
//
// Example:
//
//	count := pdfraster.Must(pdfraster.Open("scan.pdf").PageCount())
func Must[T any](val T, err error) T {
	if err != nil {
		panic(err)
	}
	return val
}

// MustResult is like Must for the operations that also return warnings.
// The warnings are discarded.
//
// Example:
//
//	images := pdfraster.MustResult(pdfraster.Open("scan.pdf").Images())
func MustResult[T any](val T, _ []Warning, err error) T {
	if err != nil {
		panic(err)
	}
	return val
}
