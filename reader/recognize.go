package reader

import (
	"io"

	"github.com/tsawler/pdfraster/core"
)

// Recognize reports whether rs looks like a PDF/raster file this package
// can read: a %PDF- header, %%EOF and startxref in the tail, and a
// PDF-raster tag right before the xref table. It returns the tag version
// when one is found, even if that version is not supported. Nothing beyond
// those markers is parsed.
func Recognize(rs io.ReadSeeker) (ok bool, major, minor int) {
	if rs == nil {
		return false, -1, -1
	}
	tok := core.NewTokenizer(rs)
	size, err := tok.Size()
	if err != nil {
		return false, -1, -1
	}
	if _, p := readHeader(tok); p != nil {
		return false, -1, -1
	}
	xrefOff, p := findStartXRef(tok, size)
	if p != nil {
		return false, -1, -1
	}
	v, p := findTag(tok, xrefOff)
	if p != nil {
		return false, -1, -1
	}
	if p := checkTagVersion(v, xrefOff); p != nil && p.level > core.LevelWarning {
		return false, v.Major, v.Minor
	}
	return true, v.Major, v.Minor
}
