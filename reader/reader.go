package reader

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/tsawler/pdfraster/codec"
	"github.com/tsawler/pdfraster/core"
	"github.com/tsawler/pdfraster/model"
	"github.com/tsawler/pdfraster/observability"
)

const (
	// tailSize is how much of the end of the file is searched for
	// startxref and %%EOF.
	tailSize = 64
	// tagWindow is how far before the xref table the PDF/raster tag may
	// start.
	tagWindow = 256
	// maxTreeDepth bounds page tree recursion.
	maxTreeDepth = 32
)

// Version is a major.minor version number
type Version struct {
	Major int
	Minor int
}

// String returns the version as a string (e.g., "1.0")
func (v Version) String() string {
	return fmt.Sprintf("%d.%d", v.Major, v.Minor)
}

// Reader reads a PDF/raster file. Page and strip information is parsed on
// first use and cached until Close.
//
// A Reader is not safe for concurrent use.
type Reader struct {
	rs     io.ReadSeeker
	closer io.Closer
	open   bool

	handler core.ErrorHandler
	log     observability.Logger
	codec   codec.Codec

	tok     *core.Tokenizer
	parser  *core.Parser
	xref    *core.XRefTable
	size    int64
	pdf     Version
	raster  Version
	trailer *core.Dict
	pages   []int64 // page object offsets in document order

	pageCache  map[int]model.PageInfo
	stripCache map[int][]model.StripInfo
}

// Open validates the PDF/raster structure of rs and builds the page table.
// Problems are passed to the error handler as they are found; the one that
// stops the open is also returned as a *core.Error.
func Open(rs io.ReadSeeker, opts ...Option) (*Reader, error) {
	if rs == nil {
		return nil, &core.Error{Op: "Open", Level: core.LevelAPI, Code: core.CodeAPIBadReader, Offset: -1,
			Err: errors.New("nil reader")}
	}
	r := &Reader{
		rs:         rs,
		log:        observability.NopLogger{},
		codec:      codec.Default(),
		tok:        core.NewTokenizer(rs),
		pageCache:  make(map[int]model.PageInfo),
		stripCache: make(map[int][]model.StripInfo),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.parser = core.NewParser(r.tok, nil)

	if err := r.load(); err != nil {
		return nil, err
	}
	r.open = true
	r.log.Debug("opened",
		observability.String("version", r.raster.String()),
		observability.Int("pages", len(r.pages)),
		observability.Int("objects", r.xref.Size()))
	return r, nil
}

// OpenFile opens the named file. The Reader owns the file and closes it on
// Close.
func OpenFile(filename string, opts ...Option) (*Reader, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	r, err := Open(file, opts...)
	if err != nil {
		file.Close()
		return nil, err
	}
	r.closer = file
	return r, nil
}

// Close releases the caches and, for OpenFile readers, the file.
func (r *Reader) Close() error {
	if !r.open {
		return core.APIError("Close", core.ErrReaderNotOpen)
	}
	r.open = false
	r.pages = nil
	r.pageCache = nil
	r.stripCache = nil
	r.xref = nil
	if r.closer != nil {
		return r.closer.Close()
	}
	return nil
}

// PDFVersion returns the version in the %PDF- header.
func (r *Reader) PDFVersion() Version {
	return r.pdf
}

// RasterVersion returns the version in the %PDF-raster- tag.
func (r *Reader) RasterVersion() Version {
	return r.raster
}

// FileSize returns the size of the file in bytes
func (r *Reader) FileSize() int64 {
	return r.size
}

// PageCount returns the number of pages
func (r *Reader) PageCount() (int, error) {
	if !r.open {
		return 0, core.APIError("PageCount", core.ErrReaderNotOpen)
	}
	return len(r.pages), nil
}

// problem is a structural defect found in a file.
type problem struct {
	level  core.ErrorLevel
	code   core.ReadErrorCode
	offset int64
	msg    string
}

func newProblem(level core.ErrorLevel, code core.ReadErrorCode, offset int64, format string, args ...interface{}) *problem {
	return &problem{level: level, code: code, offset: offset, msg: fmt.Sprintf(format, args...)}
}

// report passes p to the handler and the logger.
func (r *Reader) report(p *problem) {
	if r.handler != nil {
		r.handler(p.level, p.code, p.offset, p.msg)
	}
	fields := []observability.Field{
		observability.String("code", p.code.String()),
		observability.Int64("offset", p.offset),
	}
	if p.level <= core.LevelWarning {
		r.log.Debug(p.msg, fields...)
	} else {
		r.log.Warn(p.msg, fields...)
	}
}

// fail reports p and turns it into the error returned from op.
func (r *Reader) fail(op string, p *problem) *core.Error {
	r.report(p)
	return &core.Error{Op: op, Level: p.level, Code: p.code, Offset: p.offset, Err: errors.New(p.msg)}
}

func (r *Reader) load() error {
	const op = "Open"

	size, err := r.tok.Size()
	if err != nil {
		return r.fail(op, newProblem(core.LevelIO, core.CodeAPIBadReader, -1, "failed to get file size: %v", err))
	}
	r.size = size

	pdf, p := readHeader(r.tok)
	if p != nil {
		return r.fail(op, p)
	}
	r.pdf = pdf

	xrefOff, p := findStartXRef(r.tok, size)
	if p != nil {
		return r.fail(op, p)
	}
	raster, p := findTag(r.tok, xrefOff)
	if p != nil {
		return r.fail(op, p)
	}
	r.raster = raster
	if p := checkTagVersion(raster, xrefOff); p != nil {
		if p.level > core.LevelWarning {
			return r.fail(op, p)
		}
		r.report(p)
	}

	off, p := r.readXRef(xrefOff)
	if p != nil {
		return r.fail(op, p)
	}
	r.parser.SetLocator(r.xref)

	if p := r.readTrailer(off); p != nil {
		return r.fail(op, p)
	}
	if p := r.readPageTree(); p != nil {
		return r.fail(op, p)
	}
	return nil
}

// readHeader checks the %PDF-x.y header at the start of the file.
func readHeader(tok *core.Tokenizer) (Version, *problem) {
	var v Version
	if !bytes.Equal(peek(tok, 0, 5), []byte("%PDF-")) {
		return v, newProblem(core.LevelCompliance, core.CodeAPIBadReader, 0, "missing %%PDF- header")
	}
	pos := int64(5)
	major, ok := tok.TryParseULong(&pos)
	if !ok || tok.PeekChar(pos) != '.' {
		return v, newProblem(core.LevelCompliance, core.CodeAPIBadReader, 5, "invalid PDF version in header")
	}
	pos++
	minor, ok := tok.TryParseULong(&pos)
	if !ok {
		return v, newProblem(core.LevelCompliance, core.CodeAPIBadReader, pos, "invalid PDF version in header")
	}
	return Version{Major: int(major), Minor: int(minor)}, nil
}

func peek(tok *core.Tokenizer, off int64, n int) []byte {
	buf := make([]byte, 0, n)
	for i := 0; i < n; i++ {
		c := tok.PeekChar(off + int64(i))
		if c < 0 {
			break
		}
		buf = append(buf, byte(c))
	}
	return buf
}

// findStartXRef locates %%EOF and the last startxref in the tail of the
// file and returns the xref offset.
func findStartXRef(tok *core.Tokenizer, size int64) (int64, *problem) {
	start := size - tailSize
	if start < 0 {
		start = 0
	}
	tail, err := tok.ReadBytes(start, int(size-start))
	if err != nil {
		return 0, newProblem(core.LevelIO, core.CodeEOFMarker, start, "failed to read file tail: %v", err)
	}
	if !bytes.Contains(tail, []byte("%%EOF")) {
		return 0, newProblem(core.LevelCompliance, core.CodeEOFMarker, start, "%%%%EOF not found")
	}
	idx := bytes.LastIndex(tail, []byte("startxref"))
	if idx < 0 {
		return 0, newProblem(core.LevelCompliance, core.CodeStartxref, start, "startxref not found")
	}
	pos := start + int64(idx) + int64(len("startxref"))
	xrefOff, ok := tok.TryParseULong(&pos)
	if !ok || xrefOff >= size {
		return 0, newProblem(core.LevelCompliance, core.CodeBadStartxref, start+int64(idx), "invalid startxref value")
	}
	return xrefOff, nil
}

// findTag finds the last %PDF-raster-M.m tag in the window before the xref
// table.
func findTag(tok *core.Tokenizer, xrefOff int64) (Version, *problem) {
	var v Version
	start := xrefOff - tagWindow
	if start < 0 {
		start = 0
	}
	window, err := tok.ReadBytes(start, int(xrefOff-start))
	if err != nil {
		return v, newProblem(core.LevelIO, core.CodePdfrasterTag, start, "failed to read tag window: %v", err)
	}
	const marker = "%PDF-raster-"
	idx := bytes.LastIndex(window, []byte(marker))
	if idx < 0 {
		return v, newProblem(core.LevelCompliance, core.CodePdfrasterTag, xrefOff, "PDF-raster tag not found")
	}
	tagOff := start + int64(idx)
	if idx > 0 && window[idx-1] != '\n' && window[idx-1] != '\r' {
		return v, newProblem(core.LevelCompliance, core.CodeTagSOL, tagOff, "PDF-raster tag does not start a line")
	}

	rest := window[idx+len(marker):]
	major, n := digits(rest)
	if n == 0 || n >= len(rest) || rest[n] != '.' {
		return v, newProblem(core.LevelCompliance, core.CodeBadTag, tagOff, "malformed PDF-raster tag")
	}
	minor, m := digits(rest[n+1:])
	if m == 0 {
		return v, newProblem(core.LevelCompliance, core.CodeBadTag, tagOff, "malformed PDF-raster tag")
	}
	return Version{Major: major, Minor: minor}, nil
}

func digits(b []byte) (value, n int) {
	for n < len(b) && b[n] >= '0' && b[n] <= '9' && n < 9 {
		value = value*10 + int(b[n]-'0')
		n++
	}
	return value, n
}

// checkTagVersion rejects files from a newer major version and warns about
// newer minor versions, which stay readable.
func checkTagVersion(v Version, off int64) *problem {
	switch {
	case v.Major < 1:
		return newProblem(core.LevelCompliance, core.CodeBadTag, off, "invalid PDF-raster version %s", v)
	case v.Major > core.MaxSupportedMajor:
		return newProblem(core.LevelCompliance, core.CodeTooMajor, off, "PDF-raster version %s is not supported", v)
	case v.Major == core.MaxSupportedMajor && v.Minor > core.MaxSupportedMinor:
		return newProblem(core.LevelWarning, core.CodeTooMinor, off, "PDF-raster version %s is newer than %d.%d",
			v, core.MaxSupportedMajor, core.MaxSupportedMinor)
	}
	return nil
}

// readXRef parses the xref table at off and returns the offset just past
// its entries.
func (r *Reader) readXRef(off int64) (int64, *problem) {
	pos := off
	if !r.tok.TryEat(&pos, "xref") {
		return 0, newProblem(core.LevelCompliance, core.CodeXref, off, "xref keyword not found")
	}
	first, ok1 := r.tok.TryParseULong(&pos)
	count, ok2 := r.tok.TryParseULong(&pos)
	if !ok1 || !ok2 {
		return 0, newProblem(core.LevelCompliance, core.CodeXrefHeader, pos, "invalid xref subsection header")
	}
	if first != 0 {
		return 0, newProblem(core.LevelCompliance, core.CodeXrefObjectZero, pos, "xref subsection starts at object %d, not 0", first)
	}
	if count == 0 || pos+count*core.XRefEntrySize > r.size {
		return 0, newProblem(core.LevelCompliance, core.CodeXrefNumRefs, pos, "xref entry count %d does not fit the file", count)
	}

	buf, err := r.tok.ReadBytes(pos, int(count)*core.XRefEntrySize)
	if err != nil {
		return 0, newProblem(core.LevelIO, core.CodeXrefTable, pos, "failed to read xref table: %v", err)
	}
	table, err := core.ParseXRefEntries(buf, int(count))
	if err != nil {
		return 0, newProblem(core.LevelCompliance, core.CodeXrefEntry, pos, "%v", err)
	}
	if e, _ := table.Get(0); e.InUse {
		r.report(newProblem(core.LevelWarning, core.CodeXrefEntryZero, pos, "xref entry 0 is not free"))
	}
	r.xref = table
	return pos + count*core.XRefEntrySize, nil
}

// readTrailer parses the trailer dictionary at off and keeps it.
func (r *Reader) readTrailer(off int64) *problem {
	pos := off
	if !r.tok.TryEat(&pos, "trailer") {
		return newProblem(core.LevelCompliance, core.CodeTrailer, off, "trailer keyword not found")
	}
	obj, ok := r.parser.ParseValue(&pos)
	trailer, isDict := obj.(*core.Dict)
	if !ok || !isDict {
		return newProblem(core.LevelCompliance, core.CodeTrailerDict, off, "trailer is not a dictionary")
	}
	// A single xref section is all PDF/raster allows.
	if trailer.Has("Prev") {
		return newProblem(core.LevelCompliance, core.CodeTrailerPrev, off, "trailer has /Prev; incremental updates are not supported")
	}
	r.trailer = trailer
	return nil
}

// readPageTree resolves /Root and /Pages and flattens the page tree.
func (r *Reader) readPageTree() *problem {
	rootRef, ok := r.trailer.GetIndirectRef("Root")
	if !ok {
		return newProblem(core.LevelCompliance, core.CodeRoot, -1, "trailer /Root is missing or not a reference")
	}
	catalogOff, ok := r.parser.ObjectOffset(rootRef)
	if !ok {
		return newProblem(core.LevelCompliance, core.CodeRoot, -1, "catalog object %d is not in the xref table", rootRef.Number)
	}
	obj, _ := r.parser.ParseObjectAtOffset(catalogOff)
	catalog, ok := obj.(*core.Dict)
	if !ok {
		return newProblem(core.LevelCompliance, core.CodeRoot, catalogOff, "catalog is not a dictionary")
	}
	if t, _ := catalog.GetName("Type"); t != "Catalog" {
		r.report(newProblem(core.LevelCompliance, core.CodeCatType, catalogOff, "catalog /Type is %q", t))
	}

	pagesRef, ok := catalog.GetIndirectRef("Pages")
	if !ok {
		return newProblem(core.LevelCompliance, core.CodeCatPages, catalogOff, "catalog /Pages is missing or not a reference")
	}
	pagesOff, ok := r.parser.ObjectOffset(pagesRef)
	if !ok {
		return newProblem(core.LevelCompliance, core.CodeCatPages, catalogOff, "pages object %d is not in the xref table", pagesRef.Number)
	}
	count, ok := r.parser.DictionaryLookup(pagesOff, "Count")
	n, isInt := count.(core.Int)
	if !ok || !isInt || n < 0 {
		return newProblem(core.LevelCompliance, core.CodePagesCount, pagesOff, "page tree root has no valid /Count")
	}

	// /Count is untrusted until the walk confirms it.
	capacity := int(n)
	if capacity > r.xref.Size() {
		capacity = r.xref.Size()
	}
	r.pages = make([]int64, 0, capacity)
	if p := r.walkPageTree(pagesOff, 0); p != nil {
		return p
	}
	if len(r.pages) != int(n) {
		return newProblem(core.LevelCompliance, core.CodePageCounts, pagesOff,
			"page tree has %d pages but /Count is %d", len(r.pages), n)
	}
	return nil
}

func (r *Reader) walkPageTree(off int64, depth int) *problem {
	if depth > maxTreeDepth {
		return newProblem(core.LevelLimit, core.CodePageKids, off, "page tree is deeper than %d levels", maxTreeDepth)
	}
	obj, _ := r.parser.ParseObjectAtOffset(off)
	node, ok := obj.(*core.Dict)
	if !ok {
		return newProblem(core.LevelCompliance, core.CodeObject, off, "page tree node is not a dictionary")
	}

	t, ok := node.GetName("Type")
	if !ok {
		r.report(newProblem(core.LevelWarning, core.CodePageType, off, "page tree node without /Type ignored"))
		return nil
	}
	switch t {
	case "Page":
		r.pages = append(r.pages, off)
		return nil
	case "Pages":
	default:
		r.report(newProblem(core.LevelWarning, core.CodePageType2, off, "page tree node of type %q ignored", t))
		return nil
	}

	kidsObj, ok := r.parser.Resolve(node.Get("Kids"))
	if !ok {
		return newProblem(core.LevelCompliance, core.CodePageKids, off, "pages node has no /Kids")
	}
	kids, ok := kidsObj.(core.Array)
	if !ok {
		return newProblem(core.LevelCompliance, core.CodePageKidsArray, off, "/Kids is not an array")
	}
	for i, kid := range kids {
		ref, ok := kid.(core.IndirectRef)
		if !ok {
			return newProblem(core.LevelCompliance, core.CodePageKidsEnd, off, "/Kids entry %d is not a reference", i)
		}
		kidOff, ok := r.parser.ObjectOffset(ref)
		if !ok {
			return newProblem(core.LevelCompliance, core.CodeNoSuchXref, off, "page tree kid %d is not in the xref table", ref.Number)
		}
		if p := r.walkPageTree(kidOff, depth+1); p != nil {
			return p
		}
	}
	return nil
}

// Info returns the document information dictionary. Text strings are
// decoded; a missing dictionary yields an empty Info.
func (r *Reader) Info() (Info, error) {
	var info Info
	if !r.open {
		return info, core.APIError("Info", core.ErrReaderNotOpen)
	}
	obj, ok := r.parser.Resolve(r.trailer.Get("Info"))
	dict, isDict := obj.(*core.Dict)
	if !ok || !isDict {
		return info, nil
	}
	text := func(key string) string {
		s, _ := dict.GetString(key)
		return s.Text()
	}
	info.Producer = text("Producer")
	info.Creator = text("Creator")
	info.Author = text("Author")
	info.Title = text("Title")
	info.Subject = text("Subject")
	info.Keywords = text("Keywords")
	if created := text("CreationDate"); created != "" {
		if t, err := core.ParseDate(created); err == nil {
			info.CreationDate = t
		}
	}
	return info, nil
}
