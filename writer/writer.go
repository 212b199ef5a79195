package writer

import (
	"crypto/md5"
	"crypto/rand"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/tsawler/pdfraster/codec"
	"github.com/tsawler/pdfraster/core"
	"github.com/tsawler/pdfraster/model"
	"github.com/tsawler/pdfraster/observability"
)

// Producer is the /Producer entry of every document.
const Producer = "pdfraster " + core.LibraryVersion

const (
	header = "%PDF-" + core.PDFVersion + "\n%\xE2\xE3\xCF\xD3\n"
	tag    = "%PDF-raster-" + core.PDFRasterVersion + "\n"
)

// pageSettings are captured when a page starts and apply to every strip
// of that page.
type pageSettings struct {
	xdpi, ydpi          float64
	rotation            int
	format              model.PixelFormat
	compression         model.Compression
	quality             int
	bitonalUncalibrated bool
	calibrateGray       bool
	calibrateRGB        bool
}

type page struct {
	ref        core.IndirectRef
	dict       *core.Dict
	xobjects   *core.Dict
	settings   pageSettings
	width      int
	strips     []int // rows per strip
	colorspace core.Object
}

// Writer emits a PDF/raster document in a single pass. Objects are written
// as soon as they are complete; only the page tree, catalog and Info
// dictionary are held until End.
//
// A Writer is not safe for concurrent use.
type Writer struct {
	codec  codec.Codec
	log    observability.Logger
	now    func() time.Time
	random io.Reader

	settings pageSettings
	meta     *core.Dict
	grayICC  *iccProfile
	rgbICC   *iccProfile

	// per document
	active  bool
	out     *output
	xref    *core.XRefWriter
	catalog core.IndirectRef
	pages   core.IndirectRef
	info    core.IndirectRef
	kids    core.Array
	trailer *core.Dict
	created string
	page    *page
}

// New returns an inactive Writer with the default page settings: 300 dpi,
// bitonal, uncompressed, calibrated gray and RGB.
func New(opts ...Option) *Writer {
	w := &Writer{
		codec:  codec.Default(),
		log:    observability.NopLogger{},
		now:    time.Now,
		random: rand.Reader,
		meta:   core.NewDict(),
		settings: pageSettings{
			xdpi:          300,
			ydpi:          300,
			format:        model.FormatBitonal,
			compression:   model.CompressionUncompressed,
			quality:       codec.DefaultJPEGQuality,
			calibrateGray: true,
			calibrateRGB:  true,
		},
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Active reports whether a document is being written.
func (w *Writer) Active() bool {
	return w.active
}

// Begin starts a new document on dst and writes the file header.
func (w *Writer) Begin(dst io.Writer) error {
	if w.active {
		return core.APIError("Begin", core.ErrWriterActive)
	}
	if dst == nil {
		return &core.Error{Op: "Begin", Level: core.LevelAPI, Code: core.CodeAPINullParam, Offset: -1,
			Err: fmt.Errorf("nil destination")}
	}

	w.out = newOutput(dst)
	w.xref = core.NewXRefWriter()
	w.kids = nil
	w.page = nil
	if w.grayICC != nil {
		w.grayICC.written = false
	}
	if w.rgbICC != nil {
		w.rgbICC.written = false
	}

	catalog := core.NewDict()
	catalog.Set("Type", core.Name("Catalog"))
	w.catalog = w.xref.CreateReference(catalog)
	pages := core.NewDict()
	pages.Set("Type", core.Name("Pages"))
	w.pages = w.xref.CreateReference(pages)
	catalog.Set("Pages", w.pages)
	w.info = w.xref.CreateReference(core.NewDict())

	w.created = core.FormatDate(w.now())
	id, err := w.fileID()
	if err != nil {
		return &core.Error{Op: "Begin", Level: core.LevelOther, Offset: -1, Err: err}
	}
	w.trailer = core.NewDict()
	w.trailer.Set("Size", core.Int(0))
	w.trailer.Set("Root", w.catalog)
	w.trailer.Set("Info", w.info)
	w.trailer.Set("ID", core.Array{id, id})

	w.out.WriteString(header)
	if w.out.err != nil {
		return w.ioError("Begin", w.out.err)
	}
	w.active = true
	w.log.Debug("document started", observability.String("created", w.created))
	return nil
}

// fileID hashes the creation date together with random bytes.
func (w *Writer) fileID() (core.String, error) {
	salt := make([]byte, 16)
	if _, err := io.ReadFull(w.random, salt); err != nil {
		return core.String{}, fmt.Errorf("failed to generate file ID: %w", err)
	}
	h := md5.New()
	h.Write([]byte(w.created))
	h.Write(salt)
	return core.NewHexString(h.Sum(nil)), nil
}

// End closes any open page, writes the page tree, catalog, Info
// dictionary, PDF/raster tag, xref table and trailer, and flushes.
func (w *Writer) End() error {
	if !w.active {
		return core.APIError("End", core.ErrWriterInactive)
	}
	if err := w.EndPage(); err != nil {
		return err
	}

	pages := w.xref.Value(w.pages).(*core.Dict)
	pages.Set("Count", core.Int(len(w.kids)))
	pages.Set("Kids", w.kids)

	info := core.NewDict()
	info.Set("Producer", core.NewString(Producer))
	info.Set("CreationDate", core.NewString(w.created))
	for _, k := range w.meta.Keys() {
		info.Set(k, w.meta.Get(k))
	}
	w.xref.SetValue(w.info, info)

	for _, ref := range []core.IndirectRef{w.pages, w.catalog, w.info} {
		if err := w.out.writeIndirect(w.xref, ref, w.xref.Value(ref)); err != nil {
			return w.ioError("End", err)
		}
	}

	w.out.WriteString(tag)
	start := w.out.pos
	if _, err := w.xref.WriteTo(w.out); err != nil {
		if cerr, ok := err.(*core.Error); ok {
			return cerr
		}
		return w.ioError("End", err)
	}
	w.trailer.Set("Size", core.Int(w.xref.Count()))
	w.out.WriteString("trailer\n")
	core.WriteObject(w.out, w.trailer)
	fmt.Fprintf(w.out, "\nstartxref\n%d\n%%%%EOF\n", start)
	if err := w.out.flush(); err != nil {
		return w.ioError("End", err)
	}

	w.active = false
	w.log.Debug("document finished",
		observability.Int("pages", len(w.kids)),
		observability.Int("objects", w.xref.Count()-1),
		observability.Int64("size", w.out.pos))
	return nil
}

func (w *Writer) setInfo(key, value string) {
	w.meta.Set(key, core.NewTextString(value))
}

// SetCreator sets the /Creator entry of the Info dictionary.
func (w *Writer) SetCreator(s string) { w.setInfo("Creator", s) }

// SetAuthor sets /Author.
func (w *Writer) SetAuthor(s string) { w.setInfo("Author", s) }

// SetTitle sets /Title.
func (w *Writer) SetTitle(s string) { w.setInfo("Title", s) }

// SetSubject sets /Subject.
func (w *Writer) SetSubject(s string) { w.setInfo("Subject", s) }

// SetKeywords sets /Keywords.
func (w *Writer) SetKeywords(s string) { w.setInfo("Keywords", s) }

// SetResolution sets the resolution of subsequent pages in pixels per
// inch. Non-positive values are ignored.
func (w *Writer) SetResolution(xdpi, ydpi float64) {
	if xdpi > 0 {
		w.settings.xdpi = xdpi
	}
	if ydpi > 0 {
		w.settings.ydpi = ydpi
	}
}

// SetRotation sets the clockwise display rotation of subsequent pages.
// The angle is normalized into 0..359; values that are not a multiple of
// 90 are ignored.
func (w *Writer) SetRotation(degrees int) {
	for degrees < 0 {
		degrees += 360
	}
	degrees %= 360
	if degrees%90 == 0 {
		w.settings.rotation = degrees
	}
}

// SetPixelFormat sets the pixel format of subsequent pages.
func (w *Writer) SetPixelFormat(f model.PixelFormat) {
	w.settings.format = f
}

// SetCompression sets the strip compression of subsequent pages. The
// pairing with the pixel format is checked when a strip is written.
func (w *Writer) SetCompression(c model.Compression) {
	w.settings.compression = c
}

// SetJPEGQuality sets the JPEG quality, clamped to 1..100.
func (w *Writer) SetJPEGQuality(q int) {
	if q < 1 {
		q = 1
	} else if q > 100 {
		q = 100
	}
	w.settings.quality = q
}

// SetBitonalUncalibrated selects DeviceGray instead of CalGray for bitonal
// pages and returns the previous setting.
func (w *Writer) SetBitonalUncalibrated(uncalibrated bool) bool {
	prev := w.settings.bitonalUncalibrated
	w.settings.bitonalUncalibrated = uncalibrated
	return prev
}

// SetCalibratedGray selects CalGray (true) or DeviceGray for gray pages.
func (w *Writer) SetCalibratedGray(on bool) {
	w.settings.calibrateGray = on
}

// SetCalibratedRGB selects CalRGB (true) or DeviceRGB for color pages.
func (w *Writer) SetCalibratedRGB(on bool) {
	w.settings.calibrateRGB = on
}

// SetGrayICCProfile embeds profile for bitonal and gray pages. nil removes
// it.
func (w *Writer) SetGrayICCProfile(profile []byte) {
	w.grayICC = newICCProfile(profile)
}

// SetRGBICCProfile embeds profile for RGB pages. nil removes it.
func (w *Writer) SetRGBICCProfile(profile []byte) {
	w.rgbICC = newICCProfile(profile)
}

func newICCProfile(data []byte) *iccProfile {
	if len(data) == 0 {
		return nil
	}
	return &iccProfile{data: append([]byte(nil), data...)}
}

// StartPage begins a page width pixels wide, ending any open page first.
func (w *Writer) StartPage(width int) error {
	if !w.active {
		return core.APIError("StartPage", core.ErrWriterInactive)
	}
	if width <= 0 {
		return core.APIError("StartPage", fmt.Errorf("invalid page width %d", width))
	}
	if err := w.EndPage(); err != nil {
		return err
	}

	p := &page{
		dict:     core.NewDict(),
		xobjects: core.NewDict(),
		settings: w.settings,
		width:    width,
	}
	resources := core.NewDict()
	resources.Set("XObject", p.xobjects)
	p.dict.Set("Type", core.Name("Page"))
	p.dict.Set("Parent", w.pages)
	p.dict.Set("MediaBox", mediaBox(model.NewRect(pointsFor(width, p.settings.xdpi), 0)))
	p.dict.Set("Resources", resources)
	if p.settings.rotation != 0 {
		p.dict.Set("Rotate", core.Int(p.settings.rotation))
	}
	p.ref = w.xref.CreateReference(p.dict)
	w.page = p

	w.log.Debug("page started",
		observability.Int("page", len(w.kids)),
		observability.Int("width", width),
		observability.Float64("xdpi", p.settings.xdpi),
		observability.Float64("ydpi", p.settings.ydpi),
		observability.String("format", p.settings.format.String()),
		observability.String("compression", p.settings.compression.String()))
	return nil
}

// WriteStrip compresses rows of packed pixels with the page's compression
// and appends them to the open page as the next strip.
func (w *Writer) WriteStrip(rows int, pixels []byte) error {
	const op = "WriteStrip"
	p, err := w.checkStrip(op, rows)
	if err != nil {
		return err
	}
	s := p.settings
	if need := s.format.ImageBytes(p.width, rows); len(pixels) < need {
		return &core.Error{Op: op, Level: core.LevelAPI, Code: core.CodeStripBufferSize, Offset: -1,
			Err: fmt.Errorf("pixel buffer has %d bytes, need %d", len(pixels), need)}
	}

	data, err := w.codec.Encode(pixels, codec.Params{
		Width:       p.width,
		Height:      rows,
		Format:      s.format,
		Compression: s.compression,
		Quality:     s.quality,
		K:           -1,
		BlackIs1:    true,
	})
	if err != nil {
		return &core.Error{Op: op, Level: core.LevelOther, Offset: -1, Err: fmt.Errorf("failed to encode strip: %w", err)}
	}
	return w.writeStrip(op, p, rows, data)
}

// WriteEncodedStrip appends a strip whose payload is already compressed
// with the page's compression.
func (w *Writer) WriteEncodedStrip(rows int, data []byte) error {
	const op = "WriteEncodedStrip"
	p, err := w.checkStrip(op, rows)
	if err != nil {
		return err
	}
	return w.writeStrip(op, p, rows, data)
}

func (w *Writer) checkStrip(op string, rows int) (*page, error) {
	if !w.active {
		return nil, core.APIError(op, core.ErrWriterInactive)
	}
	if w.page == nil {
		return nil, core.APIError(op, core.ErrNoPageOpen)
	}
	if rows <= 0 {
		return nil, core.APIError(op, fmt.Errorf("invalid strip height %d", rows))
	}
	s := w.page.settings
	if !s.format.Valid() {
		return nil, core.APIError(op, fmt.Errorf("invalid pixel format %s", s.format))
	}
	if s.compression == model.CompressionNull {
		return nil, core.APIError(op, fmt.Errorf("invalid compression %s", s.compression))
	}
	if err := codec.Validate(s.format, s.compression); err != nil {
		return nil, core.APIError(op, err)
	}
	return w.page, nil
}

func (w *Writer) writeStrip(op string, p *page, rows int, data []byte) error {
	s := p.settings
	if p.colorspace == nil {
		cs, err := w.colorspace(s)
		if err != nil {
			return w.ioError(op, err)
		}
		p.colorspace = cs
	}

	stream := core.NewStream(data)
	d := stream.Dict
	d.Set("Type", core.Name("XObject"))
	d.Set("Subtype", core.Name("Image"))
	d.Set("Width", core.Int(p.width))
	d.Set("Height", core.Int(rows))
	d.Set("BitsPerComponent", core.Int(s.format.BitsPerComponent()))
	d.Set("ColorSpace", p.colorspace)
	if filter := s.compression.FilterName(); filter != "" {
		d.Set("Filter", core.Name(filter))
	}
	if s.compression == model.CompressionCCITTG4 {
		parms := core.NewDict()
		parms.Set("K", core.Int(-1))
		parms.Set("Columns", core.Int(p.width))
		parms.Set("Rows", core.Int(rows))
		parms.Set("BlackIs1", core.Bool(true))
		d.Set("DecodeParms", parms)
	}
	if s.format == model.FormatBitonal {
		d.Set("Decode", core.Array{core.Int(0), core.Int(1)})
	}

	name := "strip" + strconv.Itoa(len(p.strips))
	ref := w.xref.CreateReference(nil)
	if err := w.out.writeIndirect(w.xref, ref, stream); err != nil {
		return w.ioError(op, err)
	}
	p.xobjects.Set(name, ref)
	p.strips = append(p.strips, rows)

	w.log.Debug("strip written",
		observability.String("name", name),
		observability.Int("rows", rows),
		observability.Int("bytes", len(data)))
	return nil
}

// EndPage finishes the open page by writing its content stream and page
// object. It does nothing when no page is open.
func (w *Writer) EndPage() error {
	if !w.active {
		return core.APIError("EndPage", core.ErrWriterInactive)
	}
	p := w.page
	if p == nil {
		return nil
	}
	w.page = nil

	totalRows := 0
	for _, rows := range p.strips {
		totalRows += rows
	}
	width := pointsFor(p.width, p.settings.xdpi)
	height := pointsFor(totalRows, p.settings.ydpi)
	p.dict.Set("MediaBox", mediaBox(model.NewRect(width, height)))

	contents := core.NewStream([]byte(contentStream(width, height, p.strips, p.settings.ydpi)))
	ref := w.xref.CreateReference(contents)
	if err := w.out.writeIndirect(w.xref, ref, contents); err != nil {
		return w.ioError("EndPage", err)
	}
	p.dict.Set("Contents", ref)
	if err := w.out.writeIndirect(w.xref, p.ref, p.dict); err != nil {
		return w.ioError("EndPage", err)
	}
	w.kids = append(w.kids, p.ref)

	w.log.Debug("page finished",
		observability.Int("page", len(w.kids)-1),
		observability.Int("strips", len(p.strips)),
		observability.Int("height", totalRows))
	return nil
}

// contentStream paints each strip in its band of the page, from the top.
func contentStream(width, height float64, strips []int, ydpi float64) string {
	var b strings.Builder
	y := height
	for i, rows := range strips {
		h := pointsFor(rows, ydpi)
		m := model.Scale(width, h).Multiply(model.Translate(0, y-h))
		fmt.Fprintf(&b, "q\n%s %s %s %s %s %s cm\n/strip%d Do\nQ\n",
			core.Real(m[0]), core.Real(m[1]), core.Real(m[2]),
			core.Real(m[3]), core.Real(m[4]), core.Real(m[5]), i)
		y -= h
	}
	return b.String()
}

func mediaBox(r model.Rect) core.Array {
	v := r.Array()
	return core.Array{core.Real(v[0]), core.Real(v[1]), core.Real(v[2]), core.Real(v[3])}
}

func pointsFor(pixels int, dpi float64) float64 {
	return float64(pixels) / dpi * 72
}

func (w *Writer) ioError(op string, err error) error {
	var pos int64 = -1
	if w.out != nil {
		pos = w.out.pos
	}
	w.log.Error("write failed", observability.String("op", op), observability.Int64("offset", pos), observability.Error("err", err))
	return &core.Error{Op: op, Level: core.LevelIO, Offset: pos, Err: err}
}
