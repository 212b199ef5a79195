package reader

import (
	"sort"
	"strconv"
	"strings"

	"github.com/tsawler/pdfraster/core"
	"github.com/tsawler/pdfraster/model"
)

// PageInfo returns the metadata of page index (0-based).
func (r *Reader) PageInfo(index int) (model.PageInfo, error) {
	const op = "PageInfo"
	if !r.open {
		return model.PageInfo{}, core.APIError(op, core.ErrReaderNotOpen)
	}
	if index < 0 || index >= len(r.pages) {
		return model.PageInfo{}, core.APIError(op, core.ErrNoSuchPage)
	}
	if info, ok := r.pageCache[index]; ok {
		return info, nil
	}

	info, strips, p := r.parsePage(r.pages[index])
	if p != nil {
		return model.PageInfo{}, r.fail(op, p)
	}
	r.pageCache[index] = info
	r.stripCache[index] = strips
	return info, nil
}

func (r *Reader) parsePage(off int64) (model.PageInfo, []model.StripInfo, *problem) {
	info := model.PageInfo{Offset: off}

	box, _ := r.parser.DictionaryLookup(off, "MediaBox")
	arr, ok := box.(core.Array)
	if !ok {
		return info, nil, newProblem(core.LevelCompliance, core.CodePageMediabox, off, "page has no /MediaBox array")
	}
	nums, ok := arr.Numbers()
	if !ok || len(nums) != 4 {
		return info, nil, newProblem(core.LevelCompliance, core.CodeMediaboxElements, off, "/MediaBox must hold four numbers")
	}
	info.MediaBox = model.RectFromArray([4]float64{nums[0], nums[1], nums[2], nums[3]})

	if rot, ok := r.parser.DictionaryLookup(off, "Rotate"); ok {
		n, isInt := rot.(core.Int)
		if !isInt || n%90 != 0 {
			r.report(newProblem(core.LevelCompliance, core.CodePageRotation, off, "/Rotate %v is not a multiple of 90", rot))
		} else {
			info.Rotation = int(n % 360)
			if info.Rotation < 0 {
				info.Rotation += 360
			}
		}
	}

	res, _ := r.parser.DictionaryLookup(off, "Resources")
	resources, ok := res.(*core.Dict)
	if !ok {
		return info, nil, newProblem(core.LevelCompliance, core.CodeResources, off, "page has no /Resources dictionary")
	}
	xobj, ok := r.parser.Resolve(resources.Get("XObject"))
	xobjects, isDict := xobj.(*core.Dict)
	if !ok || !isDict {
		return info, nil, newProblem(core.LevelCompliance, core.CodeXObject, off, "page resources have no /XObject dictionary")
	}

	names := stripNames(xobjects)
	strips := make([]model.StripInfo, 0, len(names))
	for i, name := range names {
		ref, ok := xobjects.Get(name).(core.IndirectRef)
		if !ok {
			return info, nil, newProblem(core.LevelCompliance, core.CodeStripRef, off, "/%s is not a reference", name)
		}
		stripOff, ok := r.parser.ObjectOffset(ref)
		if !ok {
			return info, nil, newProblem(core.LevelCompliance, core.CodeStripMissing, off, "/%s object %d is not in the xref table", name, ref.Number)
		}
		s, p := r.parseStrip(name, stripOff)
		if p != nil {
			return info, nil, p
		}

		if i == 0 {
			info.Width = s.Width
			info.Format = s.Format
			info.Colorspace = s.Colorspace
		} else {
			switch {
			case s.Width != info.Width:
				return info, nil, newProblem(core.LevelCompliance, core.CodeStripWidthSame, stripOff, "/%s is %d pixels wide, page is %d", name, s.Width, info.Width)
			case s.Format != info.Format:
				return info, nil, newProblem(core.LevelCompliance, core.CodeStripFormatSame, stripOff, "/%s is %s, page is %s", name, s.Format, info.Format)
			case !s.Colorspace.Equal(info.Colorspace):
				return info, nil, newProblem(core.LevelCompliance, core.CodeStripColorspaceSame, stripOff, "/%s has a different colorspace", name)
			}
		}
		info.Height += s.Height
		if int(s.RawSize) > info.MaxStripSize {
			info.MaxStripSize = int(s.RawSize)
		}
		strips = append(strips, s)
	}
	info.StripCount = len(strips)

	if info.MediaBox.IsValid() {
		info.XDpi = float64(info.Width) * 72 / info.MediaBox.Width()
		info.YDpi = float64(info.Height) * 72 / info.MediaBox.Height()
	}
	return info, strips, nil
}

// stripNames returns the strip<N> keys of xobjects ordered by N.
func stripNames(xobjects *core.Dict) []string {
	type entry struct {
		name string
		n    int
	}
	var entries []entry
	for _, key := range xobjects.Keys() {
		if !strings.HasPrefix(key, "strip") {
			continue
		}
		n, err := strconv.Atoi(key[len("strip"):])
		if err != nil || n < 0 {
			continue
		}
		entries = append(entries, entry{key, n})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].n < entries[j].n })

	names := make([]string, len(entries))
	for i, e := range entries {
		names[i] = e.name
	}
	return names
}

// Strips beyond these sizes are refused before any buffer is sized from
// their dictionaries.
const (
	maxStripWidth = 1 << 18
	maxStripBytes = 1 << 30
)

// parseStrip reads the image XObject at off without loading its payload.
func (r *Reader) parseStrip(name string, off int64) (model.StripInfo, *problem) {
	s := model.StripInfo{Name: name, Position: off}
	dict, dataPos, length, ok := r.parser.ParseStreamHeader(off)
	if !ok {
		return s, newProblem(core.LevelCompliance, core.CodeStripDict, off, "/%s is not a valid stream", name)
	}
	if length > r.size-dataPos {
		return s, newProblem(core.LevelCompliance, core.CodeStripLength, off, "/%s /Length %d runs past the end of the file", name, length)
	}
	s.DataPosition = dataPos
	s.RawSize = length

	if t, ok := dict.GetName("Type"); ok && t != "XObject" {
		return s, newProblem(core.LevelCompliance, core.CodeStripTypeXObject, off, "/%s has /Type /%s", name, t)
	}
	if st, _ := dict.GetName("Subtype"); st != "Image" {
		return s, newProblem(core.LevelCompliance, core.CodeStripSubtype, off, "/%s is not an image", name)
	}

	width, _ := r.resolveInt(dict.Get("Width"))
	if width <= 0 {
		return s, newProblem(core.LevelCompliance, core.CodeStripWidth, off, "/%s has no valid /Width", name)
	}
	height, _ := r.resolveInt(dict.Get("Height"))
	if height <= 0 {
		return s, newProblem(core.LevelCompliance, core.CodeStripHeight, off, "/%s has no valid /Height", name)
	}
	bpc, ok := r.resolveInt(dict.Get("BitsPerComponent"))
	if !ok || (bpc != 1 && bpc != 8 && bpc != 16) {
		return s, newProblem(core.LevelCompliance, core.CodeStripBitsPerComponent, off, "/%s has invalid /BitsPerComponent", name)
	}
	if width > maxStripWidth {
		return s, newProblem(core.LevelLimit, core.CodeStripWidth, off, "/%s is %d pixels wide, limit is %d", name, width, maxStripWidth)
	}
	s.Width, s.Height = width, height

	csObj := dict.Get("ColorSpace")
	if csObj == nil {
		return s, newProblem(core.LevelCompliance, core.CodeStripColorspace, off, "/%s has no /ColorSpace", name)
	}
	cs, p := r.parseColorspace(csObj, off)
	if p != nil {
		return s, p
	}
	cs.BitsPerComponent = bpc
	s.Colorspace = cs

	s.Format = model.FormatFor(cs.IsGray(), bpc)
	if s.Format == model.FormatNull {
		return s, newProblem(core.LevelCompliance, core.CodeStripCsBpc, off, "/%s: %s with %d bits per component", name, cs.Style, bpc)
	}
	if height > maxStripBytes/s.Format.RowBytes(width) {
		return s, newProblem(core.LevelLimit, core.CodeStripHeight, off, "/%s has %d rows of %d bytes, limit is %d bytes", name, height, s.Format.RowBytes(width), maxStripBytes)
	}

	filter, parms, p := r.stripFilter(dict, off)
	if p != nil {
		return s, p
	}
	s.Compression = model.CompressionForFilter(filter)
	if s.Compression == model.CompressionNull {
		return s, newProblem(core.LevelCompliance, core.CodeStripFilter, off, "/%s uses unsupported filter /%s", name, filter)
	}
	if parms != nil {
		if k, ok := parms.GetInt("K"); ok {
			s.K = int(k)
		}
		if b, ok := parms.GetBool("BlackIs1"); ok {
			s.BlackIs1 = bool(b)
		}
		if pr, ok := parms.GetInt("Predictor"); ok {
			s.Predictor = int(pr)
		}
	}
	return s, nil
}

// stripFilter returns the single filter name and its parameters. Filter
// chains are not part of PDF/raster.
func (r *Reader) stripFilter(dict *core.Dict, off int64) (string, *core.Dict, *problem) {
	filterObj, _ := r.parser.Resolve(dict.Get("Filter"))
	parmsObj, _ := r.parser.Resolve(dict.Get("DecodeParms"))

	var name core.Name
	switch f := filterObj.(type) {
	case nil:
		return "", nil, nil
	case core.Name:
		name = f
	case core.Array:
		if len(f) != 1 {
			return "", nil, newProblem(core.LevelCompliance, core.CodeStripFilter, off, "strip has %d filters", len(f))
		}
		n, ok := f[0].(core.Name)
		if !ok {
			return "", nil, newProblem(core.LevelCompliance, core.CodeStripFilter, off, "strip /Filter is not a name")
		}
		name = n
		if a, ok := parmsObj.(core.Array); ok && len(a) == 1 {
			parmsObj, _ = r.parser.Resolve(a[0])
		}
	default:
		return "", nil, newProblem(core.LevelCompliance, core.CodeStripFilter, off, "strip /Filter is not a name")
	}

	parms, _ := parmsObj.(*core.Dict)
	return string(name), parms, nil
}

func (r *Reader) resolveInt(obj core.Object) (int, bool) {
	obj, ok := r.parser.Resolve(obj)
	if !ok {
		return 0, false
	}
	n, ok := obj.(core.Int)
	return int(n), ok
}

// StripInfo returns the metadata of a strip of a page.
func (r *Reader) StripInfo(page, strip int) (model.StripInfo, error) {
	const op = "StripInfo"
	if _, err := r.PageInfo(page); err != nil {
		return model.StripInfo{}, relabel(op, err)
	}
	strips := r.stripCache[page]
	if strip < 0 || strip >= len(strips) {
		return model.StripInfo{}, core.APIError(op, core.ErrNoSuchStrip)
	}
	return strips[strip], nil
}

// relabel reports err under op when it is one of ours.
func relabel(op string, err error) error {
	if e, ok := err.(*core.Error); ok {
		c := *e
		c.Op = op
		return &c
	}
	return err
}

// PageFormat returns the pixel format of a page.
func (r *Reader) PageFormat(page int) (model.PixelFormat, error) {
	info, err := r.PageInfo(page)
	return info.Format, err
}

// PageWidth returns the width of a page in pixels.
func (r *Reader) PageWidth(page int) (int, error) {
	info, err := r.PageInfo(page)
	return info.Width, err
}

// PageHeight returns the height of a page in pixels.
func (r *Reader) PageHeight(page int) (int, error) {
	info, err := r.PageInfo(page)
	return info.Height, err
}

// PageXDpi returns the horizontal resolution of a page.
func (r *Reader) PageXDpi(page int) (float64, error) {
	info, err := r.PageInfo(page)
	return info.XDpi, err
}

// PageYDpi returns the vertical resolution of a page.
func (r *Reader) PageYDpi(page int) (float64, error) {
	info, err := r.PageInfo(page)
	return info.YDpi, err
}

// PageRotation returns the clockwise display rotation of a page.
func (r *Reader) PageRotation(page int) (int, error) {
	info, err := r.PageInfo(page)
	return info.Rotation, err
}

// PageStripCount returns the number of strips on a page.
func (r *Reader) PageStripCount(page int) (int, error) {
	info, err := r.PageInfo(page)
	return info.StripCount, err
}

// PageMaxStripSize returns the largest raw strip payload of a page.
func (r *Reader) PageMaxStripSize(page int) (int, error) {
	info, err := r.PageInfo(page)
	return info.MaxStripSize, err
}
