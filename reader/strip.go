package reader

import (
	"github.com/tsawler/pdfraster/codec"
	"github.com/tsawler/pdfraster/core"
	"github.com/tsawler/pdfraster/model"
)

// ReadStripRaw returns the payload of a strip exactly as stored.
func (r *Reader) ReadStripRaw(page, strip int) ([]byte, error) {
	const op = "ReadStripRaw"
	s, err := r.StripInfo(page, strip)
	if err != nil {
		return nil, relabel(op, err)
	}
	return r.readRaw(op, s)
}

func (r *Reader) readRaw(op string, s model.StripInfo) ([]byte, error) {
	data, err := r.tok.ReadBytes(s.DataPosition, int(s.RawSize))
	if err != nil {
		return nil, r.fail(op, newProblem(core.LevelIO, core.CodeStripRead, s.DataPosition, "failed to read /%s: %v", s.Name, err))
	}
	return data, nil
}

// ReadStripDecoded returns the packed pixels of a strip.
func (r *Reader) ReadStripDecoded(page, strip int) ([]byte, error) {
	const op = "ReadStripDecoded"
	s, err := r.StripInfo(page, strip)
	if err != nil {
		return nil, relabel(op, err)
	}
	return r.decodeStrip(op, s)
}

func (r *Reader) decodeStrip(op string, s model.StripInfo) ([]byte, error) {
	raw, err := r.readRaw(op, s)
	if err != nil {
		return nil, err
	}
	pixels, err := r.codec.Decode(raw, codec.Params{
		Width:       s.Width,
		Height:      s.Height,
		Format:      s.Format,
		Compression: s.Compression,
		K:           s.K,
		BlackIs1:    s.BlackIs1,
		Predictor:   s.Predictor,
	})
	if err != nil {
		return nil, r.fail(op, newProblem(core.LevelOther, core.CodeStripDecode, s.Position, "failed to decode /%s: %v", s.Name, err))
	}
	return pixels, nil
}

// ReadPagePixels decodes every strip of a page and returns the packed
// pixels of the whole page, top row first.
func (r *Reader) ReadPagePixels(page int) ([]byte, error) {
	const op = "ReadPagePixels"
	if _, err := r.PageInfo(page); err != nil {
		return nil, relabel(op, err)
	}

	var out []byte
	for _, s := range r.stripCache[page] {
		pixels, err := r.decodeStrip(op, s)
		if err != nil {
			return nil, err
		}
		if want := s.Format.ImageBytes(s.Width, s.Height); len(pixels) != want {
			return nil, r.fail(op, newProblem(core.LevelInternal, core.CodeStripBufferSize, s.Position,
				"/%s decoded to %d bytes, want %d", s.Name, len(pixels), want))
		}
		out = append(out, pixels...)
	}
	return out, nil
}

// ReadICCProfile returns the embedded ICC profile of a page's colorspace,
// or nil when the page does not use one.
func (r *Reader) ReadICCProfile(page int) ([]byte, error) {
	const op = "ReadICCProfile"
	info, err := r.PageInfo(page)
	if err != nil {
		return nil, relabel(op, err)
	}
	icc := info.Colorspace.ICC
	if icc == nil {
		return nil, nil
	}
	data, err := r.tok.ReadBytes(icc.DataOffset, int(icc.Length))
	if err != nil {
		return nil, r.fail(op, newProblem(core.LevelIO, core.CodeIccProfileRead, icc.Position, "failed to read ICC profile: %v", err))
	}
	// Profiles written by other producers may be Flate compressed.
	dict, _, _, ok := r.parser.ParseStreamHeader(icc.Position)
	if !ok || !dict.Has("Filter") {
		return data, nil
	}
	stream := &core.Stream{Dict: dict, Data: data}
	decoded, err := stream.Decode()
	if err != nil {
		return nil, r.fail(op, newProblem(core.LevelCompliance, core.CodeIccProfile, icc.Position, "failed to decode ICC profile: %v", err))
	}
	return decoded, nil
}
