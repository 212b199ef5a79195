package reader

import (
	"image"

	"github.com/tsawler/pdfraster/codec"
	"github.com/tsawler/pdfraster/core"
	"github.com/tsawler/pdfraster/model"
)

// StripImage is one decoded strip of a page.
type StripImage struct {
	Name        string // XObject name (e.g., "strip0")
	Width       int
	Height      int
	Format      model.PixelFormat
	Compression model.Compression // compression of the stored payload
	Data        []byte            // decoded, packed pixels
}

// Image returns the strip as an image.Image.
func (s StripImage) Image() (image.Image, error) {
	return codec.ToImage(s.Data, s.Width, s.Height, s.Format)
}

// ToPNG encodes the strip as PNG.
func (s StripImage) ToPNG() ([]byte, error) {
	return codec.EncodePNG(s.Data, s.Width, s.Height, s.Format)
}

// StripImages decodes every strip of a page, in page order.
func (r *Reader) StripImages(page int) ([]StripImage, error) {
	const op = "StripImages"
	if _, err := r.PageInfo(page); err != nil {
		return nil, relabel(op, err)
	}
	strips := r.stripCache[page]
	images := make([]StripImage, 0, len(strips))
	for _, s := range strips {
		data, err := r.decodeStrip(op, s)
		if err != nil {
			return nil, err
		}
		images = append(images, StripImage{
			Name:        s.Name,
			Width:       s.Width,
			Height:      s.Height,
			Format:      s.Format,
			Compression: s.Compression,
			Data:        data,
		})
	}
	return images, nil
}

// PageImage decodes a whole page into an image.Image. Bitonal pages come
// back as 8-bit gray.
func (r *Reader) PageImage(page int) (image.Image, error) {
	const op = "PageImage"
	info, pixels, err := r.pagePixels(op, page)
	if err != nil {
		return nil, err
	}
	img, err := codec.ToImage(pixels, info.Width, info.Height, info.Format)
	if err != nil {
		return nil, &core.Error{Op: op, Level: core.LevelOther, Code: core.CodeStripDecode, Offset: info.Offset, Err: err}
	}
	return img, nil
}

// PagePNG decodes a page and encodes it as PNG, which is what OCR engines
// expect.
func (r *Reader) PagePNG(page int) ([]byte, error) {
	const op = "PagePNG"
	info, pixels, err := r.pagePixels(op, page)
	if err != nil {
		return nil, err
	}
	data, err := codec.EncodePNG(pixels, info.Width, info.Height, info.Format)
	if err != nil {
		return nil, &core.Error{Op: op, Level: core.LevelOther, Code: core.CodeStripDecode, Offset: info.Offset, Err: err}
	}
	return data, nil
}

func (r *Reader) pagePixels(op string, page int) (model.PageInfo, []byte, error) {
	info, err := r.PageInfo(page)
	if err != nil {
		return info, nil, relabel(op, err)
	}
	pixels, err := r.ReadPagePixels(page)
	if err != nil {
		return info, nil, relabel(op, err)
	}
	return info, pixels, nil
}
