package codec

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"

	"github.com/tsawler/pdfraster/model"
)

// ToImage wraps packed pixels in an image.Image: *image.Gray for bitonal
// and Gray8 (bitonal 0 becomes black, 1 white), *image.Gray16 for Gray16,
// *image.RGBA for RGB24 and *image.RGBA64 for RGB48.
func ToImage(pixels []byte, width, height int, format model.PixelFormat) (image.Image, error) {
	if !format.Valid() {
		return nil, fmt.Errorf("%w: pixel format %s", ErrUnsupported, format)
	}
	stride := format.RowBytes(width)
	if len(pixels) < stride*height {
		return nil, fmt.Errorf("insufficient data: got %d, expected %d", len(pixels), stride*height)
	}
	rect := image.Rect(0, 0, width, height)

	switch format {
	case model.FormatBitonal:
		img := image.NewGray(rect)
		for y := 0; y < height; y++ {
			row := pixels[y*stride:]
			for x := 0; x < width; x++ {
				if row[x/8]&(0x80>>uint(x%8)) != 0 {
					img.Pix[y*img.Stride+x] = 255
				}
			}
		}
		return img, nil

	case model.FormatGray8:
		img := image.NewGray(rect)
		for y := 0; y < height; y++ {
			copy(img.Pix[y*img.Stride:y*img.Stride+width], pixels[y*stride:])
		}
		return img, nil

	case model.FormatGray16:
		// image.Gray16 stores big-endian samples, the same as PDF.
		img := image.NewGray16(rect)
		for y := 0; y < height; y++ {
			copy(img.Pix[y*img.Stride:y*img.Stride+2*width], pixels[y*stride:])
		}
		return img, nil

	case model.FormatRGB24:
		img := image.NewRGBA(rect)
		for y := 0; y < height; y++ {
			src := pixels[y*stride:]
			dst := img.Pix[y*img.Stride:]
			for x := 0; x < width; x++ {
				dst[4*x+0] = src[3*x+0]
				dst[4*x+1] = src[3*x+1]
				dst[4*x+2] = src[3*x+2]
				dst[4*x+3] = 255
			}
		}
		return img, nil

	default: // FormatRGB48
		img := image.NewRGBA64(rect)
		for y := 0; y < height; y++ {
			src := pixels[y*stride:]
			dst := img.Pix[y*img.Stride:]
			for x := 0; x < width; x++ {
				copy(dst[8*x:8*x+6], src[6*x:6*x+6])
				dst[8*x+6] = 0xFF
				dst[8*x+7] = 0xFF
			}
		}
		return img, nil
	}
}

// FromImage packs img into rows of the given format. Bitonal output sets a
// pixel to 1 (white) when its luminance is at least half scale.
func FromImage(img image.Image, format model.PixelFormat) ([]byte, error) {
	if !format.Valid() {
		return nil, fmt.Errorf("%w: pixel format %s", ErrUnsupported, format)
	}
	b := img.Bounds()
	width, height := b.Dx(), b.Dy()
	stride := format.RowBytes(width)
	out := make([]byte, stride*height)

	for y := 0; y < height; y++ {
		row := out[y*stride:]
		for x := 0; x < width; x++ {
			c := img.At(b.Min.X+x, b.Min.Y+y)
			switch format {
			case model.FormatBitonal:
				if color.GrayModel.Convert(c).(color.Gray).Y >= 128 {
					row[x/8] |= 0x80 >> uint(x%8)
				}
			case model.FormatGray8:
				row[x] = color.GrayModel.Convert(c).(color.Gray).Y
			case model.FormatGray16:
				g := color.Gray16Model.Convert(c).(color.Gray16).Y
				row[2*x] = byte(g >> 8)
				row[2*x+1] = byte(g)
			case model.FormatRGB24:
				r, g, bl, _ := c.RGBA()
				row[3*x] = byte(r >> 8)
				row[3*x+1] = byte(g >> 8)
				row[3*x+2] = byte(bl >> 8)
			case model.FormatRGB48:
				r, g, bl, _ := c.RGBA()
				row[6*x] = byte(r >> 8)
				row[6*x+1] = byte(r)
				row[6*x+2] = byte(g >> 8)
				row[6*x+3] = byte(g)
				row[6*x+4] = byte(bl >> 8)
				row[6*x+5] = byte(bl)
			}
		}
	}
	return out, nil
}

// EncodePNG renders packed pixels as a PNG file.
func EncodePNG(pixels []byte, width, height int, format model.PixelFormat) ([]byte, error) {
	img, err := ToImage(pixels, width, height, format)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("failed to encode PNG: %w", err)
	}
	return buf.Bytes(), nil
}

func encodeJPEG(pixels []byte, p Params) ([]byte, error) {
	if p.Format != model.FormatGray8 && p.Format != model.FormatRGB24 {
		return nil, fmt.Errorf("%w: jpeg with %s", ErrUnsupported, p.Format)
	}
	img, err := ToImage(pixels, p.Width, p.Height, p.Format)
	if err != nil {
		return nil, err
	}
	quality := p.Quality
	if quality <= 0 {
		quality = DefaultJPEGQuality
	}
	if quality > 100 {
		quality = 100
	}
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}); err != nil {
		return nil, fmt.Errorf("failed to encode JPEG: %w", err)
	}
	return buf.Bytes(), nil
}

func decodeJPEG(data []byte, p Params) ([]byte, error) {
	if p.Format != model.FormatGray8 && p.Format != model.FormatRGB24 {
		return nil, fmt.Errorf("%w: jpeg with %s", ErrUnsupported, p.Format)
	}
	img, err := jpeg.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode JPEG: %w", err)
	}
	if b := img.Bounds(); b.Dx() != p.Width || b.Dy() != p.Height {
		return nil, fmt.Errorf("jpeg is %dx%d, strip is %dx%d", b.Dx(), b.Dy(), p.Width, p.Height)
	}
	if g, ok := img.(*image.Gray); ok && p.Format == model.FormatGray8 {
		out := make([]byte, p.Width*p.Height)
		for y := 0; y < p.Height; y++ {
			copy(out[y*p.Width:(y+1)*p.Width], g.Pix[y*g.Stride:])
		}
		return out, nil
	}
	return FromImage(img, p.Format)
}
