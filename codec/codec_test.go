package codec

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"testing"

	"github.com/tsawler/pdfraster/core"
	"github.com/tsawler/pdfraster/model"
)

// pattern returns deterministic packed pixels for the format. Bitonal
// padding bits are left clear.
func pattern(format model.PixelFormat, width, height int) []byte {
	stride := format.RowBytes(width)
	out := make([]byte, stride*height)
	for y := 0; y < height; y++ {
		row := out[y*stride : (y+1)*stride]
		if format == model.FormatBitonal {
			for x := 0; x < width; x++ {
				if (x*7+y*3)%5 < 2 {
					row[x/8] |= 0x80 >> uint(x%8)
				}
			}
			continue
		}
		for i := range row {
			row[i] = byte(i*3 + y*5)
		}
	}
	return out
}

// smooth returns low-frequency pixels that survive JPEG with little loss.
func smooth(format model.PixelFormat, width, height int) []byte {
	stride := format.RowBytes(width)
	out := make([]byte, stride*height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			if format == model.FormatGray8 {
				out[y*stride+x] = byte(x*4 + y*2)
				continue
			}
			out[y*stride+3*x] = byte(x * 4)
			out[y*stride+3*x+1] = byte(y * 4)
			out[y*stride+3*x+2] = 128
		}
	}
	return out
}

func TestLosslessRoundTrip(t *testing.T) {
	c := Default()
	formats := []model.PixelFormat{
		model.FormatBitonal, model.FormatGray8, model.FormatGray16,
		model.FormatRGB24, model.FormatRGB48,
	}
	compressions := []model.Compression{
		model.CompressionUncompressed, model.CompressionFlate, model.CompressionCCITTG4,
	}

	for _, f := range formats {
		for _, comp := range compressions {
			if Validate(f, comp) != nil {
				continue
			}
			t.Run(f.String()+"/"+comp.String(), func(t *testing.T) {
				p := Params{Width: 37, Height: 11, Format: f, Compression: comp, K: -1, BlackIs1: true}
				pixels := pattern(f, p.Width, p.Height)
				enc, err := c.Encode(pixels, p)
				if err != nil {
					t.Fatalf("Encode failed: %v", err)
				}
				dec, err := c.Decode(enc, p)
				if err != nil {
					t.Fatalf("Decode failed: %v", err)
				}
				if !bytes.Equal(dec, pixels) {
					t.Error("round trip mismatch")
				}
			})
		}
	}
}

func TestJPEGRoundTrip(t *testing.T) {
	c := Default()
	for _, f := range []model.PixelFormat{model.FormatGray8, model.FormatRGB24} {
		t.Run(f.String(), func(t *testing.T) {
			p := Params{Width: 32, Height: 24, Format: f, Compression: model.CompressionJPEG, Quality: 95}
			pixels := smooth(f, p.Width, p.Height)
			enc, err := c.Encode(pixels, p)
			if err != nil {
				t.Fatalf("Encode failed: %v", err)
			}
			if !bytes.HasPrefix(enc, []byte{0xFF, 0xD8}) {
				t.Fatal("output is not a JPEG stream")
			}
			dec, err := c.Decode(enc, p)
			if err != nil {
				t.Fatalf("Decode failed: %v", err)
			}
			if len(dec) != len(pixels) {
				t.Fatalf("decoded %d bytes, want %d", len(dec), len(pixels))
			}
			total := 0
			for i := range dec {
				d := int(dec[i]) - int(pixels[i])
				if d < 0 {
					d = -d
				}
				total += d
			}
			if mean := total / len(dec); mean > 8 {
				t.Errorf("mean sample error %d is too large", mean)
			}
		})
	}
}

func TestJPEGSixteenBitUnsupported(t *testing.T) {
	p := Params{Width: 4, Height: 4, Format: model.FormatGray16, Compression: model.CompressionJPEG}
	_, err := Default().Encode(make([]byte, 32), p)
	if !errors.Is(err, ErrUnsupported) {
		t.Errorf("expected ErrUnsupported, got %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		format      model.PixelFormat
		compression model.Compression
		ok          bool
	}{
		{model.FormatBitonal, model.CompressionCCITTG4, true},
		{model.FormatGray8, model.CompressionCCITTG4, false},
		{model.FormatRGB24, model.CompressionCCITTG4, false},
		{model.FormatBitonal, model.CompressionJPEG, false},
		{model.FormatGray8, model.CompressionJPEG, true},
		{model.FormatRGB24, model.CompressionJPEG, true},
		{model.FormatGray16, model.CompressionJPEG, false},
		{model.FormatRGB48, model.CompressionJPEG, false},
		{model.FormatBitonal, model.CompressionFlate, true},
		{model.FormatRGB48, model.CompressionUncompressed, true},
	}
	for _, tt := range tests {
		err := Validate(tt.format, tt.compression)
		if (err == nil) != tt.ok {
			t.Errorf("Validate(%s, %s) = %v", tt.format, tt.compression, err)
		}
		if err != nil && !errors.Is(err, core.ErrInvalidCombination) {
			t.Errorf("Validate(%s, %s) should wrap ErrInvalidCombination", tt.format, tt.compression)
		}
	}
}

func TestCodecErrors(t *testing.T) {
	c := Default()
	p := Params{Width: 10, Height: 2, Format: model.FormatGray8, Compression: model.CompressionUncompressed}

	if _, err := c.Encode(make([]byte, 19), p); err == nil {
		t.Error("expected error for a short pixel buffer")
	}
	if _, err := c.Decode(make([]byte, 19), p); err == nil {
		t.Error("expected error for short decoded data")
	}
	if out, err := c.Decode(make([]byte, 25), p); err != nil || len(out) != 20 {
		t.Errorf("extra bytes should be trimmed, got %d, %v", len(out), err)
	}

	bad := p
	bad.Format = model.FormatNull
	if _, err := c.Encode(make([]byte, 20), bad); !errors.Is(err, ErrUnsupported) {
		t.Errorf("expected ErrUnsupported, got %v", err)
	}
	bad = p
	bad.Compression = model.CompressionNull
	if _, err := c.Decode(make([]byte, 20), bad); !errors.Is(err, ErrUnsupported) {
		t.Errorf("expected ErrUnsupported, got %v", err)
	}
	bad = p
	bad.Width = 0
	if _, err := c.Encode(nil, bad); err == nil {
		t.Error("expected error for zero width")
	}
}

func TestFlatePredictorDecode(t *testing.T) {
	// Two rows of three gray samples with PNG Up filters applied by hand.
	raw := []byte{2, 1, 2, 3, 2, 1, 1, 1}
	enc, err := Default().Encode(raw, Params{Width: 8, Height: 1, Format: model.FormatGray8, Compression: model.CompressionFlate})
	if err != nil {
		t.Fatal(err)
	}

	p := Params{Width: 3, Height: 2, Format: model.FormatGray8, Compression: model.CompressionFlate, Predictor: 12}
	got, err := Default().Decode(enc, p)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if want := []byte{1, 2, 3, 2, 3, 4}; !bytes.Equal(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestToImage(t *testing.T) {
	// 10x2 bitonal: first row alternating, second row all white.
	pixels := []byte{0xAA, 0x80, 0xFF, 0xC0}
	img, err := ToImage(pixels, 10, 2, model.FormatBitonal)
	if err != nil {
		t.Fatal(err)
	}
	gray, ok := img.(*image.Gray)
	if !ok {
		t.Fatalf("got %T, want *image.Gray", img)
	}
	wantRow0 := []uint8{255, 0, 255, 0, 255, 0, 255, 0, 255, 0}
	for x, w := range wantRow0 {
		if got := gray.GrayAt(x, 0).Y; got != w {
			t.Errorf("pixel (%d,0) = %d, want %d", x, got, w)
		}
		if got := gray.GrayAt(x, 1).Y; got != 255 {
			t.Errorf("pixel (%d,1) = %d, want 255", x, got)
		}
	}

	rgb48 := []byte{0x12, 0x34, 0x56, 0x78, 0x9A, 0xBC}
	img, err = ToImage(rgb48, 1, 1, model.FormatRGB48)
	if err != nil {
		t.Fatal(err)
	}
	if got := img.(*image.RGBA64).RGBA64At(0, 0); got != (color.RGBA64{0x1234, 0x5678, 0x9ABC, 0xFFFF}) {
		t.Errorf("RGB48 pixel = %v", got)
	}

	if _, err := ToImage(pixels[:3], 10, 2, model.FormatBitonal); err == nil {
		t.Error("expected error for short data")
	}
}

func TestImageRoundTrip(t *testing.T) {
	for _, f := range []model.PixelFormat{
		model.FormatBitonal, model.FormatGray8, model.FormatGray16,
		model.FormatRGB24, model.FormatRGB48,
	} {
		t.Run(f.String(), func(t *testing.T) {
			pixels := pattern(f, 13, 5)
			img, err := ToImage(pixels, 13, 5, f)
			if err != nil {
				t.Fatal(err)
			}
			back, err := FromImage(img, f)
			if err != nil {
				t.Fatal(err)
			}
			if !bytes.Equal(back, pixels) {
				t.Errorf("got %x\nwant %x", back, pixels)
			}
		})
	}
}

func TestEncodePNG(t *testing.T) {
	data, err := EncodePNG(pattern(model.FormatGray8, 8, 8), 8, 8, model.FormatGray8)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.HasPrefix(data, []byte("\x89PNG\r\n\x1a\n")) {
		t.Error("missing PNG signature")
	}
}
