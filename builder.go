package pdfraster

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif" // register decoders for AddFile
	_ "image/jpeg"
	_ "image/png"
	"io"
	"os"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"

	"github.com/tsawler/pdfraster/codec"
	"github.com/tsawler/pdfraster/format"
	"github.com/tsawler/pdfraster/model"
	"github.com/tsawler/pdfraster/observability"
	"github.com/tsawler/pdfraster/writer"
)

// Builder collects page images and writes them as a PDF/raster file. Like
// Extractor, each configuration method returns a new Builder.
type Builder struct {
	filename string

	xdpi, ydpi  float64
	format      model.PixelFormat // FormatNull picks one per image
	compression model.Compression // CompressionNull picks one per format
	quality     int
	stripRows   int // 0 writes each page as a single strip

	title, author, subject, keywords, creator string

	logger observability.Logger
	codec  codec.Codec

	pages []image.Image
	err   error
}

// Create returns a Builder that writes to filename on Save.
//
// Example:
//
//	err := pdfraster.Create("out.pdf").AddImage(img).Save()
func Create(filename string) *Builder {
	return &Builder{filename: filename, xdpi: 300, ydpi: 300}
}

func (b *Builder) clone() *Builder {
	nb := *b
	nb.pages = append([]image.Image(nil), b.pages...)
	return &nb
}

// Resolution sets the resolution of every page in dots per inch.
func (b *Builder) Resolution(xdpi, ydpi float64) *Builder {
	nb := b.clone()
	nb.xdpi, nb.ydpi = xdpi, ydpi
	return nb
}

// Format converts every page to f. By default gray images stay gray,
// 16-bit images keep their depth and everything else becomes RGB24.
func (b *Builder) Format(f model.PixelFormat) *Builder {
	nb := b.clone()
	nb.format = f
	return nb
}

// Compression sets the strip compression. The default is CCITT Group 4 for
// bitonal pages and Flate otherwise.
func (b *Builder) Compression(c model.Compression) *Builder {
	nb := b.clone()
	nb.compression = c
	return nb
}

// JPEGQuality sets the JPEG quality (1..100).
func (b *Builder) JPEGQuality(q int) *Builder {
	nb := b.clone()
	nb.quality = q
	return nb
}

// StripRows splits pages into strips of at most n rows.
func (b *Builder) StripRows(n int) *Builder {
	nb := b.clone()
	nb.stripRows = n
	return nb
}

// Title sets the document title.
func (b *Builder) Title(s string) *Builder {
	nb := b.clone()
	nb.title = s
	return nb
}

// Author sets the document author.
func (b *Builder) Author(s string) *Builder {
	nb := b.clone()
	nb.author = s
	return nb
}

// Subject sets the document subject.
func (b *Builder) Subject(s string) *Builder {
	nb := b.clone()
	nb.subject = s
	return nb
}

// Keywords sets the document keywords.
func (b *Builder) Keywords(s string) *Builder {
	nb := b.clone()
	nb.keywords = s
	return nb
}

// Creator sets the name of the application that created the content.
func (b *Builder) Creator(s string) *Builder {
	nb := b.clone()
	nb.creator = s
	return nb
}

// WithLogger sets the logger passed to the writer.
func (b *Builder) WithLogger(l observability.Logger) *Builder {
	nb := b.clone()
	nb.logger = l
	return nb
}

// WithCodec replaces the codec used to encode strips.
func (b *Builder) WithCodec(c codec.Codec) *Builder {
	nb := b.clone()
	nb.codec = c
	return nb
}

// AddImage appends a page.
func (b *Builder) AddImage(img image.Image) *Builder {
	nb := b.clone()
	if img == nil {
		nb.err = fmt.Errorf("page %d: nil image", len(nb.pages)+1)
		return nb
	}
	nb.pages = append(nb.pages, img)
	return nb
}

// AddFile decodes a PNG, JPEG, TIFF, BMP or GIF file and appends it as a
// page. Errors are reported by Save.
func (b *Builder) AddFile(path string) *Builder {
	nb := b.clone()
	if nb.err != nil {
		return nb
	}
	data, err := os.ReadFile(path)
	if err != nil {
		nb.err = fmt.Errorf("failed to read image: %w", err)
		return nb
	}
	if f := format.DetectFromMagic(data); !f.IsImage() {
		nb.err = fmt.Errorf("%s: unsupported file format: %s", path, f)
		return nb
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		nb.err = fmt.Errorf("%s: failed to decode image: %w", path, err)
		return nb
	}
	nb.pages = append(nb.pages, img)
	return nb
}

// Save writes the document to the file given to Create.
func (b *Builder) Save() error {
	if b.err != nil {
		return b.err
	}
	file, err := os.Create(b.filename)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	if err := b.Write(file); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}

// Write writes the document to dst.
func (b *Builder) Write(dst io.Writer) error {
	if b.err != nil {
		return b.err
	}
	opts := []writer.Option{writer.WithLogger(b.logger)}
	if b.codec != nil {
		opts = append(opts, writer.WithCodec(b.codec))
	}
	w := writer.New(opts...)
	w.SetResolution(b.xdpi, b.ydpi)
	if b.quality > 0 {
		w.SetJPEGQuality(b.quality)
	}
	if err := w.Begin(dst); err != nil {
		return err
	}
	for _, entry := range []struct {
		value string
		set   func(string)
	}{
		{b.title, w.SetTitle},
		{b.author, w.SetAuthor},
		{b.subject, w.SetSubject},
		{b.keywords, w.SetKeywords},
		{b.creator, w.SetCreator},
	} {
		if entry.value != "" {
			entry.set(entry.value)
		}
	}

	for i, img := range b.pages {
		if err := b.writePage(w, img); err != nil {
			return fmt.Errorf("page %d: %w", i+1, err)
		}
	}
	return w.End()
}

func (b *Builder) writePage(w *writer.Writer, img image.Image) error {
	f := b.format
	if f == model.FormatNull {
		f = formatFor(img)
	}
	c := b.compression
	if c == model.CompressionNull {
		c = model.CompressionFlate
		if f == model.FormatBitonal {
			c = model.CompressionCCITTG4
		}
	}
	pixels, err := codec.FromImage(img, f)
	if err != nil {
		return err
	}

	w.SetPixelFormat(f)
	w.SetCompression(c)
	width, height := img.Bounds().Dx(), img.Bounds().Dy()
	if err := w.StartPage(width); err != nil {
		return err
	}
	rows := b.stripRows
	if rows <= 0 || rows > height {
		rows = height
	}
	stride := f.RowBytes(width)
	for y := 0; y < height; y += rows {
		n := rows
		if y+n > height {
			n = height - y
		}
		if err := w.WriteStrip(n, pixels[y*stride:(y+n)*stride]); err != nil {
			return err
		}
	}
	return w.EndPage()
}

// formatFor picks the pixel format that keeps an image's depth.
func formatFor(img image.Image) model.PixelFormat {
	switch img.(type) {
	case *image.Gray:
		return model.FormatGray8
	case *image.Gray16:
		return model.FormatGray16
	case *image.RGBA64, *image.NRGBA64:
		return model.FormatRGB48
	}
	return model.FormatRGB24
}
