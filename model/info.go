package model

// PageInfo is the metadata of one PDF/raster page. Width, pixel format and
// colorspace come from the first strip; Height is the sum of the strip
// heights.
type PageInfo struct {
	Offset       int64 // offset of the page object
	MediaBox     Rect
	Rotation     int // 0, 90, 180 or 270
	Format       PixelFormat
	Colorspace   ColorspaceInfo
	Width        int
	Height       int
	XDpi         float64
	YDpi         float64
	StripCount   int
	MaxStripSize int // largest raw strip payload in bytes
}

// ImageBytes returns the size of the decoded page pixels.
func (p PageInfo) ImageBytes() int {
	return p.Format.ImageBytes(p.Width, p.Height)
}

// StripInfo describes a single image strip.
type StripInfo struct {
	Name         string // XObject resource name, e.g. "strip3"
	Position     int64  // offset of the strip object
	DataPosition int64  // offset of the first payload byte
	RawSize      int64
	Compression  Compression
	Format       PixelFormat
	Colorspace   ColorspaceInfo
	Width        int
	Height       int

	// CCITT parameters, meaningful when Compression is CompressionCCITTG4.
	K        int
	BlackIs1 bool

	// Flate /Predictor, 0 when absent.
	Predictor int
}
