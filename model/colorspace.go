package model

import "math"

// ColorspaceStyle is the PDF colorspace family of an image.
type ColorspaceStyle int

const (
	DeviceGray ColorspaceStyle = iota
	DeviceRGB
	CalGray
	CalRGB
	ICCBased
)

// String returns the PDF name of the style.
func (s ColorspaceStyle) String() string {
	switch s {
	case DeviceGray:
		return "DeviceGray"
	case DeviceRGB:
		return "DeviceRGB"
	case CalGray:
		return "CalGray"
	case CalRGB:
		return "CalRGB"
	case ICCBased:
		return "ICCBased"
	}
	return "Unknown"
}

// ICCProfile locates an embedded profile stream without loading it.
type ICCProfile struct {
	Position   int64 // offset of the stream object
	DataOffset int64 // offset of the first payload byte
	Length     int64
	Components int // the /N entry
}

// ColorspaceInfo describes the colorspace attached to a strip.
type ColorspaceInfo struct {
	Style            ColorspaceStyle
	BitsPerComponent int
	WhitePoint       [3]float64
	BlackPoint       [3]float64
	Gamma            [3]float64 // CalGray uses only the first entry
	Matrix           [9]float64 // CalRGB only
	ICC              *ICCProfile
}

// IsGray reports whether the colorspace has a single component. For
// ICCBased spaces this depends on the profile's component count.
func (c ColorspaceInfo) IsGray() bool {
	switch c.Style {
	case DeviceGray, CalGray:
		return true
	case ICCBased:
		return c.ICC != nil && c.ICC.Components == 1
	}
	return false
}

const colorspaceTolerance = 1e-5

// Equal reports whether two colorspaces match: same style and depth,
// gamma and white/black points within 1e-5, and the same ICC profile by
// file position and length.
func (c ColorspaceInfo) Equal(o ColorspaceInfo) bool {
	if c.Style != o.Style || c.BitsPerComponent != o.BitsPerComponent {
		return false
	}
	for i := 0; i < 3; i++ {
		if !near(c.Gamma[i], o.Gamma[i]) ||
			!near(c.WhitePoint[i], o.WhitePoint[i]) ||
			!near(c.BlackPoint[i], o.BlackPoint[i]) {
			return false
		}
	}
	if (c.ICC == nil) != (o.ICC == nil) {
		return false
	}
	if c.ICC != nil && (c.ICC.Position != o.ICC.Position || c.ICC.Length != o.ICC.Length) {
		return false
	}
	return true
}

func near(a, b float64) bool {
	return math.Abs(a-b) <= colorspaceTolerance
}
