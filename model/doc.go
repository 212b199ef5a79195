// Package model defines the raster types shared by the reader, the writer
// and the codec boundary.
//
// # Pixel Formats
//
// [PixelFormat] names the five sample layouts PDF/raster allows:
//
//   - [FormatBitonal] - 1 bit per pixel, 0 is black
//   - [FormatGray8], [FormatGray16] - grayscale, 0 is black
//   - [FormatRGB24], [FormatRGB48] - three components per pixel
//
// Rows are packed most significant bit first and padded to a whole byte;
// 16-bit samples are big-endian. [PixelFormat.RowBytes] gives the packed
// row size.
//
// # Compression
//
// [Compression] maps to the strip /Filter entry: none, DCTDecode,
// CCITTFaxDecode (Group 4) or FlateDecode.
//
// # Page and Strip Information
//
// [PageInfo] and [StripInfo] carry what the reader learns from a page
// dictionary and its image strips, including the [ColorspaceInfo] of the
// first strip and the resolution derived from the MediaBox.
package model
