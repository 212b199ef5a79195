// Package writer produces PDF/raster files.
//
// A document is written in one pass: Begin emits the header, each page is a
// StartPage call followed by one or more strips, and End writes the page
// tree, the Info dictionary, the PDF/raster tag, the cross-reference table
// and the trailer.
//
//	w := writer.New()
//	w.SetResolution(200, 200)
//	w.SetPixelFormat(model.FormatGray8)
//	w.SetCompression(model.CompressionFlate)
//	if err := w.Begin(f); err != nil {
//		return err
//	}
//	w.StartPage(width)
//	w.WriteStrip(rows, pixels)
//	return w.End()
//
// Page settings persist across pages and are captured by StartPage.
// Strips are stacked from the top of the page in the order they are
// written. Bitonal strips are always emitted with /BlackIs1 true semantics:
// a 1 bit is white, matching /Decode [0 1].
package writer
