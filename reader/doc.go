// Package reader opens PDF/raster files and gives access to their pages
// and strips.
//
// Open checks the file structure up front: the %PDF- header, startxref and
// %%EOF in the tail, the %PDF-raster- tag right before the xref table, a
// single xref section and the page tree. Pages and strips are parsed the
// first time they are asked for.
//
//	r, err := reader.OpenFile("scan.pdf")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer r.Close()
//
//	n, _ := r.PageCount()
//	for i := 0; i < n; i++ {
//	    info, _ := r.PageInfo(i)
//	    pixels, _ := r.ReadPagePixels(i)
//	    fmt.Println(info.Width, info.Height, info.Format, len(pixels))
//	}
//
// # Problems
//
// Every defect the reader finds is passed to the handler set with
// [WithErrorHandler], with its level, code and file offset. Warnings do not
// stop the operation; anything more severe is also returned as a
// *core.Error.
//
// # Pixels
//
// ReadStripRaw returns a payload as stored; ReadStripDecoded, ReadPagePixels,
// StripImages and PageImage run it through the codec. Bitonal pixels are
// sample values: 1 is white.
//
// Use [Recognize] to check whether a file is PDF/raster without opening it.
package reader
