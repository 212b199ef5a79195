// Package filters implements the stream compression used by PDF/raster
// image strips.
//
// # Flate
//
// FlateEncode and FlateDecode wrap zlib:
//
//	encoded, err := filters.FlateEncode(pixels, zlib.BestCompression)
//	decoded, err := filters.FlateDecode(encoded, params)
//
// FlateDecode also undoes a predictor when the Predictor parameter names one:
//   - 1: No prediction (default)
//   - 2: TIFF Predictor 2
//   - 10-15: PNG predictors (None, Sub, Up, Average, Paeth)
//
// # CCITT Group 4
//
// CCITTFaxEncode codes packed 1-bit rows with T.6 two-dimensional coding.
// CCITTFaxDecode reads Group 3 and Group 4 data back using the K, Columns,
// Rows and BlackIs1 parameters:
//
//	params := filters.Params{
//	    "K":        -1,
//	    "Columns":  width,
//	    "Rows":     height,
//	    "BlackIs1": true,
//	}
//	pixels, err := filters.CCITTFaxDecode(data, params)
package filters
