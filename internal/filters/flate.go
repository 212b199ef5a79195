package filters

import (
	"bytes"
	"compress/zlib"
	"fmt"
	"io"
)

// Params represents decode parameters from PDF stream dictionaries.
// Common parameters include Predictor, Columns, Colors, BitsPerComponent,
// K, Rows and BlackIs1.
type Params map[string]interface{}

// FlateEncode compresses data with zlib at the given level
// (zlib.DefaultCompression when level is 0).
func FlateEncode(data []byte, level int) ([]byte, error) {
	if level == 0 {
		level = zlib.DefaultCompression
	}
	var buf bytes.Buffer
	w, err := zlib.NewWriterLevel(&buf, level)
	if err != nil {
		return nil, fmt.Errorf("failed to create zlib writer: %w", err)
	}
	if _, err := w.Write(data); err != nil {
		return nil, fmt.Errorf("failed to compress: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("failed to compress: %w", err)
	}
	return buf.Bytes(), nil
}

// FlateDecode decompresses Flate (zlib/deflate) compressed data and undoes
// a PNG or TIFF predictor when the parameters name one.
func FlateDecode(data []byte, params Params) ([]byte, error) {
	decompressed, err := zlibDecompress(data)
	if err != nil {
		return nil, fmt.Errorf("zlib decompression failed: %w", err)
	}

	predictor := getIntParam(params, "Predictor", 1)
	if predictor == 1 {
		return decompressed, nil
	}
	decompressed, err = unpredict(decompressed, predictor, params)
	if err != nil {
		return nil, fmt.Errorf("predictor failed: %w", err)
	}
	return decompressed, nil
}

func zlibDecompress(data []byte) ([]byte, error) {
	reader, err := zlib.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to create zlib reader: %w", err)
	}
	defer reader.Close()

	out, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to decompress: %w", err)
	}
	return out, nil
}

// rowGeometry returns the byte length of one row and the distance, in
// bytes, to the corresponding sample of the previous pixel.
func rowGeometry(params Params) (rowLen, pixelLen int) {
	columns := getIntParam(params, "Columns", 1)
	colors := getIntParam(params, "Colors", 1)
	bpc := getIntParam(params, "BitsPerComponent", 8)
	rowLen = (columns*colors*bpc + 7) / 8
	pixelLen = (colors*bpc + 7) / 8
	return rowLen, pixelLen
}

func unpredict(data []byte, predictor int, params Params) ([]byte, error) {
	switch {
	case predictor == 2:
		return unpredictTIFF(data, params)
	case predictor >= 10 && predictor <= 15:
		return unpredictPNG(data, params)
	}
	return nil, fmt.Errorf("unsupported predictor: %d", predictor)
}

// unpredictTIFF reverses TIFF predictor 2 for 8-bit samples.
func unpredictTIFF(data []byte, params Params) ([]byte, error) {
	if bpc := getIntParam(params, "BitsPerComponent", 8); bpc != 8 {
		return nil, fmt.Errorf("TIFF predictor only supports 8 bits per component, got %d", bpc)
	}
	rowLen, pixelLen := rowGeometry(params)
	if rowLen == 0 || len(data)%rowLen != 0 {
		return nil, fmt.Errorf("data size %d is not a multiple of row size %d", len(data), rowLen)
	}
	out := append([]byte(nil), data...)
	for start := 0; start < len(out); start += rowLen {
		row := out[start : start+rowLen]
		for i := pixelLen; i < len(row); i++ {
			row[i] += row[i-pixelLen]
		}
	}
	return out, nil
}

// unpredictPNG reverses PNG row filters. Every row is prefixed with its
// filter type byte.
func unpredictPNG(data []byte, params Params) ([]byte, error) {
	rowLen, pixelLen := rowGeometry(params)
	stride := rowLen + 1
	if rowLen == 0 || len(data)%stride != 0 {
		return nil, fmt.Errorf("data size %d is not a multiple of row size %d", len(data), stride)
	}

	rows := len(data) / stride
	out := make([]byte, rows*rowLen)
	prev := make([]byte, rowLen)
	for r := 0; r < rows; r++ {
		filter := data[r*stride]
		src := data[r*stride+1 : (r+1)*stride]
		cur := out[r*rowLen : (r+1)*rowLen]
		for i := range src {
			var left, upLeft byte
			if i >= pixelLen {
				left = cur[i-pixelLen]
				upLeft = prev[i-pixelLen]
			}
			up := prev[i]
			switch filter {
			case 0:
				cur[i] = src[i]
			case 1:
				cur[i] = src[i] + left
			case 2:
				cur[i] = src[i] + up
			case 3:
				cur[i] = src[i] + byte((int(left)+int(up))/2)
			case 4:
				cur[i] = src[i] + paethPredictor(left, up, upLeft)
			default:
				return nil, fmt.Errorf("row %d: unknown PNG filter type %d", r, filter)
			}
		}
		prev = cur
	}
	return out, nil
}

// paethPredictor returns whichever of left (a), above (b) and upper-left (c)
// is closest to a+b-c.
func paethPredictor(a, b, c byte) byte {
	p := int(a) + int(b) - int(c)
	pa := abs(p - int(a))
	pb := abs(p - int(b))
	pc := abs(p - int(c))

	if pa <= pb && pa <= pc {
		return a
	} else if pb <= pc {
		return b
	}
	return c
}

// getIntParam extracts an integer parameter from Params, returning defaultValue
// if the parameter is missing or cannot be converted to an integer.
func getIntParam(params Params, key string, defaultValue int) int {
	switch v := params[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	default:
		return defaultValue
	}
}

// getBoolParam extracts a boolean parameter from Params, returning defaultValue
// if the parameter is missing or is not a boolean.
func getBoolParam(params Params, key string, defaultValue bool) bool {
	if v, ok := params[key].(bool); ok {
		return v
	}
	return defaultValue
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
