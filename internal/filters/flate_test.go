package filters

import (
	"bytes"
	"compress/zlib"
	"testing"
)

// zlibCompress compresses data for testing
func zlibCompress(data []byte) []byte {
	var buf bytes.Buffer
	w := zlib.NewWriter(&buf)
	w.Write(data)
	w.Close()
	return buf.Bytes()
}

// TestFlateRoundTrip tests FlateEncode against FlateDecode
func TestFlateRoundTrip(t *testing.T) {
	inputs := map[string][]byte{
		"empty":  {},
		"text":   []byte("Hello, World! This is test data for FlateDecode."),
		"zeros":  make([]byte, 4096),
		"binary": {0x00, 0xFF, 0x10, 0x80, 0x7F, 0x01},
	}
	for name, in := range inputs {
		for _, level := range []int{0, zlib.BestSpeed, zlib.BestCompression} {
			t.Run(name, func(t *testing.T) {
				enc, err := FlateEncode(in, level)
				if err != nil {
					t.Fatalf("FlateEncode failed: %v", err)
				}
				dec, err := FlateDecode(enc, nil)
				if err != nil {
					t.Fatalf("FlateDecode failed: %v", err)
				}
				if !bytes.Equal(dec, in) {
					t.Errorf("round trip mismatch at level %d", level)
				}
			})
		}
	}
}

// TestFlateEncodeBadLevel tests that an invalid level is reported
func TestFlateEncodeBadLevel(t *testing.T) {
	if _, err := FlateEncode([]byte("x"), 42); err == nil {
		t.Error("expected error for compression level 42")
	}
}

// TestFlateDecodeCorrupt tests that non-zlib input fails
func TestFlateDecodeCorrupt(t *testing.T) {
	if _, err := FlateDecode([]byte("not zlib data"), nil); err == nil {
		t.Error("expected error for corrupt data")
	}
}

// TestFlateDecodeNoPredictor tests with Predictor=1 (no prediction)
func TestFlateDecodeNoPredictor(t *testing.T) {
	original := []byte("Test data with no predictor")
	decoded, err := FlateDecode(zlibCompress(original), Params{"Predictor": 1})
	if err != nil {
		t.Fatalf("FlateDecode failed: %v", err)
	}
	if !bytes.Equal(decoded, original) {
		t.Errorf("decoded data doesn't match original")
	}
}

// TestPNGPredictors tests each PNG filter type on two rows of three bytes
func TestPNGPredictors(t *testing.T) {
	params := Params{"Predictor": 12, "Columns": 3}
	tests := []struct {
		name string
		data []byte
		want []byte
	}{
		{
			name: "none",
			data: []byte{0, 1, 2, 3, 0, 4, 5, 6},
			want: []byte{1, 2, 3, 4, 5, 6},
		},
		{
			name: "sub",
			data: []byte{1, 1, 1, 1, 1, 4, 1, 1},
			want: []byte{1, 2, 3, 4, 5, 6},
		},
		{
			name: "up",
			data: []byte{2, 1, 2, 3, 2, 3, 3, 3},
			want: []byte{1, 2, 3, 4, 5, 6},
		},
		{
			name: "average",
			data: []byte{3, 2, 3, 4, 3, 4, 2, 1},
			want: []byte{2, 4, 6, 5, 6, 7},
		},
		{
			name: "paeth",
			data: []byte{4, 1, 1, 1, 4, 3, 1, 1},
			want: []byte{1, 2, 3, 4, 5, 6},
		},
		{
			name: "mixed",
			data: []byte{0, 10, 20, 30, 2, 1, 1, 1},
			want: []byte{10, 20, 30, 11, 21, 31},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := FlateDecode(zlibCompress(tt.data), params)
			if err != nil {
				t.Fatalf("FlateDecode failed: %v", err)
			}
			if !bytes.Equal(got, tt.want) {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

// TestPNGPredictorMultiByte tests the left neighbour distance for 16-bit RGB
func TestPNGPredictorMultiByte(t *testing.T) {
	params := Params{"Predictor": 15, "Columns": 2, "Colors": 3, "BitsPerComponent": 16}
	// One row, two 6-byte pixels, Sub filter.
	data := []byte{1, 1, 2, 3, 4, 5, 6, 1, 1, 1, 1, 1, 1}
	want := []byte{1, 2, 3, 4, 5, 6, 2, 3, 4, 5, 6, 7}
	got, err := FlateDecode(zlibCompress(data), params)
	if err != nil {
		t.Fatalf("FlateDecode failed: %v", err)
	}
	if !bytes.Equal(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

// TestPNGPredictorErrors tests malformed predictor input
func TestPNGPredictorErrors(t *testing.T) {
	params := Params{"Predictor": 10, "Columns": 3}
	if _, err := FlateDecode(zlibCompress([]byte{0, 1, 2}), params); err == nil {
		t.Error("expected error for a short row")
	}
	if _, err := FlateDecode(zlibCompress([]byte{9, 1, 2, 3}), params); err == nil {
		t.Error("expected error for an unknown filter type")
	}
	if _, err := FlateDecode(zlibCompress([]byte{1, 2}), Params{"Predictor": 7}); err == nil {
		t.Error("expected error for an unsupported predictor")
	}
}

// TestTIFFPredictor tests TIFF predictor 2 with RGB samples
func TestTIFFPredictor(t *testing.T) {
	params := Params{"Predictor": 2, "Columns": 2, "Colors": 3}
	data := []byte{10, 20, 30, 1, 2, 3}
	want := []byte{10, 20, 30, 11, 22, 33}
	got, err := FlateDecode(zlibCompress(data), params)
	if err != nil {
		t.Fatalf("FlateDecode failed: %v", err)
	}
	if !bytes.Equal(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}

	params["BitsPerComponent"] = 16
	if _, err := FlateDecode(zlibCompress(data), params); err == nil {
		t.Error("expected error for 16-bit TIFF prediction")
	}
}

func TestPaethPredictor(t *testing.T) {
	tests := []struct {
		a, b, c, want byte
	}{
		{0, 0, 0, 0},
		{10, 20, 10, 20},
		{20, 10, 10, 20},
		{10, 10, 20, 10},
		{100, 50, 80, 80},
	}
	for _, tt := range tests {
		if got := paethPredictor(tt.a, tt.b, tt.c); got != tt.want {
			t.Errorf("paethPredictor(%d, %d, %d) = %d, want %d", tt.a, tt.b, tt.c, got, tt.want)
		}
	}
}

func TestGetIntParam(t *testing.T) {
	params := Params{"a": 3, "b": int64(4), "c": 5.9, "d": "6"}
	tests := []struct {
		key  string
		want int
	}{
		{"a", 3},
		{"b", 4},
		{"c", 5},
		{"d", 7},
		{"missing", 7},
	}
	for _, tt := range tests {
		if got := getIntParam(params, tt.key, 7); got != tt.want {
			t.Errorf("getIntParam(%q) = %d, want %d", tt.key, got, tt.want)
		}
	}
	if got := getIntParam(nil, "a", 1); got != 1 {
		t.Errorf("getIntParam(nil) = %d, want 1", got)
	}
}
