package core

import (
	"bytes"
	"strings"
	"testing"
)

func newTestTokenizer(s string) *Tokenizer {
	return NewTokenizer(strings.NewReader(s))
}

// TestPeekCharRefill tests reads across block boundaries
func TestPeekCharRefill(t *testing.T) {
	data := make([]byte, 3*BlockSize+17)
	for i := range data {
		data[i] = byte(i % 251)
	}
	tok := NewTokenizer(bytes.NewReader(data))

	for _, off := range []int64{0, BlockSize - 1, BlockSize, 2*BlockSize + 5, 10, int64(len(data) - 1)} {
		if got := tok.PeekChar(off); got != int(data[off]) {
			t.Errorf("PeekChar(%d) = %d, want %d", off, got, data[off])
		}
	}
	if got := tok.PeekChar(int64(len(data))); got != -1 {
		t.Errorf("PeekChar at EOF = %d, want -1", got)
	}
	if got := tok.PeekChar(-1); got != -1 {
		t.Errorf("PeekChar(-1) = %d, want -1", got)
	}
}

// TestSkipWhitespace tests that comments count as whitespace
func TestSkipWhitespace(t *testing.T) {
	tok := newTestTokenizer(" \t\r\n% a comment\r\n  %another\n\x00\fX")
	var off int64
	tok.SkipWhitespace(&off)
	if tok.PeekChar(off) != 'X' {
		t.Errorf("stopped at %d (%q), want X", off, tok.PeekChar(off))
	}
}

// TestTryEat tests literal matching and token boundaries
func TestTryEat(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		literal string
		want    bool
		wantOff int64
	}{
		{"keyword", "  obj\n1", "obj", true, 6},
		{"keyword prefix", "objx", "obj", false, 0},
		{"keyword before delimiter", "obj<<", "obj", true, 3},
		{"keyword at eof", "R", "R", true, 1},
		{"name boundary", "/Typex", "/Type", false, 0},
		{"dict open needs no boundary", "<</A 1>>", "<<", true, 2},
		{"bracket", "[1]", "[", true, 1},
		{"mismatch", "endobj", "endstream", false, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tok := newTestTokenizer(tt.input)
			var off int64
			got := tok.TryEat(&off, tt.literal)
			if got != tt.want {
				t.Fatalf("TryEat = %v, want %v", got, tt.want)
			}
			if got && off != tt.wantOff {
				t.Errorf("offset = %d, want %d", off, tt.wantOff)
			}
		})
	}
}

// TestTryParseNumber tests integer and real parsing
func TestTryParseNumber(t *testing.T) {
	tests := []struct {
		input string
		want  Object
		ok    bool
	}{
		{"0", Int(0), true},
		{"123", Int(123), true},
		{"-17", Int(-17), true},
		{"+5", Int(5), true},
		{"3.25", Real(3.25), true},
		{"-.5", Real(-0.5), true},
		{"4.", Real(4), true},
		{".", nil, false},
		{"-", nil, false},
		{"abc", nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			tok := newTestTokenizer(tt.input)
			var off int64
			got, ok := tok.TryParseNumber(&off)
			if ok != tt.ok {
				t.Fatalf("ok = %v, want %v", ok, tt.ok)
			}
			if ok && got != tt.want {
				t.Errorf("got %#v, want %#v", got, tt.want)
			}
		})
	}
}

// TestTryParseULong tests unsigned integers
func TestTryParseULong(t *testing.T) {
	tok := newTestTokenizer("0000012345 00000 n")
	var off int64
	n, ok := tok.TryParseULong(&off)
	if !ok || n != 12345 {
		t.Fatalf("got %d, %v", n, ok)
	}
	g, ok := tok.TryParseULong(&off)
	if !ok || g != 0 {
		t.Fatalf("got %d, %v", g, ok)
	}
	if _, ok := tok.TryParseULong(&off); ok {
		t.Error("expected failure on 'n'")
	}
	if _, ok := newTestTokenizer("-1").TryParseULong(new(int64)); ok {
		t.Error("expected failure on a sign")
	}
}

// TestTryParseLiteralString tests escapes and nesting
func TestTryParseLiteralString(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
		ok    bool
	}{
		{"simple", "(hello)", "hello", true},
		{"nested", "(a(b)c)", "a(b)c", true},
		{"escapes", `(\n\r\t\b\f\(\)\\)`, "\n\r\t\b\f()\\", true},
		{"octal", `(\101\7\0123)`, "A\x07\n3", true},
		{"unknown escape", `(\q)`, "q", true},
		{"line continuation", "(ab\\\ncd)", "abcd", true},
		{"unterminated", "(abc", "", false},
		{"not a string", "abc", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tok := newTestTokenizer(tt.input)
			var off int64
			got, ok := tok.TryParseLiteralString(&off)
			if ok != tt.ok {
				t.Fatalf("ok = %v, want %v", ok, tt.ok)
			}
			if ok && string(got) != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

// TestTryParseHexString tests hex strings
func TestTryParseHexString(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []byte
		ok    bool
	}{
		{"upper", "<48656C6C6F>", []byte("Hello"), true},
		{"lower with spaces", "<48 65\n6c>", []byte("Hel"), true},
		{"odd digit", "<ABC>", []byte{0xab, 0xc0}, true},
		{"empty", "<>", nil, true},
		{"bad char", "<4G>", nil, false},
		{"unterminated", "<41", nil, false},
		{"dictionary", "<<>>", nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tok := newTestTokenizer(tt.input)
			var off int64
			got, ok := tok.TryParseHexString(&off)
			if ok != tt.ok {
				t.Fatalf("ok = %v, want %v", ok, tt.ok)
			}
			if ok && !bytes.Equal(got, tt.want) {
				t.Errorf("got % x, want % x", got, tt.want)
			}
		})
	}
}

// TestTryParseName tests names and #XX escapes
func TestTryParseName(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"/Type", "Type"},
		{"/A#20B", "A B"},
		{"/A#2", "A#2"},
		{"/A#zz", "A#zz"},
		{"/strip10/strip2", "strip10"},
		{"/", ""},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			tok := newTestTokenizer(tt.input)
			var off int64
			got, ok := tok.TryParseName(&off)
			if !ok {
				t.Fatal("TryParseName failed")
			}
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

// TestTryParseComment tests comment capture
func TestTryParseComment(t *testing.T) {
	tok := newTestTokenizer("  %PDF-raster-1.0\r\nxref")
	var off int64
	text, ok := tok.TryParseComment(&off)
	if !ok || text != "PDF-raster-1.0" {
		t.Fatalf("got %q, %v", text, ok)
	}
	if !tok.TryEat(&off, "xref") {
		t.Error("expected xref after the comment")
	}
}

// TestSkipToken tests skipping single tokens
func TestSkipToken(t *testing.T) {
	tok := newTestTokenizer("endobj << [ abc")
	var off int64
	for _, want := range []int64{7, 10, 12, 15} {
		if !tok.SkipToken(&off) {
			t.Fatalf("SkipToken failed before %d", want)
		}
		if off != want {
			t.Errorf("offset = %d, want %d", off, want)
		}
	}
	if tok.SkipToken(&off) {
		t.Error("SkipToken should fail at EOF")
	}
}

// TestReadBytes tests raw reads
func TestReadBytes(t *testing.T) {
	tok := newTestTokenizer("0123456789")
	got, err := tok.ReadBytes(3, 4)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(got) != "3456" {
		t.Errorf("got %q", got)
	}
	if _, err := tok.ReadBytes(8, 4); err == nil {
		t.Error("expected error reading past EOF")
	}
	if _, err := tok.ReadBytes(2, 1<<30); err == nil {
		t.Error("expected error for a length beyond the source")
	}
	if _, err := tok.ReadBytes(11, 0); err == nil {
		t.Error("expected error for an offset beyond the source")
	}
	size, err := tok.Size()
	if err != nil || size != 10 {
		t.Errorf("Size() = %d, %v", size, err)
	}
}
