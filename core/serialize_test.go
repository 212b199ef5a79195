package core

import (
	"bytes"
	"testing"
)

// TestWriteObject tests the exact output syntax of every object type
func TestWriteObject(t *testing.T) {
	dict := NewDict()
	dict.Set("Type", Name("Catalog"))
	dict.Set("Pages", IndirectRef{Number: 2})

	tests := []struct {
		name string
		obj  Object
		want string
	}{
		{"null", Null{}, "null"},
		{"true", Bool(true), "true"},
		{"false", Bool(false), "false"},
		{"int", Int(-42), "-42"},
		{"real", Real(2.2), "2.2"},
		{"real whole", Real(36), "36"},
		{"real rounding", Real(0.12345678), "0.123457"},
		{"real negative zero", Real(-0.0000001), "0"},
		{"name", Name("DeviceGray"), "/DeviceGray"},
		{"name escapes", Name("A B#(x)"), "/A#20B#23#28x#29"},
		{"name high byte", Name("caf\xe9"), "/caf#E9"},
		{"hex string", NewHexString([]byte{0x01, 0xab, 0xff}), "<01ABFF>"},
		{"literal string", NewString("a(b)\\c"), `(a\(b\)\\c)`},
		{"literal controls", NewString("x\n\r\t\x01\xff"), `(x\n\r\t\001\377)`},
		{"array", Array{Int(0), Int(0), Real(36), Real(28.8)}, "[0 0 36 28.8]"},
		{"empty array", Array{}, "[]"},
		{"dict", dict, "<</Type /Catalog /Pages 2 0 R >>"},
		{"empty dict", NewDict(), "<<>>"},
		{"reference", IndirectRef{Number: 12, Generation: 0}, "12 0 R"},
		{"comment", Comment("PDF-raster-1.0"), "%PDF-raster-1.0"},
		{"keyword", Keyword("endobj"), "endobj"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			n, err := WriteObject(&buf, tt.obj)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got := buf.String(); got != tt.want {
				t.Errorf("WriteObject() = %q, want %q", got, tt.want)
			}
			if n != buf.Len() {
				t.Errorf("WriteObject() reported %d bytes, wrote %d", n, buf.Len())
			}
		})
	}
}

// TestWriteStream tests that /Length is derived from the payload
func TestWriteStream(t *testing.T) {
	s := NewStream([]byte("q\nQ\n"))
	s.Dict.Set("Length", Int(999))

	var buf bytes.Buffer
	if _, err := WriteObject(&buf, s); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "<</Length 4 >>\nstream\nq\nQ\n\nendstream"
	if buf.String() != want {
		t.Errorf("got %q, want %q", buf.String(), want)
	}
}

// TestFormatReal tests real number formatting
func TestFormatReal(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "0"},
		{1, "1"},
		{0.9505, "0.9505"},
		{1.089, "1.089"},
		{-12.5, "-12.5"},
		{1e-7, "0"},
		{123456789, "123456789"},
	}
	for _, tt := range tests {
		if got := formatReal(tt.in); got != tt.want {
			t.Errorf("formatReal(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
