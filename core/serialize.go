package core

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

const hexDigits = "0123456789ABCDEF"

// WriteObject writes obj in PDF syntax to w and returns the number of bytes
// written. Stream objects get their /Length set to the payload size first.
func WriteObject(w io.Writer, obj Object) (int, error) {
	cw := &countingWriter{w: bufio.NewWriter(w)}
	writeObject(cw, obj)
	if cw.err == nil {
		cw.err = cw.w.Flush()
	}
	return cw.n, cw.err
}

type countingWriter struct {
	w   *bufio.Writer
	n   int
	err error
}

func (c *countingWriter) writeString(s string) {
	if c.err != nil {
		return
	}
	n, err := c.w.WriteString(s)
	c.n += n
	c.err = err
}

func (c *countingWriter) writeByte(b byte) {
	if c.err != nil {
		return
	}
	c.err = c.w.WriteByte(b)
	if c.err == nil {
		c.n++
	}
}

func (c *countingWriter) write(p []byte) {
	if c.err != nil {
		return
	}
	n, err := c.w.Write(p)
	c.n += n
	c.err = err
}

func writeObject(w *countingWriter, obj Object) {
	switch v := obj.(type) {
	case nil:
		w.writeString("null")
	case Null, Bool, Int, IndirectRef, Comment, Keyword:
		w.writeString(v.String())
	case Real:
		w.writeString(formatReal(float64(v)))
	case Name:
		writeName(w, string(v))
	case String:
		if v.Hex {
			writeHexString(w, v.Data)
		} else {
			writeLiteralString(w, v.Data)
		}
	case Array:
		w.writeByte('[')
		for i, elem := range v {
			if i > 0 {
				w.writeByte(' ')
			}
			writeObject(w, elem)
		}
		w.writeByte(']')
	case *Dict:
		writeDict(w, v)
	case *Stream:
		dict := v.Dict
		if dict == nil {
			dict = NewDict()
			v.Dict = dict
		}
		dict.Set("Length", Int(len(v.Data)))
		writeDict(w, dict)
		w.writeString("\nstream\n")
		w.write(v.Data)
		w.writeString("\nendstream")
	default:
		if w.err == nil {
			w.err = fmt.Errorf("cannot serialize object of type %T", obj)
		}
	}
}

func writeDict(w *countingWriter, d *Dict) {
	w.writeString("<<")
	if d == nil {
		w.writeString(">>")
		return
	}
	for _, key := range d.keys {
		writeName(w, key)
		w.writeByte(' ')
		writeObject(w, d.m[key])
		w.writeByte(' ')
	}
	w.writeString(">>")
}

func writeName(w *countingWriter, name string) {
	w.writeByte('/')
	for i := 0; i < len(name); i++ {
		c := name[i]
		if c < 33 || c > 126 || strings.IndexByte("#/%()<>[]", c) >= 0 {
			w.writeByte('#')
			w.writeByte(hexDigits[c>>4])
			w.writeByte(hexDigits[c&0x0f])
			continue
		}
		w.writeByte(c)
	}
}

func writeHexString(w *countingWriter, data []byte) {
	w.writeByte('<')
	for _, c := range data {
		w.writeByte(hexDigits[c>>4])
		w.writeByte(hexDigits[c&0x0f])
	}
	w.writeByte('>')
}

func writeLiteralString(w *countingWriter, data []byte) {
	w.writeByte('(')
	for _, c := range data {
		switch c {
		case '\n':
			w.writeString(`\n`)
		case '\r':
			w.writeString(`\r`)
		case '\t':
			w.writeString(`\t`)
		case '(', ')', '\\':
			w.writeByte('\\')
			w.writeByte(c)
		default:
			if c < 32 || c > 126 {
				w.writeByte('\\')
				w.writeByte('0' + (c>>6)&7)
				w.writeByte('0' + (c>>3)&7)
				w.writeByte('0' + c&7)
				continue
			}
			w.writeByte(c)
		}
	}
	w.writeByte(')')
}

// formatReal prints at most six fractional digits with trailing zeros
// trimmed and never uses exponent notation.
func formatReal(f float64) string {
	s := strconv.FormatFloat(f, 'f', 6, 64)
	s = strings.TrimRight(s, "0")
	s = strings.TrimSuffix(s, ".")
	if s == "-0" || s == "" {
		return "0"
	}
	return s
}
