package core

import (
	"fmt"
	"io"
	"strconv"
)

// BlockSize is the size of the tokenizer's read-ahead window.
const BlockSize = 1024

// Tokenizer scans PDF tokens at arbitrary offsets of a seekable source.
// It keeps one BlockSize window of the file cached and refills it whenever
// a peek falls outside of it, so random access stays cheap for the small
// jumps that dictionary lookups make.
//
// Positional methods take a cursor. Methods whose name starts with Try
// advance the cursor on success and leave it unspecified on failure; callers
// that want to backtrack save the cursor value beforehand.
type Tokenizer struct {
	rs       io.ReadSeeker
	block    [BlockSize]byte
	blockPos int64
	blockLen int
	size     int64 // -1 until Size succeeds
}

// NewTokenizer creates a tokenizer over rs
func NewTokenizer(rs io.ReadSeeker) *Tokenizer {
	return &Tokenizer{rs: rs, size: -1}
}

// Size returns the length of the underlying source. The source is assumed
// not to change while it is being read.
func (t *Tokenizer) Size() (int64, error) {
	if t.size >= 0 {
		return t.size, nil
	}
	n, err := t.rs.Seek(0, io.SeekEnd)
	if err != nil {
		return 0, err
	}
	t.size = n
	return n, nil
}

// PeekChar returns the byte at off, or -1 at end of file or on a read error.
func (t *Tokenizer) PeekChar(off int64) int {
	if off < 0 {
		return -1
	}
	if t.blockLen == 0 || off < t.blockPos || off >= t.blockPos+int64(t.blockLen) {
		if !t.fill(off) {
			return -1
		}
	}
	return int(t.block[off-t.blockPos])
}

func (t *Tokenizer) fill(off int64) bool {
	t.blockLen = 0
	if _, err := t.rs.Seek(off, io.SeekStart); err != nil {
		return false
	}
	n, _ := io.ReadFull(t.rs, t.block[:])
	if n == 0 {
		return false
	}
	t.blockPos = off
	t.blockLen = n
	return true
}

// ReadBytes reads exactly n bytes starting at off, bypassing the block cache.
func (t *Tokenizer) ReadBytes(off int64, n int) ([]byte, error) {
	if n < 0 || off < 0 {
		return nil, fmt.Errorf("invalid read of %d bytes at %d", n, off)
	}
	size, err := t.Size()
	if err != nil {
		return nil, fmt.Errorf("size: %w", err)
	}
	if off > size || int64(n) > size-off {
		return nil, fmt.Errorf("read %d bytes at %d: %w", n, off, io.ErrUnexpectedEOF)
	}
	if _, err := t.rs.Seek(off, io.SeekStart); err != nil {
		return nil, fmt.Errorf("seek to %d: %w", off, err)
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(t.rs, buf); err != nil {
		return nil, fmt.Errorf("read %d bytes at %d: %w", n, off, err)
	}
	return buf, nil
}

// SkipWhitespace advances past whitespace and comments.
func (t *Tokenizer) SkipWhitespace(off *int64) {
	for {
		c := t.PeekChar(*off)
		switch {
		case c < 0:
			return
		case c == '%':
			for c >= 0 && c != '\r' && c != '\n' {
				*off++
				c = t.PeekChar(*off)
			}
		case isWhitespace(byte(c)):
			*off++
		default:
			return
		}
	}
}

// TryEat matches literal at the cursor after skipping whitespace. A literal
// that starts with '/' or a regular character only matches a whole token,
// so "obj" does not match the start of "objx". Trailing whitespace is
// skipped on success.
func (t *Tokenizer) TryEat(off *int64, literal string) bool {
	if literal == "" {
		return false
	}
	t.SkipWhitespace(off)
	pos := *off
	for i := 0; i < len(literal); i++ {
		if t.PeekChar(pos) != int(literal[i]) {
			return false
		}
		pos++
	}
	first := literal[0]
	if first == '/' || isRegular(first) {
		if next := t.PeekChar(pos); next >= 0 && isRegular(byte(next)) {
			return false
		}
	}
	*off = pos
	t.SkipWhitespace(off)
	return true
}

// TryParseULong parses an unsigned decimal integer.
func (t *Tokenizer) TryParseULong(off *int64) (int64, bool) {
	t.SkipWhitespace(off)
	var n int64
	digits := 0
	for {
		c := t.PeekChar(*off)
		if c < 0 || !isDigit(byte(c)) {
			break
		}
		if n > (1<<62)/10 {
			return 0, false
		}
		n = n*10 + int64(c-'0')
		digits++
		*off++
	}
	if digits == 0 {
		return 0, false
	}
	t.SkipWhitespace(off)
	return n, true
}

// TryParseNumber parses an optionally signed integer or real number. The
// result is an Int when there is no decimal point and a Real otherwise.
func (t *Tokenizer) TryParseNumber(off *int64) (Object, bool) {
	t.SkipWhitespace(off)
	var text []byte
	c := t.PeekChar(*off)
	if c == '+' || c == '-' {
		text = append(text, byte(c))
		*off++
	}
	digits, precision := 0, 0
	for c = t.PeekChar(*off); c >= 0 && isDigit(byte(c)); c = t.PeekChar(*off) {
		text = append(text, byte(c))
		digits++
		*off++
	}
	isReal := false
	if c == '.' {
		isReal = true
		text = append(text, '.')
		*off++
		for c = t.PeekChar(*off); c >= 0 && isDigit(byte(c)); c = t.PeekChar(*off) {
			text = append(text, byte(c))
			precision++
			*off++
		}
	}
	if digits+precision == 0 {
		return nil, false
	}
	t.SkipWhitespace(off)
	if !isReal {
		if i, err := strconv.ParseInt(string(text), 10, 64); err == nil {
			return Int(i), true
		}
	}
	if text[len(text)-1] == '.' {
		text = append(text, '0')
	}
	f, err := strconv.ParseFloat(string(text), 64)
	if err != nil {
		return nil, false
	}
	return Real(f), true
}

// TryParseLiteralString parses a parenthesized string, decoding escapes.
func (t *Tokenizer) TryParseLiteralString(off *int64) ([]byte, bool) {
	t.SkipWhitespace(off)
	if t.PeekChar(*off) != '(' {
		return nil, false
	}
	*off++
	var buf []byte
	depth := 1
	for {
		c := t.PeekChar(*off)
		if c < 0 {
			return nil, false
		}
		*off++
		switch c {
		case '(':
			depth++
			buf = append(buf, '(')
		case ')':
			depth--
			if depth == 0 {
				t.SkipWhitespace(off)
				return buf, true
			}
			buf = append(buf, ')')
		case '\\':
			next := t.PeekChar(*off)
			if next < 0 {
				return nil, false
			}
			*off++
			switch next {
			case 'n':
				buf = append(buf, '\n')
			case 'r':
				buf = append(buf, '\r')
			case 't':
				buf = append(buf, '\t')
			case 'b':
				buf = append(buf, '\b')
			case 'f':
				buf = append(buf, '\f')
			case '(', ')', '\\':
				buf = append(buf, byte(next))
			case '\r':
				// Line continuation
				if t.PeekChar(*off) == '\n' {
					*off++
				}
			case '\n':
			case '0', '1', '2', '3', '4', '5', '6', '7':
				val := next - '0'
				for i := 0; i < 2; i++ {
					d := t.PeekChar(*off)
					if d < 0 || !isOctalDigit(byte(d)) {
						break
					}
					val = val*8 + d - '0'
					*off++
				}
				buf = append(buf, byte(val))
			default:
				// Unknown escape: the backslash is dropped
				buf = append(buf, byte(next))
			}
		default:
			buf = append(buf, byte(c))
		}
	}
}

// TryParseHexString parses a <...> string. Whitespace is ignored and an odd
// final digit is padded with zero.
func (t *Tokenizer) TryParseHexString(off *int64) ([]byte, bool) {
	t.SkipWhitespace(off)
	if t.PeekChar(*off) != '<' || t.PeekChar(*off+1) == '<' {
		return nil, false
	}
	*off++
	var buf []byte
	var hi byte
	odd := false
	for {
		c := t.PeekChar(*off)
		if c < 0 {
			return nil, false
		}
		*off++
		if c == '>' {
			break
		}
		if isWhitespace(byte(c)) {
			continue
		}
		if !isHexDigit(byte(c)) {
			return nil, false
		}
		if odd {
			buf = append(buf, hi<<4|hexValue(byte(c)))
		} else {
			hi = hexValue(byte(c))
		}
		odd = !odd
	}
	if odd {
		buf = append(buf, hi<<4)
	}
	t.SkipWhitespace(off)
	return buf, true
}

// TryParseName parses a /Name, decoding #XX escapes.
func (t *Tokenizer) TryParseName(off *int64) (string, bool) {
	t.SkipWhitespace(off)
	if t.PeekChar(*off) != '/' {
		return "", false
	}
	*off++
	var buf []byte
	for {
		c := t.PeekChar(*off)
		if c < 0 || !isRegular(byte(c)) {
			break
		}
		*off++
		if c == '#' {
			h1, h2 := t.PeekChar(*off), t.PeekChar(*off+1)
			if h1 >= 0 && h2 >= 0 && isHexDigit(byte(h1)) && isHexDigit(byte(h2)) {
				buf = append(buf, hexValue(byte(h1))<<4|hexValue(byte(h2)))
				*off += 2
				continue
			}
		}
		buf = append(buf, byte(c))
	}
	t.SkipWhitespace(off)
	return string(buf), true
}

// TryParseComment returns the text of a % comment without its line ending.
func (t *Tokenizer) TryParseComment(off *int64) (string, bool) {
	for {
		c := t.PeekChar(*off)
		if c < 0 || c == '%' || !isWhitespace(byte(c)) {
			break
		}
		*off++
	}
	if t.PeekChar(*off) != '%' {
		return "", false
	}
	*off++
	var buf []byte
	for c := t.PeekChar(*off); c >= 0 && c != '\r' && c != '\n'; c = t.PeekChar(*off) {
		buf = append(buf, byte(c))
		*off++
	}
	t.SkipWhitespace(off)
	return string(buf), true
}

// SkipToken advances past one token: a run of regular characters, a
// two-character << or >>, or a single delimiter.
func (t *Tokenizer) SkipToken(off *int64) bool {
	t.SkipWhitespace(off)
	c := t.PeekChar(*off)
	if c < 0 {
		return false
	}
	if (c == '<' || c == '>') && t.PeekChar(*off+1) == c {
		*off += 2
	} else if isDelimiter(byte(c)) {
		*off++
	} else {
		for c >= 0 && isRegular(byte(c)) {
			*off++
			c = t.PeekChar(*off)
		}
	}
	t.SkipWhitespace(off)
	return true
}

// Helper functions

func isWhitespace(b byte) bool {
	// PDF whitespace: space, tab, LF, CR, FF, null
	return b == ' ' || b == '\t' || b == '\n' || b == '\r' || b == '\f' || b == 0
}

func isDelimiter(b byte) bool {
	return b == '(' || b == ')' || b == '<' || b == '>' || b == '[' || b == ']' ||
		b == '{' || b == '}' || b == '/' || b == '%'
}

func isRegular(b byte) bool {
	return !isWhitespace(b) && !isDelimiter(b)
}

func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}

func isOctalDigit(b byte) bool {
	return b >= '0' && b <= '7'
}

func isHexDigit(b byte) bool {
	return (b >= '0' && b <= '9') || (b >= 'a' && b <= 'f') || (b >= 'A' && b <= 'F')
}

func hexValue(b byte) byte {
	if b >= '0' && b <= '9' {
		return b - '0'
	}
	if b >= 'a' && b <= 'f' {
		return b - 'a' + 10
	}
	if b >= 'A' && b <= 'F' {
		return b - 'A' + 10
	}
	return 0
}
