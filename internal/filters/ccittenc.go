package filters

import "fmt"

// Mode code words for two-dimensional coding.
const (
	codePass       = "0001"
	codeHorizontal = "001"
	codeEOL        = "000000000001"
)

// verticalCodes[b1-a1+3]: index 0 is VR3, 3 is V0 and 6 is VL3.
var verticalCodes = [7]string{"0000011", "000011", "011", "1", "010", "000010", "0000010"}

// CCITTFaxEncode compresses a bi-level image with CCITT Group 4 (T.6) and
// terminates the data with an end-of-facsimile-block. pixels holds height
// rows of (width+7)/8 bytes, most significant bit first. When blackIs1 is
// true a 1 bit is coded as black; otherwise a 0 bit is. Decoding the result
// with CCITTFaxDecode and the same BlackIs1 returns the original bits.
func CCITTFaxEncode(pixels []byte, width, height int, blackIs1 bool) ([]byte, error) {
	if width <= 0 || height < 0 {
		return nil, fmt.Errorf("invalid image size %dx%d", width, height)
	}
	rowBytes := (width + 7) / 8
	if len(pixels) < rowBytes*height {
		return nil, fmt.Errorf("pixel buffer has %d bytes, need %d", len(pixels), rowBytes*height)
	}

	var w bitWriter
	ref := make([]byte, width) // imaginary all-white line above the first row
	cur := make([]byte, width)
	for y := 0; y < height; y++ {
		row := pixels[y*rowBytes : (y+1)*rowBytes]
		for x := range cur {
			bit := row[x>>3] >> (7 - uint(x&7)) & 1
			if !blackIs1 {
				bit ^= 1
			}
			cur[x] = bit
		}
		encodeRow(&w, cur, ref)
		ref, cur = cur, ref
	}
	w.writeCode(codeEOL)
	w.writeCode(codeEOL)
	return w.bytes(), nil
}

// encodeRow codes one line against the reference line above it. Both hold
// one byte per pixel, 0 for white and 1 for black.
func encodeRow(w *bitWriter, cur, ref []byte) {
	width := len(cur)
	a0 := 0
	a1 := 0
	if cur[0] == 0 {
		a1 = findDiff(cur, 0, 0)
	}
	b1 := 0
	if ref[0] == 0 {
		b1 = findDiff(ref, 0, 0)
	}
	for {
		b2 := findDiff(ref, b1, pixelAt(ref, b1))
		if b2 >= a1 {
			d := b1 - a1
			if d < -3 || d > 3 {
				a2 := findDiff(cur, a1, pixelAt(cur, a1))
				w.writeCode(codeHorizontal)
				if a0+a1 == 0 || cur[a0] == 0 {
					writeRun(w, a1-a0, false)
					writeRun(w, a2-a1, true)
				} else {
					writeRun(w, a1-a0, true)
					writeRun(w, a2-a1, false)
				}
				a0 = a2
			} else {
				w.writeCode(verticalCodes[d+3])
				a0 = a1
			}
		} else {
			w.writeCode(codePass)
			a0 = b2
		}
		if a0 >= width {
			return
		}
		color := cur[a0]
		a1 = findDiff(cur, a0, color)
		b1 = findDiff(ref, a0, color^1)
		b1 = findDiff(ref, b1, color)
	}
}

// findDiff returns the first position at or after start whose pixel is not
// color, or len(line) if there is none.
func findDiff(line []byte, start int, color byte) int {
	for i := start; i < len(line); i++ {
		if line[i] != color {
			return i
		}
	}
	return len(line)
}

func pixelAt(line []byte, i int) byte {
	if i < len(line) {
		return line[i]
	}
	return 0
}

// writeRun writes a run length as optional make-up codes followed by a
// terminating code.
func writeRun(w *bitWriter, run int, black bool) {
	term, makeup := whiteTermCodes[:], whiteMakeupCodes[:]
	if black {
		term, makeup = blackTermCodes[:], blackMakeupCodes[:]
	}
	for run >= 2560+64 {
		w.writeCode(extMakeupCodes[len(extMakeupCodes)-1])
		run -= 2560
	}
	if run >= 64 {
		m := run / 64
		if m <= len(makeup) {
			w.writeCode(makeup[m-1])
		} else {
			w.writeCode(extMakeupCodes[m-len(makeup)-1])
		}
		run -= m * 64
	}
	w.writeCode(term[run])
}

// bitWriter accumulates code words most significant bit first.
type bitWriter struct {
	buf   []byte
	cur   byte
	nBits uint
}

func (w *bitWriter) writeCode(code string) {
	for i := 0; i < len(code); i++ {
		w.cur <<= 1
		if code[i] == '1' {
			w.cur |= 1
		}
		w.nBits++
		if w.nBits == 8 {
			w.buf = append(w.buf, w.cur)
			w.cur, w.nBits = 0, 0
		}
	}
}

// bytes returns the written data with the last byte zero padded.
func (w *bitWriter) bytes() []byte {
	if w.nBits > 0 {
		return append(w.buf, w.cur<<(8-w.nBits))
	}
	return w.buf
}
