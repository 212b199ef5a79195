package core

// maxNesting bounds array and dictionary nesting while parsing or skipping.
const maxNesting = 64

// ObjectLocator maps object numbers to file offsets. The read-side
// XRefTable implements it.
type ObjectLocator interface {
	TryGetObjectOffset(num int) (int64, bool)
}

// Parser builds objects from the tokens at a given offset. It never reads
// sequentially on its own: every call names the offset to start from and,
// for methods taking a cursor, advances that cursor only on success.
type Parser struct {
	tok     *Tokenizer
	locator ObjectLocator
}

// NewParser creates a parser over tok. locator may be nil, in which case
// indirect references are never resolved.
func NewParser(tok *Tokenizer, locator ObjectLocator) *Parser {
	return &Parser{tok: tok, locator: locator}
}

// SetLocator sets the object locator used to resolve indirect references
func (p *Parser) SetLocator(locator ObjectLocator) {
	p.locator = locator
}

// Tokenizer returns the parser's tokenizer
func (p *Parser) Tokenizer() *Tokenizer {
	return p.tok
}

// ParseValue parses one value at the cursor. Comments are skipped as
// whitespace.
func (p *Parser) ParseValue(off *int64) (Object, bool) {
	pos := *off
	obj, ok := p.parseValue(&pos, 0)
	if ok {
		*off = pos
	}
	return obj, ok
}

// ParseValueOrComment is like ParseValue, but returns a leading comment as a
// Comment and a bare word as a Keyword instead of failing on them.
func (p *Parser) ParseValueOrComment(off *int64) (Object, bool) {
	pos := *off
	if text, ok := p.tok.TryParseComment(&pos); ok {
		*off = pos
		return Comment(text), true
	}
	pos = *off
	p.tok.SkipWhitespace(&pos)
	c := p.tok.PeekChar(pos)
	if c >= 0 && isRegular(byte(c)) && !isNumberStart(byte(c)) {
		word := p.readWord(&pos)
		switch word {
		case "true", "false", "null":
		default:
			p.tok.SkipWhitespace(&pos)
			*off = pos
			return Keyword(word), true
		}
	}
	return p.ParseValue(off)
}

func (p *Parser) parseValue(off *int64, depth int) (Object, bool) {
	if depth > maxNesting {
		return nil, false
	}
	p.tok.SkipWhitespace(off)
	c := p.tok.PeekChar(*off)
	switch {
	case c < 0:
		return nil, false
	case c == '/':
		name, ok := p.tok.TryParseName(off)
		if !ok {
			return nil, false
		}
		return Name(name), true
	case c == '(':
		data, ok := p.tok.TryParseLiteralString(off)
		if !ok {
			return nil, false
		}
		return String{Data: data}, true
	case c == '<':
		if p.tok.PeekChar(*off+1) == '<' {
			return p.parseDictOrStream(off, depth, true)
		}
		data, ok := p.tok.TryParseHexString(off)
		if !ok {
			return nil, false
		}
		return String{Data: data, Hex: true}, true
	case c == '[':
		return p.parseArray(off, depth)
	case c == 't':
		if p.tok.TryEat(off, "true") {
			return Bool(true), true
		}
	case c == 'f':
		if p.tok.TryEat(off, "false") {
			return Bool(false), true
		}
	case c == 'n':
		if p.tok.TryEat(off, "null") {
			return Null{}, true
		}
	case isNumberStart(byte(c)):
		return p.parseNumberOrReference(off)
	}
	return nil, false
}

func isNumberStart(c byte) bool {
	return isDigit(c) || c == '+' || c == '-' || c == '.'
}

func (p *Parser) readWord(off *int64) string {
	var buf []byte
	for c := p.tok.PeekChar(*off); c >= 0 && isRegular(byte(c)); c = p.tok.PeekChar(*off) {
		buf = append(buf, byte(c))
		*off++
	}
	return string(buf)
}

// parseNumberOrReference tries "num gen R" first and falls back to a plain
// number from the original position.
func (p *Parser) parseNumberOrReference(off *int64) (Object, bool) {
	start := *off
	if num, ok := p.tok.TryParseULong(off); ok {
		if gen, ok := p.tok.TryParseULong(off); ok && p.tok.TryEat(off, "R") {
			return IndirectRef{Number: int(num), Generation: int(gen)}, true
		}
	}
	*off = start
	return p.tok.TryParseNumber(off)
}

func (p *Parser) parseArray(off *int64, depth int) (Object, bool) {
	if !p.tok.TryEat(off, "[") {
		return nil, false
	}
	arr := Array{}
	for {
		if p.tok.TryEat(off, "]") {
			return arr, true
		}
		elem, ok := p.parseValue(off, depth+1)
		if !ok {
			return nil, false
		}
		arr = append(arr, elem)
	}
}

// parseDictOrStream parses a dictionary and, if the stream keyword follows
// it, the stream payload. With loadData false the payload is skipped and
// the returned stream has nil Data.
func (p *Parser) parseDictOrStream(off *int64, depth int, loadData bool) (Object, bool) {
	dict, ok := p.parseDict(off, depth)
	if !ok {
		return nil, false
	}
	pos := *off
	dataPos, ok := p.streamStart(&pos)
	if !ok {
		return dict, true
	}
	length, ok := p.streamLength(dict)
	if !ok || !p.fits(dataPos, length) {
		return nil, false
	}
	stream := &Stream{Dict: dict}
	if loadData {
		data, err := p.tok.ReadBytes(dataPos, int(length))
		if err != nil {
			return nil, false
		}
		stream.Data = data
	}
	*off = dataPos + length
	end := *off
	if !p.tok.TryEat(&end, "endstream") {
		end = *off
	}
	*off = end
	return stream, true
}

func (p *Parser) parseDict(off *int64, depth int) (*Dict, bool) {
	if depth > maxNesting || !p.tok.TryEat(off, "<<") {
		return nil, false
	}
	dict := NewDict()
	for {
		if p.tok.TryEat(off, ">>") {
			return dict, true
		}
		key, ok := p.tok.TryParseName(off)
		if !ok {
			return nil, false
		}
		value, ok := p.parseValue(off, depth+1)
		if !ok {
			return nil, false
		}
		dict.Set(key, value)
	}
}

// streamStart matches the stream keyword and its line break at the cursor
// and returns the offset of the first payload byte.
func (p *Parser) streamStart(off *int64) (int64, bool) {
	p.tok.SkipWhitespace(off)
	pos := *off
	for _, c := range []byte("stream") {
		if p.tok.PeekChar(pos) != int(c) {
			return 0, false
		}
		pos++
	}
	switch p.tok.PeekChar(pos) {
	case '\n':
		return pos + 1, true
	case '\r':
		if p.tok.PeekChar(pos+1) == '\n' {
			return pos + 2, true
		}
	}
	return 0, false
}

func (p *Parser) streamLength(dict *Dict) (int64, bool) {
	obj, ok := p.Resolve(dict.Get("Length"))
	if !ok {
		return 0, false
	}
	length, ok := obj.(Int)
	if !ok || length < 0 {
		return 0, false
	}
	return int64(length), true
}

// fits reports whether length bytes starting at pos lie inside the source.
func (p *Parser) fits(pos, length int64) bool {
	size, err := p.tok.Size()
	return err == nil && pos <= size && length <= size-pos
}

// ParseStreamHeader parses the stream object at off and returns its
// dictionary together with the position and length of its payload,
// without reading the payload. The length is not checked against the size
// of the source; callers report that themselves.
func (p *Parser) ParseStreamHeader(off int64) (*Dict, int64, int64, bool) {
	pos := off
	p.ParseObjectHeader(&pos)
	dict, ok := p.parseDict(&pos, 0)
	if !ok {
		return nil, 0, 0, false
	}
	dataPos, ok := p.streamStart(&pos)
	if !ok {
		return nil, 0, 0, false
	}
	length, ok := p.streamLength(dict)
	if !ok {
		return nil, 0, 0, false
	}
	return dict, dataPos, length, true
}

// ParseObjectHeader matches "num gen obj" at the cursor. The cursor is left
// untouched if the header is not there.
func (p *Parser) ParseObjectHeader(off *int64) (IndirectRef, bool) {
	pos := *off
	num, ok := p.tok.TryParseULong(&pos)
	if !ok {
		return IndirectRef{}, false
	}
	gen, ok := p.tok.TryParseULong(&pos)
	if !ok || !p.tok.TryEat(&pos, "obj") {
		return IndirectRef{}, false
	}
	*off = pos
	return IndirectRef{Number: int(num), Generation: int(gen)}, true
}

// ParseObjectAtOffset parses the indirect object definition at off and
// returns its value.
func (p *Parser) ParseObjectAtOffset(off int64) (Object, bool) {
	pos := off
	if _, ok := p.ParseObjectHeader(&pos); !ok {
		return nil, false
	}
	return p.ParseValue(&pos)
}

// Resolve follows one level of indirect reference. Other objects are
// returned unchanged. A nil object fails.
func (p *Parser) Resolve(obj Object) (Object, bool) {
	ref, ok := obj.(IndirectRef)
	if !ok {
		return obj, obj != nil
	}
	off, ok := p.ObjectOffset(ref)
	if !ok {
		return nil, false
	}
	return p.ParseObjectAtOffset(off)
}

// ObjectOffset returns the file offset of the referenced object
func (p *Parser) ObjectOffset(ref IndirectRef) (int64, bool) {
	if p.locator == nil {
		return 0, false
	}
	return p.locator.TryGetObjectOffset(ref.Number)
}

// DictionaryLookup finds key in the dictionary at off, which may be a bare
// dictionary or an indirect object whose value is a dictionary. Values of
// other keys are skipped without being built. A reference found under key is
// resolved one level, so the result is never an IndirectRef unless the
// target object is itself a reference.
func (p *Parser) DictionaryLookup(off int64, key string) (Object, bool) {
	pos := off
	p.ParseObjectHeader(&pos)
	if !p.tok.TryEat(&pos, "<<") {
		return nil, false
	}
	for {
		if p.tok.TryEat(&pos, ">>") {
			return nil, false
		}
		name, ok := p.tok.TryParseName(&pos)
		if !ok {
			return nil, false
		}
		if name == key {
			value, ok := p.ParseValue(&pos)
			if !ok {
				return nil, false
			}
			return p.Resolve(value)
		}
		if !p.SkipObject(&pos) {
			return nil, false
		}
	}
}

// SkipObject advances the cursor past one value without building it.
func (p *Parser) SkipObject(off *int64) bool {
	pos := *off
	if !p.skipObject(&pos, 0) {
		return false
	}
	*off = pos
	return true
}

func (p *Parser) skipObject(off *int64, depth int) bool {
	if depth > maxNesting {
		return false
	}
	p.tok.SkipWhitespace(off)
	c := p.tok.PeekChar(*off)
	switch {
	case c < 0:
		return false
	case c == '/':
		_, ok := p.tok.TryParseName(off)
		return ok
	case c == '(':
		_, ok := p.tok.TryParseLiteralString(off)
		return ok
	case c == '<' && p.tok.PeekChar(*off+1) == '<':
		p.tok.TryEat(off, "<<")
		for !p.tok.TryEat(off, ">>") {
			if _, ok := p.tok.TryParseName(off); !ok {
				return false
			}
			if !p.skipObject(off, depth+1) {
				return false
			}
		}
		return true
	case c == '<':
		_, ok := p.tok.TryParseHexString(off)
		return ok
	case c == '[':
		p.tok.TryEat(off, "[")
		for !p.tok.TryEat(off, "]") {
			if !p.skipObject(off, depth+1) {
				return false
			}
		}
		return true
	case isNumberStart(byte(c)):
		_, ok := p.parseNumberOrReference(off)
		return ok
	case isRegular(byte(c)):
		return p.tok.SkipToken(off)
	}
	return false
}
