package core

import (
	"bytes"
	"strconv"
	"strings"

	"golang.org/x/text/encoding/unicode"
)

// Object represents a PDF object
type Object interface {
	Type() ObjectType
	String() string
}

// ObjectType represents the type of PDF object
type ObjectType int

const (
	ObjNull ObjectType = iota
	ObjBool
	ObjInt
	ObjReal
	ObjString
	ObjName
	ObjArray
	ObjDict
	ObjStream
	ObjIndirect
	ObjComment
	ObjKeyword
)

// String returns the string representation of the object type
func (t ObjectType) String() string {
	switch t {
	case ObjNull:
		return "Null"
	case ObjBool:
		return "Bool"
	case ObjInt:
		return "Int"
	case ObjReal:
		return "Real"
	case ObjString:
		return "String"
	case ObjName:
		return "Name"
	case ObjArray:
		return "Array"
	case ObjDict:
		return "Dict"
	case ObjStream:
		return "Stream"
	case ObjIndirect:
		return "IndirectRef"
	case ObjComment:
		return "Comment"
	case ObjKeyword:
		return "Keyword"
	default:
		return "Unknown"
	}
}

// Null represents a PDF null object
type Null struct{}

func (n Null) Type() ObjectType { return ObjNull }
func (n Null) String() string   { return "null" }

// Bool represents a PDF boolean
type Bool bool

func (b Bool) Type() ObjectType { return ObjBool }
func (b Bool) String() string {
	if b {
		return "true"
	}
	return "false"
}

// Int represents a PDF integer
type Int int64

func (i Int) Type() ObjectType { return ObjInt }
func (i Int) String() string   { return strconv.FormatInt(int64(i), 10) }

// Real represents a PDF real number
type Real float64

func (r Real) Type() ObjectType { return ObjReal }
func (r Real) String() string   { return formatReal(float64(r)) }

// String represents a PDF string. Data holds the raw bytes; Hex selects
// the <...> form on output instead of (...).
type String struct {
	Data []byte
	Hex  bool
}

// NewString returns a literal string holding s.
func NewString(s string) String { return String{Data: []byte(s)} }

// NewHexString returns a hex string holding b.
func NewHexString(b []byte) String { return String{Data: b, Hex: true} }

var utf16BE = unicode.UTF16(unicode.BigEndian, unicode.ExpectBOM)

// NewTextString returns a text string for s. Printable ASCII is stored as is;
// anything else is stored as UTF-16BE with a byte order mark.
func NewTextString(s string) String {
	for i := 0; i < len(s); i++ {
		if s[i] < 0x20 || s[i] > 0x7e {
			enc, err := utf16BE.NewEncoder().Bytes([]byte(s))
			if err != nil {
				break
			}
			return String{Data: enc}
		}
	}
	return NewString(s)
}

// Text decodes a text string, honoring a UTF-16BE byte order mark.
func (s String) Text() string {
	if len(s.Data) >= 2 && s.Data[0] == 0xfe && s.Data[1] == 0xff {
		dec, err := utf16BE.NewDecoder().Bytes(s.Data)
		if err == nil {
			return string(dec)
		}
	}
	return string(s.Data)
}

func (s String) Type() ObjectType { return ObjString }
func (s String) String() string   { return serialize(s) }

// Name represents a PDF name
type Name string

func (n Name) Type() ObjectType { return ObjName }
func (n Name) String() string   { return serialize(n) }

// Comment is a % comment, without the leading % or the line terminator.
type Comment string

func (c Comment) Type() ObjectType { return ObjComment }
func (c Comment) String() string   { return "%" + string(c) }

// Keyword is a bare token such as obj, stream or R.
type Keyword string

func (k Keyword) Type() ObjectType { return ObjKeyword }
func (k Keyword) String() string   { return string(k) }

// Array represents a PDF array
type Array []Object

func (a Array) Type() ObjectType { return ObjArray }
func (a Array) String() string {
	var parts []string
	for _, obj := range a {
		parts = append(parts, obj.String())
	}
	return "[" + strings.Join(parts, " ") + "]"
}

// Len returns the length of the array
func (a Array) Len() int {
	return len(a)
}

// Get retrieves an element at the given index
func (a Array) Get(index int) Object {
	if index < 0 || index >= len(a) {
		return nil
	}
	return a[index]
}

// GetInt retrieves an integer at the given index
func (a Array) GetInt(index int) (Int, bool) {
	i, ok := a.Get(index).(Int)
	return i, ok
}

// GetReal retrieves a number at the given index, accepting integers
func (a Array) GetReal(index int) (float64, bool) {
	return numberValue(a.Get(index))
}

// GetName retrieves a name at the given index
func (a Array) GetName(index int) (Name, bool) {
	n, ok := a.Get(index).(Name)
	return n, ok
}

// Numbers converts an array of numbers. It fails if any element is not
// an Int or Real.
func (a Array) Numbers() ([]float64, bool) {
	out := make([]float64, len(a))
	for i, obj := range a {
		v, ok := numberValue(obj)
		if !ok {
			return nil, false
		}
		out[i] = v
	}
	return out, true
}

func numberValue(obj Object) (float64, bool) {
	switch v := obj.(type) {
	case Int:
		return float64(v), true
	case Real:
		return float64(v), true
	}
	return 0, false
}

// Dict represents a PDF dictionary. Keys keep their insertion order for
// serialization; setting a key to Null removes it.
type Dict struct {
	keys []string
	m    map[string]Object
}

// NewDict returns an empty dictionary
func NewDict() *Dict {
	return &Dict{m: make(map[string]Object)}
}

func (d *Dict) Type() ObjectType { return ObjDict }
func (d *Dict) String() string   { return serialize(d) }

// Len returns the number of entries
func (d *Dict) Len() int {
	if d == nil {
		return 0
	}
	return len(d.keys)
}

// Keys returns the keys in insertion order
func (d *Dict) Keys() []string {
	if d == nil {
		return nil
	}
	return append([]string(nil), d.keys...)
}

// Set stores a value. A nil or Null value removes the key.
func (d *Dict) Set(key string, value Object) {
	if value == nil || value.Type() == ObjNull {
		d.Delete(key)
		return
	}
	if d.m == nil {
		d.m = make(map[string]Object)
	}
	if _, ok := d.m[key]; !ok {
		d.keys = append(d.keys, key)
	}
	d.m[key] = value
}

// Delete removes a key
func (d *Dict) Delete(key string) {
	if d == nil {
		return
	}
	if _, ok := d.m[key]; !ok {
		return
	}
	delete(d.m, key)
	for i, k := range d.keys {
		if k == key {
			d.keys = append(d.keys[:i], d.keys[i+1:]...)
			break
		}
	}
}

// Get retrieves a value from the dictionary
func (d *Dict) Get(key string) Object {
	if d == nil {
		return nil
	}
	return d.m[key]
}

// Has checks if a key exists
func (d *Dict) Has(key string) bool {
	return d.Get(key) != nil
}

// GetName retrieves a name value
func (d *Dict) GetName(key string) (Name, bool) {
	name, ok := d.Get(key).(Name)
	return name, ok
}

// GetInt retrieves an integer value
func (d *Dict) GetInt(key string) (Int, bool) {
	i, ok := d.Get(key).(Int)
	return i, ok
}

// GetReal retrieves a number, accepting integers
func (d *Dict) GetReal(key string) (float64, bool) {
	return numberValue(d.Get(key))
}

// GetBool retrieves a boolean value
func (d *Dict) GetBool(key string) (Bool, bool) {
	b, ok := d.Get(key).(Bool)
	return b, ok
}

// GetString retrieves a string value
func (d *Dict) GetString(key string) (String, bool) {
	s, ok := d.Get(key).(String)
	return s, ok
}

// GetDict retrieves a dictionary value
func (d *Dict) GetDict(key string) (*Dict, bool) {
	dict, ok := d.Get(key).(*Dict)
	return dict, ok
}

// GetArray retrieves an array value
func (d *Dict) GetArray(key string) (Array, bool) {
	arr, ok := d.Get(key).(Array)
	return arr, ok
}

// GetIndirectRef retrieves an indirect reference
func (d *Dict) GetIndirectRef(key string) (IndirectRef, bool) {
	ref, ok := d.Get(key).(IndirectRef)
	return ref, ok
}

// Stream represents a PDF stream: a dictionary plus its raw payload.
type Stream struct {
	Dict *Dict
	Data []byte
}

// NewStream returns a stream with an empty dictionary
func NewStream(data []byte) *Stream {
	return &Stream{Dict: NewDict(), Data: data}
}

func (s *Stream) Type() ObjectType { return ObjStream }
func (s *Stream) String() string   { return serialize(s) }

// IndirectRef represents an indirect object reference (e.g., "5 0 R")
type IndirectRef struct {
	Number     int
	Generation int
}

func (r IndirectRef) Type() ObjectType { return ObjIndirect }
func (r IndirectRef) String() string {
	return strconv.Itoa(r.Number) + " " + strconv.Itoa(r.Generation) + " R"
}

func serialize(obj Object) string {
	var buf bytes.Buffer
	_, _ = WriteObject(&buf, obj)
	return buf.String()
}
