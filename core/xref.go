package core

import (
	"bufio"
	"fmt"
	"io"
)

// XRefEntrySize is the fixed width of a classical cross-reference row.
const XRefEntrySize = 20

// FreeGeneration is the generation of the head of the free list, object 0.
const FreeGeneration = 65535

// XRefEntry represents a single cross-reference table entry
type XRefEntry struct {
	Offset     int64 // Byte offset in file (for in-use objects) or next free object number (for free objects)
	Generation int   // Generation number
	InUse      bool  // true if object is in use, false if free
}

// XRefTable is a cross-reference table read from a file. It holds a single
// subsection starting at object 0; entries are immutable once parsed.
type XRefTable struct {
	entries []XRefEntry
}

// ParseXRefEntries parses count fixed-width rows from buf. Each row is
// "oooooooooo ggggg n" followed by a two byte line ending. It fails on the
// first malformed row and reports its index.
func ParseXRefEntries(buf []byte, count int) (*XRefTable, error) {
	if count < 0 || len(buf) < count*XRefEntrySize {
		return nil, fmt.Errorf("xref section truncated: need %d bytes, have %d", count*XRefEntrySize, len(buf))
	}
	table := &XRefTable{entries: make([]XRefEntry, count)}
	for i := 0; i < count; i++ {
		row := buf[i*XRefEntrySize : (i+1)*XRefEntrySize]
		entry, err := parseXRefRow(row)
		if err != nil {
			return nil, fmt.Errorf("xref entry %d: %w", i, err)
		}
		table.entries[i] = entry
	}
	return table, nil
}

func parseXRefRow(row []byte) (XRefEntry, error) {
	var entry XRefEntry
	for _, c := range row[0:10] {
		if !isDigit(c) {
			return entry, fmt.Errorf("invalid offset %q", row[0:10])
		}
		entry.Offset = entry.Offset*10 + int64(c-'0')
	}
	if row[10] != ' ' || row[16] != ' ' {
		return entry, fmt.Errorf("malformed row %q", row)
	}
	for _, c := range row[11:16] {
		if !isDigit(c) {
			return entry, fmt.Errorf("invalid generation %q", row[11:16])
		}
		entry.Generation = entry.Generation*10 + int(c-'0')
	}
	switch row[17] {
	case 'n':
		entry.InUse = true
	case 'f':
	default:
		return entry, fmt.Errorf("invalid entry type %q", row[17])
	}
	return entry, nil
}

// Size returns the number of entries in the table, including object 0
func (x *XRefTable) Size() int {
	return len(x.entries)
}

// Get retrieves an XRef entry by object number
func (x *XRefTable) Get(objNum int) (XRefEntry, bool) {
	if objNum < 0 || objNum >= len(x.entries) {
		return XRefEntry{}, false
	}
	return x.entries[objNum], true
}

// TryGetObjectOffset returns the offset of an in-use object. Free and out of
// range entries answer false.
func (x *XRefTable) TryGetObjectOffset(objNum int) (int64, bool) {
	entry, ok := x.Get(objNum)
	if !ok || !entry.InUse {
		return 0, false
	}
	return entry.Offset, true
}

// XRefWriter allocates object numbers for a document being written and
// records each object's offset as it reaches the output.
type XRefWriter struct {
	entries []XRefEntry
	values  []Object
	written []bool
}

// NewXRefWriter returns an allocator whose only entry is the free object 0
func NewXRefWriter() *XRefWriter {
	return &XRefWriter{
		entries: []XRefEntry{{Generation: FreeGeneration}},
		values:  []Object{nil},
		written: []bool{true},
	}
}

// CreateReference allocates the next object number. value may be nil; it
// is kept for later retrieval with Value.
func (x *XRefWriter) CreateReference(value Object) IndirectRef {
	x.entries = append(x.entries, XRefEntry{InUse: true})
	x.values = append(x.values, value)
	x.written = append(x.written, false)
	return IndirectRef{Number: len(x.entries) - 1}
}

// Count returns the number of entries including object 0
func (x *XRefWriter) Count() int {
	return len(x.entries)
}

// SetObjectOffset records where the referenced object was written
func (x *XRefWriter) SetObjectOffset(ref IndirectRef, offset int64) error {
	if ref.Number <= 0 || ref.Number >= len(x.entries) {
		return fmt.Errorf("object %d was not allocated", ref.Number)
	}
	x.entries[ref.Number].Offset = offset
	x.written[ref.Number] = true
	return nil
}

// Value returns the value attached to ref, or nil
func (x *XRefWriter) Value(ref IndirectRef) Object {
	if ref.Number <= 0 || ref.Number >= len(x.values) {
		return nil
	}
	return x.values[ref.Number]
}

// SetValue replaces the value attached to ref
func (x *XRefWriter) SetValue(ref IndirectRef, value Object) {
	if ref.Number > 0 && ref.Number < len(x.values) {
		x.values[ref.Number] = value
	}
}

// WriteTo writes the xref section. It fails without writing anything if an
// allocated object has not been written yet.
func (x *XRefWriter) WriteTo(w io.Writer) (int64, error) {
	for num, ok := range x.written {
		if !ok {
			return 0, &Error{Op: "WriteXRef", Level: LevelInternal, Code: CodeInternalXrefTable, Offset: -1,
				Err: fmt.Errorf("object %d was allocated but never written", num)}
		}
	}
	bw := bufio.NewWriter(w)
	n, _ := fmt.Fprintf(bw, "xref\n0 %d\n", len(x.entries))
	total := int64(n)
	for _, e := range x.entries {
		kind := 'f'
		if e.InUse {
			kind = 'n'
		}
		n, _ = fmt.Fprintf(bw, "%010d %05d %c \n", e.Offset, e.Generation, kind)
		total += int64(n)
	}
	return total, bw.Flush()
}
