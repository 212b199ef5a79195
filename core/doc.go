// Package core provides the low-level PDF building blocks used by the
// PDF/raster reader and writer.
//
// # Object Types
//
// PDF values are represented by types satisfying the [Object] interface:
//
//   - [Null], [Bool], [Int] and [Real] for the scalar types
//   - [String] for literal and hexadecimal strings, with the raw bytes kept as is
//   - [Name] for names such as /Type
//   - [Array] and [Dict] for containers; a [Dict] keeps insertion order
//   - [Stream] for a dictionary plus its payload
//   - [IndirectRef] for "num gen R" references
//   - [Comment] and [Keyword] for the remaining lexical tokens
//
// [WriteObject] serializes any of these in the exact syntax PDF/raster
// writers are expected to produce.
//
// # Tokenizing and Parsing
//
// The [Tokenizer] reads from an io.ReadSeeker through a small cached block,
// so it can start scanning at any offset. The [Parser] builds objects from
// those tokens. Both work on explicit offsets rather than a running stream
// position, which lets the reader jump straight to an object through the
// cross-reference table and look up a single key with [Parser.DictionaryLookup].
//
// # Cross-Reference Tables
//
// [XRefTable] is the read side, parsed from the classical 20-byte entry
// format. [XRefWriter] is the write side: it hands out object numbers,
// records offsets as objects are written and serializes the final table.
//
// # Dates
//
// [FormatDate] and [ParseDate] convert between time.Time and the
// D:YYYYMMDDHHmmSS date strings used by /CreationDate.
//
// # Errors
//
// Problems are classified by [ErrorLevel] and, for structural read failures,
// by [ReadErrorCode]. Operations return an [*Error] carrying both together
// with the byte offset where the problem was found.
package core
