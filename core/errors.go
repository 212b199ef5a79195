package core

import (
	"errors"
	"fmt"
)

// Library and format versions.
const (
	LibraryVersion   = "1.0.0"
	PDFRasterVersion = "1.0"
	PDFVersion       = "1.7"

	ReaderAPILevel = 1
	WriterAPILevel = 1

	MaxSupportedMajor = 1
	MaxSupportedMinor = 0
)

// ErrorLevel classifies the severity of a reported problem.
type ErrorLevel int

const (
	LevelInfo ErrorLevel = iota
	LevelWarning
	LevelCompliance
	LevelAPI
	LevelMemory
	LevelIO
	LevelLimit
	LevelInternal
	LevelOther
)

// String returns the string representation of the level
func (l ErrorLevel) String() string {
	switch l {
	case LevelInfo:
		return "info"
	case LevelWarning:
		return "warning"
	case LevelCompliance:
		return "compliance"
	case LevelAPI:
		return "api"
	case LevelMemory:
		return "memory"
	case LevelIO:
		return "io"
	case LevelLimit:
		return "limit"
	case LevelInternal:
		return "internal"
	default:
		return "other"
	}
}

// ReadErrorCode identifies a specific structural problem found while reading.
type ReadErrorCode int

const (
	CodeOK ReadErrorCode = iota
	CodeAPIBadReader
	CodeAPILevel
	CodeAPINullParam
	CodeAPIAlreadyOpen
	CodeAPINotOpen
	CodeAPINoSuchPage
	CodeAPINoSuchStrip
	CodeStripBufferSize
	CodeInternalXrefSize
	CodeInternalXrefTable
	CodeMemoryMalloc
	CodeEOFMarker
	CodeStartxref
	CodeBadStartxref
	CodePdfrasterTag
	CodeTagSOL
	CodeBadTag
	CodeTooMajor
	CodeTooMinor
	CodeLitstrEOF
	CodeHexstrChar
	CodeXref
	CodeXrefHeader
	CodeXrefObjectZero
	CodeXrefNumRefs
	CodeTrailer
	CodeTrailerDict
	CodeRoot
	CodeCatType
	CodeCatPages
	CodePagesCount
	CodePageCounts
	CodePageType
	CodePageType2
	CodePagesExtra
	CodePageKids
	CodePageKidsArray
	CodePageKidsEnd
	CodePageRotation
	CodePageMediabox
	CodeStripRead
	CodeXrefTable
	CodeXrefEntry
	CodeXrefEntryZero
	CodeXrefGen0
	CodeObjDef
	CodeNoSuchXref
	CodeGenZero
	CodeDictionary
	CodeDictNameKey
	CodeDictObjstm
	CodeDictEOF
	CodeDictValue
	CodeStreamCRLF
	CodeStreamLinebreak
	CodeStreamLength
	CodeStreamLengthInt
	CodeStreamEndstream
	CodeObjectEOF
	CodeStream
	CodeObject
	CodeMediaboxArray
	CodeMediaboxElements
	CodeResources
	CodeXObject
	CodeXObjectDict
	CodeXObjectEntry
	CodeStripRef
	CodeStripDict
	CodeStripMissing
	CodeStripTypeXObject
	CodeStripSubtype
	CodeStripBitsPerComponent
	CodeStripCsBpc
	CodeStripHeight
	CodeStripWidth
	CodeStripWidthSame
	CodeStripFormatSame
	CodeStripColorspaceSame
	CodeStripDepthSame
	CodeStripColorspace
	CodeStripLength
	CodeValidColorspace
	CodeCalgrayDict
	CodeGammaNumber
	CodeGamma22
	CodeCalrgbDict
	CodeMatrix
	CodeMatrixElement
	CodeMatrixTooLong
	CodeMatrixTooShort
	CodeWhitepoint
	CodeBlackpoint
	CodeIccProfile
	CodeIccProfileRead
	CodeColorspaceArray
	CodeTrailerPrev
	CodeStripFilter
	CodeStripDecode
)

var readErrorCodeNames = map[ReadErrorCode]string{
	CodeOK:                    "ok",
	CodeAPIBadReader:          "bad reader",
	CodeAPILevel:              "unsupported api level",
	CodeAPINullParam:          "missing parameter",
	CodeAPIAlreadyOpen:        "reader already open",
	CodeAPINotOpen:            "reader not open",
	CodeAPINoSuchPage:         "no such page",
	CodeAPINoSuchStrip:        "no such strip",
	CodeStripBufferSize:       "strip buffer too small",
	CodeInternalXrefSize:      "xref size mismatch",
	CodeInternalXrefTable:     "xref table corrupt",
	CodeMemoryMalloc:          "allocation failed",
	CodeEOFMarker:             "missing %%EOF marker",
	CodeStartxref:             "missing startxref",
	CodeBadStartxref:          "bad startxref offset",
	CodePdfrasterTag:          "missing PDF-raster tag",
	CodeTagSOL:                "PDF-raster tag not at start of line",
	CodeBadTag:                "malformed PDF-raster tag",
	CodeTooMajor:              "PDF-raster major version too high",
	CodeTooMinor:              "PDF-raster minor version too high",
	CodeLitstrEOF:             "end of file in literal string",
	CodeHexstrChar:            "invalid character in hex string",
	CodeXref:                  "missing xref keyword",
	CodeXrefHeader:            "malformed xref subsection header",
	CodeXrefObjectZero:        "xref does not start at object 0",
	CodeXrefNumRefs:           "invalid xref entry count",
	CodeTrailer:               "missing trailer keyword",
	CodeTrailerDict:           "malformed trailer dictionary",
	CodeRoot:                  "missing or invalid /Root",
	CodeCatType:               "catalog /Type is not /Catalog",
	CodeCatPages:              "missing or invalid catalog /Pages",
	CodePagesCount:            "missing or invalid /Count",
	CodePageCounts:            "page count does not match /Count",
	CodePageType:              "page tree node without /Type",
	CodePageType2:             "page tree node has unknown /Type",
	CodePagesExtra:            "extra pages in page tree",
	CodePageKids:              "missing /Kids",
	CodePageKidsArray:         "/Kids is not an array",
	CodePageKidsEnd:           "malformed /Kids array",
	CodePageRotation:          "invalid /Rotate",
	CodePageMediabox:          "missing or invalid /MediaBox",
	CodeStripRead:             "strip read failed",
	CodeXrefTable:             "malformed xref table",
	CodeXrefEntry:             "malformed xref entry",
	CodeXrefEntryZero:         "xref entry 0 is not free",
	CodeXrefGen0:              "xref entry generation is not 0",
	CodeObjDef:                "malformed object definition",
	CodeNoSuchXref:            "reference to undefined object",
	CodeGenZero:               "reference generation is not 0",
	CodeDictionary:            "malformed dictionary",
	CodeDictNameKey:           "dictionary key is not a name",
	CodeDictObjstm:            "object streams are not supported",
	CodeDictEOF:               "end of file in dictionary",
	CodeDictValue:             "malformed dictionary value",
	CodeStreamCRLF:            "stream keyword followed by bare CR",
	CodeStreamLinebreak:       "stream keyword not followed by line break",
	CodeStreamLength:          "missing stream /Length",
	CodeStreamLengthInt:       "stream /Length is not an integer",
	CodeStreamEndstream:       "missing endstream",
	CodeObjectEOF:             "end of file in object",
	CodeStream:                "malformed stream",
	CodeObject:                "malformed object",
	CodeMediaboxArray:         "/MediaBox is not an array",
	CodeMediaboxElements:      "/MediaBox must have 4 numbers",
	CodeResources:             "missing /Resources",
	CodeXObject:               "missing /XObject",
	CodeXObjectDict:           "/XObject is not a dictionary",
	CodeXObjectEntry:          "malformed /XObject entry",
	CodeStripRef:              "strip entry is not a reference",
	CodeStripDict:             "strip is not a stream",
	CodeStripMissing:          "page has no strips",
	CodeStripTypeXObject:      "strip /Type is not /XObject",
	CodeStripSubtype:          "strip /Subtype is not /Image",
	CodeStripBitsPerComponent: "invalid strip /BitsPerComponent",
	CodeStripCsBpc:            "unsupported colorspace and bit depth",
	CodeStripHeight:           "invalid strip /Height",
	CodeStripWidth:            "invalid strip /Width",
	CodeStripWidthSame:        "strips differ in width",
	CodeStripFormatSame:       "strips differ in pixel format",
	CodeStripColorspaceSame:   "strips differ in colorspace",
	CodeStripDepthSame:        "strips differ in bit depth",
	CodeStripColorspace:       "missing strip /ColorSpace",
	CodeStripLength:           "invalid strip /Length",
	CodeValidColorspace:       "invalid colorspace",
	CodeCalgrayDict:           "malformed CalGray dictionary",
	CodeGammaNumber:           "/Gamma is not a number",
	CodeGamma22:               "/Gamma is not 2.2",
	CodeCalrgbDict:            "malformed CalRGB dictionary",
	CodeMatrix:                "malformed /Matrix",
	CodeMatrixElement:         "/Matrix element is not a number",
	CodeMatrixTooLong:         "/Matrix has too many elements",
	CodeMatrixTooShort:        "/Matrix has too few elements",
	CodeWhitepoint:            "malformed /WhitePoint",
	CodeBlackpoint:            "malformed /BlackPoint",
	CodeIccProfile:            "malformed ICC profile reference",
	CodeIccProfileRead:        "ICC profile read failed",
	CodeColorspaceArray:       "malformed colorspace array",
	CodeTrailerPrev:           "incremental updates (/Prev) are not supported",
	CodeStripFilter:           "unsupported strip /Filter",
	CodeStripDecode:           "strip decode failed",
}

// String returns a short description of the code
func (c ReadErrorCode) String() string {
	if s, ok := readErrorCodeNames[c]; ok {
		return s
	}
	return fmt.Sprintf("read error %d", int(c))
}

// API misuse errors. They are always returned wrapped in an *Error with
// LevelAPI, so callers should test with errors.Is.
var (
	ErrWriterActive       = errors.New("writer is already active")
	ErrWriterInactive     = errors.New("writer is not active")
	ErrNoPageOpen         = errors.New("no page is open")
	ErrReaderNotOpen      = errors.New("reader is not open")
	ErrNoSuchPage         = errors.New("no such page")
	ErrNoSuchStrip        = errors.New("no such strip")
	ErrInvalidCombination = errors.New("invalid pixel format and compression combination")
)

// Error is a failure of a read or write operation. Offset is the byte
// position at which the problem was detected, or -1 when not applicable.
type Error struct {
	Op     string
	Level  ErrorLevel
	Code   ReadErrorCode
	Offset int64
	Err    error
}

func (e *Error) Error() string {
	msg := "unknown error"
	if e.Err != nil {
		msg = e.Err.Error()
	} else if e.Code != CodeOK {
		msg = e.Code.String()
	}
	if e.Offset >= 0 {
		return fmt.Sprintf("pdfraster.%s: %s (%s at offset %d)", e.Op, msg, e.Level, e.Offset)
	}
	return fmt.Sprintf("pdfraster.%s: %s (%s)", e.Op, msg, e.Level)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// APIError wraps an API misuse sentinel for the named operation.
func APIError(op string, err error) *Error {
	return &Error{Op: op, Level: LevelAPI, Offset: -1, Err: err}
}

// ErrorHandler receives problems found while reading. It is called for every
// report, including the fatal one that makes an operation fail.
type ErrorHandler func(level ErrorLevel, code ReadErrorCode, offset int64, msg string)
