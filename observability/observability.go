// Package observability provides the structured logging hooks used by the
// reader and writer. Components default to NopLogger; NewStdLogger adapts a
// standard library *log.Logger for command line tools and tests.
package observability

import (
	"fmt"
	"log"
	"strings"
)

type Logger interface {
	Debug(msg string, fields ...Field)
	Info(msg string, fields ...Field)
	Warn(msg string, fields ...Field)
	Error(msg string, fields ...Field)
	With(fields ...Field) Logger
}

type Field interface {
	Key() string
	Value() interface{}
}

type stringField struct{ key, val string }

func (f stringField) Key() string        { return f.key }
func (f stringField) Value() interface{} { return f.val }

type intField struct {
	key string
	val int
}

func (f intField) Key() string        { return f.key }
func (f intField) Value() interface{} { return f.val }

type int64Field struct {
	key string
	val int64
}

func (f int64Field) Key() string        { return f.key }
func (f int64Field) Value() interface{} { return f.val }

type float64Field struct {
	key string
	val float64
}

func (f float64Field) Key() string        { return f.key }
func (f float64Field) Value() interface{} { return f.val }

type errorField struct {
	key string
	err error
}

func (f errorField) Key() string        { return f.key }
func (f errorField) Value() interface{} { return f.err }

func String(key, value string) Field          { return stringField{key, value} }
func Int(key string, value int) Field         { return intField{key, value} }
func Int64(key string, value int64) Field     { return int64Field{key, value} }
func Float64(key string, value float64) Field { return float64Field{key, value} }
func Error(key string, err error) Field       { return errorField{key, err} }

type NopLogger struct{}

func (NopLogger) Debug(string, ...Field) {}
func (NopLogger) Info(string, ...Field)  {}
func (NopLogger) Warn(string, ...Field)  {}
func (NopLogger) Error(string, ...Field) {}
func (NopLogger) With(...Field) Logger   { return NopLogger{} }

// OrNop returns l, or NopLogger when l is nil.
func OrNop(l Logger) Logger {
	if l == nil {
		return NopLogger{}
	}
	return l
}

// Level orders log severities for StdLogger filtering.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	default:
		return "ERROR"
	}
}

// StdLogger writes one "LEVEL msg key=value ..." line per entry to a
// *log.Logger. Entries below Min are dropped.
type StdLogger struct {
	out    *log.Logger
	Min    Level
	fields []Field
}

// NewStdLogger returns a StdLogger that writes every level to out.
func NewStdLogger(out *log.Logger) *StdLogger {
	return &StdLogger{out: out}
}

func (s *StdLogger) Debug(msg string, fields ...Field) { s.log(LevelDebug, msg, fields) }
func (s *StdLogger) Info(msg string, fields ...Field)  { s.log(LevelInfo, msg, fields) }
func (s *StdLogger) Warn(msg string, fields ...Field)  { s.log(LevelWarn, msg, fields) }
func (s *StdLogger) Error(msg string, fields ...Field) { s.log(LevelError, msg, fields) }

// With returns a logger that prefixes fields to every entry.
func (s *StdLogger) With(fields ...Field) Logger {
	all := make([]Field, 0, len(s.fields)+len(fields))
	all = append(all, s.fields...)
	all = append(all, fields...)
	return &StdLogger{out: s.out, Min: s.Min, fields: all}
}

func (s *StdLogger) log(level Level, msg string, fields []Field) {
	if level < s.Min || s.out == nil {
		return
	}
	var b strings.Builder
	b.WriteString(level.String())
	b.WriteByte(' ')
	b.WriteString(msg)
	for _, f := range s.fields {
		writeField(&b, f)
	}
	for _, f := range fields {
		writeField(&b, f)
	}
	s.out.Print(b.String())
}

func writeField(b *strings.Builder, f Field) {
	b.WriteByte(' ')
	b.WriteString(f.Key())
	b.WriteByte('=')
	switch v := f.Value().(type) {
	case string:
		if strings.ContainsAny(v, " \t\"=") || v == "" {
			fmt.Fprintf(b, "%q", v)
		} else {
			b.WriteString(v)
		}
	case error:
		if v == nil {
			b.WriteString("<nil>")
		} else {
			fmt.Fprintf(b, "%q", v.Error())
		}
	default:
		fmt.Fprint(b, v)
	}
}
