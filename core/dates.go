package core

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// FormatDate renders t as a PDF date string, D:YYYYMMDDHHmmSS followed by
// Z for UTC or +HH'mm' / -HH'mm' for other zones.
func FormatDate(t time.Time) string {
	_, offset := t.Zone()
	if offset == 0 {
		return "D:" + t.Format("20060102150405") + "Z"
	}
	sign := '+'
	if offset < 0 {
		sign = '-'
		offset = -offset
	}
	return fmt.Sprintf("D:%s%c%02d'%02d'", t.Format("20060102150405"), sign, offset/3600, (offset%3600)/60)
}

// ParseDate parses a PDF date string. Everything after the year is
// optional; missing fields default to the start of the period and a
// missing zone means UTC.
func ParseDate(s string) (time.Time, error) {
	orig := s
	s = strings.TrimPrefix(s, "D:")
	if len(s) < 4 {
		return time.Time{}, fmt.Errorf("invalid PDF date %q", orig)
	}

	fields := []int{0, 1, 1, 0, 0, 0}
	widths := []int{4, 2, 2, 2, 2, 2}
	pos := 0
	for i, w := range widths {
		if pos+w > len(s) || !isDigits(s[pos:pos+w]) {
			if i == 0 {
				return time.Time{}, fmt.Errorf("invalid PDF date %q", orig)
			}
			break
		}
		fields[i], _ = strconv.Atoi(s[pos : pos+w])
		pos += w
	}

	loc := time.UTC
	if pos < len(s) {
		switch s[pos] {
		case 'Z':
		case '+', '-':
			rest := strings.ReplaceAll(s[pos+1:], "'", "")
			var hh, mm int
			if len(rest) >= 2 && isDigits(rest[:2]) {
				hh, _ = strconv.Atoi(rest[:2])
			} else {
				return time.Time{}, fmt.Errorf("invalid zone in PDF date %q", orig)
			}
			if len(rest) >= 4 && isDigits(rest[2:4]) {
				mm, _ = strconv.Atoi(rest[2:4])
			}
			offset := hh*3600 + mm*60
			if s[pos] == '-' {
				offset = -offset
			}
			loc = time.FixedZone("", offset)
		default:
			return time.Time{}, fmt.Errorf("invalid zone in PDF date %q", orig)
		}
	}

	return time.Date(fields[0], time.Month(fields[1]), fields[2], fields[3], fields[4], fields[5], 0, loc), nil
}

func isDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if !isDigit(s[i]) {
			return false
		}
	}
	return true
}
