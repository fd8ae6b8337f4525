package util

import (
	"math"
	"strconv"
	"strings"
	"time"
)

// TrimCell trims surrounding whitespace, including non-breaking spaces,
// from scraped cell text. Inner whitespace is left alone so values stay
// byte-identical across scrapes.
func TrimCell(s string) string {
	return strings.TrimFunc(s, func(r rune) bool {
		return r == '\u00a0' || r == ' ' || r == '\t' || r == '\n' || r == '\r' || r == '\f' || r == '\v'
	})
}

// CleanText collapses all whitespace runs to one space. Used for lookup
// keys, never for persisted values.
func CleanText(s string) string {
	s = strings.ReplaceAll(s, "\u00a0", " ")
	return strings.Join(strings.Fields(s), " ")
}

// ParseWorkers is the single coercion of the "Number of Workers" column.
// It accepts thousands separators and surrounding text noise such as
// "approx. 1,200"; ok is false when no number can be read.
func ParseWorkers(s string) (n float64, ok bool) {
	s = CleanText(s)
	if s == "" {
		return 0, false
	}

	var b strings.Builder
	seenDigit := false
scan:
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
			b.WriteRune(r)
			seenDigit = true
		case r == '.' && seenDigit:
			b.WriteRune(r)
		case r == ',' && seenDigit:
			// thousands separator
		case seenDigit:
			// stop at the first non-numeric character after the number
			break scan
		}
	}
	if !seenDigit {
		return 0, false
	}
	v, err := strconv.ParseFloat(strings.TrimSuffix(b.String(), "."), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

var noticeDateLayouts = []string{
	"01/02/2006",
	"1/2/2006",
	"2006-01-02",
	"January 2, 2006",
	"Jan 2, 2006",
	"01/02/06",
	"1/2/06",
}

// ParseNoticeDate parses the "WARN Received Date" column.
func ParseNoticeDate(s string) (time.Time, bool) {
	s = CleanText(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range noticeDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
