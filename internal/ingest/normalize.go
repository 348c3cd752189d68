package ingest

import (
	"strconv"
	"strings"
	"time"
)

// dateFormats are tried in order when parsing a report date.
var dateFormats = []string{
	"2006-01-02",
	"2006/01/02",
	"01/02/2006",
	"02.01.2006",
	"Jan 2, 2006",
	"2 Jan 2006",
	"2006-01-02 15:04:05",
	time.RFC3339,
}

const dayFormat = "2006-01-02"

// ParseMoney converts a raw cell into a float. Currency symbols, thousands
// separators and surrounding whitespace are stripped, parenthesized values
// are negative, and a trailing comma group of at most two digits is read as
// a decimal comma. An empty cell is a clean zero; anything unparseable
// returns (0, false) so the caller can record a warning.
func ParseMoney(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, true
	}

	negative := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		negative = true
		s = s[1 : len(s)-1]
	}

	s = strings.Map(func(ch rune) rune {
		switch ch {
		case '$', '€', '£', '¥', '%', ' ', ' ':
			return -1
		}
		return ch
	}, s)

	if strings.Contains(s, ",") {
		if !strings.Contains(s, ".") && decimalComma(s) {
			s = strings.Replace(s, ",", ".", 1)
		} else {
			s = strings.ReplaceAll(s, ",", "")
		}
	}

	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	if negative {
		v = -v
	}
	return v, true
}

// decimalComma reports whether the single comma in s reads as a decimal
// separator: last group of one or two digits, e.g. "12,50".
func decimalComma(s string) bool {
	idx := strings.LastIndex(s, ",")
	if idx != strings.Index(s, ",") {
		return false
	}
	frac := len(s) - idx - 1
	return frac == 1 || frac == 2
}

// ParseCount converts a raw cell into a whole number with the same
// tolerance as ParseMoney, truncating any fractional part.
func ParseCount(s string) (int, bool) {
	v, ok := ParseMoney(s)
	return int(v), ok
}

// ParseDate converts a raw cell into a YYYY-MM-DD day string, trying each
// known format in order. Unparseable input falls back to the given day and
// returns false so the caller always surfaces a warning; the fallback never
// happens silently.
func ParseDate(s string, now time.Time) (string, bool) {
	s = strings.TrimSpace(s)
	if s != "" {
		for _, format := range dateFormats {
			if d, err := time.Parse(format, s); err == nil {
				return d.Format(dayFormat), true
			}
		}
	}
	return now.Format(dayFormat), false
}
