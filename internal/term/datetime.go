package term

import (
	"time"
)

// layout is one accepted date-time pattern. Layouts with encode=false are
// accepted on input but never chosen for output.
type layout struct {
	pattern string
	encode  bool
}

// layouts is ordered from most to least specific.
var layouts = []layout{
	{"2006-01-02T15:04:05-0700", true},
	{time.RFC3339, false},
	{"2006-01-02T15:04:05", true},
	{"2006-01-02T15:04", true},
	{"2006-01-02", true},
	{"2006-01", true},
	{"2006", true},
}

// fractionLayout renders sub-second instants. Every layout with seconds
// accepts the fraction on input.
const fractionLayout = "2006-01-02T15:04:05.999999999-0700"

// Layouts returns the accepted patterns, most specific first.
func Layouts() []string {
	out := make([]string, len(layouts))
	for i, l := range layouts {
		out[i] = l.pattern
	}
	return out
}

// ParseDateTime tries every layout in turn.
func ParseDateTime(s string) (time.Time, error) {
	var lastErr error
	for _, l := range layouts {
		t, err := time.Parse(l.pattern, s)
		if err == nil {
			return t, nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}

// FormatDateTime renders t with the least specific layout that parses back
// to the same instant. A UTC midnight therefore collapses to a bare date,
// and the first day of a year to the bare year. Sub-second instants keep
// their fraction.
func FormatDateTime(t time.Time) string {
	if t.Nanosecond() != 0 {
		return t.Format(fractionLayout)
	}
	for i := len(layouts) - 1; i >= 0; i-- {
		l := layouts[i]
		if !l.encode {
			continue
		}
		s := t.Format(l.pattern)
		back, err := time.Parse(l.pattern, s)
		if err == nil && back.Equal(t) {
			return s
		}
	}
	return t.Format(layouts[0].pattern)
}
