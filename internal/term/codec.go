package term

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/vvka-141/dwca/pkg/dwca"
)

// Codec describes one column of a data file and converts its cells.
type Codec struct {
	URI        string
	Name       string
	Index      int
	Default    string
	Vocabulary string
	Type       TypeTag

	// values is the controlled value set when Type is Vocabulary.
	values []string
}

// NewCodec builds a codec for a term URI.
func NewCodec(uri string, index int, t TypeTag) *Codec {
	return &Codec{URI: uri, Name: ShortName(uri), Index: index, Type: t}
}

// PassThrough builds the generic String codec used for unknown terms and
// synthesized key columns.
func PassThrough(name string, index int) *Codec {
	return &Codec{URI: name, Name: ShortName(name), Index: index, Type: String}
}

// WithValues returns a copy of c restricted to a controlled value set.
func (c *Codec) WithValues(values []string) *Codec {
	cp := *c
	cp.values = append([]string(nil), values...)
	return &cp
}

// Values returns the controlled value set, if any.
func (c *Codec) Values() []string {
	return c.values
}

// Clone returns an independent copy of c.
func (c *Codec) Clone() *Codec {
	cp := *c
	cp.values = append([]string(nil), c.values...)
	return &cp
}

// ShortName returns the last path or fragment segment of a term URI.
func ShortName(uri string) string {
	if i := strings.LastIndexAny(uri, "/#"); i >= 0 && i < len(uri)-1 {
		return uri[i+1:]
	}
	return uri
}

// Format converts one raw cell into the declared type. An empty cell yields
// the formatted default, or nil when there is none.
func (c *Codec) Format(raw string) (any, error) {
	if raw == "" {
		if c.Default == "" {
			return nil, nil
		}
		raw = c.Default
	}
	switch c.Type {
	case String:
		return raw, nil
	case Integer:
		v, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
		if err != nil {
			return nil, c.fail(raw, err)
		}
		return v, nil
	case Float:
		v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
		if err != nil {
			return nil, c.fail(raw, err)
		}
		return v, nil
	case Decimal:
		v, err := decimal.NewFromString(strings.TrimSpace(raw))
		if err != nil {
			return nil, c.fail(raw, err)
		}
		return v, nil
	case Boolean:
		return c.formatBool(raw)
	case StringList:
		return strings.Split(raw, dwca.ListSeparator), nil
	case StringPair:
		parts := strings.Split(raw, dwca.PairSeparator)
		if len(parts) != 2 {
			return nil, c.fail(raw, fmt.Errorf("expected 2 parts separated by %q, got %d", dwca.PairSeparator, len(parts)))
		}
		return Pair{parts[0], parts[1]}, nil
	case DateTime:
		t, err := ParseDateTime(strings.TrimSpace(raw))
		if err != nil {
			return nil, &FormatError{Term: c.URI, Value: raw, Type: c.Type, Layouts: Layouts()}
		}
		return t, nil
	case DateTimeInterval:
		return c.formatInterval(raw)
	case Vocabulary:
		for _, v := range c.values {
			if strings.EqualFold(v, strings.TrimSpace(raw)) {
				return v, nil
			}
		}
		return nil, c.fail(raw, fmt.Errorf("not in vocabulary %s", c.Vocabulary))
	default:
		return nil, unknownType(c.URI, c.Type)
	}
}

func (c *Codec) formatBool(raw string) (any, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "true", "t", "yes", "y", "1":
		return true, nil
	case "false", "f", "no", "n", "0":
		return false, nil
	}
	return nil, c.fail(raw, fmt.Errorf("not a boolean"))
}

func (c *Codec) formatInterval(raw string) (any, error) {
	start, end, ok := strings.Cut(raw, dwca.PairSeparator)
	if !ok {
		t, err := ParseDateTime(strings.TrimSpace(raw))
		if err != nil {
			return nil, &FormatError{Term: c.URI, Value: raw, Type: c.Type, Layouts: Layouts()}
		}
		return Interval{Start: t, End: t}, nil
	}
	s, err := ParseDateTime(strings.TrimSpace(start))
	if err != nil {
		return nil, &FormatError{Term: c.URI, Value: raw, Type: c.Type, Layouts: Layouts()}
	}
	e, err := ParseDateTime(strings.TrimSpace(end))
	if err != nil {
		return nil, &FormatError{Term: c.URI, Value: raw, Type: c.Type, Layouts: Layouts()}
	}
	return Interval{Start: s, End: e}, nil
}

func (c *Codec) fail(raw string, err error) error {
	return &FormatError{Term: c.URI, Value: raw, Type: c.Type, Err: err}
}

// Unformat renders a typed value back to cell text. It is the inverse of
// Format for every value Format produces.
func (c *Codec) Unformat(v any) (string, error) {
	if v == nil {
		return "", nil
	}
	switch c.Type {
	case String:
		s, ok := v.(string)
		if !ok {
			return fmt.Sprint(v), nil
		}
		return s, nil
	case Integer:
		switch n := v.(type) {
		case int64:
			return strconv.FormatInt(n, 10), nil
		case int:
			return strconv.Itoa(n), nil
		}
	case Float:
		if f, ok := v.(float64); ok {
			return strconv.FormatFloat(f, 'f', -1, 64), nil
		}
	case Decimal:
		if d, ok := v.(decimal.Decimal); ok {
			if d.Exponent() < 0 {
				return d.StringFixed(-d.Exponent()), nil
			}
			return d.String(), nil
		}
	case Boolean:
		if b, ok := v.(bool); ok {
			return strconv.FormatBool(b), nil
		}
	case StringList:
		if l, ok := v.([]string); ok {
			return strings.Join(l, dwca.ListSeparator), nil
		}
	case StringPair:
		if p, ok := v.(Pair); ok {
			return p[0] + dwca.PairSeparator + p[1], nil
		}
	case DateTime:
		if t, ok := v.(time.Time); ok {
			return FormatDateTime(t), nil
		}
	case DateTimeInterval:
		if i, ok := v.(Interval); ok {
			if i.Start.Equal(i.End) {
				return FormatDateTime(i.Start), nil
			}
			return FormatDateTime(i.Start) + dwca.PairSeparator + FormatDateTime(i.End), nil
		}
	case Vocabulary:
		if s, ok := v.(string); ok {
			return strings.ToLower(s), nil
		}
	default:
		return "", unknownType(c.URI, c.Type)
	}
	return "", &FormatError{Term: c.URI, Value: fmt.Sprint(v), Type: c.Type, Err: fmt.Errorf("unexpected value type %T", v)}
}

// DefaultValue returns the formatted default, or nil.
func (c *Codec) DefaultValue() any {
	if c.Default == "" {
		return nil
	}
	v, err := c.Format(c.Default)
	if err != nil {
		return nil
	}
	return v
}
