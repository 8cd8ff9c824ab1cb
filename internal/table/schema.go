package table

import (
	"fmt"

	"github.com/vvka-141/dwca/internal/term"
)

// Schema is the ordered codec list of a table. Position i holds the codec
// whose Index is i.
type Schema struct {
	codecs []*term.Codec
	byName map[string]int
}

func newSchema(codecs []*term.Codec) *Schema {
	s := &Schema{byName: make(map[string]int, 2*len(codecs))}
	for _, c := range codecs {
		s.add(c)
	}
	return s
}

func (s *Schema) add(c *term.Codec) {
	i := len(s.codecs)
	s.codecs = append(s.codecs, c)
	if _, taken := s.byName[c.URI]; !taken {
		s.byName[c.URI] = i
	}
	if _, taken := s.byName[c.Name]; !taken {
		s.byName[c.Name] = i
	}
}

// Len returns the number of columns.
func (s *Schema) Len() int {
	return len(s.codecs)
}

// Codecs returns the codecs in column order. The slice must not be modified.
func (s *Schema) Codecs() []*term.Codec {
	return s.codecs
}

// Codec returns the codec at column i.
func (s *Schema) Codec(i int) *term.Codec {
	return s.codecs[i]
}

// Index returns the column of a term, looked up by URI or short name.
func (s *Schema) Index(name string) (int, bool) {
	i, ok := s.byName[name]
	return i, ok
}

// Names returns the short column names in order.
func (s *Schema) Names() []string {
	names := make([]string, len(s.codecs))
	for i, c := range s.codecs {
		names[i] = c.Name
	}
	return names
}

// Entry is one row: an ordered mapping from column name to typed value.
// Entries are views into their table and are only valid until the table is
// reshaped or closed. Entries streamed from a lazy table are copies and
// cannot be changed.
type Entry struct {
	schema   *Schema
	values   []any
	streamed bool
}

// Len returns the number of values.
func (e Entry) Len() int {
	return len(e.values)
}

// Value returns the value at column i.
func (e Entry) Value(i int) any {
	return e.values[i]
}

// Get returns the value of a column by URI or short name, or nil.
func (e Entry) Get(name string) any {
	i, ok := e.schema.Index(name)
	if !ok {
		return nil
	}
	return e.values[i]
}

// Text returns the cell text of a column, as Write would emit it.
func (e Entry) Text(name string) string {
	i, ok := e.schema.Index(name)
	if !ok {
		return ""
	}
	s, err := e.schema.codecs[i].Unformat(e.values[i])
	if err != nil {
		return fmt.Sprint(e.values[i])
	}
	return s
}

// Set replaces the value of a column. The value is checked by encoding it.
// Entries of lazy tables return ErrReadOnlyEntry.
func (e Entry) Set(name string, v any) error {
	if e.streamed {
		return fmt.Errorf("column %q: %w", name, ErrReadOnlyEntry)
	}
	i, ok := e.schema.Index(name)
	if !ok {
		return fmt.Errorf("no column %q", name)
	}
	if _, err := e.schema.codecs[i].Unformat(v); err != nil {
		return err
	}
	e.values[i] = v
	return nil
}

// Map returns a copy of the entry keyed by short column name.
func (e Entry) Map() map[string]any {
	m := make(map[string]any, len(e.values))
	for i, c := range e.schema.codecs {
		m[c.Name] = e.values[i]
	}
	return m
}
