package table

import (
	"fmt"
	"iter"
	"slices"

	"github.com/vvka-141/dwca/internal/term"
	"github.com/vvka-141/dwca/pkg/dwca"
)

// KeyFilter is the optional bulk capability used to filter rows by key.
// Mask reports, for each value, whether it is one of allowed.
type KeyFilter interface {
	Mask(values, allowed []string) ([]bool, error)
}

// AddField appends a column. A codec whose index is not the next free slot
// is renumbered with a warning. Existing rows gain the codec's default.
func (t *Table) AddField(c *term.Codec) error {
	if t.closed {
		return dwca.ErrClosed
	}
	if i, ok := t.schema.Index(c.URI); ok && t.schema.Codec(i).URI == c.URI {
		return fmt.Errorf("%s already has a column for %s", t.RowType, c.URI)
	}
	c = c.Clone()
	if next := t.schema.Len(); c.Index != next {
		t.logger.Warn("Field %s declared at index %d, renumbered to %d", c.URI, c.Index, next)
		c.Index = next
	}
	t.schema.add(c)
	// Lazy rows pick the default up when streamed, since their records are short.
	def := c.DefaultValue()
	for i, row := range t.rows {
		t.rows[i] = append(row, def)
	}
	return nil
}

// Append adds a row of typed values in column order. Missing trailing values
// take the column default.
func (t *Table) Append(values ...any) error {
	if t.closed {
		return dwca.ErrClosed
	}
	if t.Lazy() {
		return fmt.Errorf("cannot append to lazy table %s", t.Filename)
	}
	if len(values) > t.schema.Len() {
		return fmt.Errorf("%d values for %d columns", len(values), t.schema.Len())
	}
	row := make([]any, t.schema.Len())
	for i, c := range t.schema.codecs {
		if i < len(values) {
			if _, err := c.Unformat(values[i]); err != nil {
				return err
			}
			row[i] = values[i]
			continue
		}
		row[i] = c.DefaultValue()
	}
	t.rows = append(t.rows, row)
	return nil
}

// AppendText adds a row given as cell text.
func (t *Table) AppendText(cells ...string) error {
	values, err := t.formatRecord(cells)
	if err != nil {
		return err
	}
	return t.Append(values...)
}

// Filter keeps the rows for which keep returns true. Lazy tables rewrite
// their backing file.
func (t *Table) Filter(keep func(Entry) bool) error {
	if t.closed {
		return dwca.ErrClosed
	}
	if t.Lazy() {
		return t.rewrite(func(yield func(Entry, error) bool) {
			for e, err := range t.All() {
				if err != nil {
					yield(Entry{}, err)
					return
				}
				if keep(e) && !yield(e, nil) {
					return
				}
			}
		})
	}
	kept := t.rows[:0]
	for _, row := range t.rows {
		if keep(Entry{schema: t.schema, values: row}) {
			kept = append(kept, row)
		}
	}
	clear(t.rows[len(kept):])
	t.rows = kept
	return nil
}

// KeepKeys keeps the rows whose column text is one of allowed. With a nil
// KeyFilter membership is tested row by row.
func (t *Table) KeepKeys(column string, allowed []string, kf KeyFilter) error {
	if kf == nil {
		set := make(map[string]struct{}, len(allowed))
		for _, k := range allowed {
			set[k] = struct{}{}
		}
		return t.Filter(func(e Entry) bool {
			_, ok := set[e.Text(column)]
			return ok
		})
	}
	values, err := t.Keys(column)
	if err != nil {
		return err
	}
	mask, err := kf.Mask(values, allowed)
	if err != nil {
		return fmt.Errorf("bulk key filter failed on %s: %w", t.Filename, err)
	}
	if len(mask) != len(values) {
		return fmt.Errorf("bulk key filter returned %d flags for %d rows", len(mask), len(values))
	}
	i := 0
	return t.Filter(func(Entry) bool {
		keep := mask[i]
		i++
		return keep
	})
}

// Merge returns a new table holding the rows of t followed by those of
// other. Columns only other has are appended; rows lacking a column get its
// default. The result is lazy when either input is.
func (t *Table) Merge(other *Table) (*Table, error) {
	if t.closed || other.closed {
		return nil, dwca.ErrClosed
	}
	if t.RowType != other.RowType {
		return nil, fmt.Errorf("cannot merge %s into %s: %w", other.RowType, t.RowType, dwca.ErrRowTypeMismatch)
	}
	merged := t.derive()

	// position in merged of each column of other
	mapping := make([]int, other.schema.Len())
	for i, c := range other.schema.codecs {
		if i == other.KeyIndex {
			mapping[i] = t.KeyIndex
			continue
		}
		if j, ok := merged.schema.byName[c.URI]; ok && merged.schema.codecs[j].URI == c.URI {
			mapping[i] = j
			continue
		}
		add := c.Clone()
		add.Index = merged.schema.Len()
		merged.schema.add(add)
		mapping[i] = add.Index
	}

	n := merged.schema.Len()
	widen := func(values []any, positions []int) []any {
		row := make([]any, n)
		filled := make([]bool, n)
		for i, v := range values {
			row[positions[i]] = v
			filled[positions[i]] = true
		}
		for i, ok := range filled {
			if !ok {
				row[i] = merged.schema.codecs[i].DefaultValue()
			}
		}
		return row
	}
	identity := make([]int, t.schema.Len())
	for i := range identity {
		identity[i] = i
	}
	var rows iter.Seq2[Entry, error] = func(yield func(Entry, error) bool) {
		for _, src := range []struct {
			table     *Table
			positions []int
		}{{t, identity}, {other, mapping}} {
			for e, err := range src.table.All() {
				if err != nil {
					yield(Entry{}, err)
					return
				}
				if !yield(Entry{schema: merged.schema, values: widen(e.values, src.positions), streamed: true}, nil) {
					return
				}
			}
		}
	}

	if t.Lazy() || other.Lazy() {
		if err := merged.rewrite(rows); err != nil {
			return nil, err
		}
		return merged, nil
	}
	for e, err := range rows {
		if err != nil {
			return nil, err
		}
		merged.rows = append(merged.rows, e.values)
	}
	return merged, nil
}

// derive returns an empty table with a copy of t's schema and settings.
func (t *Table) derive() *Table {
	d := &Table{
		RowType:   t.RowType,
		Filename:  t.Filename,
		Core:      t.Core,
		KeyIndex:  t.KeyIndex,
		dialect:   t.dialect,
		synthetic: t.synthetic,
		count:     -1,
		tempDir:   t.tempDir,
		registry:  t.registry,
		logger:    t.logger,
		primary:   t.primary,
	}
	codecs := make([]*term.Codec, 0, t.schema.Len())
	for _, c := range t.schema.codecs {
		codecs = append(codecs, c.Clone())
	}
	d.schema = newSchema(codecs)
	return d
}

// Clone returns an independent copy of t. A lazy table gets its own backing
// file.
func (t *Table) Clone() (*Table, error) {
	if t.closed {
		return nil, dwca.ErrClosed
	}
	c := t.derive()
	if t.Lazy() {
		if err := c.rewrite(t.All()); err != nil {
			return nil, err
		}
		return c, nil
	}
	c.rows = make([][]any, len(t.rows))
	for i, row := range t.rows {
		c.rows[i] = slices.Clone(row)
	}
	return c, nil
}

// Materialize loads the rows of a lazy table into memory and removes its
// backing file.
func (t *Table) Materialize() error {
	if !t.Lazy() {
		return nil
	}
	var rows [][]any
	if err := t.stream(func(values []any) bool {
		rows = append(rows, values)
		return true
	}); err != nil {
		return err
	}
	t.rows = rows
	return t.dropBacking()
}
