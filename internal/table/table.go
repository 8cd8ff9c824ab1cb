package table

import (
	"errors"
	"fmt"
	"io"
	"iter"
	"os"
	"slices"
	"sort"

	"github.com/vvka-141/dwca/internal/dialect"
	"github.com/vvka-141/dwca/internal/logging"
	"github.com/vvka-141/dwca/internal/term"
	"github.com/vvka-141/dwca/pkg/dwca"
)

// Field is one declared column of a Descriptor.
type Field struct {
	Index      int
	Term       string
	Default    string
	Vocabulary string
}

// Descriptor is the definitional data a table is built from.
type Descriptor struct {
	RowType  string
	Filename string
	Core     bool
	KeyIndex int
	Dialect  dialect.Dialect
	Fields   []Field
}

// Option configures a Table.
type Option func(*Table)

// WithRegistry sets the term registry. The default is term.DefaultRegistry().
func WithRegistry(r *term.Registry) Option {
	return func(t *Table) { t.registry = r }
}

// WithLogger sets the logger warnings go to.
func WithLogger(l dwca.Logger) Option {
	return func(t *Table) { t.logger = l }
}

// WithTempDir sets the directory lazy tables keep their backing file in.
func WithTempDir(dir string) Option {
	return func(t *Table) { t.tempDir = dir }
}

// Reference names the primary table column an extension's key points at.
type Reference struct {
	Table  string
	Column string
}

// Table is a row table: one data file governed by a dialect and a schema.
type Table struct {
	RowType  string
	Filename string
	Core     bool
	KeyIndex int

	dialect   dialect.Dialect
	schema    *Schema
	synthetic int // column index of a synthesized key codec, or -1

	rows    [][]any
	lazy    string // backing file path when lazy
	count   int    // cached lazy row count, -1 when unknown
	tempDir string
	closed  bool

	registry *term.Registry
	logger   dwca.Logger
	primary  *Reference
}

// New builds a table from a descriptor. Each field is resolved through the
// registry; unknown terms degrade to pass-through string codecs with a
// warning. When the key index is not a declared field a pass-through codec
// named id (core) or coreid (extension) is synthesized. Column indices must
// form exactly {0..n-1}.
func New(desc Descriptor, opts ...Option) (*Table, error) {
	t := &Table{
		RowType:   desc.RowType,
		Filename:  desc.Filename,
		Core:      desc.Core,
		KeyIndex:  desc.KeyIndex,
		dialect:   desc.Dialect,
		synthetic: -1,
		count:     -1,
	}
	for _, opt := range opts {
		opt(t)
	}
	if t.registry == nil {
		t.registry = term.DefaultRegistry()
	}
	if t.logger == nil {
		t.logger = logging.NewNullLogger()
	}
	if t.dialect == (dialect.Dialect{}) {
		t.dialect = dialect.Default()
	}
	if err := t.dialect.Validate(); err != nil {
		return nil, &StructuralError{RowType: t.RowType, Message: err.Error()}
	}
	if desc.KeyIndex < 0 {
		return nil, &StructuralError{RowType: t.RowType, Message: fmt.Sprintf("key index %d is negative", desc.KeyIndex)}
	}
	if _, ok := t.registry.RowType(t.RowType); !ok {
		t.logger.Warn("Unknown row type %s, using a generic table", t.RowType)
	}

	codecs := make([]*term.Codec, 0, len(desc.Fields)+1)
	for _, f := range desc.Fields {
		c, ok := t.registry.Codec(t.RowType, f.Term, f.Index, f.Vocabulary)
		if !ok {
			t.logger.Warn("Unknown term %s in %s, reading it as text", f.Term, t.RowType)
		}
		if f.Default != "" {
			c.Default = f.Default
		}
		codecs = append(codecs, c)
	}
	if !slices.ContainsFunc(codecs, func(c *term.Codec) bool { return c.Index == desc.KeyIndex }) {
		name := dwca.CoreIDColumn
		if desc.Core {
			name = dwca.IDColumn
		}
		codecs = append(codecs, term.PassThrough(name, desc.KeyIndex))
		t.synthetic = desc.KeyIndex
	}

	sort.SliceStable(codecs, func(i, j int) bool { return codecs[i].Index < codecs[j].Index })
	for i, c := range codecs {
		if c.Index == i {
			continue
		}
		if i > 0 && codecs[i-1].Index == c.Index {
			return nil, &StructuralError{
				RowType: t.RowType,
				Message: fmt.Sprintf("index %d is declared by both %s and %s", c.Index, codecs[i-1].URI, c.URI),
			}
		}
		return nil, &StructuralError{
			RowType: t.RowType,
			Message: fmt.Sprintf("index %d has no field (next declared index is %d)", i, c.Index),
			Hint:    "Field indices must be contiguous from 0.",
		}
	}
	t.schema = newSchema(codecs)
	return t, nil
}

// Schema returns the table's schema.
func (t *Table) Schema() *Schema {
	return t.schema
}

// Dialect returns the text layout of the data file.
func (t *Table) Dialect() dialect.Dialect {
	return t.dialect
}

// Registry returns the registry the table resolves terms with.
func (t *Table) Registry() *term.Registry {
	return t.registry
}

// Lazy reports whether rows are streamed from a backing file.
func (t *Table) Lazy() bool {
	return t.lazy != ""
}

// KeyColumn returns the name of the key column.
func (t *Table) KeyColumn() string {
	return t.schema.Codec(t.KeyIndex).Name
}

// Descriptor returns the definitional data of the table. A synthesized key
// codec is not listed as a field.
func (t *Table) Descriptor() Descriptor {
	d := Descriptor{
		RowType:  t.RowType,
		Filename: t.Filename,
		Core:     t.Core,
		KeyIndex: t.KeyIndex,
		Dialect:  t.dialect,
	}
	for i, c := range t.schema.codecs {
		if i == t.synthetic {
			continue
		}
		d.Fields = append(d.Fields, Field{Index: c.Index, Term: c.URI, Default: c.Default, Vocabulary: c.Vocabulary})
	}
	return d
}

// Read materializes every row of r, replacing any rows already held.
func (t *Table) Read(r io.Reader) error {
	if t.closed {
		return dwca.ErrClosed
	}
	var rows [][]any
	err := t.scan(r, func(values []any) bool {
		rows = append(rows, values)
		return true
	})
	if err != nil {
		return err
	}
	t.dropBacking()
	t.rows = rows
	return nil
}

// ReadLazy copies r into a temporary file and streams rows from it on
// demand. The file is removed by Close.
func (t *Table) ReadLazy(r io.Reader) error {
	if t.closed {
		return dwca.ErrClosed
	}
	f, err := os.CreateTemp(t.tempDir, "dwca-*.txt")
	if err != nil {
		return fmt.Errorf("failed to create backing file: %w", err)
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(f.Name())
		return fmt.Errorf("failed to copy %s to backing file: %w", t.Filename, err)
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return err
	}
	t.logger.Warn("Lazy table %s keeps its rows in temporary file %s until closed", t.Filename, f.Name())
	t.dropBacking()
	t.rows = nil
	t.lazy = f.Name()
	t.count = -1
	return nil
}

// scan decodes r in the table's dialect and hands each formatted row to fn.
func (t *Table) scan(r io.Reader, fn func(values []any) bool) error {
	dec, err := dialect.Decode(r, t.dialect.Encoding)
	if err != nil {
		return err
	}
	s := dialect.NewScanner(dec, t.dialect)
	s.KeepEmpty = t.schema.Len() == 1
	if err := s.Skip(t.dialect.IgnoreHeaderLines); err != nil {
		return fmt.Errorf("failed to skip header of %s: %w", t.Filename, err)
	}
	for s.Scan() {
		values, err := t.formatRecord(s.Record())
		if err != nil {
			return &RowError{File: t.Filename, Row: s.Line(), Err: err}
		}
		if !fn(values) {
			return nil
		}
	}
	if err := s.Err(); err != nil {
		return fmt.Errorf("failed to read %s: %w", t.Filename, err)
	}
	return nil
}

// formatRecord converts cells to values. Missing trailing cells take the
// codec default; extra cells must be empty.
func (t *Table) formatRecord(cells []string) ([]any, error) {
	n := t.schema.Len()
	for i := n; i < len(cells); i++ {
		if cells[i] != "" {
			return nil, fmt.Errorf("%d cells for %d columns", len(cells), n)
		}
	}
	values := make([]any, n)
	for i, c := range t.schema.codecs {
		raw := ""
		if i < len(cells) {
			raw = cells[i]
		}
		v, err := c.Format(raw)
		if err != nil {
			return nil, err
		}
		values[i] = v
	}
	return values, nil
}

// All iterates over the rows. For lazy tables each call streams the backing
// file and the entries are read-only copies; a read error is yielded once and
// ends the iteration.
func (t *Table) All() iter.Seq2[Entry, error] {
	return func(yield func(Entry, error) bool) {
		if t.closed {
			yield(Entry{}, dwca.ErrClosed)
			return
		}
		if !t.Lazy() {
			for _, row := range t.rows {
				if !yield(Entry{schema: t.schema, values: row}, nil) {
					return
				}
			}
			return
		}
		stopped := false
		err := t.stream(func(values []any) bool {
			if !yield(Entry{schema: t.schema, values: values, streamed: true}, nil) {
				stopped = true
				return false
			}
			return true
		})
		if err != nil && !stopped {
			yield(Entry{}, err)
		}
	}
}

func (t *Table) stream(fn func(values []any) bool) error {
	f, err := os.Open(t.lazy)
	if err != nil {
		return fmt.Errorf("failed to open backing file of %s: %w", t.Filename, err)
	}
	defer f.Close()
	return t.scan(f, fn)
}

// Entries materializes every row.
func (t *Table) Entries() ([]Entry, error) {
	var out []Entry
	for e, err := range t.All() {
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}

// Len returns the number of rows. Lazy tables count by streaming once.
func (t *Table) Len() (int, error) {
	if t.closed {
		return 0, dwca.ErrClosed
	}
	if !t.Lazy() {
		return len(t.rows), nil
	}
	if t.count >= 0 {
		return t.count, nil
	}
	n := 0
	if err := t.stream(func([]any) bool { n++; return true }); err != nil {
		return 0, err
	}
	t.count = n
	return n, nil
}

// Keys returns the cell text of a column for every row, in order.
func (t *Table) Keys(column string) ([]string, error) {
	if _, ok := t.schema.Index(column); !ok {
		return nil, fmt.Errorf("%s has no column %q", t.RowType, column)
	}
	var keys []string
	for e, err := range t.All() {
		if err != nil {
			return nil, err
		}
		keys = append(keys, e.Text(column))
	}
	return keys, nil
}

// Close releases the rows and removes any backing file. It is idempotent.
func (t *Table) Close() error {
	if t.closed {
		return nil
	}
	t.closed = true
	t.rows = nil
	return t.dropBacking()
}

func (t *Table) dropBacking() error {
	if t.lazy == "" {
		return nil
	}
	path := t.lazy
	t.lazy = ""
	t.count = -1
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove backing file %s: %w", path, err)
	}
	return nil
}
