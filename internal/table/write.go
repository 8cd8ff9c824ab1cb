package table

import (
	"fmt"
	"io"
	"iter"
	"os"

	"github.com/vvka-141/dwca/internal/dialect"
	"github.com/vvka-141/dwca/pkg/dwca"
)

// Write encodes the table in its dialect: header filler lines first (the
// column names, then empty lines up to IgnoreHeaderLines), then one line per
// row. Write is the inverse of Read.
func (t *Table) Write(w io.Writer) error {
	if t.closed {
		return dwca.ErrClosed
	}
	enc, err := dialect.Encode(w, t.dialect.Encoding)
	if err != nil {
		return err
	}
	if err := t.writeRows(enc, t.All()); err != nil {
		return err
	}
	return enc.Close()
}

// writeRows writes header filler and rows to w, which expects UTF-8.
func (t *Table) writeRows(w io.Writer, rows iter.Seq2[Entry, error]) error {
	dw := dialect.NewWriter(w, t.dialect)
	for i := 0; i < t.dialect.IgnoreHeaderLines; i++ {
		var err error
		if i == 0 {
			err = dw.Write(t.schema.Names())
		} else {
			err = dw.WriteEmpty()
		}
		if err != nil {
			return err
		}
	}
	cells := make([]string, t.schema.Len())
	for e, err := range rows {
		if err != nil {
			return err
		}
		for i, c := range t.schema.codecs {
			var v any
			if i < e.Len() {
				v = e.Value(i)
			} else {
				v = c.DefaultValue()
			}
			s, err := c.Unformat(v)
			if err != nil {
				return err
			}
			if t.dialect.FieldsEnclosedBy == "" && dialect.NeedsEnclosure(s, t.dialect) {
				return fmt.Errorf("%s: value %q of %s contains a terminator and the file has no enclosure", t.Filename, s, c.Name)
			}
			cells[i] = s
		}
		if err := dw.Write(cells); err != nil {
			return err
		}
	}
	return dw.Flush()
}

// rewrite replaces the backing file of a lazy table with the rows in rows.
// The new file is written in the table's encoding.
func (t *Table) rewrite(rows iter.Seq2[Entry, error]) error {
	f, err := os.CreateTemp(t.tempDir, "dwca-*.txt")
	if err != nil {
		return fmt.Errorf("failed to create backing file: %w", err)
	}
	fail := func(err error) error {
		f.Close()
		os.Remove(f.Name())
		return err
	}
	enc, err := dialect.Encode(f, t.dialect.Encoding)
	if err != nil {
		return fail(err)
	}
	if err := t.writeRows(enc, rows); err != nil {
		return fail(err)
	}
	if err := enc.Close(); err != nil {
		return fail(err)
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return err
	}
	if err := t.dropBacking(); err != nil {
		t.logger.Warn("%v", err)
	}
	t.lazy = f.Name()
	t.count = -1
	return nil
}
