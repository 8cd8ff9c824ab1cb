package dialect

import (
	"bufio"
	"io"
	"strings"
)

// Writer writes records laid out in a Dialect.
type Writer struct {
	w *bufio.Writer
	d Dialect
}

// NewWriter creates a Writer over w. Call Flush when done.
func NewWriter(w io.Writer, d Dialect) *Writer {
	return &Writer{w: bufio.NewWriter(w), d: d}
}

// Write writes one record followed by the line terminator.
func (w *Writer) Write(record []string) error {
	for i, cell := range record {
		if i > 0 {
			if _, err := w.w.WriteString(w.d.FieldsTerminatedBy); err != nil {
				return err
			}
		}
		if _, err := w.w.WriteString(w.quote(cell)); err != nil {
			return err
		}
	}
	_, err := w.w.WriteString(w.d.LinesTerminatedBy)
	return err
}

// WriteEmpty writes an empty line, used as header filler.
func (w *Writer) WriteEmpty() error {
	_, err := w.w.WriteString(w.d.LinesTerminatedBy)
	return err
}

// Flush writes any buffered data to the underlying writer.
func (w *Writer) Flush() error {
	return w.w.Flush()
}

// quote encloses a cell only when it would otherwise be misread.
func (w *Writer) quote(cell string) string {
	q := w.d.FieldsEnclosedBy
	if q == "" {
		return cell
	}
	if !strings.Contains(cell, w.d.FieldsTerminatedBy) &&
		!strings.Contains(cell, w.d.LinesTerminatedBy) &&
		!strings.Contains(cell, q) {
		return cell
	}
	return q + strings.ReplaceAll(cell, q, q+q) + q
}

// NeedsEnclosure reports whether cell cannot be written unenclosed in d.
func NeedsEnclosure(cell string, d Dialect) bool {
	return strings.Contains(cell, d.FieldsTerminatedBy) || strings.Contains(cell, d.LinesTerminatedBy)
}
