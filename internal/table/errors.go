package table

import (
	"errors"
	"fmt"

	"github.com/vvka-141/dwca/pkg/dwca"
)

// ErrReadOnlyEntry is returned by Entry.Set on an entry streamed from a lazy
// table, whose rows live in the backing file.
var ErrReadOnlyEntry = errors.New("entry of a lazy table is read-only")

// StructuralError reports a table whose field layout cannot be honoured.
type StructuralError struct {
	RowType string // Row type URI of the table
	Message string // What is wrong
	Hint    string // How to fix it, if known
}

func (e *StructuralError) Error() string {
	msg := fmt.Sprintf("structural error in %s: %s", e.RowType, e.Message)
	if e.Hint != "" {
		msg += "\n\nHint: " + e.Hint
	}
	return msg
}

// Unwrap lets errors.Is match dwca.ErrStructural.
func (e *StructuralError) Unwrap() error {
	return dwca.ErrStructural
}

// RowError locates a failure on one data row.
type RowError struct {
	File string // Data file name
	Row  int    // 1-based row number after the header lines
	Err  error
}

func (e *RowError) Error() string {
	return fmt.Sprintf("%s row %d: %v", e.File, e.Row, e.Err)
}

func (e *RowError) Unwrap() error {
	return e.Err
}
