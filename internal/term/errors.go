package term

import (
	"fmt"
	"strings"

	"github.com/vvka-141/dwca/pkg/dwca"
)

// FormatError reports a cell that could not be converted to its declared type.
type FormatError struct {
	Term    string   // Term URI of the column
	Value   string   // Offending cell text
	Type    TypeTag  // Declared type
	Layouts []string // Date-time patterns tried, if any
	Err     error    // Underlying parse error
}

func (e *FormatError) Error() string {
	msg := fmt.Sprintf("cannot read %q as %s for %s", e.Value, e.Type, e.Term)
	if len(e.Layouts) > 0 {
		msg += fmt.Sprintf(" (tried %s)", strings.Join(e.Layouts, ", "))
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap lets errors.Is match dwca.ErrTypeCoercion.
func (e *FormatError) Unwrap() []error {
	if e.Err == nil {
		return []error{dwca.ErrTypeCoercion}
	}
	return []error{dwca.ErrTypeCoercion, e.Err}
}

func unknownType(termURI string, t TypeTag) error {
	return fmt.Errorf("%s: %s covers none of the known encodings: %w", termURI, t, dwca.ErrUnknownType)
}
