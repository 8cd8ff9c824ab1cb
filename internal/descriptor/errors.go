package descriptor

import (
	"encoding/xml"
	"errors"
	"fmt"

	"github.com/vvka-141/dwca/pkg/dwca"
)

// Error is a structural problem in a meta.xml descriptor.
type Error struct {
	Element string // Element path, e.g. "extension[2]"
	Field   string // Attribute or child at fault, if any
	Line    int    // Line number (0 if unknown)
	Message string
	Hint    string
}

func (e *Error) Error() string {
	location := dwca.DefaultMetaFile
	if e.Line > 0 {
		location = fmt.Sprintf("%s (line %d)", location, e.Line)
	}
	if e.Element != "" {
		location += " " + e.Element
	}
	msg := fmt.Sprintf("descriptor error in %s: %s", location, e.Message)
	if e.Field != "" {
		msg = fmt.Sprintf("descriptor error in %s [%s]: %s", location, e.Field, e.Message)
	}
	if e.Hint != "" {
		msg += "\n\nHint: " + e.Hint
	}
	return msg
}

// Unwrap lets errors.Is match dwca.ErrStructural.
func (e *Error) Unwrap() error {
	return dwca.ErrStructural
}

func wrapXMLError(err error) error {
	if syntaxErr, ok := err.(*xml.SyntaxError); ok {
		return &Error{
			Line:    syntaxErr.Line,
			Message: syntaxErr.Msg,
			Hint:    "Check that all tags are closed and attributes are quoted.",
		}
	}
	if errors.Is(err, dwca.ErrReferenceWithID) {
		return fmt.Errorf("%s: %w", dwca.DefaultMetaFile, err)
	}
	return &Error{Message: err.Error()}
}
