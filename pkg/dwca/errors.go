package dwca

import (
	"errors"
	"strings"
)

// Sentinel errors for common failure scenarios.
// These enable callers to distinguish error types using errors.Is().
//
// Example usage:
//
//	arch, err := archive.Open("dataset.zip")
//	if errors.Is(err, dwca.ErrStructural) {
//	    // The descriptor is malformed; retrying will not help.
//	}
var (
	// ErrStructural indicates a malformed descriptor: missing id/coreid index,
	// duplicate field index, index gap or an unrecognized principal tag.
	ErrStructural = errors.New("structural error")

	// ErrReferenceWithID indicates an object-graph node that declares its own id
	// and a references pointer at the same time.
	ErrReferenceWithID = errors.New("node declares both id and references")

	// ErrTypeCoercion indicates a cell that cannot be parsed into its declared type.
	ErrTypeCoercion = errors.New("type coercion failed")

	// ErrUnknownType indicates a codec type tag none of the encodings cover.
	ErrUnknownType = errors.New("unknown value type")

	// ErrPrimaryNotSet indicates a relational projection of an extension
	// before its core reference was declared.
	ErrPrimaryNotSet = errors.New("primary table reference not set")

	// ErrRowTypeMismatch indicates an attempt to merge tables of different row types.
	ErrRowTypeMismatch = errors.New("row type mismatch")

	// ErrClosed indicates use of a table after Close released its rows.
	ErrClosed = errors.New("table closed")

	// ErrInvalidConfig indicates the provided configuration is invalid.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrConnectionFailed indicates database connection failed.
	ErrConnectionFailed = errors.New("connection failed")
)

// ExitCodeForError returns the appropriate exit code for an error.
// Returns ExitSuccess (0) for nil errors, semantic codes for known errors,
// and ExitGeneralError (1) for unclassified errors.
func ExitCodeForError(err error) int {
	if err == nil {
		return ExitSuccess
	}

	switch {
	case errors.Is(err, ErrInvalidConfig):
		return ExitConfigError
	case errors.Is(err, ErrConnectionFailed):
		return ExitConnectionError
	case errors.Is(err, ErrStructural), errors.Is(err, ErrReferenceWithID):
		return ExitStructuralError
	case errors.Is(err, ErrTypeCoercion), errors.Is(err, ErrUnknownType):
		return ExitCoercionError
	}

	errStr := err.Error()
	for _, prefix := range usageErrorPrefixes {
		if strings.HasPrefix(errStr, prefix) {
			return ExitUsageError
		}
	}

	if strings.Contains(errStr, "failed to connect") ||
		strings.Contains(errStr, "connection refused") ||
		strings.Contains(errStr, "no such host") {
		return ExitConnectionError
	}

	return ExitGeneralError
}

// usageErrorPrefixes are the cobra error messages that signal CLI misuse.
var usageErrorPrefixes = []string{
	"missing required argument",
	"unknown flag",
	"unknown shorthand flag",
	"unknown command",
	"accepts ",
	"requires at least",
	"required flag",
	"invalid argument",
}
