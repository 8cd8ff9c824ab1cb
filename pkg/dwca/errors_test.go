package dwca_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/vvka-141/dwca/pkg/dwca"
)

func TestExitCodeForError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil error", nil, dwca.ExitSuccess},
		{"unknown flag", errors.New("unknown flag --foo"), dwca.ExitUsageError},
		{"unknown shorthand flag", errors.New("unknown shorthand flag: 'x'"), dwca.ExitUsageError},
		{"accepts args", errors.New("accepts 1 arg(s), received 0"), dwca.ExitUsageError},
		{"required flag", errors.New("required flag \"output\" not set"), dwca.ExitUsageError},
		{"missing argument", errors.New("missing required argument: <archive>"), dwca.ExitUsageError},
		{"general error", errors.New("something went wrong"), dwca.ExitGeneralError},
		{"connection failed", dwca.ErrConnectionFailed, dwca.ExitConnectionError},
		{"connection refused text", errors.New("dial tcp: connection refused"), dwca.ExitConnectionError},
		{"invalid config", fmt.Errorf("load: %w", dwca.ErrInvalidConfig), dwca.ExitConfigError},
		{"structural", fmt.Errorf("meta.xml: %w", dwca.ErrStructural), dwca.ExitStructuralError},
		{"reference with id", dwca.ErrReferenceWithID, dwca.ExitStructuralError},
		{"coercion", fmt.Errorf("row 3: %w", dwca.ErrTypeCoercion), dwca.ExitCoercionError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := dwca.ExitCodeForError(tt.err); got != tt.want {
				t.Errorf("ExitCodeForError(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}
