// Package dialect describes how rows and cells are laid out in a data file
// and streams records in and out of that layout.
package dialect

import (
	"errors"
	"fmt"
	"strings"

	"github.com/vvka-141/dwca/pkg/dwca"
)

// Dialect is the text layout of one data file.
type Dialect struct {
	Encoding           string
	LinesTerminatedBy  string
	FieldsTerminatedBy string
	FieldsEnclosedBy   string
	IgnoreHeaderLines  int
}

// Default returns the layout the descriptor format assumes when attributes
// are omitted.
func Default() Dialect {
	return Dialect{
		Encoding:           dwca.DefaultEncoding,
		LinesTerminatedBy:  "\n",
		FieldsTerminatedBy: ",",
		FieldsEnclosedBy:   `"`,
	}
}

// Tab returns the tab-separated layout most archives use.
func Tab() Dialect {
	d := Default()
	d.FieldsTerminatedBy = "\t"
	d.FieldsEnclosedBy = ""
	return d
}

// Validate checks that terminators are usable.
func (d Dialect) Validate() error {
	var errs []error
	if d.LinesTerminatedBy == "" {
		errs = append(errs, errors.New("line terminator cannot be empty"))
	}
	if d.FieldsTerminatedBy == "" {
		errs = append(errs, errors.New("field terminator cannot be empty"))
	}
	if d.LinesTerminatedBy != "" && d.LinesTerminatedBy == d.FieldsTerminatedBy {
		errs = append(errs, fmt.Errorf("line and field terminators are both %q", d.LinesTerminatedBy))
	}
	if len([]rune(d.FieldsEnclosedBy)) > 1 {
		errs = append(errs, fmt.Errorf("enclosure %q must be a single character", d.FieldsEnclosedBy))
	}
	if d.FieldsEnclosedBy != "" && strings.Contains(d.FieldsTerminatedBy+d.LinesTerminatedBy, d.FieldsEnclosedBy) {
		errs = append(errs, fmt.Errorf("enclosure %q overlaps a terminator", d.FieldsEnclosedBy))
	}
	if d.IgnoreHeaderLines < 0 {
		errs = append(errs, fmt.Errorf("ignoreHeaderLines cannot be negative (got %d)", d.IgnoreHeaderLines))
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid dialect: %w", errors.Join(errs...))
	}
	return nil
}

var escapes = strings.NewReplacer(`\n`, "\n", `\r`, "\r", `\t`, "\t")

var unescapes = strings.NewReplacer("\n", `\n`, "\r", `\r`, "\t", `\t`)

// Unescape decodes the \n, \r and \t sequences used in descriptor attributes.
func Unescape(s string) string {
	return escapes.Replace(s)
}

// Escape is the inverse of Unescape.
func Escape(s string) string {
	return unescapes.Replace(s)
}
