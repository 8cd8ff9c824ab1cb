package eml

import (
	"fmt"
	"strings"

	"github.com/vvka-141/dwca/internal/graph"
)

// ValidationResult contains the outcome of document validation.
// If Valid is false, Errors contains human-readable error messages.
type ValidationResult struct {
	Valid    bool
	Errors   []string
	Warnings []string
}

// AddError appends an error message and marks the result invalid.
func (v *ValidationResult) AddError(format string, args ...interface{}) {
	v.Valid = false
	v.Errors = append(v.Errors, fmt.Sprintf(format, args...))
}

// AddWarning appends a warning message.
func (v *ValidationResult) AddWarning(format string, args ...interface{}) {
	v.Warnings = append(v.Warnings, fmt.Sprintf(format, args...))
}

// ErrorString returns all validation errors joined with semicolons.
func (v *ValidationResult) ErrorString() string {
	return strings.Join(v.Errors, "; ")
}

// Validate checks the document: a packageId and system, exactly one
// resource, no id defined twice in its scope, and every pointer resolvable
// within the document. Pointers naming a system other than the document's
// are only warned about since they may resolve elsewhere.
func (d *Document) Validate() ValidationResult {
	result := ValidationResult{Valid: true}

	if strings.TrimSpace(d.PackageID) == "" {
		result.AddError("packageId attribute is required")
	}
	if strings.TrimSpace(d.System) == "" {
		result.AddError("system attribute is required")
	}
	if n := d.Resources(); n != 1 {
		result.AddError("expected exactly one of dataset, citation, software or protocol, found %d", n)
	}

	w := d.walk()
	seen := make(map[[2]string]string, len(w.definitions))
	for _, def := range w.definitions {
		k := [2]string{"", def.Identity.ID}
		if def.Identity.Scope == graph.ScopeSystem {
			k[0] = def.Identity.System
		}
		if prev, dup := seen[k]; dup {
			result.AddError("id %q is defined by both <%s> and <%s>", def.Identity.ID, prev, def.Element)
			continue
		}
		seen[k] = def.Element
	}
	for _, p := range w.pointers {
		_, local := seen[[2]string{"", p.Reference.ID}]
		_, system := seen[[2]string{p.Reference.System, p.Reference.ID}]
		if local || system {
			continue
		}
		if p.Reference.System != "" && p.Reference.System != d.System {
			result.AddWarning("<%s> references %q in system %s, which this document cannot resolve", p.Element, p.Reference.ID, p.Reference.System)
			continue
		}
		result.AddError("<%s> references %q, which is not defined", p.Element, p.Reference.ID)
	}
	return result
}
