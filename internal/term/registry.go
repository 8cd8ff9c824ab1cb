package term

import (
	"strings"
	"unicode"
)

// Spec is one catalog row: everything needed to build a codec for a term.
type Spec struct {
	URI        string
	Type       TypeTag
	Default    string
	Vocabulary string
	// RowTypes limits the entry to the listed row types; empty means any.
	RowTypes []string
}

// RowTypeSpec describes a class of rows (Taxon, Occurrence, ...).
type RowTypeSpec struct {
	URI    string
	Name   string
	Table  string
	IDTerm string
}

// Catalog is the declarative input of a Registry.
type Catalog struct {
	RowTypes     []RowTypeSpec
	Terms        []Spec
	Vocabularies map[string][]string
}

// Registry resolves row-type and term URIs. It is immutable after NewRegistry
// and may be shared by every table of an archive.
type Registry struct {
	rowTypes     map[string]RowTypeSpec
	global       map[string]Spec
	scoped       map[string]map[string]Spec
	vocabularies map[string][]string
}

// NewRegistry indexes a catalog. Later entries win over earlier ones.
func NewRegistry(c Catalog) *Registry {
	r := &Registry{
		rowTypes:     make(map[string]RowTypeSpec, len(c.RowTypes)),
		global:       make(map[string]Spec, len(c.Terms)),
		scoped:       make(map[string]map[string]Spec),
		vocabularies: make(map[string][]string, len(c.Vocabularies)),
	}
	for _, rt := range c.RowTypes {
		if rt.Name == "" {
			rt.Name = ShortName(rt.URI)
		}
		if rt.Table == "" {
			rt.Table = SQLName(rt.Name)
		}
		r.rowTypes[rt.URI] = rt
	}
	for _, s := range c.Terms {
		if len(s.RowTypes) == 0 {
			r.global[s.URI] = s
			continue
		}
		for _, rt := range s.RowTypes {
			if r.scoped[rt] == nil {
				r.scoped[rt] = make(map[string]Spec)
			}
			r.scoped[rt][s.URI] = s
		}
	}
	for uri, values := range c.Vocabularies {
		r.vocabularies[uri] = append([]string(nil), values...)
	}
	return r
}

var defaultRegistry = NewRegistry(DefaultCatalog())

// DefaultRegistry returns the registry of the built-in catalog.
func DefaultRegistry() *Registry {
	return defaultRegistry
}

// Lookup returns the catalog entry of a term, preferring one scoped to rowType.
func (r *Registry) Lookup(rowType, termURI string) (Spec, bool) {
	if scoped, ok := r.scoped[rowType]; ok {
		if s, ok := scoped[termURI]; ok {
			return s, true
		}
	}
	s, ok := r.global[termURI]
	return s, ok
}

// RowType returns the entry of a row type. Unknown URIs get a generic entry
// derived from the URI and ok=false.
func (r *Registry) RowType(uri string) (RowTypeSpec, bool) {
	if rt, ok := r.rowTypes[uri]; ok {
		return rt, true
	}
	name := ShortName(uri)
	return RowTypeSpec{URI: uri, Name: name, Table: SQLName(name)}, false
}

// Vocabulary returns the value set of a controlled vocabulary.
func (r *Registry) Vocabulary(uri string) ([]string, bool) {
	v, ok := r.vocabularies[uri]
	return v, ok
}

// Codec builds the codec of a term at index. ok is false when the term is not
// in the catalog, in which case the codec is a pass-through String codec.
// A vocabulary URI given by the descriptor overrides the catalog's; a
// Vocabulary term whose value set is unknown degrades to String.
func (r *Registry) Codec(rowType, termURI string, index int, vocabulary string) (*Codec, bool) {
	spec, ok := r.Lookup(rowType, termURI)
	if !ok {
		c := PassThrough(termURI, index)
		c.Vocabulary = vocabulary
		return c, false
	}
	c := NewCodec(termURI, index, spec.Type)
	c.Default = spec.Default
	c.Vocabulary = spec.Vocabulary
	if vocabulary != "" {
		c.Vocabulary = vocabulary
	}
	if c.Type == Vocabulary {
		values, found := r.vocabularies[c.Vocabulary]
		if !found {
			c.Type = String
		}
		c.values = append([]string(nil), values...)
	}
	return c, true
}

// SQLName converts a camel-case name to a lower snake-case identifier.
func SQLName(name string) string {
	var b strings.Builder
	runes := []rune(name)
	for i, r := range runes {
		switch {
		case unicode.IsUpper(r):
			if i > 0 && (unicode.IsLower(runes[i-1]) || (i+1 < len(runes) && unicode.IsLower(runes[i+1]) && unicode.IsUpper(runes[i-1]))) {
				b.WriteByte('_')
			}
			b.WriteRune(unicode.ToLower(r))
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	return b.String()
}
