// Package descriptor reads and writes meta.xml, the archive descriptor that
// lists the core and extension data files with their dialect and fields.
package descriptor

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"path/filepath"
	"strconv"

	"github.com/vvka-141/dwca/internal/dialect"
	"github.com/vvka-141/dwca/internal/graph"
	"github.com/vvka-141/dwca/internal/table"
	"github.com/vvka-141/dwca/pkg/dwca"
)

// Archive is the root of meta.xml.
type Archive struct {
	XMLName  xml.Name
	Metadata string `xml:"metadata,attr,omitempty"`
	// Cores receives every <core> element while decoding; Parse keeps the
	// single one in Core. Marshal writes Core.
	Cores      []graph.Node[File] `xml:"core"`
	Extensions []graph.Node[File] `xml:"extension"`

	Core *graph.Node[File] `xml:"-"`

	// Other collects unrecognized principal elements.
	Other []struct {
		XMLName xml.Name
	} `xml:",any"`
}

// File describes one data file: its row type, dialect and fields.
type File struct {
	RowType            string  `xml:"rowType,attr"`
	Encoding           string  `xml:"encoding,attr,omitempty"`
	LinesTerminatedBy  string  `xml:"linesTerminatedBy,attr,omitempty"`
	FieldsTerminatedBy string  `xml:"fieldsTerminatedBy,attr,omitempty"`
	FieldsEnclosedBy   *string `xml:"fieldsEnclosedBy,attr"`
	IgnoreHeaderLines  int     `xml:"ignoreHeaderLines,attr,omitempty"`
	DateFormat         string  `xml:"dateFormat,attr,omitempty"`
	Files              Files   `xml:"files"`
	ID                 *Key    `xml:"id,omitempty"`
	CoreID             *Key    `xml:"coreid,omitempty"`
	Fields             []Field `xml:"field"`
}

// Files lists the locations of a data file.
type Files struct {
	Location []string `xml:"location"`
}

// Key is the id or coreid element.
type Key struct {
	Index *int `xml:"index,attr"`
}

// Field maps a column to a term.
type Field struct {
	Index      *int   `xml:"index,attr,omitempty"`
	Term       string `xml:"term,attr"`
	Default    string `xml:"default,attr,omitempty"`
	Vocabulary string `xml:"vocabulary,attr,omitempty"`
}

// Parse decodes and checks a descriptor. There must be exactly one core,
// declaring an id index, and every extension a coreid index; fields must
// carry an index and locations must stay inside the archive.
func Parse(data []byte) (*Archive, error) {
	var a Archive
	if err := xml.Unmarshal(data, &a); err != nil {
		return nil, wrapXMLError(err)
	}
	if a.XMLName.Local != "archive" {
		return nil, &Error{
			Element: a.XMLName.Local,
			Message: fmt.Sprintf("root element is <%s>, expected <archive>", a.XMLName.Local),
		}
	}
	if len(a.Other) > 0 {
		return nil, &Error{
			Element: a.Other[0].XMLName.Local,
			Message: fmt.Sprintf("unrecognized element <%s>", a.Other[0].XMLName.Local),
			Hint:    "An archive contains one <core> and any number of <extension> elements.",
		}
	}
	switch len(a.Cores) {
	case 0:
		return nil, &Error{Element: "archive", Message: "no <core> element"}
	case 1:
		a.Core = &a.Cores[0]
		a.Cores = nil
	default:
		return nil, &Error{
			Element: "archive",
			Message: fmt.Sprintf("%d <core> elements, expected exactly one", len(a.Cores)),
			Hint:    "Declare the other data files as <extension> elements.",
		}
	}
	if a.Metadata != "" && !IsLocal(a.Metadata) {
		return nil, &Error{
			Element: "archive",
			Field:   "metadata",
			Message: fmt.Sprintf("metadata location %q is outside the archive", a.Metadata),
		}
	}
	if err := checkFile(*a.Core, "core", true); err != nil {
		return nil, err
	}
	for i, ext := range a.Extensions {
		if err := checkFile(ext, fmt.Sprintf("extension[%d]", i+1), false); err != nil {
			return nil, err
		}
	}
	return &a, nil
}

func checkFile(n graph.Node[File], element string, core bool) error {
	f, ok := n.Content()
	if !ok {
		return &Error{
			Element: element,
			Message: "data files must be defined in place, not referenced",
		}
	}
	if f.RowType == "" {
		return &Error{Element: element, Field: "rowType", Message: "rowType is required"}
	}
	key, name := f.ID, "id"
	if !core {
		key, name = f.CoreID, "coreid"
	}
	if key == nil {
		return &Error{
			Element: element,
			Field:   name,
			Message: fmt.Sprintf("missing <%s> element", name),
			Hint:    fmt.Sprintf("Declare the key column, e.g. <%s index=\"0\"/>.", name),
		}
	}
	if key.Index == nil {
		return &Error{Element: element, Field: name, Message: fmt.Sprintf("<%s> has no index attribute", name)}
	}
	if len(f.Files.Location) == 0 {
		return &Error{Element: element, Field: "files", Message: "no <location> given"}
	}
	for _, loc := range f.Files.Location {
		if !IsLocal(loc) {
			return &Error{
				Element: element,
				Field:   "files",
				Message: fmt.Sprintf("location %q is outside the archive", loc),
				Hint:    "Locations are relative paths inside the archive, without \"..\".",
			}
		}
	}
	for i, field := range f.Fields {
		if field.Index == nil {
			return &Error{
				Element: element,
				Field:   fmt.Sprintf("field[%d]", i+1),
				Message: fmt.Sprintf("field %s has no index", field.Term),
				Hint:    "Constant-only fields are not supported; give the field a column.",
			}
		}
	}
	return nil
}

// Dialect returns the text layout of the file with defaults applied and
// escape sequences decoded.
func (f File) Dialect() dialect.Dialect {
	d := dialect.Default()
	if f.Encoding != "" {
		d.Encoding = f.Encoding
	}
	if f.LinesTerminatedBy != "" {
		d.LinesTerminatedBy = dialect.Unescape(f.LinesTerminatedBy)
	}
	if f.FieldsTerminatedBy != "" {
		d.FieldsTerminatedBy = dialect.Unescape(f.FieldsTerminatedBy)
	}
	if f.FieldsEnclosedBy != nil {
		d.FieldsEnclosedBy = dialect.Unescape(*f.FieldsEnclosedBy)
	}
	d.IgnoreHeaderLines = f.IgnoreHeaderLines
	return d
}

// Location returns the first data file location.
func (f File) Location() string {
	if len(f.Files.Location) == 0 {
		return ""
	}
	return f.Files.Location[0]
}

// TableDescriptor converts the file to the definitional data of a table.
func (f File) TableDescriptor(core bool) table.Descriptor {
	d := table.Descriptor{
		RowType:  f.RowType,
		Filename: f.Location(),
		Core:     core,
		Dialect:  f.Dialect(),
	}
	if core && f.ID != nil && f.ID.Index != nil {
		d.KeyIndex = *f.ID.Index
	}
	if !core && f.CoreID != nil && f.CoreID.Index != nil {
		d.KeyIndex = *f.CoreID.Index
	}
	for _, field := range f.Fields {
		idx := -1
		if field.Index != nil {
			idx = *field.Index
		}
		d.Fields = append(d.Fields, table.Field{
			Index:      idx,
			Term:       field.Term,
			Default:    field.Default,
			Vocabulary: field.Vocabulary,
		})
	}
	return d
}

// Table builds an empty table from the file.
func (f File) Table(core bool, opts ...table.Option) (*table.Table, error) {
	return table.New(f.TableDescriptor(core), opts...)
}

// FromTable describes an existing table.
func FromTable(t *table.Table) File {
	desc := t.Descriptor()
	d := desc.Dialect
	enclosure := dialect.Escape(d.FieldsEnclosedBy)
	f := File{
		RowType:            desc.RowType,
		Encoding:           d.Encoding,
		LinesTerminatedBy:  dialect.Escape(d.LinesTerminatedBy),
		FieldsTerminatedBy: dialect.Escape(d.FieldsTerminatedBy),
		FieldsEnclosedBy:   &enclosure,
		IgnoreHeaderLines:  d.IgnoreHeaderLines,
		Files:              Files{Location: []string{desc.Filename}},
	}
	key := &Key{Index: intPtr(desc.KeyIndex)}
	if desc.Core {
		f.ID = key
	} else {
		f.CoreID = key
	}
	for _, field := range desc.Fields {
		f.Fields = append(f.Fields, Field{
			Index:      intPtr(field.Index),
			Term:       field.Term,
			Default:    field.Default,
			Vocabulary: field.Vocabulary,
		})
	}
	return f
}

// IsLocal reports whether a slash-separated location names a file inside
// the archive: relative, not empty and never climbing above the root.
func IsLocal(location string) bool {
	return filepath.IsLocal(filepath.FromSlash(location))
}

func intPtr(i int) *int {
	return &i
}

// New builds a descriptor for a core and its extensions.
func New(metadata string, core File, extensions ...File) *Archive {
	a := &Archive{Metadata: metadata}
	c := graph.Define(graph.Identity{}, core)
	a.Core = &c
	for _, ext := range extensions {
		a.Extensions = append(a.Extensions, graph.Define(graph.Identity{}, ext))
	}
	return a
}

// Marshal encodes the descriptor with the text namespace, core first and
// extensions in declared order.
func (a *Archive) Marshal() ([]byte, error) {
	out := *a
	out.XMLName = xml.Name{Space: dwca.TextNamespace, Local: "archive"}
	out.Other = nil
	out.Cores = nil
	if a.Core != nil {
		out.Cores = []graph.Node[File]{*a.Core}
	}
	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	enc := xml.NewEncoder(&buf)
	enc.Indent("", "  ")
	if err := enc.Encode(out); err != nil {
		return nil, fmt.Errorf("failed to encode %s: %w", dwca.DefaultMetaFile, err)
	}
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}

// Files returns the core followed by the extensions.
func (a *Archive) Files() []File {
	var files []File
	if a.Core != nil {
		files = append(files, a.Core.MustContent())
	}
	for _, ext := range a.Extensions {
		files = append(files, ext.MustContent())
	}
	return files
}

// String renders a short summary, e.g. for logs.
func (f File) String() string {
	return f.RowType + " (" + f.Location() + ", " + strconv.Itoa(len(f.Fields)) + " fields)"
}
