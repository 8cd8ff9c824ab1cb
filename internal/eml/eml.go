// Package eml reads and writes the Ecological Metadata Language document of
// an archive.
//
// Resources, parties and coverages are graph nodes: each may be defined in
// place or point at a node defined elsewhere with a references child.
// Pointers are kept as pointers; Parties builds an index for callers that
// want to resolve them.
package eml

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/vvka-141/dwca/internal/graph"
	"github.com/vvka-141/dwca/pkg/dwca"
)

// NamespacePackageID is the UUID namespace generated package ids live in.
var NamespacePackageID = uuid.NewSHA1(uuid.NameSpaceURL, []byte("dwca/eml-package-id/v1"))

// DefaultSystem is the system attribute of generated documents.
const DefaultSystem = "http://gbif.org"

// Parse decodes an EML document.
func Parse(data []byte) (*Document, error) {
	var d Document
	if err := xml.Unmarshal(data, &d); err != nil {
		var syntaxErr *xml.SyntaxError
		if errors.As(err, &syntaxErr) {
			return nil, fmt.Errorf("%s (line %d): %s: %w", dwca.DefaultMetadataFile, syntaxErr.Line, syntaxErr.Msg, dwca.ErrStructural)
		}
		if errors.Is(err, dwca.ErrReferenceWithID) {
			return nil, fmt.Errorf("%s: %w", dwca.DefaultMetadataFile, err)
		}
		return nil, fmt.Errorf("%s: %v: %w", dwca.DefaultMetadataFile, err, dwca.ErrStructural)
	}
	if d.XMLName.Local != "eml" {
		return nil, fmt.Errorf("%s: root element is <%s>, expected <eml:eml>: %w", dwca.DefaultMetadataFile, d.XMLName.Local, dwca.ErrStructural)
	}
	return &d, nil
}

// Marshal encodes the document with the eml prefix bound to dwca.EMLNamespace.
func (d *Document) Marshal() ([]byte, error) {
	out := *d
	out.XMLName = xml.Name{Local: "eml:eml"}
	out.NS = dwca.EMLNamespace
	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	enc := xml.NewEncoder(&buf)
	enc.Indent("", "  ")
	if err := enc.Encode(out); err != nil {
		return nil, fmt.Errorf("failed to encode %s: %w", dwca.DefaultMetadataFile, err)
	}
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}

// Generate builds a minimal dataset document. The package id is derived
// from the title so regenerating the same archive yields the same id.
func Generate(title string, creators ...ResponsibleParty) *Document {
	ds := Dataset{
		Title:   []Text{{Value: title}},
		PubDate: time.Now().UTC().Format(time.DateOnly),
	}
	for _, c := range creators {
		ds.Creator = append(ds.Creator, graph.Define(graph.Identity{}, c))
	}
	node := graph.Define(graph.Identity{}, ds)
	return &Document{
		PackageID: PackageID(title).String(),
		System:    DefaultSystem,
		Scope:     string(graph.ScopeSystem),
		Lang:      "eng",
		Dataset:   &node,
	}
}

// PackageID returns the deterministic package id of a title.
func PackageID(title string) uuid.UUID {
	normalized := strings.ToLower(strings.Join(strings.Fields(title), " "))
	return uuid.NewSHA1(NamespacePackageID, []byte(normalized))
}

// Title returns the first title of the resource, if any.
func (d *Document) Title() string {
	var titles []Text
	switch {
	case d.Dataset != nil:
		titles = d.Dataset.MustContent().Title
	case d.Citation != nil:
		titles = d.Citation.MustContent().Title
	case d.Software != nil:
		titles = d.Software.MustContent().Title
	case d.Protocol != nil:
		titles = d.Protocol.MustContent().Title
	}
	if len(titles) == 0 {
		return ""
	}
	return strings.TrimSpace(titles[0].Value)
}

// Resources returns the number of resource elements present.
func (d *Document) Resources() int {
	n := 0
	for _, present := range []bool{d.Dataset != nil, d.Citation != nil, d.Software != nil, d.Protocol != nil} {
		if present {
			n++
		}
	}
	return n
}
