package graph

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"strings"

	"github.com/vvka-141/dwca/pkg/dwca"
)

type referencesXML struct {
	System string `xml:"system,attr,omitempty"`
	ID     string `xml:",chardata"`
}

type rawNode struct {
	References []referencesXML `xml:"references"`
	Inner      []byte          `xml:",innerxml"`
}

// UnmarshalXML decodes either form of a node. An element with its own id
// attribute and a references child fails with dwca.ErrReferenceWithID.
func (n *Node[T]) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	var id Identity
	var scope string
	for _, a := range start.Attr {
		if a.Name.Space != "" {
			continue
		}
		switch a.Name.Local {
		case "id":
			id.ID = a.Value
		case "scope":
			scope = a.Value
		case "system":
			id.System = a.Value
		}
	}
	var raw rawNode
	if err := d.DecodeElement(&raw, &start); err != nil {
		return err
	}

	if len(raw.References) > 0 {
		if id.ID != "" {
			return fmt.Errorf("<%s id=%q> also has a references child: %w", start.Name.Local, id.ID, dwca.ErrReferenceWithID)
		}
		if len(raw.References) > 1 {
			return fmt.Errorf("<%s> has %d references children, expected one", start.Name.Local, len(raw.References))
		}
		ref := raw.References[0]
		*n = Refer[T](Reference{ID: strings.TrimSpace(ref.ID), System: ref.System})
		return nil
	}

	s, err := ParseScope(scope)
	if err != nil {
		return fmt.Errorf("<%s>: %w", start.Name.Local, err)
	}
	id.Scope = s

	var content T
	if err := decodeContent(start, raw.Inner, &content); err != nil {
		return err
	}
	*n = Define(id, content)
	return nil
}

// decodeContent re-decodes an element from its start tag and inner XML so
// the content type sees its own attributes and children.
func decodeContent(start xml.StartElement, inner []byte, v any) error {
	var buf bytes.Buffer
	enc := xml.NewEncoder(&buf)
	start.Name.Space = ""
	attrs := start.Attr[:0:0]
	for _, a := range start.Attr {
		if a.Name.Space == "xmlns" || (a.Name.Space == "" && a.Name.Local == "xmlns") {
			continue
		}
		attrs = append(attrs, a)
	}
	start.Attr = attrs
	if err := enc.EncodeToken(start); err != nil {
		return err
	}
	if err := enc.Flush(); err != nil {
		return err
	}
	buf.Write(inner)
	fmt.Fprintf(&buf, "</%s>", start.Name.Local)
	return xml.Unmarshal(buf.Bytes(), v)
}

// MarshalXML encodes a pointer node as <tag><references system="...">id</references></tag>
// and a defined node as its content with id, scope and system attributes.
func (n Node[T]) MarshalXML(e *xml.Encoder, start xml.StartElement) error {
	if n.ref != nil {
		return e.EncodeElement(struct {
			References referencesXML `xml:"references"`
		}{referencesXML{System: n.ref.System, ID: n.ref.ID}}, start)
	}
	if n.identity.ID != "" {
		start.Attr = append(start.Attr, xml.Attr{Name: xml.Name{Local: "id"}, Value: n.identity.ID})
		if n.identity.Scope != "" && n.identity.Scope != ScopeDocument {
			start.Attr = append(start.Attr, xml.Attr{Name: xml.Name{Local: "scope"}, Value: string(n.identity.Scope)})
		}
		if n.identity.System != "" {
			start.Attr = append(start.Attr, xml.Attr{Name: xml.Name{Local: "system"}, Value: n.identity.System})
		}
	}
	return e.EncodeElement(n.content, start)
}
