package eml

import (
	"github.com/vvka-141/dwca/internal/graph"
)

// Pointer is a references node found in a document, with the element it
// was found under.
type Pointer struct {
	Element   string
	Reference graph.Reference
}

// Definition is a defined node with an id.
type Definition struct {
	Element  string
	Identity graph.Identity
}

type walker struct {
	pointers    []Pointer
	definitions []Definition
	parties     []graph.Node[ResponsibleParty]
}

// visit records n and returns its content when it is defined.
func visit[T any](w *walker, element string, n *graph.Node[T]) (T, bool) {
	if n == nil {
		var zero T
		return zero, false
	}
	if ref, ok := n.Reference(); ok {
		w.pointers = append(w.pointers, Pointer{Element: element, Reference: ref})
		var zero T
		return zero, false
	}
	if id := n.Identity(); id.ID != "" {
		w.definitions = append(w.definitions, Definition{Element: element, Identity: id})
	}
	return n.Content()
}

func (w *walker) party(element string, n *graph.Node[ResponsibleParty]) {
	if _, ok := visit(w, element, n); ok {
		w.parties = append(w.parties, *n)
	}
}

func (w *walker) partyList(element string, nodes []graph.Node[ResponsibleParty]) {
	for i := range nodes {
		w.party(element, &nodes[i])
	}
}

func (w *walker) document(d *Document) {
	if ds, ok := visit(w, "dataset", d.Dataset); ok {
		w.dataset(ds)
	}
	if c, ok := visit(w, "citation", d.Citation); ok {
		w.partyList("creator", c.Creator)
		w.partyList("contact", c.Contact)
	}
	if s, ok := visit(w, "software", d.Software); ok {
		w.partyList("creator", s.Creator)
		w.partyList("contact", s.Contact)
	}
	if p, ok := visit(w, "protocol", d.Protocol); ok {
		w.partyList("creator", p.Creator)
		w.partyList("contact", p.Contact)
	}
	visit(w, "access", d.Access)
}

func (w *walker) dataset(ds Dataset) {
	w.partyList("creator", ds.Creator)
	w.partyList("metadataProvider", ds.MetadataProvider)
	w.partyList("associatedParty", ds.AssociatedParty)
	w.partyList("contact", ds.Contact)
	w.party("publisher", ds.Publisher)
	for i := range ds.Distribution {
		visit(w, "distribution", &ds.Distribution[i])
	}
	if cov, ok := visit(w, "coverage", ds.Coverage); ok {
		for i := range cov.Geographic {
			visit(w, "geographicCoverage", &cov.Geographic[i])
		}
		for i := range cov.Temporal {
			visit(w, "temporalCoverage", &cov.Temporal[i])
		}
		for i := range cov.Taxonomic {
			visit(w, "taxonomicCoverage", &cov.Taxonomic[i])
		}
	}
	visit(w, "methods", ds.Methods)
	if p, ok := visit(w, "project", ds.Project); ok {
		w.partyList("personnel", p.Personnel)
	}
}

func (d *Document) walk() *walker {
	w := &walker{}
	w.document(d)
	return w
}

// References lists every pointer node in document order.
func (d *Document) References() []Pointer {
	return d.walk().pointers
}

// Definitions lists every defined node that carries an id.
func (d *Document) Definitions() []Definition {
	return d.walk().definitions
}

// Parties indexes the responsible parties defined with an id so callers can
// resolve party pointers. Duplicate ids are reported by Validate.
func (d *Document) Parties() *graph.Index[ResponsibleParty] {
	ix := graph.NewIndex[ResponsibleParty]()
	for _, p := range d.walk().parties {
		_ = ix.Add(p)
	}
	return ix
}
