package eml

import (
	"encoding/xml"

	"github.com/vvka-141/dwca/internal/graph"
)

// Document is the eml:eml root element.
type Document struct {
	XMLName   xml.Name
	NS        string `xml:"xmlns:eml,attr,omitempty"`
	PackageID string `xml:"packageId,attr"`
	System    string `xml:"system,attr"`
	Scope     string `xml:"scope,attr,omitempty"`
	Lang      string `xml:"http://www.w3.org/XML/1998/namespace lang,attr,omitempty"`

	Dataset  *graph.Node[Dataset]  `xml:"dataset,omitempty"`
	Citation *graph.Node[Citation] `xml:"citation,omitempty"`
	Software *graph.Node[Software] `xml:"software,omitempty"`
	Protocol *graph.Node[Protocol] `xml:"protocol,omitempty"`

	Access             *graph.Node[Access]  `xml:"access,omitempty"`
	AdditionalMetadata []AdditionalMetadata `xml:"additionalMetadata"`
	Annotations        *Annotations         `xml:"annotations,omitempty"`
}

// Text is character data with an optional language.
type Text struct {
	Lang  string `xml:"http://www.w3.org/XML/1998/namespace lang,attr,omitempty"`
	Value string `xml:",chardata"`
}

// Section is a block of paragraphs.
type Section struct {
	Para []string `xml:"para"`
}

// Dataset is the dataset resource.
type Dataset struct {
	AlternateIdentifier []string                       `xml:"alternateIdentifier"`
	ShortName           string                         `xml:"shortName,omitempty"`
	Title               []Text                         `xml:"title"`
	Creator             []graph.Node[ResponsibleParty] `xml:"creator"`
	MetadataProvider    []graph.Node[ResponsibleParty] `xml:"metadataProvider"`
	AssociatedParty     []graph.Node[ResponsibleParty] `xml:"associatedParty"`
	PubDate             string                         `xml:"pubDate,omitempty"`
	Language            string                         `xml:"language,omitempty"`
	Abstract            *Section                       `xml:"abstract,omitempty"`
	KeywordSet          []KeywordSet                   `xml:"keywordSet"`
	AdditionalInfo      *Section                       `xml:"additionalInfo,omitempty"`
	IntellectualRights  *Section                       `xml:"intellectualRights,omitempty"`
	Distribution        []graph.Node[Distribution]     `xml:"distribution"`
	Coverage            *graph.Node[Coverage]          `xml:"coverage,omitempty"`
	Maintenance         *Maintenance                   `xml:"maintenance,omitempty"`
	Contact             []graph.Node[ResponsibleParty] `xml:"contact"`
	Publisher           *graph.Node[ResponsibleParty]  `xml:"publisher,omitempty"`
	Methods             *graph.Node[Methods]           `xml:"methods,omitempty"`
	Project             *graph.Node[Project]           `xml:"project,omitempty"`
}

// Citation is the citation resource.
type Citation struct {
	Title                 []Text                         `xml:"title"`
	Creator               []graph.Node[ResponsibleParty] `xml:"creator"`
	PubDate               string                         `xml:"pubDate,omitempty"`
	BibliographicCitation string                         `xml:"bibtex,omitempty"`
	Contact               []graph.Node[ResponsibleParty] `xml:"contact"`
}

// Software is the software resource.
type Software struct {
	Title   []Text                         `xml:"title"`
	Creator []graph.Node[ResponsibleParty] `xml:"creator"`
	Version string                         `xml:"version,omitempty"`
	Contact []graph.Node[ResponsibleParty] `xml:"contact"`
}

// Protocol is the protocol resource.
type Protocol struct {
	Title          []Text                         `xml:"title"`
	Creator        []graph.Node[ResponsibleParty] `xml:"creator"`
	ProceduralStep []MethodStep                   `xml:"proceduralStep"`
	Contact        []graph.Node[ResponsibleParty] `xml:"contact"`
}

// ResponsibleParty is a person, organization or position.
type ResponsibleParty struct {
	IndividualName        *IndividualName `xml:"individualName,omitempty"`
	OrganizationName      []string        `xml:"organizationName"`
	PositionName          []string        `xml:"positionName"`
	Address               []Address       `xml:"address"`
	Phone                 []Phone         `xml:"phone"`
	ElectronicMailAddress []string        `xml:"electronicMailAddress"`
	OnlineURL             []string        `xml:"onlineUrl"`
	UserID                []UserID        `xml:"userId"`
	Role                  string          `xml:"role,omitempty"`
}

// IndividualName is the name of a person.
type IndividualName struct {
	Salutation []string `xml:"salutation"`
	GivenName  []string `xml:"givenName"`
	SurName    string   `xml:"surName"`
}

// DisplayName returns the most readable name of the party.
func (p ResponsibleParty) DisplayName() string {
	if n := p.IndividualName; n != nil {
		name := n.SurName
		for i := len(n.GivenName) - 1; i >= 0; i-- {
			name = n.GivenName[i] + " " + name
		}
		return name
	}
	if len(p.OrganizationName) > 0 {
		return p.OrganizationName[0]
	}
	if len(p.PositionName) > 0 {
		return p.PositionName[0]
	}
	return ""
}

// Address is a postal address.
type Address struct {
	DeliveryPoint      []string `xml:"deliveryPoint"`
	City               string   `xml:"city,omitempty"`
	AdministrativeArea string   `xml:"administrativeArea,omitempty"`
	PostalCode         string   `xml:"postalCode,omitempty"`
	Country            string   `xml:"country,omitempty"`
}

// Phone is a phone number.
type Phone struct {
	PhoneType string `xml:"phonetype,attr,omitempty"`
	Number    string `xml:",chardata"`
}

// UserID is an identifier in a directory such as ORCID.
type UserID struct {
	Directory string `xml:"directory,attr"`
	Value     string `xml:",chardata"`
}

// KeywordSet groups keywords from one thesaurus.
type KeywordSet struct {
	Keyword   []string `xml:"keyword"`
	Thesaurus string   `xml:"keywordThesaurus,omitempty"`
}

// Distribution tells where the data can be obtained.
type Distribution struct {
	Online *Online `xml:"online,omitempty"`
}

// Online is an online distribution.
type Online struct {
	URL URL `xml:"url"`
}

// URL is a link with its purpose.
type URL struct {
	Function string `xml:"function,attr,omitempty"`
	Value    string `xml:",chardata"`
}

// Coverage is the extent of the data.
type Coverage struct {
	Geographic []graph.Node[GeographicCoverage] `xml:"geographicCoverage"`
	Temporal   []graph.Node[TemporalCoverage]   `xml:"temporalCoverage"`
	Taxonomic  []graph.Node[TaxonomicCoverage]  `xml:"taxonomicCoverage"`
}

// GeographicCoverage is a described bounding box.
type GeographicCoverage struct {
	Description         string              `xml:"geographicDescription"`
	BoundingCoordinates BoundingCoordinates `xml:"boundingCoordinates"`
}

// BoundingCoordinates is a bounding box in decimal degrees.
type BoundingCoordinates struct {
	West  string `xml:"westBoundingCoordinate"`
	East  string `xml:"eastBoundingCoordinate"`
	North string `xml:"northBoundingCoordinate"`
	South string `xml:"southBoundingCoordinate"`
}

// TemporalCoverage is a date or a date range.
type TemporalCoverage struct {
	SingleDateTime []DateTime    `xml:"singleDateTime"`
	RangeOfDates   *RangeOfDates `xml:"rangeOfDates,omitempty"`
}

// DateTime is a calendar date.
type DateTime struct {
	CalendarDate string `xml:"calendarDate"`
}

// RangeOfDates is a closed date range.
type RangeOfDates struct {
	Begin DateTime `xml:"beginDate"`
	End   DateTime `xml:"endDate"`
}

// TaxonomicCoverage lists the taxa the data covers.
type TaxonomicCoverage struct {
	GeneralTaxonomicCoverage string                    `xml:"generalTaxonomicCoverage,omitempty"`
	Classification           []TaxonomicClassification `xml:"taxonomicClassification"`
}

// TaxonomicClassification is one rank of a classification, with its
// children nested below.
type TaxonomicClassification struct {
	RankName   string                    `xml:"taxonRankName,omitempty"`
	RankValue  string                    `xml:"taxonRankValue"`
	CommonName []string                  `xml:"commonName"`
	Children   []TaxonomicClassification `xml:"taxonomicClassification"`
}

// Maintenance describes how the data is kept up to date.
type Maintenance struct {
	Description     *Section `xml:"description,omitempty"`
	UpdateFrequency string   `xml:"maintenanceUpdateFrequency,omitempty"`
}

// Methods describes how the data was produced.
type Methods struct {
	MethodStep []MethodStep `xml:"methodStep"`
	Sampling   *Sampling    `xml:"sampling,omitempty"`
}

// MethodStep is one step of a method or protocol.
type MethodStep struct {
	Description Section `xml:"description"`
}

// Sampling describes the study extent and sampling procedure.
type Sampling struct {
	StudyExtent         Section `xml:"studyExtent>description"`
	SamplingDescription Section `xml:"samplingDescription"`
}

// Project is the research project behind the data.
type Project struct {
	Title     []Text                         `xml:"title"`
	Personnel []graph.Node[ResponsibleParty] `xml:"personnel"`
	Abstract  *Section                       `xml:"abstract,omitempty"`
	Funding   *Section                       `xml:"funding,omitempty"`
}

// Access is the access control tree.
type Access struct {
	AuthSystem string `xml:"authSystem,attr"`
	Order      string `xml:"order,attr,omitempty"`
	Allow      []Rule `xml:"allow"`
	Deny       []Rule `xml:"deny"`
}

// Rule grants or denies permissions to principals.
type Rule struct {
	Principal  []string `xml:"principal"`
	Permission []string `xml:"permission"`
}

// AdditionalMetadata carries metadata from other standards verbatim.
type AdditionalMetadata struct {
	Describes []string `xml:"describes"`
	Metadata  Raw      `xml:"metadata"`
}

// Raw keeps the inner XML of an element as is.
type Raw struct {
	Inner string `xml:",innerxml"`
}

// Annotations holds semantic annotations of document nodes.
type Annotations struct {
	Annotation []Annotation `xml:"annotation"`
}

// Annotation attaches a property and value to the node with id References.
type Annotation struct {
	References  string `xml:"references,attr"`
	PropertyURI URIRef `xml:"propertyURI"`
	ValueURI    URIRef `xml:"valueURI"`
}

// URIRef is a labelled URI.
type URIRef struct {
	Label string `xml:"label,attr"`
	Value string `xml:",chardata"`
}
