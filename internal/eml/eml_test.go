package eml

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vvka-141/dwca/internal/graph"
	"github.com/vvka-141/dwca/pkg/dwca"
)

const sample = `<?xml version="1.0" encoding="UTF-8"?>
<eml:eml xmlns:eml="https://eml.ecoinformatics.org/eml-2.2.0" packageId="pkg-1" system="http://gbif.org" scope="system" xml:lang="eng">
  <dataset>
    <alternateIdentifier>doi:10.1/abc</alternateIdentifier>
    <title xml:lang="eng">Birds of the Valley</title>
    <creator id="ann">
      <individualName><givenName>Ann</givenName><surName>Lee</surName></individualName>
      <electronicMailAddress>ann@example.org</electronicMailAddress>
      <userId directory="https://orcid.org/">0000-0001</userId>
    </creator>
    <metadataProvider><references>ann</references></metadataProvider>
    <pubDate>2024-05-01</pubDate>
    <language>eng</language>
    <abstract><para>Counts of birds.</para></abstract>
    <keywordSet><keyword>birds</keyword><keywordThesaurus>none</keywordThesaurus></keywordSet>
    <coverage>
      <geographicCoverage>
        <geographicDescription>Valley</geographicDescription>
        <boundingCoordinates>
          <westBoundingCoordinate>1</westBoundingCoordinate>
          <eastBoundingCoordinate>2</eastBoundingCoordinate>
          <northBoundingCoordinate>3</northBoundingCoordinate>
          <southBoundingCoordinate>4</southBoundingCoordinate>
        </boundingCoordinates>
      </geographicCoverage>
      <taxonomicCoverage>
        <taxonomicClassification>
          <taxonRankName>kingdom</taxonRankName>
          <taxonRankValue>Animalia</taxonRankValue>
          <taxonomicClassification>
            <taxonRankName>class</taxonRankName>
            <taxonRankValue>Aves</taxonRankValue>
          </taxonomicClassification>
        </taxonomicClassification>
      </taxonomicCoverage>
    </coverage>
    <contact><references>ann</references></contact>
    <project>
      <title>Valley survey</title>
      <personnel><references>ann</references></personnel>
    </project>
  </dataset>
  <additionalMetadata><metadata><gbif><dateStamp>2024-05-01</dateStamp></gbif></metadata></additionalMetadata>
</eml:eml>`

func TestParse(t *testing.T) {
	d, err := Parse([]byte(sample))
	require.NoError(t, err)
	assert.Equal(t, "pkg-1", d.PackageID)
	assert.Equal(t, "eng", d.Lang)
	assert.Equal(t, "Birds of the Valley", d.Title())

	ds := d.Dataset.MustContent()
	require.Len(t, ds.Creator, 1)
	assert.Equal(t, "ann", ds.Creator[0].Identity().ID)
	assert.Equal(t, "Ann Lee", ds.Creator[0].MustContent().DisplayName())
	assert.True(t, ds.MetadataProvider[0].IsReference())

	cov := ds.Coverage.MustContent()
	tax := cov.Taxonomic[0].MustContent()
	require.Len(t, tax.Classification, 1)
	assert.Equal(t, "Aves", tax.Classification[0].Children[0].RankValue)
	assert.Contains(t, d.AdditionalMetadata[0].Metadata.Inner, "<dateStamp>2024-05-01</dateStamp>")

	refs := d.References()
	require.Len(t, refs, 3)
	assert.Equal(t, Pointer{Element: "metadataProvider", Reference: graph.Reference{ID: "ann"}}, refs[0])

	parties := d.Parties()
	got, ok := parties.Resolve(ds.Contact[0])
	require.True(t, ok)
	assert.Equal(t, "Ann Lee", got.DisplayName())

	result := d.Validate()
	assert.True(t, result.Valid, result.ErrorString())
}

func TestParseRejectsIDWithReference(t *testing.T) {
	doc := `<eml:eml xmlns:eml="https://eml.ecoinformatics.org/eml-2.2.0" packageId="p" system="s">
<dataset><creator id="c1"><references>c2</references></creator></dataset></eml:eml>`
	_, err := Parse([]byte(doc))
	require.Error(t, err)
	assert.ErrorIs(t, err, dwca.ErrReferenceWithID)
}

func TestParseStructural(t *testing.T) {
	_, err := Parse([]byte(`<archive/>`))
	assert.ErrorIs(t, err, dwca.ErrStructural)
	_, err = Parse([]byte(`<eml:eml`))
	assert.ErrorIs(t, err, dwca.ErrStructural)
}

func TestMarshalRoundTrip(t *testing.T) {
	d, err := Parse([]byte(sample))
	require.NoError(t, err)
	out, err := d.Marshal()
	require.NoError(t, err)
	s := string(out)
	assert.Contains(t, s, `<eml:eml xmlns:eml="https://eml.ecoinformatics.org/eml-2.2.0" packageId="pkg-1" system="http://gbif.org" scope="system" xml:lang="eng">`)
	assert.Contains(t, s, `<metadataProvider>`+"\n"+`      <references>ann</references>`)
	assert.Contains(t, s, `<creator id="ann">`)
	assert.Contains(t, s, `</eml:eml>`)

	back, err := Parse(out)
	require.NoError(t, err)
	assert.Equal(t, d.Title(), back.Title())
	assert.Equal(t, d.References(), back.References())
	assert.Equal(t, d.Dataset.MustContent().Creator[0].MustContent(), back.Dataset.MustContent().Creator[0].MustContent())
}

func TestValidate(t *testing.T) {
	t.Run("no resource", func(t *testing.T) {
		d := &Document{PackageID: "p", System: "s"}
		r := d.Validate()
		assert.False(t, r.Valid)
		assert.Contains(t, r.ErrorString(), "found 0")
	})

	t.Run("dangling pointer", func(t *testing.T) {
		d := Generate("Birds")
		ds := d.Dataset.Ptr()
		ds.Contact = append(ds.Contact, graph.Refer[ResponsibleParty](graph.Reference{ID: "ghost"}))
		r := d.Validate()
		assert.False(t, r.Valid)
		assert.Contains(t, r.ErrorString(), `references "ghost"`)
	})

	t.Run("foreign system is a warning", func(t *testing.T) {
		d := Generate("Birds")
		ds := d.Dataset.Ptr()
		ds.Contact = append(ds.Contact, graph.Refer[ResponsibleParty](graph.Reference{ID: "x", System: "urn:other"}))
		r := d.Validate()
		assert.True(t, r.Valid)
		assert.Len(t, r.Warnings, 1)
	})

	t.Run("duplicate id", func(t *testing.T) {
		p := ResponsibleParty{OrganizationName: []string{"Org"}}
		d := Generate("Birds")
		ds := d.Dataset.Ptr()
		ds.Creator = append(ds.Creator, graph.Define(graph.Identity{ID: "o"}, p), graph.Define(graph.Identity{ID: "o"}, p))
		r := d.Validate()
		assert.False(t, r.Valid)
		assert.Contains(t, r.ErrorString(), "defined by both")
	})
}

func TestGenerate(t *testing.T) {
	creator := ResponsibleParty{OrganizationName: []string{"Museum"}}
	a := Generate("Birds  of the Valley", creator)
	b := Generate("birds of the valley")
	assert.Equal(t, a.PackageID, b.PackageID)
	assert.NotEqual(t, a.PackageID, Generate("Fish").PackageID)
	assert.Equal(t, "Birds  of the Valley", a.Title())
	assert.True(t, a.Validate().Valid)
	assert.Equal(t, "Museum", a.Dataset.MustContent().Creator[0].MustContent().DisplayName())
}
