package taxon

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vvka-141/dwca/internal/dialect"
	"github.com/vvka-141/dwca/internal/logging"
	"github.com/vvka-141/dwca/internal/table"
	"github.com/vvka-141/dwca/internal/term"
)

// taxonID parent accepted scientificName rank genus
const taxa = `t1		t1	Felidae	family	
t2	t1	t2	Puma	genus	Puma
t3	t2	t3	Puma concolor	species	Puma
t4	t2	t3	Felis concolor	species	Puma
t5		t1	Felidae Fischer	family	
t6		t6	Canidae	family	
t7	t6	t7	Canis lupus	species	Canis
`

func newTaxonomy(t *testing.T, rows string, opts ...Option) *Taxonomy {
	t.Helper()
	fields := []string{"taxonID", "parentNameUsageID", "acceptedNameUsageID", "scientificName", "taxonRank", "genus"}
	desc := table.Descriptor{
		RowType:  term.RowTaxon,
		Filename: "taxon.txt",
		Core:     true,
		Dialect:  dialect.Tab(),
	}
	for i, f := range fields {
		desc.Fields = append(desc.Fields, table.Field{Index: i, Term: term.DwC + f})
	}
	tbl, err := table.New(desc)
	require.NoError(t, err)
	t.Cleanup(func() { tbl.Close() })
	require.NoError(t, tbl.Read(strings.NewReader(rows)))
	tx, err := New(tbl, opts...)
	require.NoError(t, err)
	return tx
}

func ids(t *testing.T, tx *Taxonomy) []string {
	t.Helper()
	keys, err := tx.Table().Keys("taxonID")
	require.NoError(t, err)
	return keys
}

func TestParents(t *testing.T) {
	rec := logging.NewRecorder()
	tx := newTaxonomy(t, taxa, WithLogger(rec))

	tests := []struct {
		name string
		ids  []string
		want []string
	}{
		{name: "chain", ids: []string{"t3"}, want: []string{"t2", "t1"}},
		{name: "root", ids: []string{"t1"}, want: []string{}},
		{name: "two branches", ids: []string{"t3", "t7"}, want: []string{"t2", "t6", "t1"}},
		{name: "missing id", ids: []string{"nope"}, want: []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tx.Parents(tt.ids)
			if len(tt.want) == 0 {
				assert.Empty(t, got)
				return
			}
			assert.Equal(t, tt.want, got)
		})
	}
	assert.True(t, rec.Contains(logging.LevelWarn, "Taxon nope not found"))
}

func TestParentsCycle(t *testing.T) {
	rec := logging.NewRecorder()
	tx := newTaxonomy(t, "a\tb\t\tA\t\t\nb\ta\t\tB\t\t\n", WithLogger(rec))
	assert.Equal(t, []string{"b", "a"}, tx.Parents([]string{"a"}))
	assert.True(t, rec.Contains(logging.LevelWarn, "own ancestor"))
}

func TestSynonyms(t *testing.T) {
	tx := newTaxonomy(t, taxa)
	assert.Equal(t, []string{"t1", "t5"}, tx.Synonyms([]string{"t1"}, false))
	assert.Equal(t, []string{"Felidae", "Felidae Fischer"}, tx.Synonyms([]string{"t1"}, true))
	assert.Equal(t, []string{"t3", "t4"}, tx.Synonyms([]string{"t4"}, false), "a synonym resolves through its accepted name")
	assert.Equal(t, []string{"t2"}, tx.Synonyms([]string{"t2"}, false))
	assert.Empty(t, tx.Synonyms([]string{"missing"}, false))
}

func TestSynonymsEmptyAccepted(t *testing.T) {
	tx := newTaxonomy(t, "a\t\t\tAccepted\t\t\nb\t\ta\tSynonym\t\t\n")
	assert.Equal(t, []string{"a", "b"}, tx.Synonyms([]string{"a"}, false))
}

func TestFilterByRank(t *testing.T) {
	t.Run("genus keeps context", func(t *testing.T) {
		tx := newTaxonomy(t, taxa)
		require.NoError(t, tx.FilterByRank("scientificName", "genus", []string{"Puma"}))
		assert.Equal(t, []string{"t1", "t2", "t5"}, ids(t, tx))
	})

	t.Run("rank field column", func(t *testing.T) {
		tx := newTaxonomy(t, taxa)
		require.NoError(t, tx.FilterByRank("genus", "species", []string{"Puma"}))
		assert.Equal(t, []string{"t1", "t2", "t3", "t4", "t5"}, ids(t, tx))
	})

	t.Run("exact rank mismatch seeds nothing", func(t *testing.T) {
		rec := logging.NewRecorder()
		tx := newTaxonomy(t, taxa, WithLogger(rec))
		require.NoError(t, tx.FilterByRank("scientificName", "species", []string{"Puma"}))
		assert.Equal(t, []string{"t2"}, ids(t, tx), "value matches are kept at any rank")
		assert.True(t, rec.Contains(logging.LevelWarn, "No species"))
	})

	t.Run("any rank", func(t *testing.T) {
		tx := newTaxonomy(t, taxa)
		require.NoError(t, tx.FilterByRank("scientificName", "species", []string{"Puma"}, ExactRank(false)))
		assert.Equal(t, []string{"t1", "t2", "t5"}, ids(t, tx))
	})

	t.Run("species under a synonym genus", func(t *testing.T) {
		const gulls = `g1		g1	Laridae	family	
g2	g1	g2	Larus	genus	Larus
g3	g1	g2	Xema	genus	Xema
g4	g2	g4	Larus argentatus	species	Larus
g5	g3	g5	Xema sabini	species	Xema
g6	g1	g6	Sterna	genus	Sterna
g7	g6	g7	Sterna hirundo	species	Sterna
`
		tx := newTaxonomy(t, gulls)
		require.NoError(t, tx.FilterByRank("genus", "genus", []string{"Larus"}))
		assert.Equal(t, []string{"g1", "g2", "g3", "g4", "g5"}, ids(t, tx))
	})

	t.Run("case sensitive unless fuzzy", func(t *testing.T) {
		tx := newTaxonomy(t, taxa)
		require.NoError(t, tx.FilterByRank("scientificName", "species", []string{"canis lupus"}))
		assert.Empty(t, ids(t, tx))

		tx = newTaxonomy(t, taxa)
		require.NoError(t, tx.FilterByRank("scientificName", "species", []string{"Canis lupis"}, Fuzzy(1)))
		assert.Equal(t, []string{"t6", "t7"}, ids(t, tx))
	})

	t.Run("fuzzy budget exceeded", func(t *testing.T) {
		tx := newTaxonomy(t, taxa)
		require.NoError(t, tx.FilterByRank("scientificName", "species", []string{"Canus lupis"}, Fuzzy(1)))
		assert.Empty(t, ids(t, tx))
	})

	t.Run("unknown field", func(t *testing.T) {
		tx := newTaxonomy(t, taxa)
		assert.Error(t, tx.FilterByRank("kingdom", "kingdom", []string{"Animalia"}))
	})
}

func TestNewRequiresColumns(t *testing.T) {
	tbl, err := table.New(table.Descriptor{
		RowType: term.RowTaxon,
		Core:    true,
		Fields:  []table.Field{{Index: 0, Term: term.DwC + "taxonID"}},
	})
	require.NoError(t, err)
	defer tbl.Close()
	_, err = New(tbl)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parentNameUsageID")
}
