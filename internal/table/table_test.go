package table

import (
	"bytes"
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vvka-141/dwca/internal/dialect"
	"github.com/vvka-141/dwca/internal/logging"
	"github.com/vvka-141/dwca/internal/term"
	"github.com/vvka-141/dwca/pkg/dwca"
)

func tabHeader(n int) dialect.Dialect {
	d := dialect.Tab()
	d.IgnoreHeaderLines = n
	return d
}

func taxonDescriptor() Descriptor {
	return Descriptor{
		RowType:  term.RowTaxon,
		Filename: "taxon.txt",
		Core:     true,
		KeyIndex: 0,
		Dialect:  tabHeader(1),
		Fields: []Field{
			{Index: 0, Term: term.DwC + "taxonID"},
			{Index: 1, Term: term.DwC + "scientificName"},
		},
	}
}

func newTaxa(t *testing.T, opts ...Option) *Table {
	t.Helper()
	tbl, err := New(taxonDescriptor(), opts...)
	require.NoError(t, err)
	t.Cleanup(func() { tbl.Close() })
	return tbl
}

func TestReadSingleRow(t *testing.T) {
	tbl := newTaxa(t)
	require.NoError(t, tbl.Read(strings.NewReader("taxonID\tscientificName\nt1\tAlpha\n")))

	entries, err := tbl.Entries()
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, map[string]any{"taxonID": "t1", "scientificName": "Alpha"}, entries[0].Map())
	assert.Equal(t, "t1", entries[0].Get(term.DwC+"taxonID"))
	assert.Equal(t, "taxonID", tbl.KeyColumn())
}

func TestNewIndexInvariant(t *testing.T) {
	tests := []struct {
		name   string
		fields []Field
		key    int
		want   string
	}{
		{
			name:   "duplicate index",
			fields: []Field{{Index: 0, Term: term.DwC + "taxonID"}, {Index: 0, Term: term.DwC + "scientificName"}},
			want:   "declared by both",
		},
		{
			name:   "gap",
			fields: []Field{{Index: 0, Term: term.DwC + "taxonID"}, {Index: 2, Term: term.DwC + "scientificName"}},
			want:   "index 1 has no field",
		},
		{
			name:   "key beyond fields",
			fields: []Field{{Index: 0, Term: term.DwC + "taxonID"}},
			key:    3,
			want:   "index 1 has no field",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			desc := taxonDescriptor()
			desc.Fields = tt.fields
			desc.KeyIndex = tt.key
			_, err := New(desc)
			require.Error(t, err)
			assert.True(t, errors.Is(err, dwca.ErrStructural))
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestNewSynthesizesKey(t *testing.T) {
	desc := Descriptor{
		RowType:  term.RowVernacularName,
		Filename: "vernacular.txt",
		KeyIndex: 0,
		Dialect:  dialect.Tab(),
		Fields:   []Field{{Index: 1, Term: term.DwC + "vernacularName"}},
	}
	tbl, err := New(desc)
	require.NoError(t, err)
	assert.Equal(t, []string{dwca.CoreIDColumn, "vernacularName"}, tbl.Schema().Names())
	assert.Len(t, tbl.Descriptor().Fields, 1)
}

func TestNewWarnsOnUnknownTerm(t *testing.T) {
	rec := logging.NewRecorder()
	desc := taxonDescriptor()
	desc.Fields = append(desc.Fields, Field{Index: 2, Term: "http://example.org/terms/colour"})
	tbl, err := New(desc, WithLogger(rec))
	require.NoError(t, err)
	assert.Equal(t, term.String, tbl.Schema().Codec(2).Type)
	assert.True(t, rec.Contains(logging.LevelWarn, "colour"))
}

func TestWriteReadRoundTrip(t *testing.T) {
	desc := taxonDescriptor()
	desc.Dialect = dialect.Default()
	desc.Dialect.IgnoreHeaderLines = 2
	desc.Fields = append(desc.Fields, Field{Index: 2, Term: term.DwC + "decimalLatitude"})
	tbl, err := New(desc)
	require.NoError(t, err)
	require.NoError(t, tbl.AppendText("t1", "Alpha, L.", "12.50"))
	require.NoError(t, tbl.AppendText("t2", `Beta "b"`, ""))

	var buf bytes.Buffer
	require.NoError(t, tbl.Write(&buf))
	assert.True(t, strings.HasPrefix(buf.String(), "taxonID,scientificName,decimalLatitude\n\n"))

	again, err := New(desc)
	require.NoError(t, err)
	require.NoError(t, again.Read(&buf))
	entries, err := again.Entries()
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "Alpha, L.", entries[0].Get("scientificName"))
	assert.True(t, decimal.RequireFromString("12.50").Equal(entries[0].Get("decimalLatitude").(decimal.Decimal)))
	assert.Equal(t, "12.50", entries[0].Text("decimalLatitude"))
	assert.Equal(t, `Beta "b"`, entries[1].Get("scientificName"))
	assert.Nil(t, entries[1].Get("decimalLatitude"))
}

func TestReadCoercionError(t *testing.T) {
	desc := taxonDescriptor()
	desc.Fields = append(desc.Fields, Field{Index: 2, Term: term.DwC + "decimalLatitude"})
	tbl, err := New(desc)
	require.NoError(t, err)
	err = tbl.Read(strings.NewReader("h\nt1\tAlpha\t1.0\nt2\tBeta\tnorth\n"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, dwca.ErrTypeCoercion))
	var rowErr *RowError
	require.ErrorAs(t, err, &rowErr)
	assert.Equal(t, 2, rowErr.Row)
}

func TestWriteRejectsUnenclosedTerminator(t *testing.T) {
	tbl := newTaxa(t)
	require.NoError(t, tbl.Append("t1", "tab\there"))
	err := tbl.Write(&bytes.Buffer{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no enclosure")
}

func TestLazy(t *testing.T) {
	dir := t.TempDir()
	rec := logging.NewRecorder()
	tbl := newTaxa(t, WithTempDir(dir), WithLogger(rec))
	require.NoError(t, tbl.ReadLazy(strings.NewReader("h\nt1\tAlpha\nt2\tBeta\nt3\tGamma\n")))
	assert.True(t, tbl.Lazy())
	assert.True(t, rec.Contains(logging.LevelWarn, "temporary file"))

	n, err := tbl.Len()
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	require.NoError(t, tbl.KeepKeys("taxonID", []string{"t1", "t3"}, nil))
	keys, err := tbl.Keys("taxonID")
	require.NoError(t, err)
	assert.Equal(t, []string{"t1", "t3"}, keys)

	files, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, files, 1)

	require.NoError(t, tbl.Close())
	require.NoError(t, tbl.Close())
	files, err = os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, files)

	_, err = tbl.Len()
	assert.ErrorIs(t, err, dwca.ErrClosed)
}

func TestAddField(t *testing.T) {
	rec := logging.NewRecorder()
	tbl := newTaxa(t, WithLogger(rec))
	require.NoError(t, tbl.Append("t1", "Alpha"))

	c := term.NewCodec(term.DwC+"taxonRank", 7, term.String)
	c.Default = "species"
	require.NoError(t, tbl.AddField(c))
	assert.True(t, rec.Contains(logging.LevelWarn, "renumbered to 2"))
	assert.Equal(t, 2, tbl.Schema().Codec(2).Index)
	assert.Equal(t, 7, c.Index, "caller's codec is not modified")

	entries, err := tbl.Entries()
	require.NoError(t, err)
	assert.Equal(t, "species", entries[0].Get("taxonRank"))

	assert.Error(t, tbl.AddField(c))
}

func TestAddFieldLazy(t *testing.T) {
	tbl := newTaxa(t, WithTempDir(t.TempDir()))
	require.NoError(t, tbl.ReadLazy(strings.NewReader("h\nt1\tAlpha\n")))
	c := term.NewCodec(term.DwC+"taxonRank", 2, term.String)
	c.Default = "genus"
	require.NoError(t, tbl.AddField(c))

	entries, err := tbl.Entries()
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "genus", entries[0].Get("taxonRank"))
}

func TestMerge(t *testing.T) {
	a := newTaxa(t)
	require.NoError(t, a.Append("t1", "Alpha"))
	require.NoError(t, a.Append("t2", "Beta"))

	t.Run("self merge keeps fields and doubles rows", func(t *testing.T) {
		m, err := a.Merge(a)
		require.NoError(t, err)
		assert.Equal(t, a.Schema().Names(), m.Schema().Names())
		n, err := m.Len()
		require.NoError(t, err)
		assert.Equal(t, 4, n)
	})

	t.Run("union of fields with defaults", func(t *testing.T) {
		desc := taxonDescriptor()
		desc.Fields = append(desc.Fields, Field{Index: 2, Term: term.DwC + "taxonRank", Default: "species"})
		b, err := New(desc, WithTempDir(t.TempDir()))
		require.NoError(t, err)
		defer b.Close()
		require.NoError(t, b.ReadLazy(strings.NewReader("h\nt3\tGamma\tgenus\n")))

		m, err := a.Merge(b)
		require.NoError(t, err)
		defer m.Close()
		assert.True(t, m.Lazy())
		assert.Equal(t, []string{"taxonID", "scientificName", "taxonRank"}, m.Schema().Names())
		entries, err := m.Entries()
		require.NoError(t, err)
		require.Len(t, entries, 3)
		assert.Equal(t, "species", entries[0].Get("taxonRank"))
		assert.Equal(t, "genus", entries[2].Get("taxonRank"))
	})

	t.Run("row type mismatch", func(t *testing.T) {
		desc := taxonDescriptor()
		desc.RowType = term.RowOccurrence
		b, err := New(desc)
		require.NoError(t, err)
		_, err = a.Merge(b)
		assert.ErrorIs(t, err, dwca.ErrRowTypeMismatch)
	})
}

type evenMask struct{ calls int }

func (m *evenMask) Mask(values, allowed []string) ([]bool, error) {
	m.calls++
	out := make([]bool, len(values))
	for i := range out {
		out[i] = i%2 == 0
	}
	return out, nil
}

func TestKeepKeysUsesFilter(t *testing.T) {
	tbl := newTaxa(t)
	for _, id := range []string{"t1", "t2", "t3"} {
		require.NoError(t, tbl.Append(id, id))
	}
	kf := &evenMask{}
	require.NoError(t, tbl.KeepKeys("taxonID", nil, kf))
	assert.Equal(t, 1, kf.calls)
	keys, err := tbl.Keys("taxonID")
	require.NoError(t, err)
	assert.Equal(t, []string{"t1", "t3"}, keys)
}

func TestEntrySet(t *testing.T) {
	desc := taxonDescriptor()
	desc.Fields = append(desc.Fields, Field{Index: 2, Term: term.DwC + "decimalLatitude"})
	tbl, err := New(desc)
	require.NoError(t, err)
	require.NoError(t, tbl.Append("t1", "Alpha"))
	entries, err := tbl.Entries()
	require.NoError(t, err)

	require.NoError(t, entries[0].Set("scientificName", "Alpha L."))
	assert.Error(t, entries[0].Set("decimalLatitude", "north"))
	assert.Error(t, entries[0].Set("nope", 1))

	again, err := tbl.Entries()
	require.NoError(t, err)
	assert.Equal(t, "Alpha L.", again[0].Get("scientificName"))
}

func TestEntrySetLazy(t *testing.T) {
	tbl := newTaxa(t, WithTempDir(t.TempDir()))
	require.NoError(t, tbl.ReadLazy(strings.NewReader("h\nt1\tAlpha\n")))
	entries, err := tbl.Entries()
	require.NoError(t, err)
	require.Len(t, entries, 1)

	err = entries[0].Set("scientificName", "Alpha L.")
	assert.ErrorIs(t, err, ErrReadOnlyEntry)

	again, err := tbl.Entries()
	require.NoError(t, err)
	assert.Equal(t, "Alpha", again[0].Get("scientificName"))
}

func TestClone(t *testing.T) {
	for _, lazy := range []bool{false, true} {
		tbl := newTaxa(t, WithTempDir(t.TempDir()))
		input := strings.NewReader("h\nt1\tAlpha\nt2\tBeta\n")
		if lazy {
			require.NoError(t, tbl.ReadLazy(input))
		} else {
			require.NoError(t, tbl.Read(input))
		}

		c, err := tbl.Clone()
		require.NoError(t, err)
		assert.Equal(t, lazy, c.Lazy())
		require.NoError(t, c.KeepKeys("taxonID", []string{"t2"}, nil))
		require.NoError(t, c.Close())

		keys, err := tbl.Keys("taxonID")
		require.NoError(t, err)
		assert.Equal(t, []string{"t1", "t2"}, keys, "lazy=%v", lazy)
	}
}

func TestSingleColumnEmptyValueRoundTrip(t *testing.T) {
	desc := Descriptor{
		RowType:  term.RowVernacularName,
		Filename: "vernacular.txt",
		KeyIndex: 0,
		Dialect:  dialect.Tab(),
		Fields:   []Field{{Index: 0, Term: term.DwC + "vernacularName"}},
	}
	tbl, err := New(desc)
	require.NoError(t, err)
	defer tbl.Close()
	require.NoError(t, tbl.AppendText("gull"))
	require.NoError(t, tbl.AppendText(""))
	require.NoError(t, tbl.AppendText("tern"))

	var buf bytes.Buffer
	require.NoError(t, tbl.Write(&buf))
	assert.Equal(t, "gull\n\ntern\n", buf.String())

	back, err := New(desc)
	require.NoError(t, err)
	defer back.Close()
	require.NoError(t, back.Read(&buf))
	n, err := back.Len()
	require.NoError(t, err)
	assert.Equal(t, 3, n, "the empty value is a row")
}
