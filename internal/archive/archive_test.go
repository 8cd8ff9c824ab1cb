package archive

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/klauspost/compress/zip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vvka-141/dwca/internal/eml"
	"github.com/vvka-141/dwca/internal/files/filesystem"
	"github.com/vvka-141/dwca/internal/logging"
	"github.com/vvka-141/dwca/internal/table"
	"github.com/vvka-141/dwca/internal/term"
	"github.com/vvka-141/dwca/pkg/dwca"
)

const meta = `<?xml version="1.0" encoding="UTF-8"?>
<archive xmlns="http://rs.tdwg.org/dwc/text/" metadata="eml.xml">
  <core rowType="http://rs.tdwg.org/dwc/terms/Taxon" fieldsTerminatedBy="\t" linesTerminatedBy="\n" fieldsEnclosedBy="" ignoreHeaderLines="1">
    <files><location>taxon.txt</location></files>
    <id index="0"/>
    <field index="0" term="http://rs.tdwg.org/dwc/terms/taxonID"/>
    <field index="1" term="http://rs.tdwg.org/dwc/terms/scientificName"/>
  </core>
  <extension rowType="http://rs.gbif.org/terms/1.0/VernacularName" fieldsTerminatedBy="\t" linesTerminatedBy="\n" fieldsEnclosedBy="" ignoreHeaderLines="1">
    <files><location>vernacular.txt</location></files>
    <coreid index="0"/>
    <field index="1" term="http://rs.tdwg.org/dwc/terms/vernacularName"/>
  </extension>
</archive>`

const taxa = "taxonID\tscientificName\nt1\tAlpha\nt2\tBeta\nt3\tGamma\n"

const vernaculars = "coreid\tvernacularName\nt1\talpha\nt2\tbeta\nx\tnone\ny\tnone\nz\tnone\n"

func files() map[string][]byte {
	return map[string][]byte{
		"taxon.txt":      []byte(taxa),
		"vernacular.txt": []byte(vernaculars),
	}
}

func emlBytes(t *testing.T) []byte {
	t.Helper()
	data, err := eml.Generate("Valley taxa").Marshal()
	require.NoError(t, err)
	return data
}

func rowCount(t *testing.T, tbl *table.Table) int {
	t.Helper()
	n, err := tbl.Len()
	require.NoError(t, err)
	return n
}

func coreIDs(t *testing.T, tbl *table.Table) []string {
	t.Helper()
	keys, err := tbl.Keys(tbl.KeyColumn())
	require.NoError(t, err)
	return keys
}

func TestFromArchiveBytes(t *testing.T) {
	a, err := FromArchiveBytes([]byte(meta), emlBytes(t), files())
	require.NoError(t, err)
	defer a.Close()

	assert.Equal(t, eml.PackageID("Valley taxa").String(), a.ID)
	assert.Equal(t, "eng", a.Lang)
	assert.Equal(t, 3, rowCount(t, a.Core()))
	require.Len(t, a.Extensions(), 1)

	ext, ok := a.Extension(term.RowVernacularName)
	require.True(t, ok)
	assert.Equal(t, []string{"t1", "t2"}, coreIDs(t, ext), "rows without a core row are dropped")
	assert.Equal(t, &table.Reference{Table: "taxon", Column: "taxon_id"}, ext.Primary())

	_, ok = a.Extension(term.RowDistribution)
	assert.False(t, ok)
}

func TestWriteThenReadKeepsCascade(t *testing.T) {
	a, err := FromArchiveBytes([]byte(meta), nil, files())
	require.NoError(t, err)
	defer a.Close()

	out, err := a.ToArchiveBytes()
	require.NoError(t, err)
	assert.Equal(t, dwca.DefaultMetaFile, out.MetaName)
	assert.Nil(t, out.EML)
	assert.Equal(t, taxa, string(out.Data["taxon.txt"]))
	assert.Equal(t, "coreid\tvernacularName\nt1\talpha\nt2\tbeta\n", string(out.Data["vernacular.txt"]))

	back, err := FromArchiveBytes(out.Meta, out.EML, out.Data)
	require.NoError(t, err)
	defer back.Close()
	assert.Equal(t, 3, rowCount(t, back.Core()))
	assert.Equal(t, 2, rowCount(t, back.Extensions()[0]))
}

func TestSetCoreCascades(t *testing.T) {
	for _, tt := range []struct {
		name string
		kf   table.KeyFilter
	}{
		{name: "per row", kf: nil},
		{name: "key filter", kf: &countingFilter{}},
	} {
		t.Run(tt.name, func(t *testing.T) {
			a, err := FromArchiveBytes([]byte(meta), nil, files(), WithKeyFilter(tt.kf))
			require.NoError(t, err)
			defer a.Close()

			core, err := table.New(a.Core().Descriptor())
			require.NoError(t, err)
			require.NoError(t, core.AppendText("t2", "Beta"))
			require.NoError(t, a.SetCore(core))

			ext := a.Extensions()[0]
			assert.Equal(t, []string{"t2"}, coreIDs(t, ext))
			for _, id := range coreIDs(t, ext) {
				assert.Contains(t, coreIDs(t, a.Core()), id)
			}
			if cf, ok := tt.kf.(*countingFilter); ok {
				assert.Equal(t, 2, cf.calls, "once on read, once on SetCore")
			}
		})
	}
}

type countingFilter struct {
	calls int
}

func (f *countingFilter) Mask(values, allowed []string) ([]bool, error) {
	f.calls++
	set := make(map[string]bool, len(allowed))
	for _, k := range allowed {
		set[k] = true
	}
	mask := make([]bool, len(values))
	for i, v := range values {
		mask[i] = set[v]
	}
	return mask, nil
}

func TestAddExtensionFiltersAgainstCore(t *testing.T) {
	src, err := FromArchiveBytes([]byte(meta), nil, files())
	require.NoError(t, err)
	defer src.Close()

	a := New()
	require.NoError(t, a.SetCore(src.Core()))

	ext, err := table.New(src.Extensions()[0].Descriptor())
	require.NoError(t, err)
	require.NoError(t, ext.AppendText("t3", "gamma"))
	require.NoError(t, ext.AppendText("t9", "nobody"))
	require.NoError(t, a.AddExtension(ext))
	assert.Equal(t, []string{"t3"}, coreIDs(t, ext))

	assert.Error(t, a.AddExtension(src.Core()), "a core table is not an extension")
	assert.Error(t, a.SetCore(ext), "an extension table is not a core")
}

func TestLazyArchive(t *testing.T) {
	rec := logging.NewRecorder()
	a, err := FromArchiveBytes([]byte(meta), nil, files(), WithLazy(true), WithTempDir(t.TempDir()), WithLogger(rec))
	require.NoError(t, err)

	assert.True(t, a.Core().Lazy())
	ext := a.Extensions()[0]
	assert.True(t, ext.Lazy())
	assert.Equal(t, 2, rowCount(t, ext))
	assert.True(t, rec.Contains(logging.LevelWarn, "temporary file"))
	assert.True(t, rec.Contains(logging.LevelWarn, "names metadata document eml.xml"))

	require.NoError(t, a.Close())
	_, err = ext.Len()
	assert.ErrorIs(t, err, dwca.ErrClosed)
}

func TestFromArchiveBytesErrors(t *testing.T) {
	_, err := FromArchiveBytes([]byte(`<archive/>`), nil, nil)
	assert.ErrorIs(t, err, dwca.ErrStructural)

	_, err = FromArchiveBytes([]byte(meta), nil, map[string][]byte{"taxon.txt": []byte(taxa)})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "vernacular.txt not found")

	_, err = FromArchiveBytes([]byte(meta), []byte(`<eml:eml`), files())
	assert.ErrorIs(t, err, dwca.ErrStructural)
}

func TestZipRoundTrip(t *testing.T) {
	a, err := FromArchiveBytes([]byte(meta), emlBytes(t), files())
	require.NoError(t, err)
	defer a.Close()

	var buf bytes.Buffer
	require.NoError(t, a.WriteZip(&buf))

	back, err := OpenReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()), WithLazy(true), WithTempDir(t.TempDir()))
	require.NoError(t, err)
	defer back.Close()
	require.NotNil(t, back.EML)
	assert.Equal(t, "Valley taxa", back.EML.Title())
	assert.Equal(t, 3, rowCount(t, back.Core()))
	assert.Equal(t, 2, rowCount(t, back.Extensions()[0]))
}

func TestOpenReaderNestedDirectory(t *testing.T) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, data := range map[string]string{
		"birds/meta.xml":       meta,
		"birds/taxon.txt":      taxa,
		"birds/vernacular.txt": vernaculars,
	} {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte(data))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())

	a, err := OpenReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	require.NoError(t, err)
	defer a.Close()
	assert.Nil(t, a.EML)
	assert.Equal(t, 3, rowCount(t, a.Core()))
}

func TestOpenReaderWithoutDescriptor(t *testing.T) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	_, err := zw.Create("taxon.txt")
	require.NoError(t, err)
	require.NoError(t, zw.Close())

	_, err = OpenReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	assert.ErrorIs(t, err, dwca.ErrStructural)

	_, err = OpenReader(bytes.NewReader([]byte("not a zip")), 9)
	assert.ErrorIs(t, err, dwca.ErrStructural)
}

func TestSaveAndOpen(t *testing.T) {
	a, err := FromArchiveBytes([]byte(meta), emlBytes(t), files())
	require.NoError(t, err)
	defer a.Close()

	path := t.TempDir() + "/valley.zip"
	require.NoError(t, a.Save(path))
	back, err := Open(path)
	require.NoError(t, err)
	defer back.Close()
	assert.Equal(t, a.ID, back.ID)
}

func TestDirRoundTrip(t *testing.T) {
	fsys := filesystem.NewMemoryFileSystem("/data")
	fsys.AddFile("valley/meta.xml", meta)
	fsys.AddFile("valley/taxon.txt", taxa)
	fsys.AddFile("valley/vernacular.txt", vernaculars)

	a, err := OpenDir(fsys, "/data/valley")
	require.NoError(t, err)
	defer a.Close()
	a.EML = eml.Generate("Valley taxa")

	require.NoError(t, a.SaveDir(fsys, "/data/out"))
	written, err := fsys.ReadDir("/data/out")
	require.NoError(t, err)
	var names []string
	for _, info := range written {
		names = append(names, info.Name())
	}
	assert.Equal(t, []string{"eml.xml", "meta.xml", "taxon.txt", "vernacular.txt"}, names)

	back, err := OpenDir(fsys, "/data/out")
	require.NoError(t, err)
	defer back.Close()
	assert.Equal(t, "Valley taxa", back.EML.Title())
	assert.Equal(t, 2, rowCount(t, back.Extensions()[0]))

	_, err = OpenDir(fsys, "/data")
	assert.ErrorIs(t, err, dwca.ErrStructural)
}

func TestMerge(t *testing.T) {
	a, err := FromArchiveBytes([]byte(meta), emlBytes(t), files())
	require.NoError(t, err)
	defer a.Close()

	merged, err := Merge(a, a)
	require.NoError(t, err)
	defer merged.Close()

	assert.Equal(t, a.Core().Schema().Names(), merged.Core().Schema().Names())
	assert.Equal(t, 6, rowCount(t, merged.Core()))
	require.Len(t, merged.Extensions(), 1)
	assert.Equal(t, 4, rowCount(t, merged.Extensions()[0]))
	assert.Same(t, a.EML, merged.EML)

	require.NoError(t, merged.Close())
	assert.Equal(t, 3, rowCount(t, a.Core()), "inputs stay open after the merge is closed")
}

func TestMergeAppendsOtherExtensions(t *testing.T) {
	a, err := FromArchiveBytes([]byte(meta), nil, files())
	require.NoError(t, err)
	defer a.Close()

	b := New()
	core, err := table.New(a.Core().Descriptor())
	require.NoError(t, err)
	require.NoError(t, core.AppendText("t4", "Delta"))
	require.NoError(t, b.SetCore(core))
	dist, err := table.New(table.Descriptor{
		RowType:  term.RowDistribution,
		Filename: "distribution.txt",
		KeyIndex: 0,
		Fields:   []table.Field{{Index: 1, Term: term.DwC + "locality"}},
	})
	require.NoError(t, err)
	require.NoError(t, dist.AppendText("t4", "Valley"))
	require.NoError(t, b.AddExtension(dist))
	b.EML = eml.Generate("Delta")

	merged, err := Merge(a, b)
	require.NoError(t, err)
	defer merged.Close()
	assert.Equal(t, []string{"t1", "t2", "t3", "t4"}, coreIDs(t, merged.Core()))
	require.Len(t, merged.Extensions(), 2)
	assert.Equal(t, term.RowDistribution, merged.Extensions()[1].RowType)
	assert.Equal(t, "Delta", merged.EML.Title(), "metadata comes from b when a has none")
}

func TestToArchiveBytesWithoutCore(t *testing.T) {
	_, err := New().ToArchiveBytes()
	assert.ErrorIs(t, err, dwca.ErrStructural)
}

func TestWithEncoding(t *testing.T) {
	data := files()
	data["taxon.txt"] = []byte("taxonID\tscientificName\nt1\tMus\xe9e\n")
	a, err := FromArchiveBytes([]byte(meta), nil, data, WithEncoding("ISO-8859-1"))
	require.NoError(t, err)
	defer a.Close()

	entries, err := a.Core().Entries()
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "Musée", entries[0].Text("scientificName"))
}

func TestWithMetadataName(t *testing.T) {
	a := New(WithMetadataName("metadata.xml"))
	assert.Equal(t, "metadata.xml", a.MetadataName)
	assert.Equal(t, dwca.DefaultMetadataFile, New(WithMetadataName("")).MetadataName)
}

func TestLocationsStayInsideTheArchive(t *testing.T) {
	t.Run("read", func(t *testing.T) {
		root := t.TempDir()
		src := filepath.Join(root, "src")
		require.NoError(t, os.MkdirAll(src, 0755))
		require.NoError(t, os.WriteFile(filepath.Join(root, "secret.txt"), []byte(taxa), 0644))
		escaping := strings.Replace(meta, "<location>taxon.txt</location>", "<location>../secret.txt</location>", 1)
		require.NoError(t, os.WriteFile(filepath.Join(src, dwca.DefaultMetaFile), []byte(escaping), 0644))

		_, err := OpenDir(filesystem.NewOSFileSystem(), src)
		require.Error(t, err)
		assert.ErrorIs(t, err, dwca.ErrStructural)
		assert.Contains(t, err.Error(), "outside the archive")
	})

	escapingArchive := func(t *testing.T) *Archive {
		t.Helper()
		a, err := FromArchiveBytes([]byte(meta), nil, files())
		require.NoError(t, err)
		t.Cleanup(func() { a.Close() })
		desc := a.Core().Descriptor()
		desc.Filename = "../escape.txt"
		core, err := table.New(desc)
		require.NoError(t, err)
		require.NoError(t, core.Read(strings.NewReader(taxa)))
		out := New()
		require.NoError(t, out.SetCore(core))
		t.Cleanup(func() { out.Close() })
		return out
	}

	t.Run("write directory", func(t *testing.T) {
		fsys := filesystem.NewMemoryFileSystem("/data")
		err := escapingArchive(t).SaveDir(fsys, "/data/out/deep")
		assert.ErrorIs(t, err, dwca.ErrStructural)
		_, err = fsys.Stat("/data/out/escape.txt")
		assert.Error(t, err, "nothing is written above the output directory")
		_, err = fsys.Stat("/data/out/deep/" + dwca.DefaultMetaFile)
		assert.Error(t, err, "locations are checked before any file is written")
	})

	t.Run("write zip", func(t *testing.T) {
		var buf bytes.Buffer
		assert.ErrorIs(t, escapingArchive(t).WriteZip(&buf), dwca.ErrStructural)
	})

	t.Run("metadata name", func(t *testing.T) {
		a, err := FromArchiveBytes([]byte(meta), nil, files())
		require.NoError(t, err)
		defer a.Close()
		a.EML = eml.Generate("Valley taxa")
		a.MetadataName = "../eml.xml"
		_, err = a.ToArchiveBytes()
		assert.ErrorIs(t, err, dwca.ErrStructural)
	})
}
