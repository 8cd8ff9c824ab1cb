package loader

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vvka-141/dwca/internal/archive"
	"github.com/vvka-141/dwca/pkg/dwca"
)

const meta = `<archive xmlns="http://rs.tdwg.org/dwc/text/">
  <core rowType="http://rs.tdwg.org/dwc/terms/Taxon" fieldsTerminatedBy="\t" fieldsEnclosedBy="" ignoreHeaderLines="1">
    <files><location>taxon.txt</location></files>
    <id index="0"/>
    <field index="0" term="http://rs.tdwg.org/dwc/terms/taxonID"/>
    <field index="1" term="http://rs.tdwg.org/dwc/terms/scientificName"/>
  </core>
  <extension rowType="http://rs.gbif.org/terms/1.0/VernacularName" fieldsTerminatedBy="\t" fieldsEnclosedBy="" ignoreHeaderLines="1">
    <files><location>vernacular.txt</location></files>
    <coreid index="0"/>
    <field index="1" term="http://rs.tdwg.org/dwc/terms/vernacularName"/>
  </extension>
</archive>`

func testArchive(t *testing.T) *archive.Archive {
	t.Helper()
	a, err := archive.FromArchiveBytes([]byte(meta), nil, map[string][]byte{
		"taxon.txt":      []byte("taxonID\tscientificName\nt1\tPuma concolor\nt2\tLynx lynx\nt3\tFelis catus\n"),
		"vernacular.txt": []byte("coreid\tvernacularName\nt1\tcougar\nt1\tpuma\nt3\tcat\n"),
	})
	require.NoError(t, err)
	t.Cleanup(func() { a.Close() })
	return a
}

type fakeConn struct {
	execs   []string
	batches []*pgx.Batch
	failOn  string
}

func (c *fakeConn) Exec(_ context.Context, sql string, _ ...any) (pgconn.CommandTag, error) {
	c.execs = append(c.execs, sql)
	if c.failOn != "" && strings.Contains(sql, c.failOn) {
		return pgconn.CommandTag{}, errors.New("exec failed")
	}
	return pgconn.NewCommandTag("CREATE TABLE"), nil
}

func (c *fakeConn) SendBatch(_ context.Context, b *pgx.Batch) pgx.BatchResults {
	c.batches = append(c.batches, b)
	return &fakeResults{fail: c.failOn != "" && strings.Contains(b.QueuedQueries[0].SQL, c.failOn)}
}

type fakeResults struct {
	fail bool
}

func (r *fakeResults) Exec() (pgconn.CommandTag, error) {
	if r.fail {
		return pgconn.CommandTag{}, errors.New("duplicate key")
	}
	return pgconn.NewCommandTag("INSERT 0 1"), nil
}
func (r *fakeResults) Query() (pgx.Rows, error) { return nil, errors.New("not supported") }
func (r *fakeResults) QueryRow() pgx.Row         { return nil }
func (r *fakeResults) Close() error              { return nil }

func TestLoadArchive(t *testing.T) {
	a := testArchive(t)
	conn := &fakeConn{}
	results, err := New(WithBatchSize(2), WithReplace(true)).LoadArchive(context.Background(), conn, a)
	require.NoError(t, err)

	ext := a.Extensions()[0]
	assert.Equal(t, []TableResult{{Table: "taxon", Rows: 3}, {Table: ext.SQLName(), Rows: 3}}, results)

	require.Len(t, conn.execs, 4)
	assert.Equal(t, `DROP TABLE IF EXISTS "`+ext.SQLName()+`" CASCADE`, conn.execs[0])
	assert.Equal(t, `DROP TABLE IF EXISTS "taxon" CASCADE`, conn.execs[1])
	assert.Contains(t, conn.execs[2], `CREATE TABLE IF NOT EXISTS "taxon"`)
	assert.Contains(t, conn.execs[3], `REFERENCES "taxon"`)

	require.Len(t, conn.batches, 4, "3 rows per table in batches of 2")
	first := conn.batches[0].QueuedQueries[0]
	assert.Equal(t, `INSERT INTO "taxon" ("taxon_id", "scientific_name") VALUES ($1, $2)`, first.SQL)
	assert.Equal(t, []any{"t1", "Puma concolor"}, first.Arguments)
}

func TestLoadArchiveErrors(t *testing.T) {
	a := testArchive(t)

	_, err := New().LoadArchive(context.Background(), &fakeConn{failOn: "CREATE TABLE"}, a)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to create taxon")

	results, err := New().LoadArchive(context.Background(), &fakeConn{failOn: `INSERT INTO "taxon"`}, a)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "row 1 of taxon.txt")
	assert.Empty(t, results)

	_, err = New().LoadArchive(context.Background(), &fakeConn{}, archive.New())
	assert.ErrorIs(t, err, dwca.ErrStructural)
}

func TestScript(t *testing.T) {
	script, err := Script(testArchive(t))
	require.NoError(t, err)
	assert.Less(t, strings.Index(script, `"taxon" (`), strings.Index(script, "FOREIGN KEY"))
	assert.True(t, strings.HasSuffix(script, ");\n"))
}

func TestConnectInvalidConfig(t *testing.T) {
	_, err := Connect(context.Background(), "host=localhost port=notaport", nil)
	assert.ErrorIs(t, err, dwca.ErrInvalidConfig)
}
