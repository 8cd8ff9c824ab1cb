package loader

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vvka-141/dwca/internal/logging"
	"github.com/vvka-141/dwca/internal/testinfra"
)

func TestLoadArchiveIntegration(t *testing.T) {
	connString := testinfra.RequireDatabase(t)
	ctx := context.Background()

	pool, err := Connect(ctx, connString, logging.NewNullLogger())
	require.NoError(t, err)
	defer pool.Close()

	conn, err := pool.Acquire(ctx)
	require.NoError(t, err)
	defer conn.Release()
	_, err = conn.Exec(ctx, "CREATE SCHEMA IF NOT EXISTS loader_it; SET search_path TO loader_it")
	require.NoError(t, err)

	a := testArchive(t)
	results, err := New(WithReplace(true)).LoadArchive(ctx, conn, a)
	require.NoError(t, err)
	require.Len(t, results, 2)

	var n int
	require.NoError(t, conn.QueryRow(ctx, `SELECT count(*) FROM taxon`).Scan(&n))
	assert.Equal(t, 3, n)

	ext := pgx.Identifier{a.Extensions()[0].SQLName()}.Sanitize()
	require.NoError(t, conn.QueryRow(ctx, `SELECT count(*) FROM `+ext+` WHERE coreid = 't1'`).Scan(&n))
	assert.Equal(t, 2, n)

	_, err = conn.Exec(ctx, `INSERT INTO `+ext+` (coreid) VALUES ('nope')`)
	assert.Error(t, err, "extension rows must reference a core row")

	_, err = New().LoadArchive(ctx, conn, a)
	assert.Error(t, err, "loading twice violates the primary key")
}
