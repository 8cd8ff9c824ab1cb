// Package loader projects an archive into PostgreSQL: one table per row
// type, the core keyed by its id and every extension referencing it.
package loader

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/vvka-141/dwca/internal/archive"
	"github.com/vvka-141/dwca/internal/logging"
	"github.com/vvka-141/dwca/internal/retry"
	"github.com/vvka-141/dwca/internal/table"
	"github.com/vvka-141/dwca/pkg/dwca"
)

// DefaultBatchSize is the number of inserts sent per round trip.
const DefaultBatchSize = 500

// Conn is the part of a connection the loader uses. *pgx.Conn, *pgxpool.Conn
// and *pgxpool.Pool satisfy it.
type Conn interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults
}

// Loader creates tables and inserts rows.
type Loader struct {
	logger    dwca.Logger
	batchSize int
	replace   bool
}

// Option configures a Loader.
type Option func(*Loader)

// WithLogger sets the logger progress is reported to.
func WithLogger(l dwca.Logger) Option {
	return func(ld *Loader) { ld.logger = l }
}

// WithBatchSize sets the number of inserts per batch.
func WithBatchSize(n int) Option {
	return func(ld *Loader) { ld.batchSize = n }
}

// WithReplace drops existing tables of the same name before creating them.
func WithReplace(replace bool) Option {
	return func(ld *Loader) { ld.replace = replace }
}

// New creates a Loader.
func New(opts ...Option) *Loader {
	l := &Loader{batchSize: DefaultBatchSize}
	for _, opt := range opts {
		opt(l)
	}
	if l.logger == nil {
		l.logger = logging.NewNullLogger()
	}
	if l.batchSize <= 0 {
		l.batchSize = DefaultBatchSize
	}
	return l
}

// TableResult is the outcome of loading one table.
type TableResult struct {
	Table string
	Rows  int
}

// tables returns the core followed by the extensions, rejecting two tables
// that would share a relational name.
func tables(a *archive.Archive) ([]*table.Table, error) {
	if a.Core() == nil {
		return nil, fmt.Errorf("archive has no core: %w", dwca.ErrStructural)
	}
	all := append([]*table.Table{a.Core()}, a.Extensions()...)
	seen := make(map[string]string, len(all))
	for _, t := range all {
		if prev, ok := seen[t.SQLName()]; ok {
			return nil, fmt.Errorf("%s and %s both map to table %q", prev, t.Filename, t.SQLName())
		}
		seen[t.SQLName()] = t.Filename
	}
	return all, nil
}

// Schema returns the CREATE TABLE statements of the archive, core first.
func Schema(a *archive.Archive) ([]string, error) {
	all, err := tables(a)
	if err != nil {
		return nil, err
	}
	stmts := make([]string, 0, len(all))
	for _, t := range all {
		stmt, err := t.SQLSchema()
		if err != nil {
			return nil, fmt.Errorf("%s: %w", t.Filename, err)
		}
		stmts = append(stmts, stmt)
	}
	return stmts, nil
}

// Script renders Schema as one SQL script.
func Script(a *archive.Archive) (string, error) {
	stmts, err := Schema(a)
	if err != nil {
		return "", err
	}
	return strings.Join(stmts, "\n\n") + "\n", nil
}

// LoadArchive creates the tables of a and inserts every row. Tables are
// created core first so the extensions' foreign keys resolve.
func (l *Loader) LoadArchive(ctx context.Context, conn Conn, a *archive.Archive) ([]TableResult, error) {
	all, err := tables(a)
	if err != nil {
		return nil, err
	}
	stmts, err := Schema(a)
	if err != nil {
		return nil, err
	}
	if l.replace {
		for _, t := range slices.Backward(all) {
			drop := "DROP TABLE IF EXISTS " + pgx.Identifier{t.SQLName()}.Sanitize() + " CASCADE"
			if _, err := conn.Exec(ctx, drop); err != nil {
				return nil, fmt.Errorf("failed to drop %s: %w", t.SQLName(), err)
			}
		}
	}
	for i, stmt := range stmts {
		l.logger.Verbose("Creating table %s", all[i].SQLName())
		if _, err := conn.Exec(ctx, stmt); err != nil {
			return nil, fmt.Errorf("failed to create %s: %w", all[i].SQLName(), err)
		}
	}

	results := make([]TableResult, 0, len(all))
	for _, t := range all {
		n, err := l.LoadTable(ctx, conn, t)
		if err != nil {
			return results, err
		}
		results = append(results, TableResult{Table: t.SQLName(), Rows: n})
	}
	return results, nil
}

// LoadTable inserts every row of t into its existing table.
func (l *Loader) LoadTable(ctx context.Context, conn Conn, t *table.Table) (int, error) {
	insert := t.SQLInsert()
	batch := &pgx.Batch{}
	total := 0
	for args, err := range t.SQLRows() {
		if err != nil {
			return total, fmt.Errorf("failed to read %s: %w", t.Filename, err)
		}
		batch.Queue(insert, args...)
		if batch.Len() >= l.batchSize {
			if err := l.flush(ctx, conn, batch, t, total); err != nil {
				return total, err
			}
			total += batch.Len()
			batch = &pgx.Batch{}
		}
	}
	if batch.Len() > 0 {
		if err := l.flush(ctx, conn, batch, t, total); err != nil {
			return total, err
		}
		total += batch.Len()
	}
	l.logger.Verbose("Inserted %d rows into %s", total, t.SQLName())
	return total, nil
}

// flush sends batch; offset is the number of rows inserted before it.
func (l *Loader) flush(ctx context.Context, conn Conn, batch *pgx.Batch, t *table.Table, offset int) error {
	results := conn.SendBatch(ctx, batch)
	for i := 0; i < batch.Len(); i++ {
		if _, err := results.Exec(); err != nil {
			results.Close()
			return fmt.Errorf("failed to insert row %d of %s: %w", offset+i+1, t.Filename, err)
		}
	}
	if err := results.Close(); err != nil {
		return fmt.Errorf("failed to complete batch insert into %s: %w", t.SQLName(), err)
	}
	return nil
}

// Connect opens a pool and pings the server, retrying transient failures.
func Connect(ctx context.Context, connString string, logger dwca.Logger) (*pgxpool.Pool, error) {
	if logger == nil {
		logger = logging.NewNullLogger()
	}
	cfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("invalid connection string: %v: %w", err, dwca.ErrInvalidConfig)
	}
	policy := retry.DefaultPolicy()
	policy.OnRetry = func(attempt int, err error, delay time.Duration) {
		logger.Warn("Connection attempt %d failed (%v), retrying in %s", attempt, err, delay)
	}
	var pool *pgxpool.Pool
	err = retry.Do(ctx, policy, func(ctx context.Context) error {
		p, err := pgxpool.NewWithConfig(ctx, cfg)
		if err != nil {
			return err
		}
		if err := p.Ping(ctx); err != nil {
			p.Close()
			return err
		}
		pool = p
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %s:%d: %v", dwca.ErrConnectionFailed, cfg.ConnConfig.Host, cfg.ConnConfig.Port, err)
	}
	return pool, nil
}
