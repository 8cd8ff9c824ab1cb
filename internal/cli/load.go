package cli

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/jackc/pgx/v5"
	"github.com/spf13/cobra"
	"github.com/vvka-141/dwca/internal/loader"
	"github.com/vvka-141/dwca/pkg/dwca"
)

var loadCmd = &cobra.Command{
	Use:   "load <archive>",
	Short: "Load an archive into PostgreSQL",
	Long: `Create one table per data file and insert every row. The core table is
keyed by its id column and every extension references it.

The connection string comes from --connection, then DWCA_CONNECTION, then
DATABASE_URL, then database.connection in dwca.yaml.

Examples:
  dwca load dataset.zip --connection postgresql://localhost/gbif
  dwca load dataset.zip --schema staging --replace`,
	Args: requireArgs("archive"),
	RunE: runLoad,
}

var loadFlags struct {
	connection string
	schema     string
	batchSize  int
	replace    bool
}

func init() {
	rootCmd.AddCommand(loadCmd)
	loadCmd.Flags().StringVarP(&loadFlags.connection, "connection", "d", "", "PostgreSQL connection string")
	loadCmd.Flags().StringVar(&loadFlags.schema, "schema", "", "Schema to create the tables in")
	loadCmd.Flags().IntVar(&loadFlags.batchSize, "batch-size", 0, "Inserts per round trip (default 500)")
	loadCmd.Flags().BoolVar(&loadFlags.replace, "replace", false, "Drop existing tables before creating them")
}

func runLoad(cmd *cobra.Command, args []string) error {
	s, err := newSession(cmd)
	if err != nil {
		return err
	}
	connString := loadFlags.connection
	if connString == "" {
		connString = s.cfg.Database.Connection
	}
	if connString == "" {
		return fmt.Errorf("no connection string: set --connection, DWCA_CONNECTION or DATABASE_URL: %w", dwca.ErrInvalidConfig)
	}
	schema := loadFlags.schema
	if schema == "" {
		schema = s.cfg.Database.Schema
	}
	batchSize := loadFlags.batchSize
	if batchSize == 0 {
		batchSize = s.cfg.Database.BatchSize
	}

	a, err := s.openArchive(args[0])
	if err != nil {
		return err
	}
	defer a.Close()

	ctx := cmd.Context()
	pool, err := loader.Connect(ctx, connString, s.logger)
	if err != nil {
		return err
	}
	defer pool.Close()
	conn, err := pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("%w: %v", dwca.ErrConnectionFailed, err)
	}
	defer conn.Release()

	if schema != "" {
		ident := pgx.Identifier{schema}.Sanitize()
		if _, err := conn.Exec(ctx, "CREATE SCHEMA IF NOT EXISTS "+ident); err != nil {
			return fmt.Errorf("failed to create schema %s: %w", schema, err)
		}
		if _, err := conn.Exec(ctx, "SET search_path TO "+ident); err != nil {
			return fmt.Errorf("failed to select schema %s: %w", schema, err)
		}
	}

	l := loader.New(
		loader.WithLogger(s.logger),
		loader.WithBatchSize(batchSize),
		loader.WithReplace(loadFlags.replace),
	)
	results, err := l.LoadArchive(ctx, conn, a)
	if err != nil {
		return err
	}
	for _, r := range results {
		s.println(s.printer.Item(fmt.Sprintf("%s: %s rows", r.Table, humanize.Comma(int64(r.Rows)))))
	}
	s.println(s.printer.Success(fmt.Sprintf("Loaded %s", args[0])))
	return nil
}
