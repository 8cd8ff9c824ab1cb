package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/vvka-141/dwca/internal/loader"
)

var sqlCmd = &cobra.Command{
	Use:   "sql <archive>",
	Short: "Print the PostgreSQL schema of an archive",
	Long: `Print CREATE TABLE statements for the core and every extension. The core is
keyed by its id column and each extension references it.

Examples:
  dwca sql dataset.zip
  dwca sql dataset.zip --output schema.sql`,
	Args: requireArgs("archive"),
	RunE: runSQL,
}

var sqlFlags struct {
	output string
}

func init() {
	rootCmd.AddCommand(sqlCmd)
	sqlCmd.Flags().StringVarP(&sqlFlags.output, "output", "o", "", "Write the schema to a file instead of stdout")
}

func runSQL(cmd *cobra.Command, args []string) error {
	s, err := newSession(cmd)
	if err != nil {
		return err
	}
	a, err := s.openArchive(args[0])
	if err != nil {
		return err
	}
	defer a.Close()

	script, err := loader.Script(a)
	if err != nil {
		return err
	}
	if sqlFlags.output == "" {
		fmt.Fprint(cmd.OutOrStdout(), script)
		return nil
	}
	if err := os.WriteFile(sqlFlags.output, []byte(script), 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", sqlFlags.output, err)
	}
	s.logger.Info("Wrote schema to %s", sqlFlags.output)
	return nil
}
