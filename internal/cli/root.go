package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "dwca",
	Short: "Darwin Core Archive toolkit",
	Long: `dwca reads, checks, converts and merges Darwin Core Archives.

An archive is a core data file, zero or more extension files keyed to it,
a meta.xml descriptor and an optional EML metadata document. Extension rows
without a matching core row are dropped whenever an archive is assembled.

Archives can be ZIP files or unpacked directories. Settings are read from
dwca.yaml in the --config directory; .env, DWCA_CONNECTION and DATABASE_URL
override the database connection.

Exit Codes:
  0  - Success
  1  - General error
  2  - CLI usage error (invalid arguments or flags)
  3  - Panic or unexpected system error
  10 - Invalid configuration
  11 - Database connection failed
  12 - Malformed descriptor or metadata document
  13 - A cell could not be converted to its declared type`,
	SilenceUsage: true,
}

// Execute runs the root command. Interrupts cancel the command context.
func Execute() error {
	if len(os.Args) > 1 && os.Args[1] == "--version" {
		printVersionInfo(os.Stdout)
		return nil
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().Bool("help", false, "Help for dwca")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose output for all commands")
	rootCmd.PersistentFlags().StringP("config", "c", ".", "Directory holding dwca.yaml and .env")
	rootCmd.PersistentFlags().Bool("lazy", false, "Keep table rows in temporary files instead of memory")
}

// getVerboseFlag safely retrieves the verbose flag value
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "Warning: Failed to get verbose flag: %v\n", err)
		return false
	}
	return verbose
}
