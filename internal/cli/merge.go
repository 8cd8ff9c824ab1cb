package cli

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"github.com/vvka-141/dwca/internal/archive"
)

var mergeCmd = &cobra.Command{
	Use:   "merge <first> <second> <output>",
	Short: "Combine two archives with the same core row type",
	Long: `Append the rows of the second archive to the first. Cores must share a row
type; extensions of the same row type are merged and the rest carried over.
Metadata comes from the first archive, or the second when the first has none.

Examples:
  dwca merge january.zip february.zip q1.zip`,
	Args: requireArgs("first", "second", "output"),
	RunE: runMerge,
}

func init() {
	rootCmd.AddCommand(mergeCmd)
}

func runMerge(cmd *cobra.Command, args []string) error {
	s, err := newSession(cmd)
	if err != nil {
		return err
	}
	first, err := s.openArchive(args[0])
	if err != nil {
		return err
	}
	defer first.Close()
	second, err := s.openArchive(args[1])
	if err != nil {
		return err
	}
	defer second.Close()

	merged, err := archive.Merge(first, second)
	if err != nil {
		return fmt.Errorf("failed to merge %s and %s: %w", args[0], args[1], err)
	}
	defer merged.Close()

	if err := s.saveArchive(merged, args[2]); err != nil {
		return err
	}
	n, err := merged.Core().Len()
	if err != nil {
		return err
	}
	s.println(s.printer.Success(fmt.Sprintf("Wrote %s with %s core rows", args[2], humanize.Comma(int64(n)))))
	return nil
}
