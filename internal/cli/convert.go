package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/vvka-141/dwca/internal/eml"
)

var convertCmd = &cobra.Command{
	Use:   "convert <input> <output>",
	Short: "Rewrite an archive as a ZIP file or a directory",
	Long: `Read an archive and write it back out. An output ending in .zip is written
as a ZIP file; any other output is written as an unpacked directory.

Extension rows without a core row are dropped on the way through.

Examples:
  # Unpack
  dwca convert dataset.zip ./dataset

  # Pack, generating metadata when the archive has none
  dwca convert ./dataset dataset.zip --title "Birds of the Valley"`,
	Args: requireArgs("input", "output"),
	RunE: runConvert,
}

var convertFlags struct {
	title string
}

func init() {
	rootCmd.AddCommand(convertCmd)
	convertCmd.Flags().StringVar(&convertFlags.title, "title", "", "Generate an EML document with this title when the archive has none")
}

func runConvert(cmd *cobra.Command, args []string) error {
	s, err := newSession(cmd)
	if err != nil {
		return err
	}
	a, err := s.openArchive(args[0])
	if err != nil {
		return err
	}
	defer a.Close()

	if a.EML == nil && convertFlags.title != "" {
		a.EML = eml.Generate(convertFlags.title)
		a.ID = a.EML.PackageID
		a.Lang = a.EML.Lang
		s.logger.Info("Generated metadata document %s for %q", a.MetadataName, convertFlags.title)
	}
	if err := s.saveArchive(a, args[1]); err != nil {
		return err
	}
	s.println(s.printer.Success(fmt.Sprintf("Wrote %s", args[1])))
	return nil
}
