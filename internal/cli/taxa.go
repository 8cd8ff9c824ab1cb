package cli

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"github.com/vvka-141/dwca/internal/taxon"
)

var taxaCmd = &cobra.Command{
	Use:   "taxa",
	Short: "Query and filter taxon cores",
	Long: `Taxon commands resolve the classification and synonymy of a Taxon core.

Available commands:
  parents   List the transitive parents of taxa
  synonyms  List the synonyms of taxa
  filter    Keep the taxa of a rank, with their synonyms and parents

Column names default to taxonID, parentNameUsageID, acceptedNameUsageID,
scientificName and taxonRank and can be changed under taxonomy.columns in
dwca.yaml.`,
}

var taxaParentsCmd = &cobra.Command{
	Use:   "parents <archive> <taxon-id>...",
	Short: "List the transitive parents of taxa, nearest first",
	Args:  cobra.MinimumNArgs(2),
	RunE:  runTaxaParents,
}

var taxaSynonymsCmd = &cobra.Command{
	Use:   "synonyms <archive> <taxon-id>...",
	Short: "List the synonyms of taxa",
	Long: `List the accepted taxa of the given ids together with all their synonyms,
in table order. A synonym resolves through its accepted name.`,
	Args: cobra.MinimumNArgs(2),
	RunE: runTaxaSynonyms,
}

var taxaFilterCmd = &cobra.Command{
	Use:   "filter <archive> <output>",
	Short: "Keep the taxa of a rank with their synonyms and parents",
	Long: `Keep the taxa whose rank column holds one of the given values, together
with their synonyms, their parents and the parents' synonyms. Extension rows
of removed taxa are dropped.

Examples:
  # Keep the genus Larus and everything needed to place it
  dwca taxa filter checklist.zip larus.zip --field genus --rank genus --value Larus

  # Tolerate one typo per name
  dwca taxa filter checklist.zip gulls.zip --field genus --rank genus --value Larrus --fuzzy 1`,
	Args: requireArgs("archive", "output"),
	RunE: runTaxaFilter,
}

var taxaFlags struct {
	names     bool
	field     string
	rank      string
	values    []string
	fuzzy     int
	exactRank bool
}

func init() {
	rootCmd.AddCommand(taxaCmd)
	taxaCmd.AddCommand(taxaParentsCmd, taxaSynonymsCmd, taxaFilterCmd)

	taxaSynonymsCmd.Flags().BoolVar(&taxaFlags.names, "names", false, "Print scientific names instead of ids")

	taxaFilterCmd.Flags().StringVar(&taxaFlags.field, "field", "", "Column holding the rank values, e.g. genus")
	taxaFilterCmd.Flags().StringVar(&taxaFlags.rank, "rank", "", "Rank of the seed taxa, e.g. genus")
	taxaFilterCmd.Flags().StringSliceVar(&taxaFlags.values, "value", nil, "Value to keep (repeatable)")
	taxaFilterCmd.Flags().IntVar(&taxaFlags.fuzzy, "fuzzy", -1, "Maximum edit distance for value matches (default from dwca.yaml, else exact)")
	taxaFilterCmd.Flags().BoolVar(&taxaFlags.exactRank, "exact-rank", true, "Require seed taxa to be of --rank")
	_ = taxaFilterCmd.MarkFlagRequired("field")
	_ = taxaFilterCmd.MarkFlagRequired("rank")
	_ = taxaFilterCmd.MarkFlagRequired("value")
}

func runTaxaParents(cmd *cobra.Command, args []string) error {
	return withTaxonomy(cmd, args[0], func(s *session, tx *taxon.Taxonomy) error {
		for _, id := range tx.Parents(args[1:]) {
			s.println(id)
		}
		return nil
	})
}

func runTaxaSynonyms(cmd *cobra.Command, args []string) error {
	return withTaxonomy(cmd, args[0], func(s *session, tx *taxon.Taxonomy) error {
		for _, id := range tx.Synonyms(args[1:], taxaFlags.names) {
			s.println(id)
		}
		return nil
	})
}

func runTaxaFilter(cmd *cobra.Command, args []string) error {
	s, err := newSession(cmd)
	if err != nil {
		return err
	}
	a, err := s.openArchive(args[0])
	if err != nil {
		return err
	}
	defer a.Close()
	tx, err := s.taxonomy(a)
	if err != nil {
		return err
	}

	opts := []taxon.FilterOption{taxon.ExactRank(taxaFlags.exactRank)}
	distance := taxaFlags.fuzzy
	if distance < 0 && s.cfg.Taxonomy.FuzzyDistance > 0 {
		distance = s.cfg.Taxonomy.FuzzyDistance
	}
	if distance >= 0 {
		opts = append(opts, taxon.Fuzzy(distance))
	}
	if err := tx.FilterByRank(taxaFlags.field, taxaFlags.rank, taxaFlags.values, opts...); err != nil {
		return err
	}
	// Re-setting the filtered core cascades the removal into the extensions.
	if err := a.SetCore(tx.Table()); err != nil {
		return err
	}
	if err := s.saveArchive(a, args[1]); err != nil {
		return err
	}
	n, err := tx.Table().Len()
	if err != nil {
		return err
	}
	s.println(s.printer.Success(fmt.Sprintf("Wrote %s with %s taxa", args[1], humanize.Comma(int64(n)))))
	return nil
}

func withTaxonomy(cmd *cobra.Command, path string, fn func(*session, *taxon.Taxonomy) error) error {
	s, err := newSession(cmd)
	if err != nil {
		return err
	}
	a, err := s.openArchive(path)
	if err != nil {
		return err
	}
	defer a.Close()
	tx, err := s.taxonomy(a)
	if err != nil {
		return err
	}
	return fn(s, tx)
}
