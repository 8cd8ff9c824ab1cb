package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"github.com/vvka-141/dwca/internal/archive"
	"github.com/vvka-141/dwca/internal/bulk"
	"github.com/vvka-141/dwca/internal/checksum"
	"github.com/vvka-141/dwca/internal/table"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect <archive>",
	Short: "Summarize an archive and check its metadata",
	Long: `Print the identity, tables, row counts and content checksums of an archive
and validate its EML document. A table checksum covers the cell text only, so
it is the same for a ZIP archive and its unpacked or re-encoded copies.

Examples:
  # Human-readable summary
  dwca inspect dataset.zip

  # Machine-readable summary
  dwca inspect ./dataset --json

  # Null and distinct value counts per column
  dwca inspect dataset.zip --columns`,
	Args: requireArgs("archive"),
	RunE: runInspect,
}

var inspectFlags struct {
	json    bool
	columns bool
}

func init() {
	rootCmd.AddCommand(inspectCmd)
	inspectCmd.Flags().BoolVar(&inspectFlags.json, "json", false, "Output the summary as JSON")
	inspectCmd.Flags().BoolVar(&inspectFlags.columns, "columns", false, "Count nulls and distinct values of every column")
}

type tableSummary struct {
	File     string   `json:"file"`
	RowType  string   `json:"row_type"`
	Core     bool     `json:"core"`
	Rows     int      `json:"rows"`
	Key      string   `json:"key"`
	Columns  []string `json:"columns"`
	Checksum string   `json:"checksum"`

	ColumnStats []bulk.ColumnStats `json:"column_stats,omitempty"`
}

type archiveSummary struct {
	Path     string         `json:"path"`
	Size     int64          `json:"size,omitempty"`
	ID       string         `json:"id,omitempty"`
	Title    string         `json:"title,omitempty"`
	Lang     string         `json:"lang,omitempty"`
	Tables   []tableSummary `json:"tables"`
	Valid    bool           `json:"valid"`
	Errors   []string       `json:"errors,omitempty"`
	Warnings []string       `json:"warnings,omitempty"`
}

// summarize describes a and its tables. stats, when not nil, adds the
// per-column counts.
func summarize(path string, a *archive.Archive, stats *bulk.Arrow) (archiveSummary, error) {
	sum := archiveSummary{Path: path, ID: a.ID, Lang: a.Lang, Valid: true}
	if info, err := os.Stat(path); err == nil && !info.IsDir() {
		sum.Size = info.Size()
	}
	for _, t := range append([]*table.Table{a.Core()}, a.Extensions()...) {
		n, err := t.Len()
		if err != nil {
			return sum, err
		}
		digest, err := checksum.New().Table(t)
		if err != nil {
			return sum, err
		}
		ts := tableSummary{
			File:     t.Filename,
			RowType:  t.RowType,
			Core:     t.Core,
			Rows:     n,
			Key:      t.KeyColumn(),
			Columns:  t.Schema().Names(),
			Checksum: digest,
		}
		if stats != nil {
			if ts.ColumnStats, err = stats.Stats(t); err != nil {
				return sum, err
			}
		}
		sum.Tables = append(sum.Tables, ts)
	}
	if a.EML == nil {
		sum.Warnings = append(sum.Warnings, "archive has no metadata document")
		return sum, nil
	}
	sum.Title = a.EML.Title()
	result := a.EML.Validate()
	sum.Valid = result.Valid
	sum.Errors = result.Errors
	sum.Warnings = append(sum.Warnings, result.Warnings...)
	return sum, nil
}

func runInspect(cmd *cobra.Command, args []string) error {
	s, err := newSession(cmd)
	if err != nil {
		return err
	}
	a, err := s.openArchive(args[0])
	if err != nil {
		return err
	}
	defer a.Close()

	var stats *bulk.Arrow
	if inspectFlags.columns {
		stats = bulk.New(nil)
	}
	sum, err := summarize(args[0], a, stats)
	if err != nil {
		return err
	}

	if inspectFlags.json {
		jsonBytes, err := json.MarshalIndent(sum, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal JSON: %w", err)
		}
		s.println(string(jsonBytes))
	} else {
		printSummary(s, sum)
	}

	if !sum.Valid {
		return fmt.Errorf("metadata validation failed: %s", strings.Join(sum.Errors, "; "))
	}
	return nil
}

func printSummary(s *session, sum archiveSummary) {
	p := s.printer
	var b strings.Builder
	fmt.Fprintln(&b, p.Title(sum.Path))
	if sum.Title != "" {
		fmt.Fprintln(&b, p.Field("Title", sum.Title))
	}
	if sum.ID != "" {
		fmt.Fprintln(&b, p.Field("Package", sum.ID))
	}
	if sum.Lang != "" {
		fmt.Fprintln(&b, p.Field("Language", sum.Lang))
	}
	if sum.Size > 0 {
		fmt.Fprintln(&b, p.Field("Size", humanize.Bytes(uint64(sum.Size))))
	}
	for _, t := range sum.Tables {
		role := "extension"
		if t.Core {
			role = "core"
		}
		fmt.Fprintln(&b, p.Item(fmt.Sprintf("%s (%s, %s) %s rows, %d columns keyed by %s",
			t.File, role, t.RowType, humanize.Comma(int64(t.Rows)), len(t.Columns), t.Key)))
		for _, c := range t.ColumnStats {
			fmt.Fprintln(&b, p.Item(fmt.Sprintf("  %s (%s) %s nulls, %s distinct",
				c.Name, c.Type, humanize.Comma(int64(c.Nulls)), humanize.Comma(int64(c.Distinct)))))
		}
	}
	s.println(p.Box(strings.TrimRight(b.String(), "\n")))

	for _, w := range sum.Warnings {
		s.println(p.Warning(w))
	}
	for _, e := range sum.Errors {
		s.println(p.Error(e))
	}
	if sum.Valid {
		s.println(p.Success("Archive is valid"))
	}
}
