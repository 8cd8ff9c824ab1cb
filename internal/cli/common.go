package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/vvka-141/dwca/internal/archive"
	"github.com/vvka-141/dwca/internal/bulk"
	"github.com/vvka-141/dwca/internal/config"
	"github.com/vvka-141/dwca/internal/files/filesystem"
	"github.com/vvka-141/dwca/internal/logging"
	"github.com/vvka-141/dwca/internal/taxon"
	"github.com/vvka-141/dwca/internal/tui"
	"github.com/vvka-141/dwca/pkg/dwca"
)

// session carries what every command needs: the resolved configuration, a
// logger writing to the command's stderr and a printer for its stdout.
type session struct {
	cmd     *cobra.Command
	cfg     *config.ProjectConfig
	logger  dwca.Logger
	printer tui.Printer
}

func newSession(cmd *cobra.Command) (*session, error) {
	dir, err := cmd.Flags().GetString("config")
	if err != nil {
		dir = "."
	}
	cfg, err := config.Resolve(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", config.ConfigFileName, err)
	}
	if lazy, err := cmd.Flags().GetBool("lazy"); err == nil && lazy {
		cfg.Archive.Lazy = true
	}

	verbose := getVerboseFlag(cmd)
	var logger dwca.Logger
	if w := cmd.ErrOrStderr(); w == os.Stderr {
		logger = logging.NewConsoleLogger(verbose)
	} else {
		logger = logging.NewWriterLogger(w, verbose)
	}
	return &session{
		cmd:     cmd,
		cfg:     cfg,
		logger:  logger,
		printer: tui.NewPrinter(tui.DetectMode(cmd.OutOrStdout())),
	}, nil
}

// println writes one line to the command's stdout.
func (s *session) println(a ...any) {
	fmt.Fprintln(s.cmd.OutOrStdout(), a...)
}

func (s *session) archiveOptions() []archive.Option {
	opts := []archive.Option{
		archive.WithLogger(s.logger),
		archive.WithKeyFilter(bulk.New(nil)),
		archive.WithLazy(s.cfg.Archive.Lazy),
		archive.WithMetadataName(s.cfg.Archive.Metadata),
	}
	if s.cfg.Archive.Encoding != "" {
		opts = append(opts, archive.WithEncoding(s.cfg.Archive.Encoding))
	}
	if s.cfg.Archive.TempDir != "" {
		opts = append(opts, archive.WithTempDir(s.cfg.Archive.TempDir))
	}
	return opts
}

// openArchive reads a ZIP file or an unpacked directory.
func (s *session) openArchive(path string) (*archive.Archive, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to access %s: %w", path, err)
	}
	s.logger.Verbose("Opening %s", path)
	if info.IsDir() {
		return archive.OpenDir(filesystem.NewOSFileSystem(), path, s.archiveOptions()...)
	}
	return archive.Open(path, s.archiveOptions()...)
}

// saveArchive writes a ZIP file when path ends in .zip and an unpacked
// directory otherwise.
func (s *session) saveArchive(a *archive.Archive, path string) error {
	s.logger.Verbose("Writing %s", path)
	if strings.EqualFold(filepath.Ext(path), ".zip") {
		return a.Save(path)
	}
	return a.SaveDir(filesystem.NewOSFileSystem(), path)
}

// taxonomy indexes the core of a with the configured column names.
func (s *session) taxonomy(a *archive.Archive) (*taxon.Taxonomy, error) {
	if a.Core() == nil {
		return nil, errors.New("archive has no core table")
	}
	cols := taxon.DefaultColumns()
	c := s.cfg.Taxonomy.Columns
	for _, o := range []struct {
		dst *string
		src string
	}{
		{&cols.ID, c.ID},
		{&cols.Parent, c.Parent},
		{&cols.Accepted, c.Accepted},
		{&cols.Name, c.Name},
		{&cols.Rank, c.Rank},
	} {
		if o.src != "" {
			*o.dst = o.src
		}
	}
	return taxon.New(a.Core(), taxon.WithColumns(cols), taxon.WithLogger(s.logger))
}
