// Package archive assembles a core table, its extensions and the EML
// document into a Darwin Core Archive, and reads and writes archives as
// byte sets, ZIP files or unpacked directories.
package archive

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"slices"

	"github.com/vvka-141/dwca/internal/descriptor"
	"github.com/vvka-141/dwca/internal/eml"
	"github.com/vvka-141/dwca/internal/logging"
	"github.com/vvka-141/dwca/internal/table"
	"github.com/vvka-141/dwca/internal/term"
	"github.com/vvka-141/dwca/pkg/dwca"
)

// Archive is one core table with zero or more extensions and an optional
// metadata document. Every extension row has a key value present in the
// core's key column.
type Archive struct {
	ID   string
	Lang string
	EML  *eml.Document

	// MetadataName is the file name the EML document is stored under.
	MetadataName string

	core       *table.Table
	extensions []*table.Table

	registry  *term.Registry
	keyFilter table.KeyFilter
	logger    dwca.Logger
	lazy      bool
	tempDir   string
	encoding  string
}

// Option configures an Archive.
type Option func(*Archive)

// WithRegistry sets the registry every table of the archive resolves terms
// with.
func WithRegistry(r *term.Registry) Option {
	return func(a *Archive) { a.registry = r }
}

// WithKeyFilter sets the bulk capability used by the cascade filter.
func WithKeyFilter(kf table.KeyFilter) Option {
	return func(a *Archive) { a.keyFilter = kf }
}

// WithLogger sets the logger.
func WithLogger(l dwca.Logger) Option {
	return func(a *Archive) { a.logger = l }
}

// WithLazy makes tables read from an archive keep their rows in temporary
// files instead of memory.
func WithLazy(lazy bool) Option {
	return func(a *Archive) { a.lazy = lazy }
}

// WithTempDir sets the directory lazy tables use.
func WithTempDir(dir string) Option {
	return func(a *Archive) { a.tempDir = dir }
}

// WithEncoding sets the encoding assumed for data files whose descriptor
// entry has no encoding attribute.
func WithEncoding(name string) Option {
	return func(a *Archive) { a.encoding = name }
}

// WithMetadataName sets the file name the EML document is stored under when
// the descriptor does not name one.
func WithMetadataName(name string) Option {
	return func(a *Archive) {
		if name != "" {
			a.MetadataName = name
		}
	}
}

// New creates an empty archive.
func New(opts ...Option) *Archive {
	a := &Archive{MetadataName: dwca.DefaultMetadataFile}
	for _, opt := range opts {
		opt(a)
	}
	if a.registry == nil {
		a.registry = term.DefaultRegistry()
	}
	if a.logger == nil {
		a.logger = logging.NewNullLogger()
	}
	return a
}

// TableOptions returns the options tables of this archive are built with.
func (a *Archive) TableOptions() []table.Option {
	opts := []table.Option{table.WithRegistry(a.registry), table.WithLogger(a.logger)}
	if a.tempDir != "" {
		opts = append(opts, table.WithTempDir(a.tempDir))
	}
	return opts
}

// Registry returns the archive's term registry.
func (a *Archive) Registry() *term.Registry {
	return a.registry
}

// Core returns the core table, or nil.
func (a *Archive) Core() *table.Table {
	return a.core
}

// Extensions returns the extension tables in declared order.
func (a *Archive) Extensions() []*table.Table {
	return slices.Clone(a.extensions)
}

// Extension returns the first extension with the given row type.
func (a *Archive) Extension(rowType string) (*table.Table, bool) {
	for _, ext := range a.extensions {
		if ext.RowType == rowType {
			return ext, true
		}
	}
	return nil, false
}

// SetCore replaces the core and drops every extension row whose key is not
// in the new core's key column. The previous core is not closed.
func (a *Archive) SetCore(t *table.Table) error {
	if !t.Core {
		return fmt.Errorf("%s is an extension table and cannot be the core", t.RowType)
	}
	a.core = t
	keys, err := t.Keys(t.KeyColumn())
	if err != nil {
		return fmt.Errorf("failed to read core keys: %w", err)
	}
	for _, ext := range a.extensions {
		if err := a.cascade(ext, keys); err != nil {
			return err
		}
	}
	return nil
}

// AddExtension appends an extension, filtered against the current core.
func (a *Archive) AddExtension(t *table.Table) error {
	if t.Core {
		return fmt.Errorf("%s is a core table and cannot be an extension", t.RowType)
	}
	if a.core != nil {
		keys, err := a.core.Keys(a.core.KeyColumn())
		if err != nil {
			return fmt.Errorf("failed to read core keys: %w", err)
		}
		if err := a.cascade(t, keys); err != nil {
			return err
		}
	}
	a.extensions = append(a.extensions, t)
	return nil
}

func (a *Archive) cascade(ext *table.Table, keys []string) error {
	before, err := ext.Len()
	if err != nil {
		return err
	}
	if err := ext.KeepKeys(ext.KeyColumn(), keys, a.keyFilter); err != nil {
		return fmt.Errorf("failed to filter %s to the core: %w", ext.Filename, err)
	}
	after, err := ext.Len()
	if err != nil {
		return err
	}
	if after < before {
		a.logger.Verbose("Dropped %d of %d rows of %s without a core row", before-after, before, ext.Filename)
	}
	ext.SetPrimaryTable(a.core)
	return nil
}

// Close closes every table, removing their temporary files.
func (a *Archive) Close() error {
	var errs []error
	if a.core != nil {
		errs = append(errs, a.core.Close())
	}
	for _, ext := range a.extensions {
		errs = append(errs, ext.Close())
	}
	return errors.Join(errs...)
}

// opener returns the content of a file of the archive by location.
type opener func(name string) (io.ReadCloser, error)

// FromArchiveBytes assembles an archive from a descriptor, an optional EML
// document and the data files keyed by location.
func FromArchiveBytes(meta, emlData []byte, files map[string][]byte, opts ...Option) (*Archive, error) {
	open := func(name string) (io.ReadCloser, error) {
		data, ok := files[name]
		if !ok {
			return nil, fmt.Errorf("file %s not found", name)
		}
		return io.NopCloser(bytes.NewReader(data)), nil
	}
	return assemble(meta, func(string) ([]byte, error) { return emlData, nil }, open, opts...)
}

// assemble parses the descriptor, loads the metadata document it names and
// reads every data file through open. loadEML returns nil when the document
// is absent.
func assemble(meta []byte, loadEML func(name string) ([]byte, error), open opener, opts ...Option) (*Archive, error) {
	desc, err := descriptor.Parse(meta)
	if err != nil {
		return nil, err
	}
	a := New(opts...)
	if desc.Metadata != "" {
		a.MetadataName = desc.Metadata
	}
	if err := checkLocation(a.MetadataName); err != nil {
		return nil, err
	}
	emlData, err := loadEML(a.MetadataName)
	if err != nil {
		return nil, err
	}
	if len(emlData) == 0 && desc.Metadata != "" {
		a.logger.Warn("Descriptor names metadata document %s but the archive has none", desc.Metadata)
	}
	if len(emlData) > 0 {
		doc, err := eml.Parse(emlData)
		if err != nil {
			return nil, err
		}
		a.EML = doc
		a.ID = doc.PackageID
		a.Lang = doc.Lang
	}

	core, err := a.readFile(desc.Core.MustContent(), true, open)
	if err != nil {
		return nil, err
	}
	// Extensions are read in full before the cascade runs.
	for _, n := range desc.Extensions {
		ext, err := a.readFile(n.MustContent(), false, open)
		if err != nil {
			core.Close()
			a.Close()
			return nil, err
		}
		a.extensions = append(a.extensions, ext)
	}
	if err := a.SetCore(core); err != nil {
		a.Close()
		return nil, err
	}
	return a, nil
}

func (a *Archive) readFile(f descriptor.File, core bool, open opener) (*table.Table, error) {
	if f.Encoding == "" {
		f.Encoding = a.encoding
	}
	t, err := f.Table(core, a.TableOptions()...)
	if err != nil {
		return nil, err
	}
	a.logger.Verbose("Reading %s", f)
	rc, err := open(f.Location())
	if err != nil {
		return nil, fmt.Errorf("%s: %w", f.RowType, err)
	}
	defer rc.Close()
	if a.lazy {
		err = t.ReadLazy(rc)
	} else {
		err = t.Read(rc)
	}
	if err != nil {
		t.Close()
		return nil, err
	}
	return t, nil
}

// Bytes is the serialized form of an archive.
type Bytes struct {
	MetaName string
	Meta     []byte
	EMLName  string
	EML      []byte // nil without a metadata document
	Data     map[string][]byte
}

// Descriptor describes the core and extensions as meta.xml.
func (a *Archive) Descriptor() (*descriptor.Archive, error) {
	if a.core == nil {
		return nil, fmt.Errorf("archive has no core: %w", dwca.ErrStructural)
	}
	metadata := ""
	if a.EML != nil {
		metadata = a.MetadataName
	}
	exts := make([]descriptor.File, 0, len(a.extensions))
	for _, ext := range a.extensions {
		exts = append(exts, descriptor.FromTable(ext))
	}
	return descriptor.New(metadata, descriptor.FromTable(a.core), exts...), nil
}

// ToArchiveBytes serializes the descriptor, the EML document and every data
// file.
func (a *Archive) ToArchiveBytes() (*Bytes, error) {
	out := &Bytes{MetaName: dwca.DefaultMetaFile, Data: make(map[string][]byte)}
	err := a.write(func(name string, write func(io.Writer) error) error {
		var buf bytes.Buffer
		if err := write(&buf); err != nil {
			return err
		}
		switch {
		case name == dwca.DefaultMetaFile:
			out.Meta = buf.Bytes()
		case a.EML != nil && name == a.MetadataName:
			out.EMLName = name
			out.EML = buf.Bytes()
		default:
			out.Data[name] = buf.Bytes()
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// write hands every file of the archive to emit: meta.xml first, then the
// EML document, then the data files in declared order.
func (a *Archive) write(emit func(name string, write func(io.Writer) error) error) error {
	desc, err := a.Descriptor()
	if err != nil {
		return err
	}
	tables := append([]*table.Table{a.core}, a.extensions...)
	if a.EML != nil {
		if err := checkLocation(a.MetadataName); err != nil {
			return err
		}
	}
	for _, t := range tables {
		if err := checkLocation(t.Filename); err != nil {
			return err
		}
	}
	meta, err := desc.Marshal()
	if err != nil {
		return err
	}
	seen := map[string]bool{dwca.DefaultMetaFile: true}
	if err := emit(dwca.DefaultMetaFile, writeBytes(meta)); err != nil {
		return err
	}
	if a.EML != nil {
		doc, err := a.EML.Marshal()
		if err != nil {
			return err
		}
		seen[a.MetadataName] = true
		if err := emit(a.MetadataName, writeBytes(doc)); err != nil {
			return err
		}
	}
	for _, t := range tables {
		if seen[t.Filename] {
			return fmt.Errorf("file name %s is used twice in the archive: %w", t.Filename, dwca.ErrStructural)
		}
		seen[t.Filename] = true
		if err := emit(t.Filename, t.Write); err != nil {
			return fmt.Errorf("failed to write %s: %w", t.Filename, err)
		}
	}
	return nil
}

// checkLocation rejects file names that would resolve outside the archive
// root, such as "../x.txt" or absolute paths.
func checkLocation(name string) error {
	if !descriptor.IsLocal(name) {
		return fmt.Errorf("location %q is outside the archive: %w", name, dwca.ErrStructural)
	}
	return nil
}

func writeBytes(data []byte) func(io.Writer) error {
	return func(w io.Writer) error {
		_, err := w.Write(data)
		return err
	}
}

// Merge returns a new archive holding the rows of a followed by those of b.
// Extensions of the same row type are merged, the others are appended. The
// metadata document is taken from a, or from b when a has none. The result
// uses a's registry, logger and key filter.
func Merge(a, b *Archive) (*Archive, error) {
	if a.core == nil || b.core == nil {
		return nil, fmt.Errorf("cannot merge an archive without a core: %w", dwca.ErrStructural)
	}
	core, err := a.core.Merge(b.core)
	if err != nil {
		return nil, fmt.Errorf("failed to merge core tables: %w", err)
	}
	out := &Archive{
		ID:           a.ID,
		Lang:         a.Lang,
		EML:          a.EML,
		MetadataName: a.MetadataName,
		registry:     a.registry,
		keyFilter:    a.keyFilter,
		logger:       a.logger,
		lazy:         a.lazy,
		tempDir:      a.tempDir,
	}
	if out.EML == nil {
		out.ID, out.Lang, out.EML, out.MetadataName = b.ID, b.Lang, b.EML, b.MetadataName
	}

	fail := func(err error) (*Archive, error) {
		core.Close()
		out.Close()
		return nil, err
	}
	used := make([]bool, len(b.extensions))
	for _, ext := range a.extensions {
		j := -1
		for k, other := range b.extensions {
			if !used[k] && other.RowType == ext.RowType {
				j = k
				break
			}
		}
		var merged *table.Table
		if j >= 0 {
			used[j] = true
			merged, err = ext.Merge(b.extensions[j])
		} else {
			merged, err = ext.Clone()
		}
		if err != nil {
			return fail(fmt.Errorf("failed to merge %s: %w", ext.RowType, err))
		}
		out.extensions = append(out.extensions, merged)
	}
	for j, other := range b.extensions {
		if used[j] {
			continue
		}
		copied, err := other.Clone()
		if err != nil {
			return fail(err)
		}
		out.extensions = append(out.extensions, copied)
	}
	if err := out.SetCore(core); err != nil {
		out.Close()
		return nil, err
	}
	return out, nil
}
