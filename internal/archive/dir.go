package archive

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"path/filepath"

	"github.com/vvka-141/dwca/internal/files/filesystem"
	"github.com/vvka-141/dwca/pkg/dwca"
)

// OpenDir reads an unpacked archive: a directory holding meta.xml and the
// files it names.
func OpenDir(fsys filesystem.Provider, dir string, opts ...Option) (*Archive, error) {
	join := func(name string) string {
		return filepath.Join(dir, filepath.FromSlash(name))
	}
	info, err := fsys.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to access %s: %w", dir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s is not a directory", dir)
	}
	meta, err := fsys.ReadFile(join(dwca.DefaultMetaFile))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%s contains no %s: %w", dir, dwca.DefaultMetaFile, dwca.ErrStructural)
		}
		return nil, err
	}
	loadEML := func(name string) ([]byte, error) {
		if err := checkLocation(name); err != nil {
			return nil, err
		}
		data, err := fsys.ReadFile(join(name))
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return data, err
	}
	open := func(name string) (io.ReadCloser, error) {
		if err := checkLocation(name); err != nil {
			return nil, err
		}
		data, err := fsys.ReadFile(join(name))
		if err != nil {
			return nil, err
		}
		return io.NopCloser(bytes.NewReader(data)), nil
	}
	return assemble(meta, loadEML, open, opts...)
}

// SaveDir writes the archive unpacked into dir.
func (a *Archive) SaveDir(fsys filesystem.Provider, dir string) error {
	return a.write(func(name string, write func(io.Writer) error) error {
		var buf bytes.Buffer
		if err := write(&buf); err != nil {
			return err
		}
		if err := fsys.WriteFile(filepath.Join(dir, filepath.FromSlash(name)), buf.Bytes()); err != nil {
			return fmt.Errorf("failed to write %s: %w", name, err)
		}
		return nil
	})
}
