package archive

import (
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/zip"
	"github.com/vvka-141/dwca/pkg/dwca"
)

// Open reads a ZIP archive from disk.
func Open(filename string, opts ...Option) (*Archive, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open archive: %w", err)
	}
	defer f.Close()
	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat archive: %w", err)
	}
	return OpenReader(f, info.Size(), opts...)
}

// OpenReader reads a ZIP archive. meta.xml may sit at the root of the
// container or inside a single top-level directory; data file locations are
// resolved relative to it.
func OpenReader(r io.ReaderAt, size int64, opts ...Option) (*Archive, error) {
	zr, err := zip.NewReader(r, size)
	if err != nil {
		return nil, fmt.Errorf("not a ZIP archive: %v: %w", err, dwca.ErrStructural)
	}
	entries := make(map[string]*zip.File, len(zr.File))
	dir := ""
	found := false
	for _, f := range zr.File {
		if f.FileInfo().IsDir() {
			continue
		}
		entries[f.Name] = f
		if path.Base(f.Name) != dwca.DefaultMetaFile {
			continue
		}
		d := path.Dir(f.Name)
		if d == "." {
			d = ""
		}
		if !found || depth(d) < depth(dir) {
			dir, found = d, true
		}
	}
	if !found {
		return nil, fmt.Errorf("archive contains no %s: %w", dwca.DefaultMetaFile, dwca.ErrStructural)
	}

	open := func(name string) (io.ReadCloser, error) {
		f, ok := entries[path.Join(dir, name)]
		if !ok {
			return nil, fmt.Errorf("file %s not found in archive", name)
		}
		return f.Open()
	}
	meta, err := readAll(open, dwca.DefaultMetaFile)
	if err != nil {
		return nil, err
	}
	loadEML := func(name string) ([]byte, error) {
		if _, ok := entries[path.Join(dir, name)]; !ok {
			return nil, nil
		}
		return readAll(open, name)
	}
	return assemble(meta, loadEML, open, opts...)
}

func depth(dir string) int {
	if dir == "" {
		return 0
	}
	return strings.Count(dir, "/") + 1
}

func readAll(open opener, name string) ([]byte, error) {
	rc, err := open(name)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", name, err)
	}
	return data, nil
}

// Save writes the archive to a ZIP file. The file is replaced only after
// the whole archive has been written.
func (a *Archive) Save(filename string) error {
	tmp, err := os.CreateTemp(filepath.Dir(filename), ".dwca-*.zip")
	if err != nil {
		return fmt.Errorf("failed to create archive: %w", err)
	}
	defer os.Remove(tmp.Name())
	if err := a.WriteZip(tmp); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close archive: %w", err)
	}
	if err := os.Rename(tmp.Name(), filename); err != nil {
		return fmt.Errorf("failed to move archive into place: %w", err)
	}
	return nil
}

// WriteZip writes the archive as a ZIP container to w. Entries are
// deflated; data files stream straight from their tables.
func (a *Archive) WriteZip(w io.Writer) error {
	zw := zip.NewWriter(w)
	err := a.write(func(name string, write func(io.Writer) error) error {
		ew, err := zw.CreateHeader(&zip.FileHeader{Name: name, Method: zip.Deflate})
		if err != nil {
			return fmt.Errorf("failed to add %s: %w", name, err)
		}
		return write(ew)
	})
	if err != nil {
		return err
	}
	return zw.Close()
}
