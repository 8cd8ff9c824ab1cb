package filesystem

import (
	"io/fs"
)

// FileInfo is an alias for fs.FileInfo from the standard library.
type FileInfo = fs.FileInfo

// Provider reads and writes the files of one directory tree.
type Provider interface {
	// ReadFile reads the file at path.
	ReadFile(path string) ([]byte, error)

	// WriteFile creates or replaces the file at path, creating parent
	// directories as needed.
	WriteFile(path string, data []byte) error

	// ReadDir lists the entries directly under path, sorted by name.
	ReadDir(path string) ([]FileInfo, error)

	// Stat returns file information for the given path.
	Stat(path string) (FileInfo, error)
}
