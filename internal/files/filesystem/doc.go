// Package filesystem abstracts the directory an unpacked archive lives in.
//
// OSFileSystem reads and writes real files; MemoryFileSystem keeps files in
// a map and is used by tests that should not touch the disk.
//
//	fsys := filesystem.NewMemoryFileSystem("/data")
//	fsys.AddFile("meta.xml", meta)
//	a, err := archive.OpenDir(fsys, "/data")
package filesystem
