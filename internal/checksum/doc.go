// Package checksum provides content hashing for archive data files.
//
// Two digests are offered:
//
//   - Raw checksum: Hash of the exact file content (detects all changes)
//   - Table checksum: Hash of the cell text of every row, independent of the
//     dialect, encoding and enclosure the file was written with
//
// The table checksum identifies the same data across a ZIP archive and its
// unpacked or re-encoded copies.
//
// # Example Usage
//
//	calculator := checksum.New()
//	rawChecksum := calculator.CalculateRaw(fileContent)
//	tableChecksum, err := calculator.Table(archive.Core())
//
// # Thread Safety
//
// SHA256 is safe for concurrent use by multiple goroutines.
package checksum
