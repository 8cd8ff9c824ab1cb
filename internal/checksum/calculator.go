package checksum

import (
	"crypto/sha256"
	"encoding/hex"
	"io"
	"strings"

	"github.com/vvka-141/dwca/internal/table"
)

// Calculator is an interface for computing data file checksums.
type Calculator interface {
	// CalculateRaw computes a checksum of the raw, unmodified content.
	CalculateRaw(content []byte) string

	// CalculateNormalized computes a checksum of content with line endings
	// and a leading byte order mark normalized away.
	CalculateNormalized(content []byte) string

	// Table computes a checksum of the cells of every row of t.
	Table(t *table.Table) (string, error)
}

// Separators of the table digest. Neither can appear in decoded cell text
// of a well-formed archive.
const (
	unitSeparator   = "\x1f"
	recordSeparator = "\x1e"
)

// SHA256 implements checksum calculation using SHA-256.
//
// SHA256 is a zero-size type and is safe for concurrent use by multiple goroutines.
// Using value semantics (pass by value) eliminates heap allocations.
type SHA256 struct{}

// New creates a new SHA-256 based calculator.
// Returns by value to avoid heap allocation (SHA256 is a zero-size type).
func New() SHA256 {
	return SHA256{}
}

// CalculateRaw computes SHA-256 of raw content.
func (c SHA256) CalculateRaw(content []byte) string {
	hash := sha256.Sum256(content)
	return hex.EncodeToString(hash[:])
}

// CalculateNormalized computes SHA-256 of normalized content.
func (c SHA256) CalculateNormalized(content []byte) string {
	normalized := c.normalize(string(content))
	hash := sha256.Sum256([]byte(normalized))
	return hex.EncodeToString(hash[:])
}

// normalize drops a UTF-8 byte order mark, turns CRLF and CR line endings
// into LF and removes trailing line endings.
func (c SHA256) normalize(content string) string {
	content = strings.TrimPrefix(content, "\ufeff")
	content = strings.ReplaceAll(content, "\r\n", "\n")
	content = strings.ReplaceAll(content, "\r", "\n")
	return strings.TrimRight(content, "\n")
}

// Table computes SHA-256 over the column names and the cell text of every
// row, in order. Lazy tables are streamed.
func (c SHA256) Table(t *table.Table) (string, error) {
	h := sha256.New()
	names := t.Schema().Names()
	io.WriteString(h, strings.Join(names, unitSeparator)+recordSeparator)
	cells := make([]string, len(names))
	for e, err := range t.All() {
		if err != nil {
			return "", err
		}
		for i, n := range names {
			cells[i] = e.Text(n)
		}
		io.WriteString(h, strings.Join(cells, unitSeparator)+recordSeparator)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
