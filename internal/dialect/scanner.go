package dialect

import (
	"bufio"
	"bytes"
	"io"
)

// ReadBufSize is the size of the buffer used when reading records.
var ReadBufSize = 256 * 1024

// Scanner reads records from a stream laid out in a Dialect.
//
// Terminators may be several bytes long. When the dialect has an enclosure
// character, a terminator inside an enclosed cell belongs to the cell and a
// doubled enclosure stands for one literal enclosure.
type Scanner struct {
	// KeepEmpty returns empty lines as a record of one empty cell instead of
	// skipping them. In a single-column file an empty line is a row whose
	// only value is empty.
	KeepEmpty bool

	r       *bufio.Reader
	line    []byte
	field   []byte
	quote   []byte
	record  []string
	numLine int
	err     error
}

// NewScanner creates a Scanner over r.
func NewScanner(r io.Reader, d Dialect) *Scanner {
	return &Scanner{
		r:     bufio.NewReaderSize(r, ReadBufSize),
		line:  []byte(d.LinesTerminatedBy),
		field: []byte(d.FieldsTerminatedBy),
		quote: []byte(d.FieldsEnclosedBy),
	}
}

// Line returns the number of records read so far.
func (s *Scanner) Line() int {
	return s.numLine
}

// Record returns the cells of the last record read by Scan.
func (s *Scanner) Record() []string {
	return s.record
}

// Err returns the first non-EOF error met by Scan.
func (s *Scanner) Err() error {
	return s.err
}

// Scan advances to the next record. Empty lines are skipped unless
// KeepEmpty is set. It returns false at end of input or on error.
func (s *Scanner) Scan() bool {
	for {
		rec, empty, err := s.readRecord()
		if err != nil {
			if err != io.EOF {
				s.err = err
			}
			if rec == nil {
				return false
			}
		}
		if empty && !s.KeepEmpty {
			if err != nil {
				return false
			}
			continue
		}
		s.numLine++
		s.record = rec
		return true
	}
}

// readRecord reads bytes until an unenclosed line terminator or EOF.
// empty reports a record made of a single empty cell.
func (s *Scanner) readRecord() (rec []string, empty bool, err error) {
	var (
		cell     bytes.Buffer
		pending  []byte
		enclosed bool
		started  bool
		sawQuote bool
		quoted   bool
	)
	flush := func() {
		rec = append(rec, cell.String())
		cell.Reset()
		sawQuote = false
	}
	for {
		b, rerr := s.r.ReadByte()
		if rerr != nil {
			if !started {
				return nil, true, rerr
			}
			cell.Write(pending)
			flush()
			return rec, len(rec) == 1 && rec[0] == "" && !quoted, rerr
		}
		started = true
		pending = append(pending, b)

		if len(s.quote) > 0 {
			if enclosed {
				if bytes.HasSuffix(pending, s.quote) {
					next, perr := s.r.Peek(len(s.quote))
					if perr == nil && bytes.Equal(next, s.quote) {
						// Doubled enclosure is a literal one.
						_, _ = s.r.Discard(len(s.quote))
						cell.Write(pending)
						pending = pending[:0]
						continue
					}
					cell.Write(pending[:len(pending)-len(s.quote)])
					pending = pending[:0]
					enclosed = false
				}
				continue
			}
			if cell.Len() == 0 && !sawQuote && bytes.Equal(pending, s.quote) {
				enclosed = true
				sawQuote = true
				quoted = true
				pending = pending[:0]
				continue
			}
		}

		switch {
		case bytes.HasSuffix(pending, s.line):
			cell.Write(pending[:len(pending)-len(s.line)])
			flush()
			return rec, len(rec) == 1 && rec[0] == "" && !quoted, nil
		case bytes.HasSuffix(pending, s.field):
			cell.Write(pending[:len(pending)-len(s.field)])
			pending = pending[:0]
			flush()
		default:
			keep := max(partialSuffix(pending, s.line), partialSuffix(pending, s.field))
			cell.Write(pending[:len(pending)-keep])
			pending = append(pending[:0], pending[len(pending)-keep:]...)
		}
	}
}

// partialSuffix returns the length of the longest suffix of b that is a
// proper prefix of term, i.e. the bytes that could still grow into term.
func partialSuffix(b, term []byte) int {
	for n := min(len(b), len(term)-1); n > 0; n-- {
		if bytes.HasPrefix(term, b[len(b)-n:]) {
			return n
		}
	}
	return 0
}

// Skip discards n physical lines without interpreting enclosures. It is used
// for header lines, which may be empty.
func (s *Scanner) Skip(n int) error {
	var pending []byte
	for n > 0 {
		b, err := s.r.ReadByte()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		pending = append(pending, b)
		if bytes.HasSuffix(pending, s.line) {
			n--
			pending = pending[:0]
			continue
		}
		keep := partialSuffix(pending, s.line)
		pending = append(pending[:0], pending[len(pending)-keep:]...)
	}
	return nil
}
