// Package taxon resolves the parent and synonym relations of a taxon table.
//
// A taxon row points at its parent through parentNameUsageID and, when it is
// a synonym, at its accepted name through acceptedNameUsageID. Both are
// self-references into the same table.
package taxon

import (
	"fmt"
	"slices"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
	"github.com/vvka-141/dwca/internal/logging"
	"github.com/vvka-141/dwca/internal/table"
	"github.com/vvka-141/dwca/pkg/dwca"
)

// Columns names the columns a Taxonomy reads.
type Columns struct {
	ID       string
	Parent   string
	Accepted string
	Name     string
	Rank     string
}

// DefaultColumns returns the Darwin Core column names.
func DefaultColumns() Columns {
	return Columns{
		ID:       "taxonID",
		Parent:   "parentNameUsageID",
		Accepted: "acceptedNameUsageID",
		Name:     "scientificName",
		Rank:     "taxonRank",
	}
}

type row struct {
	id, parent, accepted, name, rank string
}

// Taxonomy indexes a taxon table by id and accepted name.
type Taxonomy struct {
	table  *table.Table
	cols   Columns
	logger dwca.Logger

	rows       []row
	byID       map[string][]int
	byAccepted map[string][]int
}

// Option configures a Taxonomy.
type Option func(*Taxonomy)

// WithColumns overrides the column names.
func WithColumns(c Columns) Option {
	return func(tx *Taxonomy) { tx.cols = c }
}

// WithLogger sets the logger lookup misses are reported to.
func WithLogger(l dwca.Logger) Option {
	return func(tx *Taxonomy) { tx.logger = l }
}

// New indexes t. The id, parent and accepted columns must exist.
func New(t *table.Table, opts ...Option) (*Taxonomy, error) {
	tx := &Taxonomy{table: t, cols: DefaultColumns()}
	for _, opt := range opts {
		opt(tx)
	}
	if tx.logger == nil {
		tx.logger = logging.NewNullLogger()
	}
	for _, col := range []string{tx.cols.ID, tx.cols.Parent, tx.cols.Accepted} {
		if _, ok := t.Schema().Index(col); !ok {
			return nil, fmt.Errorf("%s has no column %q", t.Filename, col)
		}
	}
	if err := tx.index(); err != nil {
		return nil, err
	}
	return tx, nil
}

// Table returns the indexed table.
func (tx *Taxonomy) Table() *table.Table {
	return tx.table
}

func (tx *Taxonomy) index() error {
	tx.rows = tx.rows[:0]
	tx.byID = make(map[string][]int)
	tx.byAccepted = make(map[string][]int)
	for e, err := range tx.table.All() {
		if err != nil {
			return err
		}
		r := row{
			id:       e.Text(tx.cols.ID),
			parent:   e.Text(tx.cols.Parent),
			accepted: e.Text(tx.cols.Accepted),
			name:     e.Text(tx.cols.Name),
			rank:     e.Text(tx.cols.Rank),
		}
		i := len(tx.rows)
		tx.rows = append(tx.rows, r)
		tx.byID[r.id] = append(tx.byID[r.id], i)
		tx.byAccepted[r.acceptedID()] = append(tx.byAccepted[r.acceptedID()], i)
	}
	return nil
}

// acceptedID is the id of the accepted name of r. A row without an accepted
// name is itself accepted.
func (r row) acceptedID() string {
	if r.accepted == "" {
		return r.id
	}
	return r.accepted
}

// Parents returns the transitive parents of ids in breadth-first order,
// nearest first. Ids missing from the table are reported and skipped.
func (tx *Taxonomy) Parents(ids []string) []string {
	var out []string
	seen := make(map[string]bool)
	start := make(map[string]bool, len(ids))
	frontier := tx.present(ids)
	for _, id := range frontier {
		start[id] = true
	}
	for len(frontier) > 0 {
		var next []string
		for _, id := range frontier {
			for _, i := range tx.byID[id] {
				p := tx.rows[i].parent
				if p == "" || seen[p] {
					continue
				}
				if start[p] {
					tx.logger.Warn("Taxon %s is its own ancestor", p)
				}
				seen[p] = true
				out = append(out, p)
				next = append(next, p)
			}
		}
		frontier = next
	}
	return out
}

// present returns the ids found in the table, warning about the others.
func (tx *Taxonomy) present(ids []string) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := tx.byID[id]; !ok {
			tx.logger.Warn("Taxon %s not found in %s", id, tx.table.Filename)
			continue
		}
		out = append(out, id)
	}
	return out
}

// Synonyms returns every row sharing an accepted name with one of ids, in
// table order: the accepted taxa and all their synonyms. With byName the
// scientific names are returned instead of the ids.
func (tx *Taxonomy) Synonyms(ids []string, byName bool) []string {
	accepted := make(map[string]bool)
	for _, id := range tx.present(ids) {
		for _, i := range tx.byID[id] {
			accepted[tx.rows[i].acceptedID()] = true
		}
	}
	var hits []int
	for a := range accepted {
		hits = append(hits, tx.byAccepted[a]...)
	}
	slices.Sort(hits)
	out := make([]string, 0, len(hits))
	for _, i := range slices.Compact(hits) {
		if byName {
			out = append(out, tx.rows[i].name)
		} else {
			out = append(out, tx.rows[i].id)
		}
	}
	return out
}

type filterConfig struct {
	exactRank   bool
	maxDistance int // -1 for exact matching
}

// FilterOption configures FilterByRank.
type FilterOption func(*filterConfig)

// ExactRank requires seed rows to be of the requested rank. It is on by
// default.
func ExactRank(exact bool) FilterOption {
	return func(c *filterConfig) { c.exactRank = exact }
}

// Fuzzy matches values within maxDistance edits instead of exactly.
func Fuzzy(maxDistance int) FilterOption {
	return func(c *filterConfig) { c.maxDistance = maxDistance }
}

type matcher func(cell string, values []string) bool

func exactMatch(cell string, values []string) bool {
	return slices.Contains(values, cell)
}

func fuzzyMatch(maxDistance int) matcher {
	dmp := diffmatchpatch.New()
	return func(cell string, values []string) bool {
		if cell == "" {
			return false
		}
		for _, v := range values {
			if dmp.DiffLevenshtein(dmp.DiffMain(cell, v, false)) <= maxDistance {
				return true
			}
		}
		return false
	}
}

// FilterByRank keeps the taxa matching values in rankField together with
// their synonyms, their parents and the parents' synonyms. Rows of any rank
// whose rankField matches one of values or a name of those synonyms and
// parents are kept too, so filtering by genus keeps the species of that
// genus, including those filed under a synonym of it. rankName is the rank seed rows must have when
// ExactRank is on.
func (tx *Taxonomy) FilterByRank(rankField, rankName string, values []string, opts ...FilterOption) error {
	cfg := filterConfig{exactRank: true, maxDistance: -1}
	for _, opt := range opts {
		opt(&cfg)
	}
	if _, ok := tx.table.Schema().Index(rankField); !ok {
		return fmt.Errorf("%s has no column %q", tx.table.Filename, rankField)
	}
	if cfg.exactRank {
		if _, ok := tx.table.Schema().Index(tx.cols.Rank); !ok {
			return fmt.Errorf("%s has no rank column %q", tx.table.Filename, tx.cols.Rank)
		}
	}
	match := matcher(exactMatch)
	if cfg.maxDistance >= 0 {
		match = fuzzyMatch(cfg.maxDistance)
	}

	var seeds []string
	for e, err := range tx.table.All() {
		if err != nil {
			return err
		}
		if !match(e.Text(rankField), values) {
			continue
		}
		if cfg.exactRank && !strings.EqualFold(e.Text(tx.cols.Rank), rankName) {
			continue
		}
		seeds = append(seeds, e.Text(tx.cols.ID))
	}
	if len(seeds) == 0 {
		tx.logger.Warn("No %s in %s matches %s", rankName, tx.table.Filename, strings.Join(values, ", "))
	}

	keep := make(map[string]bool)
	add := func(ids []string) {
		for _, id := range ids {
			keep[id] = true
		}
	}
	add(seeds)
	synonyms := tx.Synonyms(seeds, false)
	add(synonyms)
	parents := tx.Parents(append(slices.Clone(seeds), synonyms...))
	add(parents)
	// Parents may point at ids the table does not hold.
	parents = slices.DeleteFunc(parents, func(id string) bool { return tx.byID[id] == nil })
	add(tx.Synonyms(parents, false))

	// Rows filed under a synonym of a seed or of a parent match too.
	names := slices.Concat(values, tx.Synonyms(seeds, true), tx.Synonyms(parents, true))
	names = slices.DeleteFunc(names, func(n string) bool { return n == "" })
	slices.Sort(names)
	names = slices.Compact(names)

	before := len(tx.rows)
	err := tx.table.Filter(func(e table.Entry) bool {
		return keep[e.Text(tx.cols.ID)] || match(e.Text(rankField), names)
	})
	if err != nil {
		return err
	}
	if err := tx.index(); err != nil {
		return err
	}
	tx.logger.Verbose("Kept %d of %d taxa", len(tx.rows), before)
	return nil
}
