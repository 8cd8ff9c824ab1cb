package table

import (
	"fmt"
	"iter"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/vvka-141/dwca/internal/term"
	"github.com/vvka-141/dwca/pkg/dwca"
)

// SetPrimary declares the table and key column an extension's key column
// references. It must be called before SQLSchema on an extension.
func (t *Table) SetPrimary(table, column string) {
	t.primary = &Reference{Table: table, Column: column}
}

// SetPrimaryTable is SetPrimary for an in-memory core table.
func (t *Table) SetPrimaryTable(core *Table) {
	t.SetPrimary(core.SQLName(), core.sqlColumns()[core.KeyIndex])
}

// Primary returns the declared primary reference, or nil.
func (t *Table) Primary() *Reference {
	return t.primary
}

// SQLName returns the relational table name of the row type.
func (t *Table) SQLName() string {
	rt, _ := t.registry.RowType(t.RowType)
	return rt.Table
}

// sqlColumns returns unique snake-case column names in column order.
func (t *Table) sqlColumns() []string {
	seen := make(map[string]int, t.schema.Len())
	cols := make([]string, t.schema.Len())
	for i, c := range t.schema.codecs {
		name := term.SQLName(c.Name)
		if n := seen[name]; n > 0 {
			seen[name] = n + 1
			name = name + "_" + strconv.Itoa(n+1)
		} else {
			seen[name] = 1
		}
		cols[i] = name
	}
	return cols
}

// SQLSchema returns a CREATE TABLE statement for the table. Core tables get
// a primary key on their key column; extensions get a foreign key to the
// declared primary table and fail with dwca.ErrPrimaryNotSet without one.
func (t *Table) SQLSchema() (string, error) {
	if !t.Core && t.primary == nil {
		return "", fmt.Errorf("%s: %w", t.RowType, dwca.ErrPrimaryNotSet)
	}
	cols := t.sqlColumns()
	var b strings.Builder
	fmt.Fprintf(&b, "CREATE TABLE IF NOT EXISTS %s (\n", pgx.Identifier{t.SQLName()}.Sanitize())
	for i, c := range t.schema.codecs {
		fmt.Fprintf(&b, "    %s %s", pgx.Identifier{cols[i]}.Sanitize(), c.Type.SQLType())
		if i == t.KeyIndex {
			b.WriteString(" NOT NULL")
		}
		b.WriteString(",\n")
	}
	key := pgx.Identifier{cols[t.KeyIndex]}.Sanitize()
	if t.Core {
		fmt.Fprintf(&b, "    PRIMARY KEY (%s)\n", key)
	} else {
		fmt.Fprintf(&b, "    FOREIGN KEY (%s) REFERENCES %s (%s)\n", key,
			pgx.Identifier{t.primary.Table}.Sanitize(), pgx.Identifier{t.primary.Column}.Sanitize())
	}
	b.WriteString(");")
	return b.String(), nil
}

// SQLInsert returns the parameterized INSERT statement matching SQLRows.
func (t *Table) SQLInsert() string {
	cols := t.sqlColumns()
	quoted := make([]string, len(cols))
	params := make([]string, len(cols))
	for i, c := range cols {
		quoted[i] = pgx.Identifier{c}.Sanitize()
		params[i] = "$" + strconv.Itoa(i+1)
	}
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		pgx.Identifier{t.SQLName()}.Sanitize(), strings.Join(quoted, ", "), strings.Join(params, ", "))
}

// SQLRows lazily yields one parameter tuple per row. Scalars pass through;
// lists, pairs and intervals are rendered as cell text.
func (t *Table) SQLRows() iter.Seq2[[]any, error] {
	return func(yield func([]any, error) bool) {
		for e, err := range t.All() {
			if err != nil {
				yield(nil, err)
				return
			}
			args := make([]any, e.Len())
			for i, c := range t.schema.codecs {
				v, err := sqlValue(c, e.Value(i))
				if err != nil {
					yield(nil, err)
					return
				}
				args[i] = v
			}
			if !yield(args, nil) {
				return
			}
		}
	}
}

func sqlValue(c *term.Codec, v any) (any, error) {
	if v == nil {
		return nil, nil
	}
	switch c.Type {
	case term.StringList, term.StringPair, term.DateTimeInterval:
		return c.Unformat(v)
	}
	return v, nil
}
