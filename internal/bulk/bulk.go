// Package bulk moves table columns into Apache Arrow arrays for set
// operations and columnar analytics.
package bulk

import (
	"fmt"
	"slices"
	"sort"
	"time"

	"github.com/apache/arrow/go/v7/arrow"
	"github.com/apache/arrow/go/v7/arrow/array"
	"github.com/apache/arrow/go/v7/arrow/memory"
	"github.com/vvka-141/dwca/internal/table"
	"github.com/vvka-141/dwca/internal/term"
)

// Arrow implements table.KeyFilter with Arrow string arrays.
type Arrow struct {
	mem memory.Allocator
}

var _ table.KeyFilter = (*Arrow)(nil)

// New returns an Arrow backed by mem, or by the Go allocator when mem is nil.
func New(mem memory.Allocator) *Arrow {
	if mem == nil {
		mem = memory.NewGoAllocator()
	}
	return &Arrow{mem: mem}
}

func (a *Arrow) strings(values []string) *array.String {
	b := array.NewStringBuilder(a.mem)
	defer b.Release()
	b.Reserve(len(values))
	for _, v := range values {
		b.Append(v)
	}
	return b.NewStringArray()
}

// keySet holds the sorted, distinct allowed keys in one Arrow string array.
func (a *Arrow) keySet(allowed []string) *array.String {
	keys := slices.Clone(allowed)
	slices.Sort(keys)
	return a.strings(slices.Compact(keys))
}

// contains binary searches the sorted key array.
func contains(keys *array.String, v string) bool {
	i := sort.Search(keys.Len(), func(i int) bool { return keys.Value(i) >= v })
	return i < keys.Len() && keys.Value(i) == v
}

// Mask reports, for each value, whether it is one of allowed. The column and
// the key set are both held as Arrow string arrays; membership is a binary
// search of the key array's value buffer.
func (a *Arrow) Mask(values, allowed []string) ([]bool, error) {
	keys := a.keySet(allowed)
	defer keys.Release()
	col := a.strings(values)
	defer col.Release()

	out := make([]bool, col.Len())
	for i := range out {
		out[i] = contains(keys, col.Value(i))
	}
	return out, nil
}

// Schema derives the Arrow schema of a table. Every field carries its term
// URI under the "term" metadata key.
func Schema(t *table.Table) *arrow.Schema {
	codecs := t.Schema().Codecs()
	fields := make([]arrow.Field, len(codecs))
	for i, c := range codecs {
		fields[i] = arrow.Field{
			Name:     c.Name,
			Type:     arrowType(c.Type),
			Nullable: true,
			Metadata: arrow.NewMetadata([]string{"term"}, []string{c.URI}),
		}
	}
	return arrow.NewSchema(fields, nil)
}

func arrowType(t term.TypeTag) arrow.DataType {
	switch t {
	case term.Integer:
		return arrow.PrimitiveTypes.Int64
	case term.Float:
		return arrow.PrimitiveTypes.Float64
	case term.Boolean:
		return arrow.FixedWidthTypes.Boolean
	case term.DateTime:
		return arrow.FixedWidthTypes.Timestamp_us
	default:
		// Decimals keep their exact text.
		return arrow.BinaryTypes.String
	}
}

// Record projects every row of t into one Arrow record. The caller must
// Release it.
func (a *Arrow) Record(t *table.Table) (arrow.Record, error) {
	b := array.NewRecordBuilder(a.mem, Schema(t))
	defer b.Release()
	codecs := t.Schema().Codecs()
	for e, err := range t.All() {
		if err != nil {
			return nil, err
		}
		for i, c := range codecs {
			if err := appendValue(b.Field(i), c, e.Value(i)); err != nil {
				return nil, fmt.Errorf("%s column %s: %w", t.Filename, c.Name, err)
			}
		}
	}
	return b.NewRecord(), nil
}

func appendValue(fb array.Builder, c *term.Codec, v any) error {
	if v == nil {
		fb.AppendNull()
		return nil
	}
	switch b := fb.(type) {
	case *array.Int64Builder:
		n, ok := v.(int64)
		if !ok {
			return fmt.Errorf("unexpected value type %T", v)
		}
		b.Append(n)
	case *array.Float64Builder:
		f, ok := v.(float64)
		if !ok {
			return fmt.Errorf("unexpected value type %T", v)
		}
		b.Append(f)
	case *array.BooleanBuilder:
		f, ok := v.(bool)
		if !ok {
			return fmt.Errorf("unexpected value type %T", v)
		}
		b.Append(f)
	case *array.TimestampBuilder:
		ts, ok := v.(time.Time)
		if !ok {
			return fmt.Errorf("unexpected value type %T", v)
		}
		b.Append(arrow.Timestamp(ts.UTC().UnixMicro()))
	case *array.StringBuilder:
		s, err := c.Unformat(v)
		if err != nil {
			return err
		}
		b.Append(s)
	default:
		return fmt.Errorf("no column builder %T", fb)
	}
	return nil
}

// ColumnStats summarizes one column of a table.
type ColumnStats struct {
	Name     string `json:"name"`
	Type     string `json:"type"`
	Nulls    int    `json:"nulls"`
	Distinct int    `json:"distinct"`
}

// Stats projects t into a record and counts the nulls and the distinct
// non-null values of every column.
func (a *Arrow) Stats(t *table.Table) ([]ColumnStats, error) {
	rec, err := a.Record(t)
	if err != nil {
		return nil, err
	}
	defer rec.Release()
	out := make([]ColumnStats, rec.NumCols())
	for i, col := range rec.Columns() {
		n, err := distinct(col)
		if err != nil {
			return nil, fmt.Errorf("%s column %s: %w", t.Filename, rec.ColumnName(i), err)
		}
		out[i] = ColumnStats{
			Name:     rec.ColumnName(i),
			Type:     col.DataType().Name(),
			Nulls:    col.NullN(),
			Distinct: n,
		}
	}
	return out, nil
}

func distinct(col arrow.Array) (int, error) {
	var value func(i int) any
	switch c := col.(type) {
	case *array.String:
		value = func(i int) any { return c.Value(i) }
	case *array.Int64:
		value = func(i int) any { return c.Value(i) }
	case *array.Float64:
		value = func(i int) any { return c.Value(i) }
	case *array.Boolean:
		value = func(i int) any { return c.Value(i) }
	case *array.Timestamp:
		value = func(i int) any { return c.Value(i) }
	default:
		return 0, fmt.Errorf("unsupported column type %s", col.DataType())
	}
	seen := make(map[any]struct{})
	for i := 0; i < col.Len(); i++ {
		if col.IsValid(i) {
			seen[value(i)] = struct{}{}
		}
	}
	return len(seen), nil
}
