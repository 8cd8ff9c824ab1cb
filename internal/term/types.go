package term

import (
	"fmt"
	"time"
)

// TypeTag selects the encoding a Codec applies.
type TypeTag int

const (
	String TypeTag = iota
	Integer
	Float
	Decimal
	Boolean
	StringList
	StringPair
	DateTime
	DateTimeInterval
	Vocabulary
)

var typeNames = map[TypeTag]string{
	String:           "string",
	Integer:          "integer",
	Float:            "float",
	Decimal:          "decimal",
	Boolean:          "boolean",
	StringList:       "list",
	StringPair:       "pair",
	DateTime:         "datetime",
	DateTimeInterval: "interval",
	Vocabulary:       "vocabulary",
}

func (t TypeTag) String() string {
	if name, ok := typeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("type(%d)", int(t))
}

// Valid reports whether t is one of the known encodings.
func (t TypeTag) Valid() bool {
	_, ok := typeNames[t]
	return ok
}

// SQLType returns the column type used by relational projection.
func (t TypeTag) SQLType() string {
	switch t {
	case Integer:
		return "BIGINT"
	case Float:
		return "DOUBLE PRECISION"
	case Decimal:
		return "NUMERIC"
	case Boolean:
		return "BOOLEAN"
	case DateTime:
		return "TIMESTAMP WITH TIME ZONE"
	default:
		return "TEXT"
	}
}

// ParseTypeTag maps a catalog type name back to its tag.
func ParseTypeTag(name string) (TypeTag, bool) {
	for tag, n := range typeNames {
		if n == name {
			return tag, true
		}
	}
	return String, false
}

// Pair is the value of a StringPair cell.
type Pair [2]string

// Interval is the value of a DateTimeInterval cell.
type Interval struct {
	Start time.Time
	End   time.Time
}

// Equal reports whether both ends denote the same instants.
func (i Interval) Equal(o Interval) bool {
	return i.Start.Equal(o.Start) && i.End.Equal(o.End)
}
