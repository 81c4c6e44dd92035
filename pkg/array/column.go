package array

import (
	"strconv"
	"strings"
)

// ColumnID identifies a column: an integer position for plain arrays or a
// field name for structured arrays. The zero value is Position(0).
type ColumnID struct {
	name  string
	pos   int
	named bool
}

// Position returns the identifier of the i-th column of a plain array.
func Position(i int) ColumnID {
	return ColumnID{pos: i}
}

// Name returns the identifier of a structured array field.
func Name(name string) ColumnID {
	return ColumnID{name: name, named: true}
}

// Positions converts integer offsets into identifiers.
func Positions(idx ...int) []ColumnID {
	ids := make([]ColumnID, len(idx))
	for i, p := range idx {
		ids[i] = Position(p)
	}
	return ids
}

// Names converts field names into identifiers.
func Names(names ...string) []ColumnID {
	ids := make([]ColumnID, len(names))
	for i, n := range names {
		ids[i] = Name(n)
	}
	return ids
}

// IsName reports whether c identifies a structured field.
func (c ColumnID) IsName() bool { return c.named }

// Position returns the column offset; meaningless for named identifiers.
func (c ColumnID) Position() int { return c.pos }

// Name returns the field name; empty for positional identifiers.
func (c ColumnID) Name() string { return c.name }

// String renders positions bare and names single-quoted.
func (c ColumnID) String() string {
	if c.named {
		return "'" + c.name + "'"
	}
	return strconv.Itoa(c.pos)
}

// FormatColumnIDs renders identifiers as a bracketed list, e.g. [1, 'f'].
func FormatColumnIDs(ids []ColumnID) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = id.String()
	}
	return "[" + strings.Join(parts, ", ") + "]"
}
