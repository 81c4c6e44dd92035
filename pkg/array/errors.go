package array

import "errors"

// Construction errors
var (
	// ErrShapeMismatch is returned when the element count does not match the declared shape
	ErrShapeMismatch = errors.New("element count does not match shape")

	// ErrRaggedRows is returned when nested rows have different lengths
	ErrRaggedRows = errors.New("rows have different lengths")

	// ErrFieldCount is returned when a record has a different number of values than fields
	ErrFieldCount = errors.New("record length does not match field count")

	// ErrFieldKind is returned when a record value cannot be stored in its field kind
	ErrFieldKind = errors.New("value does not match field kind")

	// ErrDuplicateField is returned when two fields share a name
	ErrDuplicateField = errors.New("duplicate field name")

	// ErrUnknownField is returned when a selected field does not exist
	ErrUnknownField = errors.New("unknown field")
)
