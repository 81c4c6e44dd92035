// Package array provides the tabular array model shared by fairlens
// components: plain N-dimensional arrays with a single element kind and
// structured arrays whose records carry named, individually typed fields.
package array

import "fmt"

// Kind is the scalar element type of a plain array or of a structured field.
type Kind uint8

const (
	// KindObject marks opaque elements (nil, bools, maps, ...). It is not a
	// base kind and fails every base-type check.
	KindObject Kind = iota
	KindInt
	KindFloat
	KindString
)

// String returns the lower-case kind name.
func (k Kind) String() string {
	switch k {
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindString:
		return "string"
	default:
		return "object"
	}
}

// IsBase reports whether k is numeric or textual.
func (k Kind) IsBase() bool {
	return k == KindInt || k == KindFloat || k == KindString
}

// IsNumerical reports whether k is an integer or floating point kind.
func (k Kind) IsNumerical() bool {
	return k == KindInt || k == KindFloat
}

// IsTextual reports whether k is a string kind.
func (k Kind) IsTextual() bool {
	return k == KindString
}

// Field is a named, typed component of a structured record.
type Field struct {
	Name string
	Kind Kind
}

// String renders the field as name:kind.
func (f Field) String() string {
	return fmt.Sprintf("%s:%s", f.Name, f.Kind)
}

// normalize converts v into the canonical Go representation of its kind:
// int64 for integers, float64 for floats and string for text. Anything else
// is returned unchanged with KindObject.
func normalize(v any) (any, Kind) {
	switch x := v.(type) {
	case int:
		return int64(x), KindInt
	case int8:
		return int64(x), KindInt
	case int16:
		return int64(x), KindInt
	case int32:
		return int64(x), KindInt
	case int64:
		return x, KindInt
	case uint:
		return int64(x), KindInt
	case uint8:
		return int64(x), KindInt
	case uint16:
		return int64(x), KindInt
	case uint32:
		return int64(x), KindInt
	case uint64:
		return int64(x), KindInt
	case float32:
		return float64(x), KindFloat
	case float64:
		return x, KindFloat
	case string:
		return x, KindString
	default:
		return v, KindObject
	}
}

// coerce converts an already normalised value into kind k. It reports false
// when the value cannot be represented without changing its family.
func coerce(v any, from, to Kind) (any, bool) {
	switch {
	case to == KindObject:
		return v, true
	case from == to:
		return v, true
	case from == KindInt && to == KindFloat:
		return float64(v.(int64)), true
	default:
		return nil, false
	}
}

// ToFloat converts a numerical element to float64.
func ToFloat(v any) (float64, bool) {
	n, k := normalize(v)
	switch k {
	case KindInt:
		return float64(n.(int64)), true
	case KindFloat:
		return n.(float64), true
	default:
		return 0, false
	}
}
