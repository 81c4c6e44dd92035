package array

import (
	"fmt"
	"strings"
)

// Array is a row-major tabular array. It is either plain (a single element
// Kind and a shape of any rank) or structured (an ordered list of Fields; a
// rank 1 structured array is a batch of records and a rank 0 one is a
// single record). Arrays are immutable once built.
type Array struct {
	shape  []int
	kind   Kind
	fields []Field
	data   []any
}

// New builds a plain array from row-major data. The element kind is
// inferred: any opaque element, or a mix of text and numbers, yields
// KindObject; otherwise any float yields KindFloat, all integers KindInt and
// all strings KindString. An empty array is KindFloat.
func New(shape []int, data []any) (*Array, error) {
	size := 1
	for _, d := range shape {
		if d < 0 {
			return nil, fmt.Errorf("%w: negative dimension %d", ErrShapeMismatch, d)
		}
		size *= d
	}
	if size != len(data) {
		return nil, fmt.Errorf("%w: shape %v holds %d elements, got %d", ErrShapeMismatch, shape, size, len(data))
	}

	values := make([]any, len(data))
	seen := map[Kind]bool{}
	for i, v := range data {
		n, k := normalize(v)
		values[i] = n
		seen[k] = true
	}

	kind := KindFloat
	switch {
	case len(data) == 0:
	case seen[KindObject], seen[KindString] && (seen[KindInt] || seen[KindFloat]):
		kind = KindObject
	case seen[KindString]:
		kind = KindString
	case seen[KindFloat]:
		kind = KindFloat
	default:
		kind = KindInt
	}
	if kind == KindFloat {
		for i, v := range values {
			if x, ok := v.(int64); ok {
				values[i] = float64(x)
			}
		}
	}

	return &Array{shape: append([]int(nil), shape...), kind: kind, data: values}, nil
}

// Matrix builds a plain 2-dimensional array from nested rows.
func Matrix(rows [][]any) (*Array, error) {
	cols := 0
	if len(rows) > 0 {
		cols = len(rows[0])
	}
	data := make([]any, 0, len(rows)*cols)
	for i, r := range rows {
		if len(r) != cols {
			return nil, fmt.Errorf("%w: row %d has %d elements, want %d", ErrRaggedRows, i, len(r), cols)
		}
		data = append(data, r...)
	}
	return New([]int{len(rows), cols}, data)
}

// Vector builds a plain 1-dimensional array.
func Vector(values ...any) (*Array, error) {
	return New([]int{len(values)}, values)
}

// FromFloats builds a 2-dimensional KindFloat array.
func FromFloats(rows [][]float64) (*Array, error) {
	cols := 0
	if len(rows) > 0 {
		cols = len(rows[0])
	}
	data := make([]any, 0, len(rows)*cols)
	for i, r := range rows {
		if len(r) != cols {
			return nil, fmt.Errorf("%w: row %d has %d elements, want %d", ErrRaggedRows, i, len(r), cols)
		}
		for _, v := range r {
			data = append(data, v)
		}
	}
	return &Array{shape: []int{len(rows), cols}, kind: KindFloat, data: data}, nil
}

// FromInts builds a 2-dimensional KindInt array.
func FromInts(rows [][]int64) (*Array, error) {
	cols := 0
	if len(rows) > 0 {
		cols = len(rows[0])
	}
	data := make([]any, 0, len(rows)*cols)
	for i, r := range rows {
		if len(r) != cols {
			return nil, fmt.Errorf("%w: row %d has %d elements, want %d", ErrRaggedRows, i, len(r), cols)
		}
		for _, v := range r {
			data = append(data, v)
		}
	}
	return &Array{shape: []int{len(rows), cols}, kind: KindInt, data: data}, nil
}

// FromStrings builds a 2-dimensional KindString array.
func FromStrings(rows [][]string) (*Array, error) {
	cols := 0
	if len(rows) > 0 {
		cols = len(rows[0])
	}
	data := make([]any, 0, len(rows)*cols)
	for i, r := range rows {
		if len(r) != cols {
			return nil, fmt.Errorf("%w: row %d has %d elements, want %d", ErrRaggedRows, i, len(r), cols)
		}
		for _, v := range r {
			data = append(data, v)
		}
	}
	return &Array{shape: []int{len(rows), cols}, kind: KindString, data: data}, nil
}

// NewStructured builds a batch of records sharing the given fields. Integer
// values are accepted by KindFloat fields and promoted.
func NewStructured(fields []Field, records [][]any) (*Array, error) {
	if err := checkFields(fields); err != nil {
		return nil, err
	}
	data := make([]any, 0, len(records)*len(fields))
	for i, rec := range records {
		values, err := coerceRecord(fields, rec)
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		data = append(data, values...)
	}
	return &Array{shape: []int{len(records)}, fields: append([]Field(nil), fields...), data: data}, nil
}

// Record builds a single structured record.
func Record(fields []Field, values ...any) (*Array, error) {
	if err := checkFields(fields); err != nil {
		return nil, err
	}
	data, err := coerceRecord(fields, values)
	if err != nil {
		return nil, err
	}
	return &Array{shape: []int{}, fields: append([]Field(nil), fields...), data: data}, nil
}

func checkFields(fields []Field) error {
	names := make(map[string]bool, len(fields))
	for _, f := range fields {
		if names[f.Name] {
			return fmt.Errorf("%w: %q", ErrDuplicateField, f.Name)
		}
		names[f.Name] = true
	}
	return nil
}

func coerceRecord(fields []Field, values []any) ([]any, error) {
	if len(values) != len(fields) {
		return nil, fmt.Errorf("%w: got %d values for %d fields", ErrFieldCount, len(values), len(fields))
	}
	out := make([]any, len(values))
	for j, v := range values {
		n, k := normalize(v)
		c, ok := coerce(n, k, fields[j].Kind)
		if !ok {
			return nil, fmt.Errorf("%w: field %q expects %s, got %s", ErrFieldKind, fields[j].Name, fields[j].Kind, k)
		}
		out[j] = c
	}
	return out, nil
}

// Shape returns a copy of the array's dimensions.
func (a *Array) Shape() []int {
	return append([]int(nil), a.shape...)
}

// NDim returns the number of axes.
func (a *Array) NDim() int {
	return len(a.shape)
}

// Kind returns the element kind of a plain array. Structured arrays report
// KindObject; use Fields for their per-column kinds.
func (a *Array) Kind() Kind {
	if a.fields != nil {
		return KindObject
	}
	return a.kind
}

// Fields returns a copy of the record fields, or nil for a plain array.
func (a *Array) Fields() []Field {
	if a.fields == nil {
		return nil
	}
	return append([]Field(nil), a.fields...)
}

// Len returns the size of the first axis, or 1 for a single record.
func (a *Array) Len() int {
	if len(a.shape) == 0 {
		return 1
	}
	return a.shape[0]
}

// NumColumns returns the number of features: the last axis of a plain array
// or the field count of a structured one.
func (a *Array) NumColumns() int {
	if a.fields != nil {
		return len(a.fields)
	}
	if len(a.shape) == 0 {
		return 0
	}
	return a.shape[len(a.shape)-1]
}

// Columns returns every column identifier in order.
func (a *Array) Columns() []ColumnID {
	if a.fields != nil {
		ids := make([]ColumnID, len(a.fields))
		for i, f := range a.fields {
			ids[i] = Name(f.Name)
		}
		return ids
	}
	ids := make([]ColumnID, a.NumColumns())
	for i := range ids {
		ids[i] = Position(i)
	}
	return ids
}

// ColumnKind returns the kind of the given column.
func (a *Array) ColumnKind(id ColumnID) (Kind, bool) {
	idx, ok := a.ColumnIndex(id)
	if !ok {
		return KindObject, false
	}
	if a.fields != nil {
		return a.fields[idx].Kind, true
	}
	return a.kind, true
}

// ColumnIndex resolves id to a column offset. Names only resolve against
// structured arrays and positions only against plain ones.
func (a *Array) ColumnIndex(id ColumnID) (int, bool) {
	if a.fields != nil {
		if !id.IsName() {
			return 0, false
		}
		for i, f := range a.fields {
			if f.Name == id.Name() {
				return i, true
			}
		}
		return 0, false
	}
	if id.IsName() {
		return 0, false
	}
	p := id.Position()
	return p, p >= 0 && p < a.NumColumns()
}

// Rows returns the number of rows of a 2-dimensional array, treating a
// 1-dimensional array or a single record as one row.
func (a *Array) Rows() int {
	if Is1DLike(a) {
		return 1
	}
	return a.Len()
}

// RowValues returns a copy of row i of a 2-dimensional array or of the only
// row of a 1-dimensional one.
func (a *Array) RowValues(i int) []any {
	width := a.NumColumns()
	if Is1DLike(a) {
		return append([]any(nil), a.data...)
	}
	return append([]any(nil), a.data[i*width:(i+1)*width]...)
}

// Row returns row i of a 2-dimensional array as a 1-dimensional array, or as
// a single record for structured arrays.
func (a *Array) Row(i int) *Array {
	values := a.RowValues(i)
	if a.fields != nil {
		return &Array{shape: []int{}, fields: a.Fields(), data: values}
	}
	return &Array{shape: []int{len(values)}, kind: a.kind, data: values}
}

// Value returns the element at row i and column id.
func (a *Array) Value(i int, id ColumnID) (any, bool) {
	idx, ok := a.ColumnIndex(id)
	if !ok || i < 0 || i >= a.Rows() {
		return nil, false
	}
	return a.data[i*a.NumColumns()+idx], true
}

// Column returns a copy of every value in the given column.
func (a *Array) Column(id ColumnID) ([]any, bool) {
	idx, ok := a.ColumnIndex(id)
	if !ok {
		return nil, false
	}
	rows, width := a.Rows(), a.NumColumns()
	out := make([]any, rows)
	for i := 0; i < rows; i++ {
		out[i] = a.data[i*width+idx]
	}
	return out, true
}

// Values returns a copy of the flat row-major data.
func (a *Array) Values() []any {
	return append([]any(nil), a.data...)
}

// AsBatch wraps a 1-dimensional array or a single record into a one-row
// 2-dimensional array. Other arrays are returned unchanged.
func AsBatch(a *Array) *Array {
	if !Is1DLike(a) {
		return a
	}
	if a.fields != nil {
		return &Array{shape: []int{1}, fields: a.Fields(), data: a.Values()}
	}
	return &Array{shape: []int{1, len(a.data)}, kind: a.kind, data: a.Values()}
}

// SelectFields returns a structured array restricted to the named fields.
func (a *Array) SelectFields(names ...string) (*Array, error) {
	if a.fields == nil {
		return nil, fmt.Errorf("%w: plain arrays have no fields", ErrUnknownField)
	}
	idx := make([]int, len(names))
	fields := make([]Field, len(names))
	for j, n := range names {
		i, ok := a.ColumnIndex(Name(n))
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownField, n)
		}
		idx[j] = i
		fields[j] = a.fields[i]
	}
	if err := checkFields(fields); err != nil {
		return nil, err
	}

	rows, width := a.Rows(), len(a.fields)
	data := make([]any, 0, rows*len(names))
	for r := 0; r < rows; r++ {
		for _, i := range idx {
			data = append(data, a.data[r*width+i])
		}
	}
	return &Array{shape: a.Shape(), fields: fields, data: data}, nil
}

// String renders a short description of the array's layout.
func (a *Array) String() string {
	if a.fields != nil {
		parts := make([]string, len(a.fields))
		for i, f := range a.fields {
			parts[i] = f.String()
		}
		return fmt.Sprintf("structured%v{%s}", a.shape, strings.Join(parts, ", "))
	}
	return fmt.Sprintf("%s%v", a.kind, a.shape)
}
