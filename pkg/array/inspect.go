package array

// Is2D reports whether a is a 2-dimensional plain array or a 1-dimensional
// batch of structured records.
func Is2D(a *Array) bool {
	if a == nil {
		return false
	}
	if a.fields != nil {
		return len(a.shape) == 1
	}
	return len(a.shape) == 2
}

// Is1DLike reports whether a is a 1-dimensional plain array or a single
// structured record.
func Is1DLike(a *Array) bool {
	if a == nil {
		return false
	}
	if a.fields != nil {
		return len(a.shape) == 0
	}
	return len(a.shape) == 1
}

// IsStructured reports whether a carries named fields.
func IsStructured(a *Array) bool {
	return a != nil && a.fields != nil
}

// IsBase reports whether every element of a is numerical or textual.
func IsBase(a *Array) bool {
	if a == nil {
		return false
	}
	if a.fields != nil {
		for _, f := range a.fields {
			if !f.Kind.IsBase() {
				return false
			}
		}
		return true
	}
	return a.kind.IsBase()
}

// AreSimilarKinds compares two element kinds. A strict comparison requires
// equality; otherwise both kinds only need to be numerical or both textual.
func AreSimilarKinds(a, b Kind, strict bool) bool {
	if strict {
		return a == b
	}
	if a.IsNumerical() && b.IsNumerical() {
		return true
	}
	return a.IsTextual() && b.IsTextual()
}

// AreSimilarDTypeArrays reports whether a and b have column-wise compatible
// element kinds. A plain array is never similar to a structured one;
// structured arrays must also share field names in the same order.
func AreSimilarDTypeArrays(a, b *Array, strict bool) bool {
	if a == nil || b == nil {
		return false
	}
	if IsStructured(a) != IsStructured(b) {
		return false
	}
	if !IsStructured(a) {
		return AreSimilarKinds(a.kind, b.kind, strict)
	}
	if len(a.fields) != len(b.fields) {
		return false
	}
	for i := range a.fields {
		if a.fields[i].Name != b.fields[i].Name {
			return false
		}
		if !AreSimilarKinds(a.fields[i].Kind, b.fields[i].Kind, strict) {
			return false
		}
	}
	return true
}

// StringColumns returns, in column order, every column holding text.
func StringColumns(a *Array) []ColumnID {
	var ids []ColumnID
	for _, id := range a.Columns() {
		if k, _ := a.ColumnKind(id); k.IsTextual() {
			ids = append(ids, id)
		}
	}
	return ids
}

// NumericalColumns returns, in column order, every column holding numbers.
func NumericalColumns(a *Array) []ColumnID {
	var ids []ColumnID
	for _, id := range a.Columns() {
		if k, _ := a.ColumnKind(id); k.IsNumerical() {
			ids = append(ids, id)
		}
	}
	return ids
}
