// Package validation checks tabular datasets, categorical column selections
// and query rows before they reach a discretizer, a sampler or a scorer.
package validation

import (
	"fmt"

	fairerrors "github.com/arkilian/fairlens/internal/errors"
	"github.com/arkilian/fairlens/pkg/array"
)

// Error messages returned by ValidateInput.
const (
	MsgDatasetNotTwoDimensional = "The input dataset must be a 2-dimensional array."
	MsgDatasetNotBaseType       = "The input dataset must be of a base type."
	msgInvalidIndices           = "The following indices are invalid for the input dataset: %s."
)

// ValidateInput checks that dataset is a 2-dimensional array of base
// elements and that every categorical identifier names one of its columns.
// All invalid identifiers are reported together, in the order given. The
// dataset is never modified.
func ValidateInput(dataset *array.Array, categorical []array.ColumnID) (bool, error) {
	if !array.Is2D(dataset) {
		return false, fairerrors.NewShapeError(fairerrors.CodeNotTwoDimensional, MsgDatasetNotTwoDimensional)
	}
	if !array.IsBase(dataset) {
		return false, fairerrors.NewTypeError(fairerrors.CodeNotBaseType, MsgDatasetNotBaseType)
	}

	// A nil selection is valid; the element type of the slice already rules
	// out anything that is not an ordered list of identifiers.
	var invalid []array.ColumnID
	for _, id := range categorical {
		if _, ok := dataset.ColumnIndex(id); !ok {
			invalid = append(invalid, id)
		}
	}
	if len(invalid) > 0 {
		formatted := array.FormatColumnIDs(invalid)
		return false, fairerrors.NewIndexError(fmt.Sprintf(msgInvalidIndices, formatted)).
			WithDetails(map[string]interface{}{"indices": invalid})
	}

	return true, nil
}

// Classification splits the columns of a dataset into categorical and
// numerical features. Both lists follow column order and together cover
// every column exactly once.
type Classification struct {
	Categorical []array.ColumnID
	Numerical   []array.ColumnID

	// AutoIncluded lists string columns that were not requested as
	// categorical but had to be treated as such.
	AutoIncluded []array.ColumnID
}

// Classify derives the column classification of a dataset that already
// passed ValidateInput. String columns are always categorical.
func Classify(dataset *array.Array, categorical []array.ColumnID) Classification {
	selected := make(map[array.ColumnID]bool, len(categorical))
	for _, id := range categorical {
		selected[id] = true
	}

	var c Classification
	for _, id := range array.StringColumns(dataset) {
		if !selected[id] {
			selected[id] = true
			c.AutoIncluded = append(c.AutoIncluded, id)
		}
	}

	c.Categorical = []array.ColumnID{}
	c.Numerical = []array.ColumnID{}
	for _, id := range dataset.Columns() {
		if selected[id] {
			c.Categorical = append(c.Categorical, id)
		} else {
			c.Numerical = append(c.Numerical, id)
		}
	}
	return c
}
