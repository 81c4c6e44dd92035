package validation

import (
	fairerrors "github.com/arkilian/fairlens/internal/errors"
	"github.com/arkilian/fairlens/pkg/array"
)

// RowMessages holds the caller-facing wording of row validation failures.
type RowMessages struct {
	Shape    string
	DType    string
	Features string
}

// RowCheck describes how query data is validated against a fitted dataset.
type RowCheck struct {
	// AllowBatch accepts 2-dimensional batches in addition to single rows.
	AllowBatch bool

	Messages RowMessages
}

// ValidateRows checks that data is a single row (or, with AllowBatch, a
// batch of rows) whose element kinds strictly match dataset column by column
// and, for plain arrays, whose feature count matches. For structured arrays
// the kind check already implies identical fields.
func ValidateRows(dataset, data *array.Array, check RowCheck) error {
	rowLike := array.Is1DLike(data)
	if !rowLike && !(check.AllowBatch && array.Is2D(data)) {
		return fairerrors.NewShapeError(fairerrors.CodeNotRowLike, check.Messages.Shape)
	}

	if !array.AreSimilarDTypeArrays(dataset, array.AsBatch(data), true) {
		return fairerrors.NewTypeError(fairerrors.CodeDTypeMismatch, check.Messages.DType)
	}

	if !array.IsStructured(dataset) && data.NumColumns() != dataset.NumColumns() {
		return fairerrors.NewShapeError(fairerrors.CodeFeatureCount, check.Messages.Features)
	}

	return nil
}
