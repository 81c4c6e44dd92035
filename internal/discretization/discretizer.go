// Package discretization provides the shared base of data discretizers:
// dataset validation, categorical/numerical column derivation and
// validation of the rows handed to Discretize.
package discretization

import (
	"fmt"

	"go.uber.org/zap"

	fairerrors "github.com/arkilian/fairlens/internal/errors"
	"github.com/arkilian/fairlens/internal/validation"
	"github.com/arkilian/fairlens/pkg/array"
)

// StringColumnsWarning is recorded once per construction when string
// columns had to be added to the categorical selection.
const StringColumnsWarning = "Some of the string-based columns in the input dataset were not " +
	"selected as categorical features via the categorical_indices " +
	"parameter. String-based columns cannot be treated as numerical " +
	"features, therefore they will be also treated as categorical " +
	"features (in addition to the ones selected with the " +
	"categorical_indices parameter)."

// Messages returned by ValidateDiscretizeInput.
const (
	MsgDataShape    = "data must be a 1-dimensional array, 2-dimensional array or a record for structured rows."
	MsgDataDType    = "The dtype of the data is different to the dtype of the data array used to initialise this discretizer."
	MsgDataFeatures = "The data must contain the same number of features as the dataset used to initialise this discretizer."
)

var discretizeCheck = validation.RowCheck{
	AllowBatch: true,
	Messages: validation.RowMessages{
		Shape:    MsgDataShape,
		DType:    MsgDataDType,
		Features: MsgDataFeatures,
	},
}

// Discretizer transforms a row or a batch of rows into a discretized
// representation such as bin indices.
type Discretizer interface {
	Discretize(data *array.Array) (*array.Array, error)
}

// Option configures a Base.
type Option func(*options)

type options struct {
	logger *zap.Logger
}

// WithLogger sets the logger that receives construction diagnostics.
func WithLogger(logger *zap.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// Base holds the validated dataset and the derived column classification
// every discretizer shares. It is immutable after NewBase returns.
type Base struct {
	dataset        *array.Array
	structured     bool
	categorical    []array.ColumnID
	numerical      []array.ColumnID
	featuresNumber int
	warnings       []string
}

// NewBase validates dataset and the categorical selection and derives the
// numerical columns. String columns missing from categorical are added to it
// and a single warning is recorded.
func NewBase(dataset *array.Array, categorical []array.ColumnID, opts ...Option) (*Base, error) {
	o := options{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(&o)
	}

	if _, err := validation.ValidateInput(dataset, categorical); err != nil {
		return nil, err
	}

	c := validation.Classify(dataset, categorical)
	b := &Base{
		dataset:        dataset,
		structured:     array.IsStructured(dataset),
		categorical:    c.Categorical,
		numerical:      c.Numerical,
		featuresNumber: dataset.NumColumns(),
	}
	if len(c.AutoIncluded) > 0 {
		b.warnings = append(b.warnings, StringColumnsWarning)
		o.logger.Warn(StringColumnsWarning,
			zap.String("auto_included", array.FormatColumnIDs(c.AutoIncluded)))
	}

	o.logger.Debug("discretizer base initialised",
		zap.Bool("structured", b.structured),
		zap.Int("features", b.featuresNumber),
		zap.String("categorical", array.FormatColumnIDs(b.categorical)),
		zap.String("numerical", array.FormatColumnIDs(b.numerical)))

	return b, nil
}

// Dataset returns the dataset the discretizer was fitted on.
func (b *Base) Dataset() *array.Array { return b.dataset }

// IsStructured reports whether the fitted dataset has named fields.
func (b *Base) IsStructured() bool { return b.structured }

// CategoricalIndices returns the categorical columns in column order.
func (b *Base) CategoricalIndices() []array.ColumnID {
	return append([]array.ColumnID{}, b.categorical...)
}

// NumericalIndices returns the numerical columns in column order.
func (b *Base) NumericalIndices() []array.ColumnID {
	return append([]array.ColumnID{}, b.numerical...)
}

// FeaturesNumber returns the number of columns of the fitted dataset.
func (b *Base) FeaturesNumber() int { return b.featuresNumber }

// Warnings returns the non-fatal diagnostics raised during construction.
func (b *Base) Warnings() []string {
	return append([]string(nil), b.warnings...)
}

// ValidateDiscretizeInput checks that data is a row or a batch of rows
// compatible with the fitted dataset. Implementations of Discretize must
// call it before transforming anything.
func (b *Base) ValidateDiscretizeInput(data *array.Array) error {
	return validation.ValidateRows(b.dataset, data, discretizeCheck)
}

// Constructor builds a concrete discretizer on top of a fitted Base.
type Constructor func(base *Base) (any, error)

// Build fits a Base and hands it to ctor. The constructed value must
// implement Discretizer; anything else is rejected before it can be used.
func Build(dataset *array.Array, categorical []array.ColumnID, ctor Constructor, opts ...Option) (Discretizer, error) {
	base, err := NewBase(dataset, categorical, opts...)
	if err != nil {
		return nil, err
	}

	v, err := ctor(base)
	if err != nil {
		return nil, err
	}

	d, ok := v.(Discretizer)
	if !ok {
		return nil, fairerrors.NewContractError(
			fmt.Sprintf("Can't instantiate abstract discretizer %T without a Discretize method.", v))
	}
	return d, nil
}
