// Package transparency measures how faithfully a local surrogate model
// mirrors a global model around an explained data point.
package transparency

import (
	"fmt"
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/arkilian/fairlens/internal/augmentation"
	"github.com/arkilian/fairlens/internal/config"
	fairerrors "github.com/arkilian/fairlens/internal/errors"
	"github.com/arkilian/fairlens/internal/models"
	"github.com/arkilian/fairlens/internal/validation"
	"github.com/arkilian/fairlens/pkg/array"
)

// Messages returned by LocalFidelityScore.
const (
	MsgRowShape          = "The data_row must either be a 1-dimensional array or a record for structured rows."
	MsgRowDType          = "The dtype of the data_row is different to the dtype of the dataset."
	MsgRowFeatures       = "The data_row must contain the same number of features as the dataset."
	MsgIncompatibleModel = "Model is incompatible: it does not implement a usable Predict method."
	MsgRFid              = "r_fid must be a positive float."
	MsgSamplesNumber     = "The samples_number parameter must be a positive integer."
)

var rowCheck = validation.RowCheck{
	Messages: validation.RowMessages{
		Shape:    MsgRowShape,
		DType:    MsgRowDType,
		Features: MsgRowFeatures,
	},
}

// Option configures a local fidelity computation.
type Option func(*options)

type options struct {
	rFid          float64
	samplesNumber int
	seed          int64
	categorical   []array.ColumnID
	logger        *zap.Logger
}

// WithRFid sets the sampling radius as a fraction of the largest distance
// between the data row and the dataset. Defaults to 0.05.
func WithRFid(rFid float64) Option {
	return func(o *options) { o.rFid = rFid }
}

// WithSamplesNumber sets the neighbourhood size. Defaults to 50.
func WithSamplesNumber(n int) Option {
	return func(o *options) { o.samplesNumber = n }
}

// WithSeed makes the sampled neighbourhood reproducible.
func WithSeed(seed int64) Option {
	return func(o *options) { o.seed = seed }
}

// WithCategoricalIndices marks dataset columns the sampler must keep fixed.
func WithCategoricalIndices(ids []array.ColumnID) Option {
	return func(o *options) { o.categorical = ids }
}

// WithLogger sets the logger used for diagnostics.
func WithLogger(logger *zap.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// Result is the outcome of one local fidelity computation.
type Result struct {
	// Score is the agreement between the binarized local and global
	// predictions over the sampled neighbourhood.
	Score float64

	// Degenerate is set when every prediction on both sides carried the same
	// label, in which case Score is 1 by convention.
	Degenerate bool

	// Labels are the distinct binarized labels that were compared.
	Labels []float64
}

// LocalFidelityScore samples a neighbourhood of dataRow within r_fid of the
// dataset's spread, labels it with both models and returns how often the
// binarized local predictions agree with global predictions of globalClass.
func LocalFidelityScore(dataset, dataRow *array.Array, local, global models.Predictor, globalClass int, opts ...Option) (float64, error) {
	res, err := Compute(dataset, dataRow, local, global, globalClass, opts...)
	if err != nil {
		return 0, err
	}
	return res.Score, nil
}

// Compute is LocalFidelityScore returning the full Result.
func Compute(dataset, dataRow *array.Array, local, global models.Predictor, globalClass int, opts ...Option) (*Result, error) {
	o := options{
		rFid:          config.DefaultRFid,
		samplesNumber: config.DefaultSamplesNumber,
		seed:          time.Now().UnixNano(),
		logger:        zap.NewNop(),
	}
	for _, opt := range opts {
		opt(&o)
	}

	if err := validateInput(dataset, dataRow, local, global, o); err != nil {
		return nil, err
	}

	sampler, err := augmentation.NewLocalFidelity(dataset, o.categorical,
		augmentation.WithIntToFloat(true),
		augmentation.WithSeed(o.seed),
		augmentation.WithLogger(o.logger))
	if err != nil {
		return nil, err
	}
	sampled, err := sampler.Sample(dataRow, o.rFid, o.samplesNumber)
	if err != nil {
		return nil, err
	}

	localPredictions, err := predict("local", local, sampled)
	if err != nil {
		return nil, err
	}
	globalPredictions, err := predict("global", global, sampled)
	if err != nil {
		return nil, err
	}

	localLabels := BinarizeProbabilities(localPredictions)
	globalLabels := BinarizeClass(globalPredictions, globalClass)

	cm, labels, err := models.ConfusionMatrix(localLabels, globalLabels)
	if err != nil {
		return nil, fairerrors.NewInternalError("failed to build confusion matrix", err)
	}

	res := &Result{Labels: labels}
	if rows, _ := cm.Dims(); rows == 1 {
		res.Score = 1.0
		res.Degenerate = true
	} else {
		res.Score = models.Accuracy(cm)
	}

	o.logger.Debug("local fidelity computed",
		zap.Int("global_class", globalClass),
		zap.Float64("score", res.Score),
		zap.Bool("degenerate", res.Degenerate),
		zap.Int("samples", o.samplesNumber))

	return res, nil
}

func validateInput(dataset, dataRow *array.Array, local, global models.Predictor, o options) error {
	if !array.Is2D(dataset) {
		return fairerrors.NewShapeError(fairerrors.CodeNotTwoDimensional, validation.MsgDatasetNotTwoDimensional)
	}
	if !array.IsBase(dataset) {
		return fairerrors.NewTypeError(fairerrors.CodeNotBaseType, validation.MsgDatasetNotBaseType)
	}
	if err := validation.ValidateRows(dataset, dataRow, rowCheck); err != nil {
		return err
	}

	if !models.CheckModelFunctionality(global, true, o.logger) {
		return fairerrors.NewModelError(fairerrors.CodeIncompatibleModel, MsgIncompatibleModel, nil).
			WithDetails(map[string]interface{}{"model": "global"})
	}
	if !models.CheckModelFunctionality(local, true, o.logger) {
		return fairerrors.NewModelError(fairerrors.CodeIncompatibleModel, MsgIncompatibleModel, nil).
			WithDetails(map[string]interface{}{"model": "local"})
	}

	if !(o.rFid > 0) {
		return fairerrors.NewValueError(MsgRFid)
	}
	if o.samplesNumber < 1 {
		return fairerrors.NewValueError(MsgSamplesNumber)
	}
	return nil
}

func predict(role string, model models.Predictor, sampled *array.Array) ([]float64, error) {
	predictions, err := model.Predict(sampled)
	if err != nil {
		return nil, fairerrors.NewModelError(fairerrors.CodePredictionFailed,
			fmt.Sprintf("%s model prediction failed", role), err)
	}
	if len(predictions) != sampled.Rows() {
		return nil, fairerrors.NewModelError(fairerrors.CodePredictionFailed,
			fmt.Sprintf("%s model returned %d predictions for %d samples", role, len(predictions), sampled.Rows()), nil)
	}
	for i, p := range predictions {
		if math.IsNaN(p) || math.IsInf(p, 0) {
			return nil, fairerrors.NewModelError(fairerrors.CodePredictionFailed,
				fmt.Sprintf("%s model returned a non-finite prediction %v for sample %d", role, p, i), nil).
				WithDetails(map[string]interface{}{"model": role, "sample": i})
		}
	}
	return predictions, nil
}

// BinarizeProbabilities maps values above 0.5 to 1 and values below 0.5 to
// 0 in a new slice. A value of exactly 0.5 is copied unchanged.
func BinarizeProbabilities(predictions []float64) []float64 {
	out := make([]float64, len(predictions))
	for i, p := range predictions {
		switch {
		case p > 0.5:
			out[i] = 1
		case p < 0.5:
			out[i] = 0
		default:
			out[i] = p
		}
	}
	return out
}

// BinarizeClass maps predictions equal to class to 1 and everything else to
// 0 in a new slice.
func BinarizeClass(predictions []float64, class int) []float64 {
	out := make([]float64, len(predictions))
	target := float64(class)
	for i, p := range predictions {
		if p == target {
			out[i] = 1
		}
	}
	return out
}
