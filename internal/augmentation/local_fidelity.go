// Package augmentation generates synthetic data around existing data points.
package augmentation

import (
	"fmt"
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/spaolacci/murmur3"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/floats"

	fairerrors "github.com/arkilian/fairlens/internal/errors"
	"github.com/arkilian/fairlens/internal/validation"
	"github.com/arkilian/fairlens/pkg/array"
)

// Messages returned by Sample.
const (
	MsgRowShape    = "The data_row must either be a 1-dimensional array or a record for structured rows."
	MsgRowDType    = "The dtype of the data_row is different to the dtype of the data array used to initialise this class."
	MsgRowFeatures = "The data_row must contain the same number of features as the dataset used to initialise this class."
	MsgRadius      = "The fidelity_radius_percentage must be a positive number."
	MsgSamples     = "The samples_number parameter must be a positive integer."
)

var rowCheck = validation.RowCheck{
	Messages: validation.RowMessages{
		Shape:    MsgRowShape,
		DType:    MsgRowDType,
		Features: MsgRowFeatures,
	},
}

// Option configures a LocalFidelity sampler.
type Option func(*options)

type options struct {
	intToFloat bool
	seed       int64
	logger     *zap.Logger
}

// WithIntToFloat promotes integer numerical columns to floats in the
// sampled data. Without it sampled integer features are rounded.
func WithIntToFloat(enabled bool) Option {
	return func(o *options) { o.intToFloat = enabled }
}

// WithSeed fixes the random source so sampling is reproducible.
func WithSeed(seed int64) Option {
	return func(o *options) { o.seed = seed }
}

// WithLogger sets the logger used for diagnostics.
func WithLogger(logger *zap.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// LocalFidelity samples uniformly from an L2 ball around a data point. The
// ball's radius is a fraction of the largest distance between that point and
// any row of the dataset, measured over the numerical features. Categorical
// features of the samples are copied from the point.
type LocalFidelity struct {
	dataset     *array.Array
	numerical   []int
	categorical []array.ColumnID
	points      [][]float64
	intToFloat  bool
	logger      *zap.Logger

	mu  sync.Mutex
	rng *rand.Rand
}

// NewLocalFidelity validates dataset and prepares its numerical features for
// distance computations.
func NewLocalFidelity(dataset *array.Array, categorical []array.ColumnID, opts ...Option) (*LocalFidelity, error) {
	o := options{seed: time.Now().UnixNano(), logger: zap.NewNop()}
	for _, opt := range opts {
		opt(&o)
	}

	if _, err := validation.ValidateInput(dataset, categorical); err != nil {
		return nil, err
	}
	c := validation.Classify(dataset, categorical)
	if len(c.AutoIncluded) > 0 {
		o.logger.Warn("string columns treated as categorical",
			zap.String("auto_included", array.FormatColumnIDs(c.AutoIncluded)))
	}

	lf := &LocalFidelity{
		dataset:     dataset,
		categorical: c.Categorical,
		intToFloat:  o.intToFloat,
		logger:      o.logger,
		rng:         rand.New(rand.NewSource(o.seed)),
	}
	for _, id := range c.Numerical {
		idx, _ := dataset.ColumnIndex(id)
		lf.numerical = append(lf.numerical, idx)
	}

	lf.points = make([][]float64, dataset.Rows())
	for r := range lf.points {
		lf.points[r] = lf.numericalValues(dataset.RowValues(r))
	}
	return lf, nil
}

// CategoricalIndices returns the categorical columns of the dataset.
func (lf *LocalFidelity) CategoricalIndices() []array.ColumnID {
	return append([]array.ColumnID{}, lf.categorical...)
}

func (lf *LocalFidelity) numericalValues(row []any) []float64 {
	out := make([]float64, len(lf.numerical))
	for i, idx := range lf.numerical {
		out[i], _ = array.ToFloat(row[idx])
	}
	return out
}

// MaxDistance returns the largest L2 distance between center and any
// dataset row over the numerical features.
func (lf *LocalFidelity) MaxDistance(center []float64) float64 {
	var farthest float64
	for _, p := range lf.points {
		if d := floats.Distance(center, p, 2); d > farthest {
			farthest = d
		}
	}
	return farthest
}

// Sample draws samplesNumber points uniformly from the ball of radius
// radiusPercentage * MaxDistance around dataRow. The result has the column
// layout of the dataset, with integer columns promoted to floats when the
// sampler was built WithIntToFloat.
func (lf *LocalFidelity) Sample(dataRow *array.Array, radiusPercentage float64, samplesNumber int) (*array.Array, error) {
	if err := validation.ValidateRows(lf.dataset, dataRow, rowCheck); err != nil {
		return nil, err
	}
	if !(radiusPercentage > 0) {
		return nil, fairerrors.NewValueError(MsgRadius)
	}
	if samplesNumber < 1 {
		return nil, fairerrors.NewValueError(MsgSamples)
	}

	row := dataRow.RowValues(0)
	center := lf.numericalValues(row)
	radius := radiusPercentage * lf.MaxDistance(center)

	lf.mu.Lock()
	offsets := lf.ballSamples(len(center), radius, samplesNumber)
	lf.mu.Unlock()

	records := make([][]any, samplesNumber)
	point := make([]float64, len(center))
	for s := range records {
		floats.AddTo(point, center, offsets[s])
		rec := append([]any(nil), row...)
		for i, idx := range lf.numerical {
			rec[idx] = point[i]
		}
		records[s] = rec
	}

	lf.logger.Debug("sampled local neighbourhood",
		zap.Int("samples", samplesNumber),
		zap.Float64("radius", radius),
		zap.Int("numerical_features", len(center)))

	return lf.build(records)
}

// ballSamples returns n offsets distributed uniformly inside a d-dimensional
// ball: a Gaussian direction scaled by radius * u^(1/d).
func (lf *LocalFidelity) ballSamples(d int, radius float64, n int) [][]float64 {
	out := make([][]float64, n)
	for s := range out {
		v := make([]float64, d)
		if d == 0 {
			out[s] = v
			continue
		}
		for i := range v {
			v[i] = lf.rng.NormFloat64()
		}
		norm := floats.Norm(v, 2)
		if norm == 0 {
			out[s] = v
			continue
		}
		r := radius * math.Pow(lf.rng.Float64(), 1/float64(d))
		floats.Scale(r/norm, v)
		out[s] = v
	}
	return out
}

func (lf *LocalFidelity) build(records [][]any) (*array.Array, error) {
	numerical := make(map[int]bool, len(lf.numerical))
	for _, idx := range lf.numerical {
		numerical[idx] = true
	}

	if array.IsStructured(lf.dataset) {
		fields := lf.dataset.Fields()
		for idx := range numerical {
			if fields[idx].Kind != array.KindInt {
				continue
			}
			if lf.intToFloat {
				fields[idx].Kind = array.KindFloat
				continue
			}
			for _, rec := range records {
				rec[idx] = int64(math.Round(rec[idx].(float64)))
			}
		}
		return array.NewStructured(fields, records)
	}

	if lf.dataset.Kind() == array.KindInt && !lf.intToFloat {
		for _, rec := range records {
			for idx := range numerical {
				rec[idx] = int64(math.Round(rec[idx].(float64)))
			}
		}
	}
	if lf.dataset.Kind() == array.KindInt && lf.intToFloat {
		for _, rec := range records {
			for i, v := range rec {
				rec[i], _ = array.ToFloat(v)
			}
		}
	}

	flat := make([]any, 0, len(records)*lf.dataset.NumColumns())
	for _, rec := range records {
		flat = append(flat, rec...)
	}
	return array.New([]int{len(records), lf.dataset.NumColumns()}, flat)
}

// RowSeed derives a reproducible seed for a data row by mixing base with a
// murmur3 hash of the row's values.
func RowSeed(base int64, row *array.Array) int64 {
	h := murmur3.New64()
	for _, v := range row.Values() {
		fmt.Fprintf(h, "%T:%v|", v, v)
	}
	return base ^ int64(h.Sum64())
}
