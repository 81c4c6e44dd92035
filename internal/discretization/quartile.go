package discretization

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/arkilian/fairlens/pkg/array"
)

var quartiles = []float64{0.25, 0.5, 0.75}

// QuartileDiscretizer replaces every numerical feature with the index (0-3)
// of the dataset quartile bin it falls into. Categorical features pass
// through untouched.
type QuartileDiscretizer struct {
	*Base

	// bins holds the three quartile edges of each numerical column, keyed by
	// column offset.
	bins  map[int][]float64
	names map[array.ColumnID][]string
}

var _ Discretizer = (*QuartileDiscretizer)(nil)

// NewQuartileDiscretizer fits quartile bins on the numerical columns of
// dataset.
func NewQuartileDiscretizer(dataset *array.Array, categorical []array.ColumnID, opts ...Option) (*QuartileDiscretizer, error) {
	base, err := NewBase(dataset, categorical, opts...)
	if err != nil {
		return nil, err
	}
	return newQuartile(base), nil
}

// QuartileConstructor adapts NewQuartileDiscretizer to Build.
func QuartileConstructor(base *Base) (any, error) {
	return newQuartile(base), nil
}

func newQuartile(base *Base) *QuartileDiscretizer {
	q := &QuartileDiscretizer{
		Base:  base,
		bins:  make(map[int][]float64, len(base.numerical)),
		names: make(map[array.ColumnID][]string, len(base.numerical)),
	}
	for _, id := range base.numerical {
		column, _ := base.dataset.Column(id)
		values := make([]float64, 0, len(column))
		for _, v := range column {
			f, _ := array.ToFloat(v)
			values = append(values, f)
		}
		sort.Float64s(values)

		edges := make([]float64, len(quartiles))
		if len(values) > 0 {
			for i, p := range quartiles {
				edges[i] = stat.Quantile(p, stat.Empirical, values, nil)
			}
		}

		idx, _ := base.dataset.ColumnIndex(id)
		q.bins[idx] = edges
		q.names[id] = binNames(featureName(id), edges)
	}
	return q
}

func featureName(id array.ColumnID) string {
	if id.IsName() {
		return id.Name()
	}
	return fmt.Sprintf("feature_%d", id.Position())
}

func binNames(name string, edges []float64) []string {
	names := make([]string, 0, len(edges)+1)
	names = append(names, fmt.Sprintf("%s <= %.2f", name, edges[0]))
	for i := 1; i < len(edges); i++ {
		names = append(names, fmt.Sprintf("%.2f < %s <= %.2f", edges[i-1], name, edges[i]))
	}
	names = append(names, fmt.Sprintf("%s > %.2f", name, edges[len(edges)-1]))
	return names
}

// Bins returns the quartile edges fitted for a numerical column.
func (q *QuartileDiscretizer) Bins(id array.ColumnID) ([]float64, bool) {
	idx, ok := q.dataset.ColumnIndex(id)
	if !ok {
		return nil, false
	}
	edges, ok := q.bins[idx]
	if !ok {
		return nil, false
	}
	return append([]float64(nil), edges...), true
}

// FeatureValueNames returns a human readable label for every bin of every
// numerical column.
func (q *QuartileDiscretizer) FeatureValueNames() map[array.ColumnID][]string {
	out := make(map[array.ColumnID][]string, len(q.names))
	for id, names := range q.names {
		out[id] = append([]string(nil), names...)
	}
	return out
}

// Discretize maps numerical features to their bin index. The result keeps
// the layout of data: a row stays a row and a batch stays a batch. Plain
// arrays become float arrays; structured numerical fields become int fields.
func (q *QuartileDiscretizer) Discretize(data *array.Array) (*array.Array, error) {
	if err := q.ValidateDiscretizeInput(data); err != nil {
		return nil, err
	}

	rows := data.Rows()
	out := make([][]any, rows)
	for r := 0; r < rows; r++ {
		values := data.RowValues(r)
		for idx, edges := range q.bins {
			f, _ := array.ToFloat(values[idx])
			values[idx] = int64(binIndex(edges, f))
		}
		out[r] = values
	}

	if q.structured {
		fields := data.Fields()
		for idx := range q.bins {
			fields[idx].Kind = array.KindInt
		}
		if array.Is1DLike(data) {
			return array.Record(fields, out[0]...)
		}
		return array.NewStructured(fields, out)
	}

	if array.Is1DLike(data) {
		return array.New([]int{len(out[0])}, toFloatRow(out[0]))
	}
	flat := make([]any, 0, rows*q.featuresNumber)
	for _, r := range out {
		flat = append(flat, toFloatRow(r)...)
	}
	return array.New([]int{rows, q.featuresNumber}, flat)
}

// toFloatRow promotes integer bin indices next to float features so a plain
// output row keeps a single numerical kind. Text rows are left as they are.
func toFloatRow(values []any) []any {
	for _, v := range values {
		if _, ok := v.(string); ok {
			return values
		}
	}
	for i, v := range values {
		if f, ok := array.ToFloat(v); ok {
			values[i] = f
		}
	}
	return values
}

// binIndex counts the edges strictly below v, so a value equal to an edge
// falls into the lower bin.
func binIndex(edges []float64, v float64) int {
	return sort.Search(len(edges), func(i int) bool { return edges[i] >= v })
}
