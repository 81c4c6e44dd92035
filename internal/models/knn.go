package models

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/floats"

	fairerrors "github.com/arkilian/fairlens/internal/errors"
	"github.com/arkilian/fairlens/pkg/array"
)

// KNN is a k-nearest neighbours classifier that keeps its training rows in
// memory. Numerical values contribute their squared difference to the
// distance; any other pair of values adds 1 when they differ.
//
// A KNN is read-only after construction and safe for concurrent use.
type KNN struct {
	k      int
	width  int
	rows   [][]any
	labels []float64
}

// NewKNN stores the rows of X with their labels y. k is capped at the
// number of training rows.
func NewKNN(k int, X *array.Array, y []float64) (*KNN, error) {
	if k < 1 {
		return nil, fairerrors.NewValueError(fmt.Sprintf("k must be a positive integer, got %d", k))
	}
	if !array.Is2D(X) {
		return nil, fairerrors.NewShapeError(fairerrors.CodeNotTwoDimensional, "training data must be a 2-dimensional array.")
	}
	if X.Rows() == 0 {
		return nil, fairerrors.NewValueError("training data holds no rows")
	}
	if X.Rows() != len(y) {
		return nil, fairerrors.NewValueError(fmt.Sprintf("got %d labels for %d training rows", len(y), X.Rows()))
	}

	m := &KNN{
		k:      min(k, X.Rows()),
		width:  X.NumColumns(),
		rows:   make([][]any, X.Rows()),
		labels: append([]float64(nil), y...),
	}
	for i := range m.rows {
		m.rows[i] = X.RowValues(i)
	}
	return m, nil
}

// K returns the effective number of neighbours.
func (m *KNN) K() int {
	return m.k
}

// Predict returns the majority label among the k nearest training rows of
// each row of X. Ties go to the smallest label.
func (m *KNN) Predict(X *array.Array) ([]float64, error) {
	return m.vote(X, func(counts map[float64]int) float64 {
		best, bestCount := 0.0, -1
		for label, c := range counts {
			if c > bestCount || (c == bestCount && label < best) {
				best, bestCount = label, c
			}
		}
		return best
	})
}

// Probability returns a Predictor yielding, per row, the fraction of the k
// nearest training rows labelled class.
func (m *KNN) Probability(class float64) Predictor {
	return PredictorFunc(func(X *array.Array) ([]float64, error) {
		return m.vote(X, func(counts map[float64]int) float64 {
			return float64(counts[class]) / float64(m.k)
		})
	})
}

func (m *KNN) vote(X *array.Array, decide func(map[float64]int) float64) ([]float64, error) {
	if X == nil {
		return nil, fairerrors.NewShapeError(fairerrors.CodeNotTwoDimensional, "rows to predict must be a 2-dimensional array.")
	}
	X = array.AsBatch(X)
	if !array.Is2D(X) {
		return nil, fairerrors.NewShapeError(fairerrors.CodeNotTwoDimensional, "rows to predict must be a 2-dimensional array.")
	}
	if X.NumColumns() != m.width {
		return nil, fairerrors.NewShapeError(fairerrors.CodeFeatureCount,
			fmt.Sprintf("rows to predict have %d features, the model was trained on %d", X.NumColumns(), m.width))
	}

	out := make([]float64, X.Rows())
	for i := range out {
		counts := make(map[float64]int, m.k)
		for _, j := range m.nearest(X.RowValues(i)) {
			counts[m.labels[j]]++
		}
		out[i] = decide(counts)
	}
	return out, nil
}

// nearest returns the indices of the k training rows closest to row. Rows at
// equal distance keep their training order.
func (m *KNN) nearest(row []any) []int {
	dist := make([]float64, len(m.rows))
	idx := make([]int, len(m.rows))
	for j, train := range m.rows {
		dist[j] = distanceSquared(row, train)
		idx[j] = j
	}
	sort.SliceStable(idx, func(a, b int) bool { return dist[idx[a]] < dist[idx[b]] })
	return idx[:m.k]
}

func distanceSquared(a, b []any) float64 {
	var xs, ys []float64
	mismatches := 0.0
	for i := range a {
		x, okX := array.ToFloat(a[i])
		y, okY := array.ToFloat(b[i])
		if okX && okY {
			xs = append(xs, x)
			ys = append(ys, y)
			continue
		}
		if a[i] != b[i] {
			mismatches++
		}
	}
	if len(xs) == 0 {
		return mismatches
	}
	d := floats.Distance(xs, ys, 2)
	return d*d + mismatches
}
