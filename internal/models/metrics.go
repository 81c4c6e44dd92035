package models

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/mat"
)

// ConfusionMatrix counts label co-occurrences between two equal-length label
// sequences. Labels are the sorted union of both inputs and must be finite.
// Rows index the predicted label and columns the ground truth label.
func ConfusionMatrix(groundTruth, predictions []float64) (*mat.Dense, []float64, error) {
	if len(groundTruth) != len(predictions) {
		return nil, nil, fmt.Errorf("label sequences differ in length: %d vs %d", len(groundTruth), len(predictions))
	}
	if len(groundTruth) == 0 {
		return nil, nil, fmt.Errorf("label sequences are empty")
	}

	seen := make(map[float64]bool)
	for _, seq := range [][]float64{groundTruth, predictions} {
		for i, v := range seq {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return nil, nil, fmt.Errorf("label %d is not finite: %v", i, v)
			}
			seen[v] = true
		}
	}
	labels := make([]float64, 0, len(seen))
	for v := range seen {
		labels = append(labels, v)
	}
	sort.Float64s(labels)

	pos := make(map[float64]int, len(labels))
	for i, v := range labels {
		pos[v] = i
	}

	cm := mat.NewDense(len(labels), len(labels), nil)
	for i := range groundTruth {
		r, c := pos[predictions[i]], pos[groundTruth[i]]
		cm.Set(r, c, cm.At(r, c)+1)
	}
	return cm, labels, nil
}

// Accuracy returns the fraction of observations on the diagonal of a square
// confusion matrix. An empty matrix has zero accuracy.
func Accuracy(cm mat.Matrix) float64 {
	total := mat.Sum(cm)
	if total == 0 {
		return 0
	}
	return mat.Trace(cm) / total
}
