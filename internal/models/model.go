// Package models defines the prediction contract fairlens expects from
// externally trained models and the agreement metrics computed over their
// outputs.
package models

import (
	"fmt"
	"reflect"

	"go.uber.org/zap"

	"github.com/arkilian/fairlens/pkg/array"
)

// Predictor is a trained model that can label a batch of rows.
// Implementations must be safe for concurrent read-only use when shared
// between scoring goroutines.
type Predictor interface {
	// Predict returns one prediction per row of X.
	Predict(X *array.Array) ([]float64, error)
}

// PredictorFunc adapts an ordinary function to the Predictor interface.
type PredictorFunc func(X *array.Array) ([]float64, error)

// Predict calls f(X).
func (f PredictorFunc) Predict(X *array.Array) ([]float64, error) {
	return f(X)
}

// CheckModelFunctionality reports whether model exposes a usable Predict
// operation. Nil models and typed nil pointers fail the check. Unless
// suppressWarning is set, failures are logged.
func CheckModelFunctionality(model any, suppressWarning bool, logger *zap.Logger) bool {
	if logger == nil {
		logger = zap.NewNop()
	}

	p, ok := model.(Predictor)
	if ok && !isNilValue(p) {
		return true
	}

	if !suppressWarning {
		logger.Warn("model does not implement a usable Predict method",
			zap.String("model_type", fmt.Sprintf("%T", model)))
	}
	return false
}

func isNilValue(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Ptr, reflect.Func, reflect.Map, reflect.Slice, reflect.Interface, reflect.Chan:
		return rv.IsNil()
	default:
		return false
	}
}
