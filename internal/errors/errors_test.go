package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestFairlensError_Error(t *testing.T) {
	err := New(ErrCategoryShape, CodeNotTwoDimensional, "not a matrix")
	expected := "[SHAPE:NOT_2D] not a matrix"
	if err.Error() != expected {
		t.Errorf("got %q, want %q", err.Error(), expected)
	}
}

func TestFairlensError_ErrorWithCause(t *testing.T) {
	cause := fmt.Errorf("predict exploded")
	err := Wrap(ErrCategoryModel, CodePredictionFailed, "local model failed", cause)
	expected := "[MODEL:PREDICTION_FAILED] local model failed: predict exploded"
	if err.Error() != expected {
		t.Errorf("got %q, want %q", err.Error(), expected)
	}
}

func TestFairlensError_Unwrap(t *testing.T) {
	cause := fmt.Errorf("root cause")
	err := Wrap(ErrCategoryIO, CodeReadFailed, "read", cause)
	if !errors.Is(err, cause) {
		t.Error("Unwrap should allow errors.Is to find the cause")
	}
}

func TestFairlensError_Is(t *testing.T) {
	err1 := New(ErrCategoryType, CodeDTypeMismatch, "first")
	err2 := New(ErrCategoryType, CodeDTypeMismatch, "second")
	err3 := New(ErrCategoryType, CodeNotBaseType, "different code")

	if !errors.Is(err1, err2) {
		t.Error("errors with same category+code should match via Is")
	}
	if errors.Is(err1, err3) {
		t.Error("errors with different codes should not match via Is")
	}
	if !errors.Is(fmt.Errorf("wrapped: %w", err1), ErrDTypeMismatch) {
		t.Error("wrapped errors should match the sentinel")
	}
}

func TestSentinels(t *testing.T) {
	tests := []struct {
		err      error
		sentinel error
		category ErrorCategory
	}{
		{NewShapeError(CodeNotTwoDimensional, "x"), ErrNotTwoDimensional, ErrCategoryShape},
		{NewShapeError(CodeNotRowLike, "x"), ErrNotRowLike, ErrCategoryShape},
		{NewShapeError(CodeFeatureCount, "x"), ErrFeatureCount, ErrCategoryShape},
		{NewTypeError(CodeNotBaseType, "x"), ErrNotBaseType, ErrCategoryType},
		{NewTypeError(CodeWrongKind, "x"), ErrWrongKind, ErrCategoryType},
		{NewIndexError("x"), ErrInvalidIndices, ErrCategoryIndex},
		{NewModelError(CodeIncompatibleModel, "x", nil), ErrIncompatibleModel, ErrCategoryModel},
		{NewValueError("x"), ErrOutOfRange, ErrCategoryValue},
		{NewContractError("x"), ErrMissingDiscretize, ErrCategoryContract},
	}

	for _, tt := range tests {
		if !errors.Is(tt.err, tt.sentinel) {
			t.Errorf("%v should match %v", tt.err, tt.sentinel)
		}
		if GetCategory(tt.err) != tt.category {
			t.Errorf("%v category=%q, want %q", tt.err, GetCategory(tt.err), tt.category)
		}
	}
}

func TestGetCategory(t *testing.T) {
	err := New(ErrCategoryIndex, CodeInvalidIndices, "bad index")
	if GetCategory(err) != ErrCategoryIndex {
		t.Errorf("got %q, want %q", GetCategory(err), ErrCategoryIndex)
	}
	if GetCategory(fmt.Errorf("plain error")) != "" {
		t.Error("non-FairlensError should return empty category")
	}
}

func TestGetCode(t *testing.T) {
	err := New(ErrCategoryValue, CodeOutOfRange, "negative")
	if GetCode(err) != CodeOutOfRange {
		t.Errorf("got %q, want %q", GetCode(err), CodeOutOfRange)
	}
	if GetCode(fmt.Errorf("plain error")) != "" {
		t.Error("non-FairlensError should return empty code")
	}
}

func TestGetMessage(t *testing.T) {
	err := fmt.Errorf("context: %w", NewValueError("r_fid must be positive."))
	if got := GetMessage(err); got != "r_fid must be positive." {
		t.Errorf("got %q", got)
	}
	if got := GetMessage(fmt.Errorf("plain")); got != "plain" {
		t.Errorf("got %q", got)
	}
	if GetMessage(nil) != "" {
		t.Error("nil error should have empty message")
	}
}

func TestWithDetails(t *testing.T) {
	err := NewIndexError("bad indices")
	detailed := err.WithDetails(map[string]interface{}{"indices": "[1]"})

	if detailed.Details["indices"] != "[1]" {
		t.Error("WithDetails should set details")
	}
	// Original should be unmodified
	if err.Details != nil {
		t.Error("WithDetails should not modify original")
	}
}
