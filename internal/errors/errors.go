// Package errors provides structured error types for fairlens.
// All errors carry a category, a code and a message so callers can tell a
// malformed array from an unusable model without matching on strings.
package errors

import (
	"errors"
	"fmt"
)

// ErrorCategory classifies errors by the kind of contract that was broken.
type ErrorCategory string

const (
	ErrCategoryShape    ErrorCategory = "SHAPE"
	ErrCategoryType     ErrorCategory = "TYPE"
	ErrCategoryIndex    ErrorCategory = "INDEX"
	ErrCategoryModel    ErrorCategory = "MODEL"
	ErrCategoryValue    ErrorCategory = "VALUE"
	ErrCategoryContract ErrorCategory = "CONTRACT"
	ErrCategoryConfig   ErrorCategory = "CONFIG"
	ErrCategoryIO       ErrorCategory = "IO"
	ErrCategoryInternal ErrorCategory = "INTERNAL"
)

// Error codes for each category.
const (
	// Shape codes
	CodeNotTwoDimensional = "NOT_2D"
	CodeNotRowLike        = "NOT_ROW_LIKE"
	CodeFeatureCount      = "FEATURE_COUNT"

	// Type codes
	CodeNotBaseType   = "NOT_BASE_TYPE"
	CodeDTypeMismatch = "DTYPE_MISMATCH"
	CodeWrongKind     = "WRONG_KIND"

	// Index codes
	CodeInvalidIndices = "INVALID_INDICES"

	// Model codes
	CodeIncompatibleModel = "INCOMPATIBLE_MODEL"
	CodePredictionFailed  = "PREDICTION_FAILED"

	// Value codes
	CodeOutOfRange = "OUT_OF_RANGE"

	// Contract codes
	CodeMissingDiscretize = "MISSING_DISCRETIZE"

	// Config codes
	CodeInvalidConfig = "INVALID_CONFIG"

	// IO codes
	CodeReadFailed = "READ_FAILED"

	// Internal codes
	CodeUnexpected = "UNEXPECTED"
)

// FairlensError is the structured error type used throughout the module.
type FairlensError struct {
	Category ErrorCategory
	Code     string
	Message  string
	Details  map[string]interface{}
	Cause    error
}

// Error returns the human readable message, prefixed with category and code.
func (e *FairlensError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s:%s] %s: %v", e.Category, e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s:%s] %s", e.Category, e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As compatibility.
func (e *FairlensError) Unwrap() error {
	return e.Cause
}

// Is reports whether the target matches this error's category and code.
func (e *FairlensError) Is(target error) bool {
	var t *FairlensError
	if errors.As(target, &t) {
		return e.Category == t.Category && e.Code == t.Code
	}
	return false
}

// New creates a new FairlensError.
func New(category ErrorCategory, code, message string) *FairlensError {
	return &FairlensError{
		Category: category,
		Code:     code,
		Message:  message,
	}
}

// Wrap creates a new FairlensError wrapping an existing error.
func Wrap(category ErrorCategory, code, message string, cause error) *FairlensError {
	return &FairlensError{
		Category: category,
		Code:     code,
		Message:  message,
		Cause:    cause,
	}
}

// WithDetails returns a copy of the error with additional details.
func (e *FairlensError) WithDetails(details map[string]interface{}) *FairlensError {
	cp := *e
	cp.Details = details
	return &cp
}

// GetCategory extracts the error category from an error chain.
// Returns empty string if the error is not a FairlensError.
func GetCategory(err error) ErrorCategory {
	var fe *FairlensError
	if errors.As(err, &fe) {
		return fe.Category
	}
	return ""
}

// GetCode extracts the error code from an error chain.
// Returns empty string if the error is not a FairlensError.
func GetCode(err error) string {
	var fe *FairlensError
	if errors.As(err, &fe) {
		return fe.Code
	}
	return ""
}

// GetMessage extracts the bare message (no category prefix) from an error
// chain. Returns the full error text for foreign errors.
func GetMessage(err error) string {
	var fe *FairlensError
	if errors.As(err, &fe) {
		return fe.Message
	}
	if err == nil {
		return ""
	}
	return err.Error()
}

// Convenience constructors for common errors.

func NewShapeError(code, message string) *FairlensError {
	return New(ErrCategoryShape, code, message)
}

func NewTypeError(code, message string) *FairlensError {
	return New(ErrCategoryType, code, message)
}

func NewIndexError(message string) *FairlensError {
	return New(ErrCategoryIndex, CodeInvalidIndices, message)
}

func NewModelError(code, message string, cause error) *FairlensError {
	return Wrap(ErrCategoryModel, code, message, cause)
}

func NewValueError(message string) *FairlensError {
	return New(ErrCategoryValue, CodeOutOfRange, message)
}

func NewContractError(message string) *FairlensError {
	return New(ErrCategoryContract, CodeMissingDiscretize, message)
}

func NewConfigError(code, message string, cause error) *FairlensError {
	return Wrap(ErrCategoryConfig, code, message, cause)
}

func NewIOError(message string, cause error) *FairlensError {
	return Wrap(ErrCategoryIO, CodeReadFailed, message, cause)
}

func NewInternalError(message string, cause error) *FairlensError {
	return Wrap(ErrCategoryInternal, CodeUnexpected, message, cause)
}

// Sentinels usable as errors.Is targets.
var (
	ErrNotTwoDimensional = New(ErrCategoryShape, CodeNotTwoDimensional, "")
	ErrNotRowLike        = New(ErrCategoryShape, CodeNotRowLike, "")
	ErrFeatureCount      = New(ErrCategoryShape, CodeFeatureCount, "")
	ErrNotBaseType       = New(ErrCategoryType, CodeNotBaseType, "")
	ErrDTypeMismatch     = New(ErrCategoryType, CodeDTypeMismatch, "")
	ErrWrongKind         = New(ErrCategoryType, CodeWrongKind, "")
	ErrInvalidIndices    = New(ErrCategoryIndex, CodeInvalidIndices, "")
	ErrIncompatibleModel = New(ErrCategoryModel, CodeIncompatibleModel, "")
	ErrOutOfRange        = New(ErrCategoryValue, CodeOutOfRange, "")
	ErrMissingDiscretize = New(ErrCategoryContract, CodeMissingDiscretize, "")
)
