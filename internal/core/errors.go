package core

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNotFound is returned when a referenced dataset (or its stored file) does not exist.
var ErrNotFound = errors.New("dataset not found")

// ValidationKind distinguishes the reasons an upload can be rejected.
type ValidationKind string

const (
	KindMissingColumns ValidationKind = "missing_columns"
	KindMalformed      ValidationKind = "malformed"
	KindAggregation    ValidationKind = "aggregation"
	KindEmptyUpload    ValidationKind = "empty_upload"
)

// ValidationError rejects an upload as a whole. Nothing is persisted when it is returned.
type ValidationError struct {
	Kind    ValidationKind
	Message string
	Missing []string // set for KindMissingColumns
	Err     error    // underlying parser or conversion error, if any
}

func (e *ValidationError) Error() string {
	return e.Message
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// newMissingColumnsError lists every missing column in declaration order.
func newMissingColumnsError(missing []string) *ValidationError {
	quoted := make([]string, len(missing))
	for i, m := range missing {
		quoted[i] = fmt.Sprintf("%q", m)
	}
	return &ValidationError{
		Kind:    KindMissingColumns,
		Message: fmt.Sprintf("missing required columns: [%s]", strings.Join(quoted, ", ")),
		Missing: append([]string(nil), missing...),
	}
}

func newMalformedError(err error) *ValidationError {
	return &ValidationError{
		Kind:    KindMalformed,
		Message: fmt.Sprintf("invalid csv: %v", err),
		Err:     err,
	}
}

func newAggregationError(column, value string, line int) *ValidationError {
	return &ValidationError{
		Kind:    KindAggregation,
		Message: fmt.Sprintf("cannot aggregate column %q: invalid number %q on line %d", column, value, line),
	}
}

func newOutOfRangeError(column string, line int) *ValidationError {
	return &ValidationError{
		Kind:    KindAggregation,
		Message: fmt.Sprintf("cannot aggregate column %q: average out of range at line %d", column, line),
	}
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var verr *ValidationError
	return errors.As(err, &verr)
}

// RenderError is returned when a report cannot be produced for a dataset.
type RenderError struct {
	DatasetID string
	Reason    string
	Err       error
}

func (e *RenderError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("render report for dataset %s: %s: %v", e.DatasetID, e.Reason, e.Err)
	}
	return fmt.Sprintf("render report for dataset %s: %s", e.DatasetID, e.Reason)
}

func (e *RenderError) Unwrap() error {
	return e.Err
}
