// Package importer issues upload URLs for CSV files and moves uploaded files through the import pipeline.
package importer

import (
	"errors"
	"fmt"
)

var (
	ErrBucketNotConfigured = errors.New("bucket name is not configured")
	ErrInvalidKey          = errors.New("invalid object key")
	ErrEmptyObject         = errors.New("object has no body")
	ErrMalformedRow        = errors.New("malformed row")
)

// RowError locates a malformed CSV value. It matches ErrMalformedRow.
type RowError struct {
	Line   int
	Column string
	Err    error
}

func (e *RowError) Error() string {
	if e.Column == "" {
		return fmt.Sprintf("line %d: %v", e.Line, e.Err)
	}
	return fmt.Sprintf("line %d, column %s: %v", e.Line, e.Column, e.Err)
}

func (e *RowError) Is(target error) bool {
	return target == ErrMalformedRow
}

func (e *RowError) Unwrap() error {
	return e.Err
}
