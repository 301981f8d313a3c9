package hnswgo

import (
	"errors"
	"fmt"
)

// ErrEmptyIndex is returned by LoadIndex when a saved collection decodes
// successfully but holds zero points. The core hnsw package's own
// construction errors (ErrTooManyPoints, ErrDimensionMismatch) live in
// pkg/hnsw since that package must not import its own root module.
var ErrEmptyIndex = errors.New("hnswgo: index is empty")

// OpError wraps an error with the operation that produced it, following the
// same wrap-and-unwrap shape used throughout the store and loader packages.
type OpError struct {
	Op  string
	Err error
}

func (e *OpError) Error() string {
	if e.Op == "" {
		return fmt.Sprintf("hnswgo: %v", e.Err)
	}
	return fmt.Sprintf("hnswgo: %s: %v", e.Op, e.Err)
}

func (e *OpError) Unwrap() error {
	return e.Err
}

func (e *OpError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// wrapError wraps err with operation context, or returns nil if err is nil.
func wrapError(op string, err error) error {
	if err == nil {
		return nil
	}
	return &OpError{Op: op, Err: err}
}
