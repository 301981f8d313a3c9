package hnsw

import "errors"

var (
	// ErrTooManyPoints is returned when a batch exceeds the number of
	// points a 32-bit PointID can address.
	ErrTooManyPoints = errors.New("hnsw: too many points for a 32-bit PointID space")

	// ErrDimensionMismatch is returned when points in the same batch report
	// different AsSlice lengths.
	ErrDimensionMismatch = errors.New("hnsw: point dimension mismatch")

	// ErrNaNDistance is returned when a Point's Distance method produces NaN
	// during construction, where ordering candidates by distance is
	// required. It aborts the build rather than letting a NaN silently sort
	// as the worst possible match (the degrade-gracefully behavior search.go
	// applies at query time, where aborting isn't an option).
	ErrNaNDistance = errors.New("hnsw: distance returned NaN")
)
