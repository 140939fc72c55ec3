package domain

import "errors"

var (
	// ErrInvalidInput marks a non-finite or out-of-domain scalar in a firing solution.
	ErrInvalidInput = errors.New("invalid input")

	// ErrSingularProjection marks an origin too close to a pole for the
	// local flat-Earth projection to be meaningful.
	ErrSingularProjection = errors.New("singular projection")

	// ErrNotFound is returned by repositories when a record does not exist.
	ErrNotFound = errors.New("not found")
)
