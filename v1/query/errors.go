package query

import "errors"

var (
	// ErrInvalidLimit is returned for vector searches with a non-positive limit.
	ErrInvalidLimit = errors.New("query: limit must be positive")

	// ErrUnknownAggregate is returned by ParseAggregate.
	ErrUnknownAggregate = errors.New("query: unknown aggregate")

	// ErrNotNumeric is returned when an aggregate property is not a number.
	ErrNotNumeric = errors.New("query: aggregate property is not numeric")
)
