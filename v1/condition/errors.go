package condition

import "errors"

var (
	// ErrUnknownVariant is returned when decoding a tagged form whose variant
	// key is not a condition.
	ErrUnknownVariant = errors.New("condition: unknown variant")

	// ErrInvalidCondition is returned when a condition does not fit the type it
	// is applied to, such as an ordering comparison on an unordered type.
	ErrInvalidCondition = errors.New("condition: invalid condition")
)
