package modification

import "errors"

var (
	// ErrNonFiniteDelta is returned by Apply when an Increment or Multiply
	// carries NaN or an infinity.
	ErrNonFiniteDelta = errors.New("modification: non-finite delta")

	// ErrUnknownVariant is returned when decoding an unknown tagged form.
	ErrUnknownVariant = errors.New("modification: unknown variant")

	// ErrInvalidModification is returned when a modification does not fit the
	// type it is applied to.
	ErrInvalidModification = errors.New("modification: invalid modification")
)
