package embedding

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyEmbedding is returned for embeddings without components.
	ErrEmptyEmbedding = errors.New("embedding: embedding has no components")

	// ErrNonFinite is returned for embeddings containing NaN or infinity.
	ErrNonFinite = errors.New("embedding: non-finite component")

	// ErrInvalidSparse is returned when a sparse embedding breaks its invariants.
	ErrInvalidSparse = errors.New("embedding: invalid sparse embedding")

	// ErrUnknownMetric is returned by ParseMetric.
	ErrUnknownMetric = errors.New("embedding: unknown metric")
)

// DimensionMismatchError is returned when two vectors of different
// dimensions are compared.
type DimensionMismatchError struct {
	Expected int
	Actual   int
}

func (e *DimensionMismatchError) Error() string {
	return fmt.Sprintf("embedding: dimension mismatch: expected %d, got %d", e.Expected, e.Actual)
}

// IsDimensionMismatch reports whether err is a DimensionMismatchError.
func IsDimensionMismatch(err error) bool {
	var dm *DimensionMismatchError
	return errors.As(err, &dm)
}
