package embedding

import (
	"context"
	"fmt"
	"math"
	"slices"
)

// Provider contract
type Provider interface {
	// Create generates embeddings for the given texts using the specified model.
	Create(ctx context.Context, model string, texts ...string) ([][]float64, error)
}

// Embedding is a dense vector of 32-bit floats. Its dimension is its length.
type Embedding []float32

// Dimension returns the number of components.
func (e Embedding) Dimension() int { return len(e) }

// Validate checks that e has at least one component and no NaN or infinite
// values.
func (e Embedding) Validate() error {
	if len(e) == 0 {
		return ErrEmptyEmbedding
	}
	for i, v := range e {
		if math.IsNaN(float64(v)) || math.IsInf(float64(v), 0) {
			return fmt.Errorf("%w: component %d is %v", ErrNonFinite, i, v)
		}
	}
	return nil
}

// Equal reports component-wise equality.
func (e Embedding) Equal(o Embedding) bool { return slices.Equal(e, o) }

// FromFloat64 converts a float64 vector, as returned by inference APIs.
func FromFloat64(values []float64) Embedding {
	out := make(Embedding, len(values))
	for i, v := range values {
		out[i] = float32(v)
	}
	return out
}

// SparseEmbedding stores only the non-zero components of a vector. Indices
// are strictly increasing and below Dimension; Values has the same length as
// Indices.
type SparseEmbedding struct {
	Indices   []int
	Values    []float32
	Dimension int
}

// NewSparseEmbedding validates and returns a sparse embedding. The slices are
// not copied.
func NewSparseEmbedding(indices []int, values []float32, dimension int) (SparseEmbedding, error) {
	s := SparseEmbedding{Indices: indices, Values: values, Dimension: dimension}
	if err := s.Validate(); err != nil {
		return SparseEmbedding{}, err
	}
	return s, nil
}

// Validate checks the sparse embedding invariants.
func (s SparseEmbedding) Validate() error {
	if s.Dimension < 1 {
		return fmt.Errorf("%w: dimension %d", ErrInvalidSparse, s.Dimension)
	}
	if len(s.Indices) != len(s.Values) {
		return fmt.Errorf("%w: %d indices but %d values", ErrInvalidSparse, len(s.Indices), len(s.Values))
	}
	for i, idx := range s.Indices {
		if idx < 0 || idx >= s.Dimension {
			return fmt.Errorf("%w: index %d outside [0,%d)", ErrInvalidSparse, idx, s.Dimension)
		}
		if i > 0 && idx <= s.Indices[i-1] {
			return fmt.Errorf("%w: indices not strictly increasing at position %d", ErrInvalidSparse, i)
		}
	}
	return nil
}

// SparseFromDense keeps the non-zero components of e.
func SparseFromDense(e Embedding) SparseEmbedding {
	s := SparseEmbedding{Dimension: len(e)}
	for i, v := range e {
		if v != 0 {
			s.Indices = append(s.Indices, i)
			s.Values = append(s.Values, v)
		}
	}
	return s
}

// SparseFromMap builds a sparse embedding from an index to value map, sorted
// by index.
func SparseFromMap(m map[int]float32, dimension int) (SparseEmbedding, error) {
	indices := make([]int, 0, len(m))
	for idx := range m {
		indices = append(indices, idx)
	}
	slices.Sort(indices)
	values := make([]float32, len(indices))
	for i, idx := range indices {
		values[i] = m[idx]
	}
	return NewSparseEmbedding(indices, values, dimension)
}

// ToDense expands s into a dense embedding.
func (s SparseEmbedding) ToDense() Embedding {
	out := make(Embedding, s.Dimension)
	for i, idx := range s.Indices {
		out[idx] = s.Values[i]
	}
	return out
}

// Equal reports whether both sparse embeddings hold the same components.
func (s SparseEmbedding) Equal(o SparseEmbedding) bool {
	return s.Dimension == o.Dimension && slices.Equal(s.Indices, o.Indices) && slices.Equal(s.Values, o.Values)
}
