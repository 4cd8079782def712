package query

import (
	"slices"

	"github.com/Aleph-Alpha/querykit/v1/condition"
	"github.com/Aleph-Alpha/querykit/v1/embedding"
)

// Query selects, orders and pages records of type T. The zero value selects
// every record in storage order.
type Query[T any] struct {
	Condition condition.Condition[T]
	OrderBy   []SortPart[T]
	// Skip drops the first Skip matches after sorting.
	Skip int
	// Limit caps the number of results; zero means no limit.
	Limit int
}

// Where returns a query selecting the records matching c.
func Where[T any](c condition.Condition[T]) Query[T] {
	return Query[T]{Condition: c}
}

// SortedBy returns a copy of q ordered by parts.
func (q Query[T]) SortedBy(parts ...SortPart[T]) Query[T] {
	q.OrderBy = append(slices.Clip(q.OrderBy), parts...)
	return q
}

// Paged returns a copy of q with skip and limit set.
func (q Query[T]) Paged(skip, limit int) Query[T] {
	q.Skip, q.Limit = skip, limit
	return q
}

// Compare orders a and b lexicographically by OrderBy.
func (q Query[T]) Compare(a, b T) int {
	for _, s := range q.OrderBy {
		if r := s.Compare(a, b); r != 0 {
			return r
		}
	}
	return 0
}

// Sort stably sorts records in place by OrderBy.
func (q Query[T]) Sort(records []T) {
	if len(q.OrderBy) == 0 {
		return
	}
	slices.SortStableFunc(records, q.Compare)
}

// Page applies Skip and Limit to sorted matches.
func (q Query[T]) Page(records []T) []T {
	if q.Skip > 0 {
		if q.Skip >= len(records) {
			return records[:0]
		}
		records = records[q.Skip:]
	}
	if q.Limit > 0 && q.Limit < len(records) {
		records = records[:q.Limit]
	}
	return records
}

// Scored pairs a record with its similarity score.
type Scored[T any] struct {
	Record T
	Score  float32
}

// EntryChange holds a record before and after an update.
type EntryChange[T any] struct {
	Old T
	New T
}

// VectorSearch parameterizes a dense similarity search.
type VectorSearch struct {
	Vector embedding.Embedding
	Metric embedding.Metric
	Limit  int
	// MinScore discards results scoring below it. Nil keeps every result.
	MinScore *float32
}

// Validate checks the query vector and the limit.
func (v VectorSearch) Validate() error {
	if v.Limit <= 0 {
		return ErrInvalidLimit
	}
	return v.Vector.Validate()
}

// SparseVectorSearch parameterizes a sparse similarity search.
type SparseVectorSearch struct {
	Vector   embedding.SparseEmbedding
	Metric   embedding.Metric
	Limit    int
	MinScore *float32
}

// Validate checks the query vector and the limit.
func (v SparseVectorSearch) Validate() error {
	if v.Limit <= 0 {
		return ErrInvalidLimit
	}
	return v.Vector.Validate()
}

// Keep reports whether score passes the optional threshold.
func Keep(minScore *float32, score float32) bool {
	return minScore == nil || score >= *minScore
}

// RankScored sorts hits by descending score, keeping insertion order for
// ties, and truncates to limit.
func RankScored[T any](hits []Scored[T], limit int) []Scored[T] {
	slices.SortStableFunc(hits, func(a, b Scored[T]) int {
		switch {
		case a.Score > b.Score:
			return -1
		case a.Score < b.Score:
			return 1
		}
		return 0
	})
	if limit > 0 && len(hits) > limit {
		hits = hits[:limit]
	}
	return hits
}
