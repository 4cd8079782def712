package memorydb

import (
	"context"
	"time"

	"github.com/Aleph-Alpha/querykit/v1/condition"
	"github.com/Aleph-Alpha/querykit/v1/embedding"
	"github.com/Aleph-Alpha/querykit/v1/field"
	"github.com/Aleph-Alpha/querykit/v1/query"
)

// scoreMatches filters by c, scores every survivor, drops scores below
// minScore, then ranks by descending score with ties in insertion order and
// keeps the first limit hits.
func scoreMatches[T, V any](records []T, path field.Path[T, V], score func(V) (float32, error), minScore *float32, limit int) ([]query.Scored[T], error) {
	var hits []query.Scored[T]
	for _, r := range records {
		v, ok := path.Get(r)
		if !ok {
			continue
		}
		s, err := score(v)
		if err != nil {
			return nil, err
		}
		if query.Keep(minScore, s) {
			hits = append(hits, query.Scored[T]{Record: r, Score: s})
		}
	}
	return query.RankScored(hits, limit), nil
}

// FindSimilar ranks the records matching c by the similarity of the
// embedding at path to s.Vector. Records whose path crosses an absent
// optional are skipped. A stored embedding whose dimension differs from the
// query fails the whole search.
func (t *Table[T]) FindSimilar(ctx context.Context, path field.Path[T, embedding.Embedding], s query.VectorSearch, c condition.Condition[T]) (hits []query.Scored[T], err error) {
	start := time.Now()
	defer func() { t.observe(ctx, "find_similar", start, err, len(hits)) }()

	if err := s.Validate(); err != nil {
		return nil, err
	}
	if err := singleValued(path); err != nil {
		return nil, err
	}
	return scoreMatches(t.matching(c), path, func(v embedding.Embedding) (float32, error) {
		return s.Metric.Score(s.Vector, v)
	}, s.MinScore, s.Limit)
}

// FindSimilarSparse is FindSimilar over sparse embeddings.
func (t *Table[T]) FindSimilarSparse(ctx context.Context, path field.Path[T, embedding.SparseEmbedding], s query.SparseVectorSearch, c condition.Condition[T]) (hits []query.Scored[T], err error) {
	start := time.Now()
	defer func() { t.observe(ctx, "find_similar_sparse", start, err, len(hits)) }()

	if err := s.Validate(); err != nil {
		return nil, err
	}
	if err := singleValued(path); err != nil {
		return nil, err
	}
	return scoreMatches(t.matching(c), path, func(v embedding.SparseEmbedding) (float32, error) {
		return s.Metric.SparseScore(s.Vector, v)
	}, s.MinScore, s.Limit)
}
