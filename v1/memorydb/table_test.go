package memorydb

import (
	"context"
	"math"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Aleph-Alpha/querykit/v1/condition"
	"github.com/Aleph-Alpha/querykit/v1/embedding"
	"github.com/Aleph-Alpha/querykit/v1/field"
	"github.com/Aleph-Alpha/querykit/v1/modification"
	"github.com/Aleph-Alpha/querykit/v1/observability"
	"github.com/Aleph-Alpha/querykit/v1/query"
	"github.com/Aleph-Alpha/querykit/v1/schema"
)

func newDocs(t *testing.T, records ...doc) *Table[doc] {
	t.Helper()
	tbl, err := TableFor(context.Background(), New(), "docs", docSchema, WithID(docID))
	require.NoError(t, err)
	require.NoError(t, tbl.Insert(context.Background(), records...))
	return tbl
}

func hitIDs(hits []query.Scored[doc]) []string {
	out := make([]string, len(hits))
	for i, h := range hits {
		out[i] = h.Record.ID
	}
	return out
}

func TestFindSimilar_RankedByCosine(t *testing.T) {
	ctx := context.Background()
	tbl := newDocs(t, similarDocs()...)

	hits, err := tbl.FindSimilar(ctx, vector, query.VectorSearch{
		Vector: embedding.Embedding{1, 0, 0},
		Metric: embedding.Cosine,
		Limit:  10,
	}, condition.Always[doc]())
	require.NoError(t, err)

	assert.Equal(t, []string{"doc1", "doc2", "doc3"}, hitIDs(hits))
	assert.InDelta(t, 1.0, hits[0].Score, 1e-6)
	assert.Greater(t, hits[1].Score, hits[2].Score)
	assert.InDelta(t, 0.5, hits[2].Score, 1e-6)
}

func TestFindSimilar_MinScoreAppliedBeforeLimit(t *testing.T) {
	ctx := context.Background()
	tbl := newDocs(t, similarDocs()...)

	// doc2 scores about 0.997 under normalized cosine.
	minScore := float32(0.999)
	hits, err := tbl.FindSimilar(ctx, vector, query.VectorSearch{
		Vector:   embedding.Embedding{1, 0, 0},
		Metric:   embedding.Cosine,
		Limit:    10,
		MinScore: &minScore,
	}, condition.Always[doc]())
	require.NoError(t, err)
	assert.Equal(t, []string{"doc1"}, hitIDs(hits))

	minScore = 0.9
	hits, err = tbl.FindSimilar(ctx, vector, query.VectorSearch{
		Vector:   embedding.Embedding{1, 0, 0},
		Metric:   embedding.Cosine,
		Limit:    1,
		MinScore: &minScore,
	}, condition.Always[doc]())
	require.NoError(t, err)
	assert.Equal(t, []string{"doc1"}, hitIDs(hits))
}

func TestFindSimilar_ConditionFiltersCandidates(t *testing.T) {
	ctx := context.Background()
	tbl := newDocs(t, similarDocs()...)
	require.NoError(t, tbl.Insert(ctx, doc{ID: "doc4", Category: "other", Vector: embedding.Embedding{1, 0, 0}}))

	search := query.VectorSearch{Vector: embedding.Embedding{1, 0, 0}, Metric: embedding.Cosine, Limit: 10}

	all, err := tbl.FindSimilar(ctx, vector, search, condition.Always[doc]())
	require.NoError(t, err)
	assert.Equal(t, []string{"doc1", "doc4", "doc2", "doc3"}, hitIDs(all), "ties keep insertion order")

	news, err := tbl.FindSimilar(ctx, vector, search, condition.Eq(category, "news"))
	require.NoError(t, err)
	assert.Equal(t, []string{"doc1", "doc2"}, hitIDs(news))
}

func TestFindSimilar_OtherMetrics(t *testing.T) {
	ctx := context.Background()
	tbl := newDocs(t, similarDocs()...)

	for _, m := range []embedding.Metric{embedding.DotProduct, embedding.Euclidean, embedding.Manhattan} {
		hits, err := tbl.FindSimilar(ctx, vector, query.VectorSearch{
			Vector: embedding.Embedding{1, 0, 0},
			Metric: m,
			Limit:  2,
		}, condition.Always[doc]())
		require.NoError(t, err, m.String())
		assert.Equal(t, []string{"doc1", "doc2"}, hitIDs(hits), m.String())
	}
}

func TestFindSimilar_Errors(t *testing.T) {
	ctx := context.Background()
	tbl := newDocs(t, similarDocs()...)

	_, err := tbl.FindSimilar(ctx, vector, query.VectorSearch{
		Vector: embedding.Embedding{1, 0},
		Metric: embedding.Cosine,
		Limit:  3,
	}, condition.Always[doc]())
	assert.True(t, embedding.IsDimensionMismatch(err))

	_, err = tbl.FindSimilar(ctx, vector, query.VectorSearch{Vector: embedding.Embedding{1, 0, 0}}, condition.Always[doc]())
	assert.ErrorIs(t, err, query.ErrInvalidLimit)

	_, err = tbl.FindSimilar(ctx, vector, query.VectorSearch{Limit: 1}, condition.Always[doc]())
	assert.ErrorIs(t, err, embedding.ErrEmptyEmbedding)
}

func TestFindSimilarSparse(t *testing.T) {
	ctx := context.Background()
	tbl, err := TableFor(ctx, New(), "passages", passageSchema)
	require.NoError(t, err)

	mk := func(id string, m map[int]float32) passage {
		s, err := embedding.SparseFromMap(m, 8)
		require.NoError(t, err)
		return passage{ID: id, Terms: s}
	}
	require.NoError(t, tbl.Insert(ctx,
		mk("p1", map[int]float32{1: 1, 3: 2}),
		mk("p2", map[int]float32{1: 3, 5: 1}),
		mk("p3", map[int]float32{6: 4}),
	))

	q, err := embedding.SparseFromMap(map[int]float32{1: 1, 3: 1}, 8)
	require.NoError(t, err)
	hits, err := tbl.FindSimilarSparse(ctx, passageTerms, query.SparseVectorSearch{
		Vector: q,
		Metric: embedding.DotProduct,
		Limit:  2,
	}, condition.Always[passage]())
	require.NoError(t, err)
	require.Len(t, hits, 2)
	assert.Equal(t, "p1", hits[0].Record.ID)
	assert.Equal(t, float32(3), hits[0].Score)
	assert.Equal(t, "p2", hits[1].Record.ID)
	assert.Equal(t, float32(3), hits[1].Score)
}

func TestFind_OrderSkipLimit(t *testing.T) {
	ctx := context.Background()
	tbl := newDocs(t,
		doc{ID: "a", Category: "news", Views: 3},
		doc{ID: "b", Category: "blog", Views: 1},
		doc{ID: "c", Category: "news", Views: 3},
		doc{ID: "d", Category: "news", Views: 2},
	)

	assert.Equal(t, []string{"a", "b", "c", "d"}, ids(tbl.FindAll(ctx, query.Query[doc]{})))
	assert.Equal(t, []string{"a", "c", "d"}, ids(tbl.FindAll(ctx, query.Where(condition.Eq(category, "news")))))

	byViews := query.Where(condition.Eq(category, "news")).SortedBy(query.Desc(views))
	assert.Equal(t, []string{"a", "c", "d"}, ids(tbl.FindAll(ctx, byViews)), "stable on ties")
	assert.Equal(t, []string{"c"}, ids(tbl.FindAll(ctx, byViews.Paged(1, 1))))

	first, ok := tbl.FindOne(ctx, query.Query[doc]{}.SortedBy(query.Asc(views)))
	require.True(t, ok)
	assert.Equal(t, "b", first.ID)

	_, ok = tbl.FindOne(ctx, query.Where(condition.Eq(category, "none")))
	assert.False(t, ok)
}

func TestFind_SnapshotAtEnumeration(t *testing.T) {
	ctx := context.Background()
	tbl := newDocs(t, doc{ID: "a"})

	seq := tbl.Find(ctx, query.Query[doc]{})
	require.NoError(t, tbl.Insert(ctx, doc{ID: "b"}))

	var seen []string
	for d := range seq {
		seen = append(seen, d.ID)
		if d.ID == "a" {
			require.NoError(t, tbl.Insert(ctx, doc{ID: "c"}))
		}
	}
	assert.Equal(t, []string{"a", "b"}, seen, "snapshot taken when enumeration starts")
	assert.Empty(t, slices.Collect(seq), "sequences are single-use")
	assert.Equal(t, 3, tbl.Count(ctx, condition.Always[doc]()))
}

func TestInsert_DuplicateKey(t *testing.T) {
	ctx := context.Background()
	tbl := newDocs(t, doc{ID: "a"})

	err := tbl.Insert(ctx, doc{ID: "b"}, doc{ID: "a"})
	assert.ErrorIs(t, err, ErrDuplicateKey)
	assert.Equal(t, []string{"a"}, ids(tbl.FindAll(ctx, query.Query[doc]{})), "nothing inserted")
}

func TestUpdate(t *testing.T) {
	ctx := context.Background()
	tbl := newDocs(t,
		doc{ID: "a", Category: "news", Views: 1},
		doc{ID: "b", Category: "news", Views: 2},
		doc{ID: "c", Category: "blog", Views: 3},
	)
	news := condition.Eq(category, "news")

	n, err := tbl.UpdateOne(ctx, news, modification.Increment(views, 10))
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	n, err = tbl.UpdateMany(ctx, news, modification.Increment(views, 100))
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	n, err = tbl.UpdateMany(ctx, condition.Eq(category, "none"), modification.Increment(views, 1))
	require.NoError(t, err)
	assert.Zero(t, n)

	got := tbl.FindAll(ctx, query.Query[doc]{})
	assert.Equal(t, []int{111, 102, 3}, []int{got[0].Views, got[1].Views, got[2].Views})

	change, found, err := tbl.FindOneAndUpdate(ctx, condition.Eq(docID, "c"), modification.Assign(category, "news"))
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "blog", change.Old.Category)
	assert.Equal(t, "news", change.New.Category)

	_, found, err = tbl.FindOneAndUpdate(ctx, condition.Eq(docID, "zzz"), modification.Assign(category, "news"))
	require.NoError(t, err)
	assert.False(t, found)
}

func TestUpdate_FailureLeavesTableUntouched(t *testing.T) {
	ctx := context.Background()
	tbl := newDocs(t,
		doc{ID: "a", Rating: schema.Ptr(1.0)},
		doc{ID: "b", Rating: schema.Ptr(2.0)},
	)
	before := tbl.FindAll(ctx, query.Query[doc]{})

	_, err := tbl.UpdateMany(ctx, condition.Always[doc](), modification.Increment(field.NotNull(rating), math.Inf(1)))
	assert.ErrorIs(t, err, modification.ErrNonFiniteDelta)

	_, err = tbl.UpdateMany(ctx, condition.Always[doc](), modification.Assign(docID, "same"))
	assert.ErrorIs(t, err, ErrDuplicateKey)

	assert.Equal(t, before, tbl.FindAll(ctx, query.Query[doc]{}))
}

func TestReplaceAndUpsert(t *testing.T) {
	ctx := context.Background()
	tbl := newDocs(t, doc{ID: "a", Views: 1}, doc{ID: "b", Views: 2})

	replaced, err := tbl.ReplaceOne(ctx, condition.Eq(docID, "a"), doc{ID: "a", Views: 42})
	require.NoError(t, err)
	assert.True(t, replaced)

	replaced, err = tbl.ReplaceOne(ctx, condition.Eq(docID, "x"), doc{ID: "x"})
	require.NoError(t, err)
	assert.False(t, replaced)

	_, err = tbl.ReplaceOne(ctx, condition.Eq(docID, "a"), doc{ID: "b"})
	assert.ErrorIs(t, err, ErrDuplicateKey)

	inserted, err := tbl.UpsertOne(ctx, condition.Eq(docID, "c"), doc{ID: "c", Views: 3})
	require.NoError(t, err)
	assert.True(t, inserted)

	inserted, err = tbl.UpsertOne(ctx, condition.Eq(docID, "c"), doc{ID: "c", Views: 30})
	require.NoError(t, err)
	assert.False(t, inserted)

	got := tbl.FindAll(ctx, query.Query[doc]{})
	assert.Equal(t, []string{"a", "b", "c"}, ids(got))
	assert.Equal(t, []int{42, 2, 30}, []int{got[0].Views, got[1].Views, got[2].Views})
}

func TestDelete(t *testing.T) {
	ctx := context.Background()
	tbl := newDocs(t,
		doc{ID: "a", Category: "news"},
		doc{ID: "b", Category: "blog"},
		doc{ID: "c", Category: "news"},
		doc{ID: "d", Category: "news"},
	)
	news := condition.Eq(category, "news")

	assert.Equal(t, 1, tbl.DeleteOne(ctx, news))
	assert.Equal(t, []string{"b", "c", "d"}, ids(tbl.FindAll(ctx, query.Query[doc]{})))
	assert.Equal(t, 2, tbl.DeleteMany(ctx, news))
	assert.Zero(t, tbl.DeleteMany(ctx, news))
	assert.Equal(t, []string{"b"}, ids(tbl.FindAll(ctx, query.Query[doc]{})))
}

func TestAggregate(t *testing.T) {
	ctx := context.Background()
	tbl := newDocs(t, similarDocs()...)

	n, ok, err := tbl.Aggregate(ctx, query.Count, nil, condition.Eq(category, "none"))
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Zero(t, n, "count over nothing is zero")

	sum, ok, err := tbl.Aggregate(ctx, query.Sum, views, condition.Always[doc]())
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 60.0, sum)

	avg, ok, err := tbl.Aggregate(ctx, query.Average, views, condition.Eq(category, "news"))
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 15.0, avg)

	avg, ok, err = tbl.Aggregate(ctx, query.Average, field.NotNull(rating), condition.Always[doc]())
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 3.0, avg, "absent ratings are skipped")

	_, ok, err = tbl.Aggregate(ctx, query.Average, views, condition.Never[doc]())
	require.NoError(t, err)
	assert.False(t, ok)

	_, _, err = tbl.Aggregate(ctx, query.Sum, category, condition.Always[doc]())
	assert.ErrorIs(t, err, query.ErrNotNumeric)
}

func TestGroupAggregate(t *testing.T) {
	ctx := context.Background()
	tbl := newDocs(t, similarDocs()...)
	require.NoError(t, tbl.Insert(ctx, doc{ID: "doc4", Category: "blog", Views: 50}))

	groups, err := tbl.GroupAggregate(ctx, query.Sum, views, category, condition.Always[doc]())
	require.NoError(t, err)
	assert.Equal(t, []query.Group{
		{Key: "news", Value: 30, HasValue: true, Count: 2},
		{Key: "blog", Value: 80, HasValue: true, Count: 2},
	}, groups)

	groups, err = tbl.GroupCount(ctx, category, condition.Gt(views, 15))
	require.NoError(t, err)
	assert.Equal(t, []query.Group{
		{Key: "news", Value: 1, HasValue: true, Count: 1},
		{Key: "blog", Value: 2, HasValue: true, Count: 2},
	}, groups)

	groups, err = tbl.GroupCount(ctx, field.NotNull(rating), condition.Always[doc]())
	require.NoError(t, err)
	require.Len(t, groups, 3)
	assert.Nil(t, groups[0].Key, "absent keys share a group")
	assert.Equal(t, 2, groups[0].Count)
}

func TestTable_ConcurrentWriters(t *testing.T) {
	ctx := context.Background()
	tbl := newDocs(t)

	var wg sync.WaitGroup
	for w := range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range 50 {
				_ = tbl.Insert(ctx, doc{ID: string(rune('A'+w)) + string(rune('0'+i%10)) + string(rune('a'+i/10)), Category: "news"})
				_, _ = tbl.UpdateMany(ctx, condition.Eq(category, "news"), modification.Increment(views, 1))
				_ = tbl.Count(ctx, condition.Always[doc]())
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 400, tbl.Count(ctx, condition.Always[doc]()))
}

func TestTable_ReportsOperations(t *testing.T) {
	ctx := context.Background()

	var mu sync.Mutex
	var ops []string
	var sizes []int64
	obs := observability.ObserverFunc(func(c observability.OperationContext) {
		mu.Lock()
		defer mu.Unlock()
		assert.Equal(t, "memorydb", c.Component)
		assert.Equal(t, "docs", c.Resource)
		assert.NotNil(t, c.Context)
		assert.GreaterOrEqual(t, c.Duration, time.Duration(0))
		ops = append(ops, c.Operation)
		sizes = append(sizes, c.Size)
	})

	tbl, err := TableFor(ctx, New(WithObserver(obs)), "docs", docSchema)
	require.NoError(t, err)
	require.NoError(t, tbl.Insert(ctx, doc{ID: "a"}))
	tbl.FindAll(ctx, query.Query[doc]{})
	tbl.DeleteMany(ctx, condition.Always[doc]())

	assert.Equal(t, []string{"insert", "find", "delete_many"}, ops)
	assert.Equal(t, []int64{1, 1, 1}, sizes)
}
