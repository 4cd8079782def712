package query

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Aleph-Alpha/querykit/v1/embedding"
	"github.com/Aleph-Alpha/querykit/v1/field"
	"github.com/Aleph-Alpha/querykit/v1/schema"
)

type task struct {
	Title    string
	Priority int
	Due      *int64
	Labels   []string
}

var taskSchema = schema.StructOf("Task",
	func(v []any) task {
		return task{Title: v[0].(string), Priority: v[1].(int), Due: v[2].(*int64), Labels: v[3].([]string)}
	},
	schema.FieldOf("title", schema.String, func(t task) string { return t.Title }),
	schema.FieldOf("priority", schema.Int, func(t task) int { return t.Priority }),
	schema.FieldOf("due", schema.Optional(schema.Int64), func(t task) *int64 { return t.Due }),
	schema.FieldOf("labels", schema.List(schema.String), func(t task) []string { return t.Labels }),
)

var (
	root     = field.Root(taskSchema)
	title    = field.Field[task, task, string](root, taskSchema, "title")
	priority = field.Field[task, task, int](root, taskSchema, "priority")
	due      = field.Field[task, task, *int64](root, taskSchema, "due")
	labels   = field.Field[task, task, []string](root, taskSchema, "labels")
)

func titles(ts []task) []string {
	out := make([]string, len(ts))
	for i, t := range ts {
		out[i] = t.Title
	}
	return out
}

func TestSort_StableAndMultiKey(t *testing.T) {
	records := []task{
		{Title: "b", Priority: 1},
		{Title: "a", Priority: 2},
		{Title: "C", Priority: 1},
		{Title: "d", Priority: 2},
	}

	q := Query[task]{}.SortedBy(Desc(priority))
	q.Sort(records)
	assert.Equal(t, []string{"a", "d", "b", "C"}, titles(records), "ties keep their order")

	q = Query[task]{}.SortedBy(Asc(priority), Asc(title).IgnoringCase())
	q.Sort(records)
	assert.Equal(t, []string{"b", "C", "a", "d"}, titles(records))

	q = Query[task]{}.SortedBy(Asc(title))
	q.Sort(records)
	assert.Equal(t, []string{"C", "a", "b", "d"}, titles(records), "case-sensitive by default")
}

func TestSort_AbsentOptionalsFirst(t *testing.T) {
	records := []task{
		{Title: "late", Due: schema.Ptr[int64](20)},
		{Title: "none"},
		{Title: "early", Due: schema.Ptr[int64](10)},
	}
	Query[task]{}.SortedBy(Asc(field.NotNull(due))).Sort(records)
	assert.Equal(t, []string{"none", "early", "late"}, titles(records))

	Query[task]{}.SortedBy(Desc(field.NotNull(due))).Sort(records)
	assert.Equal(t, []string{"late", "early", "none"}, titles(records))
}

func TestSortPart_Construction(t *testing.T) {
	assert.Panics(t, func() { Asc(labels) })
	assert.Panics(t, func() { Asc(priority).IgnoringCase() })

	assert.True(t, Asc(priority).Equal(Asc(field.Field[task, task, int](root, taskSchema, "priority"))))
	assert.False(t, Asc(priority).Equal(Desc(priority)))
	assert.Equal(t, "Task.title desc ignoring case", Desc(title).IgnoringCase().String())
}

func TestPage(t *testing.T) {
	records := []task{{Title: "a"}, {Title: "b"}, {Title: "c"}}

	assert.Equal(t, []string{"b"}, titles(Query[task]{}.Paged(1, 1).Page(records)))
	assert.Equal(t, []string{"b", "c"}, titles(Query[task]{Skip: 1}.Page(records)))
	assert.Empty(t, Query[task]{Skip: 5}.Page(records))
	assert.Len(t, Query[task]{}.Page(records), 3)
}

func TestAccumulator(t *testing.T) {
	values := []float64{2, 4, 4, 4, 5, 5, 7, 9}

	results := map[Aggregate]float64{}
	for _, agg := range []Aggregate{Count, Sum, Average, StandardDeviationSample, StandardDeviationPopulation} {
		acc := NewAccumulator(agg)
		for _, v := range values {
			acc.Add(v)
		}
		got, ok := acc.Result()
		require.True(t, ok, agg.String())
		results[agg] = got
	}

	assert.Equal(t, 8.0, results[Count])
	assert.Equal(t, 40.0, results[Sum])
	assert.Equal(t, 5.0, results[Average])
	assert.InDelta(t, 2.0, results[StandardDeviationPopulation], 1e-12)
	assert.InDelta(t, math.Sqrt(32.0/7.0), results[StandardDeviationSample], 1e-12)
}

func TestAccumulator_Empty(t *testing.T) {
	got, ok := NewAccumulator(Count).Result()
	assert.True(t, ok)
	assert.Equal(t, 0.0, got)

	for _, agg := range []Aggregate{Sum, Average, StandardDeviationSample, StandardDeviationPopulation} {
		_, ok := NewAccumulator(agg).Result()
		assert.False(t, ok, agg.String())
	}

	one := NewAccumulator(StandardDeviationSample)
	one.Add(3)
	_, ok = one.Result()
	assert.False(t, ok)
}

func TestParseAggregate(t *testing.T) {
	got, err := ParseAggregate("average")
	require.NoError(t, err)
	assert.Equal(t, Average, got)

	_, err = ParseAggregate("median")
	assert.ErrorIs(t, err, ErrUnknownAggregate)
}

func TestRankScored(t *testing.T) {
	hits := []Scored[string]{{"a", 0.5}, {"b", 0.9}, {"c", 0.5}, {"d", 1}}
	ranked := RankScored(hits, 3)
	require.Len(t, ranked, 3)
	assert.Equal(t, "d", ranked[0].Record)
	assert.Equal(t, "b", ranked[1].Record)
	assert.Equal(t, "a", ranked[2].Record, "ties keep insertion order")

	threshold := float32(0.6)
	assert.True(t, Keep(nil, 0))
	assert.False(t, Keep(&threshold, 0.5))
	assert.True(t, Keep(&threshold, 0.6))
}

func TestVectorSearch_Validate(t *testing.T) {
	assert.ErrorIs(t, VectorSearch{Vector: embedding.Embedding{1}}.Validate(), ErrInvalidLimit)
	assert.ErrorIs(t, VectorSearch{Limit: 1}.Validate(), embedding.ErrEmptyEmbedding)
	assert.NoError(t, VectorSearch{Vector: embedding.Embedding{1}, Limit: 1}.Validate())
}
