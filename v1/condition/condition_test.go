package condition

import (
	"math"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Aleph-Alpha/querykit/v1/embedding"
	"github.com/Aleph-Alpha/querykit/v1/field"
	"github.com/Aleph-Alpha/querykit/v1/schema"
)

type article struct {
	ID       string
	Title    string
	Body     string
	Views    int64
	Tags     []string
	Labels   map[string]struct{}
	Meta     map[string]string
	Author   *string
	Location schema.GeoCoordinate
	Vector   embedding.Embedding
}

var articleSchema = schema.StructOf("Article",
	func(v []any) article {
		return article{
			ID:       v[0].(string),
			Title:    v[1].(string),
			Body:     v[2].(string),
			Views:    v[3].(int64),
			Tags:     v[4].([]string),
			Labels:   v[5].(map[string]struct{}),
			Meta:     v[6].(map[string]string),
			Author:   v[7].(*string),
			Location: v[8].(schema.GeoCoordinate),
			Vector:   v[9].(embedding.Embedding),
		}
	},
	schema.FieldOf("id", schema.String, func(a article) string { return a.ID }, schema.Unique()),
	schema.FieldOf("title", schema.String, func(a article) string { return a.Title }, schema.TextIndexed()),
	schema.FieldOf("body", schema.String, func(a article) string { return a.Body }, schema.TextIndexed()),
	schema.FieldOf("views", schema.Int64, func(a article) int64 { return a.Views }),
	schema.FieldOf("tags", schema.List(schema.String), func(a article) []string { return a.Tags }),
	schema.FieldOf("labels", schema.Set(schema.String), func(a article) map[string]struct{} { return a.Labels }),
	schema.FieldOf("meta", schema.Map(schema.String), func(a article) map[string]string { return a.Meta }),
	schema.FieldOf("author", schema.Optional(schema.String), func(a article) *string { return a.Author }),
	schema.FieldOf("location", schema.GeoCoordinateType, func(a article) schema.GeoCoordinate { return a.Location }),
	schema.FieldOf("vector", embedding.Schema, func(a article) embedding.Embedding { return a.Vector }),
)

var (
	root     = field.Root(articleSchema)
	idPath   = field.Field[article, article, string](root, articleSchema, "id")
	views    = field.Field[article, article, int64](root, articleSchema, "views")
	tags     = field.Field[article, article, []string](root, articleSchema, "tags")
	labels   = field.Field[article, article, map[string]struct{}](root, articleSchema, "labels")
	meta     = field.Field[article, article, map[string]string](root, articleSchema, "meta")
	author   = field.Field[article, article, *string](root, articleSchema, "author")
	location = field.Field[article, article, schema.GeoCoordinate](root, articleSchema, "location")
	vector   = field.Field[article, article, embedding.Embedding](root, articleSchema, "vector")
	text     = field.Root(schema.String)
)

func berlinArticle() article {
	return article{
		ID:       "a1",
		Title:    "Generics in Go",
		Body:     "Type parameters arrived in Go 1.18.",
		Views:    250,
		Tags:     []string{"go", "generics"},
		Labels:   schema.SetOf("featured"),
		Meta:     map[string]string{"lang": "en"},
		Author:   schema.Ptr("Ada"),
		Location: schema.GeoCoordinate{Latitude: 52.52, Longitude: 13.405},
		Vector:   embedding.Embedding{1, 0, 0},
	}
}

func TestCondition_ZeroValueMatchesEverything(t *testing.T) {
	var c Condition[article]
	assert.True(t, c.Evaluate(article{}))
	assert.True(t, c.IsAlways())
	assert.True(t, c.Equal(Always[article]()))
}

func TestEvaluate_Comparisons(t *testing.T) {
	a := berlinArticle()

	assert.True(t, Eq(idPath, "a1").Evaluate(a))
	assert.False(t, Ne(idPath, "a1").Evaluate(a))
	assert.True(t, Gt(views, 100).Evaluate(a))
	assert.False(t, Lt(views, 250).Evaluate(a))
	assert.True(t, Lte(views, 250).Evaluate(a))
	assert.True(t, Gte(views, 250).Evaluate(a))
	assert.True(t, In(idPath, "x", "a1").Evaluate(a))
	assert.False(t, NotIn(idPath, "x", "a1").Evaluate(a))
	assert.True(t, NotIn(idPath).Evaluate(a))
}

func TestEvaluate_Logic(t *testing.T) {
	a := berlinArticle()

	assert.True(t, And[article]().Evaluate(a), "empty And matches")
	assert.False(t, Or[article]().Evaluate(a), "empty Or does not match")
	assert.True(t, Or(Eq(idPath, "x"), Gt(views, 10)).Evaluate(a))
	assert.False(t, And(Eq(idPath, "a1"), Never[article]()).Evaluate(a))
	assert.True(t, Not(Eq(idPath, "x")).Evaluate(a))
}

func TestEvaluate_Collections(t *testing.T) {
	a := berlinArticle()
	empty := article{}

	isGo := Eq(text, "go")
	assert.True(t, AnyElement(tags, isGo).Evaluate(a))
	assert.False(t, AllElements(tags, isGo).Evaluate(a))
	assert.False(t, AnyElement(tags, isGo).Evaluate(empty), "any over an empty list never matches")
	assert.True(t, AllElements(tags, isGo).Evaluate(empty))

	assert.True(t, Eq(field.Elements(tags), "generics").Evaluate(a))
	assert.True(t, AnyMember(labels, Eq(text, "featured")).Evaluate(a))
	assert.True(t, Eq(field.SetElements(labels), "featured").Evaluate(a))

	assert.True(t, SizeEquals(tags, 2).Evaluate(a))
	assert.True(t, SizeEquals(labels, 0).Evaluate(empty))
}

func TestEvaluate_MapsAndOptionals(t *testing.T) {
	a := berlinArticle()
	anonymous := berlinArticle()
	anonymous.Author = nil

	assert.True(t, Exists(meta, "lang").Evaluate(a))
	assert.False(t, Exists(meta, "region").Evaluate(a))
	assert.True(t, OnKey(meta, "lang", Eq(text, "en")).Evaluate(a))
	assert.False(t, OnKey(meta, "region", Ne(text, "eu")).Evaluate(a), "missing keys do not match")

	assert.False(t, IsNull(author).Evaluate(a))
	assert.True(t, IsNull(author).Evaluate(anonymous))
	assert.True(t, IsNotNull(author).Evaluate(a))
	assert.True(t, IfNotNull(author, Eq(text, "Ada")).Evaluate(a))
	assert.False(t, IfNotNull(author, Ne(text, "Ada")).Evaluate(anonymous), "absent values do not match")
	assert.True(t, Eq(field.NotNull(author), "Ada").Evaluate(a))
}

func TestEvaluate_Text(t *testing.T) {
	a := berlinArticle()
	title := field.Field[article, article, string](root, articleSchema, "title")

	assert.True(t, Contains(title, "generics", true).Evaluate(a))
	assert.False(t, Contains(title, "generics", false).Evaluate(a))

	re, err := Matches(title, `^generics\b`, true)
	require.NoError(t, err)
	assert.True(t, re.Evaluate(a))

	_, err = Matches(title, `(`, false)
	assert.Error(t, err)
}

func TestEvaluate_FullTextSearch(t *testing.T) {
	a := berlinArticle()

	assert.True(t, FullTextSearch(articleSchema, "GO parameters", true).Evaluate(a))
	assert.False(t, FullTextSearch(articleSchema, "go rust", true).Evaluate(a))
	assert.True(t, FullTextSearch(articleSchema, "go rust", false).Evaluate(a))
	assert.False(t, FullTextSearch(articleSchema, "a1", false).Evaluate(a), "id is not text indexed")
	assert.True(t, FullTextSearch(articleSchema, "  ", true).Evaluate(a))
}

func TestEvaluate_GeoAndVectors(t *testing.T) {
	a := berlinArticle()

	// Paris is roughly 878km from Berlin.
	assert.True(t, WithinDistance(location, 48.8566, 2.3522, 800, 950).Evaluate(a))
	assert.False(t, WithinDistance(location, 48.8566, 2.3522, 0, 500).Evaluate(a))

	assert.True(t, SimilarTo(vector, embedding.Embedding{1, 0, 0}, embedding.Cosine, 0.99).Evaluate(a))
	assert.False(t, SimilarTo(vector, embedding.Embedding{0, 1, 0}, embedding.Cosine, 0.99).Evaluate(a))
	assert.False(t, SimilarTo(vector, embedding.Embedding{1, 0}, embedding.Cosine, 0).Evaluate(a), "other dimensions never match")
}

func TestBuilders_RejectUnorderedLeaves(t *testing.T) {
	assert.Panics(t, func() { Gt(tags, []string{"a"}) })
	assert.Panics(t, func() { SizeEquals(views, 1) })
}

func TestEqual_SameShape(t *testing.T) {
	a := And(Gt(views, 10), AnyElement(tags, Eq(text, "go")), IsNull(author))
	b := And(Gt(views, 10), AnyElement(tags, Eq(text, "go")), IsNull(author))
	c := And(Gt(views, 11), AnyElement(tags, Eq(text, "go")), IsNull(author))
	d := And(Gt(views, 10), AllElements(tags, Eq(text, "go")), IsNull(author))

	assert.True(t, a.Equal(b))
	assert.False(t, a.Equal(c))
	assert.False(t, a.Equal(d))
	assert.True(t, In(idPath, "x", "y").Equal(In(idPath, "y", "x")), "membership ignores order")
}

type pair[A, B any] struct {
	Key   A
	Value B
}

type box[T any] struct {
	Label string
	Item  T
}

func pairSchema[A, B any](a schema.Descriptor[A], b schema.Descriptor[B]) schema.Descriptor[pair[A, B]] {
	return schema.StructOf(schema.Generic("Pair", a.ID(), b.ID()),
		func(v []any) pair[A, B] { return pair[A, B]{Key: v[0].(A), Value: v[1].(B)} },
		schema.FieldOf("key", a, func(p pair[A, B]) A { return p.Key }),
		schema.FieldOf("value", b, func(p pair[A, B]) B { return p.Value }),
	)
}

func boxSchema[T any](d schema.Descriptor[T]) schema.Descriptor[box[T]] {
	return schema.StructOf(schema.Generic("Box", d.ID()),
		func(v []any) box[T] { return box[T]{Label: v[0].(string), Item: v[1].(T)} },
		schema.FieldOf("label", schema.String, func(b box[T]) string { return b.Label }),
		schema.FieldOf("item", d, func(b box[T]) T { return b.Item }),
	)
}

func TestEqual_AcrossGenericInstantiations(t *testing.T) {
	uuidLong := pairSchema(schema.UUID, schema.Int64)
	stringLong := pairSchema(schema.String, schema.Int64)

	valueOf := func(d schema.Descriptor[pair[uuid.UUID, int64]]) field.Path[pair[uuid.UUID, int64], int64] {
		return field.Field[pair[uuid.UUID, int64], pair[uuid.UUID, int64], int64](field.Root(d), d, "value")
	}
	a := Eq(valueOf(uuidLong), 5)
	b := Eq(valueOf(uuidLong), 5)
	c := Eq(field.Field[pair[string, int64], pair[string, int64], int64](field.Root(stringLong), stringLong, "value"), 5)

	assert.True(t, a.Equal(b))
	assert.False(t, a.Equal(c))
	assert.False(t, c.Equal(a))
}

func TestEqual_DeepInNestedGenerics(t *testing.T) {
	outerA := boxSchema(boxSchema(pairSchema(schema.UUID, schema.Int64)))
	outerB := boxSchema(boxSchema(pairSchema(schema.UUID, schema.Int32)))

	type innerA = box[pair[uuid.UUID, int64]]
	type innerB = box[pair[uuid.UUID, int32]]

	labelA := field.Field[box[innerA], innerA, string](
		field.Field[box[innerA], box[innerA], innerA](field.Root(outerA), outerA, "item"),
		boxSchema(pairSchema(schema.UUID, schema.Int64)), "label")
	labelB := field.Field[box[innerB], innerB, string](
		field.Field[box[innerB], box[innerB], innerB](field.Root(outerB), outerB, "item"),
		boxSchema(pairSchema(schema.UUID, schema.Int32)), "label")

	a := Eq(labelA, "x")
	b := Eq(labelB, "x")
	assert.Equal(t, a.String(), b.String(), "the trees print the same")
	assert.False(t, a.Equal(b))
	assert.True(t, a.Equal(Eq(labelA, "x")))
}

func TestEncode_TaggedForm(t *testing.T) {
	data, err := Gt(views, 100).MarshalJSON()
	require.NoError(t, err)
	assert.JSONEq(t, `{"OnField":{"owner":"Article","field":"views","condition":{"GreaterThan":100}}}`, string(data))

	data, err = IsNotNull(author).MarshalJSON()
	require.NoError(t, err)
	assert.JSONEq(t, `{"OnField":{"owner":"Article","field":"author","condition":{"IsNotNull":true}}}`, string(data))
}

func TestEncode_RoundTrip(t *testing.T) {
	title := field.Field[article, article, string](root, articleSchema, "title")
	re, err := Matches(title, "^gen", true)
	require.NoError(t, err)

	original := And(
		Or(Gt(views, 10), Lte(views, 2), Not(Eq(idPath, "x"))),
		In(idPath, "a1", "a2"),
		NotIn(idPath, "b"),
		AnyElement(tags, Eq(text, "go")),
		AllMembers(labels, Ne(text, "hidden")),
		SizeEquals(tags, 2),
		Exists(meta, "lang"),
		OnKey(meta, "lang", Contains(text, "E", true)),
		IfNotNull(author, Eq(text, "Ada")),
		IsNotNull(author),
		re,
		FullTextSearch(articleSchema, "go", false),
		WithinDistance(location, 48.8566, 2.3522, 0, 1000),
		SimilarTo(vector, embedding.Embedding{1, 0, 0}, embedding.Euclidean, 0.5),
		Always[article](),
	)

	data, err := original.MarshalJSON()
	require.NoError(t, err)

	decoded, err := Unmarshal(articleSchema, data)
	require.NoError(t, err)
	assert.True(t, original.Equal(decoded))
	assert.True(t, decoded.Evaluate(berlinArticle()))
	assert.Equal(t, original.Evaluate(article{}), decoded.Evaluate(article{}))
}

func TestDecode_Errors(t *testing.T) {
	_, err := Unmarshal(articleSchema, []byte(`{"Sometimes":true}`))
	assert.ErrorIs(t, err, ErrUnknownVariant)

	_, err = Unmarshal(articleSchema, []byte(`{"OnField":{"owner":"Article","field":"tags","condition":{"GreaterThan":["a"]}}}`))
	assert.ErrorIs(t, err, ErrInvalidCondition)

	_, err = Unmarshal(articleSchema, []byte(`{"OnField":{"owner":"Other","field":"views","condition":{"Always":true}}}`))
	assert.ErrorIs(t, err, ErrInvalidCondition)

	_, err = Unmarshal(articleSchema, []byte(`{"OnField":{"owner":"Article","field":"missing","condition":{"Always":true}}}`))
	assert.ErrorIs(t, err, schema.ErrUnknownField)

	_, err = Unmarshal(articleSchema, []byte(`{"And":[],"Or":[]}`))
	assert.ErrorIs(t, err, ErrInvalidCondition)
}

func TestMembership_HandBuiltNodes(t *testing.T) {
	inside := New(schema.Int64, InsideCondition{Type: schema.Int64.Type(), Values: []any{int64(250)}})
	assert.True(t, inside.Evaluate(250))
	assert.False(t, inside.Evaluate(251))

	notInside := New(schema.Int64, NotInsideCondition{Type: schema.Int64.Type(), Values: []any{int64(250)}})
	assert.False(t, notInside.Evaluate(250))
	assert.True(t, notInside.Evaluate(7))

	built := In(field.Root(schema.Int64), 250)
	assert.True(t, inside.Equal(built))
	assert.True(t, built.Equal(inside))

	other := New(schema.Int64, InsideCondition{Type: schema.Int64.Type(), Values: []any{int64(1), int64(2)}})
	assert.False(t, inside.Equal(other))
	assert.False(t, notInside.Equal(New(schema.Int64, NotInsideCondition{Type: schema.Int64.Type(), Values: []any{int64(1)}})))
}

func TestMembership_NegativeZero(t *testing.T) {
	p := field.Root(schema.Float64)
	negZero := math.Copysign(0, -1)

	assert.True(t, Eq(p, 0.0).Evaluate(negZero))
	assert.True(t, In(p, 0.0).Evaluate(negZero))
	assert.False(t, NotIn(p, 0.0).Evaluate(negZero))
	assert.True(t, In(p, negZero).Evaluate(0))
}
