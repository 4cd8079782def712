package memorydb

import (
	"github.com/Aleph-Alpha/querykit/v1/embedding"
	"github.com/Aleph-Alpha/querykit/v1/field"
	"github.com/Aleph-Alpha/querykit/v1/schema"
)

type doc struct {
	ID       string
	Category string
	Views    int
	Rating   *float64
	Vector   embedding.Embedding
}

var docSchema = schema.StructOf("Doc",
	func(v []any) doc {
		return doc{
			ID:       v[0].(string),
			Category: v[1].(string),
			Views:    v[2].(int),
			Rating:   v[3].(*float64),
			Vector:   v[4].(embedding.Embedding),
		}
	},
	schema.FieldOf("id", schema.String, func(d doc) string { return d.ID }, schema.Unique()),
	schema.FieldOf("category", schema.String, func(d doc) string { return d.Category }),
	schema.FieldOf("views", schema.Int, func(d doc) int { return d.Views }),
	schema.FieldOf("rating", schema.Optional(schema.Float64), func(d doc) *float64 { return d.Rating }),
	schema.FieldOf("vector", embedding.Schema, func(d doc) embedding.Embedding { return d.Vector }),
)

var (
	docRoot  = field.Root(docSchema)
	docID    = field.Field[doc, doc, string](docRoot, docSchema, "id")
	category = field.Field[doc, doc, string](docRoot, docSchema, "category")
	views    = field.Field[doc, doc, int](docRoot, docSchema, "views")
	rating   = field.Field[doc, doc, *float64](docRoot, docSchema, "rating")
	vector   = field.Field[doc, doc, embedding.Embedding](docRoot, docSchema, "vector")
)

type passage struct {
	ID    string
	Terms embedding.SparseEmbedding
}

var passageSchema = schema.StructOf("Passage",
	func(v []any) passage {
		return passage{ID: v[0].(string), Terms: v[1].(embedding.SparseEmbedding)}
	},
	schema.FieldOf("id", schema.String, func(p passage) string { return p.ID }),
	schema.FieldOf("terms", embedding.SparseSchema, func(p passage) embedding.SparseEmbedding { return p.Terms }),
)

var passageTerms = field.Field[passage, passage, embedding.SparseEmbedding](field.Root(passageSchema), passageSchema, "terms")

func ids(docs []doc) []string {
	out := make([]string, len(docs))
	for i, d := range docs {
		out[i] = d.ID
	}
	return out
}

func similarDocs() []doc {
	return []doc{
		{ID: "doc1", Category: "news", Views: 10, Vector: embedding.Embedding{1, 0, 0}},
		{ID: "doc2", Category: "news", Views: 20, Rating: schema.Ptr(4.0), Vector: embedding.Embedding{0.9, 0.1, 0}},
		{ID: "doc3", Category: "blog", Views: 30, Rating: schema.Ptr(2.0), Vector: embedding.Embedding{0, 1, 0}},
	}
}
