// Package field provides typed access to record fields by positional index.
//
// An Accessor wraps one (owner type, field index) pair of a schema
// descriptor into a typed get/set pair. A Path chains accessors and
// collection/optional projections from a root record type to a leaf value:
//
//	root := field.Root(ArticleSchema)
//	title := field.Field[Article, Article, string](root, ArticleSchema, "title")
//	tags := field.Elements(field.Field[Article, Article, []string](root, ArticleSchema, "tags"))
//
// Paths compare by type witnesses, not by names: the path to "value" under
// Model<uuid,int64> never equals the path to "value" under Model<uuid,uuid>.
//
// Set never mutates its argument. Records whose descriptor implements
// schema.CopyWither are copied natively; all other records go through an
// encode, replace, decode round trip.
package field
