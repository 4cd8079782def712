// Package condition implements the filter algebra shared by every storage
// backend.
//
// A Condition[T] is a tree of Node values. Builders take a field.Path and
// fold its steps into nested OnField, element and IfNotNull nodes, so a
// condition on a deep leaf reads naturally:
//
//	views := field.Field[Article, Article, int64](root, ArticleSchema, "views")
//	tags := field.Field[Article, Article, []string](root, ArticleSchema, "tags")
//
//	c := condition.And(
//		condition.Gt(views, 100),
//		condition.AnyElement(tags, condition.Eq(field.Root(schema.String), "go")),
//	)
//
// The in-memory engine evaluates trees directly with Evaluate. Other
// backends type-switch over the exported node structs and translate them
// into their native query language.
//
// Evaluation rules:
//
//   - an empty And matches, an empty Or does not
//   - And and Or short-circuit left to right
//   - any-element conditions never match an empty collection
//   - IfNotNull and OnKey do not match absent values
//   - FullTextSearch lower-cases the record text and tests every query term
//     for substring containment
//
// Two conditions are equal when their trees are equal node by node. Nodes
// compare type witnesses, so identical-looking conditions over different
// generic instantiations of one record template are not equal.
//
// Encode produces a tagged schema.Value with one variant key per node, and
// Decode rebuilds the tree against a descriptor. Condition values marshal to
// JSON through the same form.
package condition
