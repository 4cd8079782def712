package condition

import (
	"fmt"

	"github.com/Aleph-Alpha/querykit/v1/embedding"
	"github.com/Aleph-Alpha/querykit/v1/field"
	"github.com/Aleph-Alpha/querykit/v1/schema"
)

// Always matches every record.
func Always[T any]() Condition[T] { return Condition[T]{node: AlwaysCondition{}} }

// Never matches no record.
func Never[T any]() Condition[T] { return Condition[T]{node: NeverCondition{}} }

// And matches when all of cs match.
func And[T any](cs ...Condition[T]) Condition[T] {
	root, nodes := collect(cs)
	return Condition[T]{root: root, node: AndCondition{Conditions: nodes}}
}

// Or matches when any of cs matches.
func Or[T any](cs ...Condition[T]) Condition[T] {
	root, nodes := collect(cs)
	return Condition[T]{root: root, node: OrCondition{Conditions: nodes}}
}

// Not negates c.
func Not[T any](c Condition[T]) Condition[T] {
	return Condition[T]{root: c.root, node: NotCondition{Condition: c.Node()}}
}

func collect[T any](cs []Condition[T]) (schema.TypeID, []Node) {
	var root schema.TypeID
	nodes := make([]Node, len(cs))
	for i, c := range cs {
		if root == "" {
			root = c.root
		}
		nodes[i] = c.Node()
	}
	return root, nodes
}

// at folds the steps of p around leaf, innermost step first.
func at[R, L any](p field.Path[R, L], leaf Node) Condition[R] {
	steps := p.Steps()
	n := leaf
	for i := len(steps) - 1; i >= 0; i-- {
		s := steps[i]
		switch s.Kind {
		case field.StepField:
			n = OnFieldCondition{Owner: s.Owner.(schema.Struct), Index: s.Index, Condition: n}
		case field.StepElements:
			n = ElementsCondition{Container: s.Owner.(schema.Container), Condition: n}
		case field.StepNotNull:
			n = IfNotNullCondition{Optional: s.Owner.(schema.Nullable), Condition: n}
		}
	}
	return Condition[R]{root: p.RootType().ID(), node: n}
}

// Where applies a condition on the leaf of p.
func Where[R, L any](p field.Path[R, L], c Condition[L]) Condition[R] {
	return at(p, c.Node())
}

// Eq matches when the leaf equals v.
func Eq[R, L any](p field.Path[R, L], v L) Condition[R] {
	return at(p, EqualCondition{Type: p.Leaf(), Value: v})
}

// Ne matches when the leaf differs from v.
func Ne[R, L any](p field.Path[R, L], v L) Condition[R] {
	return at(p, NotEqualCondition{Type: p.Leaf(), Value: v})
}

func compare[R, L any](op CompareOp, p field.Path[R, L], v L) Condition[R] {
	ord, ok := p.Leaf().(schema.Ordered)
	if !ok {
		panic(fmt.Errorf("%w: %s on unordered type %s", ErrInvalidCondition, op, p.Leaf().ID()))
	}
	return at(p, CompareCondition{Op: op, Type: ord, Value: v})
}

// Gt matches leaves greater than v. It panics when the leaf type has no
// total order.
func Gt[R, L any](p field.Path[R, L], v L) Condition[R] { return compare(OpGreaterThan, p, v) }

// Lt matches leaves less than v.
func Lt[R, L any](p field.Path[R, L], v L) Condition[R] { return compare(OpLessThan, p, v) }

// Gte matches leaves greater than or equal to v.
func Gte[R, L any](p field.Path[R, L], v L) Condition[R] {
	return compare(OpGreaterThanOrEqual, p, v)
}

// Lte matches leaves less than or equal to v.
func Lte[R, L any](p field.Path[R, L], v L) Condition[R] {
	return compare(OpLessThanOrEqual, p, v)
}

func members[L any](values []L) []any {
	out := make([]any, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}

// In matches leaves equal to one of values.
func In[R, L any](p field.Path[R, L], values ...L) Condition[R] {
	vs := members(values)
	return at(p, InsideCondition{Type: p.Leaf(), Values: vs, index: newMembership(p.Leaf(), vs)})
}

// NotIn matches leaves equal to none of values.
func NotIn[R, L any](p field.Path[R, L], values ...L) Condition[R] {
	vs := members(values)
	return at(p, NotInsideCondition{Type: p.Leaf(), Values: vs, index: newMembership(p.Leaf(), vs)})
}

// AnyElement matches when at least one list element satisfies c. An empty
// list never matches.
func AnyElement[R, E any](p field.Path[R, []E], c Condition[E]) Condition[R] {
	return at(p, ElementsCondition{Container: p.Leaf().(schema.Container), Condition: c.Node()})
}

// AllElements matches when every list element satisfies c.
func AllElements[R, E any](p field.Path[R, []E], c Condition[E]) Condition[R] {
	return at(p, ElementsCondition{Container: p.Leaf().(schema.Container), All: true, Condition: c.Node()})
}

// AnyMember is AnyElement for sets.
func AnyMember[R any, E comparable](p field.Path[R, map[E]struct{}], c Condition[E]) Condition[R] {
	return at(p, ElementsCondition{Container: p.Leaf().(schema.Container), Condition: c.Node()})
}

// AllMembers is AllElements for sets.
func AllMembers[R any, E comparable](p field.Path[R, map[E]struct{}], c Condition[E]) Condition[R] {
	return at(p, ElementsCondition{Container: p.Leaf().(schema.Container), All: true, Condition: c.Node()})
}

// SizeEquals matches lists or sets with exactly n elements. It panics when
// the leaf is not a collection.
func SizeEquals[R, L any](p field.Path[R, L], n int) Condition[R] {
	c, ok := p.Leaf().(schema.Container)
	if !ok {
		panic(fmt.Errorf("%w: SizeEquals on %s", ErrInvalidCondition, p.Leaf().ID()))
	}
	return at(p, SizeEqualsCondition{Container: c, Size: n})
}

// Exists matches maps containing key.
func Exists[R, V any](p field.Path[R, map[string]V], key string) Condition[R] {
	return at(p, ExistsCondition{Map: p.Leaf().(schema.Mapping), Key: key})
}

// OnKey applies c to the value stored under key. Maps without key do not
// match.
func OnKey[R, V any](p field.Path[R, map[string]V], key string, c Condition[V]) Condition[R] {
	return at(p, OnKeyCondition{Map: p.Leaf().(schema.Mapping), Key: key, Condition: c.Node()})
}

// IsNull matches absent optionals.
func IsNull[R, E any](p field.Path[R, *E]) Condition[R] {
	return at(p, IsNullCondition{Optional: p.Leaf().(schema.Nullable)})
}

// IsNotNull matches present optionals.
func IsNotNull[R, E any](p field.Path[R, *E]) Condition[R] {
	return at(p, IsNullCondition{Optional: p.Leaf().(schema.Nullable), Negate: true})
}

// IfNotNull applies c to a present optional; absent values do not match.
func IfNotNull[R, E any](p field.Path[R, *E], c Condition[E]) Condition[R] {
	return at(p, IfNotNullCondition{Optional: p.Leaf().(schema.Nullable), Condition: c.Node()})
}

// Contains matches strings containing s.
func Contains[R any](p field.Path[R, string], s string, ignoreCase bool) Condition[R] {
	return at(p, StringContainsCondition{Value: s, IgnoreCase: ignoreCase})
}

// Matches matches strings against a regular expression.
func Matches[R any](p field.Path[R, string], pattern string, ignoreCase bool) (Condition[R], error) {
	re, err := newRegexMatches(pattern, ignoreCase)
	if err != nil {
		return Condition[R]{}, err
	}
	return at(p, re), nil
}

// FullTextSearch matches records whose text-indexed string fields contain
// the terms of value. Records without text-indexed fields are searched over
// all their top-level string fields.
func FullTextSearch[T any](d schema.Descriptor[T], value string, requireAllTermsPresent bool) Condition[T] {
	st, ok := d.Type().(schema.Struct)
	if !ok {
		panic(fmt.Errorf("%w: FullTextSearch on non-record type %s", ErrInvalidCondition, d.ID()))
	}
	return New(d, newFullTextSearch(st, value, requireAllTermsPresent))
}

func newFullTextSearch(st schema.Struct, value string, requireAll bool) FullTextSearchCondition {
	var indexed, textual []int
	for i := 0; i < st.FieldCount(); i++ {
		f := st.Field(i)
		if _, ok := f.Type.(schema.Textual); !ok {
			continue
		}
		textual = append(textual, i)
		if f.Annotated(schema.AnnotationTextIndex) {
			indexed = append(indexed, i)
		}
	}
	if len(indexed) == 0 {
		indexed = textual
	}
	return FullTextSearchCondition{Owner: st, Value: value, RequireAllTermsPresent: requireAll, fields: indexed}
}

// WithinDistance matches coordinates between minKilometers and maxKilometers
// from (latitude, longitude).
func WithinDistance[R any](p field.Path[R, schema.GeoCoordinate], latitude, longitude, minKilometers, maxKilometers float64) Condition[R] {
	return at(p, GeoDistanceCondition{
		Latitude:              latitude,
		Longitude:             longitude,
		GreaterThanKilometers: minKilometers,
		LessThanKilometers:    maxKilometers,
	})
}

// SimilarTo matches embeddings scoring at least minScore against vector.
func SimilarTo[R any](p field.Path[R, embedding.Embedding], vector embedding.Embedding, metric embedding.Metric, minScore float32) Condition[R] {
	return at(p, SimilarToCondition{Vector: vector, Metric: metric, MinScore: minScore})
}
