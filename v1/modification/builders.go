package modification

import (
	"fmt"

	"github.com/Aleph-Alpha/querykit/v1/condition"
	"github.com/Aleph-Alpha/querykit/v1/field"
	"github.com/Aleph-Alpha/querykit/v1/schema"
)

// Nothing leaves records unchanged.
func Nothing[T any]() Modification[T] { return Modification[T]{node: NothingModification{}} }

// Chain applies ms left to right. Later entries see the effect of earlier
// ones, so the last write to a field wins.
func Chain[T any](ms ...Modification[T]) Modification[T] {
	var root schema.TypeID
	nodes := make([]Node, len(ms))
	for i, m := range ms {
		if root == "" {
			root = m.root
		}
		nodes[i] = m.Node()
	}
	return Modification[T]{root: root, node: ChainModification{Modifications: nodes}}
}

// at folds the steps of p around leaf. Element steps become PerElement and
// optional steps become IfNotNull.
func at[R, L any](p field.Path[R, L], leaf Node) Modification[R] {
	steps := p.Steps()
	n := leaf
	for i := len(steps) - 1; i >= 0; i-- {
		s := steps[i]
		switch s.Kind {
		case field.StepField:
			n = OnFieldModification{Owner: s.Owner.(schema.Struct), Index: s.Index, Modification: n}
		case field.StepElements:
			n = PerElementModification{Container: s.Owner.(schema.Container), Modification: n}
		case field.StepNotNull:
			n = IfNotNullModification{Optional: s.Owner.(schema.Nullable), Modification: n}
		}
	}
	return Modification[R]{root: p.RootType().ID(), node: n}
}

// At applies m to the leaf of p.
func At[R, L any](p field.Path[R, L], m Modification[L]) Modification[R] {
	return at(p, m.Node())
}

// Assign sets the leaf to v.
func Assign[R, L any](p field.Path[R, L], v L) Modification[R] {
	return at(p, AssignModification{Type: p.Leaf(), Value: v})
}

func numeric(p field.AnyPath, op string) schema.Numeric {
	n, ok := p.Leaf().(schema.Numeric)
	if !ok {
		panic(fmt.Errorf("%w: %s on non-numeric type %s", ErrInvalidModification, op, p.Leaf().ID()))
	}
	return n
}

func ordered(p field.AnyPath, op string) schema.Ordered {
	o, ok := p.Leaf().(schema.Ordered)
	if !ok {
		panic(fmt.Errorf("%w: %s on unordered type %s", ErrInvalidModification, op, p.Leaf().ID()))
	}
	return o
}

// Increment adds by to a numeric leaf. It panics when the leaf is not a
// number.
func Increment[R, L any](p field.Path[R, L], by L) Modification[R] {
	return at(p, IncrementModification{Type: numeric(p, "Increment"), By: by})
}

// Multiply multiplies a numeric leaf by by.
func Multiply[R, L any](p field.Path[R, L], by L) Modification[R] {
	return at(p, MultiplyModification{Type: numeric(p, "Multiply"), By: by})
}

// CoerceAtMost caps the leaf at v.
func CoerceAtMost[R, L any](p field.Path[R, L], v L) Modification[R] {
	return at(p, CoerceAtMostModification{Type: ordered(p, "CoerceAtMost"), Value: v})
}

// CoerceAtLeast raises the leaf to at least v.
func CoerceAtLeast[R, L any](p field.Path[R, L], v L) Modification[R] {
	return at(p, CoerceAtLeastModification{Type: ordered(p, "CoerceAtLeast"), Value: v})
}

// AppendString appends s to a string leaf.
func AppendString[R any](p field.Path[R, string], s string) Modification[R] {
	return at(p, AppendStringModification{Value: s})
}

func boxed[E any](items []E) []any {
	out := make([]any, len(items))
	for i, item := range items {
		out[i] = item
	}
	return out
}

// AppendList appends items to a list leaf.
func AppendList[R, E any](p field.Path[R, []E], items ...E) Modification[R] {
	return at(p, AppendListModification{Container: p.Leaf().(schema.Container), Items: boxed(items)})
}

// AppendSet adds items to a set leaf.
func AppendSet[R any, E comparable](p field.Path[R, map[E]struct{}], items ...E) Modification[R] {
	return at(p, AppendSetModification{Container: p.Leaf().(schema.Container), Items: boxed(items)})
}

// RemoveWhere drops the list elements matching c.
func RemoveWhere[R, E any](p field.Path[R, []E], c condition.Condition[E]) Modification[R] {
	return at(p, RemoveWhereModification{Container: p.Leaf().(schema.Container), Condition: c.Node()})
}

// RemoveMembersWhere drops the set members matching c.
func RemoveMembersWhere[R any, E comparable](p field.Path[R, map[E]struct{}], c condition.Condition[E]) Modification[R] {
	return at(p, RemoveWhereModification{Container: p.Leaf().(schema.Container), Condition: c.Node()})
}

// RemoveInstances drops every list element equal to one of items.
func RemoveInstances[R, E any](p field.Path[R, []E], items ...E) Modification[R] {
	return at(p, RemoveInstancesModification{Container: p.Leaf().(schema.Container), Items: boxed(items)})
}

// DropFirst removes the first n list elements.
func DropFirst[R, E any](p field.Path[R, []E], n int) Modification[R] {
	return at(p, DropFirstModification{Container: p.Leaf().(schema.Container), Count: n})
}

// DropLast removes the last n list elements.
func DropLast[R, E any](p field.Path[R, []E], n int) Modification[R] {
	return at(p, DropLastModification{Container: p.Leaf().(schema.Container), Count: n})
}

// PerElement applies m to every list element.
func PerElement[R, E any](p field.Path[R, []E], m Modification[E]) Modification[R] {
	return at(p, PerElementModification{Container: p.Leaf().(schema.Container), Modification: m.Node()})
}

// CombineMap overlays overlay onto a map leaf.
func CombineMap[R, V any](p field.Path[R, map[string]V], overlay map[string]V) Modification[R] {
	return at(p, CombineMapModification{Map: p.Leaf().(schema.Mapping), Value: overlay})
}

// RemoveKeys deletes keys from a map leaf.
func RemoveKeys[R, V any](p field.Path[R, map[string]V], keys ...string) Modification[R] {
	return at(p, RemoveKeysModification{Map: p.Leaf().(schema.Mapping), Keys: keys})
}

// IfNotNull applies m to a present optional leaf and leaves absent ones
// unchanged.
func IfNotNull[R, E any](p field.Path[R, *E], m Modification[E]) Modification[R] {
	return at(p, IfNotNullModification{Optional: p.Leaf().(schema.Nullable), Modification: m.Node()})
}
