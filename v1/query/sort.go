package query

import (
	"fmt"
	"strings"

	"github.com/Aleph-Alpha/querykit/v1/field"
	"github.com/Aleph-Alpha/querykit/v1/schema"
)

// SortPart orders records by one path. Records whose path crosses an absent
// optional sort before all others in ascending order.
type SortPart[T any] struct {
	path       field.Expr[T]
	order      schema.Ordered
	descending bool
	ignoreCase bool
}

func sortPart[R, L any](p field.Path[R, L], descending bool) SortPart[R] {
	ord, ok := p.Leaf().(schema.Ordered)
	if !ok {
		panic(fmt.Errorf("query: cannot sort by %s: %s has no total order", p, p.Leaf().ID()))
	}
	return SortPart[R]{path: p, order: ord, descending: descending}
}

// Asc sorts ascending by p. It panics when the leaf type has no total order.
func Asc[R, L any](p field.Path[R, L]) SortPart[R] { return sortPart(p, false) }

// Desc sorts descending by p.
func Desc[R, L any](p field.Path[R, L]) SortPart[R] { return sortPart(p, true) }

// IgnoringCase compares string leaves case-insensitively. It panics on
// non-string leaves.
func (s SortPart[T]) IgnoringCase() SortPart[T] {
	if _, ok := s.order.(schema.Textual); !ok {
		panic(fmt.Errorf("query: cannot ignore case when sorting by %s", s.order.ID()))
	}
	s.ignoreCase = true
	return s
}

func (s SortPart[T]) Path() field.AnyPath { return s.path }
func (s SortPart[T]) Descending() bool    { return s.descending }
func (s SortPart[T]) IgnoreCase() bool    { return s.ignoreCase }

// Compare orders a and b by this part.
func (s SortPart[T]) Compare(a, b T) int {
	va, oka := s.path.Value(a)
	vb, okb := s.path.Value(b)
	var r int
	switch {
	case !oka && !okb:
		r = 0
	case !oka:
		r = -1
	case !okb:
		r = 1
	case s.ignoreCase:
		r = strings.Compare(strings.ToLower(va.(string)), strings.ToLower(vb.(string)))
	default:
		r = s.order.Compare(va, vb)
	}
	if s.descending {
		return -r
	}
	return r
}

// Equal compares path, direction and case policy.
func (s SortPart[T]) Equal(o SortPart[T]) bool {
	return s.descending == o.descending && s.ignoreCase == o.ignoreCase && field.SamePath(s.path, o.path)
}

func (s SortPart[T]) String() string {
	dir := "asc"
	if s.descending {
		dir = "desc"
	}
	if s.ignoreCase {
		dir += " ignoring case"
	}
	return fmt.Sprintf("%s %s", s.path, dir)
}
