package schema

import (
	"maps"
	"slices"
	"sort"
)

// ── Lists ───────────────────────────────────────────────────────────────────

type listType[E any] struct {
	id   TypeID
	elem Type
}

// List describes []E.
func List[E any](elem Descriptor[E]) Descriptor[[]E] {
	return Of[[]E](&listType[E]{id: Generic("List", elem.ID()), elem: elem.Type()})
}

func (l *listType[E]) ID() TypeID  { return l.id }
func (l *listType[E]) Zero() any   { return []E(nil) }
func (l *listType[E]) Elem() Type  { return l.elem }
func (l *listType[E]) IsSet() bool { return false }

func (l *listType[E]) Len(v any) int { return len(cast[[]E](l.id, -1, v)) }

func (l *listType[E]) Elements(v any) []any {
	items := cast[[]E](l.id, -1, v)
	out := make([]any, len(items))
	for i, item := range items {
		out[i] = item
	}
	return out
}

func (l *listType[E]) FromElements(items []any) any {
	out := make([]E, len(items))
	for i, item := range items {
		out[i] = cast[E](l.elem.ID(), i, item)
	}
	return out
}

func (l *listType[E]) Encode(v any) (Value, error) {
	items := cast[[]E](l.id, -1, v)
	out := make([]Value, len(items))
	for i, item := range items {
		ev, err := l.elem.Encode(item)
		if err != nil {
			return Value{}, err
		}
		out[i] = ev
	}
	return Value{kind: KindList, items: out}, nil
}

func (l *listType[E]) Decode(v Value) (any, error) {
	if v.Kind() != KindList {
		return nil, kindError(l.id, KindList, v)
	}
	out := make([]E, len(v.items))
	for i, item := range v.items {
		dv, err := l.elem.Decode(item)
		if err != nil {
			return nil, err
		}
		out[i] = cast[E](l.elem.ID(), i, dv)
	}
	return out, nil
}

func (l *listType[E]) Equal(a, b any) bool {
	x, y := cast[[]E](l.id, -1, a), cast[[]E](l.id, -1, b)
	if len(x) != len(y) {
		return false
	}
	for i := range x {
		if !l.elem.Equal(x[i], y[i]) {
			return false
		}
	}
	return true
}

// ── Sets ────────────────────────────────────────────────────────────────────

type setType[E comparable] struct {
	id   TypeID
	elem Type
}

// Set describes map[E]struct{}. Encoded sets list their elements sorted by
// canonical value key so equal sets encode identically.
func Set[E comparable](elem Descriptor[E]) Descriptor[map[E]struct{}] {
	return Of[map[E]struct{}](&setType[E]{id: Generic("Set", elem.ID()), elem: elem.Type()})
}

// SetOf builds a set value from items.
func SetOf[E comparable](items ...E) map[E]struct{} {
	out := make(map[E]struct{}, len(items))
	for _, item := range items {
		out[item] = struct{}{}
	}
	return out
}

func (s *setType[E]) ID() TypeID  { return s.id }
func (s *setType[E]) Zero() any   { return map[E]struct{}(nil) }
func (s *setType[E]) Elem() Type  { return s.elem }
func (s *setType[E]) IsSet() bool { return true }

func (s *setType[E]) Len(v any) int { return len(cast[map[E]struct{}](s.id, -1, v)) }

func (s *setType[E]) Elements(v any) []any {
	set := cast[map[E]struct{}](s.id, -1, v)
	out := make([]any, 0, len(set))
	for item := range set {
		out = append(out, item)
	}
	return out
}

func (s *setType[E]) FromElements(items []any) any {
	out := make(map[E]struct{}, len(items))
	for i, item := range items {
		out[cast[E](s.elem.ID(), i, item)] = struct{}{}
	}
	return out
}

func (s *setType[E]) Encode(v any) (Value, error) {
	set := cast[map[E]struct{}](s.id, -1, v)
	out := make([]Value, 0, len(set))
	for item := range set {
		ev, err := s.elem.Encode(item)
		if err != nil {
			return Value{}, err
		}
		out = append(out, ev)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key() < out[j].Key() })
	return Value{kind: KindList, items: out}, nil
}

func (s *setType[E]) Decode(v Value) (any, error) {
	if v.Kind() != KindList {
		return nil, kindError(s.id, KindList, v)
	}
	out := make(map[E]struct{}, len(v.items))
	for i, item := range v.items {
		dv, err := s.elem.Decode(item)
		if err != nil {
			return nil, err
		}
		out[cast[E](s.elem.ID(), i, dv)] = struct{}{}
	}
	return out, nil
}

func (s *setType[E]) Equal(a, b any) bool {
	x, y := cast[map[E]struct{}](s.id, -1, a), cast[map[E]struct{}](s.id, -1, b)
	if len(x) != len(y) {
		return false
	}
	for item := range x {
		if _, ok := y[item]; !ok {
			return false
		}
	}
	return true
}

// ── Optionals ───────────────────────────────────────────────────────────────

type optionalType[E any] struct {
	id   TypeID
	elem Type
}

// orderedOptionalType sorts nil before any present value.
type orderedOptionalType[E any] struct {
	*optionalType[E]
	order Ordered
}

// Optional describes *E, where nil means absent. When elem is ordered the
// optional is ordered too, with nil first.
func Optional[E any](elem Descriptor[E]) Descriptor[*E] {
	base := &optionalType[E]{id: Generic("Optional", elem.ID()), elem: elem.Type()}
	if o, ok := elem.Type().(Ordered); ok {
		return Of[*E](&orderedOptionalType[E]{optionalType: base, order: o})
	}
	return Of[*E](base)
}

// Ptr returns a pointer to a copy of v.
func Ptr[E any](v E) *E { return &v }

func (o *optionalType[E]) ID() TypeID { return o.id }
func (o *optionalType[E]) Zero() any  { return (*E)(nil) }
func (o *optionalType[E]) Elem() Type { return o.elem }

func (o *optionalType[E]) IsNull(v any) bool { return cast[*E](o.id, -1, v) == nil }

func (o *optionalType[E]) Unwrap(v any) any { return *cast[*E](o.id, -1, v) }

func (o *optionalType[E]) Wrap(v any) any {
	e := cast[E](o.elem.ID(), -1, v)
	return &e
}

func (o *optionalType[E]) Encode(v any) (Value, error) {
	p := cast[*E](o.id, -1, v)
	if p == nil {
		return NullValue(), nil
	}
	return o.elem.Encode(*p)
}

func (o *optionalType[E]) Decode(v Value) (any, error) {
	if v.IsNull() {
		return (*E)(nil), nil
	}
	dv, err := o.elem.Decode(v)
	if err != nil {
		return nil, err
	}
	e := cast[E](o.elem.ID(), -1, dv)
	return &e, nil
}

func (o *optionalType[E]) Equal(a, b any) bool {
	x, y := cast[*E](o.id, -1, a), cast[*E](o.id, -1, b)
	if x == nil || y == nil {
		return x == nil && y == nil
	}
	return o.elem.Equal(*x, *y)
}

func (o *orderedOptionalType[E]) Compare(a, b any) int {
	x, y := cast[*E](o.id, -1, a), cast[*E](o.id, -1, b)
	switch {
	case x == nil && y == nil:
		return 0
	case x == nil:
		return -1
	case y == nil:
		return 1
	}
	return o.order.Compare(*x, *y)
}

// ── Maps ────────────────────────────────────────────────────────────────────

type mapType[V any] struct {
	id   TypeID
	elem Type
}

// Map describes map[string]V. Encoded maps are objects with sorted keys.
func Map[V any](elem Descriptor[V]) Descriptor[map[string]V] {
	return Of[map[string]V](&mapType[V]{id: Generic("Map", elem.ID()), elem: elem.Type()})
}

func (m *mapType[V]) ID() TypeID { return m.id }
func (m *mapType[V]) Zero() any  { return map[string]V(nil) }
func (m *mapType[V]) Elem() Type { return m.elem }

func (m *mapType[V]) Keys(v any) []string {
	return slices.Sorted(maps.Keys(cast[map[string]V](m.id, -1, v)))
}

func (m *mapType[V]) Lookup(v any, key string) (any, bool) {
	val, ok := cast[map[string]V](m.id, -1, v)[key]
	return val, ok
}

func (m *mapType[V]) Merge(base, overlay any) any {
	out := maps.Clone(cast[map[string]V](m.id, -1, base))
	if out == nil {
		out = make(map[string]V)
	}
	maps.Copy(out, cast[map[string]V](m.id, -1, overlay))
	return out
}

func (m *mapType[V]) Without(v any, keys []string) any {
	out := maps.Clone(cast[map[string]V](m.id, -1, v))
	for _, k := range keys {
		delete(out, k)
	}
	return out
}

func (m *mapType[V]) Encode(v any) (Value, error) {
	src := cast[map[string]V](m.id, -1, v)
	entries := make([]Entry, 0, len(src))
	for _, k := range slices.Sorted(maps.Keys(src)) {
		ev, err := m.elem.Encode(src[k])
		if err != nil {
			return Value{}, err
		}
		entries = append(entries, Entry{Key: k, Value: ev})
	}
	return Value{kind: KindObject, entries: entries}, nil
}

func (m *mapType[V]) Decode(v Value) (any, error) {
	if v.Kind() != KindObject {
		return nil, kindError(m.id, KindObject, v)
	}
	out := make(map[string]V, len(v.entries))
	for _, e := range v.entries {
		dv, err := m.elem.Decode(e.Value)
		if err != nil {
			return nil, &DecodeError{Type: m.id, Field: e.Key, Err: err}
		}
		out[e.Key] = cast[V](m.elem.ID(), -1, dv)
	}
	return out, nil
}

func (m *mapType[V]) Equal(a, b any) bool {
	x, y := cast[map[string]V](m.id, -1, a), cast[map[string]V](m.id, -1, b)
	if len(x) != len(y) {
		return false
	}
	for k, xv := range x {
		yv, ok := y[k]
		if !ok || !m.elem.Equal(xv, yv) {
			return false
		}
	}
	return true
}
