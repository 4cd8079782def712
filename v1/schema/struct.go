package schema

import (
	"fmt"
)

// StructPart is one building block passed to StructOf: a field or an option.
type StructPart[T any] interface {
	applyTo(s *structType[T])
}

// FieldOption customizes a field built with FieldOf.
type FieldOption func(f *Field)

// Default sets the value a decoder uses when the field is absent.
func Default(v any) FieldOption {
	return func(f *Field) {
		f.Default = v
		f.HasDefault = true
	}
}

// Annotate attaches a keyed hint to the field.
func Annotate(key, value string) FieldOption {
	return func(f *Field) {
		f.Annotations = append(f.Annotations, Annotation{Key: key, Value: value})
	}
}

// TextIndexed marks a string field as part of the record's full-text index.
func TextIndexed() FieldOption { return Annotate(AnnotationTextIndex, "") }

// Unique marks a field as unique.
func Unique() FieldOption { return Annotate(AnnotationUnique, "") }

// FieldDef is a field of record type T.
type FieldDef[T any] struct {
	field Field
	get   func(T) any
}

// FieldOf declares a field named name of type V, read with get.
func FieldOf[T, V any](name string, d Descriptor[V], get func(T) V, opts ...FieldOption) FieldDef[T] {
	f := Field{Name: name, Type: d.Type()}
	for _, opt := range opts {
		opt(&f)
	}
	if f.HasDefault {
		if _, ok := f.Default.(V); !ok {
			var want V
			panic(mismatch(d.ID(), -1, want, f.Default))
		}
	}
	return FieldDef[T]{field: f, get: func(t T) any { return get(t) }}
}

func (f FieldDef[T]) applyTo(s *structType[T]) {
	s.fields = append(s.fields, f)
}

type copyPart[T any] struct {
	fn func(T, int, any) T
}

func (c copyPart[T]) applyTo(s *structType[T]) { s.copyWith = c.fn }

// CopyWith gives a record type a native copy-with primitive: fn returns a
// copy of owner with field index set to value.
func CopyWith[T any](fn func(owner T, index int, value any) T) StructPart[T] {
	return copyPart[T]{fn: fn}
}

type structType[T any] struct {
	id       TypeID
	build    func(values []any) T
	fields   []FieldDef[T]
	copyWith func(T, int, any) T
}

type copyStructType[T any] struct {
	*structType[T]
}

// StructOf describes record type T. build receives one value per field, in
// field order, and assembles the record.
func StructOf[T any](id TypeID, build func(values []any) T, parts ...StructPart[T]) Descriptor[T] {
	s := &structType[T]{id: id, build: build}
	for _, p := range parts {
		p.applyTo(s)
	}
	seen := make(map[string]struct{}, len(s.fields))
	for _, f := range s.fields {
		if _, dup := seen[f.field.Name]; dup {
			panic(fmt.Sprintf("schema: duplicate field %q in %s", f.field.Name, id))
		}
		seen[f.field.Name] = struct{}{}
	}
	if s.copyWith != nil {
		return Of[T](&copyStructType[T]{structType: s})
	}
	return Of[T](s)
}

func (s *structType[T]) ID() TypeID { return s.id }

func (s *structType[T]) Zero() any {
	var zero T
	return zero
}

func (s *structType[T]) FieldCount() int { return len(s.fields) }

func (s *structType[T]) Field(i int) Field { return s.fields[i].field }

func (s *structType[T]) Project(owner any, i int) any {
	return s.fields[i].get(cast[T](s.id, i, owner))
}

func (s *structType[T]) Encode(v any) (Value, error) {
	rec := cast[T](s.id, -1, v)
	entries := make([]Entry, len(s.fields))
	for i, f := range s.fields {
		ev, err := f.field.Type.Encode(f.get(rec))
		if err != nil {
			return Value{}, fmt.Errorf("schema: encode %s.%s: %w", s.id, f.field.Name, err)
		}
		entries[i] = Entry{Key: f.field.Name, Value: ev}
	}
	return Value{kind: KindObject, entries: entries}, nil
}

func (s *structType[T]) Decode(v Value) (any, error) {
	if v.Kind() != KindObject {
		return nil, kindError(s.id, KindObject, v)
	}
	values := make([]any, len(s.fields))
	for i, f := range s.fields {
		ev, ok := v.Get(f.field.Name)
		if !ok {
			switch {
			case f.field.HasDefault:
				values[i] = f.field.Default
				continue
			case isNullable(f.field.Type):
				values[i] = f.field.Type.Zero()
				continue
			default:
				return nil, &DecodeError{Type: s.id, Field: f.field.Name, Err: ErrMissingField}
			}
		}
		dv, err := f.field.Type.Decode(ev)
		if err != nil {
			return nil, &DecodeError{Type: s.id, Field: f.field.Name, Err: err}
		}
		values[i] = dv
	}
	return s.build(values), nil
}

func (s *structType[T]) Equal(a, b any) bool {
	x, y := cast[T](s.id, -1, a), cast[T](s.id, -1, b)
	for _, f := range s.fields {
		if !f.field.Type.Equal(f.get(x), f.get(y)) {
			return false
		}
	}
	return true
}

func (c *copyStructType[T]) WithField(owner any, i int, v any) any {
	return c.copyWith(cast[T](c.id, i, owner), i, v)
}

func isNullable(t Type) bool {
	_, ok := t.(Nullable)
	return ok
}

// GeoCoordinate is a point on the earth's surface in degrees.
type GeoCoordinate struct {
	Latitude  float64
	Longitude float64
}

// GeoCoordinateType describes GeoCoordinate.
var GeoCoordinateType = StructOf[GeoCoordinate]("GeoCoordinate",
	func(v []any) GeoCoordinate {
		return GeoCoordinate{Latitude: v[0].(float64), Longitude: v[1].(float64)}
	},
	FieldOf("latitude", Float64, func(g GeoCoordinate) float64 { return g.Latitude }),
	FieldOf("longitude", Float64, func(g GeoCoordinate) float64 { return g.Longitude }),
	CopyWith(func(g GeoCoordinate, i int, v any) GeoCoordinate {
		switch i {
		case 0:
			g.Latitude = v.(float64)
		case 1:
			g.Longitude = v.(float64)
		}
		return g
	}),
)
