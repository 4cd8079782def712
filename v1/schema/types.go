package schema

import (
	"strings"
)

// TypeID is the type witness carried by descriptors, accessors, paths and
// condition/modification nodes. Generic instantiations render their type
// arguments, so Model<uuid,int64> and Model<uuid,uuid> never collide.
type TypeID string

// Generic renders the TypeID of a templated type applied to args.
func Generic(name string, args ...TypeID) TypeID {
	if len(args) == 0 {
		return TypeID(name)
	}
	parts := make([]string, len(args))
	for i, a := range args {
		parts[i] = string(a)
	}
	return TypeID(name + "<" + strings.Join(parts, ",") + ">")
}

// Type is the erased descriptor every value type provides. Generated code (or
// StructOf) implements it for records; this package implements it
// for scalars and containers.
type Type interface {
	// ID returns the type witness.
	ID() TypeID

	// Zero returns the zero value of the described Go type.
	Zero() any

	// Encode converts a value of the described type to a Value.
	Encode(v any) (Value, error)

	// Decode converts a Value back into the described type.
	Decode(v Value) (any, error)

	// Equal compares two values of the described type.
	Equal(a, b any) bool
}

// Ordered is implemented by types with a total order.
type Ordered interface {
	Type
	// Compare returns -1, 0 or +1.
	Compare(a, b any) int
}

// Numeric is implemented by number types usable in arithmetic modifications
// and aggregates.
type Numeric interface {
	Ordered
	Add(a, b any) any
	Mul(a, b any) any
	Float(v any) float64
	IsFinite(v any) bool
}

// Textual marks string types eligible for text predicates.
type Textual interface {
	Type
	Text(v any) string
}

// Container is implemented by list and set types.
type Container interface {
	Type
	Elem() Type
	IsSet() bool
	Len(v any) int
	Elements(v any) []any
	FromElements(items []any) any
}

// Nullable is implemented by optional types.
type Nullable interface {
	Type
	Elem() Type
	IsNull(v any) bool
	Unwrap(v any) any
	Wrap(v any) any
}

// Mapping is implemented by string-keyed map types.
type Mapping interface {
	Type
	Elem() Type
	Keys(v any) []string
	Lookup(v any, key string) (any, bool)
	Merge(base, overlay any) any
	Without(v any, keys []string) any
}

// Struct is implemented by record types. Field indices are stable for the
// lifetime of the process.
type Struct interface {
	Type
	FieldCount() int
	Field(i int) Field
	// Project returns the value of field i of owner.
	Project(owner any, i int) any
}

// CopyWither is implemented by record types that can copy themselves with one
// field replaced without a round trip through Value.
type CopyWither interface {
	Struct
	WithField(owner any, i int, v any) any
}

// Well-known annotation keys. They are hints for backends; the text index
// key also selects the fields full-text search looks at.
const (
	AnnotationIndex       = "Index"
	AnnotationUnique      = "Unique"
	AnnotationTextIndex   = "TextIndex"
	AnnotationVectorIndex = "VectorIndex"
)

// Annotation is a keyed hint attached to a field.
type Annotation struct {
	Key   string
	Value string
}

// Field describes one positional field of a record type.
type Field struct {
	Name        string
	Type        Type
	Default     any
	HasDefault  bool
	Annotations []Annotation
}

// Annotated reports whether the field carries an annotation with key.
func (f Field) Annotated(key string) bool {
	for _, a := range f.Annotations {
		if a.Key == key {
			return true
		}
	}
	return false
}

// FieldIndex returns the index of the named field, or -1.
func FieldIndex(s Struct, name string) int {
	for i := 0; i < s.FieldCount(); i++ {
		if s.Field(i).Name == name {
			return i
		}
	}
	return -1
}

// Descriptor is a typed handle over a Type whose values are T.
type Descriptor[T any] struct {
	t Type
}

// Of wraps t as a Descriptor[T]. It panics with a TypeMismatchError when t
// does not describe T.
func Of[T any](t Type) Descriptor[T] {
	if _, ok := t.Zero().(T); !ok {
		var want T
		panic(mismatch(t.ID(), -1, want, t.Zero()))
	}
	return Descriptor[T]{t: t}
}

func (d Descriptor[T]) Type() Type        { return d.t }
func (d Descriptor[T]) ID() TypeID        { return d.t.ID() }
func (d Descriptor[T]) Equal(a, b T) bool { return d.t.Equal(a, b) }

// Encode converts v to a Value.
func (d Descriptor[T]) Encode(v T) (Value, error) {
	return d.t.Encode(v)
}

// Decode converts a Value to T.
func (d Descriptor[T]) Decode(v Value) (T, error) {
	out, err := d.t.Decode(v)
	if err != nil {
		var zero T
		return zero, err
	}
	return cast[T](d.t.ID(), -1, out), nil
}

// cast asserts v to T, panicking with a TypeMismatchError otherwise.
func cast[T any](id TypeID, index int, v any) T {
	out, ok := v.(T)
	if !ok {
		var want T
		panic(mismatch(id, index, want, v))
	}
	return out
}
