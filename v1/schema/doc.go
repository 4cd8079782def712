// Package schema provides the descriptor contract the query algebra is built
// on.
//
// Field access never uses reflection. Every value type exposes a Type: an
// erased descriptor that can encode a value into the intermediate Value tree,
// decode it back, and compare values. Record types additionally implement
// Struct, which lists fields by stable positional index and projects a field
// of a record. Types that can cheaply copy themselves with one field replaced
// implement CopyWither.
//
// # Architecture
//
//	┌───────────────┐     Encode / Decode     ┌──────────────┐
//	│  Go value (T) │ ◄─────────────────────► │    Value     │ ◄──► JSON / structpb
//	└───────────────┘                         └──────────────┘
//	        ▲
//	        │ Project(owner, i) / WithField(owner, i, v)
//	┌───────────────┐
//	│ Descriptor[T] │  typed handle over an erased Type
//	└───────────────┘
//
// # Describing a record
//
// Generated code (or hand-written code for small programs) builds record
// descriptors with Struct:
//
//	type User struct {
//		ID    uuid.UUID
//		Name  string
//		Email *string
//	}
//
//	var UserSchema = schema.StructOf("User",
//		func(v []any) User {
//			return User{ID: v[0].(uuid.UUID), Name: v[1].(string), Email: v[2].(*string)}
//		},
//		schema.FieldOf("id", schema.UUID, func(u User) uuid.UUID { return u.ID }, schema.Unique()),
//		schema.FieldOf("name", schema.String, func(u User) string { return u.Name }, schema.TextIndexed()),
//		schema.FieldOf("email", schema.Optional(schema.String), func(u User) *string { return u.Email }),
//	)
//
// Templated records render their type arguments into the TypeID with
// Generic, so descriptors of different instantiations carry different
// witnesses:
//
//	func PairSchema[A, B any](a schema.Descriptor[A], b schema.Descriptor[B]) schema.Descriptor[Pair[A, B]] {
//		return schema.StructOf(schema.Generic("Pair", a.ID(), b.ID()), ...)
//	}
//
// # Values
//
// Value is an immutable tagged tree (null, bool, int, float, string, list,
// ordered object). It marshals to JSON preserving object entry order and
// converts to protobuf structpb values for transport.
//
// # Registry
//
// Registry maps TypeIDs to descriptors for code that needs to resolve a type
// at runtime. It is created and passed explicitly.
package schema
