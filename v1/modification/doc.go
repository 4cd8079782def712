// Package modification implements the update algebra shared by every storage
// backend.
//
// A Modification[T] is a tree of Node values that turns one record into
// another. Builders take a field.Path and wrap the leaf operation in
// OnField, PerElement and IfNotNull nodes, so a deep update is a single
// expression:
//
//	m := modification.Chain(
//		modification.Increment(views, 1),
//		modification.AppendList(tags, "featured"),
//		modification.Assign(title, "Updated"),
//	)
//	updated, err := m.Apply(article)
//
// Apply never mutates its argument. Records are rebuilt field by field
// through the descriptor, natively when the record type implements
// schema.CopyWither and through an encode, replace, decode round trip
// otherwise.
//
// Chain applies its entries left to right and later entries win on
// overlapping fields. IfNotNull is a no-op on an absent optional. Increment
// and Multiply with a NaN or infinite delta fail with ErrNonFiniteDelta, and
// the engine then leaves the table unchanged.
package modification
