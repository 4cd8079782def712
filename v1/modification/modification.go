package modification

import (
	"github.com/Aleph-Alpha/querykit/v1/schema"
)

// AnyModification is the erased view of a Modification.
type AnyModification interface {
	RootID() schema.TypeID
	Node() Node
}

// Modification is an update over records of type T. The zero value leaves
// records unchanged.
type Modification[T any] struct {
	root schema.TypeID
	node Node
}

// New wraps a node built or decoded by hand. The node must accept and
// return values of type T.
func New[T any](d schema.Descriptor[T], n Node) Modification[T] {
	return Modification[T]{root: d.ID(), node: n}
}

// Node returns the root of the modification tree.
func (m Modification[T]) Node() Node {
	if m.node == nil {
		return NothingModification{}
	}
	return m.node
}

// RootID returns the record type the modification was built against, or ""
// when it was built without a path.
func (m Modification[T]) RootID() schema.TypeID { return m.root }

// Apply returns an updated copy of v. On error v is returned unchanged.
func (m Modification[T]) Apply(v T) (T, error) {
	out, err := m.Node().Apply(v)
	if err != nil {
		return v, err
	}
	return out.(T), nil
}

// Equal compares two modifications structurally, including the record type
// they are rooted at.
func (m Modification[T]) Equal(o AnyModification) bool {
	if m.root != "" && o.RootID() != "" && m.root != o.RootID() {
		return false
	}
	return m.Node().Equal(o.Node())
}

func (m Modification[T]) String() string { return m.Node().String() }

// Encode returns the tagged form.
func (m Modification[T]) Encode() (schema.Value, error) { return m.Node().Encode() }

// MarshalJSON encodes the tagged form as JSON.
func (m Modification[T]) MarshalJSON() ([]byte, error) {
	v, err := m.Encode()
	if err != nil {
		return nil, err
	}
	return v.MarshalJSON()
}

// Decode rebuilds a modification over T from its tagged form.
func Decode[T any](d schema.Descriptor[T], v schema.Value) (Modification[T], error) {
	n, err := DecodeNode(d.Type(), v)
	if err != nil {
		return Modification[T]{}, err
	}
	return New(d, n), nil
}

// Unmarshal decodes a modification from the JSON produced by MarshalJSON.
func Unmarshal[T any](d schema.Descriptor[T], data []byte) (Modification[T], error) {
	v, err := schema.ParseJSON(data)
	if err != nil {
		return Modification[T]{}, err
	}
	return Decode(d, v)
}
