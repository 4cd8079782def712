package condition

import (
	"github.com/Aleph-Alpha/querykit/v1/schema"
)

// AnyCondition is the erased view of a Condition used to compare conditions
// built over different record types.
type AnyCondition interface {
	RootID() schema.TypeID
	Node() Node
}

// Condition is a predicate over records of type T. The zero value matches
// every record.
type Condition[T any] struct {
	root schema.TypeID
	node Node
}

// New wraps a node built or decoded by hand. The node must evaluate values
// of type T.
func New[T any](d schema.Descriptor[T], n Node) Condition[T] {
	return Condition[T]{root: d.ID(), node: n}
}

// Node returns the root of the condition tree.
func (c Condition[T]) Node() Node {
	if c.node == nil {
		return AlwaysCondition{}
	}
	return c.node
}

// RootID returns the record type the condition was built against, or "" for
// conditions built without a path (Always, Never and their combinations).
func (c Condition[T]) RootID() schema.TypeID { return c.root }

// IsAlways reports whether the condition trivially matches everything.
func (c Condition[T]) IsAlways() bool {
	_, ok := c.Node().(AlwaysCondition)
	return ok
}

// Evaluate reports whether v satisfies the condition.
func (c Condition[T]) Evaluate(v T) bool { return c.Node().Evaluate(v) }

// Equal compares two conditions structurally. Conditions rooted at different
// record types are never equal, even when their trees have the same shape.
func (c Condition[T]) Equal(o AnyCondition) bool {
	if c.root != "" && o.RootID() != "" && c.root != o.RootID() {
		return false
	}
	return c.Node().Equal(o.Node())
}

func (c Condition[T]) String() string { return c.Node().String() }

// Encode returns the tagged form of the condition.
func (c Condition[T]) Encode() (schema.Value, error) { return c.Node().Encode() }

// MarshalJSON encodes the tagged form as JSON.
func (c Condition[T]) MarshalJSON() ([]byte, error) {
	v, err := c.Encode()
	if err != nil {
		return nil, err
	}
	return v.MarshalJSON()
}

// Decode rebuilds a condition over T from its tagged form.
func Decode[T any](d schema.Descriptor[T], v schema.Value) (Condition[T], error) {
	n, err := DecodeNode(d.Type(), v)
	if err != nil {
		return Condition[T]{}, err
	}
	return New(d, n), nil
}

// Unmarshal decodes a condition from the JSON produced by MarshalJSON.
func Unmarshal[T any](d schema.Descriptor[T], data []byte) (Condition[T], error) {
	v, err := schema.ParseJSON(data)
	if err != nil {
		return Condition[T]{}, err
	}
	return Decode(d, v)
}
