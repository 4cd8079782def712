package schema

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingField is returned when a record object lacks a required field.
	ErrMissingField = errors.New("schema: missing field")

	// ErrUnexpectedKind is returned when a Value has the wrong shape for a type.
	ErrUnexpectedKind = errors.New("schema: unexpected value kind")

	// ErrUnknownField is returned when a field name does not exist on a record type.
	ErrUnknownField = errors.New("schema: unknown field")

	// ErrTypeConflict is returned when a registry already holds another type
	// under the same TypeID.
	ErrTypeConflict = errors.New("schema: conflicting type registration")

	// ErrUnknownType is the panic payload of MustLookup for an unregistered
	// TypeID.
	ErrUnknownType = errors.New("schema: unknown type")
)

// TypeMismatchError is the panic payload raised when a descriptor hands back
// a value whose dynamic type differs from what the caller was typed against.
// It signals a descriptor/accessor desynchronization bug, never bad data.
type TypeMismatchError struct {
	Type  TypeID
	Index int
	Want  string
	Got   string
}

func (e *TypeMismatchError) Error() string {
	if e.Index >= 0 {
		return fmt.Sprintf("schema: type mismatch at %s[%d]: want %s, got %s", e.Type, e.Index, e.Want, e.Got)
	}
	return fmt.Sprintf("schema: type mismatch for %s: want %s, got %s", e.Type, e.Want, e.Got)
}

func mismatch(id TypeID, index int, want, got any) *TypeMismatchError {
	return &TypeMismatchError{Type: id, Index: index, Want: fmt.Sprintf("%T", want), Got: fmt.Sprintf("%T", got)}
}

// DecodeError reports which field of which type failed to decode.
type DecodeError struct {
	Type  TypeID
	Field string
	Err   error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("schema: decode %s.%s: %v", e.Type, e.Field, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

func kindError(id TypeID, want Kind, got Value) error {
	return fmt.Errorf("%w: %s expects %s, got %s", ErrUnexpectedKind, id, want, got.Kind())
}

// IsTypeMismatch reports whether a recovered panic value is a TypeMismatchError.
func IsTypeMismatch(recovered any) bool {
	err, ok := recovered.(error)
	if !ok {
		return false
	}
	var tm *TypeMismatchError
	return errors.As(err, &tm)
}
