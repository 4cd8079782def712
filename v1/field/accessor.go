package field

import (
	"fmt"
	"reflect"
	"sync"

	"github.com/Aleph-Alpha/querykit/v1/schema"
)

// Accessor reads and writes one field of record type O, addressed by its
// positional index in O's descriptor. Accessors are immutable values and can
// be built once and shared between goroutines.
type Accessor[O, V any] struct {
	owner schema.Struct
	index int
	step  Step
}

type stepKey struct {
	owner schema.Struct
	index int
}

// steps caches the field step of every (descriptor, index) pair an accessor
// was built for.
var steps sync.Map

func fieldStep(st schema.Struct, index int) Step {
	if !reflect.TypeOf(st).Comparable() {
		return newFieldStep(st, index)
	}
	k := stepKey{owner: st, index: index}
	if s, ok := steps.Load(k); ok {
		return s.(Step)
	}
	s, _ := steps.LoadOrStore(k, newFieldStep(st, index))
	return s.(Step)
}

func newFieldStep(st schema.Struct, index int) Step {
	f := st.Field(index)
	return Step{Kind: StepField, Owner: st, Index: index, Name: f.Name, Value: f.Type}
}

// NewAccessor builds an accessor for field index of owner. It panics when the
// descriptor is not a record, the index is out of range, or the field's type
// does not hold V.
func NewAccessor[O, V any](owner schema.Descriptor[O], index int) Accessor[O, V] {
	st, ok := owner.Type().(schema.Struct)
	if !ok {
		panic(fmt.Sprintf("field: %s is not a record type", owner.ID()))
	}
	if index < 0 || index >= st.FieldCount() {
		panic(fmt.Sprintf("field: index %d out of range for %s (%d fields)", index, owner.ID(), st.FieldCount()))
	}
	step := fieldStep(st, index)
	zero := step.Value.Zero()
	if _, ok := zero.(V); !ok {
		var want V
		panic(&schema.TypeMismatchError{
			Type:  owner.ID(),
			Index: index,
			Want:  fmt.Sprintf("%T", want),
			Got:   fmt.Sprintf("%T", zero),
		})
	}
	return Accessor[O, V]{owner: st, index: index, step: step}
}

// AccessorByName builds an accessor for the named field of owner.
func AccessorByName[O, V any](owner schema.Descriptor[O], name string) Accessor[O, V] {
	st, ok := owner.Type().(schema.Struct)
	if !ok {
		panic(fmt.Sprintf("field: %s is not a record type", owner.ID()))
	}
	i := schema.FieldIndex(st, name)
	if i < 0 {
		panic(fmt.Sprintf("field: %s has no field %q", owner.ID(), name))
	}
	return NewAccessor[O, V](owner, i)
}

// Get returns the field value. A descriptor that projects a value of the
// wrong type panics with *schema.TypeMismatchError.
func (a Accessor[O, V]) Get(o O) V {
	v := a.owner.Project(o, a.index)
	out, ok := v.(V)
	if !ok {
		var want V
		panic(&schema.TypeMismatchError{
			Type:  a.owner.ID(),
			Index: a.index,
			Want:  fmt.Sprintf("%T", want),
			Got:   fmt.Sprintf("%T", v),
		})
	}
	return out
}

// Set returns a copy of o with the field replaced by v.
func (a Accessor[O, V]) Set(o O, v V) (O, error) {
	out, err := setField(a.owner, o, a.index, v)
	if err != nil {
		var zero O
		return zero, err
	}
	return out.(O), nil
}

// Default returns the field's declared default value.
func (a Accessor[O, V]) Default() (V, bool) {
	f := a.owner.Field(a.index)
	if !f.HasDefault {
		var zero V
		return zero, false
	}
	return f.Default.(V), true
}

func (a Accessor[O, V]) Name() string         { return a.step.Name }
func (a Accessor[O, V]) Index() int           { return a.index }
func (a Accessor[O, V]) Owner() schema.TypeID { return a.owner.ID() }
func (a Accessor[O, V]) Field() schema.Field  { return a.owner.Field(a.index) }

// Step returns the path step this accessor contributes.
func (a Accessor[O, V]) Step() Step { return a.step }

// Equal reports whether both accessors address the same field of the same
// owner type.
func (a Accessor[O, V]) Equal(other Accessor[O, V]) bool {
	return a.Step().Equal(other.Step())
}

// setField replaces field i of owner, natively when the record supports
// copy-with and through an encode/replace/decode round trip otherwise.
func setField(st schema.Struct, owner any, i int, v any) (any, error) {
	if cw, ok := st.(schema.CopyWither); ok {
		return cw.WithField(owner, i, v), nil
	}
	f := st.Field(i)
	encoded, err := st.Encode(owner)
	if err != nil {
		return nil, err
	}
	fv, err := f.Type.Encode(v)
	if err != nil {
		return nil, fmt.Errorf("field: encode %s.%s: %w", st.ID(), f.Name, err)
	}
	return st.Decode(encoded.With(f.Name, fv))
}
