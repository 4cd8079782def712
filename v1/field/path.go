package field

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Aleph-Alpha/querykit/v1/schema"
)

// ErrMultiValued is returned when reading or writing a single value through a
// path that projects the elements of a collection.
var ErrMultiValued = errors.New("field: path projects multiple values")

// StepKind distinguishes the hops a path can take.
type StepKind uint8

const (
	// StepField moves into a record field.
	StepField StepKind = iota
	// StepElements moves into every element of a list or set.
	StepElements
	// StepNotNull moves into the value of a present optional.
	StepNotNull
)

// Step is one hop of a Path. Owner is the type the hop starts from and Value
// the type it lands on.
type Step struct {
	Kind  StepKind
	Owner schema.Type
	Index int
	Name  string
	Value schema.Type
}

// Equal compares the hop kind, both type witnesses and the field index.
func (s Step) Equal(o Step) bool {
	return s.Kind == o.Kind &&
		s.Index == o.Index &&
		s.Owner.ID() == o.Owner.ID() &&
		s.Value.ID() == o.Value.ID()
}

func (s Step) String() string {
	switch s.Kind {
	case StepElements:
		return "[*]"
	case StepNotNull:
		return "?"
	default:
		return "." + s.Name
	}
}

// AnyPath is the type-erased view of a Path used for comparisons across
// instantiations.
type AnyPath interface {
	RootType() schema.Type
	Steps() []Step
	Leaf() schema.Type
}

// Expr is a path rooted at R whose leaf type is only known at runtime. Sort
// keys, grouping keys and aggregate properties take an Expr.
type Expr[R any] interface {
	AnyPath
	Value(r R) (any, bool)
}

// Path is a typed chain of steps from a root record type R to a leaf type L.
type Path[R, L any] struct {
	root  schema.Type
	steps []Step
}

// Root returns the identity path on T.
func Root[T any](d schema.Descriptor[T]) Path[T, T] {
	return Path[T, T]{root: d.Type()}
}

// Access extends p by one field.
func Access[R, O, V any](p Path[R, O], a Accessor[O, V]) Path[R, V] {
	return Path[R, V]{root: p.root, steps: appendStep(p.steps, a.Step())}
}

// Elements projects the elements of a list-valued leaf.
func Elements[R, E any](p Path[R, []E]) Path[R, E] {
	c := p.Leaf().(schema.Container)
	return Path[R, E]{root: p.root, steps: appendStep(p.steps, Step{Kind: StepElements, Owner: c, Index: -1, Value: c.Elem()})}
}

// SetElements projects the elements of a set-valued leaf.
func SetElements[R any, E comparable](p Path[R, map[E]struct{}]) Path[R, E] {
	c := p.Leaf().(schema.Container)
	return Path[R, E]{root: p.root, steps: appendStep(p.steps, Step{Kind: StepElements, Owner: c, Index: -1, Value: c.Elem()})}
}

// NotNull projects the value of an optional leaf.
func NotNull[R, E any](p Path[R, *E]) Path[R, E] {
	n := p.Leaf().(schema.Nullable)
	return Path[R, E]{root: p.root, steps: appendStep(p.steps, Step{Kind: StepNotNull, Owner: n, Index: -1, Value: n.Elem()})}
}

// Field is shorthand for Access(p, AccessorByName[L, V](d, name)).
func Field[R, L, V any](p Path[R, L], d schema.Descriptor[L], name string) Path[R, V] {
	return Access(p, AccessorByName[L, V](d, name))
}

func appendStep(steps []Step, s Step) []Step {
	out := make([]Step, len(steps), len(steps)+1)
	copy(out, steps)
	return append(out, s)
}

func (p Path[R, L]) RootType() schema.Type { return p.root }
func (p Path[R, L]) IsRoot() bool          { return len(p.steps) == 0 }

// Steps returns a copy of the path's steps.
func (p Path[R, L]) Steps() []Step {
	return append([]Step(nil), p.steps...)
}

// Leaf returns the descriptor of the value the path lands on.
func (p Path[R, L]) Leaf() schema.Type {
	if len(p.steps) == 0 {
		return p.root
	}
	return p.steps[len(p.steps)-1].Value
}

// Get reads the leaf. It reports false when an absent optional is crossed and
// panics on paths that project collection elements.
func (p Path[R, L]) Get(r R) (L, bool) {
	v, ok := p.Value(r)
	if !ok {
		var zero L
		return zero, false
	}
	return v.(L), true
}

// Value is the erased form of Get.
func (p Path[R, L]) Value(r R) (any, bool) {
	return Walk(p.steps, r)
}

// GetAny reads the leaf of an erased root value. It panics with a
// *schema.TypeMismatchError when r is not an R.
func (p Path[R, L]) GetAny(r any) (any, bool) {
	root, ok := r.(R)
	if !ok {
		var want R
		panic(&schema.TypeMismatchError{
			Type:  p.root.ID(),
			Index: -1,
			Want:  fmt.Sprintf("%T", want),
			Got:   fmt.Sprintf("%T", r),
		})
	}
	return p.Value(root)
}

// Set writes the leaf, rebuilding every record along the way. Setting
// through an absent optional creates it only when the optional is the leaf's
// direct parent; deeper absent optionals leave the record unchanged.
func (p Path[R, L]) Set(r R, l L) (R, error) {
	out, err := setAt(r, p.steps, l)
	if err != nil {
		var zero R
		return zero, err
	}
	return out.(R), nil
}

// Equal compares root witness and every step. Paths over different generic
// instantiations are never equal, even when their field names match.
func (p Path[R, L]) Equal(o AnyPath) bool { return SamePath(p, o) }

// SamePath compares two erased paths by root type and step chain.
func SamePath(a, b AnyPath) bool {
	if a == nil || b == nil || a.RootType().ID() != b.RootType().ID() {
		return false
	}
	x, y := a.Steps(), b.Steps()
	if len(x) != len(y) {
		return false
	}
	for i := range x {
		if !x[i].Equal(y[i]) {
			return false
		}
	}
	return true
}

func (p Path[R, L]) String() string {
	var sb strings.Builder
	sb.WriteString(string(p.root.ID()))
	for _, s := range p.steps {
		sb.WriteString(s.String())
	}
	return sb.String()
}

// Walk follows steps from v. It reports false when an absent optional is
// crossed and panics on element projections.
func Walk(steps []Step, v any) (any, bool) {
	for _, s := range steps {
		switch s.Kind {
		case StepField:
			v = s.Owner.(schema.Struct).Project(v, s.Index)
		case StepNotNull:
			n := s.Owner.(schema.Nullable)
			if n.IsNull(v) {
				return nil, false
			}
			v = n.Unwrap(v)
		default:
			panic(fmt.Errorf("%w: cannot read a single value through %s", ErrMultiValued, s))
		}
	}
	return v, true
}

func setAt(v any, steps []Step, leaf any) (any, error) {
	if len(steps) == 0 {
		return leaf, nil
	}
	s := steps[0]
	switch s.Kind {
	case StepField:
		st := s.Owner.(schema.Struct)
		child, err := setAt(st.Project(v, s.Index), steps[1:], leaf)
		if err != nil {
			return nil, err
		}
		return setField(st, v, s.Index, child)
	case StepNotNull:
		n := s.Owner.(schema.Nullable)
		if n.IsNull(v) {
			if len(steps) == 1 {
				return n.Wrap(leaf), nil
			}
			return v, nil
		}
		child, err := setAt(n.Unwrap(v), steps[1:], leaf)
		if err != nil {
			return nil, err
		}
		return n.Wrap(child), nil
	default:
		return nil, ErrMultiValued
	}
}

// SetField replaces field i of owner the same way an Accessor does. Engines
// and interpreters working on erased values use it.
func SetField(st schema.Struct, owner any, i int, v any) (any, error) {
	return setField(st, owner, i, v)
}
