package modification

import (
	"fmt"
	"strings"

	"github.com/Aleph-Alpha/querykit/v1/condition"
	"github.com/Aleph-Alpha/querykit/v1/field"
	"github.com/Aleph-Alpha/querykit/v1/schema"
)

// Node is one variant of the modification tree. Apply never mutates its
// argument; it returns the updated value.
type Node interface {
	Apply(v any) (any, error)
	Equal(other Node) bool
	Encode() (schema.Value, error)
	String() string
}

// NothingModification leaves the value unchanged.
type NothingModification struct{}

func (NothingModification) Apply(v any) (any, error) { return v, nil }
func (NothingModification) String() string           { return "Nothing" }

func (NothingModification) Equal(o Node) bool {
	_, ok := o.(NothingModification)
	return ok
}

// AssignModification replaces the value with Value.
type AssignModification struct {
	Type  schema.Type
	Value any
}

func (m AssignModification) Apply(any) (any, error) { return m.Value, nil }

func (m AssignModification) Equal(o Node) bool {
	other, ok := o.(AssignModification)
	return ok && sameValue(m.Type, m.Value, other.Type, other.Value)
}

func (m AssignModification) String() string { return fmt.Sprintf("= %v", m.Value) }

// IncrementModification adds By to a number.
type IncrementModification struct {
	Type schema.Numeric
	By   any
}

func (m IncrementModification) Apply(v any) (any, error) {
	if !m.Type.IsFinite(m.By) {
		return nil, fmt.Errorf("%w: increment by %v", ErrNonFiniteDelta, m.By)
	}
	return m.Type.Add(v, m.By), nil
}

func (m IncrementModification) Equal(o Node) bool {
	other, ok := o.(IncrementModification)
	return ok && sameValue(m.Type, m.By, other.Type, other.By)
}

func (m IncrementModification) String() string { return fmt.Sprintf("+= %v", m.By) }

// MultiplyModification multiplies a number by By.
type MultiplyModification struct {
	Type schema.Numeric
	By   any
}

func (m MultiplyModification) Apply(v any) (any, error) {
	if !m.Type.IsFinite(m.By) {
		return nil, fmt.Errorf("%w: multiply by %v", ErrNonFiniteDelta, m.By)
	}
	return m.Type.Mul(v, m.By), nil
}

func (m MultiplyModification) Equal(o Node) bool {
	other, ok := o.(MultiplyModification)
	return ok && sameValue(m.Type, m.By, other.Type, other.By)
}

func (m MultiplyModification) String() string { return fmt.Sprintf("*= %v", m.By) }

// CoerceAtMostModification caps the value at Value.
type CoerceAtMostModification struct {
	Type  schema.Ordered
	Value any
}

func (m CoerceAtMostModification) Apply(v any) (any, error) {
	if m.Type.Compare(v, m.Value) > 0 {
		return m.Value, nil
	}
	return v, nil
}

func (m CoerceAtMostModification) Equal(o Node) bool {
	other, ok := o.(CoerceAtMostModification)
	return ok && sameValue(m.Type, m.Value, other.Type, other.Value)
}

func (m CoerceAtMostModification) String() string { return fmt.Sprintf("atMost %v", m.Value) }

// CoerceAtLeastModification raises the value to at least Value.
type CoerceAtLeastModification struct {
	Type  schema.Ordered
	Value any
}

func (m CoerceAtLeastModification) Apply(v any) (any, error) {
	if m.Type.Compare(v, m.Value) < 0 {
		return m.Value, nil
	}
	return v, nil
}

func (m CoerceAtLeastModification) Equal(o Node) bool {
	other, ok := o.(CoerceAtLeastModification)
	return ok && sameValue(m.Type, m.Value, other.Type, other.Value)
}

func (m CoerceAtLeastModification) String() string { return fmt.Sprintf("atLeast %v", m.Value) }

// AppendStringModification appends Value to a string.
type AppendStringModification struct {
	Value string
}

func (m AppendStringModification) Apply(v any) (any, error) { return v.(string) + m.Value, nil }

func (m AppendStringModification) Equal(o Node) bool {
	other, ok := o.(AppendStringModification)
	return ok && m == other
}

func (m AppendStringModification) String() string { return fmt.Sprintf("+= %q", m.Value) }

// ── Collections ─────────────────────────────────────────────────────────────

// AppendListModification concatenates Items to a list.
type AppendListModification struct {
	Container schema.Container
	Items     []any
}

func (m AppendListModification) Apply(v any) (any, error) {
	items := append(m.Container.Elements(v), m.Items...)
	return m.Container.FromElements(items), nil
}

func (m AppendListModification) Equal(o Node) bool {
	other, ok := o.(AppendListModification)
	return ok && sameItems(m.Container, m.Items, other.Container, other.Items)
}

func (m AppendListModification) String() string { return fmt.Sprintf("append %v", m.Items) }

// AppendSetModification adds Items to a set.
type AppendSetModification struct {
	Container schema.Container
	Items     []any
}

func (m AppendSetModification) Apply(v any) (any, error) {
	items := append(m.Container.Elements(v), m.Items...)
	return m.Container.FromElements(items), nil
}

func (m AppendSetModification) Equal(o Node) bool {
	other, ok := o.(AppendSetModification)
	return ok && sameItems(m.Container, m.Items, other.Container, other.Items)
}

func (m AppendSetModification) String() string { return fmt.Sprintf("add %v", m.Items) }

// RemoveWhereModification drops the elements matching Condition.
type RemoveWhereModification struct {
	Container schema.Container
	Condition condition.Node
}

func (m RemoveWhereModification) Apply(v any) (any, error) {
	var kept []any
	for _, item := range m.Container.Elements(v) {
		if !m.Condition.Evaluate(item) {
			kept = append(kept, item)
		}
	}
	return m.Container.FromElements(kept), nil
}

func (m RemoveWhereModification) Equal(o Node) bool {
	other, ok := o.(RemoveWhereModification)
	return ok && m.Container.ID() == other.Container.ID() && m.Condition.Equal(other.Condition)
}

func (m RemoveWhereModification) String() string { return "removeWhere " + m.Condition.String() }

// RemoveInstancesModification drops every element equal to one of Items.
type RemoveInstancesModification struct {
	Container schema.Container
	Items     []any
}

func (m RemoveInstancesModification) Apply(v any) (any, error) {
	elem := m.Container.Elem()
	var kept []any
	for _, item := range m.Container.Elements(v) {
		drop := false
		for _, rm := range m.Items {
			if elem.Equal(item, rm) {
				drop = true
				break
			}
		}
		if !drop {
			kept = append(kept, item)
		}
	}
	return m.Container.FromElements(kept), nil
}

func (m RemoveInstancesModification) Equal(o Node) bool {
	other, ok := o.(RemoveInstancesModification)
	return ok && sameItems(m.Container, m.Items, other.Container, other.Items)
}

func (m RemoveInstancesModification) String() string { return fmt.Sprintf("remove %v", m.Items) }

// DropFirstModification removes the first Count list elements.
type DropFirstModification struct {
	Container schema.Container
	Count     int
}

func (m DropFirstModification) Apply(v any) (any, error) {
	items := m.Container.Elements(v)
	n := min(max(m.Count, 0), len(items))
	return m.Container.FromElements(items[n:]), nil
}

func (m DropFirstModification) Equal(o Node) bool {
	other, ok := o.(DropFirstModification)
	return ok && m.Count == other.Count && m.Container.ID() == other.Container.ID()
}

func (m DropFirstModification) String() string { return fmt.Sprintf("dropFirst %d", m.Count) }

// DropLastModification removes the last Count list elements.
type DropLastModification struct {
	Container schema.Container
	Count     int
}

func (m DropLastModification) Apply(v any) (any, error) {
	items := m.Container.Elements(v)
	n := min(max(m.Count, 0), len(items))
	return m.Container.FromElements(items[:len(items)-n]), nil
}

func (m DropLastModification) Equal(o Node) bool {
	other, ok := o.(DropLastModification)
	return ok && m.Count == other.Count && m.Container.ID() == other.Container.ID()
}

func (m DropLastModification) String() string { return fmt.Sprintf("dropLast %d", m.Count) }

// PerElementModification applies Modification to every element.
type PerElementModification struct {
	Container    schema.Container
	Modification Node
}

func (m PerElementModification) Apply(v any) (any, error) {
	items := m.Container.Elements(v)
	out := make([]any, len(items))
	for i, item := range items {
		nv, err := m.Modification.Apply(item)
		if err != nil {
			return nil, err
		}
		out[i] = nv
	}
	return m.Container.FromElements(out), nil
}

func (m PerElementModification) Equal(o Node) bool {
	other, ok := o.(PerElementModification)
	return ok && m.Container.ID() == other.Container.ID() && m.Modification.Equal(other.Modification)
}

func (m PerElementModification) String() string { return "each(" + m.Modification.String() + ")" }

// CombineMapModification overlays Value onto a map; keys in Value win.
type CombineMapModification struct {
	Map   schema.Mapping
	Value any
}

func (m CombineMapModification) Apply(v any) (any, error) { return m.Map.Merge(v, m.Value), nil }

func (m CombineMapModification) Equal(o Node) bool {
	other, ok := o.(CombineMapModification)
	return ok && sameValue(m.Map, m.Value, other.Map, other.Value)
}

func (m CombineMapModification) String() string { return fmt.Sprintf("combine %v", m.Value) }

// RemoveKeysModification deletes Keys from a map.
type RemoveKeysModification struct {
	Map  schema.Mapping
	Keys []string
}

func (m RemoveKeysModification) Apply(v any) (any, error) { return m.Map.Without(v, m.Keys), nil }

func (m RemoveKeysModification) Equal(o Node) bool {
	other, ok := o.(RemoveKeysModification)
	if !ok || m.Map.ID() != other.Map.ID() || len(m.Keys) != len(other.Keys) {
		return false
	}
	for i := range m.Keys {
		if m.Keys[i] != other.Keys[i] {
			return false
		}
	}
	return true
}

func (m RemoveKeysModification) String() string { return fmt.Sprintf("removeKeys %v", m.Keys) }

// ── Structure ───────────────────────────────────────────────────────────────

// ChainModification applies Modifications in order, each to the result of
// the previous one.
type ChainModification struct {
	Modifications []Node
}

func (m ChainModification) Apply(v any) (any, error) {
	for _, n := range m.Modifications {
		var err error
		if v, err = n.Apply(v); err != nil {
			return nil, err
		}
	}
	return v, nil
}

func (m ChainModification) Equal(o Node) bool {
	other, ok := o.(ChainModification)
	if !ok || len(m.Modifications) != len(other.Modifications) {
		return false
	}
	for i := range m.Modifications {
		if !m.Modifications[i].Equal(other.Modifications[i]) {
			return false
		}
	}
	return true
}

func (m ChainModification) String() string {
	parts := make([]string, len(m.Modifications))
	for i, n := range m.Modifications {
		parts[i] = n.String()
	}
	return "Chain(" + strings.Join(parts, ", ") + ")"
}

// IfNotNullModification modifies a present optional and leaves an absent one
// alone.
type IfNotNullModification struct {
	Optional     schema.Nullable
	Modification Node
}

func (m IfNotNullModification) Apply(v any) (any, error) {
	if m.Optional.IsNull(v) {
		return v, nil
	}
	nv, err := m.Modification.Apply(m.Optional.Unwrap(v))
	if err != nil {
		return nil, err
	}
	return m.Optional.Wrap(nv), nil
}

func (m IfNotNullModification) Equal(o Node) bool {
	other, ok := o.(IfNotNullModification)
	return ok && m.Optional.ID() == other.Optional.ID() && m.Modification.Equal(other.Modification)
}

func (m IfNotNullModification) String() string { return "?" + m.Modification.String() }

// OnFieldModification modifies field Index of a record of type Owner and
// rebuilds the record around the new value.
type OnFieldModification struct {
	Owner        schema.Struct
	Index        int
	Modification Node
}

func (m OnFieldModification) Apply(v any) (any, error) {
	nv, err := m.Modification.Apply(m.Owner.Project(v, m.Index))
	if err != nil {
		return nil, err
	}
	return field.SetField(m.Owner, v, m.Index, nv)
}

func (m OnFieldModification) Equal(o Node) bool {
	other, ok := o.(OnFieldModification)
	return ok &&
		m.Owner.ID() == other.Owner.ID() &&
		m.Index == other.Index &&
		m.Modification.Equal(other.Modification)
}

func (m OnFieldModification) FieldName() string { return m.Owner.Field(m.Index).Name }

func (m OnFieldModification) String() string {
	return m.FieldName() + " " + m.Modification.String()
}

func sameValue(t schema.Type, v any, ot schema.Type, ov any) bool {
	return t.ID() == ot.ID() && t.Equal(v, ov)
}

func sameItems(c schema.Container, a []any, oc schema.Container, b []any) bool {
	if c.ID() != oc.ID() || len(a) != len(b) {
		return false
	}
	elem := c.Elem()
	for i := range a {
		if !elem.Equal(a[i], b[i]) {
			return false
		}
	}
	return true
}
