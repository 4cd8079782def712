package modification

import (
	"fmt"

	"github.com/Aleph-Alpha/querykit/v1/condition"
	"github.com/Aleph-Alpha/querykit/v1/schema"
)

func tagged(variant string, payload schema.Value) schema.Value {
	return schema.ObjectValue(schema.Entry{Key: variant, Value: payload})
}

func encodeOne(variant string, t schema.Type, v any) (schema.Value, error) {
	ev, err := t.Encode(v)
	if err != nil {
		return schema.Value{}, err
	}
	return tagged(variant, ev), nil
}

func encodeItems(variant string, t schema.Type, items []any) (schema.Value, error) {
	out := make([]schema.Value, len(items))
	for i, item := range items {
		ev, err := t.Encode(item)
		if err != nil {
			return schema.Value{}, err
		}
		out[i] = ev
	}
	return tagged(variant, schema.ListValue(out...)), nil
}

func encodeInner(variant string, n Node) (schema.Value, error) {
	ev, err := n.Encode()
	if err != nil {
		return schema.Value{}, err
	}
	return tagged(variant, ev), nil
}

func (NothingModification) Encode() (schema.Value, error) {
	return tagged("Nothing", schema.BoolValue(true)), nil
}

func (m AssignModification) Encode() (schema.Value, error) {
	return encodeOne("Assign", m.Type, m.Value)
}

func (m IncrementModification) Encode() (schema.Value, error) {
	return encodeOne("Increment", m.Type, m.By)
}

func (m MultiplyModification) Encode() (schema.Value, error) {
	return encodeOne("Multiply", m.Type, m.By)
}

func (m CoerceAtMostModification) Encode() (schema.Value, error) {
	return encodeOne("CoerceAtMost", m.Type, m.Value)
}

func (m CoerceAtLeastModification) Encode() (schema.Value, error) {
	return encodeOne("CoerceAtLeast", m.Type, m.Value)
}

func (m AppendStringModification) Encode() (schema.Value, error) {
	return tagged("AppendString", schema.StringValue(m.Value)), nil
}

func (m AppendListModification) Encode() (schema.Value, error) {
	return encodeItems("AppendList", m.Container.Elem(), m.Items)
}

func (m AppendSetModification) Encode() (schema.Value, error) {
	return encodeItems("AppendSet", m.Container.Elem(), m.Items)
}

func (m RemoveWhereModification) Encode() (schema.Value, error) {
	ev, err := m.Condition.Encode()
	if err != nil {
		return schema.Value{}, err
	}
	return tagged("RemoveWhere", ev), nil
}

func (m RemoveInstancesModification) Encode() (schema.Value, error) {
	return encodeItems("RemoveInstances", m.Container.Elem(), m.Items)
}

func (m DropFirstModification) Encode() (schema.Value, error) {
	return tagged("DropFirst", schema.IntValue(int64(m.Count))), nil
}

func (m DropLastModification) Encode() (schema.Value, error) {
	return tagged("DropLast", schema.IntValue(int64(m.Count))), nil
}

func (m PerElementModification) Encode() (schema.Value, error) {
	return encodeInner("PerElement", m.Modification)
}

func (m CombineMapModification) Encode() (schema.Value, error) {
	return encodeOne("CombineMap", m.Map, m.Value)
}

func (m RemoveKeysModification) Encode() (schema.Value, error) {
	keys := make([]schema.Value, len(m.Keys))
	for i, k := range m.Keys {
		keys[i] = schema.StringValue(k)
	}
	return tagged("RemoveKeys", schema.ListValue(keys...)), nil
}

func (m ChainModification) Encode() (schema.Value, error) {
	items := make([]schema.Value, len(m.Modifications))
	for i, n := range m.Modifications {
		ev, err := n.Encode()
		if err != nil {
			return schema.Value{}, err
		}
		items[i] = ev
	}
	return tagged("Chain", schema.ListValue(items...)), nil
}

func (m IfNotNullModification) Encode() (schema.Value, error) {
	return encodeInner("IfNotNull", m.Modification)
}

func (m OnFieldModification) Encode() (schema.Value, error) {
	ev, err := m.Modification.Encode()
	if err != nil {
		return schema.Value{}, err
	}
	return tagged("OnField", schema.ObjectValue(
		schema.Entry{Key: "owner", Value: schema.StringValue(string(m.Owner.ID()))},
		schema.Entry{Key: "field", Value: schema.StringValue(m.FieldName())},
		schema.Entry{Key: "modification", Value: ev},
	)), nil
}

// DecodeNode rebuilds a modification from its tagged form. t is the type of
// the values the modification is applied to.
func DecodeNode(t schema.Type, v schema.Value) (Node, error) {
	if v.Kind() != schema.KindObject || v.Len() != 1 {
		return nil, fmt.Errorf("%w: expected an object with one variant key, got %s", ErrInvalidModification, v)
	}
	e := v.Entries()[0]
	variant, payload := e.Key, e.Value

	invalid := func() error {
		return fmt.Errorf("%w: %s on %s", ErrInvalidModification, variant, t.ID())
	}

	switch variant {
	case "Nothing":
		return NothingModification{}, nil

	case "Assign":
		val, err := t.Decode(payload)
		if err != nil {
			return nil, err
		}
		return AssignModification{Type: t, Value: val}, nil

	case "Increment", "Multiply":
		num, ok := t.(schema.Numeric)
		if !ok {
			return nil, invalid()
		}
		by, err := t.Decode(payload)
		if err != nil {
			return nil, err
		}
		if variant == "Increment" {
			return IncrementModification{Type: num, By: by}, nil
		}
		return MultiplyModification{Type: num, By: by}, nil

	case "CoerceAtMost", "CoerceAtLeast":
		ord, ok := t.(schema.Ordered)
		if !ok {
			return nil, invalid()
		}
		val, err := t.Decode(payload)
		if err != nil {
			return nil, err
		}
		if variant == "CoerceAtMost" {
			return CoerceAtMostModification{Type: ord, Value: val}, nil
		}
		return CoerceAtLeastModification{Type: ord, Value: val}, nil

	case "AppendString":
		s, ok := payload.AsString()
		if _, textual := t.(schema.Textual); !ok || !textual {
			return nil, invalid()
		}
		return AppendStringModification{Value: s}, nil

	case "AppendList", "AppendSet", "RemoveInstances":
		c, ok := t.(schema.Container)
		if !ok || (variant == "AppendList" && c.IsSet()) || (variant == "AppendSet" && !c.IsSet()) {
			return nil, invalid()
		}
		if payload.Kind() != schema.KindList {
			return nil, invalid()
		}
		items := make([]any, payload.Len())
		for i, item := range payload.Items() {
			dv, err := c.Elem().Decode(item)
			if err != nil {
				return nil, err
			}
			items[i] = dv
		}
		switch variant {
		case "AppendList":
			return AppendListModification{Container: c, Items: items}, nil
		case "AppendSet":
			return AppendSetModification{Container: c, Items: items}, nil
		}
		return RemoveInstancesModification{Container: c, Items: items}, nil

	case "RemoveWhere":
		c, ok := t.(schema.Container)
		if !ok {
			return nil, invalid()
		}
		cond, err := condition.DecodeNode(c.Elem(), payload)
		if err != nil {
			return nil, err
		}
		return RemoveWhereModification{Container: c, Condition: cond}, nil

	case "DropFirst", "DropLast":
		c, ok := t.(schema.Container)
		n, isInt := payload.AsInt()
		if !ok || c.IsSet() || !isInt {
			return nil, invalid()
		}
		if variant == "DropFirst" {
			return DropFirstModification{Container: c, Count: int(n)}, nil
		}
		return DropLastModification{Container: c, Count: int(n)}, nil

	case "PerElement":
		c, ok := t.(schema.Container)
		if !ok {
			return nil, invalid()
		}
		inner, err := DecodeNode(c.Elem(), payload)
		if err != nil {
			return nil, err
		}
		return PerElementModification{Container: c, Modification: inner}, nil

	case "CombineMap", "RemoveKeys":
		m, ok := t.(schema.Mapping)
		if !ok {
			return nil, invalid()
		}
		if variant == "CombineMap" {
			val, err := t.Decode(payload)
			if err != nil {
				return nil, err
			}
			return CombineMapModification{Map: m, Value: val}, nil
		}
		keys := make([]string, payload.Len())
		for i, item := range payload.Items() {
			k, ok := item.AsString()
			if !ok {
				return nil, invalid()
			}
			keys[i] = k
		}
		return RemoveKeysModification{Map: m, Keys: keys}, nil

	case "Chain":
		if payload.Kind() != schema.KindList {
			return nil, invalid()
		}
		nodes := make([]Node, payload.Len())
		for i, item := range payload.Items() {
			n, err := DecodeNode(t, item)
			if err != nil {
				return nil, err
			}
			nodes[i] = n
		}
		return ChainModification{Modifications: nodes}, nil

	case "IfNotNull":
		opt, ok := t.(schema.Nullable)
		if !ok {
			return nil, invalid()
		}
		inner, err := DecodeNode(opt.Elem(), payload)
		if err != nil {
			return nil, err
		}
		return IfNotNullModification{Optional: opt, Modification: inner}, nil

	case "OnField":
		st, ok := t.(schema.Struct)
		if !ok {
			return nil, invalid()
		}
		owner, _ := payloadString(payload, "owner")
		if schema.TypeID(owner) != st.ID() {
			return nil, fmt.Errorf("%w: OnField owner %q does not match %s", ErrInvalidModification, owner, st.ID())
		}
		name, _ := payloadString(payload, "field")
		idx := schema.FieldIndex(st, name)
		if idx < 0 {
			return nil, fmt.Errorf("%w: %s.%s", schema.ErrUnknownField, st.ID(), name)
		}
		raw, ok := payload.Get("modification")
		if !ok {
			return nil, invalid()
		}
		inner, err := DecodeNode(st.Field(idx).Type, raw)
		if err != nil {
			return nil, err
		}
		return OnFieldModification{Owner: st, Index: idx, Modification: inner}, nil
	}

	return nil, fmt.Errorf("%w: %q", ErrUnknownVariant, variant)
}

func payloadString(o schema.Value, key string) (string, bool) {
	v, ok := o.Get(key)
	if !ok {
		return "", false
	}
	return v.AsString()
}
