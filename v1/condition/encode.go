package condition

import (
	"fmt"

	"github.com/Aleph-Alpha/querykit/v1/embedding"
	"github.com/Aleph-Alpha/querykit/v1/schema"
)

// The tagged form of a node is an object with a single key naming the
// variant, for example {"OnField":{"owner":"Article","field":"views","condition":{"GreaterThan":10}}}.

func tagged(variant string, payload schema.Value) schema.Value {
	return schema.ObjectValue(schema.Entry{Key: variant, Value: payload})
}

func entry(key string, v schema.Value) schema.Entry {
	return schema.Entry{Key: key, Value: v}
}

func (AlwaysCondition) Encode() (schema.Value, error) {
	return tagged("Always", schema.BoolValue(true)), nil
}

func (NeverCondition) Encode() (schema.Value, error) {
	return tagged("Never", schema.BoolValue(true)), nil
}

func (c EqualCondition) Encode() (schema.Value, error) {
	v, err := c.Type.Encode(c.Value)
	if err != nil {
		return schema.Value{}, err
	}
	return tagged("Equal", v), nil
}

func (c NotEqualCondition) Encode() (schema.Value, error) {
	v, err := c.Type.Encode(c.Value)
	if err != nil {
		return schema.Value{}, err
	}
	return tagged("NotEqual", v), nil
}

func (c CompareCondition) Encode() (schema.Value, error) {
	v, err := c.Type.Encode(c.Value)
	if err != nil {
		return schema.Value{}, err
	}
	return tagged(c.Op.String(), v), nil
}

func encodeValues(t schema.Type, values []any) (schema.Value, error) {
	items := make([]schema.Value, len(values))
	for i, v := range values {
		ev, err := t.Encode(v)
		if err != nil {
			return schema.Value{}, err
		}
		items[i] = ev
	}
	return schema.ListValue(items...), nil
}

func (c InsideCondition) Encode() (schema.Value, error) {
	v, err := encodeValues(c.Type, c.Values)
	if err != nil {
		return schema.Value{}, err
	}
	return tagged("Inside", v), nil
}

func (c NotInsideCondition) Encode() (schema.Value, error) {
	v, err := encodeValues(c.Type, c.Values)
	if err != nil {
		return schema.Value{}, err
	}
	return tagged("NotInside", v), nil
}

func encodeNodes(nodes []Node) (schema.Value, error) {
	items := make([]schema.Value, len(nodes))
	for i, n := range nodes {
		ev, err := n.Encode()
		if err != nil {
			return schema.Value{}, err
		}
		items[i] = ev
	}
	return schema.ListValue(items...), nil
}

func (c AndCondition) Encode() (schema.Value, error) {
	v, err := encodeNodes(c.Conditions)
	if err != nil {
		return schema.Value{}, err
	}
	return tagged("And", v), nil
}

func (c OrCondition) Encode() (schema.Value, error) {
	v, err := encodeNodes(c.Conditions)
	if err != nil {
		return schema.Value{}, err
	}
	return tagged("Or", v), nil
}

func (c NotCondition) Encode() (schema.Value, error) {
	v, err := c.Condition.Encode()
	if err != nil {
		return schema.Value{}, err
	}
	return tagged("Not", v), nil
}

func (c OnFieldCondition) Encode() (schema.Value, error) {
	v, err := c.Condition.Encode()
	if err != nil {
		return schema.Value{}, err
	}
	return tagged("OnField", schema.ObjectValue(
		entry("owner", schema.StringValue(string(c.Owner.ID()))),
		entry("field", schema.StringValue(c.FieldName())),
		entry("condition", v),
	)), nil
}

func (c ElementsCondition) Encode() (schema.Value, error) {
	v, err := c.Condition.Encode()
	if err != nil {
		return schema.Value{}, err
	}
	return tagged(c.Variant(), v), nil
}

func (c SizeEqualsCondition) Encode() (schema.Value, error) {
	variant := "ListSizesEquals"
	if c.Container.IsSet() {
		variant = "SetSizesEquals"
	}
	return tagged(variant, schema.IntValue(int64(c.Size))), nil
}

func (c ExistsCondition) Encode() (schema.Value, error) {
	return tagged("Exists", schema.StringValue(c.Key)), nil
}

func (c OnKeyCondition) Encode() (schema.Value, error) {
	v, err := c.Condition.Encode()
	if err != nil {
		return schema.Value{}, err
	}
	return tagged("OnKey", schema.ObjectValue(
		entry("key", schema.StringValue(c.Key)),
		entry("condition", v),
	)), nil
}

func (c IfNotNullCondition) Encode() (schema.Value, error) {
	v, err := c.Condition.Encode()
	if err != nil {
		return schema.Value{}, err
	}
	return tagged("IfNotNull", v), nil
}

func (c IsNullCondition) Encode() (schema.Value, error) {
	if c.Negate {
		return tagged("IsNotNull", schema.BoolValue(true)), nil
	}
	return tagged("IsNull", schema.BoolValue(true)), nil
}

func (c StringContainsCondition) Encode() (schema.Value, error) {
	return tagged("StringContains", schema.ObjectValue(
		entry("value", schema.StringValue(c.Value)),
		entry("ignoreCase", schema.BoolValue(c.IgnoreCase)),
	)), nil
}

func (c RegexMatchesCondition) Encode() (schema.Value, error) {
	return tagged("RegexMatches", schema.ObjectValue(
		entry("pattern", schema.StringValue(c.Pattern)),
		entry("ignoreCase", schema.BoolValue(c.IgnoreCase)),
	)), nil
}

func (c FullTextSearchCondition) Encode() (schema.Value, error) {
	return tagged("FullTextSearch", schema.ObjectValue(
		entry("value", schema.StringValue(c.Value)),
		entry("requireAllTermsPresent", schema.BoolValue(c.RequireAllTermsPresent)),
	)), nil
}

func (c GeoDistanceCondition) Encode() (schema.Value, error) {
	return tagged("GeoDistance", schema.ObjectValue(
		entry("latitude", schema.FloatValue(c.Latitude)),
		entry("longitude", schema.FloatValue(c.Longitude)),
		entry("greaterThanKilometers", schema.FloatValue(c.GreaterThanKilometers)),
		entry("lessThanKilometers", schema.FloatValue(c.LessThanKilometers)),
	)), nil
}

func (c SimilarToCondition) Encode() (schema.Value, error) {
	vec, err := embedding.Schema.Encode(c.Vector)
	if err != nil {
		return schema.Value{}, err
	}
	return tagged("SimilarTo", schema.ObjectValue(
		entry("vector", vec),
		entry("metric", schema.StringValue(c.Metric.String())),
		entry("minScore", schema.FloatValue(float64(c.MinScore))),
	)), nil
}

// ── Decoding ────────────────────────────────────────────────────────────────

// DecodeNode rebuilds a node from its tagged form. t is the type of the
// values the condition is evaluated against.
func DecodeNode(t schema.Type, v schema.Value) (Node, error) {
	if v.Kind() != schema.KindObject || v.Len() != 1 {
		return nil, fmt.Errorf("%w: expected an object with one variant key, got %s", ErrInvalidCondition, v)
	}
	e := v.Entries()[0]
	variant, payload := e.Key, e.Value

	switch variant {
	case "Always":
		return AlwaysCondition{}, nil
	case "Never":
		return NeverCondition{}, nil

	case "Equal", "NotEqual":
		val, err := t.Decode(payload)
		if err != nil {
			return nil, err
		}
		if variant == "Equal" {
			return EqualCondition{Type: t, Value: val}, nil
		}
		return NotEqualCondition{Type: t, Value: val}, nil

	case "GreaterThan", "LessThan", "GreaterThanOrEqual", "LessThanOrEqual":
		ord, ok := t.(schema.Ordered)
		if !ok {
			return nil, fmt.Errorf("%w: %s on unordered type %s", ErrInvalidCondition, variant, t.ID())
		}
		val, err := t.Decode(payload)
		if err != nil {
			return nil, err
		}
		op := OpGreaterThan
		for i, name := range compareOpNames {
			if name == variant {
				op = CompareOp(i)
			}
		}
		return CompareCondition{Op: op, Type: ord, Value: val}, nil

	case "Inside", "NotInside":
		if payload.Kind() != schema.KindList {
			return nil, fmt.Errorf("%w: %s expects a list", ErrInvalidCondition, variant)
		}
		values := make([]any, payload.Len())
		for i, item := range payload.Items() {
			val, err := t.Decode(item)
			if err != nil {
				return nil, err
			}
			values[i] = val
		}
		if variant == "Inside" {
			return InsideCondition{Type: t, Values: values, index: newMembership(t, values)}, nil
		}
		return NotInsideCondition{Type: t, Values: values, index: newMembership(t, values)}, nil

	case "And", "Or":
		if payload.Kind() != schema.KindList {
			return nil, fmt.Errorf("%w: %s expects a list", ErrInvalidCondition, variant)
		}
		nodes := make([]Node, payload.Len())
		for i, item := range payload.Items() {
			n, err := DecodeNode(t, item)
			if err != nil {
				return nil, err
			}
			nodes[i] = n
		}
		if variant == "And" {
			return AndCondition{Conditions: nodes}, nil
		}
		return OrCondition{Conditions: nodes}, nil

	case "Not":
		n, err := DecodeNode(t, payload)
		if err != nil {
			return nil, err
		}
		return NotCondition{Condition: n}, nil

	case "OnField":
		st, ok := t.(schema.Struct)
		if !ok {
			return nil, fmt.Errorf("%w: OnField on non-record type %s", ErrInvalidCondition, t.ID())
		}
		owner, err := stringProp(payload, "owner")
		if err != nil {
			return nil, err
		}
		if schema.TypeID(owner) != st.ID() {
			return nil, fmt.Errorf("%w: OnField owner %s does not match %s", ErrInvalidCondition, owner, st.ID())
		}
		name, err := stringProp(payload, "field")
		if err != nil {
			return nil, err
		}
		idx := schema.FieldIndex(st, name)
		if idx < 0 {
			return nil, fmt.Errorf("%w: %s.%s", schema.ErrUnknownField, st.ID(), name)
		}
		inner, ok := payload.Get("condition")
		if !ok {
			return nil, fmt.Errorf("%w: OnField without condition", ErrInvalidCondition)
		}
		n, err := DecodeNode(st.Field(idx).Type, inner)
		if err != nil {
			return nil, err
		}
		return OnFieldCondition{Owner: st, Index: idx, Condition: n}, nil

	case "ListAnyElements", "ListAllElements", "SetAnyElements", "SetAllElements":
		c, ok := t.(schema.Container)
		wantSet := variant[:3] == "Set"
		if !ok || c.IsSet() != wantSet {
			return nil, fmt.Errorf("%w: %s on %s", ErrInvalidCondition, variant, t.ID())
		}
		n, err := DecodeNode(c.Elem(), payload)
		if err != nil {
			return nil, err
		}
		all := variant == "ListAllElements" || variant == "SetAllElements"
		return ElementsCondition{Container: c, All: all, Condition: n}, nil

	case "ListSizesEquals", "SetSizesEquals":
		c, ok := t.(schema.Container)
		if !ok || c.IsSet() != (variant == "SetSizesEquals") {
			return nil, fmt.Errorf("%w: %s on %s", ErrInvalidCondition, variant, t.ID())
		}
		size, ok := payload.AsInt()
		if !ok {
			return nil, fmt.Errorf("%w: %s expects an integer", ErrInvalidCondition, variant)
		}
		return SizeEqualsCondition{Container: c, Size: int(size)}, nil

	case "Exists", "OnKey":
		m, ok := t.(schema.Mapping)
		if !ok {
			return nil, fmt.Errorf("%w: %s on non-map type %s", ErrInvalidCondition, variant, t.ID())
		}
		if variant == "Exists" {
			key, ok := payload.AsString()
			if !ok {
				return nil, fmt.Errorf("%w: Exists expects a string key", ErrInvalidCondition)
			}
			return ExistsCondition{Map: m, Key: key}, nil
		}
		key, err := stringProp(payload, "key")
		if err != nil {
			return nil, err
		}
		inner, ok := payload.Get("condition")
		if !ok {
			return nil, fmt.Errorf("%w: OnKey without condition", ErrInvalidCondition)
		}
		n, err := DecodeNode(m.Elem(), inner)
		if err != nil {
			return nil, err
		}
		return OnKeyCondition{Map: m, Key: key, Condition: n}, nil

	case "IfNotNull", "IsNull", "IsNotNull":
		opt, ok := t.(schema.Nullable)
		if !ok {
			return nil, fmt.Errorf("%w: %s on non-optional type %s", ErrInvalidCondition, variant, t.ID())
		}
		if variant != "IfNotNull" {
			return IsNullCondition{Optional: opt, Negate: variant == "IsNotNull"}, nil
		}
		n, err := DecodeNode(opt.Elem(), payload)
		if err != nil {
			return nil, err
		}
		return IfNotNullCondition{Optional: opt, Condition: n}, nil

	case "StringContains", "RegexMatches":
		if _, ok := t.(schema.Textual); !ok {
			return nil, fmt.Errorf("%w: %s on non-string type %s", ErrInvalidCondition, variant, t.ID())
		}
		ignoreCase := boolProp(payload, "ignoreCase")
		if variant == "StringContains" {
			value, err := stringProp(payload, "value")
			if err != nil {
				return nil, err
			}
			return StringContainsCondition{Value: value, IgnoreCase: ignoreCase}, nil
		}
		pattern, err := stringProp(payload, "pattern")
		if err != nil {
			return nil, err
		}
		re, err := newRegexMatches(pattern, ignoreCase)
		if err != nil {
			return nil, err
		}
		return re, nil

	case "FullTextSearch":
		st, ok := t.(schema.Struct)
		if !ok {
			return nil, fmt.Errorf("%w: FullTextSearch on non-record type %s", ErrInvalidCondition, t.ID())
		}
		value, err := stringProp(payload, "value")
		if err != nil {
			return nil, err
		}
		return newFullTextSearch(st, value, boolProp(payload, "requireAllTermsPresent")), nil

	case "GeoDistance":
		if t.ID() != schema.GeoCoordinateType.ID() {
			return nil, fmt.Errorf("%w: GeoDistance on %s", ErrInvalidCondition, t.ID())
		}
		var c GeoDistanceCondition
		for _, f := range []struct {
			key string
			dst *float64
		}{
			{"latitude", &c.Latitude},
			{"longitude", &c.Longitude},
			{"greaterThanKilometers", &c.GreaterThanKilometers},
			{"lessThanKilometers", &c.LessThanKilometers},
		} {
			x, err := floatProp(payload, f.key)
			if err != nil {
				return nil, err
			}
			*f.dst = x
		}
		return c, nil

	case "SimilarTo":
		if t.ID() != embedding.Schema.ID() {
			return nil, fmt.Errorf("%w: SimilarTo on %s", ErrInvalidCondition, t.ID())
		}
		raw, ok := payload.Get("vector")
		if !ok {
			return nil, fmt.Errorf("%w: SimilarTo without vector", ErrInvalidCondition)
		}
		vec, err := embedding.Schema.Decode(raw)
		if err != nil {
			return nil, err
		}
		name, err := stringProp(payload, "metric")
		if err != nil {
			return nil, err
		}
		metric, err := embedding.ParseMetric(name)
		if err != nil {
			return nil, err
		}
		minScore, err := floatProp(payload, "minScore")
		if err != nil {
			return nil, err
		}
		return SimilarToCondition{Vector: vec, Metric: metric, MinScore: float32(minScore)}, nil
	}

	return nil, fmt.Errorf("%w: %q", ErrUnknownVariant, variant)
}

func stringProp(o schema.Value, key string) (string, error) {
	v, ok := o.Get(key)
	if !ok {
		return "", fmt.Errorf("%w: missing %q", ErrInvalidCondition, key)
	}
	s, ok := v.AsString()
	if !ok {
		return "", fmt.Errorf("%w: %q must be a string", ErrInvalidCondition, key)
	}
	return s, nil
}

func floatProp(o schema.Value, key string) (float64, error) {
	v, ok := o.Get(key)
	if !ok {
		return 0, fmt.Errorf("%w: missing %q", ErrInvalidCondition, key)
	}
	f, ok := v.AsFloat()
	if !ok {
		return 0, fmt.Errorf("%w: %q must be a number", ErrInvalidCondition, key)
	}
	return f, nil
}

// boolProp treats a missing flag as false.
func boolProp(o schema.Value, key string) bool {
	v, _ := o.Get(key)
	b, _ := v.AsBool()
	return b
}
