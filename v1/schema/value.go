package schema

import (
	"fmt"
	"sort"
	"strings"
)

// Kind identifies the shape of a Value.
type Kind uint8

const (
	KindNull Kind = iota
	KindBool
	KindInt
	KindFloat
	KindString
	KindList
	KindObject
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindString:
		return "string"
	case KindList:
		return "list"
	case KindObject:
		return "object"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// Entry is one key/value pair of an object Value.
type Entry struct {
	Key   string
	Value Value
}

// Value is the intermediate tagged tree every descriptor encodes to and
// decodes from. Records become objects whose entries follow field order.
//
// The zero Value is null. Values are immutable: every operation that
// "changes" a Value returns a new one.
type Value struct {
	kind    Kind
	b       bool
	i       int64
	f       float64
	s       string
	items   []Value
	entries []Entry
}

// NullValue returns the null Value.
func NullValue() Value { return Value{} }

// BoolValue wraps a bool.
func BoolValue(b bool) Value { return Value{kind: KindBool, b: b} }

// IntValue wraps a signed integer.
func IntValue(i int64) Value { return Value{kind: KindInt, i: i} }

// FloatValue wraps a float.
func FloatValue(f float64) Value { return Value{kind: KindFloat, f: f} }

// StringValue wraps a string.
func StringValue(s string) Value { return Value{kind: KindString, s: s} }

// ListValue builds a list Value. The items slice is copied.
func ListValue(items ...Value) Value {
	return Value{kind: KindList, items: append([]Value(nil), items...)}
}

// ObjectValue builds an object Value preserving entry order. A repeated key
// keeps its first position and the last value.
func ObjectValue(entries ...Entry) Value {
	out := make([]Entry, 0, len(entries))
	for _, e := range entries {
		replaced := false
		for i := range out {
			if out[i].Key == e.Key {
				out[i].Value = e.Value
				replaced = true
				break
			}
		}
		if !replaced {
			out = append(out, e)
		}
	}
	return Value{kind: KindObject, entries: out}
}

func (v Value) Kind() Kind   { return v.kind }
func (v Value) IsNull() bool { return v.kind == KindNull }

func (v Value) AsBool() (bool, bool) { return v.b, v.kind == KindBool }

func (v Value) AsInt() (int64, bool) { return v.i, v.kind == KindInt }

// AsFloat returns the numeric content of an int or float Value.
func (v Value) AsFloat() (float64, bool) {
	switch v.kind {
	case KindFloat:
		return v.f, true
	case KindInt:
		return float64(v.i), true
	}
	return 0, false
}

func (v Value) AsString() (string, bool) { return v.s, v.kind == KindString }

// Items returns the elements of a list Value. The caller must not modify the
// returned slice.
func (v Value) Items() []Value {
	if v.kind != KindList {
		return nil
	}
	return v.items
}

// Entries returns the entries of an object Value in order. The caller must
// not modify the returned slice.
func (v Value) Entries() []Entry {
	if v.kind != KindObject {
		return nil
	}
	return v.entries
}

// Len is the number of list items or object entries.
func (v Value) Len() int {
	switch v.kind {
	case KindList:
		return len(v.items)
	case KindObject:
		return len(v.entries)
	}
	return 0
}

// Get looks up key in an object Value.
func (v Value) Get(key string) (Value, bool) {
	for _, e := range v.Entries() {
		if e.Key == key {
			return e.Value, true
		}
	}
	return Value{}, false
}

// With returns a copy of the object Value with key set to val. An existing
// key keeps its position; a new key is appended.
func (v Value) With(key string, val Value) Value {
	entries := make([]Entry, len(v.Entries()), len(v.Entries())+1)
	copy(entries, v.Entries())
	for i := range entries {
		if entries[i].Key == key {
			entries[i].Value = val
			return Value{kind: KindObject, entries: entries}
		}
	}
	return Value{kind: KindObject, entries: append(entries, Entry{Key: key, Value: val})}
}

// Equal reports deep equality. Object comparison ignores entry order; int
// and float values are never equal to each other.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindNull:
		return true
	case KindBool:
		return v.b == o.b
	case KindInt:
		return v.i == o.i
	case KindFloat:
		return v.f == o.f
	case KindString:
		return v.s == o.s
	case KindList:
		if len(v.items) != len(o.items) {
			return false
		}
		for i := range v.items {
			if !v.items[i].Equal(o.items[i]) {
				return false
			}
		}
		return true
	case KindObject:
		if len(v.entries) != len(o.entries) {
			return false
		}
		for _, e := range v.entries {
			other, ok := o.Get(e.Key)
			if !ok || !e.Value.Equal(other) {
				return false
			}
		}
		return true
	}
	return false
}

// Key renders a canonical string for v: equal Values produce equal keys.
// It is used to hash values that are not comparable in Go.
func (v Value) Key() string {
	var sb strings.Builder
	v.writeKey(&sb)
	return sb.String()
}

func (v Value) writeKey(sb *strings.Builder) {
	switch v.kind {
	case KindNull:
		sb.WriteString("n")
	case KindBool:
		if v.b {
			sb.WriteString("t")
		} else {
			sb.WriteString("f")
		}
	case KindInt:
		fmt.Fprintf(sb, "i%d", v.i)
	case KindFloat:
		fmt.Fprintf(sb, "d%v", v.f)
	case KindString:
		fmt.Fprintf(sb, "s%q", v.s)
	case KindList:
		sb.WriteString("[")
		for i, item := range v.items {
			if i > 0 {
				sb.WriteString(",")
			}
			item.writeKey(sb)
		}
		sb.WriteString("]")
	case KindObject:
		sorted := append([]Entry(nil), v.entries...)
		sort.Slice(sorted, func(i, j int) bool { return sorted[i].Key < sorted[j].Key })
		sb.WriteString("{")
		for i, e := range sorted {
			if i > 0 {
				sb.WriteString(",")
			}
			fmt.Fprintf(sb, "%q:", e.Key)
			e.Value.writeKey(sb)
		}
		sb.WriteString("}")
	}
}

// String renders v as JSON for diagnostics.
func (v Value) String() string {
	b, err := v.MarshalJSON()
	if err != nil {
		return fmt.Sprintf("<%s: %v>", v.kind, err)
	}
	return string(b)
}
