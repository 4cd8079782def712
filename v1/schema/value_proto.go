package schema

import (
	"fmt"
	"math"
	"strconv"

	"google.golang.org/protobuf/types/known/structpb"
)

// maxExactInt is the largest integer a float64 represents exactly.
const maxExactInt = 1 << 53

// ToProto converts v into a protobuf Struct value so condition and
// modification trees can travel over gRPC. Integers outside ±2^53 are sent
// as decimal strings; descriptors accept both forms when decoding.
func (v Value) ToProto() (*structpb.Value, error) {
	switch v.kind {
	case KindNull:
		return structpb.NewNullValue(), nil
	case KindBool:
		return structpb.NewBoolValue(v.b), nil
	case KindInt:
		if v.i > maxExactInt || v.i < -maxExactInt {
			return structpb.NewStringValue(strconv.FormatInt(v.i, 10)), nil
		}
		return structpb.NewNumberValue(float64(v.i)), nil
	case KindFloat:
		if math.IsNaN(v.f) || math.IsInf(v.f, 0) {
			return nil, fmt.Errorf("schema: cannot encode %v as protobuf number", v.f)
		}
		return structpb.NewNumberValue(v.f), nil
	case KindString:
		return structpb.NewStringValue(v.s), nil
	case KindList:
		list := &structpb.ListValue{Values: make([]*structpb.Value, 0, len(v.items))}
		for _, item := range v.items {
			pv, err := item.ToProto()
			if err != nil {
				return nil, err
			}
			list.Values = append(list.Values, pv)
		}
		return structpb.NewListValue(list), nil
	case KindObject:
		st := &structpb.Struct{Fields: make(map[string]*structpb.Value, len(v.entries))}
		for _, e := range v.entries {
			pv, err := e.Value.ToProto()
			if err != nil {
				return nil, err
			}
			st.Fields[e.Key] = pv
		}
		return structpb.NewStructValue(st), nil
	}
	return nil, fmt.Errorf("schema: unknown value kind %d", v.kind)
}

// ValueFromProto converts a protobuf Struct value back. Integral numbers
// within ±2^53 come back as ints; object entry order is not preserved.
func ValueFromProto(pv *structpb.Value) Value {
	if pv == nil {
		return NullValue()
	}
	switch k := pv.GetKind().(type) {
	case *structpb.Value_BoolValue:
		return BoolValue(k.BoolValue)
	case *structpb.Value_NumberValue:
		f := k.NumberValue
		if f == math.Trunc(f) && math.Abs(f) <= maxExactInt {
			return IntValue(int64(f))
		}
		return FloatValue(f)
	case *structpb.Value_StringValue:
		return StringValue(k.StringValue)
	case *structpb.Value_ListValue:
		items := make([]Value, 0, len(k.ListValue.GetValues()))
		for _, item := range k.ListValue.GetValues() {
			items = append(items, ValueFromProto(item))
		}
		return Value{kind: KindList, items: items}
	case *structpb.Value_StructValue:
		fields := k.StructValue.GetFields()
		entries := make([]Entry, 0, len(fields))
		for key, item := range fields {
			entries = append(entries, Entry{Key: key, Value: ValueFromProto(item)})
		}
		return Value{kind: KindObject, entries: entries}
	default:
		return NullValue()
	}
}
