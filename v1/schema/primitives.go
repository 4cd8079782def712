package schema

import (
	"bytes"
	"cmp"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Number is the set of Go types the numeric descriptors cover.
type Number interface {
	~int | ~int32 | ~int64 | ~float32 | ~float64
}

// ── Scalar descriptors ──────────────────────────────────────────────────────

type scalarType[T any] struct {
	id      TypeID
	encode  func(T) Value
	decode  func(Value) (T, error)
	equal   func(a, b T) bool
	compare func(a, b T) int
}

func (s *scalarType[T]) ID() TypeID { return s.id }

func (s *scalarType[T]) Zero() any {
	var zero T
	return zero
}

func (s *scalarType[T]) Encode(v any) (Value, error) {
	return s.encode(cast[T](s.id, -1, v)), nil
}

func (s *scalarType[T]) Decode(v Value) (any, error) {
	return s.decode(v)
}

func (s *scalarType[T]) Equal(a, b any) bool {
	return s.equal(cast[T](s.id, -1, a), cast[T](s.id, -1, b))
}

func (s *scalarType[T]) Compare(a, b any) int {
	return s.compare(cast[T](s.id, -1, a), cast[T](s.id, -1, b))
}

type stringType struct {
	scalarType[string]
}

func (s *stringType) Text(v any) string { return cast[string](s.id, -1, v) }

type numberType[N Number] struct {
	scalarType[N]
	integral bool
}

func (n *numberType[N]) Add(a, b any) any {
	return cast[N](n.id, -1, a) + cast[N](n.id, -1, b)
}

func (n *numberType[N]) Mul(a, b any) any {
	return cast[N](n.id, -1, a) * cast[N](n.id, -1, b)
}

func (n *numberType[N]) Float(v any) float64 {
	return float64(cast[N](n.id, -1, v))
}

func (n *numberType[N]) IsFinite(v any) bool {
	f := n.Float(v)
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

func newNumber[N Number](id TypeID, integral bool, lo, hi float64) *numberType[N] {
	n := &numberType[N]{integral: integral}
	n.scalarType = scalarType[N]{
		id:      id,
		equal:   func(a, b N) bool { return a == b },
		compare: func(a, b N) int { return cmp.Compare(a, b) },
	}
	if integral {
		n.encode = func(v N) Value { return IntValue(int64(v)) }
		n.decode = func(v Value) (N, error) {
			i, err := decodeInt(id, v)
			if err != nil {
				return 0, err
			}
			if float64(i) < lo || float64(i) > hi {
				return 0, fmt.Errorf("schema: %d overflows %s", i, id)
			}
			return N(i), nil
		}
	} else {
		n.encode = func(v N) Value { return FloatValue(float64(v)) }
		n.decode = func(v Value) (N, error) {
			f, err := decodeFloat(id, v)
			return N(f), err
		}
	}
	return n
}

func decodeInt(id TypeID, v Value) (int64, error) {
	switch v.Kind() {
	case KindInt:
		i, _ := v.AsInt()
		return i, nil
	case KindFloat:
		f, _ := v.AsFloat()
		if f != math.Trunc(f) || f >= 1<<63 || f < -1<<63 {
			return 0, fmt.Errorf("%w: %s cannot hold %v", ErrUnexpectedKind, id, f)
		}
		return int64(f), nil
	case KindString:
		s, _ := v.AsString()
		i, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("%w: %s cannot parse %q", ErrUnexpectedKind, id, s)
		}
		return i, nil
	}
	return 0, kindError(id, KindInt, v)
}

func decodeFloat(id TypeID, v Value) (float64, error) {
	if f, ok := v.AsFloat(); ok {
		return f, nil
	}
	if s, ok := v.AsString(); ok {
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, fmt.Errorf("%w: %s cannot parse %q", ErrUnexpectedKind, id, s)
		}
		return f, nil
	}
	return 0, kindError(id, KindFloat, v)
}

var (
	stringT = &stringType{scalarType[string]{
		id:     "string",
		encode: StringValue,
		decode: func(v Value) (string, error) {
			s, ok := v.AsString()
			if !ok {
				return "", kindError("string", KindString, v)
			}
			return s, nil
		},
		equal:   func(a, b string) bool { return a == b },
		compare: strings.Compare,
	}}

	boolT = &scalarType[bool]{
		id:     "bool",
		encode: BoolValue,
		decode: func(v Value) (bool, error) {
			b, ok := v.AsBool()
			if !ok {
				return false, kindError("bool", KindBool, v)
			}
			return b, nil
		},
		equal: func(a, b bool) bool { return a == b },
		compare: func(a, b bool) int {
			switch {
			case a == b:
				return 0
			case !a:
				return -1
			default:
				return 1
			}
		},
	}

	timeT = &scalarType[time.Time]{
		id:     "time",
		encode: func(t time.Time) Value { return StringValue(t.UTC().Format(time.RFC3339Nano)) },
		decode: func(v Value) (time.Time, error) {
			s, ok := v.AsString()
			if !ok {
				return time.Time{}, kindError("time", KindString, v)
			}
			return time.Parse(time.RFC3339Nano, s)
		},
		equal:   func(a, b time.Time) bool { return a.Equal(b) },
		compare: func(a, b time.Time) int { return a.Compare(b) },
	}

	uuidT = &scalarType[uuid.UUID]{
		id:     "uuid",
		encode: func(u uuid.UUID) Value { return StringValue(u.String()) },
		decode: func(v Value) (uuid.UUID, error) {
			s, ok := v.AsString()
			if !ok {
				return uuid.Nil, kindError("uuid", KindString, v)
			}
			return uuid.Parse(s)
		},
		equal:   func(a, b uuid.UUID) bool { return a == b },
		compare: func(a, b uuid.UUID) int { return bytes.Compare(a[:], b[:]) },
	}
)

// Built-in scalar descriptors.
var (
	String  = Of[string](stringT)
	Bool    = Of[bool](boolT)
	Int     = Of[int](newNumber[int]("int", true, math.MinInt64, math.MaxInt64))
	Int32   = Of[int32](newNumber[int32]("int32", true, math.MinInt32, math.MaxInt32))
	Int64   = Of[int64](newNumber[int64]("int64", true, math.MinInt64, math.MaxInt64))
	Float32 = Of[float32](newNumber[float32]("float32", false, 0, 0))
	Float64 = Of[float64](newNumber[float64]("float64", false, 0, 0))
	Time    = Of[time.Time](timeT)
	UUID    = Of[uuid.UUID](uuidT)
)
