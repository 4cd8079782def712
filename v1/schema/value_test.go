package schema

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValue_JSONPreservesObjectOrder(t *testing.T) {
	v := ObjectValue(
		Entry{Key: "zeta", Value: IntValue(1)},
		Entry{Key: "alpha", Value: ListValue(StringValue("a"), NullValue())},
		Entry{Key: "mid", Value: FloatValue(2)},
	)

	data, err := json.Marshal(v)
	require.NoError(t, err)
	assert.JSONEq(t, `{"zeta":1,"alpha":["a",null],"mid":2.0}`, string(data))
	assert.Equal(t, `{"zeta":1,"alpha":["a",null],"mid":2.0}`, string(data))

	var back Value
	require.NoError(t, json.Unmarshal(data, &back))
	assert.True(t, v.Equal(back))

	keys := make([]string, 0, back.Len())
	for _, e := range back.Entries() {
		keys = append(keys, e.Key)
	}
	assert.Equal(t, []string{"zeta", "alpha", "mid"}, keys)
}

func TestValue_NumbersKeepTheirKind(t *testing.T) {
	v, err := ParseJSON([]byte(`[1, 1.5, 2.0, 1e3, 92233720368547758070]`))
	require.NoError(t, err)

	items := v.Items()
	require.Len(t, items, 5)
	assert.Equal(t, KindInt, items[0].Kind())
	assert.Equal(t, KindFloat, items[1].Kind())
	assert.Equal(t, KindFloat, items[2].Kind())
	assert.Equal(t, KindFloat, items[3].Kind())
	assert.Equal(t, KindFloat, items[4].Kind(), "out of range integers fall back to float")
}

func TestValue_RejectsTrailingData(t *testing.T) {
	_, err := ParseJSON([]byte(`{"a":1} {"b":2}`))
	assert.Error(t, err)
}

func TestValue_EqualIgnoresObjectOrder(t *testing.T) {
	a := ObjectValue(Entry{Key: "a", Value: IntValue(1)}, Entry{Key: "b", Value: IntValue(2)})
	b := ObjectValue(Entry{Key: "b", Value: IntValue(2)}, Entry{Key: "a", Value: IntValue(1)})

	assert.True(t, a.Equal(b))
	assert.Equal(t, a.Key(), b.Key())
	assert.False(t, IntValue(1).Equal(FloatValue(1)))
}

func TestValue_With(t *testing.T) {
	base := ObjectValue(Entry{Key: "a", Value: IntValue(1)}, Entry{Key: "b", Value: IntValue(2)})

	replaced := base.With("a", StringValue("x"))
	added := base.With("c", BoolValue(true))

	got, _ := replaced.Get("a")
	s, ok := got.AsString()
	require.True(t, ok)
	assert.Equal(t, "x", s)
	assert.Equal(t, "a", replaced.Entries()[0].Key)
	assert.Equal(t, 3, added.Len())

	original, _ := base.Get("a")
	assert.True(t, original.Equal(IntValue(1)), "With must not modify the receiver")
}

func TestValue_ProtoRoundTrip(t *testing.T) {
	v := ObjectValue(
		Entry{Key: "name", Value: StringValue("doc")},
		Entry{Key: "count", Value: IntValue(42)},
		Entry{Key: "huge", Value: IntValue(1 << 60)},
		Entry{Key: "score", Value: FloatValue(0.25)},
		Entry{Key: "tags", Value: ListValue(StringValue("a"), StringValue("b"))},
		Entry{Key: "missing", Value: NullValue()},
	)

	pv, err := v.ToProto()
	require.NoError(t, err)

	back := ValueFromProto(pv)
	name, _ := back.Get("name")
	count, _ := back.Get("count")
	huge, _ := back.Get("huge")
	score, _ := back.Get("score")

	assert.True(t, name.Equal(StringValue("doc")))
	assert.True(t, count.Equal(IntValue(42)))
	assert.Equal(t, KindString, huge.Kind(), "integers beyond 2^53 travel as strings")
	assert.True(t, score.Equal(FloatValue(0.25)))

	decoded, err := Int64.Decode(huge)
	require.NoError(t, err)
	assert.Equal(t, int64(1<<60), decoded)
}
