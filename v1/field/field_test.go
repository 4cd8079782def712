package field

import (
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Aleph-Alpha/querykit/v1/schema"
)

type inner struct {
	Label string
	Score float64
}

type model[A, B any] struct {
	ID         A
	Value      B
	OtherValue B
	Tags       []string
	Inner      *inner
}

type wrapper[T any] struct {
	Name  string
	Model T
}

func innerSchema(native bool) schema.Descriptor[inner] {
	parts := []schema.StructPart[inner]{
		schema.FieldOf("label", schema.String, func(i inner) string { return i.Label }),
		schema.FieldOf("score", schema.Float64, func(i inner) float64 { return i.Score }, schema.Default(1.0)),
	}
	if native {
		parts = append(parts, schema.CopyWith(func(i inner, idx int, v any) inner {
			switch idx {
			case 0:
				i.Label = v.(string)
			case 1:
				i.Score = v.(float64)
			}
			return i
		}))
	}
	return schema.StructOf("Inner", func(v []any) inner {
		return inner{Label: v[0].(string), Score: v[1].(float64)}
	}, parts...)
}

func modelSchema[A, B any](a schema.Descriptor[A], b schema.Descriptor[B], native bool) schema.Descriptor[model[A, B]] {
	parts := []schema.StructPart[model[A, B]]{
		schema.FieldOf("id", a, func(m model[A, B]) A { return m.ID }),
		schema.FieldOf("value", b, func(m model[A, B]) B { return m.Value }),
		schema.FieldOf("otherValue", b, func(m model[A, B]) B { return m.OtherValue }),
		schema.FieldOf("tags", schema.List(schema.String), func(m model[A, B]) []string { return m.Tags }),
		schema.FieldOf("inner", schema.Optional(innerSchema(native)), func(m model[A, B]) *inner { return m.Inner }),
	}
	if native {
		parts = append(parts, schema.CopyWith(func(m model[A, B], idx int, v any) model[A, B] {
			switch idx {
			case 0:
				m.ID = v.(A)
			case 1:
				m.Value = v.(B)
			case 2:
				m.OtherValue = v.(B)
			case 3:
				m.Tags = v.([]string)
			case 4:
				m.Inner = v.(*inner)
			}
			return m
		}))
	}
	return schema.StructOf(schema.Generic("Model", a.ID(), b.ID()), func(v []any) model[A, B] {
		return model[A, B]{
			ID:         v[0].(A),
			Value:      v[1].(B),
			OtherValue: v[2].(B),
			Tags:       v[3].([]string),
			Inner:      v[4].(*inner),
		}
	}, parts...)
}

func wrapperSchema[T any](d schema.Descriptor[T]) schema.Descriptor[wrapper[T]] {
	return schema.StructOf(schema.Generic("Wrapper", d.ID()), func(v []any) wrapper[T] {
		return wrapper[T]{Name: v[0].(string), Model: v[1].(T)}
	},
		schema.FieldOf("name", schema.String, func(w wrapper[T]) string { return w.Name }),
		schema.FieldOf("model", d, func(w wrapper[T]) T { return w.Model }),
	)
}

func sample() model[uuid.UUID, int64] {
	return model[uuid.UUID, int64]{
		ID:         uuid.MustParse("0b6e1d8e-1f0a-4a43-9a53-9f5a1c2b3d4e"),
		Value:      1,
		OtherValue: 2,
		Tags:       []string{"a"},
		Inner:      &inner{Label: "x", Score: 0.5},
	}
}

func TestAccessor_RoundTripLaw(t *testing.T) {
	for _, native := range []bool{true, false} {
		d := modelSchema(schema.UUID, schema.Int64, native)
		rec := sample()

		id := NewAccessor[model[uuid.UUID, int64], uuid.UUID](d, 0)
		value := NewAccessor[model[uuid.UUID, int64], int64](d, 1)
		other := NewAccessor[model[uuid.UUID, int64], int64](d, 2)
		tags := NewAccessor[model[uuid.UUID, int64], []string](d, 3)
		in := NewAccessor[model[uuid.UUID, int64], *inner](d, 4)

		newID := uuid.MustParse("7c9e6679-7425-40de-944b-e07fc1f90ae7")
		got, err := id.Set(rec, newID)
		require.NoError(t, err)
		assert.Equal(t, newID, id.Get(got), "native=%v", native)

		got, err = value.Set(rec, 99)
		require.NoError(t, err)
		assert.Equal(t, int64(99), value.Get(got))
		assert.Equal(t, int64(2), other.Get(got), "other fields are untouched")

		got, err = other.Set(rec, -7)
		require.NoError(t, err)
		assert.Equal(t, int64(-7), other.Get(got))

		got, err = tags.Set(rec, []string{"x", "y"})
		require.NoError(t, err)
		assert.Equal(t, []string{"x", "y"}, tags.Get(got))

		got, err = in.Set(rec, nil)
		require.NoError(t, err)
		assert.Nil(t, in.Get(got))

		replacement := &inner{Label: "z", Score: 3}
		got, err = in.Set(rec, replacement)
		require.NoError(t, err)
		assert.Equal(t, *replacement, *in.Get(got))

		assert.Equal(t, int64(1), rec.Value, "Set must not modify its argument")
	}
}

func TestAccessor_NativeAndGenericAgree(t *testing.T) {
	native := NewAccessor[model[uuid.UUID, int64], int64](modelSchema(schema.UUID, schema.Int64, true), 2)
	generic := NewAccessor[model[uuid.UUID, int64], int64](modelSchema(schema.UUID, schema.Int64, false), 2)

	a, err := native.Set(sample(), 42)
	require.NoError(t, err)
	b, err := generic.Set(sample(), 42)
	require.NoError(t, err)

	assert.Equal(t, a, b)
}

func TestAccessor_Metadata(t *testing.T) {
	d := innerSchema(false)
	score := AccessorByName[inner, float64](d, "score")

	def, ok := score.Default()
	require.True(t, ok)
	assert.Equal(t, 1.0, def)
	assert.Equal(t, "score", score.Name())
	assert.Equal(t, 1, score.Index())
	assert.Equal(t, schema.TypeID("Inner"), score.Owner())

	label := NewAccessor[inner, string](d, 0)
	_, ok = label.Default()
	assert.False(t, ok)
	assert.True(t, label.Equal(AccessorByName[inner, string](d, "label")))
}

func TestAccessor_ConstructionRejectsWrongValueType(t *testing.T) {
	d := innerSchema(false)

	defer func() {
		r := recover()
		require.NotNil(t, r)
		assert.True(t, schema.IsTypeMismatch(r))
	}()
	NewAccessor[inner, int](d, 0)
}

type lyingStruct struct {
	schema.Struct
}

func (l lyingStruct) Project(owner any, i int) any { return "not what you asked for" }

func TestAccessor_GetPanicsOnDesynchronizedDescriptor(t *testing.T) {
	honest := innerSchema(false)
	liar := schema.Of[inner](lyingStruct{Struct: honest.Type().(schema.Struct)})
	score := NewAccessor[inner, float64](liar, 1)

	defer func() {
		r := recover()
		require.NotNil(t, r)
		assert.True(t, schema.IsTypeMismatch(r))
	}()
	score.Get(inner{Label: "a", Score: 2})
}

func TestPath_EqualityAcrossGenericInstantiations(t *testing.T) {
	longModel := modelSchema(schema.UUID, schema.Int64, true)
	uuidModel := modelSchema(schema.UUID, schema.UUID, true)

	a := Field[model[uuid.UUID, int64], model[uuid.UUID, int64], int64](Root(longModel), longModel, "otherValue")
	b := Field[model[uuid.UUID, int64], model[uuid.UUID, int64], int64](Root(longModel), longModel, "otherValue")
	c := Field[model[uuid.UUID, uuid.UUID], model[uuid.UUID, uuid.UUID], uuid.UUID](Root(uuidModel), uuidModel, "otherValue")

	assert.True(t, a.Equal(b))
	assert.False(t, a.Equal(c))
	assert.False(t, c.Equal(a))
	assert.Equal(t, "Model<uuid,int64>.otherValue", a.String())
}

func TestPath_EqualityDeepInNestedGenerics(t *testing.T) {
	longModel := modelSchema(schema.UUID, schema.Int64, true)
	uuidModel := modelSchema(schema.UUID, schema.UUID, true)
	longWrapper := wrapperSchema(longModel)
	uuidWrapper := wrapperSchema(uuidModel)

	longPath := Field[wrapper[model[uuid.UUID, int64]], model[uuid.UUID, int64], uuid.UUID](
		Field[wrapper[model[uuid.UUID, int64]], wrapper[model[uuid.UUID, int64]], model[uuid.UUID, int64]](Root(longWrapper), longWrapper, "model"),
		longModel, "id")
	uuidPath := Field[wrapper[model[uuid.UUID, uuid.UUID]], model[uuid.UUID, uuid.UUID], uuid.UUID](
		Field[wrapper[model[uuid.UUID, uuid.UUID]], wrapper[model[uuid.UUID, uuid.UUID]], model[uuid.UUID, uuid.UUID]](Root(uuidWrapper), uuidWrapper, "model"),
		uuidModel, "id")

	assert.Equal(t, longPath.Leaf().ID(), uuidPath.Leaf().ID(), "both leaves are uuid")
	assert.False(t, longPath.Equal(uuidPath))
}

func TestPath_GetAndSetThroughOptional(t *testing.T) {
	d := modelSchema(schema.UUID, schema.Int64, false)
	in := innerSchema(false)
	innerPath := Field[model[uuid.UUID, int64], model[uuid.UUID, int64], *inner](Root(d), d, "inner")
	label := Field[model[uuid.UUID, int64], inner, string](NotNull(innerPath), in, "label")

	rec := sample()
	got, ok := label.Get(rec)
	require.True(t, ok)
	assert.Equal(t, "x", got)

	updated, err := label.Set(rec, "renamed")
	require.NoError(t, err)
	got, _ = label.Get(updated)
	assert.Equal(t, "renamed", got)
	assert.Equal(t, "x", rec.Inner.Label, "the original record is untouched")

	rec.Inner = nil
	_, ok = label.Get(rec)
	assert.False(t, ok)

	unchanged, err := label.Set(rec, "ignored")
	require.NoError(t, err)
	assert.Nil(t, unchanged.Inner, "deep absent optionals are not created")

	created, err := NotNull(innerPath).Set(rec, inner{Label: "new"})
	require.NoError(t, err)
	require.NotNil(t, created.Inner)
	assert.Equal(t, "new", created.Inner.Label)
}

func TestPath_ElementProjection(t *testing.T) {
	d := modelSchema(schema.UUID, schema.Int64, true)
	tags := Elements(Field[model[uuid.UUID, int64], model[uuid.UUID, int64], []string](Root(d), d, "tags"))

	assert.Equal(t, schema.String.ID(), tags.Leaf().ID())
	assert.Equal(t, "Model<uuid,int64>.tags[*]", tags.String())
	assert.Panics(t, func() { tags.Get(sample()) })

	_, err := tags.Set(sample(), "x")
	assert.ErrorIs(t, err, ErrMultiValued)
}

func TestPath_RootIdentity(t *testing.T) {
	d := innerSchema(true)
	root := Root(d)

	assert.True(t, root.IsRoot())
	got, ok := root.Get(inner{Label: "a"})
	require.True(t, ok)
	assert.Equal(t, "a", got.Label)

	replaced, err := root.Set(inner{Label: "a"}, inner{Label: "b"})
	require.NoError(t, err)
	assert.Equal(t, "b", replaced.Label)
}

func TestAccessor_StepsAreSharedPerField(t *testing.T) {
	d := innerSchema(false)

	var wg sync.WaitGroup
	built := make([]Accessor[inner, float64], 16)
	for i := range built {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			built[i] = NewAccessor[inner, float64](d, 1)
		}(i)
	}
	wg.Wait()

	cached, ok := steps.Load(stepKey{owner: d.Type().(schema.Struct), index: 1})
	require.True(t, ok)
	for _, a := range built {
		assert.True(t, a.Equal(built[0]))
		assert.Equal(t, "score", a.Name())
		assert.Equal(t, cached.(Step).Name, a.Step().Name)
	}
}

func TestPath_GetAny(t *testing.T) {
	d := modelSchema(schema.UUID, schema.Int64, false)
	in := innerSchema(false)
	innerPath := Field[model[uuid.UUID, int64], model[uuid.UUID, int64], *inner](Root(d), d, "inner")
	label := Field[model[uuid.UUID, int64], inner, string](NotNull(innerPath), in, "label")

	got, ok := label.GetAny(sample())
	require.True(t, ok)
	assert.Equal(t, "x", got)

	rec := sample()
	rec.Inner = nil
	_, ok = label.GetAny(rec)
	assert.False(t, ok)

	defer func() {
		r := recover()
		require.NotNil(t, r)
		assert.True(t, schema.IsTypeMismatch(r))
	}()
	label.GetAny(inner{Label: "wrong root"})
}
