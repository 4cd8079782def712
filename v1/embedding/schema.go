package embedding

import (
	"fmt"

	"github.com/Aleph-Alpha/querykit/v1/schema"
)

// Schema describes Embedding fields. Embeddings encode as a list of floats.
var Schema = schema.Of[Embedding](denseType{})

// SparseSchema describes SparseEmbedding fields. Sparse embeddings encode as
// an object {indices, values, dimension} and are validated on decode.
var SparseSchema = schema.Of[SparseEmbedding](sparseType{
	CopyWither: schema.StructOf[SparseEmbedding]("SparseEmbedding",
		func(v []any) SparseEmbedding {
			return SparseEmbedding{Indices: v[0].([]int), Values: v[1].([]float32), Dimension: v[2].(int)}
		},
		schema.FieldOf("indices", schema.List(schema.Int), func(s SparseEmbedding) []int { return s.Indices }),
		schema.FieldOf("values", schema.List(schema.Float32), func(s SparseEmbedding) []float32 { return s.Values }),
		schema.FieldOf("dimension", schema.Int, func(s SparseEmbedding) int { return s.Dimension }),
		schema.CopyWith(func(s SparseEmbedding, i int, v any) SparseEmbedding {
			switch i {
			case 0:
				s.Indices = v.([]int)
			case 1:
				s.Values = v.([]float32)
			case 2:
				s.Dimension = v.(int)
			}
			return s
		}),
	).Type().(schema.CopyWither),
})

type denseType struct{}

func (denseType) ID() schema.TypeID { return "Embedding" }
func (denseType) Zero() any         { return Embedding(nil) }

func (denseType) Encode(v any) (schema.Value, error) {
	e := v.(Embedding)
	items := make([]schema.Value, len(e))
	for i, f := range e {
		items[i] = schema.FloatValue(float64(f))
	}
	return schema.ListValue(items...), nil
}

func (denseType) Decode(v schema.Value) (any, error) {
	if v.Kind() != schema.KindList {
		return nil, fmt.Errorf("%w: Embedding expects list, got %s", schema.ErrUnexpectedKind, v.Kind())
	}
	out := make(Embedding, v.Len())
	for i, item := range v.Items() {
		f, ok := item.AsFloat()
		if !ok {
			return nil, fmt.Errorf("%w: Embedding component %d is %s", schema.ErrUnexpectedKind, i, item.Kind())
		}
		out[i] = float32(f)
	}
	return out, nil
}

func (denseType) Equal(a, b any) bool { return a.(Embedding).Equal(b.(Embedding)) }

type sparseType struct {
	schema.CopyWither
}

func (s sparseType) Decode(v schema.Value) (any, error) {
	out, err := s.CopyWither.Decode(v)
	if err != nil {
		return nil, err
	}
	if err := out.(SparseEmbedding).Validate(); err != nil {
		return nil, err
	}
	return out, nil
}

func (sparseType) Equal(a, b any) bool { return a.(SparseEmbedding).Equal(b.(SparseEmbedding)) }
