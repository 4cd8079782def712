package embedding

import (
	"fmt"
	"math"
	"strings"
)

// Metric selects how two vectors are scored against each other. Every
// metric's score grows with similarity.
type Metric int

const (
	// Cosine scores (cos+1)/2, in [0,1].
	Cosine Metric = iota
	// DotProduct scores the raw dot product.
	DotProduct
	// Euclidean scores 1/(1+L2 distance).
	Euclidean
	// Manhattan scores 1/(1+L1 distance).
	Manhattan
)

func (m Metric) String() string {
	switch m {
	case Cosine:
		return "Cosine"
	case DotProduct:
		return "DotProduct"
	case Euclidean:
		return "Euclidean"
	case Manhattan:
		return "Manhattan"
	default:
		return fmt.Sprintf("Metric(%d)", int(m))
	}
}

// ParseMetric parses the output of Metric.String, case-insensitively.
func ParseMetric(s string) (Metric, error) {
	for _, m := range []Metric{Cosine, DotProduct, Euclidean, Manhattan} {
		if strings.EqualFold(s, m.String()) {
			return m, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownMetric, s)
}

// Score compares a and b under m.
func (m Metric) Score(a, b Embedding) (float32, error) {
	switch m {
	case Cosine:
		return CosineSimilarity(a, b)
	case DotProduct:
		return DotProductOf(a, b)
	case Euclidean:
		return EuclideanSimilarity(a, b)
	case Manhattan:
		d, err := ManhattanDistance(a, b)
		if err != nil {
			return 0, err
		}
		return 1 / (1 + d), nil
	}
	return 0, fmt.Errorf("%w: %d", ErrUnknownMetric, int(m))
}

// SparseScore compares two sparse embeddings under m.
func (m Metric) SparseScore(a, b SparseEmbedding) (float32, error) {
	switch m {
	case Cosine:
		return SparseCosineSimilarity(a, b)
	case DotProduct:
		return SparseDotProduct(a, b)
	case Euclidean:
		d, err := SparseEuclideanDistance(a, b)
		if err != nil {
			return 0, err
		}
		return 1 / (1 + d), nil
	case Manhattan:
		d, err := SparseManhattanDistance(a, b)
		if err != nil {
			return 0, err
		}
		return 1 / (1 + d), nil
	}
	return 0, fmt.Errorf("%w: %d", ErrUnknownMetric, int(m))
}

// ── Dense ───────────────────────────────────────────────────────────────────

func checkDims(a, b int) error {
	if a != b {
		return &DimensionMismatchError{Expected: a, Actual: b}
	}
	return nil
}

// DotProductOf returns the sum of element-wise products.
func DotProductOf(a, b Embedding) (float32, error) {
	if err := checkDims(len(a), len(b)); err != nil {
		return 0, err
	}
	var sum float64
	for i := range a {
		sum += float64(a[i]) * float64(b[i])
	}
	return float32(sum), nil
}

// CosineSimilarity returns the cosine of the angle between a and b mapped to
// [0,1] as (cos+1)/2. A zero vector has cosine 0 against anything.
func CosineSimilarity(a, b Embedding) (float32, error) {
	if err := checkDims(len(a), len(b)); err != nil {
		return 0, err
	}
	var dot, na, nb float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		na += x * x
		nb += y * y
	}
	return normalizeCosine(dot, na, nb), nil
}

func normalizeCosine(dot, na, nb float64) float32 {
	var cos float64
	if na > 0 && nb > 0 {
		cos = dot / (math.Sqrt(na) * math.Sqrt(nb))
	}
	cos = math.Max(-1, math.Min(1, cos))
	return float32((cos + 1) / 2)
}

// EuclideanDistance returns the L2 distance.
func EuclideanDistance(a, b Embedding) (float32, error) {
	if err := checkDims(len(a), len(b)); err != nil {
		return 0, err
	}
	var sum float64
	for i := range a {
		d := float64(a[i]) - float64(b[i])
		sum += d * d
	}
	return float32(math.Sqrt(sum)), nil
}

// EuclideanSimilarity returns 1/(1+EuclideanDistance).
func EuclideanSimilarity(a, b Embedding) (float32, error) {
	d, err := EuclideanDistance(a, b)
	if err != nil {
		return 0, err
	}
	return 1 / (1 + d), nil
}

// ManhattanDistance returns the L1 distance.
func ManhattanDistance(a, b Embedding) (float32, error) {
	if err := checkDims(len(a), len(b)); err != nil {
		return 0, err
	}
	var sum float64
	for i := range a {
		sum += math.Abs(float64(a[i]) - float64(b[i]))
	}
	return float32(sum), nil
}

// ── Sparse ──────────────────────────────────────────────────────────────────

// mergeWalk visits the union of both index sets in ascending order.
func mergeWalk(a, b SparseEmbedding, visit func(x, y float64)) {
	i, j := 0, 0
	for i < len(a.Indices) || j < len(b.Indices) {
		switch {
		case j >= len(b.Indices) || (i < len(a.Indices) && a.Indices[i] < b.Indices[j]):
			visit(float64(a.Values[i]), 0)
			i++
		case i >= len(a.Indices) || b.Indices[j] < a.Indices[i]:
			visit(0, float64(b.Values[j]))
			j++
		default:
			visit(float64(a.Values[i]), float64(b.Values[j]))
			i++
			j++
		}
	}
}

// SparseDotProduct sums products over the indices present in both vectors.
func SparseDotProduct(a, b SparseEmbedding) (float32, error) {
	if err := checkDims(a.Dimension, b.Dimension); err != nil {
		return 0, err
	}
	var sum float64
	mergeWalk(a, b, func(x, y float64) { sum += x * y })
	return float32(sum), nil
}

// SparseCosineSimilarity is CosineSimilarity over sparse vectors.
func SparseCosineSimilarity(a, b SparseEmbedding) (float32, error) {
	if err := checkDims(a.Dimension, b.Dimension); err != nil {
		return 0, err
	}
	var dot, na, nb float64
	mergeWalk(a, b, func(x, y float64) {
		dot += x * y
		na += x * x
		nb += y * y
	})
	return normalizeCosine(dot, na, nb), nil
}

// SparseEuclideanDistance is EuclideanDistance over sparse vectors.
func SparseEuclideanDistance(a, b SparseEmbedding) (float32, error) {
	if err := checkDims(a.Dimension, b.Dimension); err != nil {
		return 0, err
	}
	var sum float64
	mergeWalk(a, b, func(x, y float64) { sum += (x - y) * (x - y) })
	return float32(math.Sqrt(sum)), nil
}

// SparseManhattanDistance is ManhattanDistance over sparse vectors.
func SparseManhattanDistance(a, b SparseEmbedding) (float32, error) {
	if err := checkDims(a.Dimension, b.Dimension); err != nil {
		return 0, err
	}
	var sum float64
	mergeWalk(a, b, func(x, y float64) { sum += math.Abs(x - y) })
	return float32(sum), nil
}
