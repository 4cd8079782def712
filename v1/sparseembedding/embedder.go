package sparseembedding

import (
	"cmp"
	"context"
	"fmt"
	"net/http"
	"slices"
	"time"

	"github.com/Aleph-Alpha/querykit/v1/embedding"
)

// Embedder turns text into validated sparse embeddings that can be stored in a
// table and searched with FindSimilarSparse.
type Embedder struct {
	client           *ClientWithResponses
	language         Language
	averageWordCount *int
	dimension        int
}

// NewEmbedder validates cfg and creates an Embedder. opts are applied after
// the configured timeout and service token.
func NewEmbedder(cfg *Config, opts ...ClientOption) (*Embedder, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	timeout := cfg.HTTPTimeoutS
	if timeout <= 0 {
		timeout = 30
	}
	base := []ClientOption{WithHTTPClient(&http.Client{Timeout: time.Duration(timeout) * time.Second})}
	if cfg.ServiceToken != "" {
		token := cfg.ServiceToken
		base = append(base, WithRequestEditorFn(func(_ context.Context, req *http.Request) error {
			req.Header.Set("Authorization", "Bearer "+token)
			return nil
		}))
	}

	client, err := NewClientWithResponses(cfg.Endpoint, append(base, opts...)...)
	if err != nil {
		return nil, err
	}

	e := &Embedder{client: client, language: cfg.Language, dimension: cfg.Dimension}
	if cfg.AverageWordCount > 0 {
		n := cfg.AverageWordCount
		e.averageWordCount = &n
	}
	return e, nil
}

// Embed returns the BM25 embedding of text.
func (e *Embedder) Embed(ctx context.Context, text string) (embedding.SparseEmbedding, error) {
	rsp, err := e.client.EmbedBm25WithResponse(ctx, BM25EmbedRequest{
		Text:             text,
		Language:         e.language,
		AverageWordCount: e.averageWordCount,
	})
	if err != nil {
		return embedding.SparseEmbedding{}, fmt.Errorf("sparseembedding: embed: %w", err)
	}

	switch {
	case rsp.JSON200 != nil:
		return e.toSparse(*rsp.JSON200)
	case rsp.JSON422 != nil:
		return embedding.SparseEmbedding{}, fmt.Errorf("%w: %d: %w", ErrUnexpectedStatus, rsp.StatusCode(), rsp.JSON422)
	default:
		return embedding.SparseEmbedding{}, fmt.Errorf("%w: %d: %s", ErrUnexpectedStatus, rsp.StatusCode(), rsp.Body)
	}
}

// toSparse sorts the service's (index, value) pairs and validates them.
func (e *Embedder) toSparse(v SparseVector) (embedding.SparseEmbedding, error) {
	if len(v.Indices) != len(v.Values) {
		return embedding.SparseEmbedding{}, fmt.Errorf("%w: %d indices but %d values", embedding.ErrInvalidSparse, len(v.Indices), len(v.Values))
	}

	dimension := e.dimension
	if v.Dimension != nil {
		dimension = *v.Dimension
	}

	order := make([]int, len(v.Indices))
	for i := range order {
		order[i] = i
	}
	slices.SortFunc(order, func(a, b int) int { return cmp.Compare(v.Indices[a], v.Indices[b]) })

	indices := make([]int, len(order))
	values := make([]float32, len(order))
	for i, j := range order {
		indices[i] = v.Indices[j]
		values[i] = v.Values[j]
	}
	return embedding.NewSparseEmbedding(indices, values, dimension)
}
