package embedding

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// inferenceProvider talks to the OpenAI-compatible /embeddings endpoint.
type inferenceProvider struct {
	baseURL      string
	serviceToken string
	httpClient   *http.Client
}

func newInferenceProvider(cfg *Config) (*inferenceProvider, error) {
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("inference: missing EMBEDDING_ENDPOINT")
	}
	timeout := cfg.HTTPTimeoutS
	if timeout <= 0 {
		timeout = 30
	}

	return &inferenceProvider{
		baseURL:      strings.TrimRight(cfg.Endpoint, "/"),
		serviceToken: cfg.ServiceToken,
		httpClient:   &http.Client{Timeout: time.Duration(timeout) * time.Second},
	}, nil
}

// Create generates embeddings for the given texts using the specified model.
func (p *inferenceProvider) Create(ctx context.Context, model string, texts ...string) ([][]float64, error) {
	if len(texts) == 0 {
		return nil, fmt.Errorf("inference: no texts provided")
	}
	if model == "" {
		return nil, fmt.Errorf("inference: model is required")
	}

	reqBody := map[string]any{
		"model": model,
		"input": texts,
	}

	var parsed struct {
		Data []struct {
			Index     int       `json:"index"`
			Embedding []float64 `json:"embedding"`
		} `json:"data"`
	}

	if err := p.postJSON(ctx, p.baseURL+"/embeddings", reqBody, &parsed); err != nil {
		return nil, err
	}

	if len(parsed.Data) != len(texts) {
		return nil, fmt.Errorf("inference: expected %d embeddings, got %d", len(texts), len(parsed.Data))
	}

	out := make([][]float64, len(parsed.Data))
	for _, d := range parsed.Data {
		if d.Index < 0 || d.Index >= len(out) || out[d.Index] != nil {
			return nil, fmt.Errorf("inference: invalid embedding index %d", d.Index)
		}
		out[d.Index] = d.Embedding
	}

	return out, nil
}
