package embedding

import (
	"context"
	"fmt"
)

// Client turns text into Embeddings that can be stored in a table and
// searched with FindSimilar.
//
// It hides the provider details (inference endpoints, HTTP, auth) from the
// application layer.
type Client struct {
	provider Provider
	model    string
}

// NewClient validates cfg and constructs a Client backed by the inference
// service.
func NewClient(cfg *Config) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("embedding: invalid config: %w", err)
	}

	p, err := newInferenceProvider(cfg)
	if err != nil {
		return nil, fmt.Errorf("embedding: failed to create provider: %w", err)
	}

	return &Client{provider: p, model: cfg.Model}, nil
}

// NewClientWithProvider builds a Client over any Provider.
func NewClientWithProvider(p Provider, model string) *Client {
	return &Client{provider: p, model: model}
}

// Embed returns one validated embedding per text, in input order.
func (c *Client) Embed(ctx context.Context, texts ...string) ([]Embedding, error) {
	raw, err := c.provider.Create(ctx, c.model, texts...)
	if err != nil {
		return nil, fmt.Errorf("embedding: create: %w", err)
	}

	out := make([]Embedding, len(raw))
	for i, r := range raw {
		e := FromFloat64(r)
		if err := e.Validate(); err != nil {
			return nil, fmt.Errorf("embedding: text %d: %w", i, err)
		}
		if i > 0 && len(e) != len(out[0]) {
			return nil, &DimensionMismatchError{Expected: len(out[0]), Actual: len(e)}
		}
		out[i] = e
	}
	return out, nil
}

// EmbedOne embeds a single text.
func (c *Client) EmbedOne(ctx context.Context, text string) (Embedding, error) {
	out, err := c.Embed(ctx, text)
	if err != nil {
		return nil, err
	}
	return out[0], nil
}

// Close releases provider resources when the provider holds any.
func (c *Client) Close() error {
	if closer, ok := c.provider.(interface{ Close() error }); ok {
		return closer.Close()
	}
	return nil
}
