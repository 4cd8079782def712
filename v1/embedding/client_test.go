package embedding

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_EmbedAgainstInferenceServer(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/embeddings", r.URL.Path)
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))

		var body struct {
			Model string   `json:"model"`
			Input []string `json:"input"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "test-model", body.Model)
		assert.Equal(t, []string{"a", "b"}, body.Input)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":[{"index":1,"embedding":[0,1]},{"index":0,"embedding":[1,0]}]}`))
	}))
	defer srv.Close()

	client, err := NewClient(&Config{Endpoint: srv.URL + "/", ServiceToken: "secret", Model: "test-model", HTTPTimeoutS: 5})
	require.NoError(t, err)
	defer client.Close()

	out, err := client.Embed(context.Background(), "a", "b")
	require.NoError(t, err)
	assert.Equal(t, []Embedding{{1, 0}, {0, 1}}, out)
}

func TestClient_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "overloaded", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	client, err := NewClient(&Config{Endpoint: srv.URL, ServiceToken: "secret", Model: "m"})
	require.NoError(t, err)

	_, err = client.EmbedOne(context.Background(), "a")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "503")
}

type staticProvider struct {
	vectors [][]float64
}

func (p staticProvider) Create(ctx context.Context, model string, texts ...string) ([][]float64, error) {
	return p.vectors, nil
}

func TestClient_RejectsInconsistentDimensions(t *testing.T) {
	client := NewClientWithProvider(staticProvider{vectors: [][]float64{{1, 2}, {1, 2, 3}}}, "m")

	_, err := client.Embed(context.Background(), "a", "b")
	assert.True(t, IsDimensionMismatch(err))
}

func TestConfig_Validate(t *testing.T) {
	t.Setenv("EMBEDDING_ENDPOINT", "http://localhost:1")
	t.Setenv("EMBEDDING_SERVICE_TOKEN", "token")
	t.Setenv("EMBEDDING_MODEL", "")
	t.Setenv("EMBEDDING_HTTP_TIMEOUT_SECONDS", "7")

	cfg := NewConfig()
	assert.Equal(t, 7, cfg.HTTPTimeoutS)
	assert.Error(t, cfg.Validate())

	cfg.Model = "m"
	assert.NoError(t, cfg.Validate())
}
