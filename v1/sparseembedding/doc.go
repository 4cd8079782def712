// Package sparseembedding computes BM25 sparse embeddings with a remote
// embedding service.
//
// # Overview
//
// BM25 (Best Matching 25) scores how relevant the tokens of a text are,
// producing a sparse vector: the indices are token hashes and the values are
// BM25 weights. Stored in a table as embedding.SparseEmbedding, these vectors
// can be searched with FindSimilarSparse.
//
// # Basic Usage
//
//	embedder, err := sparseembedding.NewEmbedder(&sparseembedding.Config{
//		Endpoint:  "https://bm25.example.com",
//		Language:  sparseembedding.English, // empty means auto-detection
//		Dimension: sparseembedding.DefaultDimension,
//	})
//	if err != nil {
//		return err
//	}
//
//	vec, err := embedder.Embed(ctx, "This is a sample text for embedding")
//
// The returned embedding is sorted by index and validated. A 422 answer from
// the service is returned as an error wrapping ErrUnexpectedStatus and
// *HTTPValidationError.
//
// # Raw Client
//
// Client and ClientWithResponses expose the service's single endpoint,
// POST /embed/bm25, in the shape of an OpenAPI-generated client:
//
//	client, err := sparseembedding.NewClientWithResponses(
//		"https://bm25.example.com",
//		sparseembedding.WithRequestEditorFn(func(ctx context.Context, req *http.Request) error {
//			req.Header.Set("Authorization", "Bearer your-token")
//			return nil
//		}),
//	)
//	rsp, err := client.EmbedBm25WithResponse(ctx, sparseembedding.BM25EmbedRequest{Text: "..."})
//	if err == nil && rsp.JSON200 != nil {
//		// rsp.JSON200.Indices, rsp.JSON200.Values
//	}
//
// # Average Word Count
//
// average_word_count is the average word count after stemming and removal
// of stop words. About 60% of the original word count is a good estimate.
// The service defaults to 256.
//
// # Thread Safety
//
// Client, ClientWithResponses and Embedder are safe for concurrent use.
package sparseembedding
