// Package embedding provides dense and sparse vector types, the similarity
// metrics used by vector search, and a client that computes text embeddings
// through an OpenAI-compatible inference service.
//
// # Vectors
//
// Embedding is a dense []float32. SparseEmbedding stores only the non-zero
// components as parallel Indices and Values slices plus the full Dimension:
//
//	sparse, err := embedding.NewSparseEmbedding([]int{0, 4}, []float32{1, 0.5}, 8)
//	dense := sparse.ToDense() // [1 0 0 0 0.5 0 0 0]
//
// Both types have schema descriptors (Schema and SparseSchema) so they can be
// used as record fields and survive a snapshot round trip.
//
// # Metrics
//
// Every Metric scores so that a higher value means more similar:
//
//   - Cosine: (cos+1)/2, in [0,1]; a zero vector scores 0.5
//   - DotProduct: the raw dot product
//   - Euclidean: 1/(1+L2 distance)
//   - Manhattan: 1/(1+L1 distance)
//
// Comparing vectors of different dimensions returns a *DimensionMismatchError.
// The sparse variants walk both index lists in one merged pass, so the dot
// product only touches indices present in both vectors.
//
// # Inference client
//
// A Client is constructed from Config, usually read from the environment:
//
//	EMBEDDING_ENDPOINT=https://inference.example.com
//	EMBEDDING_SERVICE_TOKEN=...
//	EMBEDDING_MODEL=...
//	EMBEDDING_HTTP_TIMEOUT_SECONDS=30
//
//	client, err := embedding.NewClient(embedding.NewConfig())
//	vectors, err := client.Embed(ctx, "first document", "second document")
//
// Embed validates every returned vector and checks that all vectors share one
// dimension. FXModule provides the Config and the Client to an Fx
// application.
package embedding
