// Package database is the backend-agnostic entry point to querykit tables.
//
// Table and Database describe the engine surface: typed tables queried with
// condition, modification and query values, aggregation, and similarity
// search over embeddings. memorydb is the reference implementation; other
// backends translate the same values into their native queries.
//
// # Configuration
//
// Config selects the backend:
//
//   - "memory": tables live only in the process.
//   - "file": each table is snapshotted to <dir>/<table>.json.
//   - "minio": each table is snapshotted to <prefix>/<table>.json in a bucket.
//
// LoadConfig reads a YAML file and applies DATABASE_TYPE, DATABASE_DIR,
// DATABASE_PREFIX, DATABASE_RETRY_INTERVAL and the MINIO_* variables.
//
// # Usage
//
//	cfg, err := database.LoadConfig("database.yaml")
//	if err != nil {
//		return err
//	}
//	db, err := database.NewDatabase(cfg, log, metrics)
//	if err != nil {
//		return err
//	}
//	defer db.Close(ctx)
//
//	articles, err := database.TableFor(ctx, db, "articles", articleSchema, memorydb.WithID(articleID))
//	hits, err := articles.FindSimilar(ctx, articleVector, query.VectorSearch{
//		Vector: queryVector,
//		Metric: embedding.Cosine,
//		Limit:  10,
//	}, condition.Eq(articleLang, "en"))
//
// Under fx, FXModule provides *memorydb.Database and closes it on shutdown.
// Every observer in the "observers" value group receives the table
// operations.
package database
