// Package memorydb is the in-memory reference engine for the query algebra.
//
// A Table stores records of one type in insertion order behind a single
// mutex and answers every operation by evaluating conditions, applying
// modifications and scoring embeddings directly on the records. Other
// backends translate the same algebra into their own query languages and are
// tested against the results this package produces.
//
// # Usage
//
//	db := memorydb.New()
//	articles, err := memorydb.TableFor(ctx, db, "articles", articleSchema,
//	    memorydb.WithID(idPath))
//	if err != nil {
//	    return err
//	}
//	_ = articles.Insert(ctx, a1, a2)
//	for a := range articles.Find(ctx, query.Where(condition.Eq(category, "news"))) {
//	    ...
//	}
//
// # Persistence
//
// With WithStore every table gets a persister: one goroutine that writes a
// full JSON snapshot of the table after mutations. Snapshot requests
// coalesce, so a burst of writes produces few snapshots. A failed write is
// logged and retried after the retry interval. Close performs a final
// synchronous snapshot of every table.
//
// FileStore replaces each table file atomically by writing a temporary file
// in the same directory and renaming it. ObjectStore keeps snapshots in a
// MinIO bucket.
package memorydb
