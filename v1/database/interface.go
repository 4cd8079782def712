package database

import (
	"context"
	"iter"

	"github.com/Aleph-Alpha/querykit/v1/condition"
	"github.com/Aleph-Alpha/querykit/v1/embedding"
	"github.com/Aleph-Alpha/querykit/v1/field"
	"github.com/Aleph-Alpha/querykit/v1/memorydb"
	"github.com/Aleph-Alpha/querykit/v1/modification"
	"github.com/Aleph-Alpha/querykit/v1/query"
	"github.com/Aleph-Alpha/querykit/v1/schema"
)

// Table is the typed record collection every backend provides. Conditions,
// modifications and queries are backend-neutral values; a backend either
// evaluates them directly or translates them.
//
// Implementations must be safe for concurrent use. Mutations are atomic per
// call: when an error is returned no record has changed.
type Table[T any] interface {
	Name() string
	Descriptor() schema.Descriptor[T]

	// Insert adds records. With a unique id configured, ErrDuplicateKey
	// rejects the whole batch.
	Insert(ctx context.Context, records ...T) error

	// Find returns the matching records in query order. The sequence reads
	// the table when enumeration starts and can be ranged over once.
	Find(ctx context.Context, q query.Query[T]) iter.Seq[T]
	FindAll(ctx context.Context, q query.Query[T]) []T
	FindOne(ctx context.Context, q query.Query[T]) (T, bool)
	Count(ctx context.Context, c condition.Condition[T]) int

	UpdateOne(ctx context.Context, c condition.Condition[T], m modification.Modification[T]) (int, error)
	UpdateMany(ctx context.Context, c condition.Condition[T], m modification.Modification[T]) (int, error)
	FindOneAndUpdate(ctx context.Context, c condition.Condition[T], m modification.Modification[T]) (query.EntryChange[T], bool, error)
	ReplaceOne(ctx context.Context, c condition.Condition[T], r T) (bool, error)
	UpsertOne(ctx context.Context, c condition.Condition[T], r T) (bool, error)
	DeleteOne(ctx context.Context, c condition.Condition[T]) int
	DeleteMany(ctx context.Context, c condition.Condition[T]) int

	Aggregate(ctx context.Context, agg query.Aggregate, property field.Expr[T], c condition.Condition[T]) (float64, bool, error)
	GroupAggregate(ctx context.Context, agg query.Aggregate, property, groupBy field.Expr[T], c condition.Condition[T]) ([]query.Group, error)
	GroupCount(ctx context.Context, groupBy field.Expr[T], c condition.Condition[T]) ([]query.Group, error)

	FindSimilar(ctx context.Context, path field.Path[T, embedding.Embedding], s query.VectorSearch, c condition.Condition[T]) ([]query.Scored[T], error)
	FindSimilarSparse(ctx context.Context, path field.Path[T, embedding.SparseEmbedding], s query.SparseVectorSearch, c condition.Condition[T]) ([]query.Scored[T], error)
}

// Database owns a set of named tables.
type Database interface {
	// Durable reports whether tables outlive the process.
	Durable() bool
	Tables() []string
	Drop(ctx context.Context, name string) error

	// Flush waits until every table's latest state has been persisted.
	Flush(ctx context.Context) error
	Close(ctx context.Context) error
}

var (
	_ Table[any] = (*memorydb.Table[any])(nil)
	_ Database   = (*memorydb.Database)(nil)
)

// TableFor opens the table name of db, creating it when absent. Reopening a
// table with a different record type fails with memorydb.ErrSchemaMismatch.
func TableFor[T any](ctx context.Context, db *memorydb.Database, name string, desc schema.Descriptor[T], opts ...memorydb.TableOption[T]) (Table[T], error) {
	t, err := memorydb.TableFor(ctx, db, name, desc, opts...)
	if err != nil {
		return nil, err
	}
	return t, nil
}
