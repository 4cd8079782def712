package memorydb

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/Aleph-Alpha/querykit/v1/schema"
)

// table is the type-erased view of a *Table[T] held by a Database.
type table interface {
	Name() string
	recordType() schema.Type
	persistence() *persister
}

func (t *Table[T]) recordType() schema.Type { return t.desc.Type() }
func (t *Table[T]) persistence() *persister { return t.persist }

// Database is a set of named tables. With a SnapshotStore every table is
// loaded when first opened and snapshotted after every mutation.
type Database struct {
	opts options

	mu     sync.Mutex
	tables map[string]table
	closed bool
}

// New returns an empty database.
func New(opts ...Option) *Database {
	o := options{logger: nopLogger{}, retryInterval: DefaultRetryInterval}
	for _, opt := range opts {
		opt(&o)
	}
	return &Database{opts: o, tables: make(map[string]table)}
}

// Durable reports whether tables are persisted.
func (db *Database) Durable() bool { return db.opts.store != nil }

// TableFor opens the table called name, creating it on first use. Reopening
// a table with a descriptor of another record type fails with
// ErrSchemaMismatch; table options only apply on creation.
func TableFor[T any](ctx context.Context, db *Database, name string, desc schema.Descriptor[T], opts ...TableOption[T]) (*Table[T], error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	if db.closed {
		return nil, ErrClosed
	}
	if existing, ok := db.tables[name]; ok {
		t, same := existing.(*Table[T])
		if !same || existing.recordType().ID() != desc.ID() {
			return nil, fmt.Errorf("%w: %s holds %s, not %s", ErrSchemaMismatch, name, existing.recordType().ID(), desc.ID())
		}
		return t, nil
	}

	if db.opts.registry != nil {
		if err := db.opts.registry.Register(desc.Type()); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrSchemaMismatch, err)
		}
	}

	var tcfg tableOptions[T]
	for _, opt := range opts {
		opt(&tcfg)
	}
	t := newTable(name, desc, tcfg, db.opts)

	if store := db.opts.store; store != nil {
		data, err := store.Load(ctx, name)
		switch {
		case errors.Is(err, ErrSnapshotNotFound):
		case err != nil:
			return nil, fmt.Errorf("memorydb: load %s: %w", name, err)
		default:
			if err := t.load(data); err != nil {
				return nil, err
			}
			db.opts.logger.Info("loaded table snapshot", nil, map[string]interface{}{
				"table":   name,
				"records": len(t.records),
			})
		}
		t.persist = newPersister(name, store, t.encodeSnapshot, db.opts)
	}

	db.tables[name] = t
	return t, nil
}

// Tables lists the open tables by name.
func (db *Database) Tables() []string {
	db.mu.Lock()
	defer db.mu.Unlock()
	return slices.Sorted(maps.Keys(db.tables))
}

// Drop removes a table and its snapshot. Dropping an unknown table is a
// no-op.
func (db *Database) Drop(ctx context.Context, name string) error {
	db.mu.Lock()
	t, ok := db.tables[name]
	delete(db.tables, name)
	db.mu.Unlock()

	if !ok {
		return nil
	}
	if p := t.persistence(); p != nil {
		p.Discard()
		return db.opts.store.Delete(ctx, name)
	}
	return nil
}

func (db *Database) persisters() []*persister {
	db.mu.Lock()
	defer db.mu.Unlock()

	var out []*persister
	for _, t := range db.tables {
		if p := t.persistence(); p != nil {
			out = append(out, p)
		}
	}
	return out
}

// Flush writes a snapshot of every table and waits for the writes.
func (db *Database) Flush(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	for _, p := range db.persisters() {
		g.Go(func() error { return p.Sync(ctx) })
	}
	return g.Wait()
}

// Close stops every writer after a final snapshot. Tables stay usable in
// memory but are no longer persisted. Closing twice is a no-op.
func (db *Database) Close(ctx context.Context) error {
	db.mu.Lock()
	if db.closed {
		db.mu.Unlock()
		return nil
	}
	db.closed = true
	db.mu.Unlock()

	var g errgroup.Group
	for _, p := range db.persisters() {
		g.Go(func() error { return p.Close(ctx) })
	}
	err := g.Wait()
	if err != nil {
		db.opts.logger.Error("final table flush failed", err)
	}
	return err
}
