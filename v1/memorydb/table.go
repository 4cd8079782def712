package memorydb

import (
	"context"
	"encoding/json"
	"fmt"
	"iter"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Aleph-Alpha/querykit/v1/condition"
	"github.com/Aleph-Alpha/querykit/v1/field"
	"github.com/Aleph-Alpha/querykit/v1/modification"
	"github.com/Aleph-Alpha/querykit/v1/observability"
	"github.com/Aleph-Alpha/querykit/v1/query"
	"github.com/Aleph-Alpha/querykit/v1/schema"
)

const component = "memorydb"

// Table is an ordered collection of records of one type guarded by a single
// mutex. Every operation holds the mutex for its whole duration, and every
// mutation is computed on a copy that replaces the collection only when the
// operation succeeds.
type Table[T any] struct {
	name     string
	desc     schema.Descriptor[T]
	id       field.Expr[T]
	observer observability.Observer
	persist  *persister

	mu      sync.Mutex
	records []T
}

func newTable[T any](name string, desc schema.Descriptor[T], tcfg tableOptions[T], o options) *Table[T] {
	return &Table[T]{name: name, desc: desc, id: tcfg.id, observer: o.observer}
}

// Name returns the table name.
func (t *Table[T]) Name() string { return t.name }

// Descriptor returns the record descriptor.
func (t *Table[T]) Descriptor() schema.Descriptor[T] { return t.desc }

func (t *Table[T]) observe(ctx context.Context, op string, start time.Time, err error, size int) {
	if t.observer == nil {
		return
	}
	oc := observability.Since(component, op, t.name, start, err)
	oc.Size = int64(size)
	oc.Context = ctx
	t.observer.ObserveOperation(oc)
}

// commit swaps next in and schedules a snapshot. The caller holds t.mu.
func (t *Table[T]) commit(next []T) {
	t.records = next
	if t.persist != nil {
		t.persist.Request()
	}
}

func (t *Table[T]) checkUnique(records []T) error {
	if t.id == nil {
		return nil
	}
	seen := make(map[string]struct{}, len(records))
	for _, r := range records {
		v, ok := t.id.Value(r)
		if !ok {
			continue
		}
		enc, err := t.id.Leaf().Encode(v)
		if err != nil {
			return fmt.Errorf("memorydb: encode id: %w", err)
		}
		k := enc.Key()
		if _, dup := seen[k]; dup {
			return fmt.Errorf("%w: %s in table %s", ErrDuplicateKey, enc, t.name)
		}
		seen[k] = struct{}{}
	}
	return nil
}

// Insert appends records in order. Nothing is inserted when any of them
// would duplicate an id.
func (t *Table[T]) Insert(ctx context.Context, records ...T) (err error) {
	start := time.Now()
	defer func() { t.observe(ctx, "insert", start, err, len(records)) }()

	t.mu.Lock()
	defer t.mu.Unlock()

	next := append(slices.Clip(t.records), records...)
	if err := t.checkUnique(next); err != nil {
		return err
	}
	t.commit(next)
	return nil
}

func (t *Table[T]) matching(c condition.Condition[T]) []T {
	t.mu.Lock()
	defer t.mu.Unlock()

	var out []T
	for _, r := range t.records {
		if c.Evaluate(r) {
			out = append(out, r)
		}
	}
	return out
}

func (t *Table[T]) collect(q query.Query[T]) []T {
	out := t.matching(q.Condition)
	q.Sort(out)
	return q.Page(out)
}

// Find returns the records selected by q. The sequence takes its snapshot
// when enumeration starts and can be enumerated only once; later
// enumerations yield nothing.
func (t *Table[T]) Find(ctx context.Context, q query.Query[T]) iter.Seq[T] {
	var used atomic.Bool
	return func(yield func(T) bool) {
		if used.Swap(true) {
			return
		}
		start := time.Now()
		records := t.collect(q)
		t.observe(ctx, "find", start, nil, len(records))
		for _, r := range records {
			if !yield(r) {
				return
			}
		}
	}
}

// FindAll returns the records selected by q as a slice.
func (t *Table[T]) FindAll(ctx context.Context, q query.Query[T]) []T {
	start := time.Now()
	records := t.collect(q)
	t.observe(ctx, "find", start, nil, len(records))
	return records
}

// FindOne returns the first record selected by q.
func (t *Table[T]) FindOne(ctx context.Context, q query.Query[T]) (T, bool) {
	start := time.Now()
	q.Limit = 1
	records := t.collect(q)
	t.observe(ctx, "find_one", start, nil, len(records))
	if len(records) == 0 {
		var zero T
		return zero, false
	}
	return records[0], true
}

// Count returns the number of records matching c.
func (t *Table[T]) Count(ctx context.Context, c condition.Condition[T]) int {
	start := time.Now()
	n := t.count(c)
	t.observe(ctx, "count", start, nil, n)
	return n
}

func (t *Table[T]) count(c condition.Condition[T]) int {
	t.mu.Lock()
	defer t.mu.Unlock()

	n := 0
	for _, r := range t.records {
		if c.Evaluate(r) {
			n++
		}
	}
	return n
}

// update applies m to at most limit matches of c, or to all of them when
// limit is zero.
func (t *Table[T]) update(c condition.Condition[T], m modification.Modification[T], limit int) ([]query.EntryChange[T], error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	next := slices.Clone(t.records)
	var changes []query.EntryChange[T]
	for i, r := range next {
		if limit > 0 && len(changes) == limit {
			break
		}
		if !c.Evaluate(r) {
			continue
		}
		updated, err := m.Apply(r)
		if err != nil {
			return nil, err
		}
		next[i] = updated
		changes = append(changes, query.EntryChange[T]{Old: r, New: updated})
	}
	if len(changes) == 0 {
		return nil, nil
	}
	if err := t.checkUnique(next); err != nil {
		return nil, err
	}
	t.commit(next)
	return changes, nil
}

// UpdateOne applies m to the first record matching c and returns the number
// of records updated.
func (t *Table[T]) UpdateOne(ctx context.Context, c condition.Condition[T], m modification.Modification[T]) (n int, err error) {
	start := time.Now()
	defer func() { t.observe(ctx, "update_one", start, err, n) }()
	changes, err := t.update(c, m, 1)
	return len(changes), err
}

// UpdateMany applies m to every record matching c and returns the number of
// records updated.
func (t *Table[T]) UpdateMany(ctx context.Context, c condition.Condition[T], m modification.Modification[T]) (n int, err error) {
	start := time.Now()
	defer func() { t.observe(ctx, "update_many", start, err, n) }()
	changes, err := t.update(c, m, 0)
	return len(changes), err
}

// FindOneAndUpdate applies m to the first record matching c and returns the
// record before and after the update.
func (t *Table[T]) FindOneAndUpdate(ctx context.Context, c condition.Condition[T], m modification.Modification[T]) (change query.EntryChange[T], found bool, err error) {
	start := time.Now()
	defer func() { t.observe(ctx, "find_one_and_update", start, err, boolToInt(found)) }()
	changes, err := t.update(c, m, 1)
	if err != nil || len(changes) == 0 {
		return query.EntryChange[T]{}, false, err
	}
	return changes[0], true, nil
}

// ReplaceOne replaces the first record matching c with r.
func (t *Table[T]) ReplaceOne(ctx context.Context, c condition.Condition[T], r T) (replaced bool, err error) {
	start := time.Now()
	defer func() { t.observe(ctx, "replace_one", start, err, boolToInt(replaced)) }()
	_, replaced, err = t.replace(c, r, false)
	return replaced, err
}

// UpsertOne replaces the first record matching c with r, or appends r when
// nothing matches. It reports whether r was inserted.
func (t *Table[T]) UpsertOne(ctx context.Context, c condition.Condition[T], r T) (inserted bool, err error) {
	start := time.Now()
	defer func() { t.observe(ctx, "upsert_one", start, err, 1) }()
	inserted, _, err = t.replace(c, r, true)
	return inserted, err
}

func (t *Table[T]) replace(c condition.Condition[T], r T, upsert bool) (inserted, replaced bool, err error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	i := slices.IndexFunc(t.records, c.Evaluate)
	var next []T
	switch {
	case i >= 0:
		next = slices.Clone(t.records)
		next[i] = r
		replaced = true
	case upsert:
		next = append(slices.Clip(t.records), r)
		inserted = true
	default:
		return false, false, nil
	}
	if err := t.checkUnique(next); err != nil {
		return false, false, err
	}
	t.commit(next)
	return inserted, replaced, nil
}

func (t *Table[T]) delete(c condition.Condition[T], limit int) int {
	t.mu.Lock()
	defer t.mu.Unlock()

	next := make([]T, 0, len(t.records))
	removed := 0
	for _, r := range t.records {
		if (limit == 0 || removed < limit) && c.Evaluate(r) {
			removed++
			continue
		}
		next = append(next, r)
	}
	if removed > 0 {
		t.commit(next)
	}
	return removed
}

// DeleteOne removes the first record matching c and returns the number of
// records removed.
func (t *Table[T]) DeleteOne(ctx context.Context, c condition.Condition[T]) int {
	start := time.Now()
	n := t.delete(c, 1)
	t.observe(ctx, "delete_one", start, nil, n)
	return n
}

// DeleteMany removes every record matching c.
func (t *Table[T]) DeleteMany(ctx context.Context, c condition.Condition[T]) int {
	start := time.Now()
	n := t.delete(c, 0)
	t.observe(ctx, "delete_many", start, nil, n)
	return n
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// encodeSnapshot renders the current records as a JSON array.
func (t *Table[T]) encodeSnapshot() ([]byte, int, error) {
	t.mu.Lock()
	records := t.records
	t.mu.Unlock()

	items := make([]schema.Value, len(records))
	for i, r := range records {
		v, err := t.desc.Encode(r)
		if err != nil {
			return nil, 0, fmt.Errorf("memorydb: encode %s record %d: %w", t.name, i, err)
		}
		items[i] = v
	}
	data, err := json.Marshal(schema.ListValue(items...))
	if err != nil {
		return nil, 0, err
	}
	return data, len(records), nil
}

// load replaces the records with a decoded snapshot.
func (t *Table[T]) load(data []byte) error {
	v, err := schema.ParseJSON(data)
	if err != nil {
		return fmt.Errorf("memorydb: parse %s snapshot: %w", t.name, err)
	}
	if v.Kind() != schema.KindList {
		return fmt.Errorf("memorydb: %s snapshot is %s, want list", t.name, v.Kind())
	}
	records := make([]T, v.Len())
	for i, item := range v.Items() {
		if records[i], err = t.desc.Decode(item); err != nil {
			return fmt.Errorf("memorydb: decode %s record %d: %w", t.name, i, err)
		}
	}
	if err := t.checkUnique(records); err != nil {
		return err
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	t.records = records
	return nil
}
