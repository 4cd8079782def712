package memorydb

import (
	"context"
	"fmt"
	"time"

	"github.com/Aleph-Alpha/querykit/v1/condition"
	"github.com/Aleph-Alpha/querykit/v1/field"
	"github.com/Aleph-Alpha/querykit/v1/query"
	"github.com/Aleph-Alpha/querykit/v1/schema"
)

func singleValued(p field.AnyPath) error {
	for _, s := range p.Steps() {
		if s.Kind == field.StepElements {
			return fmt.Errorf("%w: %s", field.ErrMultiValued, p)
		}
	}
	return nil
}

func numericLeaf(p field.AnyPath) (schema.Numeric, error) {
	if err := singleValued(p); err != nil {
		return nil, err
	}
	n, ok := p.Leaf().(schema.Numeric)
	if !ok {
		return nil, fmt.Errorf("%w: %s is %s", query.ErrNotNumeric, p, p.Leaf().ID())
	}
	return n, nil
}

// Aggregate computes agg over property for the records matching c. Records
// whose property crosses an absent optional are skipped. property may be nil
// for Count, which then counts the matching records.
//
// The boolean is false when the statistic is undefined for the values seen,
// for example the average of nothing. Count is always defined.
func (t *Table[T]) Aggregate(ctx context.Context, agg query.Aggregate, property field.Expr[T], c condition.Condition[T]) (value float64, ok bool, err error) {
	start := time.Now()
	defer func() { t.observe(ctx, "aggregate", start, err, boolToInt(ok)) }()

	if property == nil && agg != query.Count {
		return 0, false, fmt.Errorf("%w: %s needs a property", query.ErrNotNumeric, agg)
	}
	var num schema.Numeric
	if property != nil {
		if num, err = numericLeaf(property); err != nil {
			return 0, false, err
		}
	}

	acc := query.NewAccumulator(agg)
	for _, r := range t.matching(c) {
		if property == nil {
			acc.Add(0)
			continue
		}
		if v, present := property.Value(r); present {
			acc.Add(num.Float(v))
		}
	}
	value, ok = acc.Result()
	return value, ok, nil
}

type groupState struct {
	key any
	acc *query.Accumulator
	n   int
}

// grouped partitions the matches of c by groupBy, in first-seen order.
// Records whose key crosses an absent optional share the nil key.
func (t *Table[T]) grouped(groupBy field.Expr[T], c condition.Condition[T], agg query.Aggregate, add func(T, *query.Accumulator)) ([]query.Group, error) {
	if err := singleValued(groupBy); err != nil {
		return nil, err
	}

	var order []*groupState
	index := make(map[string]*groupState)
	for _, r := range t.matching(c) {
		key, present := groupBy.Value(r)
		id := "\x00absent"
		if present {
			enc, err := groupBy.Leaf().Encode(key)
			if err != nil {
				return nil, fmt.Errorf("memorydb: encode group key: %w", err)
			}
			id = enc.Key()
		} else {
			key = nil
		}
		g, ok := index[id]
		if !ok {
			g = &groupState{key: key, acc: query.NewAccumulator(agg)}
			index[id] = g
			order = append(order, g)
		}
		g.n++
		add(r, g.acc)
	}

	groups := make([]query.Group, len(order))
	for i, g := range order {
		v, ok := g.acc.Result()
		groups[i] = query.Group{Key: g.key, Value: v, HasValue: ok, Count: g.n}
	}
	return groups, nil
}

// GroupAggregate computes agg over property separately for each value of
// groupBy among the records matching c. Group.Count is the number of records
// in the group.
func (t *Table[T]) GroupAggregate(ctx context.Context, agg query.Aggregate, property, groupBy field.Expr[T], c condition.Condition[T]) (groups []query.Group, err error) {
	start := time.Now()
	defer func() { t.observe(ctx, "group_aggregate", start, err, len(groups)) }()

	num, err := numericLeaf(property)
	if err != nil {
		return nil, err
	}
	return t.grouped(groupBy, c, agg, func(r T, acc *query.Accumulator) {
		if v, ok := property.Value(r); ok {
			acc.Add(num.Float(v))
		}
	})
}

// GroupCount counts the records matching c per value of groupBy.
func (t *Table[T]) GroupCount(ctx context.Context, groupBy field.Expr[T], c condition.Condition[T]) (groups []query.Group, err error) {
	start := time.Now()
	defer func() { t.observe(ctx, "group_count", start, err, len(groups)) }()

	return t.grouped(groupBy, c, query.Count, func(_ T, acc *query.Accumulator) { acc.Add(0) })
}
