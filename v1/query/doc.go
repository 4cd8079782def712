// Package query holds the query descriptors every storage backend accepts:
// Query (condition, ordering, paging), aggregates, and vector search
// parameters.
//
//	q := query.Where(condition.Gt(views, 100)).
//		SortedBy(query.Desc(views), query.Asc(title).IgnoringCase()).
//		Paged(0, 20)
//
// Sorting is stable, so records that compare equal keep their storage order.
// Sort parts panic at construction when the leaf type has no total order.
package query
