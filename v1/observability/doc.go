// Package observability defines the hook through which storage components
// report finished operations.
//
// Components accept an optional Observer and call ObserveOperation once per
// operation with its duration, outcome and size. The metrics and tracer
// packages provide Observers backed by Prometheus and OpenTelemetry; Multi
// combines them:
//
//	obs := observability.Multi(metrics.NewObserver(m), tracer.NewObserver(t))
//	db := memorydb.New(memorydb.WithObserver(obs))
package observability
