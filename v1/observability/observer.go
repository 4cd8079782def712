package observability

import (
	"context"
	"time"
)

// OperationContext describes a finished operation.
//
// Notes:
//   - Component identifies the emitting package ("memorydb", "minio", ...)
//   - Resource is the primary target, e.g. a table or bucket name
//   - SubResource narrows the target, e.g. an object key
type OperationContext struct {
	Component   string
	Operation   string
	Resource    string
	SubResource string
	Duration    time.Duration
	Error       error
	Size        int64
	Metadata    map[string]interface{}
	// Context carries the caller's trace context when one is available.
	Context context.Context
}

// Observer receives notifications about completed operations. Implementations
// must be safe for concurrent use and must not block.
type Observer interface {
	ObserveOperation(ctx OperationContext)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(OperationContext)

func (f ObserverFunc) ObserveOperation(ctx OperationContext) { f(ctx) }

type multi []Observer

func (m multi) ObserveOperation(ctx OperationContext) {
	for _, o := range m {
		o.ObserveOperation(ctx)
	}
}

// Multi fans notifications out to every non-nil observer. It returns nil when
// none are given so callers can keep their nil checks.
func Multi(observers ...Observer) Observer {
	out := make(multi, 0, len(observers))
	for _, o := range observers {
		if o != nil {
			out = append(out, o)
		}
	}
	switch len(out) {
	case 0:
		return nil
	case 1:
		return out[0]
	}
	return out
}

// Since builds an OperationContext for an operation that started at start.
func Since(component, operation, resource string, start time.Time, err error) OperationContext {
	return OperationContext{
		Component: component,
		Operation: operation,
		Resource:  resource,
		Duration:  time.Since(start),
		Error:     err,
	}
}
