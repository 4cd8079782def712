package tracer

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/Aleph-Alpha/querykit/v1/observability"
)

var _ observability.Observer = (*Tracer)(nil)

// ObserveOperation records a finished operation as a span named
// "<component>.<operation>" that starts Duration before now. The span is a
// child of the span in the operation's context, if any.
func (t *Tracer) ObserveOperation(op observability.OperationContext) {
	ctx := op.Context
	if ctx == nil {
		ctx = context.Background()
	}
	end := time.Now()

	_, span := t.tracer.Start(ctx, op.Component+"."+op.Operation,
		trace.WithTimestamp(end.Add(-op.Duration)),
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.String("querykit.component", op.Component),
			attribute.String("querykit.operation", op.Operation),
			attribute.String("querykit.resource", op.Resource),
			attribute.Int64("querykit.size", op.Size),
		),
	)
	if op.SubResource != "" {
		span.SetAttributes(attribute.String("querykit.sub_resource", op.SubResource))
	}
	t.SetAttributes(span, op.Metadata)
	if op.Error != nil {
		t.RecordErrorOnSpan(span, op.Error)
	}
	span.End(trace.WithTimestamp(end))
}
