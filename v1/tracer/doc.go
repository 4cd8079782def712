// Package tracer records storage operations as OpenTelemetry spans.
//
// *Tracer implements observability.Observer. Because operations are reported
// after they finish, each span is created with the operation's start
// timestamp and ended at the time of the report, under the span carried by
// the operation's context:
//
//	t, err := tracer.NewClient(tracer.Config{ServiceName: "querykit", EnableExport: true})
//	if err != nil {
//		return err
//	}
//	defer t.Shutdown(ctx)
//	db := memorydb.New(memorydb.WithObserver(t))
//
// Export uses OTLP over HTTP and honours the OTEL_EXPORTER_OTLP_* variables.
package tracer
