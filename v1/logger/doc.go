// Package logger provides structured logging for querykit services on top of
// Uber's zap.
//
// Every method takes a message, an optional error and optional field maps,
// the call style the storage packages expect from their Logger interfaces:
//
//	log := logger.NewLoggerClient(logger.Config{
//		Level:         logger.Info,
//		EnableTracing: true,
//		ServiceName:   "querykit",
//	})
//
//	log.Info("table opened", nil, map[string]interface{}{"table": "articles"})
//	log.Error("snapshot failed", err, map[string]interface{}{"table": "articles"})
//
// # Tracing Integration
//
// With EnableTracing set, the *WithContext methods add the trace_id and
// span_id of the OpenTelemetry span carried by the context:
//
//	log.InfoWithContext(ctx, "flushing tables", nil)
//
// # Configuration
//
//	ZAP_LOGGER_LEVEL=debug          # debug, info, warning, error
//	LOGGER_ENABLE_TRACING=true      # add trace and span ids
//	SERVICE_NAME=querykit           # attached to every entry
//
// # FX Module Integration
//
//	app := fx.New(
//		fx.Provide(logger.NewConfig),
//		logger.FXModule,
//	)
//
// All methods are safe for concurrent use.
package logger
