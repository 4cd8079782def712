// Package metrics exports storage operation metrics to Prometheus.
//
// *Metrics implements observability.Observer: hand it to memorydb or the
// minio client and every operation they report is counted by component,
// operation, resource and outcome, with duration and size histograms.
//
//	m := metrics.NewMetrics(metrics.Config{Address: ":9090", Namespace: "querykit"})
//	db := memorydb.New(memorydb.WithObserver(m))
//
// FXModule also starts an HTTP server exposing the registry at Address and
// adds *Metrics to the "observers" value group consumed by database.FXModule.
//
// Configuration:
//
//	METRICS_ADDRESS=:9090
//	METRICS_NAMESPACE=querykit
//	METRICS_SERVICE_NAME=search-api
//	METRICS_ENABLE_DEFAULT_COLLECTORS=true
package metrics
