package metrics

import (
	"os"
	"strconv"
)

// DefaultMetricsAddress is where the metrics endpoint listens by default.
const DefaultMetricsAddress = ":9090"

// Config configures the Prometheus registry and its HTTP endpoint.
type Config struct {
	// Address is the listen address of the /metrics server, e.g. ":9090".
	Address string `yaml:"address" envconfig:"METRICS_ADDRESS"`

	// EnableDefaultCollectors registers the Go, process and build info
	// collectors.
	EnableDefaultCollectors bool `yaml:"enable_default_collectors" envconfig:"METRICS_ENABLE_DEFAULT_COLLECTORS"`

	// Namespace prefixes every metric name, e.g. "querykit".
	Namespace string `yaml:"namespace" envconfig:"METRICS_NAMESPACE"`

	// ServiceName is added as a constant "service" label.
	ServiceName string `yaml:"service_name" envconfig:"METRICS_SERVICE_NAME"`
}

// NewConfig reads the configuration from the environment.
func NewConfig() Config {
	cfg := Config{
		Address:     os.Getenv("METRICS_ADDRESS"),
		Namespace:   os.Getenv("METRICS_NAMESPACE"),
		ServiceName: os.Getenv("METRICS_SERVICE_NAME"),
	}
	cfg.EnableDefaultCollectors, _ = strconv.ParseBool(os.Getenv("METRICS_ENABLE_DEFAULT_COLLECTORS"))
	if cfg.Address == "" {
		cfg.Address = DefaultMetricsAddress
	}
	return cfg
}
