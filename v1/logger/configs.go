package logger

import "os"

// Log levels accepted in Config.Level.
const (
	Debug   = "debug"
	Info    = "info"
	Warning = "warning"
	Error   = "error"
)

// Config configures the logger.
type Config struct {
	// Level is one of the level constants; anything else logs at Info.
	Level string `yaml:"level" envconfig:"ZAP_LOGGER_LEVEL"`

	// EnableTracing adds trace_id and span_id to entries logged through the
	// *WithContext methods.
	EnableTracing bool `yaml:"enable_tracing" envconfig:"LOGGER_ENABLE_TRACING"`

	// ServiceName is attached to every entry.
	ServiceName string `yaml:"service_name" envconfig:"SERVICE_NAME"`
}

// NewConfig reads the configuration from the environment.
func NewConfig() Config {
	return Config{
		Level:         os.Getenv("ZAP_LOGGER_LEVEL"),
		EnableTracing: os.Getenv("LOGGER_ENABLE_TRACING") == "true",
		ServiceName:   os.Getenv("SERVICE_NAME"),
	}
}
