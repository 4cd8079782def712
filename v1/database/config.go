package database

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/Aleph-Alpha/querykit/v1/memorydb"
	"github.com/Aleph-Alpha/querykit/v1/minio"
)

// Backend types.
const (
	TypeMemory = "memory"
	TypeFile   = "file"
	TypeMinio  = "minio"
)

// Config selects where tables are kept.
//
//	type: file
//	file:
//	  dir: /var/lib/querykit
//	retry_interval: 10s
type Config struct {
	// Type is one of "memory", "file" or "minio".
	Type string `yaml:"type" envconfig:"DATABASE_TYPE"`

	File FileConfig `yaml:"file"`

	Minio minio.Config `yaml:"minio"`

	// Prefix is prepended to snapshot object keys when Type is "minio".
	Prefix string `yaml:"prefix" envconfig:"DATABASE_PREFIX"`

	// RetryInterval is the delay before a failed snapshot write is retried.
	RetryInterval time.Duration `yaml:"retry_interval" envconfig:"DATABASE_RETRY_INTERVAL"`
}

// FileConfig configures the "file" backend.
type FileConfig struct {
	// Dir holds one <table>.json snapshot per table.
	Dir string `yaml:"dir" envconfig:"DATABASE_DIR"`
}

// DefaultConfig returns an in-memory configuration.
func DefaultConfig() Config {
	return Config{
		Type:          TypeMemory,
		Prefix:        "tables",
		RetryInterval: memorydb.DefaultRetryInterval,
	}
}

// LoadConfig starts from DefaultConfig, applies the YAML (or JSON) file at
// path when it exists and then the DATABASE_* and MINIO_* environment
// variables. An empty path skips the file.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		if err := loadConfigFile(path, &cfg); err != nil {
			return cfg, fmt.Errorf("database: load config file: %w", err)
		}
	}

	loadConfigFromEnv(&cfg)

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func loadConfigFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		if jsonErr := json.Unmarshal(data, cfg); jsonErr != nil {
			return fmt.Errorf("parse config (tried YAML and JSON): YAML error: %v, JSON error: %w", err, jsonErr)
		}
	}
	return nil
}

func loadConfigFromEnv(cfg *Config) {
	if v := os.Getenv("DATABASE_TYPE"); v != "" {
		cfg.Type = v
	}
	if v := os.Getenv("DATABASE_DIR"); v != "" {
		cfg.File.Dir = v
	}
	if v := os.Getenv("DATABASE_PREFIX"); v != "" {
		cfg.Prefix = v
	}
	if v := os.Getenv("DATABASE_RETRY_INTERVAL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			cfg.RetryInterval = d
		}
	}
	if os.Getenv("MINIO_ENDPOINT") != "" {
		cfg.Minio = minio.NewConfig()
	}
}

// Validate checks that the selected backend is configured.
func (c Config) Validate() error {
	switch c.Type {
	case TypeMemory:
	case TypeFile:
		if c.File.Dir == "" {
			return fmt.Errorf("database: type %q requires file.dir", c.Type)
		}
	case TypeMinio:
		if c.Minio.Connection.Endpoint == "" {
			return fmt.Errorf("database: type %q requires minio.connection.endpoint", c.Type)
		}
	default:
		return fmt.Errorf("database: unsupported type %q (must be %q, %q or %q)", c.Type, TypeMemory, TypeFile, TypeMinio)
	}
	if c.RetryInterval < 0 {
		return fmt.Errorf("database: negative retry_interval %s", c.RetryInterval)
	}
	return nil
}
