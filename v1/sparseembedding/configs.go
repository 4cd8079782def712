package sparseembedding

import (
	"fmt"
	"math"
	"os"
	"strconv"
)

// DefaultDimension bounds the BM25 service's non-negative 32-bit token hashes.
// It is used when the service does not report a dimension.
const DefaultDimension = math.MaxInt32

// Config describes the BM25 service.
type Config struct {
	Endpoint         string   `yaml:"endpoint" envconfig:"SPARSE_EMBEDDING_ENDPOINT"`
	ServiceToken     string   `yaml:"service_token" envconfig:"SPARSE_EMBEDDING_SERVICE_TOKEN"`
	Language         Language `yaml:"language" envconfig:"SPARSE_EMBEDDING_LANGUAGE"`
	AverageWordCount int      `yaml:"average_word_count" envconfig:"SPARSE_EMBEDDING_AVERAGE_WORD_COUNT"`
	Dimension        int      `yaml:"dimension" envconfig:"SPARSE_EMBEDDING_DIMENSION"`
	HTTPTimeoutS     int      `yaml:"http_timeout_seconds" envconfig:"SPARSE_EMBEDDING_HTTP_TIMEOUT_SECONDS"`
}

// NewConfig reads from environment variables.
func NewConfig() *Config {
	return &Config{
		Endpoint:         os.Getenv("SPARSE_EMBEDDING_ENDPOINT"),
		ServiceToken:     os.Getenv("SPARSE_EMBEDDING_SERVICE_TOKEN"),
		Language:         Language(os.Getenv("SPARSE_EMBEDDING_LANGUAGE")),
		AverageWordCount: envInt("SPARSE_EMBEDDING_AVERAGE_WORD_COUNT", 0),
		Dimension:        envInt("SPARSE_EMBEDDING_DIMENSION", DefaultDimension),
		HTTPTimeoutS:     envInt("SPARSE_EMBEDDING_HTTP_TIMEOUT_SECONDS", 30),
	}
}

func envInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return def
}

// Validate ensures required fields are present.
func (c *Config) Validate() error {
	if c.Endpoint == "" {
		return fmt.Errorf("sparseembedding: missing SPARSE_EMBEDDING_ENDPOINT")
	}
	if c.Dimension < 1 {
		return fmt.Errorf("sparseembedding: dimension must be positive, got %d", c.Dimension)
	}
	return nil
}
