package minio

import (
	"os"
	"strconv"
	"time"
)

const (
	unknownSize                   int64 = -1
	connectionHealthCheckInterval       = 3 * time.Second
	reconnectBackoff                    = time.Second
)

// Config defines the MinIO connection used for table snapshots.
type Config struct {
	Connection ConnectionConfig `yaml:"connection"`
}

// ConnectionConfig contains the parameters needed to reach the server.
type ConnectionConfig struct {
	Endpoint        string `yaml:"endpoint" envconfig:"MINIO_ENDPOINT"`                   // e.g. "localhost:9000"
	AccessKeyID     string `yaml:"access_key_id" envconfig:"MINIO_ACCESS_KEY_ID"`         // access key
	SecretAccessKey string `yaml:"secret_access_key" envconfig:"MINIO_SECRET_ACCESS_KEY"` // secret key
	UseSSL          bool   `yaml:"use_ssl" envconfig:"MINIO_USE_SSL"`                     // https when true
	BucketName      string `yaml:"bucket_name" envconfig:"MINIO_BUCKET_NAME"`             // bucket holding the snapshots
	Region          string `yaml:"region" envconfig:"MINIO_REGION"`                       // e.g. "us-east-1"

	// AccessBucketCreation allows NewClient to create a missing bucket.
	AccessBucketCreation bool `yaml:"access_bucket_creation" envconfig:"MINIO_ACCESS_BUCKET_CREATION"`
}

// NewConfig reads the configuration from the MINIO_* environment variables.
func NewConfig() Config {
	useSSL, _ := strconv.ParseBool(os.Getenv("MINIO_USE_SSL"))
	create, _ := strconv.ParseBool(os.Getenv("MINIO_ACCESS_BUCKET_CREATION"))
	return Config{
		Connection: ConnectionConfig{
			Endpoint:             os.Getenv("MINIO_ENDPOINT"),
			AccessKeyID:          os.Getenv("MINIO_ACCESS_KEY_ID"),
			SecretAccessKey:      os.Getenv("MINIO_SECRET_ACCESS_KEY"),
			UseSSL:               useSSL,
			BucketName:           os.Getenv("MINIO_BUCKET_NAME"),
			Region:               os.Getenv("MINIO_REGION"),
			AccessBucketCreation: create,
		},
	}
}
