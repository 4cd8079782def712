package database

import (
	"fmt"

	"github.com/Aleph-Alpha/querykit/v1/logger"
	"github.com/Aleph-Alpha/querykit/v1/memorydb"
	"github.com/Aleph-Alpha/querykit/v1/minio"
	"github.com/Aleph-Alpha/querykit/v1/observability"
)

// NewDatabase opens the backend selected by cfg. log and observer may be nil.
//
// For the "minio" type a client is created from cfg.Minio. Its connection
// monitor only runs under FXModule; outside fx, a broken connection surfaces
// as failed snapshot writes that are retried.
func NewDatabase(cfg Config, log *logger.Logger, observer observability.Observer) (*memorydb.Database, error) {
	return open(cfg, log, observer, nil)
}

func open(cfg Config, log *logger.Logger, observer observability.Observer, objects *minio.MinioClient) (*memorydb.Database, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	opts := []memorydb.Option{
		memorydb.WithObserver(observer),
		memorydb.WithRetryInterval(cfg.RetryInterval),
	}
	if log != nil {
		opts = append(opts, memorydb.WithLogger(log))
	}

	switch cfg.Type {
	case TypeFile:
		store, err := memorydb.NewFileStore(cfg.File.Dir)
		if err != nil {
			return nil, fmt.Errorf("database: %w", err)
		}
		opts = append(opts, memorydb.WithStore(store))

	case TypeMinio:
		if objects == nil {
			client, err := minio.NewClient(cfg.Minio)
			if err != nil {
				return nil, fmt.Errorf("database: %w", err)
			}
			objects = client.WithObserver(observer)
			if log != nil {
				objects = objects.WithLogger(log)
			}
		}
		opts = append(opts, memorydb.WithStore(memorydb.NewObjectStore(objects, cfg.Prefix)))
	}

	if log != nil {
		log.Info("database opened", nil, map[string]interface{}{"type": cfg.Type})
	}
	return memorydb.New(opts...), nil
}
