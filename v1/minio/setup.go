package minio

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/Aleph-Alpha/querykit/v1/observability"
)

// Logger is the context-aware logging surface the client uses.
// *logger.Logger satisfies it.
type Logger interface {
	InfoWithContext(ctx context.Context, msg string, err error, fields ...map[string]interface{})
	WarnWithContext(ctx context.Context, msg string, err error, fields ...map[string]interface{})
	ErrorWithContext(ctx context.Context, msg string, err error, fields ...map[string]interface{})
}

// MinioClient stores and fetches whole objects in one bucket. A background
// monitor checks the connection and swaps in a fresh client when it breaks.
type MinioClient struct {
	// client is swapped during reconnection without racing with concurrent
	// operations.
	client atomic.Pointer[minio.Client]

	cfg      Config
	observer observability.Observer
	logger   Logger

	// shutdownSignal stops the monitor and retry loops.
	shutdownSignal chan struct{}

	// reconnectSignal holds at most one pending reconnection request.
	reconnectSignal chan error

	closeShutdownOnce sync.Once
}

// NewClient connects to MinIO, validates the connection and makes sure the
// bucket exists, creating it when AccessBucketCreation is set.
func NewClient(config Config) (*MinioClient, error) {
	client, err := connectToMinio(config)
	if err != nil {
		return nil, err
	}

	m := &MinioClient{
		cfg:             config,
		shutdownSignal:  make(chan struct{}),
		reconnectSignal: make(chan error, 1),
	}
	m.client.Store(client)

	timeoutCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := m.validateConnection(timeoutCtx); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConnectionFailed, err)
	}
	if err := m.ensureBucketExists(timeoutCtx); err != nil {
		return nil, err
	}
	return m, nil
}

// Config returns the client's configuration.
func (m *MinioClient) Config() Config { return m.cfg }

// monitorConnection validates the connection periodically and requests a
// reconnection when validation fails.
func (m *MinioClient) monitorConnection(ctx context.Context) {
	ticker := time.NewTicker(connectionHealthCheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			checkCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
			err := m.validateConnection(checkCtx)
			cancel()

			if err != nil {
				m.logError(ctx, "MinIO connection health check failed", err, map[string]interface{}{
					"endpoint": m.cfg.Connection.Endpoint,
				})
				select {
				case m.reconnectSignal <- err:
				default:
				}
			}

		case <-m.shutdownSignal:
			return

		case <-ctx.Done():
			return
		}
	}
}

// retryConnection reconnects on request until it succeeds or the client
// shuts down.
func (m *MinioClient) retryConnection(ctx context.Context) {
	for {
		select {
		case <-m.shutdownSignal:
			m.logInfo(ctx, "Stopping MinIO connection retry loop due to shutdown signal", nil)
			return

		case <-ctx.Done():
			return

		case err := <-m.reconnectSignal:
			m.logWarn(ctx, "MinIO connection issue detected, attempting reconnection", err, map[string]interface{}{
				"endpoint": m.cfg.Connection.Endpoint,
			})
			if !m.reconnect(ctx) {
				return
			}
		}
	}
}

// reconnect loops until a new client validates. It reports false when it
// was interrupted by shutdown.
func (m *MinioClient) reconnect(ctx context.Context) bool {
	for {
		select {
		case <-m.shutdownSignal:
			return false
		case <-ctx.Done():
			return false
		default:
		}

		newClient, err := connectToMinio(m.cfg)
		if err == nil {
			checkCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			_, err = newClient.BucketExists(checkCtx, m.cfg.Connection.BucketName)
			cancel()
		}
		if err != nil {
			m.logError(ctx, "MinIO reconnection failed", err, map[string]interface{}{
				"endpoint":      m.cfg.Connection.Endpoint,
				"will_retry_in": reconnectBackoff.String(),
			})
			select {
			case <-time.After(reconnectBackoff):
				continue
			case <-m.shutdownSignal:
				return false
			}
		}

		m.client.Store(newClient)
		m.logInfo(ctx, "Successfully reconnected to MinIO", map[string]interface{}{
			"endpoint": m.cfg.Connection.Endpoint,
			"bucket":   m.cfg.Connection.BucketName,
		})
		return true
	}
}

func connectToMinio(cfg Config) (*minio.Client, error) {
	if cfg.Connection.Endpoint == "" {
		return nil, fmt.Errorf("minio endpoint cannot be empty")
	}
	return minio.New(cfg.Connection.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.Connection.AccessKeyID, cfg.Connection.SecretAccessKey, ""),
		Secure: cfg.Connection.UseSSL,
		Region: cfg.Connection.Region,
	})
}

func (m *MinioClient) validateConnection(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	c := m.client.Load()
	if c == nil {
		return ErrConnectionFailed
	}
	if bucket := m.cfg.Connection.BucketName; bucket != "" {
		_, err := c.BucketExists(ctx, bucket)
		return err
	}
	_, err := c.ListBuckets(ctx)
	return err
}

func (m *MinioClient) ensureBucketExists(ctx context.Context) error {
	bucketName := m.cfg.Connection.BucketName
	if bucketName == "" {
		return fmt.Errorf("bucket name is empty")
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	c := m.client.Load()
	exists, err := c.BucketExists(ctx, bucketName)
	if err != nil {
		return fmt.Errorf("failed to check if bucket exists, bucket: %v, err: %w", bucketName, err)
	}
	if exists {
		return nil
	}
	if !m.cfg.Connection.AccessBucketCreation {
		return fmt.Errorf("%w: %s", ErrBucketNotFound, bucketName)
	}

	m.logInfo(ctx, "Bucket does not exist, creating it", map[string]interface{}{
		"bucket": bucketName,
		"region": m.cfg.Connection.Region,
	})
	if err := c.MakeBucket(ctx, bucketName, minio.MakeBucketOptions{Region: m.cfg.Connection.Region}); err != nil {
		return err
	}
	return nil
}

// WithObserver attaches an observer notified of every object operation.
func (m *MinioClient) WithObserver(observer observability.Observer) *MinioClient {
	m.observer = observer
	return m
}

// WithLogger attaches a logger for connection diagnostics.
func (m *MinioClient) WithLogger(logger Logger) *MinioClient {
	m.logger = logger
	return m
}

// GracefulShutdown stops the monitor and retry loops. It is safe to call
// more than once.
func (m *MinioClient) GracefulShutdown() {
	m.closeShutdownOnce.Do(func() { close(m.shutdownSignal) })
}

func (m *MinioClient) logInfo(ctx context.Context, msg string, fields map[string]interface{}) {
	if m.logger != nil {
		m.logger.InfoWithContext(ctx, msg, nil, fields)
	}
}

func (m *MinioClient) logWarn(ctx context.Context, msg string, err error, fields map[string]interface{}) {
	if m.logger != nil {
		m.logger.WarnWithContext(ctx, msg, err, fields)
	}
}

func (m *MinioClient) logError(ctx context.Context, msg string, err error, fields map[string]interface{}) {
	if m.logger != nil {
		m.logger.ErrorWithContext(ctx, msg, err, fields)
	}
}
