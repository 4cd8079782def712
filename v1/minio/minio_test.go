package minio

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"

	"github.com/Aleph-Alpha/querykit/v1/observability"
)

func TestTranslateError(t *testing.T) {
	assert.NoError(t, translateError(nil))

	missing := minio.ErrorResponse{Code: "NoSuchKey", StatusCode: http.StatusNotFound, Message: "The specified key does not exist."}
	err := translateError(missing)
	assert.ErrorIs(t, err, ErrObjectNotFound)
	assert.Contains(t, err.Error(), "The specified key does not exist.")

	assert.ErrorIs(t, translateError(minio.ErrorResponse{Code: "NoSuchBucket"}), ErrBucketNotFound)

	other := errors.New("connection reset")
	assert.Same(t, other, translateError(other))
}

func TestNewConfig(t *testing.T) {
	t.Setenv("MINIO_ENDPOINT", "localhost:9000")
	t.Setenv("MINIO_BUCKET_NAME", "snapshots")
	t.Setenv("MINIO_USE_SSL", "true")
	t.Setenv("MINIO_ACCESS_BUCKET_CREATION", "1")

	cfg := NewConfig()
	assert.Equal(t, "localhost:9000", cfg.Connection.Endpoint)
	assert.Equal(t, "snapshots", cfg.Connection.BucketName)
	assert.True(t, cfg.Connection.UseSSL)
	assert.True(t, cfg.Connection.AccessBucketCreation)
}

func TestNewClient_RequiresEndpoint(t *testing.T) {
	_, err := NewClient(Config{})
	assert.Error(t, err)
}

func TestObserveOperation(t *testing.T) {
	var got observability.OperationContext
	m := &MinioClient{
		cfg:      Config{Connection: ConnectionConfig{BucketName: "snapshots"}},
		observer: observability.ObserverFunc(func(c observability.OperationContext) { got = c }),
	}

	failure := errors.New("boom")
	m.observeOperation(context.Background(), "put", "docs.json", time.Now().Add(-time.Second), failure, 42, nil)

	assert.Equal(t, "minio", got.Component)
	assert.Equal(t, "put", got.Operation)
	assert.Equal(t, "snapshots", got.Resource)
	assert.Equal(t, "docs.json", got.SubResource)
	assert.Equal(t, int64(42), got.Size)
	assert.Same(t, failure, got.Error)
	assert.GreaterOrEqual(t, got.Duration, time.Second)
	assert.NotNil(t, got.Context)

	var nilClient *MinioClient
	assert.NotPanics(t, func() { nilClient.observeOperation(context.Background(), "get", "x", time.Now(), nil, 0, nil) })
}
