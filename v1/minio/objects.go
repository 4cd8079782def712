package minio

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/minio/minio-go/v7"
)

// Put uploads an object. The object becomes visible only once the upload
// completes.
func (m *MinioClient) Put(ctx context.Context, objectKey string, reader io.Reader, size ...int64) (n int64, err error) {
	start := time.Now()
	defer func() { m.observeOperation(ctx, "put", objectKey, start, err, n, nil) }()

	actualSize := unknownSize
	if len(size) > 0 && size[0] != 0 {
		actualSize = size[0]
	}

	info, err := m.client.Load().PutObject(ctx, m.cfg.Connection.BucketName, objectKey, reader, actualSize, minio.PutObjectOptions{
		ContentType: "application/json",
	})
	if err != nil {
		return 0, translateError(err)
	}
	return info.Size, nil
}

// Get downloads a whole object. A missing key yields ErrObjectNotFound.
func (m *MinioClient) Get(ctx context.Context, objectKey string) (data []byte, err error) {
	start := time.Now()
	defer func() { m.observeOperation(ctx, "get", objectKey, start, err, int64(len(data)), nil) }()

	reader, err := m.client.Load().GetObject(ctx, m.cfg.Connection.BucketName, objectKey, minio.GetObjectOptions{})
	if err != nil {
		return nil, translateError(err)
	}
	defer func() {
		if cerr := reader.Close(); cerr != nil {
			m.logWarn(ctx, "failed to close object reader", cerr, nil)
		}
	}()

	info, err := reader.Stat()
	if err != nil {
		return nil, translateError(err)
	}

	data = make([]byte, info.Size)
	if _, err := io.ReadFull(reader, data); err != nil {
		return nil, fmt.Errorf("failed to read object data: %w", err)
	}
	return data, nil
}

// Delete removes an object. Deleting a missing object succeeds.
func (m *MinioClient) Delete(ctx context.Context, objectKey string) (err error) {
	start := time.Now()
	defer func() { m.observeOperation(ctx, "delete", objectKey, start, err, 0, nil) }()

	err = translateError(m.client.Load().RemoveObject(ctx, m.cfg.Connection.BucketName, objectKey, minio.RemoveObjectOptions{}))
	if errors.Is(err, ErrObjectNotFound) {
		return nil
	}
	return err
}
