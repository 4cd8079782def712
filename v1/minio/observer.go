package minio

import (
	"context"
	"time"

	"github.com/Aleph-Alpha/querykit/v1/observability"
)

// observeOperation notifies the observer about an operation if one is configured.
//
// Notes:
//   - resource: bucket name
//   - subResource: object key
func (m *MinioClient) observeOperation(ctx context.Context, operation, subResource string, start time.Time, err error, size int64, metadata map[string]interface{}) {
	if m == nil || m.observer == nil {
		return
	}

	oc := observability.Since("minio", operation, m.cfg.Connection.BucketName, start, err)
	oc.SubResource = subResource
	oc.Size = size
	oc.Metadata = metadata
	oc.Context = ctx
	m.observer.ObserveOperation(oc)
}
