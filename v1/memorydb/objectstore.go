package memorydb

import (
	"bytes"
	"context"
	"errors"
	"io"
	"path"

	"github.com/Aleph-Alpha/querykit/v1/minio"
)

// ObjectClient is the subset of *minio.MinioClient ObjectStore uses.
type ObjectClient interface {
	Put(ctx context.Context, objectKey string, reader io.Reader, size ...int64) (int64, error)
	Get(ctx context.Context, objectKey string) ([]byte, error)
	Delete(ctx context.Context, objectKey string) error
}

// ObjectStore keeps snapshots as objects named <prefix>/<table>.json. Object
// uploads become visible only once complete, so a failed Save leaves the
// previous snapshot in place.
type ObjectStore struct {
	client ObjectClient
	prefix string
}

// NewObjectStore returns a store writing through client.
func NewObjectStore(client ObjectClient, prefix string) *ObjectStore {
	return &ObjectStore{client: client, prefix: prefix}
}

func (o *ObjectStore) key(table string) string {
	return path.Join(o.prefix, table+".json")
}

func (o *ObjectStore) Save(ctx context.Context, table string, data []byte) error {
	_, err := o.client.Put(ctx, o.key(table), bytes.NewReader(data), int64(len(data)))
	return err
}

func (o *ObjectStore) Load(ctx context.Context, table string) ([]byte, error) {
	data, err := o.client.Get(ctx, o.key(table))
	if errors.Is(err, minio.ErrObjectNotFound) {
		return nil, ErrSnapshotNotFound
	}
	return data, err
}

func (o *ObjectStore) Delete(ctx context.Context, table string) error {
	return o.client.Delete(ctx, o.key(table))
}
var _ ObjectClient = (*minio.MinioClient)(nil)
