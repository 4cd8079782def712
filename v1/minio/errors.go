package minio

import (
	"errors"

	"github.com/minio/minio-go/v7"
)

var (
	// ErrConnectionFailed is returned when no client connection is available.
	ErrConnectionFailed = errors.New("minio: connection failed")

	// ErrObjectNotFound is returned by Get when the key does not exist.
	ErrObjectNotFound = errors.New("minio: object not found")

	// ErrBucketNotFound is returned when the bucket is missing and may not be
	// created.
	ErrBucketNotFound = errors.New("minio: bucket does not exist")
)

// translateError maps server responses onto the package's sentinel errors.
func translateError(err error) error {
	if err == nil {
		return nil
	}
	resp := minio.ToErrorResponse(err)
	switch {
	case resp.Code == "NoSuchKey" || resp.Code == "NotFound":
		return errors.Join(ErrObjectNotFound, err)
	case resp.Code == "NoSuchBucket":
		return errors.Join(ErrBucketNotFound, err)
	}
	return err
}
