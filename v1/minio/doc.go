// Package minio stores whole objects in a single MinIO (or S3-compatible)
// bucket. memorydb uses it to keep table snapshots.
//
// The client validates the connection on creation and, once started through
// FXModule, checks it every few seconds and reconnects when it breaks.
// Missing keys are reported as ErrObjectNotFound.
//
// Basic Usage:
//
//	client, err := minio.NewClient(minio.Config{
//		Connection: minio.ConnectionConfig{
//			Endpoint:             "localhost:9000",
//			AccessKeyID:          "minioadmin",
//			SecretAccessKey:      "minioadmin",
//			BucketName:           "snapshots",
//			AccessBucketCreation: true,
//		},
//	})
//	if err != nil {
//		return err
//	}
//	_, err = client.Put(ctx, "articles.json", bytes.NewReader(data), int64(len(data)))
//
// FX Integration:
//
//	app := fx.New(
//		logger.FXModule,
//		fx.Provide(minio.NewConfig),
//		minio.FXModule,
//	)
package minio
