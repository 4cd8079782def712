package memorydb

import (
	"context"
	"fmt"
	"net"
	"testing"
	"time"

	"github.com/docker/docker/api/types/container"
	"github.com/docker/go-connections/nat"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/fx"
	"go.uber.org/fx/fxtest"

	"github.com/Aleph-Alpha/querykit/v1/condition"
	"github.com/Aleph-Alpha/querykit/v1/minio"
	"github.com/Aleph-Alpha/querykit/v1/query"
)

// createMinIOContainer starts a MinIO server and returns its host and port.
func createMinIOContainer(ctx context.Context) (testcontainers.Container, string, string, error) {
	port, err := getFreePort()
	if err != nil {
		return nil, "", "", fmt.Errorf("could not get free port: %w", err)
	}
	portStr := fmt.Sprintf("%d", port)

	req := testcontainers.ContainerRequest{
		Image: "minio/minio:RELEASE.2024-01-16T16-07-38Z",
		Cmd:   []string{"server", "/data"},
		Env: map[string]string{
			"MINIO_ACCESS_KEY": "minio_admin",
			"MINIO_SECRET_KEY": "minio_admin",
		},
		ExposedPorts: []string{"9000/tcp"},
		HostConfigModifier: func(cfg *container.HostConfig) {
			cfg.PortBindings = nat.PortMap{
				"9000/tcp": []nat.PortBinding{{HostPort: portStr}},
			}
		},
		WaitingFor: wait.ForAll(
			wait.ForListeningPort("9000/tcp").WithStartupTimeout(20*time.Second),
			wait.ForHTTP("/minio/health/ready").WithPort("9000/tcp").WithStartupTimeout(20*time.Second),
		),
	}

	c, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		return nil, "", "", fmt.Errorf("failed to start MinIO container: %w", err)
	}
	host, err := c.Host(ctx)
	if err != nil {
		_ = c.Terminate(ctx)
		return nil, "", "", fmt.Errorf("failed to get host: %w", err)
	}
	return c, host, portStr, nil
}

func getFreePort() (int, error) {
	l, err := net.Listen("tcp", "localhost:0")
	if err != nil {
		return 0, err
	}
	defer l.Close()
	return l.Addr().(*net.TCPAddr).Port, nil
}

func TestObjectStore_MinIO(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping MinIO integration test in short mode")
	}
	ctx := context.Background()

	c, host, port, err := createMinIOContainer(ctx)
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Terminate(ctx) })

	cfg := minio.Config{Connection: minio.ConnectionConfig{
		Endpoint:             fmt.Sprintf("%s:%s", host, port),
		AccessKeyID:          "minio_admin",
		SecretAccessKey:      "minio_admin",
		BucketName:           "snapshots",
		AccessBucketCreation: true,
	}}

	var client *minio.MinioClient
	app := fxtest.New(t,
		fx.Supply(cfg),
		minio.FXModule,
		fx.Populate(&client),
	)
	app.RequireStart()
	defer app.RequireStop()

	store := NewObjectStore(client, "querykit")

	_, err = store.Load(ctx, "docs")
	require.ErrorIs(t, err, ErrSnapshotNotFound)

	db := New(WithStore(store))
	tbl, err := TableFor(ctx, db, "docs", docSchema, WithID(docID))
	require.NoError(t, err)
	require.NoError(t, tbl.Insert(ctx, similarDocs()...))
	tbl.DeleteOne(ctx, condition.Eq(docID, "doc2"))
	require.NoError(t, db.Close(ctx))

	reopened := New(WithStore(store))
	tbl2, err := TableFor(ctx, reopened, "docs", docSchema, WithID(docID))
	require.NoError(t, err)
	assert.Equal(t, []string{"doc1", "doc3"}, ids(tbl2.FindAll(ctx, query.Query[doc]{})))

	require.NoError(t, reopened.Drop(ctx, "docs"))
	_, err = store.Load(ctx, "docs")
	assert.ErrorIs(t, err, ErrSnapshotNotFound)
}
