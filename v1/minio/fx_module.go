package minio

import (
	"context"
	"sync"

	"go.uber.org/fx"

	"github.com/Aleph-Alpha/querykit/v1/observability"
)

// FXModule provides a *MinioClient built from the Config in the container and
// runs its connection monitor for the lifetime of the application.
var FXModule = fx.Module("minio",
	fx.Provide(
		NewClientWithDI,
	),
	fx.Invoke(RegisterLifecycle),
)

// MinioParams groups the dependencies of NewClientWithDI.
type MinioParams struct {
	fx.In

	Config   Config
	Logger   Logger                 `optional:"true"`
	Observer observability.Observer `optional:"true"`
}

// NewClientWithDI creates a client and attaches the optional logger and
// observer from the container.
func NewClientWithDI(params MinioParams) (*MinioClient, error) {
	client, err := NewClient(params.Config)
	if err != nil {
		return nil, err
	}
	return client.WithLogger(params.Logger).WithObserver(params.Observer), nil
}

// RegisterLifecycle starts the connection monitor and retry loop on start and
// stops both on shutdown.
func RegisterLifecycle(lc fx.Lifecycle, mi *MinioClient) {
	wg := &sync.WaitGroup{}
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			wg.Add(2)
			go func() {
				defer wg.Done()
				mi.monitorConnection(context.Background())
			}()
			go func() {
				defer wg.Done()
				mi.retryConnection(context.Background())
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			mi.logInfo(ctx, "closing minio client...", nil)
			mi.GracefulShutdown()
			wg.Wait()
			return nil
		},
	})
}
