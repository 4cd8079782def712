package database

import (
	"context"

	"go.uber.org/fx"

	"github.com/Aleph-Alpha/querykit/v1/logger"
	"github.com/Aleph-Alpha/querykit/v1/memorydb"
	"github.com/Aleph-Alpha/querykit/v1/minio"
	"github.com/Aleph-Alpha/querykit/v1/observability"
)

// FXModule provides *memorydb.Database from the Config in the container and
// closes it on shutdown, flushing every durable table.
//
// Observers contributed to the "observers" value group (metrics.FXModule,
// tracer.FXModule) all receive the table operations:
//
//	app := fx.New(
//	    fx.Provide(logger.NewConfig, metrics.NewConfig),
//	    fx.Provide(func() (database.Config, error) { return database.LoadConfig("database.yaml") }),
//	    logger.FXModule,
//	    metrics.FXModule,
//	    database.FXModule,
//	)
//
// With type "minio" the *minio.MinioClient of minio.FXModule is used when it
// is present in the container.
var FXModule = fx.Module("database",
	fx.Provide(NewDatabaseWithDI),
	fx.Invoke(RegisterDatabaseLifecycle),
)

// DatabaseParams groups the dependencies of NewDatabaseWithDI.
type DatabaseParams struct {
	fx.In

	Config    Config
	Logger    *logger.Logger           `optional:"true"`
	Observers []observability.Observer `group:"observers"`
	Minio     *minio.MinioClient       `optional:"true"`
}

// DatabaseLifecycleParams groups the dependencies of RegisterDatabaseLifecycle.
type DatabaseLifecycleParams struct {
	fx.In

	Lifecycle fx.Lifecycle
	Database  *memorydb.Database
	Logger    *logger.Logger `optional:"true"`
}

// NewDatabaseWithDI opens the configured database, reporting to every
// observer in the group.
func NewDatabaseWithDI(params DatabaseParams) (*memorydb.Database, error) {
	return open(params.Config, params.Logger, observability.Multi(params.Observers...), params.Minio)
}

// RegisterDatabaseLifecycle closes the database when the application stops.
func RegisterDatabaseLifecycle(params DatabaseLifecycleParams) {
	params.Lifecycle.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			if params.Logger != nil {
				params.Logger.InfoWithContext(ctx, "closing database", nil, map[string]interface{}{
					"tables": params.Database.Tables(),
				})
			}
			return params.Database.Close(ctx)
		},
	})
}
