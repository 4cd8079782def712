package tracer

import (
	"context"

	"go.uber.org/fx"

	"github.com/Aleph-Alpha/querykit/v1/observability"
)

// FXModule provides *Tracer, contributes it to the "observers" group and
// flushes pending spans on shutdown.
var FXModule = fx.Module("tracer",
	fx.Provide(
		NewClient,
		fx.Annotate(
			func(t *Tracer) observability.Observer { return t },
			fx.ResultTags(`group:"observers"`),
		),
	),
	fx.Invoke(RegisterTracerLifecycle),
)

// RegisterTracerLifecycle shuts the provider down when the application stops.
func RegisterTracerLifecycle(lc fx.Lifecycle, tracer *Tracer) {
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return tracer.Shutdown(ctx)
		},
	})
}
