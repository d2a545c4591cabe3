package worker

import (
	"context"

	"go.uber.org/fx"
)

// Module provides the embedding worker and starts/stops its polling
// loop with the process lifecycle.
var Module = fx.Module("worker",
	fx.Provide(New),
	fx.Invoke(registerLifecycle),
)

func registerLifecycle(lc fx.Lifecycle, w *Worker) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			return w.Start(ctx)
		},
		OnStop: func(ctx context.Context) error {
			return w.Stop(ctx)
		},
	})
}
