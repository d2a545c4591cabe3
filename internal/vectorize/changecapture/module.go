package changecapture

import (
	"context"

	"go.uber.org/fx"
)

// Module provides the scan-based change capture scanner and cron
// registrar, and starts/stops the registrar with the process lifecycle.
var Module = fx.Module("changecapture",
	fx.Provide(NewScanner, NewScheduleRegistrar),
	fx.Invoke(registerLifecycle),
)

func registerLifecycle(lc fx.Lifecycle, registrar *ScheduleRegistrar) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			return registrar.Start(ctx)
		},
		OnStop: func(ctx context.Context) error {
			return registrar.Stop(ctx)
		},
	})
}
