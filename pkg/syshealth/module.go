package syshealth

import (
	"context"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/fx"

	"github.com/vectorize-go/vectorize/internal/config"
)

// Module provides the host monitor, a shared metrics registry, and the
// worker concurrency scaler, and starts the sampling loop with the
// process lifecycle.
var Module = fx.Module("syshealth",
	fx.Provide(
		fx.Annotate(NewRegistry, fx.As(new(prometheus.Registerer)), fx.As(new(prometheus.Gatherer))),
		newHostMonitor,
		newMonitor,
		newScaler,
	),
	fx.Invoke(registerLifecycle),
)

// NewRegistry provides the process-wide Prometheus registry, exposed to
// the graph as both Registerer (for metric registration) and Gatherer
// (for the /metrics scrape handler).
func NewRegistry() *prometheus.Registry {
	return prometheus.NewRegistry()
}

func newHostMonitor(log *slog.Logger) *HostMonitor {
	return NewHostMonitor(DefaultConfig(), log)
}

func newMonitor(m *HostMonitor) Monitor {
	return m
}

func newScaler(monitor Monitor, cfg *config.Config) *ConcurrencyScaler {
	return NewConcurrencyScaler(monitor, "embedding-worker",
		cfg.Worker.EnableAdaptiveScaling, cfg.Worker.MinConcurrency, cfg.Worker.MaxConcurrency)
}

func registerLifecycle(lc fx.Lifecycle, monitor *HostMonitor) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			monitor.Start(ctx)
			return nil
		},
		OnStop: func(ctx context.Context) error {
			monitor.Stop()
			return nil
		},
	})
}
