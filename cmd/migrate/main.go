// Package main runs schema migrations against the configured database.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"go.uber.org/fx"

	"github.com/vectorize-go/vectorize/internal/config"
	"github.com/vectorize-go/vectorize/internal/database"
	"github.com/vectorize-go/vectorize/internal/logger"
	"github.com/vectorize-go/vectorize/internal/migrate"
)

func main() {
	down := flag.Bool("down", false, "roll back the most recent migration instead of applying pending ones")
	status := flag.Bool("status", false, "print migration status and exit")
	flag.Parse()

	app := fx.New(
		fx.NopLogger,

		logger.Module,
		config.Module,
		database.Module,
		migrate.Module,

		fx.Invoke(func(lc fx.Lifecycle, m *migrate.Migrator) {
			lc.Append(fx.Hook{
				OnStart: func(ctx context.Context) error {
					switch {
					case *status:
						return m.Status(ctx)
					case *down:
						return m.Down(ctx)
					default:
						return m.Up(ctx)
					}
				},
			})
		}),
	)

	ctx := context.Background()
	if err := app.Start(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "migrate:", err)
		os.Exit(1)
	}
	_ = app.Stop(ctx)
}
