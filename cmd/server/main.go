// Package main is the entry point for the vectorize HTTP API: job
// lifecycle management and hybrid search.
package main

import (
	"log/slog"

	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"

	"github.com/vectorize-go/vectorize/internal/config"
	"github.com/vectorize-go/vectorize/internal/database"
	"github.com/vectorize-go/vectorize/internal/logger"
	"github.com/vectorize-go/vectorize/internal/server"
	"github.com/vectorize-go/vectorize/internal/tracing"
	"github.com/vectorize-go/vectorize/internal/vectorize/catalog"
	"github.com/vectorize-go/vectorize/internal/vectorize/httpapi"
	"github.com/vectorize-go/vectorize/internal/vectorize/jobmanager"
	"github.com/vectorize-go/vectorize/internal/vectorize/provider"
	"github.com/vectorize-go/vectorize/internal/vectorize/search"
	"github.com/vectorize-go/vectorize/pkg/syshealth"
)

func main() {
	fx.New(
		fx.WithLogger(func(log *slog.Logger) fxevent.Logger {
			return &fxevent.SlogLogger{Logger: log}
		}),

		logger.Module,
		config.Module,
		database.Module,
		syshealth.Module,
		tracing.Module,

		catalog.Module,
		provider.Module,
		jobmanager.Module,
		search.Module,

		server.Module,
		httpapi.Module,
	).Run()
}
