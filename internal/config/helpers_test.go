package config

import (
	"log/slog"

	"github.com/vectorize-go/vectorize/internal/logger"
)

func testLogger() *slog.Logger {
	return logger.NewLogger()
}
