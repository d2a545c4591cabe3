package database

import (
	"log/slog"
	"time"

	"github.com/lib/pq"

	"github.com/vectorize-go/vectorize/internal/config"
	"github.com/vectorize-go/vectorize/internal/logger"
)

// NewListenerConn creates a dedicated lib/pq LISTEN/NOTIFY connection,
// separate from the hot pgxpool, so a long-lived LISTEN session never
// pins a worker-pool connection. Reconnects are handled internally by
// pq.Listener with exponential backoff from minReconnectInterval to
// maxReconnectInterval, matching the 1s-to-60s cap the catalog cache
// listener is specified to use.
func NewListenerConn(cfg *config.Config, log *slog.Logger) *pq.Listener {
	log = log.With(logger.Scope("catalog.listener"))

	const (
		minReconnectInterval = time.Second
		maxReconnectInterval = 60 * time.Second
	)

	eventCb := func(ev pq.ListenerEventType, err error) {
		switch ev {
		case pq.ListenerEventDisconnected:
			log.Warn("listener disconnected", logger.Error(err))
		case pq.ListenerEventReconnected:
			log.Info("listener reconnected")
		case pq.ListenerEventConnectionAttemptFailed:
			log.Warn("listener reconnect attempt failed", logger.Error(err))
		}
	}

	return pq.NewListener(cfg.Database.DSN(), minReconnectInterval, maxReconnectInterval, eventCb)
}
