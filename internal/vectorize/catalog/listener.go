package catalog

import (
	"context"
	"log/slog"
	"time"

	"github.com/lib/pq"
	"github.com/uptrace/bun"
	"go.uber.org/fx"

	"github.com/vectorize-go/vectorize/internal/config"
	"github.com/vectorize-go/vectorize/internal/database"
	"github.com/vectorize-go/vectorize/internal/logger"
)

// Listener keeps Cache warm by LISTENing on the catalog change channel
// and reloading the full catalog from Repository whenever a
// notification arrives or the underlying connection reconnects (a
// reconnect can race a missed NOTIFY, so a reload on reconnect as well
// as on notification is required for correctness).
type Listener struct {
	conn    *pq.Listener
	repo    *Repository
	cache   *Cache
	channel string
	log     *slog.Logger

	stopCh chan struct{}
	doneCh chan struct{}
}

// NewListener builds a Listener and registers its Start/Stop with the
// fx lifecycle.
func NewListener(lc fx.Lifecycle, cfg *config.Config, repo *Repository, cache *Cache, log *slog.Logger) *Listener {
	l := &Listener{
		conn:    database.NewListenerConn(cfg, log),
		repo:    repo,
		cache:   cache,
		channel: cfg.Queue.CatalogChannelName,
		log:     log.With(logger.Scope("catalog.listener")),
		stopCh:  make(chan struct{}),
		doneCh:  make(chan struct{}),
	}
	lc.Append(fx.Hook{
		OnStart: l.Start,
		OnStop:  l.Stop,
	})
	return l
}

// Start performs the initial catalog load, subscribes to the change
// channel, and spawns the refresh loop.
func (l *Listener) Start(ctx context.Context) error {
	if err := l.reload(ctx); err != nil {
		return err
	}
	if err := l.conn.Listen(l.channel); err != nil {
		return err
	}
	go l.loop()
	return nil
}

// Stop unsubscribes and closes the listener connection.
func (l *Listener) Stop(ctx context.Context) error {
	close(l.stopCh)
	select {
	case <-l.doneCh:
	case <-ctx.Done():
	}
	return l.conn.Close()
}

func (l *Listener) loop() {
	defer close(l.doneCh)

	// A periodic reload guards against a NOTIFY dropped while the
	// connection was down between the disconnect callback and the
	// reconnect callback firing.
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-l.stopCh:
			return
		case <-ticker.C:
			l.reloadLogged(context.Background())
		case <-l.conn.Notify:
			// A nil notification means pq.Listener has reconnected and a
			// NOTIFY may have been lost meanwhile, so reload either way.
			l.reloadLogged(context.Background())
		case <-time.After(90 * time.Second):
			// Idle wake-up only; the ticker above bounds the time
			// between reloads.
		}
	}
}

func (l *Listener) reloadLogged(ctx context.Context) {
	if err := l.reload(ctx); err != nil {
		l.log.Error("catalog reload failed", logger.Error(err))
	}
}

func (l *Listener) reload(ctx context.Context) error {
	jobs, err := l.repo.ListAll(ctx)
	if err != nil {
		return err
	}
	l.cache.Replace(jobs)
	l.log.Debug("catalog reloaded", slog.Int("jobs", len(jobs)))
	return nil
}

// NewRepositoryFromBun adapts the process-wide bun.DB into the
// catalog Repository's bun.IDB dependency.
func NewRepositoryFromBun(db *bun.DB) *Repository {
	return NewRepository(db)
}

// Module wires the cache, repository, and listener, starting the
// listener's background refresh loop with the process lifecycle.
//
// fx.Invoke forces the Listener to be built even though nothing else
// in the graph takes it as a dependency; without this, NewListener
// would never run and the cache would stay empty forever.
var Module = fx.Module("catalog",
	fx.Provide(
		NewCache,
		NewRepositoryFromBun,
		NewListener,
	),
	fx.Invoke(func(*Listener) {}),
)
