// Package migrate runs schema migrations with goose against the
// embedded migrations/ SQL files.
package migrate

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/pressly/goose/v3"
	"github.com/uptrace/bun"
	"go.uber.org/fx"

	"github.com/vectorize-go/vectorize/internal/logger"
	"github.com/vectorize-go/vectorize/migrations"
)

// Module provides the Migrator.
var Module = fx.Module("migrate",
	fx.Provide(NewMigrator),
)

// Migrator runs goose migrations against the embedded SQL files.
type Migrator struct {
	db  *bun.DB
	log *slog.Logger
}

// NewMigrator builds a Migrator.
func NewMigrator(db *bun.DB, log *slog.Logger) *Migrator {
	return &Migrator{db: db, log: log.With(logger.Scope("migrate"))}
}

func (m *Migrator) setup() error {
	goose.SetBaseFS(migrations.FS)
	return goose.SetDialect("postgres")
}

// Up applies all pending migrations.
func (m *Migrator) Up(ctx context.Context) error {
	if err := m.setup(); err != nil {
		return fmt.Errorf("set dialect: %w", err)
	}
	m.log.Info("applying migrations")
	if err := goose.UpContext(ctx, m.db.DB, "."); err != nil {
		return fmt.Errorf("migrate up: %w", err)
	}
	m.log.Info("migrations applied")
	return nil
}

// Down rolls back the most recently applied migration.
func (m *Migrator) Down(ctx context.Context) error {
	if err := m.setup(); err != nil {
		return fmt.Errorf("set dialect: %w", err)
	}
	m.log.Info("rolling back last migration")
	if err := goose.DownContext(ctx, m.db.DB, "."); err != nil {
		return fmt.Errorf("migrate down: %w", err)
	}
	return nil
}

// Status prints the applied/pending state of every migration.
func (m *Migrator) Status(ctx context.Context) error {
	if err := m.setup(); err != nil {
		return fmt.Errorf("set dialect: %w", err)
	}
	return goose.StatusContext(ctx, m.db.DB, ".")
}

// Version returns the current schema version.
func (m *Migrator) Version(ctx context.Context) (int64, error) {
	if err := m.setup(); err != nil {
		return 0, fmt.Errorf("set dialect: %w", err)
	}
	return goose.GetDBVersionContext(ctx, m.db.DB)
}
