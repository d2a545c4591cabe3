// Package jobmanager owns the job lifecycle: validating a job
// definition, provisioning its sidecar tables, indices, project view,
// and (for realtime jobs) triggers, all inside a single transaction
// so a mid-way failure never leaves half-provisioned catalog state
// behind, and the symmetric teardown in DropJob.
package jobmanager

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/uptrace/bun"

	"github.com/vectorize-go/vectorize/internal/apperror"
	"github.com/vectorize-go/vectorize/internal/config"
	"github.com/vectorize-go/vectorize/internal/database"
	"github.com/vectorize-go/vectorize/internal/logger"
	"github.com/vectorize-go/vectorize/internal/vectorize/catalog"
	"github.com/vectorize-go/vectorize/internal/vectorize/changecapture"
	"github.com/vectorize-go/vectorize/internal/vectorize/provider"
	"github.com/vectorize-go/vectorize/internal/vectorize/queue"
	"github.com/vectorize-go/vectorize/internal/vectorize/sqltemplate"
	"github.com/vectorize-go/vectorize/pkg/pgutils"
)

// CreateJobRequest describes a job to initialize. pkey_type is
// deliberately absent: it is resolved server-side from
// information_schema.columns, never taken from the caller.
type CreateJobRequest struct {
	JobName       string
	SrcSchema     string
	SrcTable      string
	SrcColumns    []string // columns concatenated into the embedding input
	PrimaryKey    string
	UpdateTimeCol string
	ModelSource   string
	ModelName     string
	Schedule      string // "realtime" or a cron-style interval handled by changecapture
}

// Manager provisions and tears down vectorize jobs.
type Manager struct {
	db       *bun.DB
	cache    *catalog.Cache
	provider provider.Provider
	scanner  *changecapture.Scanner
	channel  string
	log      *slog.Logger
}

// NewManager builds a Manager.
func NewManager(db *bun.DB, cache *catalog.Cache, prov provider.Provider, cfg *config.Config, log *slog.Logger) *Manager {
	log = log.With(logger.Scope("jobmanager"))
	return &Manager{
		db:       db,
		cache:    cache,
		provider: prov,
		scanner:  changecapture.NewScanner(db, log),
		channel:  cfg.Queue.CatalogChannelName,
		log:      log,
	}
}

// InitializeJob validates req, then provisions its sidecar tables,
// FTS/HNSW indices, project view, a dedicated change-capture queue,
// and — for realtime jobs — INSERT/UPDATE triggers, writing the
// catalog row last so a reader never observes a catalog entry whose
// sidecar objects don't exist yet. After commit, it runs an initial
// backfill over any rows the source table already had: a ScanJob
// pass to enqueue them for embedding, and a synchronous bulk tokens
// upsert so lexical search is immediately complete even before the
// worker catches up on embeddings.
func (m *Manager) InitializeJob(ctx context.Context, req CreateJobRequest) (*catalog.Job, error) {
	if err := validate(req); err != nil {
		return nil, err
	}

	tx, err := database.BeginSafeTx(ctx, m.db)
	if err != nil {
		return nil, fmt.Errorf("begin job init tx: %w", err)
	}
	defer tx.Rollback()

	dim, err := m.provider.Dim(ctx, req.ModelName)
	if err != nil {
		return nil, apperror.ErrInternal.WithInternal(fmt.Errorf("probe embedding dimension for model %q: %w", req.ModelName, err))
	}

	pkeyType, err := resolvePkeyType(ctx, tx, req.SrcSchema, req.SrcTable, req.PrimaryKey)
	if err != nil {
		return nil, err
	}

	statements := []string{
		sqltemplate.CreateSchema(),
		sqltemplate.CreateEmbeddingTable(req.JobName, req.PrimaryKey, pkeyType, req.SrcSchema, req.SrcTable, dim),
		sqltemplate.CreateSearchTokensTable(req.JobName, req.PrimaryKey, pkeyType, req.SrcSchema, req.SrcTable),
		sqltemplate.CreateHNSWIndex(req.JobName, sqltemplate.HNSWCosine),
		sqltemplate.CreateFTSIndex(req.JobName),
		sqltemplate.CreateProjectView(req.JobName, req.SrcSchema, req.SrcTable, req.PrimaryKey),
		queue.CreateTableSQL(req.JobName),
	}

	if isRealtime(req.Schedule) {
		statements = append(statements,
			sqltemplate.CreateTriggerFunction(req.JobName, req.PrimaryKey, queue.TableName(req.JobName)),
			sqltemplate.CreateInsertUpdateTriggers(req.JobName, req.SrcSchema, req.SrcTable, req.SrcColumns),
		)
	}

	for _, stmt := range statements {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return nil, apperror.ErrDatabase.WithInternal(fmt.Errorf("provision job %q: %w", req.JobName, err))
		}
	}

	job := &catalog.Job{
		JobName:       req.JobName,
		SrcSchema:     req.SrcSchema,
		SrcTable:      req.SrcTable,
		SrcColumn:     joinColumns(req.SrcColumns),
		PrimaryKey:    req.PrimaryKey,
		PkeyType:      pkeyType,
		UpdateTimeCol: req.UpdateTimeCol,
		ModelSource:   req.ModelSource,
		ModelName:     req.ModelName,
		Dimension:     dim,
		Schedule:      defaultSchedule(req.Schedule),
	}

	repo := catalog.NewRepository(tx)
	if err := repo.Insert(ctx, job); err != nil {
		return nil, apperror.ErrDatabase.WithInternal(err)
	}
	if err := repo.Notify(ctx, m.channel, string(catalog.ChangeInsert)+":"+job.JobName); err != nil {
		return nil, apperror.ErrDatabase.WithInternal(err)
	}

	if err := tx.Commit(); err != nil {
		return nil, apperror.ErrDatabase.WithInternal(fmt.Errorf("commit job init: %w", err))
	}

	m.cache.Put(job)
	m.log.Info("job initialized",
		slog.String("job_name", job.JobName),
		slog.String("model", job.Model().String()),
		slog.Bool("realtime", job.IsRealtime()),
	)

	m.backfill(ctx, job, req.SrcColumns)

	return job, nil
}

// backfill runs outside the provisioning transaction: a ScanJob pass
// to enqueue every pre-existing row for embedding, and a single bulk
// upsert of the tokens sidecar over the whole source table. Both
// steps are retryable — a failure here leaves the catalog state
// already committed and consistent (a scheduled job's next scan picks
// up any missed rows; a realtime job is not rescanned, so its missed
// rows wait for their next INSERT or UPDATE), so errors are logged
// rather than returned.
func (m *Manager) backfill(ctx context.Context, job *catalog.Job, srcColumns []string) {
	if _, err := m.scanner.ScanJob(ctx, job); err != nil {
		m.log.Error("initial backfill scan failed", slog.String("job_name", job.JobName), logger.Error(err))
	}

	query := sqltemplate.BulkUpsertTokensQuery(job.JobName, job.PrimaryKey, job.SrcSchema, job.SrcTable, srcColumns)
	if _, err := m.db.ExecContext(ctx, query); err != nil {
		m.log.Error("initial tokens backfill failed", slog.String("job_name", job.JobName), logger.Error(err))
	}
}

// resolvePkeyType looks up the Postgres type of the primary key
// column directly from information_schema rather than trusting a
// caller-supplied type string, so CreateEmbeddingTable's foreign key
// always references a column that actually exists with the type
// recorded on the catalog row.
func resolvePkeyType(ctx context.Context, tx bun.IDB, schema, table, column string) (string, error) {
	var dataType string
	err := tx.NewSelect().
		ColumnExpr("data_type").
		TableExpr("information_schema.columns").
		Where("table_schema = ?", schema).
		Where("table_name = ?", table).
		Where("column_name = ?", column).
		Scan(ctx, &dataType)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", apperror.NewNotFound("column", fmt.Sprintf("%s.%s.%s", schema, table, column))
		}
		return "", apperror.ErrDatabase.WithInternal(fmt.Errorf("resolve pkey type: %w", err))
	}
	return dataType, nil
}

// DropJob tears down every object InitializeJob created, in reverse
// dependency order: triggers before the tables they write to, the
// project view before the tables it joins, and the catalog row last
// so a concurrent reader never sees a catalog entry for a job whose
// sidecar objects have already been dropped.
func (m *Manager) DropJob(ctx context.Context, jobName string) error {
	tx, err := database.BeginSafeTx(ctx, m.db)
	if err != nil {
		return fmt.Errorf("begin job drop tx: %w", err)
	}
	defer tx.Rollback()

	repo := catalog.NewRepository(tx)
	job, err := repo.GetByName(ctx, jobName)
	if err != nil {
		return err
	}

	statements := []string{
		sqltemplate.DropTriggers(job.JobName, job.SrcSchema, job.SrcTable),
		sqltemplate.DropProjectView(job.JobName),
		sqltemplate.DropJobTables(job.JobName),
		fmt.Sprintf("DROP TABLE IF EXISTS %s.%s;", sqltemplate.Schema, queue.TableName(job.JobName)),
	}
	for _, stmt := range statements {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return apperror.ErrDatabase.WithInternal(fmt.Errorf("teardown job %q: %w", jobName, err))
		}
	}

	if err := repo.Delete(ctx, jobName); err != nil {
		return err
	}
	if err := repo.Notify(ctx, m.channel, string(catalog.ChangeDelete)+":"+jobName); err != nil {
		return apperror.ErrDatabase.WithInternal(err)
	}

	if err := tx.Commit(); err != nil {
		return apperror.ErrDatabase.WithInternal(fmt.Errorf("commit job drop: %w", err))
	}

	m.cache.Remove(jobName)
	m.log.Info("job dropped", slog.String("job_name", jobName))
	return nil
}

func validate(req CreateJobRequest) error {
	for _, ident := range append([]string{req.JobName, req.SrcSchema, req.SrcTable, req.PrimaryKey}, req.SrcColumns...) {
		if err := pgutils.CheckInput(ident); err != nil {
			return apperror.NewBadRequest(err.Error())
		}
	}
	if req.UpdateTimeCol != "" {
		if err := pgutils.CheckInput(req.UpdateTimeCol); err != nil {
			return apperror.NewBadRequest(err.Error())
		}
	}
	if len(req.SrcColumns) == 0 {
		return apperror.NewBadRequest("at least one source column is required")
	}
	if req.ModelName == "" {
		return apperror.NewBadRequest("model name is required")
	}
	return nil
}

func isRealtime(schedule string) bool {
	return schedule == "" || schedule == catalog.ScheduleRealtime
}

func defaultSchedule(schedule string) string {
	if schedule == "" {
		return catalog.ScheduleRealtime
	}
	return schedule
}

func joinColumns(cols []string) string {
	out := ""
	for i, c := range cols {
		if i > 0 {
			out += ","
		}
		out += c
	}
	return out
}
