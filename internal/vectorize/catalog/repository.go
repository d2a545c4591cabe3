package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/vectorize-go/vectorize/internal/apperror"
)

// errJobNotFound builds a not-found error scoped to a job name.
func errJobNotFound(name string) *apperror.Error {
	return apperror.NewNotFound("vectorize job", name)
}

// Repository reads and writes the catalog table directly. Callers that
// only need to read should generally prefer Cache, which is kept warm
// by Listener instead of hitting Postgres on every lookup.
type Repository struct {
	db bun.IDB
}

// NewRepository builds a Repository over db, which may be a *bun.DB or
// a *database.SafeTx when the caller needs catalog writes inside a
// larger transaction (job initialization writes the catalog row and
// creates the sidecar tables atomically).
func NewRepository(db bun.IDB) *Repository {
	return &Repository{db: db}
}

// Insert writes a new catalog row, assigning an ID if one is not set.
func (r *Repository) Insert(ctx context.Context, job *Job) error {
	if job.ID == uuid.Nil {
		job.ID = uuid.New()
	}
	now := time.Now().UTC()
	job.CreatedAt = now
	job.UpdatedAt = now

	_, err := r.db.NewInsert().Model(job).Exec(ctx)
	if err != nil {
		return fmt.Errorf("insert job %q: %w", job.JobName, err)
	}
	return nil
}

// GetByName fetches a single job by name.
func (r *Repository) GetByName(ctx context.Context, name string) (*Job, error) {
	job := new(Job)
	err := r.db.NewSelect().Model(job).Where("job_name = ?", name).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errJobNotFound(name)
	}
	if err != nil {
		return nil, fmt.Errorf("select job %q: %w", name, err)
	}
	return job, nil
}

// ListAll returns every catalog row, used to seed the in-memory cache.
func (r *Repository) ListAll(ctx context.Context) ([]*Job, error) {
	var jobs []*Job
	if err := r.db.NewSelect().Model(&jobs).Scan(ctx); err != nil {
		return nil, fmt.Errorf("list jobs: %w", err)
	}
	return jobs, nil
}

// Delete removes a catalog row by name.
func (r *Repository) Delete(ctx context.Context, name string) error {
	res, err := r.db.NewDelete().Model((*Job)(nil)).Where("job_name = ?", name).Exec(ctx)
	if err != nil {
		return fmt.Errorf("delete job %q: %w", name, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected for delete %q: %w", name, err)
	}
	if n == 0 {
		return errJobNotFound(name)
	}
	return nil
}

// Notify sends a catalog change notification on channel so every
// listening process can refresh its cache. channel must already be a
// validated identifier; payload is passed through pg_notify's second
// argument so it is never interpolated into SQL text.
func (r *Repository) Notify(ctx context.Context, channel string, payload string) error {
	_, err := r.db.NewRaw("SELECT pg_notify(?, ?)", channel, payload).Exec(ctx)
	if err != nil {
		return fmt.Errorf("notify %q: %w", channel, err)
	}
	return nil
}
