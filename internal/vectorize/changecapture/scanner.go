// Package changecapture detects rows that need a (re)embedding. For
// realtime jobs that work is done by the INSERT/UPDATE triggers
// provisioned at job init, which enqueue directly; this package
// covers the other half: scheduled jobs, whose rows are discovered by
// periodically scanning the source table for primary keys missing
// from (or stale relative to) the embedding sidecar. The same scan
// also runs once when a job is created, to backfill its existing rows;
// realtime jobs are not scanned again after that.
package changecapture

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/uptrace/bun"

	"github.com/vectorize-go/vectorize/internal/logger"
	"github.com/vectorize-go/vectorize/internal/vectorize/catalog"
	"github.com/vectorize-go/vectorize/internal/vectorize/queue"
	"github.com/vectorize-go/vectorize/internal/vectorize/sqltemplate"
)

// maxBatchRecordIDs caps a single scan's enqueue batch so one
// enormous backlog can't block the scan loop for an entire cycle.
const maxBatchRecordIDs = 10000

// ScanMessage is the change-capture queue payload a scan or trigger
// enqueues; the worker dequeues exactly this shape regardless of
// which path produced it. RecordIDs is batched — a trigger enqueues a
// one-element slice per row change, a scan enqueues up to
// maxBatchRecordIDs per message — so the worker always fetches and
// embeds a message's record ids together in one round trip.
type ScanMessage struct {
	JobName   string   `json:"job_name"`
	RecordIDs []string `json:"record_ids"`
}

// Scanner finds rows in a job's source table that need an embedding
// and enqueues them onto that job's change-capture queue.
type Scanner struct {
	db  bun.IDB
	log *slog.Logger
}

// NewScanner builds a Scanner.
func NewScanner(db bun.IDB, log *slog.Logger) *Scanner {
	return &Scanner{db: db, log: log.With(logger.Scope("changecapture.scanner"))}
}

// ScanResult summarizes one scan pass over a job's source table.
type ScanResult struct {
	JobName  string
	Enqueued int
}

// ScanJob finds primary keys in job's source table that have no
// corresponding row in the embedding sidecar, or whose source row was
// updated more recently than the sidecar's updated_at, and enqueues
// them as ScanMessages, partitioned into batches of at most
// maxBatchRecordIDs record ids each so the worker can fetch and embed
// a whole batch in one round trip instead of one row at a time.
func (s *Scanner) ScanJob(ctx context.Context, job *catalog.Job) (ScanResult, error) {
	q, err := queue.New(s.db, job.JobName)
	if err != nil {
		return ScanResult{}, fmt.Errorf("build queue for job %q: %w", job.JobName, err)
	}

	ids, err := s.findGapIDs(ctx, job)
	if err != nil {
		return ScanResult{}, fmt.Errorf("scan job %q: %w", job.JobName, err)
	}

	enqueued := 0
	for i := 0; i < len(ids); i += maxBatchRecordIDs {
		batch := ids[i:min(i+maxBatchRecordIDs, len(ids))]
		if _, err := q.Send(ctx, ScanMessage{JobName: job.JobName, RecordIDs: batch}); err != nil {
			s.log.Warn("failed to enqueue scan batch",
				slog.String("job_name", job.JobName), slog.Int("batch_size", len(batch)), logger.Error(err))
			continue
		}
		enqueued += len(batch)
	}

	if enqueued > 0 {
		s.log.Info("scan enqueued records",
			slog.String("job_name", job.JobName), slog.Int("count", enqueued))
	}

	return ScanResult{JobName: job.JobName, Enqueued: enqueued}, nil
}

// findGapIDs returns every primary key that is
// missing an embedding sidecar row, or whose sidecar is stale relative
// to the source's update-time column when the job tracks one.
func (s *Scanner) findGapIDs(ctx context.Context, job *catalog.Job) ([]string, error) {
	embeddingTable := sqltemplate.EmbeddingTableName(job.JobName)

	staleClause := ""
	if job.UpdateTimeCol != "" {
		staleClause = fmt.Sprintf("OR t0.%s > e.updated_at", job.UpdateTimeCol)
	}

	query := fmt.Sprintf(`
SELECT t0.%[1]s::text
FROM %[2]s.%[3]s t0
LEFT JOIN %[4]s.%[5]s e ON e.%[1]s = t0.%[1]s
WHERE e.%[1]s IS NULL %[6]s
ORDER BY t0.%[1]s`,
		job.PrimaryKey, job.SrcSchema, job.SrcTable, sqltemplate.Schema, embeddingTable, staleClause,
	)

	var ids []string
	if err := s.db.NewRaw(query).Scan(ctx, &ids); err != nil {
		return nil, err
	}
	return ids, nil
}
