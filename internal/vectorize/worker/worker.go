// Package worker dequeues change-capture messages, generates
// embeddings and lexical tokens for the referenced row, and writes
// both sidecars, following the same polling-loop-plus-bounded-
// concurrency shape the teacher uses for its own embedding workers.
package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/vectorize-go/vectorize/internal/config"
	"github.com/vectorize-go/vectorize/internal/logger"
	"github.com/vectorize-go/vectorize/internal/tracing"
	"github.com/vectorize-go/vectorize/internal/vectorize/catalog"
	"github.com/vectorize-go/vectorize/internal/vectorize/changecapture"
	"github.com/vectorize-go/vectorize/internal/vectorize/provider"
	"github.com/vectorize-go/vectorize/internal/vectorize/queue"
	"github.com/vectorize-go/vectorize/internal/vectorize/sqltemplate"
	"github.com/vectorize-go/vectorize/pkg/pgutils"
	"github.com/vectorize-go/vectorize/pkg/syshealth"
)

// Worker polls every job's change-capture queue and embeds the
// referenced rows.
type Worker struct {
	db     *bun.DB
	prov   provider.Provider
	cache  *catalog.Cache
	cfg    *config.WorkerConfig
	qcfg   *config.QueueConfig
	scaler *syshealth.ConcurrencyScaler
	log    *slog.Logger

	stopCh    chan struct{}
	stoppedCh chan struct{}
	running   bool
	mu        sync.Mutex
	wg        sync.WaitGroup

	metrics *metrics
}

type metrics struct {
	processed prometheus.Counter
	succeeded prometheus.Counter
	failed    prometheus.Counter
	batchSize prometheus.Histogram
}

func newMetrics(reg prometheus.Registerer) *metrics {
	m := &metrics{
		processed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "vectorize_worker_messages_processed_total",
			Help: "Total change-capture messages processed by the embedding worker.",
		}),
		succeeded: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "vectorize_worker_messages_succeeded_total",
			Help: "Total change-capture messages embedded successfully.",
		}),
		failed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "vectorize_worker_messages_failed_total",
			Help: "Total change-capture messages that failed embedding.",
		}),
		batchSize: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "vectorize_worker_batch_size",
			Help:    "Number of messages dequeued per poll across all jobs.",
			Buckets: prometheus.ExponentialBuckets(1, 2, 10),
		}),
	}
	if reg != nil {
		reg.MustRegister(m.processed, m.succeeded, m.failed, m.batchSize)
	}
	return m
}

// New builds a Worker.
func New(db *bun.DB, prov provider.Provider, cache *catalog.Cache, cfg *config.Config, scaler *syshealth.ConcurrencyScaler, reg prometheus.Registerer, log *slog.Logger) *Worker {
	return &Worker{
		db:      db,
		prov:    prov,
		cache:   cache,
		cfg:     &cfg.Worker,
		qcfg:    &cfg.Queue,
		scaler:  scaler,
		log:     log.With(logger.Scope("vectorize.worker")),
		metrics: newMetrics(reg),
	}
}

// Start begins the polling loop.
func (w *Worker) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = true
	w.stopCh = make(chan struct{})
	w.stoppedCh = make(chan struct{})
	w.mu.Unlock()

	w.log.Info("worker starting",
		slog.Duration("poll_interval", w.cfg.PollInterval),
		slog.Int("batch_size", w.cfg.BatchSize))

	w.wg.Add(1)
	go w.run(ctx)
	return nil
}

// Stop gracefully stops the worker, waiting for the in-flight batch.
func (w *Worker) Stop(ctx context.Context) error {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = false
	close(w.stopCh)
	w.mu.Unlock()

	select {
	case <-w.stoppedCh:
		w.log.Info("worker stopped gracefully")
	case <-ctx.Done():
		w.log.Warn("worker stop timeout, forcing shutdown")
	}
	return nil
}

func (w *Worker) run(ctx context.Context) {
	defer w.wg.Done()
	defer close(w.stoppedCh)

	ticker := time.NewTicker(w.cfg.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-w.stopCh:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.pollAllJobs(ctx)
		}
	}
}

// pollAllJobs dequeues a batch from every cached job's queue and
// processes each batch with bounded concurrency.
func (w *Worker) pollAllJobs(ctx context.Context) {
	concurrency := w.cfg.Concurrency
	if w.cfg.EnableAdaptiveScaling && w.scaler != nil {
		concurrency = w.scaler.GetConcurrency(w.cfg.Concurrency)
	}
	if concurrency <= 0 {
		concurrency = 1
	}
	sem := make(chan struct{}, concurrency)
	var wg sync.WaitGroup

	for _, job := range w.cache.All() {
		q, err := queue.New(w.db, job.JobName)
		if err != nil {
			w.log.Warn("skipping job with invalid queue name", slog.String("job_name", job.JobName), logger.Error(err))
			continue
		}

		msgs, err := q.Read(ctx, w.cfg.BatchSize, w.qcfg.VisibilityTimeout)
		if err != nil {
			w.log.Warn("dequeue failed", slog.String("job_name", job.JobName), logger.Error(err))
			continue
		}
		if len(msgs) == 0 {
			continue
		}
		w.metrics.batchSize.Observe(float64(len(msgs)))

		for _, msg := range msgs {
			sem <- struct{}{}
			wg.Add(1)
			go func(job *catalog.Job, q *queue.Queue, msg *queue.Message) {
				defer wg.Done()
				defer func() { <-sem }()
				w.processMessage(ctx, job, q, msg)
			}(job, q, msg)
		}
	}
	wg.Wait()
}

func (w *Worker) processMessage(ctx context.Context, job *catalog.Job, q *queue.Queue, msg *queue.Message) {
	ctx, span := tracing.Start(ctx, "vectorize.worker.embed",
		attribute.String("vectorize.job_name", job.JobName),
	)
	defer span.End()

	w.metrics.processed.Inc()

	// A message read more than MaxRetries times is discarded without
	// embedding, so a permanently broken row never wedges the queue.
	if msg.ReadCount > w.cfg.MaxRetries {
		w.giveUp(ctx, q, msg)
		return
	}

	var payload changecapture.ScanMessage
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		w.recordFailure(span, "decode message", err)
		w.log.Error("failed to decode message", slog.Int64("msg_id", msg.ID), logger.Error(err))
		w.giveUp(ctx, q, msg)
		return
	}

	texts, err := w.fetchSourceTexts(ctx, job, payload.RecordIDs)
	if err != nil {
		w.fail(ctx, span, q, msg, fmt.Errorf("fetch source rows: %w", err))
		return
	}

	// Rows missing from texts were deleted between enqueue and
	// processing; the cascade on the embedding sidecar's foreign key
	// already cleaned those up, so only the survivors need embedding.
	ids := make([]string, 0, len(payload.RecordIDs))
	inputs := make([]string, 0, len(payload.RecordIDs))
	for _, id := range payload.RecordIDs {
		if text, ok := texts[id]; ok {
			ids = append(ids, id)
			inputs = append(inputs, text)
		}
	}
	if len(ids) == 0 {
		w.archive(ctx, q, msg)
		return
	}

	embeddings, err := w.prov.Embed(ctx, inputs, provider.TaskDocument)
	if err != nil || len(embeddings) != len(inputs) {
		if err == nil {
			err = fmt.Errorf("expected %d embeddings, got %d", len(inputs), len(embeddings))
		}
		w.fail(ctx, span, q, msg, fmt.Errorf("generate embeddings: %w", err))
		return
	}

	embeddingQuery := sqltemplate.InsertEmbeddingQuery(job.JobName, job.PrimaryKey)
	tokensQuery := sqltemplate.UpsertTokensQuery(job.JobName, job.PrimaryKey, job.SrcSchema, job.SrcTable, splitColumns(job.SrcColumn))
	for i, id := range ids {
		if _, err := w.db.ExecContext(ctx, embeddingQuery, id, pgutils.FormatVector(embeddings[i])); err != nil {
			w.fail(ctx, span, q, msg, fmt.Errorf("write embedding for %q: %w", id, err))
			return
		}
		if _, err := w.db.ExecContext(ctx, tokensQuery, id); err != nil {
			w.fail(ctx, span, q, msg, fmt.Errorf("write search tokens for %q: %w", id, err))
			return
		}
	}

	w.archive(ctx, q, msg)
	w.metrics.succeeded.Inc()
	span.SetStatus(codes.Ok, "")
}

// fetchSourceTexts fetches every record id's embedding input in a
// single parameterized query, yielding (record_id, input_text) pairs
// rather than one round trip per id. A record id absent from the
// returned map means its source row no longer exists.
func (w *Worker) fetchSourceTexts(ctx context.Context, job *catalog.Job, recordIDs []string) (map[string]string, error) {
	if len(recordIDs) == 0 {
		return nil, nil
	}

	type row struct {
		RecordID string `bun:"record_id"`
		Text     string `bun:"input_text"`
	}

	query := fmt.Sprintf(`SELECT %[1]s::text AS record_id, %[2]s AS input_text FROM %[3]s.%[4]s WHERE %[1]s::text = ANY(?)`,
		job.PrimaryKey, concatColumns(splitColumns(job.SrcColumn)), job.SrcSchema, job.SrcTable)

	var rows []row
	if err := w.db.NewRaw(query, pgdialect.Array(recordIDs)).Scan(ctx, &rows); err != nil {
		return nil, err
	}

	out := make(map[string]string, len(rows))
	for _, r := range rows {
		out[r.RecordID] = r.Text
	}
	return out, nil
}

func (w *Worker) recordFailure(span trace.Span, msg string, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, msg+": "+err.Error())
}

func (w *Worker) fail(ctx context.Context, span trace.Span, q *queue.Queue, msg *queue.Message, err error) {
	w.recordFailure(span, "process message", err)
	w.log.Warn("failed to process message", slog.Int64("msg_id", msg.ID), logger.Error(err))
	w.metrics.failed.Inc()

	// Leave the message in place; its visibility timeout will expire
	// and it will be redelivered on a future poll, where processMessage
	// discards it once its read count exceeds MaxRetries.
}

func (w *Worker) archive(ctx context.Context, q *queue.Queue, msg *queue.Message) {
	if err := q.Archive(ctx, msg.ID); err != nil {
		w.log.Error("failed to archive message", slog.Int64("msg_id", msg.ID), logger.Error(err))
	}
}

func (w *Worker) giveUp(ctx context.Context, q *queue.Queue, msg *queue.Message) {
	w.log.Warn("discarding message after exceeding max read count", slog.Int64("msg_id", msg.ID))
	if err := q.Archive(ctx, msg.ID); err != nil {
		w.log.Error("failed to archive exhausted message", slog.Int64("msg_id", msg.ID), logger.Error(err))
	}
}

func splitColumns(concat string) []string {
	return strings.Split(concat, ",")
}

func concatColumns(cols []string) string {
	return strings.Join(cols, " || ' ' || ")
}
