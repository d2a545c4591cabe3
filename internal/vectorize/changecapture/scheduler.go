package changecapture

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/robfig/cron/v3"

	"github.com/vectorize-go/vectorize/internal/logger"
	"github.com/vectorize-go/vectorize/internal/vectorize/catalog"
)

// ScheduleRegistrar attaches a Scanner to a cron.Cron instance, with
// one scan task per job added and removed by job name through Register
// and Unregister, the same add/remove-by-task-name idiom the teacher's
// Scheduler wraps around robfig/cron. Start registers the scheduled
// jobs in the cache at that moment; jobs added to the catalog later
// are not registered unless Register is called for them.
type ScheduleRegistrar struct {
	cron    *cron.Cron
	scanner *Scanner
	cache   *catalog.Cache
	log     *slog.Logger

	mu      sync.Mutex
	entries map[string]cron.EntryID // job name -> registered cron entry
}

// NewScheduleRegistrar builds a ScheduleRegistrar backed by a
// seconds-resolution cron instance, matching the teacher's
// cron.WithSeconds() scheduler so interval expressions like
// "@every 30s" are supported.
func NewScheduleRegistrar(scanner *Scanner, cache *catalog.Cache, log *slog.Logger) *ScheduleRegistrar {
	return &ScheduleRegistrar{
		cron:    cron.New(cron.WithSeconds()),
		scanner: scanner,
		cache:   cache,
		log:     log.With(logger.Scope("changecapture.scheduler")),
		entries: make(map[string]cron.EntryID),
	}
}

// Start begins the cron scheduler and registers every non-realtime
// job currently in the catalog cache.
func (r *ScheduleRegistrar) Start(ctx context.Context) error {
	for _, job := range r.cache.All() {
		if !job.IsRealtime() {
			if err := r.Register(job); err != nil {
				r.log.Warn("failed to register scan schedule", slog.String("job_name", job.JobName), logger.Error(err))
			}
		}
	}
	r.cron.Start()
	return nil
}

// Stop drains running cron jobs and stops the scheduler.
func (r *ScheduleRegistrar) Stop(ctx context.Context) error {
	stopCtx := r.cron.Stop()
	select {
	case <-stopCtx.Done():
	case <-ctx.Done():
	}
	return nil
}

// Register schedules a scan task for job. If a task is already
// registered for this job name, it is replaced.
func (r *ScheduleRegistrar) Register(job *catalog.Job) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if id, ok := r.entries[job.JobName]; ok {
		r.cron.Remove(id)
		delete(r.entries, job.JobName)
	}

	if job.IsRealtime() {
		return nil
	}

	spec := job.Schedule
	id, err := r.cron.AddFunc(spec, func() {
		current, ok := r.cache.Get(job.JobName)
		if !ok {
			return
		}
		if _, err := r.scanner.ScanJob(context.Background(), current); err != nil {
			r.log.Error("scheduled scan failed", slog.String("job_name", job.JobName), logger.Error(err))
		}
	})
	if err != nil {
		return fmt.Errorf("schedule job %q with spec %q: %w", job.JobName, spec, err)
	}

	r.entries[job.JobName] = id
	return nil
}

// Unregister removes job's scheduled scan task, if any.
func (r *ScheduleRegistrar) Unregister(jobName string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if id, ok := r.entries[jobName]; ok {
		r.cron.Remove(id)
		delete(r.entries, jobName)
	}
}
