// Package search implements reciprocal-rank-fusion hybrid search over
// a job's embedding and lexical-tokens sidecars, reading job metadata
// from the catalog cache with a database fallback on a cache miss —
// the same cache-then-fallback shape the original search endpoint
// uses its in-memory job map for.
package search

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/uptrace/bun"

	"github.com/vectorize-go/vectorize/internal/apperror"
	"github.com/vectorize-go/vectorize/internal/logger"
	"github.com/vectorize-go/vectorize/internal/tracing"
	"github.com/vectorize-go/vectorize/internal/vectorize/catalog"
	"github.com/vectorize-go/vectorize/internal/vectorize/provider"
	"github.com/vectorize-go/vectorize/internal/vectorize/sqltemplate"
	"github.com/vectorize-go/vectorize/pkg/mathutil"
	"github.com/vectorize-go/vectorize/pkg/pgutils"
)

const (
	defaultLimit      = 10
	maxLimit          = 200
	defaultWindowMult = 5
	maxWindowSize     = 2000
	defaultRRFK       = 60.0
	defaultSemanticWt = 1.0
	defaultFTSWt      = 1.0
)

// Request is a single hybrid-search request.
type Request struct {
	JobName    string
	Query      string
	WindowSize int
	Limit      int
	RRFK       float64
	SemanticWt float64
	FTSWt      float64
	Filters    []Filter
	ReturnCols []string // projected into each Result's Record object; defaults to every source column
}

// ApplyDefaults fills zero-valued fields with the original endpoint's
// defaults: limit 10, window size 5x the limit, rrf_k 60, and equal
// 1.0 weights for each side of the fusion. Limit and window size are
// also capped so a caller can't force an unbounded candidate scan.
func (r *Request) ApplyDefaults() {
	r.Limit = mathutil.ClampLimit(r.Limit, defaultLimit, maxLimit)
	if r.WindowSize <= 0 {
		r.WindowSize = defaultWindowMult * r.Limit
	}
	r.WindowSize = mathutil.ClampLimit(r.WindowSize, defaultWindowMult*r.Limit, maxWindowSize)
	if r.RRFK <= 0 {
		r.RRFK = defaultRRFK
	}
	if r.SemanticWt <= 0 {
		r.SemanticWt = defaultSemanticWt
	}
	if r.FTSWt <= 0 {
		r.FTSWt = defaultFTSWt
	}
}

// Result is a single fused search hit. Record is the JSON object built
// from the source row's return_cols columns, matching the hybrid
// search endpoint's contract of returning full row objects rather
// than bare (record_id, score) pairs.
type Result struct {
	RecordID string          `bun:"record_id"`
	Score    float64         `bun:"score"`
	Record   json.RawMessage `bun:"result"`
}

// Service executes hybrid searches.
type Service struct {
	db    *bun.DB
	cache *catalog.Cache
	prov  provider.Provider
	log   *slog.Logger
}

// NewService builds a Service.
func NewService(db *bun.DB, cache *catalog.Cache, prov provider.Provider, log *slog.Logger) *Service {
	return &Service{db: db, cache: cache, prov: prov, log: log.With(logger.Scope("search"))}
}

// Search runs a hybrid search for req, resolving the job from the
// catalog cache and falling back to a direct database read (with a
// cache write-through) on a miss.
func (s *Service) Search(ctx context.Context, req Request) ([]Result, error) {
	ctx, span := tracing.Start(ctx, "vectorize.search")
	defer span.End()

	req.ApplyDefaults()

	if err := pgutils.CheckInput(req.JobName); err != nil {
		return nil, apperror.NewBadRequest(err.Error())
	}

	job, err := s.resolveJob(ctx, req.JobName)
	if err != nil {
		return nil, err
	}

	queryEmbeddings, err := s.prov.Embed(ctx, []string{req.Query}, provider.TaskQuery)
	if err != nil || len(queryEmbeddings) == 0 {
		if err == nil {
			err = fmt.Errorf("no query embedding returned")
		}
		return nil, apperror.ErrInternal.WithInternal(fmt.Errorf("embed query: %w", err))
	}

	where, err := BuildWhereClause(req.Filters)
	if err != nil {
		return nil, apperror.NewBadRequest(err.Error())
	}

	returnCols := req.ReturnCols
	if len(returnCols) == 0 {
		returnCols = strings.Split(job.SrcColumn, ",")
	}
	for _, col := range returnCols {
		if err := pgutils.CheckInput(col); err != nil {
			return nil, apperror.NewBadRequest(err.Error())
		}
	}

	query := sqltemplate.HybridSearchQuery(job.JobName, job.PrimaryKey, where, returnCols)

	var results []Result
	err = s.db.NewRaw(query,
		pgutils.FormatVector(queryEmbeddings[0]),
		req.Query,
		req.WindowSize,
		req.RRFK,
		req.SemanticWt,
		req.FTSWt,
		req.WindowSize+1,
		req.Limit,
	).Scan(ctx, &results)
	if err != nil {
		return nil, apperror.ErrDatabase.WithInternal(fmt.Errorf("hybrid search for job %q: %w", req.JobName, err))
	}

	return results, nil
}

func (s *Service) resolveJob(ctx context.Context, jobName string) (*catalog.Job, error) {
	if job, ok := s.cache.Get(jobName); ok {
		return job, nil
	}

	s.log.Warn("job not found in cache, querying database", slog.String("job_name", jobName))
	repo := catalog.NewRepository(s.db)
	job, err := repo.GetByName(ctx, jobName)
	if err != nil {
		return nil, err
	}
	s.cache.Put(job)
	return job, nil
}
