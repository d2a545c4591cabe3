package provider

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"golang.org/x/time/rate"
	"google.golang.org/genai"

	"github.com/vectorize-go/vectorize/internal/logger"
)

const (
	// maxBatchSize mirrors the Google Generative AI embedding
	// endpoint's per-request text limit.
	maxBatchSize = 100

	defaultMaxRetries = 3
	defaultBaseDelay  = 100 * time.Millisecond
	defaultMaxDelay   = 10 * time.Second
)

// GenAIProvider embeds text with the Google Generative AI API,
// rate-limited client-side and retried with exponential backoff on
// transient failures.
type GenAIProvider struct {
	client  *genai.Client
	model   string
	limiter *rate.Limiter
	log     *slog.Logger

	maxRetries int
	baseDelay  time.Duration
	maxDelay   time.Duration
}

// GenAIConfig configures GenAIProvider. Dimension is no longer
// accepted here: Dim is now a live probe, not a static config value.
type GenAIConfig struct {
	APIKey         string
	Model          string
	RequestsPerSec float64
}

// NewGenAIProvider builds a GenAIProvider. requestsPerSec governs a
// client-side token bucket so a burst of enqueued jobs doesn't trip
// the upstream API's rate limit before the server has a chance to
// back off on its own.
func NewGenAIProvider(ctx context.Context, cfg GenAIConfig, log *slog.Logger) (*GenAIProvider, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("genai: API key is required")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("genai: create client: %w", err)
	}

	rps := cfg.RequestsPerSec
	if rps <= 0 {
		rps = 5
	}

	return &GenAIProvider{
		client:     client,
		model:      cfg.Model,
		limiter:    rate.NewLimiter(rate.Limit(rps), 1),
		log:        log.With(logger.Scope("provider.genai")),
		maxRetries: defaultMaxRetries,
		baseDelay:  defaultBaseDelay,
		maxDelay:   defaultMaxDelay,
	}, nil
}

// Dim probes model with a short fixed string and returns the length
// of the resulting vector, treating it as authoritative the same way
// the job manager's initialization step does — no cached/static value,
// since model varies per job.
func (p *GenAIProvider) Dim(ctx context.Context, model string) (int, error) {
	out, err := p.embedWithRetry(ctx, model, []string{"dimension probe"}, TaskDocument)
	if err != nil {
		return 0, fmt.Errorf("probe dimension for model %q: %w", model, err)
	}
	return len(out[0]), nil
}

// Embed generates embeddings for texts in batches of maxBatchSize,
// using the provider's configured model.
func (p *GenAIProvider) Embed(ctx context.Context, texts []string, taskType TaskType) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	out := make([][]float32, 0, len(texts))
	for i := 0; i < len(texts); i += maxBatchSize {
		end := min(i+maxBatchSize, len(texts))
		batch, err := p.embedWithRetry(ctx, p.model, texts[i:end], taskType)
		if err != nil {
			return nil, fmt.Errorf("embed batch %d-%d: %w", i, end, err)
		}
		out = append(out, batch...)
	}
	return out, nil
}

func (p *GenAIProvider) embedWithRetry(ctx context.Context, model string, texts []string, taskType TaskType) ([][]float32, error) {
	var lastErr error

	for attempt := 0; attempt <= p.maxRetries; attempt++ {
		if attempt > 0 {
			delay := p.backoff(attempt)
			p.log.Debug("retrying embedding request", slog.Int("attempt", attempt), slog.Duration("delay", delay))
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(delay):
			}
		}

		if err := p.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		embeddings, err := p.embedBatch(ctx, model, texts, taskType)
		if err == nil {
			return embeddings, nil
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		lastErr = err
		p.log.Warn("embedding request failed", slog.Int("attempt", attempt), logger.Error(err))
	}

	return nil, fmt.Errorf("all retries exhausted: %w", lastErr)
}

func (p *GenAIProvider) embedBatch(ctx context.Context, model string, texts []string, taskType TaskType) ([][]float32, error) {
	out := make([][]float32, 0, len(texts))
	for _, text := range texts {
		result, err := p.client.Models.EmbedContent(
			ctx,
			model,
			genai.Text(text),
			&genai.EmbedContentConfig{TaskType: string(taskType)},
		)
		if err != nil {
			return nil, err
		}
		if len(result.Embeddings) == 0 {
			return nil, fmt.Errorf("no embeddings returned")
		}
		out = append(out, result.Embeddings[0].Values)
	}
	return out, nil
}

func (p *GenAIProvider) backoff(attempt int) time.Duration {
	delay := float64(p.baseDelay) * math.Pow(2, float64(attempt-1))
	if delay > float64(p.maxDelay) {
		delay = float64(p.maxDelay)
	}
	return time.Duration(delay)
}
