// Package provider abstracts the embedding model behind Embed/Dim,
// so the job manager, change-capture worker, and search service never
// depend on a specific embedding backend directly.
package provider

import "context"

// Provider generates embedding vectors for text.
type Provider interface {
	// Embed generates one embedding vector per input text, preserving
	// order. taskType distinguishes a query embedding (asymmetric
	// retrieval models embed queries differently from documents) from
	// a document embedding.
	Embed(ctx context.Context, texts []string, taskType TaskType) ([][]float32, error)

	// Dim probes model by embedding a short fixed string and returning
	// the length of the resulting vector. The job manager calls this
	// once per job creation and treats the result as authoritative for
	// that job's model — it is not a static config value, since two
	// jobs naming different models can have different dimensions.
	Dim(ctx context.Context, model string) (int, error)
}

// TaskType selects the embedding task hint some providers use to bias
// the vector space for retrieval quality.
type TaskType string

const (
	TaskQuery    TaskType = "RETRIEVAL_QUERY"
	TaskDocument TaskType = "RETRIEVAL_DOCUMENT"
)

// NoopProvider returns zero vectors of a fixed dimension, used when
// embeddings are disabled (e.g. local development without an API key).
type NoopProvider struct {
	dim int
}

// NewNoopProvider builds a NoopProvider producing dim-length zero vectors.
func NewNoopProvider(dim int) *NoopProvider {
	return &NoopProvider{dim: dim}
}

func (p *NoopProvider) Embed(_ context.Context, texts []string, _ TaskType) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i := range out {
		out[i] = make([]float32, p.dim)
	}
	return out, nil
}

// Dim ignores model (NoopProvider has no real backend to vary by
// model) but still probes through Embed for interface consistency.
func (p *NoopProvider) Dim(ctx context.Context, model string) (int, error) {
	out, err := p.Embed(ctx, []string{"dimension probe"}, TaskDocument)
	if err != nil {
		return 0, err
	}
	return len(out[0]), nil
}
