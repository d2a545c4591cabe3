package provider

import (
	"context"
	"log/slog"

	"go.uber.org/fx"

	"github.com/vectorize-go/vectorize/internal/config"
)

// Module provides the Provider selected by configuration: GenAIProvider
// when EMBEDDING_PROVIDER is "genai", an API key is configured and
// network access isn't disabled, NoopProvider otherwise (local
// development, tests).
var Module = fx.Module("provider",
	fx.Provide(New),
)

// New selects and constructs the configured Provider.
func New(cfg *config.Config, log *slog.Logger) (Provider, error) {
	if !cfg.Embeddings.UseGenAI() {
		return NewNoopProvider(cfg.Embeddings.Dimension), nil
	}

	return NewGenAIProvider(context.Background(), GenAIConfig{
		APIKey:         cfg.Embeddings.GoogleAPIKey,
		Model:          cfg.Embeddings.Model,
		RequestsPerSec: cfg.Embeddings.RequestsPerSec,
	}, log)
}
