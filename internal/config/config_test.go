package config

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewConfig_Defaults(t *testing.T) {
	log := testLogger()
	cfg, err := NewConfig(log)
	require.NoError(t, err)

	require.Equal(t, "local", cfg.Environment)
	require.Equal(t, 8080, cfg.Server.Port)
	require.Equal(t, "vectorize_jobs", cfg.Queue.Name)
	require.Equal(t, 3, cfg.Worker.MaxRetries)
	require.Equal(t, 1, cfg.Worker.MinConcurrency)
	require.Equal(t, 16, cfg.Worker.MaxConcurrency)
}

func TestDatabaseConfig_DSN(t *testing.T) {
	d := DatabaseConfig{
		Host: "db", Port: 5432, User: "u", Password: "p", Database: "vectorize", SSLMode: "disable",
	}
	require.Equal(t, "postgres://u:p@db:5432/vectorize?sslmode=disable", d.DSN())
}

func TestEmbeddingsConfig_UseGenAI(t *testing.T) {
	e := EmbeddingsConfig{Provider: "genai", GoogleAPIKey: "key"}
	require.True(t, e.UseGenAI())

	e.NetworkDisabled = true
	require.False(t, e.UseGenAI())
}
