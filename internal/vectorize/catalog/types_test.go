package catalog

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestJob_IsRealtime(t *testing.T) {
	require.True(t, (&Job{Schedule: ""}).IsRealtime())
	require.True(t, (&Job{Schedule: ScheduleRealtime}).IsRealtime())
	require.False(t, (&Job{Schedule: "0 * * * *"}).IsRealtime())
}

func TestJob_SidecarNames(t *testing.T) {
	job := &Job{JobName: "docs"}
	require.Equal(t, "_embeddings_docs", job.EmbeddingTableName())
	require.Equal(t, "_search_tokens_docs", job.TokensTableName())
	require.Equal(t, "docs_view", job.ViewName())
}

func TestModel_String(t *testing.T) {
	m := Model{Source: "genai", Name: "text-embedding-004"}
	require.Equal(t, "genai/text-embedding-004", m.String())
}
