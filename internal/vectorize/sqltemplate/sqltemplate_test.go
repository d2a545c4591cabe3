package sqltemplate

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestIdent_RejectsInjection(t *testing.T) {
	_, err := Ident("users; DROP TABLE users;--")
	require.Error(t, err)
}

func TestIdent_AllowsValid(t *testing.T) {
	out, err := Ident("my_table_1")
	require.NoError(t, err)
	require.Equal(t, "my_table_1", out)
}

func TestCreateEmbeddingTable_ReferencesSourceAndDimension(t *testing.T) {
	q := CreateEmbeddingTable("docs", "id", "uuid", "public", "documents", 1536)
	require.Contains(t, q, "vectorize._embeddings_docs")
	require.Contains(t, q, "vector(1536)")
	require.Contains(t, q, "REFERENCES public.documents (id)")
}

func TestCreateProjectView_JoinsEmbeddingSidecar(t *testing.T) {
	q := CreateProjectView("docs", "public", "documents", "id")
	require.Contains(t, q, "vectorize.docs_view")
	require.Contains(t, q, "vectorize._embeddings_docs")
}

func TestCreateHNSWIndex_UsesRequestedOperatorClass(t *testing.T) {
	q := CreateHNSWIndex("docs", HNSWCosine)
	require.Contains(t, q, "vector_cosine_ops")
	require.Contains(t, q, "docs_hnsw_cos_idx")
}

func TestHybridSearchQuery_ProducesFusionExpression(t *testing.T) {
	q := HybridSearchQuery("docs", "id", "", []string{"title", "body"})
	require.Contains(t, q, "FULL OUTER JOIN lexical")
	require.Contains(t, q, "$4 + COALESCE(s.rank, $7)")
	require.Contains(t, q, "$4 + COALESCE(l.rank, $7)")
	require.True(t, strings.Contains(q, "vectorize.docs_view"))
}

func TestHybridSearchQuery_AppliesFilterClauseToBothCandidateSets(t *testing.T) {
	q := HybridSearchQuery("docs", "id", "status = 'active'", []string{"title"})
	require.Contains(t, q, "WHERE status = 'active'")
	require.Contains(t, q, "AND status = 'active'")
}

func TestHybridSearchQuery_ProjectsReturnColsIntoResultObject(t *testing.T) {
	q := HybridSearchQuery("docs", "id", "", []string{"title", "body"})
	require.Contains(t, q, "jsonb_build_object('title', v.title, 'body', v.body)")
	require.Contains(t, q, "JOIN vectorize.docs_view v ON v.id = fused.record_id")
}

func TestCreateInsertUpdateTriggers_FiresOnlyOnTrackedColumns(t *testing.T) {
	q := CreateInsertUpdateTriggers("docs", "public", "documents", []string{"title", "body"})
	require.Contains(t, q, "UPDATE OF title, body")
}
