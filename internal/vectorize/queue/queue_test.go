package queue

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNew_RejectsUnsafeName(t *testing.T) {
	_, err := New(nil, "jobs; DROP TABLE jobs;--")
	require.Error(t, err)
}

func TestTableName(t *testing.T) {
	require.Equal(t, "queue_docs_embed", TableName("docs_embed"))
}

func TestCreateTableSQL_IncludesVisibilityIndex(t *testing.T) {
	q := CreateTableSQL("docs_embed")
	require.Contains(t, q, "vectorize.queue_docs_embed")
	require.Contains(t, q, "queue_docs_embed_vt_idx")
}
