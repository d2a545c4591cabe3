package jobmanager

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestValidate_RejectsUnsafeIdentifier(t *testing.T) {
	err := validate(CreateJobRequest{
		JobName:    "docs; DROP TABLE docs;--",
		SrcSchema:  "public",
		SrcTable:   "documents",
		SrcColumns: []string{"body"},
		PrimaryKey: "id",
		ModelName:  "text-embedding-004",
	})
	require.Error(t, err)
}

func TestValidate_RequiresAtLeastOneColumn(t *testing.T) {
	err := validate(CreateJobRequest{
		JobName:    "docs",
		SrcSchema:  "public",
		SrcTable:   "documents",
		PrimaryKey: "id",
		ModelName:  "text-embedding-004",
	})
	require.Error(t, err)
}

func TestValidate_AcceptsWellFormedRequest(t *testing.T) {
	err := validate(CreateJobRequest{
		JobName:    "docs",
		SrcSchema:  "public",
		SrcTable:   "documents",
		SrcColumns: []string{"title", "body"},
		PrimaryKey: "id",
		ModelName:  "text-embedding-004",
	})
	require.NoError(t, err)
}

func TestIsRealtime_DefaultsTrue(t *testing.T) {
	require.True(t, isRealtime(""))
	require.True(t, isRealtime("realtime"))
	require.False(t, isRealtime("0 * * * *"))
}

func TestJoinColumns(t *testing.T) {
	require.Equal(t, "title,body", joinColumns([]string{"title", "body"}))
}
