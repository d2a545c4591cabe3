package pgutils

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCheckInput(t *testing.T) {
	require.NoError(t, CheckInput("valid_name_1"))
	require.NoError(t, CheckInput("JobName"))

	require.Error(t, CheckInput(""))
	require.Error(t, CheckInput("bad-name"))
	require.Error(t, CheckInput("bad name"))
	require.Error(t, CheckInput("bad;drop table"))
	require.Error(t, CheckInput("bad'quote"))
}

func TestFormatVector(t *testing.T) {
	require.Equal(t, "[]", FormatVector(nil))
	require.Equal(t, "[0.1,0.2,0.3]", FormatVector([]float32{0.1, 0.2, 0.3}))
}

func TestIsUniqueViolation(t *testing.T) {
	require.False(t, IsUniqueViolation(nil))
}
