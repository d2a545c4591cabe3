package mathutil

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestClampInt(t *testing.T) {
	require.Equal(t, 5, ClampInt(5, 0, 10))
	require.Equal(t, 0, ClampInt(-5, 0, 10))
	require.Equal(t, 10, ClampInt(15, 0, 10))
}

func TestClampLimit(t *testing.T) {
	require.Equal(t, 20, ClampLimit(0, 20, 100))
	require.Equal(t, 20, ClampLimit(-1, 20, 100))
	require.Equal(t, 100, ClampLimit(150, 20, 100))
	require.Equal(t, 50, ClampLimit(50, 20, 100))
}
