package provider

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNoopProvider_ReturnsZeroVectorsOfConfiguredDimension(t *testing.T) {
	p := NewNoopProvider(768)
	out, err := p.Embed(context.Background(), []string{"a", "b"}, TaskDocument)
	require.NoError(t, err)
	require.Len(t, out, 2)
	require.Len(t, out[0], 768)

	dim, err := p.Dim(context.Background(), "any-model")
	require.NoError(t, err)
	require.Equal(t, 768, dim)
}

func TestNoopProvider_EmptyInput(t *testing.T) {
	p := NewNoopProvider(768)
	out, err := p.Embed(context.Background(), nil, TaskQuery)
	require.NoError(t, err)
	require.Empty(t, out)
}
