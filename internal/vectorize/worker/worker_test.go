package worker

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
)

func TestSplitColumns(t *testing.T) {
	require.Equal(t, []string{"title", "body"}, splitColumns("title,body"))
}

func TestConcatColumns(t *testing.T) {
	require.Equal(t, "title || ' ' || body", concatColumns([]string{"title", "body"}))
}

func TestNewMetrics_RegistersAllCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := newMetrics(reg)
	require.NotNil(t, m.processed)

	families, err := reg.Gather()
	require.NoError(t, err)
	require.Len(t, families, 4)
}
