package changecapture

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vectorize-go/vectorize/internal/logger"
	"github.com/vectorize-go/vectorize/internal/vectorize/catalog"
)

func newTestRegistrar(t *testing.T) *ScheduleRegistrar {
	t.Helper()
	cache := catalog.NewCache()
	return NewScheduleRegistrar(NewScanner(nil, logger.NewLogger()), cache, logger.NewLogger())
}

func TestRegister_RealtimeJobIsNoop(t *testing.T) {
	r := newTestRegistrar(t)
	err := r.Register(&catalog.Job{JobName: "docs", Schedule: catalog.ScheduleRealtime})
	require.NoError(t, err)
	require.Empty(t, r.entries)
}

func TestRegister_InvalidCronSpecReturnsError(t *testing.T) {
	r := newTestRegistrar(t)
	err := r.Register(&catalog.Job{JobName: "docs", Schedule: "not a cron spec"})
	require.Error(t, err)
}

func TestRegister_ValidSpecTracksEntry(t *testing.T) {
	r := newTestRegistrar(t)
	err := r.Register(&catalog.Job{JobName: "docs", Schedule: "@every 30s"})
	require.NoError(t, err)
	require.Contains(t, r.entries, "docs")

	r.Unregister("docs")
	require.NotContains(t, r.entries, "docs")
}
