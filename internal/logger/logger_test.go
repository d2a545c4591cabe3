package logger

import (
	"errors"
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestScope(t *testing.T) {
	attr := Scope("worker")
	require.Equal(t, "scope", attr.Key)
	require.Equal(t, "worker", attr.Value.String())
}

func TestError(t *testing.T) {
	err := errors.New("boom")
	attr := Error(err)
	require.Equal(t, "error", attr.Key)
	require.Equal(t, err, attr.Value.Any())
}

func TestNewLogger_DefaultLevel(t *testing.T) {
	os.Unsetenv("LOG_LEVEL")
	log := NewLogger()
	require.NotNil(t, log)
	require.True(t, log.Enabled(nil, slog.LevelInfo))
	require.False(t, log.Enabled(nil, slog.LevelDebug))
}

func TestNewLogger_DebugLevel(t *testing.T) {
	t.Setenv("LOG_LEVEL", "debug")
	log := NewLogger()
	require.True(t, log.Enabled(nil, slog.LevelDebug))
}

func TestParseLevel(t *testing.T) {
	require.Equal(t, slog.LevelDebug, parseLevel("debug"))
	require.Equal(t, slog.LevelWarn, parseLevel("warn"))
	require.Equal(t, slog.LevelWarn, parseLevel("warning"))
	require.Equal(t, slog.LevelError, parseLevel("error"))
	require.Equal(t, slog.LevelInfo, parseLevel(""))
	require.Equal(t, slog.LevelInfo, parseLevel("bogus"))
}
