package apperror

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWithInternal(t *testing.T) {
	cause := errors.New("pgx: connection refused")
	err := ErrDatabase.WithInternal(cause)

	require.Equal(t, cause, err.Unwrap())
	require.Contains(t, err.Error(), "connection refused")
	require.Equal(t, ErrDatabase.Code, err.Code)
}

func TestNewNotFound(t *testing.T) {
	err := NewNotFound("job", "missing")
	require.Equal(t, http.StatusNotFound, err.HTTPStatus)
	require.Contains(t, err.Message, "missing")
}

func TestToEchoError(t *testing.T) {
	err := NewBadRequest("bad column")
	echoErr := err.ToEchoError()
	require.Equal(t, http.StatusBadRequest, echoErr.Code)

	body, ok := echoErr.Message.(map[string]any)
	require.True(t, ok)
	nested, ok := body["error"].(map[string]any)
	require.True(t, ok)
	require.Equal(t, "bad column", nested["message"])
}

func TestAsAppError(t *testing.T) {
	_, ok := AsAppError(errors.New("plain"))
	require.False(t, ok)

	appErr, ok := AsAppError(ErrConflict)
	require.True(t, ok)
	require.Equal(t, ErrConflict, appErr)
}
