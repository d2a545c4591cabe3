package apperror

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	"github.com/vectorize-go/vectorize/internal/logger"
)

func TestHTTPErrorHandler_AppError(t *testing.T) {
	e := echo.New()
	handler := HTTPErrorHandler(logger.NewLogger())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler(NewBadRequest("invalid input"), c)

	require.Equal(t, http.StatusBadRequest, rec.Code)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	errObj := resp["error"].(map[string]any)
	require.Equal(t, "bad_request", errObj["code"])
	require.Equal(t, "invalid input", errObj["message"])
}

func TestHTTPErrorHandler_EchoError(t *testing.T) {
	e := echo.New()
	handler := HTTPErrorHandler(logger.NewLogger())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler(echo.NewHTTPError(http.StatusNotFound, "resource not found"), c)

	require.Equal(t, http.StatusNotFound, rec.Code)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	errObj := resp["error"].(map[string]any)
	require.Equal(t, "not_found", errObj["code"])
}
