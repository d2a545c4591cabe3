package apperror

import (
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/vectorize-go/vectorize/internal/logger"
)

// HTTPErrorHandler returns an Echo error handler that renders both
// *Error and plain *echo.HTTPError values into a single consistent
// {"error": {"code", "message"}} body, so handlers can simply `return
// err` without converting it themselves.
func HTTPErrorHandler(log *slog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code := http.StatusInternalServerError
		errorObj := map[string]any{
			"code":    "internal_error",
			"message": "An internal error occurred",
		}

		switch typed := err.(type) {
		case *Error:
			code = typed.HTTPStatus
			errorObj["code"] = typed.Code
			errorObj["message"] = typed.Message
			if len(typed.Details) > 0 {
				errorObj["details"] = typed.Details
			}
		case *echo.HTTPError:
			code = typed.Code
			if msg, ok := typed.Message.(string); ok {
				errorObj["message"] = msg
				errorObj["code"] = codeForStatus(code)
			}
		}

		if code >= 500 {
			log.Error("request error", slog.Int("status", code), logger.Error(err))
		}

		response := map[string]any{"error": errorObj}
		if c.Request().Method == http.MethodHead {
			c.NoContent(code)
			return
		}
		c.JSON(code, response)
	}
}

func codeForStatus(status int) string {
	switch status {
	case http.StatusUnauthorized:
		return "unauthorized"
	case http.StatusForbidden:
		return "forbidden"
	case http.StatusNotFound:
		return "not_found"
	case http.StatusBadRequest:
		return "bad_request"
	case http.StatusConflict:
		return "conflict"
	case http.StatusUnprocessableEntity:
		return "validation_error"
	default:
		return "internal_error"
	}
}
