package httpapi

import (
	"github.com/labstack/echo/v4"
	"go.uber.org/fx"

	"github.com/vectorize-go/vectorize/internal/vectorize/search"
)

// Module provides the route handlers and registers them on the shared
// echo instance.
var Module = fx.Module("httpapi",
	fx.Provide(NewJobHandler, NewHealthHandler),
	fx.Invoke(RegisterRoutes),
)

// RegisterRoutes mounts every vectorize HTTP route on e.
func RegisterRoutes(e *echo.Echo, jobs *JobHandler, health *HealthHandler, searchHandler *search.Handler) {
	health.Register(e)

	api := e.Group("/api/v1")
	jobs.Register(api)
	searchHandler.Register(api)
}
