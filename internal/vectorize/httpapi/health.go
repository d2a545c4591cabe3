package httpapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/vectorize-go/vectorize/internal/vectorize/catalog"
	"github.com/vectorize-go/vectorize/pkg/syshealth"
)

// HealthHandler serves liveness/readiness and system-health status.
type HealthHandler struct {
	monitor  syshealth.Monitor
	cache    *catalog.Cache
	gatherer prometheus.Gatherer
}

// NewHealthHandler builds a HealthHandler.
func NewHealthHandler(monitor syshealth.Monitor, cache *catalog.Cache, gatherer prometheus.Gatherer) *HealthHandler {
	return &HealthHandler{monitor: monitor, cache: cache, gatherer: gatherer}
}

// Register attaches /healthz and /metrics to e's root router.
func (h *HealthHandler) Register(e *echo.Echo) {
	e.GET("/healthz", h.healthz)
	e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(h.gatherer, promhttp.HandlerOpts{})))
}

func (h *HealthHandler) healthz(c echo.Context) error {
	health := h.monitor.GetHealth()
	return c.JSON(http.StatusOK, map[string]any{
		"status":     "ok",
		"cpu_pct":    health.CPUPercent,
		"mem_pct":    health.MemPercent,
		"zone":       health.Zone,
		"jobs_cached": h.cache.Len(),
	})
}
