package search

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/vectorize-go/vectorize/internal/apperror"
)

// reservedQueryParams are bound to named Request fields and are never
// treated as column filters.
var reservedQueryParams = map[string]bool{
	"job_name": true, "query": true, "window_size": true,
	"limit": true, "rrf_k": true, "semantic_wt": true, "fts_wt": true,
	"return_cols": true,
}

// Handler adapts Service to an echo route.
type Handler struct {
	svc *Service
}

// NewHandler builds a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// Register attaches the search route to g.
func (h *Handler) Register(g *echo.Group) {
	g.GET("/search", h.search)
}

func (h *Handler) search(c echo.Context) error {
	jobName := c.QueryParam("job_name")
	query := c.QueryParam("query")
	if jobName == "" || query == "" {
		return apperror.NewBadRequest("job_name and query are required")
	}

	params := map[string][]string(c.QueryParams())

	filters, err := ParseFilters(params, reservedQueryParams)
	if err != nil {
		return apperror.NewBadRequest(err.Error())
	}

	var returnCols []string
	if raw := c.QueryParam("return_cols"); raw != "" {
		returnCols = strings.Split(raw, ",")
	}

	req := Request{
		JobName:    jobName,
		Query:      query,
		Limit:      atoiOr(c.QueryParam("limit"), 0),
		WindowSize: atoiOr(c.QueryParam("window_size"), 0),
		RRFK:       atofOr(c.QueryParam("rrf_k"), 0),
		SemanticWt: atofOr(c.QueryParam("semantic_wt"), 0),
		FTSWt:      atofOr(c.QueryParam("fts_wt"), 0),
		Filters:    filters,
		ReturnCols: returnCols,
	}

	results, err := h.svc.Search(c.Request().Context(), req)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, results)
}

func atoiOr(s string, fallback int) int {
	if s == "" {
		return fallback
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return fallback
	}
	return n
}

func atofOr(s string, fallback float64) float64 {
	if s == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fallback
	}
	return f
}
