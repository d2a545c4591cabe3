// Package httpapi exposes the job-lifecycle and operational HTTP
// surface: job CRUD, health, and Prometheus metrics.
package httpapi

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/vectorize-go/vectorize/internal/apperror"
	"github.com/vectorize-go/vectorize/internal/vectorize/jobmanager"
)

// JobHandler exposes job lifecycle operations over HTTP.
type JobHandler struct {
	manager *jobmanager.Manager
}

// NewJobHandler builds a JobHandler.
func NewJobHandler(manager *jobmanager.Manager) *JobHandler {
	return &JobHandler{manager: manager}
}

// CreateJobBody is the request body for POST /jobs. pkey_type is
// deliberately absent: the job manager resolves it itself from
// information_schema.columns rather than trusting the caller.
type CreateJobBody struct {
	JobName       string   `json:"job_name"`
	SrcSchema     string   `json:"src_schema"`
	SrcTable      string   `json:"src_table"`
	SrcColumns    []string `json:"src_columns"`
	PrimaryKey    string   `json:"primary_key"`
	UpdateTimeCol string   `json:"update_time_col"`
	ModelSource   string   `json:"model_source"`
	ModelName     string   `json:"model_name"`
	Schedule      string   `json:"schedule"`
}

// Register attaches job routes to g.
func (h *JobHandler) Register(g *echo.Group) {
	g.POST("/jobs", h.create)
	g.DELETE("/jobs/:job_name", h.drop)
}

func (h *JobHandler) create(c echo.Context) error {
	var body CreateJobBody
	if err := c.Bind(&body); err != nil {
		return apperror.NewBadRequest("invalid request body")
	}

	job, err := h.manager.InitializeJob(c.Request().Context(), jobmanager.CreateJobRequest{
		JobName:       body.JobName,
		SrcSchema:     body.SrcSchema,
		SrcTable:      body.SrcTable,
		SrcColumns:    body.SrcColumns,
		PrimaryKey:    body.PrimaryKey,
		UpdateTimeCol: body.UpdateTimeCol,
		ModelSource:   body.ModelSource,
		ModelName:     body.ModelName,
		Schedule:      body.Schedule,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, job)
}

func (h *JobHandler) drop(c echo.Context) error {
	jobName := c.Param("job_name")
	if jobName == "" {
		return apperror.NewBadRequest("job_name is required")
	}
	if err := h.manager.DropJob(c.Request().Context(), jobName); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
