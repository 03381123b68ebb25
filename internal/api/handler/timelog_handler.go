package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/hourbook/billing/internal/core/domain"
	"github.com/hourbook/billing/internal/core/ports"
)

// TimeLogHandler handles HTTP requests for time logs.
type TimeLogHandler struct {
	service ports.TimeLogService
}

func NewTimeLogHandler(service ports.TimeLogService) *TimeLogHandler {
	return &TimeLogHandler{service: service}
}

// Create handles POST /v1/time-logs.
//
// @Summary      Log work against a project
// @Description  Hours are derived from the interval. Client and rate fall back to the project.
// @Tags         time-logs
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createTimeLogRequest  true  "Time log"
// @Success      201   {object}  domain.TimeLog
// @Failure      400   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /v1/time-logs [post]
func (h *TimeLogHandler) Create(c echo.Context) error {
	var req createTimeLogRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	log, err := h.service.CreateTimeLog(c.Request().Context(), ports.CreateTimeLogInput{
		Project:     req.Project,
		Client:      req.Client,
		StartTime:   req.StartTime,
		EndTime:     req.EndTime,
		Rate:        req.Rate,
		RateType:    domain.RateType(req.RateType),
		Description: req.Description,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, log)
}

// List handles GET /v1/time-logs.
//
// @Summary      List the time logs of a project
// @Tags         time-logs
// @Produce      json
// @Security     BearerAuth
// @Param        project   query     string  true   "Project name"
// @Param        unbilled  query     bool    false  "Only logs not yet invoiced, oldest first"
// @Success      200       {array}   domain.TimeLog
// @Failure      422       {object}  errorResponse
// @Router       /v1/time-logs [get]
func (h *TimeLogHandler) List(c echo.Context) error {
	project := strings.TrimSpace(c.QueryParam("project"))
	if project == "" {
		return domain.NewValidationError("project", "is required")
	}

	unbilled := false
	if raw := c.QueryParam("unbilled"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return domain.NewValidationError("unbilled", "must be a boolean")
		}
		unbilled = v
	}

	ctx := c.Request().Context()
	var (
		logs []*domain.TimeLog
		err  error
	)
	if unbilled {
		logs, err = h.service.UnbilledLogsForProject(ctx, project)
	} else {
		logs, err = h.service.ProjectLogs(ctx, project)
	}
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, emptyIfNil(logs))
}

// Recent handles GET /v1/time-logs/recent.
//
// @Summary      Most recently finished time logs
// @Tags         time-logs
// @Produce      json
// @Security     BearerAuth
// @Param        limit  query     int  false  "Maximum number of logs (default 10, max 100)"
// @Success      200    {array}   domain.TimeLog
// @Router       /v1/time-logs/recent [get]
func (h *TimeLogHandler) Recent(c echo.Context) error {
	limit := 0
	if raw := c.QueryParam("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return domain.NewValidationError("limit", "must be a non-negative integer")
		}
		limit = n
	}

	logs, err := h.service.RecentLogs(c.Request().Context(), limit)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, emptyIfNil(logs))
}

// Stats handles GET /v1/time-logs/stats.
//
// @Summary      Per-project hours, average rate and potential invoice
// @Tags         time-logs
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}  billing.ProjectStat
// @Router       /v1/time-logs/stats [get]
func (h *TimeLogHandler) Stats(c echo.Context) error {
	stats, err := h.service.ProjectStats(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, emptyIfNil(stats))
}

// Get handles GET /v1/time-logs/:id.
//
// @Summary      Get a time log
// @Tags         time-logs
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Time log id"
// @Success      200  {object}  domain.TimeLog
// @Failure      404  {object}  errorResponse
// @Router       /v1/time-logs/{id} [get]
func (h *TimeLogHandler) Get(c echo.Context) error {
	log, err := h.service.GetTimeLog(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, log)
}

// Update handles PATCH /v1/time-logs/:id.
//
// @Summary      Edit a time log
// @Description  Changing either bound recomputes hours. Switching to fixed forces the sentinel rate.
// @Tags         time-logs
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string                true  "Time log id"
// @Param        body  body      updateTimeLogRequest  true  "Fields to change"
// @Success      200   {object}  domain.TimeLog
// @Failure      404   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /v1/time-logs/{id} [patch]
func (h *TimeLogHandler) Update(c echo.Context) error {
	var req updateTimeLogRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	log, err := h.service.UpdateTimeLog(c.Request().Context(), c.Param("id"), req.patch())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, log)
}

// Delete handles DELETE /v1/time-logs/:id.
//
// @Summary      Delete an unbilled time log
// @Tags         time-logs
// @Security     BearerAuth
// @Param        id   path  string  true  "Time log id"
// @Success      204
// @Failure      404  {object}  errorResponse
// @Failure      409  {object}  errorResponse
// @Router       /v1/time-logs/{id} [delete]
func (h *TimeLogHandler) Delete(c echo.Context) error {
	if err := h.service.DeleteTimeLog(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
