package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/hourbook/billing/internal/api/metrics"
	"github.com/hourbook/billing/internal/core/domain"
	"github.com/hourbook/billing/internal/core/ports"
)

// ProjectHandler handles HTTP requests for projects.
type ProjectHandler struct {
	service ports.ProjectService
	logger  zerolog.Logger
}

func NewProjectHandler(service ports.ProjectService, logger zerolog.Logger) *ProjectHandler {
	return &ProjectHandler{service: service, logger: logger}
}

// Create handles POST /v1/projects.
//
// @Summary      Create a project
// @Tags         projects
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createProjectRequest  true  "Project"
// @Success      201   {object}  domain.Project
// @Failure      400   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /v1/projects [post]
func (h *ProjectHandler) Create(c echo.Context) error {
	var req createProjectRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	p, err := h.service.CreateProject(c.Request().Context(), ports.CreateProjectInput{
		Client:       req.Client,
		Name:         req.Name,
		Rate:         req.Rate,
		RateType:     domain.RateType(req.RateType),
		CustomFields: domain.CustomFields(req.CustomFields),
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, p)
}

// List handles GET /v1/projects.
//
// @Summary      List projects with total hours and earnings
// @Tags         projects
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}  domain.ProjectWithTotals
// @Router       /v1/projects [get]
func (h *ProjectHandler) List(c echo.Context) error {
	projects, err := h.service.ListProjects(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, emptyIfNil(projects))
}

// Update handles PATCH /v1/projects/:id.
//
// @Summary      Edit a project
// @Description  Renaming cascades onto the project's time logs; switching to fixed rewrites their rates.
// @Tags         projects
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string                true  "Project id"
// @Param        body  body      updateProjectRequest  true  "Fields to change"
// @Success      200   {object}  projectUpdateResponse
// @Failure      404   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /v1/projects/{id} [patch]
func (h *ProjectHandler) Update(c echo.Context) error {
	req, err := h.bindUpdate(c)
	if err != nil {
		return err
	}
	res, err := h.service.UpdateProject(c.Request().Context(), c.Param("id"), req.patch())
	if err != nil {
		return err
	}
	return h.updated(c, res)
}

// UpdateByName handles PATCH /v1/projects/by-name/:name.
//
// @Summary      Edit a project addressed by name
// @Tags         projects
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        name  path      string                true  "Project name"
// @Param        body  body      updateProjectRequest  true  "Fields to change"
// @Success      200   {object}  projectUpdateResponse
// @Failure      404   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /v1/projects/by-name/{name} [patch]
func (h *ProjectHandler) UpdateByName(c echo.Context) error {
	req, err := h.bindUpdate(c)
	if err != nil {
		return err
	}
	res, err := h.service.UpdateProjectByName(c.Request().Context(), c.Param("name"), req.patch())
	if err != nil {
		return err
	}
	return h.updated(c, res)
}

func (h *ProjectHandler) bindUpdate(c echo.Context) (updateProjectRequest, error) {
	var req updateProjectRequest
	if err := c.Bind(&req); err != nil {
		return req, echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return req, err
	}
	return req, nil
}

func (h *ProjectHandler) updated(c echo.Context, res *ports.ProjectUpdateResult) error {
	if res.LogsRateCascaded > 0 {
		metrics.ProjectCascadeWritesTotal.WithLabelValues("fixed_rate").Add(float64(res.LogsRateCascaded))
	}
	if res.LogsRenamed > 0 {
		metrics.ProjectCascadeWritesTotal.WithLabelValues("rename").Add(float64(res.LogsRenamed))
	}
	h.logger.Info().
		Str("actor", actor(c)).
		Str("project_id", res.Project.ID).
		Int64("logs_rate_cascaded", res.LogsRateCascaded).
		Int64("logs_renamed", res.LogsRenamed).
		Msg("project updated")

	return c.JSON(http.StatusOK, projectUpdateResponse{
		Project:          res.Project,
		LogsRateCascaded: res.LogsRateCascaded,
		LogsRenamed:      res.LogsRenamed,
	})
}
