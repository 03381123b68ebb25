package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/hourbook/billing/internal/core/ports"
)

// DashboardHandler serves the dashboard statistics.
type DashboardHandler struct {
	service ports.StatsService
}

func NewDashboardHandler(service ports.StatsService) *DashboardHandler {
	return &DashboardHandler{service: service}
}

// Get handles GET /v1/dashboard.
//
// @Summary      Month-to-date work and billing totals
// @Tags         dashboard
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  billing.DashboardStats
// @Failure      503  {object}  errorResponse
// @Router       /v1/dashboard [get]
func (h *DashboardHandler) Get(c echo.Context) error {
	stats, err := h.service.Dashboard(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, stats)
}
