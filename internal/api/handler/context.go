package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/hourbook/billing/internal/api/middleware"
)

// actor names the caller for audit log lines. Without a token guard every
// request is anonymous.
func actor(c echo.Context) string {
	if sub, _ := c.Get(middleware.SubjectKey).(string); sub != "" {
		return sub
	}
	return "anonymous"
}
