package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// Roles carried in API tokens. The owner records work and bills clients; a
// viewer, such as an accountant, may read logs, invoices and the dashboard.
const (
	RoleOwner  = "owner"
	RoleViewer = "viewer"
)

// ReadAccess admits every role that may see billing data.
func ReadAccess() echo.MiddlewareFunc {
	return RBAC(RoleOwner, RoleViewer)
}

// WriteAccess admits only the roles that may change time logs, projects
// and invoices.
func WriteAccess() echo.MiddlewareFunc {
	return RBAC(RoleOwner)
}

// RBAC rejects requests whose token role is not one of allowedRoles. It runs
// after Auth, which stores the role on the context.
func RBAC(allowedRoles ...string) echo.MiddlewareFunc {
	allowed := make(map[string]struct{}, len(allowedRoles))
	for _, r := range allowedRoles {
		allowed[r] = struct{}{}
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			role, _ := c.Get(RoleKey).(string)
			if _, ok := allowed[role]; ok {
				return next(c)
			}
			if role == "" {
				return echo.NewHTTPError(http.StatusForbidden, "token carries no role")
			}
			return echo.NewHTTPError(http.StatusForbidden, "role "+role+" may not "+verb(c.Request().Method)+" this resource")
		}
	}
}

func verb(method string) string {
	switch method {
	case http.MethodGet, http.MethodHead:
		return "read"
	case http.MethodDelete:
		return "delete"
	default:
		return "change"
	}
}
