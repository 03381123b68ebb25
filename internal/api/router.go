package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/hourbook/billing/docs"
	"github.com/hourbook/billing/internal/api/handler"
	"github.com/hourbook/billing/internal/api/metrics"
	"github.com/hourbook/billing/internal/api/middleware"
	"github.com/hourbook/billing/internal/core/ports"
	"github.com/hourbook/billing/internal/infrastructure/http/handlers"
)

// Deps are the collaborators the router wires into handlers.
type Deps struct {
	TimeLogs ports.TimeLogService
	Projects ports.ProjectService
	Invoices ports.InvoiceService
	Stats    ports.StatsService
	// Readiness may be nil, in which case /health/ready is not registered.
	Readiness *handlers.HealthDependenciesHandler
	// Registry receives request and billing metrics and backs /metrics.
	Registry *prometheus.Registry
	// JWTSecret enables the token guard when set.
	JWTSecret string
	Logger    zerolog.Logger
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(d Deps) (*echo.Echo, error) {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(d.Logger)

	if d.Registry == nil {
		d.Registry = prometheus.NewRegistry()
	}
	if err := metrics.Register(d.Registry); err != nil {
		return nil, err
	}

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(requestLogger(d.Logger))
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Subsystem:  "http",
		Registerer: d.Registry,
		Skipper: func(c echo.Context) bool {
			return c.Path() == "/metrics"
		},
	}))

	// --- Health probes, metrics and docs (no auth required) ---
	e.GET("/health", handlers.NewHealthHandler().Liveness)
	if d.Readiness != nil {
		e.GET("/health/ready", d.Readiness.Readiness)
	}
	e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{Gatherer: d.Registry}))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	// --- API routes ---
	v1 := e.Group("/v1")
	read := []echo.MiddlewareFunc{}
	write := []echo.MiddlewareFunc{}
	if d.JWTSecret != "" {
		auth := middleware.Auth(d.JWTSecret)
		read = append(read, auth, middleware.ReadAccess())
		write = append(write, auth, middleware.WriteAccess())
	}

	logs := handler.NewTimeLogHandler(d.TimeLogs)
	v1.POST("/time-logs", logs.Create, write...)
	v1.GET("/time-logs", logs.List, read...)
	v1.GET("/time-logs/recent", logs.Recent, read...)
	v1.GET("/time-logs/stats", logs.Stats, read...)
	v1.GET("/time-logs/:id", logs.Get, read...)
	v1.PATCH("/time-logs/:id", logs.Update, write...)
	v1.DELETE("/time-logs/:id", logs.Delete, write...)

	projects := handler.NewProjectHandler(d.Projects, d.Logger)
	v1.POST("/projects", projects.Create, write...)
	v1.GET("/projects", projects.List, read...)
	v1.PATCH("/projects/:id", projects.Update, write...)
	v1.PATCH("/projects/by-name/:name", projects.UpdateByName, write...)

	invoices := handler.NewInvoiceHandler(d.Invoices, d.Logger)
	v1.POST("/invoices", invoices.Compose, write...)
	v1.GET("/invoices", invoices.List, read...)
	v1.GET("/invoices/:id", invoices.Get, read...)
	v1.PATCH("/invoices/:id", invoices.Edit, write...)
	v1.GET("/invoices/:id/time-logs", invoices.EligibleTimeLogs, read...)
	v1.GET("/invoices/:id/pdf", invoices.PDF, read...)

	v1.GET("/dashboard", handler.NewDashboardHandler(d.Stats).Get, read...)

	return e, nil
}

func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			ev := log.Info()
			if v.Status >= 500 {
				ev = log.Error().Err(v.Error)
			}
			ev.Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("request_id", v.RequestID).
				Msg("request")
			return nil
		},
	})
}
