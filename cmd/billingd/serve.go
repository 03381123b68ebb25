package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/hourbook/billing/internal/api"
	"github.com/hourbook/billing/internal/core/ports"
	"github.com/hourbook/billing/internal/core/service"
	redisstore "github.com/hourbook/billing/internal/infrastructure/db/redis"
	"github.com/hourbook/billing/internal/infrastructure/http/handlers"
	"github.com/hourbook/billing/internal/infrastructure/pdf"
	"github.com/hourbook/billing/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return rt.serve(cmd.Context())
		},
	}
}

func (rt *runtime) serve(ctx context.Context) error {
	cfg := rt.cfg
	log := rt.log

	store, db, closeStore, err := rt.openStore(ctx)
	if err != nil {
		return err
	}
	defer closeStore()

	if err := store.EnsureIndexes(ctx); err != nil {
		return err
	}

	checks := map[string]handlers.Check{"mongodb": handlers.MongoCheck(db)}

	// Compose requests are only replayable with Redis; without it they still work.
	var idem ports.IdempotencyStore
	if cfg.Redis.Enabled {
		rdb, err := redisstore.Connect(ctx, redisstore.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			log.Warn().Err(err).Msg("redis unavailable, idempotency keys disabled")
		} else {
			defer rdb.Close()
			idem = redisstore.NewIdempotencyStore(rdb)
			checks["redis"] = handlers.RedisCheck(rdb)
		}
	}

	renderer := pdf.NewRenderer(pdf.Options{
		Issuer:         cfg.Billing.InvoiceIssuer,
		CurrencySymbol: cfg.Billing.CurrencySymbol,
		Compress:       true,
	})

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	router, err := api.NewRouter(api.Deps{
		TimeLogs: service.NewTimeLogService(store.TimeLogs, store.Projects, logger.Component("timelogs")),
		Projects: service.NewProjectService(store.Projects, store.TimeLogs, logger.Component("projects")),
		Invoices: service.NewInvoiceService(store.Invoices, store.TimeLogs, idem, renderer, service.InvoiceOptions{
			StrictStatus:   cfg.Billing.StrictInvoiceStatus,
			IdempotencyTTL: cfg.Billing.IdempotencyTTL,
		}, logger.Component("invoices")),
		Stats:     service.NewStatsService(store.TimeLogs, store.Invoices, logger.Component("stats")),
		Readiness: handlers.NewHealthDependenciesHandler(checks),
		Registry:  reg,
		JWTSecret: cfg.JWTSecret,
		Logger:    logger.Component("http"),
	})
	if err != nil {
		return err
	}

	if cfg.JWTSecret == "" {
		log.Warn().Msg("JWT_SECRET is empty, API routes are unauthenticated")
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("server listening")
		if err := router.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return router.Shutdown(shutdownCtx)
}
