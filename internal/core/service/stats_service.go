package service

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/hourbook/billing/internal/core/billing"
	"github.com/hourbook/billing/internal/core/domain"
	"github.com/hourbook/billing/internal/core/ports"
)

type StatsService struct {
	logs     ports.TimeLogRepository
	invoices ports.InvoiceRepository
	logger   zerolog.Logger
	now      func() time.Time
}

func NewStatsService(logs ports.TimeLogRepository, invoices ports.InvoiceRepository, logger zerolog.Logger) *StatsService {
	return &StatsService{
		logs:     logs,
		invoices: invoices,
		logger:   logger,
		now:      time.Now,
	}
}

// Dashboard computes month-to-date and lifetime billing figures.
func (s *StatsService) Dashboard(ctx context.Context) (*billing.DashboardStats, error) {
	logs, err := s.logs.Find(ctx, ports.TimeLogFilter{})
	if err != nil {
		return nil, domain.Persistence("find time logs", err)
	}
	invoices, err := s.invoices.List(ctx)
	if err != nil {
		return nil, domain.Persistence("list invoices", err)
	}
	stats := billing.Dashboard(logs, invoices, s.now())
	s.logger.Debug().Int("time_log_count", len(logs)).Int("invoice_count", len(invoices)).Msg("dashboard computed")
	return &stats, nil
}
