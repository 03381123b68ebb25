package service

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/hourbook/billing/internal/core/domain"
)

func TestDashboard(t *testing.T) {
	logs := newStubTimeLogRepo(
		newLog("a", "Acme", "Website", 0, 2, 50),
		newLog("b", "Acme", "Retainer", time.Hour, 3, domain.FixedRateSentinel),
	)
	invoices := newStubInvoiceRepo()
	invoices.byID["i1"] = &domain.Invoice{ID: "i1", Total: 300, Status: domain.InvoicePaid, Date: day}
	invoices.byID["i2"] = &domain.Invoice{ID: "i2", Total: 120, Status: domain.InvoicePending, Date: day}

	svc := NewStatsService(logs, invoices, zerolog.Nop())
	svc.now = func() time.Time { return day.Add(48 * time.Hour) }

	stats, err := svc.Dashboard(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stats.MonthlyHours != 5 || stats.MonthlyRevenue != 100 {
		t.Errorf("monthly = %v hours / %v revenue", stats.MonthlyHours, stats.MonthlyRevenue)
	}
	if stats.AverageHourlyRate != 50 {
		t.Errorf("average rate = %v", stats.AverageHourlyRate)
	}
	if stats.TotalInvoiced != 420 || stats.TotalPaid != 300 || stats.TotalOutstanding != 120 {
		t.Errorf("invoice totals = %+v", stats)
	}
}
