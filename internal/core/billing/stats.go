package billing

import (
	"time"

	"github.com/hourbook/billing/internal/core/domain"
)

// DashboardStats summarises work and billing for the dashboard.
type DashboardStats struct {
	MonthlyHours      float64 `json:"monthly_hours"`
	MonthlyRevenue    float64 `json:"monthly_revenue"`
	AverageHourlyRate float64 `json:"average_hourly_rate"`
	TotalInvoiced     float64 `json:"total_invoiced"`
	TotalPaid         float64 `json:"total_paid"`
	TotalOutstanding  float64 `json:"total_outstanding"`
}

// Dashboard computes the dashboard statistics as of now. Month boundaries are
// taken in now's location. Revenue and the average rate ignore sentinel rows.
func Dashboard(logs []*domain.TimeLog, invoices []*domain.Invoice, now time.Time) DashboardStats {
	var stats DashboardStats

	year, month, _ := now.Date()
	var revenue []float64
	for _, l := range logs {
		if l == nil {
			continue
		}
		y, m, _ := l.StartTime.In(now.Location()).Date()
		if y != year || m != month {
			continue
		}
		stats.MonthlyHours += l.Hours
		if !l.HasSentinelRate() {
			revenue = append(revenue, Amount(l.Hours, l.Rate))
		}
	}
	stats.MonthlyRevenue = Sum(revenue...)

	averages := AverageRateByProject(logs, ExcludeSentinel)
	if len(averages) > 0 {
		var sum float64
		for _, a := range averages {
			sum += a
		}
		stats.AverageHourlyRate = RoundCents(sum / float64(len(averages)))
	}

	var invoiced, paid []float64
	for _, inv := range invoices {
		if inv == nil {
			continue
		}
		invoiced = append(invoiced, inv.Total)
		if inv.Status == domain.InvoicePaid {
			paid = append(paid, inv.Total)
		}
	}
	stats.TotalInvoiced = Sum(invoiced...)
	stats.TotalPaid = Sum(paid...)
	stats.TotalOutstanding = Sum(stats.TotalInvoiced, -stats.TotalPaid)
	return stats
}
