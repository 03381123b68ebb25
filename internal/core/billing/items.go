package billing

import (
	"github.com/hourbook/billing/internal/core/domain"
)

// ItemDescription is the default line description for a project.
func ItemDescription(project string) string {
	return "Time logged for " + project
}

// BuildItems turns logs into invoice line items, one per project, in first
// appearance order. Each item bills hours × the group's representative rate;
// a fixed-rate group bills at rate 0.
func BuildItems(logs []*domain.TimeLog) []domain.InvoiceItem {
	groups := GroupByProject(logs)
	items := make([]domain.InvoiceItem, 0, len(groups))
	for _, g := range groups {
		rate := g.Rate
		if rate == domain.FixedRateSentinel {
			rate = 0
		}
		items = append(items, domain.InvoiceItem{
			Project:     g.Project,
			Description: ItemDescription(g.Project),
			Hours:       g.TotalHours,
			Rate:        rate,
			Amount:      Amount(g.TotalHours, rate),
		})
	}
	return items
}

// ApplyRate sets one rate on every item and recomputes the amounts.
func ApplyRate(items []domain.InvoiceItem, rate float64) []domain.InvoiceItem {
	out := make([]domain.InvoiceItem, len(items))
	for i, it := range items {
		it.Rate = rate
		it.Amount = Amount(it.Hours, rate)
		out[i] = it
	}
	return out
}

// Totals returns subtotal and total of items. They are equal until tax or fee
// adjustments exist.
func Totals(items []domain.InvoiceItem) (subtotal, total float64) {
	amounts := make([]float64, len(items))
	for i, it := range items {
		amounts[i] = it.Amount
	}
	subtotal = Sum(amounts...)
	return subtotal, subtotal
}

// DisplayAmounts returns the amount shown per item: the stored amount for
// hourly invoices, an even share of the total for fixed-rate ones.
func DisplayAmounts(inv *domain.Invoice) []float64 {
	out := make([]float64, len(inv.Items))
	for i, it := range inv.Items {
		if inv.RateType == domain.RateFixed {
			out[i] = FixedShare(inv.Total, len(inv.Items))
			continue
		}
		out[i] = it.Amount
	}
	return out
}

// UniqueClients returns the distinct clients of logs in first-seen order.
func UniqueClients(logs []*domain.TimeLog) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, l := range logs {
		if _, ok := seen[l.Client]; ok {
			continue
		}
		seen[l.Client] = struct{}{}
		out = append(out, l.Client)
	}
	return out
}
