// Package billing holds the pure aggregation over time logs: grouping into
// per-project rollups, invoice line items and dashboard statistics. Nothing
// here touches storage or mutates its input.
package billing

import (
	"sort"
	"time"

	"github.com/hourbook/billing/internal/core/domain"
)

// GroupKey identifies a (client, project) group. Using a struct key means no
// separator can ever collide with the field contents.
type GroupKey struct {
	Client  string
	Project string
}

// ProjectGroup is the rollup of one group of logs.
//
// Rate and RateType are representative, not authoritative: they come from the
// member with the latest UpdatedAt, ties going to the later member in input
// order. Logs of one project only disagree after manual edits.
type ProjectGroup struct {
	Client     string
	Project    string
	TotalHours float64
	Rate       float64
	RateType   domain.RateType
	LogCount   int

	repAt time.Time
}

// Key returns the group's key.
func (g ProjectGroup) Key() GroupKey {
	return GroupKey{Client: g.Client, Project: g.Project}
}

// GroupByProjectClient groups logs by (client, project). Groups are returned in
// the order their key first appears in logs.
func GroupByProjectClient(logs []*domain.TimeLog) []ProjectGroup {
	return group(logs, func(l *domain.TimeLog) GroupKey {
		return GroupKey{Client: l.Client, Project: l.Project}
	})
}

// GroupByProject groups logs by project alone. Client is taken from the
// representative member. Used by the invoice composer once the client is fixed.
func GroupByProject(logs []*domain.TimeLog) []ProjectGroup {
	return group(logs, func(l *domain.TimeLog) GroupKey {
		return GroupKey{Project: l.Project}
	})
}

func group(logs []*domain.TimeLog, keyOf func(*domain.TimeLog) GroupKey) []ProjectGroup {
	index := make(map[GroupKey]int)
	var groups []ProjectGroup

	for _, l := range logs {
		if l == nil {
			continue
		}
		k := keyOf(l)
		i, ok := index[k]
		if !ok {
			i = len(groups)
			index[k] = i
			groups = append(groups, ProjectGroup{Project: l.Project})
		}
		g := &groups[i]
		g.TotalHours += l.Hours
		g.LogCount++
		if g.LogCount == 1 || !l.UpdatedAt.Before(g.repAt) {
			g.Client = l.Client
			g.Rate = l.Rate
			g.RateType = l.RateType
			g.repAt = l.UpdatedAt
		}
	}
	return groups
}

// TotalHoursByProject sums hours per project. Sentinel rates are irrelevant here.
func TotalHoursByProject(logs []*domain.TimeLog) map[string]float64 {
	out := make(map[string]float64)
	for _, l := range logs {
		if l == nil {
			continue
		}
		out[l.Project] += l.Hours
	}
	return out
}

// SentinelPolicy decides whether fixed-rate sentinel rows take part in a
// rate average.
type SentinelPolicy int

const (
	// IncludeSentinel averages raw rate values, -1 included.
	IncludeSentinel SentinelPolicy = iota
	// ExcludeSentinel drops -1 rows before averaging.
	ExcludeSentinel
)

// AverageRateByProject returns the arithmetic mean of rate per project. With
// ExcludeSentinel a project whose logs are all fixed-rate is omitted.
func AverageRateByProject(logs []*domain.TimeLog, policy SentinelPolicy) map[string]float64 {
	sums := make(map[string]float64)
	counts := make(map[string]int)
	for _, l := range logs {
		if l == nil {
			continue
		}
		if policy == ExcludeSentinel && l.HasSentinelRate() {
			continue
		}
		sums[l.Project] += l.Rate
		counts[l.Project]++
	}
	out := make(map[string]float64, len(sums))
	for p, s := range sums {
		out[p] = s / float64(counts[p])
	}
	return out
}

// PotentialInvoiceByProject returns Σ(hours × rate) per project in cents
// precision. Sentinel rows are always excluded: they would subtract revenue.
func PotentialInvoiceByProject(logs []*domain.TimeLog) map[string]float64 {
	acc := make(map[string][]float64)
	for _, l := range logs {
		if l == nil {
			continue
		}
		if _, ok := acc[l.Project]; !ok {
			acc[l.Project] = nil
		}
		if l.HasSentinelRate() {
			continue
		}
		acc[l.Project] = append(acc[l.Project], Amount(l.Hours, l.Rate))
	}
	out := make(map[string]float64, len(acc))
	for p, amounts := range acc {
		out[p] = Sum(amounts...)
	}
	return out
}

// ProjectStat is the per-project statistic row shown on the dashboard.
type ProjectStat struct {
	Project          string  `json:"project"`
	Hours            float64 `json:"hours"`
	AverageRate      float64 `json:"average_rate"`
	PotentialInvoice float64 `json:"potential_invoice"`
}

// ProjectStats combines hours, the raw average rate and the potential invoice
// per project, sorted by project name. AverageRate keeps sentinels so a fully
// fixed-rate project reports -1 and callers can filter it.
func ProjectStats(logs []*domain.TimeLog) []ProjectStat {
	hours := TotalHoursByProject(logs)
	avg := AverageRateByProject(logs, IncludeSentinel)
	potential := PotentialInvoiceByProject(logs)

	out := make([]ProjectStat, 0, len(hours))
	for p, h := range hours {
		out = append(out, ProjectStat{
			Project:          p,
			Hours:            h,
			AverageRate:      avg[p],
			PotentialInvoice: potential[p],
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Project < out[j].Project })
	return out
}
