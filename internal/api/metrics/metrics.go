// Package metrics defines the custom Prometheus metrics of the billing API.
// It is the single source of truth for metric names, labels, and help
// strings.
//
// Call Register once at startup, with the same registry the HTTP middleware
// and /metrics handler use.
package metrics

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "billing"

// ── Invoice metrics ───────────────────────────────────────────────────────────

// InvoicesComposedTotal counts compose requests that returned an invoice.
// Label:
//   - result: "created" or "replayed" (idempotency key matched)
var InvoicesComposedTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "invoices_composed_total",
		Help:      "Total number of invoices returned by compose requests.",
	},
	[]string{"result"},
)

// InvoiceErrorsTotal counts failed compose and edit requests.
// Labels:
//   - op: "compose" or "edit"
//   - reason: "validation", "not_found", "mixed_client", "already_invoiced",
//     "invalid_transition", "persistence" or "internal"
var InvoiceErrorsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "invoice_errors_total",
		Help:      "Total number of invoice operations that failed, by reason.",
	},
	[]string{"op", "reason"},
)

// TimeLogsInvoicedTotal counts time logs billed by newly composed invoices.
var TimeLogsInvoicedTotal = prometheus.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "time_logs_invoiced_total",
		Help:      "Total number of time logs billed by composed invoices.",
	},
)

// InvoicedAmountTotal sums the totals of newly composed invoices.
var InvoicedAmountTotal = prometheus.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "invoiced_amount_total",
		Help:      "Sum of the totals of composed invoices, in the configured currency.",
	},
)

// ── Project metrics ───────────────────────────────────────────────────────────

// ProjectCascadeWritesTotal counts time logs rewritten by project cascades.
// Label:
//   - kind: "fixed_rate" or "rename"
var ProjectCascadeWritesTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "project_cascade_writes_total",
		Help:      "Total number of time logs rewritten by project cascades.",
	},
	[]string{"kind"},
)

func collectors() []prometheus.Collector {
	return []prometheus.Collector{
		InvoicesComposedTotal,
		InvoiceErrorsTotal,
		TimeLogsInvoicedTotal,
		InvoicedAmountTotal,
		ProjectCascadeWritesTotal,
	}
}

// Register adds every billing metric to reg. Registering twice with the same
// registry is not an error.
func Register(reg prometheus.Registerer) error {
	for _, c := range collectors() {
		if err := reg.Register(c); err != nil {
			var are prometheus.AlreadyRegisteredError
			if errors.As(err, &are) {
				continue
			}
			return err
		}
	}
	return nil
}
