package domain

import (
	"time"
)

// InvoiceStatus represents the lifecycle state of an invoice.
type InvoiceStatus string

const (
	InvoiceDraft   InvoiceStatus = "draft"
	InvoicePending InvoiceStatus = "pending"
	InvoicePaid    InvoiceStatus = "paid"
)

// strictTransitions is the progression enforced when strict status checking
// is enabled. Staying in the same state is always allowed.
var strictTransitions = map[InvoiceStatus][]InvoiceStatus{
	InvoiceDraft:   {InvoicePending},
	InvoicePending: {InvoiceDraft, InvoicePaid},
	InvoicePaid:    {},
}

// Valid reports whether s is a known status.
func (s InvoiceStatus) Valid() bool {
	switch s {
	case InvoiceDraft, InvoicePending, InvoicePaid:
		return true
	}
	return false
}

// CanTransitionTo reports whether moving from s to next is allowed. In
// permissive mode every move between known states is allowed. In strict mode
// only the draft → pending → paid progression is, and leaving paid requires force.
func (s InvoiceStatus) CanTransitionTo(next InvoiceStatus, strict, force bool) bool {
	if !next.Valid() {
		return false
	}
	if !strict || s == next {
		return true
	}
	if s == InvoicePaid && force {
		return true
	}
	for _, allowed := range strictTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// InvoiceItem is one line of an invoice, usually one project.
type InvoiceItem struct {
	Project     string  `json:"project" bson:"project"`
	Description string  `json:"description" bson:"description"`
	Hours       float64 `json:"hours" bson:"hours"`
	Rate        float64 `json:"rate" bson:"rate"`
	Amount      float64 `json:"amount" bson:"amount"`
}

// Invoice bills one client for a set of time logs. The items slice is owned
// by the invoice; TimeLogs only references logs by id.
type Invoice struct {
	ID        string        `json:"id" bson:"_id"`
	Number    string        `json:"number" bson:"number"`
	Date      time.Time     `json:"date" bson:"date"`
	Client    string        `json:"client" bson:"client"`
	Items     []InvoiceItem `json:"items" bson:"items"`
	TimeLogs  []string      `json:"time_logs" bson:"time_logs"`
	Subtotal  float64       `json:"subtotal" bson:"subtotal"`
	Total     float64       `json:"total" bson:"total"`
	Status    InvoiceStatus `json:"status" bson:"status"`
	RateType  RateType      `json:"rate_type" bson:"rate_type"`
	CreatedAt time.Time     `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time     `json:"updated_at" bson:"updated_at"`
}

// InvoicePatch is a field-level update of an invoice. Nil fields are left
// untouched.
type InvoicePatch struct {
	Number   *string
	Date     *time.Time
	Client   *string
	Status   *InvoiceStatus
	RateType *RateType
	Items    *[]InvoiceItem
	// TimeLogs replaces the selection; items are then rebuilt from the logs.
	TimeLogs *[]string
	// Rate applies one hourly rate to every item.
	Rate *float64
	// Total is the flat fee of a fixed-rate invoice.
	Total *float64
	// Force allows leaving the paid state under strict status checking.
	Force bool
}

// InvoiceUpdate is the persisted subset of an invoice written by an edit.
type InvoiceUpdate struct {
	Number   *string
	Date     *time.Time
	Client   *string
	Status   *InvoiceStatus
	RateType *RateType
	Items    *[]InvoiceItem
	TimeLogs *[]string
	Subtotal *float64
	Total    *float64
}
