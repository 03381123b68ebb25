package domain

import (
	"time"
)

// RateType is the billing mode of a project, time log or invoice.
type RateType string

const (
	RateHourly RateType = "hourly"
	RateFixed  RateType = "fixed"
)

// FixedRateSentinel marks a log whose project is billed at a flat fee; such a
// log has no independent hourly rate and must never enter a monetary sum.
const FixedRateSentinel = -1.0

// Valid reports whether r is a known rate type.
func (r RateType) Valid() bool {
	return r == RateHourly || r == RateFixed
}

// TimeLog is a recorded interval of work against a project.
type TimeLog struct {
	ID          string    `json:"id" bson:"_id"`
	Project     string    `json:"project" bson:"project"`
	Client      string    `json:"client" bson:"client"`
	StartTime   time.Time `json:"start_time" bson:"start_time"`
	EndTime     time.Time `json:"end_time" bson:"end_time"`
	Hours       float64   `json:"hours" bson:"hours"`
	Rate        float64   `json:"rate" bson:"rate"`
	RateType    RateType  `json:"rate_type" bson:"rate_type"`
	Description string    `json:"description,omitempty" bson:"description,omitempty"`
	Invoiced    bool      `json:"invoiced" bson:"invoiced"`
	// InvoiceID is set together with Invoiced by the composer's claim.
	InvoiceID string    `json:"invoice_id,omitempty" bson:"invoice_id,omitempty"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time `json:"updated_at" bson:"updated_at"`
}

// HasSentinelRate reports whether the log carries the fixed-rate sentinel.
func (l *TimeLog) HasSentinelRate() bool {
	return l.Rate == FixedRateSentinel
}

// HoursBetween returns the length of [start, end) in hours.
func HoursBetween(start, end time.Time) float64 {
	return end.Sub(start).Hours()
}

// ValidateInterval checks that end is strictly after start.
func ValidateInterval(start, end time.Time) error {
	if start.IsZero() {
		return NewValidationError("start_time", "is required")
	}
	if end.IsZero() {
		return NewValidationError("end_time", "is required")
	}
	if !end.After(start) {
		return NewValidationError("end_time", "must be after start_time")
	}
	return nil
}

// TimeLogPatch carries a targeted field update for one or many time logs.
// Nil fields are left untouched. Hours is only ever set by the service,
// derived from the interval in the same write as the bounds.
type TimeLogPatch struct {
	Project     *string
	Client      *string
	StartTime   *time.Time
	EndTime     *time.Time
	Hours       *float64
	Rate        *float64
	RateType    *RateType
	Description *string
}

// Empty reports whether the patch changes nothing.
func (p TimeLogPatch) Empty() bool {
	return p.Project == nil && p.Client == nil && p.StartTime == nil && p.EndTime == nil &&
		p.Hours == nil && p.Rate == nil && p.RateType == nil && p.Description == nil
}

// FixedRatePatch is the cascade applied to every log of a project that
// switches to fixed-rate billing. Re-applying it is a no-op.
func FixedRatePatch() TimeLogPatch {
	rate := FixedRateSentinel
	rt := RateFixed
	return TimeLogPatch{Rate: &rate, RateType: &rt}
}
