package ports

import (
	"context"
	"time"

	"github.com/hourbook/billing/internal/core/domain"
)

// SortField names a sortable time-log field.
type SortField string

const (
	SortByStartTime SortField = "start_time"
	SortByEndTime   SortField = "end_time"
)

// TimeLogFilter carries the query parameters for reading time logs. Zero
// values mean "no constraint".
type TimeLogFilter struct {
	Project  string
	Client   string
	Invoiced *bool
	IDs      []string
	// OrInvoiceID and OrIDs widen the Invoiced constraint: a log also matches
	// when it is tagged with OrInvoiceID or its id is in OrIDs.
	OrInvoiceID string
	OrIDs       []string
	SortBy      SortField
	SortDesc    bool
	Limit       int64
}

// TimeLogRepository defines persistence operations for time logs.
type TimeLogRepository interface {
	Create(ctx context.Context, log *domain.TimeLog) error
	FindByID(ctx context.Context, id string) (*domain.TimeLog, error)
	Find(ctx context.Context, filter TimeLogFilter) ([]*domain.TimeLog, error)
	// Update applies patch to one log and stamps updated_at.
	Update(ctx context.Context, id string, patch domain.TimeLogPatch) error
	// UpdateIfBounds applies patch only while the stored interval still equals
	// start and end. It reports false when another write moved a bound first.
	UpdateIfBounds(ctx context.Context, id string, start, end time.Time, patch domain.TimeLogPatch) (bool, error)
	Delete(ctx context.Context, id string) error
	// UpdateMany applies patch to every log in ids and returns the modified count.
	UpdateMany(ctx context.Context, ids []string, patch domain.TimeLogPatch) (int64, error)
	// UpdateByProject applies patch to every log of project.
	UpdateByProject(ctx context.Context, project string, patch domain.TimeLogPatch) (int64, error)

	// ClaimForInvoice flips invoiced=false logs in ids to invoiced=true and
	// tags them with invoiceID in one conditional bulk write. Logs already
	// invoiced are left alone, so the returned count tells the caller whether
	// every log was claimed.
	ClaimForInvoice(ctx context.Context, invoiceID string, ids []string) (int64, error)
	// AdoptLegacyClaims tags billed logs in ids that carry no invoice id with
	// invoiceID, so later releases of that invoice reach them.
	AdoptLegacyClaims(ctx context.Context, invoiceID string, ids []string) (int64, error)
	// ReleaseClaim returns logs tagged with invoiceID to unbilled. When ids is
	// empty every log of the invoice is released.
	ReleaseClaim(ctx context.Context, invoiceID string, ids []string) (int64, error)
	// ReleaseClaimExcept releases every log tagged with invoiceID whose id is
	// not in keep.
	ReleaseClaimExcept(ctx context.Context, invoiceID string, keep []string) (int64, error)
}
