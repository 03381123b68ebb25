package ports

import (
	"context"
	"time"

	"github.com/hourbook/billing/internal/core/billing"
	"github.com/hourbook/billing/internal/core/domain"
)

// CreateTimeLogInput carries everything needed to log work. Hours are always
// derived from the interval.
type CreateTimeLogInput struct {
	Project     string
	Client      string
	StartTime   time.Time
	EndTime     time.Time
	Rate        *float64
	RateType    domain.RateType
	Description string
}

// TimeLogService defines use-case operations for time logs.
type TimeLogService interface {
	CreateTimeLog(ctx context.Context, in CreateTimeLogInput) (*domain.TimeLog, error)
	GetTimeLog(ctx context.Context, id string) (*domain.TimeLog, error)
	UpdateTimeLog(ctx context.Context, id string, patch domain.TimeLogPatch) (*domain.TimeLog, error)
	DeleteTimeLog(ctx context.Context, id string) error
	UnbilledLogsForProject(ctx context.Context, project string) ([]*domain.TimeLog, error)
	ProjectLogs(ctx context.Context, project string) ([]*domain.TimeLog, error)
	RecentLogs(ctx context.Context, limit int) ([]*domain.TimeLog, error)
	ProjectStats(ctx context.Context) ([]billing.ProjectStat, error)
}

// CreateProjectInput carries the fields of a new project.
type CreateProjectInput struct {
	Client       string
	Name         string
	Rate         float64
	RateType     domain.RateType
	CustomFields domain.CustomFields
}

// ProjectUpdateResult reports a project edit and the cascade it triggered.
type ProjectUpdateResult struct {
	Project          *domain.Project
	LogsRateCascaded int64
	LogsRenamed      int64
}

// ProjectService defines use-case operations for projects.
type ProjectService interface {
	CreateProject(ctx context.Context, in CreateProjectInput) (*domain.Project, error)
	UpdateProject(ctx context.Context, id string, patch domain.ProjectPatch) (*ProjectUpdateResult, error)
	UpdateProjectByName(ctx context.Context, name string, patch domain.ProjectPatch) (*ProjectUpdateResult, error)
	ListProjects(ctx context.Context) ([]domain.ProjectWithTotals, error)
	CascadeFixedRate(ctx context.Context, project string) (int64, error)
}

// ComposeInvoiceInput carries the metadata and log selection of a new invoice.
type ComposeInvoiceInput struct {
	Number         string
	Date           time.Time
	TimeLogIDs     []string
	IdempotencyKey string
}

// ComposeResult is returned by ComposeInvoice.
type ComposeResult struct {
	Invoice *domain.Invoice
	// Replayed is true when the idempotency key matched an earlier invoice.
	Replayed bool
}

// InvoiceService defines use-case operations for invoices.
type InvoiceService interface {
	ComposeInvoice(ctx context.Context, in ComposeInvoiceInput) (*ComposeResult, error)
	EditInvoice(ctx context.Context, id string, patch domain.InvoicePatch) (*domain.Invoice, error)
	LogsEligibleForInvoice(ctx context.Context, id string) ([]*domain.TimeLog, error)
	GetInvoice(ctx context.Context, id string) (*domain.Invoice, error)
	ListInvoices(ctx context.Context) ([]*domain.Invoice, error)
	RenderInvoice(ctx context.Context, id string) (*domain.Invoice, []byte, error)
}

// StatsService computes dashboard statistics.
type StatsService interface {
	Dashboard(ctx context.Context) (*billing.DashboardStats, error)
}
