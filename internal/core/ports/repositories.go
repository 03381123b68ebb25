package ports

import (
	"context"
	"time"

	"github.com/hourbook/billing/internal/core/domain"
)

// ProjectRepository defines persistence operations for projects.
type ProjectRepository interface {
	Create(ctx context.Context, p *domain.Project) error
	FindByID(ctx context.Context, id string) (*domain.Project, error)
	FindByName(ctx context.Context, name string) (*domain.Project, error)
	List(ctx context.Context) ([]*domain.Project, error)
	Update(ctx context.Context, id string, patch domain.ProjectPatch) error
}

// InvoiceRepository defines persistence operations for invoices.
type InvoiceRepository interface {
	// Insert stores inv under its preassigned ID.
	Insert(ctx context.Context, inv *domain.Invoice) error
	FindByID(ctx context.Context, id string) (*domain.Invoice, error)
	// List returns every invoice, newest date first.
	List(ctx context.Context) ([]*domain.Invoice, error)
	Update(ctx context.Context, id string, upd domain.InvoiceUpdate) error
}

// IdempotencyStore remembers which invoice a client-supplied key produced,
// so a retried compose request returns the original invoice.
type IdempotencyStore interface {
	Lookup(ctx context.Context, key string) (invoiceID string, found bool, err error)
	Remember(ctx context.Context, key, invoiceID string, ttl time.Duration) error
}

// InvoiceRenderer turns an invoice into a printable document.
type InvoiceRenderer interface {
	Render(inv *domain.Invoice) ([]byte, error)
	ContentType() string
}
