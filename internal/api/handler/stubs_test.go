package handler

import (
	"context"
	"io"
	"net/http/httptest"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/hourbook/billing/internal/core/billing"
	"github.com/hourbook/billing/internal/core/domain"
	"github.com/hourbook/billing/internal/core/ports"
)

// newContext builds an echo context with the validator installed.
func newContext(method, target string, body io.Reader) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	e.Validator = NewValidator()
	req := httptest.NewRequest(method, target, body)
	if body != nil {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func jsonBody(s string) io.Reader { return strings.NewReader(s) }

type stubTimeLogService struct {
	created  ports.CreateTimeLogInput
	patch    domain.TimeLogPatch
	unbilled bool
	limit    int
	log      *domain.TimeLog
	logs     []*domain.TimeLog
	err      error
}

func (s *stubTimeLogService) CreateTimeLog(_ context.Context, in ports.CreateTimeLogInput) (*domain.TimeLog, error) {
	s.created = in
	return s.log, s.err
}

func (s *stubTimeLogService) GetTimeLog(_ context.Context, _ string) (*domain.TimeLog, error) {
	return s.log, s.err
}

func (s *stubTimeLogService) UpdateTimeLog(_ context.Context, _ string, patch domain.TimeLogPatch) (*domain.TimeLog, error) {
	s.patch = patch
	return s.log, s.err
}

func (s *stubTimeLogService) DeleteTimeLog(_ context.Context, _ string) error { return s.err }

func (s *stubTimeLogService) UnbilledLogsForProject(_ context.Context, _ string) ([]*domain.TimeLog, error) {
	s.unbilled = true
	return s.logs, s.err
}

func (s *stubTimeLogService) ProjectLogs(_ context.Context, _ string) ([]*domain.TimeLog, error) {
	return s.logs, s.err
}

func (s *stubTimeLogService) RecentLogs(_ context.Context, limit int) ([]*domain.TimeLog, error) {
	s.limit = limit
	return s.logs, s.err
}

func (s *stubTimeLogService) ProjectStats(_ context.Context) ([]billing.ProjectStat, error) {
	return nil, s.err
}

type stubProjectService struct {
	created ports.CreateProjectInput
	patch   domain.ProjectPatch
	result  *ports.ProjectUpdateResult
	err     error
}

func (s *stubProjectService) CreateProject(_ context.Context, in ports.CreateProjectInput) (*domain.Project, error) {
	s.created = in
	if s.err != nil {
		return nil, s.err
	}
	return &domain.Project{ID: "p-1", Name: in.Name, Client: in.Client, Rate: in.Rate, RateType: in.RateType}, nil
}

func (s *stubProjectService) UpdateProject(_ context.Context, _ string, patch domain.ProjectPatch) (*ports.ProjectUpdateResult, error) {
	s.patch = patch
	return s.result, s.err
}

func (s *stubProjectService) UpdateProjectByName(_ context.Context, _ string, patch domain.ProjectPatch) (*ports.ProjectUpdateResult, error) {
	s.patch = patch
	return s.result, s.err
}

func (s *stubProjectService) ListProjects(_ context.Context) ([]domain.ProjectWithTotals, error) {
	return nil, s.err
}

func (s *stubProjectService) CascadeFixedRate(_ context.Context, _ string) (int64, error) {
	return 0, s.err
}

type stubInvoiceService struct {
	composed ports.ComposeInvoiceInput
	patch    domain.InvoicePatch
	result   *ports.ComposeResult
	invoice  *domain.Invoice
	doc      []byte
	err      error
}

func (s *stubInvoiceService) ComposeInvoice(_ context.Context, in ports.ComposeInvoiceInput) (*ports.ComposeResult, error) {
	s.composed = in
	return s.result, s.err
}

func (s *stubInvoiceService) EditInvoice(_ context.Context, _ string, patch domain.InvoicePatch) (*domain.Invoice, error) {
	s.patch = patch
	return s.invoice, s.err
}

func (s *stubInvoiceService) LogsEligibleForInvoice(_ context.Context, _ string) ([]*domain.TimeLog, error) {
	return nil, s.err
}

func (s *stubInvoiceService) GetInvoice(_ context.Context, _ string) (*domain.Invoice, error) {
	return s.invoice, s.err
}

func (s *stubInvoiceService) ListInvoices(_ context.Context) ([]*domain.Invoice, error) {
	if s.invoice == nil {
		return nil, s.err
	}
	return []*domain.Invoice{s.invoice}, s.err
}

func (s *stubInvoiceService) RenderInvoice(_ context.Context, _ string) (*domain.Invoice, []byte, error) {
	return s.invoice, s.doc, s.err
}

func nopLogger() zerolog.Logger { return zerolog.Nop() }
