package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/hourbook/billing/internal/api/middleware"
	"github.com/hourbook/billing/internal/core/billing"
	"github.com/hourbook/billing/internal/core/domain"
	"github.com/hourbook/billing/internal/core/ports"
)

// Embedding the interfaces keeps the stubs short; routes that reach an
// unimplemented method panic and fail the test.
type stubTimeLogs struct {
	ports.TimeLogService
	err error
}

func (s stubTimeLogs) GetTimeLog(_ context.Context, id string) (*domain.TimeLog, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &domain.TimeLog{ID: id, Project: "Website"}, nil
}

func (s stubTimeLogs) DeleteTimeLog(_ context.Context, _ string) error { return s.err }

type stubInvoices struct {
	ports.InvoiceService
	err error
}

func (s stubInvoices) ComposeInvoice(_ context.Context, _ ports.ComposeInvoiceInput) (*ports.ComposeResult, error) {
	return nil, s.err
}

type stubStats struct{ ports.StatsService }

func (stubStats) Dashboard(_ context.Context) (*billing.DashboardStats, error) {
	return &billing.DashboardStats{MonthlyHours: 12}, nil
}

func newTestRouter(t *testing.T, secret string, logs stubTimeLogs, invoices stubInvoices) http.Handler {
	t.Helper()
	e, err := NewRouter(Deps{
		TimeLogs:  logs,
		Invoices:  invoices,
		Stats:     stubStats{},
		Registry:  prometheus.NewRegistry(),
		JWTSecret: secret,
		Logger:    zerolog.Nop(),
	})
	if err != nil {
		t.Fatalf("router: %v", err)
	}
	return e
}

func do(h http.Handler, method, target, body, token string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) errorResponse {
	t.Helper()
	var body errorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
	return body
}

func TestRouter_ErrorMapping(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"not found", fmt.Errorf("%w: log-9", domain.ErrTimeLogNotFound), http.StatusNotFound},
		{"already invoiced", domain.ErrAlreadyInvoiced, http.StatusConflict},
		{"concurrent edit", domain.ErrConflict, http.StatusConflict},
		{"validation", domain.NewValidationError("end_time", "must be after start_time"), http.StatusUnprocessableEntity},
		{"persistence", domain.Persistence("delete time log", errors.New("no reachable servers")), http.StatusServiceUnavailable},
		{"unexpected", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h := newTestRouter(t, "", stubTimeLogs{err: tc.err}, stubInvoices{})
			rec := do(h, http.MethodDelete, "/v1/time-logs/log-1", "", "")
			if rec.Code != tc.want {
				t.Fatalf("expected %d, got %d (%s)", tc.want, rec.Code, rec.Body.String())
			}
		})
	}
}

func TestRouter_ValidationErrorCarriesField(t *testing.T) {
	h := newTestRouter(t, "", stubTimeLogs{err: domain.NewValidationError("end_time", "must be after start_time")}, stubInvoices{})
	rec := do(h, http.MethodGet, "/v1/time-logs/log-1", "", "")

	body := decodeError(t, rec)
	if body.Field != "end_time" {
		t.Errorf("field = %q, want end_time", body.Field)
	}
}

func TestRouter_MixedClientsListsClients(t *testing.T) {
	mixed := &domain.MixedClientError{Clients: []string{"Acme", "Globex"}}
	h := newTestRouter(t, "", stubTimeLogs{}, stubInvoices{err: mixed})
	rec := do(h, http.MethodPost, "/v1/invoices", `{"number":"INV-1","date":"2024-01-01","time_log_ids":["a","b"]}`, "")

	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rec.Code)
	}
	if body := decodeError(t, rec); len(body.Clients) != 2 {
		t.Errorf("clients = %v", body.Clients)
	}
}

func TestRouter_PersistenceErrorHidesCause(t *testing.T) {
	h := newTestRouter(t, "", stubTimeLogs{err: domain.Persistence("find", errors.New("secret dsn"))}, stubInvoices{})
	rec := do(h, http.MethodGet, "/v1/time-logs/log-1", "", "")

	if strings.Contains(rec.Body.String(), "secret dsn") {
		t.Errorf("response leaks the store error: %s", rec.Body.String())
	}
}

func TestRouter_TokenGuard(t *testing.T) {
	h := newTestRouter(t, "secret", stubTimeLogs{}, stubInvoices{})
	owner, err := middleware.SignToken("secret", "jo", middleware.RoleOwner, time.Hour)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	viewer, err := middleware.SignToken("secret", "accountant", middleware.RoleViewer, time.Hour)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	if rec := do(h, http.MethodGet, "/v1/dashboard", "", ""); rec.Code != http.StatusUnauthorized {
		t.Errorf("anonymous read: expected 401, got %d", rec.Code)
	}
	if rec := do(h, http.MethodGet, "/v1/dashboard", "", viewer); rec.Code != http.StatusOK {
		t.Errorf("viewer read: expected 200, got %d", rec.Code)
	}
	if rec := do(h, http.MethodDelete, "/v1/time-logs/log-1", "", viewer); rec.Code != http.StatusForbidden {
		t.Errorf("viewer write: expected 403, got %d", rec.Code)
	}
	if rec := do(h, http.MethodDelete, "/v1/time-logs/log-1", "", owner); rec.Code != http.StatusNoContent {
		t.Errorf("owner write: expected 204, got %d", rec.Code)
	}
}

func TestRouter_OpenWithoutSecret(t *testing.T) {
	h := newTestRouter(t, "", stubTimeLogs{}, stubInvoices{})
	if rec := do(h, http.MethodGet, "/v1/dashboard", "", ""); rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestRouter_HealthAndMetrics(t *testing.T) {
	h := newTestRouter(t, "secret", stubTimeLogs{}, stubInvoices{})

	if rec := do(h, http.MethodGet, "/health", "", ""); rec.Code != http.StatusOK {
		t.Errorf("health: expected 200, got %d", rec.Code)
	}
	// Readiness is only registered with a checker.
	if rec := do(h, http.MethodGet, "/health/ready", "", ""); rec.Code != http.StatusNotFound {
		t.Errorf("ready: expected 404, got %d", rec.Code)
	}

	do(h, http.MethodGet, "/health", "", "")
	rec := do(h, http.MethodGet, "/metrics", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("metrics: expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "http_requests_total") {
		t.Errorf("metrics output lacks request counters")
	}
}
