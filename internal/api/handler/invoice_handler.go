package handler

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/hourbook/billing/internal/api/metrics"
	"github.com/hourbook/billing/internal/core/domain"
	"github.com/hourbook/billing/internal/core/ports"
	"github.com/hourbook/billing/internal/infrastructure/pdf"
)

// InvoiceHandler handles HTTP requests for invoices.
type InvoiceHandler struct {
	service ports.InvoiceService
	logger  zerolog.Logger
}

func NewInvoiceHandler(service ports.InvoiceService, logger zerolog.Logger) *InvoiceHandler {
	return &InvoiceHandler{service: service, logger: logger}
}

// Compose handles POST /v1/invoices.
//
// @Summary      Compose an invoice from unbilled time logs
// @Description  The selected logs must be unbilled and belong to one client. They are marked invoiced together with the invoice.
// @Tags         invoices
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        Idempotency-Key  header    string                 false  "Replays the original invoice when a request is retried"
// @Param        body             body      composeInvoiceRequest  true   "Invoice metadata and log selection"
// @Success      201              {object}  invoiceResponse
// @Success      200              {object}  invoiceResponse  "Replayed for a known Idempotency-Key"
// @Failure      400              {object}  errorResponse
// @Failure      404              {object}  errorResponse
// @Failure      409              {object}  errorResponse
// @Failure      422              {object}  errorResponse
// @Failure      503              {object}  errorResponse
// @Router       /v1/invoices [post]
func (h *InvoiceHandler) Compose(c echo.Context) error {
	var req composeInvoiceRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		metrics.InvoiceErrorsTotal.WithLabelValues("compose", "validation").Inc()
		return err
	}

	res, err := h.service.ComposeInvoice(c.Request().Context(), ports.ComposeInvoiceInput{
		Number:         req.Number,
		Date:           req.Date.Time,
		TimeLogIDs:     req.TimeLogIDs,
		IdempotencyKey: c.Request().Header.Get("Idempotency-Key"),
	})
	if err != nil {
		metrics.InvoiceErrorsTotal.WithLabelValues("compose", failureReason(err)).Inc()
		return err
	}

	if res.Replayed {
		metrics.InvoicesComposedTotal.WithLabelValues("replayed").Inc()
		return c.JSON(http.StatusOK, toInvoiceResponse(res.Invoice))
	}

	metrics.InvoicesComposedTotal.WithLabelValues("created").Inc()
	metrics.TimeLogsInvoicedTotal.Add(float64(len(res.Invoice.TimeLogs)))
	metrics.InvoicedAmountTotal.Add(res.Invoice.Total)
	h.logger.Info().
		Str("actor", actor(c)).
		Str("invoice_id", res.Invoice.ID).
		Str("number", res.Invoice.Number).
		Int("time_log_count", len(res.Invoice.TimeLogs)).
		Msg("invoice composed")

	return c.JSON(http.StatusCreated, toInvoiceResponse(res.Invoice))
}

// List handles GET /v1/invoices.
//
// @Summary      List invoices, newest first
// @Tags         invoices
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}  invoiceResponse
// @Router       /v1/invoices [get]
func (h *InvoiceHandler) List(c echo.Context) error {
	invs, err := h.service.ListInvoices(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toInvoiceResponses(invs))
}

// Get handles GET /v1/invoices/:id.
//
// @Summary      Get an invoice
// @Tags         invoices
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Invoice id"
// @Success      200  {object}  invoiceResponse
// @Failure      404  {object}  errorResponse
// @Router       /v1/invoices/{id} [get]
func (h *InvoiceHandler) Get(c echo.Context) error {
	inv, err := h.service.GetInvoice(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toInvoiceResponse(inv))
}

// Edit handles PATCH /v1/invoices/:id.
//
// @Summary      Edit an invoice
// @Description  A new time_logs selection rebuilds the items. Removed logs return to unbilled.
// @Tags         invoices
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string              true  "Invoice id"
// @Param        body  body      editInvoiceRequest  true  "Fields to change"
// @Success      200   {object}  invoiceResponse
// @Failure      400   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /v1/invoices/{id} [patch]
func (h *InvoiceHandler) Edit(c echo.Context) error {
	var req editInvoiceRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		metrics.InvoiceErrorsTotal.WithLabelValues("edit", "validation").Inc()
		return err
	}

	id := c.Param("id")
	inv, err := h.service.EditInvoice(c.Request().Context(), id, req.patch())
	if err != nil {
		metrics.InvoiceErrorsTotal.WithLabelValues("edit", failureReason(err)).Inc()
		return err
	}

	h.logger.Info().
		Str("actor", actor(c)).
		Str("invoice_id", id).
		Str("status", string(inv.Status)).
		Msg("invoice edited")

	return c.JSON(http.StatusOK, toInvoiceResponse(inv))
}

// EligibleTimeLogs handles GET /v1/invoices/:id/time-logs.
//
// @Summary      Time logs that may be selected for an invoice
// @Description  Unbilled logs of every client plus the logs this invoice already bills.
// @Tags         invoices
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Invoice id"
// @Success      200  {array}   domain.TimeLog
// @Failure      404  {object}  errorResponse
// @Router       /v1/invoices/{id}/time-logs [get]
func (h *InvoiceHandler) EligibleTimeLogs(c echo.Context) error {
	logs, err := h.service.LogsEligibleForInvoice(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, emptyIfNil(logs))
}

// PDF handles GET /v1/invoices/:id/pdf.
//
// @Summary      Download an invoice as PDF
// @Tags         invoices
// @Produce      application/pdf
// @Security     BearerAuth
// @Param        id   path      string  true  "Invoice id"
// @Success      200  {file}    binary
// @Failure      404  {object}  errorResponse
// @Router       /v1/invoices/{id}/pdf [get]
func (h *InvoiceHandler) PDF(c echo.Context) error {
	inv, doc, err := h.service.RenderInvoice(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	c.Response().Header().Set(echo.HeaderContentDisposition,
		fmt.Sprintf("attachment; filename=%q", pdf.FileName(inv)))
	return c.Blob(http.StatusOK, "application/pdf", doc)
}

// failureReason is the metrics label of a failed invoice operation.
func failureReason(err error) string {
	var (
		ve *domain.ValidationError
		me *domain.MixedClientError
		pe *domain.PersistenceError
	)
	switch {
	case errors.As(err, &ve):
		return "validation"
	case errors.As(err, &me):
		return "mixed_client"
	case errors.Is(err, domain.ErrNotFound):
		return "not_found"
	case errors.Is(err, domain.ErrAlreadyInvoiced):
		return "already_invoiced"
	case errors.Is(err, domain.ErrInvalidTransition):
		return "invalid_transition"
	case errors.As(err, &pe):
		return "persistence"
	default:
		return "internal"
	}
}
