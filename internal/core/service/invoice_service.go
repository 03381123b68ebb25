package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/hourbook/billing/internal/core/billing"
	"github.com/hourbook/billing/internal/core/domain"
	"github.com/hourbook/billing/internal/core/ports"
)

const defaultIdempotencyTTL = 24 * time.Hour

// InvoiceOptions tunes invoice policies that are configurable per deployment.
type InvoiceOptions struct {
	// StrictStatus enforces the draft → pending → paid progression.
	StrictStatus   bool
	IdempotencyTTL time.Duration
}

type InvoiceService struct {
	invoices ports.InvoiceRepository
	logs     ports.TimeLogRepository
	idem     ports.IdempotencyStore
	renderer ports.InvoiceRenderer
	opts     InvoiceOptions
	logger   zerolog.Logger
	now      func() time.Time
	newID    func() string
}

// NewInvoiceService wires the composer. idem and renderer may be nil; compose
// requests are then not replayable and RenderInvoice fails.
func NewInvoiceService(
	invoices ports.InvoiceRepository,
	logs ports.TimeLogRepository,
	idem ports.IdempotencyStore,
	renderer ports.InvoiceRenderer,
	opts InvoiceOptions,
	logger zerolog.Logger,
) *InvoiceService {
	if opts.IdempotencyTTL <= 0 {
		opts.IdempotencyTTL = defaultIdempotencyTTL
	}
	return &InvoiceService{
		invoices: invoices,
		logs:     logs,
		idem:     idem,
		renderer: renderer,
		opts:     opts,
		logger:   logger,
		now:      func() time.Time { return time.Now().UTC() },
		newID:    uuid.NewString,
	}
}

// ComposeInvoice bills the selected time logs on a new pending invoice.
//
// The logs are claimed for the new invoice id before the invoice is written.
// A claim that comes up short means another request billed some of them
// first; the claim is released and ErrAlreadyInvoiced returned. A failed
// insert also releases the claim, so a failed call leaves every log unbilled.
func (s *InvoiceService) ComposeInvoice(ctx context.Context, in ports.ComposeInvoiceInput) (*ports.ComposeResult, error) {
	number := strings.TrimSpace(in.Number)
	if number == "" {
		return nil, domain.NewValidationError("number", "is required")
	}
	if in.Date.IsZero() {
		return nil, domain.NewValidationError("date", "is required")
	}
	ids := uniqueIDs(in.TimeLogIDs)
	if len(ids) == 0 {
		return nil, domain.NewValidationError("time_log_ids", "must select at least one time log")
	}

	if in.IdempotencyKey != "" {
		if inv := s.replay(ctx, in.IdempotencyKey); inv != nil {
			return &ports.ComposeResult{Invoice: inv, Replayed: true}, nil
		}
	}

	logs, err := s.resolveLogs(ctx, ids)
	if err != nil {
		return nil, err
	}
	client, err := singleClient(logs)
	if err != nil {
		return nil, err
	}
	for _, l := range logs {
		if l.Invoiced {
			return nil, fmt.Errorf("%w: %s", domain.ErrAlreadyInvoiced, l.ID)
		}
	}

	invoiceID := s.newID()
	claimed, err := s.logs.ClaimForInvoice(ctx, invoiceID, ids)
	if err != nil {
		s.release(ctx, invoiceID, nil)
		return nil, domain.Persistence("claim time logs", err)
	}
	if claimed != int64(len(ids)) {
		s.logger.Warn().
			Str("invoice_id", invoiceID).
			Int64("claimed", claimed).
			Int("time_log_count", len(ids)).
			Msg("time logs billed concurrently")
		s.release(ctx, invoiceID, nil)
		return nil, domain.ErrAlreadyInvoiced
	}

	items := billing.BuildItems(logs)
	subtotal, total := billing.Totals(items)
	now := s.now()
	inv := &domain.Invoice{
		ID:        invoiceID,
		Number:    number,
		Date:      in.Date.UTC(),
		Client:    client,
		Items:     items,
		TimeLogs:  ids,
		Subtotal:  subtotal,
		Total:     total,
		Status:    domain.InvoicePending,
		RateType:  domain.RateHourly,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.invoices.Insert(ctx, inv); err != nil {
		s.logger.Error().Err(err).Str("invoice_id", invoiceID).Msg("failed to insert invoice")
		s.release(ctx, invoiceID, nil)
		return nil, domain.Persistence("insert invoice", err)
	}

	if in.IdempotencyKey != "" && s.idem != nil {
		if err := s.idem.Remember(ctx, in.IdempotencyKey, inv.ID, s.opts.IdempotencyTTL); err != nil {
			s.logger.Warn().Err(err).Str("idempotency_key", in.IdempotencyKey).Msg("failed to store idempotency key")
		}
	}

	s.logger.Info().
		Str("invoice_id", inv.ID).
		Str("number", inv.Number).
		Str("client", client).
		Int("time_log_count", len(ids)).
		Float64("total", inv.Total).
		Msg("invoice composed")
	return &ports.ComposeResult{Invoice: inv}, nil
}

// replay returns the invoice an idempotency key already produced, or nil.
// Store failures degrade to a fresh composition; the claim still prevents
// double billing.
func (s *InvoiceService) replay(ctx context.Context, key string) *domain.Invoice {
	if s.idem == nil {
		return nil
	}
	id, found, err := s.idem.Lookup(ctx, key)
	if err != nil {
		s.logger.Warn().Err(err).Str("idempotency_key", key).Msg("idempotency lookup failed")
		return nil
	}
	if !found {
		return nil
	}
	inv, err := s.invoices.FindByID(ctx, id)
	if err != nil {
		s.logger.Warn().Err(err).Str("idempotency_key", key).Str("invoice_id", id).Msg("idempotency key points to a missing invoice")
		return nil
	}
	s.logger.Info().Str("idempotency_key", key).Str("invoice_id", id).Msg("idempotent replay")
	return inv
}

// release hands claimed logs back to the unbilled pool. It runs even when the
// request context is already cancelled.
func (s *InvoiceService) release(ctx context.Context, invoiceID string, ids []string) {
	n, err := s.logs.ReleaseClaim(context.WithoutCancel(ctx), invoiceID, ids)
	if err != nil {
		s.logger.Error().Err(err).Str("invoice_id", invoiceID).Msg("failed to release time log claim")
		return
	}
	s.logger.Warn().Str("invoice_id", invoiceID).Int64("released", n).Msg("time log claim released")
}

// resolveLogs loads every id, oldest first, failing with ErrTimeLogNotFound
// when any of them does not resolve.
func (s *InvoiceService) resolveLogs(ctx context.Context, ids []string) ([]*domain.TimeLog, error) {
	logs, err := s.logs.Find(ctx, ports.TimeLogFilter{IDs: ids, SortBy: ports.SortByStartTime})
	if err != nil {
		return nil, domain.Persistence("find time logs", err)
	}
	if len(logs) == len(ids) {
		return logs, nil
	}
	found := make(map[string]struct{}, len(logs))
	for _, l := range logs {
		found[l.ID] = struct{}{}
	}
	var missing []string
	for _, id := range ids {
		if _, ok := found[id]; !ok {
			missing = append(missing, id)
		}
	}
	return nil, fmt.Errorf("%w: %s", domain.ErrTimeLogNotFound, strings.Join(missing, ", "))
}

func singleClient(logs []*domain.TimeLog) (string, error) {
	clients := billing.UniqueClients(logs)
	if len(clients) != 1 {
		return "", &domain.MixedClientError{Clients: clients}
	}
	return clients[0], nil
}

func uniqueIDs(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

// EditInvoice applies a field-level update.
//
// A new log selection rebuilds the items from scratch: added logs are claimed
// for this invoice and, once the invoice is written, logs no longer selected
// are released. If the write fails only the added logs are released, so the
// invoice and its previous logs stay consistent.
func (s *InvoiceService) EditInvoice(ctx context.Context, id string, patch domain.InvoicePatch) (*domain.Invoice, error) {
	inv, err := s.invoices.FindByID(ctx, id)
	if err != nil {
		return nil, domain.Persistence("find invoice", err)
	}

	var upd domain.InvoiceUpdate
	if err := s.applyMetadata(inv, patch, &upd); err != nil {
		return nil, err
	}

	rateType := inv.RateType
	if upd.RateType != nil {
		rateType = *upd.RateType
	}

	items := inv.Items
	itemsChanged := false
	var (
		selection []string
		added     []string
	)

	switch {
	case patch.TimeLogs != nil:
		selection = uniqueIDs(*patch.TimeLogs)
		if len(selection) == 0 {
			return nil, domain.NewValidationError("time_logs", "must select at least one time log")
		}
		if _, err := s.logs.AdoptLegacyClaims(ctx, inv.ID, inv.TimeLogs); err != nil {
			return nil, domain.Persistence("tag time logs", err)
		}
		logs, err := s.resolveLogs(ctx, selection)
		if err != nil {
			return nil, err
		}
		client, err := singleClient(logs)
		if err != nil {
			return nil, err
		}
		if upd.Client == nil {
			upd.Client = &client
		} else if *upd.Client != client {
			return nil, &domain.MixedClientError{Clients: []string{*upd.Client, client}}
		}

		added, err = s.claimAdded(ctx, inv, logs)
		if err != nil {
			return nil, err
		}
		items = billing.BuildItems(logs)
		itemsChanged = true
		upd.TimeLogs = &selection

	case patch.Items != nil:
		items, err = normalizeItems(*patch.Items)
		if err != nil {
			return nil, err
		}
		itemsChanged = true
	}

	if patch.Rate != nil {
		if *patch.Rate < 0 {
			s.releaseAdded(ctx, inv.ID, added)
			return nil, domain.NewValidationError("rate", "must not be negative")
		}
		items = billing.ApplyRate(items, *patch.Rate)
		itemsChanged = true
	}
	if itemsChanged {
		upd.Items = &items
	}

	if err := setTotals(inv, rateType, items, itemsChanged, patch, &upd); err != nil {
		s.releaseAdded(ctx, inv.ID, added)
		return nil, err
	}

	if emptyUpdate(upd) {
		return nil, domain.NewValidationError("", "nothing to update")
	}

	if err := s.invoices.Update(ctx, inv.ID, upd); err != nil {
		s.logger.Error().Err(err).Str("invoice_id", inv.ID).Msg("failed to update invoice")
		s.releaseAdded(ctx, inv.ID, added)
		return nil, domain.Persistence("update invoice", err)
	}

	if selection != nil {
		released, err := s.logs.ReleaseClaimExcept(ctx, inv.ID, selection)
		if err != nil {
			// Re-submitting the same selection finishes the release.
			s.logger.Error().Err(err).Str("invoice_id", inv.ID).Msg("failed to release deselected time logs")
			return nil, domain.Persistence("release time logs", err)
		}
		s.logger.Info().
			Str("invoice_id", inv.ID).
			Int("added", len(added)).
			Int64("released", released).
			Int("time_log_count", len(selection)).
			Msg("invoice selection changed")
	}

	updated, err := s.invoices.FindByID(ctx, inv.ID)
	if err != nil {
		return nil, domain.Persistence("find invoice", err)
	}
	s.logger.Info().Str("invoice_id", inv.ID).Str("status", string(updated.Status)).Msg("invoice updated")
	return updated, nil
}

func (s *InvoiceService) applyMetadata(inv *domain.Invoice, patch domain.InvoicePatch, upd *domain.InvoiceUpdate) error {
	if patch.Number != nil {
		n := strings.TrimSpace(*patch.Number)
		if n == "" {
			return domain.NewValidationError("number", "must not be empty")
		}
		upd.Number = &n
	}
	if patch.Date != nil {
		if patch.Date.IsZero() {
			return domain.NewValidationError("date", "must not be empty")
		}
		d := patch.Date.UTC()
		upd.Date = &d
	}
	if patch.Client != nil {
		c := strings.TrimSpace(*patch.Client)
		if c == "" {
			return domain.NewValidationError("client", "must not be empty")
		}
		upd.Client = &c
	}
	if patch.Status != nil {
		next := *patch.Status
		if !next.Valid() {
			return domain.NewValidationError("status", "must be draft, pending or paid")
		}
		if !inv.Status.CanTransitionTo(next, s.opts.StrictStatus, patch.Force) {
			return fmt.Errorf("%w: %s -> %s", domain.ErrInvalidTransition, inv.Status, next)
		}
		upd.Status = &next
	}
	if patch.RateType != nil {
		if !patch.RateType.Valid() {
			return domain.NewValidationError("rate_type", "must be hourly or fixed")
		}
		rt := *patch.RateType
		upd.RateType = &rt
	}
	return nil
}

// claimAdded claims the selected logs the invoice does not bill yet and
// returns their ids. Logs billed by another invoice abort the edit. The
// invoice's own legacy logs were tagged before the read, so they match by
// invoice id like any other.
func (s *InvoiceService) claimAdded(ctx context.Context, inv *domain.Invoice, logs []*domain.TimeLog) ([]string, error) {
	var added []string
	for _, l := range logs {
		if !l.Invoiced {
			added = append(added, l.ID)
			continue
		}
		if l.InvoiceID == inv.ID {
			continue
		}
		return nil, fmt.Errorf("%w: %s", domain.ErrAlreadyInvoiced, l.ID)
	}
	if len(added) == 0 {
		return nil, nil
	}

	claimed, err := s.logs.ClaimForInvoice(ctx, inv.ID, added)
	if err != nil {
		s.releaseAdded(ctx, inv.ID, added)
		return nil, domain.Persistence("claim time logs", err)
	}
	if claimed != int64(len(added)) {
		s.releaseAdded(ctx, inv.ID, added)
		return nil, domain.ErrAlreadyInvoiced
	}
	return added, nil
}

func (s *InvoiceService) releaseAdded(ctx context.Context, invoiceID string, added []string) {
	if len(added) == 0 {
		return
	}
	s.release(ctx, invoiceID, added)
}

func normalizeItems(in []domain.InvoiceItem) ([]domain.InvoiceItem, error) {
	out := make([]domain.InvoiceItem, len(in))
	for i, it := range in {
		it.Project = strings.TrimSpace(it.Project)
		if it.Project == "" {
			return nil, domain.NewValidationError(fmt.Sprintf("items[%d].project", i), "is required")
		}
		if it.Hours < 0 {
			return nil, domain.NewValidationError(fmt.Sprintf("items[%d].hours", i), "must not be negative")
		}
		if it.Rate < 0 {
			return nil, domain.NewValidationError(fmt.Sprintf("items[%d].rate", i), "must not be negative")
		}
		if strings.TrimSpace(it.Description) == "" {
			it.Description = billing.ItemDescription(it.Project)
		}
		it.Amount = billing.Amount(it.Hours, it.Rate)
		out[i] = it
	}
	return out, nil
}

// setTotals keeps hourly invoices at Σ item amounts and lets fixed-rate
// invoices carry a flat fee independent of their items.
func setTotals(inv *domain.Invoice, rateType domain.RateType, items []domain.InvoiceItem, itemsChanged bool, patch domain.InvoicePatch, upd *domain.InvoiceUpdate) error {
	if rateType == domain.RateFixed {
		if patch.Total == nil {
			return nil
		}
		if *patch.Total < 0 {
			return domain.NewValidationError("total", "must not be negative")
		}
		fee := billing.RoundCents(*patch.Total)
		upd.Subtotal = &fee
		upd.Total = &fee
		return nil
	}

	if patch.Total != nil {
		return domain.NewValidationError("total", "can only be set on fixed-rate invoices")
	}
	if itemsChanged || inv.RateType == domain.RateFixed {
		subtotal, total := billing.Totals(items)
		upd.Subtotal = &subtotal
		upd.Total = &total
	}
	return nil
}

func emptyUpdate(u domain.InvoiceUpdate) bool {
	return u.Number == nil && u.Date == nil && u.Client == nil && u.Status == nil &&
		u.RateType == nil && u.Items == nil && u.TimeLogs == nil && u.Subtotal == nil && u.Total == nil
}

// LogsEligibleForInvoice lists what an invoice editor may select: every
// unbilled log plus the logs this invoice already bills, newest first.
func (s *InvoiceService) LogsEligibleForInvoice(ctx context.Context, id string) ([]*domain.TimeLog, error) {
	inv, err := s.invoices.FindByID(ctx, id)
	if err != nil {
		return nil, domain.Persistence("find invoice", err)
	}
	unbilled := false
	logs, err := s.logs.Find(ctx, ports.TimeLogFilter{
		Invoiced:    &unbilled,
		OrInvoiceID: inv.ID,
		OrIDs:       inv.TimeLogs,
		SortBy:      ports.SortByStartTime,
		SortDesc:    true,
	})
	if err != nil {
		return nil, domain.Persistence("find eligible logs", err)
	}
	return logs, nil
}

func (s *InvoiceService) GetInvoice(ctx context.Context, id string) (*domain.Invoice, error) {
	inv, err := s.invoices.FindByID(ctx, id)
	if err != nil {
		return nil, domain.Persistence("find invoice", err)
	}
	return inv, nil
}

func (s *InvoiceService) ListInvoices(ctx context.Context) ([]*domain.Invoice, error) {
	invoices, err := s.invoices.List(ctx)
	if err != nil {
		return nil, domain.Persistence("list invoices", err)
	}
	return invoices, nil
}

var errNoRenderer = errors.New("invoice rendering is not configured")

// RenderInvoice returns the invoice together with its printable document.
func (s *InvoiceService) RenderInvoice(ctx context.Context, id string) (*domain.Invoice, []byte, error) {
	if s.renderer == nil {
		return nil, nil, errNoRenderer
	}
	inv, err := s.invoices.FindByID(ctx, id)
	if err != nil {
		return nil, nil, domain.Persistence("find invoice", err)
	}
	doc, err := s.renderer.Render(inv)
	if err != nil {
		s.logger.Error().Err(err).Str("invoice_id", id).Msg("failed to render invoice")
		return nil, nil, fmt.Errorf("render invoice %s: %w", id, err)
	}
	return inv, doc, nil
}
