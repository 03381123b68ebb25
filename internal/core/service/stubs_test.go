package service

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/hourbook/billing/internal/core/domain"
	"github.com/hourbook/billing/internal/core/ports"
)

// ---------------------------------------------------------------------------
// In-memory time log repository
// ---------------------------------------------------------------------------

type stubTimeLogRepo struct {
	mu    sync.Mutex
	logs  map[string]*domain.TimeLog
	order []string

	findErr  error
	claimErr error
	// beforeClaim runs inside ClaimForInvoice before any log is touched; tests
	// use it to simulate a concurrent composer.
	beforeClaim  func(r *stubTimeLogRepo)
	releaseCalls int
	// beforeBoundWrite runs once ahead of the next UpdateIfBounds, standing in
	// for an edit that lands between the read and the write.
	beforeBoundWrite  func(r *stubTimeLogRepo)
	boundsAlwaysMoved bool
	// failProjectWrites makes the next n UpdateByProject calls fail.
	failProjectWrites int
}

func newStubTimeLogRepo(logs ...*domain.TimeLog) *stubTimeLogRepo {
	r := &stubTimeLogRepo{logs: make(map[string]*domain.TimeLog)}
	for _, l := range logs {
		r.put(l)
	}
	return r
}

func (r *stubTimeLogRepo) put(l *domain.TimeLog) {
	clone := *l
	if _, ok := r.logs[l.ID]; !ok {
		r.order = append(r.order, l.ID)
	}
	r.logs[l.ID] = &clone
}

func (r *stubTimeLogRepo) get(id string) *domain.TimeLog {
	r.mu.Lock()
	defer r.mu.Unlock()
	l, ok := r.logs[id]
	if !ok {
		return nil
	}
	clone := *l
	return &clone
}

func (r *stubTimeLogRepo) Create(_ context.Context, l *domain.TimeLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.put(l)
	return nil
}

func (r *stubTimeLogRepo) FindByID(_ context.Context, id string) (*domain.TimeLog, error) {
	l := r.get(id)
	if l == nil {
		return nil, domain.ErrTimeLogNotFound
	}
	return l, nil
}

// Find applies the same filter semantics as the Mongo query.
func (r *stubTimeLogRepo) Find(_ context.Context, f ports.TimeLogFilter) ([]*domain.TimeLog, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.findErr != nil {
		return nil, r.findErr
	}

	var out []*domain.TimeLog
	for _, id := range r.order {
		l := r.logs[id]
		if f.Project != "" && l.Project != f.Project {
			continue
		}
		if f.Client != "" && l.Client != f.Client {
			continue
		}
		if len(f.IDs) > 0 && !contains(f.IDs, l.ID) {
			continue
		}
		if f.Invoiced != nil {
			match := l.Invoiced == *f.Invoiced ||
				(f.OrInvoiceID != "" && l.InvoiceID == f.OrInvoiceID) ||
				contains(f.OrIDs, l.ID)
			if !match {
				continue
			}
		}
		clone := *l
		out = append(out, &clone)
	}

	if f.SortBy != "" {
		key := func(l *domain.TimeLog) time.Time {
			if f.SortBy == ports.SortByEndTime {
				return l.EndTime
			}
			return l.StartTime
		}
		sort.SliceStable(out, func(i, j int) bool {
			if f.SortDesc {
				return key(out[i]).After(key(out[j]))
			}
			return key(out[i]).Before(key(out[j]))
		})
	}
	if f.Limit > 0 && int64(len(out)) > f.Limit {
		out = out[:f.Limit]
	}
	return out, nil
}

func applyTimeLogPatch(l *domain.TimeLog, p domain.TimeLogPatch) {
	if p.Project != nil {
		l.Project = *p.Project
	}
	if p.Client != nil {
		l.Client = *p.Client
	}
	if p.StartTime != nil {
		l.StartTime = *p.StartTime
	}
	if p.EndTime != nil {
		l.EndTime = *p.EndTime
	}
	if p.Hours != nil {
		l.Hours = *p.Hours
	}
	if p.Rate != nil {
		l.Rate = *p.Rate
	}
	if p.RateType != nil {
		l.RateType = *p.RateType
	}
	if p.Description != nil {
		l.Description = *p.Description
	}
}

func (r *stubTimeLogRepo) Update(_ context.Context, id string, p domain.TimeLogPatch) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	l, ok := r.logs[id]
	if !ok {
		return domain.ErrTimeLogNotFound
	}
	applyTimeLogPatch(l, p)
	return nil
}

func (r *stubTimeLogRepo) UpdateIfBounds(_ context.Context, id string, start, end time.Time, p domain.TimeLogPatch) (bool, error) {
	if hook := r.beforeBoundWrite; hook != nil {
		r.beforeBoundWrite = nil
		hook(r)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	l, ok := r.logs[id]
	if !ok {
		return false, domain.ErrTimeLogNotFound
	}
	if r.boundsAlwaysMoved || !l.StartTime.Equal(start) || !l.EndTime.Equal(end) {
		return false, nil
	}
	applyTimeLogPatch(l, p)
	return true, nil
}

func (r *stubTimeLogRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.logs[id]; !ok {
		return domain.ErrTimeLogNotFound
	}
	delete(r.logs, id)
	for i, o := range r.order {
		if o == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return nil
}

func (r *stubTimeLogRepo) UpdateMany(_ context.Context, ids []string, p domain.TimeLogPatch) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, id := range ids {
		if l, ok := r.logs[id]; ok {
			applyTimeLogPatch(l, p)
			n++
		}
	}
	return n, nil
}

func (r *stubTimeLogRepo) UpdateByProject(_ context.Context, project string, p domain.TimeLogPatch) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failProjectWrites > 0 {
		r.failProjectWrites--
		return 0, errors.New("write concern timeout")
	}
	var n int64
	for _, l := range r.logs {
		if l.Project == project {
			applyTimeLogPatch(l, p)
			n++
		}
	}
	return n, nil
}

func (r *stubTimeLogRepo) ClaimForInvoice(_ context.Context, invoiceID string, ids []string) (int64, error) {
	if r.beforeClaim != nil {
		r.beforeClaim(r)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.claimErr != nil {
		return 0, r.claimErr
	}
	var n int64
	for _, id := range ids {
		l, ok := r.logs[id]
		if !ok || l.Invoiced {
			continue
		}
		l.Invoiced = true
		l.InvoiceID = invoiceID
		n++
	}
	return n, nil
}

func (r *stubTimeLogRepo) AdoptLegacyClaims(_ context.Context, invoiceID string, ids []string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, id := range ids {
		if l, ok := r.logs[id]; ok && l.Invoiced && l.InvoiceID == "" {
			l.InvoiceID = invoiceID
			n++
		}
	}
	return n, nil
}

func (r *stubTimeLogRepo) ReleaseClaim(_ context.Context, invoiceID string, ids []string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.releaseCalls++
	var n int64
	for _, l := range r.logs {
		if l.InvoiceID != invoiceID {
			continue
		}
		if len(ids) > 0 && !contains(ids, l.ID) {
			continue
		}
		l.Invoiced = false
		l.InvoiceID = ""
		n++
	}
	return n, nil
}

func (r *stubTimeLogRepo) ReleaseClaimExcept(_ context.Context, invoiceID string, keep []string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, l := range r.logs {
		if l.InvoiceID != invoiceID || contains(keep, l.ID) {
			continue
		}
		l.Invoiced = false
		l.InvoiceID = ""
		n++
	}
	return n, nil
}

func contains(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

// ---------------------------------------------------------------------------
// In-memory project repository
// ---------------------------------------------------------------------------

type stubProjectRepo struct {
	byID map[string]*domain.Project
	// failUpdates makes the next n Update calls fail.
	failUpdates int
}

func newStubProjectRepo(projects ...*domain.Project) *stubProjectRepo {
	r := &stubProjectRepo{byID: make(map[string]*domain.Project)}
	for _, p := range projects {
		clone := *p
		r.byID[p.ID] = &clone
	}
	return r
}

func (r *stubProjectRepo) Create(_ context.Context, p *domain.Project) error {
	clone := *p
	r.byID[p.ID] = &clone
	return nil
}

func (r *stubProjectRepo) FindByID(_ context.Context, id string) (*domain.Project, error) {
	p, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrProjectNotFound
	}
	clone := *p
	return &clone, nil
}

func (r *stubProjectRepo) FindByName(_ context.Context, name string) (*domain.Project, error) {
	for _, p := range r.byID {
		if p.Name == name {
			clone := *p
			return &clone, nil
		}
	}
	return nil, domain.ErrProjectNotFound
}

func (r *stubProjectRepo) List(_ context.Context) ([]*domain.Project, error) {
	out := make([]*domain.Project, 0, len(r.byID))
	for _, p := range r.byID {
		clone := *p
		out = append(out, &clone)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *stubProjectRepo) Update(_ context.Context, id string, patch domain.ProjectPatch) error {
	if r.failUpdates > 0 {
		r.failUpdates--
		return errors.New("no reachable servers")
	}
	p, ok := r.byID[id]
	if !ok {
		return domain.ErrProjectNotFound
	}
	if patch.Client != nil {
		p.Client = *patch.Client
	}
	if patch.Name != nil {
		p.Name = *patch.Name
	}
	if patch.Rate != nil {
		p.Rate = *patch.Rate
	}
	if patch.RateType != nil {
		p.RateType = *patch.RateType
	}
	if len(patch.SetFields) > 0 && p.CustomFields == nil {
		p.CustomFields = domain.CustomFields{}
	}
	for k, v := range patch.SetFields {
		p.CustomFields[k] = v
	}
	for _, k := range patch.UnsetFields {
		delete(p.CustomFields, k)
	}
	return nil
}

// ---------------------------------------------------------------------------
// In-memory invoice repository
// ---------------------------------------------------------------------------

type stubInvoiceRepo struct {
	byID      map[string]*domain.Invoice
	insertErr error
	updateErr error
}

func newStubInvoiceRepo() *stubInvoiceRepo {
	return &stubInvoiceRepo{byID: make(map[string]*domain.Invoice)}
}

func (r *stubInvoiceRepo) Insert(_ context.Context, inv *domain.Invoice) error {
	if r.insertErr != nil {
		return r.insertErr
	}
	clone := *inv
	r.byID[inv.ID] = &clone
	return nil
}

func (r *stubInvoiceRepo) FindByID(_ context.Context, id string) (*domain.Invoice, error) {
	inv, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrInvoiceNotFound
	}
	clone := *inv
	return &clone, nil
}

func (r *stubInvoiceRepo) List(_ context.Context) ([]*domain.Invoice, error) {
	out := make([]*domain.Invoice, 0, len(r.byID))
	for _, inv := range r.byID {
		clone := *inv
		out = append(out, &clone)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.After(out[j].Date) })
	return out, nil
}

func (r *stubInvoiceRepo) Update(_ context.Context, id string, u domain.InvoiceUpdate) error {
	if r.updateErr != nil {
		return r.updateErr
	}
	inv, ok := r.byID[id]
	if !ok {
		return domain.ErrInvoiceNotFound
	}
	if u.Number != nil {
		inv.Number = *u.Number
	}
	if u.Date != nil {
		inv.Date = *u.Date
	}
	if u.Client != nil {
		inv.Client = *u.Client
	}
	if u.Status != nil {
		inv.Status = *u.Status
	}
	if u.RateType != nil {
		inv.RateType = *u.RateType
	}
	if u.Items != nil {
		inv.Items = *u.Items
	}
	if u.TimeLogs != nil {
		inv.TimeLogs = *u.TimeLogs
	}
	if u.Subtotal != nil {
		inv.Subtotal = *u.Subtotal
	}
	if u.Total != nil {
		inv.Total = *u.Total
	}
	return nil
}

// ---------------------------------------------------------------------------
// Idempotency store and renderer
// ---------------------------------------------------------------------------

type stubIdempotencyStore struct {
	keys      map[string]string
	lookupErr error
}

func newStubIdempotencyStore() *stubIdempotencyStore {
	return &stubIdempotencyStore{keys: make(map[string]string)}
}

func (s *stubIdempotencyStore) Lookup(_ context.Context, key string) (string, bool, error) {
	if s.lookupErr != nil {
		return "", false, s.lookupErr
	}
	id, ok := s.keys[key]
	return id, ok, nil
}

func (s *stubIdempotencyStore) Remember(_ context.Context, key, invoiceID string, _ time.Duration) error {
	s.keys[key] = invoiceID
	return nil
}

type stubRenderer struct{}

func (stubRenderer) Render(inv *domain.Invoice) ([]byte, error) {
	return []byte("invoice " + inv.Number), nil
}

func (stubRenderer) ContentType() string { return "text/plain" }

// ---------------------------------------------------------------------------
// Fixtures
// ---------------------------------------------------------------------------

var day = time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)

func newLog(id, client, project string, startOffset time.Duration, hours, rate float64) *domain.TimeLog {
	start := day.Add(startOffset)
	rt := domain.RateHourly
	if rate == domain.FixedRateSentinel {
		rt = domain.RateFixed
	}
	return &domain.TimeLog{
		ID:        id,
		Client:    client,
		Project:   project,
		StartTime: start,
		EndTime:   start.Add(time.Duration(hours * float64(time.Hour))),
		Hours:     hours,
		Rate:      rate,
		RateType:  rt,
		UpdatedAt: day,
	}
}

func ptr[T any](v T) *T { return &v }
