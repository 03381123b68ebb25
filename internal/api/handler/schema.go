package handler

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/hourbook/billing/internal/core/billing"
	"github.com/hourbook/billing/internal/core/domain"
)

// errorResponse is the error envelope documented for every route.
type errorResponse struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

// apiDate accepts "2006-01-02" as well as RFC 3339 timestamps.
type apiDate struct {
	time.Time
}

func (d *apiDate) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	s = strings.TrimSpace(s)
	if s == "" {
		d.Time = time.Time{}
		return nil
	}
	if t, err := time.Parse(time.DateOnly, s); err == nil {
		d.Time = t
		return nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return domain.NewValidationError("date", "must be YYYY-MM-DD or RFC 3339")
	}
	d.Time = t
	return nil
}

// --- Time logs ---

type createTimeLogRequest struct {
	Project     string    `json:"project" validate:"required"`
	Client      string    `json:"client"`
	StartTime   time.Time `json:"start_time"`
	EndTime     time.Time `json:"end_time"`
	Rate        *float64  `json:"rate" validate:"omitempty,gte=0"`
	RateType    string    `json:"rate_type" validate:"omitempty,oneof=hourly fixed"`
	Description string    `json:"description"`
}

// updateTimeLogRequest has no hours field: hours follow the interval.
type updateTimeLogRequest struct {
	Project     *string    `json:"project"`
	Client      *string    `json:"client"`
	StartTime   *time.Time `json:"start_time"`
	EndTime     *time.Time `json:"end_time"`
	Rate        *float64   `json:"rate"`
	RateType    *string    `json:"rate_type" validate:"omitempty,oneof=hourly fixed"`
	Description *string    `json:"description"`
}

func (r updateTimeLogRequest) patch() domain.TimeLogPatch {
	p := domain.TimeLogPatch{
		Project:     r.Project,
		Client:      r.Client,
		StartTime:   r.StartTime,
		EndTime:     r.EndTime,
		Rate:        r.Rate,
		Description: r.Description,
	}
	if r.RateType != nil {
		rt := domain.RateType(*r.RateType)
		p.RateType = &rt
	}
	return p
}

// --- Projects ---

type createProjectRequest struct {
	Name         string         `json:"name" validate:"required"`
	Client       string         `json:"client"`
	Rate         float64        `json:"rate" validate:"gte=0"`
	RateType     string         `json:"rate_type" validate:"omitempty,oneof=hourly fixed"`
	CustomFields map[string]any `json:"custom_fields"`
}

type updateProjectRequest struct {
	Name         *string        `json:"name"`
	Client       *string        `json:"client"`
	Rate         *float64       `json:"rate"`
	RateType     *string        `json:"rate_type" validate:"omitempty,oneof=hourly fixed"`
	CustomFields map[string]any `json:"custom_fields"`
	UnsetFields  []string       `json:"unset_fields"`
}

func (r updateProjectRequest) patch() domain.ProjectPatch {
	p := domain.ProjectPatch{
		Client:      r.Client,
		Name:        r.Name,
		Rate:        r.Rate,
		SetFields:   domain.CustomFields(r.CustomFields),
		UnsetFields: r.UnsetFields,
	}
	if r.RateType != nil {
		rt := domain.RateType(*r.RateType)
		p.RateType = &rt
	}
	return p
}

type projectUpdateResponse struct {
	Project          *domain.Project `json:"project"`
	LogsRateCascaded int64           `json:"logs_rate_cascaded"`
	LogsRenamed      int64           `json:"logs_renamed"`
}

// --- Invoices ---

type composeInvoiceRequest struct {
	Number     string   `json:"number" validate:"required"`
	Date       apiDate  `json:"date"`
	TimeLogIDs []string `json:"time_log_ids" validate:"required,min=1"`
}

type invoiceItemRequest struct {
	Project     string  `json:"project"`
	Description string  `json:"description"`
	Hours       float64 `json:"hours"`
	Rate        float64 `json:"rate"`
}

type editInvoiceRequest struct {
	Number   *string               `json:"number"`
	Date     *apiDate              `json:"date"`
	Client   *string               `json:"client"`
	Status   *string               `json:"status" validate:"omitempty,oneof=draft pending paid"`
	RateType *string               `json:"rate_type" validate:"omitempty,oneof=hourly fixed"`
	Items    *[]invoiceItemRequest `json:"items"`
	TimeLogs *[]string             `json:"time_logs"`
	Rate     *float64              `json:"rate"`
	Total    *float64              `json:"total"`
	Force    bool                  `json:"force"`
}

func (r editInvoiceRequest) patch() domain.InvoicePatch {
	p := domain.InvoicePatch{
		Number:   r.Number,
		Client:   r.Client,
		TimeLogs: r.TimeLogs,
		Rate:     r.Rate,
		Total:    r.Total,
		Force:    r.Force,
	}
	if r.Date != nil {
		d := r.Date.Time
		p.Date = &d
	}
	if r.Status != nil {
		s := domain.InvoiceStatus(*r.Status)
		p.Status = &s
	}
	if r.RateType != nil {
		rt := domain.RateType(*r.RateType)
		p.RateType = &rt
	}
	if r.Items != nil {
		items := make([]domain.InvoiceItem, 0, len(*r.Items))
		for _, it := range *r.Items {
			items = append(items, domain.InvoiceItem{
				Project:     it.Project,
				Description: it.Description,
				Hours:       it.Hours,
				Rate:        it.Rate,
			})
		}
		p.Items = &items
	}
	return p
}

type invoiceItemResponse struct {
	domain.InvoiceItem
	// DisplayAmount is the amount shown to the client; for fixed-rate
	// invoices it is an even share of the total.
	DisplayAmount float64 `json:"display_amount"`
}

type invoiceLinks struct {
	Self     string `json:"self"`
	TimeLogs string `json:"time_logs"`
	PDF      string `json:"pdf"`
}

type invoiceResponse struct {
	ID        string                `json:"id"`
	Number    string                `json:"number"`
	Date      string                `json:"date"`
	Client    string                `json:"client"`
	Items     []invoiceItemResponse `json:"items"`
	TimeLogs  []string              `json:"time_logs"`
	Subtotal  float64               `json:"subtotal"`
	Total     float64               `json:"total"`
	Status    domain.InvoiceStatus  `json:"status"`
	RateType  domain.RateType       `json:"rate_type"`
	CreatedAt time.Time             `json:"created_at"`
	UpdatedAt time.Time             `json:"updated_at"`
	Links     invoiceLinks          `json:"_links"`
}

func toInvoiceResponse(inv *domain.Invoice) invoiceResponse {
	amounts := billing.DisplayAmounts(inv)
	items := make([]invoiceItemResponse, len(inv.Items))
	for i, it := range inv.Items {
		items[i] = invoiceItemResponse{InvoiceItem: it, DisplayAmount: amounts[i]}
	}
	timeLogs := inv.TimeLogs
	if timeLogs == nil {
		timeLogs = []string{}
	}
	self := "/v1/invoices/" + inv.ID
	return invoiceResponse{
		ID:        inv.ID,
		Number:    inv.Number,
		Date:      inv.Date.Format(time.DateOnly),
		Client:    inv.Client,
		Items:     items,
		TimeLogs:  timeLogs,
		Subtotal:  inv.Subtotal,
		Total:     inv.Total,
		Status:    inv.Status,
		RateType:  inv.RateType,
		CreatedAt: inv.CreatedAt,
		UpdatedAt: inv.UpdatedAt,
		Links: invoiceLinks{
			Self:     self,
			TimeLogs: self + "/time-logs",
			PDF:      self + "/pdf",
		},
	}
}

func toInvoiceResponses(invs []*domain.Invoice) []invoiceResponse {
	out := make([]invoiceResponse, 0, len(invs))
	for _, inv := range invs {
		out = append(out, toInvoiceResponse(inv))
	}
	return out
}

// emptyIfNil keeps list endpoints from encoding null.
func emptyIfNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
