// Package pdf renders invoices as A4 PDF documents.
package pdf

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"

	"github.com/jung-kurt/gofpdf"
	"github.com/shopspring/decimal"

	"github.com/hourbook/billing/internal/core/billing"
	"github.com/hourbook/billing/internal/core/domain"
)

const defaultCurrency = "$"

// Options configures the printed document.
type Options struct {
	// Issuer is printed under the title, usually the freelancer's name.
	Issuer         string
	CurrencySymbol string
	// Compress toggles stream compression; tests turn it off to inspect text.
	Compress bool
}

// Renderer implements ports.InvoiceRenderer with gofpdf.
type Renderer struct {
	opts Options
}

func NewRenderer(opts Options) *Renderer {
	if opts.CurrencySymbol == "" {
		opts.CurrencySymbol = defaultCurrency
	}
	return &Renderer{opts: opts}
}

func (r *Renderer) ContentType() string { return "application/pdf" }

// Render lists number, date, client, one row per item and the totals. Items
// of a fixed-rate invoice show an even share of the fee.
func (r *Renderer) Render(inv *domain.Invoice) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetCompression(r.opts.Compress)
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetTitle("Invoice "+inv.Number, true)
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 16)
	pdf.Cell(40, 10, tr("Invoice "+inv.Number))
	pdf.Ln(8)
	if r.opts.Issuer != "" {
		pdf.SetFont("Arial", "", 11)
		pdf.Cell(40, 6, tr(r.opts.Issuer))
		pdf.Ln(6)
	}
	pdf.Ln(6)

	pdf.SetFont("Arial", "", 11)
	pdf.Cell(30, 6, "Date:")
	pdf.Cell(60, 6, inv.Date.Format("2006-01-02"))
	pdf.Ln(6)
	pdf.Cell(30, 6, "Bill To:")
	pdf.Cell(60, 6, tr(inv.Client))
	pdf.Ln(6)
	pdf.Cell(30, 6, "Status:")
	pdf.Cell(60, 6, strings.ToUpper(string(inv.Status)))
	pdf.Ln(12)

	pdf.SetFont("Arial", "B", 10)
	pdf.CellFormat(90, 8, "Description", "1", 0, "C", false, 0, "")
	pdf.CellFormat(25, 8, "Hours", "1", 0, "C", false, 0, "")
	pdf.CellFormat(35, 8, "Rate", "1", 0, "C", false, 0, "")
	pdf.CellFormat(40, 8, "Amount", "1", 1, "C", false, 0, "")

	pdf.SetFont("Arial", "", 10)
	amounts := billing.DisplayAmounts(inv)
	for i, it := range inv.Items {
		rate := r.money(it.Rate)
		if inv.RateType == domain.RateFixed {
			rate = "fixed"
		}
		pdf.CellFormat(90, 7, tr(itemLabel(it)), "1", 0, "L", false, 0, "")
		pdf.CellFormat(25, 7, decimal.NewFromFloat(it.Hours).StringFixed(2), "1", 0, "R", false, 0, "")
		pdf.CellFormat(35, 7, rate, "1", 0, "R", false, 0, "")
		pdf.CellFormat(40, 7, r.money(amounts[i]), "1", 1, "R", false, 0, "")
	}
	pdf.Ln(6)

	pdf.SetFont("Arial", "B", 11)
	pdf.Cell(150, 8, "Subtotal:")
	pdf.CellFormat(40, 8, r.money(inv.Subtotal), "", 1, "R", false, 0, "")
	pdf.SetFont("Arial", "B", 12)
	pdf.Cell(150, 10, "Total:")
	pdf.CellFormat(40, 10, r.money(inv.Total), "", 1, "R", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("pdf output: %w", err)
	}
	return buf.Bytes(), nil
}

func (r *Renderer) money(v float64) string {
	return r.opts.CurrencySymbol + decimal.NewFromFloat(v).StringFixed(2)
}

func itemLabel(it domain.InvoiceItem) string {
	if it.Description == "" || it.Description == billing.ItemDescription(it.Project) {
		return it.Project
	}
	return it.Project + " - " + it.Description
}

var unsafeFileChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// FileName is the download name of an invoice document.
func FileName(inv *domain.Invoice) string {
	number := strings.Trim(unsafeFileChars.ReplaceAllString(inv.Number, "-"), "-")
	if number == "" {
		number = inv.ID
	}
	return "invoice-" + number + ".pdf"
}
