package billing

import (
	"time"

	"github.com/shopspring/decimal"
)

// ParsedInvoice is an invoice extracted by an external collaborator.
// The core never derives these fields itself.
type ParsedInvoice struct {
	InvoiceNumber string          `json:"invoice_number"`
	InvoiceDate   time.Time       `json:"invoice_date"`
	DueDate       *time.Time      `json:"due_date,omitempty"`
	Retailer      string          `json:"retailer"`
	NMI           string          `json:"nmi"`
	PeriodStart   time.Time       `json:"billing_period_start"`
	PeriodEnd     time.Time       `json:"billing_period_end"`
	LineItems     []LineItem      `json:"line_items"`
	Subtotal      decimal.Decimal `json:"subtotal"`
	GST           decimal.Decimal `json:"gst"`
	Total         decimal.Decimal `json:"total"`
	AmountDue     decimal.Decimal `json:"amount_due"`
}

// ParsedInvoiceEnvelope carries a parsed invoice with the extractor's
// confidence score and warnings.
type ParsedInvoiceEnvelope struct {
	FileID     string        `json:"file_id"`
	Invoice    ParsedInvoice `json:"invoice"`
	Confidence float64       `json:"confidence"`
	Warnings   []string      `json:"warnings,omitempty"`
	ReceivedAt time.Time     `json:"received_at"`
}

// CalculatedInvoice is the expected invoice derived from consumption and
// a tariff definition.
type CalculatedInvoice struct {
	NMI              string          `json:"nmi"`
	PeriodStart      time.Time       `json:"billing_period_start"`
	PeriodEnd        time.Time       `json:"billing_period_end"`
	LineItems        []LineItem      `json:"line_items"`
	Subtotal         decimal.Decimal `json:"subtotal"`
	GST              decimal.Decimal `json:"gst"`
	Total            decimal.Decimal `json:"total"`
	CalculationNotes string          `json:"calculation_notes,omitempty"`
}
