package reconciliation

import (
	"time"

	"github.com/shopspring/decimal"
)

// ReconciliationSummary aggregates all records for one invoice/period.
// Created once per run and immutable afterwards; the id is opaque and
// generated for later retrieval.
type ReconciliationSummary struct {
	ID            string    `json:"reconciliation_id"`
	NMI           string    `json:"nmi"`
	InvoiceNumber string    `json:"invoice_number"`
	PeriodStart   time.Time `json:"billing_period_start"`
	PeriodEnd     time.Time `json:"billing_period_end"`

	InvoicedTotal             decimal.Decimal `json:"invoiced_total"`
	CalculatedTotal           decimal.Decimal `json:"calculated_total"`
	TotalDifference           decimal.Decimal `json:"total_difference"`
	TotalPercentageDifference float64         `json:"total_percentage_difference"`

	Records []ReconciliationRecord `json:"line_items"`

	MatchedItems             int `json:"matched_items"`
	MinorDiscrepancies       int `json:"minor_discrepancies"`
	SignificantDiscrepancies int `json:"significant_discrepancies"`
	MissingItems             int `json:"missing_items"`

	OverallStatus   DiscrepancyStatus `json:"overall_status"`
	ConfidenceScore float64           `json:"confidence_score"`
	Recommendations []string          `json:"recommendations"`
	ReconciledAt    time.Time         `json:"reconciled_at"`
}
