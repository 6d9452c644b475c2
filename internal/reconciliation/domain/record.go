package reconciliation

import (
	"github.com/shopspring/decimal"

	billing "invoice-audit/internal/billing/domain"
)

// DiscrepancyStatus classifies one reconciliation record. Closed enumeration.
type DiscrepancyStatus string

const (
	StatusMatch             DiscrepancyStatus = "match"
	StatusMinor             DiscrepancyStatus = "minor"
	StatusSignificant       DiscrepancyStatus = "significant"
	StatusMissingInvoiced   DiscrepancyStatus = "missing_invoiced"
	StatusMissingCalculated DiscrepancyStatus = "missing_calculated"
)

// Valid reports whether the status is a known value.
func (s DiscrepancyStatus) Valid() bool {
	switch s {
	case StatusMatch, StatusMinor, StatusSignificant, StatusMissingInvoiced, StatusMissingCalculated:
		return true
	}
	return false
}

// IsMissing reports whether the status marks an unmatched record.
func (s DiscrepancyStatus) IsMissing() bool {
	return s == StatusMissingInvoiced || s == StatusMissingCalculated
}

// ReconciliationRecord pairs an invoiced line item with its calculated
// counterpart. Exactly one of the two may be absent, never both; the
// matcher never mutates either item.
type ReconciliationRecord struct {
	Description          string             `json:"description"`
	ChargeType           billing.ChargeType `json:"charge_type"`
	Invoiced             *billing.LineItem  `json:"invoiced,omitempty"`
	Calculated           *billing.LineItem  `json:"calculated,omitempty"`
	AmountDifference     decimal.Decimal    `json:"amount_difference"`
	PercentageDifference *float64           `json:"percentage_difference,omitempty"`
	Status               DiscrepancyStatus  `json:"status"`
	Notes                string             `json:"notes,omitempty"`
}

// InvoicedAmount returns the invoiced side's amount, zero when absent.
func (r ReconciliationRecord) InvoicedAmount() decimal.Decimal {
	if r.Invoiced == nil {
		return decimal.Decimal{}
	}
	return r.Invoiced.Amount
}

// CalculatedAmount returns the calculated side's amount, zero when absent.
func (r ReconciliationRecord) CalculatedAmount() decimal.Decimal {
	if r.Calculated == nil {
		return decimal.Decimal{}
	}
	return r.Calculated.Amount
}
