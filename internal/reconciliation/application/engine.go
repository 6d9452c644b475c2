package application

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	billing "invoice-audit/internal/billing/domain"
	reconciliation "invoice-audit/internal/reconciliation/domain"
)

// Clock abstracts time for testability.
type Clock interface {
	Now() time.Time
}

// SystemClock implements Clock with the wall clock.
type SystemClock struct{}

// Now returns the current UTC time.
func (SystemClock) Now() time.Time { return time.Now().UTC() }

// Significant discrepancies start above this percentage, regardless of
// the caller's tolerance.
const significantThresholdPct = 5.0

// Engine compares a parsed invoice against a calculated one, line by
// line, and produces an immutable summary.
type Engine struct {
	repo  reconciliation.SummaryRepository
	clock Clock
}

// NewEngine constructs an engine backed by the given summary repository.
func NewEngine(repo reconciliation.SummaryRepository, clock Clock) (*Engine, error) {
	if repo == nil {
		return nil, fmt.Errorf("reconciliation engine: nil repository")
	}
	if clock == nil {
		clock = SystemClock{}
	}
	return &Engine{repo: repo, clock: clock}, nil
}

// Reconcile matches the invoices' line items, classifies each pair,
// rolls the results up into an overall status, and persists the summary
// under a fresh id. Tolerance is a percentage in [0,100].
func (e *Engine) Reconcile(ctx context.Context, parsed billing.ParsedInvoice, calculated billing.CalculatedInvoice, tolerancePct float64) (*reconciliation.ReconciliationSummary, error) {
	if tolerancePct < 0 || tolerancePct > 100 {
		return nil, reconciliation.ErrToleranceOutOfRange
	}

	records := MatchLineItems(parsed.LineItems, calculated.LineItems, tolerancePct)

	totalDiff := parsed.Total.Sub(calculated.Total)
	totalPct := percentageOf(totalDiff, calculated.Total)

	var matched, minor, significant, missing int
	for _, r := range records {
		switch {
		case r.Status == reconciliation.StatusMatch:
			matched++
		case r.Status == reconciliation.StatusMinor:
			minor++
		case r.Status == reconciliation.StatusSignificant:
			significant++
		case r.Status.IsMissing():
			missing++
		}
	}

	overall := reconciliation.StatusMatch
	switch {
	case significant > 0 || totalPct > significantThresholdPct:
		overall = reconciliation.StatusSignificant
	case minor > 0 || missing > 0 || totalPct > tolerancePct:
		overall = reconciliation.StatusMinor
	}

	confidence := 0.0
	if len(records) > 0 {
		confidence = float64(matched) / float64(len(records))
	}

	summary := &reconciliation.ReconciliationSummary{
		ID:                        uuid.NewString(),
		NMI:                       nmiFor(parsed, calculated),
		InvoiceNumber:             parsed.InvoiceNumber,
		PeriodStart:               parsed.PeriodStart,
		PeriodEnd:                 parsed.PeriodEnd,
		InvoicedTotal:             parsed.Total,
		CalculatedTotal:           calculated.Total,
		TotalDifference:           totalDiff,
		TotalPercentageDifference: round2(totalPct),
		Records:                   records,
		MatchedItems:              matched,
		MinorDiscrepancies:        minor,
		SignificantDiscrepancies:  significant,
		MissingItems:              missing,
		OverallStatus:             overall,
		ConfidenceScore:           round2(confidence),
		Recommendations:           buildRecommendations(records, totalDiff, totalPct),
		ReconciledAt:              e.clock.Now(),
	}

	if err := e.repo.Save(ctx, summary); err != nil {
		return nil, err
	}
	return summary, nil
}

// Summary returns a stored summary by id.
func (e *Engine) Summary(ctx context.Context, id string) (*reconciliation.ReconciliationSummary, error) {
	summary, err := e.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if summary == nil {
		return nil, reconciliation.ErrSummaryNotFound
	}
	return summary, nil
}

// History lists past summaries for an NMI, newest first.
func (e *Engine) History(ctx context.Context, nmi string, limit int) ([]*reconciliation.ReconciliationSummary, error) {
	if limit <= 0 {
		limit = 10
	}
	return e.repo.ListByNMI(ctx, nmi, limit)
}

// MatchLineItems pairs invoiced items with calculated items of the same
// charge type. Invoiced items are visited in invoice order; each picks
// the unmatched calculated item minimizing the absolute amount
// difference. Leftover calculated items become missing_invoiced records,
// leftover invoiced items missing_calculated. Input slices are never
// mutated.
func MatchLineItems(invoiced, calculated []billing.LineItem, tolerancePct float64) []reconciliation.ReconciliationRecord {
	calcByType := make(map[billing.ChargeType][]int)
	for idx, item := range calculated {
		calcByType[item.ChargeType] = append(calcByType[item.ChargeType], idx)
	}
	calcMatched := make([]bool, len(calculated))

	records := make([]reconciliation.ReconciliationRecord, 0, len(invoiced)+len(calculated))

	for i := range invoiced {
		inv := &invoiced[i]
		best := -1
		var bestDiff decimal.Decimal
		for _, idx := range calcByType[inv.ChargeType] {
			if calcMatched[idx] {
				continue
			}
			diff := inv.Amount.Sub(calculated[idx].Amount)
			if best < 0 || diff.Abs().LessThan(bestDiff.Abs()) {
				best = idx
				bestDiff = diff
			}
		}

		if best < 0 {
			records = append(records, reconciliation.ReconciliationRecord{
				Description:      inv.Description,
				ChargeType:       inv.ChargeType,
				Invoiced:         inv,
				AmountDifference: inv.Amount,
				Status:           reconciliation.StatusMissingCalculated,
				Notes:            "Item on invoice but not in calculated values",
			})
			continue
		}

		calcMatched[best] = true
		calc := &calculated[best]
		pct := percentageOf(bestDiff, calc.Amount)
		status := classify(pct, tolerancePct)
		rounded := round2(pct)
		records = append(records, reconciliation.ReconciliationRecord{
			Description:          inv.Description,
			ChargeType:           inv.ChargeType,
			Invoiced:             inv,
			Calculated:           calc,
			AmountDifference:     bestDiff,
			PercentageDifference: &rounded,
			Status:               status,
			Notes:                discrepancyNote(status, bestDiff, pct),
		})
	}

	for idx := range calculated {
		if calcMatched[idx] {
			continue
		}
		calc := &calculated[idx]
		records = append(records, reconciliation.ReconciliationRecord{
			Description:      calc.Description,
			ChargeType:       calc.ChargeType,
			Calculated:       calc,
			AmountDifference: calc.Amount.Neg(),
			Status:           reconciliation.StatusMissingInvoiced,
			Notes:            "Calculated item not found on invoice",
		})
	}

	return records
}

func classify(pctDiff, tolerancePct float64) reconciliation.DiscrepancyStatus {
	switch {
	case pctDiff <= tolerancePct:
		return reconciliation.StatusMatch
	case pctDiff <= significantThresholdPct:
		return reconciliation.StatusMinor
	default:
		return reconciliation.StatusSignificant
	}
}

// percentageOf returns |diff| relative to base as a percentage. A zero
// base yields 100 for any non-zero diff and 0 otherwise.
func percentageOf(diff, base decimal.Decimal) float64 {
	if base.IsPositive() {
		pct, _ := diff.Abs().Div(base).Mul(decimal.NewFromInt(100)).Float64()
		return pct
	}
	if !diff.IsZero() {
		return 100.0
	}
	return 0.0
}

func discrepancyNote(status reconciliation.DiscrepancyStatus, diff decimal.Decimal, pctDiff float64) string {
	if status == reconciliation.StatusMatch {
		return ""
	}
	direction := "Invoiced amount is lower"
	if diff.IsPositive() {
		direction = "Invoiced amount is higher"
	}
	return fmt.Sprintf("%s by $%s (%.1f%%)", direction, diff.Abs().StringFixed(2), pctDiff)
}

func buildRecommendations(records []reconciliation.ReconciliationRecord, totalDiff decimal.Decimal, totalPct float64) []string {
	var out []string

	if totalPct > significantThresholdPct {
		if totalDiff.IsPositive() {
			out = append(out, fmt.Sprintf(
				"Total invoiced amount is $%s (%.1f%%) higher than calculated. Consider contacting retailer to verify charges.",
				totalDiff.StringFixed(2), totalPct))
		} else {
			out = append(out, fmt.Sprintf(
				"Total invoiced amount is $%s (%.1f%%) lower than calculated. Verify tariff rates used in calculation.",
				totalDiff.Abs().StringFixed(2), totalPct))
		}
	}

	var missingInv, missingCalc int
	for _, r := range records {
		switch r.Status {
		case reconciliation.StatusMissingInvoiced:
			missingInv++
		case reconciliation.StatusMissingCalculated:
			missingCalc++
		}
	}
	if missingCalc > 0 {
		out = append(out, fmt.Sprintf(
			"%d invoice line item(s) could not be matched to calculated values. Review tariff configuration.", missingCalc))
	}
	if missingInv > 0 {
		out = append(out, fmt.Sprintf(
			"%d calculated charge(s) not found on invoice. May indicate missing charges or different tariff structure.", missingInv))
	}

	for _, r := range records {
		if r.ChargeType == billing.ChargeUsage && r.Status == reconciliation.StatusSignificant {
			out = append(out, "Significant discrepancy in usage charges. Verify meter readings and interval data covers the billing period.")
			break
		}
	}

	if len(out) == 0 {
		out = append(out, "Invoice appears to match calculated values within tolerance.")
	}
	return out
}

func nmiFor(parsed billing.ParsedInvoice, calculated billing.CalculatedInvoice) string {
	if parsed.NMI != "" {
		return parsed.NMI
	}
	if calculated.NMI != "" {
		return calculated.NMI
	}
	return "Unknown"
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
