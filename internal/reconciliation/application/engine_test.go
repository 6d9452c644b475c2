package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	billing "invoice-audit/internal/billing/domain"
	reconciliation "invoice-audit/internal/reconciliation/domain"
	reconmemory "invoice-audit/internal/reconciliation/infrastructure/memory"
)

type fixedClock struct{ now time.Time }

func (c fixedClock) Now() time.Time { return c.now }

func item(description string, chargeType billing.ChargeType, amount string) billing.LineItem {
	return billing.LineItem{
		Description: description,
		ChargeType:  chargeType,
		Amount:      decimal.RequireFromString(amount),
	}
}

func TestMatchLineItems_Statuses(t *testing.T) {
	invoiced := []billing.LineItem{
		item("Daily Supply Charge", billing.ChargeSupply, "30.00"),
		item("Energy Usage", billing.ChargeUsage, "25.00"),
		item("Network Charges", billing.ChargeNetwork, "50.00"),
	}
	calculated := []billing.LineItem{
		item("Daily Supply Charge", billing.ChargeSupply, "30.00"),
		item("Energy Usage", billing.ChargeUsage, "24.00"),
		item("Network Charges", billing.ChargeNetwork, "40.00"),
	}

	records := MatchLineItems(invoiced, calculated, 1.0)
	if len(records) != 3 {
		t.Fatalf("expected 3 records, got %d", len(records))
	}
	if records[0].Status != reconciliation.StatusMatch {
		t.Fatalf("expected match, got %s", records[0].Status)
	}
	// 1.00 of 24.00 is about 4.17 percent.
	if records[1].Status != reconciliation.StatusMinor {
		t.Fatalf("expected minor, got %s", records[1].Status)
	}
	if records[1].PercentageDifference == nil || *records[1].PercentageDifference != 4.17 {
		t.Fatalf("unexpected percentage: %v", records[1].PercentageDifference)
	}
	// 10.00 of 40.00 is 25 percent.
	if records[2].Status != reconciliation.StatusSignificant {
		t.Fatalf("expected significant, got %s", records[2].Status)
	}
}

func TestMatchLineItems_ToleranceWidensMatch(t *testing.T) {
	invoiced := []billing.LineItem{item("Energy Usage", billing.ChargeUsage, "25.00")}
	calculated := []billing.LineItem{item("Energy Usage", billing.ChargeUsage, "24.00")}

	records := MatchLineItems(invoiced, calculated, 10.0)
	if records[0].Status != reconciliation.StatusMatch {
		t.Fatalf("expected match at tolerance 10, got %s", records[0].Status)
	}
}

func TestMatchLineItems_Missing(t *testing.T) {
	invoiced := []billing.LineItem{
		item("Solar Feed-in Credit", billing.ChargeOther, "-20.00"),
	}
	calculated := []billing.LineItem{
		item("Network Charges", billing.ChargeNetwork, "40.00"),
	}

	records := MatchLineItems(invoiced, calculated, 1.0)
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	if records[0].Status != reconciliation.StatusMissingCalculated {
		t.Fatalf("expected missing_calculated, got %s", records[0].Status)
	}
	if records[0].Calculated != nil {
		t.Fatal("missing_calculated record should have no calculated side")
	}
	if records[1].Status != reconciliation.StatusMissingInvoiced {
		t.Fatalf("expected missing_invoiced, got %s", records[1].Status)
	}
	if got := records[1].AmountDifference.StringFixed(2); got != "-40.00" {
		t.Fatalf("expected difference -40.00, got %s", got)
	}
}

func TestMatchLineItems_PicksClosestCandidate(t *testing.T) {
	invoiced := []billing.LineItem{
		item("Peak Energy Usage", billing.ChargeUsage, "100.00"),
		item("Off-Peak Energy Usage", billing.ChargeUsage, "30.00"),
	}
	calculated := []billing.LineItem{
		item("Off-Peak Energy Usage", billing.ChargeUsage, "31.00"),
		item("Peak Energy Usage", billing.ChargeUsage, "99.00"),
	}

	records := MatchLineItems(invoiced, calculated, 5.0)
	if records[0].Calculated == nil || records[0].Calculated.Description != "Peak Energy Usage" {
		t.Fatalf("expected 100.00 to pair with 99.00, got %+v", records[0].Calculated)
	}
	if records[1].Calculated == nil || records[1].Calculated.Description != "Off-Peak Energy Usage" {
		t.Fatalf("expected 30.00 to pair with 31.00, got %+v", records[1].Calculated)
	}
}

func TestMatchLineItems_ZeroCalculatedAmount(t *testing.T) {
	invoiced := []billing.LineItem{item("Metering Charge", billing.ChargeMetering, "5.00")}
	calculated := []billing.LineItem{item("Metering Charge", billing.ChargeMetering, "0.00")}

	records := MatchLineItems(invoiced, calculated, 1.0)
	if records[0].PercentageDifference == nil || *records[0].PercentageDifference != 100.0 {
		t.Fatalf("expected 100 percent on zero base, got %v", records[0].PercentageDifference)
	}
	if records[0].Status != reconciliation.StatusSignificant {
		t.Fatalf("expected significant, got %s", records[0].Status)
	}
}

func testInvoices() (billing.ParsedInvoice, billing.CalculatedInvoice) {
	parsed := billing.ParsedInvoice{
		InvoiceNumber: "INV-001",
		NMI:           "6123456789",
		PeriodStart:   time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		PeriodEnd:     time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC),
		LineItems: []billing.LineItem{
			item("Daily Supply Charge", billing.ChargeSupply, "30.00"),
			item("Energy Usage", billing.ChargeUsage, "100.00"),
		},
		Total: decimal.RequireFromString("130.00"),
	}
	calculated := billing.CalculatedInvoice{
		NMI: "6123456789",
		LineItems: []billing.LineItem{
			item("Daily Supply Charge", billing.ChargeSupply, "30.00"),
			item("Energy Usage", billing.ChargeUsage, "100.00"),
		},
		Total: decimal.RequireFromString("130.00"),
	}
	return parsed, calculated
}

func TestEngine_ReconcileMatch(t *testing.T) {
	repo := reconmemory.NewSummaryRepository()
	now := time.Date(2024, 2, 1, 9, 0, 0, 0, time.UTC)
	engine, err := NewEngine(repo, fixedClock{now: now})
	if err != nil {
		t.Fatalf("engine error: %v", err)
	}

	parsed, calculated := testInvoices()
	summary, err := engine.Reconcile(context.Background(), parsed, calculated, 1.0)
	if err != nil {
		t.Fatalf("reconcile error: %v", err)
	}

	if summary.OverallStatus != reconciliation.StatusMatch {
		t.Fatalf("expected match, got %s", summary.OverallStatus)
	}
	if summary.MatchedItems != 2 || summary.MinorDiscrepancies != 0 {
		t.Fatalf("unexpected counts: %+v", summary)
	}
	if summary.ConfidenceScore != 1.0 {
		t.Fatalf("expected confidence 1.0, got %f", summary.ConfidenceScore)
	}
	if !summary.ReconciledAt.Equal(now) {
		t.Fatalf("expected clock time, got %v", summary.ReconciledAt)
	}
	if len(summary.Recommendations) != 1 ||
		summary.Recommendations[0] != "Invoice appears to match calculated values within tolerance." {
		t.Fatalf("unexpected recommendations: %v", summary.Recommendations)
	}

	stored, err := engine.Summary(context.Background(), summary.ID)
	if err != nil {
		t.Fatalf("summary lookup error: %v", err)
	}
	if stored.ID != summary.ID {
		t.Fatalf("stored id mismatch: %s vs %s", stored.ID, summary.ID)
	}
}

func TestEngine_ReconcileSignificantTotals(t *testing.T) {
	repo := reconmemory.NewSummaryRepository()
	engine, err := NewEngine(repo, nil)
	if err != nil {
		t.Fatalf("engine error: %v", err)
	}

	parsed, calculated := testInvoices()
	parsed.LineItems[1] = item("Energy Usage", billing.ChargeUsage, "150.00")
	parsed.Total = decimal.RequireFromString("180.00")

	summary, err := engine.Reconcile(context.Background(), parsed, calculated, 1.0)
	if err != nil {
		t.Fatalf("reconcile error: %v", err)
	}
	if summary.OverallStatus != reconciliation.StatusSignificant {
		t.Fatalf("expected significant, got %s", summary.OverallStatus)
	}
	if summary.ConfidenceScore != 0.5 {
		t.Fatalf("expected confidence 0.5, got %f", summary.ConfidenceScore)
	}
	if got := summary.TotalDifference.StringFixed(2); got != "50.00" {
		t.Fatalf("expected total difference 50.00, got %s", got)
	}
	if len(summary.Recommendations) == 0 {
		t.Fatal("expected recommendations for significant discrepancy")
	}
}

func TestEngine_ToleranceOutOfRange(t *testing.T) {
	engine, err := NewEngine(reconmemory.NewSummaryRepository(), nil)
	if err != nil {
		t.Fatalf("engine error: %v", err)
	}
	parsed, calculated := testInvoices()
	if _, err := engine.Reconcile(context.Background(), parsed, calculated, -1); !errors.Is(err, reconciliation.ErrToleranceOutOfRange) {
		t.Fatalf("expected ErrToleranceOutOfRange, got %v", err)
	}
	if _, err := engine.Reconcile(context.Background(), parsed, calculated, 101); !errors.Is(err, reconciliation.ErrToleranceOutOfRange) {
		t.Fatalf("expected ErrToleranceOutOfRange, got %v", err)
	}
}

func TestEngine_History(t *testing.T) {
	repo := reconmemory.NewSummaryRepository()
	engine, err := NewEngine(repo, nil)
	if err != nil {
		t.Fatalf("engine error: %v", err)
	}
	parsed, calculated := testInvoices()
	for i := 0; i < 3; i++ {
		if _, err := engine.Reconcile(context.Background(), parsed, calculated, 1.0); err != nil {
			t.Fatalf("reconcile error: %v", err)
		}
	}

	history, err := engine.History(context.Background(), parsed.NMI, 2)
	if err != nil {
		t.Fatalf("history error: %v", err)
	}
	if len(history) != 2 {
		t.Fatalf("expected limit 2, got %d", len(history))
	}

	history, err = engine.History(context.Background(), "unknown-nmi", 10)
	if err != nil {
		t.Fatalf("history error: %v", err)
	}
	if len(history) != 0 {
		t.Fatalf("expected no history, got %d", len(history))
	}
}

func TestEngine_SummaryNotFound(t *testing.T) {
	engine, err := NewEngine(reconmemory.NewSummaryRepository(), nil)
	if err != nil {
		t.Fatalf("engine error: %v", err)
	}
	if _, err := engine.Summary(context.Background(), "missing"); !errors.Is(err, reconciliation.ErrSummaryNotFound) {
		t.Fatalf("expected ErrSummaryNotFound, got %v", err)
	}
}
