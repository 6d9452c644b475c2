package interfaces

import (
	"bytes"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	billing "invoice-audit/internal/billing/domain"
	reconciliation "invoice-audit/internal/reconciliation/domain"
)

func exportSummary() *reconciliation.ReconciliationSummary {
	supply := billing.LineItem{
		Description: "Daily Supply Charge",
		ChargeType:  billing.ChargeSupply,
		Amount:      decimal.RequireFromString("30.00"),
	}
	usage := billing.LineItem{
		Description: "Energy Usage",
		ChargeType:  billing.ChargeUsage,
		Amount:      decimal.RequireFromString("104.50"),
	}
	usageCalc := usage
	usageCalc.Amount = decimal.RequireFromString("100.00")
	credit := billing.LineItem{
		Description: "Solar Feed-in Credit",
		ChargeType:  billing.ChargeOther,
		Amount:      decimal.RequireFromString("-20.00"),
	}

	pct := 4.5
	return &reconciliation.ReconciliationSummary{
		ID:            "rec-1",
		NMI:           "6123456789",
		InvoiceNumber: "INV-001",
		PeriodStart:   time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		PeriodEnd:     time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC),
		InvoicedTotal: decimal.RequireFromString("114.50"),
		CalculatedTotal: decimal.RequireFromString("130.00"),
		TotalDifference: decimal.RequireFromString("-15.50"),
		Records: []reconciliation.ReconciliationRecord{
			{
				Description:      "Daily Supply Charge",
				ChargeType:       billing.ChargeSupply,
				Invoiced:         &supply,
				Calculated:       &supply,
				AmountDifference: decimal.Zero,
				Status:           reconciliation.StatusMatch,
			},
			{
				Description:          "Energy Usage",
				ChargeType:           billing.ChargeUsage,
				Invoiced:             &usage,
				Calculated:           &usageCalc,
				AmountDifference:     decimal.RequireFromString("4.50"),
				PercentageDifference: &pct,
				Status:               reconciliation.StatusMinor,
			},
			{
				Description:      "Solar Feed-in Credit",
				ChargeType:       billing.ChargeOther,
				Invoiced:         &credit,
				AmountDifference: credit.Amount,
				Status:           reconciliation.StatusMissingCalculated,
			},
		},
		OverallStatus:   reconciliation.StatusMinor,
		ConfidenceScore: 0.33,
		Recommendations: []string{"Review line item discrepancies with the network tariff schedule."},
		ReconciledAt:    time.Date(2024, 2, 1, 9, 0, 0, 0, time.UTC),
	}
}

func TestBuildSummaryCSV(t *testing.T) {
	got := string(BuildSummaryCSV(exportSummary()))
	want := "Description,Charge Type,Invoiced Amount,Calculated Amount,Difference,Status\n" +
		"Daily Supply Charge,supply,30.00,30.00,0.00,match\n" +
		"Energy Usage,usage,104.50,100.00,4.50,minor\n" +
		"Solar Feed-in Credit,other,-20.00,0.00,-20.00,missing_calculated"
	if got != want {
		t.Fatalf("csv mismatch:\n got: %q\nwant: %q", got, want)
	}
}

func TestBuildSummaryPDF(t *testing.T) {
	data, err := BuildSummaryPDF(exportSummary())
	if err != nil {
		t.Fatalf("pdf error: %v", err)
	}
	if !bytes.HasPrefix(data, []byte("%PDF-")) {
		t.Fatalf("expected PDF header, got %q", data[:min(len(data), 8)])
	}
}

func TestBuildSummaryXLSX(t *testing.T) {
	data, err := BuildSummaryXLSX(exportSummary())
	if err != nil {
		t.Fatalf("xlsx error: %v", err)
	}

	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("open error: %v", err)
	}
	defer f.Close()

	nmi, err := f.GetCellValue("summary", "B3")
	if err != nil {
		t.Fatalf("cell error: %v", err)
	}
	if nmi != "6123456789" {
		t.Fatalf("unexpected nmi cell: %q", nmi)
	}

	rows, err := f.GetRows("line_items")
	if err != nil {
		t.Fatalf("rows error: %v", err)
	}
	// Header plus three records.
	if len(rows) != 4 {
		t.Fatalf("expected 4 rows, got %d", len(rows))
	}
	if rows[3][5] != "missing_calculated" {
		t.Fatalf("unexpected status cell: %q", rows[3][5])
	}
}
