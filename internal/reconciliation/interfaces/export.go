package interfaces

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/xuri/excelize/v2"

	reconciliation "invoice-audit/internal/reconciliation/domain"
)

// BuildSummaryCSV renders a summary's records as CSV. One header row,
// one row per record, amounts with two decimal places.
func BuildSummaryCSV(summary *reconciliation.ReconciliationSummary) []byte {
	var b strings.Builder
	b.WriteString("Description,Charge Type,Invoiced Amount,Calculated Amount,Difference,Status")
	for _, record := range summary.Records {
		b.WriteString(fmt.Sprintf("\n%s,%s,%s,%s,%s,%s",
			record.Description,
			record.ChargeType,
			record.InvoicedAmount().StringFixed(2),
			record.CalculatedAmount().StringFixed(2),
			record.AmountDifference.StringFixed(2),
			record.Status,
		))
	}
	return []byte(b.String())
}

// BuildSummaryPDF renders a minimal PDF for a summary.
func BuildSummaryPDF(summary *reconciliation.ReconciliationSummary) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetFont("Arial", "", 12)
	pdf.AddPage()

	pdf.Cell(0, 8, "Invoice Reconciliation Report")
	pdf.Ln(10)
	pdf.SetFont("Arial", "", 10)
	pdf.Cell(0, 6, fmt.Sprintf("NMI: %s", summary.NMI))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Invoice: %s", summary.InvoiceNumber))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Period: %s to %s",
		summary.PeriodStart.Format("2006-01-02"), summary.PeriodEnd.Format("2006-01-02")))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Overall Status: %s", summary.OverallStatus))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Confidence: %.2f", summary.ConfidenceScore))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Reconciled: %s", summary.ReconciledAt.Format(time.RFC3339)))
	pdf.Ln(8)

	pdf.Cell(0, 6, fmt.Sprintf("Invoiced Total: $%s", summary.InvoicedTotal.StringFixed(2)))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Calculated Total: $%s", summary.CalculatedTotal.StringFixed(2)))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Difference: $%s (%.2f%%)",
		summary.TotalDifference.StringFixed(2), summary.TotalPercentageDifference))
	pdf.Ln(8)

	// Records table
	pdf.SetFont("Arial", "B", 10)
	pdf.CellFormat(60, 6, "Description", "1", 0, "C", false, 0, "")
	pdf.CellFormat(30, 6, "Invoiced", "1", 0, "C", false, 0, "")
	pdf.CellFormat(30, 6, "Calculated", "1", 0, "C", false, 0, "")
	pdf.CellFormat(30, 6, "Difference", "1", 0, "C", false, 0, "")
	pdf.CellFormat(30, 6, "Status", "1", 0, "C", false, 0, "")
	pdf.Ln(-1)
	pdf.SetFont("Arial", "", 10)
	for _, record := range summary.Records {
		pdf.CellFormat(60, 6, record.Description, "1", 0, "L", false, 0, "")
		pdf.CellFormat(30, 6, record.InvoicedAmount().StringFixed(2), "1", 0, "R", false, 0, "")
		pdf.CellFormat(30, 6, record.CalculatedAmount().StringFixed(2), "1", 0, "R", false, 0, "")
		pdf.CellFormat(30, 6, record.AmountDifference.StringFixed(2), "1", 0, "R", false, 0, "")
		pdf.CellFormat(30, 6, string(record.Status), "1", 0, "C", false, 0, "")
		pdf.Ln(-1)
	}

	if len(summary.Recommendations) > 0 {
		pdf.Ln(4)
		pdf.SetFont("Arial", "B", 10)
		pdf.Cell(0, 6, "Recommendations")
		pdf.Ln(5)
		pdf.SetFont("Arial", "", 10)
		for _, rec := range summary.Recommendations {
			pdf.MultiCell(0, 5, "- "+rec, "", "L", false)
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// BuildSummaryXLSX renders a minimal XLSX for a summary.
func BuildSummaryXLSX(summary *reconciliation.ReconciliationSummary) ([]byte, error) {
	f := excelize.NewFile()
	summarySheet := "summary"
	itemsSheet := "line_items"
	f.SetSheetName("Sheet1", summarySheet)
	f.NewSheet(itemsSheet)

	_ = f.SetCellValue(summarySheet, "A1", "Invoice Reconciliation Report")
	_ = f.SetCellValue(summarySheet, "A3", "NMI")
	_ = f.SetCellValue(summarySheet, "B3", summary.NMI)
	_ = f.SetCellValue(summarySheet, "A4", "Invoice Number")
	_ = f.SetCellValue(summarySheet, "B4", summary.InvoiceNumber)
	_ = f.SetCellValue(summarySheet, "A5", "Period Start")
	_ = f.SetCellValue(summarySheet, "B5", summary.PeriodStart.Format("2006-01-02"))
	_ = f.SetCellValue(summarySheet, "A6", "Period End")
	_ = f.SetCellValue(summarySheet, "B6", summary.PeriodEnd.Format("2006-01-02"))
	_ = f.SetCellValue(summarySheet, "A7", "Invoiced Total")
	_ = f.SetCellValue(summarySheet, "B7", summary.InvoicedTotal.StringFixed(2))
	_ = f.SetCellValue(summarySheet, "A8", "Calculated Total")
	_ = f.SetCellValue(summarySheet, "B8", summary.CalculatedTotal.StringFixed(2))
	_ = f.SetCellValue(summarySheet, "A9", "Total Difference")
	_ = f.SetCellValue(summarySheet, "B9", summary.TotalDifference.StringFixed(2))
	_ = f.SetCellValue(summarySheet, "A10", "Overall Status")
	_ = f.SetCellValue(summarySheet, "B10", string(summary.OverallStatus))
	_ = f.SetCellValue(summarySheet, "A11", "Confidence")
	_ = f.SetCellValue(summarySheet, "B11", summary.ConfidenceScore)

	_ = f.SetCellValue(itemsSheet, "A1", "Description")
	_ = f.SetCellValue(itemsSheet, "B1", "Charge Type")
	_ = f.SetCellValue(itemsSheet, "C1", "Invoiced Amount")
	_ = f.SetCellValue(itemsSheet, "D1", "Calculated Amount")
	_ = f.SetCellValue(itemsSheet, "E1", "Difference")
	_ = f.SetCellValue(itemsSheet, "F1", "Status")
	for i, record := range summary.Records {
		row := i + 2
		_ = f.SetCellValue(itemsSheet, fmt.Sprintf("A%d", row), record.Description)
		_ = f.SetCellValue(itemsSheet, fmt.Sprintf("B%d", row), string(record.ChargeType))
		_ = f.SetCellValue(itemsSheet, fmt.Sprintf("C%d", row), record.InvoicedAmount().StringFixed(2))
		_ = f.SetCellValue(itemsSheet, fmt.Sprintf("D%d", row), record.CalculatedAmount().StringFixed(2))
		_ = f.SetCellValue(itemsSheet, fmt.Sprintf("E%d", row), record.AmountDifference.StringFixed(2))
		_ = f.SetCellValue(itemsSheet, fmt.Sprintf("F%d", row), string(record.Status))
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
