package http

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	billingapp "invoice-audit/internal/billing/application"
	billing "invoice-audit/internal/billing/domain"
	billingmemory "invoice-audit/internal/billing/infrastructure/memory"
	meteringapp "invoice-audit/internal/metering/application"
	meteringmemory "invoice-audit/internal/metering/infrastructure/memory"
	reconapp "invoice-audit/internal/reconciliation/application"
	reconmemory "invoice-audit/internal/reconciliation/infrastructure/memory"
	"invoice-audit/internal/tariff/infrastructure/catalog"
)

const testNMI = "6123456789"

func nem12Fixture(t *testing.T) string {
	t.Helper()
	rows := []string{
		"100,NEM12,202401150830,RETAILER,DNSP",
		"200," + testNMI + ",E1,1,E1,N,METER01,kWh,30",
	}
	for day := 1; day <= 31; day++ {
		fields := []string{"300", fmt.Sprintf("202401%02d", day)}
		for i := 0; i < 48; i++ {
			fields = append(fields, "0.500")
		}
		rows = append(rows, strings.Join(fields, ","))
	}
	rows = append(rows, "900")
	return strings.Join(rows, "\n")
}

func newTestHandler(t *testing.T) *Handler {
	t.Helper()

	invoices := billingmemory.NewInvoiceRepository()
	intervals, err := meteringapp.NewIntervalStore(meteringmemory.NewFileRepository(), nil, nil)
	if err != nil {
		t.Fatalf("interval store error: %v", err)
	}
	engine, err := reconapp.NewEngine(reconmemory.NewSummaryRepository(), nil)
	if err != nil {
		t.Fatalf("engine error: %v", err)
	}
	service, err := reconapp.NewService(
		invoices, intervals, catalog.NewStaticCatalog(), billingapp.NewCalculator(), engine, nil)
	if err != nil {
		t.Fatalf("service error: %v", err)
	}

	ctx := context.Background()
	if _, err := intervals.Ingest(ctx, "meter-1", nem12Fixture(t)); err != nil {
		t.Fatalf("ingest error: %v", err)
	}
	if err := invoices.Save(ctx, &billing.ParsedInvoiceEnvelope{
		FileID: "invoice-1",
		Invoice: billing.ParsedInvoice{
			InvoiceNumber: "INV-001",
			Retailer:      "Test Energy",
			NMI:           testNMI,
			PeriodStart:   time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
			PeriodEnd:     time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC),
			LineItems: []billing.LineItem{
				{Description: "Daily Supply Charge", ChargeType: billing.ChargeSupply, Amount: decimal.RequireFromString("30.49")},
				{Description: "Energy Usage", ChargeType: billing.ChargeUsage, Amount: decimal.RequireFromString("150.00")},
			},
			Total: decimal.RequireFromString("180.49"),
		},
		Confidence: 0.95,
		ReceivedAt: time.Now().UTC(),
	}); err != nil {
		t.Fatalf("save error: %v", err)
	}

	handler, err := NewHandler(service, engine, nil)
	if err != nil {
		t.Fatalf("handler error: %v", err)
	}
	return handler
}

func runReconciliation(t *testing.T, handler *Handler) string {
	t.Helper()
	body := `{"invoice_file_id":"invoice-1","nem12_file_id":"meter-1","network_tariff_code":"EA025"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/reconciliation/run", strings.NewReader(body))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		ID            string `json:"reconciliation_id"`
		NMI           string `json:"nmi"`
		OverallStatus string `json:"overall_status"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode error: %v", err)
	}
	if resp.ID == "" || resp.NMI != testNMI || resp.OverallStatus == "" {
		t.Fatalf("unexpected response: %+v", resp)
	}
	return resp.ID
}

func TestHandler_RunAndGet(t *testing.T) {
	handler := newTestHandler(t)
	id := runReconciliation(t, handler)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/reconciliation/"+id, nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Fatalf("unexpected content type %q", ct)
	}
}

func TestHandler_RunMissingInvoice(t *testing.T) {
	handler := newTestHandler(t)
	body := `{"invoice_file_id":"missing","nem12_file_id":"meter-1"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/reconciliation/run", strings.NewReader(body))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestHandler_RunRequiresFileIDs(t *testing.T) {
	handler := newTestHandler(t)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/reconciliation/run", strings.NewReader(`{}`))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestHandler_GetNotFound(t *testing.T) {
	handler := newTestHandler(t)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/reconciliation/missing", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestHandler_History(t *testing.T) {
	handler := newTestHandler(t)
	runReconciliation(t, handler)
	runReconciliation(t, handler)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/reconciliation/history/"+testNMI+"?limit=1", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var items []historyItem
	if err := json.Unmarshal(rec.Body.Bytes(), &items); err != nil {
		t.Fatalf("decode error: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(items))
	}

	req = httptest.NewRequest(http.MethodGet, "/api/v1/reconciliation/history/"+testNMI+"?limit=zero", nil)
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad limit, got %d", rec.Code)
	}
}

func TestHandler_ExportCSV(t *testing.T) {
	handler := newTestHandler(t)
	id := runReconciliation(t, handler)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/reconciliation/export/"+id+"?format=csv", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); ct != "text/csv" {
		t.Fatalf("unexpected content type %q", ct)
	}
	disposition := rec.Header().Get("Content-Disposition")
	if !strings.Contains(disposition, "reconciliation_"+id+".csv") {
		t.Fatalf("unexpected disposition %q", disposition)
	}
	if !strings.HasPrefix(rec.Body.String(), "Description,Charge Type,") {
		t.Fatalf("unexpected body: %q", rec.Body.String())
	}
}

func TestHandler_ExportUnsupportedFormat(t *testing.T) {
	handler := newTestHandler(t)
	id := runReconciliation(t, handler)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/reconciliation/export/"+id+"?format=docx", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}
